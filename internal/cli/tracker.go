package cli

import (
	"context"

	"github.com/rpggio/genai-tracker/internal/domain/checklist"
	"github.com/rpggio/genai-tracker/internal/domain/project"
	"github.com/rpggio/genai-tracker/internal/domain/timeline"
)

// Tracker is the project API the commands drive. It is either a running
// server reached through internal/client or a store over the local database.
type Tracker interface {
	CreateProject(ctx context.Context, name string) (*project.Project, error)
	List(ctx context.Context) ([]project.Summary, error)
	Get(ctx context.Context, projectID string) (*project.Project, error)
	SwitchProject(ctx context.Context, projectID string) (*project.Project, error)
	DeleteProject(ctx context.Context, projectID string) error
	GenerateChecklist(ctx context.Context, projectID string, in project.GenerateInput) (*project.Project, error)
	AddCustomItem(ctx context.Context, projectID, text, category string) (*checklist.Item, error)
	MutateItem(ctx context.Context, projectID, itemID string, m project.Mutation) (*project.Project, error)
	ListEvents(ctx context.Context, projectID string) ([]timeline.Event, error)
	ExportProject(ctx context.Context, projectID string) ([]byte, error)
	ImportProject(ctx context.Context, name string, data []byte) (*project.Project, error)
}

// localTracker adapts the in-process store to Tracker.
type localTracker struct {
	*project.Store
}

func (t localTracker) List(context.Context) ([]project.Summary, error) {
	return t.Store.List(), nil
}

func (t localTracker) Get(_ context.Context, projectID string) (*project.Project, error) {
	return t.Store.Get(projectID)
}

func (t localTracker) ListEvents(_ context.Context, projectID string) ([]timeline.Event, error) {
	return t.Store.ListEvents(projectID)
}

func (t localTracker) ExportProject(_ context.Context, projectID string) ([]byte, error) {
	return t.Store.ExportProject(projectID)
}
