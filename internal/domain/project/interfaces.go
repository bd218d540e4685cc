package project

import (
	"context"

	"github.com/rpggio/genai-tracker/internal/generate"
)

// Repository persists the project map and the current-project pointer.
// Implementations return repository.ErrNotFound when nothing is stored and
// repository.ErrCorrupt when stored data cannot be decoded.
type Repository interface {
	LoadProjects(ctx context.Context) (map[string]*Project, error)
	SaveProjects(ctx context.Context, projects map[string]*Project) error
	LoadCurrent(ctx context.Context) (string, error)
	SaveCurrent(ctx context.Context, projectID string) error
}

// Revisioned is implemented by repositories that more than one process may
// write. Every save bumps the revision; a store whose held revision is behind
// reloads before its next write. Revision returns 0 when none is stored.
type Revisioned interface {
	Revision(ctx context.Context) (int64, error)
	SaveRevision(ctx context.Context, rev int64) error
}

// Generator produces a checklist payload for a research plan.
type Generator interface {
	Generate(ctx context.Context, req generate.Request) (*generate.Response, error)
}

// Broadcaster publishes store snapshots to other contexts.
type Broadcaster interface {
	Broadcast(ctx context.Context, snap Snapshot) error
}
