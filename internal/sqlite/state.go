package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/rpggio/genai-tracker/internal/domain/project"
	"github.com/rpggio/genai-tracker/internal/repository"
)

// StateRepository implements project.Repository on top of a key/value store:
// the whole project map is one JSON blob and the current project id is a
// separate pointer key.
type StateRepository struct {
	kv repository.KeyValueStore
}

// NewStateRepository creates a new StateRepository
func NewStateRepository(kv repository.KeyValueStore) *StateRepository {
	return &StateRepository{kv: kv}
}

// LoadProjects decodes the stored project map
func (r *StateRepository) LoadProjects(ctx context.Context) (map[string]*project.Project, error) {
	data, err := r.kv.Get(ctx, repository.KeyProjects)
	if err != nil {
		return nil, err
	}

	projects := make(map[string]*project.Project)
	if err := json.Unmarshal(data, &projects); err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrCorrupt, err)
	}
	return projects, nil
}

// SaveProjects replaces the stored project map
func (r *StateRepository) SaveProjects(ctx context.Context, projects map[string]*project.Project) error {
	data, err := json.Marshal(projects)
	if err != nil {
		return fmt.Errorf("failed to encode projects: %w", err)
	}
	return r.kv.Put(ctx, repository.KeyProjects, data)
}

// LoadCurrent returns the stored current project id
func (r *StateRepository) LoadCurrent(ctx context.Context) (string, error) {
	data, err := r.kv.Get(ctx, repository.KeyCurrentProject)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// SaveCurrent stores the current project id; an empty id clears it
func (r *StateRepository) SaveCurrent(ctx context.Context, projectID string) error {
	if projectID == "" {
		return r.kv.Delete(ctx, repository.KeyCurrentProject)
	}
	return r.kv.Put(ctx, repository.KeyCurrentProject, []byte(projectID))
}

// Revision returns the stored write counter, 0 when nothing was saved yet
func (r *StateRepository) Revision(ctx context.Context) (int64, error) {
	data, err := r.kv.Get(ctx, repository.KeyRevision)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	rev, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: revision %q", repository.ErrCorrupt, data)
	}
	return rev, nil
}

// SaveRevision stores the write counter
func (r *StateRepository) SaveRevision(ctx context.Context, rev int64) error {
	return r.kv.Put(ctx, repository.KeyRevision, []byte(strconv.FormatInt(rev, 10)))
}
