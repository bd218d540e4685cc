package repository

import "context"

// KeyValueStore persists opaque values under string keys.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Storage keys shared by the page and extension contexts.
const (
	KeyProjects       = "genai_projects"
	KeyCurrentProject = "genai_current_project"
	KeyState          = "genai_state"
	KeyRevision       = "genai_revision"
)
