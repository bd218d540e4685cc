package mocks

import (
	"context"

	"github.com/rpggio/genai-tracker/internal/domain/project"
	"github.com/rpggio/genai-tracker/internal/generate"
	"github.com/stretchr/testify/mock"
)

// ProjectRepository is a mock for project.Repository.
type ProjectRepository struct {
	mock.Mock
}

func (m *ProjectRepository) LoadProjects(ctx context.Context) (map[string]*project.Project, error) {
	args := m.Called(ctx)
	if projects, ok := args.Get(0).(map[string]*project.Project); ok {
		return projects, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) SaveProjects(ctx context.Context, projects map[string]*project.Project) error {
	args := m.Called(ctx, projects)
	return args.Error(0)
}

func (m *ProjectRepository) LoadCurrent(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *ProjectRepository) SaveCurrent(ctx context.Context, projectID string) error {
	args := m.Called(ctx, projectID)
	return args.Error(0)
}

// Generator is a mock for project.Generator.
type Generator struct {
	mock.Mock
}

func (m *Generator) Generate(ctx context.Context, req generate.Request) (*generate.Response, error) {
	args := m.Called(ctx, req)
	if resp, ok := args.Get(0).(*generate.Response); ok {
		return resp, args.Error(1)
	}
	return nil, args.Error(1)
}

// Broadcaster is a mock for project.Broadcaster.
type Broadcaster struct {
	mock.Mock
}

func (m *Broadcaster) Broadcast(ctx context.Context, snap project.Snapshot) error {
	args := m.Called(ctx, snap)
	return args.Error(0)
}

// KeyValueStore is a mock for repository.KeyValueStore.
type KeyValueStore struct {
	mock.Mock
}

func (m *KeyValueStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if data, ok := args.Get(0).([]byte); ok {
		return data, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *KeyValueStore) Put(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *KeyValueStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
