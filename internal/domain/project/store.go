package project

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/genai-tracker/internal/domain/checklist"
	"github.com/rpggio/genai-tracker/internal/domain/timeline"
	"github.com/rpggio/genai-tracker/internal/repository"
)

// Store owns the project map and the current-project pointer. Every
// read-modify-write runs under one lock, persistence happens before the lock
// is released and broadcasts happen after.
type Store struct {
	mu        sync.Mutex
	projects  map[string]*Project
	current   string
	repo      Repository
	revision  int64
	generator Generator
	logger    *slog.Logger

	broadcaster Broadcaster
	onChange    func(projectID string)
	now         func() time.Time
}

// NewStore creates a store. repo and generator may be nil for an in-memory
// store without generation.
func NewStore(repo Repository, generator Generator, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{
		projects:  make(map[string]*Project),
		repo:      repo,
		generator: generator,
		logger:    logger,
		now:       time.Now,
	}
}

// SetBroadcaster installs the snapshot publisher.
func (s *Store) SetBroadcaster(b Broadcaster) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcaster = b
}

// OnChange registers a hook run when the current project is replaced by an
// incoming update.
func (s *Store) OnChange(fn func(projectID string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// SetClock overrides the time source.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Load reads persisted state. Missing or corrupt data starts an empty store,
// and a dangling current pointer is cleared.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked(ctx)
	s.logger.Info("projects loaded", "count", len(s.projects), "current", s.current)
}

func (s *Store) loadLocked(ctx context.Context) {
	s.projects = make(map[string]*Project)
	s.current = ""
	if s.repo == nil {
		return
	}

	projects, err := s.repo.LoadProjects(ctx)
	switch {
	case err == nil:
		for id, p := range projects {
			if p == nil {
				continue
			}
			if p.ID == "" {
				p.ID = id
			}
			if p.Checklist == nil {
				p.Checklist = []checklist.Item{}
			}
			if p.Timeline == nil {
				p.Timeline = []timeline.Event{}
			}
			s.projects[id] = p
		}
	case errors.Is(err, repository.ErrNotFound):
	case errors.Is(err, repository.ErrCorrupt):
		s.logger.Warn("stored projects unreadable, starting empty", "error", err)
	default:
		s.logger.Error("failed to load projects", "error", err)
	}

	current, err := s.repo.LoadCurrent(ctx)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.logger.Warn("failed to load current project", "error", err)
	}
	if _, ok := s.projects[current]; ok {
		s.current = current
	}

	if rv, ok := s.repo.(Revisioned); ok {
		rev, err := rv.Revision(ctx)
		if err != nil {
			s.logger.Warn("failed to read stored revision", "error", err)
		}
		s.revision = rev
	}
}

// refreshLocked reloads the project map when another writer persisted since
// this store last loaded or saved.
func (s *Store) refreshLocked(ctx context.Context) {
	rv, ok := s.repo.(Revisioned)
	if !ok {
		return
	}
	rev, err := rv.Revision(ctx)
	if err != nil {
		s.logger.Warn("failed to read stored revision", "error", err)
		return
	}
	if rev == s.revision {
		return
	}
	s.logger.Info("reloading projects written elsewhere", "revision", rev, "held", s.revision)
	s.loadLocked(ctx)
}

// Get returns a copy of a project. An empty id means the current project.
func (s *Store) Get(projectID string) (*Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.resolveLocked(projectID)
	if err != nil {
		return nil, err
	}
	return p.Clone(), nil
}

// Current returns a copy of the current project.
func (s *Store) Current() (*Project, error) {
	return s.Get("")
}

// CurrentID returns the current project id, or "" when none is selected.
func (s *Store) CurrentID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// List returns project summaries, newest first.
func (s *Store) List() []Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Summary, 0, len(s.projects))
	for id, p := range s.projects {
		out = append(out, p.summary(id == s.current))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Snapshot returns a deep copy of the whole store.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// ListEvents returns a project's timeline, newest first.
func (s *Store) ListEvents(projectID string) ([]timeline.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.resolveLocked(projectID)
	if err != nil {
		return nil, err
	}
	return timeline.Sorted(p.Timeline), nil
}

// CreateProject adds an empty project and makes it current.
func (s *Store) CreateProject(ctx context.Context, name string) (*Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}

	var out *Project
	err := s.mutate(ctx, func() error {
		p := &Project{
			ID:        newProjectID(),
			Name:      name,
			Config:    DefaultConfig(),
			Checklist: []checklist.Item{},
			Timeline:  []timeline.Event{},
			Version:   1,
			CreatedAt: s.timestamp(),
		}
		s.projects[p.ID] = p
		s.current = p.ID
		out = p.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("project created", "project_id", out.ID, "name", out.Name)
	return out, nil
}

// SwitchProject makes an existing project current.
func (s *Store) SwitchProject(ctx context.Context, projectID string) (*Project, error) {
	var out *Project
	err := s.mutate(ctx, func() error {
		p, ok := s.projects[projectID]
		if !ok {
			return ErrProjectNotFound
		}
		s.current = projectID
		out = p.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteProject removes a project, clearing the pointer when it was current.
func (s *Store) DeleteProject(ctx context.Context, projectID string) error {
	err := s.mutate(ctx, func() error {
		if _, ok := s.projects[projectID]; !ok {
			return ErrProjectNotFound
		}
		delete(s.projects, projectID)
		if s.current == projectID {
			s.current = ""
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("project deleted", "project_id", projectID)
	return nil
}

// errUnchanged lets a mutation report success without persisting.
var errUnchanged = errors.New("unchanged")

// mutate runs fn under the lock, then persists and broadcasts if it succeeded.
func (s *Store) mutate(ctx context.Context, fn func() error) error {
	s.mu.Lock()
	s.refreshLocked(ctx)
	if err := fn(); err != nil {
		s.mu.Unlock()
		if errors.Is(err, errUnchanged) {
			return nil
		}
		return err
	}
	s.persistLocked(ctx)
	snap := s.snapshotLocked()
	b := s.broadcaster
	s.mu.Unlock()

	if b != nil {
		if err := b.Broadcast(ctx, snap); err != nil {
			s.logger.Warn("broadcast failed", "error", err)
		}
	}
	return nil
}

// persistLocked writes the project map and pointer. Failures are logged and
// the in-memory state stays authoritative.
func (s *Store) persistLocked(ctx context.Context) {
	if s.repo == nil {
		return
	}
	if err := s.repo.SaveProjects(ctx, s.projects); err != nil {
		s.logger.Error("failed to persist projects", "error", err)
	}
	if err := s.repo.SaveCurrent(ctx, s.current); err != nil {
		s.logger.Error("failed to persist current project", "error", err)
	}
	if rv, ok := s.repo.(Revisioned); ok {
		if err := rv.SaveRevision(ctx, s.revision+1); err != nil {
			s.logger.Error("failed to persist revision", "error", err)
			return
		}
		s.revision++
	}
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		CurrentProjectID: s.current,
		Projects:         make(map[string]*Project, len(s.projects)),
	}
	for id, p := range s.projects {
		snap.Projects[id] = p.Clone()
	}
	return snap
}

func (s *Store) resolveLocked(projectID string) (*Project, error) {
	if projectID == "" {
		if s.current == "" {
			return nil, ErrNoCurrentProject
		}
		projectID = s.current
	}
	p, ok := s.projects[projectID]
	if !ok {
		if projectID == s.current {
			return nil, ErrNoCurrentProject
		}
		return nil, ErrProjectNotFound
	}
	return p, nil
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Second)
}

func newProjectID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
