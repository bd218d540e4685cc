package project

import (
	"context"

	"github.com/rpggio/genai-tracker/internal/domain/checklist"
	"github.com/rpggio/genai-tracker/internal/domain/timeline"
)

// ApplyUpdate replaces a project's checklist and timeline with an incoming
// snapshot. Updates for unknown projects are dropped and versioned updates
// that are not newer than local state are rejected with ErrStaleUpdate. The
// change is persisted but not rebroadcast.
func (s *Store) ApplyUpdate(ctx context.Context, u Update) error {
	s.mu.Lock()
	s.refreshLocked(ctx)
	p, ok := s.projects[u.ProjectID]
	if !ok {
		s.mu.Unlock()
		s.logger.Debug("dropping update for unknown project", "project_id", u.ProjectID)
		return ErrProjectNotFound
	}
	if u.Version > 0 && u.Version <= p.Version {
		s.mu.Unlock()
		return ErrStaleUpdate
	}

	p.Checklist = checklist.CloneAll(u.Checklist)
	p.Timeline = timeline.Clone(u.Timeline)
	if u.Version > 0 {
		p.Version = u.Version
	} else {
		p.Version++
	}
	s.persistLocked(ctx)
	isCurrent := s.current == u.ProjectID
	hook := s.onChange
	s.mu.Unlock()

	s.logger.Debug("applied update", "project_id", u.ProjectID, "items", len(u.Checklist))
	if isCurrent && hook != nil {
		hook(u.ProjectID)
	}
	return nil
}
