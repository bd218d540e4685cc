package project

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rpggio/genai-tracker/internal/domain/checklist"
	"github.com/rpggio/genai-tracker/internal/domain/timeline"
)

// ExportProject renders a project as an indented JSON document.
func (s *Store) ExportProject(projectID string) ([]byte, error) {
	s.mu.Lock()
	p, err := s.resolveLocked(projectID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	doc := Export{
		ID:           p.ID,
		Name:         p.Name,
		ResearchPlan: p.ResearchPlan,
		ProjectStage: p.ProjectStage,
		Config:       p.Config,
		Checklist:    checklist.CloneAll(p.Checklist),
		Timeline:     timeline.Clone(p.Timeline),
		ExportedAt:   s.now().UTC(),
	}
	s.mu.Unlock()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding export: %w", err)
	}
	return data, nil
}

// ImportProject creates a new current project from an export document. name
// overrides the name stored in the document.
func (s *Store) ImportProject(ctx context.Context, name string, data []byte) (*Project, error) {
	var doc Export
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	if strings.TrimSpace(name) == "" {
		name = doc.Name
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}

	seen := make(map[string]bool, len(doc.Checklist))
	for _, it := range doc.Checklist {
		if it.ID == "" || seen[it.ID] {
			return nil, fmt.Errorf("%w: missing or duplicate item id %q", ErrInvalidImport, it.ID)
		}
		seen[it.ID] = true
	}

	cfg := doc.Config
	if cfg == (Config{}) {
		cfg = DefaultConfig()
	}

	var out *Project
	err := s.mutate(ctx, func() error {
		p := &Project{
			ID:           newProjectID(),
			Name:         name,
			ResearchPlan: doc.ResearchPlan,
			ProjectStage: doc.ProjectStage,
			Config:       cfg,
			Checklist:    checklist.CloneAll(doc.Checklist),
			Timeline:     timeline.Clone(doc.Timeline),
			Version:      1,
			CreatedAt:    s.timestamp(),
		}
		s.projects[p.ID] = p
		s.current = p.ID
		out = p.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("project imported", "project_id", out.ID, "items", len(out.Checklist))
	return out, nil
}
