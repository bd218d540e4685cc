package project

import (
	"context"
	"errors"
	"strings"

	"github.com/rpggio/genai-tracker/internal/domain/checklist"
	"github.com/rpggio/genai-tracker/internal/domain/timeline"
	"github.com/rpggio/genai-tracker/internal/generate"
)

// GenerateInput is the research plan form submitted for generation.
type GenerateInput struct {
	ResearchPlan string
	ProjectStage string
	Config       Config
}

// GenerationResult is a generated checklist payload ready to be applied.
type GenerationResult struct {
	Checklist    any
	ResearchPlan string
	ProjectStage string
	Config       *Config
}

// GenerateChecklist requests a checklist for a project's research plan and
// applies it. Invalid input fails before any request is made, and a failed
// request leaves the project untouched.
func (s *Store) GenerateChecklist(ctx context.Context, projectID string, in GenerateInput) (*Project, error) {
	req := generate.Request{
		ResearchPlan: in.ResearchPlan,
		ProjectStage: in.ProjectStage,
		Config:       in.Config.WithFallbacks(),
	}.Normalized()
	if err := req.Validate(); err != nil {
		return nil, ErrInvalidPlan
	}

	s.mu.Lock()
	p, err := s.resolveLocked(projectID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	id := p.ID
	gen := s.generator
	s.mu.Unlock()

	if gen == nil {
		return nil, &GenerationError{Err: errors.New("no generator configured")}
	}

	s.logger.Info("generating checklist", "project_id", id, "stage", req.ProjectStage)
	resp, err := gen.Generate(ctx, req)
	if err != nil {
		s.logger.Error("checklist generation failed", "project_id", id, "error", err)
		return nil, &GenerationError{Err: err}
	}

	cfg := req.Config
	return s.ApplyGenerated(ctx, id, GenerationResult{
		Checklist:    []byte(resp.Checklist),
		ResearchPlan: req.ResearchPlan,
		ProjectStage: req.ProjectStage,
		Config:       &cfg,
	})
}

// ApplyGenerated replaces a project's checklist with the normalized payload
// followed by the static items, and resets its timeline. A project deleted
// while generation was in flight yields ErrProjectNotFound.
func (s *Store) ApplyGenerated(ctx context.Context, projectID string, res GenerationResult) (*Project, error) {
	var out *Project
	err := s.mutate(ctx, func() error {
		p, err := s.resolveLocked(projectID)
		if err != nil {
			return err
		}
		items := checklist.Normalize(res.Checklist)
		p.Checklist = append(items, checklist.StaticItems()...)
		p.Timeline = []timeline.Event{}
		if plan := strings.TrimSpace(res.ResearchPlan); plan != "" {
			p.ResearchPlan = plan
		}
		if stage := strings.TrimSpace(res.ProjectStage); stage != "" {
			p.ProjectStage = stage
		}
		if res.Config != nil {
			p.Config = *res.Config
		}
		p.Version++
		out = p.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("checklist applied", "project_id", out.ID, "items", len(out.Checklist))
	return out, nil
}
