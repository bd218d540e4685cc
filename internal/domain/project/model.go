package project

import (
	"fmt"
	"time"

	"github.com/rpggio/genai-tracker/internal/domain/checklist"
	"github.com/rpggio/genai-tracker/internal/domain/timeline"
	"github.com/rpggio/genai-tracker/internal/generate"
)

// Config holds the model parameters recorded for a project.
type Config = generate.ModelConfig

// DefaultConfig returns the configuration new projects start with.
func DefaultConfig() Config {
	return generate.DefaultModelConfig()
}

// Project is a named checklist with its change timeline.
type Project struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	ResearchPlan string           `json:"researchPlan"`
	ProjectStage string           `json:"projectStage"`
	Config       Config           `json:"config"`
	Checklist    []checklist.Item `json:"checklist"`
	Timeline     []timeline.Event `json:"timeline"`
	Version      int64            `json:"version"`
	CreatedAt    time.Time        `json:"createdAt"`
}

// Clone returns a deep copy of the project.
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	out := *p
	out.Checklist = checklist.CloneAll(p.Checklist)
	out.Timeline = timeline.Clone(p.Timeline)
	return &out
}

// Summary is a lightweight representation for listing.
type Summary struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ProjectStage string    `json:"projectStage,omitempty"`
	ItemCount    int       `json:"itemCount"`
	CheckedCount int       `json:"checkedCount"`
	EventCount   int       `json:"eventCount"`
	Version      int64     `json:"version"`
	Current      bool      `json:"current"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (p *Project) summary(current bool) Summary {
	checked := 0
	for _, it := range p.Checklist {
		if it.Checked {
			checked++
		}
	}
	return Summary{
		ID:           p.ID,
		Name:         p.Name,
		ProjectStage: p.ProjectStage,
		ItemCount:    len(p.Checklist),
		CheckedCount: checked,
		EventCount:   len(p.Timeline),
		Version:      p.Version,
		Current:      current,
		CreatedAt:    p.CreatedAt,
	}
}

// Snapshot is a point-in-time copy of the whole store.
type Snapshot struct {
	CurrentProjectID string
	Projects         map[string]*Project
}

// Current returns the current project, if any.
func (s Snapshot) Current() (*Project, bool) {
	if s.CurrentProjectID == "" {
		return nil, false
	}
	p, ok := s.Projects[s.CurrentProjectID]
	return p, ok
}

// Update is a checklist and timeline snapshot received from another context.
type Update struct {
	ProjectID string
	Checklist []checklist.Item
	Timeline  []timeline.Event
	Version   int64
}

// Export is the downloadable project document.
type Export struct {
	ID           string           `json:"id,omitempty"`
	Name         string           `json:"name,omitempty"`
	ResearchPlan string           `json:"researchPlan,omitempty"`
	ProjectStage string           `json:"projectStage,omitempty"`
	Config       Config           `json:"config"`
	Checklist    []checklist.Item `json:"checklist"`
	Timeline     []timeline.Event `json:"timeline"`
	ExportedAt   time.Time        `json:"exportedAt"`
}

// ExportFileName returns the download name for an export taken at now.
func ExportFileName(now time.Time) string {
	return fmt.Sprintf("genai-project-%d.json", now.UnixMilli())
}
