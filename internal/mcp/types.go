package mcp

import (
	"encoding/json"
	"time"

	"github.com/rpggio/genai-tracker/internal/domain/checklist"
	"github.com/rpggio/genai-tracker/internal/domain/project"
	"github.com/rpggio/genai-tracker/internal/domain/timeline"
)

type CreateProjectParams struct {
	Name string `json:"name" jsonschema:"Project display name"`
}

type ListProjectsParams struct{}

type ProjectIDParams struct {
	ProjectID string `json:"project_id,omitempty" jsonschema:"Project ID (omit to use the current project)"`
}

type SwitchProjectParams struct {
	ProjectID string `json:"project_id" jsonschema:"Project ID to make current"`
}

type DeleteProjectParams struct {
	ProjectID string `json:"project_id" jsonschema:"Project ID to delete"`
}

type GenerateChecklistParams struct {
	ProjectID    string   `json:"project_id,omitempty" jsonschema:"Project ID (omit to use the current project)"`
	ResearchPlan string   `json:"research_plan" jsonschema:"Description of the research project, at least 25 characters"`
	ProjectStage string   `json:"project_stage,omitempty" jsonschema:"Current stage of the project"`
	ModelName    string   `json:"model_name,omitempty" jsonschema:"Model recorded in the project config"`
	SystemPrompt string   `json:"system_prompt,omitempty" jsonschema:"Additional system prompt for generation"`
	Temperature  *float64 `json:"temperature,omitempty" jsonschema:"Sampling temperature"`
	MaxTokens    int      `json:"max_tokens,omitempty" jsonschema:"Completion token limit"`
	TopP         *float64 `json:"top_p,omitempty" jsonschema:"Nucleus sampling parameter"`
}

type AddItemParams struct {
	ProjectID string `json:"project_id,omitempty" jsonschema:"Project ID (omit to use the current project)"`
	Text      string `json:"text" jsonschema:"Item text"`
	Category  string `json:"category,omitempty" jsonschema:"Item category (defaults to General)"`
}

type ItemParams struct {
	ProjectID string `json:"project_id,omitempty" jsonschema:"Project ID (omit to use the current project)"`
	ItemID    string `json:"item_id" jsonschema:"Checklist item ID"`
}

type NotesParams struct {
	ProjectID string `json:"project_id,omitempty" jsonschema:"Project ID (omit to use the current project)"`
	ItemID    string `json:"item_id" jsonschema:"Checklist item ID"`
	Notes     string `json:"notes,omitempty" jsonschema:"Note text"`
}

type LogChangeParams struct {
	ProjectID string `json:"project_id,omitempty" jsonschema:"Project ID (omit to use the current project)"`
	ItemID    string `json:"item_id" jsonschema:"Checklist item ID"`
	Message   string `json:"message" jsonschema:"Change description"`
}

type ExportTimelineParams struct {
	ProjectID string `json:"project_id,omitempty" jsonschema:"Project ID (omit to use the current project)"`
	Format    string `json:"format,omitempty" jsonschema:"json or markdown (default json)"`
}

type ImportProjectParams struct {
	Name    string `json:"name,omitempty" jsonschema:"Name for the imported project (defaults to the exported name)"`
	Project any    `json:"project" jsonschema:"Document produced by export_project"`
}

// ProjectResponse is the full project returned by project tools.
type ProjectResponse struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	ResearchPlan string           `json:"research_plan,omitempty"`
	ProjectStage string           `json:"project_stage,omitempty"`
	Config       project.Config   `json:"config"`
	Checklist    []checklist.Item `json:"checklist"`
	Timeline     []timeline.Event `json:"timeline"`
	Version      int64            `json:"version"`
	Current      bool             `json:"current"`
	CreatedAt    time.Time        `json:"created_at"`
}

type ProjectListResponse struct {
	CurrentProjectID string            `json:"current_project_id,omitempty"`
	Projects         []project.Summary `json:"projects"`
}

type ItemResponse struct {
	ProjectID string         `json:"project_id"`
	Item      checklist.Item `json:"item"`
	Version   int64          `json:"version"`
	Status    project.Status `json:"status"`
}

type StatusResponse struct {
	Status project.Status `json:"status"`
}

type EventsResponse struct {
	ProjectID string           `json:"project_id"`
	Events    []timeline.Event `json:"events"`
}

type ExportResponse struct {
	FileName string          `json:"file_name"`
	Format   string          `json:"format"`
	Content  json.RawMessage `json:"content,omitempty"`
	Text     string          `json:"text,omitempty"`
}

func projectResponse(p *project.Project, currentID string) ProjectResponse {
	return ProjectResponse{
		ID:           p.ID,
		Name:         p.Name,
		ResearchPlan: p.ResearchPlan,
		ProjectStage: p.ProjectStage,
		Config:       p.Config,
		Checklist:    p.Checklist,
		Timeline:     timeline.Sorted(p.Timeline),
		Version:      p.Version,
		Current:      p.ID == currentID,
		CreatedAt:    p.CreatedAt,
	}
}
