package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/genai-tracker/internal/domain/project"
	"github.com/rpggio/genai-tracker/internal/domain/timeline"
)

type tools struct {
	store  *project.Store
	logger *slog.Logger
}

func registerTools(server *sdkmcp.Server, t *tools) {
	// Projects
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "create_project",
		Description: "Create an empty project and make it current",
	}, t.createProject)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_projects",
		Description: "List all projects, newest first",
	}, t.listProjects)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_project",
		Description: "Get a project's checklist and timeline (the current project by default)",
	}, t.getProject)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "switch_project",
		Description: "Make a project current",
	}, t.switchProject)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "delete_project",
		Description: "Delete a project; deleting the current project leaves none selected",
	}, t.deleteProject)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "generate_checklist",
		Description: "Generate a reproducibility checklist from a research plan, replacing the project's checklist and resetting its timeline",
	}, t.generateChecklist)

	// Items
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "add_item",
		Description: "Add a custom item at the top of the checklist",
	}, t.addItem)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "toggle_item",
		Description: "Flip an item's checked state and record the change",
	}, t.toggleItem)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "edit_notes",
		Description: "Replace an item's draft notes without recording a change",
	}, t.editNotes)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "commit_notes",
		Description: "Record an item's draft notes in the timeline and clear them",
	}, t.commitNotes)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "log_change",
		Description: "Record a free-text change against an item",
	}, t.logChange)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "remove_item",
		Description: "Remove an item from the checklist, keeping a timeline entry",
	}, t.removeItem)

	// Timeline and transfer
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_events",
		Description: "List a project's timeline, newest first",
	}, t.listEvents)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "export_timeline",
		Description: "Export a project's timeline as JSON or Markdown",
	}, t.exportTimeline)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "export_project",
		Description: "Export a project as a JSON document that import_project accepts",
	}, t.exportProject)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "import_project",
		Description: "Create a new current project from an exported document",
	}, t.importProject)
}

func (t *tools) createProject(ctx context.Context, _ *sdkmcp.CallToolRequest, in CreateProjectParams) (*sdkmcp.CallToolResult, any, error) {
	p, err := t.store.CreateProject(ctx, in.Name)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(projectResponse(p, t.store.CurrentID()))
}

func (t *tools) listProjects(_ context.Context, _ *sdkmcp.CallToolRequest, _ ListProjectsParams) (*sdkmcp.CallToolResult, any, error) {
	return jsonResult(ProjectListResponse{
		CurrentProjectID: t.store.CurrentID(),
		Projects:         t.store.List(),
	})
}

func (t *tools) getProject(_ context.Context, _ *sdkmcp.CallToolRequest, in ProjectIDParams) (*sdkmcp.CallToolResult, any, error) {
	p, err := t.store.Get(in.ProjectID)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(projectResponse(p, t.store.CurrentID()))
}

func (t *tools) switchProject(ctx context.Context, _ *sdkmcp.CallToolRequest, in SwitchProjectParams) (*sdkmcp.CallToolResult, any, error) {
	if strings.TrimSpace(in.ProjectID) == "" {
		return errorResult(project.ErrProjectNotFound)
	}
	p, err := t.store.SwitchProject(ctx, in.ProjectID)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(projectResponse(p, p.ID))
}

func (t *tools) deleteProject(ctx context.Context, _ *sdkmcp.CallToolRequest, in DeleteProjectParams) (*sdkmcp.CallToolResult, any, error) {
	if strings.TrimSpace(in.ProjectID) == "" {
		return errorResult(project.ErrProjectNotFound)
	}
	if err := t.store.DeleteProject(ctx, in.ProjectID); err != nil {
		return errorResult(err)
	}
	return jsonResult(StatusResponse{Status: project.Success("Project deleted.")})
}

func (t *tools) generateChecklist(ctx context.Context, _ *sdkmcp.CallToolRequest, in GenerateChecklistParams) (*sdkmcp.CallToolResult, any, error) {
	base, err := t.store.Get(in.ProjectID)
	if err != nil {
		return errorResult(err)
	}

	cfg := base.Config
	if in.ModelName != "" {
		cfg.ModelName = in.ModelName
	}
	if in.SystemPrompt != "" {
		cfg.SystemPrompt = in.SystemPrompt
	}
	if in.Temperature != nil {
		cfg.Temperature = *in.Temperature
	}
	if in.MaxTokens > 0 {
		cfg.MaxTokens = in.MaxTokens
	}
	if in.TopP != nil {
		cfg.TopP = *in.TopP
	}
	stage := in.ProjectStage
	if stage == "" {
		stage = base.ProjectStage
	}

	p, err := t.store.GenerateChecklist(ctx, base.ID, project.GenerateInput{
		ResearchPlan: in.ResearchPlan,
		ProjectStage: stage,
		Config:       cfg,
	})
	if err != nil {
		t.logger.Warn("generate_checklist failed", "project_id", base.ID, "error", err)
		return errorResult(err)
	}
	return jsonResult(projectResponse(p, t.store.CurrentID()))
}

func (t *tools) addItem(ctx context.Context, _ *sdkmcp.CallToolRequest, in AddItemParams) (*sdkmcp.CallToolResult, any, error) {
	it, err := t.store.AddCustomItem(ctx, in.ProjectID, in.Text, in.Category)
	if err != nil {
		return errorResult(err)
	}
	p, err := t.store.Get(in.ProjectID)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(ItemResponse{
		ProjectID: p.ID,
		Item:      *it,
		Version:   p.Version,
		Status:    project.Success("Custom item added."),
	})
}

func (t *tools) toggleItem(ctx context.Context, _ *sdkmcp.CallToolRequest, in ItemParams) (*sdkmcp.CallToolResult, any, error) {
	return t.mutate(ctx, in.ProjectID, in.ItemID, project.Toggle{}, "Item updated.")
}

func (t *tools) editNotes(ctx context.Context, _ *sdkmcp.CallToolRequest, in NotesParams) (*sdkmcp.CallToolResult, any, error) {
	return t.mutate(ctx, in.ProjectID, in.ItemID, project.EditNotes{Notes: in.Notes}, "Notes saved as draft.")
}

func (t *tools) commitNotes(ctx context.Context, _ *sdkmcp.CallToolRequest, in NotesParams) (*sdkmcp.CallToolResult, any, error) {
	return t.mutate(ctx, in.ProjectID, in.ItemID, project.CommitNotes{Notes: in.Notes}, "Notes recorded.")
}

func (t *tools) logChange(ctx context.Context, _ *sdkmcp.CallToolRequest, in LogChangeParams) (*sdkmcp.CallToolResult, any, error) {
	return t.mutate(ctx, in.ProjectID, in.ItemID, project.LogMessage{Message: in.Message}, "Change logged.")
}

func (t *tools) removeItem(ctx context.Context, _ *sdkmcp.CallToolRequest, in ItemParams) (*sdkmcp.CallToolResult, any, error) {
	p, err := t.store.MutateItem(ctx, in.ProjectID, in.ItemID, project.Remove{})
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(projectResponse(p, t.store.CurrentID()))
}

func (t *tools) mutate(ctx context.Context, projectID, itemID string, m project.Mutation, done string) (*sdkmcp.CallToolResult, any, error) {
	p, err := t.store.MutateItem(ctx, projectID, itemID, m)
	if err != nil {
		return errorResult(err)
	}
	for _, it := range p.Checklist {
		if it.ID == itemID {
			return jsonResult(ItemResponse{
				ProjectID: p.ID,
				Item:      it,
				Version:   p.Version,
				Status:    project.Success(done),
			})
		}
	}
	return errorResult(project.ErrItemNotFound)
}

func (t *tools) listEvents(_ context.Context, _ *sdkmcp.CallToolRequest, in ProjectIDParams) (*sdkmcp.CallToolResult, any, error) {
	p, err := t.store.Get(in.ProjectID)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(EventsResponse{ProjectID: p.ID, Events: timeline.Sorted(p.Timeline)})
}

func (t *tools) exportTimeline(_ context.Context, _ *sdkmcp.CallToolRequest, in ExportTimelineParams) (*sdkmcp.CallToolResult, any, error) {
	events, err := t.store.ListEvents(in.ProjectID)
	if err != nil {
		return errorResult(err)
	}
	switch strings.ToLower(in.Format) {
	case "", "json":
		data, err := timeline.ExportJSON(events)
		if err != nil {
			return errorResult(err)
		}
		return jsonResult(ExportResponse{FileName: "timeline.json", Format: "json", Content: data})
	case "md", "markdown":
		return jsonResult(ExportResponse{FileName: "timeline.md", Format: "markdown", Text: timeline.ExportMarkdown(events)})
	default:
		return errorResult(fmt.Errorf("%w: unknown format %q", errUnsupportedFormat, in.Format))
	}
}

func (t *tools) exportProject(_ context.Context, _ *sdkmcp.CallToolRequest, in ProjectIDParams) (*sdkmcp.CallToolResult, any, error) {
	data, err := t.store.ExportProject(in.ProjectID)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(ExportResponse{
		FileName: project.ExportFileName(time.Now()),
		Format:   "project",
		Content:  data,
	})
}

func (t *tools) importProject(ctx context.Context, _ *sdkmcp.CallToolRequest, in ImportProjectParams) (*sdkmcp.CallToolResult, any, error) {
	var data []byte
	switch doc := in.Project.(type) {
	case nil:
		return errorResult(fmt.Errorf("%w: missing project document", project.ErrInvalidImport))
	case string:
		data = []byte(doc)
	default:
		encoded, err := json.Marshal(doc)
		if err != nil {
			return errorResult(fmt.Errorf("%w: %v", project.ErrInvalidImport, err))
		}
		data = encoded
	}
	p, err := t.store.ImportProject(ctx, in.Name, data)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(projectResponse(p, t.store.CurrentID()))
}

func jsonResult(v any) (*sdkmcp.CallToolResult, any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding tool result: %w", err)
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}, nil, nil
}

func errorResult(err error) (*sdkmcp.CallToolResult, any, error) {
	data, _ := json.Marshal(MapError(err))
	return &sdkmcp.CallToolResult{
		IsError: true,
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}, nil, nil
}
