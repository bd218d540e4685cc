package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `genai-tracker keeps a reproducibility checklist and a change timeline per GenAI research project.

Core concepts:
- Project: a named checklist plus its timeline. One project is current; tools default to it when project_id is omitted.
- Item: a trackable requirement (id, text, category, checked, draft notes, change history).
- Timeline: append-only events (timestamp, item id, item text snapshot, message), listed newest first.
- Version: increments on every mutation; the browser extension mirror uses it to drop stale snapshots.

Default workflow:
1) Orient: list_projects, then get_project (or create_project).
2) Generate: generate_checklist with a research plan of at least 25 characters. This replaces the checklist and resets the timeline.
3) Track: toggle_item, log_change, edit_notes + commit_notes, add_item, remove_item. Every recorded change lands in the timeline.
4) Report: list_events, export_timeline (json or markdown), export_project / import_project.

Docs:
- tracker://docs/index
- tracker://docs/concepts
- tracker://docs/workflows/tracking
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "tracker://docs/index",
		Name:        "docs_index",
		Title:       "genai-tracker docs index",
		Description: "Entry point: the tool surface and which doc to read next.",
		Content: `# genai-tracker: Agent Docs Index

## Quick start

1. ` + "`list_projects`" + ` to see what exists and which project is current.
2. ` + "`create_project`" + ` if there is none; it becomes current.
3. ` + "`generate_checklist`" + ` with the research plan.
4. Track progress with the item tools.

## Docs

- ` + "`tracker://docs/concepts`" + ` - checklist, static items, timeline and versions.
- ` + "`tracker://docs/workflows/tracking`" + ` - recording changes so the timeline stays useful.

## Limitations

- Generation needs an API key on the server; without one ` + "`generate_checklist`" + ` fails with GENERATION_FAILED and the project is untouched.
- Draft notes (` + "`edit_notes`" + `) are not recorded until ` + "`commit_notes`" + `.
`,
	},
	{
		URI:         "tracker://docs/concepts",
		Name:        "docs_concepts",
		Title:       "Concepts",
		Description: "Checklist structure, static tracking items, timeline semantics and version stamps.",
		Content: `# Concepts

## Checklist

A generated checklist holds the model's items (ids ` + "`item-*`" + `) followed by seven static
"Reproducibility Tracking" items (ids ` + "`static-*`" + `). Custom items (` + "`custom-*`" + `) are added at the top.
Items without a category are filed under "General".

If the model's answer cannot be read, a two-item default checklist is used instead.

## Timeline

Each recorded change appends an event and a matching entry in the item's own change history.
Event item text is a snapshot: renaming or removing the item later does not rewrite history.
Regenerating a checklist starts a fresh timeline.

## Versions

Every mutation increments the project version. The extension mirror sends snapshots back with
the version it saw; older snapshots are rejected.
`,
	},
	{
		URI:         "tracker://docs/workflows/tracking",
		Name:        "docs_workflow_tracking",
		Title:       "Workflow: tracking changes",
		Description: "How to record experiment changes against checklist items.",
		Content: `# Workflow: tracking changes

- Completing a requirement: ` + "`toggle_item`" + ` records "Item completed" (or "Item uncompleted").
- Changing a prompt, model or parameter: ` + "`log_change`" + ` on the matching static item with a short message.
- Longer notes: ` + "`edit_notes`" + ` while drafting, then ` + "`commit_notes`" + `. Blank notes record nothing.
- Dropping a requirement: ` + "`remove_item`" + `; the timeline keeps "Item removed from checklist".

When done, ` + "`export_timeline`" + ` with format markdown gives a report suitable for a paper appendix.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
