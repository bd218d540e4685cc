package functional_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/genai-tracker/internal/domain/checklist"
	"github.com/rpggio/genai-tracker/internal/domain/project"
	"github.com/rpggio/genai-tracker/internal/sqlite"
	"github.com/rpggio/genai-tracker/internal/testserver"
	"github.com/stretchr/testify/require"
)

const researchPlan = "We evaluate retrieval-augmented answers for a medical FAQ assistant."

const generatedChecklist = `Here is the checklist:
{"items":[
  {"text":"Document the evaluation dataset","category":"Data"},
  {"text":"Define accuracy and hallucination metrics","category":"Evaluation"}
]}`

type projectDoc struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Version   int64  `json:"version"`
	Checklist []struct {
		ID       string `json:"id"`
		Text     string `json:"text"`
		Category string `json:"category"`
		Checked  bool   `json:"checked"`
	} `json:"checklist"`
	Timeline []struct {
		ItemID  string `json:"itemId"`
		Message string `json:"message"`
	} `json:"timeline"`
}

// callTool makes a tools/call and unwraps the JSON text content.
func callTool(t *testing.T, session *sdkmcp.ClientSession, name string, args map[string]any) json.RawMessage {
	t.Helper()
	if args == nil {
		args = map[string]any{}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := session.CallTool(ctx, &sdkmcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err, "CallTool %s failed", name)
	require.NotEmpty(t, result.Content, "Tool %s returned no content", name)
	text, ok := result.Content[0].(*sdkmcp.TextContent)
	require.True(t, ok, "Tool %s returned no text content", name)
	require.False(t, result.IsError, "Tool %s error: %s", name, text.Text)
	return json.RawMessage(text.Text)
}

func TestFunctional_Authentication(t *testing.T) {
	ts := testserver.New(t, "token", nil)

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+"/mcp", bytes.NewBufferString(`{"jsonrpc":"2.0","method":"tools/call","params":{"name":"list_projects"},"id":1}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestFunctional_ChecklistWorkflow(t *testing.T) {
	ts := testserver.New(t, "token", &testserver.Generator{Raw: generatedChecklist})
	session := ts.Connect(t)

	var created projectDoc
	require.NoError(t, json.Unmarshal(callTool(t, session, "create_project", map[string]any{"name": "FAQ Assistant"}), &created))
	require.NotEmpty(t, created.ID)

	var generated projectDoc
	require.NoError(t, json.Unmarshal(callTool(t, session, "generate_checklist", map[string]any{
		"research_plan": researchPlan,
		"project_stage": "pilot",
	}), &generated))
	require.Equal(t, created.ID, generated.ID)
	require.Len(t, generated.Checklist, 2+len(checklist.StaticItems()))
	require.Equal(t, "Data", generated.Checklist[0].Category)

	itemID := generated.Checklist[0].ID
	_ = callTool(t, session, "toggle_item", map[string]any{"item_id": itemID})
	_ = callTool(t, session, "log_change", map[string]any{"item_id": itemID, "message": "Dataset card written"})

	var events struct {
		Events []struct {
			ItemID  string `json:"itemId"`
			Message string `json:"message"`
		} `json:"events"`
	}
	require.NoError(t, json.Unmarshal(callTool(t, session, "list_events", nil), &events))
	require.Len(t, events.Events, 2)
	for _, ev := range events.Events {
		require.Equal(t, itemID, ev.ItemID)
	}

	// A fresh store over the same database sees the persisted state.
	reloaded := project.NewStore(sqlite.NewStateRepository(sqlite.NewKVStore(ts.DB)), nil, nil)
	reloaded.Load(context.Background())
	p, err := reloaded.Current()
	require.NoError(t, err)
	require.Equal(t, created.ID, p.ID)
	require.True(t, p.Checklist[0].Checked)
	require.Len(t, p.Timeline, 2)
}

func TestFunctional_ExportImportRoundTrip(t *testing.T) {
	ts := testserver.New(t, "token", &testserver.Generator{Raw: generatedChecklist})
	session := ts.Connect(t)

	_ = callTool(t, session, "create_project", map[string]any{"name": "Source"})
	_ = callTool(t, session, "generate_checklist", map[string]any{"research_plan": researchPlan})

	var exported struct {
		FileName string          `json:"file_name"`
		Content  json.RawMessage `json:"content"`
	}
	require.NoError(t, json.Unmarshal(callTool(t, session, "export_project", nil), &exported))
	require.NotEmpty(t, exported.FileName)

	var imported projectDoc
	require.NoError(t, json.Unmarshal(callTool(t, session, "import_project", map[string]any{
		"name":    "Copy",
		"project": string(exported.Content),
	}), &imported))
	require.Equal(t, "Copy", imported.Name)
	require.Len(t, imported.Checklist, 2+len(checklist.StaticItems()))

	var list struct {
		Projects []struct {
			ID string `json:"id"`
		} `json:"projects"`
	}
	require.NoError(t, json.Unmarshal(callTool(t, session, "list_projects", nil), &list))
	require.Len(t, list.Projects, 2)
}

func TestFunctional_GenerationFailureKeepsProject(t *testing.T) {
	ts := testserver.New(t, "", &testserver.Generator{Err: project.ErrGenerationFailed})
	session := ts.Connect(t)

	var created projectDoc
	require.NoError(t, json.Unmarshal(callTool(t, session, "create_project", map[string]any{"name": "Stable"}), &created))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	result, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "generate_checklist",
		Arguments: map[string]any{"research_plan": researchPlan},
	})
	require.NoError(t, err)
	require.True(t, result.IsError)

	p, err := ts.Store.Get(created.ID)
	require.NoError(t, err)
	require.Equal(t, created.Version, p.Version)
	require.Empty(t, p.Checklist)
}
