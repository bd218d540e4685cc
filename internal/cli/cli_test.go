package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/rpggio/genai-tracker/internal/cli"
	"github.com/rpggio/genai-tracker/internal/config"
	"github.com/rpggio/genai-tracker/internal/domain/checklist"
	"github.com/rpggio/genai-tracker/internal/domain/project"
	"github.com/rpggio/genai-tracker/internal/domain/timeline"
	"github.com/rpggio/genai-tracker/internal/extension"
	"github.com/rpggio/genai-tracker/internal/generate"
	"github.com/rpggio/genai-tracker/internal/repository/mocks"
	"github.com/rpggio/genai-tracker/internal/testserver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const plan = "We compare chain-of-thought prompting against direct answers on a math benchmark."

func newApp(t *testing.T) (*cli.App, *mocks.Generator) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.DB.Path = filepath.Join(dir, "tracker.db")
	cfg.Extension.Dir = filepath.Join(dir, "extension")

	gen := &mocks.Generator{}
	app := cli.NewApp(cfg)
	app.Generator = gen
	app.Logger = slog.New(slog.DiscardHandler)
	return app, gen
}

func run(t *testing.T, app *cli.App, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCmd(app)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	app.Close()
	return out.String(), err
}

func runJSON(t *testing.T, app *cli.App, v any, args ...string) {
	t.Helper()
	out, err := run(t, app, append(args, "--json")...)
	require.NoError(t, err, "tracker %v", args)
	require.NoError(t, json.Unmarshal([]byte(out), v), out)
}

func TestProjectsAndItems(t *testing.T) {
	app, _ := newApp(t)

	var p project.Project
	runJSON(t, app, &p, "projects", "create", "Math", "eval")
	assert.Equal(t, "Math eval", p.Name)

	var list []project.Summary
	runJSON(t, app, &list, "projects", "list")
	require.Len(t, list, 1)
	assert.True(t, list[0].Current)

	var it checklist.Item
	runJSON(t, app, &it, "items", "add", "Pin", "random", "seeds", "--category", "Training")
	assert.Equal(t, "Pin random seeds", it.Text)
	assert.Equal(t, "Training", it.Category)

	var toggled project.Project
	runJSON(t, app, &toggled, "items", "toggle", it.ID)
	require.Len(t, toggled.Checklist, 1)
	assert.True(t, toggled.Checklist[0].Checked)

	runJSON(t, app, &toggled, "items", "log", it.ID, "-m", "Seed 42 everywhere")
	runJSON(t, app, &toggled, "items", "commit", it.ID, "numpy", "and", "torch")

	var events []timeline.Event
	runJSON(t, app, &events, "timeline")
	require.Len(t, events, 4)
	messages := []string{events[0].Message, events[1].Message, events[2].Message, events[3].Message}
	assert.ElementsMatch(t, []string{
		timeline.MessageAdded,
		timeline.MessageCompleted,
		"Seed 42 everywhere",
		`Notes updated: "numpy and torch"`,
	}, messages)

	_, err := run(t, app, "items", "log", it.ID, "-m", "  ")
	require.ErrorIs(t, err, project.ErrEmptyMessage)

	_, err = run(t, app, "items", "toggle", "missing")
	require.ErrorIs(t, err, project.ErrItemNotFound)

	var removed project.Project
	runJSON(t, app, &removed, "items", "remove", it.ID)
	assert.Empty(t, removed.Checklist)
	assert.Len(t, removed.Timeline, 5)

	out, err := run(t, app, "projects", "delete", p.ID)
	require.Error(t, err)
	assert.Empty(t, out)

	out, err = run(t, app, "projects", "delete", p.ID, "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted")

	_, err = run(t, app, "projects", "show")
	require.ErrorIs(t, err, project.ErrNoCurrentProject)
}

func TestProjectsSwitchAndShow(t *testing.T) {
	app, _ := newApp(t)

	var first, second project.Project
	runJSON(t, app, &first, "projects", "create", "First")
	runJSON(t, app, &second, "projects", "create", "Second")

	out, err := run(t, app, "projects", "switch", first.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "First")

	_, err = run(t, app, "items", "add", "Track tokenizer version")
	require.NoError(t, err)

	out, err = run(t, app, "projects", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Track tokenizer version")
	assert.Contains(t, out, checklist.DefaultCategory)

	_, err = run(t, app, "projects", "switch", "nope")
	require.ErrorIs(t, err, project.ErrProjectNotFound)
}

func TestGenerate(t *testing.T) {
	app, gen := newApp(t)
	var p project.Project
	runJSON(t, app, &p, "projects", "create", "Gen")

	gen.On("Generate", mock.Anything, mock.MatchedBy(func(req generate.Request) bool {
		return req.ProjectStage == "pilot" && req.Config.Temperature == 0.3
	})).Return(&generate.Response{
		Checklist: json.RawMessage(`{"items":[{"category":"Evaluation","text":"Fix the benchmark split"}]}`),
	}, nil).Once()

	var generated project.Project
	runJSON(t, app, &generated, "generate", "--plan", plan, "--stage", "pilot", "--temperature", "0.3")
	require.Len(t, generated.Checklist, 1+len(checklist.StaticItems()))
	assert.Equal(t, "Fix the benchmark split", generated.Checklist[0].Text)
	assert.Equal(t, plan, generated.ResearchPlan)

	_, err := run(t, app, "generate", "--plan", "short")
	require.ErrorIs(t, err, project.ErrInvalidPlan)
	assert.Equal(t, "Please provide at least a few sentences describing your project.", project.StatusFor(err).Message)

	planFile := filepath.Join(t.TempDir(), "plan.md")
	require.NoError(t, os.WriteFile(planFile, []byte(plan), 0o644))
	gen.On("Generate", mock.Anything, mock.Anything).Return(nil, &generate.APIError{StatusCode: 502, Message: "upstream"}).Once()
	_, err = run(t, app, "generate", "--plan-file", planFile)
	require.ErrorIs(t, err, project.ErrGenerationFailed)

	var after project.Project
	runJSON(t, app, &after, "projects", "show")
	assert.Equal(t, generated.Checklist, after.Checklist)
	gen.AssertExpectations(t)
}

func TestExportImportAndTimelineExport(t *testing.T) {
	app, _ := newApp(t)
	var p project.Project
	runJSON(t, app, &p, "projects", "create", "Source")
	var it checklist.Item
	runJSON(t, app, &it, "items", "add", "Archive prompts")
	_, err := run(t, app, "items", "toggle", it.ID)
	require.NoError(t, err)

	md, err := run(t, app, "timeline", "export", "--format", "md")
	require.NoError(t, err)
	assert.Contains(t, md, "Archive prompts")
	assert.Contains(t, md, timeline.MessageCompleted)

	raw, err := run(t, app, "timeline", "export")
	require.NoError(t, err)
	var events []timeline.Event
	require.NoError(t, json.Unmarshal([]byte(raw), &events))
	require.Len(t, events, 2)
	assert.Equal(t, timeline.MessageAdded, events[0].Message)

	_, err = run(t, app, "timeline", "export", "--format", "pdf")
	require.Error(t, err)

	file := filepath.Join(t.TempDir(), "export.json")
	_, err = run(t, app, "export", "-o", file)
	require.NoError(t, err)

	var imported project.Project
	runJSON(t, app, &imported, "import", file, "--name", "Copy")
	assert.Equal(t, "Copy", imported.Name)
	assert.NotEqual(t, p.ID, imported.ID)
	require.Len(t, imported.Checklist, 1)
	assert.Equal(t, it.ID, imported.Checklist[0].ID)
	assert.Len(t, imported.Timeline, 2)

	var list []project.Summary
	runJSON(t, app, &list, "projects", "list")
	assert.Len(t, list, 2)
}

func TestExtensionCommands(t *testing.T) {
	app, _ := newApp(t)

	_, err := run(t, app, "extension", "toggle", "item-1")
	require.ErrorIs(t, err, extension.ErrNoProject)

	id, name := "proj-1", "Mirrored"
	seed := extension.MirrorState{
		CurrentProjectID:   &id,
		CurrentProjectName: &name,
		Checklist: []checklist.Item{
			{ID: "item-1", Text: "Log prompt versions", Category: "Prompts", Changes: []checklist.Change{}},
		},
		Timeline: []timeline.Event{},
		Version:  3,
	}
	data, err := json.Marshal(seed)
	require.NoError(t, err)
	area, err := extension.NewArea(app.ExtensionDir)
	require.NoError(t, err)
	require.NoError(t, area.Put(context.Background(), extension.StateKey, data))

	var st extension.MirrorState
	runJSON(t, app, &st, "extension", "toggle", "item-1")
	assert.True(t, st.Checklist[0].Checked)
	assert.EqualValues(t, 4, st.Version)

	runJSON(t, app, &st, "extension", "log", "item-1", "-m", "Prompt v2")
	require.Len(t, st.Timeline, 2)
	assert.Equal(t, "Prompt v2", st.Timeline[1].Message)

	_, err = run(t, app, "extension", "log", "item-1", "-m", "")
	require.ErrorIs(t, err, extension.ErrEmptyMessage)

	out, err := run(t, app, "extension", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Mirrored")
	assert.Contains(t, out, "1 of 1 items complete")
}

func TestExecuteExitCode(t *testing.T) {
	app, _ := newApp(t)
	assert.Equal(t, 0, cli.Execute(context.Background(), app, []string{"projects", "list"}))
	assert.Equal(t, 1, cli.Execute(context.Background(), app, []string{"projects", "switch", "nope"}))
}

func TestCommandsDriveRunningServer(t *testing.T) {
	ts := testserver.New(t, "secret", &testserver.Generator{
		Raw: `{"items":[{"category":"Evaluation","text":"Fix the benchmark split"}]}`,
	})
	b := &mocks.Broadcaster{}
	b.On("Broadcast", mock.Anything, mock.Anything).Return(nil)
	ts.Store.SetBroadcaster(b)

	app, gen := newApp(t)
	app.ServerURL = ts.Server.URL
	app.Config.Server.Token = "secret"

	var p project.Project
	runJSON(t, app, &p, "projects", "create", "Remote")
	var it checklist.Item
	runJSON(t, app, &it, "items", "add", "Record the decoding settings")
	var toggled project.Project
	runJSON(t, app, &toggled, "items", "toggle", it.ID)
	require.True(t, toggled.Checklist[0].Checked)

	// The server's store holds the writes and broadcast each one.
	got, err := ts.Store.Get(p.ID)
	require.NoError(t, err)
	require.Len(t, got.Timeline, 2)
	assert.Equal(t, p.ID, ts.Store.CurrentID())
	b.AssertNumberOfCalls(t, "Broadcast", 3)

	var generated project.Project
	runJSON(t, app, &generated, "generate", "--plan", plan)
	require.Len(t, generated.Checklist, 1+len(checklist.StaticItems()))
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)

	var events []timeline.Event
	runJSON(t, app, &events, "timeline")
	assert.Empty(t, events)

	_, err = run(t, app, "projects", "switch", "nope")
	require.ErrorIs(t, err, project.ErrProjectNotFound)
	assert.Equal(t, "Project not found.", project.StatusFor(err).Message)

	_, err = run(t, app, "generate", "--plan", "short")
	require.ErrorIs(t, err, project.ErrInvalidPlan)

	// The local database was never opened.
	_, err = os.Stat(app.DBPath)
	assert.True(t, os.IsNotExist(err))

	app.Config.Server.Token = "wrong"
	_, err = run(t, app, "projects", "list")
	require.Error(t, err)
	assert.Equal(t, "invalid bearer token", project.StatusFor(err).Message)
}
