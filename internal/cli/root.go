package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/rpggio/genai-tracker/internal/client"
	"github.com/rpggio/genai-tracker/internal/config"
	"github.com/rpggio/genai-tracker/internal/domain/project"
	"github.com/rpggio/genai-tracker/internal/extension"
	"github.com/rpggio/genai-tracker/internal/generate"
	"github.com/rpggio/genai-tracker/internal/sqlite"
	"github.com/spf13/cobra"
)

// App holds the settings and lazily opened state shared by all commands.
type App struct {
	Config       config.Config
	ServerURL    string
	DBPath       string
	ExtensionDir string
	JSON         bool
	Width        int

	// Generator overrides the configured checklist generator.
	Generator project.Generator
	Logger    *slog.Logger

	db    *sqlite.DB
	store *project.Store
}

// NewApp creates an App from loaded configuration.
func NewApp(cfg config.Config) *App {
	return &App{
		Config:       cfg,
		ServerURL:    cfg.Server.URL,
		DBPath:       cfg.DB.Path,
		ExtensionDir: cfg.Extension.Dir,
		Width:        80,
	}
}

// NewRootCmd builds the tracker command tree.
func NewRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tracker",
		Short: "Track reproducibility checklists for GenAI research projects",
		Example: strings.TrimSpace(`
  # Create a project and generate its checklist
  tracker projects create "RAG evaluation"
  tracker generate --plan-file plan.md --stage pilot

  # Record progress
  tracker items toggle item-3f9c2a71
  tracker items log static-0b1d --message "Raised temperature to 0.9"

  # Review
  tracker timeline show`),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&app.ServerURL, "server", app.ServerURL, "URL of a running tracker server; empty uses the database directly")
	cmd.PersistentFlags().StringVar(&app.DBPath, "db", app.DBPath, "Path to the tracker database")
	cmd.PersistentFlags().StringVar(&app.ExtensionDir, "extension-dir", app.ExtensionDir, "Extension storage directory")
	cmd.PersistentFlags().BoolVar(&app.JSON, "json", false, "Print JSON instead of text")
	cmd.PersistentFlags().IntVar(&app.Width, "width", app.Width, "Wrap width for rendered Markdown")

	cmd.PersistentPostRun = func(*cobra.Command, []string) {
		app.Close()
	}

	cmd.AddCommand(newProjectsCmd(app))
	cmd.AddCommand(newGenerateCmd(app))
	cmd.AddCommand(newItemsCmd(app))
	cmd.AddCommand(newTimelineCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newImportCmd(app))
	cmd.AddCommand(newExtensionCmd(app))

	return cmd
}

// Execute runs the command tree and reports failures as status messages.
func Execute(ctx context.Context, app *App, args []string) int {
	cmd := NewRootCmd(app)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	app.Close()
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), project.StatusFor(err).Message)
		return 1
	}
	return 0
}

// Tracker returns the project API for the commands. With a server URL the
// commands drive that server's store, so its peers see every change;
// otherwise they open the database directly.
func (a *App) Tracker(ctx context.Context) (Tracker, error) {
	if a.ServerURL != "" {
		return client.New(a.ServerURL, a.Config.Server.Token, a.Config.LLM.Timeout()), nil
	}
	store, err := a.Store(ctx)
	if err != nil {
		return nil, err
	}
	return localTracker{store}, nil
}

// Store opens the database and loads the project store on first use.
func (a *App) Store(ctx context.Context) (*project.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	db, err := sqlite.New(a.DBPath)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	repo := sqlite.NewStateRepository(sqlite.NewKVStore(db))
	store := project.NewStore(repo, a.generator(), a.logger())
	store.Load(ctx)

	a.db = db
	a.store = store
	return store, nil
}

// Mirror opens the extension storage area without a page connection. Edits
// land in storage, where a running extension bridge picks them up.
func (a *App) Mirror() (*extension.Mirror, error) {
	area, err := extension.NewArea(a.ExtensionDir)
	if err != nil {
		return nil, err
	}
	return extension.NewMirror(area, nil, a.logger()), nil
}

// Close releases the database.
func (a *App) Close() {
	if a.db != nil {
		a.db.Close()
		a.db = nil
		a.store = nil
	}
}

func (a *App) generator() project.Generator {
	if a.Generator != nil {
		return a.Generator
	}
	if a.Config.LLM.Endpoint != "" {
		return generate.NewHTTPClient(a.Config.LLM.Endpoint, a.Config.LLM.Timeout())
	}
	return generate.NewClient(a.Config.LLM.ClientConfig(), a.logger())
}

func (a *App) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// writeOut prints v as JSON in --json mode, otherwise runs text.
func writeOut(cmd *cobra.Command, app *App, v any, text func(w io.Writer)) error {
	w := cmd.OutOrStdout()
	if app.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}

func printStatus(w io.Writer, s project.Status) {
	fmt.Fprintln(w, s.Message)
}
