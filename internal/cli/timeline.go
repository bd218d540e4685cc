package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rpggio/genai-tracker/internal/domain/project"
	"github.com/rpggio/genai-tracker/internal/domain/timeline"
	"github.com/spf13/cobra"
)

func newTimelineCmd(app *App) *cobra.Command {
	var projectID string

	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Show or export a project's change timeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			tracker, err := app.Tracker(cmd.Context())
			if err != nil {
				return err
			}
			p, err := tracker.Get(cmd.Context(), projectID)
			if err != nil {
				return err
			}
			events := timeline.Sorted(p.Timeline)
			return writeOut(cmd, app, events, func(w io.Writer) {
				renderMarkdown(w, timelineMarkdown(p.Name, events), app.Width)
			})
		},
	}
	cmd.PersistentFlags().StringVar(&projectID, "project", "", "Project ID (default: current project)")

	cmd.AddCommand(newTimelineExportCmd(app, &projectID))
	return cmd
}

func newTimelineExportCmd(app *App, projectID *string) *cobra.Command {
	var (
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the timeline as JSON or Markdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			tracker, err := app.Tracker(cmd.Context())
			if err != nil {
				return err
			}
			events, err := tracker.ListEvents(cmd.Context(), *projectID)
			if err != nil {
				return err
			}

			var data []byte
			switch format {
			case "json":
				data, err = timeline.ExportJSON(events)
				if err != nil {
					return err
				}
			case "md", "markdown":
				data = []byte(timeline.ExportMarkdown(events))
			default:
				return fmt.Errorf("unknown format %q (want json or md)", format)
			}
			return writeFile(cmd, out, data)
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "Export format (json|md)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write to a file instead of stdout")
	return cmd
}

func newExportCmd(app *App) *cobra.Command {
	var (
		projectID string
		out       string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a project as a JSON document",
		RunE: func(cmd *cobra.Command, args []string) error {
			tracker, err := app.Tracker(cmd.Context())
			if err != nil {
				return err
			}
			data, err := tracker.ExportProject(cmd.Context(), projectID)
			if err != nil {
				return err
			}
			if out == "." {
				out = project.ExportFileName(time.Now())
			}
			if err := writeFile(cmd, out, data); err != nil {
				return err
			}
			if out != "" {
				printStatus(cmd.ErrOrStderr(), project.Success("✓ Checklist exported as JSON"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "Project ID (default: current project)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (\".\" picks genai-project-<ms>.json)")
	return cmd
}

func newImportCmd(app *App) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Create a project from an exported document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read project file: %w", err)
			}
			tracker, err := app.Tracker(cmd.Context())
			if err != nil {
				return err
			}
			p, err := tracker.ImportProject(cmd.Context(), name, data)
			if err != nil {
				return err
			}
			return writeOut(cmd, app, p, func(w io.Writer) {
				printStatus(w, project.Success(fmt.Sprintf("Project %q imported (%s).", p.Name, p.ID)))
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Project name (default: the exported name)")
	return cmd
}

func writeFile(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
