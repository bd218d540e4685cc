package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rpggio/genai-tracker/internal/domain/project"
	"github.com/spf13/cobra"
)

func newProjectsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project"},
		Short:   "Project commands",
	}
	cmd.AddCommand(newProjectsCreateCmd(app))
	cmd.AddCommand(newProjectsListCmd(app))
	cmd.AddCommand(newProjectsShowCmd(app))
	cmd.AddCommand(newProjectsSwitchCmd(app))
	cmd.AddCommand(newProjectsDeleteCmd(app))
	return cmd
}

func newProjectsCreateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a project and make it current",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tracker, err := app.Tracker(cmd.Context())
			if err != nil {
				return err
			}
			p, err := tracker.CreateProject(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return writeOut(cmd, app, p, func(w io.Writer) {
				printStatus(w, project.Success(fmt.Sprintf("Project %q created (%s).", p.Name, p.ID)))
			})
		},
	}
}

func newProjectsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			tracker, err := app.Tracker(cmd.Context())
			if err != nil {
				return err
			}
			summaries, err := tracker.List(cmd.Context())
			if err != nil {
				return err
			}
			return writeOut(cmd, app, summaries, func(w io.Writer) {
				if len(summaries) == 0 {
					printStatus(w, project.Info("No projects yet."))
					return
				}
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "\tID\tNAME\tSTAGE\tDONE\tEVENTS")
				for _, s := range summaries {
					marker := ""
					if s.Current {
						marker = "*"
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d/%d\t%d\n",
						marker, s.ID, s.Name, s.ProjectStage, s.CheckedCount, s.ItemCount, s.EventCount)
				}
				tw.Flush()
			})
		},
	}
}

func newProjectsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show [project-id]",
		Short: "Show a project's checklist (the current project by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tracker, err := app.Tracker(cmd.Context())
			if err != nil {
				return err
			}
			p, err := tracker.Get(cmd.Context(), optionalArg(args))
			if err != nil {
				return err
			}
			return writeOut(cmd, app, p, func(w io.Writer) {
				renderMarkdown(w, checklistMarkdown(p), app.Width)
			})
		},
	}
}

func newProjectsSwitchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "switch <project-id>",
		Short: "Make a project current",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tracker, err := app.Tracker(cmd.Context())
			if err != nil {
				return err
			}
			p, err := tracker.SwitchProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeOut(cmd, app, p, func(w io.Writer) {
				printStatus(w, project.Success(fmt.Sprintf("Switched to %q.", p.Name)))
			})
		},
	}
}

func newProjectsDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <project-id>",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tracker, err := app.Tracker(cmd.Context())
			if err != nil {
				return err
			}
			p, err := tracker.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !yes {
				return fmt.Errorf("refusing to delete %q without --yes", p.Name)
			}
			if err := tracker.DeleteProject(cmd.Context(), p.ID); err != nil {
				return err
			}
			status := project.Success(fmt.Sprintf("Project %q deleted.", p.Name))
			return writeOut(cmd, app, status, func(w io.Writer) {
				printStatus(w, status)
			})
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")
	return cmd
}

func optionalArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
