package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/rpggio/genai-tracker/internal/domain/project"
	"github.com/rpggio/genai-tracker/internal/extension"
	"github.com/spf13/cobra"
)

func newExtensionCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extension",
		Short: "Edit the extension's mirrored project",
		Long: `Extension commands act on the extension storage area, like the browser popup.
A running extension bridge sends each change back to the tracker.`,
	}
	cmd.AddCommand(newExtensionShowCmd(app))
	cmd.AddCommand(newExtensionToggleCmd(app))
	cmd.AddCommand(newExtensionLogCmd(app))
	return cmd
}

func newExtensionShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the mirrored project",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := app.Mirror()
			if err != nil {
				return err
			}
			st, err := m.State(cmd.Context())
			if err != nil {
				return err
			}
			return writeOut(cmd, app, st, func(w io.Writer) {
				renderMarkdown(w, mirrorMarkdown(st), app.Width)
			})
		},
	}
}

func newExtensionToggleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <item-id>",
		Short: "Flip a mirrored item's checked state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := app.Mirror()
			if err != nil {
				return err
			}
			st, err := m.Toggle(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeOut(cmd, app, st, func(w io.Writer) {
				printStatus(w, project.Success("Item updated."))
			})
		},
	}
}

func newExtensionLogCmd(app *App) *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "log <item-id>",
		Short: "Log a change against a mirrored item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := app.Mirror()
			if err != nil {
				return err
			}
			st, err := m.LogChange(cmd.Context(), args[0], message)
			if err != nil {
				return err
			}
			return writeOut(cmd, app, st, func(w io.Writer) {
				printStatus(w, project.Success("Change logged."))
			})
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "Change details")
	return cmd
}

func mirrorMarkdown(st extension.MirrorState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", st.ProjectName())
	if st.ProjectID() == "" {
		return b.String()
	}
	done := 0
	for _, it := range st.Checklist {
		if it.Checked {
			done++
		}
	}
	fmt.Fprintf(&b, "%d of %d items complete.\n\n", done, len(st.Checklist))
	for _, it := range st.Checklist {
		mark := " "
		if it.Checked {
			mark = "x"
		}
		fmt.Fprintf(&b, "- [%s] %s `%s`\n", mark, it.Text, it.ID)
	}
	return b.String()
}
