package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/rpggio/genai-tracker/internal/domain/checklist"
	"github.com/rpggio/genai-tracker/internal/domain/project"
	"github.com/spf13/cobra"
)

func newItemsCmd(app *App) *cobra.Command {
	var projectID string

	cmd := &cobra.Command{
		Use:     "items",
		Aliases: []string{"item"},
		Short:   "Checklist item commands",
	}
	cmd.PersistentFlags().StringVar(&projectID, "project", "", "Project ID (default: current project)")

	cmd.AddCommand(newItemsAddCmd(app, &projectID))
	cmd.AddCommand(newItemMutationCmd(app, &projectID, "toggle <item-id>", "Flip an item's checked state",
		func([]string) project.Mutation { return project.Toggle{} }, "Item updated."))
	cmd.AddCommand(newItemsCommitCmd(app, &projectID))
	cmd.AddCommand(newItemsLogCmd(app, &projectID))
	cmd.AddCommand(newItemMutationCmd(app, &projectID, "remove <item-id>", "Remove an item from the checklist",
		func([]string) project.Mutation { return project.Remove{} }, "Item removed."))
	return cmd
}

func newItemsAddCmd(app *App, projectID *string) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a custom item at the top of the checklist",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tracker, err := app.Tracker(cmd.Context())
			if err != nil {
				return err
			}
			it, err := tracker.AddCustomItem(cmd.Context(), *projectID, strings.Join(args, " "), category)
			if err != nil {
				return err
			}
			return writeOut(cmd, app, it, func(w io.Writer) {
				printStatus(w, project.Success(fmt.Sprintf("Custom item added (%s).", it.ID)))
			})
		},
	}

	cmd.Flags().StringVar(&category, "category", checklist.DefaultCategory, "Item category")
	return cmd
}

func newItemsCommitCmd(app *App, projectID *string) *cobra.Command {
	return newItemMutationCmd(app, projectID, "commit <item-id> <notes>", "Record notes for an item in the timeline",
		func(args []string) project.Mutation {
			return project.CommitNotes{Notes: strings.Join(args[1:], " ")}
		}, "Notes recorded.", cobra.MinimumNArgs(2))
}

func newItemsLogCmd(app *App, projectID *string) *cobra.Command {
	var message string

	cmd := newItemMutationCmd(app, projectID, "log <item-id>", "Record a change against an item",
		func([]string) project.Mutation { return project.LogMessage{Message: message} }, "Change logged.")
	cmd.Flags().StringVarP(&message, "message", "m", "", "Change description")
	return cmd
}

// newItemMutationCmd builds a command applying one mutation to the item named
// by the first argument.
func newItemMutationCmd(app *App, projectID *string, use, short string, build func(args []string) project.Mutation, done string, validators ...cobra.PositionalArgs) *cobra.Command {
	validate := cobra.ExactArgs(1)
	if len(validators) > 0 {
		validate = validators[0]
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  validate,
		RunE: func(cmd *cobra.Command, args []string) error {
			tracker, err := app.Tracker(cmd.Context())
			if err != nil {
				return err
			}
			p, err := tracker.MutateItem(cmd.Context(), *projectID, args[0], build(args))
			if err != nil {
				return err
			}
			return writeOut(cmd, app, p, func(w io.Writer) {
				printStatus(w, project.Success(done))
			})
		},
	}
}
