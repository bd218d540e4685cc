package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/rpggio/genai-tracker/internal/domain/project"
	"github.com/spf13/cobra"
)

func newGenerateCmd(app *App) *cobra.Command {
	var (
		projectID    string
		plan         string
		planFile     string
		stage        string
		modelName    string
		systemPrompt string
		temperature  float64
		maxTokens    int
		topP         float64
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a checklist from a research plan",
		Long: `Generate asks the model for a reproducibility checklist for the research plan
and replaces the project's checklist with it, followed by the static tracking
items. The project's timeline starts over. On failure the project is left as it was.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if planFile != "" {
				data, err := os.ReadFile(planFile)
				if err != nil {
					return fmt.Errorf("read plan file: %w", err)
				}
				plan = string(data)
			}

			tracker, err := app.Tracker(cmd.Context())
			if err != nil {
				return err
			}
			base, err := tracker.Get(cmd.Context(), projectID)
			if err != nil {
				return err
			}

			cfg := base.Config
			flags := cmd.Flags()
			if flags.Changed("model") {
				cfg.ModelName = modelName
			}
			if flags.Changed("system-prompt") {
				cfg.SystemPrompt = systemPrompt
			}
			if flags.Changed("temperature") {
				cfg.Temperature = temperature
			}
			if flags.Changed("max-tokens") {
				cfg.MaxTokens = maxTokens
			}
			if flags.Changed("top-p") {
				cfg.TopP = topP
			}
			if !flags.Changed("stage") {
				stage = base.ProjectStage
			}

			fmt.Fprintln(cmd.ErrOrStderr(), project.Info("Generating checklist from your research plan...").Message)
			p, err := tracker.GenerateChecklist(cmd.Context(), base.ID, project.GenerateInput{
				ResearchPlan: plan,
				ProjectStage: stage,
				Config:       cfg,
			})
			if err != nil {
				return err
			}
			return writeOut(cmd, app, p, func(w io.Writer) {
				printStatus(w, project.Success("✓ Checklist generated successfully!"))
				renderMarkdown(w, checklistMarkdown(p), app.Width)
			})
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "Project ID (default: current project)")
	cmd.Flags().StringVar(&plan, "plan", "", "Research plan text")
	cmd.Flags().StringVar(&planFile, "plan-file", "", "Read the research plan from a file")
	cmd.Flags().StringVar(&stage, "stage", "", "Project stage")
	cmd.Flags().StringVar(&modelName, "model", "", "Model name recorded in the project config")
	cmd.Flags().StringVar(&systemPrompt, "system-prompt", "", "Additional system prompt")
	cmd.Flags().Float64Var(&temperature, "temperature", 0.7, "Sampling temperature")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 900, "Completion token limit")
	cmd.Flags().Float64Var(&topP, "top-p", 1, "Nucleus sampling parameter")
	cmd.MarkFlagsMutuallyExclusive("plan", "plan-file")
	return cmd
}
