package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/rpggio/genai-tracker/internal/domain/checklist"
	"github.com/rpggio/genai-tracker/internal/domain/project"
	"github.com/rpggio/genai-tracker/internal/domain/timeline"
)

// renderMarkdown writes content through glamour, falling back to the raw
// Markdown when rendering fails.
func renderMarkdown(w io.Writer, content string, width int) {
	if strings.TrimSpace(content) == "" {
		return
	}
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("notty"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		fmt.Fprint(w, content)
		return
	}
	out, err := r.Render(content)
	if err != nil {
		fmt.Fprint(w, content)
		return
	}
	fmt.Fprintln(w, strings.TrimRight(out, "\n"))
}

// checklistMarkdown renders a project's checklist grouped by category in
// first-seen order.
func checklistMarkdown(p *project.Project) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", p.Name)
	if p.ProjectStage != "" {
		fmt.Fprintf(&b, "Stage: %s\n\n", p.ProjectStage)
	}
	if len(p.Checklist) == 0 {
		b.WriteString("_No checklist yet. Run `tracker generate` to create one._\n")
		return b.String()
	}

	var order []string
	groups := make(map[string][]checklist.Item)
	for _, it := range p.Checklist {
		if _, ok := groups[it.Category]; !ok {
			order = append(order, it.Category)
		}
		groups[it.Category] = append(groups[it.Category], it)
	}
	for _, cat := range order {
		fmt.Fprintf(&b, "## %s\n\n", cat)
		for _, it := range groups[cat] {
			mark := " "
			if it.Checked {
				mark = "x"
			}
			fmt.Fprintf(&b, "- [%s] %s `%s`\n", mark, it.Text, it.ID)
			if it.Notes != "" {
				fmt.Fprintf(&b, "  - draft: %s\n", it.Notes)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// timelineMarkdown renders events newest first under a heading.
func timelineMarkdown(name string, events []timeline.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Timeline: %s\n\n", name)
	if len(events) == 0 {
		b.WriteString("_No changes recorded yet._\n")
		return b.String()
	}
	for _, ev := range timeline.Sorted(events) {
		fmt.Fprintf(&b, "- **%s** %s: %s\n", ev.Timestamp.Local().Format(timeline.TimestampLayout), ev.ItemText, ev.Message)
	}
	return b.String()
}
