package generate

import (
	"encoding/json"
	"fmt"
	"strings"
)

const baseSystemPrompt = `You are an expert in responsible AI and reproducibility. Produce concise, practical reporting checklists tailored to the research plan provided.`

const userPromptTemplate = `Given the research plan below, produce a JSON-only response with a top-level object:
{
  "items": [ { "category": "<short category>", "text": "<actionable requirement (<=280 chars)>" }, ... ]
}

REQUIREMENTS:
1) OUTPUT must be valid JSON and only JSON. Do NOT include any markdown, explanation, or surrounding text.
2) Provide between 6 and 12 actionable checklist items tailored to the research plan.
3) Each item must include a concise "category" and a short "text" field (under 280 characters).
4) Do NOT include the static reproducibility-tracking items (they will be merged client-side).

Context:
- Project stage: %s
- Initial LLM config: %s

Research plan:
%s

Return JSON only.`

// BuildPrompts returns the system and user prompts for a request.
func BuildPrompts(req Request) (system, user string) {
	parts := []string{baseSystemPrompt}
	if s := strings.TrimSpace(req.Config.SystemPrompt); s != "" {
		parts = append(parts, s)
	}
	system = strings.Join(parts, "\n\n")

	cfg, err := json.Marshal(req.Config)
	if err != nil {
		cfg = []byte("{}")
	}
	user = fmt.Sprintf(userPromptTemplate, req.ProjectStage, cfg, req.ResearchPlan)
	return system, user
}
