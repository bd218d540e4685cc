package generate

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// MinPlanLength is the minimum trimmed research plan length accepted.
const MinPlanLength = 25

// DefaultStage is used when no project stage is given.
const DefaultStage = "unspecified"

var (
	// ErrPlanTooShort indicates the research plan is missing or too short.
	ErrPlanTooShort = errors.New("research plan must be at least 25 characters")
	// ErrMissingAPIKey indicates no model API key is configured.
	ErrMissingAPIKey = errors.New("missing model API key")
	// ErrEmptyResponse indicates the model or endpoint returned nothing.
	ErrEmptyResponse = errors.New("empty response from model")
)

// ModelConfig holds the model parameters tracked per project.
type ModelConfig struct {
	ModelName    string  `json:"modelName" yaml:"model_name"`
	SystemPrompt string  `json:"systemPrompt" yaml:"system_prompt"`
	Temperature  float64 `json:"temperature" yaml:"temperature"`
	MaxTokens    int     `json:"maxTokens" yaml:"max_tokens"`
	TopP         float64 `json:"topP" yaml:"top_p"`
}

// DefaultModelConfig is the configuration a new project starts with.
func DefaultModelConfig() ModelConfig {
	return ModelConfig{
		Temperature: 0.7,
		MaxTokens:   900,
		TopP:        1,
	}
}

// WithFallbacks fills zero values the way the generation form does.
func (c ModelConfig) WithFallbacks() ModelConfig {
	if strings.TrimSpace(c.ModelName) == "" {
		c.ModelName = "grok-4"
	}
	if c.Temperature == 0 {
		c.Temperature = 0.7
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 900
	}
	if c.TopP == 0 {
		c.TopP = 1
	}
	return c
}

// Request is the input to the checklist endpoint.
type Request struct {
	ResearchPlan string      `json:"researchPlan"`
	ProjectStage string      `json:"projectStage"`
	Config       ModelConfig `json:"config"`
}

// Normalized trims the plan and defaults the stage.
func (r Request) Normalized() Request {
	r.ResearchPlan = strings.TrimSpace(r.ResearchPlan)
	r.ProjectStage = strings.TrimSpace(r.ProjectStage)
	if r.ProjectStage == "" {
		r.ProjectStage = DefaultStage
	}
	return r
}

// Validate checks the request before any network call is made.
func (r Request) Validate() error {
	if utf8.RuneCountInString(strings.TrimSpace(r.ResearchPlan)) < MinPlanLength {
		return ErrPlanTooShort
	}
	return nil
}
