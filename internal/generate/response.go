package generate

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rpggio/genai-tracker/internal/domain/checklist"
)

// Response is the successful checklist endpoint payload. Checklist holds the
// recovered item sequence when one was found, otherwise the raw text as a
// JSON string.
type Response struct {
	Checklist    json.RawMessage `json:"checklist"`
	Raw          string          `json:"raw"`
	GeneratedAt  time.Time       `json:"generatedAt"`
	ProjectStage string          `json:"projectStage,omitempty"`
	Model        string          `json:"model"`
}

// ErrorResponse is the failure payload returned with non-2xx statuses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Code    string `json:"code,omitempty"`
}

// APIError is a non-2xx reply from the checklist endpoint.
type APIError struct {
	StatusCode int
	Message    string
	Details    string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Details)
	}
	return e.Message
}

// NewResponse builds a response from raw model text.
func NewResponse(raw, model, stage string, generatedAt time.Time) *Response {
	var payload any = raw
	if seq, ok := checklist.ExtractSequence(raw); ok {
		payload = seq
	}
	data, err := json.Marshal(payload)
	if err != nil {
		data, _ = json.Marshal(raw)
	}
	return &Response{
		Checklist:    data,
		Raw:          raw,
		GeneratedAt:  generatedAt,
		ProjectStage: stage,
		Model:        model,
	}
}
