package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/genai-tracker/internal/domain/project"
)

var errUnsupportedFormat = errors.New("unsupported export format")

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes. The message is the
// user-facing status text for the error.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	msg := project.StatusFor(err).Message
	switch {
	case errors.Is(err, project.ErrProjectNotFound):
		return &APIError{Code: "PROJECT_NOT_FOUND", Message: msg, RecoveryHint: "Call list_projects to find a valid id"}
	case errors.Is(err, project.ErrNoCurrentProject):
		return &APIError{Code: "NO_CURRENT_PROJECT", Message: msg, RecoveryHint: "Call create_project or switch_project first"}
	case errors.Is(err, project.ErrItemNotFound):
		return &APIError{Code: "ITEM_NOT_FOUND", Message: msg, RecoveryHint: "Call get_project to list item ids"}
	case errors.Is(err, project.ErrInvalidName),
		errors.Is(err, project.ErrEmptyItemText),
		errors.Is(err, project.ErrEmptyMessage),
		errors.Is(err, project.ErrInvalidPlan):
		return &APIError{Code: "INVALID_INPUT", Message: msg}
	case errors.Is(err, project.ErrInvalidImport):
		return &APIError{Code: "INVALID_IMPORT", Message: msg, Details: err.Error(), RecoveryHint: "Pass a document produced by export_project"}
	case errors.Is(err, project.ErrGenerationFailed):
		return &APIError{Code: "GENERATION_FAILED", Message: msg, RecoveryHint: "Retry; the project was left unchanged"}
	case errors.Is(err, errUnsupportedFormat):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error(), RecoveryHint: "Use json or markdown"}
	case errors.Is(err, project.ErrStaleUpdate):
		return &APIError{Code: "STALE_UPDATE", Message: msg}
	default:
		return &APIError{Code: "INTERNAL", Message: msg}
	}
}
