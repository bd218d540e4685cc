package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rpggio/genai-tracker/internal/domain/project"
	"github.com/rpggio/genai-tracker/internal/generate"
)

const maxBodyBytes = 2 << 20

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg, details string) {
	writeJSON(w, status, generate.ErrorResponse{Error: msg, Details: details})
}

// writeDomainError maps a store error to a status code and a user-facing
// message.
func writeDomainError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, project.ErrProjectNotFound),
		errors.Is(err, project.ErrItemNotFound),
		errors.Is(err, project.ErrNoCurrentProject):
		status = http.StatusNotFound
	case errors.Is(err, project.ErrInvalidName),
		errors.Is(err, project.ErrEmptyItemText),
		errors.Is(err, project.ErrEmptyMessage),
		errors.Is(err, project.ErrInvalidPlan),
		errors.Is(err, project.ErrInvalidImport):
		status = http.StatusBadRequest
	case errors.Is(err, project.ErrStaleUpdate):
		status = http.StatusConflict
	case errors.Is(err, project.ErrGenerationFailed):
		status = http.StatusBadGateway
	}
	writeJSON(w, status, generate.ErrorResponse{
		Error:   project.StatusFor(err).Message,
		Details: err.Error(),
		Code:    project.ErrorCode(err),
	})
}
