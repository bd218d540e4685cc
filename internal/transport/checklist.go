package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rpggio/genai-tracker/internal/generate"
)

func (s *Server) handleChecklist(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed", "")
		return
	}

	var req generate.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Please provide a research plan (>=25 chars).", "")
		return
	}
	if s.generator == nil || !s.generator.HasKey() {
		writeError(w, http.StatusInternalServerError, "Missing OPENROUTER_API_KEY. Set it in the environment.", "")
		return
	}

	resp, err := s.generator.Generate(r.Context(), req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, resp)
	case errors.Is(err, generate.ErrMissingAPIKey):
		writeError(w, http.StatusInternalServerError, "Missing OPENROUTER_API_KEY. Set it in the environment.", "")
	case errors.Is(err, generate.ErrEmptyResponse):
		writeError(w, http.StatusBadGateway, "LLM returned an empty response. Please retry.", "")
	default:
		s.logger.Error("checklist generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to generate checklist", err.Error())
	}
}
