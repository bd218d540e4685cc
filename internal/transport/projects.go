package transport

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rpggio/genai-tracker/internal/domain/project"
	"github.com/rpggio/genai-tracker/internal/domain/timeline"
)

// currentAlias addresses the current project in project routes.
const currentAlias = "current"

func (s *Server) projectRoutes(r chi.Router) {
	r.Get("/", s.listProjects)
	r.Post("/", s.createProject)
	r.Post("/import", s.importProject)

	r.Route("/{projectID}", func(r chi.Router) {
		r.Get("/", s.getProject)
		r.Delete("/", s.deleteProject)
		r.Post("/switch", s.switchProject)
		r.Post("/generate", s.generateChecklist)
		r.Get("/timeline", s.listEvents)
		r.Get("/export", s.exportProject)

		r.Post("/items", s.addItem)
		r.Route("/items/{itemID}", func(r chi.Router) {
			r.Delete("/", s.mutate(func(*http.Request) (project.Mutation, error) { return project.Remove{}, nil }))
			r.Post("/toggle", s.mutate(func(*http.Request) (project.Mutation, error) { return project.Toggle{}, nil }))
			r.Put("/notes", s.mutate(func(r *http.Request) (project.Mutation, error) {
				var body notesRequest
				err := decodeBody(r, &body)
				return project.EditNotes{Notes: body.Notes}, err
			}))
			r.Post("/notes/commit", s.mutate(func(r *http.Request) (project.Mutation, error) {
				var body notesRequest
				err := decodeBody(r, &body)
				return project.CommitNotes{Notes: body.Notes}, err
			}))
			r.Post("/log", s.mutate(func(r *http.Request) (project.Mutation, error) {
				var body logRequest
				err := decodeBody(r, &body)
				return project.LogMessage{Message: body.Message}, err
			}))
		})
	})
}

type createProjectRequest struct {
	Name string `json:"name"`
}

type generateRequest struct {
	ResearchPlan string          `json:"researchPlan"`
	ProjectStage string          `json:"projectStage"`
	Config       *project.Config `json:"config"`
}

type addItemRequest struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

type notesRequest struct {
	Notes string `json:"notes"`
}

type logRequest struct {
	Message string `json:"message"`
}

type importRequest struct {
	Name    string          `json:"name"`
	Project json.RawMessage `json:"project"`
}

// projectID maps the "current" alias to the store's empty-id convention.
func projectID(r *http.Request) string {
	id := chi.URLParam(r, "projectID")
	if id == currentAlias {
		return ""
	}
	return id
}

func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func (s *Server) listProjects(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"currentProjectId": s.store.CurrentID(),
		"projects":         s.store.List(),
	})
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	var body createProjectRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err.Error())
		return
	}
	p, err := s.store.CreateProject(r.Context(), body.Name)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.Get(projectID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) deleteProject(w http.ResponseWriter, r *http.Request) {
	id := projectID(r)
	if id == "" {
		id = s.store.CurrentID()
	}
	if err := s.store.DeleteProject(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) switchProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.SwitchProject(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) generateChecklist(w http.ResponseWriter, r *http.Request) {
	var body generateRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err.Error())
		return
	}
	in := project.GenerateInput{ResearchPlan: body.ResearchPlan, ProjectStage: body.ProjectStage}
	if body.Config != nil {
		in.Config = *body.Config
	}
	p, err := s.store.GenerateChecklist(r.Context(), projectID(r), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) addItem(w http.ResponseWriter, r *http.Request) {
	var body addItemRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err.Error())
		return
	}
	it, err := s.store.AddCustomItem(r.Context(), projectID(r), body.Text, body.Category)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

func (s *Server) mutate(build func(*http.Request) (project.Mutation, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := build(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON body", err.Error())
			return
		}
		p, err := s.store.MutateItem(r.Context(), projectID(r), chi.URLParam(r, "itemID"), m)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.store.ListEvents(projectID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// exportProject serves the project document (default), or the timeline as
// JSON (format=timeline-json) or Markdown (format=timeline-md).
func (s *Server) exportProject(w http.ResponseWriter, r *http.Request) {
	id := projectID(r)
	switch r.URL.Query().Get("format") {
	case "", "project":
		data, err := s.store.ExportProject(id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", project.ExportFileName(time.Now())))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(data)
	case "timeline-json":
		p, err := s.store.Get(id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		data, err := timeline.ExportJSON(p.Timeline)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to export timeline", err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(data)
	case "timeline-md":
		p, err := s.store.Get(id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = w.Write([]byte(timeline.ExportMarkdown(p.Timeline)))
	default:
		writeError(w, http.StatusBadRequest, "Unknown export format", r.URL.Query().Get("format"))
	}
}

func (s *Server) importProject(w http.ResponseWriter, r *http.Request) {
	var body importRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err.Error())
		return
	}
	p, err := s.store.ImportProject(r.Context(), body.Name, body.Project)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}
