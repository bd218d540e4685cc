package transport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rpggio/genai-tracker/internal/domain/project"
	"github.com/rpggio/genai-tracker/internal/generate"
)

// ChecklistGenerator produces checklists for the checklist endpoint.
type ChecklistGenerator interface {
	Generate(ctx context.Context, req generate.Request) (*generate.Response, error)
	Model() string
	HasKey() bool
}

// Options wires the HTTP server.
type Options struct {
	Store     *project.Store
	Generator ChecklistGenerator
	// Auth guards the project API and MCP endpoint; nil leaves them open.
	Auth func(http.Handler) http.Handler
	// MCP is mounted at /mcp when set.
	MCP    http.Handler
	Logger *slog.Logger
}

// Server wires HTTP handlers.
type Server struct {
	store     *project.Store
	generator ChecklistGenerator
	logger    *slog.Logger
}

// NewServer creates an HTTP server router with middleware.
func NewServer(opts Options) *chi.Mux {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	srv := &Server{store: opts.Store, generator: opts.Generator, logger: logger}

	r := chi.NewRouter()
	r.Get("/health", srv.handleHealth)
	r.Get("/api/health", srv.handleAPIHealth)
	r.HandleFunc(generate.ChecklistPath, srv.handleChecklist)

	r.Group(func(r chi.Router) {
		if opts.Auth != nil {
			r.Use(opts.Auth)
		}
		if opts.MCP != nil {
			r.Handle("/mcp", opts.MCP)
			r.Handle("/mcp/*", opts.MCP)
		}
		if opts.Store != nil {
			r.Route("/api/projects", srv.projectRoutes)
		}
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type healthResponse struct {
	Status string `json:"status"`
	Model  string `json:"model"`
	HasKey bool   `json:"hasKey"`
}

func (s *Server) handleAPIHealth(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{Status: "ok"}
	if s.generator != nil {
		resp.Model = s.generator.Model()
		resp.HasKey = s.generator.HasKey()
	}
	writeJSON(w, http.StatusOK, resp)
}
