// Package handler implements the HTTP handlers for the day planner API.
// All handlers are methods on Server and are registered on a chi router by
// Routes. Methods are split into resource-specific files (health.go,
// session.go, export.go) but share the same Server struct.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/dayplanner/api"
	"github.com/pkordes/dayplanner/internal/domain"
	"github.com/pkordes/dayplanner/internal/layout"
	"github.com/pkordes/dayplanner/internal/render"
	"github.com/pkordes/dayplanner/internal/session"
)

// Planner defines the session operations the handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without a model or a session store.
type Planner interface {
	Create(ctx context.Context) (session.Snapshot, error)
	Get(ctx context.Context, id uuid.UUID) (session.Snapshot, error)
	Reset(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	Plan(ctx context.Context, id uuid.UUID, prompt string) (domain.Itinerary, error)
}

// Exporter defines the document operations the export handler depends on.
type Exporter interface {
	Layout(ctx context.Context, id uuid.UUID, req domain.ExportRequest) ([]layout.Instruction, *render.Snapshot, error)
	Export(ctx context.Context, id uuid.UUID, req domain.ExportRequest) (domain.ExportResult, error)
}

// Server holds the dependencies shared by every handler.
type Server struct {
	planner  Planner
	exporter Exporter
	logger   *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
// A nil logger means slog.Default().
func NewServer(planner Planner, exporter Exporter, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{planner: planner, exporter: exporter, logger: logger}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil, nil)
}

// Routes returns a router with every endpoint registered. Cross-cutting
// middleware (request IDs, logging, CORS, body limits) is applied by the
// caller.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "no such route")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", r.Method+" is not allowed here")
	})

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.CreateSession)
		r.Route("/{sessionId}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Post("/reset", s.ResetSession)
			r.Post("/prompts", s.SubmitPrompt)
			r.Get("/itinerary", s.GetItinerary)
			r.Get("/map", s.GetMap)
			r.Post("/export", s.ExportItinerary)
		})
	})
	return r
}

// GetOpenAPI handles GET /openapi.yaml.
func (s *Server) GetOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(api.OpenAPI)
}
