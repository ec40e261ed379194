package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/dayplanner/internal/domain"
	"github.com/pkordes/dayplanner/internal/session"
)

// sessionResponse is the JSON shape of a session.
type sessionResponse struct {
	ID        uuid.UUID        `json:"id"`
	Pending   bool             `json:"pending"`
	UpdatedAt time.Time        `json:"updatedAt"`
	Itinerary domain.Itinerary `json:"itinerary"`
}

// promptRequest is the body of POST /sessions/{sessionId}/prompts.
type promptRequest struct {
	Prompt string `json:"prompt"`
}

func snapshotToResponse(snap session.Snapshot) sessionResponse {
	return sessionResponse{
		ID:        snap.ID,
		Pending:   snap.Pending,
		UpdatedAt: snap.UpdatedAt.UTC(),
		Itinerary: snap.Itinerary,
	}
}

// CreateSession handles POST /sessions.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	snap, err := s.planner.Create(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Location", "/sessions/"+snap.ID.String())
	writeJSON(w, http.StatusCreated, snapshotToResponse(snap))
}

// GetSession handles GET /sessions/{sessionId}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snapshotToResponse(snap))
}

// DeleteSession handles DELETE /sessions/{sessionId}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		paramError(w, err)
		return
	}
	if err := s.planner.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ResetSession handles POST /sessions/{sessionId}/reset.
func (s *Server) ResetSession(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		paramError(w, err)
		return
	}
	if err := s.planner.Reset(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SubmitPrompt handles POST /sessions/{sessionId}/prompts.
// The call blocks for the whole planning cycle and answers with the
// itinerary that was committed to the session.
func (s *Server) SubmitPrompt(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		paramError(w, err)
		return
	}
	var req promptRequest
	if err := decodeBody(r, &req, false); err != nil {
		s.badBody(w, r, err)
		return
	}

	it, err := s.planner.Plan(r.Context(), id, req.Prompt)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

// GetItinerary handles GET /sessions/{sessionId}/itinerary.
func (s *Server) GetItinerary(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snap.Itinerary)
}

// GetMap handles GET /sessions/{sessionId}/map.
func (s *Server) GetMap(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snap.Itinerary.Map)
}

// snapshot loads the session named in the path, writing the error response
// itself when that fails.
func (s *Server) snapshot(w http.ResponseWriter, r *http.Request) (session.Snapshot, bool) {
	id, err := sessionID(r)
	if err != nil {
		paramError(w, err)
		return session.Snapshot{}, false
	}
	snap, err := s.planner.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return session.Snapshot{}, false
	}
	return snap, true
}
