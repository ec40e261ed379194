// Package session keeps the per-session itinerary state in memory.
//
// Every submission starts a new generation. A result is only applied when it
// belongs to the current generation, so a slow answer to an old prompt can
// never overwrite the answer to a newer one, and readers only ever see a
// fully built itinerary.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/dayplanner/internal/domain"
)

// Ticket identifies one planning cycle of a session.
type Ticket struct {
	ID         uuid.UUID
	Generation uint64
}

// Snapshot is a consistent copy of a session's state.
type Snapshot struct {
	ID         uuid.UUID        `json:"id"`
	Generation uint64           `json:"generation"`
	Pending    bool             `json:"pending"` // a cycle has begun and not yet committed
	Itinerary  domain.Itinerary `json:"itinerary"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

type entry struct {
	generation uint64
	pending    bool
	itinerary  domain.Itinerary
	updatedAt  time.Time
}

// Store holds every live session. It is safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*entry
	now      func() time.Time
}

// NewStore returns an empty Store. A nil now means time.Now.
func NewStore(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{sessions: make(map[uuid.UUID]*entry), now: now}
}

// Create starts a new, empty session and returns its id.
func (s *Store) Create() uuid.UUID {
	id := uuid.New()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = &entry{itinerary: emptyItinerary(), updatedAt: s.now()}
	return id
}

// Delete removes a session. Returns domain.ErrNotFound if it does not exist.
func (s *Store) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("session.Store.Delete: %w", domain.ErrNotFound)
	}
	delete(s.sessions, id)
	return nil
}

// Begin opens a new planning cycle: the generation is incremented and the
// previous itinerary is discarded. The returned ticket must be passed to
// Commit. Returns domain.ErrNotFound for an unknown session.
func (s *Store) Begin(id uuid.UUID) (Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return Ticket{}, fmt.Errorf("session.Store.Begin: %w", domain.ErrNotFound)
	}
	e.generation++
	e.pending = true
	e.itinerary = emptyItinerary()
	e.updatedAt = s.now()
	return Ticket{ID: id, Generation: e.generation}, nil
}

// Commit applies it as the session's itinerary if t is still the current
// generation. Otherwise it returns domain.ErrStale and changes nothing.
func (s *Store) Commit(t Ticket, it domain.Itinerary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[t.ID]
	if !ok {
		return fmt.Errorf("session.Store.Commit: %w", domain.ErrNotFound)
	}
	if e.generation != t.Generation {
		return fmt.Errorf("session.Store.Commit: generation %d superseded by %d: %w",
			t.Generation, e.generation, domain.ErrStale)
	}
	e.pending = false
	e.itinerary = it
	e.updatedAt = s.now()
	return nil
}

// Abort ends the cycle of t without a result, leaving the session empty.
// A stale ticket is ignored.
func (s *Store) Abort(t Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.sessions[t.ID]; ok && e.generation == t.Generation {
		e.pending = false
		e.updatedAt = s.now()
	}
}

// Reset discards the session's itinerary and invalidates any cycle in flight.
func (s *Store) Reset(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("session.Store.Reset: %w", domain.ErrNotFound)
	}
	e.generation++
	e.pending = false
	e.itinerary = emptyItinerary()
	e.updatedAt = s.now()
	return nil
}

// Get returns a snapshot of the session.
func (s *Store) Get(id uuid.UUID) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return Snapshot{}, fmt.Errorf("session.Store.Get: %w", domain.ErrNotFound)
	}
	return Snapshot{
		ID:         id,
		Generation: e.generation,
		Pending:    e.pending,
		Itinerary:  e.itinerary,
		UpdatedAt:  e.updatedAt,
	}, nil
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep removes sessions not touched within ttl of now and returns how many
// were removed. Sessions with a cycle in flight are kept.
func (s *Store) Sweep(now time.Time, ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, e := range s.sessions {
		if !e.pending && now.Sub(e.updatedAt) > ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func emptyItinerary() domain.Itinerary {
	return domain.Itinerary{
		Stops:    []domain.Stop{},
		Legs:     []domain.Leg{},
		Plan:     domain.DayPlan{Stops: []domain.Stop{}},
		Timeline: []domain.TimelineEntry{},
		Map: domain.MapView{
			Markers: []domain.Marker{},
			Lines:   []domain.Polyline{},
		},
		Warnings: []domain.Warning{},
	}
}
