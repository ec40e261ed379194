package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/pkordes/dayplanner/internal/domain"
	"github.com/pkordes/dayplanner/internal/itinerary"
	"github.com/pkordes/dayplanner/internal/llm"
	"github.com/pkordes/dayplanner/internal/repo"
	"github.com/pkordes/dayplanner/internal/session"
)

// MaxPromptRunes bounds the prompt forwarded to the model.
const MaxPromptRunes = 2000

// ModelCallTimeout bounds one shared model call. The call is detached from
// the request that started it, so it needs its own deadline.
const ModelCallTimeout = 3 * time.Minute

const tracerName = "github.com/pkordes/dayplanner/internal/service"

// PlannerService turns prompts into itineraries and owns the session
// lifecycle.
type PlannerService struct {
	store  *session.Store
	model  llm.Client
	name   string // model name, part of the cache key
	cache  repo.RecordCache
	opts   itinerary.Options
	group  singleflight.Group
	logger *slog.Logger
	tracer trace.Tracer
}

// NewPlannerService wires a PlannerService. A nil cache disables caching and
// a nil logger means slog.Default().
func NewPlannerService(
	store *session.Store,
	model llm.Client,
	modelName string,
	cache repo.RecordCache,
	opts itinerary.Options,
	logger *slog.Logger,
) *PlannerService {
	if cache == nil {
		cache = repo.NewNoopCache()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PlannerService{
		store:  store,
		model:  model,
		name:   modelName,
		cache:  cache,
		opts:   opts,
		logger: logger,
		tracer: otel.Tracer(tracerName),
	}
}

// Create starts a new session.
func (s *PlannerService) Create(ctx context.Context) (session.Snapshot, error) {
	id := s.store.Create()
	snap, err := s.store.Get(id)
	if err != nil {
		return session.Snapshot{}, fmt.Errorf("service.PlannerService.Create: %w", err)
	}
	s.logger.InfoContext(ctx, "session created", "session_id", id)
	return snap, nil
}

// Get returns the session's current state.
// Returns domain.ErrNotFound if the session does not exist.
func (s *PlannerService) Get(ctx context.Context, id uuid.UUID) (session.Snapshot, error) {
	snap, err := s.store.Get(id)
	if err != nil {
		return session.Snapshot{}, fmt.Errorf("service.PlannerService.Get: %w", err)
	}
	return snap, nil
}

// Reset discards the session's itinerary. A plan still in flight for the
// session will be rejected as stale when it finishes.
func (s *PlannerService) Reset(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Reset(id); err != nil {
		return fmt.Errorf("service.PlannerService.Reset: %w", err)
	}
	return nil
}

// Delete ends the session.
func (s *PlannerService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(id); err != nil {
		return fmt.Errorf("service.PlannerService.Delete: %w", err)
	}
	s.logger.InfoContext(ctx, "session deleted", "session_id", id)
	return nil
}

// Plan runs one full cycle for the session: the previous itinerary is
// discarded, the model is asked (or the cache answers), the batch is
// reconciled, and the result is committed if no newer prompt or reset
// arrived meanwhile.
//
// Returns domain.ErrValidation for an empty or oversized prompt,
// domain.ErrNotFound for an unknown session, domain.ErrUpstream when the
// model fails (the session is left empty), domain.ErrStale when the result
// was superseded, and domain.ErrEmptyResult, together with the committed
// empty itinerary, when no record was usable.
func (s *PlannerService) Plan(ctx context.Context, id uuid.UUID, prompt string) (it domain.Itinerary, err error) {
	ctx, span := s.tracer.Start(ctx, "PlannerService.Plan", trace.WithAttributes(
		attribute.String("session.id", id.String()),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	prompt = strings.TrimSpace(prompt)
	if err := validatePrompt(prompt); err != nil {
		return domain.Itinerary{}, err
	}

	ticket, err := s.store.Begin(id)
	if err != nil {
		return domain.Itinerary{}, fmt.Errorf("service.PlannerService.Plan: %w", err)
	}
	span.SetAttributes(attribute.Int64("session.generation", int64(ticket.Generation)))

	records, err := s.records(ctx, prompt)
	if err != nil {
		s.store.Abort(ticket)
		return domain.Itinerary{}, fmt.Errorf("service.PlannerService.Plan: %w", err)
	}

	it = itinerary.Build(records, s.opts)
	l := s.logger.With("session_id", id, "generation", ticket.Generation)
	for _, w := range it.Warnings {
		l.WarnContext(ctx, "record skipped", "record", w.Record, "kind", w.Kind, "message", w.Message)
	}
	span.SetAttributes(
		attribute.Int("itinerary.records", len(records)),
		attribute.Int("itinerary.stops", len(it.Stops)),
		attribute.Int("itinerary.legs", len(it.Legs)),
		attribute.Int("itinerary.warnings", len(it.Warnings)),
	)

	if err := s.store.Commit(ticket, it); err != nil {
		l.InfoContext(ctx, "plan discarded", "error", err)
		return domain.Itinerary{}, fmt.Errorf("service.PlannerService.Plan: %w", err)
	}
	if it.Empty() {
		return it, fmt.Errorf("service.PlannerService.Plan: %w", domain.ErrEmptyResult)
	}
	l.InfoContext(ctx, "plan committed", "stops", len(it.Stops), "legs", len(it.Legs), "timeline", len(it.Timeline))
	return it, nil
}

// records returns the model output for prompt, from the cache when possible.
// Identical prompts in flight at the same time share one model call.
func (s *PlannerService) records(ctx context.Context, prompt string) ([]domain.Record, error) {
	key := repo.CacheKey(s.name, prompt)

	cached, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		s.logger.DebugContext(ctx, "record cache hit", "key", key)
		return cached, nil
	case !errors.Is(err, domain.ErrNotFound):
		s.logger.WarnContext(ctx, "record cache unavailable", "error", err)
	}

	// The shared call outlives any single caller: one client going away must
	// not fail the other sessions waiting on the same prompt.
	ch := s.group.DoChan(key, func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ModelCallTimeout)
		defer cancel()
		records, err := s.model.Generate(callCtx, prompt)
		if err != nil {
			return nil, err
		}
		if len(records) > 0 {
			if err := s.cache.Put(callCtx, key, records); err != nil {
				s.logger.WarnContext(callCtx, "record cache write failed", "error", err)
			}
		}
		return records, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			s.logger.DebugContext(ctx, "model call shared", "key", key)
		}
		return res.Val.([]domain.Record), nil
	}
}

func validatePrompt(prompt string) error {
	if prompt == "" {
		return fmt.Errorf("%w: prompt is required", domain.ErrValidation)
	}
	if n := utf8.RuneCountInString(prompt); n > MaxPromptRunes {
		return fmt.Errorf("%w: prompt is %d characters, at most %d allowed", domain.ErrValidation, n, MaxPromptRunes)
	}
	return nil
}
