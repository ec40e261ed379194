package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/pkordes/dayplanner/internal/domain"
	"github.com/pkordes/dayplanner/internal/layout"
	"github.com/pkordes/dayplanner/internal/render"
	"github.com/pkordes/dayplanner/internal/session"
)

// SessionReader is the read side of the session store.
type SessionReader interface {
	Get(id uuid.UUID) (session.Snapshot, error)
}

// Renderer draws laid out instructions into a document.
type Renderer interface {
	Render(w io.Writer, doc render.Document) error
}

// Uploader stores a finished document and returns where it can be fetched.
type Uploader interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

// Page is the document geometry in points.
type Page struct {
	Height float64
	Margin float64
}

// ExportService lays out and renders a session's timeline.
type ExportService struct {
	sessions SessionReader
	engine   *layout.Engine
	renderer Renderer
	uploader Uploader
	page     Page
	logger   *slog.Logger
	tracer   trace.Tracer
}

// NewExportService wires an ExportService. A nil uploader keeps documents
// in the response only.
func NewExportService(
	sessions SessionReader,
	engine *layout.Engine,
	renderer Renderer,
	uploader Uploader,
	page Page,
	logger *slog.Logger,
) *ExportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportService{
		sessions: sessions,
		engine:   engine,
		renderer: renderer,
		uploader: uploader,
		page:     page,
		logger:   logger,
		tracer:   otel.Tracer(tracerName),
	}
}

// Layout returns the placement instructions for the session's timeline.
// The snapshot, when present, is decoded before layout starts and returned
// so the caller can hand it to a renderer.
// Returns domain.ErrNotFound for an unknown session and domain.ErrValidation
// when there is nothing to export or the snapshot is not an image.
func (s *ExportService) Layout(ctx context.Context, id uuid.UUID, req domain.ExportRequest) ([]layout.Instruction, *render.Snapshot, error) {
	_, span := s.tracer.Start(ctx, "ExportService.Layout", trace.WithAttributes(
		attribute.String("session.id", id.String()),
	))
	defer span.End()

	instrs, snap, err := s.layout(id, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, nil, fmt.Errorf("service.ExportService.Layout: %w", err)
	}
	span.SetAttributes(attribute.Int("layout.instructions", len(instrs)))
	return instrs, snap, nil
}

func (s *ExportService) layout(id uuid.UUID, req domain.ExportRequest) ([]layout.Instruction, *render.Snapshot, error) {
	current, err := s.sessions.Get(id)
	if err != nil {
		return nil, nil, err
	}
	if len(current.Itinerary.Plan.Stops) == 0 {
		return nil, nil, fmt.Errorf("%w: the itinerary has no scheduled stops to export", domain.ErrValidation)
	}

	header := layout.Header{Title: strings.TrimSpace(req.Title)}
	var snap *render.Snapshot
	if len(req.Snapshot) > 0 {
		decoded, err := render.DecodeSnapshot(req.Snapshot)
		if err != nil {
			return nil, nil, err
		}
		snap = &decoded
		header.ImageWidth, header.ImageHeight = decoded.Width, decoded.Height
	}

	return s.engine.LayoutDocument(header, current.Itinerary.Timeline, s.page.Height, s.page.Margin), snap, nil
}

// Export renders the session's timeline to PDF. When an uploader is
// configured the document is also stored and its URL returned.
func (s *ExportService) Export(ctx context.Context, id uuid.UUID, req domain.ExportRequest) (res domain.ExportResult, err error) {
	ctx, span := s.tracer.Start(ctx, "ExportService.Export", trace.WithAttributes(
		attribute.String("session.id", id.String()),
		attribute.Bool("export.snapshot", len(req.Snapshot) > 0),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	instrs, snap, err := s.layout(id, req)
	if err != nil {
		return domain.ExportResult{}, fmt.Errorf("service.ExportService.Export: %w", err)
	}

	var buf bytes.Buffer
	doc := render.Document{Title: strings.TrimSpace(req.Title), Instructions: instrs, Snapshot: snap}
	if err := s.renderer.Render(&buf, doc); err != nil {
		return domain.ExportResult{}, fmt.Errorf("service.ExportService.Export: %w", err)
	}
	res = domain.ExportResult{PDF: buf.Bytes(), Pages: countPages(instrs)}

	if s.uploader != nil {
		key := fmt.Sprintf("exports/%s/%s.pdf", id, uuid.New())
		url, err := s.uploader.Upload(ctx, key, res.PDF, "application/pdf")
		if err != nil {
			return domain.ExportResult{}, fmt.Errorf("service.ExportService.Export: %w", err)
		}
		res.URL = url
	}

	span.SetAttributes(attribute.Int("export.pages", res.Pages), attribute.Int("export.bytes", len(res.PDF)))
	s.logger.InfoContext(ctx, "itinerary exported",
		"session_id", id, "pages", res.Pages, "bytes", len(res.PDF), "uploaded", res.URL != "")
	return res, nil
}

func countPages(instrs []layout.Instruction) int {
	n := 0
	for _, in := range instrs {
		if in.Kind == layout.KindPage {
			n++
		}
	}
	return n
}
