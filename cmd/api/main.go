// Package main is the entry point for the day planner API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/pkordes/dayplanner/internal/config"
	"github.com/pkordes/dayplanner/internal/handler"
	"github.com/pkordes/dayplanner/internal/itinerary"
	"github.com/pkordes/dayplanner/internal/layout"
	"github.com/pkordes/dayplanner/internal/llm"
	"github.com/pkordes/dayplanner/internal/middleware"
	"github.com/pkordes/dayplanner/internal/render"
	"github.com/pkordes/dayplanner/internal/service"
	"github.com/pkordes/dayplanner/internal/session"
	"github.com/pkordes/dayplanner/internal/storage"
)

// exportMargin is the page margin of exported documents, in points.
const exportMargin = 36

func main() {
	// --- Config -----------------------------------------------------------
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("failed to read .env", "error", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	// --- Response cache ---------------------------------------------------
	cache, closeCache, err := openCache(ctx, cfg.Cache, logger)
	if err != nil {
		slog.Error("failed to open response cache", "driver", cfg.Cache.Driver, "error", err)
		os.Exit(1)
	}
	slog.Info("response cache ready", "driver", cfg.Cache.Driver)

	// --- Model ------------------------------------------------------------
	model, err := llm.NewGeminiClient(llm.GeminiConfig{
		APIKey:     cfg.Model.APIKey,
		Model:      cfg.Model.Name,
		BaseURL:    cfg.Model.BaseURL,
		MaxRetries: cfg.Model.MaxRetries,
	}, logger)
	if err != nil {
		slog.Error("failed to create model client", "error", err)
		os.Exit(1)
	}

	// --- Export storage ---------------------------------------------------
	// Without a bucket, documents are returned in the response body.
	var uploader service.Uploader
	if cfg.Export.Enabled() {
		s3u, err := storage.NewS3Uploader(ctx, storage.S3Config{
			Bucket:        cfg.Export.Bucket,
			Endpoint:      cfg.Export.Endpoint,
			Region:        cfg.Export.Region,
			AccessKey:     cfg.Export.AccessKey,
			SecretKey:     cfg.Export.SecretKey,
			PublicBaseURL: cfg.Export.PublicBaseURL,
		})
		if err != nil {
			slog.Error("failed to create export uploader", "error", err)
			os.Exit(1)
		}
		uploader = s3u
		slog.Info("export uploads enabled", "bucket", cfg.Export.Bucket)
	}

	// --- Services ---------------------------------------------------------
	store := session.NewStore(nil)
	planner := service.NewPlannerService(store, model, model.Model(), cache,
		itinerary.Options{Precision: cfg.Planner.CoordPrecision}, logger)
	exporter := service.NewExportService(store,
		layout.NewEngine(layout.DefaultStyle(), logger),
		render.NewPDFRenderer(layout.A4Width, layout.A4Height).WithTitle("Itinerary"),
		uploader,
		service.Page{Height: layout.A4Height, Margin: exportMargin},
		logger)

	sweepCtx, stopSweep := context.WithCancel(ctx)
	go sweepSessions(sweepCtx, store, cfg.Planner.SessionTTL, logger)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer → CORS → body limit.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))
	r.Mount("/", handler.NewServer(planner, exporter, logger).Routes())

	// --- HTTP Server ------------------------------------------------------
	// A prompt blocks for the whole model call, so the write timeout leaves
	// room for the client's retries.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      3 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	stopSweep()
	err = multierr.Combine(srv.Shutdown(shutdownCtx), closeCache())
	if err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// sweepSessions drops idle sessions until ctx is canceled. A zero ttl keeps
// sessions forever.
func sweepSessions(ctx context.Context, store *session.Store, ttl time.Duration, logger *slog.Logger) {
	if ttl <= 0 {
		return
	}
	interval := ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := store.Sweep(now, ttl); n > 0 {
				logger.Info("idle sessions swept", "count", n, "remaining", store.Len())
			}
		}
	}
}
