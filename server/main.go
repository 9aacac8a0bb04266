package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/akarpov/lifefeed/internal/aggregate"
	"github.com/akarpov/lifefeed/internal/config"
	"github.com/akarpov/lifefeed/internal/feed"
	"github.com/akarpov/lifefeed/internal/logger"
	"github.com/akarpov/lifefeed/internal/scheduler"
	"github.com/akarpov/lifefeed/internal/snapshot"
	"github.com/akarpov/lifefeed/internal/source"
)

func main() {
	// Best effort; the environment may already be materialized.
	_ = godotenv.Load()

	log := logger.New("server")
	cfg, err := config.Load()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	client := &http.Client{Timeout: cfg.FetchTimeout}
	sources := []source.Source{
		source.NewGitHub(client, "", cfg.GitHub),
		source.NewTrakt(client, "", cfg.Trakt),
		source.NewFlickr(client, "", cfg.Flickr),
	}

	store := snapshot.NewStore()
	agg := aggregate.New(sources, cfg.FetchTimeout, log)
	meta := feed.Meta{
		Title:       cfg.Feed.Title,
		Description: cfg.Feed.Description,
		Link:        cfg.Feed.Link,
	}
	sched := scheduler.New(agg, store, meta, cfg.RefreshInterval, cfg.CachePath, log)

	srv := &server{log: log, store: store}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", srv.handleHealth)
	r.Get("/feed.xml", srv.handleFeed)

	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	go sched.Run(ctx)

	go func() {
		log.Info("feed server starting",
			slog.String("addr", cfg.BindAddr),
			slog.Duration("refresh_interval", cfg.RefreshInterval),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", slog.Any("err", err))
	}
}

type server struct {
	log   *slog.Logger
	store *snapshot.Store
}

// handleFeed serves the current snapshot. Before the first cycle completes
// there is nothing to serve.
func (s *server) handleFeed(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.store.Current()
	if !ok {
		http.Error(w, "feed not built yet", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Last-Modified", snap.BuiltAt.Format(http.TimeFormat))
	if _, err := w.Write(snap.XML); err != nil {
		s.log.Debug("write feed response", slog.Any("err", err))
	}
}

// handleHealth doubles as a readiness probe: unhealthy until the first
// document exists.
func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.store.Current(); !ok {
		http.Error(w, "no feed built yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
