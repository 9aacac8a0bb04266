// Package scheduler drives the periodic fetch-render-publish cycle.
package scheduler

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/akarpov/lifefeed/internal/aggregate"
	"github.com/akarpov/lifefeed/internal/feed"
	"github.com/akarpov/lifefeed/internal/snapshot"
)

// Scheduler rebuilds the feed document on a fixed interval and publishes
// each result to the snapshot store. Cycles are serialized in a single
// goroutine; the interval is measured from cycle start (ticker semantics),
// so a cycle that overruns the interval delays the next cycle to the
// following tick.
type Scheduler struct {
	agg       *aggregate.Aggregator
	store     *snapshot.Store
	meta      feed.Meta
	interval  time.Duration
	cachePath string
	log       *slog.Logger
}

// New builds a scheduler. cachePath may be empty to disable the file
// artifact. A nil logger discards output.
func New(agg *aggregate.Aggregator, store *snapshot.Store, meta feed.Meta, interval time.Duration, cachePath string, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Scheduler{
		agg:       agg,
		store:     store,
		meta:      meta,
		interval:  interval,
		cachePath: cachePath,
		log:       log,
	}
}

// Run executes one cycle immediately, then one per tick until the context
// is canceled.
func (s *Scheduler) Run(ctx context.Context) {
	s.runCycle(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopping")
			return
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

// runCycle aggregates, builds and publishes one document. A cycle cannot
// fail as a whole: an all-sources-down cycle still publishes a valid
// empty-item document.
func (s *Scheduler) runCycle(ctx context.Context) {
	cycleID := uuid.NewString()
	log := s.log.With(slog.String("cycle_id", cycleID))
	start := time.Now()

	entries := s.agg.Run(ctx)
	builtAt := time.Now().UTC()
	doc := feed.Build(s.meta, entries, builtAt)

	data, err := doc.Marshal()
	if err != nil {
		log.Error("serialize feed document", slog.Any("err", err))
		return
	}

	s.store.Publish(&snapshot.Snapshot{XML: data, BuiltAt: builtAt})
	log.Info("feed published",
		slog.Int("entries", len(doc.Channel.Items)),
		slog.Duration("took", time.Since(start)),
	)

	if s.cachePath != "" {
		if err := writeFileAtomic(s.cachePath, data); err != nil {
			log.Warn("write feed artifact", slog.String("path", s.cachePath), slog.Any("err", err))
		}
	}
}

// writeFileAtomic writes via a temp file and rename so readers of the
// artifact never see a partial document.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
