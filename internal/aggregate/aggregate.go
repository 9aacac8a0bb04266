// Package aggregate fans out to every configured source in parallel and
// collects whatever succeeded into rendered feed entries.
package aggregate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/akarpov/lifefeed/internal/feed"
	"github.com/akarpov/lifefeed/internal/models"
	"github.com/akarpov/lifefeed/internal/source"
)

// Aggregator runs all sources concurrently under per-source timeouts.
type Aggregator struct {
	sources []source.Source
	timeout time.Duration
	log     *slog.Logger
}

// New builds an aggregator. A nil logger discards output.
func New(sources []source.Source, timeout time.Duration, log *slog.Logger) *Aggregator {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Aggregator{sources: sources, timeout: timeout, log: log}
}

// Run fetches every source in parallel and returns the rendered entries in
// fixed source-list order. A failed or slow source only costs its own
// entry; it never blocks or cancels the others. Run itself cannot fail —
// the worst case is an empty slice.
func (a *Aggregator) Run(ctx context.Context) []feed.Entry {
	items := make([]*models.Item, len(a.sources))

	var wg sync.WaitGroup
	for i, src := range a.sources {
		wg.Add(1)
		go func(i int, src source.Source) {
			defer wg.Done()

			fctx, cancel := context.WithTimeout(ctx, a.timeout)
			defer cancel()

			item, err := src.Fetch(fctx)
			if err != nil {
				a.logFailure(src.Name(), err)
				return
			}
			items[i] = item
		}(i, src)
	}
	wg.Wait()

	entries := make([]feed.Entry, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		entries = append(entries, feed.Render(*item))
	}
	return entries
}

// logFailure records a skipped source with enough context to diagnose the
// cycle from logs alone.
func (a *Aggregator) logFailure(name string, err error) {
	var ferr *source.FetchError
	if errors.As(err, &ferr) {
		a.log.Warn("source skipped this cycle",
			slog.String("source", ferr.Source),
			slog.String("stage", ferr.Stage),
			slog.String("kind", string(ferr.Kind)),
			slog.Any("err", ferr.Err),
		)
		return
	}
	a.log.Warn("source skipped this cycle", slog.String("source", name), slog.Any("err", err))
}
