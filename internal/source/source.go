// Package source implements the per-upstream fetchers. Each fetcher pulls
// the single most recent qualifying record from its upstream and maps it
// into a models.Item. All failure modes surface as *FetchError; the caller
// decides what to do with them (the aggregator logs and moves on).
package source

import (
	"context"
	"fmt"

	"github.com/akarpov/lifefeed/internal/models"
)

// Source is one upstream fetcher.
type Source interface {
	// Name returns a short identifier used in logs.
	Name() string
	// Fetch returns the most recent item, or a *FetchError. It never
	// returns (nil, nil).
	Fetch(ctx context.Context) (*models.Item, error)
}

// FailKind classifies why a fetch produced no item.
type FailKind string

const (
	// FailConfigMissing means a required credential or setting is absent.
	FailConfigMissing FailKind = "config_missing"
	// FailUnreachable covers network errors and timeouts.
	FailUnreachable FailKind = "unreachable"
	// FailRejected means the upstream answered with a non-success status
	// or an API-level failure payload.
	FailRejected FailKind = "rejected"
	// FailMalformed means the body did not match the expected shape.
	FailMalformed FailKind = "malformed"
	// FailNoRecord means the response was well-formed but no record
	// survived filtering.
	FailNoRecord FailKind = "no_record"
)

// FetchError is the tagged failure every fetcher returns. Source and Stage
// give enough context to diagnose a cycle from the logs alone.
type FetchError struct {
	Source string
	Stage  string
	Kind   FailKind
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s failed (%s)", e.Source, e.Stage, e.Kind)
	}
	return fmt.Sprintf("%s: %s failed (%s): %v", e.Source, e.Stage, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func failf(src, stage string, kind FailKind, format string, args ...any) *FetchError {
	return &FetchError{Source: src, Stage: stage, Kind: kind, Err: fmt.Errorf(format, args...)}
}
