// Package snapshot holds the single document currently exposed to feed
// consumers.
package snapshot

import (
	"sync/atomic"
	"time"
)

// Snapshot is one complete, serialized feed document.
type Snapshot struct {
	XML     []byte
	BuiltAt time.Time
}

// Store publishes snapshots to concurrent readers. Readers always observe
// a complete document: the pointer swap is the only synchronization.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore returns an empty store; Current reports no snapshot until the
// first Publish.
func NewStore() *Store {
	return &Store{}
}

// Publish atomically replaces the served snapshot.
func (s *Store) Publish(snap *Snapshot) {
	s.current.Store(snap)
}

// Current returns the latest snapshot, or false if none has been
// published yet.
func (s *Store) Current() (*Snapshot, bool) {
	snap := s.current.Load()
	if snap == nil {
		return nil, false
	}
	return snap, true
}
