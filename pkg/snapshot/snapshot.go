package snapshot

import (
	"sync/atomic"
	"time"
)

// Snapshot is one fully built, immutable view of the knowledge base: the
// entity store plus the relationship index. Analysis code reads a snapshot
// without coordination; nothing mutates it after Build returns.
type Snapshot struct {
	ID          string    // unique per build
	FeedVersion string    // version reported by the data provider, if any
	BuiltAt     time.Time
	Store       *EntityStore
	Index       *RelationshipIndex
}

// Handle publishes the current snapshot to concurrent readers. There is
// exactly one writer (the refresh path); readers load the pointer and keep
// using the snapshot they got even if a new one is published mid-request.
type Handle struct {
	current atomic.Pointer[Snapshot]
}

// NewHandle creates a handle publishing the given initial snapshot.
// The initial snapshot must not be nil: serving starts only after the
// first successful build.
func NewHandle(initial *Snapshot) *Handle {
	if initial == nil {
		panic("snapshot: NewHandle requires a non-nil initial snapshot")
	}
	h := &Handle{}
	h.current.Store(initial)
	return h
}

// Current returns the currently published snapshot.
func (h *Handle) Current() *Snapshot {
	return h.current.Load()
}

// Publish atomically replaces the published snapshot. Callers must only
// publish fully built snapshots; a failed build keeps the old one.
func (h *Handle) Publish(s *Snapshot) {
	if s == nil {
		return
	}
	h.current.Store(s)
}
