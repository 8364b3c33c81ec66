// Package tracker keeps the last-known text of every open document and turns
// new text into diff chunks against it.
package tracker

import (
	"sync"

	"github.com/Dheerajkumar69/AutoReadme/internal/diff"
	"github.com/Dheerajkumar69/AutoReadme/internal/types"
)

// Tracker owns one snapshot per document. Documents are locked independently;
// calls for the same document are serialized.
type Tracker struct {
	mu   sync.Mutex
	docs map[string]*entry
}

type entry struct {
	mu       sync.Mutex
	snapshot *types.TrackedSnapshot
	detached bool
}

func New() *Tracker {
	return &Tracker{docs: make(map[string]*entry)}
}

// Handle is exclusive access to one document until Release is called.
// It lets a caller keep the document locked across diff, classification,
// synthesis and insertion so a second save cannot diff against a stale snapshot.
type Handle struct {
	tracker  *Tracker
	id       string
	entry    *entry
	released bool
}

// Acquire blocks until the document is free and returns a handle to it.
func (t *Tracker) Acquire(documentID string) *Handle {
	for {
		t.mu.Lock()
		e, ok := t.docs[documentID]
		if !ok {
			e = &entry{}
			t.docs[documentID] = e
		}
		t.mu.Unlock()

		e.mu.Lock()
		if !e.detached {
			return &Handle{tracker: t, id: documentID, entry: e}
		}
		// forgotten while we waited; retry against the fresh entry
		e.mu.Unlock()
	}
}

// Release unlocks the document. An entry that never got a snapshot is
// dropped so lookups of unknown documents leave nothing behind.
func (h *Handle) Release() {
	if h.released {
		return
	}
	h.released = true
	if h.entry.snapshot == nil && !h.entry.detached {
		h.tracker.remove(h.id, h.entry)
	}
	h.entry.mu.Unlock()
}

// remove deletes the entry and marks it detached so waiters on it retry.
// Callers hold e.mu.
func (t *Tracker) remove(documentID string, e *entry) {
	t.mu.Lock()
	if t.docs[documentID] == e {
		delete(t.docs, documentID)
	}
	t.mu.Unlock()
	e.detached = true
	e.snapshot = nil
}

// Track records text as the document's snapshot unconditionally.
func (h *Handle) Track(text string) {
	if h.entry.snapshot == nil {
		h.entry.snapshot = &types.TrackedSnapshot{DocumentID: h.id}
	}
	h.entry.snapshot.FullText = text
	h.entry.snapshot.Revision++
}

// Diff returns the chunks between the snapshot and text, then advances the
// snapshot to text. It returns nil on first observation and on unchanged text.
func (h *Handle) Diff(text string) []types.DiffChunk {
	if h.entry.snapshot == nil {
		h.Track(text)
		return nil
	}
	if h.entry.snapshot.FullText == text {
		return nil
	}

	chunks := diff.Compute(h.entry.snapshot.FullText, text)
	h.Track(text)
	return chunks
}

func (h *Handle) Snapshot() (types.TrackedSnapshot, bool) {
	if h.entry.snapshot == nil {
		return types.TrackedSnapshot{}, false
	}
	return *h.entry.snapshot, true
}

func (t *Tracker) Track(documentID, text string) {
	h := t.Acquire(documentID)
	defer h.Release()
	h.Track(text)
}

func (t *Tracker) Diff(documentID, text string) []types.DiffChunk {
	h := t.Acquire(documentID)
	defer h.Release()
	return h.Diff(text)
}

func (t *Tracker) Snapshot(documentID string) (types.TrackedSnapshot, bool) {
	t.mu.Lock()
	e, ok := t.docs[documentID]
	t.mu.Unlock()
	if !ok {
		return types.TrackedSnapshot{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.detached || e.snapshot == nil {
		return types.TrackedSnapshot{}, false
	}
	return *e.snapshot, true
}

// Forget discards the document's snapshot, typically when it is closed.
func (t *Tracker) Forget(documentID string) {
	h := t.Acquire(documentID)
	defer h.Release()
	t.remove(documentID, h.entry)
}

// Documents returns the number of documents with a snapshot.
func (t *Tracker) Documents() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.docs)
}
