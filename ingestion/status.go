package ingestion

import (
	"fmt"
	"sync"
	"time"

	"github.com/poiesic/docqa/core"
)

// StatusEntry is the live processing state of one document.
type StatusEntry struct {
	Status    core.ProcessingStatus
	Error     string // Set when Status is Failed
	UpdatedAt time.Time
}

// StatusListener is notified after every status change. It is called from
// the goroutine that made the change and must not block.
type StatusListener func(documentID core.ID, entry StatusEntry)

// statusRegistry holds the status of documents a pipeline is working on.
// Writes are last-write-wins per document, guarded by the transition rules
// of core.ProcessingStatus. Entries are evicted once their terminal status
// is persisted.
type statusRegistry struct {
	mu      sync.RWMutex
	entries map[core.ID]StatusEntry
}

func newStatusRegistry() *statusRegistry {
	return &statusRegistry{entries: make(map[core.ID]StatusEntry)}
}

// set moves documentID to status. A document without an entry may only
// start out Pending.
func (r *statusRegistry) set(documentID core.ID, status core.ProcessingStatus, errMsg string) (StatusEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.entries[documentID]
	switch {
	case !ok && status != core.StatusPending:
		return StatusEntry{}, fmt.Errorf("document %d has no status, cannot move to %s", documentID, status)
	case ok && !current.Status.CanTransitionTo(status):
		return current, fmt.Errorf("document %d cannot move from %s to %s", documentID, current.Status, status)
	}

	entry := StatusEntry{Status: status, Error: errMsg, UpdatedAt: time.Now().UTC()}
	r.entries[documentID] = entry
	return entry, nil
}

func (r *statusRegistry) get(documentID core.ID) (StatusEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[documentID]
	return entry, ok
}

func (r *statusRegistry) evict(documentID core.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, documentID)
}
