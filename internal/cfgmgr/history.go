package cfgmgr

import (
	"sync"
	"time"

	"github.com/muurk/blegw/internal/gwcfg"
)

// DefaultHistorySize is the number of snapshots kept by a Manager.
const DefaultHistorySize = 10

// Snapshot is a configuration as it was before an update.
type Snapshot struct {
	Config gwcfg.Config
	// Empty is set when Config was the untouched default state.
	Empty       bool
	Timestamp   time.Time
	Description string
}

// History is a bounded list of snapshots. The oldest entry is dropped when
// the list is full.
type History struct {
	mu        sync.Mutex
	snapshots []Snapshot
	max       int
	now       func() time.Time
}

// NewHistory creates a history retaining at most max snapshots.
func NewHistory(max int) *History {
	if max <= 0 {
		max = DefaultHistorySize
	}
	return &History{
		snapshots: make([]Snapshot, 0, max),
		max:       max,
		now:       time.Now,
	}
}

// Push records snap, stamping it with the current time when unset.
func (h *History) Push(snap Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if snap.Timestamp.IsZero() {
		snap.Timestamp = h.now()
	}
	h.snapshots = append(h.snapshots, snap)
	if len(h.snapshots) > h.max {
		h.snapshots = h.snapshots[1:]
	}
}

// Pop removes and returns the newest snapshot.
func (h *History) Pop() (Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.snapshots) == 0 {
		return Snapshot{}, false
	}
	last := h.snapshots[len(h.snapshots)-1]
	h.snapshots = h.snapshots[:len(h.snapshots)-1]
	return last, true
}

// All returns a copy of the snapshots, oldest first.
func (h *History) All() []Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Snapshot, len(h.snapshots))
	copy(out, h.snapshots)
	return out
}

// Clear drops every snapshot.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.snapshots = h.snapshots[:0]
}
