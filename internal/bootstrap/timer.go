package bootstrap

import (
	"sync"
	"time"
)

// restartTimer posts an event when it expires. Restarting or stopping it
// invalidates any expiry already in flight by bumping the generation.
type restartTimer struct {
	kind EventKind
	post func(Event)

	mu  sync.Mutex
	t   *time.Timer
	gen uint64
	on  bool
}

func newRestartTimer(kind EventKind, post func(Event)) *restartTimer {
	return &restartTimer{kind: kind, post: post}
}

// Start (re)arms the timer to expire after d.
func (r *restartTimer) Start(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.t != nil {
		r.t.Stop()
	}
	r.gen++
	r.on = true
	gen := r.gen
	r.t = time.AfterFunc(d, func() {
		r.post(Event{Kind: r.kind, gen: gen})
	})
}

func (r *restartTimer) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.t != nil {
		r.t.Stop()
		r.t = nil
	}
	r.gen++
	r.on = false
}

// Active reports whether the timer is running.
func (r *restartTimer) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.on
}

// Fired consumes an expiry. It returns false for stale expiries.
func (r *restartTimer) Fired(gen uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.on || gen != r.gen {
		return false
	}
	r.on = false
	r.t = nil
	return true
}
