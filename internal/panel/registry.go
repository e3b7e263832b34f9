package panel

import (
	"context"
	"sync"
	"time"

	"umspanel/internal/metrics"
	"umspanel/internal/session"
)

// Factory builds the controller for a new panel session.
type Factory func(sessionID string) *session.Controller

// Registry maps panel session ids to their controllers and forgets sessions
// that have been idle longer than the TTL.
type Registry struct {
	factory Factory
	ttl     time.Duration
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

type entry struct {
	ctrl     *session.Controller
	lastSeen time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry(ttl time.Duration, factory Factory) *Registry {
	return &Registry{
		factory:  factory,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*entry),
	}
}

// Get returns the controller for id, creating a logged-out one on first use.
func (r *Registry) Get(id string) *session.Controller {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok {
		e = &entry{ctrl: r.factory(id)}
		r.sessions[id] = e
		metrics.SetSessions(len(r.sessions))
	}
	e.lastSeen = r.now()
	return e.ctrl
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep logs out and drops idle sessions, returning how many were removed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.ttl)
	removed := 0
	for id, e := range r.sessions {
		if e.lastSeen.Before(cutoff) && e.ctrl.State() != session.AuthPending {
			e.ctrl.Logout()
			delete(r.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		metrics.SetSessions(len(r.sessions))
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.Sweep()
		case <-ctx.Done():
			return
		}
	}
}
