package session

import (
	"context"
	"log"
	"sync"
	"time"
)

// Factory builds the session for a cookie id the registry has not seen yet.
type Factory func(id string) *Session

// Registry maps session cookie ids to live sessions. Dropped sessions are
// rebuilt on demand and re-initialize from their persisted tokens.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	factory  Factory
	now      func() time.Time
}

func NewRegistry(f Factory) *Registry {
	return &Registry{sessions: make(map[string]*Session), factory: f, now: time.Now}
}

func (r *Registry) Get(id string) *Session {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if !ok {
		s = r.factory(id)
		r.sessions[id] = s
	}
	r.mu.Unlock()
	s.touch(r.now())
	return s
}

func (r *Registry) Forget(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops sessions not seen for idle and returns how many were dropped.
func (r *Registry) Sweep(idle time.Duration) int {
	cutoff := r.now().Add(-idle)
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, s := range r.sessions {
		if s.idleSince().Before(cutoff) {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}

// Janitor sweeps every interval until ctx is done.
func (r *Registry) Janitor(ctx context.Context, interval, idle time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := r.Sweep(idle); n > 0 {
				log.Printf("[session] swept %d idle sessions", n)
			}
		}
	}
}
