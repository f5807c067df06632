package cart

import (
	"sync"
	"time"
)

const DefaultIdleTTL = 2 * time.Hour

type sessionCart struct {
	store *Store
	timer *time.Timer
	gen   uint64
}

// Registry holds one Store per cart session. A session untouched for the
// idle TTL is dropped; carts are never persisted.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*sessionCart
	idleTTL  time.Duration
	onExpire func(sessionID string)
}

func NewRegistry(idleTTL time.Duration, onExpire func(sessionID string)) *Registry {
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	return &Registry{
		sessions: make(map[string]*sessionCart),
		idleTTL:  idleTTL,
		onExpire: onExpire,
	}
}

// Get returns the session's store, creating it on first use, and resets its idle timer.
func (r *Registry) Get(sessionID string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	sc := r.sessions[sessionID]
	if sc == nil {
		sc = &sessionCart{store: NewStore()}
		r.sessions[sessionID] = sc
	}
	r.resetTimerLocked(sessionID, sc)
	return sc.store
}

func (r *Registry) IdleTTL() time.Duration {
	return r.idleTTL
}

// Lookup returns the session's store without creating one.
func (r *Registry) Lookup(sessionID string) (*Store, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sc := r.sessions[sessionID]
	if sc == nil {
		return nil, false
	}
	r.resetTimerLocked(sessionID, sc)
	return sc.store, true
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Drop forgets a session immediately.
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	r.detachLocked(sessionID)
	r.mu.Unlock()
}

// Close stops every idle timer and forgets all sessions.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id := range r.sessions {
		r.detachLocked(id)
	}
}

func (r *Registry) resetTimerLocked(sessionID string, sc *sessionCart) {
	if sc.timer != nil {
		sc.timer.Stop()
	}
	sc.gen++
	gen := sc.gen
	sc.timer = time.AfterFunc(r.idleTTL, func() {
		r.expire(sessionID, sc, gen)
	})
}

func (r *Registry) expire(sessionID string, sc *sessionCart, gen uint64) {
	r.mu.Lock()
	// the session may have been touched, dropped or recreated since the timer was armed
	if r.sessions[sessionID] != sc || sc.gen != gen {
		r.mu.Unlock()
		return
	}
	r.detachLocked(sessionID)
	r.mu.Unlock()

	if r.onExpire != nil {
		r.onExpire(sessionID)
	}
}

func (r *Registry) detachLocked(sessionID string) {
	sc := r.sessions[sessionID]
	if sc == nil {
		return
	}
	delete(r.sessions, sessionID)
	if sc.timer != nil {
		sc.timer.Stop()
	}
}
