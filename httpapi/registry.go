package httpapi

import (
	"context"
	"sync"
	"time"

	"github.com/fwojciec/advisor"
)

const defaultIdleTimeout = 30 * time.Minute

// entry owns one advisor session. turn serializes all access to the
// session; handlers acquire it with TryLock so a second request during a
// running turn fails fast instead of queueing.
type entry struct {
	turn         sync.Mutex
	session      *advisor.Session
	lastActivity time.Time
}

// Registry holds independent advisor sessions keyed by session id.
type Registry struct {
	mu          sync.RWMutex
	entries     map[string]*entry
	idleTimeout time.Duration
	now         func() time.Time
	onExpire    func(id string)
}

// NewRegistry creates a Registry that expires sessions idle for longer
// than idleTimeout.
func NewRegistry(idleTimeout time.Duration) *Registry {
	if idleTimeout <= 0 {
		idleTimeout = defaultIdleTimeout
	}
	return &Registry{
		entries:     make(map[string]*entry),
		idleTimeout: idleTimeout,
		now:         time.Now,
	}
}

// SetExpireHook registers a callback run for every expired session.
func (r *Registry) SetExpireHook(hook func(id string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onExpire = hook
}

// Create registers a new unauthenticated session and returns its id.
func (r *Registry) Create() string {
	now := r.now()
	s := advisor.NewSession(now)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[s.ID] = &entry{session: s, lastActivity: now}
	return s.ID
}

// acquire locks the session for exclusive use. The caller must call the
// returned release function.
func (r *Registry) acquire(id string) (*advisor.Session, func(), error) {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok {
		return nil, nil, advisor.ErrSessionNotFound
	}
	if !e.turn.TryLock() {
		return nil, nil, advisor.ErrTurnInProgress
	}
	release := func() {
		r.mu.Lock()
		e.lastActivity = r.now()
		r.mu.Unlock()
		e.turn.Unlock()
	}
	return e.session, release, nil
}

// Remove deletes a session. It reports whether the session existed.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[id]
	delete(r.entries, id)
	return ok
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// StartJanitor expires idle sessions every interval until ctx is done.
// The returned channel is closed when the janitor has stopped.
func (r *Registry) StartJanitor(ctx context.Context, interval time.Duration) <-chan struct{} {
	if interval <= 0 {
		interval = time.Minute
	}
	done := make(chan struct{})
	ticker := time.NewTicker(interval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.expireIdle()
			}
		}
	}()
	return done
}

func (r *Registry) expireIdle() {
	now := r.now()
	var expired []string

	r.mu.Lock()
	for id, e := range r.entries {
		if now.Sub(e.lastActivity) < r.idleTimeout {
			continue
		}
		// Sessions mid-turn are left for the next sweep.
		if !e.turn.TryLock() {
			continue
		}
		delete(r.entries, id)
		e.turn.Unlock()
		expired = append(expired, id)
	}
	hook := r.onExpire
	r.mu.Unlock()

	if hook != nil {
		for _, id := range expired {
			hook(id)
		}
	}
}
