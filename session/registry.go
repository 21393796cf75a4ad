package session

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Registry keeps at most one session per user. Sessions are stored by value:
// callers get a copy, mutate it and Put it back, so a failed step never leaves
// a half-applied session behind. Concurrent steps by the same user are
// last-write-wins.
type Registry[S any] struct {
	mu       sync.Mutex
	sessions map[int64]entry[S]
	ttl      time.Duration
	now      func() time.Time
	onExpire func(userID int64, s S)
}

type entry[S any] struct {
	session S
	touched time.Time
}

// NewRegistry creates a registry. A zero ttl disables expiry.
func NewRegistry[S any](ttl time.Duration) *Registry[S] {
	return &Registry[S]{
		sessions: make(map[int64]entry[S]),
		ttl:      ttl,
		now:      time.Now,
	}
}

// SetClock replaces the time source
func (r *Registry[S]) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

// OnExpire registers a callback for sessions dropped by inactivity
func (r *Registry[S]) OnExpire(fn func(userID int64, s S)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onExpire = fn
}

func (r *Registry[S]) expired(e entry[S], now time.Time) bool {
	return r.ttl > 0 && now.Sub(e.touched) > r.ttl
}

// Get returns the user's session. An expired session is removed and reported as absent.
func (r *Registry[S]) Get(userID int64) (S, bool) {
	r.mu.Lock()
	e, ok := r.sessions[userID]
	if ok && r.expired(e, r.now()) {
		delete(r.sessions, userID)
		onExpire := r.onExpire
		r.mu.Unlock()
		if onExpire != nil {
			onExpire(userID, e.session)
		}
		var zero S
		return zero, false
	}
	r.mu.Unlock()

	if !ok {
		var zero S
		return zero, false
	}
	return e.session, true
}

// Put stores the session and marks it as touched now
func (r *Registry[S]) Put(userID int64, s S) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[userID] = entry[S]{session: s, touched: r.now()}
}

// Take removes and returns the user's session when match accepts it, so only
// one caller can claim a given session. A rejected session stays in place.
// An expired session is removed and reported as absent.
func (r *Registry[S]) Take(userID int64, match func(S) bool) (S, bool) {
	var zero S
	r.mu.Lock()
	e, ok := r.sessions[userID]
	if ok && r.expired(e, r.now()) {
		delete(r.sessions, userID)
		onExpire := r.onExpire
		r.mu.Unlock()
		if onExpire != nil {
			onExpire(userID, e.session)
		}
		return zero, false
	}
	if !ok || (match != nil && !match(e.session)) {
		r.mu.Unlock()
		return zero, false
	}
	delete(r.sessions, userID)
	r.mu.Unlock()
	return e.session, true
}

// Delete drops the user's session and reports whether there was one
func (r *Registry[S]) Delete(userID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[userID]
	delete(r.sessions, userID)
	return ok
}

// Len returns the number of stored sessions, expired ones included
func (r *Registry[S]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep removes every expired session and returns how many were dropped
func (r *Registry[S]) Sweep() int {
	r.mu.Lock()
	now := r.now()
	var dropped []entry[S]
	var ids []int64
	for userID, e := range r.sessions {
		if r.expired(e, now) {
			delete(r.sessions, userID)
			dropped = append(dropped, e)
			ids = append(ids, userID)
		}
	}
	onExpire := r.onExpire
	r.mu.Unlock()

	if onExpire != nil {
		for i, e := range dropped {
			onExpire(ids[i], e.session)
		}
	}
	return len(dropped)
}

// RunJanitor sweeps expired sessions every interval until ctx is done.
// It returns immediately when expiry is disabled.
func (r *Registry[S]) RunJanitor(ctx context.Context, interval time.Duration) {
	if r.ttl <= 0 || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				log.WithField("expired", n).Debug("Swept inactive sessions")
			}
		}
	}
}
