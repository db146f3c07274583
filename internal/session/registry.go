package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-pos/internal/cart"
	"github.com/noah-isme/backend-pos/internal/events"
	"github.com/noah-isme/backend-pos/internal/sale"
)

// ErrNotFound indicates the checkout session does not exist or has expired.
var ErrNotFound = errors.New("session not found")

// Session is one checkout session: a cart and its finalizer, owned
// exclusively by the terminal that opened it.
type Session struct {
	ID        uuid.UUID
	Cart      *cart.Store
	Finalizer *sale.Finalizer

	createdAt time.Time
	lastSeen  time.Time
}

// Registry tracks live checkout sessions. The mutex protects only the map;
// each session itself is single-owner and unlocked.
type Registry struct {
	StoreID string
	Repo    sale.Repository
	Events  *events.Bus
	TTL     time.Duration
	Now     func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

func (r *Registry) now() time.Time {
	if r != nil && r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Registry) ttl() time.Duration {
	if r == nil || r.TTL <= 0 {
		return 8 * time.Hour
	}
	return r.TTL
}

// Open creates a fresh checkout session with an empty cart.
func (r *Registry) Open(ctx context.Context) (*Session, error) {
	if r == nil || r.Repo == nil {
		return nil, errors.New("session registry not configured")
	}
	c := cart.New()
	s := &Session{
		ID:   uuid.New(),
		Cart: c,
		Finalizer: &sale.Finalizer{
			StoreID: r.StoreID,
			Cart:    c,
			Repo:    r.Repo,
			Events:  r.Events,
		},
		createdAt: r.now(),
		lastSeen:  r.now(),
	}
	r.mu.Lock()
	if r.sessions == nil {
		r.sessions = make(map[uuid.UUID]*Session)
	}
	r.sessions[s.ID] = s
	r.mu.Unlock()

	if r.Events != nil {
		_, _ = r.Events.Emit(ctx, events.TopicSessionOpened, s.ID, map[string]any{"storeId": r.StoreID})
	}
	return s, nil
}

// Get returns the session and refreshes its idle deadline.
func (r *Registry) Get(id uuid.UUID) (*Session, error) {
	if r == nil {
		return nil, ErrNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	s.lastSeen = r.now()
	return s, nil
}

// Close abandons the session and discards its cart.
func (r *Registry) Close(ctx context.Context, id uuid.UUID) error {
	if r == nil {
		return ErrNotFound
	}
	r.mu.Lock()
	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	r.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	s.Cart.Reset()
	if r.Events != nil {
		_, _ = r.Events.Emit(ctx, events.TopicSessionClosed, id, map[string]any{"storeId": r.StoreID})
	}
	return nil
}

// Sweep evicts sessions idle past the TTL. A session with a submission in
// flight is never evicted.
func (r *Registry) Sweep() int {
	if r == nil {
		return 0
	}
	cutoff := r.now().Add(-r.ttl())
	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := 0
	for id, s := range r.sessions {
		if s.lastSeen.After(cutoff) {
			continue
		}
		if s.Finalizer.State() == sale.StateSubmitting {
			continue
		}
		delete(r.sessions, id)
		evicted++
	}
	return evicted
}

// StartSweeper runs Sweep on an interval until the context is cancelled.
func (r *Registry) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.Sweep()
			}
		}
	}()
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
