package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"Storefront/pkg/kit"
)

// DefaultSessionTTL matches the default session token lifetime.
const DefaultSessionTTL = 24 * time.Hour

// ErrSessionEnded is returned by Open for a session that End destroyed.
var ErrSessionEnded = errors.New("session ended")

func Key(sessionID string) string {
	return "cart:" + sessionID
}

type SessionsOption func(*Sessions)

// WithSessionTTL sets how long an unused engine stays in memory and how
// long an ended session id is refused. Use the token TTL.
func WithSessionTTL(ttl time.Duration) SessionsOption {
	return func(s *Sessions) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

type openEngine struct {
	engine   *Engine
	lastUsed time.Time
}

// Sessions constructs one Engine per session on first use. An engine's
// lifetime is its session's: End drops it, deletes its stored cart and
// refuses the id until any token for it has expired. Engines idle past the
// TTL are evicted; their carts stay in storage and hydrate on next use.
type Sessions struct {
	store   Storage
	options func(sessionID string) []Option
	log     *zap.Logger
	metrics *Metrics
	ttl     time.Duration
	now     func() time.Time

	mu      sync.Mutex
	engines map[string]*openEngine
	ended   map[string]time.Time
}

// NewSessions builds a registry. options, which may be nil, supplies the
// per-session engine options; the storage key is always Key(sessionID).
func NewSessions(store Storage, options func(sessionID string) []Option, log *zap.Logger, m *Metrics, opts ...SessionsOption) *Sessions {
	s := &Sessions{
		store:   store,
		options: options,
		log:     kit.OrNop(log),
		metrics: m,
		ttl:     DefaultSessionTTL,
		now:     time.Now,
		engines: map[string]*openEngine{},
		ended:   map[string]time.Time{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open returns the session's engine, hydrating it from storage the first
// time the session is seen by this process.
func (s *Sessions) Open(sessionID string) (*Engine, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if until, ok := s.ended[sessionID]; ok {
		if now.Before(until) {
			return nil, ErrSessionEnded
		}
		delete(s.ended, sessionID)
	}

	if oe, ok := s.engines[sessionID]; ok {
		oe.lastUsed = now
		return oe.engine, nil
	}

	s.sweep(now)

	var opts []Option
	if s.options != nil {
		opts = s.options(sessionID)
	}
	opts = append(opts, WithKey(Key(sessionID)), WithLogger(s.log.With(zap.String("session_id", sessionID))))

	e := NewEngine(s.store, opts...)
	s.engines[sessionID] = &openEngine{engine: e, lastUsed: now}
	s.gauge()
	return e, nil
}

// End destroys the session's cart, in memory and in storage.
func (s *Sessions) End(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	oe, ok := s.engines[sessionID]
	delete(s.engines, sessionID)
	s.ended[sessionID] = s.now().Add(s.ttl)
	s.gauge()
	s.mu.Unlock()

	if ok {
		return oe.engine.discard(ctx)
	}
	return s.store.Delete(ctx, Key(sessionID))
}

// Ended reports whether End destroyed the session and its tokens may still
// be unexpired.
func (s *Sessions) Ended(sessionID string) bool {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	until, ok := s.ended[sessionID]
	return ok && now.Before(until)
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.engines)
}

func (s *Sessions) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// sweep drops engines idle past the TTL and ended ids whose tokens have
// expired.
func (s *Sessions) sweep(now time.Time) {
	cutoff := now.Add(-s.ttl)
	for id, oe := range s.engines {
		if !oe.lastUsed.After(cutoff) {
			delete(s.engines, id)
			s.log.Debug("evicted idle cart", zap.String("session_id", id))
		}
	}
	for id, until := range s.ended {
		if !now.Before(until) {
			delete(s.ended, id)
		}
	}
}

func (s *Sessions) gauge() {
	if s.metrics != nil {
		s.metrics.OpenSessions.Set(float64(len(s.engines)))
	}
}
