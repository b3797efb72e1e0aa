// Package ratelimit gates sensitive endpoints with per-client token
// buckets grouped into named tiers. Counters are process-local; a restart
// resets them, which is accepted.
package ratelimit

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Tier is a named limit: at most Limit events per Window per key.
type Tier struct {
	Name   string
	Limit  int
	Window time.Duration
}

// DefaultTiers mirrors the deployed throttling configuration: coarse
// global tiers applied to every endpoint plus tighter ones for the
// credential-sensitive routes.
func DefaultTiers() []Tier {
	return []Tier{
		{Name: "short", Limit: 3, Window: time.Second},
		{Name: "medium", Limit: 20, Window: 10 * time.Second},
		{Name: "long", Limit: 100, Window: time.Minute},
		{Name: "login", Limit: 5, Window: 5 * time.Minute},
		{Name: "register", Limit: 3, Window: 15 * time.Minute},
		{Name: "forgot", Limit: 3, Window: 15 * time.Minute},
	}
}

type clientLimiter struct {
	lim     *rate.Limiter
	lastHit time.Time
}

type tierStore struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	r       rate.Limit
	b       int
	ttl     time.Duration
}

// Store holds one limiter map per tier. Keys are caller-derived (client
// address plus endpoint identity).
type Store struct {
	tiers map[string]*tierStore
}

func NewStore(tiers []Tier) *Store {
	s := &Store{tiers: make(map[string]*tierStore, len(tiers))}
	for _, t := range tiers {
		ttl := 3 * t.Window
		if ttl < time.Minute {
			ttl = time.Minute
		}
		s.tiers[t.Name] = &tierStore{
			clients: make(map[string]*clientLimiter),
			r:       rate.Limit(float64(t.Limit) / t.Window.Seconds()),
			b:       t.Limit,
			ttl:     ttl,
		}
	}
	return s
}

// Allow reports whether one more event for key fits inside the tier's
// window. Unknown tiers fail closed.
func (s *Store) Allow(tier, key string) bool {
	ts, ok := s.tiers[tier]
	if !ok {
		return false
	}
	return ts.allow(key)
}

func (t *tierStore) allow(key string) bool {
	key = strings.TrimSpace(key)
	if key == "" {
		key = "unknown"
	}

	now := time.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	// lazy cleanup
	for k, v := range t.clients {
		if now.Sub(v.lastHit) > t.ttl {
			delete(t.clients, k)
		}
	}

	cl, ok := t.clients[key]
	if !ok {
		cl = &clientLimiter{
			lim:     rate.NewLimiter(t.r, t.b),
			lastHit: now,
		}
		t.clients[key] = cl
	}

	cl.lastHit = now
	return cl.lim.Allow()
}
