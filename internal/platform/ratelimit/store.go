package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Defaults mirror the production limits on recipe generation: a fresh client
// gets 3 requests, refilled greedily at 3 tokens per 24 hours.
const (
	DefaultCapacity     = 3
	DefaultRefillAmount = 3
	DefaultRefillPeriod = 1440 * time.Minute
)

// Store holds one token bucket per client key. Buckets are created lazily on
// first observation of a key and are safe for concurrent use; the
// check-and-consume on a single bucket is atomic.
//
// The map grows with the number of distinct clients. Cleanup/StartJanitor
// sweep buckets untouched for longer than the idle TTL; an untouched bucket is
// full again after one refill period, so sweeping it loses nothing.
type Store struct {
	mu      sync.Mutex
	entries map[string]*storeEntry

	limit rate.Limit
	burst int

	idleTTL      time.Duration
	cleanupEvery time.Duration
}

type storeEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

type StoreOption func(*Store)

// WithLimits overrides the bucket shape: capacity tokens, refilled greedily at
// refill tokens per period.
func WithLimits(capacity, refill int, period time.Duration) StoreOption {
	return func(s *Store) {
		s.burst = capacity
		s.limit = rate.Every(period / time.Duration(refill))
	}
}

func WithIdleTTL(d time.Duration) StoreOption {
	return func(s *Store) { s.idleTTL = d }
}

func WithCleanupEvery(d time.Duration) StoreOption {
	return func(s *Store) { s.cleanupEvery = d }
}

func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		entries:      make(map[string]*storeEntry),
		limit:        rate.Every(DefaultRefillPeriod / DefaultRefillAmount),
		burst:        DefaultCapacity,
		idleTTL:      DefaultRefillPeriod,
		cleanupEvery: time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Allow attempts to consume one token from the bucket for key at instant now.
// It returns true and consumes the token when one is available, otherwise it
// returns false with no side effect. Time is passed in rather than read from
// the wall clock so refill behavior is deterministic under test.
func (s *Store) Allow(key string, now time.Time) bool {
	s.mu.Lock()
	ent, ok := s.entries[key]
	if !ok {
		ent = &storeEntry{lim: rate.NewLimiter(s.limit, s.burst)}
		s.entries[key] = ent
	}
	ent.lastSeen = now
	s.mu.Unlock()

	return ent.lim.AllowN(now, 1)
}

// Len reports the number of tracked client keys.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Cleanup drops buckets not seen since now minus the idle TTL.
func (s *Store) Cleanup(now time.Time) {
	cutoff := now.Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, ent := range s.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(s.entries, k)
		}
	}
}

// StartJanitor sweeps idle buckets periodically until ctx is canceled.
func (s *Store) StartJanitor(ctx context.Context) {
	if s.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-t.C:
				s.Cleanup(now)
			}
		}
	}()
}
