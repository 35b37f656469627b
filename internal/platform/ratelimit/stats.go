package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// StatsEvent is one admission decision worth recording.
type StatsEvent struct {
	Key     string
	Allowed bool
	At      time.Time
}

// StatsStore persists admission decisions and the token cost of admitted
// requests. Recording is best-effort: callers must not fail a request because
// stats could not be written.
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error

	// RecordUsage adds the token cost reported by the model for one
	// completed generation.
	RecordUsage(ctx context.Context, key string, tokens int) error
}

type Counters struct {
	Allowed int64
	Denied  int64
	Tokens  int64
}

// costPerTokenUSD is the provider's price for the model in use
// ($0.0015 per 1K tokens).
const costPerTokenUSD = 0.0015 / 1000

// CostUSD converts a token count into the dollar amount billed for it.
func CostUSD(tokens int) float64 {
	return float64(tokens) * costPerTokenUSD
}

// RequestsPerDollar estimates how many requests of the same token cost fit in
// one dollar.
func RequestsPerDollar(tokens int) int64 {
	if tokens <= 0 {
		return 0
	}
	return int64(math.Round(1 / CostUSD(tokens)))
}

// MemoryStats counts decisions in process memory. It does not expire anything
// and is meant for single-instance deployments and tests.
type MemoryStats struct {
	mu    sync.Mutex
	total Counters
	byKey map[string]Counters
}

func NewMemoryStats() *MemoryStats {
	return &MemoryStats{byKey: make(map[string]Counters)}
}

func (s *MemoryStats) Record(_ context.Context, ev StatsEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.byKey[ev.Key]
	if ev.Allowed {
		s.total.Allowed++
		c.Allowed++
	} else {
		s.total.Denied++
		c.Denied++
	}
	s.byKey[ev.Key] = c
	return nil
}

func (s *MemoryStats) RecordUsage(_ context.Context, key string, tokens int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total.Tokens += int64(tokens)
	c := s.byKey[key]
	c.Tokens += int64(tokens)
	s.byKey[key] = c
	return nil
}

func (s *MemoryStats) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *MemoryStats) ByKey() map[string]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Counters, len(s.byKey))
	for k, v := range s.byKey {
		out[k] = v
	}
	return out
}

// RedisStats counts decisions in redis hashes so multiple instances share one
// view. Per-key series carry a TTL; the total is cumulative.
type RedisStats struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStats(rdb *redis.Client) *RedisStats {
	return &RedisStats{
		rdb:    rdb,
		prefix: "ratelimit:stats",
		ttl:    7 * 24 * time.Hour,
	}
}

func (s *RedisStats) Record(ctx context.Context, ev StatsEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	field := "denied"
	if ev.Allowed {
		field = "allowed"
	}

	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, s.prefix+":total", field, 1)
	if ev.Key != "" {
		keyKey := s.prefix + ":key:" + ev.Key
		pipe.HIncrBy(ctx, keyKey, field, 1)
		if s.ttl > 0 {
			pipe.Expire(ctx, keyKey, s.ttl)
		}
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStats) RecordUsage(ctx context.Context, key string, tokens int) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, s.prefix+":total", "tokens", int64(tokens))
	if key != "" {
		keyKey := s.prefix + ":key:" + key
		pipe.HIncrBy(ctx, keyKey, "tokens", int64(tokens))
		if s.ttl > 0 {
			pipe.Expire(ctx, keyKey, s.ttl)
		}
	}
	_, err := pipe.Exec(ctx)
	return err
}
