package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestStore_FreshBucketAdmitsCapacityThenDenies(t *testing.T) {
	t.Parallel()

	s := NewStore()
	now := time.Unix(1_700_000_000, 0).UTC()

	for i := 0; i < DefaultCapacity; i++ {
		if !s.Allow("10.0.0.1", now) {
			t.Fatalf("request %d should be admitted", i+1)
		}
	}
	if s.Allow("10.0.0.1", now) {
		t.Fatalf("request %d should be denied", DefaultCapacity+1)
	}
}

func TestStore_DenialHasNoSideEffect(t *testing.T) {
	t.Parallel()

	s := NewStore()
	now := time.Unix(1_700_000_000, 0).UTC()

	for i := 0; i < DefaultCapacity; i++ {
		s.Allow("k", now)
	}
	// Repeated denials must not push the bucket further into debt: one refill
	// period later the full capacity is available again.
	for i := 0; i < 10; i++ {
		if s.Allow("k", now) {
			t.Fatalf("denied bucket admitted request %d", i)
		}
	}

	later := now.Add(DefaultRefillPeriod)
	for i := 0; i < DefaultCapacity; i++ {
		if !s.Allow("k", later) {
			t.Fatalf("request %d after refill should be admitted", i+1)
		}
	}
	if s.Allow("k", later) {
		t.Fatalf("refill must not exceed capacity")
	}
}

func TestStore_RefillIsGreedy(t *testing.T) {
	t.Parallel()

	s := NewStore()
	now := time.Unix(1_700_000_000, 0).UTC()

	for i := 0; i < DefaultCapacity; i++ {
		s.Allow("k", now)
	}

	// One third of the period accrues exactly one token.
	third := now.Add(DefaultRefillPeriod / DefaultRefillAmount)
	if !s.Allow("k", third) {
		t.Fatalf("one token should have accrued after a third of the period")
	}
	if s.Allow("k", third) {
		t.Fatalf("only one token should have accrued")
	}
}

func TestStore_KeysAreIndependent(t *testing.T) {
	t.Parallel()

	s := NewStore()
	now := time.Unix(1_700_000_000, 0).UTC()

	for i := 0; i < DefaultCapacity; i++ {
		s.Allow("a", now)
	}
	if s.Allow("a", now) {
		t.Fatalf("a should be exhausted")
	}
	if !s.Allow("b", now) {
		t.Fatalf("b must not be affected by a's exhaustion")
	}
}

func TestStore_CustomLimits(t *testing.T) {
	t.Parallel()

	s := NewStore(WithLimits(5, 1, time.Minute))
	now := time.Unix(1_700_000_000, 0).UTC()

	for i := 0; i < 5; i++ {
		if !s.Allow("k", now) {
			t.Fatalf("request %d should be admitted", i+1)
		}
	}
	if s.Allow("k", now) {
		t.Fatal("6th request should be denied")
	}
	if !s.Allow("k", now.Add(time.Minute)) {
		t.Fatal("one token should have accrued after a full period")
	}
}

func TestStore_JanitorSweepsOnConfiguredInterval(t *testing.T) {
	t.Parallel()

	s := NewStore(WithIdleTTL(time.Millisecond), WithCleanupEvery(5*time.Millisecond))

	// lastSeen far in the past so the first sweep removes the bucket.
	s.Allow("stale", time.Now().Add(-time.Hour))
	if s.Len() != 1 {
		t.Fatalf("len=%d", s.Len())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.StartJanitor(ctx)

	deadline := time.After(2 * time.Second)
	for s.Len() != 0 {
		select {
		case <-deadline:
			t.Fatalf("janitor did not sweep, len=%d", s.Len())
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestStore_CleanupSweepsIdleBuckets(t *testing.T) {
	t.Parallel()

	s := NewStore(WithIdleTTL(time.Hour))
	now := time.Unix(1_700_000_000, 0).UTC()

	s.Allow("stale", now)
	s.Allow("active", now.Add(90*time.Minute))
	if s.Len() != 2 {
		t.Fatalf("len=%d", s.Len())
	}

	s.Cleanup(now.Add(2 * time.Hour))
	if s.Len() != 1 {
		t.Fatalf("expected stale bucket swept, len=%d", s.Len())
	}
	// A swept key starts over with a full bucket.
	if !s.Allow("stale", now.Add(2*time.Hour)) {
		t.Fatalf("recreated bucket should admit")
	}
}

func TestMemoryStats_Counts(t *testing.T) {
	t.Parallel()

	st := NewMemoryStats()
	ctx := context.Background()
	_ = st.Record(ctx, StatsEvent{Key: "k", Allowed: true})
	_ = st.Record(ctx, StatsEvent{Key: "k", Allowed: true})
	_ = st.Record(ctx, StatsEvent{Key: "k", Allowed: false})

	total := st.Total()
	if total.Allowed != 2 || total.Denied != 1 {
		t.Fatalf("total=%+v", total)
	}
	if c := st.ByKey()["k"]; c.Allowed != 2 || c.Denied != 1 {
		t.Fatalf("byKey=%+v", c)
	}
}

func TestMemoryStats_AccumulatesTokenUsage(t *testing.T) {
	t.Parallel()

	st := NewMemoryStats()
	ctx := context.Background()
	_ = st.RecordUsage(ctx, "a", 500)
	_ = st.RecordUsage(ctx, "a", 700)
	_ = st.RecordUsage(ctx, "b", 100)

	if total := st.Total(); total.Tokens != 1300 {
		t.Fatalf("total tokens=%d", total.Tokens)
	}
	if c := st.ByKey()["a"]; c.Tokens != 1200 {
		t.Fatalf("key tokens=%d", c.Tokens)
	}
}

func TestCostConversions(t *testing.T) {
	t.Parallel()

	if got := CostUSD(1000); got != 0.0015 {
		t.Fatalf("CostUSD(1000)=%v", got)
	}
	// 1K tokens costs $0.0015, so one dollar covers ~667 such requests.
	if got := RequestsPerDollar(1000); got != 667 {
		t.Fatalf("RequestsPerDollar(1000)=%d", got)
	}
	if got := RequestsPerDollar(0); got != 0 {
		t.Fatalf("RequestsPerDollar(0)=%d", got)
	}
}
