package ratelimit

import (
	"testing"
	"time"
)

// fakeClock is a controllable wall clock for window tests.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(limits Limits) (*Limiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	l := New(limits)
	l.SetClock(clock.now)
	return l, clock
}

func TestMinuteWindowResetsOnElapsedTime(t *testing.T) {
	l, clock := newTestLimiter(Limits{
		RequestsPerMinute: 2,
		RequestsPerDay:    1000,
		TokensPerMinute:   100000,
		TokensPerDay:      1000000,
	})

	l.Observe(10, EmptyQuota())
	l.Observe(10, EmptyQuota())

	if wait := l.WaitDuration(10); wait == 0 {
		t.Fatal("expected a wait once the per-minute request limit is hit")
	}

	// 59s elapsed: still inside the window, regardless of call volume.
	clock.advance(59 * time.Second)
	if wait := l.WaitDuration(10); wait == 0 {
		t.Fatal("window must not reset before 60 real seconds have elapsed")
	}

	// 60s elapsed: counters reset to zero.
	clock.advance(1 * time.Second)
	if wait := l.WaitDuration(10); wait != 0 {
		t.Fatalf("expected no wait after the minute window elapsed, got %v", wait)
	}
}

func TestWaitIsRemainingTimeToWindowBoundary(t *testing.T) {
	l, clock := newTestLimiter(Limits{
		RequestsPerMinute: 1,
		RequestsPerDay:    1000,
		TokensPerMinute:   100000,
		TokensPerDay:      1000000,
	})

	l.Observe(10, EmptyQuota())
	clock.advance(20 * time.Second)

	wait := l.WaitDuration(10)
	if wait != 40*time.Second {
		t.Fatalf("wait = %v, want 40s (remaining time to the minute boundary)", wait)
	}
}

func TestTokenBudgetBlocksBeforeRequestBudget(t *testing.T) {
	l, _ := newTestLimiter(Limits{
		RequestsPerMinute: 100,
		RequestsPerDay:    1000,
		TokensPerMinute:   500,
		TokensPerDay:      1000000,
	})

	l.Observe(450, EmptyQuota())

	if wait := l.WaitDuration(100); wait == 0 {
		t.Fatal("expected a wait when the estimated cost exceeds the token budget")
	}
	if wait := l.WaitDuration(40); wait != 0 {
		t.Fatal("small request should still fit inside the token budget")
	}
}

func TestServerQuotaTakesPrecedence(t *testing.T) {
	l, _ := newTestLimiter(DefaultLimits())

	// Local counters are nowhere near the fallback limits, but the server
	// says nothing remains.
	q := EmptyQuota()
	q.RemainingRequests = 0
	l.Observe(10, q)

	wait := l.WaitDuration(10)
	if wait != serverCooldown {
		t.Fatalf("wait = %v, want the fixed server cooldown %v", wait, serverCooldown)
	}
}

func TestPartialQuotaHeadersKeepAbsentFieldsAbsent(t *testing.T) {
	l, _ := newTestLimiter(DefaultLimits())

	// Only the request headers came back; the token fields were absent.
	l.Observe(10, Quota{
		RemainingRequests: 100,
		LimitRequests:     200,
		RemainingTokens:   -1,
		LimitTokens:       -1,
	})

	if wait := l.WaitDuration(50); wait != 0 {
		t.Fatalf("wait = %v, want 0: an unreported token counter must not read as exhausted", wait)
	}

	// Symmetric case: only the token headers came back.
	l2, _ := newTestLimiter(DefaultLimits())
	l2.Observe(10, Quota{
		RemainingRequests: -1,
		LimitRequests:     -1,
		RemainingTokens:   5000,
		LimitTokens:       6000,
	})

	if wait := l2.WaitDuration(50); wait != 0 {
		t.Fatalf("wait = %v, want 0: an unreported request counter must not read as exhausted", wait)
	}
}

func TestServerLimitsReplaceFallbacks(t *testing.T) {
	l, _ := newTestLimiter(Limits{
		RequestsPerMinute: 2,
		RequestsPerDay:    1000,
		TokensPerMinute:   100000,
		TokensPerDay:      1000000,
	})

	// Server reports a larger per-minute limit than the fallback.
	q := EmptyQuota()
	q.LimitRequests = 10
	q.RemainingRequests = 8
	l.Observe(10, q)
	l.Observe(10, EmptyQuota())

	// Two local requests recorded; fallback limit of 2 would block, the
	// server-reported limit of 10 must not.
	if wait := l.WaitDuration(10); wait != 0 {
		t.Fatalf("expected server-reported limit to be effective, got wait %v", wait)
	}
}

func TestDayWindowResetsAfter24Hours(t *testing.T) {
	l, clock := newTestLimiter(Limits{
		RequestsPerMinute: 1000,
		RequestsPerDay:    3,
		TokensPerMinute:   100000,
		TokensPerDay:      1000000,
	})

	for i := 0; i < 3; i++ {
		l.Observe(10, EmptyQuota())
	}
	if wait := l.WaitDuration(10); wait == 0 {
		t.Fatal("expected a wait once the daily request limit is hit")
	}

	clock.advance(24 * time.Hour)
	if wait := l.WaitDuration(10); wait != 0 {
		t.Fatalf("expected no wait after the day window elapsed, got %v", wait)
	}
}

func TestSnapshotCounts(t *testing.T) {
	l, _ := newTestLimiter(DefaultLimits())

	l.Observe(100, EmptyQuota())
	l.Observe(250, EmptyQuota())

	requests, tokens := l.Snapshot()
	if requests != 2 {
		t.Errorf("requests = %d, want 2", requests)
	}
	if tokens != 350 {
		t.Errorf("tokens = %d, want 350", tokens)
	}
}
