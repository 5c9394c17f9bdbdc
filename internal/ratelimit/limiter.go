package ratelimit

import (
	"sync"
	"time"
)

// Quota is a server-reported quota snapshot parsed from completion API
// response headers. Fields are -1 when the corresponding header was absent;
// absence of any header is not an error.
type Quota struct {
	RemainingRequests int
	RemainingTokens   int
	LimitRequests     int
	LimitTokens       int
}

// EmptyQuota returns a Quota with every field marked absent.
func EmptyQuota() Quota {
	return Quota{
		RemainingRequests: -1,
		RemainingTokens:   -1,
		LimitRequests:     -1,
		LimitTokens:       -1,
	}
}

// Limits are the conservative fallback limits used until the server has
// reported its own this session.
type Limits struct {
	RequestsPerMinute int
	RequestsPerDay    int
	TokensPerMinute   int
	TokensPerDay      int
}

// DefaultLimits returns fallbacks safe for the free completion tiers this
// pipeline runs against.
func DefaultLimits() Limits {
	return Limits{
		RequestsPerMinute: 30,
		RequestsPerDay:    14400,
		TokensPerMinute:   6000,
		TokensPerDay:      500000,
	}
}

// serverCooldown is the fixed wait applied when the server reports no
// remaining quota but gave no reset hint.
const serverCooldown = 20 * time.Second

// Limiter owns the process-wide rate state for one external API target:
// local per-minute and per-day request/token counters reset on wall-clock
// window boundaries, plus the most recent server-reported quota snapshot.
// Server values take precedence over local counters once seen.
//
// Create one per process and inject it into every caller sharing the same
// API key; all of them then observe the same quota view.
type Limiter struct {
	mu     sync.Mutex
	limits Limits
	now    func() time.Time

	minuteStart time.Time
	dayStart    time.Time

	requestsThisMinute int
	requestsToday      int
	tokensThisMinute   int
	tokensToday        int

	// Snapshot fields are -1 until the matching header has been seen; a
	// response carrying only some headers must not zero out the rest.
	serverSeen        bool
	remainingRequests int
	remainingTokens   int
	limitRequests     int
	limitTokens       int
}

// New creates a Limiter with the given fallback limits.
func New(limits Limits) *Limiter {
	l := &Limiter{
		limits: limits,
		now:    time.Now,

		remainingRequests: -1,
		remainingTokens:   -1,
		limitRequests:     -1,
		limitTokens:       -1,
	}
	t := l.now()
	l.minuteStart = t
	l.dayStart = t
	return l
}

// SetClock replaces the wall clock. Intended for tests.
func (l *Limiter) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
	t := now()
	l.minuteStart = t
	l.dayStart = t
}

// rollWindows resets counters whose wall-clock window has elapsed.
// Resets happen strictly on elapsed real time, never on call volume.
// Caller must hold mu.
func (l *Limiter) rollWindows(t time.Time) {
	if t.Sub(l.minuteStart) >= time.Minute {
		l.minuteStart = t
		l.requestsThisMinute = 0
		l.tokensThisMinute = 0
	}
	if t.Sub(l.dayStart) >= 24*time.Hour {
		l.dayStart = t
		l.requestsToday = 0
		l.tokensToday = 0
	}
}

// WaitDuration reports how long a caller must sleep before issuing a request
// estimated to cost estTokens tokens. Zero means the request may proceed now.
//
// Server-reported remaining counts, when seen this session, take precedence:
// if they cannot cover the request, the fixed cooldown applies. Otherwise the
// local counters are checked against the effective limits and the wait is the
// remaining time to the blocking window's boundary.
func (l *Limiter) WaitDuration(estTokens int) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	t := l.now()
	l.rollWindows(t)

	if l.serverSeen {
		if (l.remainingRequests >= 0 && l.remainingRequests < 1) ||
			(l.remainingTokens >= 0 && l.remainingTokens < estTokens) {
			return serverCooldown
		}
	}

	rpm, tpm := l.limits.RequestsPerMinute, l.limits.TokensPerMinute
	rpd, tpd := l.limits.RequestsPerDay, l.limits.TokensPerDay
	if l.serverSeen {
		if l.limitRequests > 0 {
			rpm = l.limitRequests
		}
		if l.limitTokens > 0 {
			tpm = l.limitTokens
		}
	}

	if l.requestsThisMinute+1 > rpm || l.tokensThisMinute+estTokens > tpm {
		return l.minuteStart.Add(time.Minute).Sub(t)
	}
	if l.requestsToday+1 > rpd || l.tokensToday+estTokens > tpd {
		return l.dayStart.Add(24 * time.Hour).Sub(t)
	}
	return 0
}

// Observe records a completed request: local counters grow by the actual
// observed cost and the server snapshot is overwritten by any quota headers
// the response carried.
func (l *Limiter) Observe(tokens int, q Quota) {
	l.mu.Lock()
	defer l.mu.Unlock()

	t := l.now()
	l.rollWindows(t)

	if tokens < 0 {
		tokens = 0
	}
	l.requestsThisMinute++
	l.requestsToday++
	l.tokensThisMinute += tokens
	l.tokensToday += tokens

	l.applyQuota(q)
}

// ObserveRateLimited records a request that was rejected with a quota error,
// keeping the server snapshot current so the next wait computation sees it.
func (l *Limiter) ObserveRateLimited(q Quota) {
	l.mu.Lock()
	defer l.mu.Unlock()

	t := l.now()
	l.rollWindows(t)

	l.requestsThisMinute++
	l.requestsToday++

	l.applyQuota(q)
}

// applyQuota overwrites the server snapshot with any present fields.
// Caller must hold mu.
func (l *Limiter) applyQuota(q Quota) {
	if q.RemainingRequests < 0 && q.RemainingTokens < 0 &&
		q.LimitRequests < 0 && q.LimitTokens < 0 {
		return
	}
	l.serverSeen = true
	if q.RemainingRequests >= 0 {
		l.remainingRequests = q.RemainingRequests
	}
	if q.RemainingTokens >= 0 {
		l.remainingTokens = q.RemainingTokens
	}
	if q.LimitRequests >= 0 {
		l.limitRequests = q.LimitRequests
	}
	if q.LimitTokens >= 0 {
		l.limitTokens = q.LimitTokens
	}
}

// Snapshot returns the current counters for run summaries.
func (l *Limiter) Snapshot() (requestsToday, tokensToday int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rollWindows(l.now())
	return l.requestsToday, l.tokensToday
}
