package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/freshspot/jobharvest/internal/ratelimit"
)

// scriptedCompleter returns its responses in order, one per call.
type scriptedCompleter struct {
	calls     int
	responses []func() (*Result, error)
}

func (s *scriptedCompleter) Complete(ctx context.Context, instruction, prompt string) (*Result, error) {
	idx := s.calls
	s.calls++
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	return s.responses[idx]()
}

func (s *scriptedCompleter) GetModel() string { return "test-model" }

func okResult(content string) func() (*Result, error) {
	return func() (*Result, error) {
		return &Result{Content: content, Tokens: 50, Quota: ratelimit.EmptyQuota()}, nil
	}
}

func rateLimited(retryAfter time.Duration) func() (*Result, error) {
	return func() (*Result, error) {
		return nil, &APIError{Status: 429, Message: "rate limit reached", RetryAfter: retryAfter, Quota: ratelimit.EmptyQuota()}
	}
}

func newTestCaller(client completer) (*Caller, *[]time.Duration) {
	sleeps := &[]time.Duration{}
	c := NewCaller(client, ratelimit.New(ratelimit.Limits{
		RequestsPerMinute: 10000,
		RequestsPerDay:    100000,
		TokensPerMinute:   10000000,
		TokensPerDay:      100000000,
	}))
	c.sleep = func(ctx context.Context, d time.Duration) error {
		*sleeps = append(*sleeps, d)
		return nil
	}
	c.jitter = func() time.Duration { return 0 }
	return c, sleeps
}

func TestGenerateRetriesRateLimitThenSucceeds(t *testing.T) {
	client := &scriptedCompleter{responses: []func() (*Result, error){
		rateLimited(0),
		rateLimited(0),
		okResult("generated text"),
	}}
	caller, sleeps := newTestCaller(client)

	got, err := caller.Generate(context.Background(), "instruction", "prompt")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if got != "generated text" {
		t.Errorf("content = %q, want %q", got, "generated text")
	}
	if client.calls != 3 {
		t.Errorf("calls = %d, want 3", client.calls)
	}

	// Exponential delays after the first and second rejection.
	if len(*sleeps) != 2 {
		t.Fatalf("sleeps = %v, want 2 backoff waits", *sleeps)
	}
	if (*sleeps)[0] != 5*time.Second || (*sleeps)[1] != 10*time.Second {
		t.Errorf("backoff delays = %v, want [5s 10s]", *sleeps)
	}
}

func TestGenerateHonorsRetryAfterWhenLarger(t *testing.T) {
	client := &scriptedCompleter{responses: []func() (*Result, error){
		rateLimited(42 * time.Second),
		okResult("ok"),
	}}
	caller, sleeps := newTestCaller(client)

	if _, err := caller.Generate(context.Background(), "i", "p"); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(*sleeps) != 1 || (*sleeps)[0] != 42*time.Second {
		t.Errorf("delays = %v, want the server's 42s Retry-After", *sleeps)
	}
}

func TestGenerateExhaustsAttempts(t *testing.T) {
	client := &scriptedCompleter{responses: []func() (*Result, error){
		rateLimited(0),
	}}
	caller, _ := newTestCaller(client)

	_, err := caller.Generate(context.Background(), "i", "p")
	if !errors.Is(err, ErrRateLimitExceeded) {
		t.Fatalf("err = %v, want ErrRateLimitExceeded", err)
	}
	if client.calls != maxAttempts {
		t.Errorf("calls = %d, want %d", client.calls, maxAttempts)
	}
}

func TestGenerateRetriesWrappedRateLimitError(t *testing.T) {
	client := &scriptedCompleter{responses: []func() (*Result, error){
		func() (*Result, error) {
			return nil, fmt.Errorf("completion call: %w",
				&APIError{Status: 429, Message: "rate limit reached", Quota: ratelimit.EmptyQuota()})
		},
		okResult("ok"),
	}}
	caller, sleeps := newTestCaller(client)

	got, err := caller.Generate(context.Background(), "i", "p")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if got != "ok" {
		t.Errorf("content = %q, want %q", got, "ok")
	}
	if client.calls != 2 {
		t.Errorf("calls = %d, want 2 (wrapped quota rejection must be retried)", client.calls)
	}
	if len(*sleeps) != 1 {
		t.Errorf("sleeps = %v, want one backoff wait", *sleeps)
	}
}

func TestGenerateDoesNotRetryOtherErrors(t *testing.T) {
	wantErr := &APIError{Status: 500, Message: "internal"}
	client := &scriptedCompleter{responses: []func() (*Result, error){
		func() (*Result, error) { return nil, wantErr },
	}}
	caller, _ := newTestCaller(client)

	_, err := caller.Generate(context.Background(), "i", "p")
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want the API error unretried", err)
	}
	if client.calls != 1 {
		t.Errorf("calls = %d, want 1", client.calls)
	}
}

func TestGenerateWaitsOutLocalBudget(t *testing.T) {
	client := &scriptedCompleter{responses: []func() (*Result, error){
		okResult("ok"),
	}}
	caller, sleeps := newTestCaller(client)
	// Exhaust the per-minute request budget so the pre-call wait triggers.
	caller.limiter = ratelimit.New(ratelimit.Limits{
		RequestsPerMinute: 1,
		RequestsPerDay:    1000,
		TokensPerMinute:   100000,
		TokensPerDay:      1000000,
	})
	caller.limiter.Observe(10, ratelimit.EmptyQuota())

	if _, err := caller.Generate(context.Background(), "i", "p"); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(*sleeps) == 0 {
		t.Fatal("expected a pre-call wait while the minute budget is exhausted")
	}
}
