package llm

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/freshspot/jobharvest/internal/logger"
	"github.com/freshspot/jobharvest/internal/ratelimit"
)

const (
	maxAttempts = 5
	baseDelay   = 5 * time.Second
)

// completer is the minimal completion surface the retry loop needs.
type completer interface {
	Complete(ctx context.Context, instruction, prompt string) (*Result, error)
	GetModel() string
}

// Caller wraps a completion client with rate awareness: every call first
// consults the shared limiter, and quota rejections are retried with
// exponential backoff. All generation in the process goes through one Caller
// so the limiter sees every request.
type Caller struct {
	client  completer
	limiter *ratelimit.Limiter

	// injectable for deterministic tests
	sleep  func(ctx context.Context, d time.Duration) error
	jitter func() time.Duration
}

// NewCaller creates a rate-aware completion caller sharing the given limiter.
func NewCaller(client completer, limiter *ratelimit.Limiter) *Caller {
	return &Caller{
		client:  client,
		limiter: limiter,
		sleep:   sleepCtx,
		jitter:  randomJitter,
	}
}

// GetModel returns the underlying model name.
func (c *Caller) GetModel() string {
	return c.client.GetModel()
}

// Generate produces one completion, waiting out local budget exhaustion
// before the call and retrying quota rejections afterwards.
//
// A 429 response consumes one of the fixed retry attempts; the wait before
// the next attempt honors the server's Retry-After when present and larger
// than the exponential delay. Non-quota errors are returned to the caller
// unretried. When every attempt is rejected, ErrRateLimitExceeded wraps up
// the loop so callers can mark the item as soft-skipped rather than failed.
func (c *Caller) Generate(ctx context.Context, instruction, prompt string) (string, error) {
	log := logger.FromContext(ctx)
	estTokens := EstimateTokens(instruction + prompt)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if wait := c.limiter.WaitDuration(estTokens); wait > 0 {
			log.WithField("wait_seconds", wait.Seconds()).
				Debug("Rate budget exhausted, waiting before request")
			if err := c.sleep(ctx, wait); err != nil {
				return "", err
			}
		}

		result, err := c.client.Complete(ctx, instruction, prompt)
		if err == nil {
			c.limiter.Observe(result.Tokens, result.Quota)
			return result.Content, nil
		}

		// errors.As rather than a type assertion: the rejection may arrive
		// wrapped by intermediate layers.
		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.Status != 429 {
			return "", err
		}

		c.limiter.ObserveRateLimited(apiErr.Quota)
		lastErr = err

		if attempt == maxAttempts {
			break
		}

		delay := baseDelay * (1 << (attempt - 1))
		if apiErr.RetryAfter > delay {
			delay = apiErr.RetryAfter
		}
		delay += c.jitter()

		log.WithFields(logger.Fields{
			"attempt":       attempt,
			"delay_seconds": delay.Seconds(),
		}).Warn("Completion API rate limited, backing off")

		if err := c.sleep(ctx, delay); err != nil {
			return "", err
		}
	}

	log.WithField("attempts", maxAttempts).WithError(lastErr).
		Error("Completion abandoned after repeated rate limiting")
	return "", ErrRateLimitExceeded
}

// sleepCtx sleeps for d or until the context is canceled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// randomJitter returns 1-3s of noise so parallel runs do not retry in step.
func randomJitter() time.Duration {
	return time.Second + time.Duration(rand.Int63n(int64(2*time.Second)))
}
