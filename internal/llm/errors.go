package llm

import (
	"errors"
	"fmt"
	"time"

	"github.com/freshspot/jobharvest/internal/ratelimit"
)

// ErrRateLimitExceeded is returned when every retry attempt for a single
// generation was rejected with a quota error.
var ErrRateLimitExceeded = errors.New("rate limit exceeded after all retry attempts")

// APIError is a non-2xx response from the completion API, carrying whatever
// quota hints the response headers included.
type APIError struct {
	Status     int
	Message    string
	RetryAfter time.Duration // zero when the Retry-After header was absent
	Quota      ratelimit.Quota
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("completion API returned HTTP %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("completion API returned HTTP %d", e.Status)
}

// IsRateLimited reports whether err is a quota rejection (HTTP 429).
func IsRateLimited(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status == 429
	}
	return false
}
