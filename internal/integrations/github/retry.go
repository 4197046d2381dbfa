package github

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"time"

	"github.com/google/go-github/v63/github"
)

// RetryConfig holds configuration for exponential backoff retry.
type RetryConfig struct {
	MaxRetries  int           // Maximum number of retry attempts (default: 3)
	BaseDelay   time.Duration // Initial delay before first retry (default: 1s)
	MaxDelay    time.Duration // Maximum delay cap (default: 30s)
	JitterRatio float64       // Jitter as fraction of delay, 0.0-1.0 (default: 0.25)
}

// DefaultRetryConfig returns sensible defaults for GitHub API retries.
// Defaults: 3 retries, 1s base delay, 30s max delay, 25% jitter.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:  3,
		BaseDelay:   1 * time.Second,
		MaxDelay:    30 * time.Second,
		JitterRatio: 0.25,
	}
}

// isRetryableError reports whether err is a transient GitHub API error
// that warrants a retry. It uses typed checking rather than string
// matching:
//   - primary and secondary rate limits surface as *github.RateLimitError
//     and *github.AbuseRateLimitError
//   - server errors are checked via *github.ErrorResponse (HTTP 5xx, 429)
//
// Client errors (4xx other than 429) are not retried.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return true
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return true
	}

	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		code := errResp.Response.StatusCode
		return code == http.StatusTooManyRequests || (code >= 500 && code < 600)
	}

	return false
}

// withRetry executes fn with exponential backoff. It retries only on
// transient errors (rate limits / 5xx). Non-retryable errors are
// returned immediately so callers see them without unnecessary delay.
func withRetry[T any](ctx context.Context, cfg RetryConfig, operation string, fn func() (T, error)) (T, error) {
	var zero T

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}

		// Don't retry non-transient errors.
		if !isRetryableError(err) {
			return zero, err
		}

		// Exhausted retries.
		if attempt == cfg.MaxRetries {
			return zero, fmt.Errorf("%s failed after %d retries: %w", operation, cfg.MaxRetries, err)
		}

		delay := backoffDelay(cfg, attempt)
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}

	return zero, fmt.Errorf("%s: retry loop exited unexpectedly", operation)
}

// backoffDelay computes the delay before the given attempt's retry:
// base * 2^attempt, capped at MaxDelay, with +/- JitterRatio jitter.
func backoffDelay(cfg RetryConfig, attempt int) time.Duration {
	delay := float64(cfg.BaseDelay) * math.Pow(2, float64(attempt))
	if max := float64(cfg.MaxDelay); delay > max {
		delay = max
	}
	if cfg.JitterRatio > 0 {
		jitter := delay * cfg.JitterRatio
		delay = delay - jitter + rand.Float64()*2*jitter
	}
	return time.Duration(delay)
}
