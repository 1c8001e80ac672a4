package forecast

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/lakeboard/lakeboard/internal/glofs"
)

// The GLOFS client never retries: that is the refresher's job. Outbound
// calls made from the background refresh path run through retries with
// exponential backoff and a circuit breaker.

// BackoffConfig controls exponential backoff behaviour.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultBackoff matches the refresh cadence: a few quick retries, never
// longer than a handful of seconds in total.
var DefaultBackoff = BackoffConfig{
	MaxRetries:      3,
	InitialInterval: 500 * time.Millisecond,
	MaxInterval:     5 * time.Second,
}

var (
	errCircuitOpen   = errors.New("circuit breaker open")
	errInvalidConfig = errors.New("invalid backoff configuration")
)

// retryable reports whether the upstream failure is worth another attempt.
// Rate limiting and server errors are; other API statuses are permanent.
func retryable(err error) bool {
	var apiErr *glofs.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	// Transport-level failures (refused connections, timeouts).
	return true
}

// doWithResilience executes the call with retries, exponential backoff and a
// circuit breaker.
func doWithResilience(ctx context.Context, cfg BackoffConfig, cb *gobreaker.CircuitBreaker, call func(context.Context) error) error {
	if cfg.MaxRetries < 0 || cfg.InitialInterval <= 0 {
		return errInvalidConfig
	}

	var attempt int
	var lastErr error

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		_, err := cb.Execute(func() (interface{}, error) {
			return nil, call(ctx)
		})
		if err == nil {
			return nil
		}

		// If the circuit is open, propagate immediately.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %v", errCircuitOpen, err)
		}

		if !retryable(err) {
			return err
		}

		lastErr = err
		if attempt >= cfg.MaxRetries {
			return lastErr
		}

		delay := cfg.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if delay > cfg.MaxInterval && cfg.MaxInterval > 0 {
			delay = cfg.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		attempt++
	}
}

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
}
