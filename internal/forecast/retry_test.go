package forecast

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/lakeboard/lakeboard/internal/glofs"
)

var testBackoff = BackoffConfig{
	MaxRetries:      3,
	InitialInterval: time.Millisecond,
	MaxInterval:     5 * time.Millisecond,
}

func TestDoWithResilienceRetriesServerErrors(t *testing.T) {
	attempts := 0
	err := doWithResilience(context.Background(), testBackoff, newBreaker("test"), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return &glofs.APIError{Endpoint: "frame", StatusCode: http.StatusBadGateway, Body: "upstream down"}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestDoWithResilienceDoesNotRetryClientErrors(t *testing.T) {
	attempts := 0
	err := doWithResilience(context.Background(), testBackoff, newBreaker("test"), func(ctx context.Context) error {
		attempts++
		return &glofs.APIError{Endpoint: "frame", StatusCode: http.StatusNotFound, Body: "no such run"}
	})
	if err == nil {
		t.Fatal("expected an error")
	}
	if attempts != 1 {
		t.Fatalf("4xx must not be retried, got %d attempts", attempts)
	}
}

func TestDoWithResilienceExhaustsRetries(t *testing.T) {
	attempts := 0
	wantErr := &glofs.APIError{Endpoint: "frame", StatusCode: http.StatusInternalServerError, Body: "boom"}
	err := doWithResilience(context.Background(), testBackoff, newBreaker("test"), func(ctx context.Context) error {
		attempts++
		return wantErr
	})
	if !errors.Is(err, wantErr) && err.Error() != wantErr.Error() {
		t.Fatalf("expected last error to surface, got %v", err)
	}
	if attempts != testBackoff.MaxRetries+1 {
		t.Fatalf("expected %d attempts, got %d", testBackoff.MaxRetries+1, attempts)
	}
}

func TestDoWithResilienceHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := doWithResilience(ctx, testBackoff, newBreaker("test"), func(ctx context.Context) error {
		t.Fatal("call must not run after cancellation")
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDoWithResilienceInvalidConfig(t *testing.T) {
	err := doWithResilience(context.Background(), BackoffConfig{MaxRetries: -1, InitialInterval: time.Millisecond}, newBreaker("test"), func(ctx context.Context) error {
		return nil
	})
	if !errors.Is(err, errInvalidConfig) {
		t.Fatalf("expected invalid config error, got %v", err)
	}
}

func TestRetryableClassification(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{&glofs.APIError{StatusCode: http.StatusTooManyRequests}, true},
		{&glofs.APIError{StatusCode: http.StatusBadGateway}, true},
		{&glofs.APIError{StatusCode: http.StatusBadRequest}, false},
		{context.Canceled, false},
		{context.DeadlineExceeded, false},
		{errors.New("connection refused"), true},
	}
	for _, c := range cases {
		if got := retryable(c.err); got != c.want {
			t.Fatalf("retryable(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}
