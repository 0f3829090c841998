package inference

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"curator/internal/config"
	"curator/internal/services"
)

type retrier struct {
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
	sleeper     func(time.Duration)
}

func newRetrier(cfg config.Inference) retrier {
	return retrier{
		maxAttempts: cfg.MaxAttempts,
		baseDelay:   time.Duration(cfg.RetryBaseMillis) * time.Millisecond,
		maxDelay:    time.Duration(cfg.RetryMaxMillis) * time.Millisecond,
	}
}

// do runs op until it succeeds, the error stops being transient, or the
// attempt budget runs out. A Retry-After hint from the server overrides the
// computed backoff, capped at the configured maximum.
func (r retrier) do(ctx context.Context, op func() error) error {
	attempts := r.maxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if attempt == attempts || !IsTransient(lastErr) || ctx.Err() != nil {
			break
		}
		delay := r.backoffDelay(attempt)
		var statusErr *httpStatusError
		if errors.As(lastErr, &statusErr) && statusErr.RetryAfter > 0 {
			delay = r.capDelay(statusErr.RetryAfter)
		}
		if err := r.sleep(ctx, delay); err != nil {
			return err
		}
	}
	if lastErr != nil && IsTransient(lastErr) {
		marker := services.ErrTransient
		if isTimeout(lastErr) {
			marker = services.ErrTimeout
		}
		return services.Wrap(marker, "inference", "request",
			fmt.Sprintf("failed after %d attempts", attempts), lastErr)
	}
	return lastErr
}

func (r retrier) backoffDelay(attempt int) time.Duration {
	delay := r.baseDelay
	if delay <= 0 {
		return 0
	}
	for i := 1; i < attempt; i++ {
		if delay > r.maxDelay/2 {
			delay = r.maxDelay
			break
		}
		delay *= 2
	}
	return r.capDelay(delay)
}

func (r retrier) capDelay(delay time.Duration) time.Duration {
	if delay < 0 {
		return 0
	}
	if r.maxDelay > 0 && delay > r.maxDelay {
		return r.maxDelay
	}
	return delay
}

func (r retrier) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if r.sleeper != nil {
		r.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		delay := time.Until(when)
		if delay < 0 {
			return 0, false
		}
		return delay, true
	}
	return 0, false
}
