package tilesource

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// RetryPolicy bounds how often and how fast a failing fetch is repeated.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryPolicy tolerates a short outage without spinning forever.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts: 8,
	BaseDelay:   250 * time.Millisecond,
	MaxDelay:    10 * time.Second,
}

// Delay is the wait before attempt n+1 after n failures (n >= 1).
func (p RetryPolicy) Delay(n int) time.Duration {
	d := p.BaseDelay
	for i := 1; i < n && d < p.MaxDelay; i++ {
		d *= 2
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// FetchWithRetry calls src until it succeeds, the attempts run out or ctx
// ends. Rejected layouts count as attempts but are retried without delay,
// since the service itself did not fail.
func FetchWithRetry(ctx context.Context, src Source, p RetryPolicy, log *slog.Logger) (image.Image, uuid.UUID, error) {
	attempts := max(p.MaxAttempts, 1)
	var lastErr error
	failures := 0
	for attempt := 1; attempt <= attempts; attempt++ {
		img, id, err := src.Fetch(ctx)
		if err == nil {
			return img, id, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, uuid.Nil, ctx.Err()
		}
		if errors.Is(err, ErrRejectedLayout) {
			log.Debug("card rejected", "attempt", attempt, "err", err)
			continue
		}

		if attempt == attempts {
			break
		}

		failures++
		wait := p.Delay(failures)
		log.Warn("fetch failed", "attempt", attempt, "retry_in", wait, "err", err)
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, uuid.Nil, ctx.Err()
		case <-t.C:
		}
	}
	return nil, uuid.Nil, fmt.Errorf("tilesource: gave up after %d attempts: %w", attempts, lastErr)
}
