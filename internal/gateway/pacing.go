package gateway

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultRequestPause is the minimum spacing between requests, to stay under the upstream rate limits.
	DefaultRequestPause = 3 * time.Second
	// DefaultRetryDelay is slept after a failed request before trying again.
	DefaultRetryDelay = 60 * time.Second
)

// Pacing controls how requests are spaced out and retried.
// Limiter is shared by every gateway and goroutine holding a copy, so requests
// leave one at a time however many websites are processed at once. A nil
// Limiter does not wait.
// Failed requests are retried after RetryDelay with no upper bound on attempts;
// cancelling the context is the only way to give up.
type Pacing struct {
	Limiter    *rate.Limiter
	RetryDelay time.Duration
}

// NewPacing spaces requests at least pause apart.
func NewPacing(pause, retryDelay time.Duration) Pacing {
	limit := rate.Inf
	if pause > 0 {
		limit = rate.Every(pause)
	}
	return Pacing{
		Limiter:    rate.NewLimiter(limit, 1),
		RetryDelay: retryDelay,
	}
}

// DefaultPacing returns the pacing used against the public trackers.
func DefaultPacing() Pacing {
	return NewPacing(DefaultRequestPause, DefaultRetryDelay)
}

// do runs call until it succeeds, waiting for the limiter before each attempt
// and sleeping p.RetryDelay after each failure.
func (p Pacing) do(ctx context.Context, logger *log.Logger, what string, call func() error) error {
	for attempt := 1; ; attempt++ {
		if err := p.wait(ctx); err != nil {
			return fmt.Errorf("%s: %w", what, err)
		}
		err := call()
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return fmt.Errorf("%s: %w", what, ctx.Err())
		}
		logger.Printf("%s failed (attempt %d): %v", what, attempt, err)
		logger.Printf("  Sleeping %s before retrying...", p.RetryDelay)
		if err := sleep(ctx, p.RetryDelay); err != nil {
			return fmt.Errorf("%s: %w", what, err)
		}
	}
}

func (p Pacing) wait(ctx context.Context) error {
	if p.Limiter == nil {
		return ctx.Err()
	}
	return p.Limiter.Wait(ctx)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
