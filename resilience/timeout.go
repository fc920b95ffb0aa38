package resilience

import (
	"context"
	"errors"
	"time"
)

// DefaultTimeout is the per-attempt deadline applied when none is configured.
const DefaultTimeout = 30 * time.Second

// TimeoutConfig configures the per-attempt deadline.
type TimeoutConfig struct {
	// Timeout bounds one attempt of the operation. Non-positive applies
	// DefaultTimeout.
	Timeout time.Duration
}

// Timeout bounds a single attempt of an operation. The Executor composes it
// inside Retry, so every retried attempt runs against a fresh deadline.
type Timeout struct {
	limit time.Duration
}

// NewTimeout creates a per-attempt deadline wrapper.
func NewTimeout(cfg TimeoutConfig) *Timeout {
	limit := cfg.Timeout
	if limit <= 0 {
		limit = DefaultTimeout
	}
	return &Timeout{limit: limit}
}

// Limit returns the per-attempt deadline.
func (t *Timeout) Limit() time.Duration { return t.limit }

// Execute runs op under the attempt deadline and reports ErrTimeout when that
// deadline cuts the attempt off, so retry classifiers can tell "this attempt
// took too long" apart from "the whole call was abandoned". A cancellation
// inherited from the caller propagates as the caller's context error instead.
// When the deadline fires while op is still running, op is left to wind down
// on its own cancelled context.
func (t *Timeout) Execute(ctx context.Context, op func(context.Context) error) error {
	attemptCtx, cancel := context.WithTimeout(ctx, t.limit)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- op(attemptCtx) }()

	select {
	case err := <-done:
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			// The attempt deadline expired, not the caller's.
			return ErrTimeout
		}
		return err
	case <-attemptCtx.Done():
		if err := ctx.Err(); err != nil {
			return err
		}
		return ErrTimeout
	}
}
