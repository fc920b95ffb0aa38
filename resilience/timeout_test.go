package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewTimeout_Limit(t *testing.T) {
	if got := NewTimeout(TimeoutConfig{}).Limit(); got != DefaultTimeout {
		t.Errorf("Limit() = %v, want default %v", got, DefaultTimeout)
	}
	if got := NewTimeout(TimeoutConfig{Timeout: 5 * time.Second}).Limit(); got != 5*time.Second {
		t.Errorf("Limit() = %v, want 5s", got)
	}
}

func TestTimeout_AttemptWithinLimit(t *testing.T) {
	timeout := NewTimeout(TimeoutConfig{Timeout: time.Second})

	err := timeout.Execute(context.Background(), func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); !ok {
			t.Error("attempt should run under a deadline")
		}
		return nil
	})
	if err != nil {
		t.Errorf("Execute() error = %v", err)
	}
}

func TestTimeout_OperationErrorPassesThrough(t *testing.T) {
	timeout := NewTimeout(TimeoutConfig{Timeout: time.Second})

	boom := errors.New("upstream failed")
	err := timeout.Execute(context.Background(), func(ctx context.Context) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("Execute() error = %v, want the operation error", err)
	}
}

func TestTimeout_SlowAttemptReportsErrTimeout(t *testing.T) {
	timeout := NewTimeout(TimeoutConfig{Timeout: 20 * time.Millisecond})

	err := timeout.Execute(context.Background(), func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
			return nil
		}
	})
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Execute() error = %v, want ErrTimeout", err)
	}
}

func TestTimeout_DeadlineAwareOperationStillErrTimeout(t *testing.T) {
	// An operation that surfaces its own context error when the deadline
	// fires must still classify as an attempt timeout, not bubble the raw
	// deadline error.
	timeout := NewTimeout(TimeoutConfig{Timeout: 10 * time.Millisecond})

	err := timeout.Execute(context.Background(), func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Execute() error = %v, want ErrTimeout", err)
	}
}

func TestTimeout_CallerCancellationWins(t *testing.T) {
	timeout := NewTimeout(TimeoutConfig{Timeout: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	err := timeout.Execute(ctx, func(ctx context.Context) error {
		cancel()
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Execute() error = %v, want context.Canceled", err)
	}
}

func TestTimeout_AbandonedOperationSeesCancelledContext(t *testing.T) {
	timeout := NewTimeout(TimeoutConfig{Timeout: 20 * time.Millisecond})

	observed := make(chan error, 1)
	err := timeout.Execute(context.Background(), func(ctx context.Context) error {
		<-ctx.Done()
		observed <- ctx.Err()
		return ctx.Err()
	})
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Execute() error = %v, want ErrTimeout", err)
	}

	select {
	case got := <-observed:
		if !errors.Is(got, context.DeadlineExceeded) {
			t.Errorf("operation saw context error %v, want deadline exceeded", got)
		}
	case <-time.After(time.Second):
		t.Error("abandoned operation never saw its context cancelled")
	}
}

func TestTimeout_FreshDeadlinePerExecute(t *testing.T) {
	// The pipeline retries by calling Execute again; each attempt must get
	// its own full budget rather than the remainder of the first.
	timeout := NewTimeout(TimeoutConfig{Timeout: 40 * time.Millisecond})
	ctx := context.Background()

	for attempt := 1; attempt <= 3; attempt++ {
		err := timeout.Execute(ctx, func(ctx context.Context) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(25 * time.Millisecond):
				return nil
			}
		})
		if err != nil {
			t.Fatalf("attempt %d error = %v, want a fresh deadline per attempt", attempt, err)
		}
	}
}
