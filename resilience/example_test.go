package resilience_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonwraymond/routeops/resilience"
)

func ExampleRetry_Execute() {
	retry := resilience.NewRetry(resilience.RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
	})

	attempts := 0
	err := retry.Execute(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient failure")
		}
		return nil
	})

	fmt.Println("error:", err)
	fmt.Println("attempts:", attempts)
	// Output:
	// error: <nil>
	// attempts: 3
}

func ExampleRetry_Execute_retryIf() {
	terminal := errors.New("bad request")
	retry := resilience.NewRetry(resilience.RetryConfig{
		MaxAttempts: 5,
		BaseDelay:   time.Millisecond,
		RetryIf: func(err error) bool {
			return !errors.Is(err, terminal)
		},
	})

	attempts := 0
	err := retry.Execute(context.Background(), func(ctx context.Context) error {
		attempts++
		return terminal
	})

	fmt.Println("error:", err)
	fmt.Println("attempts:", attempts)
	// Output:
	// error: bad request
	// attempts: 1
}

func ExampleNewExecutor() {
	executor := resilience.NewExecutor(
		resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   time.Millisecond,
		})),
		resilience.WithTimeout(time.Second),
	)

	err := executor.Execute(context.Background(), func(ctx context.Context) error {
		// Each attempt gets a fresh one-second deadline.
		return nil
	})

	fmt.Println("error:", err)
	// Output:
	// error: <nil>
}
