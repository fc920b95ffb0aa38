// Package resilience provides retry and timeout wrappers for outbound calls.
//
// Retry runs an operation a bounded number of times with a configurable
// backoff strategy (linear by default, exponential and constant available)
// and an optional RetryIf classifier deciding which errors are worth another
// attempt. Timeout bounds a single attempt. The Executor composes the two so
// each retried attempt gets a fresh deadline:
//
//	retry := resilience.NewRetry(resilience.RetryConfig{
//	    MaxAttempts: 3,
//	    BaseDelay:   100 * time.Millisecond,
//	})
//
//	executor := resilience.NewExecutor(
//	    resilience.WithRetry(retry),
//	    resilience.WithTimeout(5*time.Second),
//	)
//
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return callUpstream(ctx)
//	})
package resilience
