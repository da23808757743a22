// Package retry runs an operation until it succeeds, fails with a
// non-retryable error, or exhausts its attempt budget.
//
// The policy is data, not code: callers pick the number of attempts, a
// backoff strategy and a predicate, and may swap the sleeper so tests can
// simulate transport faults without waiting.
//
//	cfg := &retry.Config{
//		MaxAttempts: 3,
//		Backoff:     &retry.ConstantBackoff{Delay: 3 * time.Second},
//		RetryIf:     retry.DefaultRetryIf,
//	}
//	set, err := retry.DoWithResult(ctx, func() (models.ResultSet, error) {
//		return client.FetchResults(ctx, semester, student)
//	}, cfg)
//
// Only errors classified as network faults by pkg/errors are retried by
// DefaultRetryIf. A rejected request (non-200) or a malformed payload is
// returned on the first attempt.
package retry
