// Package ratelimit paces outgoing requests to the result service.
//
// The service publishes no limits, so pacing is opt-in: a SlidingWindow
// allows at most N requests in any window of the configured length, and
// Unlimited lets every request through.
//
// Usage:
//
//	// at most 60 requests per minute
//	limiter := ratelimit.NewSlidingWindow(60, time.Minute)
//
//	if err := limiter.Wait(ctx); err != nil {
//	    return err // cancelled
//	}
//	// Proceed with request
package ratelimit
