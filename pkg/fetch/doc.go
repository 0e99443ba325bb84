// Package fetch performs a single logical HTTP request with automatic
// retry, exponential backoff and per-attempt timeout enforcement, while
// respecting an overall time budget that may itself be clamped by an
// external execution deadline (for example a serverless function's
// remaining runtime).
//
//	resp, err := fetch.Fetch(ctx, "https://example.com/api",
//		fetch.WithRetryOptions(
//			retry.WithMaxDuration(10*time.Second),
//			retry.WithInitialDelay(200*time.Millisecond),
//		),
//	)
//
// Disabling retry performs exactly one attempt and returns or propagates
// its outcome verbatim:
//
//	resp, err := fetch.Fetch(ctx, url, fetch.WithRetryDisabled())
//
// Environment-derived defaults (FETCH_RETRY_MAX_DURATION and friends, see
// pkg/config) are read once per call and lose to explicit options.
package fetch
