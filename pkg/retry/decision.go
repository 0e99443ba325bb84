package retry

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"time"
)

// ShouldRetry evaluates, after one attempt, whether a retry should occur.
// Exactly one of attemptErr/resp is populated per evaluation. A nil policy
// (retry disabled) never retries. When less than nextWait remains of the
// time budget there is no room to usefully wait and retry, so the answer is
// no regardless of the outcome.
func ShouldRetry(ctx context.Context, p *Policy, attemptErr error, resp *http.Response, nextWait time.Duration) bool {
	if p == nil {
		return false
	}
	if p.Remaining() < nextWait {
		return false
	}
	if attemptErr != nil {
		return p.OnError(ctx, attemptErr)
	}
	return p.OnResponse(ctx, resp)
}

// DefaultResponsePredicate retries server errors and nothing else. A 4xx
// will not change on a retry; it is a valid terminal result.
func DefaultResponsePredicate(_ context.Context, resp *http.Response) bool {
	return resp.StatusCode >= http.StatusInternalServerError
}

// DefaultErrorPredicate retries transport-level failures and per-attempt
// timeout cancellations. A cancellation of the caller's own context is
// final: no further attempt can succeed under it.
func DefaultErrorPredicate(_ context.Context, err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
