package retry

import (
	"context"
	"net/http"
	"time"
)

// ResponsePredicate decides whether a completed response should be retried.
// The context allows implementations to do their own I/O before answering.
type ResponsePredicate func(ctx context.Context, resp *http.Response) bool

// ErrorPredicate decides whether a transport error should be retried
type ErrorPredicate func(ctx context.Context, err error) bool

// RetryNotice is called before each retry wait with the attempt number that
// just failed, its cause (nil when a response triggered the retry), and the
// delay about to be applied
type RetryNotice func(attempt int, cause error, delay time.Duration)

// Option overrides a single policy field. An applied option always wins over
// environment-derived defaults, even when it carries the zero value.
type Option func(*Options)

// Options accumulates per-call overrides. Fields track whether they were
// explicitly set so a zero value can be told apart from an omitted one.
type Options struct {
	maxDuration    time.Duration
	hasMaxDuration bool

	initialDelay    time.Duration
	hasInitialDelay bool

	backoff    int
	hasBackoff bool

	socketTimeout    time.Duration
	hasSocketTimeout bool

	forceSocketTimeout bool

	onResponse    ResponsePredicate
	hasOnResponse bool

	onError    ErrorPredicate
	hasOnError bool

	onRetry RetryNotice
}

// WithMaxDuration sets the total time allowed across all attempts and waits
func WithMaxDuration(d time.Duration) Option {
	return func(o *Options) {
		o.maxDuration = d
		o.hasMaxDuration = true
	}
}

// WithInitialDelay sets the delay before the first retry
func WithInitialDelay(d time.Duration) Option {
	return func(o *Options) {
		o.initialDelay = d
		o.hasInitialDelay = true
	}
}

// WithBackoff sets the multiplier applied to the delay after every
// unsuccessful attempt
func WithBackoff(factor int) Option {
	return func(o *Options) {
		o.backoff = factor
		o.hasBackoff = true
	}
}

// WithSocketTimeout sets the per-attempt cancellation deadline
func WithSocketTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.socketTimeout = d
		o.hasSocketTimeout = true
	}
}

// WithForceSocketTimeout suppresses the automatic clamp of the socket
// timeout relative to the max duration
func WithForceSocketTimeout() Option {
	return func(o *Options) {
		o.forceSocketTimeout = true
	}
}

// WithResponsePredicate replaces the default response retry decision
func WithResponsePredicate(p ResponsePredicate) Option {
	return func(o *Options) {
		o.onResponse = p
		o.hasOnResponse = true
	}
}

// WithErrorPredicate replaces the default error retry decision
func WithErrorPredicate(p ErrorPredicate) Option {
	return func(o *Options) {
		o.onError = p
		o.hasOnError = true
	}
}

// WithRetryNotice registers a callback invoked before each retry wait
func WithRetryNotice(f RetryNotice) Option {
	return func(o *Options) {
		o.onRetry = f
	}
}
