package fetch

import (
	"net/http"

	"github.com/adobe/fetch-retry-go/pkg/retry"
)

// Option customizes a single Fetch call
type Option func(*requestOptions)

type requestOptions struct {
	method       string
	header       http.Header
	body         []byte
	disableRetry bool
	retry        []retry.Option
}

func newRequestOptions(opts []Option) *requestOptions {
	ro := &requestOptions{
		method: http.MethodGet,
		header: make(http.Header),
	}
	for _, opt := range opts {
		opt(ro)
	}
	return ro
}

// WithMethod sets the HTTP method (default GET)
func WithMethod(method string) Option {
	return func(ro *requestOptions) {
		ro.method = method
	}
}

// WithHeader adds a request header
func WithHeader(key, value string) Option {
	return func(ro *requestOptions) {
		ro.header.Set(key, value)
	}
}

// WithBody sets the request body. The body is held as bytes so it can be
// replayed on every attempt.
func WithBody(body []byte) Option {
	return func(ro *requestOptions) {
		ro.body = body
	}
}

// WithRetryDisabled performs exactly one attempt and returns or propagates
// its outcome verbatim, with no retry semantics at all
func WithRetryDisabled() Option {
	return func(ro *requestOptions) {
		ro.disableRetry = true
	}
}

// WithRetryOptions overrides retry policy fields for this call
func WithRetryOptions(opts ...retry.Option) Option {
	return func(ro *requestOptions) {
		ro.retry = append(ro.retry, opts...)
	}
}
