package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/adobe/fetch-retry-go/pkg/config"
	errs "github.com/adobe/fetch-retry-go/pkg/errors"
	"github.com/adobe/fetch-retry-go/pkg/logger"
	"github.com/adobe/fetch-retry-go/pkg/retry"
)

// Doer sends one HTTP request and returns a response or a transport error.
// *http.Client satisfies it; tests substitute their own.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client performs HTTP requests with automatic retry, exponential backoff
// and per-attempt timeout enforcement
type Client struct {
	transport Doer
	defaults  *config.RetryConfig
	logger    logger.Logger
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithTransport replaces the underlying HTTP transport
func WithTransport(d Doer) ClientOption {
	return func(c *Client) {
		c.transport = d
	}
}

// WithLogger replaces the logger
func WithLogger(log logger.Logger) ClientOption {
	return func(c *Client) {
		c.logger = log
	}
}

// WithDefaults pins the retry defaults instead of reading the environment
// once per call
func WithDefaults(defaults config.RetryConfig) ClientOption {
	return func(c *Client) {
		c.defaults = &defaults
	}
}

// New creates a fetch client. The transport deliberately carries no
// client-level timeout: per-attempt deadlines come from the retry policy.
func New(opts ...ClientOption) *Client {
	c := &Client{
		transport: &http.Client{},
		logger:    logger.GetLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Response is the transport response annotated with the effective socket
// timeout of the attempt that produced it and the number of attempts made
type Response struct {
	*http.Response

	SocketTimeout time.Duration
	Attempts      int
}

// errAttemptTimeout is the cancellation cause installed by the per-attempt
// timer, so a timeout it triggered is distinguishable from any other
// transport error
var errAttemptTimeout = errors.New("socket timeout reached")

// Fetch performs one logical request against url, retrying per the resolved
// policy until a terminal result or the time budget runs out. A response the
// predicates decide not to retry is a valid terminal result whatever its
// status code.
func (c *Client) Fetch(ctx context.Context, url string, opts ...Option) (*Response, error) {
	ro := newRequestOptions(opts)

	if ro.disableRetry {
		resp, _, err := c.attempt(ctx, ro, url, 0)
		if err != nil {
			return nil, err
		}
		return &Response{Response: resp, Attempts: 1}, nil
	}

	policy, err := retry.Resolve(c.retryDefaults(), ro.retry...)
	if err != nil {
		return nil, err
	}

	attempts := 0
	for policy.Remaining() > 0 {
		attempts++
		wait := policy.NextWait()

		c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
			"method":  ro.method,
			"url":     url,
			"attempt": attempts,
		})

		resp, timedOut, err := c.attempt(ctx, ro, url, policy.SocketTimeout)

		if !retry.ShouldRetry(ctx, policy, err, respOf(resp, err), wait) {
			if err == nil {
				c.logger.DebugWithFields("request completed", map[string]interface{}{
					"url":      url,
					"status":   resp.StatusCode,
					"attempts": attempts,
				})
				return &Response{
					Response:      resp,
					SocketTimeout: policy.SocketTimeout,
					Attempts:      attempts,
				}, nil
			}
			if timedOut {
				return nil, errs.NewRequestTimeout(url)
			}
			return nil, err
		}

		c.logRetry(url, attempts, wait, resp, err)
		if policy.OnRetry != nil {
			policy.OnRetry(attempts, err, wait)
		}
		if werr := retry.Wait(ctx, wait); werr != nil {
			return nil, fmt.Errorf("retry cancelled: %w", werr)
		}
		policy.Advance()
	}

	// Budget exhausted without a terminal outcome; same identity as a
	// per-attempt cancellation
	return nil, errs.NewRequestTimeout(url)
}

// Get performs a GET request with retry
func (c *Client) Get(ctx context.Context, url string, opts ...Option) (*Response, error) {
	return c.Fetch(ctx, url, opts...)
}

// Do performs a prepared request with retry. The request body, if any, is
// read fully up front so it can be replayed across attempts.
func (c *Client) Do(req *http.Request, opts ...Option) (*Response, error) {
	callOpts := []Option{
		WithMethod(req.Method),
		func(ro *requestOptions) {
			if req.Header != nil {
				ro.header = req.Header.Clone()
			}
		},
	}
	if req.Body != nil {
		data, err := io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading request body: %w", err)
		}
		callOpts = append(callOpts, WithBody(data))
	}
	callOpts = append(callOpts, opts...)
	return c.Fetch(req.Context(), req.URL.String(), callOpts...)
}

// attempt wraps one transport call with the per-attempt cancellation
// deadline. The deadline is skipped when the caller's context already
// carries its own, and the timer is released on every exit path. The
// response body is drained inside the attempt so a later read cannot
// outlive the cancelled context.
func (c *Client) attempt(ctx context.Context, ro *requestOptions, url string, socketTimeout time.Duration) (resp *http.Response, timedOut bool, err error) {
	attemptCtx := ctx
	cancel := context.CancelFunc(func() {})
	if socketTimeout > 0 {
		if _, hasDeadline := ctx.Deadline(); !hasDeadline {
			attemptCtx, cancel = context.WithTimeoutCause(ctx, socketTimeout, errAttemptTimeout)
		}
	}
	defer cancel()

	var body io.Reader
	if ro.body != nil {
		body = bytes.NewReader(ro.body)
	}
	req, err := http.NewRequestWithContext(attemptCtx, ro.method, url, body)
	if err != nil {
		return nil, false, err
	}
	for key, values := range ro.header {
		req.Header[key] = values
	}

	httpResp, err := c.transport.Do(req)
	if err != nil {
		return nil, errors.Is(context.Cause(attemptCtx), errAttemptTimeout), err
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, errors.Is(context.Cause(attemptCtx), errAttemptTimeout), err
	}
	httpResp.Body = io.NopCloser(bytes.NewReader(data))

	return httpResp, false, nil
}

// retryDefaults resolves the environment-derived defaults, read once per
// call unless the client pinned its own
func (c *Client) retryDefaults() config.RetryConfig {
	if c.defaults != nil {
		return *c.defaults
	}
	cfg := config.DefaultConfig()
	_ = cfg.LoadFromEnv()
	return cfg.Retry
}

// respOf keeps the exactly-one-of-error-or-response contract of the
// decision engine
func respOf(resp *http.Response, err error) *http.Response {
	if err != nil {
		return nil
	}
	return resp
}

// logRetry emits the retry notice
func (c *Client) logRetry(url string, attempt int, wait time.Duration, resp *http.Response, err error) {
	fields := map[string]interface{}{
		"url":     url,
		"attempt": attempt,
		"delay":   wait,
	}
	if err != nil {
		fields["error"] = err.Error()
	} else {
		fields["status"] = resp.StatusCode
	}
	c.logger.WarnWithFields("retrying request", fields)
}

var (
	defaultClient     *Client
	defaultClientOnce sync.Once
)

// Default returns the shared package-level client
func Default() *Client {
	defaultClientOnce.Do(func() {
		defaultClient = New()
	})
	return defaultClient
}

// Fetch performs a request using the shared client
func Fetch(ctx context.Context, url string, opts ...Option) (*Response, error) {
	return Default().Fetch(ctx, url, opts...)
}
