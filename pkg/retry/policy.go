package retry

import (
	"time"

	"github.com/adobe/fetch-retry-go/pkg/config"
	errs "github.com/adobe/fetch-retry-go/pkg/errors"
)

// Hard defaults, used when neither the environment nor the caller supplies
// a value.
const (
	DefaultMaxDuration   = 60 * time.Second
	DefaultInitialDelay  = 100 * time.Millisecond
	DefaultBackoffFactor = 2
	DefaultSocketTimeout = 30 * time.Second
)

// Policy is the resolved, per-call configuration governing retry timing and
// decisions. A Policy is created once at the start of a call and must not be
// shared across concurrent calls: Delay mutates as the call backs off.
type Policy struct {
	// Start anchors elapsed-time computation
	Start time.Time

	// MaxDuration is the total time allowed across all attempts and waits,
	// possibly clamped by an external deadline
	MaxDuration time.Duration

	// Delay is the time to wait before the next retry. It starts at the
	// initial delay and is multiplied by Backoff after every unsuccessful
	// attempt.
	Delay time.Duration

	// Backoff is the integer multiplier applied to Delay each round
	Backoff int

	// SocketTimeout is the per-attempt cancellation deadline
	SocketTimeout time.Duration

	// ForceSocketTimeout suppresses the SocketTimeout clamp
	ForceSocketTimeout bool

	// OnResponse decides whether a completed response should be retried
	OnResponse ResponsePredicate

	// OnError decides whether a transport error should be retried
	OnError ErrorPredicate

	// OnRetry, when set, observes each retry decision before the wait
	OnRetry RetryNotice
}

// Resolve turns environment-derived defaults and per-call options into a
// validated Policy. Validation happens before any network I/O; each invalid
// field fails with its own message.
func Resolve(defaults config.RetryConfig, opts ...Option) (*Policy, error) {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}

	p := &Policy{
		Start:              time.Now(),
		MaxDuration:        defaults.MaxDuration,
		Delay:              defaults.InitialDelay,
		Backoff:            defaults.BackoffFactor,
		SocketTimeout:      defaults.SocketTimeout,
		ForceSocketTimeout: defaults.ForceSocketTimeout,
		OnResponse:         DefaultResponsePredicate,
		OnError:            DefaultErrorPredicate,
		OnRetry:            o.onRetry,
	}

	// Fill the gaps a zero-value defaults struct leaves behind
	if p.MaxDuration <= 0 {
		p.MaxDuration = DefaultMaxDuration
	}
	if p.Delay <= 0 {
		p.Delay = DefaultInitialDelay
	}
	if p.Backoff < 1 {
		p.Backoff = DefaultBackoffFactor
	}
	if p.SocketTimeout <= 0 {
		p.SocketTimeout = DefaultSocketTimeout
	}

	// Explicit options win over defaults
	if o.hasMaxDuration {
		if o.maxDuration < 0 {
			return nil, errs.NewConfig("retryMaxDuration must not be a negative integer")
		}
		p.MaxDuration = o.maxDuration
	}
	if o.hasInitialDelay {
		if o.initialDelay < 0 {
			return nil, errs.NewConfig("retryInitialDelay must not be a negative integer")
		}
		p.Delay = o.initialDelay
	}
	if o.hasBackoff {
		if o.backoff < 1 {
			return nil, errs.NewConfig("retryBackoff must be a positive integer >= 1")
		}
		p.Backoff = o.backoff
	}
	if o.hasSocketTimeout {
		if o.socketTimeout < 0 {
			return nil, errs.NewConfig("socketTimeout must not be a negative integer")
		}
		p.SocketTimeout = o.socketTimeout
	}
	if o.forceSocketTimeout {
		p.ForceSocketTimeout = true
	}
	if o.hasOnResponse {
		if o.onResponse == nil {
			return nil, errs.NewConfig("retryOnHttpResponse must not be nil")
		}
		p.OnResponse = o.onResponse
	}
	if o.hasOnError {
		if o.onError == nil {
			return nil, errs.NewConfig("retryOnHttpError must not be nil")
		}
		p.OnError = o.onError
	}

	// An external deadline only ever shrinks the budget
	if defaults.Deadline > 0 {
		remaining := time.Until(time.UnixMilli(defaults.Deadline))
		if remaining < 0 {
			remaining = 0
		}
		if remaining < p.MaxDuration {
			p.MaxDuration = remaining
		}
	}

	// Keep at least one retry window inside the budget: a socket timeout
	// that alone would consume it is halved unless the caller forced it
	if p.SocketTimeout >= p.MaxDuration && !p.ForceSocketTimeout {
		p.SocketTimeout = p.MaxDuration / 2
	}

	return p, nil
}

// Remaining returns the unspent portion of the time budget, never negative
func (p *Policy) Remaining() time.Duration {
	remaining := p.MaxDuration - time.Since(p.Start)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// NextWait returns the delay to apply before the next retry, including a
// bounded random jitter to avoid thundering-herd synchronization
func (p *Policy) NextWait() time.Duration {
	return p.Delay + Jitter()
}

// Advance grows the delay geometrically after an unsuccessful attempt
func (p *Policy) Advance() {
	p.Delay *= time.Duration(p.Backoff)
}
