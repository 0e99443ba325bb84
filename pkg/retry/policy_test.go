package retry

import (
	"errors"
	"testing"
	"time"

	"github.com/adobe/fetch-retry-go/pkg/config"
	errs "github.com/adobe/fetch-retry-go/pkg/errors"
)

func TestResolveHardDefaults(t *testing.T) {
	p, err := Resolve(config.RetryConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.MaxDuration != DefaultMaxDuration {
		t.Errorf("expected max duration %v, got %v", DefaultMaxDuration, p.MaxDuration)
	}
	if p.Delay != DefaultInitialDelay {
		t.Errorf("expected initial delay %v, got %v", DefaultInitialDelay, p.Delay)
	}
	if p.Backoff != DefaultBackoffFactor {
		t.Errorf("expected backoff %d, got %d", DefaultBackoffFactor, p.Backoff)
	}
	if p.SocketTimeout != DefaultSocketTimeout {
		t.Errorf("expected socket timeout %v, got %v", DefaultSocketTimeout, p.SocketTimeout)
	}
	if p.OnResponse == nil || p.OnError == nil {
		t.Error("expected default predicates to be set")
	}
}

func TestResolveEnvironmentDefaults(t *testing.T) {
	defaults := config.RetryConfig{
		MaxDuration:   10 * time.Second,
		InitialDelay:  250 * time.Millisecond,
		BackoffFactor: 3,
		SocketTimeout: 2 * time.Second,
	}

	p, err := Resolve(defaults)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.MaxDuration != 10*time.Second {
		t.Errorf("expected max duration 10s, got %v", p.MaxDuration)
	}
	if p.Delay != 250*time.Millisecond {
		t.Errorf("expected initial delay 250ms, got %v", p.Delay)
	}
	if p.Backoff != 3 {
		t.Errorf("expected backoff 3, got %d", p.Backoff)
	}
	if p.SocketTimeout != 2*time.Second {
		t.Errorf("expected socket timeout 2s, got %v", p.SocketTimeout)
	}
}

func TestResolveExplicitOptionsWin(t *testing.T) {
	defaults := config.RetryConfig{
		MaxDuration:   10 * time.Second,
		InitialDelay:  250 * time.Millisecond,
		BackoffFactor: 3,
		SocketTimeout: 2 * time.Second,
	}

	p, err := Resolve(defaults,
		WithMaxDuration(4*time.Second),
		WithInitialDelay(50*time.Millisecond),
		WithBackoff(5),
		WithSocketTimeout(time.Second),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.MaxDuration != 4*time.Second {
		t.Errorf("expected max duration 4s, got %v", p.MaxDuration)
	}
	if p.Delay != 50*time.Millisecond {
		t.Errorf("expected initial delay 50ms, got %v", p.Delay)
	}
	if p.Backoff != 5 {
		t.Errorf("expected backoff 5, got %d", p.Backoff)
	}
	if p.SocketTimeout != time.Second {
		t.Errorf("expected socket timeout 1s, got %v", p.SocketTimeout)
	}
}

func TestResolveValidation(t *testing.T) {
	tests := []struct {
		name    string
		option  Option
		wantMsg string
	}{
		{"negative max duration", WithMaxDuration(-1), "retryMaxDuration must not be a negative integer"},
		{"negative initial delay", WithInitialDelay(-time.Second), "retryInitialDelay must not be a negative integer"},
		{"zero backoff", WithBackoff(0), "retryBackoff must be a positive integer >= 1"},
		{"negative backoff", WithBackoff(-2), "retryBackoff must be a positive integer >= 1"},
		{"negative socket timeout", WithSocketTimeout(-1), "socketTimeout must not be a negative integer"},
		{"nil response predicate", WithResponsePredicate(nil), "retryOnHttpResponse must not be nil"},
		{"nil error predicate", WithErrorPredicate(nil), "retryOnHttpError must not be nil"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			p, err := Resolve(config.RetryConfig{}, test.option)
			if p != nil {
				t.Error("expected nil policy on validation failure")
			}
			if !errs.IsConfig(err) {
				t.Fatalf("expected a config error, got %v", err)
			}
			var e *errs.Error
			errors.As(err, &e)
			if e.Message != test.wantMsg {
				t.Errorf("expected message %q, got %q", test.wantMsg, e.Message)
			}
		})
	}
}

func TestResolveSocketTimeoutClamp(t *testing.T) {
	// A socket timeout that would consume the whole budget is halved
	p, err := Resolve(config.RetryConfig{},
		WithMaxDuration(10*time.Second),
		WithSocketTimeout(10*time.Second),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.SocketTimeout != 5*time.Second {
		t.Errorf("expected socket timeout clamped to 5s, got %v", p.SocketTimeout)
	}

	// The default socket timeout is clamped against a small budget too
	p, err = Resolve(config.RetryConfig{}, WithMaxDuration(20*time.Second))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.SocketTimeout != 10*time.Second {
		t.Errorf("expected socket timeout clamped to 10s, got %v", p.SocketTimeout)
	}

	// A socket timeout below the budget is left alone
	p, err = Resolve(config.RetryConfig{},
		WithMaxDuration(10*time.Second),
		WithSocketTimeout(3*time.Second),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.SocketTimeout != 3*time.Second {
		t.Errorf("expected socket timeout 3s, got %v", p.SocketTimeout)
	}
}

func TestResolveForceSocketTimeout(t *testing.T) {
	p, err := Resolve(config.RetryConfig{},
		WithMaxDuration(10*time.Second),
		WithSocketTimeout(30*time.Second),
		WithForceSocketTimeout(),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.SocketTimeout != 30*time.Second {
		t.Errorf("expected forced socket timeout 30s, got %v", p.SocketTimeout)
	}
}

func TestResolveDeadlineClamp(t *testing.T) {
	// Remaining time until the deadline is smaller than the requested
	// budget, so the budget shrinks to it
	defaults := config.RetryConfig{
		Deadline: time.Now().Add(time.Second).UnixMilli(),
	}
	p, err := Resolve(defaults, WithMaxDuration(3*time.Second))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.MaxDuration > time.Second {
		t.Errorf("expected max duration clamped to <= 1s, got %v", p.MaxDuration)
	}
	if p.MaxDuration < 700*time.Millisecond {
		t.Errorf("expected max duration near 1s, got %v", p.MaxDuration)
	}

	// A deadline further away than the budget never increases it
	defaults.Deadline = time.Now().Add(time.Hour).UnixMilli()
	p, err = Resolve(defaults, WithMaxDuration(3*time.Second))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.MaxDuration != 3*time.Second {
		t.Errorf("expected max duration 3s, got %v", p.MaxDuration)
	}

	// A deadline already in the past leaves no budget at all
	defaults.Deadline = time.Now().Add(-time.Second).UnixMilli()
	p, err = Resolve(defaults, WithMaxDuration(3*time.Second))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.MaxDuration != 0 {
		t.Errorf("expected max duration 0, got %v", p.MaxDuration)
	}
}

func TestAdvanceGrowsDelayGeometrically(t *testing.T) {
	p, err := Resolve(config.RetryConfig{},
		WithInitialDelay(100*time.Millisecond),
		WithBackoff(2),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
		1600 * time.Millisecond,
	}
	for i, want := range expected {
		if p.Delay != want {
			t.Errorf("round %d: expected delay %v, got %v", i, want, p.Delay)
		}
		p.Advance()
	}
}

func TestAdvanceWithUnitBackoff(t *testing.T) {
	p, err := Resolve(config.RetryConfig{},
		WithInitialDelay(100*time.Millisecond),
		WithBackoff(1),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 5; i++ {
		p.Advance()
	}
	if p.Delay != 100*time.Millisecond {
		t.Errorf("expected delay to stay at 100ms, got %v", p.Delay)
	}
}

func TestRemaining(t *testing.T) {
	p, err := Resolve(config.RetryConfig{}, WithMaxDuration(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r := p.Remaining(); r <= 0 || r > time.Hour {
		t.Errorf("expected remaining in (0, 1h], got %v", r)
	}

	p.Start = time.Now().Add(-2 * time.Hour)
	if r := p.Remaining(); r != 0 {
		t.Errorf("expected remaining 0 after budget elapsed, got %v", r)
	}
}

func TestNextWaitJitterBounds(t *testing.T) {
	p, err := Resolve(config.RetryConfig{}, WithInitialDelay(10*time.Millisecond))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	waits := make(map[time.Duration]bool)
	for i := 0; i < 50; i++ {
		w := p.NextWait()
		if w < 10*time.Millisecond || w >= 10*time.Millisecond+MaxJitter {
			t.Fatalf("wait %v outside [10ms, 10ms+%v)", w, MaxJitter)
		}
		waits[w] = true
	}

	// With jitter, we should get different waits
	if len(waits) < 2 {
		t.Error("expected multiple different waits with jitter, but got consistent waits")
	}
}
