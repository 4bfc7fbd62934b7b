package retry

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/noama-samreen/dasaf-cbgpt/internal/config"
	"github.com/noama-samreen/dasaf-cbgpt/internal/foundation/errors"
)

// TestDefaultPolicy verifies the baseline default values.
func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	if p.Mode != config.RetryBackoffExponential {
		t.Fatalf("expected exponential default mode got %s", p.Mode)
	}
	if p.Initial != time.Second {
		t.Fatalf("expected initial 1s got %v", p.Initial)
	}
	if p.Max != 20*time.Second {
		t.Fatalf("expected max 20s got %v", p.Max)
	}
	if p.MaxRetries != 2 {
		t.Fatalf("expected max retries 2 got %d", p.MaxRetries)
	}
}

// TestNewPolicyOverrides checks override precedence and clamping when initial > max.
func TestNewPolicyOverrides(t *testing.T) {
	p := NewPolicy(config.RetryBackoffFixed, 5*time.Second, 2*time.Second, 5)
	if p.Initial != 2*time.Second {
		t.Fatalf("expected clamped initial 2s got %v", p.Initial)
	}
	if p.Mode != config.RetryBackoffFixed {
		t.Fatalf("expected fixed mode got %s", p.Mode)
	}
	if p.MaxRetries != 5 {
		t.Fatalf("expected maxRetries 5 got %d", p.MaxRetries)
	}

	fromCfg := FromConfig(config.RetryConfig{Mode: config.RetryBackoffLinear, Initial: time.Millisecond, Max: time.Second, MaxRetries: 0})
	if fromCfg.Mode != config.RetryBackoffLinear || fromCfg.MaxRetries != 0 {
		t.Fatalf("unexpected policy from config: %+v", fromCfg)
	}
}

// TestDelayModes ensures fixed, linear, exponential behave and respect cap.
func TestDelayModes(t *testing.T) {
	fixed := NewPolicy(config.RetryBackoffFixed, 100*time.Millisecond, 500*time.Millisecond, 3)
	for i := 1; i <= 3; i++ {
		if d := fixed.Delay(i); d != 100*time.Millisecond {
			t.Fatalf("fixed attempt %d expected 100ms got %v", i, d)
		}
	}

	linear := NewPolicy(config.RetryBackoffLinear, 100*time.Millisecond, 250*time.Millisecond, 5)
	cases := []struct {
		attempt int
		want    time.Duration
	}{{1, 100 * time.Millisecond}, {2, 200 * time.Millisecond}, {3, 250 * time.Millisecond}, {4, 250 * time.Millisecond}}
	for _, c := range cases {
		if got := linear.Delay(c.attempt); got != c.want {
			t.Fatalf("linear attempt %d expected %v got %v", c.attempt, c.want, got)
		}
	}

	exp := NewPolicy(config.RetryBackoffExponential, 50*time.Millisecond, 160*time.Millisecond, 5)
	expCases := []struct {
		attempt int
		want    time.Duration
	}{{1, 50 * time.Millisecond}, {2, 100 * time.Millisecond}, {3, 160 * time.Millisecond}, {64, 160 * time.Millisecond}}
	for _, c := range expCases {
		if got := exp.Delay(c.attempt); got != c.want {
			t.Fatalf("exp attempt %d expected %v got %v", c.attempt, c.want, got)
		}
	}

	if d := exp.Delay(0); d != 0 {
		t.Fatalf("attempt 0 expected 0 got %v", d)
	}
}

// TestValidate covers validation error paths.
func TestValidate(t *testing.T) {
	if err := (Policy{Initial: 0, Max: time.Second}).Validate(); err == nil {
		t.Fatalf("expected error for zero initial")
	}
	if err := (Policy{Initial: time.Second, Max: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero max")
	}
	if err := (Policy{Initial: time.Second, Max: time.Second, MaxRetries: -1}).Validate(); err == nil {
		t.Fatalf("expected error for negative retries")
	}
	if err := DefaultPolicy().Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func recordingSleeper(delays *[]time.Duration) Sleeper {
	return func(_ context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
}

// TestDoRetriesRetryableErrors retries until success and reports each wait.
func TestDoRetriesRetryableErrors(t *testing.T) {
	p := NewPolicy(config.RetryBackoffLinear, 10*time.Millisecond, time.Second, 3)
	var delays []time.Duration
	var retries []int
	calls := 0

	err := p.Do(t.Context(), recordingSleeper(&delays), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.NetworkError("connection reset").Build()
		}
		return nil
	}, func(n int, _ error) { retries = append(retries, n) })

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls got %d", calls)
	}
	if len(delays) != 2 || delays[0] != 10*time.Millisecond || delays[1] != 20*time.Millisecond {
		t.Fatalf("unexpected delays %v", delays)
	}
	if len(retries) != 2 || retries[1] != 2 {
		t.Fatalf("unexpected retry callbacks %v", retries)
	}
}

// TestDoStopsOnPermanentError does not retry non-retryable failures.
func TestDoStopsOnPermanentError(t *testing.T) {
	p := NewPolicy(config.RetryBackoffFixed, time.Millisecond, time.Millisecond, 5)
	calls := 0
	want := errors.AuthError("bad key").Build()

	err := p.Do(t.Context(), recordingSleeper(new([]time.Duration)), func(context.Context) error {
		calls++
		return want
	}, nil)

	if !stderrors.Is(err, want) || calls != 1 {
		t.Fatalf("expected single call returning auth error, got %d calls err=%v", calls, err)
	}
}

// TestDoExhaustsBudget returns the last error after MaxRetries retries.
func TestDoExhaustsBudget(t *testing.T) {
	p := NewPolicy(config.RetryBackoffFixed, time.Millisecond, time.Millisecond, 2)
	calls := 0
	err := p.Do(t.Context(), recordingSleeper(new([]time.Duration)), func(context.Context) error {
		calls++
		return errors.LLMError("overloaded").Retryable().Build()
	}, nil)

	if err == nil || calls != 3 {
		t.Fatalf("expected 3 calls and an error, got %d calls err=%v", calls, err)
	}
}

// TestDoHonorsCancellation stops waiting once the context is done.
func TestDoHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	p := NewPolicy(config.RetryBackoffFixed, time.Hour, time.Hour, 5)
	calls := 0
	err := p.Do(ctx, Sleep, func(context.Context) error {
		calls++
		return errors.NetworkError("timeout").Build()
	}, nil)

	if err == nil || calls != 1 {
		t.Fatalf("expected one call before cancellation, got %d err=%v", calls, err)
	}
}
