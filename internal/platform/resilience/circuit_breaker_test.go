package resilience

import (
	"errors"
	"testing"
	"time"
)

func TestCircuitBreaker_OpensAfterThresholdAndRecovers(t *testing.T) {
	b := NewCircuitBreaker(3, 30*time.Second, 1)

	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	if err := b.Allow(); err != nil {
		t.Fatalf("expected allow in closed state: %v", err)
	}

	b.RecordFailure()
	b.RecordFailure()
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed below threshold, got %s", state)
	}

	b.RecordFailure()
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected open after threshold failures, got %s", state)
	}
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected circuit open error, got %v", err)
	}

	now = now.Add(31 * time.Second)
	if err := b.Allow(); err != nil {
		t.Fatalf("expected half-open probe to pass, got %v", err)
	}
	if state := b.State(); state != CircuitStateHalfOpen {
		t.Fatalf("expected half-open state, got %s", state)
	}

	b.RecordSuccess()
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after successful probe, got %s", state)
	}
}

func TestCircuitBreaker_FailedProbeReopens(t *testing.T) {
	b := NewCircuitBreaker(1, 10*time.Second, 1)

	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	b.RecordFailure()
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected open, got %s", state)
	}

	now = now.Add(11 * time.Second)
	if err := b.Allow(); err != nil {
		t.Fatalf("expected probe to pass, got %v", err)
	}

	b.RecordFailure()
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected reopen after failed probe, got %s", state)
	}
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected circuit open error after reopen, got %v", err)
	}
}

func TestCircuitBreaker_HalfOpenLimitsConcurrentProbes(t *testing.T) {
	b := NewCircuitBreaker(1, 10*time.Second, 2)

	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	b.RecordFailure()
	now = now.Add(11 * time.Second)

	if err := b.Allow(); err != nil {
		t.Fatalf("first probe: %v", err)
	}
	if err := b.Allow(); err != nil {
		t.Fatalf("second probe: %v", err)
	}
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected third request to be rejected, got %v", err)
	}

	b.RecordSuccess()
	b.RecordSuccess()
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after both probes succeeded, got %s", state)
	}
}

func TestNormalizeCircuitBreakerConfig_FillsDefaults(t *testing.T) {
	got := NormalizeCircuitBreakerConfig(CircuitBreakerConfig{Enabled: true})

	want := DefaultCircuitBreakerConfig()
	if got.FailureThreshold != want.FailureThreshold {
		t.Fatalf("failure threshold %d, want %d", got.FailureThreshold, want.FailureThreshold)
	}
	if got.OpenTimeout != want.OpenTimeout {
		t.Fatalf("open timeout %s, want %s", got.OpenTimeout, want.OpenTimeout)
	}
	if got.HalfOpenMaxReq != want.HalfOpenMaxReq {
		t.Fatalf("half-open max %d, want %d", got.HalfOpenMaxReq, want.HalfOpenMaxReq)
	}

	explicit := NormalizeCircuitBreakerConfig(CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 9,
		OpenTimeout:      5 * time.Second,
		HalfOpenMaxReq:   4,
	})
	if explicit.FailureThreshold != 9 || explicit.OpenTimeout != 5*time.Second || explicit.HalfOpenMaxReq != 4 {
		t.Fatalf("explicit values must survive normalization: %+v", explicit)
	}
}
