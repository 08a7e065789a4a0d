package rest

import (
	"testing"
	"time"
)

func TestPolicyDelayDoublesPerAttempt(t *testing.T) {
	p := DefaultPolicy()

	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}
	for attempt, expected := range want {
		if got := p.Delay(attempt); got != expected {
			t.Errorf("Delay(%d) = %v, want %v", attempt, got, expected)
		}
	}
}

func TestPolicyRetryable(t *testing.T) {
	p := DefaultPolicy()
	if !p.Retryable(429) {
		t.Error("429 should be retryable by default")
	}
	if p.Retryable(500) {
		t.Error("500 should not be retryable by default")
	}

	p.RetryableStatuses = append(p.RetryableStatuses, 500)
	if !p.Retryable(500) {
		t.Error("500 should be retryable after opting in")
	}
}

func TestNoRetryIsSingleAttempt(t *testing.T) {
	p := NoRetry()
	if got := p.attempts(); got != 1 {
		t.Errorf("attempts() = %d, want 1", got)
	}
}

func TestZeroPolicyClampsToOneAttempt(t *testing.T) {
	var p RetryPolicy
	if got := p.attempts(); got != 1 {
		t.Errorf("attempts() = %d, want 1", got)
	}
}
