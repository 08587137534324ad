package entities

import (
	"testing"
	"time"
)

func TestCallSessionLifecycle(t *testing.T) {
	call := NewCallSession("CA123", "session-1")

	if call.State() != CallStateAwaitTranscript {
		t.Errorf("expected initial state %q, got %q", CallStateAwaitTranscript, call.State())
	}
	if call.Closed() {
		t.Error("new session should not be closed")
	}

	for _, state := range []CallState{
		CallStateGenerating,
		CallStateSynthesizing,
		CallStateInjecting,
		CallStateAwaitTranscript,
	} {
		if err := call.Transition(state); err != nil {
			t.Fatalf("transition to %q failed: %v", state, err)
		}
		if call.State() != state {
			t.Errorf("expected state %q, got %q", state, call.State())
		}
	}
}

func TestCallSessionClosedIsTerminal(t *testing.T) {
	call := NewCallSession("CA123", "session-1")

	if err := call.Transition(CallStateClosed); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if !call.Closed() {
		t.Fatal("session should report closed")
	}

	if err := call.Transition(CallStateGenerating); err != ErrCallClosed {
		t.Errorf("expected ErrCallClosed, got %v", err)
	}
	if call.State() != CallStateClosed {
		t.Errorf("closed session changed state to %q", call.State())
	}
}

func TestCallSessionTurnCounter(t *testing.T) {
	call := NewCallSession("CA123", "session-1")

	if call.TurnCount() != 0 {
		t.Errorf("expected 0 turns, got %d", call.TurnCount())
	}
	for i := 1; i <= 3; i++ {
		if got := call.BeginTurn(); got != i {
			t.Errorf("expected turn %d, got %d", i, got)
		}
	}
	if call.TurnCount() != 3 {
		t.Errorf("expected 3 turns, got %d", call.TurnCount())
	}
}

func TestCallSessionDuration(t *testing.T) {
	call := NewCallSession("CA123", "session-1")
	call.StartedAt = time.Now().Add(-time.Second)

	if call.Duration() < time.Second {
		t.Errorf("expected at least 1s duration, got %v", call.Duration())
	}

	call.Transition(CallStateClosed)
	frozen := call.Duration()
	time.Sleep(10 * time.Millisecond)
	if call.Duration() != frozen {
		t.Error("duration should not advance after close")
	}
}
