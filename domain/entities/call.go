package entities

import (
	"errors"
	"sync"
	"time"
)

// CallState represents the turn controller's position in the conversation loop.
type CallState string

const (
	CallStateAwaitTranscript CallState = "await_transcript"
	CallStateGenerating      CallState = "generating"
	CallStateSynthesizing    CallState = "synthesizing"
	CallStateInjecting       CallState = "injecting"
	CallStateClosed          CallState = "closed"
)

var ErrCallClosed = errors.New("call session is closed")

// CallSession represents one live phone call from its start event until its
// stop event or socket closure. The session is owned by exactly one stream
// handler; the mutex only guards against the handler's own goroutines
// (demuxer, transcript receiver, turn controller) observing state together.
type CallSession struct {
	mu sync.Mutex

	CallSID   string
	SessionID string // internal id, assigned before the start event arrives
	StartedAt time.Time

	state     CallState
	turnCount int
	closedAt  *time.Time
}

// NewCallSession creates a session for a provider-assigned call identifier.
func NewCallSession(callSID, sessionID string) *CallSession {
	return &CallSession{
		CallSID:   callSID,
		SessionID: sessionID,
		StartedAt: time.Now(),
		state:     CallStateAwaitTranscript,
	}
}

// Transition moves the session to the next state. Once closed, a session
// never transitions again.
func (c *CallSession) Transition(next CallState) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == CallStateClosed {
		return ErrCallClosed
	}
	c.state = next
	if next == CallStateClosed {
		now := time.Now()
		c.closedAt = &now
	}
	return nil
}

// State returns the current turn controller state.
func (c *CallSession) State() CallState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Closed reports whether the session has reached its terminal state.
func (c *CallSession) Closed() bool {
	return c.State() == CallStateClosed
}

// BeginTurn increments the turn counter and returns the new turn number,
// starting at 1 for the first caller utterance.
func (c *CallSession) BeginTurn() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turnCount++
	return c.turnCount
}

// TurnCount returns how many turns have been started on this call.
func (c *CallSession) TurnCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.turnCount
}

// Duration returns how long the session has been (or was) live.
func (c *CallSession) Duration() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closedAt != nil {
		return c.closedAt.Sub(c.StartedAt)
	}
	return time.Since(c.StartedAt)
}
