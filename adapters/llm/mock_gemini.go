package llm

import (
	"context"
	"sync"
)

// MockGenerator is a scripted ResponseGenerator for tests.
type MockGenerator struct {
	mu    sync.Mutex
	calls []string

	// Reply is returned for every transcript. When Fail is set the fixed
	// fallback apology is returned instead, mirroring the real adapter's
	// degradation behavior.
	Reply string
	Fail  bool
}

// GenerateReply implements repositories.ResponseGenerator.
func (m *MockGenerator) GenerateReply(ctx context.Context, callSID, transcript string) string {
	m.mu.Lock()
	m.calls = append(m.calls, transcript)
	m.mu.Unlock()

	if m.Fail {
		return fallbackApology
	}
	return m.Reply
}

// Calls returns the transcripts received so far, in order.
func (m *MockGenerator) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}
