package tts

import (
	"context"
	"fmt"
	"sync"
)

// MockSynthesizer is a scripted SpeechSynthesizer for tests.
type MockSynthesizer struct {
	mu    sync.Mutex
	calls []string

	// Hostname used to build the returned asset URL.
	Hostname string
	// Err, when set, is returned instead of an asset URL.
	Err error
}

// Synthesize implements repositories.SpeechSynthesizer.
func (m *MockSynthesizer) Synthesize(ctx context.Context, callSID, text string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, text)
	m.mu.Unlock()

	if m.Err != nil {
		return "", m.Err
	}
	return fmt.Sprintf("https://%s/static/%s", m.Hostname, AssetFilename(callSID)), nil
}

// Calls returns the texts synthesized so far, in order.
func (m *MockSynthesizer) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}
