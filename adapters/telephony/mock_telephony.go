package telephony

import (
	"context"
	"sync"
)

// PlayRequest records one PlayAudio invocation.
type PlayRequest struct {
	CallSID  string
	AudioURL string
}

// MockController is a scripted CallController for tests.
type MockController struct {
	mu      sync.Mutex
	created []string
	played  []PlayRequest

	// CallSID is returned from CreateCall.
	CallSID string
	// CreateErr, when set, fails CreateCall.
	CreateErr error
	// PlayErr, when set, fails PlayAudio.
	PlayErr error
}

// CreateCall implements repositories.CallController.
func (m *MockController) CreateCall(ctx context.Context, toNumber string) (string, error) {
	m.mu.Lock()
	m.created = append(m.created, toNumber)
	m.mu.Unlock()

	if m.CreateErr != nil {
		return "", m.CreateErr
	}
	return m.CallSID, nil
}

// PlayAudio implements repositories.CallController.
func (m *MockController) PlayAudio(ctx context.Context, callSID, audioURL string) error {
	m.mu.Lock()
	m.played = append(m.played, PlayRequest{CallSID: callSID, AudioURL: audioURL})
	m.mu.Unlock()
	return m.PlayErr
}

// Created returns the numbers dialed so far.
func (m *MockController) Created() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.created))
	copy(out, m.created)
	return out
}

// Played returns the playback requests issued so far, in order.
func (m *MockController) Played() []PlayRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]PlayRequest, len(m.played))
	copy(out, m.played)
	return out
}
