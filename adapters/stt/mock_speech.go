package stt

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/khaliya-ai/callbridge/domain/entities"
	"github.com/khaliya-ai/callbridge/domain/repositories"
)

// MockSpeechToText is a scripted recognizer for tests and local development.
// Each opened session emits the configured transcripts in order, then waits
// for Close before ending its transcript stream.
type MockSpeechToText struct {
	logger *zap.Logger

	// Script holds the finalized transcripts each session will emit.
	// An empty script models a call with no detected speech.
	Script []string

	mu       sync.Mutex
	sessions []*MockSession
}

// NewMockSpeechToText creates a new mock recognizer.
func NewMockSpeechToText(logger *zap.Logger, script ...string) *MockSpeechToText {
	return &MockSpeechToText{logger: logger, Script: script}
}

// OpenSession implements repositories.SpeechToText.
func (m *MockSpeechToText) OpenSession(ctx context.Context, callSID string, config repositories.AudioConfig) (repositories.TranscriptionSession, error) {
	m.logger.Info("Opening mock transcription session",
		zap.String("call_sid", callSID),
		zap.String("encoding", config.Encoding),
		zap.Int("sample_rate", config.SampleRate),
		zap.String("language", config.Language))

	s := &MockSession{
		transcripts: make(chan entities.Transcript, len(m.Script)+1),
		errors:      make(chan error, 1),
		done:        make(chan struct{}),
	}

	go func() {
		for i, text := range m.Script {
			s.transcripts <- entities.Transcript{
				CallSID:  callSID,
				Text:     text,
				Sequence: i + 1,
			}
		}
		<-s.done
		close(s.transcripts)
		close(s.errors)
	}()

	m.mu.Lock()
	m.sessions = append(m.sessions, s)
	m.mu.Unlock()

	return s, nil
}

// LastSession returns the most recently opened session, if any.
func (m *MockSpeechToText) LastSession() (*MockSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sessions) == 0 {
		return nil, false
	}
	return m.sessions[len(m.sessions)-1], true
}

// MockSession is the per-call session returned by MockSpeechToText.
type MockSession struct {
	mu       sync.Mutex
	received [][]byte

	transcripts chan entities.Transcript
	errors      chan error
	done        chan struct{}
	closeOnce   sync.Once
}

func (s *MockSession) SendAudio(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	frame := make([]byte, len(data))
	copy(frame, data)
	s.received = append(s.received, frame)
	return nil
}

func (s *MockSession) Transcripts() <-chan entities.Transcript { return s.transcripts }

func (s *MockSession) Errors() <-chan error { return s.errors }

func (s *MockSession) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return nil
}

// Received returns the audio frames forwarded so far, in arrival order.
func (s *MockSession) Received() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]byte, len(s.received))
	copy(out, s.received)
	return out
}

// Fail pushes an error onto the session's error channel, simulating an
// irrecoverable recognition stream abort.
func (s *MockSession) Fail(err error) {
	s.errors <- err
}
