package repositories

import (
	"context"

	"github.com/khaliya-ai/callbridge/domain/entities"
)

// SpeechToText abstracts a streaming speech recognition service.
type SpeechToText interface {
	// OpenSession opens one streaming recognition connection. The connection
	// stays open for the full call; audio is forwarded chunk by chunk in
	// arrival order.
	OpenSession(ctx context.Context, callSID string, config AudioConfig) (TranscriptionSession, error)
}

// AudioConfig is the fixed recognition configuration for a call.
type AudioConfig struct {
	Encoding   string // e.g. "MULAW" for narrowband telephony audio
	SampleRate int    // e.g. 8000
	Language   string // e.g. "ml-IN"
	Model      string // recognition domain hint, e.g. "telephony"
}

// TranscriptionSession is one live recognition stream. Finalized transcripts
// are surfaced on Transcripts in the order the engine emits them; a session
// that ends without results simply closes the channel. Engine or network
// failures arrive on Errors and are terminal for the session.
type TranscriptionSession interface {
	SendAudio(data []byte) error
	Transcripts() <-chan entities.Transcript
	Errors() <-chan error
	Close() error
}
