package repositories

import "context"

// SpeechSynthesizer abstracts the text-to-speech engine plus the asset store
// the synthesized audio is persisted to.
type SpeechSynthesizer interface {
	// Synthesize converts reply text to audio, persists it under a name
	// derived from the call identifier (one asset per call, overwritten each
	// turn), and returns its externally fetchable URL. On engine or I/O
	// failure it returns ("", err) and the turn must not proceed to playback.
	Synthesize(ctx context.Context, callSID, text string) (string, error)
}
