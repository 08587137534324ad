package repositories

import "context"

// CallController abstracts the telephony provider's call-control API.
type CallController interface {
	// CreateCall dials the given E.164 number with the initial greeting and
	// stream-start instruction document and returns the provider-assigned
	// call identifier.
	CreateCall(ctx context.Context, toNumber string) (string, error)

	// PlayAudio interrupts current playback on the live call and plays the
	// audio at the given URL, followed by a long pause so the call stays open
	// for the next utterance. A call that has already ended is an expected
	// race and reported as success.
	PlayAudio(ctx context.Context, callSID, audioURL string) error
}
