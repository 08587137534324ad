package repositories

import "context"

// ResponseGenerator abstracts the conversational text generation engine.
type ResponseGenerator interface {
	// GenerateReply renders the persona prompt around the caller's transcript
	// and returns the generated reply. It never returns an empty string: on
	// any engine failure a fixed fallback apology is returned instead, so the
	// turn controller always has something to speak. The call identifier is
	// used for correlation logging only.
	GenerateReply(ctx context.Context, callSID, transcript string) string
}
