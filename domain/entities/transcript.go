package entities

// Transcript is one finalized recognition result for a call. Interim results
// are discarded at the adapter boundary and never reach this type.
type Transcript struct {
	CallSID    string
	Text       string
	Confidence float64
	Sequence   int
}

// ReplyAsset is the synthesized audio artifact produced for one turn, plus
// the URL the telephony provider can fetch it from. A new turn's asset
// overwrites the previous one for the same call.
type ReplyAsset struct {
	CallSID  string
	Text     string
	AudioURL string
}
