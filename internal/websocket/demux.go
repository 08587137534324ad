package websocket

import (
	"encoding/base64"
	"encoding/json"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/khaliya-ai/callbridge/internal/metrics"
)

// EventKind discriminates the demuxer's typed event stream.
type EventKind int

const (
	// EventStarted carries the provider-assigned call identifier.
	EventStarted EventKind = iota
	// EventFrame carries one decoded audio frame.
	EventFrame
	// EventStopped terminates the stream; no further events follow.
	EventStopped
)

// Event is one element of the demultiplexed stream.
type Event struct {
	Kind    EventKind
	CallSID string // set on EventStarted
	Frame   []byte // set on EventFrame
	Seq     int    // arrival order of the frame within the call
}

// Carrier media stream envelope types.
type streamEnvelope struct {
	Event          string         `json:"event"`
	SequenceNumber string         `json:"sequenceNumber,omitempty"`
	StreamSid      string         `json:"streamSid,omitempty"`
	Start          *startEnvelope `json:"start,omitempty"`
	Media          *mediaEnvelope `json:"media,omitempty"`
}

type startEnvelope struct {
	CallSid    string `json:"callSid"`
	StreamSid  string `json:"streamSid"`
	AccountSid string `json:"accountSid"`
}

type mediaEnvelope struct {
	Track     string `json:"track"`
	Chunk     string `json:"chunk"`
	Timestamp string `json:"timestamp"`
	Payload   string `json:"payload"` // base64 audio
}

// messageSource is the read side of the duplex socket. *websocket.Conn
// satisfies it.
type messageSource interface {
	ReadMessage() (int, []byte, error)
}

// Demuxer decodes the carrier's event envelopes into a typed event stream:
// one EventStarted, frames in arrival order, one EventStopped. Malformed
// envelopes are logged and skipped; unrecoverable socket errors end the
// stream early. The stream represents one physical socket and is not
// restartable.
type Demuxer struct {
	src     messageSource
	logger  *zap.Logger
	metrics *metrics.Metrics
	events  chan Event
}

// NewDemuxer creates a demuxer over one socket.
func NewDemuxer(src messageSource, m *metrics.Metrics, logger *zap.Logger) *Demuxer {
	return &Demuxer{
		src:     src,
		logger:  logger,
		metrics: m,
		events:  make(chan Event, 64),
	}
}

// Events returns the demultiplexed stream. The channel closes after
// EventStopped has been delivered.
func (d *Demuxer) Events() <-chan Event {
	return d.events
}

// Run reads the socket until a stop event or closure. It must be called
// exactly once.
func (d *Demuxer) Run() {
	defer close(d.events)

	started := false
	seq := 0

	for {
		_, message, err := d.src.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				d.logger.Error("Stream socket error", zap.Error(err))
			}
			d.events <- Event{Kind: EventStopped}
			return
		}

		var envelope streamEnvelope
		if err := json.Unmarshal(message, &envelope); err != nil {
			d.logger.Warn("Skipping malformed envelope", zap.Error(err))
			d.metrics.FramesMalformed.Inc()
			continue
		}

		switch envelope.Event {
		case "connected":
			// Informational handshake, nothing to demux.

		case "start":
			if envelope.Start == nil || envelope.Start.CallSid == "" {
				d.logger.Warn("Skipping start event without call identifier")
				d.metrics.FramesMalformed.Inc()
				continue
			}
			if started {
				d.logger.Warn("Ignoring duplicate start event",
					zap.String("call_sid", envelope.Start.CallSid))
				continue
			}
			started = true
			d.events <- Event{Kind: EventStarted, CallSID: envelope.Start.CallSid}

		case "media":
			if !started {
				d.logger.Warn("Dropping media frame received before start")
				continue
			}
			if envelope.Media == nil {
				d.logger.Warn("Skipping media event without payload")
				d.metrics.FramesMalformed.Inc()
				continue
			}
			frame, err := base64.StdEncoding.DecodeString(envelope.Media.Payload)
			if err != nil {
				d.logger.Warn("Skipping frame with bad base64 payload", zap.Error(err))
				d.metrics.FramesMalformed.Inc()
				continue
			}
			seq++
			d.metrics.FramesReceived.Inc()
			d.metrics.AudioBytesReceived.Add(float64(len(frame)))
			d.events <- Event{Kind: EventFrame, Frame: frame, Seq: seq}

		case "stop":
			d.events <- Event{Kind: EventStopped}
			return

		default:
			d.logger.Warn("Ignoring unknown event", zap.String("event", envelope.Event))
		}
	}
}
