package websocket

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/khaliya-ai/callbridge/domain/entities"
	"github.com/khaliya-ai/callbridge/domain/repositories"
	"github.com/khaliya-ai/callbridge/internal/metrics"
	"github.com/khaliya-ai/callbridge/usecase"
)

// Maximum envelope size allowed from the carrier.
const maxMessageSize = 512 * 1024

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// StreamHandler accepts one duplex media socket per live call and runs the
// call's full pipeline: demux the envelopes, forward audio frames to the
// transcription session in arrival order, and let the turn controller drain
// the transcript queue one turn at a time.
type StreamHandler struct {
	speech   repositories.SpeechToText
	turns    *usecase.TurnController
	registry *Registry
	audio    repositories.AudioConfig
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewStreamHandler creates a stream handler over the injected recognizer and
// turn controller.
func NewStreamHandler(
	speech repositories.SpeechToText,
	turns *usecase.TurnController,
	registry *Registry,
	audio repositories.AudioConfig,
	m *metrics.Metrics,
	logger *zap.Logger,
) *StreamHandler {
	return &StreamHandler{
		speech:   speech,
		turns:    turns,
		registry: registry,
		audio:    audio,
		metrics:  m,
		logger:   logger,
	}
}

// Handle upgrades the request and runs the call pipeline until the stream
// stops or the socket closes.
func (h *StreamHandler) Handle(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed", zap.Error(err))
		return err
	}

	conn.SetReadLimit(maxMessageSize)

	// Internal session id for log correlation before the start event
	// delivers the call identifier.
	sessionID := uuid.NewString()
	logger := h.logger.With(zap.String("session_id", sessionID))
	logger.Info("Media stream connected")

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	h.run(ctx, conn, sessionID, logger)
	return nil
}

// run owns the connection for the call's lifetime. The demuxer reads in its
// own goroutine; this goroutine forwards frames so arrival order is
// preserved, while the turn controller drains transcripts concurrently.
func (h *StreamHandler) run(ctx context.Context, conn *websocket.Conn, sessionID string, logger *zap.Logger) {
	defer conn.Close()

	demux := NewDemuxer(conn, h.metrics, logger)
	go demux.Run()

	var (
		call      *entities.CallSession
		session   repositories.TranscriptionSession
		turnsDone chan struct{}
	)

	defer func() {
		// On early return the reader may still hold undelivered events;
		// drain so it can observe the socket close and exit.
		go func() {
			for range demux.Events() {
			}
		}()

		if session != nil {
			session.Close()
		}
		if turnsDone != nil {
			// Let buffered transcripts finish; injection against an ended
			// call is absorbed downstream.
			<-turnsDone
		}
		if call != nil {
			h.registry.Unregister(call.CallSID)
			h.metrics.CallsActive.Dec()
			logger.Info("Stream session ended",
				zap.String("call_sid", call.CallSID),
				zap.Int("turns", call.TurnCount()),
				zap.Duration("duration", call.Duration()))
		} else {
			logger.Info("Stream session ended before start event")
		}
	}()

	for event := range demux.Events() {
		switch event.Kind {
		case EventStarted:
			logger.Info("Stream started", zap.String("call_sid", event.CallSID))

			call = entities.NewCallSession(event.CallSID, sessionID)
			h.registry.Register(call)
			h.metrics.CallsTotal.Inc()
			h.metrics.CallsActive.Inc()

			s, err := h.speech.OpenSession(ctx, event.CallSID, h.audio)
			if err != nil {
				logger.Error("Failed to open transcription session",
					zap.String("call_sid", event.CallSID),
					zap.Error(err))
				return
			}
			session = s

			turnsDone = make(chan struct{})
			go func() {
				defer close(turnsDone)
				h.turns.Run(ctx, call, s)
			}()

		case EventFrame:
			if session == nil {
				continue
			}
			if err := session.SendAudio(event.Frame); err != nil {
				logger.Error("Failed to forward audio frame",
					zap.String("call_sid", call.CallSID),
					zap.Int("seq", event.Seq),
					zap.Error(err))
				return
			}

		case EventStopped:
			if call != nil {
				logger.Info("Stream stopped", zap.String("call_sid", call.CallSID))
			}
			return
		}
	}
}
