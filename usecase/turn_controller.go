package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/khaliya-ai/callbridge/domain/entities"
	"github.com/khaliya-ai/callbridge/domain/repositories"
	"github.com/khaliya-ai/callbridge/internal/metrics"
)

// TurnController drives the conversation loop for one call: for each
// finalized transcript it runs generation, synthesis, and playback injection
// strictly in sequence. Transcripts arriving mid-turn queue up in receipt
// order on the session's channel and are never dropped; turns never overlap.
type TurnController struct {
	generator   repositories.ResponseGenerator
	synthesizer repositories.SpeechSynthesizer
	calls       repositories.CallController
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// NewTurnController creates a new turn controller over the injected engine
// adapters.
func NewTurnController(
	generator repositories.ResponseGenerator,
	synthesizer repositories.SpeechSynthesizer,
	calls repositories.CallController,
	m *metrics.Metrics,
	logger *zap.Logger,
) *TurnController {
	return &TurnController{
		generator:   generator,
		synthesizer: synthesizer,
		calls:       calls,
		metrics:     m,
		logger:      logger,
	}
}

// Run drains the transcription session until it ends, processing one turn at
// a time. It returns when the transcript stream closes, the recognition
// session aborts, or the context is cancelled; the call session is closed in
// every case.
func (tc *TurnController) Run(ctx context.Context, call *entities.CallSession, session repositories.TranscriptionSession) {
	defer call.Transition(entities.CallStateClosed)

	transcripts := session.Transcripts()
	errs := session.Errors()

	for {
		call.Transition(entities.CallStateAwaitTranscript)

		select {
		case <-ctx.Done():
			tc.logger.Info("Call context cancelled",
				zap.String("call_sid", call.CallSID),
				zap.Int("turns", call.TurnCount()))
			return

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			// Recognition stream aborts are terminal for this call only.
			tc.logger.Error("Transcription session aborted",
				zap.String("call_sid", call.CallSID),
				zap.Error(err))
			return

		case transcript, ok := <-transcripts:
			if !ok {
				tc.logger.Info("Transcript stream ended",
					zap.String("call_sid", call.CallSID),
					zap.Int("turns", call.TurnCount()))
				return
			}
			tc.metrics.TranscriptsFinal.Inc()
			tc.runTurn(ctx, call, transcript)
		}
	}
}

// runTurn executes one full turn. Adapter failures short-circuit the rest of
// the turn but never the call: generation degrades to the fallback apology
// inside the adapter, a failed synthesis skips injection, and an injection
// against an ended call is absorbed by the call controller.
func (tc *TurnController) runTurn(ctx context.Context, call *entities.CallSession, transcript entities.Transcript) {
	turn := call.BeginTurn()
	tc.metrics.TurnsStarted.Inc()

	tc.logger.Info("Turn started",
		zap.String("call_sid", call.CallSID),
		zap.Int("turn", turn),
		zap.String("transcript", transcript.Text))

	call.Transition(entities.CallStateGenerating)
	genStart := time.Now()
	reply := tc.generator.GenerateReply(ctx, call.CallSID, transcript.Text)
	tc.metrics.GenerateLatency.Observe(time.Since(genStart).Seconds())
	if reply == "" {
		// The generator contract forbids empty replies; guard anyway so the
		// synthesizer is never handed nothing to speak.
		tc.logger.Warn("Generator returned empty reply, skipping turn",
			zap.String("call_sid", call.CallSID),
			zap.Int("turn", turn))
		tc.metrics.TurnsShortened.WithLabelValues("generate").Inc()
		return
	}

	call.Transition(entities.CallStateSynthesizing)
	synthStart := time.Now()
	audioURL, err := tc.synthesizer.Synthesize(ctx, call.CallSID, reply)
	tc.metrics.SynthLatency.Observe(time.Since(synthStart).Seconds())
	if err != nil {
		tc.logger.Error("Speech synthesis failed, skipping playback",
			zap.String("call_sid", call.CallSID),
			zap.Int("turn", turn),
			zap.Error(err))
		tc.metrics.TurnsShortened.WithLabelValues("synthesize").Inc()
		return
	}

	call.Transition(entities.CallStateInjecting)
	if err := tc.calls.PlayAudio(ctx, call.CallSID, audioURL); err != nil {
		tc.logger.Error("Playback injection failed",
			zap.String("call_sid", call.CallSID),
			zap.Int("turn", turn),
			zap.Error(err))
		tc.metrics.TurnsShortened.WithLabelValues("inject").Inc()
		return
	}

	tc.metrics.TurnsCompleted.Inc()
	tc.logger.Info("Turn completed",
		zap.String("call_sid", call.CallSID),
		zap.Int("turn", turn),
		zap.String("audio_url", audioURL))
}
