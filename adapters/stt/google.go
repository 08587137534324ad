package stt

import (
	"context"
	"fmt"
	"io"
	"sync"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap"

	"github.com/khaliya-ai/callbridge/domain/entities"
	"github.com/khaliya-ai/callbridge/domain/repositories"
)

// GoogleSpeechToText implements SpeechToText using Google Cloud
// Speech-to-Text streaming recognition.
type GoogleSpeechToText struct {
	logger *zap.Logger
}

// NewGoogleSpeechToText creates a new Google STT adapter. Credentials come
// from GOOGLE_APPLICATION_CREDENTIALS.
func NewGoogleSpeechToText(logger *zap.Logger) *GoogleSpeechToText {
	return &GoogleSpeechToText{logger: logger}
}

// OpenSession opens one streaming recognize connection for the call. The
// connection stays open for the call's full duration; finalized results are
// surfaced on the session's Transcripts channel as they arrive.
func (g *GoogleSpeechToText) OpenSession(ctx context.Context, callSID string, config repositories.AudioConfig) (repositories.TranscriptionSession, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}

	stream, err := client.StreamingRecognize(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to open streaming recognize: %w", err)
	}

	encoding, err := audioEncoding(config.Encoding)
	if err != nil {
		stream.CloseSend()
		client.Close()
		return nil, err
	}

	// The configuration message must be the first on the stream. Interim
	// results stay off: only finalized transcripts drive turns.
	if err := stream.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_StreamingConfig{
			StreamingConfig: &speechpb.StreamingRecognitionConfig{
				Config: &speechpb.RecognitionConfig{
					Encoding:        encoding,
					SampleRateHertz: int32(config.SampleRate),
					LanguageCode:    config.Language,
					Model:           config.Model,
				},
				InterimResults: false,
			},
		},
	}); err != nil {
		stream.CloseSend()
		client.Close()
		return nil, fmt.Errorf("failed to send streaming config: %w", err)
	}

	session := &googleSession{
		client:      client,
		stream:      stream,
		callSID:     callSID,
		logger:      g.logger,
		transcripts: make(chan entities.Transcript, 64),
		errors:      make(chan error, 1),
	}

	go session.receiveLoop()

	return session, nil
}

type googleSession struct {
	client  *speech.Client
	stream  speechpb.Speech_StreamingRecognizeClient
	callSID string
	logger  *zap.Logger

	transcripts chan entities.Transcript
	errors      chan error
	sequence    int

	closeOnce sync.Once
}

// SendAudio forwards one decoded audio frame to the recognizer. Frames must
// be sent from a single goroutine in arrival order.
func (s *googleSession) SendAudio(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if err := s.stream.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_AudioContent{
			AudioContent: data,
		},
	}); err != nil {
		return fmt.Errorf("failed to send audio data: %w", err)
	}
	return nil
}

func (s *googleSession) Transcripts() <-chan entities.Transcript {
	return s.transcripts
}

func (s *googleSession) Errors() <-chan error {
	return s.errors
}

// Close signals end of audio and releases the underlying client. The receive
// loop drains any results still in flight before the transcripts channel
// closes.
func (s *googleSession) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.stream.CloseSend()
		// client.Close after CloseSend; receiveLoop exits on EOF.
	})
	return err
}

func (s *googleSession) receiveLoop() {
	defer close(s.transcripts)
	defer close(s.errors)
	defer s.client.Close()

	for {
		resp, err := s.stream.Recv()
		if err == io.EOF {
			// Stream ended with no (further) results; not an error.
			return
		}
		if err != nil {
			s.errors <- fmt.Errorf("recognition stream aborted: %w", err)
			return
		}

		for _, result := range resp.Results {
			if !result.IsFinal || len(result.Alternatives) == 0 {
				continue
			}
			alt := result.Alternatives[0]
			if alt.Transcript == "" {
				continue
			}
			s.sequence++
			s.logger.Info("Finalized transcript",
				zap.String("call_sid", s.callSID),
				zap.Int("sequence", s.sequence),
				zap.String("transcript", alt.Transcript))
			s.transcripts <- entities.Transcript{
				CallSID:    s.callSID,
				Text:       alt.Transcript,
				Confidence: float64(alt.Confidence),
				Sequence:   s.sequence,
			}
		}
	}
}

// audioEncoding converts the config encoding name to the Speech API enum.
func audioEncoding(encoding string) (speechpb.RecognitionConfig_AudioEncoding, error) {
	switch encoding {
	case "MULAW":
		return speechpb.RecognitionConfig_MULAW, nil
	case "LINEAR16", "WAV":
		return speechpb.RecognitionConfig_LINEAR16, nil
	case "FLAC":
		return speechpb.RecognitionConfig_FLAC, nil
	case "AMR":
		return speechpb.RecognitionConfig_AMR, nil
	case "OGG_OPUS":
		return speechpb.RecognitionConfig_OGG_OPUS, nil
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED, fmt.Errorf("unsupported audio encoding: %s", encoding)
	}
}
