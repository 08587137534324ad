package tts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"github.com/googleapis/gax-go/v2"
	"go.uber.org/zap"
)

// GoogleConfig holds configuration for the Google TTS adapter.
// Required fields:
// - StaticDir: directory synthesized audio files are written to
// - Hostname: externally reachable hostname used to build asset URLs
// Optional fields with defaults:
// - LanguageCode: BCP-47 synthesis language (default "ml-IN")
// - Voice: synthesis voice name (default "ml-IN-Standard-A")
type GoogleConfig struct {
	StaticDir    string
	Hostname     string
	LanguageCode string
	Voice        string
}

const (
	defaultLanguageCode = "ml-IN"
	defaultVoice        = "ml-IN-Standard-A"
)

// ValidateGoogleConfig validates the GoogleConfig.
func ValidateGoogleConfig(config GoogleConfig) error {
	if config.StaticDir == "" {
		return fmt.Errorf("static directory is required")
	}
	if config.Hostname == "" {
		return fmt.Errorf("hostname is required")
	}
	return nil
}

// synthesizeAPI is the slice of the Cloud TTS client the adapter uses,
// substituted in tests.
type synthesizeAPI interface {
	SynthesizeSpeech(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest, opts ...gax.CallOption) (*texttospeechpb.SynthesizeSpeechResponse, error)
}

// GoogleSynthesizer implements SpeechSynthesizer using Google Cloud
// Text-to-Speech. Audio is rendered as MP3 and written under the static
// directory, one file per call, overwritten each turn.
type GoogleSynthesizer struct {
	api          synthesizeAPI
	staticDir    string
	hostname     string
	languageCode string
	voice        string
	logger       *zap.Logger
}

// NewGoogleSynthesizer creates a new Google TTS adapter. Credentials come
// from GOOGLE_APPLICATION_CREDENTIALS. The static directory is created if it
// does not exist.
func NewGoogleSynthesizer(ctx context.Context, config GoogleConfig, logger *zap.Logger) (*GoogleSynthesizer, error) {
	if err := ValidateGoogleConfig(config); err != nil {
		return nil, err
	}

	client, err := texttospeech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create text-to-speech client: %w", err)
	}

	return newGoogleSynthesizer(client, config, logger)
}

func newGoogleSynthesizer(api synthesizeAPI, config GoogleConfig, logger *zap.Logger) (*GoogleSynthesizer, error) {
	if err := ValidateGoogleConfig(config); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(config.StaticDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create static directory: %w", err)
	}

	languageCode := config.LanguageCode
	if languageCode == "" {
		languageCode = defaultLanguageCode
	}
	voice := config.Voice
	if voice == "" {
		voice = defaultVoice
	}

	return &GoogleSynthesizer{
		api:          api,
		staticDir:    config.StaticDir,
		hostname:     config.Hostname,
		languageCode: languageCode,
		voice:        voice,
		logger:       logger,
	}, nil
}

// Synthesize converts reply text to MP3 audio, persists it as
// response_<callSID>.mp3 under the static directory, and returns the
// publicly fetchable URL.
func (g *GoogleSynthesizer) Synthesize(ctx context.Context, callSID, text string) (string, error) {
	g.logger.Info("Converting reply to speech",
		zap.String("call_sid", callSID),
		zap.String("text", text))

	resp, err := g.api.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: g.languageCode,
			Name:         g.voice,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
		},
	})
	if err != nil {
		return "", fmt.Errorf("speech synthesis failed: %w", err)
	}

	filename := AssetFilename(callSID)
	path := filepath.Join(g.staticDir, filename)
	if err := os.WriteFile(path, resp.AudioContent, 0o644); err != nil {
		return "", fmt.Errorf("failed to write audio file: %w", err)
	}

	audioURL := fmt.Sprintf("https://%s/static/%s", g.hostname, filename)
	g.logger.Info("Audio asset created",
		zap.String("call_sid", callSID),
		zap.String("url", audioURL),
		zap.Int("bytes", len(resp.AudioContent)))

	return audioURL, nil
}

// AssetFilename returns the deterministic per-call asset name. Each turn's
// synthesis overwrites the previous asset for the call.
func AssetFilename(callSID string) string {
	return fmt.Sprintf("response_%s.mp3", callSID)
}
