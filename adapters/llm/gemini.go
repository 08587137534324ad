package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const defaultModel = "gemini-1.5-flash-latest"

// fallbackApology is spoken when the generation engine fails or returns
// nothing, so a turn is never silently dropped. "Sorry, I encountered an
// error."
const fallbackApology = "ക്ഷമിക്കണം, എനിക്ക് ഒരു പിശക് സംഭവിച്ചു."

// personaPrompt frames every caller utterance. The agent introduces a
// service, gauges interest, and answers only in conversational Malayalam.
const personaPrompt = `You are 'Khaliya', an AI cold calling agent. Your personality is polite, professional, and concise.
You must respond only in natural, conversational Malayalam. Do not use English.
Your goal is to introduce a service and determine if there is interest.
Keep your responses short.

A person just said: "%s"

Your Malayalam response:`

// GeminiGenerator implements ResponseGenerator using Google's Gemini API.
type GeminiGenerator struct {
	client  *genai.Client
	logger  *zap.Logger
	model   string
	timeout time.Duration
}

// NewGeminiGenerator creates a new Gemini generator.
func NewGeminiGenerator(ctx context.Context, apiKey string, logger *zap.Logger) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiGenerator{
		client:  client,
		logger:  logger,
		model:   defaultModel,
		timeout: 30 * time.Second,
	}, nil
}

// GenerateReply sends the caller's transcript through the persona prompt and
// returns the trimmed reply. Any failure degrades to the fixed fallback
// apology; the turn controller always receives speakable text.
func (g *GeminiGenerator) GenerateReply(ctx context.Context, callSID, transcript string) string {
	g.logger.Info("Sending transcript to Gemini",
		zap.String("call_sid", callSID),
		zap.String("transcript", transcript))

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	contents := []*genai.Content{
		genai.NewContentFromText(RenderPrompt(transcript), genai.RoleUser),
	}

	response, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		g.logger.Error("Gemini generation failed",
			zap.String("call_sid", callSID),
			zap.Error(err))
		return fallbackApology
	}

	if len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		g.logger.Warn("Gemini returned no candidates", zap.String("call_sid", callSID))
		return fallbackApology
	}

	var reply strings.Builder
	for _, part := range response.Candidates[0].Content.Parts {
		if part.Text != "" {
			reply.WriteString(part.Text)
		}
	}

	text := strings.TrimSpace(reply.String())
	if text == "" {
		g.logger.Warn("Gemini returned empty response", zap.String("call_sid", callSID))
		return fallbackApology
	}

	g.logger.Info("Received reply from Gemini",
		zap.String("call_sid", callSID),
		zap.String("reply", text))

	return text
}

// RenderPrompt embeds the caller's utterance verbatim into the persona
// prompt template.
func RenderPrompt(transcript string) string {
	return fmt.Sprintf(personaPrompt, transcript)
}

// FallbackApology returns the fixed localized apology used when generation
// fails.
func FallbackApology() string {
	return fallbackApology
}
