package llm

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestRenderPrompt(t *testing.T) {
	transcript := "എനിക്ക് കൂടുതൽ അറിയണം"
	prompt := RenderPrompt(transcript)

	if !strings.Contains(prompt, `A person just said: "`+transcript+`"`) {
		t.Errorf("prompt must embed the transcript verbatim, got: %s", prompt)
	}
	if !strings.Contains(prompt, "Khaliya") {
		t.Error("prompt must carry the agent persona")
	}
	if !strings.Contains(prompt, "Malayalam") {
		t.Error("prompt must request a Malayalam response")
	}
}

func TestFallbackApologyNonEmpty(t *testing.T) {
	if FallbackApology() == "" {
		t.Fatal("fallback apology must be speakable")
	}
}

func TestNewGeminiGeneratorRequiresKey(t *testing.T) {
	if _, err := NewGeminiGenerator(context.Background(), "", zaptest.NewLogger(t)); err == nil {
		t.Fatal("expected error for missing API key")
	}
}

func TestMockGeneratorDegradesToApology(t *testing.T) {
	mock := &MockGenerator{Reply: "reply", Fail: true}
	got := mock.GenerateReply(context.Background(), "CA42", "hello")
	if got != FallbackApology() {
		t.Errorf("expected fallback apology, got %q", got)
	}
	if calls := mock.Calls(); len(calls) != 1 || calls[0] != "hello" {
		t.Errorf("expected transcript recorded, got %v", calls)
	}
}
