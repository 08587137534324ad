package websocket

import (
	"encoding/base64"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap/zaptest"

	"github.com/khaliya-ai/callbridge/adapters/llm"
	"github.com/khaliya-ai/callbridge/adapters/stt"
	"github.com/khaliya-ai/callbridge/adapters/telephony"
	"github.com/khaliya-ai/callbridge/adapters/tts"
	"github.com/khaliya-ai/callbridge/domain/repositories"
	"github.com/khaliya-ai/callbridge/internal/metrics"
	"github.com/khaliya-ai/callbridge/usecase"
)

type streamFixture struct {
	server     *httptest.Server
	registry   *Registry
	recognizer *stt.MockSpeechToText
	generator  *llm.MockGenerator
	controller *telephony.MockController
}

func newStreamFixture(t *testing.T, script ...string) *streamFixture {
	t.Helper()
	logger := zaptest.NewLogger(t)

	recognizer := stt.NewMockSpeechToText(logger, script...)
	generator := &llm.MockGenerator{Reply: "reply text"}
	synthesizer := &tts.MockSynthesizer{Hostname: "host"}
	controller := &telephony.MockController{}
	registry := NewRegistry(logger)

	turns := usecase.NewTurnController(generator, synthesizer, controller, metrics.Default, logger)
	handler := NewStreamHandler(recognizer, turns, registry, repositories.AudioConfig{
		Encoding:   "MULAW",
		SampleRate: 8000,
		Language:   "ml-IN",
		Model:      "telephony",
	}, metrics.Default, logger)

	e := echo.New()
	e.GET("/stream", handler.Handle)
	server := httptest.NewServer(e)
	t.Cleanup(server.Close)

	return &streamFixture{
		server:     server,
		registry:   registry,
		recognizer: recognizer,
		generator:  generator,
		controller: controller,
	}
}

func (f *streamFixture) dial(t *testing.T) *ws.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/stream"
	conn, _, err := ws.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to dial stream socket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func writeJSON(t *testing.T, conn *ws.Conn, msg string) {
	t.Helper()
	if err := conn.WriteMessage(ws.TextMessage, []byte(msg)); err != nil {
		t.Fatalf("failed to write message: %v", err)
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestStreamSilentCall(t *testing.T) {
	f := newStreamFixture(t) // empty script: no speech detected
	conn := f.dial(t)

	silence := base64.StdEncoding.EncodeToString(make([]byte, 160))
	writeJSON(t, conn, `{"event":"start","start":{"callSid":"CA123"}}`)
	writeJSON(t, conn, fmt.Sprintf(`{"event":"media","media":{"payload":"%s"}}`, silence))

	waitFor(t, "call registration", func() bool {
		_, ok := f.registry.Get("CA123")
		return ok
	})

	writeJSON(t, conn, `{"event":"stop"}`)

	waitFor(t, "session teardown", func() bool {
		return f.registry.Count() == 0
	})

	session, ok := f.recognizer.LastSession()
	if !ok {
		t.Fatal("no transcription session was opened")
	}
	if frames := session.Received(); len(frames) != 1 || len(frames[0]) != 160 {
		t.Errorf("expected one 160-byte frame forwarded, got %d frames", len(frames))
	}
	if calls := f.generator.Calls(); len(calls) != 0 {
		t.Errorf("generator must not run on a silent call, got %v", calls)
	}
}

func TestStreamFullConversationTurn(t *testing.T) {
	f := newStreamFixture(t, "hello")
	conn := f.dial(t)

	writeJSON(t, conn, `{"event":"start","start":{"callSid":"CA999"}}`)

	waitFor(t, "playback injection", func() bool {
		return len(f.controller.Played()) == 1
	})

	writeJSON(t, conn, `{"event":"stop"}`)

	waitFor(t, "session teardown", func() bool {
		return f.registry.Count() == 0
	})

	if calls := f.generator.Calls(); len(calls) != 1 || calls[0] != "hello" {
		t.Fatalf("expected generator called once with %q, got %v", "hello", calls)
	}

	played := f.controller.Played()
	if len(played) != 1 {
		t.Fatalf("expected exactly one playback, got %d", len(played))
	}
	if played[0].CallSID != "CA999" || played[0].AudioURL != "https://host/static/response_CA999.mp3" {
		t.Errorf("unexpected playback %+v", played[0])
	}
}

func TestStreamFramesForwardedInOrder(t *testing.T) {
	f := newStreamFixture(t)
	conn := f.dial(t)

	writeJSON(t, conn, `{"event":"start","start":{"callSid":"CA123"}}`)

	var want []string
	for i := 0; i < 20; i++ {
		payload := fmt.Sprintf("frame-%02d", i)
		want = append(want, payload)
		writeJSON(t, conn, fmt.Sprintf(`{"event":"media","media":{"payload":"%s"}}`,
			base64.StdEncoding.EncodeToString([]byte(payload))))
	}
	writeJSON(t, conn, `{"event":"stop"}`)

	waitFor(t, "session teardown", func() bool {
		return f.registry.Count() == 0
	})

	session, _ := f.recognizer.LastSession()
	frames := session.Received()
	if len(frames) != len(want) {
		t.Fatalf("expected %d frames, got %d", len(want), len(frames))
	}
	for i, frame := range frames {
		if string(frame) != want[i] {
			t.Errorf("frame %d: expected %q, got %q", i, want[i], frame)
		}
	}
}

func TestStreamSocketCloseWithoutStop(t *testing.T) {
	f := newStreamFixture(t)
	conn := f.dial(t)

	writeJSON(t, conn, `{"event":"start","start":{"callSid":"CA123"}}`)

	waitFor(t, "call registration", func() bool {
		_, ok := f.registry.Get("CA123")
		return ok
	})

	conn.Close()

	waitFor(t, "session teardown", func() bool {
		return f.registry.Count() == 0
	})
}
