package stt

import (
	"context"
	"testing"

	"cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap/zaptest"

	"github.com/khaliya-ai/callbridge/domain/repositories"
)

var (
	_ repositories.SpeechToText = (*GoogleSpeechToText)(nil)
	_ repositories.SpeechToText = (*MockSpeechToText)(nil)

	_ repositories.TranscriptionSession = (*googleSession)(nil)
	_ repositories.TranscriptionSession = (*MockSession)(nil)
)

func TestAudioEncoding(t *testing.T) {
	tests := []struct {
		name    string
		want    speechpb.RecognitionConfig_AudioEncoding
		wantErr bool
	}{
		{"MULAW", speechpb.RecognitionConfig_MULAW, false},
		{"LINEAR16", speechpb.RecognitionConfig_LINEAR16, false},
		{"WAV", speechpb.RecognitionConfig_LINEAR16, false},
		{"FLAC", speechpb.RecognitionConfig_FLAC, false},
		{"AMR", speechpb.RecognitionConfig_AMR, false},
		{"OGG_OPUS", speechpb.RecognitionConfig_OGG_OPUS, false},
		{"PCMU", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := audioEncoding(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("audioEncoding(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("audioEncoding(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestMockSessionScriptedTranscripts(t *testing.T) {
	mock := NewMockSpeechToText(zaptest.NewLogger(t), "one", "two")
	session, err := mock.OpenSession(context.Background(), "CA42", repositories.AudioConfig{
		Encoding:   "MULAW",
		SampleRate: 8000,
		Language:   "ml-IN",
		Model:      "telephony",
	})
	if err != nil {
		t.Fatalf("OpenSession failed: %v", err)
	}

	first := <-session.Transcripts()
	if first.Text != "one" || first.Sequence != 1 || first.CallSID != "CA42" {
		t.Errorf("unexpected first transcript %+v", first)
	}
	second := <-session.Transcripts()
	if second.Text != "two" || second.Sequence != 2 {
		t.Errorf("unexpected second transcript %+v", second)
	}

	if err := session.SendAudio([]byte("frame")); err != nil {
		t.Fatalf("SendAudio failed: %v", err)
	}

	if err := session.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, ok := <-session.Transcripts(); ok {
		t.Error("transcripts channel must close after Close")
	}
}
