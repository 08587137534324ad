package telephony

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultAPIBaseURL = "https://api.twilio.com/2010-04-01"

// pauseLength keeps the call open after playback, waiting for the caller's
// next utterance, in seconds.
const pauseLength = 15

// greeting is spoken when the outbound call connects. "Hello, this is
// Khaliya speaking."
const greeting = "നമസ്കാരം, ഞാൻ ഖാലിയ സംസാരിക്കുന്നു."

// TwilioConfig holds configuration for the Twilio call controller.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	StreamURL  string // wss:// URL the media stream is sent to
	Voice      string // voice for the greeting Say verb
	APIBaseURL string // optional, overridden in tests
}

// TwilioController implements CallController against the Twilio REST API.
type TwilioController struct {
	accountSID string
	authToken  string
	fromNumber string
	streamURL  string
	voice      string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewTwilioController creates a new Twilio call controller.
func NewTwilioController(config TwilioConfig, logger *zap.Logger) (*TwilioController, error) {
	if config.AccountSID == "" || config.AuthToken == "" {
		return nil, fmt.Errorf("twilio account SID and auth token are required")
	}
	if config.FromNumber == "" {
		return nil, fmt.Errorf("twilio sender number is required")
	}

	baseURL := config.APIBaseURL
	if baseURL == "" {
		baseURL = defaultAPIBaseURL
	}

	return &TwilioController{
		accountSID: config.AccountSID,
		authToken:  config.AuthToken,
		fromNumber: config.FromNumber,
		streamURL:  config.StreamURL,
		voice:      config.Voice,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}, nil
}

// CreateCall dials the given number. The instruction document starts the
// media stream towards this service, speaks the greeting, and pauses so the
// callee can answer.
func (t *TwilioController) CreateCall(ctx context.Context, toNumber string) (string, error) {
	twiml := fmt.Sprintf(
		`<Response><Start><Stream url="%s" /></Start><Say voice="%s">%s</Say><Pause length="%d"/></Response>`,
		t.streamURL, t.voice, greeting, pauseLength)

	form := url.Values{}
	form.Set("To", toNumber)
	form.Set("From", t.fromNumber)
	form.Set("Twiml", twiml)

	apiURL := fmt.Sprintf("%s/Accounts/%s/Calls.json", t.baseURL, t.accountSID)
	body, err := t.postForm(ctx, apiURL, form)
	if err != nil {
		return "", err
	}

	var call struct {
		SID string `json:"sid"`
	}
	if err := json.Unmarshal(body, &call); err != nil {
		return "", fmt.Errorf("failed to parse call creation response: %w", err)
	}

	t.logger.Info("Call initiated",
		zap.String("to", toNumber),
		zap.String("call_sid", call.SID))

	return call.SID, nil
}

// PlayAudio updates the live call to interrupt current playback, play the
// synthesized audio, and pause awaiting the next utterance. A call that is
// no longer in progress is an expected race, not a failure.
func (t *TwilioController) PlayAudio(ctx context.Context, callSID, audioURL string) error {
	twiml := fmt.Sprintf(`<Response><Play>%s</Play><Pause length="%d"/></Response>`, audioURL, pauseLength)

	form := url.Values{}
	form.Set("Twiml", twiml)

	apiURL := fmt.Sprintf("%s/Accounts/%s/Calls/%s.json", t.baseURL, t.accountSID, callSID)
	if _, err := t.postForm(ctx, apiURL, form); err != nil {
		if strings.Contains(err.Error(), "not in-progress") {
			t.logger.Debug("Call already ended before playback",
				zap.String("call_sid", callSID))
			return nil
		}
		return err
	}

	t.logger.Info("Playing audio in call",
		zap.String("call_sid", callSID),
		zap.String("url", audioURL))

	return nil
}

func (t *TwilioController) postForm(ctx context.Context, apiURL string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(t.accountSID, t.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("twilio request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read twilio response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("twilio returned %d: %s", resp.StatusCode, apiErr.Message)
		}
		return nil, fmt.Errorf("twilio returned %d", resp.StatusCode)
	}

	return body, nil
}
