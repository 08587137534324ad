package config

import (
	"fmt"
	"os"
)

// Config holds all environment-sourced settings for the service.
type Config struct {
	Port      string
	StaticDir string

	// Externally reachable hostname of this deployment, without scheme.
	// Used to build both the media stream URL and the audio asset URLs.
	AppHostname string

	// Telephony provider credentials
	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioPhoneNumber string

	// Generation engine
	GeminiAPIKey string

	// Conversation locale
	LanguageCode string // BCP-47, drives recognition and synthesis
	TTSVoice     string // synthesis voice name
}

// LoadFromEnv reads configuration from environment variables, applying
// defaults for the optional fields.
func LoadFromEnv() Config {
	return Config{
		Port:              getenv("PORT", "5000"),
		StaticDir:         getenv("STATIC_DIR", "static"),
		AppHostname:       os.Getenv("APP_HOSTNAME"),
		TwilioAccountSID:  os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:   os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioPhoneNumber: os.Getenv("TWILIO_PHONE_NUMBER"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		LanguageCode:      getenv("LANGUAGE_CODE", "ml-IN"),
		TTSVoice:          getenv("TTS_VOICE", "ml-IN-Standard-A"),
	}
}

// Validate checks that the credentials required to reach the external
// engines are present.
func (c Config) Validate() error {
	if c.TwilioAccountSID == "" {
		return fmt.Errorf("TWILIO_ACCOUNT_SID is required")
	}
	if c.TwilioAuthToken == "" {
		return fmt.Errorf("TWILIO_AUTH_TOKEN is required")
	}
	if c.TwilioPhoneNumber == "" {
		return fmt.Errorf("TWILIO_PHONE_NUMBER is required")
	}
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	if c.AppHostname == "" {
		return fmt.Errorf("APP_HOSTNAME is required")
	}
	return nil
}

// StreamURL returns the websocket URL the telephony provider should stream
// call audio to.
func (c Config) StreamURL() string {
	return fmt.Sprintf("wss://%s/stream", c.AppHostname)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
