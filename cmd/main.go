package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/khaliya-ai/callbridge/adapters/llm"
	"github.com/khaliya-ai/callbridge/adapters/stt"
	"github.com/khaliya-ai/callbridge/adapters/telephony"
	"github.com/khaliya-ai/callbridge/adapters/tts"
	"github.com/khaliya-ai/callbridge/domain/repositories"
	"github.com/khaliya-ai/callbridge/internal/api"
	"github.com/khaliya-ai/callbridge/internal/config"
	"github.com/khaliya-ai/callbridge/internal/metrics"
	"github.com/khaliya-ai/callbridge/internal/websocket"
	"github.com/khaliya-ai/callbridge/usecase"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// .env is for local development; deployments set real env vars.
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file loaded", zap.Error(err))
	}

	cfg := config.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	ctx := context.Background()

	// Initialize adapters
	generator, err := llm.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, logger)
	if err != nil {
		logger.Fatal("Failed to initialize generation engine", zap.Error(err))
	}

	synthesizer, err := tts.NewGoogleSynthesizer(ctx, tts.GoogleConfig{
		StaticDir:    cfg.StaticDir,
		Hostname:     cfg.AppHostname,
		LanguageCode: cfg.LanguageCode,
		Voice:        cfg.TTSVoice,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize synthesis engine", zap.Error(err))
	}

	calls, err := telephony.NewTwilioController(telephony.TwilioConfig{
		AccountSID: cfg.TwilioAccountSID,
		AuthToken:  cfg.TwilioAuthToken,
		FromNumber: cfg.TwilioPhoneNumber,
		StreamURL:  cfg.StreamURL(),
		Voice:      cfg.TTSVoice,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize telephony provider", zap.Error(err))
	}

	recognizer := stt.NewGoogleSpeechToText(logger)

	m := metrics.Default

	// Per-call orchestration
	turns := usecase.NewTurnController(generator, synthesizer, calls, m, logger)
	registry := websocket.NewRegistry(logger)
	stream := websocket.NewStreamHandler(recognizer, turns, registry, repositories.AudioConfig{
		Encoding:   "MULAW",
		SampleRate: 8000,
		Language:   cfg.LanguageCode,
		Model:      "telephony",
	}, m, logger)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	api.InitRoutes(e, stream, calls, cfg.StaticDir, m, logger)

	// Graceful shutdown
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("port", cfg.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
