package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/khaliya-ai/callbridge/domain/repositories"
	"github.com/khaliya-ai/callbridge/internal/metrics"
	"github.com/khaliya-ai/callbridge/internal/websocket"
)

// InitRoutes initializes all API routes.
func InitRoutes(
	e *echo.Echo,
	stream *websocket.StreamHandler,
	calls repositories.CallController,
	staticDir string,
	m *metrics.Metrics,
	logger *zap.Logger,
) {
	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "callbridge",
		})
	})

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Synthesized audio assets, fetched by the telephony provider
	e.Static("/static", staticDir)

	// Carrier media stream socket
	e.GET("/stream", stream.Handle)

	handler := &CallHandler{calls: calls, metrics: m, logger: logger}
	e.POST("/make_call", handler.MakeCall)
}
