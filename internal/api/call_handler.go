package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/khaliya-ai/callbridge/domain/repositories"
	"github.com/khaliya-ai/callbridge/internal/metrics"
)

// CallHandler serves the call-initiation endpoint.
type CallHandler struct {
	calls   repositories.CallController
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// MakeCall programmatically dials a number. The created call streams its
// audio back to this service's /stream endpoint.
func (h *CallHandler) MakeCall(c echo.Context) error {
	var req MakeCallRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Warn("Failed to bind make_call request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	if req.Number == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_number",
			Message: "'number' not provided",
		})
	}

	callSID, err := h.calls.CreateCall(c.Request().Context(), req.Number)
	if err != nil {
		h.logger.Error("Failed to initiate call",
			zap.String("number", req.Number),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "call_failed",
			Message: "Error initiating call",
		})
	}

	h.metrics.CallsDialed.Inc()
	h.logger.Info("Call initiated",
		zap.String("number", req.Number),
		zap.String("call_sid", callSID))

	return c.JSON(http.StatusOK, MakeCallResponse{CallSID: callSID})
}
