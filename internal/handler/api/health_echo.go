package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	xhttp "CupoCast/pkg/http"
	xlogger "CupoCast/pkg/logger"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Health(ctx context.Context) error
}

// HealthEchoHandler serves GET /health backed by the history store.
type HealthEchoHandler struct {
	logger  *xlogger.Logger
	store   Pinger
	timeout time.Duration
}

func NewHealthEchoHandler(logger *xlogger.Logger, store Pinger) *HealthEchoHandler {
	return &HealthEchoHandler{logger: logger, store: store, timeout: 2 * time.Second}
}

func (h *HealthEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
}

func (h *HealthEchoHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.store.Health(ctx); err != nil {
		h.logger.Warn("health check failed", xlogger.Error(err))
		return xhttp.DataResponse(c, http.StatusServiceUnavailable, map[string]string{"storage": "down"})
	}
	return xhttp.SuccessResponse(c, map[string]string{"storage": "ok"})
}
