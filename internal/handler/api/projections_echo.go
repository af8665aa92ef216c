package api

import (
	"time"

	"github.com/labstack/echo/v4"

	"CupoCast/internal/domain/models"
	"CupoCast/internal/usecase"
	xhttp "CupoCast/pkg/http"
	xlogger "CupoCast/pkg/logger"
)

// Clock supplies the current month when a request omits it.
type Clock func() time.Time

// ProjectionsEchoHandler serves capacity projections.
type ProjectionsEchoHandler struct {
	logger *xlogger.Logger
	uc     *usecase.ProjectionUseCase
	now    Clock
}

func NewProjectionsEchoHandler(logger *xlogger.Logger, uc *usecase.ProjectionUseCase, now Clock) *ProjectionsEchoHandler {
	if now == nil {
		now = time.Now
	}
	return &ProjectionsEchoHandler{logger: logger, uc: uc, now: now}
}

func (h *ProjectionsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/projections")
	g.POST("", h.Project)
	g.POST("/simulate", h.Simulate)
}

func (h *ProjectionsEchoHandler) Project(c echo.Context) error {
	req := &models.ProjectionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.uc.Project(c.Request().Context(), usecase.ProjectParams{
		UserID:       req.UserID,
		Horizon:      horizon(req.Horizon),
		CurrentMonth: h.month(req.CurrentMonth),
		CurrentYear:  req.CurrentYear,
	})
	if err != nil {
		return respondError(c, h.logger, "projection", err)
	}
	return xhttp.SuccessResponse(c, res)
}

// Simulate projects a history sent in the request body without touching storage.
func (h *ProjectionsEchoHandler) Simulate(c echo.Context) error {
	req := &models.SimulateProjectionRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.uc.ProjectHistory(c.Request().Context(),
		models.RecordsFromRequests(req.History),
		horizon(req.Horizon), h.month(req.CurrentMonth), req.CurrentYear)
	if err != nil {
		return respondError(c, h.logger, "simulate projection", err)
	}
	return xhttp.SuccessResponse(c, res)
}

// month reads the clock only when the field is absent; an explicit 0 is
// passed on and rejected by the use case.
func (h *ProjectionsEchoHandler) month(m *int) int {
	if m == nil {
		return int(h.now().Month())
	}
	return *m
}

func horizon(n *int) int {
	if n == nil {
		return models.DefaultHorizon
	}
	return *n
}
