package api

import (
	"github.com/labstack/echo/v4"

	"CupoCast/internal/domain/models"
	"CupoCast/internal/usecase"
	xhttp "CupoCast/pkg/http"
	xlogger "CupoCast/pkg/logger"
)

type RiskEchoHandler struct {
	logger *xlogger.Logger
	uc     *usecase.RiskUseCase
}

func NewRiskEchoHandler(logger *xlogger.Logger, uc *usecase.RiskUseCase) *RiskEchoHandler {
	return &RiskEchoHandler{logger: logger, uc: uc}
}

func (h *RiskEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/risk/evaluate", h.Evaluate)
}

func (h *RiskEchoHandler) Evaluate(c echo.Context) error {
	req := &models.RiskEvaluateRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.uc.EvaluateRecords(c.Request().Context(), models.RecordsFromRequests(req.History))
	if err != nil {
		return respondError(c, h.logger, "risk evaluate", err)
	}
	return xhttp.SuccessResponse(c, res)
}
