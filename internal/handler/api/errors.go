package api

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"

	"CupoCast/internal/domain/models"
	xhttp "CupoCast/pkg/http"
	xlogger "CupoCast/pkg/logger"
)

// respondError maps domain errors onto the transport envelope. Caller faults
// are not logged; integration and infrastructure faults are.
func respondError(c echo.Context, log *xlogger.Logger, op string, err error) error {
	var appErr *xhttp.AppError
	switch {
	case errors.As(err, &appErr):
	case errors.Is(err, models.ErrInvalidHorizon):
		appErr = xhttp.BadRequestErrorf("horizon", "%v", err)
	case errors.Is(err, models.ErrInvalidMonth):
		appErr = xhttp.BadRequestErrorf("current_month", "%v", err)
	case errors.Is(err, models.ErrInvalidRecord):
		appErr = xhttp.BadRequestErrorf("", "%v", err)
	case errors.Is(err, models.ErrUserNotFound):
		appErr = xhttp.NotFoundErrorf("%v", err)
	case errors.Is(err, models.ErrUserExists):
		appErr = xhttp.ConflictErrorf("%v", err)
	case errors.Is(err, context.DeadlineExceeded):
		log.Warn(op+" timed out", xlogger.Error(err))
		appErr = xhttp.UnavailableError("request timed out")
	case errors.Is(err, models.ErrRegressorUnavailable):
		log.Error(op+" failed: regressor unavailable", xlogger.Error(err))
		appErr = xhttp.UnavailableError("forecast model is unavailable")
	case errors.Is(err, models.ErrScalerDimensionMismatch):
		log.Error(op+" failed: model input mismatch", xlogger.Error(err))
		appErr = xhttp.InternalError("forecast model is misconfigured")
	default:
		log.Error(op+" failed", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	return xhttp.AppErrorResponse(c, appErr.WithError(err))
}
