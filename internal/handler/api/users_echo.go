package api

import (
	"github.com/labstack/echo/v4"

	"CupoCast/internal/domain/models"
	"CupoCast/internal/usecase"
	xhttp "CupoCast/pkg/http"
	xlogger "CupoCast/pkg/logger"
)

// UsersEchoHandler lists users, serves their history and seeds records.
type UsersEchoHandler struct {
	logger *xlogger.Logger
	users  *usecase.UserUseCase
	risk   *usecase.RiskUseCase
}

func NewUsersEchoHandler(logger *xlogger.Logger, users *usecase.UserUseCase, risk *usecase.RiskUseCase) *UsersEchoHandler {
	return &UsersEchoHandler{logger: logger, users: users, risk: risk}
}

func (h *UsersEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/users")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id/history", h.History)
	g.POST("/:id/history", h.AppendHistory)
	g.GET("/:id/risk", h.Risk)
}

// List returns every user, or with ?with_history=true only those holding
// enough months to project.
func (h *UsersEchoHandler) List(c echo.Context) error {
	req := &models.ListUsersRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	ctx := c.Request().Context()

	if req.WithHistory {
		rows, err := h.users.ListUsersWithHistory(ctx, req.MinMonths)
		if err != nil {
			return respondError(c, h.logger, "list users", err)
		}
		return xhttp.ListResponse(c, rows, int64(len(rows)))
	}

	rows, err := h.users.ListUsers(ctx)
	if err != nil {
		return respondError(c, h.logger, "list users", err)
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *UsersEchoHandler) Create(c echo.Context) error {
	req := &models.CreateUserRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	u, err := h.users.CreateUser(c.Request().Context(), req.Name, req.Email)
	if err != nil {
		return respondError(c, h.logger, "create user", err)
	}
	return xhttp.CreatedResponse(c, u)
}

func (h *UsersEchoHandler) History(c echo.Context) error {
	req := &models.UserPathRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	rows, err := h.users.History(c.Request().Context(), req.ID)
	if err != nil {
		return respondError(c, h.logger, "history", err)
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *UsersEchoHandler) AppendHistory(c echo.Context) error {
	req := &models.AppendHistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	entries := make([]models.HistoryEntry, len(req.Entries))
	for i, e := range req.Entries {
		entries[i] = e.ToEntry(req.UserID)
	}
	if err := h.users.AddHistory(c.Request().Context(), req.UserID, entries); err != nil {
		return respondError(c, h.logger, "append history", err)
	}
	return xhttp.CreatedResponse(c, map[string]int{"stored": len(entries)})
}

func (h *UsersEchoHandler) Risk(c echo.Context) error {
	req := &models.UserPathRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.risk.Evaluate(c.Request().Context(), req.ID)
	if err != nil {
		return respondError(c, h.logger, "risk", err)
	}
	return xhttp.SuccessResponse(c, res)
}
