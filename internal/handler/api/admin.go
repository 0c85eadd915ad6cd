package api

import (
	"errors"

	models "AstroChart/internal/domain/models"
	"AstroChart/internal/usecase"
	xhttp "AstroChart/pkg/http"
	xlogger "AstroChart/pkg/logger"

	"github.com/labstack/echo/v4"
)

type AdminHandler struct {
	logger *xlogger.Logger
	admins *usecase.AdminUseCase
}

func NewAdminHandler(logger *xlogger.Logger, admins *usecase.AdminUseCase) *AdminHandler {
	return &AdminHandler{logger: logger, admins: admins}
}

func (h *AdminHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/admin")
	g.POST("/login", h.Login)
	g.POST("/register", h.Register)
}

func (h *AdminHandler) Login(c echo.Context) error {
	req := &models.AdminCredentials{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	tok, err := h.admins.Login(c.Request().Context(), *req)
	if errors.Is(err, models.ErrUnauthorized) {
		return xhttp.AppErrorResponse(c, xhttp.UnauthorizedError("Invalid credentials"))
	}
	if err != nil {
		return writeError(c, h.logger, "admin login", err, "")
	}
	return xhttp.SuccessResponse(c, tok)
}

func (h *AdminHandler) Register(c echo.Context) error {
	req := &models.AdminCredentials{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	tok, err := h.admins.Register(c.Request().Context(), *req)
	if errors.Is(err, models.ErrConflict) {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("Admin already exists"))
	}
	if err != nil {
		return writeError(c, h.logger, "admin register", err, "")
	}
	h.logger.Info("admin registered", xlogger.String("username", tok.Username))
	return xhttp.SuccessResponse(c, tok)
}
