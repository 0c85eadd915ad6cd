package api

import (
	models "AstroChart/internal/domain/models"
	"AstroChart/internal/middleware"
	"AstroChart/internal/usecase"
	xhttp "AstroChart/pkg/http"
	xlogger "AstroChart/pkg/logger"

	"github.com/labstack/echo/v4"
)

const interpretationNotFound = "Interpretation not found"

// InterpretationsHandler serves interpretation texts. Writes require an admin token.
type InterpretationsHandler struct {
	logger  *xlogger.Logger
	interps *usecase.InterpretationsUseCase
	admins  middleware.AdminAuthenticator
}

func NewInterpretationsHandler(logger *xlogger.Logger, interps *usecase.InterpretationsUseCase, admins middleware.AdminAuthenticator) *InterpretationsHandler {
	return &InterpretationsHandler{logger: logger, interps: interps, admins: admins}
}

func (h *InterpretationsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/interpretations")
	g.GET("", h.List)
	g.GET("/:id", h.Get)

	admin := middleware.RequireAdmin(h.admins)
	g.POST("", h.Create, admin)
	g.PUT("/:id", h.Update, admin)
	g.DELETE("/:id", h.Delete, admin)
}

func (h *InterpretationsHandler) List(c echo.Context) error {
	req := &models.InterpretationListRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	items, err := h.interps.List(c.Request().Context(), req.Category)
	if err != nil {
		return writeError(c, h.logger, "list interpretations", err, "")
	}
	return xhttp.SuccessResponse(c, items)
}

func (h *InterpretationsHandler) Get(c echo.Context) error {
	it, err := h.interps.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, h.logger, "get interpretation", err, interpretationNotFound)
	}
	return xhttp.SuccessResponse(c, it)
}

func (h *InterpretationsHandler) Create(c echo.Context) error {
	req := &models.InterpretationCreate{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	it, err := h.interps.Create(c.Request().Context(), *req)
	if err != nil {
		return writeError(c, h.logger, "create interpretation", err, "")
	}
	if a, ok := middleware.AdminFrom(c); ok {
		h.logger.Info("interpretation created", xlogger.String("admin", a.Username), xlogger.String("key", it.Key))
	}
	return xhttp.CreatedResponse(c, it)
}

func (h *InterpretationsHandler) Update(c echo.Context) error {
	req := &models.InterpretationUpdate{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	it, err := h.interps.Update(c.Request().Context(), c.Param("id"), *req)
	if err != nil {
		return writeError(c, h.logger, "update interpretation", err, interpretationNotFound)
	}
	return xhttp.SuccessResponse(c, it)
}

func (h *InterpretationsHandler) Delete(c echo.Context) error {
	if err := h.interps.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, h.logger, "delete interpretation", err, interpretationNotFound)
	}
	return xhttp.MessageResponse(c, "Interpretation deleted successfully")
}
