package api

import (
	"errors"
	"time"

	models "AstroChart/internal/domain/models"
	domrepo "AstroChart/internal/domain/repository"
	"AstroChart/internal/usecase"
	xhttp "AstroChart/pkg/http"
	xlogger "AstroChart/pkg/logger"

	"github.com/labstack/echo/v4"
)

const welcomeMessage = "Астрологічний калькулятор API"

// ChartsHandler serves chart computation, stored charts and location search.
type ChartsHandler struct {
	logger   *xlogger.Logger
	charts   *usecase.ChartsUseCase
	interps  *usecase.InterpretationsUseCase
	geocoder domrepo.Geocoder
}

func NewChartsHandler(logger *xlogger.Logger, charts *usecase.ChartsUseCase, interps *usecase.InterpretationsUseCase, geocoder domrepo.Geocoder) *ChartsHandler {
	return &ChartsHandler{logger: logger, charts: charts, interps: interps, geocoder: geocoder}
}

func (h *ChartsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/", h.Root)
	g.GET("/zodiac", h.Zodiac)
	g.POST("/locations/search", h.SearchLocations)
	g.POST("/natal-charts", h.Create)
	g.GET("/natal-charts", h.List)
	g.POST("/natal-charts/preview", h.Preview)
	g.POST("/natal-charts/batch", h.Batch)
	g.GET("/natal-charts/:id", h.Get)
	g.DELETE("/natal-charts/:id", h.Delete)
	g.GET("/natal-charts/:id/interpretations", h.Interpretations)
}

func (h *ChartsHandler) Root(c echo.Context) error {
	return xhttp.MessageResponse(c, welcomeMessage)
}

func (h *ChartsHandler) SearchLocations(c echo.Context) error {
	req := &models.LocationSearchRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	locs, err := h.geocoder.Search(c.Request().Context(), req.Query, req.Limit)
	if err != nil {
		return writeError(c, h.logger, "location search", err, "")
	}
	return xhttp.SuccessResponse(c, locs)
}

func (h *ChartsHandler) Create(c echo.Context) error {
	req := &models.NatalChartCreate{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	nc, err := h.charts.CreateChart(c.Request().Context(), *req)
	if err != nil {
		return writeError(c, h.logger, "create chart", err, "")
	}
	return xhttp.CreatedResponse(c, nc)
}

func (h *ChartsHandler) List(c echo.Context) error {
	req := &models.ChartListRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	since := xhttp.ParseTimeDefault(req.Since, time.Time{})
	charts, err := h.charts.ListCharts(c.Request().Context(), since, req.Limit)
	if err != nil {
		return writeError(c, h.logger, "list charts", err, "")
	}
	return xhttp.SuccessResponse(c, charts)
}

func (h *ChartsHandler) Get(c echo.Context) error {
	nc, err := h.charts.GetChart(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, h.logger, "get chart", err, "Chart not found")
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, nc)
}

func (h *ChartsHandler) Delete(c echo.Context) error {
	if err := h.charts.DeleteChart(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, h.logger, "delete chart", err, "Chart not found")
	}
	return xhttp.MessageResponse(c, "Chart deleted successfully")
}

func (h *ChartsHandler) Preview(c echo.Context) error {
	req := &models.ChartInput{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	chart, err := h.charts.Preview(c.Request().Context(), *req)
	if err != nil {
		return writeError(c, h.logger, "preview chart", err, "")
	}
	return xhttp.SuccessResponse(c, chart)
}

// Batch queues the charts for background computation. Without a job queue
// the batch is computed inline.
func (h *ChartsHandler) Batch(c echo.Context) error {
	req := &models.ChartBatchRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	ctx := c.Request().Context()

	id, err := h.charts.EnqueueBatch(ctx, *req)
	if err == nil {
		return xhttp.AcceptedResponse(c, map[string]interface{}{
			"job_id": id,
			"charts": len(req.Charts),
		})
	}
	if !errors.Is(err, usecase.ErrUnavailable) {
		return writeError(c, h.logger, "enqueue batch", err, "")
	}

	charts, err := h.charts.CreateBatch(ctx, "", req.Charts)
	if err != nil {
		return writeError(c, h.logger, "create batch", err, "")
	}
	return xhttp.CreatedResponse(c, charts)
}

func (h *ChartsHandler) Interpretations(c echo.Context) error {
	reading, err := h.interps.ForChart(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, h.logger, "chart interpretations", err, "Chart not found")
	}
	return xhttp.SuccessResponse(c, reading)
}
