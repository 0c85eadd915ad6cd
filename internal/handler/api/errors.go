package api

import (
	"errors"
	"net/http"

	"AstroChart/internal/domain/models"
	"AstroChart/internal/service/geocode"
	"AstroChart/internal/usecase"
	xhttp "AstroChart/pkg/http"
	xlogger "AstroChart/pkg/logger"

	"github.com/labstack/echo/v4"
)

// toAppError maps domain errors to HTTP errors. notFound is the message used for ErrNotFound.
func toAppError(err error, notFound string) *xhttp.AppError {
	var appErr *xhttp.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, models.ErrNotFound):
		return xhttp.NotFoundError(notFound)
	case errors.Is(err, models.ErrInvalidDateTime):
		return xhttp.UnprocessableError("birth_date", "Invalid birth date or time")
	case errors.Is(err, models.ErrInvalidLocation):
		return xhttp.UnprocessableError("latitude", "Invalid coordinates")
	case errors.Is(err, models.ErrOutOfRange):
		return xhttp.UnprocessableError("birth_date", "Date outside supported ephemeris range")
	case errors.Is(err, geocode.ErrUpstream):
		return xhttp.BadGatewayError("Location service unavailable")
	case errors.Is(err, usecase.ErrUnavailable):
		return xhttp.UnavailableError("Service unavailable")
	default:
		return xhttp.InternalError("Internal server error")
	}
}

func writeError(c echo.Context, logger *xlogger.Logger, op string, err error, notFound string) error {
	appErr := toAppError(err, notFound)
	if appErr.Status >= http.StatusInternalServerError {
		logger.Error(op+" failed", xlogger.String("path", c.Path()), xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}
