package middleware

import (
	"AstroChart/internal/service/metrics"
	"AstroChart/internal/service/ratelimit"
	xhttp "AstroChart/pkg/http"

	"github.com/labstack/echo/v4"
)

// RateLimit applies a token bucket per client IP.
func RateLimit(l *ratelimit.Limiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !l.Allow(c.RealIP()) {
				metrics.RateLimited.WithLabelValues(c.Path()).Inc()
				c.Response().Header().Set("Retry-After", "1")
				return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("Too many requests"))
			}
			return next(c)
		}
	}
}
