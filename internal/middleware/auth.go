package middleware

import (
	"context"

	"AstroChart/internal/domain/models"
	xhttp "AstroChart/pkg/http"

	"github.com/labstack/echo/v4"
)

const adminContextKey = "admin"

// AdminAuthenticator resolves a bearer token to an admin account.
type AdminAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Admin, error)
}

// RequireAdmin rejects requests without a valid admin bearer token.
func RequireAdmin(auth AdminAuthenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := xhttp.BearerToken(c)
			if !ok {
				return xhttp.AppErrorResponse(c, xhttp.UnauthorizedError("Missing bearer token"))
			}
			admin, err := auth.Authenticate(c.Request().Context(), token)
			if err != nil {
				return xhttp.AppErrorResponse(c, xhttp.UnauthorizedError("Invalid or expired token").WithError(err))
			}
			c.Set(adminContextKey, admin)
			return next(c)
		}
	}
}

// AdminFrom returns the admin stored by RequireAdmin.
func AdminFrom(c echo.Context) (*models.Admin, bool) {
	a, ok := c.Get(adminContextKey).(*models.Admin)
	return a, ok
}
