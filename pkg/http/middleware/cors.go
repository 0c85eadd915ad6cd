package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// CORSConfig holds CORS configuration. An origin entry may be "*" or carry
// one leading wildcard label, e.g. "https://*.astro.example".
type CORSConfig struct {
	AllowOrigins []string
	AllowMethods []string
	AllowHeaders []string
	MaxAge       int
}

// CORS answers preflight requests itself and decorates every other response
// from an allowed origin. Requests from other origins pass through untouched
// and the browser rejects them.
func CORS(cfg CORSConfig) echo.MiddlewareFunc {
	methods := strings.Join(cfg.AllowMethods, ", ")
	headers := strings.Join(cfg.AllowHeaders, ", ")
	maxAge := ""
	if cfg.MaxAge > 0 {
		maxAge = strconv.Itoa(cfg.MaxAge)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			h := c.Response().Header()
			h.Add(echo.HeaderVary, echo.HeaderOrigin)

			origin := req.Header.Get(echo.HeaderOrigin)
			allowed, ok := matchOrigin(cfg.AllowOrigins, origin)
			if !ok {
				return next(c)
			}
			h.Set(echo.HeaderAccessControlAllowOrigin, allowed)

			if req.Method != http.MethodOptions {
				return next(c)
			}
			if methods != "" {
				h.Set(echo.HeaderAccessControlAllowMethods, methods)
			}
			if headers != "" {
				h.Set(echo.HeaderAccessControlAllowHeaders, headers)
			}
			if maxAge != "" {
				h.Set(echo.HeaderAccessControlMaxAge, maxAge)
			}
			return c.NoContent(http.StatusNoContent)
		}
	}
}

// matchOrigin returns the Allow-Origin value for origin. An empty allow list
// allows every origin.
func matchOrigin(allow []string, origin string) (string, bool) {
	if len(allow) == 0 {
		if origin == "" {
			return "*", true
		}
		return origin, true
	}
	for _, o := range allow {
		switch {
		case o == "*":
			if origin == "" {
				return "*", true
			}
			return origin, true
		case origin == "":
		case o == origin:
			return origin, true
		case strings.Contains(o, "://*."):
			scheme, host, _ := strings.Cut(o, "*")
			if strings.HasPrefix(origin, scheme) && strings.HasSuffix(origin, host) &&
				len(origin) > len(scheme)+len(host) {
				return origin, true
			}
		}
	}
	return "", false
}
