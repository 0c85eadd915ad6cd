package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	applogger "AstroChart/pkg/logger"

	"github.com/labstack/echo/v4"
)

// panicBody mirrors the error envelope written by handlers.
var panicBody = echo.Map{
	"status":  http.StatusInternalServerError,
	"success": false,
	"message": "Internal Server Error",
	"data": []echo.Map{{
		"code":    "ERR_INTERNAL",
		"message": "Something went wrong",
	}},
}

// Recover turns a handler panic into a 500 response and logs the stack.
// Nothing is written when the handler already committed a response.
func Recover(l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if r == http.ErrAbortHandler {
					panic(r)
				}
				l.Error("panic recovered",
					applogger.Error(panicError(r)),
					applogger.String("method", c.Request().Method),
					applogger.String("route", routeLabel(c)),
					applogger.String("stack", string(debug.Stack())))
				if c.Response().Committed {
					return
				}
				err = c.JSON(http.StatusInternalServerError, panicBody)
			}()
			return next(c)
		}
	}
}

func panicError(r interface{}) error {
	if e, ok := r.(error); ok {
		return e
	}
	return fmt.Errorf("panic: %v", r)
}
