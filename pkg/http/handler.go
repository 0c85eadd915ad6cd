package http

import "github.com/labstack/echo/v4"

// Handler is a group of routes mounted on the server at startup.
type Handler interface {
	RegisterRoutes(e *echo.Echo)
}

// RoutesFunc lets a plain function act as a Handler.
type RoutesFunc func(e *echo.Echo)

func (f RoutesFunc) RegisterRoutes(e *echo.Echo) { f(e) }
