// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bus-seat-reservation/internal/handler"
	"github.com/iliyamo/bus-seat-reservation/internal/middleware"
)

// RegisterRoutes wires the health check and the reservation endpoints
// onto the provided Echo instance.  The occupancy route goes through
// the response cache; every /v1 route goes through the rate limiter
// when one is provided.
func RegisterRoutes(e *echo.Echo, h *handler.ReservationHandler, cache *middleware.OccupancyCache, limiter echo.MiddlewareFunc) {
	e.GET("/healthz", handler.Health)

	v1 := e.Group("/v1")
	if limiter != nil {
		v1.Use(limiter)
	}
	v1.GET("/occupancy", h.GetOccupancy, cache.Middleware())
	v1.POST("/reservations", h.Reserve)
	v1.DELETE("/reservations", h.Cancel)
	v1.GET("/reservations", h.Search)
}
