package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/coach-booking-service/internal/handler"
	"github.com/iliyamo/coach-booking-service/internal/middleware"
)

// RegisterMember registers member-scoped endpoints under /v1.  All routes
// require a valid JWT and the MEMBER role.  Members can view their own
// coach's slot grid for a day, reserve an available slot, list their
// reservations and cancel one within the allowed window.
func RegisterMember(e *echo.Echo, h *handler.MemberHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("MEMBER"),
	)
	g.GET("/slots", h.ListDaySlots)
	g.POST("/reservations", h.Reserve)
	g.GET("/my-reservations", h.ListMyReservations)
	g.DELETE("/reservations/:id", h.Cancel)
}
