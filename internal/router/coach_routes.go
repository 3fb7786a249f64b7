package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/coach-booking-service/internal/handler"
	"github.com/iliyamo/coach-booking-service/internal/middleware"
)

// RegisterCoach registers coach-scoped endpoints under /v1/coach.  All
// routes require a valid JWT and the COACH role.  Coaches manage their
// own slot grid and see the reservations booked against it.
func RegisterCoach(e *echo.Echo, slots *handler.CoachSlotHandler, res *handler.CoachReservationHandler, jwtSecret string) {
	g := e.Group(
		"/v1/coach",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("COACH"),
	)

	// Grid generation is idempotent, so both endpoints can be re-run
	// safely after the first call.
	g.POST("/slots/day", slots.EnsureDay)
	g.POST("/slots/month", slots.EnsureMonth)
	g.GET("/slots", slots.ListDay)
	g.POST("/slots/:id/block", slots.Block)
	g.POST("/slots/:id/free", slots.Free)

	g.GET("/reservations", res.List)
	g.DELETE("/reservations/:id", res.Cancel)
}
