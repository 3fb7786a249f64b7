package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/coach-booking-service/internal/booking"
	"github.com/iliyamo/coach-booking-service/internal/model"
	"github.com/iliyamo/coach-booking-service/internal/queue"
	"github.com/iliyamo/coach-booking-service/internal/repository"
)

// CoachReservationHandler serves the coach's view of bookings made
// against their slots, plus coach-initiated cancellation.
type CoachReservationHandler struct {
	Slots        *repository.SlotRepo
	Reservations *repository.ReservationRepo
	Booking      *booking.Service
}

func NewCoachReservationHandler(s *repository.SlotRepo, r *repository.ReservationRepo, b *booking.Service) *CoachReservationHandler {
	return &CoachReservationHandler{Slots: s, Reservations: r, Booking: b}
}

// List handles GET /v1/coach/reservations with an optional ?date=
// filter.
func (h *CoachReservationHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	date := c.QueryParam("date")
	var items []repository.CoachReservationView
	if date != "" {
		if _, err := time.Parse(model.DateLayout, date); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
		}
		items, err = h.Reservations.ListForCoachOnDate(ctx, uid, date)
	} else {
		items, err = h.Reservations.ListForCoach(ctx, uid)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Cancel handles DELETE /v1/coach/reservations/:id.  Coaches may
// cancel any reservation on their own slots at any time; the member
// cooldown never applies to them.
func (h *CoachReservationHandler) Cancel(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	resID, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Reservations.FindByID(ctx, resID)
	if err != nil {
		if err == repository.ErrReservationNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if res.CoachID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your reservation"})
	}

	if err := h.Booking.Cancel(ctx, resID, model.RoleCoach); err != nil {
		switch err {
		case repository.ErrReservationNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		case repository.ErrAlreadyCancelled:
			return c.JSON(http.StatusConflict, echo.Map{"error": "reservation already cancelled"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
		}
	}

	slot, serr := h.Slots.FindByID(ctx, res.SlotID)
	if serr == nil {
		publishReservationEvent(queue.ReservationEvent{
			Action:        queue.ActionCancelled,
			ReservationID: resID,
			SlotID:        res.SlotID,
			MemberID:      res.MemberID,
			CoachID:       res.CoachID,
			Date:          slot.Date,
			StartTime:     slot.StartTime,
			EndTime:       slot.EndTime,
			ActorRole:     model.RoleCoach,
			OccurredAt:    time.Now().UTC().Format(time.RFC3339),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"reservation_id": resID, "status": model.ReservationCancelled})
}
