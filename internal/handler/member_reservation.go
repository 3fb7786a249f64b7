package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/coach-booking-service/internal/booking"
	"github.com/iliyamo/coach-booking-service/internal/model"
	"github.com/iliyamo/coach-booking-service/internal/queue"
	"github.com/iliyamo/coach-booking-service/internal/repository"
	queue_publisher "github.com/iliyamo/coach-booking-service/internal/service"
)

// MemberHandler serves the member-facing endpoints: browsing the own
// coach's slots, reserving one and cancelling a reservation.
type MemberHandler struct {
	Users        *repository.UserRepo
	Slots        *repository.SlotRepo
	Reservations *repository.ReservationRepo
	Booking      *booking.Service
}

func NewMemberHandler(u *repository.UserRepo, s *repository.SlotRepo, r *repository.ReservationRepo, b *booking.Service) *MemberHandler {
	return &MemberHandler{Users: u, Slots: s, Reservations: r, Booking: b}
}

// memberCoachID resolves the coach the calling member is linked to.
// Members without a coach link cannot see or book any slots.
func (h *MemberHandler) memberCoachID(ctx context.Context, memberID uint64) (uint64, error) {
	u, err := h.Users.GetByID(ctx, memberID)
	if err != nil {
		return 0, err
	}
	if u.CoachID == nil {
		return 0, repository.ErrForbidden
	}
	return *u.CoachID, nil
}

// ListDaySlots handles GET /v1/slots?date=YYYY-MM-DD.  It returns the
// slots of the member's own coach for that day, every status included,
// so the client can render the full grid.
func (h *MemberHandler) ListDaySlots(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	date := c.QueryParam("date")
	if _, err := time.Parse(model.DateLayout, date); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	coachID, err := h.memberCoachID(ctx, uid)
	if err != nil {
		if err == repository.ErrForbidden {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "no coach linked to this account"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	slots, err := h.Slots.ListForCoachOnDate(ctx, coachID, date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"date": date, "coach_id": coachID, "items": slots})
}

type reserveReq struct {
	SlotID uint64 `json:"slot_id"`
}

// Reserve handles POST /v1/reservations.  The slot must belong to the
// member's own coach, must not lie in the past and must be AVAILABLE.
// The availability check happens again under a row lock inside the
// booking service, so concurrent requests cannot double-book.
func (h *MemberHandler) Reserve(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req reserveReq
	if err := c.Bind(&req); err != nil || req.SlotID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "slot_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	coachID, err := h.memberCoachID(ctx, uid)
	if err != nil {
		if err == repository.ErrForbidden {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "no coach linked to this account"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	slot, err := h.Slots.FindByID(ctx, req.SlotID)
	if err != nil {
		if err == repository.ErrSlotNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if slot.CoachID != coachID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "slot belongs to another coach"})
	}
	startsAt, err := slot.StartsAt()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "bad slot data"})
	}
	if startsAt.Before(time.Now().UTC()) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "slot is in the past"})
	}

	resID, err := h.Booking.Reserve(ctx, req.SlotID, uid)
	if err != nil {
		switch err {
		case repository.ErrSlotNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
		case repository.ErrSlotUnavailable:
			return c.JSON(http.StatusConflict, echo.Map{"error": "slot is not available"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reserve failed"})
		}
	}

	publishReservationEvent(queue.ReservationEvent{
		Action:        queue.ActionConfirmed,
		ReservationID: resID,
		SlotID:        slot.ID,
		MemberID:      uid,
		CoachID:       slot.CoachID,
		Date:          slot.Date,
		StartTime:     slot.StartTime,
		EndTime:       slot.EndTime,
		ActorRole:     model.RoleMember,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, echo.Map{
		"reservation_id": resID,
		"slot_id":        slot.ID,
		"status":         model.ReservationConfirmed,
	})
}

// ListMyReservations handles GET /v1/my-reservations.
func (h *MemberHandler) ListMyReservations(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Reservations.ListForMember(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Cancel handles DELETE /v1/reservations/:id.  Members may only cancel
// their own reservations, and only while the slot start is at least
// the configured cooldown away.
func (h *MemberHandler) Cancel(c echo.Context) error {
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
	if res.MemberID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your reservation"})
	}

	if err := h.Booking.Cancel(ctx, resID, model.RoleMember); err != nil {
		switch err {
		case repository.ErrReservationNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
		case repository.ErrAlreadyCancelled:
			return c.JSON(http.StatusConflict, echo.Map{"error": "reservation already cancelled"})
		case repository.ErrCancellationWindowExpired:
			return c.JSON(http.StatusConflict, echo.Map{"error": "too close to the session start to cancel"})
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
			ActorRole:     model.RoleMember,
			OccurredAt:    time.Now().UTC().Format(time.RFC3339),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"reservation_id": resID, "status": model.ReservationCancelled})
}

// publishReservationEvent pushes an event to the queue on a best-effort
// basis.  Failures are logged and never surface to the client; the
// reservation itself has already been committed.
func publishReservationEvent(ev queue.ReservationEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := queue_publisher.PublishReservationEvent(ctx, ev); err != nil {
		log.Printf("queue publish failed (%s reservation %d): %v", ev.Action, ev.ReservationID, err)
	}
}
