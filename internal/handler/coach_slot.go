package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/coach-booking-service/internal/config"
	"github.com/iliyamo/coach-booking-service/internal/model"
	"github.com/iliyamo/coach-booking-service/internal/repository"
)

// CoachSlotHandler serves the coach's own slot grid: generating it,
// listing it and toggling single slots between AVAILABLE and
// UNAVAILABLE.
type CoachSlotHandler struct {
	Cfg   config.Config
	Slots *repository.SlotRepo
}

func NewCoachSlotHandler(cfg config.Config, s *repository.SlotRepo) *CoachSlotHandler {
	return &CoachSlotHandler{Cfg: cfg, Slots: s}
}

type ensureDayReq struct {
	Date      string `json:"date"`
	HourStart int    `json:"hour_start"`
	HourEnd   int    `json:"hour_end"`
}

type ensureMonthReq struct {
	Year      int `json:"year"`
	Month     int `json:"month"`
	HourStart int `json:"hour_start"`
	HourEnd   int `json:"hour_end"`
}

// gridBounds fills unset hour bounds with the configured defaults.
func (h *CoachSlotHandler) gridBounds(start, end int) (int, int) {
	if start == 0 && end == 0 {
		return h.Cfg.GridHourStart, h.Cfg.GridHourEnd
	}
	return start, end
}

// EnsureDay handles POST /v1/coach/slots/day.  Generating a grid is
// idempotent: hours that already have a slot are left untouched, so a
// coach can re-run it after widening the bounds.
func (h *CoachSlotHandler) EnsureDay(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req ensureDayReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if _, err := time.Parse(model.DateLayout, req.Date); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	start, end := h.gridBounds(req.HourStart, req.HourEnd)
	if start < 0 || end > 24 || end <= start {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hour range"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Slots.EnsureDailyGrid(ctx, uid, req.Date, start, end); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "grid generation failed"})
	}
	slots, err := h.Slots.ListForCoachOnDate(ctx, uid, req.Date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"date": req.Date, "items": slots})
}

// EnsureMonth handles POST /v1/coach/slots/month.
func (h *CoachSlotHandler) EnsureMonth(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req ensureMonthReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Year < 2000 || req.Year > 2100 || req.Month < 1 || req.Month > 12 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid year/month"})
	}
	start, end := h.gridBounds(req.HourStart, req.HourEnd)
	if start < 0 || end > 24 || end <= start {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hour range"})
	}

	// A whole month of inserts gets a longer leash than a single day.
	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	if err := h.Slots.EnsureMonthlyGrid(ctx, uid, req.Year, time.Month(req.Month), start, end); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "grid generation failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"year": req.Year, "month": req.Month})
}

// ListDay handles GET /v1/coach/slots?date=YYYY-MM-DD.
func (h *CoachSlotHandler) ListDay(c echo.Context) error {
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

	slots, err := h.Slots.ListForCoachOnDate(ctx, uid, date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"date": date, "items": slots})
}

// Block handles POST /v1/coach/slots/:id/block.
func (h *CoachSlotHandler) Block(c echo.Context) error {
	return h.toggle(c, model.SlotUnavailable)
}

// Free handles POST /v1/coach/slots/:id/free.
func (h *CoachSlotHandler) Free(c echo.Context) error {
	return h.toggle(c, model.SlotAvailable)
}

// toggle verifies the slot belongs to the calling coach and flips the
// status.  A RESERVED slot is never touched; the member's booking wins
// and the coach gets a conflict back.
func (h *CoachSlotHandler) toggle(c echo.Context, target string) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	slotID, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	slot, err := h.Slots.FindByID(ctx, slotID)
	if err != nil {
		if err == repository.ErrSlotNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if slot.CoachID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not your slot"})
	}

	var changed bool
	if target == model.SlotUnavailable {
		changed, err = h.Slots.Block(ctx, slotID)
	} else {
		changed, err = h.Slots.Free(ctx, slotID)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	if !changed {
		return c.JSON(http.StatusConflict, echo.Map{"error": "slot is reserved"})
	}
	return c.JSON(http.StatusOK, echo.Map{"slot_id": slotID, "status": target})
}
