package handler

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/coach-booking-service/internal/config"
	"github.com/iliyamo/coach-booking-service/internal/model"
	"github.com/iliyamo/coach-booking-service/internal/repository"
)

func newCoachSlotHandler(t *testing.T) (*CoachSlotHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	cfg := config.Config{GridHourStart: 8, GridHourEnd: 20}
	return NewCoachSlotHandler(cfg, repository.NewSlotRepo(db)), mock
}

func coachContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint64(3))
	c.Set("role", model.RoleCoach)
	return c, rec
}

func ownSlotRow(id uint64, status string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "coach_id", "date", "start_time", "end_time", "status", "created_at", "updated_at"}).
		AddRow(id, 3, "2026-09-10", "10:00:00", "11:00:00", status, now, now)
}

func TestEnsureDayHandler(t *testing.T) {
	t.Run("defaults fill the configured grid bounds", func(t *testing.T) {
		h, mock := newCoachSlotHandler(t)

		mock.ExpectExec(regexp.QuoteMeta("INSERT IGNORE INTO slots")).
			WillReturnResult(sqlmock.NewResult(0, 12))
		mock.ExpectQuery(regexp.QuoteMeta("FROM slots WHERE coach_id = ? AND date = ?")).
			WithArgs(uint64(3), "2026-09-10").
			WillReturnRows(ownSlotRow(1, model.SlotAvailable))

		c, rec := coachContext(t, http.MethodPost, "/v1/coach/slots/day", `{"date":"2026-09-10"}`)
		require.NoError(t, h.EnsureDay(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reversed hour range is rejected", func(t *testing.T) {
		h, mock := newCoachSlotHandler(t)

		c, rec := coachContext(t, http.MethodPost, "/v1/coach/slots/day", `{"date":"2026-09-10","hour_start":18,"hour_end":9}`)
		require.NoError(t, h.EnsureDay(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSlotToggleHandler(t *testing.T) {
	toggleQ := regexp.QuoteMeta("UPDATE slots SET status = ?, updated_at = NOW() WHERE id = ? AND status <> ?")

	t.Run("blocking an available slot succeeds", func(t *testing.T) {
		h, mock := newCoachSlotHandler(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM slots WHERE id = ?")).
			WithArgs(uint64(7)).
			WillReturnRows(ownSlotRow(7, model.SlotAvailable))
		mock.ExpectExec(toggleQ).
			WithArgs(model.SlotUnavailable, uint64(7), model.SlotReserved).
			WillReturnResult(sqlmock.NewResult(0, 1))

		c, rec := coachContext(t, http.MethodPost, "/v1/coach/slots/7/block", "")
		c.SetParamNames("id")
		c.SetParamValues("7")
		require.NoError(t, h.Block(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), model.SlotUnavailable)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("a reserved slot cannot be blocked", func(t *testing.T) {
		h, mock := newCoachSlotHandler(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM slots WHERE id = ?")).
			WithArgs(uint64(7)).
			WillReturnRows(ownSlotRow(7, model.SlotReserved))
		mock.ExpectExec(toggleQ).
			WithArgs(model.SlotUnavailable, uint64(7), model.SlotReserved).
			WillReturnResult(sqlmock.NewResult(0, 0))

		c, rec := coachContext(t, http.MethodPost, "/v1/coach/slots/7/block", "")
		c.SetParamNames("id")
		c.SetParamValues("7")
		require.NoError(t, h.Block(c))
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "reserved")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("another coach's slot is forbidden", func(t *testing.T) {
		h, mock := newCoachSlotHandler(t)
		now := time.Now()
		mock.ExpectQuery(regexp.QuoteMeta("FROM slots WHERE id = ?")).
			WithArgs(uint64(8)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "coach_id", "date", "start_time", "end_time", "status", "created_at", "updated_at"}).
				AddRow(8, 4, "2026-09-10", "10:00:00", "11:00:00", model.SlotAvailable, now, now))

		c, rec := coachContext(t, http.MethodPost, "/v1/coach/slots/8/free", "")
		c.SetParamNames("id")
		c.SetParamValues("8")
		require.NoError(t, h.Free(c))
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
