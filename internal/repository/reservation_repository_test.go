package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/coach-booking-service/internal/model"
)

func newReservationRepo(t *testing.T) (*ReservationRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewReservationRepo(db), mock
}

func TestReservationFindByID(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("found", func(t *testing.T) {
		repo, mock := newReservationRepo(t)
		rows := sqlmock.NewRows([]string{"id", "slot_id", "member_id", "coach_id", "status", "paid", "created_at", "updated_at"}).
			AddRow(42, 7, 21, 3, model.ReservationConfirmed, false, now, now)
		mock.ExpectQuery(regexp.QuoteMeta("FROM reservations WHERE id = ?")).
			WithArgs(uint64(42)).
			WillReturnRows(rows)

		res, err := repo.FindByID(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, uint64(7), res.SlotID)
		assert.Equal(t, uint64(21), res.MemberID)
		assert.Equal(t, uint64(3), res.CoachID)
		assert.Equal(t, model.ReservationConfirmed, res.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row maps to the typed error", func(t *testing.T) {
		repo, mock := newReservationRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM reservations WHERE id = ?")).
			WithArgs(uint64(404)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "slot_id", "member_id", "coach_id", "status", "paid", "created_at", "updated_at"}))

		_, err := repo.FindByID(ctx, 404)
		assert.ErrorIs(t, err, ErrReservationNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListForMember(t *testing.T) {
	repo, mock := newReservationRepo(t)

	rows := sqlmock.NewRows([]string{"id", "slot_id", "status", "paid", "date", "start_time", "end_time", "coach"}).
		AddRow(2, 8, model.ReservationConfirmed, false, "2026-09-12", "10:00:00", "11:00:00", "Dana Cole").
		AddRow(1, 7, model.ReservationCancelled, false, "2026-09-10", "09:00:00", "10:00:00", "Dana Cole")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE r.member_id = ?")).
		WithArgs(uint64(21)).
		WillReturnRows(rows)

	views, err := repo.ListForMember(context.Background(), 21)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "2026-09-12", views[0].Date)
	assert.Equal(t, "Dana Cole", views[0].CoachName)
	assert.Equal(t, model.ReservationCancelled, views[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListForCoachOnDateFilters(t *testing.T) {
	repo, mock := newReservationRepo(t)

	rows := sqlmock.NewRows([]string{"id", "slot_id", "member_id", "status", "paid", "date", "start_time", "end_time", "member"}).
		AddRow(5, 9, 21, model.ReservationConfirmed, true, "2026-09-12", "14:00:00", "15:00:00", "Iris Webb")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE r.coach_id = ? AND s.date = ?")).
		WithArgs(uint64(3), "2026-09-12").
		WillReturnRows(rows)

	views, err := repo.ListForCoachOnDate(context.Background(), 3, "2026-09-12")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, uint64(21), views[0].MemberID)
	assert.True(t, views[0].Paid)
	assert.NoError(t, mock.ExpectationsWereMet())
}
