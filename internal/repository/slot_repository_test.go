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

func newSlotRepo(t *testing.T) (*SlotRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSlotRepo(db), mock
}

func TestEnsureDailyGrid(t *testing.T) {
	ctx := context.Background()

	t.Run("one INSERT IGNORE covers the whole range", func(t *testing.T) {
		repo, mock := newSlotRepo(t)

		mock.ExpectExec(regexp.QuoteMeta("INSERT IGNORE INTO slots (coach_id, date, start_time, end_time, status) VALUES (?, ?, ?, ?, ?),(?, ?, ?, ?, ?),(?, ?, ?, ?, ?)")).
			WithArgs(
				uint64(3), "2026-09-10", "08:00:00", "09:00:00", model.SlotAvailable,
				uint64(3), "2026-09-10", "09:00:00", "10:00:00", model.SlotAvailable,
				uint64(3), "2026-09-10", "10:00:00", "11:00:00", model.SlotAvailable,
			).
			WillReturnResult(sqlmock.NewResult(0, 3))

		err := repo.EnsureDailyGrid(ctx, 3, "2026-09-10", 8, 11)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("re-run against existing rows still succeeds", func(t *testing.T) {
		repo, mock := newSlotRepo(t)

		// Duplicates are skipped by INSERT IGNORE, so the driver
		// reports no affected rows and no error.
		mock.ExpectExec(regexp.QuoteMeta("INSERT IGNORE INTO slots")).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.EnsureDailyGrid(ctx, 3, "2026-09-10", 8, 11)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty hour range is rejected without touching the database", func(t *testing.T) {
		repo, mock := newSlotRepo(t)

		err := repo.EnsureDailyGrid(ctx, 3, "2026-09-10", 12, 12)
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEnsureMonthlyGrid(t *testing.T) {
	repo, mock := newSlotRepo(t)

	// September has 30 days; each one gets its own idempotent insert.
	for day := 1; day <= 30; day++ {
		mock.ExpectExec(regexp.QuoteMeta("INSERT IGNORE INTO slots")).
			WillReturnResult(sqlmock.NewResult(0, 12))
	}

	err := repo.EnsureMonthlyGrid(context.Background(), 3, 2026, time.September, 8, 20)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListForCoachOnDate(t *testing.T) {
	repo, mock := newSlotRepo(t)
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "coach_id", "date", "start_time", "end_time", "status", "created_at", "updated_at"}).
		AddRow(1, 3, "2026-09-10", "08:00:00", "09:00:00", model.SlotAvailable, now, now).
		AddRow(2, 3, "2026-09-10", "09:00:00", "10:00:00", model.SlotReserved, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM slots WHERE coach_id = ? AND date = ? ORDER BY start_time")).
		WithArgs(uint64(3), "2026-09-10").
		WillReturnRows(rows)

	slots, err := repo.ListForCoachOnDate(context.Background(), 3, "2026-09-10")
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, model.SlotAvailable, slots[0].Status)
	assert.Equal(t, model.SlotReserved, slots[1].Status)
	assert.Equal(t, "08:00:00", slots[0].StartTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIDNotFound(t *testing.T) {
	repo, mock := newSlotRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM slots WHERE id = ?")).
		WithArgs(uint64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "coach_id", "date", "start_time", "end_time", "status", "created_at", "updated_at"}))

	_, err := repo.FindByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrSlotNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBlockAndFree(t *testing.T) {
	ctx := context.Background()
	toggleQ := regexp.QuoteMeta("UPDATE slots SET status = ?, updated_at = NOW() WHERE id = ? AND status <> ?")

	t.Run("block flips an available slot", func(t *testing.T) {
		repo, mock := newSlotRepo(t)
		mock.ExpectExec(toggleQ).
			WithArgs(model.SlotUnavailable, uint64(5), model.SlotReserved).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.Block(ctx, 5)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("block leaves a reserved slot untouched", func(t *testing.T) {
		repo, mock := newSlotRepo(t)
		mock.ExpectExec(toggleQ).
			WithArgs(model.SlotUnavailable, uint64(5), model.SlotReserved).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.Block(ctx, 5)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("free restores a blocked slot", func(t *testing.T) {
		repo, mock := newSlotRepo(t)
		mock.ExpectExec(toggleQ).
			WithArgs(model.SlotAvailable, uint64(5), model.SlotReserved).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.Free(ctx, 5)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
