package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/iliyamo/coach-booking-service/internal/model"
)

// SlotRepo provides CRUD operations for slots and owns every slot
// status transition.  Grid generation relies on the unique index
// (coach_id, date, start_time): inserts are issued as INSERT IGNORE so
// concurrent generators for the same coach and date converge on the
// same set of rows without locking.  The Tx-suffixed methods run
// inside a caller-managed transaction and exist for the booking layer,
// which is the only place slot and reservation writes are coupled.
type SlotRepo struct {
	db *sql.DB
}

// NewSlotRepo returns a new SlotRepo bound to the given database.
func NewSlotRepo(db *sql.DB) *SlotRepo { return &SlotRepo{db: db} }

// DB exposes the underlying handle so callers can begin transactions.
func (r *SlotRepo) DB() *sql.DB { return r.db }

const slotColumns = `id, coach_id, DATE_FORMAT(date, '%Y-%m-%d'), start_time, end_time, status, created_at, updated_at`

func scanSlot(row interface{ Scan(...any) error }) (model.Slot, error) {
	var s model.Slot
	err := row.Scan(&s.ID, &s.CoachID, &s.Date, &s.StartTime, &s.EndTime, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// EnsureDailyGrid ensures a slot exists for every integer hour in
// [hourStart, hourEnd) on the given date for the given coach.  Missing
// slots are created AVAILABLE; existing rows are never altered, even
// when RESERVED or UNAVAILABLE.  The whole grid goes out as a single
// multi-row INSERT IGNORE, so repeated and concurrent calls for the
// same coach and date are idempotent: duplicates are rejected by the
// unique index and silently skipped rather than reported as errors.
func (r *SlotRepo) EnsureDailyGrid(ctx context.Context, coachID uint64, date string, hourStart, hourEnd int) error {
	if hourEnd <= hourStart {
		return fmt.Errorf("invalid hour range [%d, %d)", hourStart, hourEnd)
	}
	query := `INSERT IGNORE INTO slots (coach_id, date, start_time, end_time, status) VALUES `
	args := make([]interface{}, 0, (hourEnd-hourStart)*5)
	for h := hourStart; h < hourEnd; h++ {
		if h > hourStart {
			query += ","
		}
		query += "(?, ?, ?, ?, ?)"
		args = append(args,
			coachID, date,
			fmt.Sprintf("%02d:00:00", h),
			fmt.Sprintf("%02d:00:00", h+1),
			model.SlotAvailable,
		)
	}
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// EnsureMonthlyGrid invokes EnsureDailyGrid for every calendar day of
// the given month.  It carries the same idempotence guarantee.
func (r *SlotRepo) EnsureMonthlyGrid(ctx context.Context, coachID uint64, year int, month time.Month, hourStart, hourEnd int) error {
	day := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	for day.Month() == month {
		if err := r.EnsureDailyGrid(ctx, coachID, day.Format(model.DateLayout), hourStart, hourEnd); err != nil {
			return err
		}
		day = day.AddDate(0, 0, 1)
	}
	return nil
}

// ListForCoachOnDate returns all slots for the coach on the given
// date, regardless of status, ordered by start time.
func (r *SlotRepo) ListForCoachOnDate(ctx context.Context, coachID uint64, date string) ([]model.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE coach_id = ? AND date = ? ORDER BY start_time`
	rows, err := r.db.QueryContext(ctx, query, coachID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	slots := make([]model.Slot, 0)
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return slots, nil
}

// FindByID loads a single slot.  It returns ErrSlotNotFound when no
// row exists.
func (r *SlotRepo) FindByID(ctx context.Context, slotID uint64) (model.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE id = ?`
	s, err := scanSlot(r.db.QueryRowContext(ctx, query, slotID))
	if err == sql.ErrNoRows {
		return model.Slot{}, ErrSlotNotFound
	}
	return s, err
}

// Block transitions a slot from AVAILABLE (or UNAVAILABLE, a no-op) to
// UNAVAILABLE.  A RESERVED slot cannot be toggled: the guard is part
// of the UPDATE itself so there is no window between check and write.
// It returns false, with no error, when nothing changed.
func (r *SlotRepo) Block(ctx context.Context, slotID uint64) (bool, error) {
	return r.toggle(ctx, slotID, model.SlotUnavailable)
}

// Free transitions a slot from UNAVAILABLE back to AVAILABLE under the
// same not-reserved guard as Block.
func (r *SlotRepo) Free(ctx context.Context, slotID uint64) (bool, error) {
	return r.toggle(ctx, slotID, model.SlotAvailable)
}

func (r *SlotRepo) toggle(ctx context.Context, slotID uint64, status string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE slots SET status = ?, updated_at = NOW() WHERE id = ? AND status <> ?`,
		status, slotID, model.SlotReserved)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// FindForUpdateTx loads a slot inside the given transaction while
// taking an exclusive row lock.  Concurrent reservers of the same slot
// block here until the holder's transaction ends, which is the
// serialization point that makes double booking impossible.  It
// returns ErrSlotNotFound when no row exists.
func (r *SlotRepo) FindForUpdateTx(ctx context.Context, tx *sql.Tx, slotID uint64) (model.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE id = ? FOR UPDATE`
	s, err := scanSlot(tx.QueryRowContext(ctx, query, slotID))
	if err == sql.ErrNoRows {
		return model.Slot{}, ErrSlotNotFound
	}
	return s, err
}

// MarkReservedTx flips a slot to RESERVED within the transaction.  The
// status guard re-checks AVAILABLE under the lock; zero affected rows
// means the slot was lost to a concurrent writer and the caller must
// roll back.
func (r *SlotRepo) MarkReservedTx(ctx context.Context, tx *sql.Tx, slotID uint64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE slots SET status = ?, updated_at = NOW() WHERE id = ? AND status = ?`,
		model.SlotReserved, slotID, model.SlotAvailable)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSlotUnavailable
	}
	return nil
}

// MarkAvailableTx returns a slot to AVAILABLE within the transaction.
// Used by cancellation after the reservation row is marked CANCELLED.
func (r *SlotRepo) MarkAvailableTx(ctx context.Context, tx *sql.Tx, slotID uint64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE slots SET status = ?, updated_at = NOW() WHERE id = ?`,
		model.SlotAvailable, slotID)
	return err
}
