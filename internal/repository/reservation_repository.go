package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/coach-booking-service/internal/model"
)

// ReservationRepo provides persistence for reservations and owns
// every reservation status transition.  The write paths (CreateTx,
// FindForCancelTx, MarkCancelledTx) run inside a caller-managed
// transaction and are invoked only by the booking layer, which couples
// them with the matching slot transition.  The List methods are
// read-only denormalized views joining slot times and counterpart
// names for display; they carry no business rules.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// CreateTx inserts a CONFIRMED, unpaid reservation within the scope of
// an existing transaction and returns the generated id.  The coach id
// is copied from the locked slot by the caller.  The paid flag is
// owned by an external collaborator and only ever defaults here.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, slotID, memberID, coachID uint64) (uint64, error) {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO reservations (slot_id, member_id, coach_id, status, paid) VALUES (?, ?, ?, ?, ?)`,
		slotID, memberID, coachID, model.ReservationConfirmed, false)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// FindByID loads a single reservation row.  It returns
// ErrReservationNotFound when no row exists.  Handlers use it for
// ownership checks before delegating to the booking layer.
func (r *ReservationRepo) FindByID(ctx context.Context, reservationID uint64) (model.Reservation, error) {
	var res model.Reservation
	err := r.db.QueryRowContext(ctx,
		`SELECT id, slot_id, member_id, coach_id, status, paid, created_at, updated_at FROM reservations WHERE id = ?`,
		reservationID,
	).Scan(&res.ID, &res.SlotID, &res.MemberID, &res.CoachID, &res.Status, &res.Paid, &res.CreatedAt, &res.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Reservation{}, ErrReservationNotFound
	}
	return res, err
}

// CancelRow is the lock-read projection used during cancellation: the
// reservation's current status plus the identity and start instant of
// its slot, fetched under FOR UPDATE so both rows stay put until the
// transaction ends.
type CancelRow struct {
	ReservationID uint64
	SlotID        uint64
	Status        string
	SlotStartsAt  time.Time
}

// FindForCancelTx loads the reservation and its slot's start instant
// with an exclusive row lock on both rows.  It returns
// ErrReservationNotFound when the reservation does not exist.
func (r *ReservationRepo) FindForCancelTx(ctx context.Context, tx *sql.Tx, reservationID uint64) (CancelRow, error) {
	var (
		row   CancelRow
		date  string
		start string
	)
	err := tx.QueryRowContext(ctx,
		`SELECT r.id, r.slot_id, r.status, DATE_FORMAT(s.date, '%Y-%m-%d'), s.start_time
		 FROM reservations r
		 JOIN slots s ON s.id = r.slot_id
		 WHERE r.id = ?
		 FOR UPDATE`,
		reservationID,
	).Scan(&row.ReservationID, &row.SlotID, &row.Status, &date, &start)
	if err == sql.ErrNoRows {
		return CancelRow{}, ErrReservationNotFound
	}
	if err != nil {
		return CancelRow{}, err
	}
	startsAt, err := time.Parse(model.DateLayout+" "+model.TimeLayout, date+" "+start)
	if err != nil {
		return CancelRow{}, err
	}
	row.SlotStartsAt = startsAt
	return row, nil
}

// MarkCancelledTx flips a reservation to CANCELLED within the
// transaction.  The status guard re-checks CONFIRMED under the lock so
// an already-cancelled reservation can never be cancelled twice.
func (r *ReservationRepo) MarkCancelledTx(ctx context.Context, tx *sql.Tx, reservationID uint64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE reservations SET status = ?, updated_at = NOW() WHERE id = ? AND status = ?`,
		model.ReservationCancelled, reservationID, model.ReservationConfirmed)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAlreadyCancelled
	}
	return nil
}

// MemberReservationView is a row of the member-facing listing: the
// reservation joined with its slot's times and the coach's name.
type MemberReservationView struct {
	ID        uint64 `json:"id"`
	SlotID    uint64 `json:"slot_id"`
	Status    string `json:"status"`
	Paid      bool   `json:"paid"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	CoachName string `json:"coach_name"`
}

// ListForMember returns all reservations made by the member, newest
// slot first, joined with slot times and the coach's display name.
func (r *ReservationRepo) ListForMember(ctx context.Context, memberID uint64) ([]MemberReservationView, error) {
	const q = `SELECT r.id, r.slot_id, r.status, r.paid,
	                  DATE_FORMAT(s.date, '%Y-%m-%d'), s.start_time, s.end_time,
	                  CONCAT(u.first_name, ' ', u.last_name)
	           FROM reservations r
	           JOIN slots s ON s.id = r.slot_id
	           JOIN users u ON u.id = r.coach_id
	           WHERE r.member_id = ?
	           ORDER BY s.date DESC, s.start_time DESC`
	rows, err := r.db.QueryContext(ctx, q, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	views := make([]MemberReservationView, 0)
	for rows.Next() {
		var v MemberReservationView
		if err := rows.Scan(&v.ID, &v.SlotID, &v.Status, &v.Paid, &v.Date, &v.StartTime, &v.EndTime, &v.CoachName); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return views, nil
}

// CoachReservationView is a row of the coach-facing listing: the
// reservation joined with its slot's times and the member's name.
type CoachReservationView struct {
	ID         uint64 `json:"id"`
	SlotID     uint64 `json:"slot_id"`
	MemberID   uint64 `json:"member_id"`
	Status     string `json:"status"`
	Paid       bool   `json:"paid"`
	Date       string `json:"date"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	MemberName string `json:"member_name"`
}

// ListForCoach returns all reservations taken against the coach's
// slots, every date, newest slot first.
func (r *ReservationRepo) ListForCoach(ctx context.Context, coachID uint64) ([]CoachReservationView, error) {
	const q = `SELECT r.id, r.slot_id, r.member_id, r.status, r.paid,
	                  DATE_FORMAT(s.date, '%Y-%m-%d'), s.start_time, s.end_time,
	                  CONCAT(u.first_name, ' ', u.last_name)
	           FROM reservations r
	           JOIN slots s ON s.id = r.slot_id
	           JOIN users u ON u.id = r.member_id
	           WHERE r.coach_id = ?
	           ORDER BY s.date DESC, s.start_time DESC`
	return r.scanCoachViews(ctx, q, coachID)
}

// ListForCoachOnDate returns the coach's reservations for one calendar
// day, ordered by start time, for the daily schedule view.
func (r *ReservationRepo) ListForCoachOnDate(ctx context.Context, coachID uint64, date string) ([]CoachReservationView, error) {
	const q = `SELECT r.id, r.slot_id, r.member_id, r.status, r.paid,
	                  DATE_FORMAT(s.date, '%Y-%m-%d'), s.start_time, s.end_time,
	                  CONCAT(u.first_name, ' ', u.last_name)
	           FROM reservations r
	           JOIN slots s ON s.id = r.slot_id
	           JOIN users u ON u.id = r.member_id
	           WHERE r.coach_id = ? AND s.date = ?
	           ORDER BY s.start_time`
	return r.scanCoachViews(ctx, q, coachID, date)
}

func (r *ReservationRepo) scanCoachViews(ctx context.Context, query string, args ...interface{}) ([]CoachReservationView, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	views := make([]CoachReservationView, 0)
	for rows.Next() {
		var v CoachReservationView
		if err := rows.Scan(&v.ID, &v.SlotID, &v.MemberID, &v.Status, &v.Paid, &v.Date, &v.StartTime, &v.EndTime, &v.MemberName); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return views, nil
}
