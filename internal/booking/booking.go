// Package booking implements the reservation state machine.  It is
// the only place where slot and reservation mutations are coupled:
// every Reserve and Cancel runs in a single transaction holding an
// exclusive row lock on the contested slot (or reservation plus slot),
// so concurrent attempts on the same slot are totally ordered by lock
// acquisition and exactly one of them can win.  On any failure the
// transaction rolls back fully; a reservation without a reserved slot,
// or the reverse, is never observable outside the transaction.
package booking

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/coach-booking-service/internal/model"
	"github.com/iliyamo/coach-booking-service/internal/repository"
)

// Service coordinates the slot and reservation repositories.  The
// cooldown is the minimum lead time a member must respect to cancel;
// coaches bypass it entirely.  The clock is injectable for tests and
// defaults to time.Now.
type Service struct {
	db           *sql.DB
	slots        *repository.SlotRepo
	reservations *repository.ReservationRepo
	cooldown     time.Duration
	now          func() time.Time
}

// NewService constructs a booking Service.  All dependencies must be
// non-nil; cooldown comes from configuration (CANCEL_COOLDOWN_HOURS).
func NewService(db *sql.DB, slots *repository.SlotRepo, reservations *repository.ReservationRepo, cooldown time.Duration) *Service {
	if db == nil || slots == nil || reservations == nil {
		panic("nil dependency passed to booking.NewService")
	}
	return &Service{
		db:           db,
		slots:        slots,
		reservations: reservations,
		cooldown:     cooldown,
		now:          time.Now,
	}
}

// Reserve books the slot for the member and returns the new
// reservation id.  The slot row is locked for the whole transaction:
// a concurrent reserver of the same slot blocks on the lock and, once
// it acquires it, observes the committed RESERVED status and fails
// with ErrSlotUnavailable.  ErrSlotNotFound is returned when the slot
// does not exist; any storage fault is returned wrapped and the
// transaction is rolled back in every non-commit path.
func (s *Service) Reserve(ctx context.Context, slotID, memberID uint64) (uint64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	slot, err := s.slots.FindForUpdateTx(ctx, tx, slotID)
	if err != nil {
		return 0, err
	}
	if slot.Status != model.SlotAvailable {
		return 0, repository.ErrSlotUnavailable
	}
	reservationID, err := s.reservations.CreateTx(ctx, tx, slot.ID, memberID, slot.CoachID)
	if err != nil {
		return 0, err
	}
	if err := s.slots.MarkReservedTx(ctx, tx, slot.ID); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return reservationID, nil
}

// Cancel cancels a reservation on behalf of the given actor role and
// frees its slot.  Members are bound by the cooldown window: the
// cancellation is refused with ErrCancellationWindowExpired when the
// slot starts in strictly less than the cooldown from now, so a
// cancellation exactly at the boundary is still allowed.  Coaches
// bypass the window.  Cancelling an already-cancelled reservation
// returns ErrAlreadyCancelled and leaves the slot untouched, so the
// slot can never be freed twice.
func (s *Service) Cancel(ctx context.Context, reservationID uint64, actorRole string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	row, err := s.reservations.FindForCancelTx(ctx, tx, reservationID)
	if err != nil {
		return err
	}
	if row.Status != model.ReservationConfirmed {
		return repository.ErrAlreadyCancelled
	}
	if actorRole == model.RoleMember {
		if row.SlotStartsAt.Sub(s.now().UTC()) < s.cooldown {
			return repository.ErrCancellationWindowExpired
		}
	}
	if err := s.reservations.MarkCancelledTx(ctx, tx, reservationID); err != nil {
		return err
	}
	if err := s.slots.MarkAvailableTx(ctx, tx, row.SlotID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
