package model

import "time"

// Reservation statuses as stored in the reservations.status enum.  A
// reservation is created CONFIRMED and transitions exactly once to
// CANCELLED; it is never re-confirmed and never deleted.
const (
	ReservationConfirmed = "CONFIRMED"
	ReservationCancelled = "CANCELLED"
)

// Reservation records a member's claim on one slot.  The coach id is
// denormalized from the slot at creation time so coach-side listings
// and integrity checks do not depend on the slot row.
//
// Fields:
//  ID        – primary key identifier.
//  SlotID    – slot being reserved.
//  MemberID  – member who made the reservation.
//  CoachID   – coach owning the slot (copied at creation).
//  Status    – CONFIRMED or CANCELLED.
//  Paid      – set by an external payment collaborator, never here.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Reservation struct {
	ID        uint64    `json:"id"`         // reservations.id
	SlotID    uint64    `json:"slot_id"`    // reservations.slot_id
	MemberID  uint64    `json:"member_id"`  // reservations.member_id
	CoachID   uint64    `json:"coach_id"`   // reservations.coach_id
	Status    string    `json:"status"`     // reservations.status
	Paid      bool      `json:"paid"`       // reservations.paid
	CreatedAt time.Time `json:"created_at"` // reservations.created_at
	UpdatedAt time.Time `json:"updated_at"` // reservations.updated_at
}
