// Package queue defines message payloads exchanged over the message broker.
package queue

// Actions carried in a ReservationEvent.
const (
	ActionConfirmed = "CONFIRMED"
	ActionCancelled = "CANCELLED"
)

// ReservationEvent is published after a reservation is confirmed or
// cancelled and committed.  It carries enough information for a
// downstream consumer (the notification sender of the surrounding
// application, audit logging) to act without querying the primary
// database.  Delivery of user-facing notifications is the consumer's
// concern, never this service's.
type ReservationEvent struct {
	Action        string `json:"action"`
	ReservationID uint64 `json:"reservation_id"`
	SlotID        uint64 `json:"slot_id"`
	MemberID      uint64 `json:"member_id"`
	CoachID       uint64 `json:"coach_id"`
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	ActorRole     string `json:"actor_role"`
	OccurredAt    string `json:"occurred_at"`
}
