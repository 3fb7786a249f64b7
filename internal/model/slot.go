package model

import "time"

// Slot statuses as stored in the slots.status enum.  A slot moves to
// RESERVED only as a side effect of a successful reservation and back
// to AVAILABLE only when that reservation is cancelled.  UNAVAILABLE
// is a manual coach toggle and never overlaps with RESERVED.
const (
	SlotAvailable   = "AVAILABLE"
	SlotReserved    = "RESERVED"
	SlotUnavailable = "UNAVAILABLE"
)

// DateLayout and TimeLayout are the wire formats used for slot dates
// and times-of-day throughout the API and the database layer.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// Slot describes one bookable hour owned by a coach on a given date.
// The tuple (CoachID, Date, StartTime) is unique: grid generation may
// run repeatedly and concurrently without ever producing duplicates.
//
// Fields:
//  ID        – primary key identifier.
//  CoachID   – coach who owns the slot.
//  Date      – calendar day, "YYYY-MM-DD".
//  StartTime – start time-of-day, "HH:MM:SS".
//  EndTime   – end time-of-day, "HH:MM:SS".
//  Status    – AVAILABLE, RESERVED or UNAVAILABLE.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Slot struct {
	ID        uint64    `json:"id"`         // slots.id
	CoachID   uint64    `json:"coach_id"`   // slots.coach_id
	Date      string    `json:"date"`       // slots.date (DATE)
	StartTime string    `json:"start_time"` // slots.start_time (TIME)
	EndTime   string    `json:"end_time"`   // slots.end_time (TIME)
	Status    string    `json:"status"`     // slots.status
	CreatedAt time.Time `json:"created_at"` // slots.created_at
	UpdatedAt time.Time `json:"updated_at"` // slots.updated_at
}

// StartsAt combines the slot's date and start time into a single UTC
// instant.  The cancellation cooldown rule is evaluated against this
// value.
func (s Slot) StartsAt() (time.Time, error) {
	return time.Parse(DateLayout+" "+TimeLayout, s.Date+" "+s.StartTime)
}
