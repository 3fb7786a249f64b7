// Package repository defines error types that are reused across
// multiple repositories and by the booking layer. These sentinel
// values allow handlers to distinguish between failure scenarios
// without inspecting driver errors: a slot lost to a concurrent
// reserver maps to a 409, a missing row to a 404, and a cancellation
// attempted inside the cooldown window to a policy message shown to
// the end user. Anything not covered by a sentinel is a storage
// fault and surfaces as a generic failure.
package repository

import "errors"

// ErrSlotNotFound is returned when the requested slot does not exist.
var ErrSlotNotFound = errors.New("slot not found")

// ErrSlotUnavailable is returned when a reserve attempt observes a
// slot that is not AVAILABLE — either already reserved (possibly by a
// concurrent request that won the row lock) or blocked by the coach.
var ErrSlotUnavailable = errors.New("slot unavailable")

// ErrReservationNotFound is returned when the requested reservation
// does not exist.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrAlreadyCancelled is returned when cancelling a reservation that
// is already CANCELLED. The slot is left untouched so a cancelled
// reservation can never free a slot twice.
var ErrAlreadyCancelled = errors.New("reservation already cancelled")

// ErrCancellationWindowExpired is returned when a member cancels a
// reservation whose slot starts inside the cooldown window. This is
// a policy violation, not a system fault; handlers surface the
// specific reason to the user.
var ErrCancellationWindowExpired = errors.New("cancellation window expired")

// ErrForbidden is returned when the caller attempts an operation on a
// resource owned by someone else. Handlers translate this into an
// HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrEmailExists is returned by user creation when the email address
// is already registered.
var ErrEmailExists = errors.New("email already exists")
