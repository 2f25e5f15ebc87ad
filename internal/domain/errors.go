package domain

import (
	"errors"
	"strings"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrConflictCheckUnavailable means the existing appointments could not be
	// queried. It is never equivalent to "no conflict".
	ErrConflictCheckUnavailable = errors.New("conflict check unavailable")
)

// ValidationError lists every field rule the candidate broke, in check order.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "invalid appointment: " + strings.Join(e.Violations, "; ")
}

type ConflictReason string

const (
	ConflictNone              ConflictReason = ""
	ConflictStaffDoubleBooked ConflictReason = "staff_double_booked"
	ConflictRoomDoubleBooked  ConflictReason = "room_double_booked"
)

// Message is the user-facing explanation naming the unavailable resource.
func (r ConflictReason) Message() string {
	switch r {
	case ConflictStaffDoubleBooked:
		return "The selected Staff has another appointment that overlaps with this time."
	case ConflictRoomDoubleBooked:
		return "The selected Room is already booked during this time."
	default:
		return ""
	}
}

// ConflictError reports a staff or room double-booking.
type ConflictError struct {
	Reason ConflictReason
}

func (e *ConflictError) Error() string {
	return "scheduling conflict: " + string(e.Reason)
}
