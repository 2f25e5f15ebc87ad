package scheduling

import (
	"context"
	"fmt"

	"hms/internal/domain"
)

// AppointmentQuery gives the detector read access to existing appointments.
// Implementations may narrow results to those overlapping window, but may
// also return more; the detector applies the overlap test itself.
type AppointmentQuery interface {
	StaffAppointments(ctx context.Context, staffID int64, window domain.Interval) ([]domain.Appointment, error)
	RoomAppointments(ctx context.Context, roomID int64, window domain.Interval) ([]domain.Appointment, error)
}

// Detector finds staff and room double-bookings for a candidate appointment.
// Its answer is advisory: a concurrent writer can still insert a conflicting
// row before the caller persists, so storage must enforce exclusion too.
type Detector struct {
	query AppointmentQuery
}

func NewDetector(query AppointmentQuery) *Detector {
	return &Detector{query: query}
}

// Detect returns the first conflict class found, staff before room. When
// isUpdate is set, existing rows with the candidate's own ID are ignored.
// A query failure is returned wrapped in domain.ErrConflictCheckUnavailable
// and never reported as "no conflict".
func (d *Detector) Detect(ctx context.Context, a *domain.Appointment, isUpdate bool) (domain.ConflictReason, error) {
	window := a.Interval()

	staff, err := d.query.StaffAppointments(ctx, a.StaffID, window)
	if err != nil {
		return domain.ConflictNone, fmt.Errorf("%w: staff %d: %w", domain.ErrConflictCheckUnavailable, a.StaffID, err)
	}
	if overlapsAny(staff, a, window, isUpdate, func(e domain.Appointment) bool { return e.StaffID == a.StaffID }) {
		return domain.ConflictStaffDoubleBooked, nil
	}

	rooms, err := d.query.RoomAppointments(ctx, a.RoomID, window)
	if err != nil {
		return domain.ConflictNone, fmt.Errorf("%w: room %d: %w", domain.ErrConflictCheckUnavailable, a.RoomID, err)
	}
	if overlapsAny(rooms, a, window, isUpdate, func(e domain.Appointment) bool { return e.RoomID == a.RoomID }) {
		return domain.ConflictRoomDoubleBooked, nil
	}

	return domain.ConflictNone, nil
}

// Check is Detect folded into a single error: nil, *domain.ConflictError, or
// an error wrapping domain.ErrConflictCheckUnavailable.
func (d *Detector) Check(ctx context.Context, a *domain.Appointment, isUpdate bool) error {
	reason, err := d.Detect(ctx, a, isUpdate)
	if err != nil {
		return err
	}
	if reason != domain.ConflictNone {
		return &domain.ConflictError{Reason: reason}
	}
	return nil
}

func overlapsAny(existing []domain.Appointment, a *domain.Appointment, window domain.Interval, isUpdate bool, sameResource func(domain.Appointment) bool) bool {
	for _, e := range existing {
		if isUpdate && e.ID == a.ID {
			continue
		}
		if !sameResource(e) {
			continue
		}
		if window.Overlaps(e.Interval()) {
			return true
		}
	}
	return false
}

// AppointmentList is an in-memory AppointmentQuery over a full list of
// appointments.
type AppointmentList []domain.Appointment

func (l AppointmentList) StaffAppointments(_ context.Context, staffID int64, _ domain.Interval) ([]domain.Appointment, error) {
	var result []domain.Appointment
	for _, a := range l {
		if a.StaffID == staffID {
			result = append(result, a)
		}
	}
	return result, nil
}

func (l AppointmentList) RoomAppointments(_ context.Context, roomID int64, _ domain.Interval) ([]domain.Appointment, error) {
	var result []domain.Appointment
	for _, a := range l {
		if a.RoomID == roomID {
			result = append(result, a)
		}
	}
	return result, nil
}
