package scheduling

import (
	"fmt"
	"time"

	"hms/internal/domain"
	"hms/pkg/validator"
)

const (
	msgSelectPatient  = "Select a Patient."
	msgSelectStaff    = "Select a Staff."
	msgSelectRoom     = "Select a Room."
	msgSelectDate     = "Select an Appointment Date/Time."
	msgDateInPast     = "Appointment time must be in the future."
	msgDateTooFar     = "Appointment time cannot be more than 365 days from today."
	msgInvalidType    = "Select a valid Type."
	msgInvalidStatus  = "Select a valid Status."
	msgInvalidCreator = "CreatedBy must be a positive integer."
)

var (
	msgDuration      = fmt.Sprintf("Duration must be between %d and %d minutes.", domain.MinDuration, domain.MaxDuration)
	msgReasonTooLong = fmt.Sprintf("Reason is too long (max %d).", domain.MaxReasonLen)
	msgNotesTooLong  = fmt.Sprintf("Notes are too long (max %d).", domain.MaxNotesLen)
)

// ValidateFields checks each field of a candidate on its own and returns every
// violation found, in a stable order. An empty result means the candidate is
// well-formed. now is the reference for the past-grace and horizon checks.
func ValidateFields(a *domain.Appointment, now time.Time) []string {
	if a == nil {
		panic("scheduling: ValidateFields called with nil appointment")
	}

	var violations []string

	if a.PatientID <= 0 {
		violations = append(violations, msgSelectPatient)
	}
	if a.StaffID <= 0 {
		violations = append(violations, msgSelectStaff)
	}
	if a.RoomID <= 0 {
		violations = append(violations, msgSelectRoom)
	}

	if a.AppointmentDate.IsZero() {
		violations = append(violations, msgSelectDate)
	} else {
		if a.AppointmentDate.Before(now.Add(-domain.PastGrace)) {
			violations = append(violations, msgDateInPast)
		}
		if a.AppointmentDate.After(now.Add(domain.FutureHorizon)) {
			violations = append(violations, msgDateTooFar)
		}
	}

	if a.Duration < domain.MinDuration || a.Duration > domain.MaxDuration {
		violations = append(violations, msgDuration)
	}

	if !validator.OneOf(a.Type, domain.AllowedTypes) {
		violations = append(violations, msgInvalidType)
	}
	if !validator.OneOf(a.Status, domain.AllowedStatuses) {
		violations = append(violations, msgInvalidStatus)
	}

	if !validator.WithinLength(a.Reason, domain.MaxReasonLen) {
		violations = append(violations, msgReasonTooLong)
	}
	if !validator.WithinLength(a.Notes, domain.MaxNotesLen) {
		violations = append(violations, msgNotesTooLong)
	}

	if a.CreatedBy <= 0 {
		violations = append(violations, msgInvalidCreator)
	}

	return violations
}

// Validate wraps ValidateFields into a *domain.ValidationError, or nil.
func Validate(a *domain.Appointment, now time.Time) error {
	if violations := ValidateFields(a, now); len(violations) > 0 {
		return &domain.ValidationError{Violations: violations}
	}
	return nil
}
