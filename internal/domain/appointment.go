package domain

import (
	"strconv"
	"strings"
	"time"
)

type AppointmentType string

const (
	AppointmentTypeCheckUp      AppointmentType = "Check-up"
	AppointmentTypeConsultation AppointmentType = "Consultation"
	AppointmentTypeEmergency    AppointmentType = "Emergency"
	AppointmentTypeFollowUp     AppointmentType = "Follow-up"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled   AppointmentStatus = "Scheduled"
	AppointmentStatusCompleted   AppointmentStatus = "Completed"
	AppointmentStatusCanceled    AppointmentStatus = "Canceled"
	AppointmentStatusRescheduled AppointmentStatus = "Rescheduled"
)

// Enumerated sets and bounds shared by the validator, the schema and any
// renderer of allowed values.
var (
	AllowedTypes = []AppointmentType{
		AppointmentTypeCheckUp,
		AppointmentTypeConsultation,
		AppointmentTypeEmergency,
		AppointmentTypeFollowUp,
	}
	AllowedStatuses = []AppointmentStatus{
		AppointmentStatusScheduled,
		AppointmentStatusCompleted,
		AppointmentStatusCanceled,
		AppointmentStatusRescheduled,
	}
)

const (
	MinDuration   = 5
	MaxDuration   = 480
	MaxReasonLen  = 500
	MaxNotesLen   = 1000
	PastGrace     = time.Minute
	FutureHorizon = 365 * 24 * time.Hour
)

func (s AppointmentStatus) IsValid() bool {
	for _, allowed := range AllowedStatuses {
		if s == allowed {
			return true
		}
	}
	return false
}

type Appointment struct {
	ID              int64             `json:"id"`
	PatientID       int64             `json:"patient_id"`
	StaffID         int64             `json:"staff_id"`
	RoomID          int64             `json:"room_id"`
	AppointmentDate time.Time         `json:"appointment_date"`
	Duration        int               `json:"duration"`
	Type            AppointmentType   `json:"type"`
	Status          AppointmentStatus `json:"status"`
	Reason          string            `json:"reason,omitempty"`
	Notes           string            `json:"notes,omitempty"`
	CreatedDate     time.Time         `json:"created_date"`
	CreatedBy       int64             `json:"created_by"`
}

// Interval returns the half-open range [AppointmentDate, AppointmentDate+Duration).
func (a Appointment) Interval() Interval {
	return NewInterval(a.AppointmentDate, a.Duration)
}

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func NewInterval(start time.Time, minutes int) Interval {
	return Interval{
		Start: start,
		End:   start.Add(time.Duration(minutes) * time.Minute),
	}
}

// Overlaps reports whether i and other share any instant. Touching
// boundaries do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

type CreateAppointmentDTO struct {
	PatientID       int64     `json:"patient_id"`
	StaffID         int64     `json:"staff_id"`
	RoomID          int64     `json:"room_id"`
	AppointmentDate time.Time `json:"appointment_date"`
	Duration        Minutes   `json:"duration"`
	Type            string    `json:"type"`
	Status          string    `json:"status"`
	Reason          string    `json:"reason"`
	Notes           string    `json:"notes"`
	CreatedBy       int64     `json:"created_by,omitempty"`
}

// UpdateAppointmentDTO carries the full editable field set; CreatedDate and
// CreatedBy are never taken from an update.
type UpdateAppointmentDTO struct {
	PatientID       int64     `json:"patient_id"`
	StaffID         int64     `json:"staff_id"`
	RoomID          int64     `json:"room_id"`
	AppointmentDate time.Time `json:"appointment_date"`
	Duration        Minutes   `json:"duration"`
	Type            string    `json:"type"`
	Status          string    `json:"status"`
	Reason          string    `json:"reason"`
	Notes           string    `json:"notes"`
}

// Minutes is a duration in whole minutes as submitted by a form. Input that
// does not parse as an integer decodes to 0 so the validator reports it as
// out of range instead of the request failing to bind.
type Minutes int

func (m *Minutes) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(strings.Trim(string(data), `"`))

	v, err := strconv.Atoi(raw)
	if err != nil {
		v = 0
	}

	*m = Minutes(v)
	return nil
}

type AppointmentFilter struct {
	PatientID *int64             `json:"patient_id"`
	StaffID   *int64             `json:"staff_id"`
	RoomID    *int64             `json:"room_id"`
	Status    *AppointmentStatus `json:"status"`
	StartDate *time.Time         `json:"start_date"`
	EndDate   *time.Time         `json:"end_date"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
}

// AppointmentOptions describes the allowed values a client may offer.
type AppointmentOptions struct {
	Types       []AppointmentType   `json:"types"`
	Statuses    []AppointmentStatus `json:"statuses"`
	MinDuration int                 `json:"min_duration"`
	MaxDuration int                 `json:"max_duration"`
	MaxReason   int                 `json:"max_reason_length"`
	MaxNotes    int                 `json:"max_notes_length"`
}

// ValidateAppointmentDTO is a dry-run request. A positive AppointmentID
// validates the fields as an edit of that appointment.
type ValidateAppointmentDTO struct {
	AppointmentID int64 `json:"appointment_id,omitempty"`
	CreateAppointmentDTO
}
