package domain

import "time"

type AppointmentEventType string

const (
	AppointmentCreated AppointmentEventType = "appointment.created"
	AppointmentUpdated AppointmentEventType = "appointment.updated"
	AppointmentDeleted AppointmentEventType = "appointment.deleted"
)

// AppointmentEvent is pushed to schedule-board subscribers after a write.
type AppointmentEvent struct {
	ID            string               `json:"id"`
	Type          AppointmentEventType `json:"type"`
	AppointmentID int64                `json:"appointment_id"`
	StaffID       int64                `json:"staff_id,omitempty"`
	RoomID        int64                `json:"room_id,omitempty"`
	Start         *time.Time           `json:"start,omitempty"`
	End           *time.Time           `json:"end,omitempty"`
	Timestamp     time.Time            `json:"timestamp"`
}
