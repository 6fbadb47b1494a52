package domain

import "time"

// AuditAction names what happened to an appointment.
type AuditAction string

const (
	ActionBooked       AuditAction = "BOOKED"
	ActionConfirmed    AuditAction = "CONFIRMED"
	ActionApproved     AuditAction = "APPROVED"
	ActionRejected     AuditAction = "REJECTED"
	ActionCompleted    AuditAction = "COMPLETED"
	ActionCancelled    AuditAction = "CANCELLED"
	ActionStatusUpdate AuditAction = "STATUS_UPDATED"
	ActionDeleted      AuditAction = "DELETED"
)

// AppointmentEvent is one entry in an appointment's audit trail.
type AppointmentEvent struct {
	AppointmentID int64             `json:"appointmentId"`
	Action        AuditAction       `json:"action"`
	FromStatus    AppointmentStatus `json:"fromStatus,omitempty"`
	ToStatus      AppointmentStatus `json:"toStatus,omitempty"`
	ActorEmail    string            `json:"actorEmail"`
	ActorRole     Role              `json:"actorRole"`
	Note          string            `json:"note,omitempty"`
	At            time.Time         `json:"at"`
}
