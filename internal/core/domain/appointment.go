package domain

import "time"

// AppointmentStatus represents the lifecycle state of an appointment.
type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "SCHEDULED"
	StatusPending   AppointmentStatus = "PENDING"
	StatusConfirmed AppointmentStatus = "CONFIRMED"
	StatusCompleted AppointmentStatus = "COMPLETED"
	StatusCancelled AppointmentStatus = "CANCELLED"
)

// validTransitions defines the allowed state machine transitions.
// SCHEDULED and PENDING are the same "awaiting decision" state.
var validTransitions = map[AppointmentStatus][]AppointmentStatus{
	StatusScheduled: {StatusConfirmed, StatusCancelled},
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

func ParseStatus(s string) (AppointmentStatus, bool) {
	switch st := AppointmentStatus(s); st {
	case StatusScheduled, StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return st, true
	}
	return "", false
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// AwaitingDecision reports whether the doctor has yet to approve or reject.
func (s AppointmentStatus) AwaitingDecision() bool {
	return s == StatusScheduled || s == StatusPending
}

func (s AppointmentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Appointment is the core aggregate root. PatientID and DoctorID are
// references resolved against the directories on every operation.
type Appointment struct {
	ID                 int64             `json:"id"`
	PatientID          int64             `json:"patientId"`
	DoctorID           int64             `json:"doctorId"`
	AppointmentDate    string            `json:"appointmentDate"`
	AppointmentTime    string            `json:"appointmentTime"`
	Reason             string            `json:"reason"`
	Status             AppointmentStatus `json:"status"`
	CancellationReason string            `json:"cancellationReason,omitempty"`
	CreatedAt          time.Time         `json:"createdAt"`
}

// SlotKey returns the doctor/date/time key this appointment occupies.
func (a *Appointment) SlotKey() string {
	return SlotKey(a.DoctorID, a.AppointmentDate, a.AppointmentTime)
}

// AppointmentFilter narrows an appointment listing. Zero values match everything.
type AppointmentFilter struct {
	Status    AppointmentStatus
	DoctorID  int64
	PatientID int64
	StartDate string
	EndDate   string
}
