package ports

import "github.com/carepoint/scheduling-api/internal/core/domain"

// Metrics receives the business counters the services emit.
type Metrics interface {
	BookingSucceeded()
	// BookingRejected takes one of "validation", "not_found", "slot_taken", "error".
	BookingRejected(reason string)
	StatusChanged(from, to domain.AppointmentStatus)
	LoginAttempt(success bool)
}
