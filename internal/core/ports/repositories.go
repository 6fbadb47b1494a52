package ports

import (
	"context"

	"github.com/carepoint/scheduling-api/internal/core/domain"
)

// Repositories report a missing record with an error wrapping
// domain.ErrNotFound and a uniqueness violation with domain.ErrConflict.

// UserRepository persists login accounts that are not patient or doctor records.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
}

// PatientRepository defines persistence operations for patients.
type PatientRepository interface {
	Create(ctx context.Context, p *domain.Patient) error
	FindByID(ctx context.Context, id int64) (*domain.Patient, error)
	FindByEmail(ctx context.Context, email string) (*domain.Patient, error)
	List(ctx context.Context) ([]*domain.Patient, error)
	Update(ctx context.Context, p *domain.Patient) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}

// DoctorRepository defines persistence operations for doctors.
type DoctorRepository interface {
	Create(ctx context.Context, d *domain.Doctor) error
	FindByID(ctx context.Context, id int64) (*domain.Doctor, error)
	FindByEmail(ctx context.Context, email string) (*domain.Doctor, error)
	// List returns doctors matching filter. Specialization and ClinicName
	// match case-insensitively as substrings.
	List(ctx context.Context, filter domain.DoctorFilter) ([]*domain.Doctor, error)
	Specializations(ctx context.Context) ([]string, error)
	Update(ctx context.Context, d *domain.Doctor) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}

// AvailabilityRepository stores the weekly windows of each doctor.
type AvailabilityRepository interface {
	// Replace swaps the doctor's windows for windows and assigns their ids.
	Replace(ctx context.Context, doctorID int64, windows []domain.DoctorAvailability) error
	ListByDoctor(ctx context.Context, doctorID int64) ([]domain.DoctorAvailability, error)
}

// AppointmentRepository defines persistence operations for appointments.
type AppointmentRepository interface {
	// Create inserts a, assigning its id. A second active appointment on the
	// same slot fails with domain.ErrConflict.
	Create(ctx context.Context, a *domain.Appointment) error
	FindByID(ctx context.Context, id int64) (*domain.Appointment, error)
	List(ctx context.Context, filter domain.AppointmentFilter) ([]*domain.Appointment, error)
	// ExistsActiveAtSlot reports whether a non-cancelled appointment occupies the slot.
	ExistsActiveAtSlot(ctx context.Context, doctorID int64, date, clock string) (bool, error)
	// CountByDoctor and CountByPatient count appointments in any status.
	CountByDoctor(ctx context.Context, doctorID int64) (int64, error)
	CountByPatient(ctx context.Context, patientID int64) (int64, error)
	// UpdateStatus moves the appointment from one status to another only if it
	// still has the from status; otherwise it fails with domain.ErrInvalidState.
	// Moving to CANCELLED releases the slot.
	UpdateStatus(ctx context.Context, id int64, from, to domain.AppointmentStatus, note string) error
	Delete(ctx context.Context, id int64) error
}

// AuditRepository persists the appointment audit trail.
type AuditRepository interface {
	Insert(ctx context.Context, event *domain.AppointmentEvent) error
	ListByAppointment(ctx context.Context, appointmentID int64) ([]domain.AppointmentEvent, error)
}

// EmailRegistry reserves login emails across the user, doctor and patient
// stores, which cannot share a unique index.
type EmailRegistry interface {
	// Claim fails with domain.ErrConflict while another live claim holds email.
	Claim(ctx context.Context, email string) error
	Release(ctx context.Context, email string) error
}
