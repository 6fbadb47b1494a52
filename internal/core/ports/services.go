package ports

import (
	"context"
	"time"

	"github.com/carepoint/scheduling-api/internal/core/domain"
)

// RegisterInput is the self-registration payload.
type RegisterInput struct {
	Name           string
	Email          string
	Password       string
	Role           string
	PhoneNumber    string
	DateOfBirth    string
	Specialization string
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string
	Email     string
	Role      domain.Role
	ExpiresAt time.Time
}

// AuthService handles registration, login and token lifecycle.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (string, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, token string) error
	Verify(ctx context.Context, token string) (domain.AuthContext, error)
}

// CreatePatientInput carries the fields of a new patient.
type CreatePatientInput struct {
	Name        string
	Email       string
	Password    string
	PhoneNumber string
	DateOfBirth string
}

// UpdatePatientInput carries patient changes. Empty fields are left unchanged.
type UpdatePatientInput struct {
	Name        string
	Email       string
	PhoneNumber string
	DateOfBirth string
}

// PatientService is the patient directory.
type PatientService interface {
	Create(ctx context.Context, caller domain.AuthContext, in CreatePatientInput) (*domain.Patient, error)
	List(ctx context.Context, caller domain.AuthContext) ([]*domain.Patient, error)
	Get(ctx context.Context, caller domain.AuthContext, id int64) (*domain.Patient, error)
	Me(ctx context.Context, caller domain.AuthContext) (*domain.Patient, error)
	Update(ctx context.Context, caller domain.AuthContext, id int64, in UpdatePatientInput) (*domain.Patient, error)
	Delete(ctx context.Context, caller domain.AuthContext, id int64) error
}

// DoctorInput carries a full doctor profile as managed by an administrator.
type DoctorInput struct {
	Name            string
	Email           string
	Password        string
	PhoneNumber     string
	Specialization  string
	Qualification   string
	ExperienceYears int
	ClinicName      string
	ClinicAddress   string
	ConsultationFee float64
	Bio             string
	ProfileStatus   string
}

// OwnProfileInput is the subset of profile fields a doctor may change.
// Empty fields are left unchanged.
type OwnProfileInput struct {
	PhoneNumber   string
	ClinicName    string
	ClinicAddress string
	Bio           string
}

// AvailabilityInput is one requested weekly window.
type AvailabilityInput struct {
	DayOfWeek string
	StartTime string
	EndTime   string
	Available bool
}

// DoctorService is the doctor directory, including availability.
type DoctorService interface {
	Create(ctx context.Context, caller domain.AuthContext, in DoctorInput) (*domain.Doctor, error)
	Update(ctx context.Context, caller domain.AuthContext, id int64, in DoctorInput) (*domain.Doctor, error)
	LinkUser(ctx context.Context, caller domain.AuthContext, doctorID, userID int64) (*domain.Doctor, error)
	ListProfiles(ctx context.Context, caller domain.AuthContext, filter domain.DoctorFilter) ([]*domain.Doctor, error)
	List(ctx context.Context, caller domain.AuthContext) ([]*domain.Doctor, error)
	Get(ctx context.Context, caller domain.AuthContext, id int64) (*domain.Doctor, error)
	SearchBySpecialization(ctx context.Context, caller domain.AuthContext, term string) ([]*domain.Doctor, error)
	Specializations(ctx context.Context, caller domain.AuthContext) ([]string, error)
	ListByClinic(ctx context.Context, caller domain.AuthContext, clinicName string) ([]*domain.Doctor, error)
	MyProfile(ctx context.Context, caller domain.AuthContext) (*domain.Doctor, error)
	UpdateMyProfile(ctx context.Context, caller domain.AuthContext, in OwnProfileInput) (*domain.Doctor, error)
	Delete(ctx context.Context, caller domain.AuthContext, id int64) (string, error)
	SetAvailability(ctx context.Context, caller domain.AuthContext, doctorID int64, windows []AvailabilityInput) ([]domain.DoctorAvailability, error)
	Availability(ctx context.Context, caller domain.AuthContext, doctorID int64) ([]domain.DoctorAvailability, error)
}

// BookAppointmentInput is a booking request. PatientID is zero when omitted.
type BookAppointmentInput struct {
	PatientID int64
	DoctorID  int64
	Date      string
	Time      string
	Reason    string
}

// AppointmentService is the appointment workflow engine.
type AppointmentService interface {
	// Book creates a SCHEDULED appointment for an already resolved patient.
	Book(ctx context.Context, actor domain.AuthContext, in BookAppointmentInput) (*domain.Appointment, error)
	// BookFor resolves the booking subject from caller and then books.
	BookFor(ctx context.Context, caller domain.AuthContext, in BookAppointmentInput) (*domain.Appointment, error)

	List(ctx context.Context, caller domain.AuthContext, filter domain.AppointmentFilter) ([]*domain.Appointment, error)
	GetByID(ctx context.Context, caller domain.AuthContext, id int64) (*domain.Appointment, error)
	GetByPatientID(ctx context.Context, caller domain.AuthContext, patientID int64) ([]*domain.Appointment, error)
	GetByDoctorID(ctx context.Context, caller domain.AuthContext, doctorID int64) ([]*domain.Appointment, error)
	GetByDateRange(ctx context.Context, caller domain.AuthContext, start, end string) ([]*domain.Appointment, error)
	GetMine(ctx context.Context, caller domain.AuthContext) ([]*domain.Appointment, error)
	ListForDoctor(ctx context.Context, caller domain.AuthContext, doctorID int64) ([]*domain.Appointment, error)

	Approve(ctx context.Context, caller domain.AuthContext, doctorID, id int64) (string, error)
	Reject(ctx context.Context, caller domain.AuthContext, doctorID, id int64, reason string) (string, error)
	Confirm(ctx context.Context, caller domain.AuthContext, id int64) (string, error)
	Complete(ctx context.Context, caller domain.AuthContext, id int64) (string, error)
	Cancel(ctx context.Context, caller domain.AuthContext, id int64, reason string) (string, error)
	UpdateStatus(ctx context.Context, caller domain.AuthContext, id int64, status string) (*domain.Appointment, error)
	Delete(ctx context.Context, caller domain.AuthContext, id int64) error
	History(ctx context.Context, caller domain.AuthContext, id int64) ([]domain.AppointmentEvent, error)
}

// AuditService persists audit events delivered by the dispatcher.
type AuditService interface {
	Record(ctx context.Context, event domain.AppointmentEvent) error
}
