package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/carepoint/scheduling-api/internal/core/authz"
	"github.com/carepoint/scheduling-api/internal/core/domain"
	"github.com/carepoint/scheduling-api/internal/core/ports"
)

// PatientService is the patient directory.
type PatientService struct {
	accounts     accounts
	appointments ports.AppointmentRepository
	sanitizer    ports.TextSanitizer
	logger       zerolog.Logger
	now          func() time.Time
}

func NewPatientService(
	patients ports.PatientRepository,
	appointments ports.AppointmentRepository,
	doctors ports.DoctorRepository,
	users ports.UserRepository,
	sanitizer ports.TextSanitizer,
	logger zerolog.Logger,
) *PatientService {
	return &PatientService{
		accounts:     accounts{users: users, doctors: doctors, patients: patients},
		appointments: appointments,
		sanitizer:    sanitizer,
		logger:       logger,
		now:          time.Now,
	}
}

// WithEmailRegistry claims patient emails in r.
func (s *PatientService) WithEmailRegistry(r ports.EmailRegistry) *PatientService {
	s.accounts.emails, s.accounts.log = r, s.logger
	return s
}

func (s *PatientService) Create(ctx context.Context, caller domain.AuthContext, in ports.CreatePatientInput) (*domain.Patient, error) {
	if err := authz.Authorize(authz.CreatePatient, caller, authz.Resource{}); err != nil {
		return nil, err
	}
	name := s.sanitizer.Sanitize(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, domain.Validationf("Name, email and password are required")
	}
	dob, err := optionalDate(in.DateOfBirth)
	if err != nil {
		return nil, err
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	p := &domain.Patient{
		Name:         name,
		Email:        email,
		PhoneNumber:  strings.TrimSpace(in.PhoneNumber),
		DateOfBirth:  dob,
		PasswordHash: hash,
		Role:         domain.RolePatient,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.accounts.create(ctx, email, func() error { return s.accounts.patients.Create(ctx, p) }); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("patient_id", p.ID).Str("by", caller.Email).Msg("patient created")
	return p, nil
}

func (s *PatientService) List(ctx context.Context, caller domain.AuthContext) ([]*domain.Patient, error) {
	if err := authz.Authorize(authz.ListPatients, caller, authz.Resource{}); err != nil {
		return nil, err
	}
	return s.accounts.patients.List(ctx)
}

func (s *PatientService) Get(ctx context.Context, caller domain.AuthContext, id int64) (*domain.Patient, error) {
	p, err := s.accounts.patients.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(authz.ViewPatient, caller, authz.Resource{PatientEmail: p.Email}); err != nil {
		return nil, err
	}
	return p, nil
}

// Me returns the patient record of the calling patient.
func (s *PatientService) Me(ctx context.Context, caller domain.AuthContext) (*domain.Patient, error) {
	if !authz.RoleAllowed(authz.ViewOwnPatient, caller.Role) {
		return nil, domain.Forbiddenf("Access denied")
	}
	p, err := s.accounts.patients.FindByEmail(ctx, caller.Email)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.NotFoundf("Patient not found with email: %s", caller.Email)
		}
		return nil, err
	}
	return p, nil
}

func (s *PatientService) Update(ctx context.Context, caller domain.AuthContext, id int64, in ports.UpdatePatientInput) (*domain.Patient, error) {
	p, err := s.accounts.patients.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(authz.UpdatePatient, caller, authz.Resource{PatientEmail: p.Email}); err != nil {
		return nil, err
	}

	if name := s.sanitizer.Sanitize(in.Name); name != "" {
		p.Name = name
	}
	previousEmail := p.Email
	if email := normalizeEmail(in.Email); email != "" {
		p.Email = email
	}
	if phone := strings.TrimSpace(in.PhoneNumber); phone != "" {
		p.PhoneNumber = phone
	}
	if in.DateOfBirth != "" {
		dob, err := optionalDate(in.DateOfBirth)
		if err != nil {
			return nil, err
		}
		p.DateOfBirth = dob
	}
	p.UpdatedAt = s.now().UTC()

	update := func() error { return s.accounts.patients.Update(ctx, p) }
	if err := s.accounts.changeEmail(ctx, previousEmail, p.Email, domain.RolePatient, p.ID, update); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("patient_id", p.ID).Str("by", caller.Email).Msg("patient updated")
	return p, nil
}

// Delete removes a patient that no appointment refers to.
func (s *PatientService) Delete(ctx context.Context, caller domain.AuthContext, id int64) error {
	if err := authz.Authorize(authz.DeletePatient, caller, authz.Resource{}); err != nil {
		return err
	}
	p, err := s.accounts.patients.FindByID(ctx, id)
	if err != nil {
		return err
	}
	n, err := s.appointments.CountByPatient(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return domain.Conflictf("Cannot delete patient with existing appointments")
	}
	if err := s.accounts.patients.Delete(ctx, id); err != nil {
		return err
	}
	s.accounts.release(ctx, p.Email)
	s.logger.Info().Int64("patient_id", id).Str("by", caller.Email).Msg("patient deleted")
	return nil
}

// optionalDate canonicalises a YYYY-MM-DD value; empty stays empty.
func optionalDate(s string) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	d, err := domain.ParseDate(s, time.UTC)
	if err != nil {
		return "", err
	}
	return d.Format(domain.DateLayout), nil
}
