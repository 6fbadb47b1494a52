package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/carepoint/scheduling-api/internal/core/authz"
	"github.com/carepoint/scheduling-api/internal/core/domain"
	"github.com/carepoint/scheduling-api/internal/core/ports"
)

// DoctorService is the doctor directory, including weekly availability.
type DoctorService struct {
	accounts     accounts
	availability ports.AvailabilityRepository
	appointments ports.AppointmentRepository
	sanitizer    ports.TextSanitizer
	logger       zerolog.Logger
	now          func() time.Time
}

func NewDoctorService(
	doctors ports.DoctorRepository,
	availability ports.AvailabilityRepository,
	appointments ports.AppointmentRepository,
	patients ports.PatientRepository,
	users ports.UserRepository,
	sanitizer ports.TextSanitizer,
	logger zerolog.Logger,
) *DoctorService {
	return &DoctorService{
		accounts:     accounts{users: users, doctors: doctors, patients: patients},
		availability: availability,
		appointments: appointments,
		sanitizer:    sanitizer,
		logger:       logger,
		now:          time.Now,
	}
}

// WithEmailRegistry claims doctor emails in r.
func (s *DoctorService) WithEmailRegistry(r ports.EmailRegistry) *DoctorService {
	s.accounts.emails, s.accounts.log = r, s.logger
	return s
}

func (s *DoctorService) Create(ctx context.Context, caller domain.AuthContext, in ports.DoctorInput) (*domain.Doctor, error) {
	if err := authz.Authorize(authz.ManageDoctors, caller, authz.Resource{}); err != nil {
		return nil, err
	}
	d := &domain.Doctor{Role: domain.RoleDoctor, ProfileStatus: domain.ProfileActive}
	if err := s.applyProfile(d, in); err != nil {
		return nil, err
	}
	if d.Name == "" || d.Email == "" || d.Specialization == "" {
		return nil, domain.Validationf("Name, email and specialization are required")
	}
	if in.Password != "" {
		hash, err := hashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		d.PasswordHash = hash
	}
	now := s.now().UTC()
	d.CreatedAt, d.UpdatedAt = now, now

	if err := s.accounts.create(ctx, d.Email, func() error { return s.accounts.doctors.Create(ctx, d) }); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("doctor_id", d.ID).Str("by", caller.Email).Msg("doctor profile created")
	return d, nil
}

func (s *DoctorService) Update(ctx context.Context, caller domain.AuthContext, id int64, in ports.DoctorInput) (*domain.Doctor, error) {
	if err := authz.Authorize(authz.ManageDoctors, caller, authz.Resource{}); err != nil {
		return nil, err
	}
	d, err := s.accounts.doctors.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previousEmail := d.Email
	if err := s.applyProfile(d, in); err != nil {
		return nil, err
	}
	if in.Password != "" {
		hash, err := hashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		d.PasswordHash = hash
	}
	d.UpdatedAt = s.now().UTC()

	update := func() error { return s.accounts.doctors.Update(ctx, d) }
	if err := s.accounts.changeEmail(ctx, previousEmail, d.Email, domain.RoleDoctor, d.ID, update); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("doctor_id", d.ID).Str("by", caller.Email).Msg("doctor profile updated")
	return d, nil
}

// applyProfile copies the non-empty fields of in onto d.
func (s *DoctorService) applyProfile(d *domain.Doctor, in ports.DoctorInput) error {
	if v := s.sanitizer.Sanitize(in.Name); v != "" {
		d.Name = v
	}
	if v := normalizeEmail(in.Email); v != "" {
		d.Email = v
	}
	if v := strings.TrimSpace(in.PhoneNumber); v != "" {
		d.PhoneNumber = v
	}
	if v := s.sanitizer.Sanitize(in.Specialization); v != "" {
		d.Specialization = v
	}
	if v := s.sanitizer.Sanitize(in.Qualification); v != "" {
		d.Qualification = v
	}
	if in.ExperienceYears < 0 || in.ConsultationFee < 0 {
		return domain.Validationf("Experience and consultation fee cannot be negative")
	}
	if in.ExperienceYears > 0 {
		d.ExperienceYears = in.ExperienceYears
	}
	if in.ConsultationFee > 0 {
		d.ConsultationFee = in.ConsultationFee
	}
	if v := s.sanitizer.Sanitize(in.ClinicName); v != "" {
		d.ClinicName = v
	}
	if v := s.sanitizer.Sanitize(in.ClinicAddress); v != "" {
		d.ClinicAddress = v
	}
	if v := s.sanitizer.Sanitize(in.Bio); v != "" {
		d.Bio = v
	}
	if in.ProfileStatus != "" {
		st, ok := domain.ParseProfileStatus(in.ProfileStatus)
		if !ok {
			return domain.Validationf("Invalid profile status: %s", in.ProfileStatus)
		}
		d.ProfileStatus = st
	}
	return nil
}

// LinkUser attaches an existing user account to a doctor profile.
func (s *DoctorService) LinkUser(ctx context.Context, caller domain.AuthContext, doctorID, userID int64) (*domain.Doctor, error) {
	if err := authz.Authorize(authz.ManageDoctors, caller, authz.Resource{}); err != nil {
		return nil, err
	}
	d, err := s.accounts.doctors.FindByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.accounts.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	d.UserID = &userID
	d.UpdatedAt = s.now().UTC()
	if err := s.accounts.doctors.Update(ctx, d); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("doctor_id", d.ID).Int64("user_id", userID).Msg("doctor linked to user")
	return d, nil
}

func (s *DoctorService) ListProfiles(ctx context.Context, caller domain.AuthContext, filter domain.DoctorFilter) ([]*domain.Doctor, error) {
	if err := authz.Authorize(authz.ManageDoctors, caller, authz.Resource{}); err != nil {
		return nil, err
	}
	return s.accounts.doctors.List(ctx, filter)
}

func (s *DoctorService) List(ctx context.Context, caller domain.AuthContext) ([]*domain.Doctor, error) {
	if err := authz.Authorize(authz.BrowseDoctors, caller, authz.Resource{}); err != nil {
		return nil, err
	}
	return s.accounts.doctors.List(ctx, domain.DoctorFilter{})
}

func (s *DoctorService) Get(ctx context.Context, caller domain.AuthContext, id int64) (*domain.Doctor, error) {
	if err := authz.Authorize(authz.ViewDoctor, caller, authz.Resource{}); err != nil {
		return nil, err
	}
	return s.accounts.doctors.FindByID(ctx, id)
}

func (s *DoctorService) SearchBySpecialization(ctx context.Context, caller domain.AuthContext, term string) ([]*domain.Doctor, error) {
	if err := authz.Authorize(authz.BrowseDoctors, caller, authz.Resource{}); err != nil {
		return nil, err
	}
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, domain.Validationf("Specialization is required")
	}
	return s.accounts.doctors.List(ctx, domain.DoctorFilter{Specialization: term})
}

func (s *DoctorService) Specializations(ctx context.Context, caller domain.AuthContext) ([]string, error) {
	if err := authz.Authorize(authz.BrowseDoctors, caller, authz.Resource{}); err != nil {
		return nil, err
	}
	return s.accounts.doctors.Specializations(ctx)
}

func (s *DoctorService) ListByClinic(ctx context.Context, caller domain.AuthContext, clinicName string) ([]*domain.Doctor, error) {
	if err := authz.Authorize(authz.BrowseDoctors, caller, authz.Resource{}); err != nil {
		return nil, err
	}
	clinicName = strings.TrimSpace(clinicName)
	if clinicName == "" {
		return nil, domain.Validationf("Clinic name is required")
	}
	return s.accounts.doctors.List(ctx, domain.DoctorFilter{ClinicName: clinicName})
}

// MyProfile returns the doctor record of the calling doctor.
func (s *DoctorService) MyProfile(ctx context.Context, caller domain.AuthContext) (*domain.Doctor, error) {
	if !authz.RoleAllowed(authz.ManageOwnDoctor, caller.Role) {
		return nil, domain.Forbiddenf("Access denied")
	}
	d, err := s.accounts.doctors.FindByEmail(ctx, caller.Email)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.NotFoundf("Doctor not found with email: %s", caller.Email)
		}
		return nil, err
	}
	return d, nil
}

// UpdateMyProfile lets a doctor change contact and clinic details only.
func (s *DoctorService) UpdateMyProfile(ctx context.Context, caller domain.AuthContext, in ports.OwnProfileInput) (*domain.Doctor, error) {
	d, err := s.MyProfile(ctx, caller)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(authz.ManageOwnDoctor, caller, authz.Resource{DoctorEmail: d.Email}); err != nil {
		return nil, err
	}
	if v := strings.TrimSpace(in.PhoneNumber); v != "" {
		d.PhoneNumber = v
	}
	if v := s.sanitizer.Sanitize(in.ClinicName); v != "" {
		d.ClinicName = v
	}
	if v := s.sanitizer.Sanitize(in.ClinicAddress); v != "" {
		d.ClinicAddress = v
	}
	if v := s.sanitizer.Sanitize(in.Bio); v != "" {
		d.Bio = v
	}
	d.UpdatedAt = s.now().UTC()
	if err := s.accounts.doctors.Update(ctx, d); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("doctor_id", d.ID).Msg("doctor updated own profile")
	return d, nil
}

// Delete removes a doctor and its availability and returns a text
// confirmation. A doctor still referenced by any appointment is kept.
func (s *DoctorService) Delete(ctx context.Context, caller domain.AuthContext, id int64) (string, error) {
	if err := authz.Authorize(authz.ManageDoctors, caller, authz.Resource{}); err != nil {
		return "", err
	}
	d, err := s.accounts.doctors.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	n, err := s.appointments.CountByDoctor(ctx, id)
	if err != nil {
		return "", err
	}
	if n > 0 {
		return "", domain.Conflictf("Cannot delete doctor with existing appointments")
	}
	if err := s.accounts.doctors.Delete(ctx, id); err != nil {
		return "", err
	}
	s.accounts.release(ctx, d.Email)
	if err := s.availability.Replace(ctx, id, nil); err != nil {
		s.logger.Warn().Err(err).Int64("doctor_id", id).Msg("failed to clear availability of deleted doctor")
	}
	s.logger.Info().Int64("doctor_id", id).Str("by", caller.Email).Msg("doctor deleted")
	return "Doctor deleted successfully", nil
}

// SetAvailability replaces the doctor's weekly windows. Only the doctor
// themself or an administrator may do so.
func (s *DoctorService) SetAvailability(ctx context.Context, caller domain.AuthContext, doctorID int64, windows []ports.AvailabilityInput) ([]domain.DoctorAvailability, error) {
	d, err := s.accounts.doctors.FindByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(authz.SetAvailability, caller, authz.Resource{DoctorEmail: d.Email}); err != nil {
		return nil, err
	}

	out := make([]domain.DoctorAvailability, 0, len(windows))
	seen := make(map[string]struct{}, len(windows))
	for _, w := range windows {
		a := domain.DoctorAvailability{
			DoctorID:  d.ID,
			DayOfWeek: w.DayOfWeek,
			StartTime: w.StartTime,
			EndTime:   w.EndTime,
			Available: w.Available,
		}
		if err := a.Normalize(); err != nil {
			return nil, err
		}
		key := fmt.Sprintf("%s|%s|%s", a.DayOfWeek, a.StartTime, a.EndTime)
		if _, dup := seen[key]; dup {
			return nil, domain.Validationf("Duplicate availability window: %s %s-%s", a.DayOfWeek, a.StartTime, a.EndTime)
		}
		seen[key] = struct{}{}
		out = append(out, a)
	}

	if err := s.availability.Replace(ctx, d.ID, out); err != nil {
		return nil, fmt.Errorf("set availability: %w", err)
	}
	s.logger.Info().Int64("doctor_id", d.ID).Int("windows", len(out)).Str("by", caller.Email).Msg("availability replaced")
	return out, nil
}

func (s *DoctorService) Availability(ctx context.Context, caller domain.AuthContext, doctorID int64) ([]domain.DoctorAvailability, error) {
	if err := authz.Authorize(authz.ViewAvailability, caller, authz.Resource{}); err != nil {
		return nil, err
	}
	if _, err := s.accounts.doctors.FindByID(ctx, doctorID); err != nil {
		return nil, err
	}
	return s.availability.ListByDoctor(ctx, doctorID)
}
