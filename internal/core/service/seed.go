package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/carepoint/scheduling-api/internal/core/domain"
	"github.com/carepoint/scheduling-api/internal/core/ports"
)

// Seeder bootstraps the administrator account and the demo directory.
type Seeder struct {
	accounts accounts
	logger   zerolog.Logger
	now      func() time.Time
}

func NewSeeder(users ports.UserRepository, doctors ports.DoctorRepository, patients ports.PatientRepository, logger zerolog.Logger) *Seeder {
	return &Seeder{
		accounts: accounts{users: users, doctors: doctors, patients: patients},
		logger:   logger,
		now:      time.Now,
	}
}

// WithEmailRegistry claims seeded emails in r.
func (s *Seeder) WithEmailRegistry(r ports.EmailRegistry) *Seeder {
	s.accounts.emails, s.accounts.log = r, s.logger
	return s
}

// EnsureAdmin creates the administrator account when email is not yet used.
// Empty credentials skip the step.
func (s *Seeder) EnsureAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		s.logger.Warn().Msg("admin credentials not configured, skipping admin bootstrap")
		return nil
	}
	acc, err := s.accounts.lookup(ctx, email)
	if err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	if acc != nil {
		return nil
	}
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	now := s.now().UTC()
	u := &domain.User{
		Name:         "Administrator",
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.accounts.create(ctx, email, func() error { return s.accounts.users.Create(ctx, u) }); err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	s.logger.Info().Str("email", email).Msg("admin account created")
	return nil
}

type seedPatient struct {
	name, email, phone, dob, password string
}

type seedDoctor struct {
	name, email, phone, specialization, password string
}

var (
	demoPatients = []seedPatient{
		{"John Doe", "john@example.com", "9876543210", "1990-05-20", "password123"},
		{"Alice Johnson", "alice@example.com", "9123456780", "1985-03-15", "password456"},
	}
	demoDoctors = []seedDoctor{
		{"Dr. Smith", "smith@example.com", "1234567890", "Cardiology", "doctor123"},
		{"Dr. Emily", "dremily@example.com", "0987654321", "Neurology", "doctor456"},
	}
)

// SeedDirectory inserts the demo patients and doctors into empty collections.
func (s *Seeder) SeedDirectory(ctx context.Context) error {
	now := s.now().UTC()

	n, err := s.accounts.patients.Count(ctx)
	if err != nil {
		return fmt.Errorf("seed patients: %w", err)
	}
	if n == 0 {
		for _, sp := range demoPatients {
			hash, err := hashPassword(sp.password)
			if err != nil {
				return err
			}
			p := &domain.Patient{
				Name: sp.name, Email: sp.email, PhoneNumber: sp.phone, DateOfBirth: sp.dob,
				PasswordHash: hash, Role: domain.RolePatient, CreatedAt: now, UpdatedAt: now,
			}
			if err := s.accounts.create(ctx, p.Email, func() error { return s.accounts.patients.Create(ctx, p) }); err != nil {
				return fmt.Errorf("seed patient %s: %w", sp.email, err)
			}
		}
		s.logger.Info().Int("count", len(demoPatients)).Msg("demo patients seeded")
	}

	n, err = s.accounts.doctors.Count(ctx)
	if err != nil {
		return fmt.Errorf("seed doctors: %w", err)
	}
	if n == 0 {
		for _, sd := range demoDoctors {
			hash, err := hashPassword(sd.password)
			if err != nil {
				return err
			}
			d := &domain.Doctor{
				Name: sd.name, Email: sd.email, PhoneNumber: sd.phone, Specialization: sd.specialization,
				ProfileStatus: domain.ProfileActive, PasswordHash: hash, Role: domain.RoleDoctor,
				CreatedAt: now, UpdatedAt: now,
			}
			if err := s.accounts.create(ctx, d.Email, func() error { return s.accounts.doctors.Create(ctx, d) }); err != nil {
				return fmt.Errorf("seed doctor %s: %w", sd.email, err)
			}
		}
		s.logger.Info().Int("count", len(demoDoctors)).Msg("demo doctors seeded")
	}
	return nil
}
