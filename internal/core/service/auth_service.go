package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/carepoint/scheduling-api/internal/core/domain"
	"github.com/carepoint/scheduling-api/internal/core/ports"
)

// AuthService implements registration, login, logout and token verification.
type AuthService struct {
	accounts  accounts
	tokens    *TokenService
	denylist  ports.TokenDenylist
	sanitizer ports.TextSanitizer
	metrics   ports.Metrics
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAuthService wires the auth use cases. denylist may be nil, in which case
// logout is a no-op and tokens stay valid until they expire.
func NewAuthService(
	users ports.UserRepository,
	doctors ports.DoctorRepository,
	patients ports.PatientRepository,
	tokens *TokenService,
	denylist ports.TokenDenylist,
	sanitizer ports.TextSanitizer,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		accounts:  accounts{users: users, doctors: doctors, patients: patients},
		tokens:    tokens,
		denylist:  denylist,
		sanitizer: sanitizer,
		metrics:   noopMetrics{},
		logger:    logger,
		now:       time.Now,
	}
}

// WithEmailRegistry claims registered emails in r.
func (s *AuthService) WithEmailRegistry(r ports.EmailRegistry) *AuthService {
	s.accounts.emails, s.accounts.log = r, s.logger
	return s
}

// WithMetrics reports login attempts to m.
func (s *AuthService) WithMetrics(m ports.Metrics) *AuthService {
	s.metrics = m
	return s
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (string, error) {
	role, ok := domain.ParseRole(in.Role)
	if !ok || role == domain.RoleAdmin {
		return "", domain.Validationf("Invalid role specified")
	}
	name := s.sanitizer.Sanitize(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return "", domain.Validationf("Name, email and password are required")
	}

	if err := s.accounts.ensureEmailFree(ctx, email, "", 0); err != nil {
		return "", err
	}

	phone := strings.TrimSpace(in.PhoneNumber)
	now := s.now().UTC()

	switch role {
	case domain.RolePatient:
		if phone == "" {
			return "", domain.Validationf("Phone number is required for patients")
		}
		if strings.TrimSpace(in.DateOfBirth) == "" {
			return "", domain.Validationf("Date of birth is required for patients")
		}
		dob, err := domain.ParseDate(in.DateOfBirth, time.UTC)
		if err != nil {
			return "", err
		}
		hash, err := hashPassword(in.Password)
		if err != nil {
			return "", err
		}
		p := &domain.Patient{
			Name:         name,
			Email:        email,
			PhoneNumber:  phone,
			DateOfBirth:  dob.Format(domain.DateLayout),
			PasswordHash: hash,
			Role:         domain.RolePatient,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.accounts.create(ctx, email, func() error { return s.accounts.patients.Create(ctx, p) }); err != nil {
			return "", err
		}
		s.logger.Info().Int64("patient_id", p.ID).Str("email", email).Msg("patient registered")
		return "Patient registered successfully", nil

	default:
		if phone == "" {
			return "", domain.Validationf("Phone number is required for doctors")
		}
		specialization := s.sanitizer.Sanitize(in.Specialization)
		if specialization == "" {
			return "", domain.Validationf("Specialization is required for doctors")
		}
		hash, err := hashPassword(in.Password)
		if err != nil {
			return "", err
		}
		d := &domain.Doctor{
			Name:           name,
			Email:          email,
			PhoneNumber:    phone,
			Specialization: specialization,
			ProfileStatus:  domain.ProfilePending,
			PasswordHash:   hash,
			Role:           domain.RoleDoctor,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.accounts.create(ctx, email, func() error { return s.accounts.doctors.Create(ctx, d) }); err != nil {
			return "", err
		}
		s.logger.Info().Int64("doctor_id", d.ID).Str("email", email).Msg("doctor registered")
		return "Doctor registered successfully", nil
	}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		s.metrics.LoginAttempt(false)
		return nil, domain.Unauthorizedf("Invalid credentials")
	}

	acc, err := s.accounts.lookup(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if acc == nil || bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)) != nil {
		s.metrics.LoginAttempt(false)
		return nil, domain.Unauthorizedf("Invalid credentials")
	}

	token, exp, err := s.tokens.Issue(acc.Email, acc.Role)
	if err != nil {
		return nil, fmt.Errorf("login: sign token: %w", err)
	}
	s.metrics.LoginAttempt(true)
	s.logger.Info().Str("email", acc.Email).Str("role", string(acc.Role)).Msg("login succeeded")

	return &ports.LoginResult{Token: token, Email: acc.Email, Role: acc.Role, ExpiresAt: exp}, nil
}

// Logout revokes token until its expiry. Missing or invalid tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" || s.denylist == nil {
		return nil
	}
	caller, err := s.tokens.Parse(token)
	if err != nil || caller.TokenID == "" {
		return nil
	}
	if err := s.denylist.Revoke(ctx, caller.TokenID, caller.ExpiresAt); err != nil {
		s.logger.Warn().Err(err).Str("email", caller.Email).Msg("failed to revoke token")
		return nil
	}
	s.logger.Info().Str("email", caller.Email).Msg("logged out")
	return nil
}

// Verify resolves the caller identity carried by token.
func (s *AuthService) Verify(ctx context.Context, token string) (domain.AuthContext, error) {
	caller, err := s.tokens.Parse(token)
	if err != nil {
		return domain.AuthContext{}, err
	}
	if s.denylist != nil && caller.TokenID != "" {
		revoked, err := s.denylist.IsRevoked(ctx, caller.TokenID)
		if err != nil {
			s.logger.Warn().Err(err).Str("email", caller.Email).Msg("denylist check failed, accepting token")
		} else if revoked {
			return domain.AuthContext{}, domain.Unauthorizedf("Token has been revoked")
		}
	}
	return caller, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
