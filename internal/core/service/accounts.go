package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/carepoint/scheduling-api/internal/core/domain"
	"github.com/carepoint/scheduling-api/internal/core/ports"
)

// account is a login identity found in one of the three account stores.
type account struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         domain.Role
}

// accounts resolves emails across admin users, doctors and patients, in that
// order. With an email registry attached, new and changed emails are claimed
// there so two stores cannot take the same address concurrently.
type accounts struct {
	users    ports.UserRepository
	doctors  ports.DoctorRepository
	patients ports.PatientRepository
	emails   ports.EmailRegistry
	log      zerolog.Logger
}

func isNotFound(err error) bool { return errors.Is(err, domain.ErrNotFound) }

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// lookup returns the account holding email, or nil when none does.
func (a accounts) lookup(ctx context.Context, email string) (*account, error) {
	email = normalizeEmail(email)

	u, err := a.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return &account{ID: u.ID, Email: u.Email, PasswordHash: u.PasswordHash, Role: u.Role}, nil
	case !isNotFound(err):
		return nil, err
	}

	d, err := a.doctors.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return &account{ID: d.ID, Email: d.Email, PasswordHash: d.PasswordHash, Role: domain.RoleDoctor}, nil
	case !isNotFound(err):
		return nil, err
	}

	p, err := a.patients.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return &account{ID: p.ID, Email: p.Email, PasswordHash: p.PasswordHash, Role: domain.RolePatient}, nil
	case !isNotFound(err):
		return nil, err
	}
	return nil, nil
}

// ensureEmailFree fails with Conflict when email belongs to any account other
// than the one identified by (role, id).
func (a accounts) ensureEmailFree(ctx context.Context, email string, role domain.Role, id int64) error {
	acc, err := a.lookup(ctx, email)
	if err != nil {
		return err
	}
	if acc != nil && (acc.Role != role || acc.ID != id) {
		return domain.Conflictf("Email already exists")
	}
	return nil
}

// create runs insert while email is claimed. The claim is given back when
// insert fails.
func (a accounts) create(ctx context.Context, email string, insert func() error) error {
	if err := a.ensureEmailFree(ctx, email, "", 0); err != nil {
		return err
	}
	if err := a.claim(ctx, email); err != nil {
		return err
	}
	if err := insert(); err != nil {
		a.release(ctx, email)
		return err
	}
	return nil
}

// changeEmail runs update for the account (role, id) moving from one email to
// another. On success the old address is released, otherwise the new one.
func (a accounts) changeEmail(ctx context.Context, from, to string, role domain.Role, id int64, update func() error) error {
	if from == to {
		return update()
	}
	if err := a.ensureEmailFree(ctx, to, role, id); err != nil {
		return err
	}
	if err := a.claim(ctx, to); err != nil {
		return err
	}
	if err := update(); err != nil {
		a.release(ctx, to)
		return err
	}
	a.release(ctx, from)
	return nil
}

func (a accounts) claim(ctx context.Context, email string) error {
	if a.emails == nil {
		return nil
	}
	return a.emails.Claim(ctx, email)
}

// release frees email in the registry. A failed release only delays reuse of
// the address until the claim goes stale.
func (a accounts) release(ctx context.Context, email string) {
	if a.emails == nil || email == "" {
		return
	}
	if err := a.emails.Release(context.WithoutCancel(ctx), email); err != nil {
		a.log.Warn().Err(err).Str("email", email).Msg("email release failed")
	}
}
