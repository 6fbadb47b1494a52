package domain

import (
	"strings"
	"time"
)

// Role is the authorization role carried in the token.
type Role string

const (
	RolePatient Role = "PATIENT"
	RoleDoctor  Role = "DOCTOR"
	RoleAdmin   Role = "ADMIN"
)

// ParseRole accepts the role name in any case, with or without the ROLE_ prefix.
func ParseRole(s string) (Role, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "ROLE_")
	switch Role(s) {
	case RolePatient, RoleDoctor, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

// AuthContext is the identity resolved once per request from the bearer token
// and passed explicitly into every core operation.
type AuthContext struct {
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	TokenID   string    `json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (a AuthContext) IsAdmin() bool { return a.Role == RoleAdmin }

// Is reports whether the caller's identity is email (case-insensitive).
func (a AuthContext) Is(email string) bool {
	return email != "" && strings.EqualFold(a.Email, email)
}

// User is a login account that is neither a patient nor a doctor record
// (administrators, and accounts a doctor profile can be linked to).
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
