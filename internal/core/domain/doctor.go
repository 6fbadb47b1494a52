package domain

import (
	"strings"
	"time"
)

// ProfileStatus is the administrative state of a doctor profile.
type ProfileStatus string

const (
	ProfileActive   ProfileStatus = "ACTIVE"
	ProfilePending  ProfileStatus = "PENDING"
	ProfileInactive ProfileStatus = "INACTIVE"
)

func ParseProfileStatus(s string) (ProfileStatus, bool) {
	switch st := ProfileStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case ProfileActive, ProfilePending, ProfileInactive:
		return st, true
	}
	return "", false
}

// Doctor is a doctor record with its clinic profile.
type Doctor struct {
	ID              int64         `json:"id"`
	Name            string        `json:"name"`
	Email           string        `json:"email"`
	PhoneNumber     string        `json:"phoneNumber"`
	Specialization  string        `json:"specialization"`
	Qualification   string        `json:"qualification,omitempty"`
	ExperienceYears int           `json:"experienceYears,omitempty"`
	ClinicName      string        `json:"clinicName,omitempty"`
	ClinicAddress   string        `json:"clinicAddress,omitempty"`
	ConsultationFee float64       `json:"consultationFee,omitempty"`
	Bio             string        `json:"bio,omitempty"`
	ProfileStatus   ProfileStatus `json:"profileStatus"`
	UserID          *int64        `json:"userId,omitempty"`
	PasswordHash    string        `json:"-"`
	Role            Role          `json:"role"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// DoctorFilter narrows a profile listing. Empty fields match everything.
type DoctorFilter struct {
	Specialization string
	Status         ProfileStatus
	ClinicName     string
}
