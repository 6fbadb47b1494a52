package handler

import "time"

// ErrorResponse is the error envelope returned on all 4xx/5xx JSON responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

type registerRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	Role           string `json:"role"`
	PhoneNumber    string `json:"phoneNumber"`
	DateOfBirth    string `json:"dateOfBirth"`
	Specialization string `json:"specialization"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// --- Appointments ---

type bookAppointmentRequest struct {
	PatientID       int64  `json:"patientId"       validate:"gte=0"`
	DoctorID        int64  `json:"doctorId"        validate:"required,gt=0"`
	AppointmentDate string `json:"appointmentDate" validate:"required"`
	AppointmentTime string `json:"appointmentTime" validate:"required"`
	Reason          string `json:"reason"          validate:"required"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// --- Patients ---

type createPatientRequest struct {
	Name        string `json:"name"        validate:"required"`
	Email       string `json:"email"       validate:"required,email"`
	Password    string `json:"password"    validate:"required,min=6"`
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	DateOfBirth string `json:"dateOfBirth"`
}

type updatePatientRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"       validate:"omitempty,email"`
	PhoneNumber string `json:"phoneNumber"`
	DateOfBirth string `json:"dateOfBirth"`
}

// --- Doctors ---

type doctorRequest struct {
	Name            string  `json:"name"`
	Email           string  `json:"email"           validate:"omitempty,email"`
	Password        string  `json:"password"`
	PhoneNumber     string  `json:"phoneNumber"`
	Specialization  string  `json:"specialization"`
	Qualification   string  `json:"qualification"`
	ExperienceYears int     `json:"experienceYears" validate:"gte=0"`
	ClinicName      string  `json:"clinicName"`
	ClinicAddress   string  `json:"clinicAddress"`
	ConsultationFee float64 `json:"consultationFee" validate:"gte=0"`
	Bio             string  `json:"bio"`
	ProfileStatus   string  `json:"profileStatus"   validate:"omitempty,oneof=ACTIVE PENDING INACTIVE"`
}

type ownProfileRequest struct {
	PhoneNumber   string `json:"phoneNumber"`
	ClinicName    string `json:"clinicName"`
	ClinicAddress string `json:"clinicAddress"`
	Bio           string `json:"bio"`
}

type availabilityWindow struct {
	DayOfWeek string `json:"dayOfWeek" validate:"required"`
	StartTime string `json:"startTime" validate:"required"`
	EndTime   string `json:"endTime"   validate:"required"`
	Available *bool  `json:"available"`
}

type availabilityRequest struct {
	Slots []availabilityWindow `json:"slots" validate:"dive"`
}
