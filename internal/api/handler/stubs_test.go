package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/carepoint/scheduling-api/internal/api/middleware"
	"github.com/carepoint/scheduling-api/internal/core/domain"
	"github.com/carepoint/scheduling-api/internal/core/ports"
)

var (
	adminCaller   = domain.AuthContext{Email: "admin@clinic.test", Role: domain.RoleAdmin}
	doctorCaller  = domain.AuthContext{Email: "smith@example.com", Role: domain.RoleDoctor}
	patientCaller = domain.AuthContext{Email: "john@example.com", Role: domain.RolePatient}
)

// newContext builds an echo context for a handler call. A zero ac leaves the
// request unauthenticated.
func newContext(method, target, body string, ac domain.AuthContext) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if ac.Role != "" {
		middleware.SetCaller(c, ac)
	}
	return c, rec
}

func withParams(c echo.Context, kv ...string) echo.Context {
	names := make([]string, 0, len(kv)/2)
	values := make([]string, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		names = append(names, kv[i])
		values = append(values, kv[i+1])
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	return c
}

// The stubs embed the port interface; calling a method a test did not set
// panics, which flags an unexpected call.

type stubAuthService struct {
	ports.AuthService
	registerFn func(ctx context.Context, in ports.RegisterInput) (string, error)
	loginFn    func(ctx context.Context, email, password string) (*ports.LoginResult, error)
	logoutFn   func(ctx context.Context, token string) error
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (string, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Logout(ctx context.Context, token string) error {
	return s.logoutFn(ctx, token)
}

type stubAppointmentService struct {
	ports.AppointmentService
	bookForFn   func(ctx context.Context, caller domain.AuthContext, in ports.BookAppointmentInput) (*domain.Appointment, error)
	listFn      func(ctx context.Context, caller domain.AuthContext, f domain.AppointmentFilter) ([]*domain.Appointment, error)
	dateRangeFn func(ctx context.Context, caller domain.AuthContext, start, end string) ([]*domain.Appointment, error)
	confirmFn   func(ctx context.Context, caller domain.AuthContext, id int64) (string, error)
	cancelFn    func(ctx context.Context, caller domain.AuthContext, id int64, reason string) (string, error)
	rejectFn    func(ctx context.Context, caller domain.AuthContext, doctorID, id int64, reason string) (string, error)
	updateFn    func(ctx context.Context, caller domain.AuthContext, id int64, status string) (*domain.Appointment, error)
	deleteFn    func(ctx context.Context, caller domain.AuthContext, id int64) error
}

func (s *stubAppointmentService) BookFor(ctx context.Context, caller domain.AuthContext, in ports.BookAppointmentInput) (*domain.Appointment, error) {
	return s.bookForFn(ctx, caller, in)
}

func (s *stubAppointmentService) List(ctx context.Context, caller domain.AuthContext, f domain.AppointmentFilter) ([]*domain.Appointment, error) {
	return s.listFn(ctx, caller, f)
}

func (s *stubAppointmentService) GetByDateRange(ctx context.Context, caller domain.AuthContext, start, end string) ([]*domain.Appointment, error) {
	return s.dateRangeFn(ctx, caller, start, end)
}

func (s *stubAppointmentService) Confirm(ctx context.Context, caller domain.AuthContext, id int64) (string, error) {
	return s.confirmFn(ctx, caller, id)
}

func (s *stubAppointmentService) Cancel(ctx context.Context, caller domain.AuthContext, id int64, reason string) (string, error) {
	return s.cancelFn(ctx, caller, id, reason)
}

func (s *stubAppointmentService) Reject(ctx context.Context, caller domain.AuthContext, doctorID, id int64, reason string) (string, error) {
	return s.rejectFn(ctx, caller, doctorID, id, reason)
}

func (s *stubAppointmentService) UpdateStatus(ctx context.Context, caller domain.AuthContext, id int64, status string) (*domain.Appointment, error) {
	return s.updateFn(ctx, caller, id, status)
}

func (s *stubAppointmentService) Delete(ctx context.Context, caller domain.AuthContext, id int64) error {
	return s.deleteFn(ctx, caller, id)
}

type stubDoctorService struct {
	ports.DoctorService
	deleteFn          func(ctx context.Context, caller domain.AuthContext, id int64) (string, error)
	setAvailabilityFn func(ctx context.Context, caller domain.AuthContext, doctorID int64, windows []ports.AvailabilityInput) ([]domain.DoctorAvailability, error)
	profilesFn        func(ctx context.Context, caller domain.AuthContext, f domain.DoctorFilter) ([]*domain.Doctor, error)
}

func (s *stubDoctorService) Delete(ctx context.Context, caller domain.AuthContext, id int64) (string, error) {
	return s.deleteFn(ctx, caller, id)
}

func (s *stubDoctorService) SetAvailability(ctx context.Context, caller domain.AuthContext, doctorID int64, windows []ports.AvailabilityInput) ([]domain.DoctorAvailability, error) {
	return s.setAvailabilityFn(ctx, caller, doctorID, windows)
}

func (s *stubDoctorService) ListProfiles(ctx context.Context, caller domain.AuthContext, f domain.DoctorFilter) ([]*domain.Doctor, error) {
	return s.profilesFn(ctx, caller, f)
}

type stubPatientService struct {
	ports.PatientService
	createFn func(ctx context.Context, caller domain.AuthContext, in ports.CreatePatientInput) (*domain.Patient, error)
	deleteFn func(ctx context.Context, caller domain.AuthContext, id int64) error
}

func (s *stubPatientService) Create(ctx context.Context, caller domain.AuthContext, in ports.CreatePatientInput) (*domain.Patient, error) {
	return s.createFn(ctx, caller, in)
}

func (s *stubPatientService) Delete(ctx context.Context, caller domain.AuthContext, id int64) error {
	return s.deleteFn(ctx, caller, id)
}
