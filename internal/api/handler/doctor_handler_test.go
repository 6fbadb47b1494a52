package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/carepoint/scheduling-api/internal/core/domain"
	"github.com/carepoint/scheduling-api/internal/core/ports"
)

func TestDoctorHandler_SetAvailability_DefaultsAvailable(t *testing.T) {
	var got []ports.AvailabilityInput
	stub := &stubDoctorService{
		setAvailabilityFn: func(ctx context.Context, caller domain.AuthContext, doctorID int64, windows []ports.AvailabilityInput) ([]domain.DoctorAvailability, error) {
			if doctorID != 1 {
				t.Fatalf("unexpected doctor %d", doctorID)
			}
			got = windows
			return nil, nil
		},
	}
	h := NewDoctorHandler(stub)

	body := `{"slots":[
		{"dayOfWeek":"MONDAY","startTime":"09:00","endTime":"12:00"},
		{"dayOfWeek":"FRIDAY","startTime":"14:00","endTime":"16:00","available":false}
	]}`
	c, rec := newContext(http.MethodPost, "/api/doctors/1/availability", body, doctorCaller)
	if err := h.SetAvailability(withParams(c, "id", "1")); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || rec.Body.String() != "Availability updated successfully" {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}
	if len(got) != 2 || !got[0].Available || got[1].Available {
		t.Fatalf("unexpected windows: %+v", got)
	}
}

func TestDoctorHandler_SetAvailability_Forbidden(t *testing.T) {
	stub := &stubDoctorService{
		setAvailabilityFn: func(ctx context.Context, caller domain.AuthContext, doctorID int64, windows []ports.AvailabilityInput) ([]domain.DoctorAvailability, error) {
			return nil, domain.Forbiddenf("You can only set your own availability")
		},
	}
	h := NewDoctorHandler(stub)

	c, rec := newContext(http.MethodPost, "/api/doctors/2/availability", `{"slots":[]}`, doctorCaller)
	if err := h.SetAvailability(withParams(c, "id", "2")); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusForbidden || rec.Body.String() != "Failed to update availability: You can only set your own availability" {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}
}

func TestDoctorHandler_SetAvailability_WindowFieldsRequired(t *testing.T) {
	h := NewDoctorHandler(&stubDoctorService{})

	c, _ := newContext(http.MethodPost, "/api/doctors/1/availability", `{"slots":[{"dayOfWeek":"MONDAY"}]}`, doctorCaller)
	if err := h.SetAvailability(withParams(c, "id", "1")); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDoctorHandler_Delete(t *testing.T) {
	stub := &stubDoctorService{
		deleteFn: func(ctx context.Context, caller domain.AuthContext, id int64) (string, error) {
			switch id {
			case 9:
				return "", domain.NotFound("Doctor", 9)
			case 4:
				return "", domain.Conflictf("Cannot delete doctor with existing appointments")
			}
			return "Doctor deleted successfully", nil
		},
	}
	h := NewDoctorHandler(stub)

	c, rec := newContext(http.MethodDelete, "/api/doctors/3", "", adminCaller)
	if err := h.Delete(withParams(c, "id", "3")); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || rec.Body.String() != "Doctor deleted successfully" {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}

	c, rec = newContext(http.MethodDelete, "/api/doctors/9", "", adminCaller)
	if err := h.Delete(withParams(c, "id", "9")); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNotFound || rec.Body.String() != "Failed to delete doctor: Doctor not found with ID: 9" {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}

	c, rec = newContext(http.MethodDelete, "/api/doctors/4", "", adminCaller)
	if err := h.Delete(withParams(c, "id", "4")); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusConflict || rec.Body.String() != "Failed to delete doctor: Cannot delete doctor with existing appointments" {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}
}

func TestDoctorHandler_Profiles_ParsesFilters(t *testing.T) {
	var got domain.DoctorFilter
	stub := &stubDoctorService{
		profilesFn: func(ctx context.Context, caller domain.AuthContext, f domain.DoctorFilter) ([]*domain.Doctor, error) {
			got = f
			return []*domain.Doctor{}, nil
		},
	}
	h := NewDoctorHandler(stub)

	c, rec := newContext(http.MethodGet, "/api/doctors/profiles?specialization=cardio&status=pending&clinicName=North", "", adminCaller)
	if err := h.Profiles(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	want := domain.DoctorFilter{Specialization: "cardio", Status: domain.ProfilePending, ClinicName: "North"}
	if got != want {
		t.Fatalf("unexpected filter: %+v", got)
	}
}

func TestDoctorHandler_Profiles_RejectsUnknownStatus(t *testing.T) {
	h := NewDoctorHandler(&stubDoctorService{})

	c, _ := newContext(http.MethodGet, "/api/doctors/profiles?status=RETIRED", "", adminCaller)
	if err := h.Profiles(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
