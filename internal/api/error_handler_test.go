package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/carepoint/scheduling-api/internal/api/handler"
	"github.com/carepoint/scheduling-api/internal/core/domain"
)

func render(t *testing.T, err error) (int, handler.ErrorResponse) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	var body handler.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return rec.Code, body
}

func TestHTTPErrorHandler_DomainKinds(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{domain.Validationf("Cannot book appointment for past dates"), http.StatusBadRequest},
		{domain.NotFound("Appointment", 99), http.StatusNotFound},
		{domain.Conflictf("Doctor already has an appointment at this time on 2030-06-11 at 10:00"), http.StatusConflict},
		{domain.Forbiddenf("You can only confirm your own appointments"), http.StatusForbidden},
		{domain.Unauthorizedf("Invalid or expired token"), http.StatusUnauthorized},
		{domain.InvalidStatef("Cannot cancel a completed appointment"), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(domain.Message(tt.err), func(t *testing.T) {
			code, body := render(t, tt.err)
			if code != tt.code || body.Status != tt.code {
				t.Fatalf("code = %d / %d, want %d", code, body.Status, tt.code)
			}
			if body.Error != domain.Message(tt.err) {
				t.Errorf("error = %q, want %q", body.Error, domain.Message(tt.err))
			}
			if body.Message != http.StatusText(tt.code) {
				t.Errorf("message = %q", body.Message)
			}
		})
	}
}

func TestHTTPErrorHandler_NotFoundEnvelope(t *testing.T) {
	code, body := render(t, domain.NotFound("Appointment", 42))
	if code != http.StatusNotFound || body.Error != "Appointment not found with ID: 42" {
		t.Fatalf("unexpected response %d %+v", code, body)
	}
}

func TestHTTPErrorHandler_EchoError(t *testing.T) {
	code, body := render(t, echo.NewHTTPError(http.StatusTooManyRequests, "slow down"))
	if code != http.StatusTooManyRequests || body.Error != "slow down" {
		t.Fatalf("unexpected response %d %+v", code, body)
	}
}

func TestHTTPErrorHandler_UnexpectedErrorIsHidden(t *testing.T) {
	code, body := render(t, errors.New("mongo: connection reset"))
	if code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", code)
	}
	if body.Error != "Internal server error" {
		t.Errorf("internal detail leaked: %q", body.Error)
	}
}
