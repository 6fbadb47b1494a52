package handler

import (
	"errors"
	"testing"

	"github.com/carepoint/scheduling-api/internal/core/domain"
)

func TestValidator_UsesJSONNames(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&doctorRequest{Email: "nope", ExperienceYears: -1, ProfileStatus: "RETIRED"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	want := "email must be a valid email; experienceYears must be at least 0; profileStatus must be one of: ACTIVE PENDING INACTIVE"
	if got := domain.Message(err); got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}
}

func TestValidator_Valid(t *testing.T) {
	v := NewValidator()
	if err := v.Validate(&loginRequest{Email: "a@example.com", Password: "x"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStatusCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.Validationf("x"), 400},
		{domain.NotFound("Doctor", 1), 404},
		{domain.Conflictf("x"), 409},
		{domain.Forbiddenf("x"), 403},
		{domain.Unauthorizedf("x"), 401},
		{domain.InvalidStatef("x"), 400},
		{errors.New("boom"), 500},
	}
	for _, tc := range cases {
		if got := StatusCode(tc.err); got != tc.want {
			t.Errorf("StatusCode(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
