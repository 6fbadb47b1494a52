package domain

import (
	"errors"
	"testing"
	"time"
)

func TestCanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to AppointmentStatus
		want     bool
	}{
		{StatusScheduled, StatusConfirmed, true},
		{StatusPending, StatusConfirmed, true},
		{StatusScheduled, StatusCancelled, true},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusScheduled, StatusCompleted, false},
		{StatusConfirmed, StatusScheduled, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusConfirmed, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
			t.Errorf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.want, got)
		}
	}
}

func TestStatusPredicates(t *testing.T) {
	if !StatusPending.AwaitingDecision() || !StatusScheduled.AwaitingDecision() {
		t.Fatal("scheduled and pending should await a decision")
	}
	if StatusConfirmed.AwaitingDecision() {
		t.Fatal("confirmed should not await a decision")
	}
	if !StatusCompleted.IsTerminal() || !StatusCancelled.IsTerminal() || StatusConfirmed.IsTerminal() {
		t.Fatal("terminal states mismatch")
	}
	if _, ok := ParseStatus("confirmed"); ok {
		t.Fatal("status parsing is case-sensitive")
	}
}

func TestSlotKey(t *testing.T) {
	a := &Appointment{DoctorID: 2, AppointmentDate: "2030-01-02", AppointmentTime: "10:00"}
	if got := a.SlotKey(); got != "2|2030-01-02|10:00" {
		t.Fatalf("unexpected slot key %q", got)
	}
}

func TestAvailabilityNormalize(t *testing.T) {
	a := DoctorAvailability{DayOfWeek: "monday", StartTime: "09:00:00", EndTime: "12:30"}
	if err := a.Normalize(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.DayOfWeek != "MONDAY" || a.StartTime != "09:00" || a.EndTime != "12:30" {
		t.Fatalf("unexpected normalized window %+v", a)
	}

	bad := []DoctorAvailability{
		{DayOfWeek: "FUNDAY", StartTime: "09:00", EndTime: "10:00"},
		{DayOfWeek: "MONDAY", StartTime: "9am", EndTime: "10:00"},
		{DayOfWeek: "MONDAY", StartTime: "10:00", EndTime: "10:00"},
	}
	for _, w := range bad {
		if err := w.Normalize(); !errors.Is(err, ErrValidation) {
			t.Errorf("%+v: expected validation error, got %v", w, err)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2030-02-03", time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Year() != 2030 || d.Month() != time.February || d.Day() != 3 {
		t.Fatalf("unexpected date %v", d)
	}
	if _, err := ParseDate("03/02/2030", time.UTC); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
