package authz

import (
	"errors"
	"testing"

	"github.com/carepoint/scheduling-api/internal/core/domain"
)

var (
	admin   = domain.AuthContext{Email: "admin@clinic.test", Role: domain.RoleAdmin}
	doctor  = domain.AuthContext{Email: "house@clinic.test", Role: domain.RoleDoctor}
	patient = domain.AuthContext{Email: "jane@mail.test", Role: domain.RolePatient}
)

func TestDecide(t *testing.T) {
	own := Resource{DoctorEmail: "house@clinic.test", PatientEmail: "jane@mail.test"}
	foreign := Resource{DoctorEmail: "wilson@clinic.test", PatientEmail: "bob@mail.test"}

	cases := []struct {
		name   string
		op     Operation
		caller domain.AuthContext
		res    Resource
		want   bool
	}{
		{"owner doctor confirms", ConfirmAppointment, doctor, own, true},
		{"other doctor confirms", ConfirmAppointment, doctor, foreign, false},
		{"admin confirms anything", ConfirmAppointment, admin, foreign, true},
		{"patient cannot confirm", ConfirmAppointment, patient, own, false},
		{"patient cancels own", CancelAppointment, patient, own, true},
		{"patient cancels foreign", CancelAppointment, patient, foreign, false},
		{"doctor cancels own", CancelAppointment, doctor, own, true},
		{"admin approves any", ApproveAppointment, admin, foreign, true},
		{"admin rejects any", RejectAppointment, admin, foreign, true},
		{"other doctor approves", ApproveAppointment, doctor, foreign, false},
		{"patient cannot reject", RejectAppointment, patient, own, false},
		{"only admin deletes", DeleteAppointment, doctor, own, false},
		{"doctor books", BookAppointment, doctor, own, false},
		{"patient views own", ViewAppointment, patient, own, true},
		{"patient views foreign", ViewAppointment, patient, foreign, false},
		{"doctor views any", ViewAppointment, doctor, foreign, true},
		{"doctor sets other availability", SetAvailability, doctor, foreign, false},
		{"anyone views availability", ViewAvailability, patient, Resource{}, true},
		{"patient lists doctors", BrowseDoctors, patient, Resource{}, true},
		{"doctor lists doctors", BrowseDoctors, doctor, Resource{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Decide(tc.op, tc.caller, tc.res); got.Allowed != tc.want {
				t.Fatalf("expected allowed=%v, got %+v", tc.want, got)
			}
		})
	}
}

func TestDecide_EmptyOwnerNeverMatches(t *testing.T) {
	anon := domain.AuthContext{Role: domain.RoleDoctor}
	if Decide(ConfirmAppointment, anon, Resource{}).Allowed {
		t.Fatal("empty identity must not own an empty resource")
	}
}

func TestAuthorize_DenialMessage(t *testing.T) {
	err := Authorize(SetAvailability, doctor, Resource{DoctorEmail: "wilson@clinic.test"})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err.Error() != "You can only set your own availability" {
		t.Fatalf("unexpected message %q", err.Error())
	}

	err = Authorize(DeleteAppointment, patient, Resource{})
	if err == nil || err.Error() != "Access denied" {
		t.Fatalf("expected generic denial, got %v", err)
	}
}

func TestRoleAllowed(t *testing.T) {
	if !RoleAllowed(CancelAppointment, domain.RolePatient) {
		t.Fatal("patients may reach cancel")
	}
	if RoleAllowed(ListAppointments, domain.RolePatient) {
		t.Fatal("patients may not list all appointments")
	}
	if RoleAllowed(Operation("unknown"), domain.RoleAdmin) {
		t.Fatal("unknown operations are denied")
	}
	if ScopeFor(CancelAppointment, domain.RoleDoctor) != ScopeOwnDoctor {
		t.Fatal("doctor cancel should be ownership scoped")
	}
}
