// Package authz holds the per-operation access policy. Every guarded
// operation is checked with Authorize before any domain logic runs.
package authz

import "github.com/carepoint/scheduling-api/internal/core/domain"

// Operation names a guarded use case.
type Operation string

const (
	BookAppointment         Operation = "appointment.book"
	ViewAppointment         Operation = "appointment.view"
	ListAppointments        Operation = "appointment.list"
	ListPatientAppointments Operation = "appointment.list_by_patient"
	ListDoctorAppointments  Operation = "appointment.list_by_doctor"
	ListMyAppointments      Operation = "appointment.list_mine"
	ApproveAppointment      Operation = "appointment.approve"
	RejectAppointment       Operation = "appointment.reject"
	ConfirmAppointment      Operation = "appointment.confirm"
	CompleteAppointment     Operation = "appointment.complete"
	CancelAppointment       Operation = "appointment.cancel"
	UpdateAppointment       Operation = "appointment.update_status"
	DeleteAppointment       Operation = "appointment.delete"
	ViewAppointmentHistory  Operation = "appointment.history"

	SetAvailability  Operation = "availability.set"
	ViewAvailability Operation = "availability.view"

	CreatePatient  Operation = "patient.create"
	ListPatients   Operation = "patient.list"
	ViewPatient    Operation = "patient.view"
	UpdatePatient  Operation = "patient.update"
	DeletePatient  Operation = "patient.delete"
	ViewOwnPatient Operation = "patient.me"

	ManageDoctors   Operation = "doctor.manage"
	BrowseDoctors   Operation = "doctor.browse"
	ViewDoctor      Operation = "doctor.view"
	ManageOwnDoctor Operation = "doctor.own_profile"
)

// Scope is how far a role's grant on an operation reaches.
type Scope int

const (
	// ScopeAny allows the operation on any resource.
	ScopeAny Scope = iota + 1
	// ScopeOwnDoctor allows it only when the resource's doctor is the caller.
	ScopeOwnDoctor
	// ScopeOwnPatient allows it only when the resource's patient is the caller.
	ScopeOwnPatient
)

type rule struct {
	grants map[domain.Role]Scope
	denial string
}

const accessDenied = "Access denied"

var policy = map[Operation]rule{
	BookAppointment: {grants: map[domain.Role]Scope{
		domain.RolePatient: ScopeOwnPatient, domain.RoleAdmin: ScopeAny,
	}, denial: "You can only book appointments for yourself"},
	ViewAppointment: {grants: map[domain.Role]Scope{
		domain.RolePatient: ScopeOwnPatient, domain.RoleDoctor: ScopeAny, domain.RoleAdmin: ScopeAny,
	}, denial: "You can only view your own appointments"},
	ListAppointments: {grants: map[domain.Role]Scope{
		domain.RoleDoctor: ScopeAny, domain.RoleAdmin: ScopeAny,
	}},
	ListPatientAppointments: {grants: map[domain.Role]Scope{
		domain.RolePatient: ScopeOwnPatient, domain.RoleDoctor: ScopeAny, domain.RoleAdmin: ScopeAny,
	}, denial: "You can only view your own appointments"},
	ListDoctorAppointments: {grants: map[domain.Role]Scope{
		domain.RoleDoctor: ScopeAny, domain.RoleAdmin: ScopeAny,
	}},
	ListMyAppointments: {grants: map[domain.Role]Scope{
		domain.RolePatient: ScopeOwnPatient, domain.RoleDoctor: ScopeOwnDoctor,
	}, denial: "You can only view your own appointments"},
	ApproveAppointment: {grants: map[domain.Role]Scope{
		domain.RoleAdmin:  ScopeAny,
		domain.RoleDoctor: ScopeOwnDoctor,
	}, denial: "You can only approve your own appointments"},
	RejectAppointment: {grants: map[domain.Role]Scope{
		domain.RoleAdmin:  ScopeAny,
		domain.RoleDoctor: ScopeOwnDoctor,
	}, denial: "You can only reject your own appointments"},
	ConfirmAppointment: {grants: map[domain.Role]Scope{
		domain.RoleDoctor: ScopeOwnDoctor, domain.RoleAdmin: ScopeAny,
	}, denial: "You can only confirm your own appointments"},
	CompleteAppointment: {grants: map[domain.Role]Scope{
		domain.RoleDoctor: ScopeOwnDoctor, domain.RoleAdmin: ScopeAny,
	}, denial: "You can only complete your own appointments"},
	CancelAppointment: {grants: map[domain.Role]Scope{
		domain.RolePatient: ScopeOwnPatient, domain.RoleDoctor: ScopeOwnDoctor, domain.RoleAdmin: ScopeAny,
	}, denial: "You can only cancel your own appointments"},
	UpdateAppointment: {grants: map[domain.Role]Scope{
		domain.RoleDoctor: ScopeOwnDoctor, domain.RoleAdmin: ScopeAny,
	}, denial: "You can only update your own appointments"},
	DeleteAppointment: {grants: map[domain.Role]Scope{
		domain.RoleAdmin: ScopeAny,
	}},
	ViewAppointmentHistory: {grants: map[domain.Role]Scope{
		domain.RoleDoctor: ScopeOwnDoctor, domain.RoleAdmin: ScopeAny,
	}, denial: "You can only view the history of your own appointments"},

	SetAvailability: {grants: map[domain.Role]Scope{
		domain.RoleDoctor: ScopeOwnDoctor, domain.RoleAdmin: ScopeAny,
	}, denial: "You can only set your own availability"},
	ViewAvailability: {grants: allRoles()},

	CreatePatient: {grants: map[domain.Role]Scope{domain.RoleAdmin: ScopeAny}},
	ListPatients: {grants: map[domain.Role]Scope{
		domain.RoleDoctor: ScopeAny, domain.RoleAdmin: ScopeAny,
	}},
	ViewPatient: {grants: map[domain.Role]Scope{
		domain.RolePatient: ScopeOwnPatient, domain.RoleDoctor: ScopeAny, domain.RoleAdmin: ScopeAny,
	}, denial: "You can only view your own patient record"},
	UpdatePatient: {grants: map[domain.Role]Scope{
		domain.RolePatient: ScopeOwnPatient, domain.RoleAdmin: ScopeAny,
	}, denial: "You can only update your own patient record"},
	DeletePatient:  {grants: map[domain.Role]Scope{domain.RoleAdmin: ScopeAny}},
	ViewOwnPatient: {grants: map[domain.Role]Scope{domain.RolePatient: ScopeOwnPatient}},

	ManageDoctors: {grants: map[domain.Role]Scope{domain.RoleAdmin: ScopeAny}},
	BrowseDoctors: {grants: map[domain.Role]Scope{
		domain.RolePatient: ScopeAny, domain.RoleAdmin: ScopeAny,
	}},
	ViewDoctor:      {grants: allRoles()},
	ManageOwnDoctor: {grants: map[domain.Role]Scope{domain.RoleDoctor: ScopeOwnDoctor}},
}

func allRoles() map[domain.Role]Scope {
	return map[domain.Role]Scope{
		domain.RolePatient: ScopeAny, domain.RoleDoctor: ScopeAny, domain.RoleAdmin: ScopeAny,
	}
}

// Resource carries the ownership facts of the entity being acted on.
// Empty emails never match a caller.
type Resource struct {
	DoctorEmail  string
	PatientEmail string
}

// Decision is the outcome of a policy check.
type Decision struct {
	Allowed bool
	Reason  string
}

// Decide evaluates op for caller against res. It has no side effects.
func Decide(op Operation, caller domain.AuthContext, res Resource) Decision {
	r, ok := policy[op]
	if !ok {
		return Decision{Reason: accessDenied}
	}
	scope, ok := r.grants[caller.Role]
	if !ok {
		return Decision{Reason: accessDenied}
	}
	switch scope {
	case ScopeAny:
		return Decision{Allowed: true}
	case ScopeOwnDoctor:
		if caller.Is(res.DoctorEmail) {
			return Decision{Allowed: true}
		}
	case ScopeOwnPatient:
		if caller.Is(res.PatientEmail) {
			return Decision{Allowed: true}
		}
	}
	reason := r.denial
	if reason == "" {
		reason = accessDenied
	}
	return Decision{Reason: reason}
}

// Authorize is Decide returning a Forbidden domain error on denial.
func Authorize(op Operation, caller domain.AuthContext, res Resource) error {
	if d := Decide(op, caller, res); !d.Allowed {
		return domain.Forbiddenf("%s", d.Reason)
	}
	return nil
}

// RoleAllowed reports whether role has any grant on op. It is the coarse
// check applied at the route, before resources are loaded.
func RoleAllowed(op Operation, role domain.Role) bool {
	_, ok := policy[op].grants[role]
	return ok
}

// ScopeFor returns the reach of role's grant on op, or 0 when it has none.
func ScopeFor(op Operation, role domain.Role) Scope {
	return policy[op].grants[role]
}
