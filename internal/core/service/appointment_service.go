package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/carepoint/scheduling-api/internal/core/authz"
	"github.com/carepoint/scheduling-api/internal/core/domain"
	"github.com/carepoint/scheduling-api/internal/core/ports"
)

// AppointmentService is the appointment workflow engine: booking, queries and
// the guarded status transitions.
type AppointmentService struct {
	appointments ports.AppointmentRepository
	patients     ports.PatientRepository
	doctors      ports.DoctorRepository
	audit        ports.AuditRepository
	sanitizer    ports.TextSanitizer
	locker       ports.SlotLocker
	publisher    ports.AuditPublisher
	metrics      ports.Metrics
	loc          *time.Location
	logger       zerolog.Logger
	now          func() time.Time
}

// NewAppointmentService builds the workflow engine. loc is the clinic time
// zone used to decide what "today" and "now" are when booking.
func NewAppointmentService(
	appointments ports.AppointmentRepository,
	patients ports.PatientRepository,
	doctors ports.DoctorRepository,
	audit ports.AuditRepository,
	sanitizer ports.TextSanitizer,
	loc *time.Location,
	logger zerolog.Logger,
) *AppointmentService {
	if loc == nil {
		loc = time.UTC
	}
	return &AppointmentService{
		appointments: appointments,
		patients:     patients,
		doctors:      doctors,
		audit:        audit,
		sanitizer:    sanitizer,
		metrics:      noopMetrics{},
		loc:          loc,
		logger:       logger,
		now:          time.Now,
	}
}

// WithSlotLocker serialises concurrent bookings of one slot through l.
func (s *AppointmentService) WithSlotLocker(l ports.SlotLocker) *AppointmentService {
	s.locker = l
	return s
}

// WithPublisher sends audit events to p.
func (s *AppointmentService) WithPublisher(p ports.AuditPublisher) *AppointmentService {
	s.publisher = p
	return s
}

// WithMetrics reports booking and transition counters to m.
func (s *AppointmentService) WithMetrics(m ports.Metrics) *AppointmentService {
	s.metrics = m
	return s
}

// ── Booking ───────────────────────────────────────────────────────────────────

// Book creates a SCHEDULED appointment. The patient id is taken as given;
// subject resolution is BookFor's job.
func (s *AppointmentService) Book(ctx context.Context, actor domain.AuthContext, in ports.BookAppointmentInput) (*domain.Appointment, error) {
	a, err := s.book(ctx, actor, in)
	if err != nil {
		s.metrics.BookingRejected(rejectionReason(err))
		return nil, err
	}
	s.metrics.BookingSucceeded()
	return a, nil
}

func (s *AppointmentService) book(ctx context.Context, actor domain.AuthContext, in ports.BookAppointmentInput) (*domain.Appointment, error) {
	if in.PatientID == 0 || in.DoctorID == 0 || strings.TrimSpace(in.Date) == "" ||
		strings.TrimSpace(in.Time) == "" || strings.TrimSpace(in.Reason) == "" {
		return nil, domain.Validationf("All appointment details are required")
	}

	date, err := domain.ParseDate(in.Date, s.loc)
	if err != nil {
		return nil, err
	}
	clock, err := domain.ParseClock(in.Time)
	if err != nil {
		return nil, err
	}

	now := s.now().In(s.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	if date.Before(today) {
		return nil, domain.Validationf("Cannot book appointment for past dates")
	}
	slot := time.Date(date.Year(), date.Month(), date.Day(), clock.Hour(), clock.Minute(), 0, 0, s.loc)
	if date.Equal(today) && slot.Before(now) {
		return nil, domain.Validationf("Cannot book appointment for past time today")
	}

	reason := s.sanitizer.Sanitize(in.Reason)
	if reason == "" {
		return nil, domain.Validationf("All appointment details are required")
	}

	if _, err := s.patients.FindByID(ctx, in.PatientID); err != nil {
		return nil, err
	}
	if _, err := s.doctors.FindByID(ctx, in.DoctorID); err != nil {
		return nil, err
	}

	a := &domain.Appointment{
		PatientID:       in.PatientID,
		DoctorID:        in.DoctorID,
		AppointmentDate: date.Format(domain.DateLayout),
		AppointmentTime: clock.Format(domain.ClockLayout),
		Reason:          reason,
		Status:          domain.StatusScheduled,
		CreatedAt:       now.UTC(),
	}
	slotTaken := domain.Conflictf("Doctor already has an appointment at this time on %s at %s",
		a.AppointmentDate, a.AppointmentTime)

	release, err := s.lockSlot(ctx, a.SlotKey())
	if err != nil {
		return nil, err
	}
	defer release()

	exists, err := s.appointments.ExistsActiveAtSlot(ctx, a.DoctorID, a.AppointmentDate, a.AppointmentTime)
	if err != nil {
		return nil, fmt.Errorf("book appointment: %w", err)
	}
	if exists {
		return nil, slotTaken
	}

	// The unique slot index is the final arbiter when the lock is unavailable.
	if err := s.appointments.Create(ctx, a); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, slotTaken
		}
		s.logger.Error().Err(err).Msg("failed to create appointment")
		return nil, fmt.Errorf("book appointment: %w", err)
	}

	s.publish(a, domain.ActionBooked, "", a.Status, actor, "")
	s.logger.Info().
		Int64("appointment_id", a.ID).
		Int64("patient_id", a.PatientID).
		Int64("doctor_id", a.DoctorID).
		Str("slot", a.SlotKey()).
		Msg("appointment booked")
	return a, nil
}

// lockSlot takes the distributed slot lock when one is configured. A lock
// store failure is logged and booking continues on the unique index alone.
func (s *AppointmentService) lockSlot(ctx context.Context, key string) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}
	token, ok, err := s.locker.Acquire(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("slot", key).Msg("slot lock unavailable, relying on unique index")
		return func() {}, nil
	}
	if !ok {
		return nil, domain.Conflictf("Another booking for this time slot is in progress")
	}
	return func() {
		if err := s.locker.Release(context.WithoutCancel(ctx), key, token); err != nil {
			s.logger.Warn().Err(err).Str("slot", key).Msg("failed to release slot lock")
		}
	}, nil
}

// BookFor resolves who the appointment is for and books it. Patients always
// book for themselves, whatever patient id they send; administrators must
// name the patient.
func (s *AppointmentService) BookFor(ctx context.Context, caller domain.AuthContext, in ports.BookAppointmentInput) (*domain.Appointment, error) {
	res := authz.Resource{}
	switch caller.Role {
	case domain.RolePatient:
		p, err := s.patients.FindByEmail(ctx, caller.Email)
		if err != nil {
			if isNotFound(err) {
				return nil, domain.Forbiddenf("Patient not found with email: %s", caller.Email)
			}
			return nil, err
		}
		in.PatientID = p.ID
		res.PatientEmail = p.Email
	case domain.RoleAdmin:
		if in.PatientID == 0 {
			return nil, domain.Validationf("Patient ID is required for admin users")
		}
	}
	if err := authz.Authorize(authz.BookAppointment, caller, res); err != nil {
		return nil, err
	}
	return s.Book(ctx, caller, in)
}

// ── Queries ───────────────────────────────────────────────────────────────────

// List returns appointments matching filter. A date range needs both ends.
func (s *AppointmentService) List(ctx context.Context, caller domain.AuthContext, filter domain.AppointmentFilter) ([]*domain.Appointment, error) {
	if err := authz.Authorize(authz.ListAppointments, caller, authz.Resource{}); err != nil {
		return nil, err
	}
	if filter.StartDate != "" || filter.EndDate != "" {
		start, end, err := s.dateRange(filter.StartDate, filter.EndDate)
		if err != nil {
			return nil, err
		}
		filter.StartDate, filter.EndDate = start, end
	}
	return s.appointments.List(ctx, filter)
}

func (s *AppointmentService) GetByID(ctx context.Context, caller domain.AuthContext, id int64) (*domain.Appointment, error) {
	a, err := s.appointments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	res, err := s.resource(ctx, a)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(authz.ViewAppointment, caller, res); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AppointmentService) GetByPatientID(ctx context.Context, caller domain.AuthContext, patientID int64) ([]*domain.Appointment, error) {
	p, err := s.patients.FindByID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(authz.ListPatientAppointments, caller, authz.Resource{PatientEmail: p.Email}); err != nil {
		return nil, err
	}
	return s.appointments.List(ctx, domain.AppointmentFilter{PatientID: p.ID})
}

func (s *AppointmentService) GetByDoctorID(ctx context.Context, caller domain.AuthContext, doctorID int64) ([]*domain.Appointment, error) {
	d, err := s.doctors.FindByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(authz.ListDoctorAppointments, caller, authz.Resource{DoctorEmail: d.Email}); err != nil {
		return nil, err
	}
	return s.appointments.List(ctx, domain.AppointmentFilter{DoctorID: d.ID})
}

func (s *AppointmentService) GetByDateRange(ctx context.Context, caller domain.AuthContext, start, end string) ([]*domain.Appointment, error) {
	if err := authz.Authorize(authz.ListAppointments, caller, authz.Resource{}); err != nil {
		return nil, err
	}
	start, end, err := s.dateRange(start, end)
	if err != nil {
		return nil, err
	}
	return s.appointments.List(ctx, domain.AppointmentFilter{StartDate: start, EndDate: end})
}

func (s *AppointmentService) dateRange(start, end string) (string, string, error) {
	if strings.TrimSpace(start) == "" || strings.TrimSpace(end) == "" {
		return "", "", domain.Validationf("Start date and end date are required")
	}
	from, err := domain.ParseDate(start, s.loc)
	if err != nil {
		return "", "", err
	}
	to, err := domain.ParseDate(end, s.loc)
	if err != nil {
		return "", "", err
	}
	if from.After(to) {
		return "", "", domain.Validationf("Start date cannot be after end date")
	}
	return from.Format(domain.DateLayout), to.Format(domain.DateLayout), nil
}

// GetMine lists the appointments of the calling doctor or patient.
func (s *AppointmentService) GetMine(ctx context.Context, caller domain.AuthContext) ([]*domain.Appointment, error) {
	switch caller.Role {
	case domain.RoleDoctor:
		d, err := s.doctors.FindByEmail(ctx, caller.Email)
		if err != nil {
			if isNotFound(err) {
				return nil, domain.NotFoundf("Doctor not found with email: %s", caller.Email)
			}
			return nil, err
		}
		if err := authz.Authorize(authz.ListMyAppointments, caller, authz.Resource{DoctorEmail: d.Email}); err != nil {
			return nil, err
		}
		return s.appointments.List(ctx, domain.AppointmentFilter{DoctorID: d.ID})
	case domain.RolePatient:
		p, err := s.patients.FindByEmail(ctx, caller.Email)
		if err != nil {
			if isNotFound(err) {
				return nil, domain.NotFoundf("Patient not found with email: %s", caller.Email)
			}
			return nil, err
		}
		if err := authz.Authorize(authz.ListMyAppointments, caller, authz.Resource{PatientEmail: p.Email}); err != nil {
			return nil, err
		}
		return s.appointments.List(ctx, domain.AppointmentFilter{PatientID: p.ID})
	}
	return nil, authz.Authorize(authz.ListMyAppointments, caller, authz.Resource{})
}

// ListForDoctor lists a doctor's appointments for that doctor only.
func (s *AppointmentService) ListForDoctor(ctx context.Context, caller domain.AuthContext, doctorID int64) ([]*domain.Appointment, error) {
	d, err := s.doctors.FindByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(authz.ListMyAppointments, caller, authz.Resource{DoctorEmail: d.Email}); err != nil {
		return nil, err
	}
	return s.appointments.List(ctx, domain.AppointmentFilter{DoctorID: d.ID})
}

// History returns the audit trail of an appointment, oldest first.
func (s *AppointmentService) History(ctx context.Context, caller domain.AuthContext, id int64) ([]domain.AppointmentEvent, error) {
	a, err := s.appointments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	res, err := s.resource(ctx, a)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(authz.ViewAppointmentHistory, caller, res); err != nil {
		return nil, err
	}
	return s.audit.ListByAppointment(ctx, a.ID)
}

// resource loads the ownership facts of a. Deletes are refused while
// appointments reference a doctor or patient; a record removed directly in
// the store contributes no owner.
func (s *AppointmentService) resource(ctx context.Context, a *domain.Appointment) (authz.Resource, error) {
	var res authz.Resource
	d, err := s.doctors.FindByID(ctx, a.DoctorID)
	switch {
	case err == nil:
		res.DoctorEmail = d.Email
	case !isNotFound(err):
		return res, err
	}
	p, err := s.patients.FindByID(ctx, a.PatientID)
	switch {
	case err == nil:
		res.PatientEmail = p.Email
	case !isNotFound(err):
		return res, err
	}
	return res, nil
}

// ── Transitions ───────────────────────────────────────────────────────────────

// transition describes one guarded status change.
type transition struct {
	op      authz.Operation
	action  domain.AuditAction
	to      domain.AppointmentStatus
	guard   func(from domain.AppointmentStatus) error
	success string
}

func awaitingDecision(verb string) func(domain.AppointmentStatus) error {
	return func(from domain.AppointmentStatus) error {
		if !from.AwaitingDecision() {
			return domain.InvalidStatef("Only scheduled or pending appointments can be %s. Current status: %s", verb, from)
		}
		return nil
	}
}

var (
	confirmTransition = transition{
		op: authz.ConfirmAppointment, action: domain.ActionConfirmed, to: domain.StatusConfirmed,
		guard: awaitingDecision("confirmed"), success: "Appointment confirmed successfully",
	}
	approveTransition = transition{
		op: authz.ApproveAppointment, action: domain.ActionApproved, to: domain.StatusConfirmed,
		guard: awaitingDecision("approved"), success: "Appointment approved successfully",
	}
	rejectTransition = transition{
		op: authz.RejectAppointment, action: domain.ActionRejected, to: domain.StatusCancelled,
		guard: awaitingDecision("rejected"), success: "Appointment rejected successfully",
	}
	completeTransition = transition{
		op: authz.CompleteAppointment, action: domain.ActionCompleted, to: domain.StatusCompleted,
		guard: func(from domain.AppointmentStatus) error {
			if from != domain.StatusConfirmed {
				return domain.InvalidStatef("Only confirmed appointments can be completed. Current status: %s", from)
			}
			return nil
		},
		success: "Appointment completed successfully",
	}
	cancelTransition = transition{
		op: authz.CancelAppointment, action: domain.ActionCancelled, to: domain.StatusCancelled,
		guard: func(from domain.AppointmentStatus) error {
			switch from {
			case domain.StatusCompleted:
				return domain.InvalidStatef("Cannot cancel a completed appointment")
			case domain.StatusCancelled:
				return domain.InvalidStatef("Appointment is already cancelled")
			}
			return nil
		},
		success: "Appointment cancelled successfully",
	}
)

// apply runs the resolve, authorize, guard, persist sequence shared by all transitions.
func (s *AppointmentService) apply(ctx context.Context, caller domain.AuthContext, id int64, t transition, note string) (*domain.Appointment, error) {
	a, err := s.appointments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	res, err := s.resource(ctx, a)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(t.op, caller, res); err != nil {
		return nil, err
	}
	if err := t.guard(a.Status); err != nil {
		return nil, err
	}

	from := a.Status
	if err := s.appointments.UpdateStatus(ctx, a.ID, from, t.to, note); err != nil {
		return nil, err
	}
	a.Status = t.to
	if t.to == domain.StatusCancelled {
		a.CancellationReason = note
	}

	s.metrics.StatusChanged(from, t.to)
	s.publish(a, t.action, from, t.to, caller, note)
	s.logger.Info().
		Int64("appointment_id", a.ID).
		Str("from", string(from)).
		Str("to", string(t.to)).
		Str("by", caller.Email).
		Msg("appointment status changed")
	return a, nil
}

func (s *AppointmentService) run(ctx context.Context, caller domain.AuthContext, id int64, t transition, note string) (string, error) {
	if _, err := s.apply(ctx, caller, id, t, note); err != nil {
		return "", err
	}
	return t.success, nil
}

func (s *AppointmentService) Confirm(ctx context.Context, caller domain.AuthContext, id int64) (string, error) {
	return s.run(ctx, caller, id, confirmTransition, "")
}

func (s *AppointmentService) Complete(ctx context.Context, caller domain.AuthContext, id int64) (string, error) {
	return s.run(ctx, caller, id, completeTransition, "")
}

// Cancel cancels a non-terminal appointment and frees its slot.
func (s *AppointmentService) Cancel(ctx context.Context, caller domain.AuthContext, id int64, reason string) (string, error) {
	return s.run(ctx, caller, id, cancelTransition, s.sanitizer.Sanitize(reason))
}

// Approve confirms an appointment through the doctor-scoped route. doctorID
// must be the caller.
func (s *AppointmentService) Approve(ctx context.Context, caller domain.AuthContext, doctorID, id int64) (string, error) {
	if err := s.ownDoctor(ctx, caller, doctorID, authz.ApproveAppointment); err != nil {
		return "", err
	}
	return s.run(ctx, caller, id, approveTransition, "")
}

// Reject cancels an undecided appointment through the doctor-scoped route.
func (s *AppointmentService) Reject(ctx context.Context, caller domain.AuthContext, doctorID, id int64, reason string) (string, error) {
	if err := s.ownDoctor(ctx, caller, doctorID, authz.RejectAppointment); err != nil {
		return "", err
	}
	return s.run(ctx, caller, id, rejectTransition, s.sanitizer.Sanitize(reason))
}

func (s *AppointmentService) ownDoctor(ctx context.Context, caller domain.AuthContext, doctorID int64, op authz.Operation) error {
	d, err := s.doctors.FindByID(ctx, doctorID)
	if err != nil {
		return err
	}
	return authz.Authorize(op, caller, authz.Resource{DoctorEmail: d.Email})
}

// UpdateStatus sets an explicit status. It is held to the same ownership rule
// and transition graph as the named transitions.
func (s *AppointmentService) UpdateStatus(ctx context.Context, caller domain.AuthContext, id int64, status string) (*domain.Appointment, error) {
	to, ok := domain.ParseStatus(strings.ToUpper(strings.TrimSpace(status)))
	if !ok {
		return nil, domain.Validationf("Invalid status: %s", status)
	}
	t := transition{
		op:     authz.UpdateAppointment,
		action: domain.ActionStatusUpdate,
		to:     to,
		guard: func(from domain.AppointmentStatus) error {
			if !from.CanTransitionTo(to) {
				return domain.InvalidStatef("Cannot change appointment status from %s to %s", from, to)
			}
			return nil
		},
	}
	return s.apply(ctx, caller, id, t, "")
}

// Delete removes an appointment in any status.
func (s *AppointmentService) Delete(ctx context.Context, caller domain.AuthContext, id int64) error {
	if err := authz.Authorize(authz.DeleteAppointment, caller, authz.Resource{}); err != nil {
		return err
	}
	a, err := s.appointments.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.appointments.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(a, domain.ActionDeleted, a.Status, "", caller, "")
	s.logger.Info().Int64("appointment_id", id).Str("by", caller.Email).Msg("appointment deleted")
	return nil
}

func (s *AppointmentService) publish(a *domain.Appointment, action domain.AuditAction, from, to domain.AppointmentStatus, actor domain.AuthContext, note string) {
	if s.publisher == nil {
		return
	}
	ok := s.publisher.Publish(domain.AppointmentEvent{
		AppointmentID: a.ID,
		Action:        action,
		FromStatus:    from,
		ToStatus:      to,
		ActorEmail:    actor.Email,
		ActorRole:     actor.Role,
		Note:          note,
		At:            s.now().UTC(),
	})
	if !ok {
		s.logger.Warn().Int64("appointment_id", a.ID).Str("action", string(action)).Msg("audit event dropped")
	}
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrConflict):
		return "slot_taken"
	}
	return "error"
}
