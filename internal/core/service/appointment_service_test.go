package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/carepoint/scheduling-api/internal/core/domain"
	"github.com/carepoint/scheduling-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Fixture: two doctors, two patients, clock frozen at 2030-06-10 09:30 UTC.
// ---------------------------------------------------------------------------

var clinicNow = time.Date(2030, 6, 10, 9, 30, 0, 0, time.UTC)

var (
	houseCtx  = domain.AuthContext{Email: "house@clinic.test", Role: domain.RoleDoctor}
	wilsonCtx = domain.AuthContext{Email: "wilson@clinic.test", Role: domain.RoleDoctor}
	janeCtx   = domain.AuthContext{Email: "jane@mail.test", Role: domain.RolePatient}
	bobCtx    = domain.AuthContext{Email: "bob@mail.test", Role: domain.RolePatient}
)

type appointmentFixture struct {
	svc          *AppointmentService
	appointments *stubAppointmentRepo
	audit        *stubAuditRepo
	publisher    *stubPublisher
	house, jane  int64
	wilson, bob  int64
}

func newAppointmentFixture(t *testing.T) *appointmentFixture {
	t.Helper()
	ctx := context.Background()
	patients := newStubPatientRepo()
	doctors := newStubDoctorRepo()

	house := &domain.Doctor{Name: "Gregory House", Email: houseCtx.Email, Specialization: "Diagnostics"}
	wilson := &domain.Doctor{Name: "James Wilson", Email: wilsonCtx.Email, Specialization: "Oncology"}
	jane := &domain.Patient{Name: "Jane Roe", Email: janeCtx.Email}
	bob := &domain.Patient{Name: "Bob Poe", Email: bobCtx.Email}
	for _, d := range []*domain.Doctor{house, wilson} {
		_ = doctors.Create(ctx, d)
	}
	for _, p := range []*domain.Patient{jane, bob} {
		_ = patients.Create(ctx, p)
	}

	f := &appointmentFixture{
		appointments: newStubAppointmentRepo(),
		audit:        &stubAuditRepo{},
		publisher:    &stubPublisher{},
		house:        house.ID,
		wilson:       wilson.ID,
		jane:         jane.ID,
		bob:          bob.ID,
	}
	f.svc = NewAppointmentService(f.appointments, patients, doctors, f.audit, trimSanitizer{}, time.UTC, zerolog.Nop()).
		WithPublisher(f.publisher)
	f.svc.now = fixedClock(clinicNow)
	return f
}

func (f *appointmentFixture) book(t *testing.T, patientID, doctorID int64, date, clock string) *domain.Appointment {
	t.Helper()
	a, err := f.svc.Book(context.Background(), adminCtx, ports.BookAppointmentInput{
		PatientID: patientID, DoctorID: doctorID, Date: date, Time: clock, Reason: "checkup",
	})
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	return a
}

func wantKind(t *testing.T, err, kind error, msg string) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("expected %v, got %v", kind, err)
	}
	if msg != "" && err.Error() != msg {
		t.Fatalf("expected message %q, got %q", msg, err.Error())
	}
}

// ---------------------------------------------------------------------------
// Booking
// ---------------------------------------------------------------------------

func TestBook_HappyPathThenSameSlotConflicts(t *testing.T) {
	f := newAppointmentFixture(t)

	a := f.book(t, f.jane, f.house, "2030-06-11", "10:00")
	if a.ID == 0 || a.Status != domain.StatusScheduled {
		t.Fatalf("unexpected appointment %+v", a)
	}
	if !a.CreatedAt.Equal(clinicNow) {
		t.Fatalf("expected createdAt %v, got %v", clinicNow, a.CreatedAt)
	}
	if len(f.publisher.events) != 1 || f.publisher.events[0].Action != domain.ActionBooked {
		t.Fatalf("expected a BOOKED audit event, got %+v", f.publisher.events)
	}

	_, err := f.svc.Book(context.Background(), adminCtx, ports.BookAppointmentInput{
		PatientID: f.bob, DoctorID: f.house, Date: "2030-06-11", Time: "10:00", Reason: "second opinion",
	})
	wantKind(t, err, domain.ErrConflict, "Doctor already has an appointment at this time on 2030-06-11 at 10:00")
}

func TestBook_Validation(t *testing.T) {
	f := newAppointmentFixture(t)
	cases := []struct {
		name string
		in   ports.BookAppointmentInput
		msg  string
	}{
		{"missing reason", ports.BookAppointmentInput{PatientID: f.jane, DoctorID: f.house, Date: "2030-06-11", Time: "10:00", Reason: "  "},
			"All appointment details are required"},
		{"missing doctor", ports.BookAppointmentInput{PatientID: f.jane, Date: "2030-06-11", Time: "10:00", Reason: "x"},
			"All appointment details are required"},
		{"reason empty after sanitizing", ports.BookAppointmentInput{PatientID: f.jane, DoctorID: f.house, Date: "2030-06-11", Time: "10:00", Reason: "<b></b>"},
			"All appointment details are required"},
		{"past date", ports.BookAppointmentInput{PatientID: f.jane, DoctorID: f.house, Date: "2030-06-09", Time: "23:00", Reason: "x"},
			"Cannot book appointment for past dates"},
		{"past time today", ports.BookAppointmentInput{PatientID: f.jane, DoctorID: f.house, Date: "2030-06-10", Time: "09:29", Reason: "x"},
			"Cannot book appointment for past time today"},
		{"bad date", ports.BookAppointmentInput{PatientID: f.jane, DoctorID: f.house, Date: "11/06/2030", Time: "10:00", Reason: "x"},
			"Invalid date format. Use YYYY-MM-DD"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Book(context.Background(), adminCtx, tc.in)
			wantKind(t, err, domain.ErrValidation, tc.msg)
		})
	}
	if len(f.appointments.byID) != 0 {
		t.Fatal("rejected bookings must not persist anything")
	}
}

func TestBook_CurrentMinuteTodayIsAllowed(t *testing.T) {
	f := newAppointmentFixture(t)
	a := f.book(t, f.jane, f.house, "2030-06-10", "09:30:00")
	if a.AppointmentTime != "09:30" {
		t.Fatalf("expected canonical time 09:30, got %s", a.AppointmentTime)
	}
}

func TestBook_SlotStartedSecondsAgoIsPast(t *testing.T) {
	f := newAppointmentFixture(t)
	f.svc.now = fixedClock(time.Date(2030, 6, 10, 10, 0, 59, 0, time.UTC))

	_, err := f.svc.Book(context.Background(), adminCtx, ports.BookAppointmentInput{
		PatientID: f.jane, DoctorID: f.house, Date: "2030-06-10", Time: "10:00", Reason: "x",
	})
	wantKind(t, err, domain.ErrValidation, "Cannot book appointment for past time today")

	if a := f.book(t, f.jane, f.house, "2030-06-10", "10:01"); a.AppointmentTime != "10:01" {
		t.Fatalf("expected 10:01, got %s", a.AppointmentTime)
	}
}

func TestBook_ReportsMetrics(t *testing.T) {
	f := newAppointmentFixture(t)
	m := &stubMetrics{}
	f.svc.WithMetrics(m)

	a := f.book(t, f.jane, f.house, "2030-06-11", "10:00")
	_, err := f.svc.Book(context.Background(), adminCtx, ports.BookAppointmentInput{
		PatientID: f.bob, DoctorID: f.house, Date: "2030-06-11", Time: "10:00", Reason: "x",
	})
	wantKind(t, err, domain.ErrConflict, "")
	_, err = f.svc.Book(context.Background(), adminCtx, ports.BookAppointmentInput{
		PatientID: f.bob, DoctorID: f.house, Date: "2030-06-09", Time: "10:00", Reason: "x",
	})
	wantKind(t, err, domain.ErrValidation, "")
	if _, err := f.svc.Confirm(context.Background(), houseCtx, a.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	if m.booked != 1 {
		t.Fatalf("expected one booking, got %d", m.booked)
	}
	if len(m.rejected) != 2 || m.rejected[0] != "slot_taken" || m.rejected[1] != "validation" {
		t.Fatalf("unexpected rejections %v", m.rejected)
	}
	if len(m.transitions) != 1 || m.transitions[0] != "SCHEDULED->CONFIRMED" {
		t.Fatalf("unexpected transitions %v", m.transitions)
	}
}

func TestBook_UnknownReferences(t *testing.T) {
	f := newAppointmentFixture(t)
	_, err := f.svc.Book(context.Background(), adminCtx, ports.BookAppointmentInput{
		PatientID: 99, DoctorID: f.house, Date: "2030-06-11", Time: "10:00", Reason: "x",
	})
	wantKind(t, err, domain.ErrNotFound, "Patient not found with ID: 99")

	_, err = f.svc.Book(context.Background(), adminCtx, ports.BookAppointmentInput{
		PatientID: f.jane, DoctorID: 77, Date: "2030-06-11", Time: "10:00", Reason: "x",
	})
	wantKind(t, err, domain.ErrNotFound, "Doctor not found with ID: 77")
}

func TestBook_InsertRaceSurfacesAsConflict(t *testing.T) {
	f := newAppointmentFixture(t)
	f.book(t, f.jane, f.house, "2030-06-11", "10:00")
	f.appointments.existsOverride = true

	_, err := f.svc.Book(context.Background(), adminCtx, ports.BookAppointmentInput{
		PatientID: f.bob, DoctorID: f.house, Date: "2030-06-11", Time: "10:00", Reason: "x",
	})
	wantKind(t, err, domain.ErrConflict, "Doctor already has an appointment at this time on 2030-06-11 at 10:00")
}

func TestBook_ConcurrentSameSlotSingleWinner(t *testing.T) {
	f := newAppointmentFixture(t)
	f.svc.publisher = nil

	const attempts = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Book(context.Background(), adminCtx, ports.BookAppointmentInput{
				PatientID: f.jane, DoctorID: f.house, Date: "2030-06-12", Time: "11:00", Reason: "race",
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, domain.ErrConflict):
				conflicts++
			}
		}()
	}
	wg.Wait()

	if wins != 1 || conflicts != attempts-1 {
		t.Fatalf("expected 1 winner and %d conflicts, got %d and %d", attempts-1, wins, conflicts)
	}
}

func TestBook_SlotLock(t *testing.T) {
	f := newAppointmentFixture(t)
	locker := newStubLocker()
	f.svc.WithSlotLocker(locker)

	a := f.book(t, f.jane, f.house, "2030-06-11", "10:00")
	if len(locker.held) != 0 || len(locker.released) != 1 || locker.released[0] != a.SlotKey() {
		t.Fatalf("lock not released: held=%v released=%v", locker.held, locker.released)
	}

	locker.held[domain.SlotKey(f.house, "2030-06-11", "11:00")] = "other"
	_, err := f.svc.Book(context.Background(), adminCtx, ports.BookAppointmentInput{
		PatientID: f.jane, DoctorID: f.house, Date: "2030-06-11", Time: "11:00", Reason: "x",
	})
	wantKind(t, err, domain.ErrConflict, "Another booking for this time slot is in progress")

	locker.acquireErr = errors.New("redis down")
	f.book(t, f.jane, f.house, "2030-06-11", "12:00")
}

// ---------------------------------------------------------------------------
// Identity-scoped booking
// ---------------------------------------------------------------------------

func TestBookFor_PatientAlwaysBooksForThemself(t *testing.T) {
	f := newAppointmentFixture(t)
	a, err := f.svc.BookFor(context.Background(), janeCtx, ports.BookAppointmentInput{
		PatientID: f.bob, DoctorID: f.house, Date: "2030-06-11", Time: "10:00", Reason: "checkup",
	})
	if err != nil {
		t.Fatalf("BookFor: %v", err)
	}
	if a.PatientID != f.jane {
		t.Fatalf("expected booking under patient %d, got %d", f.jane, a.PatientID)
	}
}

func TestBookFor_RoleRules(t *testing.T) {
	f := newAppointmentFixture(t)
	in := ports.BookAppointmentInput{DoctorID: f.house, Date: "2030-06-11", Time: "10:00", Reason: "x"}

	_, err := f.svc.BookFor(context.Background(), adminCtx, in)
	wantKind(t, err, domain.ErrValidation, "Patient ID is required for admin users")

	_, err = f.svc.BookFor(context.Background(), houseCtx, in)
	wantKind(t, err, domain.ErrForbidden, "")

	ghost := domain.AuthContext{Email: "ghost@mail.test", Role: domain.RolePatient}
	_, err = f.svc.BookFor(context.Background(), ghost, in)
	wantKind(t, err, domain.ErrForbidden, "Patient not found with email: ghost@mail.test")

	in.PatientID = f.bob
	a, err := f.svc.BookFor(context.Background(), adminCtx, in)
	if err != nil || a.PatientID != f.bob {
		t.Fatalf("admin booking failed: %v %+v", err, a)
	}
}

// ---------------------------------------------------------------------------
// Transitions
// ---------------------------------------------------------------------------

func TestConfirm_OwnerOnly(t *testing.T) {
	f := newAppointmentFixture(t)
	a := f.book(t, f.jane, f.house, "2030-06-11", "10:00")

	_, err := f.svc.Confirm(context.Background(), wilsonCtx, a.ID)
	wantKind(t, err, domain.ErrForbidden, "You can only confirm your own appointments")
	if f.appointments.status(a.ID) != domain.StatusScheduled {
		t.Fatal("state must be unchanged after a forbidden confirm")
	}

	msg, err := f.svc.Confirm(context.Background(), houseCtx, a.ID)
	if err != nil || msg != "Appointment confirmed successfully" {
		t.Fatalf("confirm: %q %v", msg, err)
	}
	if f.appointments.status(a.ID) != domain.StatusConfirmed {
		t.Fatal("expected CONFIRMED")
	}

	_, err = f.svc.Confirm(context.Background(), houseCtx, a.ID)
	wantKind(t, err, domain.ErrInvalidState, "Only scheduled or pending appointments can be confirmed. Current status: CONFIRMED")
}

func TestComplete_RequiresConfirmed(t *testing.T) {
	f := newAppointmentFixture(t)
	a := f.book(t, f.jane, f.house, "2030-06-11", "10:00")

	_, err := f.svc.Complete(context.Background(), houseCtx, a.ID)
	wantKind(t, err, domain.ErrInvalidState, "Only confirmed appointments can be completed. Current status: SCHEDULED")
	if f.appointments.status(a.ID) != domain.StatusScheduled {
		t.Fatal("state must be unchanged")
	}

	if _, err := f.svc.Confirm(context.Background(), adminCtx, a.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if _, err := f.svc.Complete(context.Background(), adminCtx, a.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	_, err = f.svc.Cancel(context.Background(), janeCtx, a.ID, "")
	wantKind(t, err, domain.ErrInvalidState, "Cannot cancel a completed appointment")
	if f.appointments.status(a.ID) != domain.StatusCompleted {
		t.Fatal("completed appointment must stay completed")
	}
}

func TestCancel_FreesSlotAndStoresReason(t *testing.T) {
	f := newAppointmentFixture(t)
	a := f.book(t, f.jane, f.house, "2030-06-11", "10:00")

	_, err := f.svc.Cancel(context.Background(), bobCtx, a.ID, "")
	wantKind(t, err, domain.ErrForbidden, "You can only cancel your own appointments")

	msg, err := f.svc.Cancel(context.Background(), janeCtx, a.ID, " travelling ")
	if err != nil || msg != "Appointment cancelled successfully" {
		t.Fatalf("cancel: %q %v", msg, err)
	}
	if got := f.appointments.byID[a.ID].CancellationReason; got != "travelling" {
		t.Fatalf("expected cancellation reason, got %q", got)
	}

	_, err = f.svc.Cancel(context.Background(), janeCtx, a.ID, "")
	wantKind(t, err, domain.ErrInvalidState, "Appointment is already cancelled")

	again := f.book(t, f.bob, f.house, "2030-06-11", "10:00")
	if again.ID == a.ID {
		t.Fatal("expected a new appointment on the freed slot")
	}
}

func TestApproveReject_DoctorRoute(t *testing.T) {
	f := newAppointmentFixture(t)
	a := f.book(t, f.jane, f.house, "2030-06-11", "10:00")
	b := f.book(t, f.bob, f.house, "2030-06-11", "11:00")

	_, err := f.svc.Approve(context.Background(), wilsonCtx, f.house, a.ID)
	wantKind(t, err, domain.ErrForbidden, "You can only approve your own appointments")

	_, err = f.svc.Approve(context.Background(), wilsonCtx, f.wilson, a.ID)
	wantKind(t, err, domain.ErrForbidden, "You can only approve your own appointments")

	if msg, err := f.svc.Approve(context.Background(), houseCtx, f.house, a.ID); err != nil || msg != "Appointment approved successfully" {
		t.Fatalf("approve: %q %v", msg, err)
	}

	_, err = f.svc.Reject(context.Background(), houseCtx, f.house, a.ID, "")
	wantKind(t, err, domain.ErrInvalidState, "Only scheduled or pending appointments can be rejected. Current status: CONFIRMED")

	if _, err := f.svc.Reject(context.Background(), houseCtx, f.house, b.ID, "fully booked"); err != nil {
		t.Fatalf("reject: %v", err)
	}
	got := f.appointments.byID[b.ID]
	if got.Status != domain.StatusCancelled || got.CancellationReason != "fully booked" {
		t.Fatalf("unexpected rejected appointment %+v", got)
	}

	_, err = f.svc.Approve(context.Background(), adminCtx, f.house, b.ID)
	wantKind(t, err, domain.ErrInvalidState, "")
}

func TestApproveReject_AdminOnAnyDoctor(t *testing.T) {
	f := newAppointmentFixture(t)
	a := f.book(t, f.jane, f.house, "2030-06-12", "09:00")
	b := f.book(t, f.bob, f.wilson, "2030-06-12", "09:00")

	if msg, err := f.svc.Approve(context.Background(), adminCtx, f.house, a.ID); err != nil || msg != "Appointment approved successfully" {
		t.Fatalf("admin approve: %q %v", msg, err)
	}
	if f.appointments.status(a.ID) != domain.StatusConfirmed {
		t.Fatalf("expected CONFIRMED, got %s", f.appointments.status(a.ID))
	}

	if _, err := f.svc.Reject(context.Background(), adminCtx, f.wilson, b.ID, "clinic closed"); err != nil {
		t.Fatalf("admin reject: %v", err)
	}
	if got := f.appointments.byID[b.ID]; got.Status != domain.StatusCancelled || got.CancellationReason != "clinic closed" {
		t.Fatalf("unexpected rejected appointment %+v", got)
	}

	_, err := f.svc.Approve(context.Background(), janeCtx, f.house, a.ID)
	wantKind(t, err, domain.ErrForbidden, "You can only approve your own appointments")
}

func TestUpdateStatus_FollowsGraphAndOwnership(t *testing.T) {
	f := newAppointmentFixture(t)
	a := f.book(t, f.jane, f.house, "2030-06-11", "10:00")

	_, err := f.svc.UpdateStatus(context.Background(), houseCtx, a.ID, "bogus")
	wantKind(t, err, domain.ErrValidation, "Invalid status: bogus")

	_, err = f.svc.UpdateStatus(context.Background(), wilsonCtx, a.ID, "CONFIRMED")
	wantKind(t, err, domain.ErrForbidden, "")

	_, err = f.svc.UpdateStatus(context.Background(), houseCtx, a.ID, "COMPLETED")
	wantKind(t, err, domain.ErrInvalidState, "Cannot change appointment status from SCHEDULED to COMPLETED")

	updated, err := f.svc.UpdateStatus(context.Background(), houseCtx, a.ID, "confirmed")
	if err != nil || updated.Status != domain.StatusConfirmed {
		t.Fatalf("update status: %+v %v", updated, err)
	}

	_, err = f.svc.UpdateStatus(context.Background(), adminCtx, a.ID, "SCHEDULED")
	wantKind(t, err, domain.ErrInvalidState, "")
}

func TestTransition_AuditTrail(t *testing.T) {
	f := newAppointmentFixture(t)
	a := f.book(t, f.jane, f.house, "2030-06-11", "10:00")
	if _, err := f.svc.Confirm(context.Background(), houseCtx, a.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	if len(f.publisher.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(f.publisher.events))
	}
	ev := f.publisher.events[1]
	if ev.Action != domain.ActionConfirmed || ev.FromStatus != domain.StatusScheduled ||
		ev.ToStatus != domain.StatusConfirmed || ev.ActorEmail != houseCtx.Email {
		t.Fatalf("unexpected event %+v", ev)
	}

	f.publisher.full = true
	if _, err := f.svc.Complete(context.Background(), houseCtx, a.ID); err != nil {
		t.Fatalf("a full audit queue must not fail the request: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Deletion and queries
// ---------------------------------------------------------------------------

func TestDelete(t *testing.T) {
	f := newAppointmentFixture(t)
	a := f.book(t, f.jane, f.house, "2030-06-11", "10:00")

	err := f.svc.Delete(context.Background(), adminCtx, 42)
	wantKind(t, err, domain.ErrNotFound, "Appointment not found with ID: 42")

	err = f.svc.Delete(context.Background(), houseCtx, a.ID)
	wantKind(t, err, domain.ErrForbidden, "")

	if err := f.svc.Delete(context.Background(), adminCtx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err = f.svc.GetByID(context.Background(), adminCtx, a.ID)
	wantKind(t, err, domain.ErrNotFound, "")
}

func TestQueries_Scoping(t *testing.T) {
	f := newAppointmentFixture(t)
	a := f.book(t, f.jane, f.house, "2030-06-11", "10:00")
	f.book(t, f.bob, f.wilson, "2030-06-20", "10:00")

	if _, err := f.svc.GetByID(context.Background(), janeCtx, a.ID); err != nil {
		t.Fatalf("owner read: %v", err)
	}
	_, err := f.svc.GetByID(context.Background(), bobCtx, a.ID)
	wantKind(t, err, domain.ErrForbidden, "You can only view your own appointments")

	_, err = f.svc.GetByPatientID(context.Background(), bobCtx, f.jane)
	wantKind(t, err, domain.ErrForbidden, "")
	_, err = f.svc.GetByPatientID(context.Background(), adminCtx, 99)
	wantKind(t, err, domain.ErrNotFound, "Patient not found with ID: 99")

	list, err := f.svc.GetByDoctorID(context.Background(), wilsonCtx, f.house)
	if err != nil || len(list) != 1 {
		t.Fatalf("by doctor: %v %d", err, len(list))
	}

	mine, err := f.svc.GetMine(context.Background(), houseCtx)
	if err != nil || len(mine) != 1 || mine[0].ID != a.ID {
		t.Fatalf("doctor mine: %v %+v", err, mine)
	}
	mine, err = f.svc.GetMine(context.Background(), bobCtx)
	if err != nil || len(mine) != 1 || mine[0].PatientID != f.bob {
		t.Fatalf("patient mine: %v %+v", err, mine)
	}

	_, err = f.svc.ListForDoctor(context.Background(), wilsonCtx, f.house)
	wantKind(t, err, domain.ErrForbidden, "")
}

func TestGetByDateRange(t *testing.T) {
	f := newAppointmentFixture(t)
	f.book(t, f.jane, f.house, "2030-06-11", "10:00")
	f.book(t, f.bob, f.wilson, "2030-06-20", "10:00")

	got, err := f.svc.GetByDateRange(context.Background(), adminCtx, "2030-06-10", "2030-06-15")
	if err != nil || len(got) != 1 {
		t.Fatalf("range: %v %d", err, len(got))
	}

	_, err = f.svc.GetByDateRange(context.Background(), adminCtx, "2030-06-15", "2030-06-10")
	wantKind(t, err, domain.ErrValidation, "Start date cannot be after end date")

	_, err = f.svc.List(context.Background(), adminCtx, domain.AppointmentFilter{StartDate: "2030-06-10"})
	wantKind(t, err, domain.ErrValidation, "Start date and end date are required")

	_, err = f.svc.List(context.Background(), janeCtx, domain.AppointmentFilter{})
	wantKind(t, err, domain.ErrForbidden, "")
}

func TestHistory(t *testing.T) {
	f := newAppointmentFixture(t)
	a := f.book(t, f.jane, f.house, "2030-06-11", "10:00")
	f.audit.events = append(f.audit.events, f.publisher.events...)

	events, err := f.svc.History(context.Background(), houseCtx, a.ID)
	if err != nil || len(events) != 1 {
		t.Fatalf("history: %v %+v", err, events)
	}
	_, err = f.svc.History(context.Background(), wilsonCtx, a.ID)
	wantKind(t, err, domain.ErrForbidden, "")
}
