package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/carepoint/scheduling-api/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	byID   map[int64]*domain.User
	nextID int64
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[int64]*domain.User)}
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.byID {
		if strings.EqualFold(u.Email, email) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.NotFoundf("User not found with email: %s", email)
}

func (r *stubUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.NotFound("User", id)
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) error {
	r.nextID++
	u.ID = r.nextID
	clone := *u
	r.byID[u.ID] = &clone
	return nil
}

type stubPatientRepo struct {
	byID      map[int64]*domain.Patient
	nextID    int64
	createErr error
}

func newStubPatientRepo() *stubPatientRepo {
	return &stubPatientRepo{byID: make(map[int64]*domain.Patient)}
}

func (r *stubPatientRepo) Create(_ context.Context, p *domain.Patient) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	p.ID = r.nextID
	clone := *p
	r.byID[p.ID] = &clone
	return nil
}

func (r *stubPatientRepo) FindByID(_ context.Context, id int64) (*domain.Patient, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.NotFound("Patient", id)
	}
	clone := *p
	return &clone, nil
}

func (r *stubPatientRepo) FindByEmail(_ context.Context, email string) (*domain.Patient, error) {
	for _, p := range r.byID {
		if strings.EqualFold(p.Email, email) {
			clone := *p
			return &clone, nil
		}
	}
	return nil, domain.NotFoundf("Patient not found with email: %s", email)
}

func (r *stubPatientRepo) List(_ context.Context) ([]*domain.Patient, error) {
	out := make([]*domain.Patient, 0, len(r.byID))
	for _, p := range r.byID {
		clone := *p
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubPatientRepo) Update(_ context.Context, p *domain.Patient) error {
	if _, ok := r.byID[p.ID]; !ok {
		return domain.NotFound("Patient", p.ID)
	}
	clone := *p
	r.byID[p.ID] = &clone
	return nil
}

func (r *stubPatientRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.byID[id]; !ok {
		return domain.NotFound("Patient", id)
	}
	delete(r.byID, id)
	return nil
}

func (r *stubPatientRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.byID)), nil
}

type stubDoctorRepo struct {
	byID   map[int64]*domain.Doctor
	nextID int64
}

func newStubDoctorRepo() *stubDoctorRepo {
	return &stubDoctorRepo{byID: make(map[int64]*domain.Doctor)}
}

func (r *stubDoctorRepo) Create(_ context.Context, d *domain.Doctor) error {
	r.nextID++
	d.ID = r.nextID
	clone := *d
	r.byID[d.ID] = &clone
	return nil
}

func (r *stubDoctorRepo) FindByID(_ context.Context, id int64) (*domain.Doctor, error) {
	d, ok := r.byID[id]
	if !ok {
		return nil, domain.NotFound("Doctor", id)
	}
	clone := *d
	return &clone, nil
}

func (r *stubDoctorRepo) FindByEmail(_ context.Context, email string) (*domain.Doctor, error) {
	for _, d := range r.byID {
		if strings.EqualFold(d.Email, email) {
			clone := *d
			return &clone, nil
		}
	}
	return nil, domain.NotFoundf("Doctor not found with email: %s", email)
}

// List applies the same filters the real Mongo repo would use.
func (r *stubDoctorRepo) List(_ context.Context, f domain.DoctorFilter) ([]*domain.Doctor, error) {
	var out []*domain.Doctor
	for _, d := range r.byID {
		if f.Specialization != "" && !containsFold(d.Specialization, f.Specialization) {
			continue
		}
		if f.ClinicName != "" && !containsFold(d.ClinicName, f.ClinicName) {
			continue
		}
		if f.Status != "" && d.ProfileStatus != f.Status {
			continue
		}
		clone := *d
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubDoctorRepo) Specializations(_ context.Context) ([]string, error) {
	set := map[string]struct{}{}
	for _, d := range r.byID {
		set[d.Specialization] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out, nil
}

func (r *stubDoctorRepo) Update(_ context.Context, d *domain.Doctor) error {
	if _, ok := r.byID[d.ID]; !ok {
		return domain.NotFound("Doctor", d.ID)
	}
	clone := *d
	r.byID[d.ID] = &clone
	return nil
}

func (r *stubDoctorRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.byID[id]; !ok {
		return domain.NotFound("Doctor", id)
	}
	delete(r.byID, id)
	return nil
}

func (r *stubDoctorRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.byID)), nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

type stubAvailabilityRepo struct {
	byDoctor map[int64][]domain.DoctorAvailability
	nextID   int64
}

func newStubAvailabilityRepo() *stubAvailabilityRepo {
	return &stubAvailabilityRepo{byDoctor: make(map[int64][]domain.DoctorAvailability)}
}

func (r *stubAvailabilityRepo) Replace(_ context.Context, doctorID int64, windows []domain.DoctorAvailability) error {
	stored := make([]domain.DoctorAvailability, len(windows))
	for i := range windows {
		r.nextID++
		windows[i].ID = r.nextID
		stored[i] = windows[i]
	}
	r.byDoctor[doctorID] = stored
	return nil
}

func (r *stubAvailabilityRepo) ListByDoctor(_ context.Context, doctorID int64) ([]domain.DoctorAvailability, error) {
	return append([]domain.DoctorAvailability(nil), r.byDoctor[doctorID]...), nil
}

// stubAppointmentRepo enforces slot uniqueness among non-cancelled
// appointments, mirroring the partial unique index.
type stubAppointmentRepo struct {
	mu        sync.Mutex
	byID      map[int64]*domain.Appointment
	nextID    int64
	createErr error
	// existsOverride hides existing bookings from ExistsActiveAtSlot so the
	// insert-time uniqueness path can be exercised.
	existsOverride bool
}

func newStubAppointmentRepo() *stubAppointmentRepo {
	return &stubAppointmentRepo{byID: make(map[int64]*domain.Appointment)}
}

func (r *stubAppointmentRepo) Create(_ context.Context, a *domain.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	for _, other := range r.byID {
		if other.Status != domain.StatusCancelled && other.SlotKey() == a.SlotKey() {
			return domain.Conflictf("duplicate slot")
		}
	}
	r.nextID++
	a.ID = r.nextID
	clone := *a
	r.byID[a.ID] = &clone
	return nil
}

func (r *stubAppointmentRepo) FindByID(_ context.Context, id int64) (*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.NotFound("Appointment", id)
	}
	clone := *a
	return &clone, nil
}

func (r *stubAppointmentRepo) List(_ context.Context, f domain.AppointmentFilter) ([]*domain.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Appointment
	for _, a := range r.byID {
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if f.DoctorID != 0 && a.DoctorID != f.DoctorID {
			continue
		}
		if f.PatientID != 0 && a.PatientID != f.PatientID {
			continue
		}
		if f.StartDate != "" && a.AppointmentDate < f.StartDate {
			continue
		}
		if f.EndDate != "" && a.AppointmentDate > f.EndDate {
			continue
		}
		clone := *a
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubAppointmentRepo) ExistsActiveAtSlot(_ context.Context, doctorID int64, date, clock string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.existsOverride {
		return false, nil
	}
	key := domain.SlotKey(doctorID, date, clock)
	for _, a := range r.byID {
		if a.Status != domain.StatusCancelled && a.SlotKey() == key {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubAppointmentRepo) CountByDoctor(_ context.Context, doctorID int64) (int64, error) {
	return r.countWhere(func(a *domain.Appointment) bool { return a.DoctorID == doctorID }), nil
}

func (r *stubAppointmentRepo) CountByPatient(_ context.Context, patientID int64) (int64, error) {
	return r.countWhere(func(a *domain.Appointment) bool { return a.PatientID == patientID }), nil
}

func (r *stubAppointmentRepo) countWhere(match func(*domain.Appointment) bool) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, a := range r.byID {
		if match(a) {
			n++
		}
	}
	return n
}

func (r *stubAppointmentRepo) UpdateStatus(_ context.Context, id int64, from, to domain.AppointmentStatus, note string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return domain.NotFound("Appointment", id)
	}
	if a.Status != from {
		return domain.InvalidStatef("Appointment %d was modified concurrently", id)
	}
	a.Status = to
	if to == domain.StatusCancelled {
		a.CancellationReason = note
	}
	return nil
}

func (r *stubAppointmentRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.NotFound("Appointment", id)
	}
	delete(r.byID, id)
	return nil
}

func (r *stubAppointmentRepo) status(id int64) domain.AppointmentStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byID[id].Status
}

type stubAuditRepo struct {
	events    []domain.AppointmentEvent
	insertErr error
}

func (r *stubAuditRepo) Insert(_ context.Context, e *domain.AppointmentEvent) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.events = append(r.events, *e)
	return nil
}

func (r *stubAuditRepo) ListByAppointment(_ context.Context, id int64) ([]domain.AppointmentEvent, error) {
	var out []domain.AppointmentEvent
	for _, e := range r.events {
		if e.AppointmentID == id {
			out = append(out, e)
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Collaborator stubs
// ---------------------------------------------------------------------------

type trimSanitizer struct{}

func (trimSanitizer) Sanitize(s string) string {
	s = strings.ReplaceAll(s, "<b>", "")
	s = strings.ReplaceAll(s, "</b>", "")
	return strings.TrimSpace(s)
}

type stubPublisher struct {
	events []domain.AppointmentEvent
	full   bool
}

func (p *stubPublisher) Publish(e domain.AppointmentEvent) bool {
	if p.full {
		return false
	}
	p.events = append(p.events, e)
	return true
}

type stubLocker struct {
	held       map[string]string
	acquireErr error
	released   []string
}

func newStubLocker() *stubLocker { return &stubLocker{held: make(map[string]string)} }

func (l *stubLocker) Acquire(_ context.Context, key string) (string, bool, error) {
	if l.acquireErr != nil {
		return "", false, l.acquireErr
	}
	if _, busy := l.held[key]; busy {
		return "", false, nil
	}
	l.held[key] = "token-" + key
	return l.held[key], true, nil
}

func (l *stubLocker) Release(_ context.Context, key, token string) error {
	if l.held[key] == token {
		delete(l.held, key)
	}
	l.released = append(l.released, key)
	return nil
}

type stubDenylist struct {
	revoked map[string]time.Time
	err     error
}

func newStubDenylist() *stubDenylist { return &stubDenylist{revoked: make(map[string]time.Time)} }

func (d *stubDenylist) Revoke(_ context.Context, id string, until time.Time) error {
	if d.err != nil {
		return d.err
	}
	d.revoked[id] = until
	return nil
}

func (d *stubDenylist) IsRevoked(_ context.Context, id string) (bool, error) {
	if d.err != nil {
		return false, d.err
	}
	_, ok := d.revoked[id]
	return ok, nil
}

// fixedClock returns a clock frozen at t.
func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

var (
	adminCtx = domain.AuthContext{Email: "admin@clinic.test", Role: domain.RoleAdmin}
)

type stubMetrics struct {
	booked      int
	rejected    []string
	transitions []string
	logins      []bool
}

func (m *stubMetrics) BookingSucceeded()             { m.booked++ }
func (m *stubMetrics) BookingRejected(reason string) { m.rejected = append(m.rejected, reason) }
func (m *stubMetrics) StatusChanged(from, to domain.AppointmentStatus) {
	m.transitions = append(m.transitions, string(from)+"->"+string(to))
}
func (m *stubMetrics) LoginAttempt(success bool) { m.logins = append(m.logins, success) }

type stubEmailRegistry struct {
	mu      sync.Mutex
	claimed map[string]bool
}

func newStubEmailRegistry() *stubEmailRegistry {
	return &stubEmailRegistry{claimed: make(map[string]bool)}
}

func (r *stubEmailRegistry) Claim(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.claimed[email] {
		return domain.Conflictf("Email already exists")
	}
	r.claimed[email] = true
	return nil
}

func (r *stubEmailRegistry) Release(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.claimed, email)
	return nil
}

func (r *stubEmailRegistry) holds(email string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.claimed[email]
}
