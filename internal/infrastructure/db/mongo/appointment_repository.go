package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carepoint/scheduling-api/internal/core/domain"
	"github.com/carepoint/scheduling-api/internal/core/ports"
)

const collectionAppointments = "appointments"

var _ ports.AppointmentRepository = (*AppointmentRepository)(nil)

// AppointmentRepository implements ports.AppointmentRepository using MongoDB.
//
// Every active appointment carries a slot_key covered by a unique partial
// index, so two concurrent bookings of the same doctor slot cannot both
// succeed. Cancelling unsets the key and frees the slot.
type AppointmentRepository struct {
	col *mongo.Collection
	seq sequence
}

func NewAppointmentRepository(db *mongo.Database) *AppointmentRepository {
	return &AppointmentRepository{
		col: db.Collection(collectionAppointments),
		seq: newSequence(db, collectionAppointments),
	}
}

type appointmentDoc struct {
	ID                 int64     `bson:"_id"`
	PatientID          int64     `bson:"patient_id"`
	DoctorID           int64     `bson:"doctor_id"`
	AppointmentDate    string    `bson:"appointment_date"`
	AppointmentTime    string    `bson:"appointment_time"`
	Reason             string    `bson:"reason"`
	Status             string    `bson:"status"`
	CancellationReason string    `bson:"cancellation_reason,omitempty"`
	SlotKey            string    `bson:"slot_key,omitempty"`
	CreatedAt          time.Time `bson:"created_at"`
}

func (d appointmentDoc) toDomain() *domain.Appointment {
	return &domain.Appointment{
		ID:                 d.ID,
		PatientID:          d.PatientID,
		DoctorID:           d.DoctorID,
		AppointmentDate:    d.AppointmentDate,
		AppointmentTime:    d.AppointmentTime,
		Reason:             d.Reason,
		Status:             domain.AppointmentStatus(d.Status),
		CancellationReason: d.CancellationReason,
		CreatedAt:          d.CreatedAt,
	}
}

// EnsureIndexes creates the slot uniqueness index and the listing indexes.
func (r *AppointmentRepository) EnsureIndexes(ctx context.Context) error {
	slot := mongo.IndexModel{
		Keys: bson.D{{Key: "slot_key", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"slot_key": bson.M{"$exists": true}}),
	}
	return createIndexes(ctx, r.col,
		slot,
		mongo.IndexModel{Keys: bson.D{{Key: "doctor_id", Value: 1}, {Key: "appointment_date", Value: 1}}},
		mongo.IndexModel{Keys: bson.D{{Key: "patient_id", Value: 1}}},
		mongo.IndexModel{Keys: bson.D{{Key: "status", Value: 1}}},
	)
}

func (r *AppointmentRepository) Create(ctx context.Context, a *domain.Appointment) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.seq.next(ctx)
	if err != nil {
		return err
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	doc := appointmentDoc{
		ID:                 id,
		PatientID:          a.PatientID,
		DoctorID:           a.DoctorID,
		AppointmentDate:    a.AppointmentDate,
		AppointmentTime:    a.AppointmentTime,
		Reason:             a.Reason,
		Status:             string(a.Status),
		CancellationReason: a.CancellationReason,
		CreatedAt:          a.CreatedAt,
	}
	if a.Status != domain.StatusCancelled {
		doc.SlotKey = a.SlotKey()
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.Conflictf("Doctor already has an appointment at this time on %s at %s",
				a.AppointmentDate, a.AppointmentTime)
		}
		return fmt.Errorf("insert appointment: %w", err)
	}
	a.ID = id
	return nil
}

func (r *AppointmentRepository) FindByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc appointmentDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, domain.NotFound("Appointment", id)
		}
		return nil, fmt.Errorf("find appointment: %w", err)
	}
	return doc.toDomain(), nil
}

func appointmentFilter(f domain.AppointmentFilter) bson.M {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}
	if f.DoctorID != 0 {
		filter["doctor_id"] = f.DoctorID
	}
	if f.PatientID != 0 {
		filter["patient_id"] = f.PatientID
	}
	// Dates are stored as YYYY-MM-DD, so lexical order is calendar order.
	dates := bson.M{}
	if f.StartDate != "" {
		dates["$gte"] = f.StartDate
	}
	if f.EndDate != "" {
		dates["$lte"] = f.EndDate
	}
	if len(dates) > 0 {
		filter["appointment_date"] = dates
	}
	return filter
}

// List returns appointments matching f ordered by date, time and id.
func (r *AppointmentRepository) List(ctx context.Context, f domain.AppointmentFilter) ([]*domain.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{
		{Key: "appointment_date", Value: 1},
		{Key: "appointment_time", Value: 1},
		{Key: "_id", Value: 1},
	})
	cursor, err := r.col.Find(ctx, appointmentFilter(f), opts)
	if err != nil {
		return nil, fmt.Errorf("find appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []appointmentDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode appointments: %w", err)
	}
	out := make([]*domain.Appointment, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *AppointmentRepository) ExistsActiveAtSlot(ctx context.Context, doctorID int64, date, clock string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"doctor_id":        doctorID,
		"appointment_date": date,
		"appointment_time": clock,
		"status":           bson.M{"$ne": string(domain.StatusCancelled)},
	}
	n, err := r.col.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count slot appointments: %w", err)
	}
	return n > 0, nil
}

func (r *AppointmentRepository) CountByDoctor(ctx context.Context, doctorID int64) (int64, error) {
	return r.count(ctx, bson.M{"doctor_id": doctorID})
}

func (r *AppointmentRepository) CountByPatient(ctx context.Context, patientID int64) (int64, error) {
	return r.count(ctx, bson.M{"patient_id": patientID})
}

func (r *AppointmentRepository) count(ctx context.Context, filter bson.M) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count appointments: %w", err)
	}
	return n, nil
}

// UpdateStatus applies the transition with a compare-and-set on the current
// status, so two racing transitions cannot both win.
func (r *AppointmentRepository) UpdateStatus(ctx context.Context, id int64, from, to domain.AppointmentStatus, note string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{"status": string(to)}
	update := bson.M{"$set": set}
	if to == domain.StatusCancelled {
		update["$unset"] = bson.M{"slot_key": ""}
		if note != "" {
			set["cancellation_reason"] = note
		}
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id, "status": string(from)}, update)
	if err != nil {
		return fmt.Errorf("update appointment status: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	current, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	return domain.InvalidStatef("Appointment status changed concurrently. Current status: %s", current.Status)
}

func (r *AppointmentRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.NotFound("Appointment", id)
	}
	return nil
}
