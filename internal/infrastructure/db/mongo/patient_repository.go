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

const collectionPatients = "patients"

var _ ports.PatientRepository = (*PatientRepository)(nil)

// PatientRepository implements ports.PatientRepository using MongoDB.
type PatientRepository struct {
	col *mongo.Collection
	seq sequence
}

func NewPatientRepository(db *mongo.Database) *PatientRepository {
	return &PatientRepository{
		col: db.Collection(collectionPatients),
		seq: newSequence(db, collectionPatients),
	}
}

type patientDoc struct {
	ID           int64     `bson:"_id"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	PhoneNumber  string    `bson:"phone_number"`
	DateOfBirth  string    `bson:"date_of_birth,omitempty"`
	PasswordHash string    `bson:"password_hash"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func toPatientDoc(p *domain.Patient) patientDoc {
	return patientDoc{
		ID:           p.ID,
		Name:         p.Name,
		Email:        p.Email,
		PhoneNumber:  p.PhoneNumber,
		DateOfBirth:  p.DateOfBirth,
		PasswordHash: p.PasswordHash,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func (d patientDoc) toDomain() *domain.Patient {
	return &domain.Patient{
		ID:           d.ID,
		Name:         d.Name,
		Email:        d.Email,
		PhoneNumber:  d.PhoneNumber,
		DateOfBirth:  d.DateOfBirth,
		PasswordHash: d.PasswordHash,
		Role:         domain.RolePatient,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// EnsureIndexes creates a unique index on email.
func (r *PatientRepository) EnsureIndexes(ctx context.Context) error {
	return createIndexes(ctx, r.col, uniqueIndex(bson.D{{Key: "email", Value: 1}}))
}

func (r *PatientRepository) Create(ctx context.Context, p *domain.Patient) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.seq.next(ctx)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	doc := toPatientDoc(p)
	doc.ID, doc.CreatedAt, doc.UpdatedAt = id, now, now
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.Conflictf("Email already exists")
		}
		return fmt.Errorf("insert patient: %w", err)
	}
	p.ID, p.Role, p.CreatedAt, p.UpdatedAt = id, domain.RolePatient, now, now
	return nil
}

func (r *PatientRepository) FindByID(ctx context.Context, id int64) (*domain.Patient, error) {
	return r.findOne(ctx, bson.M{"_id": id}, func() error { return domain.NotFound("Patient", id) })
}

func (r *PatientRepository) FindByEmail(ctx context.Context, email string) (*domain.Patient, error) {
	return r.findOne(ctx, bson.M{"email": email}, func() error {
		return domain.NotFoundf("Patient not found with email: %s", email)
	})
}

func (r *PatientRepository) findOne(ctx context.Context, filter bson.M, notFound func() error) (*domain.Patient, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc patientDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, notFound()
		}
		return nil, fmt.Errorf("find patient: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *PatientRepository) List(ctx context.Context) ([]*domain.Patient, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find patients: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []patientDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode patients: %w", err)
	}
	out := make([]*domain.Patient, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *PatientRepository) Update(ctx context.Context, p *domain.Patient) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	p.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"name":          p.Name,
		"email":         p.Email,
		"phone_number":  p.PhoneNumber,
		"date_of_birth": p.DateOfBirth,
		"password_hash": p.PasswordHash,
		"updated_at":    p.UpdatedAt,
	}}
	res, err := r.col.UpdateByID(ctx, p.ID, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.Conflictf("Email already exists")
		}
		return fmt.Errorf("update patient: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.NotFound("Patient", p.ID)
	}
	return nil
}

func (r *PatientRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete patient: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.NotFound("Patient", id)
	}
	return nil
}

func (r *PatientRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count patients: %w", err)
	}
	return n, nil
}
