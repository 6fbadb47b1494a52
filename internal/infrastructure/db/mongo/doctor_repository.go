package mongo

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carepoint/scheduling-api/internal/core/domain"
	"github.com/carepoint/scheduling-api/internal/core/ports"
)

const collectionDoctors = "doctors"

var _ ports.DoctorRepository = (*DoctorRepository)(nil)

// DoctorRepository implements ports.DoctorRepository using MongoDB.
type DoctorRepository struct {
	col *mongo.Collection
	seq sequence
}

func NewDoctorRepository(db *mongo.Database) *DoctorRepository {
	return &DoctorRepository{
		col: db.Collection(collectionDoctors),
		seq: newSequence(db, collectionDoctors),
	}
}

type doctorDoc struct {
	ID              int64     `bson:"_id"`
	Name            string    `bson:"name"`
	Email           string    `bson:"email"`
	PhoneNumber     string    `bson:"phone_number"`
	Specialization  string    `bson:"specialization"`
	Qualification   string    `bson:"qualification,omitempty"`
	ExperienceYears int       `bson:"experience_years,omitempty"`
	ClinicName      string    `bson:"clinic_name,omitempty"`
	ClinicAddress   string    `bson:"clinic_address,omitempty"`
	ConsultationFee float64   `bson:"consultation_fee,omitempty"`
	Bio             string    `bson:"bio,omitempty"`
	ProfileStatus   string    `bson:"profile_status"`
	UserID          *int64    `bson:"user_id,omitempty"`
	PasswordHash    string    `bson:"password_hash,omitempty"`
	CreatedAt       time.Time `bson:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at"`
}

func toDoctorDoc(d *domain.Doctor) doctorDoc {
	return doctorDoc{
		ID:              d.ID,
		Name:            d.Name,
		Email:           d.Email,
		PhoneNumber:     d.PhoneNumber,
		Specialization:  d.Specialization,
		Qualification:   d.Qualification,
		ExperienceYears: d.ExperienceYears,
		ClinicName:      d.ClinicName,
		ClinicAddress:   d.ClinicAddress,
		ConsultationFee: d.ConsultationFee,
		Bio:             d.Bio,
		ProfileStatus:   string(d.ProfileStatus),
		UserID:          d.UserID,
		PasswordHash:    d.PasswordHash,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func (d doctorDoc) toDomain() *domain.Doctor {
	return &domain.Doctor{
		ID:              d.ID,
		Name:            d.Name,
		Email:           d.Email,
		PhoneNumber:     d.PhoneNumber,
		Specialization:  d.Specialization,
		Qualification:   d.Qualification,
		ExperienceYears: d.ExperienceYears,
		ClinicName:      d.ClinicName,
		ClinicAddress:   d.ClinicAddress,
		ConsultationFee: d.ConsultationFee,
		Bio:             d.Bio,
		ProfileStatus:   domain.ProfileStatus(d.ProfileStatus),
		UserID:          d.UserID,
		PasswordHash:    d.PasswordHash,
		Role:            domain.RoleDoctor,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

// EnsureIndexes creates a unique index on email plus lookup indexes for the
// directory filters.
func (r *DoctorRepository) EnsureIndexes(ctx context.Context) error {
	return createIndexes(ctx, r.col,
		uniqueIndex(bson.D{{Key: "email", Value: 1}}),
		mongo.IndexModel{Keys: bson.D{{Key: "specialization", Value: 1}}},
		mongo.IndexModel{Keys: bson.D{{Key: "profile_status", Value: 1}}},
	)
}

func (r *DoctorRepository) Create(ctx context.Context, d *domain.Doctor) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.seq.next(ctx)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	doc := toDoctorDoc(d)
	doc.ID, doc.CreatedAt, doc.UpdatedAt = id, now, now
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.Conflictf("Email already exists")
		}
		return fmt.Errorf("insert doctor: %w", err)
	}
	d.ID, d.Role, d.CreatedAt, d.UpdatedAt = id, domain.RoleDoctor, now, now
	return nil
}

func (r *DoctorRepository) FindByID(ctx context.Context, id int64) (*domain.Doctor, error) {
	return r.findOne(ctx, bson.M{"_id": id}, func() error { return domain.NotFound("Doctor", id) })
}

func (r *DoctorRepository) FindByEmail(ctx context.Context, email string) (*domain.Doctor, error) {
	return r.findOne(ctx, bson.M{"email": email}, func() error {
		return domain.NotFoundf("Doctor not found with email: %s", email)
	})
}

func (r *DoctorRepository) findOne(ctx context.Context, filter bson.M, notFound func() error) (*domain.Doctor, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc doctorDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if isNoDocuments(err) {
			return nil, notFound()
		}
		return nil, fmt.Errorf("find doctor: %w", err)
	}
	return doc.toDomain(), nil
}

// doctorFilter translates f into a query. Text fields match as
// case-insensitive substrings.
func doctorFilter(f domain.DoctorFilter) bson.M {
	filter := bson.M{}
	if f.Specialization != "" {
		filter["specialization"] = containsIgnoreCase(f.Specialization)
	}
	if f.ClinicName != "" {
		filter["clinic_name"] = containsIgnoreCase(f.ClinicName)
	}
	if f.Status != "" {
		filter["profile_status"] = string(f.Status)
	}
	return filter
}

func containsIgnoreCase(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

func (r *DoctorRepository) List(ctx context.Context, f domain.DoctorFilter) ([]*domain.Doctor, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.col.Find(ctx, doctorFilter(f), opts)
	if err != nil {
		return nil, fmt.Errorf("find doctors: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []doctorDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode doctors: %w", err)
	}
	out := make([]*domain.Doctor, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// Specializations returns the distinct non-empty specializations, sorted.
func (r *DoctorRepository) Specializations(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	values, err := r.col.Distinct(ctx, "specialization", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("distinct specializations: %w", err)
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *DoctorRepository) Update(ctx context.Context, d *domain.Doctor) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	d.UpdatedAt = time.Now().UTC()
	doc := toDoctorDoc(d)
	set := bson.M{
		"name":             doc.Name,
		"email":            doc.Email,
		"phone_number":     doc.PhoneNumber,
		"specialization":   doc.Specialization,
		"qualification":    doc.Qualification,
		"experience_years": doc.ExperienceYears,
		"clinic_name":      doc.ClinicName,
		"clinic_address":   doc.ClinicAddress,
		"consultation_fee": doc.ConsultationFee,
		"bio":              doc.Bio,
		"profile_status":   doc.ProfileStatus,
		"password_hash":    doc.PasswordHash,
		"updated_at":       doc.UpdatedAt,
	}
	update := bson.M{"$set": set}
	if doc.UserID != nil {
		set["user_id"] = *doc.UserID
	} else {
		update["$unset"] = bson.M{"user_id": ""}
	}

	res, err := r.col.UpdateByID(ctx, d.ID, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.Conflictf("Email already exists")
		}
		return fmt.Errorf("update doctor: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.NotFound("Doctor", d.ID)
	}
	return nil
}

func (r *DoctorRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete doctor: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.NotFound("Doctor", id)
	}
	return nil
}

func (r *DoctorRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count doctors: %w", err)
	}
	return n, nil
}
