package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carepoint/scheduling-api/internal/core/domain"
	"github.com/carepoint/scheduling-api/internal/core/ports"
)

const collectionEvents = "appointment_events"

var _ ports.AuditRepository = (*AuditRepository)(nil)

// AuditRepository implements ports.AuditRepository using MongoDB.
type AuditRepository struct {
	col *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{col: db.Collection(collectionEvents)}
}

type eventDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	AppointmentID int64              `bson:"appointment_id"`
	Action        string             `bson:"action"`
	FromStatus    string             `bson:"from_status,omitempty"`
	ToStatus      string             `bson:"to_status,omitempty"`
	ActorEmail    string             `bson:"actor_email"`
	ActorRole     string             `bson:"actor_role"`
	Note          string             `bson:"note,omitempty"`
	At            time.Time          `bson:"at"`
}

func (d eventDoc) toDomain() domain.AppointmentEvent {
	return domain.AppointmentEvent{
		AppointmentID: d.AppointmentID,
		Action:        domain.AuditAction(d.Action),
		FromStatus:    domain.AppointmentStatus(d.FromStatus),
		ToStatus:      domain.AppointmentStatus(d.ToStatus),
		ActorEmail:    d.ActorEmail,
		ActorRole:     domain.Role(d.ActorRole),
		Note:          d.Note,
		At:            d.At,
	}
}

// EnsureIndexes creates the (appointment_id, at) index used by history reads.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	return createIndexes(ctx, r.col, mongo.IndexModel{
		Keys: bson.D{{Key: "appointment_id", Value: 1}, {Key: "at", Value: 1}},
	})
}

func (r *AuditRepository) Insert(ctx context.Context, e *domain.AppointmentEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := eventDoc{
		AppointmentID: e.AppointmentID,
		Action:        string(e.Action),
		FromStatus:    string(e.FromStatus),
		ToStatus:      string(e.ToStatus),
		ActorEmail:    e.ActorEmail,
		ActorRole:     string(e.ActorRole),
		Note:          e.Note,
		At:            e.At,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert appointment event: %w", err)
	}
	return nil
}

// ListByAppointment returns the trail of one appointment, oldest first.
func (r *AuditRepository) ListByAppointment(ctx context.Context, appointmentID int64) ([]domain.AppointmentEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.col.Find(ctx, bson.M{"appointment_id": appointmentID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find appointment events: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []eventDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode appointment events: %w", err)
	}
	out := make([]domain.AppointmentEvent, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}
