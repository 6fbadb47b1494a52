package mongo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/carepoint/scheduling-api/internal/core/domain"
	"github.com/carepoint/scheduling-api/internal/core/ports"
)

const collectionAvailability = "doctor_availability"

var _ ports.AvailabilityRepository = (*AvailabilityRepository)(nil)

// AvailabilityRepository implements ports.AvailabilityRepository using MongoDB.
type AvailabilityRepository struct {
	col *mongo.Collection
	seq sequence
}

func NewAvailabilityRepository(db *mongo.Database) *AvailabilityRepository {
	return &AvailabilityRepository{
		col: db.Collection(collectionAvailability),
		seq: newSequence(db, collectionAvailability),
	}
}

type availabilityDoc struct {
	ID        int64  `bson:"_id"`
	DoctorID  int64  `bson:"doctor_id"`
	DayOfWeek string `bson:"day_of_week"`
	StartTime string `bson:"start_time"`
	EndTime   string `bson:"end_time"`
	Available bool   `bson:"available"`
}

func (d availabilityDoc) toDomain() domain.DoctorAvailability {
	return domain.DoctorAvailability{
		ID:        d.ID,
		DoctorID:  d.DoctorID,
		DayOfWeek: d.DayOfWeek,
		StartTime: d.StartTime,
		EndTime:   d.EndTime,
		Available: d.Available,
	}
}

func (r *AvailabilityRepository) EnsureIndexes(ctx context.Context) error {
	return createIndexes(ctx, r.col, mongo.IndexModel{Keys: bson.D{{Key: "doctor_id", Value: 1}}})
}

// Replace deletes the doctor's current windows and inserts windows in their
// place. The two steps are not atomic; a reader may briefly see no windows.
func (r *AvailabilityRepository) Replace(ctx context.Context, doctorID int64, windows []domain.DoctorAvailability) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteMany(ctx, bson.M{"doctor_id": doctorID}); err != nil {
		return fmt.Errorf("clear availability: %w", err)
	}
	if len(windows) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(windows))
	for i := range windows {
		id, err := r.seq.next(ctx)
		if err != nil {
			return err
		}
		windows[i].ID = id
		windows[i].DoctorID = doctorID
		docs = append(docs, availabilityDoc{
			ID:        id,
			DoctorID:  doctorID,
			DayOfWeek: windows[i].DayOfWeek,
			StartTime: windows[i].StartTime,
			EndTime:   windows[i].EndTime,
			Available: windows[i].Available,
		})
	}
	if _, err := r.col.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert availability: %w", err)
	}
	return nil
}

// ListByDoctor returns the doctor's windows ordered Monday first, then by start time.
func (r *AvailabilityRepository) ListByDoctor(ctx context.Context, doctorID int64) ([]domain.DoctorAvailability, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.col.Find(ctx, bson.M{"doctor_id": doctorID})
	if err != nil {
		return nil, fmt.Errorf("find availability: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []availabilityDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode availability: %w", err)
	}
	out := make([]domain.DoctorAvailability, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	sortWindows(out)
	return out, nil
}

func sortWindows(ws []domain.DoctorAvailability) {
	rank := func(d time.Weekday) int {
		if d == time.Sunday {
			return 7
		}
		return int(d)
	}
	sort.SliceStable(ws, func(i, j int) bool {
		ri, rj := rank(ws[i].Weekday()), rank(ws[j].Weekday())
		if ri != rj {
			return ri < rj
		}
		return ws[i].StartTime < ws[j].StartTime
	})
}
