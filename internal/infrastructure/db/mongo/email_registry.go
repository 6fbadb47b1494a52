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

const (
	collectionAccountEmails = "account_emails"

	// A claim older than this whose account was never written may be taken
	// over. Callers check the account stores before claiming.
	defaultClaimTTL = time.Minute
)

var _ ports.EmailRegistry = (*EmailRegistry)(nil)

// EmailRegistry keeps one document per login email, keyed by the email, so
// the _id index makes concurrent claims for the same address collide.
type EmailRegistry struct {
	col      *mongo.Collection
	claimTTL time.Duration
	now      func() time.Time
}

func NewEmailRegistry(db *mongo.Database) *EmailRegistry {
	return &EmailRegistry{
		col:      db.Collection(collectionAccountEmails),
		claimTTL: defaultClaimTTL,
		now:      time.Now,
	}
}

// claimFilter matches the email's document only when its claim has gone stale.
// With no document at all the upsert inserts a fresh claim; a live claim makes
// the upsert's insert hit the _id index.
func claimFilter(email string, cutoff time.Time) bson.M {
	return bson.M{"_id": email, "claimed_at": bson.M{"$lt": cutoff}}
}

func (r *EmailRegistry) Claim(ctx context.Context, email string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := r.now().UTC()
	update := bson.M{"$set": bson.M{"claimed_at": now}}
	_, err := r.col.UpdateOne(ctx, claimFilter(email, now.Add(-r.claimTTL)), update, options.Update().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		return domain.Conflictf("Email already exists")
	}
	if err != nil {
		return fmt.Errorf("claim email: %w", err)
	}
	return nil
}

func (r *EmailRegistry) Release(ctx context.Context, email string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteOne(ctx, bson.M{"_id": email}); err != nil {
		return fmt.Errorf("release email: %w", err)
	}
	return nil
}
