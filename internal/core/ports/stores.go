package ports

import (
	"context"
	"time"

	"github.com/carepoint/scheduling-api/internal/core/domain"
)

// TokenDenylist records revoked token ids until they would have expired anyway.
type TokenDenylist interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// SlotLocker serialises bookings on the same doctor slot across instances.
type SlotLocker interface {
	// Acquire returns ok=false when another request holds the slot.
	Acquire(ctx context.Context, slotKey string) (token string, ok bool, err error)
	Release(ctx context.Context, slotKey, token string) error
}

// AuditPublisher hands audit events to the background writers. Publish never
// blocks and reports whether the event was accepted.
type AuditPublisher interface {
	Publish(event domain.AppointmentEvent) bool
}

// TextSanitizer strips markup from free text before it is stored.
type TextSanitizer interface {
	Sanitize(s string) string
}
