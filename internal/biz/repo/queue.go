package repo

import (
	"context"
	"time"

	"github.com/DevRickLin/matchbot/internal/biz/domain"
)

// QueueRepo is the durable delay queue
// Rows move from unsent to sent at most once; they are never deleted.
type QueueRepo interface {
	// Enqueue inserts a new unsent row
	Enqueue(ctx context.Context, msg *domain.QueuedMessage) error

	// Get returns a row by id, or nil when it does not exist
	Get(ctx context.Context, id string) (*domain.QueuedMessage, error)

	// ListDue returns up to limit unsent rows with scheduled_at <= now
	ListDue(ctx context.Context, now time.Time, limit int) ([]*domain.QueuedMessage, error)

	// Claim leases a due row for one processor until the given time.
	// It returns false when the row was already sent or is leased by someone else.
	Claim(ctx context.Context, id, token string, now, until time.Time) (bool, error)

	// MarkSent sets sent_at if the caller still holds the claim and the row is unsent
	MarkSent(ctx context.Context, id, token string, sentAt time.Time) (bool, error)

	// Release drops the claim after a failed attempt and records the error
	Release(ctx context.Context, id, token, lastError string) error

	// Pending lists unsent rows of a conversation ordered by scheduled_at
	Pending(ctx context.Context, conversationID string) ([]*domain.QueuedMessage, error)
}
