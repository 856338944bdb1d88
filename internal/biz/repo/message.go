package repo

import (
	"context"

	"github.com/DevRickLin/matchbot/internal/biz/domain"
)

// MessageRepo is the conversation store
type MessageRepo interface {
	// Append writes a message row. Appending an id that already exists is a no-op.
	Append(ctx context.Context, msg *domain.Message) error

	// GetHistory returns the last limit rows of a conversation in ascending time order
	GetHistory(ctx context.Context, conversationID string, limit int) ([]domain.Message, error)
}
