package repo

import (
	"context"
	"time"

	"github.com/DevRickLin/matchbot/internal/biz/domain"
)

// PresenceRepo stores the transient typing indicator
type PresenceRepo interface {
	// SetTyping marks senderID as typing in a conversation for at most ttl
	SetTyping(ctx context.Context, conversationID, senderID string, ttl time.Duration) error

	// ClearTyping removes the indicator
	ClearTyping(ctx context.Context, conversationID, senderID string) error

	// IsTyping reports whether the indicator is set
	IsTyping(ctx context.Context, conversationID, senderID string) (bool, error)
}

// ContextRepo stores best-effort conversation-context memory
type ContextRepo interface {
	// GetContext returns the stored context, or nil when none exists
	GetContext(ctx context.Context, conversationID string) (*domain.ConversationContext, error)

	// SaveContext creates or replaces the context
	SaveContext(ctx context.Context, c *domain.ConversationContext) error
}
