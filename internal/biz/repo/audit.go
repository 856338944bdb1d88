package repo

import (
	"context"

	"github.com/DevRickLin/matchbot/internal/biz/domain"
)

// AuditRepo mirrors delivered bot messages to an operator channel
type AuditRepo interface {
	MirrorDelivery(ctx context.Context, msg *domain.QueuedMessage) error
}
