package data

import (
	"context"
	"fmt"

	"github.com/DevRickLin/matchbot/internal/biz/domain"
	"github.com/DevRickLin/matchbot/internal/biz/repo"
)

// TextSender posts a text message to a chat
type TextSender interface {
	SendText(ctx context.Context, chatID, text string) error
}

// feishuAuditRepo mirrors delivered bot replies to an operator chat
type feishuAuditRepo struct {
	sender TextSender
	chatID string
}

// NewFeishuAuditRepo creates the audit mirror. It returns nil when chatID is empty.
func NewFeishuAuditRepo(sender TextSender, chatID string) repo.AuditRepo {
	if sender == nil || chatID == "" {
		return nil
	}
	return &feishuAuditRepo{sender: sender, chatID: chatID}
}

func (r *feishuAuditRepo) MirrorDelivery(ctx context.Context, msg *domain.QueuedMessage) error {
	text := fmt.Sprintf("[%s] %s -> %s: %s", msg.ConversationID, msg.SenderID, msg.RecipientID, msg.Body)
	if err := r.sender.SendText(ctx, r.chatID, text); err != nil {
		return fmt.Errorf("failed to mirror delivery: %w", err)
	}
	return nil
}
