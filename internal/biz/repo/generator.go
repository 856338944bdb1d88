package repo

import (
	"context"
	"time"

	"github.com/DevRickLin/matchbot/internal/biz/domain"
)

// GenerateRequest is the input of a reply generator
type GenerateRequest struct {
	Personality *domain.BotPersonality
	History     []domain.ConversationTurn
	UserMessage string
}

// ReplyGenerator produces the text of a bot reply.
// The rule-based dialogue policy and the optional generative backend both implement it.
type ReplyGenerator interface {
	Generate(ctx context.Context, req *GenerateRequest, timeout time.Duration) (string, error)
}
