package data

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/DevRickLin/matchbot/internal/biz/domain"
	"github.com/DevRickLin/matchbot/internal/biz/repo"
	"github.com/DevRickLin/matchbot/internal/infra/openai"
)

// ChatClient is the subset of the OpenAI client used by the generator
type ChatClient interface {
	Chat(ctx context.Context, messages []openai.Message, timeout time.Duration) (string, error)
}

// openAIGenerator implements repo.ReplyGenerator with a chat completion backend
type openAIGenerator struct {
	client ChatClient
}

// NewOpenAIGenerator creates the generative reply backend
func NewOpenAIGenerator(client ChatClient) repo.ReplyGenerator {
	if client == nil {
		return nil
	}
	return &openAIGenerator{client: client}
}

// Generate asks the backend for one reply. Output is trimmed of quotes and whitespace.
func (g *openAIGenerator) Generate(ctx context.Context, req *repo.GenerateRequest, timeout time.Duration) (string, error) {
	if req == nil || req.Personality == nil {
		return "", fmt.Errorf("generate: personality is required")
	}

	messages := make([]openai.Message, 0, len(req.History)+2)
	messages = append(messages, openai.Message{Role: "system", Content: SystemPrompt(req.Personality)})
	for _, turn := range req.History {
		role := "user"
		if turn.Role == domain.RoleAssistant {
			role = "assistant"
		}
		messages = append(messages, openai.Message{Role: role, Content: turn.Text})
	}
	messages = append(messages, openai.Message{Role: "user", Content: req.UserMessage})

	reply, err := g.client.Chat(ctx, messages, timeout)
	if err != nil {
		return "", err
	}
	return strings.Trim(strings.TrimSpace(reply), `"`), nil
}

// SystemPrompt returns the personality's own prompt, or one built from its attributes
func SystemPrompt(p *domain.BotPersonality) string {
	if strings.TrimSpace(p.SystemPrompt) != "" {
		return p.SystemPrompt
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are %s", p.Name)
	if p.Age > 0 {
		fmt.Fprintf(&b, ", %d", p.Age)
	}
	if p.City != "" {
		fmt.Fprintf(&b, ", living in %s", p.City)
	}
	b.WriteString(". You are chatting with a match on a dating app.")
	if len(p.Topics) > 0 {
		topics := make([]string, len(p.Topics))
		for i, t := range p.Topics {
			topics[i] = string(t)
		}
		fmt.Fprintf(&b, " You love talking about %s.", strings.Join(topics, ", "))
	}
	fmt.Fprintf(&b, " Your tone is %s.", p.Policy)
	fmt.Fprintf(&b, " Reply casually in at most %d words. Never say you are an AI. No emojis, no hashtags.", p.WordBudget())
	return b.String()
}
