package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/DevRickLin/matchbot/internal/biz/domain"
	"github.com/DevRickLin/matchbot/internal/biz/repo"
)

// typingGrace keeps the indicator alive a little past the scheduled delivery
const typingGrace = 30 * time.Second

// ConversationUsecase turns an inbound user message into a scheduled bot reply
type ConversationUsecase struct {
	personalities map[string]*domain.BotPersonality
	analyzer      *Analyzer
	policy        *DialoguePolicy
	queue         *QueueUsecase
	messages      repo.MessageRepo
	presence      repo.PresenceRepo // optional
	historyLimit  int
	log           zerolog.Logger
}

// NewConversationUsecase creates a conversation usecase
func NewConversationUsecase(
	personalities []domain.BotPersonality,
	analyzer *Analyzer,
	policy *DialoguePolicy,
	queue *QueueUsecase,
	messages repo.MessageRepo,
	presence repo.PresenceRepo,
	historyLimit int,
) *ConversationUsecase {
	byID := make(map[string]*domain.BotPersonality, len(personalities))
	for i := range personalities {
		byID[personalities[i].ID] = &personalities[i]
	}
	if historyLimit <= 0 {
		historyLimit = 20
	}
	return &ConversationUsecase{
		personalities: byID,
		analyzer:      analyzer,
		policy:        policy,
		queue:         queue,
		messages:      messages,
		presence:      presence,
		historyLimit:  historyLimit,
		log:           log.With().Str("component", "conversation").Logger(),
	}
}

// InboundRequest is the trigger for one bot reply.
// A nil History means the history is read from the conversation store.
type InboundRequest struct {
	BotID          string
	UserID         string
	ConversationID string
	UserMessage    string
	History        []domain.ConversationTurn
}

// Validate checks required fields
func (r *InboundRequest) Validate() error {
	var missing []string
	if strings.TrimSpace(r.BotID) == "" {
		missing = append(missing, "botId")
	}
	if strings.TrimSpace(r.UserID) == "" {
		missing = append(missing, "userId")
	}
	if strings.TrimSpace(r.ConversationID) == "" {
		missing = append(missing, "conversationId")
	}
	if strings.TrimSpace(r.UserMessage) == "" {
		missing = append(missing, "userMessage")
	}
	if len(missing) > 0 {
		return newError(ErrorInvalidInput, "missing required fields: "+strings.Join(missing, ", "), nil)
	}
	return nil
}

// ReplyPlan is what the engine decided for one inbound message
type ReplyPlan struct {
	Reply    string                 `json:"reply"`
	Delay    time.Duration          `json:"delay"`
	Analysis domain.MessageAnalysis `json:"analysis"`
}

// InboundResult is the outcome of HandleInbound
type InboundResult struct {
	ReplyPlan
	Queued *domain.QueuedMessage `json:"queued"`
}

// HandleInbound analyzes, responds, estimates a delay and schedules the reply.
// It must be called once per inbound message.
func (uc *ConversationUsecase) HandleInbound(ctx context.Context, req *InboundRequest) (*InboundResult, error) {
	if req == nil {
		return nil, newError(ErrorInvalidInput, "empty request", nil)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	personality, err := uc.Personality(req.BotID)
	if err != nil {
		return nil, err
	}

	history := req.History
	if history == nil {
		history, err = uc.loadHistory(ctx, req)
		if err != nil {
			return nil, err
		}
	}

	plan := uc.plan(ctx, personality, history, req.UserMessage)

	if uc.presence != nil {
		if err := uc.presence.SetTyping(ctx, req.ConversationID, req.BotID, plan.Delay+typingGrace); err != nil {
			uc.log.Warn().Err(err).Str("conversation_id", req.ConversationID).Msg("set typing failed")
		}
	}

	queued, err := uc.queue.Schedule(ctx, req.ConversationID, req.BotID, req.UserID, plan.Reply, plan.Delay)
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("conversation_id", req.ConversationID).
		Str("bot_id", req.BotID).
		Str("intent", string(plan.Analysis.Intent)).
		Dur("delay", plan.Delay).
		Str("queued_id", queued.ID).
		Msg("reply scheduled")
	return &InboundResult{ReplyPlan: *plan, Queued: queued}, nil
}

// Preview computes a reply without scheduling it
func (uc *ConversationUsecase) Preview(ctx context.Context, botID string, history []domain.ConversationTurn, incoming string) (*ReplyPlan, error) {
	personality, err := uc.Personality(botID)
	if err != nil {
		return nil, err
	}
	return uc.plan(ctx, personality, history, incoming), nil
}

// Personality looks up a loaded personality
func (uc *ConversationUsecase) Personality(botID string) (*domain.BotPersonality, error) {
	p, ok := uc.personalities[botID]
	if !ok {
		return nil, newError(ErrorNotFound, "unknown bot "+botID, nil)
	}
	return p, nil
}

// Personalities lists loaded personalities
func (uc *ConversationUsecase) Personalities() []*domain.BotPersonality {
	out := make([]*domain.BotPersonality, 0, len(uc.personalities))
	for _, p := range uc.personalities {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (uc *ConversationUsecase) plan(ctx context.Context, personality *domain.BotPersonality, history []domain.ConversationTurn, incoming string) *ReplyPlan {
	return &ReplyPlan{
		Reply:    uc.policy.Respond(ctx, personality, history, incoming),
		Delay:    EstimateDelay(personality, incoming, len(history)),
		Analysis: uc.analyzer.Analyze(incoming),
	}
}

// loadHistory reads the recent conversation and maps rows to turns.
// The inbound message is dropped when the front end already stored it.
func (uc *ConversationUsecase) loadHistory(ctx context.Context, req *InboundRequest) ([]domain.ConversationTurn, error) {
	rows, err := uc.messages.GetHistory(ctx, req.ConversationID, uc.historyLimit)
	if err != nil {
		return nil, newError(ErrorUpstream, "read conversation history", err)
	}
	turns := domain.TurnsFromMessages(rows, req.BotID)
	if n := len(turns); n > 0 && turns[n-1].Role == domain.RoleUser &&
		strings.TrimSpace(turns[n-1].Text) == strings.TrimSpace(req.UserMessage) {
		turns = turns[:n-1]
	}
	return turns, nil
}
