package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/DevRickLin/matchbot/internal/biz/domain"
	"github.com/DevRickLin/matchbot/internal/biz/repo"
)

// QueueConfig controls processor passes
type QueueConfig struct {
	BatchSize int
	ClaimTTL  time.Duration
}

// DefaultQueueConfig returns default processor settings
func DefaultQueueConfig() QueueConfig {
	return QueueConfig{
		BatchSize: 50,
		ClaimTTL:  30 * time.Second,
	}
}

// DeliveryHooks are the best-effort side effects of a delivery. Any field may be nil.
type DeliveryHooks struct {
	Presence repo.PresenceRepo
	Contexts repo.ContextRepo
	Audit    repo.AuditRepo
}

// ProcessReport summarizes one processor pass
type ProcessReport struct {
	Due       int `json:"due"`
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"` // claimed by another processor
}

// QueueUsecase schedules deferred bot messages and delivers due ones
type QueueUsecase struct {
	queue    repo.QueueRepo
	messages repo.MessageRepo
	hooks    DeliveryHooks
	analyzer *Analyzer
	cfg      QueueConfig
	now      func() time.Time
	log      zerolog.Logger
}

// NewQueueUsecase creates a queue usecase
func NewQueueUsecase(queue repo.QueueRepo, messages repo.MessageRepo, hooks DeliveryHooks, analyzer *Analyzer, cfg QueueConfig) *QueueUsecase {
	def := DefaultQueueConfig()
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.ClaimTTL <= 0 {
		cfg.ClaimTTL = def.ClaimTTL
	}
	if analyzer == nil {
		analyzer = NewAnalyzer()
	}
	return &QueueUsecase{
		queue:    queue,
		messages: messages,
		hooks:    hooks,
		analyzer: analyzer,
		cfg:      cfg,
		now:      time.Now,
		log:      log.With().Str("component", "queue").Logger(),
	}
}

// Schedule writes a new unsent row due after delay.
// Callers schedule at most one reply per inbound message.
func (uc *QueueUsecase) Schedule(ctx context.Context, conversationID, senderID, recipientID, body string, delay time.Duration) (*domain.QueuedMessage, error) {
	switch {
	case conversationID == "":
		return nil, newError(ErrorInvalidInput, "conversation id is required", nil)
	case senderID == "" || recipientID == "":
		return nil, newError(ErrorInvalidInput, "sender and recipient are required", nil)
	case body == "":
		return nil, newError(ErrorInvalidInput, "body is required", nil)
	}
	if delay < 0 {
		delay = 0
	}

	now := uc.now()
	msg := &domain.QueuedMessage{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		SenderID:       senderID,
		RecipientID:    recipientID,
		Body:           body,
		ScheduledAt:    now.Add(delay),
		CreatedAt:      now,
	}
	if err := uc.queue.Enqueue(ctx, msg); err != nil {
		return nil, newError(ErrorUpstream, "enqueue message", err)
	}

	uc.log.Debug().
		Str("id", msg.ID).
		Str("conversation_id", conversationID).
		Dur("delay", delay).
		Msg("scheduled")
	return msg, nil
}

// Pending lists unsent rows of a conversation
func (uc *QueueUsecase) Pending(ctx context.Context, conversationID string) ([]*domain.QueuedMessage, error) {
	if conversationID == "" {
		return nil, newError(ErrorInvalidInput, "conversation id is required", nil)
	}
	rows, err := uc.queue.Pending(ctx, conversationID)
	if err != nil {
		return nil, newError(ErrorUpstream, "list pending", err)
	}
	return rows, nil
}

// ProcessDue performs one bounded pass over due rows.
// Delivery is at-least-once: a row whose message could not be persisted stays due.
func (uc *QueueUsecase) ProcessDue(ctx context.Context) (*ProcessReport, error) {
	now := uc.now()
	due, err := uc.queue.ListDue(ctx, now, uc.cfg.BatchSize)
	if err != nil {
		return nil, newError(ErrorUpstream, "list due messages", err)
	}

	report := &ProcessReport{Due: len(due)}
	for _, msg := range due {
		if ctx.Err() != nil {
			break
		}
		switch uc.deliver(ctx, msg) {
		case deliveryDone:
			report.Delivered++
		case deliveryFailed:
			report.Failed++
		case deliverySkipped:
			report.Skipped++
		}
	}

	ev := uc.log.Debug()
	if report.Delivered > 0 || report.Failed > 0 {
		ev = uc.log.Info()
	}
	ev.Int("due", report.Due).
		Int("delivered", report.Delivered).
		Int("failed", report.Failed).
		Int("skipped", report.Skipped).
		Msg("pass complete")
	return report, nil
}

type deliveryResult int

const (
	deliveryDone deliveryResult = iota
	deliveryFailed
	deliverySkipped
)

func (uc *QueueUsecase) deliver(ctx context.Context, msg *domain.QueuedMessage) deliveryResult {
	now := uc.now()
	token := uuid.NewString()
	l := uc.log.With().Str("id", msg.ID).Str("conversation_id", msg.ConversationID).Logger()

	if !msg.IsDue(now) {
		l.Debug().Time("scheduled_at", msg.ScheduledAt).Msg("not due yet")
		return deliverySkipped
	}

	claimed, err := uc.queue.Claim(ctx, msg.ID, token, now, now.Add(uc.cfg.ClaimTTL))
	if err != nil {
		l.Error().Err(err).Msg("claim failed")
		return deliveryFailed
	}
	if !claimed {
		l.Debug().Msg("already claimed or sent")
		return deliverySkipped
	}

	// persisting is the user-visible effect and must succeed before the row is marked sent
	out := msg.ToMessage(now)
	if err := uc.messages.Append(ctx, &out); err != nil {
		l.Error().Err(err).Int("attempts", msg.Attempts+1).Msg("persist failed, will retry")
		if rerr := uc.queue.Release(ctx, msg.ID, token, err.Error()); rerr != nil {
			l.Warn().Err(rerr).Msg("release failed, claim will expire")
		}
		return deliveryFailed
	}

	uc.afterPersist(ctx, l, msg, now)

	marked, err := uc.queue.MarkSent(ctx, msg.ID, token, now)
	if err != nil {
		l.Error().Err(err).Msg("mark sent failed, will retry")
		return deliveryFailed
	}
	if !marked {
		l.Warn().Msg("claim lost before mark sent")
		return deliverySkipped
	}
	l.Debug().Msg("delivered")
	return deliveryDone
}

// afterPersist runs the best-effort hooks. Failures are logged and ignored.
func (uc *QueueUsecase) afterPersist(ctx context.Context, l zerolog.Logger, msg *domain.QueuedMessage, now time.Time) {
	if uc.hooks.Presence != nil {
		if err := uc.hooks.Presence.ClearTyping(ctx, msg.ConversationID, msg.SenderID); err != nil {
			l.Warn().Err(err).Msg("clear typing failed")
		}
	}
	if uc.hooks.Contexts != nil {
		if err := uc.updateContext(ctx, msg, now); err != nil {
			l.Warn().Err(err).Msg("update context failed")
		}
	}
	if uc.hooks.Audit != nil {
		if err := uc.hooks.Audit.MirrorDelivery(ctx, msg); err != nil {
			l.Warn().Err(err).Msg("audit mirror failed")
		}
	}
}

func (uc *QueueUsecase) updateContext(ctx context.Context, msg *domain.QueuedMessage, now time.Time) error {
	c, err := uc.hooks.Contexts.GetContext(ctx, msg.ConversationID)
	if err != nil {
		return fmt.Errorf("get context: %w", err)
	}
	if c == nil {
		c = &domain.ConversationContext{
			ConversationID: msg.ConversationID,
			BotID:          msg.SenderID,
			UserID:         msg.RecipientID,
		}
	}
	c.RecordDelivery(msg.Body, uc.analyzer.Analyze(msg.Body).Topics, now)
	if err := uc.hooks.Contexts.SaveContext(ctx, c); err != nil {
		return fmt.Errorf("save context: %w", err)
	}
	return nil
}
