package domain

import "time"

// ConversationContext is the best-effort memory updated after each delivery.
// It is telemetry for the product surface, not an input to the dialogue policy.
type ConversationContext struct {
	ConversationID string    `json:"conversation_id"`
	BotID          string    `json:"bot_id"`
	UserID         string    `json:"user_id"`
	LastBotMessage string    `json:"last_bot_message"`
	LastTopics     []Topic   `json:"last_topics"`
	DeliveredCount int       `json:"delivered_count"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// RecordDelivery folds one delivered bot message into the context
func (c *ConversationContext) RecordDelivery(body string, topics []Topic, at time.Time) {
	c.LastBotMessage = body
	if len(topics) > 0 {
		c.LastTopics = topics
	}
	c.DeliveredCount++
	c.UpdatedAt = at
}

// IsStale checks whether the context was not touched within idle
func (c *ConversationContext) IsStale(now time.Time, idle time.Duration) bool {
	return idle > 0 && now.Sub(c.UpdatedAt) > idle
}
