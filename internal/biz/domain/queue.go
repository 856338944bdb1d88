package domain

import "time"

// QueuedMessage is the durable unit of deferred delivery.
// SentAt transitions from nil to non-nil at most once, after the message was persisted.
type QueuedMessage struct {
	ID             string     `json:"id"`
	ConversationID string     `json:"conversation_id"`
	SenderID       string     `json:"sender_id"`
	RecipientID    string     `json:"recipient_id"`
	Body           string     `json:"body"`
	ScheduledAt    time.Time  `json:"scheduled_at"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
	Attempts       int        `json:"attempts"`
	LastError      string     `json:"last_error,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// IsDue reports whether the row is eligible for delivery at now
func (q *QueuedMessage) IsDue(now time.Time) bool {
	return q.SentAt == nil && !q.ScheduledAt.After(now)
}

// ToMessage builds the conversation-store row written on delivery.
// The queue id is reused so a repeated delivery attempt cannot append a second row.
func (q *QueuedMessage) ToMessage(deliveredAt time.Time) Message {
	return Message{
		ID:             q.ID,
		ConversationID: q.ConversationID,
		SenderID:       q.SenderID,
		Body:           q.Body,
		CreatedAt:      deliveredAt,
	}
}
