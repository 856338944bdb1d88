package domain

import "time"

// Message is a row of the conversation store
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	Body           string    `json:"body"`
	CreatedAt      time.Time `json:"created_at"`
}

// IsFromBot checks if the message was sent by the bot
func (m *Message) IsFromBot(botID string) bool {
	return m.SenderID == botID
}
