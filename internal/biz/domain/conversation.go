package domain

import "time"

// Role identifies who produced a conversation turn
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationTurn is one entry of the append-only history used by the dialogue policy
type ConversationTurn struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// CountRole counts turns in history with the given role
func CountRole(history []ConversationTurn, role Role) int {
	n := 0
	for _, turn := range history {
		if turn.Role == role {
			n++
		}
	}
	return n
}

// LastTurnOf returns the most recent turn with the given role, or nil
func LastTurnOf(history []ConversationTurn, role Role) *ConversationTurn {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == role {
			turn := history[i]
			return &turn
		}
	}
	return nil
}

// TurnsFromMessages maps stored conversation rows to turns.
// Rows sent by botID become assistant turns, everything else is a user turn.
func TurnsFromMessages(messages []Message, botID string) []ConversationTurn {
	turns := make([]ConversationTurn, 0, len(messages))
	for _, m := range messages {
		role := RoleUser
		if m.IsFromBot(botID) {
			role = RoleAssistant
		}
		turns = append(turns, ConversationTurn{Role: role, Text: m.Body, Timestamp: m.CreatedAt})
	}
	return turns
}
