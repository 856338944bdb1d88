package domain

import (
	"testing"
	"time"
)

func TestQueuedMessage_IsDue(t *testing.T) {
	now := time.Now()

	due := &QueuedMessage{ScheduledAt: now.Add(-time.Second)}
	if !due.IsDue(now) {
		t.Error("Expected past unsent row to be due")
	}

	exact := &QueuedMessage{ScheduledAt: now}
	if !exact.IsDue(now) {
		t.Error("Expected row scheduled exactly at now to be due")
	}

	future := &QueuedMessage{ScheduledAt: now.Add(time.Minute)}
	if future.IsDue(now) {
		t.Error("Expected future row not to be due")
	}

	sentAt := now.Add(-time.Second)
	sent := &QueuedMessage{ScheduledAt: now.Add(-time.Minute), SentAt: &sentAt}
	if sent.IsDue(now) {
		t.Error("Expected sent row not to be due")
	}
}

func TestQueuedMessage_ToMessage(t *testing.T) {
	now := time.Now()
	q := &QueuedMessage{ID: "q-1", ConversationID: "c-1", SenderID: "bot", RecipientID: "u", Body: "hi"}

	m := q.ToMessage(now)

	if m.ID != "q-1" {
		t.Errorf("Expected message id to reuse queue id, got %s", m.ID)
	}
	if m.ConversationID != "c-1" || m.SenderID != "bot" || m.Body != "hi" {
		t.Errorf("Unexpected message: %+v", m)
	}
	if !m.CreatedAt.Equal(now) {
		t.Error("Expected CreatedAt to be the delivery time")
	}
}
