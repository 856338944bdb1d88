package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/DevRickLin/matchbot/internal/biz/domain"
	"github.com/DevRickLin/matchbot/internal/biz/repo"
)

const queueColumns = `id, conversation_id, sender_id, recipient_id, body, scheduled_at, sent_at, attempts, last_error, created_at`

// queueRepo implements the durable delay queue on SQLite
type queueRepo struct {
	db *sql.DB
}

// NewQueueRepo creates a new queue repository
func NewQueueRepo(db *sql.DB) repo.QueueRepo {
	return &queueRepo{db: db}
}

func (r *queueRepo) Enqueue(ctx context.Context, msg *domain.QueuedMessage) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO queued_messages (id, conversation_id, sender_id, recipient_id, body, scheduled_at, attempts, last_error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, '', ?)
	`, msg.ID, msg.ConversationID, msg.SenderID, msg.RecipientID, msg.Body,
		toMillis(msg.ScheduledAt), toMillis(msg.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to enqueue message: %w", err)
	}
	return nil
}

func (r *queueRepo) Get(ctx context.Context, id string) (*domain.QueuedMessage, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+queueColumns+` FROM queued_messages WHERE id = ?`, id)
	msg, err := scanQueued(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get queued message: %w", err)
	}
	return msg, nil
}

func (r *queueRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]*domain.QueuedMessage, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+queueColumns+`
		FROM queued_messages
		WHERE sent_at IS NULL AND scheduled_at <= ?
		ORDER BY scheduled_at ASC, id ASC
		LIMIT ?
	`, toMillis(now), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list due messages: %w", err)
	}
	defer rows.Close()

	return collectQueued(rows)
}

func (r *queueRepo) Claim(ctx context.Context, id, token string, now, until time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE queued_messages
		SET claim_token = ?, claimed_until = ?
		WHERE id = ? AND sent_at IS NULL AND (claimed_until IS NULL OR claimed_until <= ?)
	`, token, toMillis(until), id, toMillis(now))
	if err != nil {
		return false, fmt.Errorf("failed to claim message: %w", err)
	}
	return affectedOne(res)
}

func (r *queueRepo) MarkSent(ctx context.Context, id, token string, sentAt time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE queued_messages
		SET sent_at = ?, attempts = attempts + 1, last_error = '', claim_token = NULL, claimed_until = NULL
		WHERE id = ? AND claim_token = ? AND sent_at IS NULL
	`, toMillis(sentAt), id, token)
	if err != nil {
		return false, fmt.Errorf("failed to mark message sent: %w", err)
	}
	return affectedOne(res)
}

func (r *queueRepo) Release(ctx context.Context, id, token, lastError string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE queued_messages
		SET attempts = attempts + 1, last_error = ?, claim_token = NULL, claimed_until = NULL
		WHERE id = ? AND claim_token = ? AND sent_at IS NULL
	`, lastError, id, token)
	if err != nil {
		return fmt.Errorf("failed to release message: %w", err)
	}
	return nil
}

func (r *queueRepo) Pending(ctx context.Context, conversationID string) ([]*domain.QueuedMessage, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+queueColumns+`
		FROM queued_messages
		WHERE conversation_id = ? AND sent_at IS NULL
		ORDER BY scheduled_at ASC, id ASC
	`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending messages: %w", err)
	}
	defer rows.Close()

	return collectQueued(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQueued(s rowScanner) (*domain.QueuedMessage, error) {
	var (
		msg                    domain.QueuedMessage
		scheduledAt, createdAt int64
		sentAt                 sql.NullInt64
	)
	err := s.Scan(&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.RecipientID, &msg.Body,
		&scheduledAt, &sentAt, &msg.Attempts, &msg.LastError, &createdAt)
	if err != nil {
		return nil, err
	}
	msg.ScheduledAt = fromMillis(scheduledAt)
	msg.SentAt = nullMillis(sentAt)
	msg.CreatedAt = fromMillis(createdAt)
	return &msg, nil
}

func collectQueued(rows *sql.Rows) ([]*domain.QueuedMessage, error) {
	var result []*domain.QueuedMessage
	for rows.Next() {
		msg, err := scanQueued(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan queued message: %w", err)
		}
		result = append(result, msg)
	}
	return result, rows.Err()
}

func affectedOne(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n == 1, nil
}
