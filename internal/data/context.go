package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/DevRickLin/matchbot/internal/biz/domain"
	"github.com/DevRickLin/matchbot/internal/biz/repo"
)

// ContextTTL is how long an untouched conversation context is kept
const ContextTTL = 7 * 24 * time.Hour

// sqliteContextRepo stores conversation contexts as JSON rows.
// Rows older than ttl read as missing, like expired Redis keys.
type sqliteContextRepo struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewSQLiteContextRepo creates the context store used when Redis is not configured
func NewSQLiteContextRepo(db *sql.DB) repo.ContextRepo {
	return &sqliteContextRepo{db: db, ttl: ContextTTL, now: time.Now}
}

func (r *sqliteContextRepo) GetContext(ctx context.Context, conversationID string) (*domain.ConversationContext, error) {
	var data string
	err := r.db.QueryRowContext(ctx, `
		SELECT data FROM conversation_contexts WHERE conversation_id = ?
	`, conversationID).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get context: %w", err)
	}

	var c domain.ConversationContext
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return nil, fmt.Errorf("failed to decode context: %w", err)
	}
	if c.IsStale(r.now(), r.ttl) {
		return nil, nil
	}
	return &c, nil
}

func (r *sqliteContextRepo) SaveContext(ctx context.Context, c *domain.ConversationContext) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode context: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO conversation_contexts (conversation_id, data, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(conversation_id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`, c.ConversationID, string(data), toMillis(c.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to save context: %w", err)
	}
	return nil
}

// redisContextRepo stores conversation contexts as expiring JSON values
type redisContextRepo struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisContextRepo creates a Redis-backed context store
func NewRedisContextRepo(client *redis.Client) repo.ContextRepo {
	return &redisContextRepo{client: client, ttl: ContextTTL}
}

func contextKey(conversationID string) string {
	return fmt.Sprintf("context:%s", conversationID)
}

func (r *redisContextRepo) GetContext(ctx context.Context, conversationID string) (*domain.ConversationContext, error) {
	data, err := r.client.Get(ctx, contextKey(conversationID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get context: %w", err)
	}

	var c domain.ConversationContext
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode context: %w", err)
	}
	return &c, nil
}

func (r *redisContextRepo) SaveContext(ctx context.Context, c *domain.ConversationContext) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode context: %w", err)
	}
	if err := r.client.Set(ctx, contextKey(c.ConversationID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save context: %w", err)
	}
	return nil
}
