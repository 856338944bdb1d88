package data

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/DevRickLin/matchbot/internal/biz/repo"
)

func typingKey(conversationID, senderID string) string {
	return fmt.Sprintf("typing:%s:%s", conversationID, senderID)
}

// memoryPresence keeps typing indicators in process memory
type memoryPresence struct {
	mu     sync.Mutex
	expiry map[string]time.Time
	now    func() time.Time
}

// NewMemoryPresence creates an in-process presence store
func NewMemoryPresence() repo.PresenceRepo {
	return &memoryPresence{
		expiry: make(map[string]time.Time),
		now:    time.Now,
	}
}

func (p *memoryPresence) SetTyping(ctx context.Context, conversationID, senderID string, ttl time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.now()
	// Drop expired indicators so the map stays small
	for k, until := range p.expiry {
		if !until.After(now) {
			delete(p.expiry, k)
		}
	}
	p.expiry[typingKey(conversationID, senderID)] = now.Add(ttl)
	return nil
}

func (p *memoryPresence) ClearTyping(ctx context.Context, conversationID, senderID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.expiry, typingKey(conversationID, senderID))
	return nil
}

func (p *memoryPresence) IsTyping(ctx context.Context, conversationID, senderID string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	until, ok := p.expiry[typingKey(conversationID, senderID)]
	return ok && until.After(p.now()), nil
}

// redisPresence keeps typing indicators as expiring Redis keys
type redisPresence struct {
	client *redis.Client
}

// NewRedisPresence creates a Redis-backed presence store
func NewRedisPresence(client *redis.Client) repo.PresenceRepo {
	return &redisPresence{client: client}
}

func (p *redisPresence) SetTyping(ctx context.Context, conversationID, senderID string, ttl time.Duration) error {
	if err := p.client.Set(ctx, typingKey(conversationID, senderID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to set typing: %w", err)
	}
	return nil
}

func (p *redisPresence) ClearTyping(ctx context.Context, conversationID, senderID string) error {
	if err := p.client.Del(ctx, typingKey(conversationID, senderID)).Err(); err != nil {
		return fmt.Errorf("failed to clear typing: %w", err)
	}
	return nil
}

func (p *redisPresence) IsTyping(ctx context.Context, conversationID, senderID string) (bool, error) {
	count, err := p.client.Exists(ctx, typingKey(conversationID, senderID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check typing: %w", err)
	}
	return count > 0, nil
}

// NewRedisClient parses url and verifies the connection
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}
