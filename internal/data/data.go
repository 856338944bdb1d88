package data

import (
	"context"
	"database/sql"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/DevRickLin/matchbot/internal/biz/repo"
	"github.com/DevRickLin/matchbot/internal/conf"
	"github.com/DevRickLin/matchbot/internal/infra/feishu"
	"github.com/DevRickLin/matchbot/internal/infra/openai"
)

// Repositories contains all repositories
type Repositories struct {
	DB        *sql.DB
	Queue     repo.QueueRepo
	Messages  repo.MessageRepo
	Profiles  *ProfileStore
	Swipes    repo.SwipeRepo
	Presence  repo.PresenceRepo
	Contexts  repo.ContextRepo
	Audit     repo.AuditRepo      // nil when the mirror is not configured
	Generator repo.ReplyGenerator // nil when no backend is configured

	redis *redis.Client
}

// NewRepositories creates all repositories from the configuration.
// Redis is optional: when it is not configured or unreachable, presence lives in
// process memory and context memory in SQLite.
func NewRepositories(ctx context.Context, cfg *conf.Config) (*Repositories, error) {
	db, err := OpenDB(cfg.Store.DBPath)
	if err != nil {
		return nil, err
	}

	r := &Repositories{
		DB:       db,
		Queue:    NewQueueRepo(db),
		Messages: NewMessageRepo(db),
		Profiles: NewProfileStore(db),
		Swipes:   NewSwipeRepo(db),
		Presence: NewMemoryPresence(),
		Contexts: NewSQLiteContextRepo(db),
	}

	if cfg.Redis.URL != "" {
		client, err := NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			log.Warn().Str("component", "data").Err(err).Msg("redis unavailable, using local presence and context")
		} else {
			r.redis = client
			r.Presence = NewRedisPresence(client)
			r.Contexts = NewRedisContextRepo(client)
		}
	}

	if cfg.OpenAI.Enabled() {
		client := openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model, cfg.OpenAI.Timeout, cfg.OpenAI.MaxTokens)
		r.Generator = NewOpenAIGenerator(client)
		log.Info().Str("component", "data").Str("model", client.Model()).Msg("generative backend enabled")
	}

	if cfg.Feishu.Enabled() {
		r.Audit = NewFeishuAuditRepo(feishu.NewClient(cfg.Feishu.AppID, cfg.Feishu.AppSecret), cfg.Feishu.AuditChatID)
	}

	return r, nil
}

// Close releases the database and Redis connections
func (r *Repositories) Close() error {
	var errs []error
	if r.redis != nil {
		errs = append(errs, r.redis.Close())
	}
	errs = append(errs, r.DB.Close())
	return errors.Join(errs...)
}
