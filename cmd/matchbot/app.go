package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/DevRickLin/matchbot/internal/biz"
	"github.com/DevRickLin/matchbot/internal/conf"
	"github.com/DevRickLin/matchbot/internal/data"
	"github.com/DevRickLin/matchbot/internal/infra/logger"
)

// app holds everything a subcommand needs
type app struct {
	cfg   *conf.Config
	repos *data.Repositories
	uc    *biz.Usecases
}

// bootstrap loads configuration, opens the stores and wires the usecases
func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := conf.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return nil, err
	}

	personalities, err := conf.LoadPersonalities(cfg.Engine.PersonalitiesPath)
	if err != nil {
		return nil, err
	}

	repos, err := data.NewRepositories(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create repositories: %w", err)
	}
	log.Info().Str("component", "main").Str("db", cfg.Store.DBPath).Int("bots", len(personalities.Personalities)).Msg("stores ready")

	uc := biz.NewUsecases(biz.Repos{
		Queue:     repos.Queue,
		Messages:  repos.Messages,
		Profiles:  repos.Profiles,
		Swipes:    repos.Swipes,
		Presence:  repos.Presence,
		Contexts:  repos.Contexts,
		Audit:     repos.Audit,
		Generator: repos.Generator,
	}, biz.Options{
		Personalities:    personalities.Personalities,
		Phrases:          personalities.Phrases,
		Queue:            cfg.ToQueueConfig(),
		Preference:       cfg.ToPreferenceConfig(),
		HistoryLimit:     cfg.Engine.HistoryLimit,
		GeneratorTimeout: cfg.OpenAI.Timeout,
		Seed:             cfg.Engine.Seed,
	})

	return &app{cfg: cfg, repos: repos, uc: uc}, nil
}

func (a *app) Close() {
	if err := a.repos.Close(); err != nil {
		log.Warn().Str("component", "main").Err(err).Msg("close failed")
	}
}
