package biz

import (
	"math/rand"
	"time"

	"github.com/DevRickLin/matchbot/internal/biz/domain"
	"github.com/DevRickLin/matchbot/internal/biz/repo"
	"github.com/DevRickLin/matchbot/internal/biz/usecase"
)

// Usecases contains all usecases
type Usecases struct {
	Analyzer     *usecase.Analyzer
	Policy       *usecase.DialoguePolicy
	Queue        *usecase.QueueUsecase
	Preferences  *usecase.PreferenceUsecase
	Feed         *usecase.FeedUsecase
	Conversation *usecase.ConversationUsecase
}

// Repos groups the repositories the usecases depend on.
// Presence, Contexts, Audit and Generator are optional.
type Repos struct {
	Queue     repo.QueueRepo
	Messages  repo.MessageRepo
	Profiles  repo.ProfileRepo
	Swipes    repo.SwipeRepo
	Presence  repo.PresenceRepo
	Contexts  repo.ContextRepo
	Audit     repo.AuditRepo
	Generator repo.ReplyGenerator
}

// Options tunes the usecases
type Options struct {
	Personalities    []domain.BotPersonality
	Phrases          domain.PhraseBook
	Queue            usecase.QueueConfig
	Preference       usecase.PreferenceConfig
	HistoryLimit     int
	GeneratorTimeout time.Duration
	Seed             int64 // 0 seeds from the clock
}

// NewUsecases wires all usecases
func NewUsecases(repos Repos, opts Options) *Usecases {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	analyzer := usecase.NewAnalyzer()
	rules := usecase.NewRulePolicy(analyzer, &opts.Phrases, rand.New(rand.NewSource(seed)))
	policy := usecase.NewDialoguePolicy(rules, repos.Generator, opts.GeneratorTimeout)

	queue := usecase.NewQueueUsecase(repos.Queue, repos.Messages, usecase.DeliveryHooks{
		Presence: repos.Presence,
		Contexts: repos.Contexts,
		Audit:    repos.Audit,
	}, analyzer, opts.Queue)

	preferences := usecase.NewPreferenceUsecase(repos.Swipes, repos.Profiles, opts.Preference)

	return &Usecases{
		Analyzer:     analyzer,
		Policy:       policy,
		Queue:        queue,
		Preferences:  preferences,
		Feed:         usecase.NewFeedUsecase(repos.Profiles, repos.Swipes, preferences, usecase.NewRanker()),
		Conversation: usecase.NewConversationUsecase(opts.Personalities, analyzer, policy, queue, repos.Messages, repos.Presence, opts.HistoryLimit),
	}
}
