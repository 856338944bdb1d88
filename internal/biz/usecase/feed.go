package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/DevRickLin/matchbot/internal/biz/domain"
	"github.com/DevRickLin/matchbot/internal/biz/repo"
)

const (
	defaultFeedLimit = 20
	maxFeedLimit     = 100
	// candidates fetched per requested feed slot, before hard filters
	candidatePoolFactor = 5
)

// FeedUsecase builds ranked candidate feeds and records swipes
type FeedUsecase struct {
	profiles    repo.ProfileRepo
	swipes      repo.SwipeRepo
	preferences *PreferenceUsecase
	ranker      *Ranker
	log         zerolog.Logger
}

// NewFeedUsecase creates a feed usecase
func NewFeedUsecase(profiles repo.ProfileRepo, swipes repo.SwipeRepo, preferences *PreferenceUsecase, ranker *Ranker) *FeedUsecase {
	return &FeedUsecase{
		profiles:    profiles,
		swipes:      swipes,
		preferences: preferences,
		ranker:      ranker,
		log:         log.With().Str("component", "feed").Logger(),
	}
}

// Feed returns up to limit ranked candidates for userID
func (uc *FeedUsecase) Feed(ctx context.Context, userID string, limit int) ([]domain.ScoredCandidate, error) {
	if userID == "" {
		return nil, newError(ErrorInvalidInput, "user id is required", nil)
	}
	if limit <= 0 {
		limit = defaultFeedLimit
	}
	if limit > maxFeedLimit {
		limit = maxFeedLimit
	}

	user, err := uc.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, newError(ErrorUpstream, "read user profile", err)
	}
	if user == nil {
		return nil, newError(ErrorNotFound, "user profile not found", nil)
	}

	swiped, err := uc.swipes.SwipedTargets(ctx, userID)
	if err != nil {
		return nil, newError(ErrorUpstream, "read swiped targets", err)
	}
	blocked, err := uc.profiles.BlockedIDs(ctx, userID)
	if err != nil {
		return nil, newError(ErrorUpstream, "read blocks", err)
	}

	// page until the pool is full or the store runs out
	pool := limit * candidatePoolFactor
	var eligible []domain.Profile
	scanned := 0
	for offset := 0; len(eligible) < pool; offset += pool {
		page, err := uc.profiles.ListCandidates(ctx, userID, offset, pool)
		if err != nil {
			return nil, newError(ErrorUpstream, "list candidates", err)
		}
		scanned += len(page)
		eligible = append(eligible, ApplyHardFilters(user, page, swiped, blocked)...)
		if len(page) < pool {
			break
		}
	}

	model, err := uc.preferences.Learn(ctx, userID)
	if err != nil {
		return nil, err
	}

	ranked := uc.ranker.Rank(user, eligible, model)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	uc.log.Debug().
		Str("user_id", userID).
		Int("candidates", scanned).
		Int("eligible", len(eligible)).
		Int("returned", len(ranked)).
		Msg("feed built")
	return ranked, nil
}

// ApplyHardFilters drops self, already swiped, blocked and gender-incompatible candidates.
// Filtering happens before ranking and never affects scores.
func ApplyHardFilters(user *domain.Profile, candidates []domain.Profile, swiped, blocked map[string]struct{}) []domain.Profile {
	eligible := make([]domain.Profile, 0, len(candidates))
	for _, c := range candidates {
		if c.ID == user.ID {
			continue
		}
		if _, ok := swiped[c.ID]; ok {
			continue
		}
		if _, ok := blocked[c.ID]; ok {
			continue
		}
		if !user.Accepts(c.Gender) || !c.Accepts(user.Gender) {
			continue
		}
		eligible = append(eligible, c)
	}
	return eligible
}

// Preferences exposes the learned model
func (uc *FeedUsecase) Preferences(ctx context.Context, userID string) (*domain.PreferenceModel, error) {
	return uc.preferences.Learn(ctx, userID)
}

// RecordSwipe appends a swipe and invalidates the actor's cached model
func (uc *FeedUsecase) RecordSwipe(ctx context.Context, event *domain.SwipeEvent) (*domain.SwipeEvent, error) {
	switch {
	case event == nil || event.ActorID == "" || event.TargetID == "":
		return nil, newError(ErrorInvalidInput, "actor and target are required", nil)
	case event.ActorID == event.TargetID:
		return nil, newError(ErrorInvalidInput, "cannot swipe on self", nil)
	case !event.Kind.Valid():
		return nil, newError(ErrorInvalidInput, "kind must be like, superlike or pass", nil)
	}

	e := *event
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	if err := uc.swipes.Record(ctx, &e); err != nil {
		return nil, newError(ErrorUpstream, "record swipe", err)
	}
	uc.preferences.Invalidate(e.ActorID)

	uc.log.Debug().Str("actor_id", e.ActorID).Str("target_id", e.TargetID).Str("kind", string(e.Kind)).Msg("swipe recorded")
	return &e, nil
}
