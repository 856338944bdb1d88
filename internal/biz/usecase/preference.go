package usecase

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/DevRickLin/matchbot/internal/biz/domain"
	"github.com/DevRickLin/matchbot/internal/biz/repo"
)

const (
	minAgeHalfWidth = 2.0
	maxLocales      = 3
)

// PreferenceConfig controls preference learning
type PreferenceConfig struct {
	SwipeWindow int           // most recent swipes considered
	CacheTTL    time.Duration // zero disables caching
	CacheSize   int
}

// DefaultPreferenceConfig returns default learner settings
func DefaultPreferenceConfig() PreferenceConfig {
	return PreferenceConfig{
		SwipeWindow: 100,
		CacheTTL:    5 * time.Minute,
		CacheSize:   1024,
	}
}

// PreferenceUsecase derives a user's taste model from the swipe log.
// Models are projections and are only cached for performance.
type PreferenceUsecase struct {
	swipes   repo.SwipeRepo
	profiles repo.ProfileRepo
	cfg      PreferenceConfig
	cache    *expirable.LRU[string, *domain.PreferenceModel]
	now      func() time.Time
	log      zerolog.Logger
}

// NewPreferenceUsecase creates a preference usecase
func NewPreferenceUsecase(swipes repo.SwipeRepo, profiles repo.ProfileRepo, cfg PreferenceConfig) *PreferenceUsecase {
	def := DefaultPreferenceConfig()
	if cfg.SwipeWindow <= 0 {
		cfg.SwipeWindow = def.SwipeWindow
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = def.CacheSize
	}
	uc := &PreferenceUsecase{
		swipes:   swipes,
		profiles: profiles,
		cfg:      cfg,
		now:      time.Now,
		log:      log.With().Str("component", "preference").Logger(),
	}
	if cfg.CacheTTL > 0 {
		uc.cache = expirable.NewLRU[string, *domain.PreferenceModel](cfg.CacheSize, nil, cfg.CacheTTL)
	}
	return uc
}

// Learn returns the user's preference model. Read failures are propagated;
// a partial model is never returned.
func (uc *PreferenceUsecase) Learn(ctx context.Context, userID string) (*domain.PreferenceModel, error) {
	if userID == "" {
		return nil, newError(ErrorInvalidInput, "user id is required", nil)
	}
	if uc.cache != nil {
		if m, ok := uc.cache.Get(userID); ok {
			return m, nil
		}
	}

	events, err := uc.swipes.Recent(ctx, userID, uc.cfg.SwipeWindow)
	if err != nil {
		return nil, newError(ErrorUpstream, "read swipes", err)
	}

	liked := likedTargets(events)
	if len(liked) == 0 {
		m := domain.DefaultPreferenceModel(userID)
		uc.store(userID, m)
		return m, nil
	}

	profiles, err := uc.profiles.GetProfiles(ctx, liked)
	if err != nil {
		return nil, newError(ErrorUpstream, "read liked profiles", err)
	}

	m := buildModel(userID, profiles, uc.now())
	uc.log.Debug().
		Str("user_id", userID).
		Int("sample", m.SampleSize).
		Int("min_age", m.AgeRange.Min).
		Int("max_age", m.AgeRange.Max).
		Msg("model learned")
	uc.store(userID, m)
	return m, nil
}

// Invalidate drops a cached model
func (uc *PreferenceUsecase) Invalidate(userID string) {
	if uc.cache != nil {
		uc.cache.Remove(userID)
	}
}

func (uc *PreferenceUsecase) store(userID string, m *domain.PreferenceModel) {
	if uc.cache != nil {
		uc.cache.Add(userID, m)
	}
}

// likedTargets returns distinct like/superlike targets, newest first
func likedTargets(events []domain.SwipeEvent) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, e := range events {
		if !e.Kind.IsPositive() {
			continue
		}
		if _, dup := seen[e.TargetID]; dup {
			continue
		}
		seen[e.TargetID] = struct{}{}
		ids = append(ids, e.TargetID)
	}
	return ids
}

// buildModel aggregates liked profiles. It is deterministic for a given input set.
func buildModel(userID string, liked []domain.Profile, now time.Time) *domain.PreferenceModel {
	if len(liked) == 0 {
		return domain.DefaultPreferenceModel(userID)
	}

	m := &domain.PreferenceModel{
		UserID:        userID,
		TopicAffinity: make(map[string]int),
		AgeRange:      domain.AgeRange{Min: domain.MinAge, Max: domain.MaxAge},
		SampleSize:    len(liked),
	}

	locales := make(map[string]int)
	var ages []float64
	for i := range liked {
		p := &liked[i]
		seen := make(map[string]struct{})
		for _, tag := range p.Interests {
			key := domain.NormalizeTag(tag)
			if key == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			m.TopicAffinity[key]++
		}
		if city := strings.TrimSpace(p.City); city != "" {
			locales[city]++
		}
		if age := p.AgeAt(now); age > 0 {
			ages = append(ages, float64(age))
		}
	}

	if len(ages) > 0 {
		m.AgeRange = ageRange(ages)
	}
	m.FrequentLocales = topLocales(locales, maxLocales)
	return m
}

// ageRange is mean ± one standard deviation, at least minAgeHalfWidth wide on each side
func ageRange(ages []float64) domain.AgeRange {
	var sum float64
	for _, a := range ages {
		sum += a
	}
	mean := sum / float64(len(ages))

	var variance float64
	for _, a := range ages {
		variance += (a - mean) * (a - mean)
	}
	sd := math.Sqrt(variance / float64(len(ages)))
	if sd < minAgeHalfWidth {
		sd = minAgeHalfWidth
	}

	lo := clampAge(int(math.Floor(mean - sd)))
	hi := clampAge(int(math.Ceil(mean + sd)))
	return domain.AgeRange{Min: lo, Max: hi}
}

func clampAge(age int) int {
	if age < domain.MinAge {
		return domain.MinAge
	}
	if age > domain.MaxAge {
		return domain.MaxAge
	}
	return age
}

// topLocales returns the n most frequent locales, ties broken alphabetically
func topLocales(counts map[string]int, n int) []string {
	locales := make([]string, 0, len(counts))
	for l := range counts {
		locales = append(locales, l)
	}
	sort.Slice(locales, func(i, j int) bool {
		if counts[locales[i]] != counts[locales[j]] {
			return counts[locales[i]] > counts[locales[j]]
		}
		return locales[i] < locales[j]
	})
	if len(locales) > n {
		locales = locales[:n]
	}
	return locales
}
