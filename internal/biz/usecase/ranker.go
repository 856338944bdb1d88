package usecase

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/DevRickLin/matchbot/internal/biz/domain"
)

// Score weights. Each factor is capped so no single one dominates.
const (
	baselineScore = 50.0

	maxInterestPoints     = 30.0
	perSharedInterest     = 8.0
	perAffinityTag        = 2.0
	maxAgePoints          = 25.0
	maxAgeProximityPoints = 10.0
	ageProximitySpan      = 10.0
	inRangeBonus          = 15.0
	maxOutOfRangePenalty  = 15.0
	perYearOutOfRange     = 3.0
	maxLocationPoints     = 20.0
	sameCityPoints        = 15.0
	frequentLocalePoints  = 10.0
	nearbyPoints          = 5.0
	nearbyKm              = 25.0
	maxCompletenessPoints = 10.0
	verifiedPoints        = 7.0

	maxReasons = 3
)

type contribution struct {
	points float64
	reason string
}

// Ranker scores candidates against a preference model. It never filters.
type Ranker struct {
	now func() time.Time
}

// NewRanker creates a ranker
func NewRanker() *Ranker {
	return &Ranker{now: time.Now}
}

// Rank scores every candidate and sorts by score descending, then id ascending
func (r *Ranker) Rank(user *domain.Profile, candidates []domain.Profile, model *domain.PreferenceModel) []domain.ScoredCandidate {
	if user == nil {
		user = &domain.Profile{}
	}
	if model == nil {
		model = domain.DefaultPreferenceModel(user.ID)
	}

	scored := make([]domain.ScoredCandidate, 0, len(candidates))
	for i := range candidates {
		scored = append(scored, domain.ScoredCandidate{
			Profile: candidates[i],
			Score:   r.Score(user, &candidates[i], model),
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score.Total != scored[j].Score.Total {
			return scored[i].Score.Total > scored[j].Score.Total
		}
		return scored[i].Profile.ID < scored[j].Profile.ID
	})
	return scored
}

// Score computes one candidate's score in [0,100] with up to three reasons
func (r *Ranker) Score(user, candidate *domain.Profile, model *domain.PreferenceModel) domain.CandidateScore {
	now := r.now()
	parts := []contribution{
		interestScore(user, candidate, model),
		ageScore(user, candidate, model, now),
		locationScore(user, candidate, model),
		completenessScore(candidate),
		verifiedScore(candidate),
	}

	total := baselineScore
	for _, p := range parts {
		total += p.points
	}
	total = math.Max(0, math.Min(100, total))

	sort.SliceStable(parts, func(i, j int) bool { return parts[i].points > parts[j].points })
	reasons := make([]string, 0, maxReasons)
	for _, p := range parts {
		if len(reasons) == maxReasons {
			break
		}
		if p.points > 0 && p.reason != "" {
			reasons = append(reasons, p.reason)
		}
	}
	return domain.CandidateScore{Total: math.Round(total*10) / 10, Reasons: reasons}
}

func interestScore(user, candidate *domain.Profile, model *domain.PreferenceModel) contribution {
	shared := user.SharedInterests(candidate)

	affine := 0
	seen := make(map[string]struct{})
	for _, tag := range candidate.Interests {
		key := domain.NormalizeTag(tag)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if model.Affinity(key) > 0 {
			affine++
		}
	}

	points := math.Min(maxInterestPoints, perSharedInterest*float64(len(shared))+perAffinityTag*float64(affine))
	switch {
	case len(shared) == 1:
		return contribution{points, "1 shared interest"}
	case len(shared) > 1:
		return contribution{points, fmt.Sprintf("%d shared interests", len(shared))}
	case affine > 0:
		return contribution{points, "Into things you like"}
	}
	return contribution{}
}

func ageScore(user, candidate *domain.Profile, model *domain.PreferenceModel, now time.Time) contribution {
	age := candidate.AgeAt(now)
	if age <= 0 {
		return contribution{}
	}

	// a learned range centers proximity; otherwise the user's own age does
	ref := 0.0
	if !model.IsDefault() {
		ref = model.AgeRange.Midpoint()
	} else if own := user.AgeAt(now); own > 0 {
		ref = float64(own)
	}

	var points float64
	if ref > 0 {
		dist := math.Abs(float64(age) - ref)
		points += maxAgeProximityPoints * math.Max(0, 1-dist/ageProximitySpan)
	}

	if model.IsDefault() {
		return contribution{points, ""}
	}
	if model.AgeRange.Contains(age) {
		points += inRangeBonus
		return contribution{math.Min(maxAgePoints, points), "In your preferred age range"}
	}

	outside := model.AgeRange.Min - age
	if age > model.AgeRange.Max {
		outside = age - model.AgeRange.Max
	}
	penalty := math.Min(maxOutOfRangePenalty, perYearOutOfRange*float64(outside))
	return contribution{points - penalty, ""}
}

func locationScore(user, candidate *domain.Profile, model *domain.PreferenceModel) contribution {
	var c contribution
	switch {
	case user.SameCity(candidate):
		c = contribution{sameCityPoints, "Same city"}
	case isFrequentLocale(model, candidate.City):
		c = contribution{frequentLocalePoints, "Lives in " + strings.TrimSpace(candidate.City)}
	}

	if d := user.DistanceKm(candidate); d >= 0 && d <= nearbyKm {
		c.points += nearbyPoints
		if c.reason == "" {
			c.reason = "Nearby"
		}
	}
	c.points = math.Min(maxLocationPoints, c.points)
	return c
}

func isFrequentLocale(model *domain.PreferenceModel, city string) bool {
	city = strings.TrimSpace(city)
	if city == "" {
		return false
	}
	for _, l := range model.FrequentLocales {
		if strings.EqualFold(l, city) {
			return true
		}
	}
	return false
}

func completenessScore(candidate *domain.Profile) contribution {
	var points float64
	switch bio := strings.TrimSpace(candidate.Bio); {
	case len(bio) >= 80:
		points += 5
	case len(bio) > 0:
		points += 2
	}
	points += math.Min(5, float64(candidate.PhotoCount))
	points = math.Min(maxCompletenessPoints, points)

	if points >= 8 {
		return contribution{points, "Complete profile"}
	}
	return contribution{points, ""}
}

func verifiedScore(candidate *domain.Profile) contribution {
	if !candidate.Verified {
		return contribution{}
	}
	return contribution{verifiedPoints, "Verified"}
}
