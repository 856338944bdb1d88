package domain

// Absolute bounds applied to any learned age range
const (
	MinAge = 18
	MaxAge = 100
)

// AgeRange is an inclusive age interval
type AgeRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Contains reports whether age lies inside the range
func (r AgeRange) Contains(age int) bool {
	return age >= r.Min && age <= r.Max
}

// Midpoint returns the center of the range
func (r AgeRange) Midpoint() float64 {
	return float64(r.Min+r.Max) / 2
}

// PreferenceModel is a recomputable projection of a user's swipe history
type PreferenceModel struct {
	UserID          string         `json:"user_id"`
	TopicAffinity   map[string]int `json:"topic_affinity"`
	AgeRange        AgeRange       `json:"age_range"`
	FrequentLocales []string       `json:"frequent_locales"`
	SampleSize      int            `json:"sample_size"` // liked profiles the model was built from
}

// DefaultPreferenceModel is returned for users without positive swipes
func DefaultPreferenceModel(userID string) *PreferenceModel {
	return &PreferenceModel{
		UserID:          userID,
		TopicAffinity:   map[string]int{},
		AgeRange:        AgeRange{Min: MinAge, Max: MaxAge},
		FrequentLocales: []string{},
	}
}

// IsDefault reports whether the model carries no learned signal
func (m *PreferenceModel) IsDefault() bool {
	return m.SampleSize == 0
}

// Affinity returns how often tag appeared among liked profiles
func (m *PreferenceModel) Affinity(tag string) int {
	if m.TopicAffinity == nil {
		return 0
	}
	return m.TopicAffinity[NormalizeTag(tag)]
}
