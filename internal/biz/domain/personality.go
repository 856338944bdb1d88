package domain

import "time"

// BotPersonality is the static definition of a synthetic counterpart, loaded at start
type BotPersonality struct {
	ID       string  `yaml:"id" json:"id"`
	Name     string  `yaml:"name" json:"name"`
	Age      int     `yaml:"age" json:"age"`
	Gender   string  `yaml:"gender" json:"gender"`
	City     string  `yaml:"city" json:"city"`
	Topics   []Topic `yaml:"topics" json:"topics"` // ordered affinities
	Policy   string  `yaml:"policy" json:"policy"`
	DelayMin int     `yaml:"delay_min_ms" json:"delay_min_ms"`
	DelayMax int     `yaml:"delay_max_ms" json:"delay_max_ms"`
	MaxWords int     `yaml:"max_words" json:"max_words"`

	// SystemPrompt is only used by the optional generative backend
	SystemPrompt string `yaml:"system_prompt" json:"-"`
	// DisableGenerator forces the rule-based policy for this personality
	DisableGenerator bool `yaml:"disable_generator" json:"-"`
}

// DefaultMaxWords is the word budget applied when a personality leaves it unset
const DefaultMaxWords = 30

// WordBudget returns the configured word ceiling
func (p *BotPersonality) WordBudget() int {
	if p.MaxWords <= 0 {
		return DefaultMaxWords
	}
	return p.MaxWords
}

// DelayBounds returns the configured latency range, ordered
func (p *BotPersonality) DelayBounds() (time.Duration, time.Duration) {
	lo, hi := p.DelayMin, p.DelayMax
	if lo < 0 {
		lo = 0
	}
	if hi < lo {
		hi = lo
	}
	return time.Duration(lo) * time.Millisecond, time.Duration(hi) * time.Millisecond
}

// LikesTopic reports whether t is among the personality's affinities
func (p *BotPersonality) LikesTopic(t Topic) bool {
	for _, own := range p.Topics {
		if own == t {
			return true
		}
	}
	return false
}

// PolicyPhrases is the curated response set for one dialogue policy
type PolicyPhrases struct {
	Greetings        []string               `yaml:"greetings"`
	SelfDisclosure   []string               `yaml:"self_disclosure"`
	Acknowledgements []string               `yaml:"acknowledgements"`
	Acceptances      []string               `yaml:"acceptances"`
	GenericAnswers   []string               `yaml:"generic_answers"`
	GenericQuestions []string               `yaml:"generic_questions"`
	Reactions        map[Sentiment][]string `yaml:"reactions"`
}

// TopicPhrases is the topic-specific response set shared by all policies
type TopicPhrases struct {
	Answers   []string `yaml:"answers"`
	Reactions []string `yaml:"reactions"`
	FollowUps []string `yaml:"follow_ups"`
}

// PhraseBook groups all response sets
type PhraseBook struct {
	Policies map[string]PolicyPhrases `yaml:"policies"`
	Topics   map[Topic]TopicPhrases   `yaml:"topics"`
}

// PolicyFor returns the phrases of a policy, falling back to fallback when unknown
func (b *PhraseBook) PolicyFor(policy, fallback string) PolicyPhrases {
	if p, ok := b.Policies[policy]; ok {
		return p
	}
	return b.Policies[fallback]
}
