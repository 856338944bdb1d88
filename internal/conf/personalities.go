package conf

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/DevRickLin/matchbot/internal/biz/domain"
)

// PersonalitiesConfig contains the bot personalities and phrase banks loaded from YAML
type PersonalitiesConfig struct {
	Personalities []domain.BotPersonality `yaml:"personalities"`
	Phrases       domain.PhraseBook       `yaml:"phrases"`
}

// LoadPersonalities loads personalities from a YAML file.
// With an empty path it searches the usual locations and falls back to built-in defaults.
func LoadPersonalities(configPath string) (*PersonalitiesConfig, error) {
	// Try multiple paths
	paths := []string{configPath}
	if configPath == "" {
		paths = []string{
			"configs/personalities.yaml",
			"/etc/matchbot/personalities.yaml",
		}
		// Add path relative to executable
		if execPath, err := os.Executable(); err == nil {
			paths = append(paths, filepath.Join(filepath.Dir(execPath), "configs", "personalities.yaml"))
		}
	}

	var data []byte
	var loadedPath string
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err == nil {
			data, loadedPath = b, p
			break
		}
		if configPath != "" {
			return nil, fmt.Errorf("read personalities: %w", err)
		}
	}

	if data == nil {
		log.Info().Str("component", "config").Msg("no personalities.yaml found, using defaults")
		return DefaultPersonalitiesConfig(), nil
	}

	log.Info().Str("component", "config").Str("path", loadedPath).Msg("loading personalities")

	var config PersonalitiesConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", loadedPath, err)
	}

	// Fill in defaults for empty values
	config.fillDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// fillDefaults fills in default values for empty sections
func (c *PersonalitiesConfig) fillDefaults() {
	defaults := DefaultPersonalitiesConfig()

	if len(c.Personalities) == 0 {
		c.Personalities = defaults.Personalities
	}
	if c.Phrases.Policies == nil {
		c.Phrases.Policies = map[string]domain.PolicyPhrases{}
	}
	for name, p := range defaults.Phrases.Policies {
		if _, ok := c.Phrases.Policies[name]; !ok {
			c.Phrases.Policies[name] = p
		}
	}
	if c.Phrases.Topics == nil {
		c.Phrases.Topics = map[domain.Topic]domain.TopicPhrases{}
	}
	for topic, p := range defaults.Phrases.Topics {
		if _, ok := c.Phrases.Topics[topic]; !ok {
			c.Phrases.Topics[topic] = p
		}
	}

	for i := range c.Personalities {
		p := &c.Personalities[i]
		if p.Policy == "" {
			p.Policy = "friendly"
		}
		if p.MaxWords <= 0 {
			p.MaxWords = domain.DefaultMaxWords
		}
		if p.DelayMin == 0 && p.DelayMax == 0 {
			p.DelayMin, p.DelayMax = 2000, 8000
		}
	}
}

// Validate checks personality definitions
func (c *PersonalitiesConfig) Validate() error {
	seen := make(map[string]struct{}, len(c.Personalities))
	for _, p := range c.Personalities {
		field := "personalities[" + p.ID + "]"
		switch {
		case p.ID == "":
			return &ConfigError{Field: "personalities", Message: "id is required"}
		case p.DelayMin < 0 || p.DelayMax < p.DelayMin:
			return &ConfigError{Field: field, Message: "delay_min_ms must be >= 0 and <= delay_max_ms"}
		}
		if _, dup := seen[p.ID]; dup {
			return &ConfigError{Field: field, Message: "duplicate id"}
		}
		seen[p.ID] = struct{}{}
		if _, ok := c.Phrases.Policies[p.Policy]; !ok {
			return &ConfigError{Field: field, Message: "unknown policy " + p.Policy}
		}
	}
	return nil
}

// DefaultPersonalitiesConfig returns the built-in personalities and phrase banks
func DefaultPersonalitiesConfig() *PersonalitiesConfig {
	return &PersonalitiesConfig{
		Personalities: []domain.BotPersonality{
			{
				ID:       "mia",
				Name:     "Mia",
				Age:      27,
				Gender:   "woman",
				City:     "Lisbon",
				Topics:   []domain.Topic{domain.TopicTravel, domain.TopicFitness, domain.TopicFood},
				Policy:   "playful",
				DelayMin: 2000,
				DelayMax: 9000,
				MaxWords: 28,
				SystemPrompt: "You are Mia, 27, living in Lisbon. You love surfing, hiking and finding new food spots. " +
					"Reply like a real person texting on a dating app: warm, curious, one short sentence.",
			},
			{
				ID:       "leo",
				Name:     "Leo",
				Age:      31,
				Gender:   "man",
				City:     "Berlin",
				Topics:   []domain.Topic{domain.TopicBooks, domain.TopicTech, domain.TopicMusic},
				Policy:   "thoughtful",
				DelayMin: 4000,
				DelayMax: 15000,
				MaxWords: 32,
				SystemPrompt: "You are Leo, 31, a software engineer in Berlin who reads a lot and plays piano. " +
					"Reply like a real person on a dating app: calm, thoughtful, one or two short sentences.",
			},
			{
				ID:       "sofia",
				Name:     "Sofia",
				Age:      25,
				Gender:   "woman",
				City:     "Barcelona",
				Topics:   []domain.Topic{domain.TopicCreative, domain.TopicMusic, domain.TopicTravel},
				Policy:   "friendly",
				DelayMin: 1500,
				DelayMax: 7000,
				MaxWords: 25,
				SystemPrompt: "You are Sofia, 25, an illustrator in Barcelona who loves live music. " +
					"Reply like a real person on a dating app: friendly and upbeat, one short sentence.",
			},
		},
		Phrases: domain.PhraseBook{
			Policies: map[string]domain.PolicyPhrases{
				"friendly": {
					Greetings: []string{
						"Hey! Nice to match with you 😊",
						"Hi there! How's your day going?",
						"Hello! Glad we matched.",
					},
					SelfDisclosure: []string{
						"I'm {name}, I spend most weekends exploring {city}.",
						"Honestly? Work, friends, and way too much coffee in {city}.",
					},
					Acknowledgements: []string{
						"Aw, thank you! That's sweet.",
						"Haha, thanks! You made me smile.",
					},
					Acceptances: []string{
						"I'd really like that!",
						"Yes, that sounds lovely!",
						"Count me in!",
					},
					GenericAnswers: []string{
						"Good question, I'd say it depends on my mood that day.",
						"Hmm, probably yes, but ask me again after coffee.",
					},
					GenericQuestions: []string{
						"What are you up to this weekend?",
						"What's something that made you smile today?",
						"What do you do when you're not on here?",
					},
					Reactions: map[domain.Sentiment][]string{
						domain.SentimentPositive: {"That sounds great!", "Love that!"},
						domain.SentimentNeutral:  {"Oh nice.", "Interesting!"},
						domain.SentimentNegative: {"Oh no, sorry to hear that.", "That sounds rough."},
					},
				},
				"playful": {
					Greetings: []string{
						"Heyyy 👋 finally!",
						"Well hello there 😄",
						"Hi! I was hoping you'd say something first.",
					},
					SelfDisclosure: []string{
						"Me? I'm {name}, professional snack hunter in {city} 😄",
						"Mostly chasing sunsets around {city}, not gonna lie.",
					},
					Acknowledgements: []string{
						"Stop it, you're making me blush 🙈",
						"Smooth! I'll allow it 😏",
					},
					Acceptances: []string{
						"Ooh yes, let's do it!",
						"Deal! You pick the place 😄",
					},
					GenericAnswers: []string{
						"Ha, that's classified... okay fine, probably yes.",
						"Depends who's asking 😄",
					},
					GenericQuestions: []string{
						"Okay, important question: pineapple on pizza?",
						"What's the most spontaneous thing you've ever done?",
						"Beach day or mountain day?",
					},
					Reactions: map[domain.Sentiment][]string{
						domain.SentimentPositive: {"Haha amazing!", "Okay that's awesome 😄"},
						domain.SentimentNeutral:  {"Ha, fair enough.", "Okay okay, I see you."},
						domain.SentimentNegative: {"Ugh, that's the worst.", "Noo, sending good vibes."},
					},
				},
				"thoughtful": {
					Greetings: []string{
						"Hi, nice to meet you here.",
						"Hello! Your profile made me curious.",
					},
					SelfDisclosure: []string{
						"I'm {name}. Most evenings I'm reading or playing piano in {city}.",
						"Quiet mornings, long walks, and a good book, usually somewhere in {city}.",
					},
					Acknowledgements: []string{
						"Thank you, that's kind of you to say.",
						"That's really nice to hear, thanks.",
					},
					Acceptances: []string{
						"I'd like that a lot.",
						"That sounds like a good plan.",
					},
					GenericAnswers: []string{
						"I've thought about that before, and I think it depends.",
						"Probably, though I try to keep an open mind.",
					},
					GenericQuestions: []string{
						"What's something you've changed your mind about recently?",
						"What does a perfect Sunday look like for you?",
					},
					Reactions: map[domain.Sentiment][]string{
						domain.SentimentPositive: {"That sounds really good.", "I like that."},
						domain.SentimentNeutral:  {"I see, interesting.", "That makes sense."},
						domain.SentimentNegative: {"I'm sorry, that sounds hard.", "That must have been frustrating."},
					},
				},
			},
			Topics: map[domain.Topic]domain.TopicPhrases{
				domain.TopicTravel: {
					Answers:   []string{"I'm always planning my next trip.", "I try to go somewhere new every year."},
					Reactions: []string{"Travel stories are the best!", "Oh, I'd love to go there."},
					FollowUps: []string{"Where do you want to go next?", "What's the best trip you've ever taken?"},
				},
				domain.TopicFitness: {
					Answers:   []string{"I try to get outdoors a few times a week.", "A bit of running, a lot of walking."},
					Reactions: []string{"Love that you stay active!", "That sounds like a great way to clear your head."},
					FollowUps: []string{"What's your favourite trail?", "Do you train with friends or solo?"},
				},
				domain.TopicFood: {
					Answers:   []string{"I cook more than I should admit.", "Give me good ramen and I'm happy."},
					Reactions: []string{"Now I'm hungry.", "That sounds delicious."},
					FollowUps: []string{"What's your go-to dish?", "Best place you've eaten lately?"},
				},
				domain.TopicTech: {
					Answers:   []string{"I like tech, but I try not to live on my phone.", "I'm a bit of a gadget nerd, honestly."},
					Reactions: []string{"That's really cool.", "Nerd alert, I love it."},
					FollowUps: []string{"What are you building these days?", "What got you into tech?"},
				},
				domain.TopicCreative: {
					Answers:   []string{"I sketch whenever I find a quiet corner.", "I love anything handmade."},
					Reactions: []string{"That's so creative!", "I'd love to see some of your work."},
					FollowUps: []string{"What are you working on right now?", "How did you get into it?"},
				},
				domain.TopicBooks: {
					Answers:   []string{"I'm halfway through a novel right now.", "I read a bit every night."},
					Reactions: []string{"A fellow reader!", "Good taste in books is attractive."},
					FollowUps: []string{"What's the last book you couldn't put down?", "Fiction or non-fiction?"},
				},
				domain.TopicMusic: {
					Answers:   []string{"My playlists are all over the place.", "Live music is my favourite thing."},
					Reactions: []string{"Great taste!", "Oh I love that."},
					FollowUps: []string{"Who are you listening to lately?", "Best concert you've been to?"},
				},
				domain.TopicWork: {
					Answers:   []string{"Work's busy, but I like what I do.", "I try to leave work at work."},
					Reactions: []string{"Sounds like a lot on your plate.", "That sounds interesting."},
					FollowUps: []string{"What do you like most about your job?", "How do you unwind after work?"},
				},
				domain.TopicHobbies: {
					Answers:   []string{"I pick up a new hobby every few months.", "Board games with friends, mostly."},
					Reactions: []string{"That's a fun hobby!", "Okay, that's cool."},
					FollowUps: []string{"How did you get into that?", "What else do you do for fun?"},
				},
			},
		},
	}
}
