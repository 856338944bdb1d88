package usecase

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/DevRickLin/matchbot/internal/biz/domain"
	"github.com/DevRickLin/matchbot/internal/biz/repo"
)

// DefaultPolicy is used when a personality names an unknown policy
const DefaultPolicy = "friendly"

// Last-resort lines for phrase banks that are missing or empty
const (
	fallbackGreeting = "Hey! How's your day going?"
	fallbackReply    = "Haha, tell me more!"
	fallbackQuestion = "What's been the best part of your week?"
)

// RulePolicy chooses a reply from curated phrase banks.
// Randomness only picks between equivalent phrasings; whether a follow-up is
// asked is decided by rules.
type RulePolicy struct {
	analyzer *Analyzer
	phrases  *domain.PhraseBook

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRulePolicy creates a rule-based policy. rng must not be shared with other goroutines.
func NewRulePolicy(analyzer *Analyzer, phrases *domain.PhraseBook, rng *rand.Rand) *RulePolicy {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if phrases == nil {
		phrases = &domain.PhraseBook{}
	}
	return &RulePolicy{analyzer: analyzer, phrases: phrases, rng: rng}
}

// Generate implements repo.ReplyGenerator. It never fails and ignores the timeout.
func (p *RulePolicy) Generate(ctx context.Context, req *repo.GenerateRequest, timeout time.Duration) (string, error) {
	return p.Respond(req.Personality, req.History, req.UserMessage), nil
}

// Respond returns a non-empty reply within the personality's word budget
func (p *RulePolicy) Respond(personality *domain.BotPersonality, history []domain.ConversationTurn, incoming string) string {
	if personality == nil {
		personality = &domain.BotPersonality{}
	}
	bank := p.phrases.PolicyFor(personality.Policy, DefaultPolicy)
	analysis := p.analyzer.Analyze(incoming)
	budget := personality.WordBudget()

	if len(history) == 0 || analysis.Intent == domain.IntentGreeting {
		return compose(p.fill(personality, p.pick(bank.Greetings, fallbackGreeting), ""), "", false, budget)
	}

	var main string
	ask, mandatory := false, false
	topic := analysis.PrimaryTopic()

	switch analysis.Intent {
	case domain.IntentQuestionAboutCounterpart:
		main = p.pick(bank.SelfDisclosure, fallbackReply)
		ask, mandatory = true, true
	case domain.IntentCompliment:
		main = p.pick(bank.Acknowledgements, fallbackReply)
		ask = p.shouldAsk(analysis, history)
	case domain.IntentQuestion:
		if answers := p.phrases.Topics[topic].Answers; topic != "" && len(answers) > 0 {
			main = p.pick(answers, fallbackReply)
		} else {
			main = p.pick(bank.GenericAnswers, fallbackReply)
		}
		ask = p.shouldAsk(analysis, history)
	case domain.IntentSuggestion:
		main = p.pick(bank.Acceptances, fallbackReply)
	default:
		if reactions := p.phrases.Topics[topic].Reactions; topic != "" && len(reactions) > 0 {
			main = p.pick(reactions, fallbackReply)
		} else {
			main = p.pick(bank.Reactions[analysis.Sentiment], fallbackReply)
		}
		ask = p.shouldAsk(analysis, history)
	}
	main = p.fill(personality, main, topic)

	var followUp string
	if ask {
		followUp = p.followUp(personality, bank, analysis, history)
	}
	return compose(main, followUp, mandatory, budget)
}

// shouldAsk decides whether to append a follow-up question.
// Precedence: question or previous greeting, then new topic, then user-turn parity.
func (p *RulePolicy) shouldAsk(analysis domain.MessageAnalysis, history []domain.ConversationTurn) bool {
	if analysis.Intent == domain.IntentQuestion {
		return true
	}
	if last := domain.LastTurnOf(history, domain.RoleUser); last != nil &&
		p.analyzer.Analyze(last.Text).Intent == domain.IntentGreeting {
		return true
	}

	seen := p.analyzer.TopicsOf(history)
	for _, t := range analysis.Topics {
		if !containsTopic(seen, t) {
			return true
		}
	}

	// the incoming message is the next user turn
	return (domain.CountRole(history, domain.RoleUser)+1)%2 == 0
}

// followUp asks about followUpTopic, or a generic question when that topic has none
func (p *RulePolicy) followUp(personality *domain.BotPersonality, bank domain.PolicyPhrases, analysis domain.MessageAnalysis, history []domain.ConversationTurn) string {
	topic := followUpTopic(personality, analysis, p.analyzer.TopicsOf(history))
	if questions := p.phrases.Topics[topic].FollowUps; topic != "" && len(questions) > 0 {
		return p.fill(personality, p.pick(questions, fallbackQuestion), topic)
	}
	return p.fill(personality, p.pick(bank.GenericQuestions, fallbackQuestion), topic)
}

// followUpTopic picks what to ask about. Topics of the incoming message come first,
// preferring one the personality is into. Otherwise the most recent discussed topic the
// personality likes, then the most recent one at all, then the personality's favourite.
func followUpTopic(personality *domain.BotPersonality, analysis domain.MessageAnalysis, seen []domain.Topic) domain.Topic {
	for _, t := range personality.Topics {
		if analysis.HasTopic(t) {
			return t
		}
	}
	if t := analysis.PrimaryTopic(); t != "" {
		return t
	}
	for i := len(seen) - 1; i >= 0; i-- {
		if personality.LikesTopic(seen[i]) {
			return seen[i]
		}
	}
	if len(seen) > 0 {
		return seen[len(seen)-1]
	}
	if len(personality.Topics) > 0 {
		return personality.Topics[0]
	}
	return ""
}

func (p *RulePolicy) pick(options []string, fallback string) string {
	if len(options) == 0 {
		return fallback
	}
	p.mu.Lock()
	i := p.rng.Intn(len(options))
	p.mu.Unlock()
	if strings.TrimSpace(options[i]) == "" {
		return fallback
	}
	return options[i]
}

// fill substitutes {name}, {city} and {topic} placeholders
func (p *RulePolicy) fill(personality *domain.BotPersonality, line string, topic domain.Topic) string {
	if !strings.Contains(line, "{") {
		return line
	}
	topicName := string(topic)
	if topicName == "" {
		topicName = "that"
	}
	city := personality.City
	if city == "" {
		city = "my city"
	}
	return strings.NewReplacer(
		"{name}", personality.Name,
		"{city}", city,
		"{topic}", topicName,
	).Replace(line)
}

// compose joins a reply with an optional follow-up under a word budget.
// A non-mandatory follow-up is dropped first; the result is then truncated.
func compose(main, followUp string, mandatory bool, budget int) string {
	if budget <= 0 {
		budget = domain.DefaultMaxWords
	}
	mainWords := strings.Fields(main)
	followWords := strings.Fields(followUp)
	if len(mainWords) == 0 {
		mainWords = strings.Fields(fallbackReply)
	}

	if len(followWords) > 0 && len(mainWords)+len(followWords) > budget {
		if !mandatory || len(followWords) >= budget {
			followWords = nil
		} else {
			mainWords = mainWords[:budget-len(followWords)]
		}
	}

	words := append(mainWords, followWords...)
	if len(words) > budget {
		words = words[:budget]
	}
	return strings.Join(words, " ")
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

func containsTopic(list []domain.Topic, t domain.Topic) bool {
	for _, got := range list {
		if got == t {
			return true
		}
	}
	return false
}

// DialoguePolicy consults an optional generative backend and falls back to the rules
type DialoguePolicy struct {
	rules   *RulePolicy
	backend repo.ReplyGenerator
	timeout time.Duration
	log     zerolog.Logger
}

// NewDialoguePolicy creates a dialogue policy. backend may be nil.
func NewDialoguePolicy(rules *RulePolicy, backend repo.ReplyGenerator, timeout time.Duration) *DialoguePolicy {
	if timeout <= 0 {
		timeout = 4 * time.Second
	}
	return &DialoguePolicy{
		rules:   rules,
		backend: backend,
		timeout: timeout,
		log:     log.With().Str("component", "policy").Logger(),
	}
}

// Respond never fails. The backend is called at most once per turn.
func (d *DialoguePolicy) Respond(ctx context.Context, personality *domain.BotPersonality, history []domain.ConversationTurn, incoming string) string {
	if d.backend != nil && personality != nil && !personality.DisableGenerator {
		if reply, ok := d.fromBackend(ctx, personality, history, incoming); ok {
			return reply
		}
	}
	return d.rules.Respond(personality, history, incoming)
}

func (d *DialoguePolicy) fromBackend(ctx context.Context, personality *domain.BotPersonality, history []domain.ConversationTurn, incoming string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	reply, err := d.backend.Generate(ctx, &repo.GenerateRequest{
		Personality: personality,
		History:     history,
		UserMessage: incoming,
	}, d.timeout)
	if err != nil {
		d.log.Warn().Err(err).Str("bot_id", personality.ID).Msg("generator failed, using rules")
		return "", false
	}

	reply = strings.TrimSpace(reply)
	switch {
	case reply == "":
		d.log.Warn().Str("bot_id", personality.ID).Msg("generator returned empty text, using rules")
		return "", false
	case wordCount(reply) > personality.WordBudget():
		d.log.Warn().Str("bot_id", personality.ID).Int("words", wordCount(reply)).Msg("generator reply over budget, using rules")
		return "", false
	}
	return reply, true
}
