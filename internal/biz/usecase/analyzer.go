package usecase

import (
	"regexp"
	"strings"

	"github.com/DevRickLin/matchbot/internal/biz/domain"
)

// intentRule maps a pattern to an intent. Rules are evaluated top-down, first match wins.
type intentRule struct {
	intent domain.Intent
	match  func(text string) bool
}

var (
	greetingRe = regexp.MustCompile(`^\W*(hi+|hey+|hello+|hiya|heya|howdy|hola|yo|sup|wassup|what'?s up|good (morning|afternoon|evening))\b`)
	questionRe = regexp.MustCompile(`^\W*(what|what's|whats|why|how|when|where|who|which|do|does|did|are|is|can|could|would|will|have|has|should|wanna)\b`)
	youRe      = regexp.MustCompile(`\b(you|your|yours|yourself|u|ur)\b`)
	aboutYouRe = regexp.MustCompile(`\b(what about you|how about you|and you|hbu|wbu)\b`)

	complimentRes = []*regexp.Regexp{
		regexp.MustCompile(`\b(you're|you are|you look|youre|ur)\b.*\b(cute|beautiful|pretty|handsome|gorgeous|stunning|amazing|lovely|sweet|funny|smart|hot|attractive|charming|adorable|cool|interesting)\b`),
		regexp.MustCompile(`\b(love|like|adore) your\b`),
		regexp.MustCompile(`\b(cute|gorgeous|stunning|beautiful|great|nice|lovely|amazing) (smile|eyes|photos?|pics?|profile|style|hair|laugh|vibe)\b`),
	}

	suggestionRe = regexp.MustCompile(`\b(let'?s|we should|we could|shall we|want to (meet|grab|get|go|hang)|how about (we|grabbing|getting|meeting)|maybe we (could|can|should)|(grab|get) (a )?(coffee|drink|drinks|dinner|lunch)|meet up|hang out)\b`)

	tokenRe = regexp.MustCompile(`[a-z']+|:\)|:\(`)
)

// topicKeywords holds the keyword set of each topic
var topicKeywords = map[domain.Topic][]string{
	domain.TopicTravel: {
		"travel", "traveling", "travelling", "trip", "trips", "vacation", "holiday", "abroad",
		"flight", "flights", "backpacking", "passport", "road trip", "beach", "explore", "exploring",
	},
	domain.TopicFitness: {
		"gym", "workout", "hiking", "hike", "hikes", "running", "marathon", "yoga", "climbing",
		"bouldering", "cycling", "swimming", "fitness", "crossfit", "pilates", "football", "soccer",
		"tennis", "sport", "sports",
	},
	domain.TopicFood: {
		"food", "cook", "cooking", "bake", "baking", "restaurant", "restaurants", "brunch", "pizza",
		"sushi", "pasta", "recipe", "recipes", "wine", "foodie", "chef", "tacos", "ramen",
	},
	domain.TopicTech: {
		"tech", "code", "coding", "programming", "developer", "software", "computer", "startup",
		"app", "apps", "ai", "gadget", "gadgets", "engineer", "engineering",
	},
	domain.TopicCreative: {
		"art", "paint", "painting", "draw", "drawing", "design", "photography", "writing", "poetry",
		"craft", "crafts", "pottery", "dance", "dancing", "sketch", "sketching",
	},
	domain.TopicBooks: {
		"book", "books", "read", "reading", "novel", "novels", "author", "library", "kindle",
	},
	domain.TopicMusic: {
		"music", "song", "songs", "concert", "concerts", "band", "guitar", "piano", "singing",
		"playlist", "festival", "gig", "vinyl", "jazz",
	},
	domain.TopicWork: {
		"work", "job", "office", "career", "boss", "colleague", "colleagues", "deadline", "shift",
		"working",
	},
	domain.TopicHobbies: {
		"hobby", "hobbies", "gaming", "games", "video games", "board games", "chess", "gardening",
		"fishing", "knitting", "puzzles", "collecting",
	},
}

var (
	positiveWords = wordSet("love", "loved", "great", "amazing", "awesome", "fantastic", "good", "nice",
		"happy", "fun", "excited", "wonderful", "beautiful", "lovely", "enjoy", "enjoyed", "glad",
		"cool", "perfect", "best", "haha", "lol", "yay", "incredible", "brilliant", ":)")
	negativeWords = wordSet("hate", "hated", "bad", "awful", "terrible", "sad", "tired", "boring",
		"annoying", "worst", "upset", "angry", "stressed", "sick", "ugh", "sucks", "disappointed",
		"lonely", "exhausted", "horrible", ":(")
	negations = wordSet("not", "never", "no", "don't", "dont", "isn't", "wasn't", "didn't", "aren't")
)

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Analyzer extracts intent, topics and sentiment from free text with deterministic rules
type Analyzer struct {
	rules  []intentRule
	topics map[domain.Topic]*regexp.Regexp
}

// NewAnalyzer compiles the rule set
func NewAnalyzer() *Analyzer {
	a := &Analyzer{topics: make(map[domain.Topic]*regexp.Regexp, len(topicKeywords))}
	for topic, words := range topicKeywords {
		quoted := make([]string, len(words))
		for i, w := range words {
			quoted[i] = regexp.QuoteMeta(w)
		}
		a.topics[topic] = regexp.MustCompile(`\b(` + strings.Join(quoted, "|") + `)\b`)
	}

	a.rules = []intentRule{
		{domain.IntentGreeting, greetingRe.MatchString},
		{domain.IntentQuestionAboutCounterpart, func(s string) bool {
			return aboutYouRe.MatchString(s) || (isQuestion(s) && youRe.MatchString(s))
		}},
		{domain.IntentQuestion, isQuestion},
		{domain.IntentCompliment, func(s string) bool {
			for _, re := range complimentRes {
				if re.MatchString(s) {
					return true
				}
			}
			return false
		}},
		{domain.IntentSuggestion, suggestionRe.MatchString},
	}
	return a
}

func isQuestion(s string) bool {
	return strings.Contains(s, "?") || questionRe.MatchString(s)
}

// Analyze never fails; unrecognized input yields a neutral statement without topics
func (a *Analyzer) Analyze(text string) domain.MessageAnalysis {
	normalized := strings.ToLower(strings.TrimSpace(text))
	normalized = strings.ReplaceAll(normalized, "’", "'")

	return domain.MessageAnalysis{
		Intent:    a.intent(normalized),
		Topics:    a.detectTopics(normalized),
		Sentiment: sentiment(normalized),
	}
}

func (a *Analyzer) intent(text string) domain.Intent {
	if text == "" {
		return domain.IntentStatement
	}
	for _, rule := range a.rules {
		if rule.match(text) {
			return rule.intent
		}
	}
	return domain.IntentStatement
}

func (a *Analyzer) detectTopics(text string) []domain.Topic {
	topics := []domain.Topic{}
	if text == "" {
		return topics
	}
	for _, topic := range domain.TopicPriority {
		if re, ok := a.topics[topic]; ok && re.MatchString(text) {
			topics = append(topics, topic)
		}
	}
	return topics
}

func sentiment(text string) domain.Sentiment {
	tokens := tokenRe.FindAllString(text, -1)
	pos, neg := 0, 0
	for i, tok := range tokens {
		negated := i > 0 && contains(negations, tokens[i-1])
		if contains(positiveWords, tok) {
			if negated {
				neg++
			} else {
				pos++
			}
		} else if contains(negativeWords, tok) {
			if negated {
				pos++
			} else {
				neg++
			}
		}
	}
	switch {
	case pos > neg:
		return domain.SentimentPositive
	case neg > pos:
		return domain.SentimentNegative
	default:
		return domain.SentimentNeutral
	}
}

func contains(set map[string]struct{}, word string) bool {
	_, ok := set[word]
	return ok
}

// TopicsOf returns the topics mentioned across history, least recent first.
// The last element is the most recently discussed topic.
func (a *Analyzer) TopicsOf(history []domain.ConversationTurn) []domain.Topic {
	var ordered []domain.Topic
	for _, turn := range history {
		for _, topic := range a.Analyze(turn.Text).Topics {
			ordered = moveToEnd(ordered, topic)
		}
	}
	return ordered
}

func moveToEnd(list []domain.Topic, t domain.Topic) []domain.Topic {
	for i, existing := range list {
		if existing == t {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	return append(list, t)
}
