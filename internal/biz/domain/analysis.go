package domain

// Intent is the coarse conversational act a message performs
type Intent string

const (
	IntentGreeting                 Intent = "greeting"
	IntentQuestionAboutCounterpart Intent = "question_about_counterpart"
	IntentQuestion                 Intent = "question"
	IntentCompliment               Intent = "compliment"
	IntentSuggestion               Intent = "suggestion"
	IntentStatement                Intent = "statement"
)

// Valid reports whether the intent is one of the known values
func (i Intent) Valid() bool {
	switch i {
	case IntentGreeting, IntentQuestionAboutCounterpart, IntentQuestion,
		IntentCompliment, IntentSuggestion, IntentStatement:
		return true
	}
	return false
}

// Sentiment is a three-bucket polarity
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Valid reports whether the sentiment is one of the known values
func (s Sentiment) Valid() bool {
	return s == SentimentPositive || s == SentimentNeutral || s == SentimentNegative
}

// Topic is a coarse subject-matter tag. Profile interest tags share this vocabulary.
type Topic string

const (
	TopicTravel   Topic = "travel"
	TopicFitness  Topic = "fitness"
	TopicFood     Topic = "food"
	TopicTech     Topic = "tech"
	TopicCreative Topic = "creative"
	TopicBooks    Topic = "books"
	TopicMusic    Topic = "music"
	TopicWork     Topic = "work"
	TopicHobbies  Topic = "hobbies"
)

// TopicPriority is the fixed order used to pick a primary topic
var TopicPriority = []Topic{
	TopicTravel,
	TopicFitness,
	TopicFood,
	TopicTech,
	TopicCreative,
	TopicBooks,
	TopicMusic,
	TopicWork,
	TopicHobbies,
}

// MessageAnalysis is derived from a single inbound text and never stored
type MessageAnalysis struct {
	Intent    Intent    `json:"intent"`
	Topics    []Topic   `json:"topics"` // ordered by TopicPriority
	Sentiment Sentiment `json:"sentiment"`
}

// PrimaryTopic returns the highest-priority detected topic, or "" when none
func (a MessageAnalysis) PrimaryTopic() Topic {
	if len(a.Topics) == 0 {
		return ""
	}
	return a.Topics[0]
}

// HasTopic checks whether t was detected
func (a MessageAnalysis) HasTopic(t Topic) bool {
	for _, got := range a.Topics {
		if got == t {
			return true
		}
	}
	return false
}
