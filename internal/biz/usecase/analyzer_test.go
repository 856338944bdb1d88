package usecase

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DevRickLin/matchbot/internal/biz/domain"
)

func TestAnalyzeIntent(t *testing.T) {
	a := NewAnalyzer()

	tests := []struct {
		text string
		want domain.Intent
	}{
		{"hey!", domain.IntentGreeting},
		{"Hello there, how are you?", domain.IntentGreeting},
		{"good morning :)", domain.IntentGreeting},
		{"What do you do for fun?", domain.IntentQuestionAboutCounterpart},
		{"I love sushi, what about you", domain.IntentQuestionAboutCounterpart},
		{"hbu", domain.IntentQuestionAboutCounterpart},
		{"is the weather nice there?", domain.IntentQuestion},
		{"why is monday so long", domain.IntentQuestion},
		{"You're really cute", domain.IntentCompliment},
		{"love your smile", domain.IntentCompliment},
		{"great photos", domain.IntentCompliment},
		{"let's grab coffee this weekend", domain.IntentSuggestion},
		{"we should meet up sometime", domain.IntentSuggestion},
		{"I work in marketing", domain.IntentStatement},
		{"", domain.IntentStatement},
		{"   ", domain.IntentStatement},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			require.Equal(t, tt.want, a.Analyze(tt.text).Intent)
		})
	}
}

func TestAnalyzeTopics(t *testing.T) {
	a := NewAnalyzer()

	got := a.Analyze("I just got back from hiking in Scotland, it was amazing!")
	require.True(t, got.HasTopic(domain.TopicFitness) || got.HasTopic(domain.TopicTravel))
	require.Equal(t, domain.SentimentPositive, got.Sentiment)

	got = a.Analyze("Reading a novel after coding all day at the office")
	require.Equal(t, []domain.Topic{domain.TopicTech, domain.TopicBooks, domain.TopicWork}, got.Topics)
	require.Equal(t, domain.TopicTech, got.PrimaryTopic())

	got = a.Analyze("nothing much")
	require.Empty(t, got.Topics)
	require.Equal(t, domain.Topic(""), got.PrimaryTopic())
}

func TestAnalyzeSentiment(t *testing.T) {
	a := NewAnalyzer()

	require.Equal(t, domain.SentimentPositive, a.Analyze("that sounds awesome").Sentiment)
	require.Equal(t, domain.SentimentNegative, a.Analyze("ugh, today was terrible").Sentiment)
	require.Equal(t, domain.SentimentNegative, a.Analyze("the movie was not good").Sentiment)
	require.Equal(t, domain.SentimentNeutral, a.Analyze("it was good but also bad").Sentiment)
	require.Equal(t, domain.SentimentNeutral, a.Analyze("I live in Berlin").Sentiment)
}

func TestAnalyzeAlwaysInDomain(t *testing.T) {
	a := NewAnalyzer()

	inputs := []string{
		"", "?", "!!!", "🙂🙂", "LET'S GO", "\n\t", "you you you you",
		"a very long message " + string(make([]byte, 512)),
		"what's up with your hiking boots? lol",
	}
	for _, in := range inputs {
		got := a.Analyze(in)
		require.True(t, got.Intent.Valid(), "intent %q for %q", got.Intent, in)
		require.True(t, got.Sentiment.Valid(), "sentiment %q for %q", got.Sentiment, in)
		require.NotNil(t, got.Topics)
	}
}

func TestTopicsOfOrdersByRecency(t *testing.T) {
	a := NewAnalyzer()

	history := []domain.ConversationTurn{
		{Role: domain.RoleUser, Text: "I love cooking pasta"},
		{Role: domain.RoleAssistant, Text: "Do you travel much?"},
		{Role: domain.RoleUser, Text: "Yes, and I cook on every trip"},
	}

	require.Equal(t, []domain.Topic{domain.TopicTravel, domain.TopicFood}, a.TopicsOf(history))
	require.Empty(t, a.TopicsOf(nil))
}
