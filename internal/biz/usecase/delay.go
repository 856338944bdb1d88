package usecase

import (
	"strings"
	"time"

	"github.com/DevRickLin/matchbot/internal/biz/domain"
)

// Delay model constants
const (
	delayFraction = 0.5

	longMessageWords   = 20
	longMessageFactor  = 1.3
	questionMarkFactor = 1.2

	freshConversationTurns  = 4
	freshConversationFactor = 1.25
	familiarityStep         = 0.02
	familiarityCap          = 20
)

// EstimateDelay returns a human-plausible reply latency.
// It is a pure function of its inputs and always stays within the personality's bounds.
func EstimateDelay(personality *domain.BotPersonality, incoming string, historyLength int) time.Duration {
	lo, hi := personality.DelayBounds()
	base := float64(lo) + float64(hi-lo)*delayFraction

	delay := base * complexityFactor(incoming) * comfortFactor(historyLength)

	switch {
	case delay < float64(lo):
		return lo
	case delay > float64(hi):
		return hi
	}
	return time.Duration(delay).Round(time.Millisecond)
}

// complexityFactor grows for long messages and questions
func complexityFactor(incoming string) float64 {
	f := 1.0
	if len(strings.Fields(incoming)) > longMessageWords {
		f *= longMessageFactor
	}
	if strings.Contains(incoming, "?") {
		f *= questionMarkFactor
	}
	return f
}

// comfortFactor is above 1 for a fresh conversation and shrinks as history grows
func comfortFactor(historyLength int) float64 {
	if historyLength < 0 {
		historyLength = 0
	}
	f := 1.0
	if historyLength < freshConversationTurns {
		f *= freshConversationFactor
	}
	n := historyLength
	if n > familiarityCap {
		n = familiarityCap
	}
	return f * (1 - familiarityStep*float64(n))
}
