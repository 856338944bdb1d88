package usecase

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DevRickLin/matchbot/internal/biz/domain"
)

func TestEstimateDelay(t *testing.T) {
	p := &domain.BotPersonality{DelayMin: 2000, DelayMax: 10000}
	longQuestion := strings.Repeat("word ", 25) + "?"

	tests := []struct {
		name    string
		text    string
		history int
		want    time.Duration
	}{
		{"fresh conversation", "hey", 0, 7500 * time.Millisecond},
		{"familiar conversation", "ok", 10, 4800 * time.Millisecond},
		{"question", "why?", 10, 5760 * time.Millisecond},
		{"long question clamps to max", longQuestion, 0, 10 * time.Second},
		{"history beyond cap", "ok", 500, 3600 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, EstimateDelay(p, tt.text, tt.history))
		})
	}
}

func TestEstimateDelayWithinBounds(t *testing.T) {
	personalities := []*domain.BotPersonality{
		{DelayMin: 0, DelayMax: 0},
		{DelayMin: 1000, DelayMax: 1000},
		{DelayMin: 500, DelayMax: 3000},
		{DelayMin: 4000, DelayMax: 60000},
		{DelayMin: 5000, DelayMax: 1000}, // inverted bounds collapse to min
	}
	texts := []string{"", "hi", "how are you?", strings.Repeat("long ", 40), strings.Repeat("long ", 40) + "?"}

	for _, p := range personalities {
		lo, hi := p.DelayBounds()
		for _, text := range texts {
			for h := 0; h <= 40; h++ {
				d := EstimateDelay(p, text, h)
				require.GreaterOrEqual(t, d, lo)
				require.LessOrEqual(t, d, hi)
			}
		}
	}
}

func TestEstimateDelayReplayable(t *testing.T) {
	p := &domain.BotPersonality{DelayMin: 1500, DelayMax: 9000}
	first := EstimateDelay(p, "what are you up to?", 3)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, EstimateDelay(p, "what are you up to?", 3))
	}
}
