package repo

import (
	"context"

	"github.com/DevRickLin/matchbot/internal/biz/domain"
)

// SwipeRepo is the append-only swipe log
type SwipeRepo interface {
	// Record appends a swipe event
	Record(ctx context.Context, event *domain.SwipeEvent) error

	// Recent returns the most recent limit swipes of actorID, newest first
	Recent(ctx context.Context, actorID string, limit int) ([]domain.SwipeEvent, error)

	// SwipedTargets returns every target actorID has swiped on
	SwipedTargets(ctx context.Context, actorID string) (map[string]struct{}, error)
}
