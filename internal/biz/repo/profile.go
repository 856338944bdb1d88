package repo

import (
	"context"

	"github.com/DevRickLin/matchbot/internal/biz/domain"
)

// ProfileRepo is read-only access to the profile store
type ProfileRepo interface {
	// GetProfile returns a profile by id, or nil when it does not exist
	GetProfile(ctx context.Context, id string) (*domain.Profile, error)

	// GetProfiles returns the profiles that exist among ids, in no particular order
	GetProfiles(ctx context.Context, ids []string) ([]domain.Profile, error)

	// ListCandidates pages through profiles other than userID that userID has not
	// swiped and that are not blocked in either direction, most recently updated first
	ListCandidates(ctx context.Context, userID string, offset, limit int) ([]domain.Profile, error)

	// BlockedIDs returns ids blocked by userID or blocking userID
	BlockedIDs(ctx context.Context, userID string) (map[string]struct{}, error)
}
