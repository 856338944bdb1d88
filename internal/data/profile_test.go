package data

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DevRickLin/matchbot/internal/biz/domain"
	"github.com/DevRickLin/matchbot/internal/biz/repo"
	"github.com/DevRickLin/matchbot/internal/biz/usecase"
)

func TestProfileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewProfileStore(openTestDB(t))

	birth := time.Date(1996, 4, 12, 0, 0, 0, 0, time.UTC)
	lat, lon := 38.72, -9.14
	in := &domain.Profile{
		ID:           "u1",
		Name:         "Ana",
		Gender:       "female",
		InterestedIn: []string{"male"},
		BirthDate:    &birth,
		City:         "Lisbon",
		Latitude:     &lat,
		Longitude:    &lon,
		Interests:    []string{"hiking", "sushi"},
		Bio:          "Weekend hiker",
		PhotoCount:   4,
		Verified:     true,
	}
	require.NoError(t, s.UpsertProfile(ctx, in))

	got, err := s.GetProfile(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, in.Interests, got.Interests)
	require.Equal(t, in.InterestedIn, got.InterestedIn)
	require.True(t, got.BirthDate.Equal(birth))
	require.InDelta(t, lat, *got.Latitude, 1e-9)
	require.True(t, got.Verified)
	require.Equal(t, 4, got.PhotoCount)

	// upsert replaces
	in.City = "Porto"
	in.Latitude, in.Longitude = nil, nil
	require.NoError(t, s.UpsertProfile(ctx, in))
	got, err = s.GetProfile(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "Porto", got.City)
	require.False(t, got.HasCoordinates())

	missing, err := s.GetProfile(ctx, "nope")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestProfileStoreQueries(t *testing.T) {
	ctx := context.Background()
	s := NewProfileStore(openTestDB(t))
	for _, id := range []string{"u1", "u2", "u3", "u4"} {
		require.NoError(t, s.UpsertProfile(ctx, &domain.Profile{ID: id, Age: 28}))
	}

	got, err := s.GetProfiles(ctx, []string{"u2", "u4", "ghost"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Empty(t, got[0].Interests)

	none, err := s.GetProfiles(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, none)

	candidates, err := s.ListCandidates(ctx, "u1", 0, 10)
	require.NoError(t, err)
	require.Len(t, candidates, 3)
	for _, c := range candidates {
		require.NotEqual(t, "u1", c.ID)
	}

	limited, err := s.ListCandidates(ctx, "u1", 0, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)

	require.NoError(t, s.Block(ctx, "u1", "u2"))
	require.NoError(t, s.Block(ctx, "u3", "u1"))
	require.NoError(t, s.Block(ctx, "u1", "u2"))

	blocked, err := s.BlockedIDs(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, blocked, 2)
	require.Contains(t, blocked, "u2")
	require.Contains(t, blocked, "u3")
}

// seedSwipedPool stores "me", an older unswiped "fresh" profile and ten newer
// profiles that "me" already passed on
func seedSwipedPool(t *testing.T, ctx context.Context, s *ProfileStore, swipes repo.SwipeRepo) {
	t.Helper()
	require.NoError(t, s.UpsertProfile(ctx, &domain.Profile{ID: "me", Gender: "female"}))
	require.NoError(t, s.UpsertProfile(ctx, &domain.Profile{ID: "fresh", Gender: "male"}))
	_, err := s.db.ExecContext(ctx, `UPDATE profiles SET updated_at = 0 WHERE id = 'fresh'`)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("seen-%02d", i)
		require.NoError(t, s.UpsertProfile(ctx, &domain.Profile{ID: id, Gender: "male"}))
		require.NoError(t, swipes.Record(ctx, &domain.SwipeEvent{
			ID: "sw-" + id, ActorID: "me", TargetID: id, Kind: domain.SwipePass, Timestamp: time.Now(),
		}))
	}
}

func TestListCandidatesSkipsSwipedAndBlocked(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	s := NewProfileStore(db)
	seedSwipedPool(t, ctx, s, NewSwipeRepo(db))

	require.NoError(t, s.UpsertProfile(ctx, &domain.Profile{ID: "blocked-by-me"}))
	require.NoError(t, s.UpsertProfile(ctx, &domain.Profile{ID: "blocks-me"}))
	require.NoError(t, s.Block(ctx, "me", "blocked-by-me"))
	require.NoError(t, s.Block(ctx, "blocks-me", "me"))

	candidates, err := s.ListCandidates(ctx, "me", 0, 5)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	require.Equal(t, "fresh", candidates[0].ID)

	// another user still sees everyone except themselves
	all, err := s.ListCandidates(ctx, "fresh", 0, 100)
	require.NoError(t, err)
	require.Len(t, all, 13)

	page, err := s.ListCandidates(ctx, "fresh", 10, 100)
	require.NoError(t, err)
	require.Len(t, page, 3)
}

func TestFeedSurfacesOlderCandidateAfterNewestAreSwiped(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	profiles := NewProfileStore(db)
	swipes := NewSwipeRepo(db)
	seedSwipedPool(t, ctx, profiles, swipes)

	prefs := usecase.NewPreferenceUsecase(swipes, profiles, usecase.PreferenceConfig{})
	feed := usecase.NewFeedUsecase(profiles, swipes, prefs, usecase.NewRanker())

	got, err := feed.Feed(ctx, "me", 2)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "fresh", got[0].Profile.ID)
}

func TestSwipeLog(t *testing.T) {
	ctx := context.Background()
	r := NewSwipeRepo(openTestDB(t))
	base := time.UnixMilli(1_700_000_000_000)

	kinds := []domain.SwipeKind{domain.SwipeLike, domain.SwipePass, domain.SwipeSuperlike}
	for i, kind := range kinds {
		require.NoError(t, r.Record(ctx, &domain.SwipeEvent{
			ID:        string(kind),
			ActorID:   "u1",
			TargetID:  "t" + string(rune('1'+i)),
			Kind:      kind,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, r.Record(ctx, &domain.SwipeEvent{ID: "x", ActorID: "u2", TargetID: "t1", Kind: domain.SwipeLike, Timestamp: base}))

	recent, err := r.Recent(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	require.Equal(t, domain.SwipeSuperlike, recent[0].Kind)
	require.Equal(t, domain.SwipePass, recent[1].Kind)

	targets, err := r.SwipedTargets(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, targets, 3)
	require.Contains(t, targets, "t2")
}
