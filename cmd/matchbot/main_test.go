package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DevRickLin/matchbot/internal/biz"
	"github.com/DevRickLin/matchbot/internal/data"
)

func TestRootCommandHelp(t *testing.T) {
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"--help"})
	require.NoError(t, root.Execute())

	for _, sub := range []string{"serve", "process", "chat", "mcp", "import"} {
		require.Contains(t, out.String(), sub)
	}
}

func TestImportRequiresFile(t *testing.T) {
	root := newRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"import"})
	require.Error(t, root.Execute())
}

func TestImportSeed(t *testing.T) {
	ctx := context.Background()
	db, err := data.OpenDB(filepath.Join(t.TempDir(), "matchbot.db"))
	require.NoError(t, err)
	defer db.Close()

	profiles := data.NewProfileStore(db)
	swipes := data.NewSwipeRepo(db)
	uc := biz.NewUsecases(biz.Repos{
		Queue:    data.NewQueueRepo(db),
		Messages: data.NewMessageRepo(db),
		Profiles: profiles,
		Swipes:   swipes,
	}, biz.Options{})

	seed := `{
		"profiles": [
			{"id": "u1", "gender": "female", "age": 27, "city": "Lisbon", "interests": ["hiking"]},
			{"id": "u2", "gender": "male", "birth_date": "1995-06-01T00:00:00Z", "city": "Lisbon", "interests": ["hiking", "jazz"], "verified": true}
		],
		"blocks": [{"blocker_id": "u2", "blocked_id": "u3"}],
		"swipes": [{"actor_id": "u1", "target_id": "u2", "kind": "like"}]
	}`
	summary, err := importSeed(ctx, profiles, uc.Feed, strings.NewReader(seed))
	require.NoError(t, err)
	require.Equal(t, &importSummary{Profiles: 2, Blocks: 1, Swipes: 1}, summary)

	u2, err := profiles.GetProfile(ctx, "u2")
	require.NoError(t, err)
	require.NotNil(t, u2.BirthDate)
	require.True(t, u2.Verified)

	recent, err := swipes.Recent(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	require.NotEmpty(t, recent[0].ID)

	_, err = importSeed(ctx, profiles, uc.Feed, strings.NewReader(`{"swipes": [{"actor_id": "u1", "target_id": "u1", "kind": "like"}]}`))
	require.Error(t, err)

	_, err = importSeed(ctx, profiles, uc.Feed, strings.NewReader(`{"profiles": [{"name": "nobody"}]}`))
	require.Error(t, err)
}
