package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/DevRickLin/matchbot/internal/biz/domain"
	"github.com/DevRickLin/matchbot/internal/biz/usecase"
	"github.com/DevRickLin/matchbot/internal/data"
)

// importFile is the seed format accepted by `matchbot import`
type importFile struct {
	Profiles []domain.Profile    `json:"profiles"`
	Blocks   []importBlock       `json:"blocks"`
	Swipes   []domain.SwipeEvent `json:"swipes"`
}

type importBlock struct {
	BlockerID string `json:"blocker_id"`
	BlockedID string `json:"blocked_id"`
}

type importSummary struct {
	Profiles int `json:"profiles"`
	Blocks   int `json:"blocks"`
	Swipes   int `json:"swipes"`
}

func newImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Load profiles, blocks and swipes into the local store",
		Long:  "Load a JSON seed file with \"profiles\", \"blocks\" and \"swipes\" arrays. Profiles are upserted by id.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			a, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			summary, err := importSeed(ctx, a.repos.Profiles, a.uc.Feed, f)
			if err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(summary)
		},
	}
}

func importSeed(ctx context.Context, profiles *data.ProfileStore, feed *usecase.FeedUsecase, r io.Reader) (*importSummary, error) {
	var seed importFile
	if err := json.NewDecoder(r).Decode(&seed); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}

	summary := &importSummary{}
	for i := range seed.Profiles {
		p := &seed.Profiles[i]
		if p.ID == "" {
			return summary, fmt.Errorf("profile #%d has no id", i)
		}
		if err := profiles.UpsertProfile(ctx, p); err != nil {
			return summary, err
		}
		summary.Profiles++
	}
	for _, b := range seed.Blocks {
		if err := profiles.Block(ctx, b.BlockerID, b.BlockedID); err != nil {
			return summary, err
		}
		summary.Blocks++
	}
	for i := range seed.Swipes {
		if _, err := feed.RecordSwipe(ctx, &seed.Swipes[i]); err != nil {
			return summary, fmt.Errorf("swipe #%d: %w", i, err)
		}
		summary.Swipes++
	}
	return summary, nil
}
