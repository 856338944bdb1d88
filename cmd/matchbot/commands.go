package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/DevRickLin/matchbot/internal/api"
	"github.com/DevRickLin/matchbot/internal/biz/domain"
	"github.com/DevRickLin/matchbot/internal/biz/usecase"
	"github.com/DevRickLin/matchbot/internal/mcp"
	"github.com/DevRickLin/matchbot/internal/service"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "matchbot",
		Short: "Conversation and recommendation engine for dating-app bot counterparts",
		Long: strings.TrimSpace(`matchbot answers user messages as configured bot personalities with
human-like delays, and ranks recommendation candidates from swipe history.

Configuration is read from the environment and an optional .env file.`),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(newServeCommand())
	root.AddCommand(newProcessCommand())
	root.AddCommand(newChatCommand())
	root.AddCommand(newMCPCommand())
	root.AddCommand(newImportCommand())
	return root
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func newServeCommand() *cobra.Command {
	var noProcessor bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the delivery processor",
		Example: strings.Join([]string{
			"  matchbot serve",
			"  MATCHBOT_HTTP_ADDR=0.0.0.0:8080 matchbot serve --no-processor",
		}, "\n"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			a, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if !noProcessor {
				runner := service.NewProcessorRunner(a.uc.Queue, a.cfg.Processor.Interval)
				runner.Start(ctx)
				defer runner.Stop()
			}

			server := api.NewServer(a.uc.Conversation, a.uc.Queue, a.uc.Feed, a.cfg.HTTP.Addr)
			errCh := make(chan error, 1)
			go func() { errCh <- server.Start() }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			log.Info().Str("component", "main").Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Stop(shutdownCtx)
		},
	}
	cmd.Flags().BoolVar(&noProcessor, "no-processor", false, "Do not run the in-process delivery loop (use an external trigger)")
	return cmd
}

func newProcessCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "process",
		Short:   "Deliver every due reply once and exit",
		Long:    "Run a single delivery pass. Intended for cron or another external scheduler.",
		Example: "  * * * * * matchbot process",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			a, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.uc.Queue.ProcessDue(ctx)
			if err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(report)
		},
	}
}

func newMCPCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve engine tools over MCP stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			a, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			return mcp.NewServer(a.uc.Analyzer, a.uc.Conversation, a.uc.Queue, a.uc.Feed, version).Run(ctx)
		},
	}
}

func newChatCommand() *cobra.Command {
	var botID string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with a bot personality in the terminal",
		Long: strings.TrimSpace(`Chat with a bot personality locally. Replies are generated exactly as
for the API but are printed instead of queued, together with the delay the bot
would wait. Type /reset to clear the history, /bots to list personalities,
exit to quit.`),
		Example: "  matchbot chat --bot mia",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			a, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if _, err := a.uc.Conversation.Personality(botID); err != nil {
				return err
			}
			return chatLoop(ctx, a.uc.Conversation, botID, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&botID, "bot", "b", "mia", "Bot personality id")
	return cmd
}

func chatLoop(ctx context.Context, conversations *usecase.ConversationUsecase, botID string, out io.Writer) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "You: ",
		HistoryFile:     filepath.Join(os.TempDir(), ".matchbot_history"),
		HistoryLimit:    100,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("init readline: %w", err)
	}
	defer rl.Close()

	var history []domain.ConversationTurn
	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				fmt.Fprintln(out, "Goodbye!")
				return nil
			}
			return err
		}

		input := strings.TrimSpace(line)
		switch input {
		case "":
			continue
		case "exit", "quit":
			fmt.Fprintln(out, "Goodbye!")
			return nil
		case "/reset":
			history = nil
			fmt.Fprintln(out, "(history cleared)")
			continue
		case "/bots":
			for _, p := range conversations.Personalities() {
				fmt.Fprintf(out, "  %-8s %s, %s (%s)\n", p.ID, p.Name, p.City, p.Policy)
			}
			continue
		}

		plan, err := conversations.Preview(ctx, botID, history, input)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		fmt.Fprintf(out, "%s (after %.1fs, %s/%s): %s\n", botID, plan.Delay.Seconds(),
			plan.Analysis.Intent, plan.Analysis.Sentiment, plan.Reply)

		now := time.Now()
		history = append(history,
			domain.ConversationTurn{Role: domain.RoleUser, Text: input, Timestamp: now},
			domain.ConversationTurn{Role: domain.RoleAssistant, Text: plan.Reply, Timestamp: now},
		)
	}
}
