package mcp

import (
	"context"
	"errors"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/DevRickLin/matchbot/internal/biz/domain"
	"github.com/DevRickLin/matchbot/internal/biz/usecase"
)

// Server exposes the engine as MCP tools over stdio
type Server struct {
	server        *gomcp.Server
	analyzer      *usecase.Analyzer
	conversations *usecase.ConversationUsecase
	queue         *usecase.QueueUsecase
	feed          *usecase.FeedUsecase
}

// NewServer creates the MCP server and registers its tools
func NewServer(analyzer *usecase.Analyzer, conversations *usecase.ConversationUsecase, queue *usecase.QueueUsecase, feed *usecase.FeedUsecase, version string) *Server {
	s := &Server{
		server: gomcp.NewServer(&gomcp.Implementation{
			Name:    "matchbot",
			Version: version,
		}, nil),
		analyzer:      analyzer,
		conversations: conversations,
		queue:         queue,
		feed:          feed,
	}
	s.registerTools()
	return s
}

// Run serves over stdio until ctx is done or the client disconnects
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "analyze_message",
		Description: "Classify a chat message: intent, detected topics and sentiment.",
	}, s.analyzeMessage)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_bots",
		Description: "List the configured bot personalities.",
	}, s.listBots)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "estimate_delay",
		Description: "Estimate how long a bot personality waits before replying to a message.",
	}, s.estimateDelay)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "preview_reply",
		Description: "Generate the reply a bot would send, without scheduling it.",
	}, s.previewReply)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "process_due",
		Description: "Deliver every queued bot reply that is due. Safe to call repeatedly.",
	}, s.processDue)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "rank_feed",
		Description: "Rank recommendation candidates for a user, best first, with reasons.",
	}, s.rankFeed)
}

// AnalyzeInput is the input of analyze_message
type AnalyzeInput struct {
	Text string `json:"text" jsonschema:"The message text to analyze"`
}

func (s *Server) analyzeMessage(ctx context.Context, req *gomcp.CallToolRequest, input AnalyzeInput) (*gomcp.CallToolResult, domain.MessageAnalysis, error) {
	return nil, s.analyzer.Analyze(input.Text), nil
}

// ListBotsInput is empty
type ListBotsInput struct{}

// ListBotsOutput lists personalities
type ListBotsOutput struct {
	Bots []*domain.BotPersonality `json:"bots"`
}

func (s *Server) listBots(ctx context.Context, req *gomcp.CallToolRequest, input ListBotsInput) (*gomcp.CallToolResult, ListBotsOutput, error) {
	return nil, ListBotsOutput{Bots: s.conversations.Personalities()}, nil
}

// EstimateDelayInput is the input of estimate_delay
type EstimateDelayInput struct {
	BotID         string `json:"bot_id" jsonschema:"The bot personality id"`
	Text          string `json:"text" jsonschema:"The inbound user message"`
	HistoryLength int    `json:"history_length,omitempty" jsonschema:"Number of turns already exchanged"`
}

// EstimateDelayOutput is the output of estimate_delay
type EstimateDelayOutput struct {
	DelayMs int64 `json:"delay_ms"`
}

func (s *Server) estimateDelay(ctx context.Context, req *gomcp.CallToolRequest, input EstimateDelayInput) (*gomcp.CallToolResult, EstimateDelayOutput, error) {
	p, err := s.conversations.Personality(input.BotID)
	if err != nil {
		return nil, EstimateDelayOutput{}, err
	}
	if input.HistoryLength < 0 {
		return nil, EstimateDelayOutput{}, errors.New("history_length must not be negative")
	}
	delay := usecase.EstimateDelay(p, input.Text, input.HistoryLength)
	return nil, EstimateDelayOutput{DelayMs: delay.Milliseconds()}, nil
}

// TurnInput is one prior conversation turn
type TurnInput struct {
	Role string `json:"role" jsonschema:"user or assistant"`
	Text string `json:"text" jsonschema:"The turn text"`
}

// PreviewInput is the input of preview_reply
type PreviewInput struct {
	BotID   string      `json:"bot_id" jsonschema:"The bot personality id"`
	Text    string      `json:"text" jsonschema:"The inbound user message"`
	History []TurnInput `json:"history,omitempty" jsonschema:"Prior turns, oldest first"`
}

// PreviewOutput is the output of preview_reply
type PreviewOutput struct {
	Reply    string                 `json:"reply"`
	DelayMs  int64                  `json:"delay_ms"`
	Analysis domain.MessageAnalysis `json:"analysis"`
}

func (s *Server) previewReply(ctx context.Context, req *gomcp.CallToolRequest, input PreviewInput) (*gomcp.CallToolResult, PreviewOutput, error) {
	history := make([]domain.ConversationTurn, 0, len(input.History))
	for _, t := range input.History {
		role := domain.RoleUser
		if t.Role == string(domain.RoleAssistant) {
			role = domain.RoleAssistant
		}
		history = append(history, domain.ConversationTurn{Role: role, Text: t.Text})
	}

	plan, err := s.conversations.Preview(ctx, input.BotID, history, input.Text)
	if err != nil {
		return nil, PreviewOutput{}, err
	}
	return nil, PreviewOutput{
		Reply:    plan.Reply,
		DelayMs:  plan.Delay.Milliseconds(),
		Analysis: plan.Analysis,
	}, nil
}

// ProcessDueInput is empty
type ProcessDueInput struct{}

func (s *Server) processDue(ctx context.Context, req *gomcp.CallToolRequest, input ProcessDueInput) (*gomcp.CallToolResult, usecase.ProcessReport, error) {
	report, err := s.queue.ProcessDue(ctx)
	if err != nil {
		return nil, usecase.ProcessReport{}, err
	}
	return nil, *report, nil
}

// RankFeedInput is the input of rank_feed
type RankFeedInput struct {
	UserID string `json:"user_id" jsonschema:"The user to rank candidates for"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum candidates to return (default 20)"`
}

// RankFeedOutput is the output of rank_feed
type RankFeedOutput struct {
	Candidates []domain.ScoredCandidate `json:"candidates"`
}

func (s *Server) rankFeed(ctx context.Context, req *gomcp.CallToolRequest, input RankFeedInput) (*gomcp.CallToolResult, RankFeedOutput, error) {
	candidates, err := s.feed.Feed(ctx, input.UserID, input.Limit)
	if err != nil {
		return nil, RankFeedOutput{}, err
	}
	if candidates == nil {
		candidates = []domain.ScoredCandidate{}
	}
	return nil, RankFeedOutput{Candidates: candidates}, nil
}
