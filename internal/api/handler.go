package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/DevRickLin/matchbot/internal/biz/domain"
	"github.com/DevRickLin/matchbot/internal/biz/usecase"
	"github.com/DevRickLin/matchbot/internal/infra/logger"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 1 << 20

// Server is the HTTP surface of the engine
type Server struct {
	conversations *usecase.ConversationUsecase
	queue         *usecase.QueueUsecase
	feed          *usecase.FeedUsecase

	server *http.Server
	addr   string
	log    zerolog.Logger
}

// NewServer creates a new API server
func NewServer(conversations *usecase.ConversationUsecase, queue *usecase.QueueUsecase, feed *usecase.FeedUsecase, addr string) *Server {
	return &Server{
		conversations: conversations,
		queue:         queue,
		feed:          feed,
		addr:          addr,
		log:           logger.For("api"),
	}
}

// Handler returns the routed handler
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Conversation
	mux.HandleFunc("POST /api/bot/reply", s.handleReply)
	mux.HandleFunc("GET /api/bots", s.handleBots)
	mux.HandleFunc("GET /api/conversations/{id}/pending", s.handlePending)

	// Delivery processor entry point
	mux.HandleFunc("POST /api/queue/process", s.handleProcess)

	// Recommendations
	mux.HandleFunc("GET /api/feed/{userId}", s.handleFeed)
	mux.HandleFunc("GET /api/preferences/{userId}", s.handlePreferences)
	mux.HandleFunc("POST /api/swipes", s.handleSwipe)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return mux
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.log.Info().Str("addr", s.addr).Msg("starting HTTP server")
	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// ============ Conversation Handlers ============

// TurnPayload is one history entry of the trigger
type TurnPayload struct {
	Role      domain.Role `json:"role"`
	Text      string      `json:"text"`
	Timestamp *time.Time  `json:"timestamp,omitempty"`
}

// ReplyRequest is the inbound trigger payload
type ReplyRequest struct {
	BotID               string        `json:"botId"`
	UserID              string        `json:"userId"`
	ConversationID      string        `json:"conversationId"`
	UserMessage         string        `json:"userMessage"`
	ConversationHistory []TurnPayload `json:"conversationHistory"`
}

// ReplyResponse describes the scheduled reply
type ReplyResponse struct {
	ID             string                 `json:"id"`
	ConversationID string                 `json:"conversationId"`
	Reply          string                 `json:"reply"`
	DelayMs        int64                  `json:"delayMs"`
	ScheduledAt    time.Time              `json:"scheduledAt"`
	Analysis       domain.MessageAnalysis `json:"analysis"`
}

func (s *Server) handleReply(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeStatus(w, http.StatusRequestEntityTooLarge, string(usecase.ErrorInvalidInput), err.Error())
		return
	}

	var req ReplyRequest
	if err := decodeValidated(triggerValidator, raw, &req); err != nil {
		s.writeStatus(w, http.StatusBadRequest, string(usecase.ErrorInvalidInput), err.Error())
		return
	}

	in := &usecase.InboundRequest{
		BotID:          req.BotID,
		UserID:         req.UserID,
		ConversationID: req.ConversationID,
		UserMessage:    req.UserMessage,
	}
	// An explicit (even empty) history is used as given
	if req.ConversationHistory != nil {
		in.History = make([]domain.ConversationTurn, 0, len(req.ConversationHistory))
		for _, t := range req.ConversationHistory {
			turn := domain.ConversationTurn{Role: t.Role, Text: t.Text}
			if t.Timestamp != nil {
				turn.Timestamp = *t.Timestamp
			}
			in.History = append(in.History, turn)
		}
	}

	result, err := s.conversations.HandleInbound(r.Context(), in)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(ReplyResponse{
		ID:             result.Queued.ID,
		ConversationID: result.Queued.ConversationID,
		Reply:          result.Reply,
		DelayMs:        result.Delay.Milliseconds(),
		ScheduledAt:    result.Queued.ScheduledAt,
		Analysis:       result.Analysis,
	})
}

func (s *Server) handleBots(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]any{"bots": s.conversations.Personalities()})
}

func (s *Server) handlePending(w http.ResponseWriter, r *http.Request) {
	pending, err := s.queue.Pending(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if pending == nil {
		pending = []*domain.QueuedMessage{}
	}
	s.writeJSON(w, map[string]any{"pending": pending})
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	report, err := s.queue.ProcessDue(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, report)
}

// ============ Recommendation Handlers ============

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 0 {
			s.writeStatus(w, http.StatusBadRequest, string(usecase.ErrorInvalidInput), "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	candidates, err := s.feed.Feed(r.Context(), r.PathValue("userId"), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if candidates == nil {
		candidates = []domain.ScoredCandidate{}
	}
	s.writeJSON(w, map[string]any{"candidates": candidates})
}

func (s *Server) handlePreferences(w http.ResponseWriter, r *http.Request) {
	model, err := s.feed.Preferences(r.Context(), r.PathValue("userId"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, model)
}

// SwipeRequest is the payload of POST /api/swipes
type SwipeRequest struct {
	ActorID  string           `json:"actorId"`
	TargetID string           `json:"targetId"`
	Kind     domain.SwipeKind `json:"kind"`
}

func (s *Server) handleSwipe(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeStatus(w, http.StatusRequestEntityTooLarge, string(usecase.ErrorInvalidInput), err.Error())
		return
	}

	var req SwipeRequest
	if err := decodeValidated(swipeValidator, raw, &req); err != nil {
		s.writeStatus(w, http.StatusBadRequest, string(usecase.ErrorInvalidInput), err.Error())
		return
	}

	event, err := s.feed.RecordSwipe(r.Context(), &domain.SwipeEvent{
		ActorID:  req.ActorID,
		TargetID: req.TargetID,
		Kind:     req.Kind,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(event)
}

// ============ Helpers ============

func (s *Server) writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

// writeError maps usecase error codes to HTTP statuses
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := usecase.CodeOf(err)
	status := http.StatusInternalServerError
	switch code {
	case usecase.ErrorInvalidInput:
		status = http.StatusBadRequest
	case usecase.ErrorNotFound:
		status = http.StatusNotFound
	case usecase.ErrorUpstream:
		status = http.StatusBadGateway
	}
	if status >= http.StatusInternalServerError {
		s.log.Error().Err(err).Str("code", string(code)).Msg("request failed")
	}
	s.writeStatus(w, status, string(code), err.Error())
}

func (s *Server) writeStatus(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message, "code": code})
}
