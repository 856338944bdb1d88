package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/DevRickLin/matchbot/internal/biz/domain"
)

// Mock implementations

type mockQueueRepo struct {
	mu      sync.Mutex
	rows    map[string]*domain.QueuedMessage
	claims  map[string]string
	until   map[string]time.Time
	listErr error
}

func newMockQueueRepo() *mockQueueRepo {
	return &mockQueueRepo{
		rows:   make(map[string]*domain.QueuedMessage),
		claims: make(map[string]string),
		until:  make(map[string]time.Time),
	}
}

func (m *mockQueueRepo) Enqueue(ctx context.Context, msg *domain.QueuedMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *msg
	m.rows[msg.ID] = &cp
	return nil
}

func (m *mockQueueRepo) Get(ctx context.Context, id string) (*domain.QueuedMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (m *mockQueueRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]*domain.QueuedMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var due []*domain.QueuedMessage
	for _, row := range m.rows {
		if row.IsDue(now) {
			cp := *row
			due = append(due, &cp)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ScheduledAt.Before(due[j].ScheduledAt) })
	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (m *mockQueueRepo) Claim(ctx context.Context, id, token string, now, until time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok || row.SentAt != nil {
		return false, nil
	}
	if exp, held := m.until[id]; held && exp.After(now) {
		return false, nil
	}
	m.claims[id] = token
	m.until[id] = until
	return true, nil
}

func (m *mockQueueRepo) MarkSent(ctx context.Context, id, token string, sentAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok || row.SentAt != nil || m.claims[id] != token {
		return false, nil
	}
	row.SentAt = &sentAt
	return true, nil
}

func (m *mockQueueRepo) Release(ctx context.Context, id, token, lastError string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.claims[id] != token {
		return nil
	}
	row := m.rows[id]
	row.Attempts++
	row.LastError = lastError
	delete(m.claims, id)
	delete(m.until, id)
	return nil
}

func (m *mockQueueRepo) Pending(ctx context.Context, conversationID string) ([]*domain.QueuedMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.QueuedMessage
	for _, row := range m.rows {
		if row.ConversationID == conversationID && row.SentAt == nil {
			cp := *row
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out, nil
}

func (m *mockQueueRepo) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, row := range m.rows {
		if row.SentAt != nil {
			n++
		}
	}
	return n
}

type mockMessageRepo struct {
	mu         sync.Mutex
	messages   []domain.Message
	failTimes  int
	historyErr error
}

func (m *mockMessageRepo) Append(ctx context.Context, msg *domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failTimes > 0 {
		m.failTimes--
		return errors.New("store unavailable")
	}
	for _, existing := range m.messages {
		if existing.ID == msg.ID {
			return nil
		}
	}
	m.messages = append(m.messages, *msg)
	return nil
}

func (m *mockMessageRepo) GetHistory(ctx context.Context, conversationID string, limit int) ([]domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.historyErr != nil {
		return nil, m.historyErr
	}
	var out []domain.Message
	for _, msg := range m.messages {
		if msg.ConversationID == conversationID {
			out = append(out, msg)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

type mockPresenceRepo struct {
	mu     sync.Mutex
	typing map[string]bool
	err    error
}

func newMockPresenceRepo() *mockPresenceRepo {
	return &mockPresenceRepo{typing: make(map[string]bool)}
}

func (m *mockPresenceRepo) SetTyping(ctx context.Context, conversationID, senderID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.typing[conversationID+"/"+senderID] = true
	return nil
}

func (m *mockPresenceRepo) ClearTyping(ctx context.Context, conversationID, senderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	delete(m.typing, conversationID+"/"+senderID)
	return nil
}

func (m *mockPresenceRepo) IsTyping(ctx context.Context, conversationID, senderID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.typing[conversationID+"/"+senderID], m.err
}

type mockContextRepo struct {
	mu       sync.Mutex
	contexts map[string]*domain.ConversationContext
	err      error
}

func newMockContextRepo() *mockContextRepo {
	return &mockContextRepo{contexts: make(map[string]*domain.ConversationContext)}
}

func (m *mockContextRepo) GetContext(ctx context.Context, conversationID string) (*domain.ConversationContext, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.contexts[conversationID]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *mockContextRepo) SaveContext(ctx context.Context, c *domain.ConversationContext) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	cp := *c
	m.contexts[c.ConversationID] = &cp
	return nil
}

type mockAuditRepo struct {
	mirrored []string
	err      error
}

func (m *mockAuditRepo) MirrorDelivery(ctx context.Context, msg *domain.QueuedMessage) error {
	if m.err != nil {
		return m.err
	}
	m.mirrored = append(m.mirrored, msg.ID)
	return nil
}

type mockProfileRepo struct {
	profiles map[string]domain.Profile
	blocked  map[string]map[string]struct{}
	err      error
}

func newMockProfileRepo(profiles ...domain.Profile) *mockProfileRepo {
	m := &mockProfileRepo{
		profiles: make(map[string]domain.Profile),
		blocked:  make(map[string]map[string]struct{}),
	}
	for _, p := range profiles {
		m.profiles[p.ID] = p
	}
	return m
}

func (m *mockProfileRepo) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.profiles[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *mockProfileRepo) GetProfiles(ctx context.Context, ids []string) ([]domain.Profile, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.Profile
	for _, id := range ids {
		if p, ok := m.profiles[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProfileRepo) ListCandidates(ctx context.Context, userID string, offset, limit int) ([]domain.Profile, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.Profile
	for id, p := range m.profiles {
		if id != userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockProfileRepo) BlockedIDs(ctx context.Context, userID string) (map[string]struct{}, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make(map[string]struct{})
	for id := range m.blocked[userID] {
		out[id] = struct{}{}
	}
	return out, nil
}

type mockSwipeRepo struct {
	mu     sync.Mutex
	events []domain.SwipeEvent
	reads  int
	err    error
}

func (m *mockSwipeRepo) Record(ctx context.Context, event *domain.SwipeEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, *event)
	return nil
}

func (m *mockSwipeRepo) Recent(ctx context.Context, actorID string, limit int) ([]domain.SwipeEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.SwipeEvent
	for i := len(m.events) - 1; i >= 0 && len(out) < limit; i-- {
		if m.events[i].ActorID == actorID {
			out = append(out, m.events[i])
		}
	}
	return out, nil
}

func (m *mockSwipeRepo) SwipedTargets(ctx context.Context, actorID string) (map[string]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make(map[string]struct{})
	for _, e := range m.events {
		if e.ActorID == actorID {
			out[e.TargetID] = struct{}{}
		}
	}
	return out, nil
}
