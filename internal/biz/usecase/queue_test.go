package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DevRickLin/matchbot/internal/biz/domain"
)

type queueFixture struct {
	uc       *QueueUsecase
	queue    *mockQueueRepo
	messages *mockMessageRepo
	presence *mockPresenceRepo
	contexts *mockContextRepo
	audit    *mockAuditRepo
	clock    time.Time
}

func newQueueFixture() *queueFixture {
	f := &queueFixture{
		queue:    newMockQueueRepo(),
		messages: &mockMessageRepo{},
		presence: newMockPresenceRepo(),
		contexts: newMockContextRepo(),
		audit:    &mockAuditRepo{},
		clock:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	f.uc = NewQueueUsecase(f.queue, f.messages, DeliveryHooks{
		Presence: f.presence,
		Contexts: f.contexts,
		Audit:    f.audit,
	}, NewAnalyzer(), QueueConfig{BatchSize: 10, ClaimTTL: time.Minute})
	f.uc.now = func() time.Time { return f.clock }
	return f
}

func TestScheduleAndProcessImmediate(t *testing.T) {
	f := newQueueFixture()
	ctx := context.Background()

	msg, err := f.uc.Schedule(ctx, "conv-1", "mia", "user-1", "Hey! How's your day?", 0)
	require.NoError(t, err)
	require.Nil(t, msg.SentAt)
	require.Equal(t, f.clock, msg.ScheduledAt)

	report, err := f.uc.ProcessDue(ctx)
	require.NoError(t, err)
	require.Equal(t, &ProcessReport{Due: 1, Delivered: 1}, report)

	row, err := f.queue.Get(ctx, msg.ID)
	require.NoError(t, err)
	require.NotNil(t, row.SentAt)

	require.Len(t, f.messages.messages, 1)
	require.Equal(t, "Hey! How's your day?", f.messages.messages[0].Body)
	require.Equal(t, msg.ID, f.messages.messages[0].ID)
	require.Equal(t, "mia", f.messages.messages[0].SenderID)
}

func TestProcessDueIsIdempotent(t *testing.T) {
	f := newQueueFixture()
	ctx := context.Background()

	_, err := f.uc.Schedule(ctx, "conv-1", "mia", "user-1", "first", 0)
	require.NoError(t, err)

	_, err = f.uc.ProcessDue(ctx)
	require.NoError(t, err)

	report, err := f.uc.ProcessDue(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, report.Delivered)
	require.Equal(t, 0, report.Due)
	require.Len(t, f.messages.messages, 1)
}

func TestProcessDueRespectsSchedule(t *testing.T) {
	f := newQueueFixture()
	ctx := context.Background()

	_, err := f.uc.Schedule(ctx, "conv-1", "mia", "user-1", "later", 5*time.Second)
	require.NoError(t, err)

	report, err := f.uc.ProcessDue(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, report.Due)

	f.clock = f.clock.Add(5 * time.Second)
	report, err = f.uc.ProcessDue(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, report.Delivered)
}

func TestProcessDueRetriesFailedPersist(t *testing.T) {
	f := newQueueFixture()
	ctx := context.Background()
	f.messages.failTimes = 1

	msg, err := f.uc.Schedule(ctx, "conv-1", "mia", "user-1", "retry me", 0)
	require.NoError(t, err)

	report, err := f.uc.ProcessDue(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, report.Failed)

	row, err := f.queue.Get(ctx, msg.ID)
	require.NoError(t, err)
	require.Nil(t, row.SentAt)
	require.Equal(t, 1, row.Attempts)
	require.Equal(t, "store unavailable", row.LastError)
	require.Empty(t, f.messages.messages)

	report, err = f.uc.ProcessDue(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, report.Delivered)

	report, err = f.uc.ProcessDue(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, report.Delivered)

	row, err = f.queue.Get(ctx, msg.ID)
	require.NoError(t, err)
	require.NotNil(t, row.SentAt)
	require.Len(t, f.messages.messages, 1)
}

func TestBestEffortFailuresDoNotBlockDelivery(t *testing.T) {
	f := newQueueFixture()
	ctx := context.Background()
	f.presence.err = errors.New("redis down")
	f.contexts.err = errors.New("context store down")
	f.audit.err = errors.New("feishu down")

	msg, err := f.uc.Schedule(ctx, "conv-1", "mia", "user-1", "still delivered", 0)
	require.NoError(t, err)

	report, err := f.uc.ProcessDue(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, report.Delivered)

	row, err := f.queue.Get(ctx, msg.ID)
	require.NoError(t, err)
	require.NotNil(t, row.SentAt)
}

func TestDeliveryUpdatesHooks(t *testing.T) {
	f := newQueueFixture()
	ctx := context.Background()
	require.NoError(t, f.presence.SetTyping(ctx, "conv-1", "mia", time.Minute))

	msg, err := f.uc.Schedule(ctx, "conv-1", "mia", "user-1", "Where do you want to travel next?", 0)
	require.NoError(t, err)
	_, err = f.uc.ProcessDue(ctx)
	require.NoError(t, err)

	typing, err := f.presence.IsTyping(ctx, "conv-1", "mia")
	require.NoError(t, err)
	require.False(t, typing)

	c, err := f.contexts.GetContext(ctx, "conv-1")
	require.NoError(t, err)
	require.Equal(t, 1, c.DeliveredCount)
	require.Equal(t, "mia", c.BotID)
	require.Equal(t, []domain.Topic{domain.TopicTravel}, c.LastTopics)

	require.Equal(t, []string{msg.ID}, f.audit.mirrored)
}

func TestConcurrentProcessorsDeliverOnce(t *testing.T) {
	f := newQueueFixture()
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		_, err := f.uc.Schedule(ctx, "conv-1", "mia", "user-1", "hello", 0)
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	delivered := 0
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			report, err := f.uc.ProcessDue(ctx)
			if err != nil {
				return
			}
			mu.Lock()
			delivered += report.Delivered
			mu.Unlock()
		}()
	}
	wg.Wait()
	require.LessOrEqual(t, delivered, 20)

	// a second pass picks up whatever exceeded the batch size
	for f.queue.sentCount() < 20 {
		_, err := f.uc.ProcessDue(ctx)
		require.NoError(t, err)
	}
	require.Len(t, f.messages.messages, 20)
}

func TestScheduleValidation(t *testing.T) {
	f := newQueueFixture()
	ctx := context.Background()

	_, err := f.uc.Schedule(ctx, "", "mia", "user-1", "x", 0)
	require.Equal(t, ErrorInvalidInput, CodeOf(err))

	_, err = f.uc.Schedule(ctx, "conv-1", "mia", "user-1", "", 0)
	require.Equal(t, ErrorInvalidInput, CodeOf(err))

	msg, err := f.uc.Schedule(ctx, "conv-1", "mia", "user-1", "x", -time.Second)
	require.NoError(t, err)
	require.Equal(t, f.clock, msg.ScheduledAt)
}

func TestProcessDueListFailure(t *testing.T) {
	f := newQueueFixture()
	f.queue.listErr = errors.New("db locked")

	_, err := f.uc.ProcessDue(context.Background())
	require.Error(t, err)
	require.Equal(t, ErrorUpstream, CodeOf(err))
}

func TestPendingListsUnsent(t *testing.T) {
	f := newQueueFixture()
	ctx := context.Background()

	_, err := f.uc.Schedule(ctx, "conv-1", "mia", "user-1", "now", 0)
	require.NoError(t, err)
	later, err := f.uc.Schedule(ctx, "conv-1", "mia", "user-1", "later", time.Hour)
	require.NoError(t, err)
	_, err = f.uc.ProcessDue(ctx)
	require.NoError(t, err)

	pending, err := f.uc.Pending(ctx, "conv-1")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, later.ID, pending[0].ID)
}
