package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DevRickLin/matchbot/internal/biz/usecase"
)

type countingProcessor struct {
	calls atomic.Int32
	err   error
}

func (p *countingProcessor) ProcessDue(ctx context.Context) (*usecase.ProcessReport, error) {
	p.calls.Add(1)
	if p.err != nil {
		return nil, p.err
	}
	return &usecase.ProcessReport{}, nil
}

func TestProcessorRunnerTicks(t *testing.T) {
	p := &countingProcessor{}
	r := NewProcessorRunner(p, 10*time.Millisecond)
	r.Start(context.Background())

	require.Eventually(t, func() bool { return p.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	r.Stop()

	stopped := p.calls.Load()
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, stopped, p.calls.Load())
}

func TestProcessorRunnerSurvivesErrors(t *testing.T) {
	p := &countingProcessor{err: errors.New("db locked")}
	r := NewProcessorRunner(p, 10*time.Millisecond)
	r.Start(context.Background())
	defer r.Stop()

	require.Eventually(t, func() bool { return p.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
}

func TestProcessorRunnerStopsWithParentContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := &countingProcessor{}
	r := NewProcessorRunner(p, time.Hour)
	r.Start(ctx)

	// the first pass runs without waiting for a tick
	require.Eventually(t, func() bool { return p.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	r.Stop()
}

func TestNewProcessorRunnerDefaultsInterval(t *testing.T) {
	r := NewProcessorRunner(&countingProcessor{}, 0)
	require.Equal(t, 5*time.Second, r.interval)
}
