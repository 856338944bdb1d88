package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/DevRickLin/matchbot/internal/biz/usecase"
	"github.com/DevRickLin/matchbot/internal/infra/logger"
)

// DueProcessor runs one delivery pass
type DueProcessor interface {
	ProcessDue(ctx context.Context) (*usecase.ProcessReport, error)
}

// ProcessorRunner triggers the delivery pass at a fixed interval.
// Passes never overlap within one runner; other instances are kept apart by the queue claims.
type ProcessorRunner struct {
	processor DueProcessor
	interval  time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	log    zerolog.Logger
}

// NewProcessorRunner creates a new runner
func NewProcessorRunner(processor DueProcessor, interval time.Duration) *ProcessorRunner {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &ProcessorRunner{
		processor: processor,
		interval:  interval,
		log:       logger.For("processor"),
	}
}

// Start starts the loop. The first pass runs immediately.
func (r *ProcessorRunner) Start(ctx context.Context) {
	r.ctx, r.cancel = context.WithCancel(ctx)

	r.wg.Add(1)
	go r.loop()

	r.log.Info().Dur("interval", r.interval).Msg("started")
}

// Stop stops the loop and waits for a running pass to finish
func (r *ProcessorRunner) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
	r.log.Info().Msg("stopped")
}

func (r *ProcessorRunner) loop() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.runOnce()
	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.runOnce()
		}
	}
}

func (r *ProcessorRunner) runOnce() {
	// Bound a pass so a stuck store cannot stall the loop forever
	ctx, cancel := context.WithTimeout(r.ctx, 4*r.interval+30*time.Second)
	defer cancel()

	if _, err := r.processor.ProcessDue(ctx); err != nil {
		if r.ctx.Err() != nil {
			return
		}
		r.log.Error().Err(err).Msg("delivery pass failed")
	}
}
