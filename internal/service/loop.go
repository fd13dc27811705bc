package service

import (
	"context"
	"fmt"
	"time"
	"wvw-dashboard/internal/errsink"
	"wvw-dashboard/internal/telemetry"

	"github.com/benbjohnson/clock"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// Syncer is one reconciliation pass. Sync returns only after all work it
// started has finished.
type Syncer interface {
	Name() string
	Sync(ctx context.Context) error
}

// Loop runs a Syncer immediately and then once per interval. Iterations
// never overlap; ticks that arrive during a long iteration are dropped.
type Loop struct {
	syncer   Syncer
	interval time.Duration
	clock    clock.Clock
	sink     errsink.Sink
	metrics  *telemetry.LoopMetrics
	logger   zerolog.Logger
}

func NewLoop(
	syncer Syncer,
	interval time.Duration,
	clk clock.Clock,
	sink errsink.Sink,
	metrics *telemetry.LoopMetrics,
	logger zerolog.Logger,
) *Loop {
	return &Loop{
		syncer:   syncer,
		interval: interval,
		clock:    clk,
		sink:     sink,
		metrics:  metrics,
		logger:   logger.With().Str("loop", syncer.Name()).Logger(),
	}
}

func (l *Loop) Name() string {
	return l.syncer.Name()
}

func (l *Loop) Run(ctx context.Context) {
	ticker := l.clock.Ticker(l.interval)
	defer ticker.Stop()

	l.logger.Info().Dur("interval", l.interval).Msg("loop started")
	l.iterate(ctx)

	for {
		select {
		case <-ctx.Done():
			l.logger.Info().Msg("loop stopped")
			return
		case <-ticker.C:
			l.iterate(ctx)
		}
	}
}

func (l *Loop) iterate(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	runID, err := gonanoid.New(10)
	if err != nil {
		runID = "unknown"
	}
	logger := l.logger.With().Str("run_id", runID).Logger()
	ctx = logger.WithContext(ctx)

	start := l.clock.Now()
	success := false
	defer func() {
		if r := recover(); r != nil {
			l.sink.Record(ctx, l.syncer.Name()+".panic", fmt.Errorf("panic in %s loop: %v", l.syncer.Name(), r))
			logger.Error().Interface("panic", r).Msg("loop iteration panicked")
		}
		elapsed := l.clock.Since(start)
		l.metrics.RecordIteration(ctx, l.syncer.Name(), elapsed, success)
	}()

	logger.Debug().Msg("iteration started")
	if err := l.syncer.Sync(ctx); err != nil {
		logger.Warn().Err(err).Dur("elapsed", l.clock.Since(start)).Msg("iteration incomplete")
		return
	}
	success = true
	logger.Debug().Dur("elapsed", l.clock.Since(start)).Msg("iteration finished")
}
