// Package scheduler admits outbound API calls one at a time, highest
// priority first, with a fixed minimum gap between calls.
package scheduler

import (
	"container/heap"
	"context"
	"fmt"
	"sync"
	"time"
	"wvw-dashboard/internal/api"
	"wvw-dashboard/internal/config"
	"wvw-dashboard/internal/errsink"
	"wvw-dashboard/internal/telemetry"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

// Transport performs a single GET and returns the body of a 200 response.
type Transport interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

type Scheduler struct {
	transport Transport
	baseURL   string
	delay     time.Duration
	clock     clock.Clock
	sink      errsink.Sink
	metrics   *telemetry.SchedulerMetrics
	logger    zerolog.Logger

	mu     sync.Mutex
	queue  callQueue
	seq    uint64
	closed bool

	// gate is held from pop until the call ends
	gate *semaphore.Weighted

	lastMu  sync.Mutex
	lastEnd time.Time
}

func New(
	transport Transport,
	cfg *config.Config,
	clk clock.Clock,
	sink errsink.Sink,
	metrics *telemetry.SchedulerMetrics,
	logger zerolog.Logger,
) *Scheduler {
	return &Scheduler{
		transport: transport,
		baseURL:   cfg.APIBaseURL,
		delay:     cfg.SchedulerDelay,
		clock:     clk,
		sink:      sink,
		metrics:   metrics,
		logger:    logger.With().Str("component", "scheduler").Logger(),
		gate:      semaphore.NewWeighted(1),
	}
}

// Enqueue adds a call to the heap and returns immediately. A nil decode
// resolves the future with the raw body. After Run has returned every call
// resolves as failed.
func (s *Scheduler) Enqueue(endpoint api.Endpoint, priority Priority, decode DecodeFunc) *Future {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Completed(nil, false)
	}
	f := newFuture()
	s.seq++
	heap.Push(&s.queue, &scheduledCall{
		priority:   priority,
		enqueuedAt: s.clock.Now(),
		seq:        s.seq,
		endpoint:   endpoint,
		decode:     decode,
		future:     f,
	})
	depth := s.queue.Len()
	s.mu.Unlock()

	s.metrics.RecordQueueDepth(context.Background(), depth)
	return f
}

func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

// Clear drops every queued call; their futures resolve as failed.
func (s *Scheduler) Clear() int {
	s.mu.Lock()
	dropped := s.queue
	s.queue = nil
	s.mu.Unlock()

	for _, call := range dropped {
		call.future.resolve(nil, false)
	}
	s.metrics.RecordQueueDepth(context.Background(), 0)
	return len(dropped)
}

func (s *Scheduler) pop() (*scheduledCall, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queue.Len() == 0 {
		return nil, false
	}
	return heap.Pop(&s.queue).(*scheduledCall), true
}

// Run pops at most one call per tick until ctx ends. Nothing leaves the heap
// while a call is in flight, so a call enqueued during a slow request still
// competes on priority.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info().Dur("delay", s.delay).Msg("scheduler started")

	ticker := s.clock.Ticker(s.delay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			s.closed = true
			s.mu.Unlock()
			dropped := s.Clear()
			s.logger.Info().Int("dropped", dropped).Msg("scheduler stopped")
			return
		case <-ticker.C:
			if !s.gate.TryAcquire(1) {
				continue
			}
			call, ok := s.pop()
			if !ok {
				s.gate.Release(1)
				continue
			}
			s.metrics.RecordQueueDepth(ctx, s.Len())
			go s.dispatch(ctx, call)
		}
	}
}

// dispatch runs one popped call. The caller holds the gate.
func (s *Scheduler) dispatch(ctx context.Context, call *scheduledCall) {
	defer s.gate.Release(1)

	if wait := s.delay - s.sinceLastCall(); wait > 0 {
		select {
		case <-s.clock.After(wait):
		case <-ctx.Done():
			call.future.resolve(nil, false)
			return
		}
	}

	url := call.endpoint.URL(s.baseURL)
	start := s.clock.Now()
	body, err := s.transport.Get(ctx, url)
	s.markCallEnd()
	elapsed := s.clock.Since(start)

	op := "scheduler." + call.endpoint.Kind.String()
	kind := call.endpoint.Kind.String()
	priority := call.priority.String()

	if err != nil {
		s.metrics.RecordCall(ctx, kind, priority, "transport", elapsed)
		s.sink.Record(ctx, op, err)
		call.future.resolve(nil, false)
		return
	}

	if call.decode == nil {
		s.metrics.RecordCall(ctx, kind, priority, "ok", elapsed)
		call.future.resolve(body, true)
		return
	}

	value, err := call.decode(body)
	if err != nil {
		s.metrics.RecordCall(ctx, kind, priority, "decode", elapsed)
		s.sink.Record(ctx, op, fmt.Errorf("failed to decode %s: %w", call.endpoint, err))
		call.future.resolve(nil, false)
		return
	}

	s.metrics.RecordCall(ctx, kind, priority, "ok", elapsed)
	s.logger.Debug().
		Str("endpoint", call.endpoint.String()).
		Str("priority", priority).
		Dur("elapsed", elapsed).
		Msg("call completed")
	call.future.resolve(value, true)
}

func (s *Scheduler) sinceLastCall() time.Duration {
	s.lastMu.Lock()
	defer s.lastMu.Unlock()
	if s.lastEnd.IsZero() {
		return s.delay
	}
	return s.clock.Since(s.lastEnd)
}

func (s *Scheduler) markCallEnd() {
	s.lastMu.Lock()
	s.lastEnd = s.clock.Now()
	s.lastMu.Unlock()
}
