// Package telemetry provides OpenTelemetry instruments for the scheduler and
// the background loops.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/fx"
)

const (
	SchedulerMeterName = "wvw-dashboard/scheduler"
	LoopMeterName      = "wvw-dashboard/loop"
)

// SchedulerMetrics holds the instruments recorded by the call scheduler.
// A nil *SchedulerMetrics records nothing.
type SchedulerMetrics struct {
	queueDepth   metric.Int64Gauge
	calls        metric.Int64Counter
	callDuration metric.Float64Histogram
}

func NewSchedulerMetrics(provider metric.MeterProvider) (*SchedulerMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(SchedulerMeterName)

	queueDepth, err := meter.Int64Gauge(
		"wvw_scheduler_queue_depth",
		metric.WithDescription("Number of calls waiting in the scheduler heap"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	calls, err := meter.Int64Counter(
		"wvw_scheduler_calls_total",
		metric.WithDescription("Remote calls dispatched by the scheduler"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	callDuration, err := meter.Float64Histogram(
		"wvw_scheduler_call_duration_seconds",
		metric.WithDescription("Duration of remote calls in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	)
	if err != nil {
		return nil, err
	}

	return &SchedulerMetrics{
		queueDepth:   queueDepth,
		calls:        calls,
		callDuration: callDuration,
	}, nil
}

func (m *SchedulerMetrics) RecordQueueDepth(ctx context.Context, depth int) {
	if m == nil || m.queueDepth == nil {
		return
	}
	m.queueDepth.Record(ctx, int64(depth))
}

// RecordCall records one dispatched call; outcome is "ok", "transport" or "decode".
func (m *SchedulerMetrics) RecordCall(ctx context.Context, kind, priority, outcome string, duration time.Duration) {
	if m == nil || m.calls == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("endpoint", kind),
		attribute.String("priority", priority),
		attribute.String("outcome", outcome),
	)
	m.calls.Add(ctx, 1, attrs)
	m.callDuration.Record(ctx, duration.Seconds(), attrs)
}

// LoopMetrics holds the instruments recorded by reconciliation and snapshot loops.
type LoopMetrics struct {
	iterationDuration metric.Float64Histogram
}

func NewLoopMetrics(provider metric.MeterProvider) (*LoopMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(LoopMeterName)

	iterationDuration, err := meter.Float64Histogram(
		"wvw_loop_iteration_duration_seconds",
		metric.WithDescription("Duration of one loop iteration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120),
	)
	if err != nil {
		return nil, err
	}

	return &LoopMetrics{
		iterationDuration: iterationDuration,
	}, nil
}

func (m *LoopMetrics) RecordIteration(ctx context.Context, loop string, duration time.Duration, success bool) {
	if m == nil || m.iterationDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("loop", loop),
		attribute.Bool("success", success),
	}
	m.iterationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// MeterProvider returns the global provider; it is a no-op until an SDK
// provider is installed.
func MeterProvider() metric.MeterProvider {
	return otel.GetMeterProvider()
}

var Module = fx.Provide(
	MeterProvider,
	NewSchedulerMetrics,
	NewLoopMetrics,
)
