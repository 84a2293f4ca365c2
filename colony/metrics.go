package colony

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for colony runs.
var (
	tracer = otel.Tracer("antminer.colony")
	meter  = otel.Meter("antminer.colony")
)

var (
	iterationLatency metric.Float64Histogram
	iterationTotal   metric.Int64Counter
	antTotal         metric.Int64Counter
	emptyRuleTotal   metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		iterationLatency, err = meter.Float64Histogram(
			"colony_iteration_duration_seconds",
			metric.WithDescription("Duration of one construct, barrier and update cycle"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		iterationTotal, err = meter.Int64Counter(
			"colony_iterations_total",
			metric.WithDescription("Total number of colony iterations"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		antTotal, err = meter.Int64Counter(
			"colony_ants_total",
			metric.WithDescription("Total number of ant constructions"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		emptyRuleTotal, err = meter.Int64Counter(
			"colony_empty_rules_total",
			metric.WithDescription("Ant constructions that produced no rule"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// startRunSpan creates a span for one colony run.
func startRunSpan(ctx context.Context, active, colonySize int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Colony.Run",
		trace.WithAttributes(
			attribute.Int("colony.active_instances", active),
			attribute.Int("colony.size", colonySize),
		),
	)
}

// setRunSpanResult sets the result attributes on a run span.
func setRunSpanResult(span trace.Span, res *Result) {
	span.SetAttributes(
		attribute.Int("colony.iterations", res.Iterations),
		attribute.Bool("colony.stagnated", res.Stagnated),
		attribute.Int("colony.best_conditions", res.Best.Size()),
		attribute.Float64("colony.best_quality", res.Best.Quality),
	)
}

// recordIteration records the metrics of one iteration.
func recordIteration(ctx context.Context, duration time.Duration, ants, empty int) {
	if err := initMetrics(); err != nil {
		return
	}

	iterationLatency.Record(ctx, duration.Seconds())
	iterationTotal.Add(ctx, 1)
	antTotal.Add(ctx, int64(ants))
	if empty > 0 {
		emptyRuleTotal.Add(ctx, int64(empty))
	}
}
