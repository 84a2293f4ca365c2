package covering

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("antminer.covering")
	meter  = otel.Meter("antminer.covering")
)

var (
	trainLatency metric.Float64Histogram
	trainTotal   metric.Int64Counter
	rulesTotal   metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		trainLatency, err = meter.Float64Histogram(
			"covering_train_duration_seconds",
			metric.WithDescription("Duration of a sequential covering run"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		trainTotal, err = meter.Int64Counter(
			"covering_train_total",
			metric.WithDescription("Total number of training runs"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		rulesTotal, err = meter.Int64Counter(
			"covering_rules_total",
			metric.WithDescription("Total number of rules appended to rule lists"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// startTrainSpan creates the span of one Train call.
func startTrainSpan(ctx context.Context, runID string, instances int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Trainer.Train",
		trace.WithAttributes(
			attribute.String("covering.run_id", runID),
			attribute.Int("covering.instances", instances),
		),
	)
}

// recordTrain records the metrics of one Train call.
func recordTrain(ctx context.Context, duration time.Duration, rules int, success bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(attribute.Bool("success", success))
	trainLatency.Record(ctx, duration.Seconds(), attrs)
	trainTotal.Add(ctx, 1, attrs)
	rulesTotal.Add(ctx, int64(rules))
}
