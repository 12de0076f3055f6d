package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records analysis pipeline metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordAnalysis records one analyzed event with the parse source
	// ("structured", "heuristic", or "fallback") and the analysis duration.
	RecordAnalysis(ctx context.Context, source string, duration time.Duration)

	// RecordGenerationCall records a generation capability call with its
	// duration and error status.
	RecordGenerationCall(ctx context.Context, duration time.Duration, err error)

	// RecordBatch records a completed batch with its size.
	RecordBatch(ctx context.Context, size int, duration time.Duration)

	// RecordStoreWrite records rows written to the event store.
	RecordStoreWrite(ctx context.Context, table string, rows int)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	analyzedEvents metric.Int64Counter
	analyzeLatency metric.Float64Histogram
	generationCall metric.Int64Counter
	generationErrs metric.Int64Counter
	llmLatency     metric.Float64Histogram
	batches        metric.Int64Counter
	batchLatency   metric.Float64Histogram
	storeWrites    metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("chainsight")

	analyzedEvents, err := meter.Int64Counter("chainsight.analysis.events",
		metric.WithDescription("Number of events analyzed, by annotation source"),
	)
	if err != nil {
		return nil, err
	}

	analyzeLatency, err := meter.Float64Histogram("chainsight.analysis.latency_ms",
		metric.WithDescription("Per-event analysis latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	generationCall, err := meter.Int64Counter("chainsight.llm.calls",
		metric.WithDescription("Number of generation capability calls"),
	)
	if err != nil {
		return nil, err
	}

	generationErrs, err := meter.Int64Counter("chainsight.llm.errors",
		metric.WithDescription("Number of failed generation capability calls"),
	)
	if err != nil {
		return nil, err
	}

	llmLatency, err := meter.Float64Histogram("chainsight.llm.latency_ms",
		metric.WithDescription("Generation call latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	batches, err := meter.Int64Counter("chainsight.analysis.batches",
		metric.WithDescription("Number of analyzed batches"),
	)
	if err != nil {
		return nil, err
	}

	batchLatency, err := meter.Float64Histogram("chainsight.analysis.batch_latency_ms",
		metric.WithDescription("Batch analysis latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	storeWrites, err := meter.Int64Counter("chainsight.store.writes",
		metric.WithDescription("Rows written to the event store"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		analyzedEvents: analyzedEvents,
		analyzeLatency: analyzeLatency,
		generationCall: generationCall,
		generationErrs: generationErrs,
		llmLatency:     llmLatency,
		batches:        batches,
		batchLatency:   batchLatency,
		storeWrites:    storeWrites,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the
// provider before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordAnalysis records one analyzed event.
func (m *otelMetrics) RecordAnalysis(ctx context.Context, source string, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("source", source))
	m.analyzedEvents.Add(ctx, 1, attrs)
	m.analyzeLatency.Record(ctx, float64(duration.Milliseconds()), attrs)
}

// RecordGenerationCall records a generation capability call.
func (m *otelMetrics) RecordGenerationCall(ctx context.Context, duration time.Duration, err error) {
	m.generationCall.Add(ctx, 1)
	m.llmLatency.Record(ctx, float64(duration.Milliseconds()))
	if err != nil {
		m.generationErrs.Add(ctx, 1)
	}
}

// RecordBatch records a completed batch.
func (m *otelMetrics) RecordBatch(ctx context.Context, size int, duration time.Duration) {
	m.batches.Add(ctx, 1, metric.WithAttributes(
		attribute.Int("size", size),
	))
	m.batchLatency.Record(ctx, float64(duration.Milliseconds()))
}

// RecordStoreWrite records rows written to the event store.
func (m *otelMetrics) RecordStoreWrite(ctx context.Context, table string, rows int) {
	m.storeWrites.Add(ctx, int64(rows), metric.WithAttributes(
		attribute.String("table", table),
	))
}
