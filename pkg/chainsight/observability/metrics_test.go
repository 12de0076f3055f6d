package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// setupMetricsTest creates a test meter provider and returns a function to collect metrics.
func setupMetricsTest(t *testing.T) (*sdkmetric.ManualReader, func()) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	originalProvider := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)

	cleanup := func() {
		otel.SetMeterProvider(originalProvider)
		if err := provider.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down meter provider: %v", err)
		}
	}

	return reader, cleanup
}

// collectMetrics collects all metrics from the reader.
func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) *metricdata.ResourceMetrics {
	var rm metricdata.ResourceMetrics
	err := reader.Collect(context.Background(), &rm)
	require.NoError(t, err)
	return &rm
}

// findMetric finds a metric by name in the collected data.
func findMetric(rm *metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestNewMetricsRecorder(t *testing.T) {
	_, cleanup := setupMetricsTest(t)
	defer cleanup()

	recorder := NewMetricsRecorder()
	require.NotNil(t, recorder)

	_, isNoop := recorder.(NoopMetrics)
	assert.False(t, isNoop, "Expected real metrics recorder, got noop")
}

func TestRecordAnalysis(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)

	ctx := context.Background()

	t.Run("records event count by source", func(t *testing.T) {
		m.RecordAnalysis(ctx, "structured", 50*time.Millisecond)

		rm := collectMetrics(t, reader)
		metric := findMetric(rm, "chainsight.analysis.events")
		require.NotNil(t, metric)

		sum, ok := metric.Data.(metricdata.Sum[int64])
		require.True(t, ok, "Expected Sum type")
		require.NotEmpty(t, sum.DataPoints)

		found := false
		for _, dp := range sum.DataPoints {
			for _, attr := range dp.Attributes.ToSlice() {
				if attr.Key == "source" && attr.Value.AsString() == "structured" {
					found = true
					assert.GreaterOrEqual(t, dp.Value, int64(1))
				}
			}
		}
		assert.True(t, found, "Expected to find datapoint for source=structured")
	})

	t.Run("records latency", func(t *testing.T) {
		m.RecordAnalysis(ctx, "heuristic", 100*time.Millisecond)

		rm := collectMetrics(t, reader)
		metric := findMetric(rm, "chainsight.analysis.latency_ms")
		require.NotNil(t, metric)

		hist, ok := metric.Data.(metricdata.Histogram[float64])
		require.True(t, ok, "Expected Histogram type")
		require.NotEmpty(t, hist.DataPoints)
	})
}

func TestRecordGenerationCall(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)

	ctx := context.Background()

	t.Run("records call count and latency", func(t *testing.T) {
		m.RecordGenerationCall(ctx, 200*time.Millisecond, nil)

		rm := collectMetrics(t, reader)
		require.NotNil(t, findMetric(rm, "chainsight.llm.calls"))

		metric := findMetric(rm, "chainsight.llm.latency_ms")
		require.NotNil(t, metric)
		hist, ok := metric.Data.(metricdata.Histogram[float64])
		require.True(t, ok, "Expected Histogram type")
		require.NotEmpty(t, hist.DataPoints)
	})

	t.Run("records errors when present", func(t *testing.T) {
		m.RecordGenerationCall(ctx, 10*time.Millisecond, errors.New("rate limit exceeded"))

		rm := collectMetrics(t, reader)
		metric := findMetric(rm, "chainsight.llm.errors")
		require.NotNil(t, metric)

		sum, ok := metric.Data.(metricdata.Sum[int64])
		require.True(t, ok, "Expected Sum type")
		require.NotEmpty(t, sum.DataPoints)
		assert.GreaterOrEqual(t, sum.DataPoints[0].Value, int64(1))
	})

	t.Run("does not record error when nil", func(t *testing.T) {
		before := int64(0)
		rm := collectMetrics(t, reader)
		if metric := findMetric(rm, "chainsight.llm.errors"); metric != nil {
			if sum, ok := metric.Data.(metricdata.Sum[int64]); ok && len(sum.DataPoints) > 0 {
				before = sum.DataPoints[0].Value
			}
		}

		m.RecordGenerationCall(ctx, 10*time.Millisecond, nil)

		rm = collectMetrics(t, reader)
		if metric := findMetric(rm, "chainsight.llm.errors"); metric != nil {
			if sum, ok := metric.Data.(metricdata.Sum[int64]); ok && len(sum.DataPoints) > 0 {
				assert.Equal(t, before, sum.DataPoints[0].Value, "Expected no new errors")
			}
		}
	})
}

func TestRecordBatch(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordBatch(ctx, 25, 500*time.Millisecond)

	rm := collectMetrics(t, reader)

	metric := findMetric(rm, "chainsight.analysis.batches")
	require.NotNil(t, metric)
	sum, ok := metric.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.NotEmpty(t, sum.DataPoints)

	found := false
	for _, dp := range sum.DataPoints {
		for _, attr := range dp.Attributes.ToSlice() {
			if attr.Key == "size" && attr.Value.AsInt64() == 25 {
				found = true
			}
		}
	}
	assert.True(t, found, "Expected to find datapoint with size attribute")

	latency := findMetric(rm, "chainsight.analysis.batch_latency_ms")
	require.NotNil(t, latency)
	hist, ok := latency.Data.(metricdata.Histogram[float64])
	require.True(t, ok, "Expected Histogram type")
	require.NotEmpty(t, hist.DataPoints)
}

func TestRecordStoreWrite(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordStoreWrite(ctx, "analyzed_events", 10)

	rm := collectMetrics(t, reader)
	metric := findMetric(rm, "chainsight.store.writes")
	require.NotNil(t, metric)

	sum, ok := metric.Data.(metricdata.Sum[int64])
	require.True(t, ok, "Expected Sum type")
	require.NotEmpty(t, sum.DataPoints)

	found := false
	for _, dp := range sum.DataPoints {
		for _, attr := range dp.Attributes.ToSlice() {
			if attr.Key == "table" && attr.Value.AsString() == "analyzed_events" {
				found = true
				assert.Equal(t, int64(10), dp.Value, "writes counted by row")
			}
		}
	}
	assert.True(t, found, "Expected to find datapoint for table=analyzed_events")
}

func TestOtelMetrics_AllMethods(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)
	require.NotNil(t, m)

	ctx := context.Background()

	m.RecordAnalysis(ctx, "structured", 25*time.Millisecond)
	m.RecordAnalysis(ctx, "fallback", 5*time.Millisecond)
	m.RecordGenerationCall(ctx, 100*time.Millisecond, nil)
	m.RecordGenerationCall(ctx, 50*time.Millisecond, errors.New("test"))
	m.RecordBatch(ctx, 10, 300*time.Millisecond)
	m.RecordStoreWrite(ctx, "raw_events", 10)

	rm := collectMetrics(t, reader)

	assert.NotNil(t, findMetric(rm, "chainsight.analysis.events"))
	assert.NotNil(t, findMetric(rm, "chainsight.analysis.latency_ms"))
	assert.NotNil(t, findMetric(rm, "chainsight.llm.calls"))
	assert.NotNil(t, findMetric(rm, "chainsight.llm.errors"))
	assert.NotNil(t, findMetric(rm, "chainsight.llm.latency_ms"))
	assert.NotNil(t, findMetric(rm, "chainsight.analysis.batches"))
	assert.NotNil(t, findMetric(rm, "chainsight.analysis.batch_latency_ms"))
	assert.NotNil(t, findMetric(rm, "chainsight.store.writes"))
}

func TestNewOtelMetrics_Creation(t *testing.T) {
	_, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)
	require.NotNil(t, m)

	assert.NotNil(t, m.analyzedEvents)
	assert.NotNil(t, m.analyzeLatency)
	assert.NotNil(t, m.generationCall)
	assert.NotNil(t, m.generationErrs)
	assert.NotNil(t, m.llmLatency)
	assert.NotNil(t, m.batches)
	assert.NotNil(t, m.batchLatency)
	assert.NotNil(t, m.storeWrites)
}
