package chainsight

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chainsight-ai/chainsight/pkg/chainsight/event"
	"github.com/chainsight-ai/chainsight/pkg/chainsight/llm"
	"github.com/chainsight-ai/chainsight/pkg/chainsight/observability"
)

// annotation sources reported to logs and metrics. Structured and
// heuristic come from ParseSource; fallback means the generation call
// itself failed.
const sourceFallback = "fallback"

// Analyzer annotates disruption events using a text generation
// capability, falling back to deterministic metadata-derived
// annotations when that capability fails.
//
// Analyzer is safe for concurrent use if its client is.
type Analyzer struct {
	client  llm.Client
	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager

	model       string
	maxTokens   int
	temperature float64
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithLogger sets the structured logger. Default: logging disabled.
func WithLogger(logger *slog.Logger) AnalyzerOption {
	return func(a *Analyzer) { a.logger = logger }
}

// WithMetrics sets the metrics recorder. Default: no-op.
func WithMetrics(recorder observability.MetricsRecorder) AnalyzerOption {
	return func(a *Analyzer) { a.metrics = recorder }
}

// WithTracing sets the span manager. Default: no-op.
func WithTracing(spans observability.SpanManager) AnalyzerOption {
	return func(a *Analyzer) { a.spans = spans }
}

// WithModel overrides the model requested per generation call.
func WithModel(model string) AnalyzerOption {
	return func(a *Analyzer) { a.model = model }
}

// WithMaxTokens caps the generation response length.
func WithMaxTokens(n int) AnalyzerOption {
	return func(a *Analyzer) { a.maxTokens = n }
}

// WithTemperature sets the sampling temperature for generation calls.
func WithTemperature(t float64) AnalyzerOption {
	return func(a *Analyzer) { a.temperature = t }
}

// NewAnalyzer creates an analyzer backed by the given generation client.
func NewAnalyzer(client llm.Client, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		client:  client,
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze annotates a single event.
//
// The only possible error is an *event.ValidationError for an event
// missing identity fields: no safe synthetic annotation can be attached
// to an unidentifiable event. Generation failures and unparsable
// responses are recovered internally - a failed call yields the
// deterministic fallback annotation, an unstructured response yields a
// heuristic one - so the returned AnnotatedEvent is always valid.
func (a *Analyzer) Analyze(ctx context.Context, ev event.Event) (event.AnnotatedEvent, error) {
	if err := ev.Validate(); err != nil {
		return event.AnnotatedEvent{}, err
	}

	ctx, span := a.spans.StartAnalyzeSpan(ctx, ev.EventID)
	start := time.Now()

	annotated, source := a.annotate(ctx, ev)

	elapsed := time.Since(start)
	a.metrics.RecordAnalysis(ctx, source, elapsed)
	observability.LogAnalysisComplete(a.logger, ev.EventID, source, float64(elapsed.Milliseconds()))
	a.spans.EndSpanWithError(span, nil)

	return annotated, nil
}

// annotate runs the generation call and parse chain for a valid event.
// Returns the annotated event and the annotation source tag.
func (a *Analyzer) annotate(ctx context.Context, ev event.Event) (event.AnnotatedEvent, string) {
	req := llm.CompletionRequest{
		Prompt:      buildPrompt(ev),
		Model:       a.model,
		MaxTokens:   a.maxTokens,
		Temperature: a.temperature,
	}

	callStart := time.Now()
	resp, err := a.client.Complete(ctx, req)
	a.metrics.RecordGenerationCall(ctx, time.Since(callStart), err)

	if err != nil {
		observability.LogFallback(a.logger, ev.EventID, err)
		return Fallback(ev), sourceFallback
	}

	result := ParseResponse(resp.Content)
	return result.Annotation.apply(ev), result.Source.String()
}

// AnalyzeBatch annotates events strictly in input order, one at a time.
//
// The output always contains one AnnotatedEvent per input event. A
// generation failure for one event never aborts or reorders the rest.
// The batch stops early only when an event fails validation or the
// context is cancelled between events; either error is returned with
// the offending position.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, events []event.Event) ([]event.AnnotatedEvent, error) {
	ctx, span := a.spans.StartBatchSpan(ctx, len(events))
	start := time.Now()
	observability.LogBatchStart(a.logger, len(events))

	annotated := make([]event.AnnotatedEvent, 0, len(events))
	fallbacks := 0
	for i, ev := range events {
		if err := ctx.Err(); err != nil {
			a.spans.EndSpanWithError(span, err)
			return annotated, fmt.Errorf("batch cancelled at event %d: %w", i, err)
		}

		if err := ev.Validate(); err != nil {
			a.spans.EndSpanWithError(span, err)
			return annotated, fmt.Errorf("event %d: %w", i, err)
		}

		evStart := time.Now()
		result, source := a.annotate(ctx, ev)
		if source == sourceFallback {
			fallbacks++
		}
		evElapsed := time.Since(evStart)
		a.metrics.RecordAnalysis(ctx, source, evElapsed)
		observability.LogAnalysisComplete(a.logger, ev.EventID, source, float64(evElapsed.Milliseconds()))

		annotated = append(annotated, result)
	}

	elapsed := time.Since(start)
	a.metrics.RecordBatch(ctx, len(annotated), elapsed)
	observability.LogBatchComplete(a.logger, len(annotated), fallbacks, float64(elapsed.Milliseconds()))
	a.spans.EndSpanWithError(span, nil)

	return annotated, nil
}
