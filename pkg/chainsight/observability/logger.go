// Package observability provides structured logging, metrics, and
// tracing helpers for the analysis pipeline.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds analysis context to a logger.
// Returns a new logger carrying event_id and model fields.
func EnrichLogger(logger *slog.Logger, eventID, model string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("event_id", eventID),
		slog.String("model", model),
	)
}

// LogBatchStart logs the start of a batch analysis.
func LogBatchStart(logger *slog.Logger, size int) {
	if logger == nil {
		return
	}
	logger.Info("batch analysis starting",
		slog.Int("events", size),
	)
}

// LogBatchComplete logs batch analysis completion.
func LogBatchComplete(logger *slog.Logger, size, fallbacks int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Info("batch analysis completed",
		slog.Int("events", size),
		slog.Int("fallbacks", fallbacks),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogAnalysisComplete logs a single event analysis with its parse source.
func LogAnalysisComplete(logger *slog.Logger, eventID, source string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("event analyzed",
		slog.String("event_id", eventID),
		slog.String("source", source),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogFallback logs that an event received the deterministic fallback
// annotation because the generation call failed.
func LogFallback(logger *slog.Logger, eventID string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("generation failed, using fallback annotation",
		slog.String("event_id", eventID),
		slog.String("error", err.Error()),
	)
}

// LogStoreError logs a persistence failure (non-fatal to analysis).
func LogStoreError(logger *slog.Logger, op string, err error) {
	if logger == nil {
		return
	}
	logger.Error("store operation failed",
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in
// milliseconds.
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Milliseconds())
	}
}
