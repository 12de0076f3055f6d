// Package store persists raw and analyzed disruption events to SQLite.
//
// Store is the sink collaborator of the analysis engine: it owns the
// persisted string encoding of list-valued annotation fields and stamps
// ingestion/analysis timestamps. The analysis engine itself never
// touches it.
//
// # Thread Safety
//
// Store is safe for concurrent use. The underlying sql.DB handles
// connection pooling; batch inserts run in a transaction.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/chainsight-ai/chainsight/pkg/chainsight/event"
	"github.com/chainsight-ai/chainsight/pkg/chainsight/observability"
)

// ErrStoreClosed indicates an operation on a closed store.
var ErrStoreClosed = errors.New("store is closed")

// Store handles persistence of disruption events.
type Store struct {
	db      *sql.DB
	mu      sync.RWMutex
	closed  bool
	now     func() time.Time
	logger  *slog.Logger
	metrics observability.MetricsRecorder
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the timestamp source for testing.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the structured logger for persistence failures.
// Default: logging disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithMetrics sets the metrics recorder for write counts. Default: no-op.
func WithMetrics(recorder observability.MetricsRecorder) Option {
	return func(s *Store) { s.metrics = recorder }
}

// New creates a SQLite store at the given path.
// Use ":memory:" for testing. The schema is created if missing.
func New(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	s := &Store{db: db, now: time.Now, metrics: observability.NoopMetrics{}}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS raw_events (
		event_id TEXT PRIMARY KEY,
		timestamp TEXT NOT NULL,
		headline TEXT NOT NULL,
		company TEXT,
		location TEXT,
		disruption_type TEXT,
		disruption TEXT,
		expected_sentiment TEXT,
		severity TEXT,
		impact_area TEXT,
		ingested_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_raw_events_timestamp ON raw_events(timestamp DESC);

	CREATE TABLE IF NOT EXISTS analyzed_events (
		event_id TEXT PRIMARY KEY,
		timestamp TEXT NOT NULL,
		headline TEXT NOT NULL,
		company TEXT,
		location TEXT,
		disruption_type TEXT,
		entities TEXT,
		sentiment TEXT,
		sentiment_score REAL,
		risk_level TEXT,
		key_impacts TEXT,
		analysis_summary TEXT,
		analyzed_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_analyzed_events_timestamp ON analyzed_events(timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_analyzed_events_analyzed_at ON analyzed_events(analyzed_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveRawEvents inserts raw events, stamping ingested_at.
// Existing rows with the same event_id are replaced.
func (s *Store) SaveRawEvents(events []event.Event) error {
	if err := s.saveRawEvents(events); err != nil {
		observability.LogStoreError(s.logger, "save_raw_events", err)
		return err
	}
	if len(events) > 0 {
		s.metrics.RecordStoreWrite(context.Background(), "raw_events", len(events))
	}
	return nil
}

func (s *Store) saveRawEvents(events []event.Event) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrStoreClosed
	}
	if len(events) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO raw_events (
			event_id, timestamp, headline, company, location,
			disruption_type, disruption, expected_sentiment, severity,
			impact_area, ingested_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	ingestedAt := s.now().UTC().Format(time.RFC3339)
	for _, ev := range events {
		if _, err := stmt.Exec(
			ev.EventID, ev.Timestamp, ev.Headline, ev.Company, ev.Location,
			ev.DisruptionType, ev.Disruption, ev.ExpectedSentiment, ev.Severity,
			ev.ImpactArea, ingestedAt,
		); err != nil {
			return fmt.Errorf("insert raw event %s: %w", ev.EventID, err)
		}
	}

	return tx.Commit()
}

// SaveAnalyzedEvents inserts annotated events, stamping analyzed_at.
// The list-valued annotation fields are serialized to JSON strings at
// this boundary - the in-memory model keeps them as slices.
func (s *Store) SaveAnalyzedEvents(events []event.AnnotatedEvent) error {
	if err := s.saveAnalyzedEvents(events); err != nil {
		observability.LogStoreError(s.logger, "save_analyzed_events", err)
		return err
	}
	if len(events) > 0 {
		s.metrics.RecordStoreWrite(context.Background(), "analyzed_events", len(events))
	}
	return nil
}

func (s *Store) saveAnalyzedEvents(events []event.AnnotatedEvent) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrStoreClosed
	}
	if len(events) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO analyzed_events (
			event_id, timestamp, headline, company, location,
			disruption_type, entities, sentiment, sentiment_score,
			risk_level, key_impacts, analysis_summary, analyzed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	analyzedAt := s.now().UTC().Format(time.RFC3339)
	for _, ev := range events {
		entities, err := encodeList(ev.Entities)
		if err != nil {
			return fmt.Errorf("encode entities for %s: %w", ev.EventID, err)
		}
		impacts, err := encodeList(ev.KeyImpacts)
		if err != nil {
			return fmt.Errorf("encode key impacts for %s: %w", ev.EventID, err)
		}

		if _, err := stmt.Exec(
			ev.EventID, ev.Timestamp, ev.Headline, ev.Company, ev.Location,
			ev.DisruptionType, entities, ev.Sentiment, ev.SentimentScore,
			ev.RiskLevel, impacts, ev.AnalysisSummary, analyzedAt,
		); err != nil {
			return fmt.Errorf("insert analyzed event %s: %w", ev.EventID, err)
		}
	}

	return tx.Commit()
}

// RecentAnalyzed returns the most recently timestamped analyzed events,
// newest first, decoding the JSON-string list fields back to slices.
func (s *Store) RecentAnalyzed(limit int) ([]event.AnnotatedEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT event_id, timestamp, headline, company, location,
		       disruption_type, entities, sentiment, sentiment_score,
		       risk_level, key_impacts, analysis_summary
		FROM analyzed_events
		ORDER BY timestamp DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query analyzed events: %w", err)
	}
	defer rows.Close()

	var events []event.AnnotatedEvent
	for rows.Next() {
		var ev event.AnnotatedEvent
		var entities, impacts string
		if err := rows.Scan(
			&ev.EventID, &ev.Timestamp, &ev.Headline, &ev.Company, &ev.Location,
			&ev.DisruptionType, &entities, &ev.Sentiment, &ev.SentimentScore,
			&ev.RiskLevel, &impacts, &ev.AnalysisSummary,
		); err != nil {
			return nil, fmt.Errorf("scan analyzed event: %w", err)
		}
		ev.Entities = decodeList(entities)
		ev.KeyImpacts = decodeList(impacts)
		events = append(events, ev)
	}
	return events, rows.Err()
}

// RecentRaw returns the most recently timestamped raw events, newest first.
func (s *Store) RecentRaw(limit int) ([]event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT event_id, timestamp, headline, company, location,
		       disruption_type, disruption, expected_sentiment, severity,
		       impact_area
		FROM raw_events
		ORDER BY timestamp DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query raw events: %w", err)
	}
	defer rows.Close()

	var events []event.Event
	for rows.Next() {
		var ev event.Event
		if err := rows.Scan(
			&ev.EventID, &ev.Timestamp, &ev.Headline, &ev.Company, &ev.Location,
			&ev.DisruptionType, &ev.Disruption, &ev.ExpectedSentiment, &ev.Severity,
			&ev.ImpactArea,
		); err != nil {
			return nil, fmt.Errorf("scan raw event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// RiskSummary holds grouped counts over recently analyzed events.
type RiskSummary struct {
	TotalEvents int            `json:"total_events"`
	ByRiskLevel map[string]int `json:"by_risk_level"`
	BySentiment map[string]int `json:"by_sentiment"`
}

// GetRiskSummary groups analyzed events from the trailing window by
// risk level and sentiment.
func (s *Store) GetRiskSummary(window time.Duration) (RiskSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := RiskSummary{
		ByRiskLevel: make(map[string]int),
		BySentiment: make(map[string]int),
	}

	if s.closed {
		return summary, ErrStoreClosed
	}

	cutoff := s.now().UTC().Add(-window).Format(time.RFC3339)
	rows, err := s.db.Query(`
		SELECT COALESCE(risk_level, 'unknown'),
		       COALESCE(sentiment, 'unknown'),
		       COUNT(*)
		FROM analyzed_events
		WHERE analyzed_at >= ?
		GROUP BY risk_level, sentiment
		ORDER BY COUNT(*) DESC
	`, cutoff)
	if err != nil {
		return summary, fmt.Errorf("query risk summary: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var risk, sentiment string
		var count int
		if err := rows.Scan(&risk, &sentiment, &count); err != nil {
			return summary, fmt.Errorf("scan risk summary: %w", err)
		}
		summary.TotalEvents += count
		summary.ByRiskLevel[risk] += count
		summary.BySentiment[sentiment] += count
	}
	return summary, rows.Err()
}

// Close closes the store. Further operations return ErrStoreClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// encodeList serializes a string list as a JSON string for storage.
func encodeList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// decodeList parses a stored JSON string list, tolerating legacy rows
// that hold a bare string.
func decodeList(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return []string{raw}
	}
	return values
}
