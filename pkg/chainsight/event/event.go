// Package event defines the supply chain disruption event model.
//
// An Event is a raw disruption record produced by an upstream ingestion
// collaborator. An AnnotatedEvent is an Event augmented with the
// structured risk/sentiment annotation produced by analysis. Events are
// immutable once created - annotation always works on a copy.
package event

import (
	"fmt"
	"strings"
)

// Sentiment classifications attached by analysis.
const (
	SentimentPositive = "POSITIVE"
	SentimentNeutral  = "NEUTRAL"
	SentimentNegative = "NEGATIVE"
)

// Risk level classifications attached by analysis.
const (
	RiskLow    = "LOW"
	RiskMedium = "MEDIUM"
	RiskHigh   = "HIGH"
)

// Severity values declared by the event producer (lowercase by convention).
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Expected sentiment values declared by the event producer.
// Only the fallback analysis path reads these.
const (
	ExpectedPositive = "positive"
	ExpectedNeutral  = "neutral"
	ExpectedNegative = "negative"
)

// Event is a raw supply chain disruption record.
//
// EventID, Timestamp, and Headline are required; everything else is
// optional and empty when absent. Timestamp is an ISO-8601 string as
// produced by the ingestion side - this package treats it as opaque.
type Event struct {
	EventID           string `json:"event_id"`
	Timestamp         string `json:"timestamp"`
	Headline          string `json:"headline"`
	Company           string `json:"company,omitempty"`
	Location          string `json:"location,omitempty"`
	DisruptionType    string `json:"disruption_type,omitempty"`
	Disruption        string `json:"disruption,omitempty"`
	ExpectedSentiment string `json:"expected_sentiment,omitempty"`
	Severity          string `json:"severity,omitempty"`
	ImpactArea        string `json:"impact_area,omitempty"`
}

// AnnotatedEvent is an Event plus the structured analysis annotation.
//
// Every source Event field is carried unchanged. Entities and KeyImpacts
// stay []string in memory; serializing them to JSON strings is the
// storage boundary's concern, not an invariant of this type.
type AnnotatedEvent struct {
	Event

	Entities        []string `json:"entities"`
	Sentiment       string   `json:"sentiment"`
	SentimentScore  float64  `json:"sentiment_score"`
	RiskLevel       string   `json:"risk_level"`
	KeyImpacts      []string `json:"key_impacts"`
	AnalysisSummary string   `json:"analysis_summary"`
}

// ValidationError reports an Event missing required identity fields.
// It is the only error class that escapes analysis: an event without an
// identity cannot receive a safe synthetic annotation.
type ValidationError struct {
	// EventID is the event identifier, possibly empty.
	EventID string
	// Missing lists the absent required fields.
	Missing []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("event %q missing required fields: %s",
		e.EventID, strings.Join(e.Missing, ", "))
}

// Validate checks that the required identity fields are present.
// Returns a *ValidationError naming every missing field, or nil.
func (e Event) Validate() error {
	var missing []string
	if e.EventID == "" {
		missing = append(missing, "event_id")
	}
	if e.Timestamp == "" {
		missing = append(missing, "timestamp")
	}
	if e.Headline == "" {
		missing = append(missing, "headline")
	}
	if len(missing) > 0 {
		return &ValidationError{EventID: e.EventID, Missing: missing}
	}
	return nil
}
