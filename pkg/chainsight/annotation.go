package chainsight

import "github.com/chainsight-ai/chainsight/pkg/chainsight/event"

// Annotation is the structured analysis extracted from a generation
// response: the six fields the capability is asked to produce.
type Annotation struct {
	Entities        []string `json:"entities"`
	Sentiment       string   `json:"sentiment"`
	SentimentScore  float64  `json:"sentiment_score"`
	RiskLevel       string   `json:"risk_level"`
	KeyImpacts      []string `json:"key_impacts"`
	AnalysisSummary string   `json:"analysis_summary"`
}

// DefaultAnnotation returns the neutral annotation used to fill fields
// absent from a parsed response. The parser and the fallback path both
// derive from this single definition so their defaults cannot drift.
func DefaultAnnotation() Annotation {
	return Annotation{
		Entities:        []string{},
		Sentiment:       event.SentimentNeutral,
		SentimentScore:  0.0,
		RiskLevel:       event.RiskMedium,
		KeyImpacts:      []string{},
		AnalysisSummary: "",
	}
}

// apply merges the annotation into a copy of ev. All source fields are
// carried unchanged.
func (a Annotation) apply(ev event.Event) event.AnnotatedEvent {
	return event.AnnotatedEvent{
		Event:           ev,
		Entities:        a.Entities,
		Sentiment:       a.Sentiment,
		SentimentScore:  a.SentimentScore,
		RiskLevel:       a.RiskLevel,
		KeyImpacts:      a.KeyImpacts,
		AnalysisSummary: a.AnalysisSummary,
	}
}
