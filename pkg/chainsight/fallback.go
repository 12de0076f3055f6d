package chainsight

import (
	"github.com/chainsight-ai/chainsight/pkg/chainsight/event"
	"github.com/chainsight-ai/chainsight/pkg/chainsight/template"
)

// sentimentTable maps a declared expected sentiment to the annotation
// sentiment and score used by the fallback path.
var sentimentTable = map[string]struct {
	sentiment string
	score     float64
}{
	event.ExpectedPositive: {event.SentimentPositive, 0.5},
	event.ExpectedNeutral:  {event.SentimentNeutral, 0.0},
	event.ExpectedNegative: {event.SentimentNegative, -0.5},
}

// severityTable maps a declared severity to a risk level.
var severityTable = map[string]string{
	event.SeverityLow:    event.RiskLow,
	event.SeverityMedium: event.RiskMedium,
	event.SeverityHigh:   event.RiskHigh,
}

// fallbackSummaryTemplate is the fixed summary attached by Fallback.
const fallbackSummaryTemplate = "Fallback analysis for ${disruption_type} event"

// Fallback derives an annotation purely from the event's own declared
// metadata. It is deterministic, performs no I/O, and cannot fail,
// which makes the analysis path total: every event yields a valid
// annotation regardless of how the generation capability behaves.
func Fallback(ev event.Event) event.AnnotatedEvent {
	ann := DefaultAnnotation()

	if row, ok := sentimentTable[ev.ExpectedSentiment]; ok {
		ann.Sentiment = row.sentiment
		ann.SentimentScore = row.score
	}

	if risk, ok := severityTable[ev.Severity]; ok {
		ann.RiskLevel = risk
	}

	// Empty company/location entries are retained so positional meaning
	// of the entity list is stable.
	ann.Entities = []string{ev.Company, ev.Location}

	disruptionType := ev.DisruptionType
	if disruptionType == "" {
		disruptionType = "operational"
	}
	impactArea := ev.ImpactArea
	if impactArea == "" {
		impactArea = "operations"
	}
	ann.KeyImpacts = []string{
		disruptionType + " disruption",
		"Impact on " + impactArea,
	}

	ann.AnalysisSummary = template.Expand(fallbackSummaryTemplate, map[string]any{
		"disruption_type": disruptionType,
	})

	return ann.apply(ev)
}
