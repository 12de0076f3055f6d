package chainsight

import (
	"encoding/json"
	"strings"

	"github.com/chainsight-ai/chainsight/pkg/chainsight/event"
)

// ParseSource tags which stage of the parser produced a result.
type ParseSource int

const (
	// SourceStructured means the annotation was decoded from a JSON
	// object embedded in the response.
	SourceStructured ParseSource = iota

	// SourceHeuristic means the annotation was derived from a keyword
	// scan because no valid JSON annotation could be extracted.
	SourceHeuristic
)

// String returns the tag name for logging.
func (s ParseSource) String() string {
	if s == SourceStructured {
		return "structured"
	}
	return "heuristic"
}

// ParseResult is the outcome of parsing a generation response. The two
// stages are mutually exclusive: a result is either fully structured or
// fully heuristic, never a mix.
type ParseResult struct {
	Annotation Annotation
	Source     ParseSource
}

// heuristicSummaryLimit caps the summary taken from unstructured text.
const heuristicSummaryLimit = 200

// heuristicSummaryPlaceholder is used when the response text is empty.
const heuristicSummaryPlaceholder = "Analysis unavailable"

// ParseResponse extracts an annotation from raw generation output.
//
// It first tries to decode the largest brace-delimited substring (first
// '{' to last '}') as a JSON annotation; fields absent from a decoded
// object take DefaultAnnotation values. A sentiment_score outside
// [-1, 1] invalidates the decode. When no valid JSON annotation exists
// the text is scanned heuristically for sentiment and risk keywords.
//
// ParseResponse never fails: any input, including empty or binary
// garbage, yields a usable annotation.
func ParseResponse(raw string) ParseResult {
	if ann, ok := parseStructured(raw); ok {
		return ParseResult{Annotation: ann, Source: SourceStructured}
	}
	return ParseResult{Annotation: parseHeuristic(raw), Source: SourceHeuristic}
}

// rawAnnotation mirrors Annotation with pointer fields so absent keys
// can be distinguished from zero values.
type rawAnnotation struct {
	Entities        *[]string `json:"entities"`
	Sentiment       *string   `json:"sentiment"`
	SentimentScore  *float64  `json:"sentiment_score"`
	RiskLevel       *string   `json:"risk_level"`
	KeyImpacts      *[]string `json:"key_impacts"`
	AnalysisSummary *string   `json:"analysis_summary"`
}

// parseStructured attempts the JSON extraction stage.
func parseStructured(raw string) (Annotation, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return Annotation{}, false
	}

	var decoded rawAnnotation
	if err := json.Unmarshal([]byte(raw[start:end+1]), &decoded); err != nil {
		return Annotation{}, false
	}

	// An out-of-range score is a malformed response, not data to clamp.
	if decoded.SentimentScore != nil &&
		(*decoded.SentimentScore < -1.0 || *decoded.SentimentScore > 1.0) {
		return Annotation{}, false
	}

	ann := DefaultAnnotation()
	if decoded.Entities != nil {
		ann.Entities = *decoded.Entities
	}
	if decoded.Sentiment != nil {
		ann.Sentiment = *decoded.Sentiment
	}
	if decoded.SentimentScore != nil {
		ann.SentimentScore = *decoded.SentimentScore
	}
	if decoded.RiskLevel != nil {
		ann.RiskLevel = *decoded.RiskLevel
	}
	if decoded.KeyImpacts != nil {
		ann.KeyImpacts = *decoded.KeyImpacts
	}
	if decoded.AnalysisSummary != nil {
		ann.AnalysisSummary = *decoded.AnalysisSummary
	}
	return ann, true
}

// parseHeuristic derives an annotation from keyword occurrence when the
// response carries no decodable JSON.
func parseHeuristic(raw string) Annotation {
	ann := DefaultAnnotation()

	upper := strings.ToUpper(raw)

	// NEGATIVE takes precedence over POSITIVE when both occur.
	switch {
	case strings.Contains(upper, event.SentimentNegative):
		ann.Sentiment = event.SentimentNegative
		ann.SentimentScore = -0.5
	case strings.Contains(upper, event.SentimentPositive):
		ann.Sentiment = event.SentimentPositive
		ann.SentimentScore = 0.5
	}

	if strings.Contains(upper, "RISK") {
		switch {
		case strings.Contains(upper, event.RiskHigh):
			ann.RiskLevel = event.RiskHigh
		case strings.Contains(upper, event.RiskLow):
			ann.RiskLevel = event.RiskLow
		}
	}

	if raw == "" {
		ann.AnalysisSummary = heuristicSummaryPlaceholder
	} else if runes := []rune(raw); len(runes) > heuristicSummaryLimit {
		// Character count, not bytes: slicing raw directly could split a
		// multibyte rune and leave invalid UTF-8 in the summary.
		ann.AnalysisSummary = string(runes[:heuristicSummaryLimit])
	} else {
		ann.AnalysisSummary = raw
	}

	return ann
}
