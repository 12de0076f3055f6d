package chainsight

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/chainsight-ai/chainsight/pkg/chainsight/event"
)

// topListLimit caps the top_entities / top_locations lists.
const topListLimit = 10

// ValueCount is one entry of a frequency-ranked list.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Summary holds cross-event statistics for a batch of annotated events.
//
// A Summary is recomputed from scratch on every Aggregate call and owns
// no state between calls. Distribution maps count risk/sentiment values
// verbatim: values outside the nominal enums are tallied rather than
// dropped so upstream bugs stay visible in the stats.
type Summary struct {
	TotalEvents           int            `json:"total_events"`
	RiskDistribution      map[string]int `json:"risk_distribution"`
	SentimentDistribution map[string]int `json:"sentiment_distribution"`
	AvgSentimentScore     float64        `json:"avg_sentiment_score"`
	TopEntities           []ValueCount   `json:"top_entities"`
	TopLocations          []ValueCount   `json:"top_locations"`
}

// counter tallies string values while remembering first-seen order, so
// ranked output can break count ties stably. It starts empty and
// inserts keys on first occurrence - no enum is seeded upfront.
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(value string) {
	if _, seen := c.counts[value]; !seen {
		c.order = append(c.order, value)
	}
	c.counts[value]++
}

// top returns at most limit entries, descending by count, ties broken
// by first-seen order.
func (c *counter) top(limit int) []ValueCount {
	ranked := make([]ValueCount, 0, len(c.order))
	for _, value := range c.order {
		ranked = append(ranked, ValueCount{Value: value, Count: c.counts[value]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// asMap returns the tally as a plain map.
func (c *counter) asMap() map[string]int {
	return c.counts
}

// Aggregate reduces a batch of annotated events to a Summary.
//
// It is a pure, total function: no input makes it fail, an empty batch
// yields the zero Summary (empty maps and lists, AvgSentimentScore 0),
// and calling it twice on the same input yields identical output.
func Aggregate(events []event.AnnotatedEvent) Summary {
	risks := newCounter()
	sentiments := newCounter()
	entities := newCounter()
	locationCounts := newCounter()

	var scoreSum float64
	for _, ev := range events {
		risk := ev.RiskLevel
		if risk == "" {
			risk = event.RiskMedium
		}
		risks.add(risk)

		sentiment := ev.Sentiment
		if sentiment == "" {
			sentiment = event.SentimentNeutral
		}
		sentiments.add(sentiment)

		scoreSum += ev.SentimentScore

		for _, entity := range entityList(ev.Entities) {
			entities.add(entity)
		}

		if ev.Location != "" {
			locationCounts.add(ev.Location)
		}
	}

	avg := 0.0
	if len(events) > 0 {
		avg = scoreSum / float64(len(events))
	}

	return Summary{
		TotalEvents:           len(events),
		RiskDistribution:      risks.asMap(),
		SentimentDistribution: sentiments.asMap(),
		AvgSentimentScore:     avg,
		TopEntities:           entities.top(topListLimit),
		TopLocations:          locationCounts.top(topListLimit),
	}
}

// entityList normalizes an event's entity list. A storage boundary may
// have collapsed the list into a single JSON-encoded string; decode it
// back when that is the case, otherwise use the list verbatim.
func entityList(entities []string) []string {
	if len(entities) == 1 && strings.HasPrefix(strings.TrimSpace(entities[0]), "[") {
		var decoded []string
		if err := json.Unmarshal([]byte(entities[0]), &decoded); err == nil {
			return decoded
		}
	}
	return entities
}
