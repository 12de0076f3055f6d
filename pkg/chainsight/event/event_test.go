package event_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainsight-ai/chainsight/pkg/chainsight/event"
)

func TestValidate_CompleteEvent(t *testing.T) {
	ev := event.Event{
		EventID:   "e1",
		Timestamp: "2024-01-01T00:00:00Z",
		Headline:  "Port congestion in Singapore",
	}

	assert.NoError(t, ev.Validate())
}

func TestValidate_MissingFields(t *testing.T) {
	tests := []struct {
		name    string
		ev      event.Event
		missing []string
	}{
		{
			name:    "all missing",
			ev:      event.Event{},
			missing: []string{"event_id", "timestamp", "headline"},
		},
		{
			name:    "no headline",
			ev:      event.Event{EventID: "e1", Timestamp: "2024-01-01T00:00:00Z"},
			missing: []string{"headline"},
		},
		{
			name:    "no event id",
			ev:      event.Event{Timestamp: "2024-01-01T00:00:00Z", Headline: "h"},
			missing: []string{"event_id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ev.Validate()

			var valErr *event.ValidationError
			require.ErrorAs(t, err, &valErr)
			assert.Equal(t, tt.missing, valErr.Missing)
		})
	}
}

func TestValidationError_Message(t *testing.T) {
	err := &event.ValidationError{EventID: "e1", Missing: []string{"timestamp", "headline"}}

	assert.Equal(t, `event "e1" missing required fields: timestamp, headline`, err.Error())
}

func TestEvent_JSONWireNames(t *testing.T) {
	ev := event.Event{
		EventID:   "e1",
		Timestamp: "2024-01-01T00:00:00Z",
		Headline:  "h",
		Company:   "Acme",
	}

	data, err := json.Marshal(ev)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "e1", m["event_id"])
	assert.Equal(t, "Acme", m["company"])
	assert.NotContains(t, m, "severity", "optional empty fields are omitted")
}

func TestAnnotatedEvent_CarriesSourceFields(t *testing.T) {
	ev := event.Event{
		EventID:   "e1",
		Timestamp: "2024-01-01T00:00:00Z",
		Headline:  "h",
		Severity:  event.SeverityHigh,
	}

	annotated := event.AnnotatedEvent{
		Event:     ev,
		Sentiment: event.SentimentNegative,
		RiskLevel: event.RiskHigh,
	}

	assert.Equal(t, ev, annotated.Event)

	data, err := json.Marshal(annotated)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "e1", m["event_id"])
	assert.Equal(t, "NEGATIVE", m["sentiment"])
	assert.Equal(t, "HIGH", m["risk_level"])
}
