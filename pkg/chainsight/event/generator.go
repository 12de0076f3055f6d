package event

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/chainsight-ai/chainsight/pkg/chainsight/template"
)

// Company and location pools for synthetic events.
var (
	companies = []string{
		"GlobalTech Corp", "TransWorld Logistics", "Pacific Manufacturing",
		"EuroSupply Chain", "AsiaLink Industries", "NorthStar Shipping",
		"MegaFactory Inc", "Continental Freight", "OceanWide Transport",
	}

	locations = []string{
		"Shanghai, China", "Rotterdam, Netherlands", "Los Angeles, USA",
		"Singapore", "Hamburg, Germany", "Hong Kong", "Dubai, UAE",
		"Tokyo, Japan", "Mumbai, India", "Sao Paulo, Brazil",
	}

	impactAreas = []string{"logistics", "manufacturing", "distribution", "procurement"}
)

// disruptions maps a disruption category to concrete incidents.
var disruptions = map[string][]string{
	"financial": {
		"bankruptcy filing", "credit rating downgrade", "debt restructuring",
		"liquidity crisis", "loan default", "payment delays",
	},
	"labor": {
		"strike action", "labor shortage", "union negotiations",
		"wage disputes", "safety protests", "work stoppage",
	},
	"operational": {
		"equipment failure", "capacity constraints", "quality issues",
		"production delays", "facility closure", "system outage",
	},
	"environmental": {
		"severe weather", "natural disaster", "port congestion",
		"route disruption", "supply shortage", "demand surge",
	},
}

// disruptionCategories is the stable iteration order for disruptions.
var disruptionCategories = []string{"financial", "labor", "operational", "environmental"}

// headlineTemplates maps expected sentiment to headline templates with
// ${company}, ${disruption}, and ${location} placeholders.
var headlineTemplates = map[string][]string{
	ExpectedNegative: {
		"${company} faces ${disruption} in ${location}, causing significant supply chain delays.",
		"Major disruption: ${company} reports ${disruption} affecting operations in ${location}.",
		"Supply chain alert: ${disruption} at ${company}'s ${location} facility raises concerns.",
		"${company} struggles with ${disruption} in ${location}, impacting delivery schedules.",
	},
	ExpectedNeutral: {
		"${company} announces ${disruption} in ${location}, monitoring situation closely.",
		"Update: ${company} experiencing ${disruption} in ${location}, assessing impact.",
		"${company} reports ${disruption} incident in ${location}, implementing contingency plans.",
	},
	ExpectedPositive: {
		"${company} successfully resolves ${disruption} in ${location}, operations resuming.",
		"${company} mitigates ${disruption} risk in ${location} with proactive measures.",
		"Recovery: ${company} overcomes ${disruption} challenges in ${location}.",
	},
}

// Generator produces synthetic supply chain disruption events.
//
// Generated headlines are biased towards negative sentiment to mimic a
// realistic risk feed. Generator is not safe for concurrent use.
type Generator struct {
	rng *rand.Rand
	now func() time.Time
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithSeed makes the generator deterministic for testing.
func WithSeed(seed int64) GeneratorOption {
	return func(g *Generator) {
		g.rng = rand.New(rand.NewSource(seed))
	}
}

// WithClock overrides the timestamp source for testing.
func WithClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) {
		g.now = now
	}
}

// NewGenerator creates a synthetic event generator.
func NewGenerator(opts ...GeneratorOption) *Generator {
	g := &Generator{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate produces a single synthetic disruption event.
func (g *Generator) Generate() Event {
	company := companies[g.rng.Intn(len(companies))]
	location := locations[g.rng.Intn(len(locations))]
	category := disruptionCategories[g.rng.Intn(len(disruptionCategories))]
	incidents := disruptions[category]
	incident := incidents[g.rng.Intn(len(incidents))]

	sentiments := []string{ExpectedNegative, ExpectedNeutral, ExpectedPositive}
	sentiment := sentiments[g.rng.Intn(len(sentiments))]
	// Bias towards negative sentiment for realistic risk scenarios.
	if g.rng.Float64() < 0.6 {
		sentiment = ExpectedNegative
	}

	templates := headlineTemplates[sentiment]
	headline := template.Expand(templates[g.rng.Intn(len(templates))], map[string]any{
		"company":    company,
		"disruption": incident,
		"location":   location,
	})

	severities := []string{SeverityLow, SeverityMedium, SeverityHigh}

	return Event{
		EventID:           "evt_" + uuid.New().String(),
		Timestamp:         g.now().Format(time.RFC3339),
		Headline:          headline,
		Company:           company,
		Location:          location,
		DisruptionType:    category,
		Disruption:        incident,
		ExpectedSentiment: sentiment,
		Severity:          severities[g.rng.Intn(len(severities))],
		ImpactArea:        impactAreas[g.rng.Intn(len(impactAreas))],
	}
}

// GenerateBatch produces count synthetic events.
func (g *Generator) GenerateBatch(count int) []Event {
	events := make([]Event, 0, count)
	for i := 0; i < count; i++ {
		events = append(events, g.Generate())
	}
	return events
}
