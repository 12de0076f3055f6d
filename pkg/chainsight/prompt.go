package chainsight

import (
	"github.com/chainsight-ai/chainsight/pkg/chainsight/event"
	"github.com/chainsight-ai/chainsight/pkg/chainsight/template"
)

// analysisPromptTemplate instructs the generation capability to return
// the six annotation fields as a JSON object. The shape is part of the
// capability contract: ParseResponse extracts exactly these keys.
const analysisPromptTemplate = `Analyze this supply chain news event and provide structured insights:

Headline: ${headline}
Company: ${company}
Location: ${location}

Please provide:
1. Entities: List key entities (companies, locations, products, services)
2. Sentiment: Classify as POSITIVE, NEUTRAL, or NEGATIVE
3. Sentiment Score: Rate from -1.0 (very negative) to +1.0 (very positive)
4. Risk Level: Classify as LOW, MEDIUM, or HIGH
5. Key Impacts: List 2-3 specific supply chain impacts
6. Summary: Brief analysis (1-2 sentences)

Respond in JSON format:
{
    "entities": ["entity1", "entity2"],
    "sentiment": "POSITIVE|NEUTRAL|NEGATIVE",
    "sentiment_score": 0.5,
    "risk_level": "LOW|MEDIUM|HIGH",
    "key_impacts": ["impact1", "impact2"],
    "analysis_summary": "Brief summary here"
}
`

// buildPrompt renders the deterministic analysis prompt for an event.
func buildPrompt(ev event.Event) string {
	return template.Expand(analysisPromptTemplate, map[string]any{
		"headline": ev.Headline,
		"company":  ev.Company,
		"location": ev.Location,
	})
}
