/*
Package chainsight provides the analysis and aggregation engine for
supply chain disruption events.

# Overview

chainsight turns raw disruption events into structured risk/sentiment
annotations and rolls annotated events up into summary statistics. The
annotation path is backed by an external text generation capability
(the llm.Client interface) but is total: every valid event receives a
schema-conformant annotation no matter how the generation call behaves.

# Analysis

Create an Analyzer with a generation client and analyze events:

	client := llm.NewHTTPClient(apiKey, llm.WithModel("gemini-pro"))
	analyzer := chainsight.NewAnalyzer(client)

	annotated, err := analyzer.Analyze(ctx, ev)
	if err != nil {
	    // Only possible failure: ev is missing identity fields.
	    log.Fatal(err)
	}

Generation failures and unparsable responses never surface as errors.
The analyzer recovers them in two stages:

  - A response with no extractable JSON annotation is parsed
    heuristically (keyword scan for sentiment and risk).
  - A failed generation call yields a deterministic fallback annotation
    derived from the event's own declared metadata.

Process batches in input order with AnalyzeBatch:

	annotated, err := analyzer.AnalyzeBatch(ctx, events)

# Aggregation

Aggregate reduces a batch of annotated events to distributional
statistics:

	summary := chainsight.Aggregate(annotated)
	fmt.Println(summary.TotalEvents, summary.RiskDistribution)

Aggregate is pure and total: it holds no state between calls, never
fails, and counts whatever risk/sentiment values it sees verbatim, so
upstream bugs show up in the stats instead of being dropped.

# Thread Safety

  - Analyzer is safe for concurrent use if its Client is.
  - Aggregate is a pure function and trivially safe.
  - Summary values are independent snapshots; mutating one has no
    effect on the engine.

# Subpackages

  - event: disruption event model and synthetic generator
  - llm: text generation capability (interface, HTTP client, mock)
  - store: SQLite persistence for raw and analyzed events
  - config: configuration loading (YAML, JSON, environment)
  - observability: logging, metrics, and tracing helpers
  - template: ${var} string expansion
*/
package chainsight
