package benchmarks

import (
	"testing"

	"github.com/chainsight-ai/chainsight/pkg/chainsight"
	"github.com/chainsight-ai/chainsight/pkg/chainsight/event"
	"github.com/chainsight-ai/chainsight/pkg/chainsight/template"
)

func annotatedBatch(n int) []event.AnnotatedEvent {
	gen := event.NewGenerator(event.WithSeed(42))
	events := gen.GenerateBatch(n)
	out := make([]event.AnnotatedEvent, 0, n)
	for _, ev := range events {
		out = append(out, chainsight.Fallback(ev))
	}
	return out
}

// BenchmarkAggregate_100 summarizes a hundred annotated events.
func BenchmarkAggregate_100(b *testing.B) {
	events := annotatedBatch(100)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		chainsight.Aggregate(events)
	}
}

// BenchmarkAggregate_1000 summarizes a thousand annotated events.
func BenchmarkAggregate_1000(b *testing.B) {
	events := annotatedBatch(1000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		chainsight.Aggregate(events)
	}
}

// BenchmarkGenerate measures synthetic event creation.
func BenchmarkGenerate(b *testing.B) {
	gen := event.NewGenerator(event.WithSeed(1))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		gen.Generate()
	}
}

// BenchmarkTemplateExpand measures placeholder expansion on a
// headline-sized template.
func BenchmarkTemplateExpand(b *testing.B) {
	vars := map[string]any{
		"company":    "Acme Corp",
		"disruption": "port strike",
		"location":   "Singapore",
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		template.Expand("${company} faces ${disruption} near ${location}", vars)
	}
}
