// Package governance_test provides benchmarks for full governance runs.
package governance_test

import (
	"fmt"
	"testing"

	"github.com/nwlandry/governance/governance"
	"github.com/nwlandry/governance/opinions"
)

// BenchmarkRun measures one complete process per strategy pair on a
// 500-stakeholder, 50-issue population.
func BenchmarkRun(b *testing.B) {
	rel, err := opinions.Relationships(50, 0.2, 0.5, opinions.WithSeed(1))
	if err != nil {
		b.Fatal(err)
	}
	op, err := opinions.Random(500, 50, opinions.WithSeed(1))
	if err != nil {
		b.Fatal(err)
	}

	pairs := []struct {
		decision governance.DecisionSelector
		group    governance.GroupSelector
	}{
		{governance.RandomDecision{}, governance.RandomGroup{}},
		{governance.SnowballDecision{}, governance.StarGroup{}},
		{governance.SentimentDecision{}, governance.RandomGroup{}},
	}
	for _, p := range pairs {
		b.Run(fmt.Sprintf("%s/%s", p.decision.Name(), p.group.Name()), func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _ = governance.Run(op, rel,
					governance.WithGroupSize(10),
					governance.WithGroupOverlap(3),
					governance.WithDecisionSelector(p.decision),
					governance.WithGroupSelector(p.group),
					governance.WithSeed(int64(i+1)),
				)
			}
		})
	}
}
