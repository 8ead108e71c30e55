package compare

import (
	"testing"

	"github.com/jhandl/finance/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func testRun(name string, wealth ...int64) *domain.RunResult {
	run := &domain.RunResult{ProfileName: name, StartYear: 2025, TargetYear: 2024 + len(wealth)}
	for i, w := range wealth {
		run.Years = append(run.Years, domain.YearResult{
			Year:            2025 + i,
			NetIncome:       d(1000),
			TotalTax:        d(200),
			RemainingWealth: d(w),
		})
	}
	run.FinalWealth = d(wealth[len(wealth)-1])
	run.FinalPensionPot = d(500)
	return run
}

func TestMetricsCalculator_CalculateMetrics(t *testing.T) {
	run := testRun("base", 100, -50, 20)
	run.TargetYear = 2028

	result := NewMetricsCalculator().CalculateMetrics(run)

	assert.Equal(t, "base", result.Name)
	assert.True(t, result.FinalWealth.Equal(d(20)))
	assert.True(t, result.FinalPensionPot.Equal(d(500)))
	assert.True(t, result.LifetimeNet.Equal(d(3000)))
	assert.True(t, result.LifetimeTaxes.Equal(d(600)))
	assert.Equal(t, 2026, result.DepletionYear, "first year wealth went negative")
	assert.Equal(t, 1, result.SkippedYears)
}

func TestMetricsCalculator_CalculateComparison(t *testing.T) {
	calc := NewMetricsCalculator()
	base := ComparisonResult{Name: "base", FinalWealth: d(200000), LifetimeTaxes: d(50000)}
	alt := ComparisonResult{Name: "alt", FinalWealth: d(250000), LifetimeTaxes: d(45000)}

	result := calc.CalculateComparison(alt, base)
	assert.True(t, result.WealthDiffFromBase.Equal(d(50000)))
	assert.True(t, result.WealthPctFromBase.Equal(d(25)))
	assert.True(t, result.TaxDiffFromBase.Equal(d(-5000)))

	zero := calc.CalculateComparison(alt, ComparisonResult{})
	assert.True(t, zero.WealthPctFromBase.IsZero(), "no percentage against a zero base")

	negative := calc.CalculateComparison(ComparisonResult{FinalWealth: d(-50)}, ComparisonResult{FinalWealth: d(-100)})
	assert.True(t, negative.WealthPctFromBase.Equal(d(50)), "improving on a negative base is a positive change")
}

func TestGenerateRecommendations(t *testing.T) {
	compSet := NewCompareEngine(nil).CompareRuns(
		testRun("base", 100, 200),
		testRun("richer", 100, 300),
		testRun("broke", 100, -10),
	)
	compSet.AlternativeResults[0].LifetimeTaxes = d(100)

	recs := GenerateRecommendations(compSet)
	require.Len(t, recs, 3)
	assert.Contains(t, recs[0], "richer ends 100 above base")
	assert.Contains(t, recs[1], "richer pays 300 less")
	assert.Contains(t, recs[2], "broke runs out of wealth in 2026")
}

func TestGenerateRecommendations_NoAlternatives(t *testing.T) {
	compSet := NewCompareEngine(nil).CompareRuns(testRun("base", 100))
	assert.Empty(t, compSet.Recommendations)
	assert.Empty(t, GenerateRecommendations(&ComparisonSet{}))
}
