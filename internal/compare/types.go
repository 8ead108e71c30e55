package compare

import (
	"fmt"

	"github.com/jhandl/finance/internal/domain"
	"github.com/shopspring/decimal"
)

// ComparisonResult holds the headline metrics of one run and, for
// alternatives, their difference from the base run
type ComparisonResult struct {
	Name string `json:"name"`

	FinalWealth     decimal.Decimal `json:"finalWealth"`
	FinalPensionPot decimal.Decimal `json:"finalPensionPot"`
	LifetimeNet     decimal.Decimal `json:"lifetimeNetIncome"`
	LifetimeTaxes   decimal.Decimal `json:"lifetimeTaxes"`
	// DepletionYear is the first year wealth went negative; zero if it never did.
	DepletionYear int `json:"depletionYear,omitempty"`
	SkippedYears  int `json:"skippedYears"`

	WealthDiffFromBase decimal.Decimal `json:"wealthDiffFromBase"`
	WealthPctFromBase  decimal.Decimal `json:"wealthPctFromBase"`
	TaxDiffFromBase    decimal.Decimal `json:"taxDiffFromBase"`
}

// ComparisonSet is a base run compared against its alternatives
type ComparisonSet struct {
	BaseName           string             `json:"baseName"`
	Seed               int64              `json:"seed,omitempty"`
	BaseResult         *ComparisonResult  `json:"baseResult"`
	AlternativeResults []ComparisonResult `json:"alternativeResults"`
	Recommendations    []string           `json:"recommendations"`
}

// MetricsCalculator extracts comparison metrics from runs
type MetricsCalculator struct{}

// NewMetricsCalculator creates a new metrics calculator
func NewMetricsCalculator() *MetricsCalculator {
	return &MetricsCalculator{}
}

// CalculateMetrics computes the headline metrics of a run
func (mc *MetricsCalculator) CalculateMetrics(run *domain.RunResult) ComparisonResult {
	result := ComparisonResult{
		Name:            run.ProfileName,
		FinalWealth:     run.FinalWealth,
		FinalPensionPot: run.FinalPensionPot,
		SkippedYears:    run.SkippedYears(),
	}
	for _, yr := range run.Years {
		result.LifetimeNet = result.LifetimeNet.Add(yr.NetIncome)
		result.LifetimeTaxes = result.LifetimeTaxes.Add(yr.TotalTax)
		if result.DepletionYear == 0 && yr.RemainingWealth.IsNegative() {
			result.DepletionYear = yr.Year
		}
	}
	return result
}

// CalculateComparison fills in the differences between scenario and base
func (mc *MetricsCalculator) CalculateComparison(scenario, base ComparisonResult) ComparisonResult {
	scenario.WealthDiffFromBase = scenario.FinalWealth.Sub(base.FinalWealth)
	if !base.FinalWealth.IsZero() {
		scenario.WealthPctFromBase = scenario.WealthDiffFromBase.
			Div(base.FinalWealth.Abs()).
			Mul(decimal.NewFromInt(100))
	}
	scenario.TaxDiffFromBase = scenario.LifetimeTaxes.Sub(base.LifetimeTaxes)
	return scenario
}

// GenerateRecommendations points out the alternatives that beat the base
func GenerateRecommendations(compSet *ComparisonSet) []string {
	recommendations := []string{}
	if compSet.BaseResult == nil || len(compSet.AlternativeResults) == 0 {
		return recommendations
	}
	base := compSet.BaseResult

	bestWealth := base
	for i := range compSet.AlternativeResults {
		if compSet.AlternativeResults[i].FinalWealth.GreaterThan(bestWealth.FinalWealth) {
			bestWealth = &compSet.AlternativeResults[i]
		}
	}
	if bestWealth != base {
		recommendations = append(recommendations, fmt.Sprintf("Highest final wealth: %s ends %s above %s",
			bestWealth.Name, bestWealth.FinalWealth.Sub(base.FinalWealth).StringFixed(0), base.Name))
	}

	lowestTax := base
	for i := range compSet.AlternativeResults {
		if compSet.AlternativeResults[i].LifetimeTaxes.LessThan(lowestTax.LifetimeTaxes) {
			lowestTax = &compSet.AlternativeResults[i]
		}
	}
	if lowestTax != base {
		recommendations = append(recommendations, fmt.Sprintf("Lowest taxes: %s pays %s less over the projection",
			lowestTax.Name, base.LifetimeTaxes.Sub(lowestTax.LifetimeTaxes).StringFixed(0)))
	}

	for _, alt := range compSet.AlternativeResults {
		if alt.DepletionYear != 0 && (base.DepletionYear == 0 || alt.DepletionYear < base.DepletionYear) {
			recommendations = append(recommendations, fmt.Sprintf("Warning: %s runs out of wealth in %d", alt.Name, alt.DepletionYear))
		}
	}
	return recommendations
}
