package compare

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/jhandl/finance/internal/calculation"
	"github.com/jhandl/finance/internal/domain"
	"github.com/jhandl/finance/internal/market"
)

// CompareEngine runs and compares profiles
type CompareEngine struct {
	CalcEngine        *calculation.CalculationEngine
	MetricsCalculator *MetricsCalculator
}

// NewCompareEngine creates a new comparison engine
func NewCompareEngine(calcEngine *calculation.CalculationEngine) *CompareEngine {
	return &CompareEngine{
		CalcEngine:        calcEngine,
		MetricsCalculator: NewMetricsCalculator(),
	}
}

// CompareProfiles simulates every profile against the same market draws and
// compares the alternatives with base
func (ce *CompareEngine) CompareProfiles(
	ctx context.Context,
	base *domain.Profile,
	alternatives []*domain.Profile,
	params domain.MarketParameters,
	seed int64,
) (*ComparisonSet, error) {
	run := func(p *domain.Profile) (*domain.RunResult, error) {
		return ce.CalcEngine.RunSimulation(ctx, p, market.New(params, rand.New(rand.NewSource(seed))))
	}

	baseRun, err := run(base)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate base profile %s: %w", base.Name, err)
	}
	altRuns := make([]*domain.RunResult, 0, len(alternatives))
	for _, alt := range alternatives {
		altRun, err := run(alt)
		if err != nil {
			return nil, fmt.Errorf("failed to calculate profile %s: %w", alt.Name, err)
		}
		altRuns = append(altRuns, altRun)
	}

	compSet := ce.CompareRuns(baseRun, altRuns...)
	compSet.Seed = seed
	return compSet, nil
}

// CompareRuns compares already completed runs
func (ce *CompareEngine) CompareRuns(base *domain.RunResult, alternatives ...*domain.RunResult) *ComparisonSet {
	baseResult := ce.MetricsCalculator.CalculateMetrics(base)

	results := make([]ComparisonResult, 0, len(alternatives))
	for _, alt := range alternatives {
		altResult := ce.MetricsCalculator.CalculateMetrics(alt)
		results = append(results, ce.MetricsCalculator.CalculateComparison(altResult, baseResult))
	}

	compSet := &ComparisonSet{
		BaseName:           base.ProfileName,
		BaseResult:         &baseResult,
		AlternativeResults: results,
	}
	compSet.Recommendations = GenerateRecommendations(compSet)
	return compSet
}
