package calculation

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sort"

	"github.com/jhandl/finance/internal/domain"
	"github.com/jhandl/finance/internal/market"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// MonteCarloConfig holds configuration for a batch of independent simulations
type MonteCarloConfig struct {
	NumSimulations int
	Seed           int64
	// Concurrency bounds parallel runs; zero uses GOMAXPROCS.
	Concurrency int
}

// MonteCarloSimulation is the outcome of one run in a batch
type MonteCarloSimulation struct {
	SimulationID    int             `json:"simulationId"`
	Seed            int64           `json:"seed"`
	FinalWealth     decimal.Decimal `json:"finalWealth"`
	FinalPensionPot decimal.Decimal `json:"finalPensionPot"`
	YearsSimulated  int             `json:"yearsSimulated"`
	Success         bool            `json:"success"`
	FailureYear     int             `json:"failureYear,omitempty"`
}

// MonteCarloResult summarizes a batch of simulations
type MonteCarloResult struct {
	ProfileName     string                     `json:"profileName"`
	NumSimulations  int                        `json:"numSimulations"`
	SuccessRate     decimal.Decimal            `json:"successRate"`
	MeanFinalWealth decimal.Decimal            `json:"meanFinalWealth"`
	FinalWealth     map[string]decimal.Decimal `json:"finalWealth"` // 10th, 25th, 50th, 75th, 90th percentiles
	Simulations     []MonteCarloSimulation     `json:"simulations"`
}

// RunMonteCarlo runs cfg.NumSimulations independent simulations of profile.
// Each run owns its PRNG and state; the rule repository and market
// parameters are shared read-only. A run succeeds when wealth never drops
// below zero.
func (ce *CalculationEngine) RunMonteCarlo(ctx context.Context, profile *domain.Profile, params domain.MarketParameters, cfg MonteCarloConfig) (*MonteCarloResult, error) {
	if cfg.NumSimulations <= 0 {
		return nil, fmt.Errorf("number of simulations must be positive, got %d", cfg.NumSimulations)
	}
	if err := profile.Validate(ce.StartYear(profile)); err != nil {
		return nil, err
	}
	limit := cfg.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	simulations := make([]MonteCarloSimulation, cfg.NumSimulations)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i := 0; i < cfg.NumSimulations; i++ {
		simID := i
		g.Go(func() error {
			seed := cfg.Seed + int64(simID)
			model := market.New(params, rand.New(rand.NewSource(seed)))

			run, err := ce.RunSimulation(gctx, profile, model)
			if err != nil {
				return fmt.Errorf("simulation %d: %w", simID, err)
			}

			sim := MonteCarloSimulation{
				SimulationID:    simID,
				Seed:            seed,
				FinalWealth:     run.FinalWealth,
				FinalPensionPot: run.FinalPensionPot,
				YearsSimulated:  len(run.Years),
				Success:         true,
			}
			for _, yr := range run.Years {
				if yr.RemainingWealth.IsNegative() {
					sim.Success = false
					sim.FailureYear = yr.Year
					break
				}
			}
			simulations[simID] = sim
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return calculateMonteCarloSummary(profile.Name, simulations), nil
}

func calculateMonteCarloSummary(profileName string, simulations []MonteCarloSimulation) *MonteCarloResult {
	successCount := 0
	finalWealth := make([]decimal.Decimal, 0, len(simulations))
	total := decimal.Zero
	for _, sim := range simulations {
		if sim.Success {
			successCount++
		}
		finalWealth = append(finalWealth, sim.FinalWealth)
		total = total.Add(sim.FinalWealth)
	}

	n := decimal.NewFromInt(int64(len(simulations)))
	return &MonteCarloResult{
		ProfileName:     profileName,
		NumSimulations:  len(simulations),
		SuccessRate:     decimal.NewFromInt(int64(successCount)).Div(n),
		MeanFinalWealth: total.Div(n),
		FinalWealth:     calculatePercentiles(finalWealth),
		Simulations:     simulations,
	}
}

func calculatePercentiles(values []decimal.Decimal) map[string]decimal.Decimal {
	if len(values) == 0 {
		return map[string]decimal.Decimal{
			"10th": decimal.Zero, "25th": decimal.Zero, "50th": decimal.Zero,
			"75th": decimal.Zero, "90th": decimal.Zero,
		}
	}

	sorted := append([]decimal.Decimal(nil), values...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })

	return map[string]decimal.Decimal{
		"10th": getPercentile(sorted, 0.1),
		"25th": getPercentile(sorted, 0.25),
		"50th": getPercentile(sorted, 0.5),
		"75th": getPercentile(sorted, 0.75),
		"90th": getPercentile(sorted, 0.9),
	}
}

func getPercentile(values []decimal.Decimal, percentile float64) decimal.Decimal {
	index := percentile * float64(len(values)-1)
	if index == float64(int(index)) {
		return values[int(index)]
	}

	lower := values[int(index)]
	upper := values[int(index)+1]
	fraction := decimal.NewFromFloat(index - float64(int(index)))

	return lower.Add(upper.Sub(lower).Mul(fraction))
}
