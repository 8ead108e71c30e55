package breakeven

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/jhandl/finance/internal/calculation"
	"github.com/jhandl/finance/internal/domain"
	"github.com/jhandl/finance/internal/rules"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nowhere has no taxes and no pension scheme
type nowhere struct{}

func (nowhere) Lookup(_ context.Context, country string) (*domain.CountryTaxRules, error) {
	if rules.Key(country) != "nowhere" {
		return nil, rules.ErrCountryNotFound
	}
	return &domain.CountryTaxRules{Country: "Nowhere"}, nil
}

func flatMarket(indexReturn float64) domain.MarketParameters {
	return domain.MarketParameters{
		"indexFunds":               {ExpectedReturn: decimal.NewFromFloat(indexReturn)},
		domain.AssetClassInflation: {},
	}
}

func tenYears() *domain.Profile {
	return &domain.Profile{
		Name:            "saver",
		BirthYear:       1970,
		StartYear:       2025,
		TargetYear:      2034,
		InitialWealth:   decimal.NewFromInt(100000),
		InitialExpenses: decimal.NewFromInt(5000),
		InitialCountry:  "Nowhere",
	}
}

func newSolver() *Solver {
	return NewDefaultSolver(calculation.NewCalculationEngine(nowhere{}))
}

func TestSustainableExpenses_Converges(t *testing.T) {
	profile := tenYears()
	result, err := newSolver().SustainableExpenses(context.Background(), Request{Profile: profile, Params: flatMarket(0), Seed: 1})
	require.NoError(t, err)

	assert.Equal(t, StatusConverged, result.Status)
	assert.Equal(t, "saver", result.ProfileName)
	assert.True(t, result.BaseExpenses.Equal(decimal.NewFromInt(5000)))
	// 100000 over ten flat years is 10000 a year
	assert.InDelta(t, 10000, result.SustainableExpenses.InexactFloat64(), 10)
	assert.LessOrEqual(t, result.SustainableExpenses.InexactFloat64(), 10000.0, "never reports a depleting level")
	assert.InDelta(t, 2, result.Multiplier.InexactFloat64(), 0.002)
	assert.True(t, result.FinalWealth.Equal(decimal.NewFromInt(50000)))
	assert.Zero(t, result.DepletionYear)
	assert.Greater(t, result.Iterations, 0)

	assert.True(t, profile.InitialExpenses.Equal(decimal.NewFromInt(5000)), "profile must not be modified")
}

func TestSustainableExpenses_ScalesEventExpenses(t *testing.T) {
	profile := tenYears()
	later := decimal.NewFromInt(15000)
	profile.Events = []domain.LifeEvent{{Year: 2030, Expenses: &later}}

	result, err := newSolver().SustainableExpenses(context.Background(), Request{Profile: profile, Params: flatMarket(0), Seed: 1})
	require.NoError(t, err)

	// 5 years at 5000m plus 5 years at 15000m must fit in 100000
	assert.InDelta(t, 1, result.Multiplier.InexactFloat64(), 0.002)
	assert.Equal(t, 0, result.DepletionYear)
	assert.True(t, profile.Events[0].Expenses.Equal(later), "event expenses must not be modified")
}

func TestSustainableExpenses_DepletedAtCurrentExpenses(t *testing.T) {
	profile := tenYears()
	profile.InitialExpenses = decimal.NewFromInt(20000)

	result, err := newSolver().SustainableExpenses(context.Background(), Request{Profile: profile, Params: flatMarket(0), Seed: 1})
	require.NoError(t, err)

	assert.Equal(t, 2030, result.DepletionYear)
	assert.InDelta(t, 10000, result.SustainableExpenses.InexactFloat64(), 10)
}

func TestSustainableExpenses_Unbounded(t *testing.T) {
	profile := tenYears()
	profile.InitialWealth = decimal.NewFromInt(10000000)

	result, err := newSolver().SustainableExpenses(context.Background(), Request{Profile: profile, Params: flatMarket(0), Seed: 1})
	require.NoError(t, err)

	assert.Equal(t, StatusUnbounded, result.Status)
	assert.True(t, result.SustainableExpenses.Equal(decimal.NewFromInt(50000)))
}

func TestSustainableExpenses_Infeasible(t *testing.T) {
	profile := tenYears()
	profile.InitialWealth = decimal.Zero
	profile.Investments = []domain.Investment{{AssetClass: "indexFunds", Amount: decimal.NewFromInt(100000)}}

	result, err := newSolver().SustainableExpenses(context.Background(), Request{Profile: profile, Params: flatMarket(-0.5), Seed: 1})
	require.NoError(t, err)

	assert.Equal(t, StatusInfeasible, result.Status)
	assert.True(t, result.SustainableExpenses.IsZero())
	assert.Equal(t, 2025, result.DepletionYear)
}

func TestSustainableExpenses_MaxIterations(t *testing.T) {
	solver := newSolver()
	solver.Options.MaxIterations = 2

	result, err := solver.SustainableExpenses(context.Background(), Request{Profile: tenYears(), Params: flatMarket(0), Seed: 1})
	require.NoError(t, err)
	assert.Equal(t, StatusMaxIter, result.Status)
	assert.Equal(t, 2, result.Iterations)
	// 10 -> 5 -> 2.5, still depleting, so the bracket stays [0, 2.5]
	assert.True(t, result.Multiplier.IsZero())
}

func TestSustainableExpenses_Errors(t *testing.T) {
	ctx := context.Background()

	noExpenses := tenYears()
	noExpenses.InitialExpenses = decimal.Zero
	_, err := newSolver().SustainableExpenses(ctx, Request{Profile: noExpenses, Params: flatMarket(0)})
	var beErr *BreakEvenError
	require.True(t, errors.As(err, &beErr))
	assert.Equal(t, "sustainable_expenses", beErr.Operation)

	invalid := tenYears()
	invalid.TargetYear = 2000
	_, err = newSolver().SustainableExpenses(ctx, Request{Profile: invalid, Params: flatMarket(0)})
	assert.ErrorIs(t, err, domain.ErrInvalidProfile)

	solver := newSolver()
	solver.Options.MaxMultiplier = decimal.Zero
	_, err = solver.SustainableExpenses(ctx, Request{Profile: tenYears(), Params: flatMarket(0)})
	assert.Error(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = newSolver().SustainableExpenses(cancelled, Request{Profile: tenYears(), Params: flatMarket(0)})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFormatters(t *testing.T) {
	result := &Result{
		ProfileName:         "saver",
		Seed:                4,
		Status:              StatusConverged,
		Iterations:          12,
		Multiplier:          decimal.NewFromFloat(1.25),
		BaseExpenses:        decimal.NewFromInt(40000),
		SustainableExpenses: decimal.NewFromInt(50000),
		DepletionYear:       2051,
	}

	out := (&TableFormatter{}).Format(result)
	assert.Contains(t, out, "SUSTAINABLE SPENDING")
	assert.Contains(t, out, "50,000.00")
	assert.Contains(t, out, "1.250x")
	assert.Contains(t, out, "runs out in 2051")

	result.DepletionYear = 0
	result.Status = StatusUnbounded
	out = (&TableFormatter{}).Format(result)
	assert.Contains(t, out, "above the search limit")
	assert.Contains(t, out, "final wealth is")

	data, err := (&JSONFormatter{}).Format(result)
	require.NoError(t, err)
	var decoded Result
	require.NoError(t, json.Unmarshal([]byte(data), &decoded))
	assert.Equal(t, StatusUnbounded, decoded.Status)
}
