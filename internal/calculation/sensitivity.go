package calculation

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/jhandl/finance/internal/domain"
	"github.com/jhandl/finance/internal/market"
	"github.com/shopspring/decimal"
)

// SensitivityAnalyzer sweeps one parameter while replaying the same market
// draws, so differences between points come from the parameter alone.
type SensitivityAnalyzer struct {
	engine *CalculationEngine
	params domain.MarketParameters
	seed   int64
}

// NewSensitivityAnalyzer creates an analyzer running engine over params with a fixed seed
func NewSensitivityAnalyzer(engine *CalculationEngine, params domain.MarketParameters, seed int64) *SensitivityAnalyzer {
	return &SensitivityAnalyzer{engine: engine, params: params, seed: seed}
}

// DefaultSensitivityParameter returns a sweep centred on the current setting of name
func (sa *SensitivityAnalyzer) DefaultSensitivityParameter(name string) (domain.SensitivityParameter, error) {
	switch name {
	case domain.SensitivityWithdrawalRate:
		base := sa.engine.WithdrawalRate
		return domain.SensitivityParameter{
			Name:      name,
			MinValue:  decimal.Max(decimal.Zero, base.Sub(decimal.NewFromFloat(0.02))),
			MaxValue:  base.Add(decimal.NewFromFloat(0.02)),
			Steps:     5,
			BaseValue: base,
		}, nil
	case domain.SensitivityReturnShift:
		return domain.SensitivityParameter{
			Name:      name,
			MinValue:  decimal.NewFromFloat(-0.02),
			MaxValue:  decimal.NewFromFloat(0.02),
			Steps:     5,
			BaseValue: decimal.Zero,
		}, nil
	case domain.SensitivityInflation:
		base := sa.params[domain.AssetClassInflation].ExpectedReturn
		return domain.SensitivityParameter{
			Name:      name,
			MinValue:  base.Sub(decimal.NewFromFloat(0.01)),
			MaxValue:  base.Add(decimal.NewFromFloat(0.02)),
			Steps:     4,
			BaseValue: base,
		}, nil
	}
	return domain.SensitivityParameter{}, fmt.Errorf("unknown sensitivity parameter %q", name)
}

// AnalyzeSingleParameter runs one simulation per parameter value plus one at the base value
func (sa *SensitivityAnalyzer) AnalyzeSingleParameter(ctx context.Context, profile *domain.Profile, parameter domain.SensitivityParameter) (*domain.SensitivityAnalysis, error) {
	if parameter.Steps <= 0 {
		return nil, fmt.Errorf("steps must be positive, got %d", parameter.Steps)
	}
	if parameter.MaxValue.LessThan(parameter.MinValue) {
		return nil, fmt.Errorf("max value %s is below min value %s", parameter.MaxValue, parameter.MinValue)
	}

	base, err := sa.runPoint(ctx, profile, parameter.Name, parameter.BaseValue)
	if err != nil {
		return nil, err
	}

	values := sa.generateParameterValues(parameter)
	points := make([]domain.SensitivityPoint, 0, len(values))
	low, high := base.FinalWealth, base.FinalWealth
	for _, value := range values {
		point, err := sa.runPoint(ctx, profile, parameter.Name, value)
		if err != nil {
			return nil, err
		}
		point.WealthChange = point.FinalWealth.Sub(base.FinalWealth)
		points = append(points, point)
		low = decimal.Min(low, point.FinalWealth)
		high = decimal.Max(high, point.FinalWealth)
	}

	return &domain.SensitivityAnalysis{
		ProfileName: profile.Name,
		Seed:        sa.seed,
		Parameter:   parameter,
		Base:        base,
		Points:      points,
		WealthRange: high.Sub(low),
	}, nil
}

func (sa *SensitivityAnalyzer) runPoint(ctx context.Context, profile *domain.Profile, name string, value decimal.Decimal) (domain.SensitivityPoint, error) {
	engine, params, err := sa.modifyParameter(name, value)
	if err != nil {
		return domain.SensitivityPoint{}, err
	}
	model := market.New(params, rand.New(rand.NewSource(sa.seed)))
	run, err := engine.RunSimulation(ctx, profile, model)
	if err != nil {
		return domain.SensitivityPoint{}, fmt.Errorf("%s=%s: %w", name, value, err)
	}
	return domain.SensitivityPoint{
		Value:           value,
		FinalWealth:     run.FinalWealth,
		FinalPensionPot: run.FinalPensionPot,
		SkippedYears:    run.SkippedYears(),
	}, nil
}

// generateParameterValues spaces Steps values evenly from MinValue to MaxValue
func (sa *SensitivityAnalyzer) generateParameterValues(param domain.SensitivityParameter) []decimal.Decimal {
	if param.Steps <= 1 {
		return []decimal.Decimal{param.MinValue}
	}

	stepSize := param.MaxValue.Sub(param.MinValue).Div(decimal.NewFromInt(int64(param.Steps - 1)))
	values := make([]decimal.Decimal, 0, param.Steps)
	for i := 0; i < param.Steps; i++ {
		values = append(values, param.MinValue.Add(stepSize.Mul(decimal.NewFromInt(int64(i)))))
	}
	return values
}

// modifyParameter returns a copy of the engine and market parameters with
// one parameter set. The originals are never changed.
func (sa *SensitivityAnalyzer) modifyParameter(name string, value decimal.Decimal) (*CalculationEngine, domain.MarketParameters, error) {
	engine := *sa.engine
	params := make(domain.MarketParameters, len(sa.params))
	for k, v := range sa.params {
		params[k] = v
	}

	switch name {
	case domain.SensitivityWithdrawalRate:
		if value.IsNegative() || value.GreaterThan(decimal.NewFromInt(1)) {
			return nil, nil, fmt.Errorf("withdrawal rate %s must be between 0 and 1", value)
		}
		engine.WithdrawalRate = value
	case domain.SensitivityReturnShift:
		for k, v := range params {
			if k == domain.AssetClassInflation {
				continue
			}
			v.ExpectedReturn = v.ExpectedReturn.Add(value)
			params[k] = v
		}
	case domain.SensitivityInflation:
		inflation := params[domain.AssetClassInflation]
		inflation.ExpectedReturn = value
		params[domain.AssetClassInflation] = inflation
	default:
		return nil, nil, fmt.Errorf("unknown sensitivity parameter %q", name)
	}
	return &engine, params, nil
}
