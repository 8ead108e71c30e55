// Package market samples stochastic nominal returns per asset class.
package market

import (
	"github.com/jhandl/finance/internal/domain"
	"github.com/shopspring/decimal"
)

// Source provides uniform random values in [0, 1). *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// Model draws one independent nominal return per call. A Model owns its
// Source and must not be shared between concurrent runs; the parameters
// it reads are never modified.
type Model struct {
	params domain.MarketParameters
	src    Source
}

// New creates a market model sampling from src
func New(params domain.MarketParameters, src Source) *Model {
	return &Model{params: params, src: src}
}

// SampleReturn returns expectedReturn + volatility * u, u uniform in [-1, 1].
// Unknown asset classes have zero expected return and zero volatility.
func (m *Model) SampleReturn(assetClass string) decimal.Decimal {
	p, ok := m.params[assetClass]
	if !ok {
		return decimal.Zero
	}
	if p.Volatility.IsZero() {
		return p.ExpectedReturn
	}
	u := decimal.NewFromFloat(m.src.Float64()*2 - 1)
	return p.ExpectedReturn.Add(p.Volatility.Mul(u))
}

// AdjustForInflation scales amount by one sampled inflation rate
func (m *Model) AdjustForInflation(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(decimal.NewFromInt(1).Add(m.SampleReturn(domain.AssetClassInflation)))
}

// DefaultParameters returns long-run return assumptions used when no market file is supplied
func DefaultParameters() domain.MarketParameters {
	return domain.MarketParameters{
		"indexFunds":               {ExpectedReturn: decimal.NewFromFloat(0.07), Volatility: decimal.NewFromFloat(0.15)},
		"shares":                   {ExpectedReturn: decimal.NewFromFloat(0.08), Volatility: decimal.NewFromFloat(0.20)},
		"bonds":                    {ExpectedReturn: decimal.NewFromFloat(0.03), Volatility: decimal.NewFromFloat(0.05)},
		"cash":                     {ExpectedReturn: decimal.NewFromFloat(0.01), Volatility: decimal.Zero},
		domain.AssetClassPension:   {ExpectedReturn: decimal.NewFromFloat(0.06), Volatility: decimal.NewFromFloat(0.10)},
		domain.AssetClassInflation: {ExpectedReturn: decimal.NewFromFloat(0.02), Volatility: decimal.NewFromFloat(0.01)},
	}
}
