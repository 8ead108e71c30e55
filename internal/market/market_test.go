package market

import (
	"math/rand"
	"testing"

	"github.com/jhandl/finance/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// fixedSource always returns the same uniform value
type fixedSource float64

func (f fixedSource) Float64() float64 { return float64(f) }

func TestModel_SampleReturn(t *testing.T) {
	params := domain.MarketParameters{
		"shares": {ExpectedReturn: decimal.NewFromFloat(0.08), Volatility: decimal.NewFromFloat(0.20)},
	}

	tests := []struct {
		name     string
		u        float64
		expected decimal.Decimal
	}{
		{"lower edge", 0, decimal.NewFromFloat(-0.12)},
		{"midpoint", 0.5, decimal.NewFromFloat(0.08)},
		{"upper quarter", 0.75, decimal.NewFromFloat(0.18)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(params, fixedSource(tt.u))
			got := m.SampleReturn("shares")
			assert.True(t, got.Equal(tt.expected), "SampleReturn() = %v, expected %v", got, tt.expected)
		})
	}
}

func TestModel_SampleReturn_UnknownClass(t *testing.T) {
	m := New(DefaultParameters(), fixedSource(0.9))
	assert.True(t, m.SampleReturn("tulips").IsZero())
}

func TestModel_SampleReturn_StaysWithinVolatilityBand(t *testing.T) {
	params := DefaultParameters()
	m := New(params, rand.New(rand.NewSource(42)))

	p := params["indexFunds"]
	low := p.ExpectedReturn.Sub(p.Volatility)
	high := p.ExpectedReturn.Add(p.Volatility)

	distinct := map[string]bool{}
	for i := 0; i < 200; i++ {
		r := m.SampleReturn("indexFunds")
		assert.True(t, r.GreaterThanOrEqual(low) && r.LessThanOrEqual(high), "return %v outside [%v, %v]", r, low, high)
		distinct[r.String()] = true
	}
	assert.Greater(t, len(distinct), 1, "independent draws should vary")
}

func TestModel_AdjustForInflation(t *testing.T) {
	params := domain.MarketParameters{
		domain.AssetClassInflation: {ExpectedReturn: decimal.NewFromFloat(0.02), Volatility: decimal.Zero},
	}
	m := New(params, fixedSource(0.3))

	got := m.AdjustForInflation(decimal.NewFromInt(30000))
	assert.True(t, got.Equal(decimal.NewFromInt(30600)), "got %v", got)
}

func TestModel_ZeroMarketIsDeterministic(t *testing.T) {
	m := New(domain.MarketParameters{
		domain.AssetClassPension:   {},
		domain.AssetClassInflation: {},
	}, rand.New(rand.NewSource(1)))

	assert.True(t, m.SampleReturn(domain.AssetClassPension).IsZero())
	assert.True(t, m.AdjustForInflation(decimal.NewFromInt(500)).Equal(decimal.NewFromInt(500)))
}

func TestNewSeed(t *testing.T) {
	a, err := NewSeed()
	assert.NoError(t, err)
	b, err := NewSeed()
	assert.NoError(t, err)
	assert.NotEqual(t, a, b)
}
