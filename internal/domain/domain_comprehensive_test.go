package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const irelandRules = `
country: Ireland
currency: EUR
income_taxes:
  - name: incomeTax
    type: bracket
    brackets:
      - {rate: 0.20, lower: 0, upper: 42000}
      - {rate: 0.40, lower: 42000}
  - name: prsi
    type: flat
    rate: 0.04
    threshold: 18304
capital_gains:
  shares: 0.33
pension:
  type: age_banded
  annual_cap: 46000
  bands:
    - {max_age: 29, rate: 0.15}
    - {max_age: 39, rate: 0.20}
    - {rate: 0.40}
`

func TestParseCountryTaxRules(t *testing.T) {
	rules, err := ParseCountryTaxRules([]byte(irelandRules))
	require.NoError(t, err)

	assert.Equal(t, "Ireland", rules.Country)
	require.Len(t, rules.IncomeTaxes, 2)
	assert.Equal(t, "incomeTax", rules.IncomeTaxes[0].Name)

	brackets, ok := rules.IncomeTaxes[0].Rule.(BracketRule)
	require.True(t, ok, "income tax should decode as a bracket rule")
	require.Len(t, brackets.Brackets, 2)
	assert.True(t, brackets.Brackets[1].IsUnbounded())
	assert.True(t, brackets.Brackets[0].Upper.Equal(decimal.NewFromInt(42000)))

	flat, ok := rules.IncomeTaxes[1].Rule.(FlatRateRule)
	require.True(t, ok, "prsi should decode as a flat rule")
	assert.True(t, flat.Threshold.Equal(decimal.NewFromInt(18304)))

	assert.Nil(t, rules.WealthTax)
	assert.True(t, rules.CapitalGains.Rate("shares").Equal(decimal.NewFromFloat(0.33)))
	assert.True(t, rules.CapitalGains.Rate("crypto").IsZero())

	pension, ok := rules.Pension.(AgeBandedPension)
	require.True(t, ok)
	assert.Len(t, pension.Bands, 3)
	assert.Nil(t, pension.Bands[2].MaxAge)
	assert.True(t, pension.AnnualCap.Equal(decimal.NewFromInt(46000)))
}

func TestParseCountryTaxRules_UnknownPensionKind(t *testing.T) {
	doc := `
country: Atlantis
income_taxes: []
pension:
  type: defined_benefit
`
	rules, err := ParseCountryTaxRules([]byte(doc))
	require.NoError(t, err, "unknown pension kinds are preserved, not rejected")
	assert.Equal(t, UnknownPensionRule{Kind: "defined_benefit"}, rules.Pension)
}

func TestParseCountryTaxRules_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"missing country", "income_taxes: []", "country is required"},
		{"unknown rule type", "country: X\nincome_taxes:\n  - {name: a, type: progressive}", "unknown tax rule type"},
		{"bounded last bracket", "country: X\nincome_taxes:\n  - name: a\n    type: bracket\n    brackets:\n      - {rate: 0.1, lower: 0, upper: 10}", "last bracket must be unbounded"},
		{"flat without rate", "country: X\nincome_taxes:\n  - {name: a, type: flat}", "flat rule requires a rate"},
		{"unnamed component", "country: X\nincome_taxes:\n  - {type: flat, rate: 0.1}", "name is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCountryTaxRules([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCountryTaxRules_MarshalRoundTrip(t *testing.T) {
	rules, err := ParseCountryTaxRules([]byte(irelandRules))
	require.NoError(t, err)
	rules.WealthTax = FlatRateRule{Rate: decimal.NewFromFloat(0.012), Threshold: decimal.NewFromInt(50000)}

	data, err := yaml.Marshal(rules)
	require.NoError(t, err)

	decoded, err := ParseCountryTaxRules(data)
	require.NoError(t, err)
	assert.Equal(t, rules.Country, decoded.Country)
	require.Len(t, decoded.IncomeTaxes, len(rules.IncomeTaxes))

	wealth, ok := decoded.WealthTax.(FlatRateRule)
	require.True(t, ok)
	assert.True(t, wealth.Threshold.Equal(decimal.NewFromInt(50000)))
}

func TestLifeEvent_Kind(t *testing.T) {
	assert.Equal(t, EventRetire, LifeEvent{Year: 2040, Retire: true}.Kind())
	assert.Equal(t, EventMove, LifeEvent{Year: 2030, MoveTo: "Ireland"}.Kind())
	assert.Equal(t, EventNone, LifeEvent{Year: 2030}.Kind())
	assert.Equal(t, "move", EventMove.String())
}

func TestProfile_EventForYear(t *testing.T) {
	p := &Profile{Events: []LifeEvent{{Year: 2030, MoveTo: "Ireland"}, {Year: 2040, Retire: true}}}

	event, ok := p.EventForYear(2040)
	assert.True(t, ok)
	assert.True(t, event.Retire)

	_, ok = p.EventForYear(2035)
	assert.False(t, ok)
}

func TestProfile_Validate(t *testing.T) {
	valid := func() *Profile {
		return &Profile{
			BirthYear:      1985,
			TargetYear:     2030,
			InitialCountry: "Germany",
			InitialWealth:  decimal.NewFromInt(1000),
			Investments:    []Investment{{AssetClass: "indexFunds", Amount: decimal.NewFromInt(100)}},
		}
	}

	require.NoError(t, valid().Validate(2025))
	require.NoError(t, valid().Validate(2030), "a single-year run is valid")

	tests := []struct {
		name   string
		mutate func(p *Profile)
	}{
		{"missing birth year", func(p *Profile) { p.BirthYear = 0 }},
		{"target before start", func(p *Profile) { p.TargetYear = 2020 }},
		{"missing country", func(p *Profile) { p.InitialCountry = "" }},
		{"negative wealth", func(p *Profile) { p.InitialWealth = decimal.NewFromInt(-1) }},
		{"negative investment", func(p *Profile) { p.Investments[0].Amount = decimal.NewFromInt(-5) }},
		{"unnamed investment", func(p *Profile) { p.Investments[0].AssetClass = "" }},
		{"two events in one year", func(p *Profile) {
			p.Events = []LifeEvent{{Year: 2026, Retire: true}, {Year: 2026, MoveTo: "Spain"}}
		}},
		{"retire and move", func(p *Profile) { p.Events = []LifeEvent{{Year: 2026, Retire: true, MoveTo: "Spain"}} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid()
			tt.mutate(p)
			err := p.Validate(2025)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidProfile))
		})
	}
}

func TestRunResult_SkippedYears(t *testing.T) {
	r := &RunResult{StartYear: 2025, TargetYear: 2029, Years: make([]YearResult, 3)}
	assert.Equal(t, 2, r.SkippedYears())
}

func TestYearResult_IncomeTaxes(t *testing.T) {
	yr := YearResult{IncomeTaxes: []TaxAmount{
		{Name: "incomeTax", Amount: decimal.NewFromInt(1000)},
		{Name: "solidarity", Amount: decimal.NewFromInt(55)},
	}}
	assert.True(t, yr.TotalIncomeTax().Equal(decimal.NewFromInt(1055)))
	assert.True(t, yr.IncomeTax("solidarity").Equal(decimal.NewFromInt(55)))
	assert.True(t, yr.IncomeTax("church").IsZero())
}
