package calculation

import (
	"fmt"

	"github.com/jhandl/finance/internal/domain"
	"github.com/shopspring/decimal"
)

// TAX CALCULATION ASSUMPTIONS:
//
// 1. Every income component is computed independently on the same base and
//    summed. Component order only matters for reporting.
//
// 2. Bracket bounds are used exactly as configured. A table whose next lower
//    bound is previous upper + 1 leaves that unit untaxed, as in the source
//    schedules.
//
// 3. Capital gains are taxed on the annual mark-to-market gain of every
//    position. No loss offsetting or carryforward: a negative gain reduces tax.
//
// 4. Brackets and thresholds are not indexed for inflation.

// IncomeTaxes computes the amount owed for each income component of a country
func IncomeTaxes(totalTaxableIncome decimal.Decimal, rules *domain.CountryTaxRules) []domain.TaxAmount {
	amounts := make([]domain.TaxAmount, 0, len(rules.IncomeTaxes))
	for _, component := range rules.IncomeTaxes {
		amounts = append(amounts, domain.TaxAmount{
			Name:   component.Name,
			Amount: ruleAmount(totalTaxableIncome, component.Rule),
		})
	}
	return amounts
}

// WealthTax computes the wealth tax owed, zero when the country has no wealth tax
func WealthTax(wealth decimal.Decimal, rule domain.TaxRule) decimal.Decimal {
	if rule == nil {
		return decimal.Zero
	}
	return ruleAmount(wealth, rule)
}

// CapitalGainsTax sums gain * rate over all positions
func CapitalGainsTax(investments []domain.Investment, rates domain.CapitalGainsRates) decimal.Decimal {
	total := decimal.Zero
	for _, inv := range investments {
		total = total.Add(inv.Gain.Mul(rates.Rate(inv.AssetClass)))
	}
	return total
}

// PensionContribution computes the yearly contribution into the pension pot.
// A nil rule means the country has no pension scheme.
func PensionContribution(income decimal.Decimal, rule domain.PensionRule, age int) (decimal.Decimal, error) {
	switch r := rule.(type) {
	case nil:
		return decimal.Zero, nil
	case domain.FixedRatePension:
		return income.Mul(r.EmployeeRate.Add(r.EmployerRate)), nil
	case domain.AgeBandedPension:
		rate := decimal.Zero
		for _, band := range r.Bands {
			if band.MaxAge == nil || age <= *band.MaxAge {
				rate = band.Rate
				break
			}
		}
		return decimal.Min(income.Mul(rate), r.AnnualCap), nil
	case domain.UnknownPensionRule:
		return decimal.Zero, fmt.Errorf("%w: %q", domain.ErrUnknownPensionRuleKind, r.Kind)
	default:
		return decimal.Zero, fmt.Errorf("%w: %T", domain.ErrUnknownPensionRuleKind, rule)
	}
}

func ruleAmount(base decimal.Decimal, rule domain.TaxRule) decimal.Decimal {
	switch r := rule.(type) {
	case domain.FlatRateRule:
		return flatAmount(base, r)
	case domain.BracketRule:
		return bracketAmount(base, r.Brackets)
	}
	return decimal.Zero
}

func flatAmount(base decimal.Decimal, rule domain.FlatRateRule) decimal.Decimal {
	if base.LessThanOrEqual(rule.Threshold) {
		return decimal.Zero
	}
	return base.Sub(rule.Threshold).Mul(rule.Rate)
}

func bracketAmount(base decimal.Decimal, brackets []domain.Bracket) decimal.Decimal {
	if base.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	var total decimal.Decimal
	for _, bracket := range brackets {
		if base.LessThanOrEqual(bracket.Lower) {
			break
		}
		top := base
		if !bracket.IsUnbounded() {
			top = decimal.Min(base, *bracket.Upper)
		}
		incomeInBracket := top.Sub(bracket.Lower)
		if incomeInBracket.GreaterThan(decimal.Zero) {
			total = total.Add(incomeInBracket.Mul(bracket.Rate))
		}
		if !bracket.IsUnbounded() && base.LessThanOrEqual(*bracket.Upper) {
			break
		}
	}

	return total
}
