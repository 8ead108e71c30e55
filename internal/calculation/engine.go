package calculation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhandl/finance/internal/domain"
	"github.com/jhandl/finance/internal/rules"
	"github.com/shopspring/decimal"
)

// ErrRulesUnavailable marks a year skipped because the country's rules could not be resolved.
var ErrRulesUnavailable = errors.New("country rules unavailable")

// DefaultWithdrawalRate is the share of the pension pot paid out each retired year
var DefaultWithdrawalRate = decimal.NewFromFloat(0.04)

// ReturnSampler supplies the stochastic market for one run
type ReturnSampler interface {
	SampleReturn(assetClass string) decimal.Decimal
	AdjustForInflation(amount decimal.Decimal) decimal.Decimal
}

// SimulationState is the financial state carried from one year to the next.
// It is owned by a single run.
type SimulationState struct {
	Wealth           decimal.Decimal
	Investments      []domain.Investment
	PensionPot       decimal.Decimal
	Retired          bool
	Country          string
	PreviousIncome   decimal.Decimal
	PreviousExpenses decimal.Decimal
}

// NewSimulationState creates the starting state of a run
func NewSimulationState(profile *domain.Profile) SimulationState {
	return SimulationState{
		Wealth:           profile.InitialWealth,
		Investments:      cloneInvestments(profile.Investments),
		PensionPot:       profile.InitialPensionPot,
		Country:          profile.InitialCountry,
		PreviousIncome:   profile.InitialIncome,
		PreviousExpenses: profile.InitialExpenses,
	}
}

// CalculationEngine drives the year-by-year simulation
type CalculationEngine struct {
	Rules rules.Repository

	// WithdrawalRate is the share of the pension pot paid as income once retired.
	WithdrawalRate decimal.Decimal
	// DrawDownPension subtracts the paid pension income from the pot. Off by
	// default: the pot keeps growing while paying out.
	DrawDownPension bool

	Logger Logger
	Debug  bool

	now func() time.Time
}

// NewCalculationEngine creates a new calculation engine resolving rules from repo
func NewCalculationEngine(repo rules.Repository) *CalculationEngine {
	return &CalculationEngine{
		Rules:          repo,
		WithdrawalRate: DefaultWithdrawalRate,
		Logger:         NopLogger{},
		now:            time.Now,
	}
}

// SetLogger sets the engine logger; nil restores the no-op logger
func (ce *CalculationEngine) SetLogger(l Logger) {
	if l == nil {
		ce.Logger = NopLogger{}
		return
	}
	ce.Logger = l
}

// StartYear returns the first simulated year of a profile
func (ce *CalculationEngine) StartYear(profile *domain.Profile) int {
	if profile.StartYear != 0 {
		return profile.StartYear
	}
	return ce.now().Year()
}

// RunSimulation simulates every year from the profile's start year through its
// target year. Years whose country rules cannot be resolved are skipped and
// reported as warnings.
func (ce *CalculationEngine) RunSimulation(ctx context.Context, profile *domain.Profile, sampler ReturnSampler) (*domain.RunResult, error) {
	startYear := ce.StartYear(profile)
	if err := profile.Validate(startYear); err != nil {
		return nil, err
	}

	result := &domain.RunResult{
		ProfileName:     profile.Name,
		StartYear:       startYear,
		TargetYear:      profile.TargetYear,
		WithdrawalRate:  ce.WithdrawalRate,
		DrawDownPension: ce.DrawDownPension,
		Years:           make([]domain.YearResult, 0, profile.TargetYear-startYear+1),
	}

	run := &simulationRun{engine: ce, profile: profile, sampler: sampler, rules: map[string]*domain.CountryTaxRules{}}
	state := NewSimulationState(profile)

	for year := startYear; year <= profile.TargetYear; year++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		next, yr, err := run.step(ctx, state, year)
		if errors.Is(err, ErrRulesUnavailable) {
			ce.Logger.Warnf("skipping %d: %v", year, err)
			result.Warnings = append(result.Warnings, domain.Warning{Year: year, Message: err.Error()})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("year %d: %w", year, err)
		}

		result.Warnings = append(result.Warnings, run.warnings...)
		run.warnings = nil
		result.Years = append(result.Years, *yr)
		state = next

		if ce.Debug {
			ce.Logger.Debugf("%d %s: net income %s, expenses %s, wealth %s, pension pot %s",
				year, yr.Country, yr.NetIncome.StringFixed(2), yr.Expenses.StringFixed(2),
				yr.RemainingWealth.StringFixed(2), yr.PensionPot.StringFixed(2))
		}
	}

	result.FinalWealth = state.Wealth
	result.FinalPensionPot = state.PensionPot
	return result, nil
}

// StepYear advances state by one year. The input state is never modified;
// on ErrRulesUnavailable it is returned unchanged with a nil result.
func (ce *CalculationEngine) StepYear(ctx context.Context, profile *domain.Profile, state SimulationState, year int, sampler ReturnSampler) (SimulationState, *domain.YearResult, error) {
	run := &simulationRun{engine: ce, profile: profile, sampler: sampler, rules: map[string]*domain.CountryTaxRules{}}
	return run.step(ctx, state, year)
}

// simulationRun carries the per-run rule cache and pending warnings
type simulationRun struct {
	engine   *CalculationEngine
	profile  *domain.Profile
	sampler  ReturnSampler
	rules    map[string]*domain.CountryTaxRules
	warnings []domain.Warning
}

func (r *simulationRun) lookup(ctx context.Context, country string) (*domain.CountryTaxRules, error) {
	key := rules.Key(country)
	if cached, ok := r.rules[key]; ok {
		return cached, nil
	}
	if r.engine.Rules == nil {
		return nil, fmt.Errorf("%w: no rule repository configured", ErrRulesUnavailable)
	}
	countryRules, err := r.engine.Rules.Lookup(ctx, country)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRulesUnavailable, country, err)
	}
	r.rules[key] = countryRules
	return countryRules, nil
}

func (r *simulationRun) step(ctx context.Context, state SimulationState, year int) (SimulationState, *domain.YearResult, error) {
	one := decimal.NewFromInt(1)
	event, _ := r.profile.EventForYear(year)

	// Rules for this year's country must resolve before anything changes.
	country := state.Country
	if event.Kind() == domain.EventMove {
		country = event.MoveTo
	}
	countryRules, err := r.lookup(ctx, country)
	if err != nil {
		return state, nil, err
	}

	next := state
	next.Investments = cloneInvestments(state.Investments)
	next.Country = country

	income := state.PreviousIncome
	if event.Income != nil {
		income = *event.Income
	}
	expenses := r.sampler.AdjustForInflation(state.PreviousExpenses)
	if event.Expenses != nil {
		expenses = *event.Expenses
	}
	if event.Kind() == domain.EventRetire {
		next.Retired = true
	}

	gains := decimal.Zero
	for i := range next.Investments {
		inv := &next.Investments[i]
		inv.Gain = inv.Amount.Mul(r.sampler.SampleReturn(inv.AssetClass))
		gains = gains.Add(inv.Gain)
	}

	age := year - r.profile.BirthYear
	next.PensionPot = next.PensionPot.Mul(one.Add(r.sampler.SampleReturn(domain.AssetClassPension)))
	contribution, err := PensionContribution(income, countryRules.Pension, age)
	if err != nil {
		r.engine.Logger.Warnf("%d: %v, contributing nothing", year, err)
		r.warnings = append(r.warnings, domain.Warning{Year: year, Message: err.Error()})
		contribution = decimal.Zero
	}
	next.PensionPot = next.PensionPot.Add(contribution)

	pensionIncome := decimal.Zero
	if next.Retired {
		pensionIncome = next.PensionPot.Mul(r.engine.WithdrawalRate)
		if r.engine.DrawDownPension {
			next.PensionPot = next.PensionPot.Sub(pensionIncome)
		}
	}

	incomeTaxes := IncomeTaxes(income.Add(pensionIncome), countryRules)
	wealthTax := WealthTax(state.Wealth, countryRules.WealthTax)
	capitalGainsTax := CapitalGainsTax(next.Investments, countryRules.CapitalGains)

	totalTax := wealthTax.Add(capitalGainsTax)
	for _, t := range incomeTaxes {
		totalTax = totalTax.Add(t.Amount)
	}
	totalIncome := income.Add(pensionIncome).Add(gains)
	netIncome := totalIncome.Sub(totalTax)

	if netIncome.LessThan(expenses) {
		next.Wealth = next.Wealth.Sub(expenses.Sub(netIncome))
	} else {
		surplus := netIncome.Sub(expenses)
		next.Wealth = next.Wealth.Add(surplus)
		reinvestSurplus(next.Investments, surplus, next.Wealth)
	}

	next.PreviousIncome = income
	next.PreviousExpenses = expenses

	return next, &domain.YearResult{
		Year:                year,
		Age:                 age,
		Country:             countryRules.Country,
		Retired:             next.Retired,
		Income:              income,
		PensionIncome:       pensionIncome,
		InvestmentGains:     gains,
		PensionContribution: contribution,
		IncomeTaxes:         incomeTaxes,
		WealthTax:           wealthTax,
		CapitalGainsTax:     capitalGainsTax,
		TotalTax:            totalTax,
		NetIncome:           netIncome,
		Expenses:            expenses,
		RemainingWealth:     next.Wealth,
		PensionPot:          next.PensionPot,
	}, nil
}

// reinvestSurplus grows each position by surplus * amount / wealth, where
// wealth already includes the surplus. Nothing is distributed when wealth is zero.
func reinvestSurplus(investments []domain.Investment, surplus, wealth decimal.Decimal) {
	if wealth.IsZero() || surplus.IsZero() {
		return
	}
	for i := range investments {
		share := surplus.Mul(investments[i].Amount).Div(wealth)
		investments[i].Amount = investments[i].Amount.Add(share)
	}
}

func cloneInvestments(investments []domain.Investment) []domain.Investment {
	if investments == nil {
		return nil
	}
	out := make([]domain.Investment, len(investments))
	copy(out, investments)
	return out
}
