package breakeven

import (
	"context"
	"math/rand"

	"github.com/jhandl/finance/internal/calculation"
	"github.com/jhandl/finance/internal/domain"
	"github.com/jhandl/finance/internal/market"
	"github.com/shopspring/decimal"
)

// Solver searches for the highest expenses a profile can sustain
type Solver struct {
	CalcEngine *calculation.CalculationEngine
	Options    SolverOptions
}

// NewSolver creates a new break-even solver
func NewSolver(calcEngine *calculation.CalculationEngine, options SolverOptions) *Solver {
	return &Solver{
		CalcEngine: calcEngine,
		Options:    options,
	}
}

// NewDefaultSolver creates a solver with default options
func NewDefaultSolver(calcEngine *calculation.CalculationEngine) *Solver {
	return NewSolver(calcEngine, DefaultSolverOptions())
}

// SustainableExpenses bisects an expense multiplier until wealth just stays
// non-negative through the target year. Every trial replays the same market
// draws.
func (s *Solver) SustainableExpenses(ctx context.Context, req Request) (*Result, error) {
	base := expenseScale(req.Profile)
	if !base.IsPositive() {
		return nil, &BreakEvenError{Operation: "sustainable_expenses", Message: "profile has no expenses to scale"}
	}
	if !s.Options.MaxMultiplier.IsPositive() || s.Options.MaxIterations <= 0 {
		return nil, &BreakEvenError{Operation: "sustainable_expenses", Message: "max multiplier and max iterations must be positive"}
	}

	original, err := s.run(ctx, req, decimal.NewFromInt(1))
	if err != nil {
		return nil, err
	}
	result := &Result{
		ProfileName:   req.Profile.Name,
		Seed:          req.Seed,
		BaseExpenses:  req.Profile.InitialExpenses,
		FinalWealth:   original.FinalWealth,
		DepletionYear: depletionYear(original),
	}

	low, high := decimal.Zero, s.Options.MaxMultiplier
	if run, err := s.run(ctx, req, low); err != nil {
		return nil, err
	} else if depletionYear(run) != 0 {
		result.Status = StatusInfeasible
		result.Multiplier = decimal.Zero
		result.SustainableExpenses = decimal.Zero
		return result, nil
	}
	if run, err := s.run(ctx, req, high); err != nil {
		return nil, err
	} else if depletionYear(run) == 0 {
		result.Status = StatusUnbounded
		result.Multiplier = high
		result.SustainableExpenses = req.Profile.InitialExpenses.Mul(high)
		return result, nil
	}

	two := decimal.NewFromInt(2)
	result.Status = StatusMaxIter
	for result.Iterations < s.Options.MaxIterations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result.Iterations++

		mid := low.Add(high).Div(two)
		run, err := s.run(ctx, req, mid)
		if err != nil {
			return nil, err
		}
		if depletionYear(run) == 0 {
			low = mid
		} else {
			high = mid
		}
		if high.Sub(low).Mul(base).LessThan(s.Options.Tolerance) {
			result.Status = StatusConverged
			break
		}
	}

	result.Multiplier = low
	result.SustainableExpenses = req.Profile.InitialExpenses.Mul(low)
	return result, nil
}

func (s *Solver) run(ctx context.Context, req Request, multiplier decimal.Decimal) (*domain.RunResult, error) {
	model := market.New(req.Params, rand.New(rand.NewSource(req.Seed)))
	run, err := s.CalcEngine.RunSimulation(ctx, scaleExpenses(req.Profile, multiplier), model)
	if err != nil {
		return nil, &BreakEvenError{
			Operation: "sustainable_expenses",
			Message:   "failed to simulate at multiplier " + multiplier.StringFixed(4),
			Cause:     err,
		}
	}
	return run, nil
}

// scaleExpenses copies profile with every expense multiplied by m
func scaleExpenses(profile *domain.Profile, m decimal.Decimal) *domain.Profile {
	scaled := *profile
	scaled.InitialExpenses = profile.InitialExpenses.Mul(m)
	scaled.Events = make([]domain.LifeEvent, len(profile.Events))
	for i, event := range profile.Events {
		if event.Expenses != nil {
			e := event.Expenses.Mul(m)
			event.Expenses = &e
		}
		scaled.Events[i] = event
	}
	return &scaled
}

// expenseScale is the amount one unit of multiplier moves; the initial
// expenses unless they are zero, then the largest event override
func expenseScale(profile *domain.Profile) decimal.Decimal {
	if profile.InitialExpenses.IsPositive() {
		return profile.InitialExpenses
	}
	scale := decimal.Zero
	for _, event := range profile.Events {
		if event.Expenses != nil {
			scale = decimal.Max(scale, *event.Expenses)
		}
	}
	return scale
}

func depletionYear(run *domain.RunResult) int {
	for _, yr := range run.Years {
		if yr.RemainingWealth.IsNegative() {
			return yr.Year
		}
	}
	return 0
}
