package breakeven

import (
	"github.com/jhandl/finance/internal/domain"
	"github.com/shopspring/decimal"
)

// SolverOptions configures the sustainable spending search
type SolverOptions struct {
	// Tolerance is the acceptable error on the sustainable initial expenses.
	Tolerance     decimal.Decimal
	MaxIterations int
	// MaxMultiplier caps the search at this multiple of the profile's expenses.
	MaxMultiplier decimal.Decimal
}

// DefaultSolverOptions returns default solver configuration
func DefaultSolverOptions() SolverOptions {
	return SolverOptions{
		Tolerance:     decimal.NewFromInt(10),
		MaxIterations: 60,
		MaxMultiplier: decimal.NewFromInt(10),
	}
}

// Request asks for the highest spending a profile can sustain under one
// sampled market
type Request struct {
	Profile *domain.Profile
	Params  domain.MarketParameters
	Seed    int64
}

// Status describes how the search ended
type Status string

const (
	StatusConverged  Status = "converged"
	StatusUnbounded  Status = "unbounded"  // wealth survives even MaxMultiplier times the expenses
	StatusInfeasible Status = "infeasible" // wealth runs out even with no expenses
	StatusMaxIter    Status = "max_iterations"
)

// Result is the outcome of a sustainable spending search. Every expense in
// the profile, including life event overrides, is scaled by Multiplier.
type Result struct {
	ProfileName         string          `json:"profileName"`
	Seed                int64           `json:"seed"`
	Status              Status          `json:"status"`
	Iterations          int             `json:"iterations"`
	Multiplier          decimal.Decimal `json:"multiplier"`
	BaseExpenses        decimal.Decimal `json:"baseExpenses"`
	SustainableExpenses decimal.Decimal `json:"sustainableExpenses"`
	// FinalWealth and DepletionYear describe the run at the original expenses.
	FinalWealth   decimal.Decimal `json:"finalWealth"`
	DepletionYear int             `json:"depletionYear,omitempty"`
}

// BreakEvenError reports a failed search step
type BreakEvenError struct {
	Operation string
	Message   string
	Cause     error
}

func (e *BreakEvenError) Error() string {
	if e.Cause != nil {
		return e.Operation + ": " + e.Message + ": " + e.Cause.Error()
	}
	return e.Operation + ": " + e.Message
}

func (e *BreakEvenError) Unwrap() error {
	return e.Cause
}
