package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidProfile is returned when a profile cannot be simulated.
var ErrInvalidProfile = errors.New("invalid profile")

// Pseudo asset classes sampled by the market model
const (
	AssetClassPension   = "pension"
	AssetClassInflation = "inflation"
)

// Investment is one held position. Gain is overwritten every simulated year.
type Investment struct {
	AssetClass string          `yaml:"asset_class" json:"assetClass"`
	Amount     decimal.Decimal `yaml:"amount" json:"amount"`
	Gain       decimal.Decimal `yaml:"-" json:"gain"`
}

// EventKind identifies the side effect of a life event
type EventKind int

const (
	EventNone EventKind = iota
	EventRetire
	EventMove
)

func (k EventKind) String() string {
	switch k {
	case EventRetire:
		return "retire"
	case EventMove:
		return "move"
	default:
		return "none"
	}
}

// LifeEvent is a scheduled change to income, expenses, country or retirement status
type LifeEvent struct {
	Year     int              `yaml:"year" json:"year"`
	Income   *decimal.Decimal `yaml:"income,omitempty" json:"income,omitempty"`
	Expenses *decimal.Decimal `yaml:"expenses,omitempty" json:"expenses,omitempty"`
	Retire   bool             `yaml:"retire,omitempty" json:"retire,omitempty"`
	MoveTo   string           `yaml:"move_to,omitempty" json:"moveTo,omitempty"`
}

// Kind reports the event's side effect
func (e LifeEvent) Kind() EventKind {
	switch {
	case e.Retire:
		return EventRetire
	case e.MoveTo != "":
		return EventMove
	default:
		return EventNone
	}
}

// Profile is the starting point of one simulation run
type Profile struct {
	Name              string          `yaml:"name" json:"name"`
	BirthYear         int             `yaml:"birth_year" json:"birthYear"`
	StartYear         int             `yaml:"start_year,omitempty" json:"startYear,omitempty"`
	TargetYear        int             `yaml:"target_year" json:"targetYear"`
	InitialWealth     decimal.Decimal `yaml:"initial_wealth" json:"initialWealth"`
	InitialPensionPot decimal.Decimal `yaml:"initial_pension_pot" json:"initialPensionPot"`
	InitialIncome     decimal.Decimal `yaml:"initial_income" json:"initialIncome"`
	InitialExpenses   decimal.Decimal `yaml:"initial_expenses" json:"initialExpenses"`
	InitialCountry    string          `yaml:"initial_country" json:"initialCountry"`
	Investments       []Investment    `yaml:"investments" json:"investments"`
	Events            []LifeEvent     `yaml:"events" json:"events"`
}

// EventForYear returns the life event scheduled for the given year, if any
func (p *Profile) EventForYear(year int) (LifeEvent, bool) {
	for _, event := range p.Events {
		if event.Year == year {
			return event, true
		}
	}
	return LifeEvent{}, false
}

// Validate checks that the profile can be simulated starting at startYear
func (p *Profile) Validate(startYear int) error {
	if p.BirthYear <= 0 {
		return fmt.Errorf("%w: birth year is required", ErrInvalidProfile)
	}
	if p.TargetYear < startYear {
		return fmt.Errorf("%w: target year %d is before start year %d", ErrInvalidProfile, p.TargetYear, startYear)
	}
	if p.InitialCountry == "" {
		return fmt.Errorf("%w: initial country is required", ErrInvalidProfile)
	}
	if p.InitialWealth.IsNegative() {
		return fmt.Errorf("%w: initial wealth cannot be negative", ErrInvalidProfile)
	}
	if p.InitialPensionPot.IsNegative() {
		return fmt.Errorf("%w: initial pension pot cannot be negative", ErrInvalidProfile)
	}
	if p.InitialIncome.IsNegative() || p.InitialExpenses.IsNegative() {
		return fmt.Errorf("%w: initial income and expenses cannot be negative", ErrInvalidProfile)
	}
	for i, inv := range p.Investments {
		if inv.AssetClass == "" {
			return fmt.Errorf("%w: investment %d: asset class is required", ErrInvalidProfile, i)
		}
		if inv.Amount.IsNegative() {
			return fmt.Errorf("%w: investment %d (%s): amount cannot be negative", ErrInvalidProfile, i, inv.AssetClass)
		}
	}

	seen := make(map[int]bool, len(p.Events))
	for _, event := range p.Events {
		if seen[event.Year] {
			return fmt.Errorf("%w: more than one life event in %d", ErrInvalidProfile, event.Year)
		}
		seen[event.Year] = true
		if event.Retire && event.MoveTo != "" {
			return fmt.Errorf("%w: event in %d cannot both retire and move", ErrInvalidProfile, event.Year)
		}
		if event.Income != nil && event.Income.IsNegative() {
			return fmt.Errorf("%w: event in %d has negative income", ErrInvalidProfile, event.Year)
		}
		if event.Expenses != nil && event.Expenses.IsNegative() {
			return fmt.Errorf("%w: event in %d has negative expenses", ErrInvalidProfile, event.Year)
		}
	}
	return nil
}
