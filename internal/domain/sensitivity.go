package domain

import "github.com/shopspring/decimal"

// Parameters a sensitivity sweep can vary
const (
	SensitivityWithdrawalRate = "withdrawal_rate"
	SensitivityReturnShift    = "return_shift"
	SensitivityInflation      = "inflation"
)

// SensitivityParameter describes one parameter sweep from MinValue to MaxValue
type SensitivityParameter struct {
	Name      string          `yaml:"name" json:"name"`
	MinValue  decimal.Decimal `yaml:"min_value" json:"minValue"`
	MaxValue  decimal.Decimal `yaml:"max_value" json:"maxValue"`
	Steps     int             `yaml:"steps" json:"steps"`
	BaseValue decimal.Decimal `yaml:"base_value" json:"baseValue"`
}

// SensitivityPoint is the outcome of one simulation at one parameter value
type SensitivityPoint struct {
	Value           decimal.Decimal `json:"value"`
	FinalWealth     decimal.Decimal `json:"finalWealth"`
	FinalPensionPot decimal.Decimal `json:"finalPensionPot"`
	SkippedYears    int             `json:"skippedYears"`
	// WealthChange is FinalWealth minus the final wealth at the base value.
	WealthChange decimal.Decimal `json:"wealthChange"`
}

// SensitivityAnalysis is a completed single-parameter sweep
type SensitivityAnalysis struct {
	ProfileName string               `json:"profileName"`
	Seed        int64                `json:"seed"`
	Parameter   SensitivityParameter `json:"parameter"`
	Base        SensitivityPoint     `json:"base"`
	Points      []SensitivityPoint   `json:"points"`
	// WealthRange is the spread between the best and worst final wealth.
	WealthRange decimal.Decimal `json:"wealthRange"`
}
