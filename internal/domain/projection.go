package domain

import (
	"github.com/shopspring/decimal"
)

// TaxAmount is the amount owed for one named income tax component
type TaxAmount struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// YearResult captures one simulated year. Immutable once produced.
type YearResult struct {
	Year    int    `json:"year"`
	Age     int    `json:"age"`
	Country string `json:"country"`
	Retired bool   `json:"retired"`

	Income              decimal.Decimal `json:"income"`
	PensionIncome       decimal.Decimal `json:"pensionIncome"`
	InvestmentGains     decimal.Decimal `json:"investmentGains"`
	PensionContribution decimal.Decimal `json:"pensionContribution"`

	IncomeTaxes     []TaxAmount     `json:"incomeTaxes"`
	WealthTax       decimal.Decimal `json:"wealthTax"`
	CapitalGainsTax decimal.Decimal `json:"capitalGainsTax"`
	TotalTax        decimal.Decimal `json:"totalTax"`

	NetIncome       decimal.Decimal `json:"netIncome"`
	Expenses        decimal.Decimal `json:"expenses"`
	RemainingWealth decimal.Decimal `json:"remainingWealth"`
	PensionPot      decimal.Decimal `json:"pensionPot"`
}

// TotalIncomeTax sums the income tax components
func (yr YearResult) TotalIncomeTax() decimal.Decimal {
	total := decimal.Zero
	for _, t := range yr.IncomeTaxes {
		total = total.Add(t.Amount)
	}
	return total
}

// IncomeTax returns the amount of the named income tax component
func (yr YearResult) IncomeTax(name string) decimal.Decimal {
	for _, t := range yr.IncomeTaxes {
		if t.Name == name {
			return t.Amount
		}
	}
	return decimal.Zero
}

// Warning is a non-fatal condition surfaced during a run
type Warning struct {
	Year    int    `json:"year"`
	Message string `json:"message"`
}

// RunResult is the output of one simulation run
type RunResult struct {
	ProfileName     string          `json:"profileName"`
	StartYear       int             `json:"startYear"`
	TargetYear      int             `json:"targetYear"`
	WithdrawalRate  decimal.Decimal `json:"withdrawalRate"`
	DrawDownPension bool            `json:"drawDownPension"`
	Years           []YearResult    `json:"years"`
	Warnings        []Warning       `json:"warnings,omitempty"`
	FinalWealth     decimal.Decimal `json:"finalWealth"`
	FinalPensionPot decimal.Decimal `json:"finalPensionPot"`
}

// SkippedYears reports how many years between start and target produced no result
func (r *RunResult) SkippedYears() int {
	return (r.TargetYear - r.StartYear + 1) - len(r.Years)
}
