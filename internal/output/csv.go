package output

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/jhandl/finance/internal/domain"
)

// CSVFormatter writes one row per simulated year. Income tax components get
// one column each, in the order they first appear across the run.
type CSVFormatter struct{}

func (c CSVFormatter) Name() string { return "csv" }

func (c CSVFormatter) Format(run *domain.RunResult) ([]byte, error) {
	var components []string
	seen := map[string]bool{}
	for _, yr := range run.Years {
		for _, t := range yr.IncomeTaxes {
			if !seen[t.Name] {
				seen[t.Name] = true
				components = append(components, t.Name)
			}
		}
	}

	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Year", "Age", "Country", "Retired", "Income", "PensionIncome", "InvestmentGains", "PensionContribution"}
	header = append(header, components...)
	header = append(header, "WealthTax", "CapitalGainsTax", "TotalTax", "NetIncome", "Expenses", "RemainingWealth", "PensionPot")
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, yr := range run.Years {
		row := []string{
			strconv.Itoa(yr.Year),
			strconv.Itoa(yr.Age),
			yr.Country,
			strconv.FormatBool(yr.Retired),
			yr.Income.StringFixed(2),
			yr.PensionIncome.StringFixed(2),
			yr.InvestmentGains.StringFixed(2),
			yr.PensionContribution.StringFixed(2),
		}
		for _, name := range components {
			row = append(row, yr.IncomeTax(name).StringFixed(2))
		}
		row = append(row,
			yr.WealthTax.StringFixed(2),
			yr.CapitalGainsTax.StringFixed(2),
			yr.TotalTax.StringFixed(2),
			yr.NetIncome.StringFixed(2),
			yr.Expenses.StringFixed(2),
			yr.RemainingWealth.StringFixed(2),
			yr.PensionPot.StringFixed(2),
		)
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
