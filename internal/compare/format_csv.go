package compare

import (
	"encoding/csv"
	"strconv"
	"strings"
)

// CSVFormatter formats comparison results as CSV
type CSVFormatter struct{}

// Format generates CSV output for comparison results
func (cf *CSVFormatter) Format(compSet *ComparisonSet) (string, error) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	header := []string{
		"Name",
		"Type",
		"Final Wealth",
		"Final Pension Pot",
		"Lifetime Net Income",
		"Lifetime Taxes",
		"Depletion Year",
		"Skipped Years",
		"Wealth Diff from Base",
		"Wealth % Change",
		"Tax Diff from Base",
	}
	if err := writer.Write(header); err != nil {
		return "", err
	}
	if err := writer.Write(cf.formatRow(compSet.BaseResult, "base")); err != nil {
		return "", err
	}
	for i := range compSet.AlternativeResults {
		if err := writer.Write(cf.formatRow(&compSet.AlternativeResults[i], "alternative")); err != nil {
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (cf *CSVFormatter) formatRow(result *ComparisonResult, kind string) []string {
	return []string{
		result.Name,
		kind,
		result.FinalWealth.StringFixed(2),
		result.FinalPensionPot.StringFixed(2),
		result.LifetimeNet.StringFixed(2),
		result.LifetimeTaxes.StringFixed(2),
		strconv.Itoa(result.DepletionYear),
		strconv.Itoa(result.SkippedYears),
		result.WealthDiffFromBase.StringFixed(2),
		result.WealthPctFromBase.StringFixed(2),
		result.TaxDiffFromBase.StringFixed(2),
	}
}
