package breakeven

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jhandl/finance/internal/output"
)

// TableFormatter formats a sustainable spending result for the console
type TableFormatter struct{}

// Format generates the console report
func (tf *TableFormatter) Format(result *Result) string {
	var sb strings.Builder

	sb.WriteString("SUSTAINABLE SPENDING\n")
	sb.WriteString(strings.Repeat("=", 60) + "\n")
	sb.WriteString(fmt.Sprintf("Profile:              %s\n", result.ProfileName))
	sb.WriteString(fmt.Sprintf("Seed:                 %d\n", result.Seed))
	sb.WriteString(fmt.Sprintf("Status:               %s\n", tf.formatStatus(result.Status)))
	sb.WriteString(fmt.Sprintf("Iterations:           %d\n", result.Iterations))
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("Current expenses:     %s\n", output.FormatCurrency(result.BaseExpenses)))
	sb.WriteString(fmt.Sprintf("Sustainable expenses: %s\n", output.FormatCurrency(result.SustainableExpenses)))
	sb.WriteString(fmt.Sprintf("Multiplier:           %sx\n", result.Multiplier.StringFixed(3)))
	sb.WriteString("\n")

	if result.DepletionYear != 0 {
		sb.WriteString(fmt.Sprintf("At current expenses wealth runs out in %d\n", result.DepletionYear))
	} else {
		sb.WriteString(fmt.Sprintf("At current expenses final wealth is %s\n", output.FormatCurrency(result.FinalWealth)))
	}
	return sb.String()
}

func (tf *TableFormatter) formatStatus(status Status) string {
	switch status {
	case StatusConverged:
		return "converged"
	case StatusUnbounded:
		return "above the search limit"
	case StatusInfeasible:
		return "wealth runs out even with no expenses"
	default:
		return "stopped at max iterations"
	}
}

// JSONFormatter formats a result as indented JSON
type JSONFormatter struct{}

// Format generates JSON output
func (jf *JSONFormatter) Format(result *Result) (string, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data) + "\n", nil
}
