package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/jhandl/finance/internal/domain"
)

// FormatSensitivity renders a parameter sweep as console, csv or json
func FormatSensitivity(analysis *domain.SensitivityAnalysis, format string) ([]byte, error) {
	switch format {
	case "console", "table", "text", "":
		return sensitivityConsole(analysis), nil
	case "json":
		data, err := json.MarshalIndent(analysis, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case "csv":
		return sensitivityCSV(analysis)
	default:
		return nil, fmt.Errorf("unsupported sensitivity format: %s", format)
	}
}

func sensitivityConsole(analysis *domain.SensitivityAnalysis) []byte {
	var buf bytes.Buffer

	title := "SENSITIVITY: " + analysis.Parameter.Name
	if analysis.ProfileName != "" {
		title += " (" + analysis.ProfileName + ")"
	}
	fmt.Fprintln(&buf, titleStyle.Render(title))
	fmt.Fprintln(&buf, subtleStyle.Render(fmt.Sprintf("seed %d, base value %s, base final wealth %s",
		analysis.Seed, FormatPercentage(analysis.Parameter.BaseValue), FormatCurrency(analysis.Base.FinalWealth))))
	fmt.Fprintln(&buf)

	widths := []int{10, 18, 18, 16, 8}
	row := func(style lipgloss.Style, cells ...string) string {
		rendered := make([]string, len(cells))
		for i, cell := range cells {
			rendered[i] = style.Width(widths[i]).Align(lipgloss.Right).Render(cell)
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
	}
	fmt.Fprintln(&buf, row(headerStyle, "Value", "Final Wealth", "Pension Pot", "Change", "Skipped"))
	for _, p := range analysis.Points {
		style := lipgloss.NewStyle()
		if p.WealthChange.IsNegative() {
			style = style.Inherit(negStyle)
		}
		fmt.Fprintln(&buf, row(style,
			FormatPercentage(p.Value),
			FormatCurrency(p.FinalWealth),
			FormatCurrency(p.FinalPensionPot),
			FormatCurrency(p.WealthChange),
			strconv.Itoa(p.SkippedYears)))
	}
	fmt.Fprintln(&buf)
	fmt.Fprintf(&buf, "Final wealth range: %s\n", FormatCurrency(analysis.WealthRange))
	return buf.Bytes()
}

func sensitivityCSV(analysis *domain.SensitivityAnalysis) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write([]string{"Parameter", "Value", "FinalWealth", "FinalPensionPot", "WealthChange", "SkippedYears"}); err != nil {
		return nil, err
	}
	for _, p := range analysis.Points {
		row := []string{
			analysis.Parameter.Name,
			p.Value.String(),
			p.FinalWealth.StringFixed(2),
			p.FinalPensionPot.StringFixed(2),
			p.WealthChange.StringFixed(2),
			strconv.Itoa(p.SkippedYears),
		}
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
