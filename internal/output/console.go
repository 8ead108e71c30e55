package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jhandl/finance/internal/domain"
)

var (
	colorPrimary = lipgloss.Color("#2E86AB")
	colorAccent  = lipgloss.Color("#F18F01")
	colorDanger  = lipgloss.Color("#C73E1D")
	colorMuted   = lipgloss.Color("#6C757D")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	subtleStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	warningStyle = lipgloss.NewStyle().Foreground(colorAccent)
	negStyle     = lipgloss.NewStyle().Foreground(colorDanger)
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorPrimary).Padding(0, 1)
)

type column struct {
	title string
	width int
	value func(yr domain.YearResult) string
}

var consoleColumns = []column{
	{"Year", 6, func(yr domain.YearResult) string { return fmt.Sprint(yr.Year) }},
	{"Age", 4, func(yr domain.YearResult) string { return fmt.Sprint(yr.Age) }},
	{"Country", 12, func(yr domain.YearResult) string { return yr.Country }},
	{"Income", 14, func(yr domain.YearResult) string { return FormatCurrency(yr.Income) }},
	{"Pension", 12, func(yr domain.YearResult) string { return FormatCurrency(yr.PensionIncome) }},
	{"Gains", 13, func(yr domain.YearResult) string { return FormatCurrency(yr.InvestmentGains) }},
	{"Tax", 13, func(yr domain.YearResult) string { return FormatCurrency(yr.TotalTax) }},
	{"Net", 14, func(yr domain.YearResult) string { return FormatCurrency(yr.NetIncome) }},
	{"Expenses", 13, func(yr domain.YearResult) string { return FormatCurrency(yr.Expenses) }},
	{"Wealth", 16, func(yr domain.YearResult) string { return FormatCurrency(yr.RemainingWealth) }},
	{"Pension Pot", 15, func(yr domain.YearResult) string { return FormatCurrency(yr.PensionPot) }},
}

// ConsoleFormatter renders a year-by-year table for terminals
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(run *domain.RunResult) ([]byte, error) {
	var buf bytes.Buffer

	title := "NET WORTH PROJECTION"
	if run.ProfileName != "" {
		title += ": " + run.ProfileName
	}
	fmt.Fprintln(&buf, titleStyle.Render(title))
	fmt.Fprintln(&buf, subtleStyle.Render(fmt.Sprintf("%d to %d, %d years simulated, %d skipped",
		run.StartYear, run.TargetYear, len(run.Years), run.SkippedYears())))
	fmt.Fprintln(&buf)

	cells := make([]string, 0, len(consoleColumns))
	for _, col := range consoleColumns {
		cells = append(cells, headerStyle.Width(col.width).Align(alignFor(col)).Render(col.title))
	}
	fmt.Fprintln(&buf, strings.Join(cells, " "))

	for _, yr := range run.Years {
		cells = cells[:0]
		for _, col := range consoleColumns {
			style := lipgloss.NewStyle().Width(col.width).Align(alignFor(col))
			if col.title == "Wealth" && yr.RemainingWealth.IsNegative() {
				style = style.Inherit(negStyle)
			}
			cells = append(cells, style.Render(col.value(yr)))
		}
		fmt.Fprintln(&buf, strings.Join(cells, " "))
	}
	fmt.Fprintln(&buf)

	summary := fmt.Sprintf("Final wealth:      %s\nFinal pension pot: %s",
		FormatCurrency(run.FinalWealth), FormatCurrency(run.FinalPensionPot))
	fmt.Fprintln(&buf, boxStyle.Render(summary))

	if len(run.Warnings) > 0 {
		fmt.Fprintln(&buf)
		fmt.Fprintln(&buf, warningStyle.Render("WARNINGS:"))
		for _, w := range run.Warnings {
			fmt.Fprintln(&buf, warningStyle.Render(fmt.Sprintf("  %d: %s", w.Year, w.Message)))
		}
	}

	fmt.Fprintln(&buf)
	fmt.Fprintln(&buf, subtleStyle.Render("KEY ASSUMPTIONS:"))
	for _, a := range RunAssumptions(run) {
		fmt.Fprintln(&buf, subtleStyle.Render("• "+a))
	}
	return buf.Bytes(), nil
}

func alignFor(col column) lipgloss.Position {
	if col.title == "Country" {
		return lipgloss.Left
	}
	return lipgloss.Right
}
