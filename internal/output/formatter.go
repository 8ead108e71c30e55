// Package output renders simulation results for people and other programs.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jhandl/finance/internal/domain"
	"github.com/shopspring/decimal"
)

// Formatter renders one run in a single output format
type Formatter interface {
	Name() string
	Format(run *domain.RunResult) ([]byte, error)
}

// FormatterFunc adapts a function to Formatter
type FormatterFunc struct {
	ID string
	F  func(run *domain.RunResult) ([]byte, error)
}

func (f FormatterFunc) Name() string { return f.ID }

func (f FormatterFunc) Format(run *domain.RunResult) ([]byte, error) { return f.F(run) }

var formatters = map[string]Formatter{
	"console": ConsoleFormatter{},
	"csv":     CSVFormatter{},
	"json":    JSONFormatter{},
	"pdf":     PDFFormatter{},
}

var formatAliases = map[string]string{
	"table": "console",
	"text":  "console",
}

// GetFormatterByName returns the formatter for name or alias, nil when unknown
func GetFormatterByName(name string) Formatter {
	name = strings.ToLower(strings.TrimSpace(name))
	if target, ok := formatAliases[name]; ok {
		name = target
	}
	return formatters[name]
}

// AvailableFormatterNames lists the registered formatter names in order
func AvailableFormatterNames() []string {
	names := make([]string, 0, len(formatters))
	for name := range formatters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AvailableFormatAliases lists the accepted aliases in order
func AvailableFormatAliases() []string {
	aliases := make([]string, 0, len(formatAliases))
	for alias := range formatAliases {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	return aliases
}

// WriteFormatted renders run with f into a timestamped file in dir and returns its path
func WriteFormatted(f Formatter, run *domain.RunResult, dir, ext string) (string, error) {
	data, err := f.Format(run)
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("projection_report_%s.%s", time.Now().Format("20060102_150405"), ext)
	name = filepath.Join(dir, name)
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	return name, nil
}

// FormatCurrency formats an amount with thousands separators and two decimals
func FormatCurrency(amount decimal.Decimal) string {
	return humanize.FormatFloat("#,###.##", amount.Round(2).InexactFloat64())
}

// FormatPercentage formats a rate such as 0.04 as "4.00%"
func FormatPercentage(rate decimal.Decimal) string {
	return rate.Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}
