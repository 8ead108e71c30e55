package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/jhandl/finance/internal/calculation"
	"github.com/shopspring/decimal"
)

var percentileKeys = []string{"10th", "25th", "50th", "75th", "90th"}

// success rates below this are highlighted
var lowSuccessRate = decimal.NewFromFloat(0.9)

// FormatMonteCarlo renders a Monte Carlo summary as console, csv or json
func FormatMonteCarlo(result *calculation.MonteCarloResult, format string) ([]byte, error) {
	switch format {
	case "console", "table", "text", "":
		return monteCarloConsole(result), nil
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case "csv":
		return monteCarloCSV(result)
	default:
		return nil, fmt.Errorf("unsupported Monte Carlo format: %s", format)
	}
}

func monteCarloConsole(result *calculation.MonteCarloResult) []byte {
	var buf bytes.Buffer

	title := "MONTE CARLO PROJECTION"
	if result.ProfileName != "" {
		title += ": " + result.ProfileName
	}
	fmt.Fprintln(&buf, titleStyle.Render(title))
	fmt.Fprintln(&buf, subtleStyle.Render(fmt.Sprintf("%d simulations", result.NumSimulations)))
	fmt.Fprintln(&buf)

	rate := FormatPercentage(result.SuccessRate)
	if result.SuccessRate.LessThan(lowSuccessRate) {
		rate = negStyle.Render(rate)
	}
	fmt.Fprintf(&buf, "Success rate:       %s\n", rate)
	fmt.Fprintf(&buf, "Mean final wealth:  %s\n", FormatCurrency(result.MeanFinalWealth))
	fmt.Fprintln(&buf)
	fmt.Fprintln(&buf, headerStyle.Render("FINAL WEALTH PERCENTILES:"))
	for _, key := range percentileKeys {
		fmt.Fprintf(&buf, "  %-5s %20s\n", key, FormatCurrency(result.FinalWealth[key]))
	}
	return buf.Bytes()
}

func monteCarloCSV(result *calculation.MonteCarloResult) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write([]string{"Simulation", "Seed", "YearsSimulated", "Success", "FailureYear", "FinalWealth", "FinalPensionPot"}); err != nil {
		return nil, err
	}
	for _, sim := range result.Simulations {
		row := []string{
			strconv.Itoa(sim.SimulationID),
			strconv.FormatInt(sim.Seed, 10),
			strconv.Itoa(sim.YearsSimulated),
			strconv.FormatBool(sim.Success),
			strconv.Itoa(sim.FailureYear),
			sim.FinalWealth.StringFixed(2),
			sim.FinalPensionPot.StringFixed(2),
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
