package output

import (
	"fmt"

	"github.com/jhandl/finance/internal/domain"
)

// DefaultAssumptions lists key modeling assumptions rendered in detailed outputs.
var DefaultAssumptions = []string{
	"Tax brackets and thresholds are held constant (no inflation indexing)",
	"Income stays at its last set value; expenses grow with sampled inflation",
	"Capital gains are taxed on each year's mark-to-market gain",
	"Wealth tax is assessed on wealth at the start of the year",
}

// RunAssumptions adds the run's pension policy to DefaultAssumptions
func RunAssumptions(run *domain.RunResult) []string {
	out := append([]string(nil), DefaultAssumptions...)
	out = append(out, fmt.Sprintf("Retired pension income: %s of the pension pot each year", FormatPercentage(run.WithdrawalRate)))
	if run.DrawDownPension {
		out = append(out, "Pension income is withdrawn from the pot")
	} else {
		out = append(out, "Pension income is paid without reducing the pot")
	}
	return out
}
