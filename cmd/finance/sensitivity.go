package main

import (
	"fmt"
	"strings"

	"github.com/jhandl/finance/internal/calculation"
	"github.com/jhandl/finance/internal/domain"
	"github.com/jhandl/finance/internal/output"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var sensitivityParameters = []string{
	domain.SensitivityWithdrawalRate,
	domain.SensitivityReturnShift,
	domain.SensitivityInflation,
}

func newSensitivityCmd(a *app) *cobra.Command {
	var flags simulationFlags
	var parameter string
	var minValue, maxValue float64
	var steps int

	cmd := &cobra.Command{
		Use:   "sensitivity [profile-file]",
		Short: "Sweep one assumption and compare final wealth under identical market draws",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, profile, params, seed, err := flags.prepare(a, cmd, args[0])
			if err != nil {
				return err
			}

			analyzer := calculation.NewSensitivityAnalyzer(engine, params, seed)
			param, err := analyzer.DefaultSensitivityParameter(parameter)
			if err != nil {
				return fmt.Errorf("%w (available: %s)", err, strings.Join(sensitivityParameters, ", "))
			}
			if cmd.Flags().Changed("min") {
				param.MinValue = decimal.NewFromFloat(minValue)
			}
			if cmd.Flags().Changed("max") {
				param.MaxValue = decimal.NewFromFloat(maxValue)
			}
			if cmd.Flags().Changed("steps") {
				param.Steps = steps
			}

			analysis, err := analyzer.AnalyzeSingleParameter(cmd.Context(), profile, param)
			if err != nil {
				return err
			}
			data, err := output.FormatSensitivity(analysis, strings.ToLower(flags.format))
			if err != nil {
				return err
			}
			return writeReport(cmd, data, flags.outputFile)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&parameter, "parameter", "p", domain.SensitivityReturnShift, fmt.Sprintf("Parameter to sweep (%s)", strings.Join(sensitivityParameters, ", ")))
	cmd.Flags().Float64Var(&minValue, "min", 0, "Lowest value of the sweep")
	cmd.Flags().Float64Var(&maxValue, "max", 0, "Highest value of the sweep")
	cmd.Flags().IntVar(&steps, "steps", 0, "Number of values between min and max")
	return cmd
}
