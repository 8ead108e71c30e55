package main

import (
	"fmt"
	"strings"

	"github.com/jhandl/finance/internal/breakeven"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newBreakEvenCmd(a *app) *cobra.Command {
	var flags simulationFlags
	var tolerance, maxMultiplier float64
	var maxIterations int

	cmd := &cobra.Command{
		Use:   "breakeven [profile-file]",
		Short: "Find the highest expenses the profile can sustain through its target year",
		Long:  "Scales every expense in the profile, including life event overrides, and bisects for the largest scale at which wealth never goes negative. Every trial uses the same market draws.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, profile, params, seed, err := flags.prepare(a, cmd, args[0])
			if err != nil {
				return err
			}

			opts := breakeven.DefaultSolverOptions()
			if cmd.Flags().Changed("tolerance") {
				opts.Tolerance = decimal.NewFromFloat(tolerance)
			}
			if cmd.Flags().Changed("max-multiplier") {
				opts.MaxMultiplier = decimal.NewFromFloat(maxMultiplier)
			}
			if cmd.Flags().Changed("max-iterations") {
				opts.MaxIterations = maxIterations
			}

			result, err := breakeven.NewSolver(engine, opts).SustainableExpenses(cmd.Context(), breakeven.Request{
				Profile: profile,
				Params:  params,
				Seed:    seed,
			})
			if err != nil {
				return err
			}

			var out string
			switch strings.ToLower(flags.format) {
			case "console", "table", "text", "":
				out = (&breakeven.TableFormatter{}).Format(result)
			case "json":
				out, err = (&breakeven.JSONFormatter{}).Format(result)
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("unsupported breakeven format: %s", flags.format)
			}
			return writeReport(cmd, []byte(out), flags.outputFile)
		},
	}
	flags.register(cmd)
	cmd.Flags().Float64Var(&tolerance, "tolerance", 0, "Acceptable error on the sustainable expenses (default 10)")
	cmd.Flags().Float64Var(&maxMultiplier, "max-multiplier", 0, "Largest multiple of current expenses to try (default 10)")
	cmd.Flags().IntVar(&maxIterations, "max-iterations", 0, "Bisection steps before giving up (default 60)")
	return cmd
}
