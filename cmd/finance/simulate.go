package main

import (
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/jhandl/finance/internal/calculation"
	"github.com/jhandl/finance/internal/config"
	"github.com/jhandl/finance/internal/domain"
	"github.com/jhandl/finance/internal/market"
	"github.com/jhandl/finance/internal/output"
	"github.com/jhandl/finance/internal/rules"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// simulationFlags are shared by simulate and montecarlo
type simulationFlags struct {
	format          string
	outputFile      string
	marketFile      string
	seed            int64
	withdrawalRate  float64
	drawDownPension bool
}

func (f *simulationFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.format, "format", "f", "console", fmt.Sprintf("Output format (%s)", strings.Join(output.AvailableFormatterNames(), ", ")))
	cmd.Flags().StringVarP(&f.outputFile, "output", "o", "", "Write the report to this file instead of stdout")
	cmd.Flags().StringVar(&f.marketFile, "market", "", "YAML file of market parameters (default $FINANCE_MARKET_FILE or built-in)")
	cmd.Flags().Int64Var(&f.seed, "seed", 0, "Random seed (default $FINANCE_SEED or random)")
	cmd.Flags().Float64Var(&f.withdrawalRate, "withdrawal-rate", 0, "Share of the pension pot paid each retired year (default $FINANCE_WITHDRAWAL_RATE)")
	cmd.Flags().BoolVar(&f.drawDownPension, "draw-down-pension", false, "Withdraw pension income from the pot")
}

// prepare loads the profile and market and configures the engine
func (f *simulationFlags) prepare(a *app, cmd *cobra.Command, profileFile string) (*calculation.CalculationEngine, *domain.Profile, domain.MarketParameters, int64, error) {
	parser := config.NewInputParser()
	profile, err := parser.LoadProfile(profileFile)
	if err != nil {
		return nil, nil, nil, 0, err
	}

	engine, err := a.engine()
	if err != nil {
		return nil, nil, nil, 0, err
	}
	if cmd.Flags().Changed("withdrawal-rate") {
		if f.withdrawalRate < 0 || f.withdrawalRate > 1 {
			return nil, nil, nil, 0, fmt.Errorf("--withdrawal-rate must be between 0 and 1")
		}
		engine.WithdrawalRate = decimal.NewFromFloat(f.withdrawalRate)
	}
	if f.drawDownPension {
		engine.DrawDownPension = true
	}
	if err := parser.ValidateProfile(profile, engine.StartYear(profile)); err != nil {
		return nil, nil, nil, 0, err
	}

	params := market.DefaultParameters()
	marketFile := f.marketFile
	if marketFile == "" {
		marketFile = a.settings.MarketFile
	}
	if marketFile != "" {
		params, err = parser.LoadMarket(marketFile, params)
		if err != nil {
			return nil, nil, nil, 0, err
		}
	}

	seed := f.seed
	if !cmd.Flags().Changed("seed") {
		seed = a.settings.Seed
		if seed == 0 {
			seed, err = market.NewSeed()
			if err != nil {
				return nil, nil, nil, 0, err
			}
		}
	}
	a.logger.Debug("prepared simulation",
		zap.String("profile", profileFile),
		zap.Int64("seed", seed),
		zap.String("withdrawalRate", engine.WithdrawalRate.String()),
		zap.Bool("drawDownPension", engine.DrawDownPension))
	return engine, profile, params, seed, nil
}

func writeReport(cmd *cobra.Command, data []byte, outputFile string) error {
	if outputFile == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(outputFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputFile, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", outputFile)
	return nil
}

func newSimulateCmd(a *app) *cobra.Command {
	var flags simulationFlags
	var save bool

	cmd := &cobra.Command{
		Use:   "simulate [profile-file]",
		Short: "Project net worth year by year for one sampled market",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.GetFormatterByName(flags.format)
			if formatter == nil {
				return fmt.Errorf("unknown format %q (available: %s)", flags.format, strings.Join(output.AvailableFormatterNames(), ", "))
			}

			engine, profile, params, seed, err := flags.prepare(a, cmd, args[0])
			if err != nil {
				return err
			}

			run, err := engine.RunSimulation(cmd.Context(), profile, market.New(params, rand.New(rand.NewSource(seed))))
			if err != nil {
				return err
			}
			for _, w := range run.Warnings {
				a.logger.Warn("simulation warning", zap.Int("year", w.Year), zap.String("message", w.Message))
			}

			if save {
				store, err := a.requireStore()
				if err != nil {
					return err
				}
				id, err := store.SaveRun(cmd.Context(), run)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Saved run %s\n", id)
			}

			if formatter.Name() == "pdf" && flags.outputFile == "" {
				path, err := output.WriteFormatted(formatter, run, ".", "pdf")
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", path)
				return nil
			}
			data, err := formatter.Format(run)
			if err != nil {
				return err
			}
			return writeReport(cmd, data, flags.outputFile)
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&save, "save", false, "Save the run to the database")
	return cmd
}

func newMonteCarloCmd(a *app) *cobra.Command {
	var flags simulationFlags
	var runs, concurrency int

	cmd := &cobra.Command{
		Use:   "montecarlo [profile-file]",
		Short: "Run many independent simulations and summarize final wealth",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, profile, params, seed, err := flags.prepare(a, cmd, args[0])
			if err != nil {
				return err
			}

			result, err := engine.RunMonteCarlo(cmd.Context(), profile, params, calculation.MonteCarloConfig{
				NumSimulations: runs,
				Seed:           seed,
				Concurrency:    concurrency,
			})
			if err != nil {
				return err
			}
			if cache, ok := engine.Rules.(*rules.Cache); ok {
				a.logger.Debug("monte carlo finished",
					zap.Int("runs", result.NumSimulations),
					zap.Int("ruleFetches", cache.Fetches()))
			}

			data, err := output.FormatMonteCarlo(result, strings.ToLower(flags.format))
			if err != nil {
				return err
			}
			return writeReport(cmd, data, flags.outputFile)
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVarP(&runs, "runs", "n", 1000, "Number of simulations")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Parallel simulations (default number of CPUs)")
	return cmd
}

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [profile-file]",
		Short: "Validate a profile and check that its countries have rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parser := config.NewInputParser()
			profile, err := parser.LoadProfile(args[0])
			if err != nil {
				return err
			}
			engine, err := a.engine()
			if err != nil {
				return err
			}
			if err := parser.ValidateProfile(profile, engine.StartYear(profile)); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			countries := []string{profile.InitialCountry}
			for _, event := range profile.Events {
				if event.MoveTo != "" {
					countries = append(countries, event.MoveTo)
				}
			}
			missing := 0
			for _, country := range countries {
				if _, err := engine.Rules.Lookup(cmd.Context(), country); err != nil {
					missing++
					fmt.Fprintf(out, "⚠️  %s: %v (those years will be skipped)\n", country, err)
				}
			}

			fmt.Fprintf(out, "✅ Profile %s is valid\n", args[0])
			if missing > 0 {
				fmt.Fprintf(out, "%d country rule set(s) unavailable\n", missing)
			}
			return nil
		},
	}
}
