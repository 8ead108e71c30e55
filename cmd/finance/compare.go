package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jhandl/finance/internal/compare"
	"github.com/jhandl/finance/internal/config"
	"github.com/jhandl/finance/internal/domain"
	"github.com/spf13/cobra"
)

func formatComparison(compSet *compare.ComparisonSet, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "console", "table", "text", "":
		return []byte((&compare.TableFormatter{}).Format(compSet)), nil
	case "csv":
		out, err := (&compare.CSVFormatter{}).Format(compSet)
		return []byte(out), err
	case "json":
		out, err := (&compare.JSONFormatter{Pretty: true}).Format(compSet)
		return []byte(out), err
	default:
		return nil, fmt.Errorf("unsupported comparison format: %s", format)
	}
}

func newCompareCmd(a *app) *cobra.Command {
	var flags simulationFlags

	cmd := &cobra.Command{
		Use:   "compare [base-profile] [alternative-profile...]",
		Short: "Compare profiles against the same sampled market",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, base, params, seed, err := flags.prepare(a, cmd, args[0])
			if err != nil {
				return err
			}
			nameFromFile(base, args[0])

			parser := config.NewInputParser()
			alternatives := make([]*domain.Profile, 0, len(args)-1)
			for _, file := range args[1:] {
				profile, err := parser.LoadProfile(file)
				if err != nil {
					return err
				}
				if err := parser.ValidateProfile(profile, engine.StartYear(profile)); err != nil {
					return fmt.Errorf("%s: %w", file, err)
				}
				nameFromFile(profile, file)
				alternatives = append(alternatives, profile)
			}

			compSet, err := compare.NewCompareEngine(engine).CompareProfiles(cmd.Context(), base, alternatives, params, seed)
			if err != nil {
				return err
			}
			data, err := formatComparison(compSet, flags.format)
			if err != nil {
				return err
			}
			return writeReport(cmd, data, flags.outputFile)
		},
	}
	flags.register(cmd)
	return cmd
}

// nameFromFile labels unnamed profiles after their file
func nameFromFile(profile *domain.Profile, file string) {
	if profile.Name == "" {
		profile.Name = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	}
}
