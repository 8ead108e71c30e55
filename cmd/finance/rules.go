package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/jhandl/finance/internal/domain"
	"github.com/jhandl/finance/internal/rules"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func newRulesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect and import country tax rules",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the countries with available rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sources := map[string][]string{}
			add := func(source string, countries []string) {
				for _, c := range countries {
					sources[c] = append(sources[c], source)
				}
			}

			embedded, err := rules.NewEmbeddedSource().Countries()
			if err != nil {
				return err
			}
			add("built-in", embedded)
			if a.rulesDir != "" {
				dir, err := rules.NewDirSource(a.rulesDir).Countries()
				if err != nil {
					return err
				}
				add(a.rulesDir, dir)
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			if store != nil {
				stored, err := store.Countries(cmd.Context())
				if err != nil {
					return err
				}
				add("database", stored)
			}

			names := make([]string, 0, len(sources))
			for name := range sources {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "%-16s %s\n", name, strings.Join(sources[name], ", "))
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show [country]",
		Short: "Print the rules that apply to a country",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.repository()
			if err != nil {
				return err
			}
			countryRules, err := repo.Lookup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(countryRules); err != nil {
				return err
			}
			return enc.Close()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "import [rules-file] [country]",
		Short: "Store a country rule document in the database",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read file %s: %w", args[0], err)
			}
			countryRules, err := domain.ParseCountryTaxRules(data)
			if err != nil {
				return err
			}
			if unknown, ok := countryRules.Pension.(domain.UnknownPensionRule); ok {
				a.logger.Warn("pension rule kind is not supported, contributions will be zero",
					zap.String("country", args[1]),
					zap.String("kind", unknown.Kind))
			}

			store, err := a.requireStore()
			if err != nil {
				return err
			}
			if err := store.PutRules(cmd.Context(), args[1], countryRules); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported rules for %s as %q\n", countryRules.Country, rules.Key(args[1]))
			return nil
		},
	})

	return cmd
}
