package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/jhandl/finance/internal/compare"
	"github.com/jhandl/finance/internal/domain"
	"github.com/jhandl/finance/internal/output"
	"github.com/spf13/cobra"
)

var (
	runHeaderStyle  = lipgloss.NewStyle().Bold(true)
	runColumnWidths = []int{38, 20, 11, 9, 18, 16}
)

func runRow(style lipgloss.Style, cells ...string) string {
	rendered := make([]string, len(cells))
	for i, cell := range cells {
		rendered[i] = style.Width(runColumnWidths[i]).Render(cell)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func newRunsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Browse saved simulation runs",
	}

	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List saved runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.requireStore()
			if err != nil {
				return err
			}
			summaries, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No saved runs")
				return nil
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, runRow(runHeaderStyle, "ID", "PROFILE", "YEARS", "SKIPPED", "FINAL WEALTH", "SAVED"))
			for _, s := range summaries {
				fmt.Fprintln(out, runRow(lipgloss.NewStyle(),
					s.ID,
					s.ProfileName,
					fmt.Sprintf("%d-%d", s.StartYear, s.TargetYear),
					fmt.Sprint(s.SkippedYears),
					output.FormatCurrency(s.FinalWealth),
					s.CreatedAt.Local().Format("2006-01-02 15:04")))
			}
			return nil
		},
	}
	listCmd.Flags().IntVarP(&limit, "limit", "l", 20, "Maximum number of runs to list")

	var format string
	showCmd := &cobra.Command{
		Use:   "show [run-id]",
		Short: "Render a saved run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.GetFormatterByName(format)
			if formatter == nil {
				return fmt.Errorf("unknown format %q", format)
			}
			store, err := a.requireStore()
			if err != nil {
				return err
			}
			run, err := store.LoadRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			data, err := formatter.Format(run)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	showCmd.Flags().StringVarP(&format, "format", "f", "console", "Output format")

	var compareFormat string
	compareCmd := &cobra.Command{
		Use:   "compare [base-run-id] [run-id...]",
		Short: "Compare saved runs against a base run",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.requireStore()
			if err != nil {
				return err
			}
			loaded := make([]*domain.RunResult, 0, len(args))
			for _, id := range args {
				run, err := store.LoadRun(cmd.Context(), id)
				if err != nil {
					return fmt.Errorf("run %s: %w", id, err)
				}
				// id prefix distinguishes runs of the same profile
				run.ProfileName = fmt.Sprintf("%s [%s]", run.ProfileName, id[:8])
				loaded = append(loaded, run)
			}
			data, err := formatComparison(compare.NewCompareEngine(nil).CompareRuns(loaded[0], loaded[1:]...), compareFormat)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	compareCmd.Flags().StringVarP(&compareFormat, "format", "f", "console", "Output format (console, csv, json)")

	cmd.AddCommand(listCmd, showCmd, compareCmd)
	return cmd
}
