package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/jhandl/finance/internal/calculation"
	"github.com/jhandl/finance/internal/config"
	"github.com/jhandl/finance/internal/logging"
	"github.com/jhandl/finance/internal/rules"
	"github.com/jhandl/finance/internal/storage/sqlite"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// app holds what every command shares. Built lazily so that help and
// version never touch the database or log files.
type app struct {
	settings *config.Settings
	logger   *zap.Logger

	// flags
	debug    bool
	dbPath   string
	rulesDir string

	store *sqlite.Store
}

func newApp() *app {
	return &app{}
}

func (a *app) init() error {
	if a.settings != nil {
		return nil
	}
	settings, err := config.LoadSettings(".env")
	if err != nil {
		return err
	}
	if a.dbPath == "" {
		a.dbPath = settings.DBPath
	}
	if a.rulesDir == "" {
		a.rulesDir = settings.RulesDir
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = settings.LogLevel
	logCfg.Format = settings.LogFormat
	if a.debug {
		logCfg.Level = "debug"
		logCfg.Development = true
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return err
	}

	a.settings = settings
	a.logger = logger
	return nil
}

// openStore opens the database when one is configured; nil otherwise
func (a *app) openStore() (*sqlite.Store, error) {
	if a.store != nil || a.dbPath == "" {
		return a.store, nil
	}
	store, err := sqlite.Open(a.dbPath)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("opened database", zap.String("path", a.dbPath))
	a.store = store
	return store, nil
}

func (a *app) requireStore() (*sqlite.Store, error) {
	store, err := a.openStore()
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, fmt.Errorf("no database configured: set FINANCE_DB_PATH or pass --db")
	}
	return store, nil
}

// repository resolves rules from the database, then the rules directory,
// then the built-in countries.
func (a *app) repository() (rules.Repository, error) {
	var chain rules.Chain
	store, err := a.openStore()
	if err != nil {
		return nil, err
	}
	if store != nil {
		chain = append(chain, store)
	}
	if a.rulesDir != "" {
		chain = append(chain, rules.NewDirSource(a.rulesDir))
	}
	chain = append(chain, rules.NewEmbeddedSource())
	return rules.NewCache(chain), nil
}

func (a *app) engine() (*calculation.CalculationEngine, error) {
	repo, err := a.repository()
	if err != nil {
		return nil, err
	}
	engine := calculation.NewCalculationEngine(repo)
	engine.WithdrawalRate = decimal.NewFromFloat(a.settings.WithdrawalRate)
	engine.DrawDownPension = a.settings.DrawDownPension
	engine.SetLogger(a.logger.Sugar())
	engine.Debug = a.debug
	return engine, nil
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil && a.logger != nil {
			a.logger.Warn("close database", zap.Error(err))
		}
		a.store = nil
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "finance",
		Short: "Multi-year net worth projection CLI",
		Long:  "Projects net worth year by year under the tax rules of the country you live in, including moves between countries",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" || cmd.Name() == "help" {
				return nil
			}
			return a.init()
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&a.dbPath, "db", "", "SQLite database for imported rules and saved runs (default $FINANCE_DB_PATH)")
	rootCmd.PersistentFlags().StringVar(&a.rulesDir, "rules-dir", "", "Directory of <country>.yaml rule files (default $FINANCE_RULES_DIR)")

	rootCmd.AddCommand(
		newSimulateCmd(a),
		newMonteCarloCmd(a),
		newSensitivityCmd(a),
		newCompareCmd(a),
		newBreakEvenCmd(a),
		newValidateCmd(a),
		newRulesCmd(a),
		newRunsCmd(a),
		versionCmd(),
	)
	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "finance %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(cmd.OutOrStdout(), info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.String()
	}
	return ""
}

func main() {
	a := newApp()
	defer a.close()

	if err := newRootCmd(a).ExecuteContext(context.Background()); err != nil {
		a.close()
		os.Exit(1)
	}
}
