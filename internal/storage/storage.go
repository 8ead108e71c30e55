// Package storage defines persistence for imported country rules and saved runs.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jhandl/finance/internal/domain"
	"github.com/shopspring/decimal"
)

// ErrRunNotFound is returned when no saved run has the requested id.
var ErrRunNotFound = errors.New("run not found")

// RunSummary is one row of the saved run history.
type RunSummary struct {
	ID           string
	ProfileName  string
	StartYear    int
	TargetYear   int
	FinalWealth  decimal.Decimal
	SkippedYears int
	CreatedAt    time.Time
}

// RuleStore persists country rule documents. It also serves as a rules.Repository.
type RuleStore interface {
	PutRules(ctx context.Context, country string, rules *domain.CountryTaxRules) error
	Lookup(ctx context.Context, country string) (*domain.CountryTaxRules, error)
	Countries(ctx context.Context) ([]string, error)
}

// RunStore persists simulation results.
type RunStore interface {
	SaveRun(ctx context.Context, run *domain.RunResult) (string, error)
	LoadRun(ctx context.Context, id string) (*domain.RunResult, error)
	ListRuns(ctx context.Context, limit int) ([]RunSummary, error)
}
