// Package sqlite stores imported country rules and saved runs in a SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhandl/finance/internal/domain"
	"github.com/jhandl/finance/internal/rules"
	"github.com/jhandl/finance/internal/storage"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

// Store provides SQLite-backed rule and run persistence.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Open opens a SQLite store and creates its tables.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close releases the SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

// PutRules stores the rules for country, replacing any previous document.
func (s *Store) PutRules(ctx context.Context, country string, countryRules *domain.CountryTaxRules) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	key := rules.Key(country)
	if key == "" {
		return fmt.Errorf("country is required")
	}
	if countryRules == nil {
		return fmt.Errorf("rules are required")
	}
	document, err := yaml.Marshal(countryRules)
	if err != nil {
		return fmt.Errorf("encode rules: %w", err)
	}

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO country_rules (country, document, updated_at) VALUES (?, ?, ?)
ON CONFLICT(country) DO UPDATE SET
	document = excluded.document,
	updated_at = excluded.updated_at
`, key, string(document), s.now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("put rules %s: %w", key, err)
	}
	return nil
}

// Lookup returns the stored rules for country, or rules.ErrCountryNotFound.
func (s *Store) Lookup(ctx context.Context, country string) (*domain.CountryTaxRules, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	var document string
	err := s.sqlDB.QueryRowContext(ctx, `SELECT document FROM country_rules WHERE country = ?`, rules.Key(country)).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", rules.ErrCountryNotFound, country)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup rules %s: %w", country, err)
	}
	return domain.ParseCountryTaxRules([]byte(document))
}

// Countries lists the keys of all stored countries in order.
func (s *Store) Countries(ctx context.Context) ([]string, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(ctx, `SELECT country FROM country_rules ORDER BY country`)
	if err != nil {
		return nil, fmt.Errorf("list countries: %w", err)
	}
	defer rows.Close()

	var countries []string
	for rows.Next() {
		var country string
		if err := rows.Scan(&country); err != nil {
			return nil, fmt.Errorf("scan country: %w", err)
		}
		countries = append(countries, country)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate countries: %w", err)
	}
	return countries, nil
}

// SaveRun stores run under a new id and returns the id.
func (s *Store) SaveRun(ctx context.Context, run *domain.RunResult) (string, error) {
	if err := s.ready(ctx); err != nil {
		return "", err
	}
	if run == nil {
		return "", fmt.Errorf("run is required")
	}
	data, err := json.Marshal(run)
	if err != nil {
		return "", fmt.Errorf("encode run: %w", err)
	}

	id := uuid.NewString()
	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO runs (
	id,
	profile_name,
	start_year,
	target_year,
	final_wealth,
	skipped_years,
	result,
	created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`,
		id,
		run.ProfileName,
		run.StartYear,
		run.TargetYear,
		run.FinalWealth.String(),
		run.SkippedYears(),
		string(data),
		s.now().UTC().UnixMilli(),
	)
	if err != nil {
		return "", fmt.Errorf("save run: %w", err)
	}
	return id, nil
}

// LoadRun returns the saved run with the given id, or storage.ErrRunNotFound.
func (s *Store) LoadRun(ctx context.Context, id string) (*domain.RunResult, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %q is not a run id", storage.ErrRunNotFound, id)
	}

	var data string
	err := s.sqlDB.QueryRowContext(ctx, `SELECT result FROM runs WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", storage.ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", id, err)
	}

	var run domain.RunResult
	if err := json.Unmarshal([]byte(data), &run); err != nil {
		return nil, fmt.Errorf("decode run %s: %w", id, err)
	}
	return &run, nil
}

// ListRuns lists newest-first saved runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]storage.RunSummary, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT
	id,
	profile_name,
	start_year,
	target_year,
	final_wealth,
	skipped_years,
	created_at
FROM runs
ORDER BY created_at DESC, rowid DESC
LIMIT ?
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	summaries := make([]storage.RunSummary, 0, limit)
	for rows.Next() {
		var summary storage.RunSummary
		var finalWealth string
		var createdAt int64
		if err := rows.Scan(
			&summary.ID,
			&summary.ProfileName,
			&summary.StartYear,
			&summary.TargetYear,
			&finalWealth,
			&summary.SkippedYears,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		summary.FinalWealth, err = decimal.NewFromString(finalWealth)
		if err != nil {
			return nil, fmt.Errorf("decode final wealth of %s: %w", summary.ID, err)
		}
		summary.CreatedAt = time.UnixMilli(createdAt).UTC()
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return summaries, nil
}

var (
	_ storage.RuleStore = (*Store)(nil)
	_ storage.RunStore  = (*Store)(nil)
	_ rules.Repository  = (*Store)(nil)
)
