// Package rules resolves per-country tax rule sets.
package rules

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jhandl/finance/internal/domain"
)

// ErrCountryNotFound is returned when no source has rules for a country.
var ErrCountryNotFound = errors.New("country rules not found")

//go:embed countries/*.yaml
var embeddedCountries embed.FS

// Repository resolves the tax rules of a country.
type Repository interface {
	Lookup(ctx context.Context, country string) (*domain.CountryTaxRules, error)
}

// Key normalizes a country name for lookups and file names
func Key(country string) string {
	return strings.ToLower(strings.TrimSpace(country))
}

// FSSource reads <key>.yaml documents from a filesystem.
type FSSource struct {
	fsys fs.FS
	dir  string
}

// NewEmbeddedSource returns the built-in country tables
func NewEmbeddedSource() *FSSource {
	return &FSSource{fsys: embeddedCountries, dir: "countries"}
}

// NewDirSource reads country documents from a directory on disk
func NewDirSource(dir string) *FSSource {
	return &FSSource{fsys: os.DirFS(dir), dir: "."}
}

// Lookup implements Repository
func (s *FSSource) Lookup(ctx context.Context, country string) (*domain.CountryTaxRules, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := Key(country)
	if key == "" || strings.ContainsAny(key, `/\`) {
		return nil, fmt.Errorf("%w: %q", ErrCountryNotFound, country)
	}

	data, err := fs.ReadFile(s.fsys, filepath.ToSlash(filepath.Join(s.dir, key+".yaml")))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrCountryNotFound, country)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read rules for %s: %w", country, err)
	}

	rules, err := domain.ParseCountryTaxRules(data)
	if err != nil {
		return nil, fmt.Errorf("rules for %s: %w", country, err)
	}
	return rules, nil
}

// Countries lists the country keys available in the source
func (s *FSSource) Countries() ([]string, error) {
	matches, err := fs.Glob(s.fsys, filepath.ToSlash(filepath.Join(s.dir, "*.yaml")))
	if err != nil {
		return nil, err
	}
	countries := make([]string, 0, len(matches))
	for _, m := range matches {
		countries = append(countries, strings.TrimSuffix(filepath.Base(m), ".yaml"))
	}
	sort.Strings(countries)
	return countries, nil
}

// Chain tries each repository in order and returns the first hit.
// Only ErrCountryNotFound falls through to the next repository.
type Chain []Repository

// Lookup implements Repository
func (c Chain) Lookup(ctx context.Context, country string) (*domain.CountryTaxRules, error) {
	for _, repo := range c {
		rules, err := repo.Lookup(ctx, country)
		if err == nil {
			return rules, nil
		}
		if !errors.Is(err, ErrCountryNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrCountryNotFound, country)
}
