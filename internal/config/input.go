package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/jhandl/finance/internal/domain"
	"github.com/jhandl/finance/internal/rules"
	"gopkg.in/yaml.v3"
)

// InputParser handles parsing of profile and market files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// marketFile is the on-disk layout of a market parameters file
type marketFile struct {
	Market domain.MarketParameters `yaml:"market"`
}

// LoadProfile loads a profile from a YAML file
func (ip *InputParser) LoadProfile(filename string) (*domain.Profile, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.ParseProfile(data)
}

// ParseProfile decodes a profile document. Only structure is checked here;
// ValidateProfile needs the start year the simulation will use.
func (ip *InputParser) ParseProfile(data []byte) (*domain.Profile, error) {
	var profile domain.Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	profile.InitialCountry = strings.TrimSpace(profile.InitialCountry)
	for i := range profile.Events {
		profile.Events[i].MoveTo = strings.TrimSpace(profile.Events[i].MoveTo)
	}
	return &profile, nil
}

// ValidateProfile checks the profile and that every country it mentions is
// well formed. Whether rules exist for a country is only known at run time.
func (ip *InputParser) ValidateProfile(profile *domain.Profile, startYear int) error {
	if err := profile.Validate(startYear); err != nil {
		return fmt.Errorf("profile validation failed: %w", err)
	}
	countries := []string{profile.InitialCountry}
	for _, event := range profile.Events {
		if event.MoveTo != "" {
			countries = append(countries, event.MoveTo)
		}
	}
	for _, country := range countries {
		if strings.ContainsAny(rules.Key(country), `/\`) {
			return fmt.Errorf("profile validation failed: %w: country %q", domain.ErrInvalidProfile, country)
		}
	}
	return nil
}

// LoadMarket loads market parameters from a YAML file. Classes missing from
// the file keep their value from defaults.
func (ip *InputParser) LoadMarket(filename string, defaults domain.MarketParameters) (domain.MarketParameters, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	var file marketFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	params := make(domain.MarketParameters, len(defaults)+len(file.Market))
	for class, ret := range defaults {
		params[class] = ret
	}
	for class, ret := range file.Market {
		if ret.Volatility.IsNegative() {
			return nil, fmt.Errorf("market validation failed: %s: volatility cannot be negative", class)
		}
		params[class] = ret
	}
	return params, nil
}
