package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// ErrUnknownPensionRuleKind is returned when a pension rule variant is not recognized.
var ErrUnknownPensionRuleKind = errors.New("unknown pension rule kind")

// Rule type discriminators used in country rule documents
const (
	RuleTypeBracket  = "bracket"
	RuleTypeFlat     = "flat"
	PensionFixedRate = "fixed"
	PensionAgeBanded = "age_banded"
)

// CountryTaxRules contains the full tax regime of one country.
// This is loaded from a per-country YAML document (embedded, file or database).
type CountryTaxRules struct {
	Country      string
	Currency     string
	IncomeTaxes  []IncomeComponent
	WealthTax    TaxRule // nil when the country levies no wealth tax
	CapitalGains CapitalGainsRates
	Pension      PensionRule
}

// TaxRule is either a BracketRule or a FlatRateRule.
type TaxRule interface {
	ruleType() string
}

// Bracket is one slice of a bracketed schedule. A nil Upper means unbounded.
type Bracket struct {
	Rate  decimal.Decimal  `yaml:"rate" json:"rate"`
	Lower decimal.Decimal  `yaml:"lower" json:"lower"`
	Upper *decimal.Decimal `yaml:"upper,omitempty" json:"upper,omitempty"`
}

// IsUnbounded reports whether the bracket extends to infinity.
func (b Bracket) IsUnbounded() bool {
	return b.Upper == nil
}

// BracketRule applies increasing marginal rates to successive slices of a base.
type BracketRule struct {
	Brackets []Bracket
}

func (BracketRule) ruleType() string { return RuleTypeBracket }

// FlatRateRule applies a single rate to the portion of a base above Threshold.
type FlatRateRule struct {
	Rate      decimal.Decimal
	Threshold decimal.Decimal
}

func (FlatRateRule) ruleType() string { return RuleTypeFlat }

// IncomeComponent is one named income levy
type IncomeComponent struct {
	Name string
	Rule TaxRule
}

// CapitalGainsRates maps asset class to rate. Missing classes are taxed at zero.
type CapitalGainsRates map[string]decimal.Decimal

// Rate returns the rate for an asset class, zero when absent
func (r CapitalGainsRates) Rate(assetClass string) decimal.Decimal {
	if rate, ok := r[assetClass]; ok {
		return rate
	}
	return decimal.Zero
}

// PensionRule is FixedRatePension, AgeBandedPension or UnknownPensionRule.
type PensionRule interface {
	pensionKind() string
}

// FixedRatePension contributes a fixed share of income from employee and employer.
type FixedRatePension struct {
	EmployeeRate decimal.Decimal
	EmployerRate decimal.Decimal
}

func (FixedRatePension) pensionKind() string { return PensionFixedRate }

// AgeBand is one pension band. A nil MaxAge matches any age.
type AgeBand struct {
	MaxAge *int            `yaml:"max_age,omitempty" json:"max_age,omitempty"`
	Rate   decimal.Decimal `yaml:"rate" json:"rate"`
}

// AgeBandedPension contributes a share of income that depends on age, up to an annual cap.
type AgeBandedPension struct {
	Bands     []AgeBand
	AnnualCap decimal.Decimal
}

func (AgeBandedPension) pensionKind() string { return PensionAgeBanded }

// UnknownPensionRule preserves a pension rule whose kind could not be recognized.
type UnknownPensionRule struct {
	Kind string
}

func (u UnknownPensionRule) pensionKind() string { return u.Kind }

// ruleDocument is the serialized form shared by income components and wealth tax rules
type ruleDocument struct {
	Name      string           `yaml:"name,omitempty"`
	Type      string           `yaml:"type"`
	Rate      *decimal.Decimal `yaml:"rate,omitempty"`
	Threshold *decimal.Decimal `yaml:"threshold,omitempty"`
	Brackets  []Bracket        `yaml:"brackets,omitempty"`
}

func (d ruleDocument) toRule() (TaxRule, error) {
	switch d.Type {
	case RuleTypeBracket:
		if len(d.Brackets) == 0 {
			return nil, fmt.Errorf("bracket rule requires at least one bracket")
		}
		if !d.Brackets[len(d.Brackets)-1].IsUnbounded() {
			return nil, fmt.Errorf("last bracket must be unbounded")
		}
		return BracketRule{Brackets: d.Brackets}, nil
	case RuleTypeFlat:
		if d.Rate == nil {
			return nil, fmt.Errorf("flat rule requires a rate")
		}
		rule := FlatRateRule{Rate: *d.Rate}
		if d.Threshold != nil {
			rule.Threshold = *d.Threshold
		}
		return rule, nil
	default:
		return nil, fmt.Errorf("unknown tax rule type %q", d.Type)
	}
}

func newRuleDocument(name string, rule TaxRule) ruleDocument {
	switch r := rule.(type) {
	case BracketRule:
		return ruleDocument{Name: name, Type: RuleTypeBracket, Brackets: r.Brackets}
	case FlatRateRule:
		rate, threshold := r.Rate, r.Threshold
		return ruleDocument{Name: name, Type: RuleTypeFlat, Rate: &rate, Threshold: &threshold}
	}
	return ruleDocument{Name: name}
}

type pensionDocument struct {
	Type         string           `yaml:"type"`
	EmployeeRate *decimal.Decimal `yaml:"employee_rate,omitempty"`
	EmployerRate *decimal.Decimal `yaml:"employer_rate,omitempty"`
	Bands        []AgeBand        `yaml:"bands,omitempty"`
	AnnualCap    *decimal.Decimal `yaml:"annual_cap,omitempty"`
}

func (d pensionDocument) toRule() (PensionRule, error) {
	switch d.Type {
	case PensionFixedRate:
		rule := FixedRatePension{}
		if d.EmployeeRate != nil {
			rule.EmployeeRate = *d.EmployeeRate
		}
		if d.EmployerRate != nil {
			rule.EmployerRate = *d.EmployerRate
		}
		return rule, nil
	case PensionAgeBanded:
		if len(d.Bands) == 0 {
			return nil, fmt.Errorf("age banded pension requires at least one band")
		}
		if d.Bands[len(d.Bands)-1].MaxAge != nil {
			return nil, fmt.Errorf("last pension band must not have a max_age")
		}
		if d.AnnualCap == nil {
			return nil, fmt.Errorf("age banded pension requires an annual_cap")
		}
		return AgeBandedPension{Bands: d.Bands, AnnualCap: *d.AnnualCap}, nil
	default:
		return UnknownPensionRule{Kind: d.Type}, nil
	}
}

func newPensionDocument(rule PensionRule) *pensionDocument {
	switch r := rule.(type) {
	case FixedRatePension:
		employee, employer := r.EmployeeRate, r.EmployerRate
		return &pensionDocument{Type: PensionFixedRate, EmployeeRate: &employee, EmployerRate: &employer}
	case AgeBandedPension:
		limit := r.AnnualCap
		return &pensionDocument{Type: PensionAgeBanded, Bands: r.Bands, AnnualCap: &limit}
	case UnknownPensionRule:
		return &pensionDocument{Type: r.Kind}
	}
	return nil
}

type countryDocument struct {
	Country      string            `yaml:"country"`
	Currency     string            `yaml:"currency,omitempty"`
	IncomeTaxes  []ruleDocument    `yaml:"income_taxes"`
	WealthTax    *ruleDocument     `yaml:"wealth_tax,omitempty"`
	CapitalGains CapitalGainsRates `yaml:"capital_gains,omitempty"`
	Pension      *pensionDocument  `yaml:"pension,omitempty"`
}

// UnmarshalYAML decodes the tagged rule variants by their type field
func (c *CountryTaxRules) UnmarshalYAML(node *yaml.Node) error {
	var doc countryDocument
	if err := node.Decode(&doc); err != nil {
		return err
	}

	rules := CountryTaxRules{
		Country:      doc.Country,
		Currency:     doc.Currency,
		CapitalGains: doc.CapitalGains,
	}
	for i, component := range doc.IncomeTaxes {
		if component.Name == "" {
			return fmt.Errorf("income tax %d: name is required", i)
		}
		rule, err := component.toRule()
		if err != nil {
			return fmt.Errorf("income tax %s: %w", component.Name, err)
		}
		rules.IncomeTaxes = append(rules.IncomeTaxes, IncomeComponent{Name: component.Name, Rule: rule})
	}
	if doc.WealthTax != nil {
		rule, err := doc.WealthTax.toRule()
		if err != nil {
			return fmt.Errorf("wealth tax: %w", err)
		}
		rules.WealthTax = rule
	}
	if doc.Pension != nil {
		rule, err := doc.Pension.toRule()
		if err != nil {
			return fmt.Errorf("pension: %w", err)
		}
		rules.Pension = rule
	}
	if rules.CapitalGains == nil {
		rules.CapitalGains = CapitalGainsRates{}
	}

	*c = rules
	return nil
}

// MarshalYAML encodes the rules in the same document shape UnmarshalYAML reads
func (c CountryTaxRules) MarshalYAML() (interface{}, error) {
	doc := countryDocument{
		Country:      c.Country,
		Currency:     c.Currency,
		CapitalGains: c.CapitalGains,
		Pension:      newPensionDocument(c.Pension),
	}
	for _, component := range c.IncomeTaxes {
		doc.IncomeTaxes = append(doc.IncomeTaxes, newRuleDocument(component.Name, component.Rule))
	}
	if c.WealthTax != nil {
		wealth := newRuleDocument("", c.WealthTax)
		doc.WealthTax = &wealth
	}
	return doc, nil
}

// ParseCountryTaxRules decodes one country rule document
func ParseCountryTaxRules(data []byte) (*CountryTaxRules, error) {
	var rules CountryTaxRules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse country rules: %w", err)
	}
	if rules.Country == "" {
		return nil, fmt.Errorf("country is required")
	}
	return &rules, nil
}
