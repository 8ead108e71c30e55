package domain

import "github.com/shopspring/decimal"

// AssetReturn holds the return distribution of one asset class
type AssetReturn struct {
	ExpectedReturn decimal.Decimal `yaml:"expected_return" json:"expectedReturn"`
	Volatility     decimal.Decimal `yaml:"volatility" json:"volatility"`
}

// MarketParameters maps asset class (including the pension and inflation
// pseudo-classes) to its return distribution. Shared read-only across runs.
type MarketParameters map[string]AssetReturn
