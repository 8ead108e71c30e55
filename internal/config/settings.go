package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Settings are process-wide options read from the environment
type Settings struct {
	RulesDir        string  `env:"FINANCE_RULES_DIR"`
	DBPath          string  `env:"FINANCE_DB_PATH"`
	LogLevel        string  `env:"FINANCE_LOG_LEVEL" envDefault:"info"`
	LogFormat       string  `env:"FINANCE_LOG_FORMAT" envDefault:"console"`
	Seed            int64   `env:"FINANCE_SEED"`
	WithdrawalRate  float64 `env:"FINANCE_WITHDRAWAL_RATE" envDefault:"0.04"`
	DrawDownPension bool    `env:"FINANCE_DRAW_DOWN_PENSION"`
	MarketFile      string  `env:"FINANCE_MARKET_FILE"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadSettings reads Settings from the environment after loading any
// dotenv files given. Missing dotenv files are ignored; variables already
// set in the environment win.
func LoadSettings(dotenvFiles ...string) (*Settings, error) {
	for _, file := range dotenvFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", file, err)
		}
	}

	var s Settings
	if err := ParseEnv(&s); err != nil {
		return nil, err
	}
	if s.WithdrawalRate < 0 || s.WithdrawalRate > 1 {
		return nil, fmt.Errorf("FINANCE_WITHDRAWAL_RATE must be between 0 and 1, got %v", s.WithdrawalRate)
	}
	return &s, nil
}
