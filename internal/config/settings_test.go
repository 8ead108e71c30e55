package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envTestConfig struct {
	Port int `env:"FINANCE_TEST_PORT" envDefault:"123"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	require.NoError(t, ParseEnv(&cfg))
	assert.Equal(t, 123, cfg.Port)
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("FINANCE_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "parse env:"), "got %v", err)
}

func TestLoadSettings_Defaults(t *testing.T) {
	s, err := LoadSettings(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "info", s.LogLevel)
	assert.Equal(t, "console", s.LogFormat)
	assert.Equal(t, 0.04, s.WithdrawalRate)
	assert.False(t, s.DrawDownPension)
}

func TestLoadSettings_FromEnvironment(t *testing.T) {
	t.Setenv("FINANCE_RULES_DIR", "/srv/rules")
	t.Setenv("FINANCE_SEED", "99")
	t.Setenv("FINANCE_DRAW_DOWN_PENSION", "true")
	t.Setenv("FINANCE_WITHDRAWAL_RATE", "0.035")

	s, err := LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, "/srv/rules", s.RulesDir)
	assert.Equal(t, int64(99), s.Seed)
	assert.True(t, s.DrawDownPension)
	assert.Equal(t, 0.035, s.WithdrawalRate)
}

func TestLoadSettings_Dotenv(t *testing.T) {
	path := writeFile(t, ".env", "FINANCE_DB_PATH=/tmp/from-file.db\nFINANCE_LOG_LEVEL=debug\n")
	t.Setenv("FINANCE_LOG_LEVEL", "warn")
	// registers restoration of the variable godotenv is about to set
	t.Setenv("FINANCE_DB_PATH", "")
	require.NoError(t, os.Unsetenv("FINANCE_DB_PATH"))

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/from-file.db", s.DBPath)
	assert.Equal(t, "warn", s.LogLevel, "environment wins over the dotenv file")
}

func TestLoadSettings_InvalidWithdrawalRate(t *testing.T) {
	t.Setenv("FINANCE_WITHDRAWAL_RATE", "1.5")

	_, err := LoadSettings()
	assert.Error(t, err)
}
