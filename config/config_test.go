package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sartorproj/arimasearch/autoarima"
	"github.com/sartorproj/arimasearch/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "arimasearch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default config is valid", func(*Config) {}, false},
		{"bad criterion", func(c *Config) { c.Search.Criterion = "hqic" }, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "trace" }, true},
		{"bad output format", func(c *Config) { c.Output.Format = "xml" }, true},
		{"empty value column", func(c *Config) { c.Input.ValueColumn = "" }, true},
		{"filter without id column", func(c *Config) { c.Input.IDFilter = "A" }, true},
		{"filter with id column", func(c *Config) { c.Input.IDColumn, c.Input.IDFilter = "unique_id", "A" }, false},
		{"holdout beyond horizon", func(c *Config) { c.Input.Holdout = 13 }, true},
		{"holdout within horizon", func(c *Config) { c.Input.Holdout = 12 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
search:
  p_range: [0, 1, 2, 3]
  q_range: [0, 1]
  period: 12
  test: kpss
  criterion: bic
  stepwise: true
  workers: 4
  fit_timeout: 2s
  diagnostic_lags: [6, 12]
input:
  value_column: passengers
  holdout: 6
output:
  format: json
logging:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2, 3}, cfg.Search.PRange)
	assert.Equal(t, []int{0, 1}, cfg.Search.QRange)
	assert.Equal(t, 12, cfg.Search.Period)
	assert.Equal(t, stats.KPSSTest, cfg.Search.Test)
	assert.Equal(t, autoarima.BIC, cfg.Search.Criterion)
	assert.True(t, cfg.Search.Stepwise)
	assert.Equal(t, 4, cfg.Search.Workers)
	assert.Equal(t, 2*time.Second, cfg.Search.FitTimeout)
	assert.Equal(t, []int{6, 12}, cfg.Search.DiagnosticLags)
	assert.Equal(t, "passengers", cfg.Input.ValueColumn)
	assert.Equal(t, 6, cfg.Input.Holdout)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Unset keys keep their defaults.
	assert.Equal(t, 1, cfg.Search.MaxD)
	assert.Equal(t, 12, cfg.Search.Horizon)
	assert.InDelta(t, 0.95, cfg.Search.Confidence, 1e-12)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "search:\n  criterion: aic\n")
	t.Setenv("ARIMASEARCH_SEARCH_CRITERION", "aicc")
	t.Setenv("ARIMASEARCH_SEARCH_WORKERS", "3")
	t.Setenv("ARIMASEARCH_LOGGING_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, autoarima.AICc, cfg.Search.Criterion)
	assert.Equal(t, 3, cfg.Search.Workers)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "search:\n  criterion: hqic\n"))
	assert.ErrorContains(t, err, "invalid config")

	_, err = Load(writeConfig(t, "search: [unclosed\n"))
	assert.ErrorContains(t, err, "failed to read config")
}
