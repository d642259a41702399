// Package config loads the arimasearch configuration from a YAML file and
// ARIMASEARCH_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sartorproj/arimasearch/autoarima"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. ARIMASEARCH_SEARCH_CRITERION.
const EnvPrefix = "ARIMASEARCH"

// Config is the top-level configuration.
type Config struct {
	Search  autoarima.Config `mapstructure:"search" yaml:"search"`
	Input   InputConfig      `mapstructure:"input" yaml:"input"`
	Output  OutputConfig     `mapstructure:"output" yaml:"output"`
	Logging LoggingConfig    `mapstructure:"logging" yaml:"logging"`
}

// InputConfig describes how the input CSV is read.
type InputConfig struct {
	ValueColumn string `mapstructure:"value_column" yaml:"value_column" validate:"required"`
	DateColumn  string `mapstructure:"date_column" yaml:"date_column"`
	DateFormat  string `mapstructure:"date_format" yaml:"date_format"`
	IDColumn    string `mapstructure:"id_column" yaml:"id_column"`
	IDFilter    string `mapstructure:"id_filter" yaml:"id_filter"`
	// Holdout is the number of trailing observations withheld from the
	// search and used to score the forecast.
	Holdout int `mapstructure:"holdout" yaml:"holdout" validate:"gte=0"`
}

// OutputConfig controls the report.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=yaml json"`
	// Path of the report; empty writes to stdout.
	Path string `mapstructure:"path" yaml:"path"`
	// ResidualsPath, when set, receives the winning model's residuals as CSV.
	ResidualsPath string `mapstructure:"residuals_path" yaml:"residuals_path"`
}

// LoggingConfig controls the logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=json console"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		Search: autoarima.DefaultConfig(),
		Input: InputConfig{
			ValueColumn: "y",
			DateFormat:  "2006-01-02",
		},
		Output: OutputConfig{
			Format: "yaml",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate checks every section and the constraints that span sections.
func (c *Config) Validate() error {
	if err := c.Search.Validate(); err != nil {
		return err
	}
	if err := validate.Struct(c.Input); err != nil {
		return fmt.Errorf("input: %w", err)
	}
	if err := validate.Struct(c.Output); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	if err := validate.Struct(c.Logging); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if c.Input.IDFilter != "" && c.Input.IDColumn == "" {
		return errors.New("input.id_filter requires input.id_column")
	}
	if c.Input.Holdout > 0 && c.Input.Holdout > c.Search.Horizon {
		return fmt.Errorf("input.holdout (%d) cannot exceed search.horizon (%d)", c.Input.Holdout, c.Search.Horizon)
	}
	return nil
}

// Load reads configuration from path, or from ./arimasearch.yaml or
// ./config/arimasearch.yaml when path is empty. A missing default file is
// not an error. Environment variables override file values.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("arimasearch")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// setDefaults registers every key so that environment overrides apply
// even when the file omits it.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("search.p_range", d.Search.PRange)
	v.SetDefault("search.q_range", d.Search.QRange)
	v.SetDefault("search.seasonal_p_range", d.Search.SeasonalPRange)
	v.SetDefault("search.seasonal_q_range", d.Search.SeasonalQRange)
	v.SetDefault("search.period", d.Search.Period)
	v.SetDefault("search.max_d", d.Search.MaxD)
	v.SetDefault("search.max_seasonal_d", d.Search.MaxSeasonalD)
	v.SetDefault("search.test", string(d.Search.Test))
	v.SetDefault("search.significance", d.Search.Significance)
	v.SetDefault("search.criterion", string(d.Search.Criterion))
	v.SetDefault("search.stepwise", d.Search.Stepwise)
	v.SetDefault("search.workers", d.Search.Workers)
	v.SetDefault("search.fit_timeout", d.Search.FitTimeout)
	v.SetDefault("search.horizon", d.Search.Horizon)
	v.SetDefault("search.confidence", d.Search.Confidence)
	v.SetDefault("search.intervals", d.Search.Intervals)
	v.SetDefault("search.diagnostic_lags", d.Search.DiagnosticLags)

	v.SetDefault("input.value_column", d.Input.ValueColumn)
	v.SetDefault("input.date_column", d.Input.DateColumn)
	v.SetDefault("input.date_format", d.Input.DateFormat)
	v.SetDefault("input.id_column", d.Input.IDColumn)
	v.SetDefault("input.id_filter", d.Input.IDFilter)
	v.SetDefault("input.holdout", d.Input.Holdout)

	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.path", d.Output.Path)
	v.SetDefault("output.residuals_path", d.Output.ResidualsPath)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
}
