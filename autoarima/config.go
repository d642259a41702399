package autoarima

import (
	"fmt"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sartorproj/arimasearch/stats"
)

// Criterion selects the information criterion used for ranking.
type Criterion string

const (
	AIC  Criterion = "aic"
	AICc Criterion = "aicc"
	BIC  Criterion = "bic"
)

// Config is the search and forecasting configuration.
type Config struct {
	PRange         []int `mapstructure:"p_range" yaml:"p_range" validate:"required,min=1,dive,gte=0"`
	QRange         []int `mapstructure:"q_range" yaml:"q_range" validate:"required,min=1,dive,gte=0"`
	SeasonalPRange []int `mapstructure:"seasonal_p_range" yaml:"seasonal_p_range" validate:"omitempty,dive,gte=0"`
	SeasonalQRange []int `mapstructure:"seasonal_q_range" yaml:"seasonal_q_range" validate:"omitempty,dive,gte=0"`
	// Period is the seasonal period; 0 disables seasonal terms.
	Period       int            `mapstructure:"period" yaml:"period" validate:"gte=0,ne=1"`
	MaxD         int            `mapstructure:"max_d" yaml:"max_d" validate:"gte=0,lte=3"`
	MaxSeasonalD int            `mapstructure:"max_seasonal_d" yaml:"max_seasonal_d" validate:"gte=0,lte=2"`
	Test         stats.TestKind `mapstructure:"test" yaml:"test" validate:"oneof=adf kpss"`
	Significance float64        `mapstructure:"significance" yaml:"significance" validate:"gt=0,lt=1"`
	Criterion    Criterion      `mapstructure:"criterion" yaml:"criterion" validate:"oneof=aic aicc bic"`
	Stepwise     bool           `mapstructure:"stepwise" yaml:"stepwise"`
	Workers      int            `mapstructure:"workers" yaml:"workers" validate:"gte=1,lte=256"`
	FitTimeout   time.Duration  `mapstructure:"fit_timeout" yaml:"fit_timeout" validate:"gte=0"`

	Horizon        int     `mapstructure:"horizon" yaml:"horizon" validate:"gte=1"`
	Confidence     float64 `mapstructure:"confidence" yaml:"confidence" validate:"gt=0,lt=1"`
	Intervals      bool    `mapstructure:"intervals" yaml:"intervals"`
	DiagnosticLags []int   `mapstructure:"diagnostic_lags" yaml:"diagnostic_lags" validate:"required,min=1,dive,gte=1"`
}

// DefaultConfig returns the default configuration: a non-seasonal search
// over p, q in {0, 1, 2} with at most one difference, ranked by AIC.
func DefaultConfig() Config {
	return Config{
		PRange:         []int{0, 1, 2},
		QRange:         []int{0, 1, 2},
		SeasonalPRange: []int{0, 1},
		SeasonalQRange: []int{0, 1},
		MaxD:           1,
		MaxSeasonalD:   1,
		Test:           stats.ADFTest,
		Significance:   stats.DefaultSignificance,
		Criterion:      AIC,
		Workers:        1,
		Horizon:        12,
		Confidence:     0.95,
		Intervals:      true,
		DiagnosticLags: []int{10},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid search config: %w", err)
	}
	return nil
}

// Seasonal reports whether seasonal terms are searched.
func (c Config) Seasonal() bool { return c.Period > 1 }

// Grid builds the search grid for the given differencing orders.
func (c Config) Grid(d, sd int) Grid {
	g := Grid{P: c.PRange, D: []int{d}, Q: c.QRange}
	if c.Seasonal() {
		g.Seasonal = &SeasonalGrid{
			P:      orZero(c.SeasonalPRange),
			D:      []int{sd},
			Q:      orZero(c.SeasonalQRange),
			Period: c.Period,
		}
	}
	return g
}

// Bounds returns the stepwise search limits for the given differencing
// orders.
func (c Config) Bounds(d, sd int) Bounds {
	b := Bounds{MaxP: maxOf(c.PRange), MaxQ: maxOf(c.QRange), D: d}
	if c.Seasonal() {
		b.Seasonal = &SeasonalBounds{
			MaxP:   maxOf(orZero(c.SeasonalPRange)),
			MaxQ:   maxOf(orZero(c.SeasonalQRange)),
			D:      sd,
			Period: c.Period,
		}
	}
	return b
}

// Tester returns the stationarity tester described by the config.
func (c Config) Tester() stats.Tester {
	t := stats.NewTester()
	t.Kind = c.Test
	t.Threshold = c.Significance
	return t
}

// EngineOptions translates the config into Engine options.
func (c Config) EngineOptions() []Option {
	return []Option{
		WithTester(c.Tester()),
		WithCriterion(c.Criterion),
		WithWorkers(c.Workers),
		WithFitTimeout(c.FitTimeout),
	}
}

func orZero(values []int) []int {
	if len(values) == 0 {
		return []int{0}
	}
	return values
}

func maxOf(values []int) int {
	if len(values) == 0 {
		return 0
	}
	return slices.Max(values)
}
