package autoarima

import (
	"context"
	"fmt"

	"github.com/sartorproj/arimasearch/diagnostics"
	"github.com/sartorproj/arimasearch/forecast"
	"github.com/sartorproj/arimasearch/stats"
	"github.com/sartorproj/arimasearch/timeseries"
)

// Result is the output of the full selection pipeline.
type Result struct {
	D           int                 `json:"d" yaml:"d"`
	SD          int                 `json:"seasonal_d" yaml:"seasonal_d"`
	Search      *SearchResult       `json:"search" yaml:"search"`
	Forecast    *forecast.Result    `json:"forecast,omitempty" yaml:"forecast,omitempty"`
	Diagnostics *diagnostics.Report `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// AutoARIMA picks the differencing orders, searches the configured orders,
// and forecasts and diagnoses the winner. Options override the engine
// settings derived from cfg.
//
// ErrNoViableModel is returned together with the search trace when no
// candidate qualifies.
func AutoARIMA(ctx context.Context, series *timeseries.Series, cfg Config, opts ...Option) (*Result, error) {
	if err := series.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	engine := NewEngine(append(cfg.EngineOptions(), opts...)...)
	selector := stats.NewSelector(engine.tester, engine.logger)

	res := &Result{}
	working := series
	if cfg.Seasonal() {
		sd, err := selector.SelectSeasonalD(series, cfg.Period, cfg.MaxSeasonalD)
		if err != nil {
			return nil, err
		}
		res.SD = sd
		for range sd {
			working = working.SeasonalDiff(cfg.Period)
		}
	}
	d, err := selector.SelectD(working, cfg.MaxD)
	if err != nil {
		return nil, err
	}
	res.D = d
	engine.logger.Info().Int("d", res.D).Int("seasonal_d", res.SD).Int("n", series.Len()).Msg("differencing selected")

	if cfg.Stepwise {
		res.Search, err = engine.Stepwise(ctx, series, cfg.Bounds(res.D, res.SD))
	} else {
		res.Search, err = engine.Search(ctx, series, cfg.Grid(res.D, res.SD))
	}
	if err != nil {
		return res, err
	}

	best := res.Search.Best
	fc := forecast.New(forecast.WithIntervals(cfg.Intervals), forecast.WithConfidence(cfg.Confidence))
	if res.Forecast, err = fc.Forecast(best, cfg.Horizon); err != nil {
		return res, fmt.Errorf("forecast %s: %w", res.Search.BestOrder, err)
	}

	// Lags that do not fit in the residual series are dropped.
	var lags []int
	for _, lag := range cfg.DiagnosticLags {
		if lag < best.Residuals.Len() {
			lags = append(lags, lag)
		}
	}
	if len(lags) == 0 {
		engine.logger.Warn().Int("residuals", best.Residuals.Len()).Ints("lags", cfg.DiagnosticLags).
			Msg("too few residuals for diagnostics")
		return res, nil
	}

	res.Diagnostics, err = diagnostics.Diagnose(best.Residuals, lags, diagnostics.Options{
		Tester:     engine.tester,
		FitDF:      best.Order.P + best.Order.Q + best.Order.Seasonal.P + best.Order.Seasonal.Q,
		Confidence: cfg.Confidence,
	})
	if err != nil {
		return res, fmt.Errorf("diagnose %s: %w", res.Search.BestOrder, err)
	}
	return res, nil
}
