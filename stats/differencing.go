package stats

import (
	"github.com/rs/zerolog"
	"github.com/sartorproj/arimasearch/timeseries"
)

// Selector picks the integration order of a series by repeatedly testing
// for stationarity and differencing until the test passes.
type Selector struct {
	Tester StationarityTester
	Logger zerolog.Logger
}

// NewSelector returns a Selector backed by the given tester.
func NewSelector(tester StationarityTester, logger zerolog.Logger) *Selector {
	if tester == nil {
		tester = NewTester()
	}
	return &Selector{Tester: tester, Logger: logger}
}

// SelectD returns the number of first differences, at most maxD, needed
// to make the series stationary. It returns maxD when stationarity is never
// reached. A test that cannot be computed stops the search at the current
// order.
func (s *Selector) SelectD(series *timeseries.Series, maxD int) (int, error) {
	if err := series.Validate(); err != nil {
		return 0, err
	}
	return s.selectOrder(series, maxD, "d", func(x *timeseries.Series) *timeseries.Series {
		return x.Diff()
	}), nil
}

// SelectSeasonalD is SelectD with lag-period differencing.
func (s *Selector) SelectSeasonalD(series *timeseries.Series, period, maxD int) (int, error) {
	if err := series.Validate(); err != nil {
		return 0, err
	}
	if period <= 1 {
		return 0, nil
	}
	return s.selectOrder(series, maxD, "D", func(x *timeseries.Series) *timeseries.Series {
		return x.SeasonalDiff(period)
	}), nil
}

func (s *Selector) selectOrder(series *timeseries.Series, maxD int, label string, diff func(*timeseries.Series) *timeseries.Series) int {
	current := series
	for d := 0; d < maxD; d++ {
		res, err := s.Tester.Test(current)
		if err != nil {
			s.Logger.Warn().Err(err).Str("order", label).Int("value", d).Int("n", current.Len()).
				Msg("stationarity undetermined, stopping differencing")
			return d
		}
		s.Logger.Debug().Str("order", label).Int("value", d).Float64("p_value", res.PValue).
			Bool("stationary", res.IsStationary).Msg("stationarity test")
		if res.IsStationary {
			return d
		}
		current = diff(current)
	}
	return max(maxD, 0)
}
