// Package diagnostics runs the post-selection residual checks on a fitted
// model: stationarity, Ljung-Box independence, autocorrelations and a
// Jarque-Bera normality test.
package diagnostics

import (
	"fmt"
	"slices"

	"github.com/sartorproj/arimasearch/stats"
	"github.com/sartorproj/arimasearch/timeseries"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// LagTest is a Ljung-Box result at one lag.
type LagTest struct {
	Lag       int     `json:"lag" yaml:"lag"`
	Statistic float64 `json:"statistic" yaml:"statistic"`
	PValue    float64 `json:"p_value" yaml:"p_value"`
	DOF       int     `json:"dof" yaml:"dof"`
}

// Normality is the Jarque-Bera test on residuals.
type Normality struct {
	Skewness       float64 `json:"skewness" yaml:"skewness"`
	ExcessKurtosis float64 `json:"excess_kurtosis" yaml:"excess_kurtosis"`
	Statistic      float64 `json:"statistic" yaml:"statistic"`
	PValue         float64 `json:"p_value" yaml:"p_value"`
}

// Report is the result of Diagnose. When the stationarity test cannot be
// computed, Stationarity is nil and StationarityErr holds the reason.
type Report struct {
	Stationarity    *stats.Result `json:"stationarity,omitempty" yaml:"stationarity,omitempty"`
	StationarityErr string        `json:"stationarity_error,omitempty" yaml:"stationarity_error,omitempty"`
	LjungBox        []LagTest     `json:"ljung_box" yaml:"ljung_box"`
	ACF             []float64     `json:"acf" yaml:"acf"`
	ConfBound       float64       `json:"conf_bound" yaml:"conf_bound"`
	Normality       *Normality    `json:"normality,omitempty" yaml:"normality,omitempty"`
}

// SignificantLags returns the ACF lags outside the white-noise bound.
func (r *Report) SignificantLags() []int {
	return stats.SignificantLags(r.ACF, r.ConfBound)
}

// Options tune Diagnose.
type Options struct {
	Tester stats.StationarityTester
	// FitDF is subtracted from the Ljung-Box degrees of freedom.
	FitDF int
	// Confidence sets the ACF white-noise bound.
	Confidence float64
}

// DefaultOptions returns ADF at 5% and a 95% ACF bound.
func DefaultOptions() Options {
	return Options{Tester: stats.NewTester(), Confidence: 0.95}
}

// Diagnose checks residuals at the given lags. ACF values cover lags 0
// through max(lags).
func Diagnose(residuals *timeseries.Series, lags []int, opts Options) (*Report, error) {
	if residuals == nil || residuals.Len() == 0 {
		return nil, fmt.Errorf("%w: empty residuals", timeseries.ErrInvalidInput)
	}
	if len(lags) == 0 {
		return nil, fmt.Errorf("%w: no lags given", timeseries.ErrInvalidInput)
	}
	sorted := slices.Clone(lags)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	if sorted[0] < 1 {
		return nil, fmt.Errorf("%w: lags must be positive, got %d", timeseries.ErrInvalidInput, sorted[0])
	}
	maxLag := sorted[len(sorted)-1]
	if maxLag >= residuals.Len() {
		return nil, fmt.Errorf("%w: lag %d with %d residuals", stats.ErrInsufficientData, maxLag, residuals.Len())
	}
	if opts.Tester == nil {
		opts.Tester = stats.NewTester()
	}
	if opts.Confidence <= 0 || opts.Confidence >= 1 {
		opts.Confidence = 0.95
	}

	report := &Report{ConfBound: stats.ConfidenceBound(residuals.Len(), opts.Confidence)}

	if res, err := opts.Tester.Test(residuals); err != nil {
		report.StationarityErr = err.Error()
	} else {
		report.Stationarity = res
	}

	acf, err := stats.ACF(residuals, maxLag)
	if err != nil {
		return nil, err
	}
	report.ACF = acf

	for _, lag := range sorted {
		lb, err := stats.LjungBox(residuals, lag, opts.FitDF)
		if err != nil {
			return nil, err
		}
		report.LjungBox = append(report.LjungBox, LagTest{Lag: lag, Statistic: lb.Statistic, PValue: lb.PValue, DOF: lb.DOF})
	}

	report.Normality = jarqueBera(residuals.Values())
	return report, nil
}

func jarqueBera(x []float64) *Normality {
	if len(x) < 4 {
		return nil
	}
	n := float64(len(x))
	skew := stat.Skew(x, nil)
	kurt := stat.ExKurtosis(x, nil)
	jb := n / 6 * (skew*skew + kurt*kurt/4)
	return &Normality{
		Skewness:       skew,
		ExcessKurtosis: kurt,
		Statistic:      jb,
		PValue:         distuv.ChiSquared{K: 2}.Survival(jb),
	}
}
