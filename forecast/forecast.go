// Package forecast turns a fitted model into dated point forecasts with
// optional Gaussian prediction intervals.
package forecast

import (
	"errors"
	"fmt"
	"time"

	"github.com/sartorproj/arimasearch/arima"
	"gonum.org/v1/gonum/stat/distuv"
)

var (
	// ErrInvalidModel is returned when forecasting from a missing or
	// unsuccessful fit.
	ErrInvalidModel = errors.New("invalid model")
	// ErrInvalidHorizon is returned for horizons below 1.
	ErrInvalidHorizon = errors.New("invalid forecast horizon")
)

// DefaultConfidence is the default prediction interval coverage.
const DefaultConfidence = 0.95

// Point is one forecast step. Lower and Upper are meaningful only when the
// result has intervals.
type Point struct {
	Time   time.Time `json:"time" yaml:"time"`
	Value  float64   `json:"value" yaml:"value"`
	StdErr float64   `json:"std_err" yaml:"std_err"`
	Lower  float64   `json:"lower" yaml:"lower"`
	Upper  float64   `json:"upper" yaml:"upper"`
}

// Result holds the forecast for a fixed horizon.
type Result struct {
	Order        arima.Order `json:"order" yaml:"order"`
	Points       []Point     `json:"points" yaml:"points"`
	HasIntervals bool        `json:"has_intervals" yaml:"has_intervals"`
	Confidence   float64     `json:"confidence,omitempty" yaml:"confidence,omitempty"`
}

// Values returns the point forecasts.
func (r *Result) Values() []float64 {
	out := make([]float64, len(r.Points))
	for i, p := range r.Points {
		out[i] = p.Value
	}
	return out
}

// Forecaster produces forecasts from fitted models.
type Forecaster struct {
	intervals  bool
	confidence float64
}

// Option configures a Forecaster.
type Option func(*Forecaster)

// WithIntervals enables or disables prediction intervals.
func WithIntervals(enabled bool) Option {
	return func(f *Forecaster) { f.intervals = enabled }
}

// WithConfidence sets the interval coverage, in (0, 1).
func WithConfidence(level float64) Option {
	return func(f *Forecaster) { f.confidence = level }
}

// New returns a Forecaster that produces 95% intervals unless configured
// otherwise.
func New(opts ...Option) *Forecaster {
	f := &Forecaster{intervals: true, confidence: DefaultConfidence}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Forecast extrapolates fit for horizon steps. Timestamps continue the
// source series at its sampling frequency. Intervals are value ± z·se with
// z the standard normal quantile of the configured confidence.
func (f *Forecaster) Forecast(fit *arima.FitResult, horizon int) (*Result, error) {
	if !fit.OK() || fit.Model == nil || fit.Series == nil {
		return nil, ErrInvalidModel
	}
	if horizon < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidHorizon, horizon)
	}
	if f.intervals && (f.confidence <= 0 || f.confidence >= 1) {
		return nil, fmt.Errorf("confidence must be in (0, 1), got %g", f.confidence)
	}

	mean, se, err := fit.Model.Forecast(horizon)
	if err != nil {
		return nil, fmt.Errorf("forecast %s: %w", fit.Order, err)
	}
	if len(mean) != horizon || len(se) != horizon {
		return nil, fmt.Errorf("%w: model returned %d values for horizon %d", ErrInvalidModel, len(mean), horizon)
	}

	freq := fit.Series.Frequency()
	last := fit.Series.Last()
	res := &Result{Order: fit.Order, Points: make([]Point, horizon), HasIntervals: f.intervals}

	z := 0.0
	if f.intervals {
		res.Confidence = f.confidence
		z = distuv.UnitNormal.Quantile((1 + f.confidence) / 2)
	}
	for h := range horizon {
		p := Point{Time: freq.Add(last, h+1), Value: mean[h], StdErr: se[h]}
		if f.intervals {
			p.Lower = mean[h] - z*se[h]
			p.Upper = mean[h] + z*se[h]
		}
		res.Points[h] = p
	}
	return res, nil
}
