package arima

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"github.com/sartorproj/arimasearch/stats"
	"github.com/sartorproj/arimasearch/timeseries"
)

// Status is the outcome of one fit attempt.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// ReasonTimeout is the failure reason recorded when a fit exceeds its
// time limit.
const ReasonTimeout = "timeout"

// Model is a fitted model that can be extrapolated. Forecast returns point
// forecasts on the original scale together with the standard error of each
// step.
type Model interface {
	Order() Order
	Forecast(steps int) (mean, stdErr []float64, err error)
}

// Estimate is what an Estimator produces for one order.
type Estimate struct {
	Model     Model
	LogLik    float64
	NumParams int
	// Residuals cover the last len(Residuals) observations of the input.
	Residuals []float64
}

// Estimator fits a single order to a series.
type Estimator interface {
	Estimate(ctx context.Context, series *timeseries.Series, order Order) (*Estimate, error)
}

// EstimatorFunc adapts a function to the Estimator interface.
type EstimatorFunc func(ctx context.Context, series *timeseries.Series, order Order) (*Estimate, error)

// Estimate calls f.
func (f EstimatorFunc) Estimate(ctx context.Context, series *timeseries.Series, order Order) (*Estimate, error) {
	return f(ctx, series, order)
}

// FitResult records fitting one order to one series. Scores and residuals
// are set only when Status is StatusSuccess.
type FitResult struct {
	Order     Order              `json:"order" yaml:"order"`
	Status    Status             `json:"status" yaml:"status"`
	Reason    string             `json:"reason,omitempty" yaml:"reason,omitempty"`
	LogLik    float64            `json:"log_lik" yaml:"log_lik"`
	AIC       float64            `json:"aic" yaml:"aic"`
	AICc      float64            `json:"aicc" yaml:"aicc"`
	BIC       float64            `json:"bic" yaml:"bic"`
	NumParams int                `json:"num_params,omitempty" yaml:"num_params,omitempty"`
	Duration  time.Duration      `json:"duration" yaml:"duration"`
	Residuals *timeseries.Series `json:"-" yaml:"-"`
	Model     Model              `json:"-" yaml:"-"`
	Series    *timeseries.Series `json:"-" yaml:"-"`
}

// OK reports whether the fit succeeded.
func (r *FitResult) OK() bool {
	return r != nil && r.Status == StatusSuccess
}

// Fitter wraps an Estimator so that every failure mode becomes a FitResult.
type Fitter struct {
	estimator Estimator
	timeout   time.Duration
	logger    zerolog.Logger
}

// FitterOption configures a Fitter.
type FitterOption func(*Fitter)

// WithTimeout bounds each fit. Zero disables the limit.
func WithTimeout(d time.Duration) FitterOption {
	return func(f *Fitter) { f.timeout = d }
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) FitterOption {
	return func(f *Fitter) { f.logger = logger }
}

// NewFitter returns a Fitter that delegates to estimator.
func NewFitter(estimator Estimator, opts ...FitterOption) *Fitter {
	f := &Fitter{estimator: estimator, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fit fits order to series. It never returns an error: estimator errors,
// panics, non-finite likelihoods and timeouts are reported as
// StatusFailed, and a context that is already done yields StatusSkipped.
func (f *Fitter) Fit(ctx context.Context, series *timeseries.Series, order Order) (res *FitResult) {
	start := time.Now()
	res = &FitResult{Order: order, Series: series}
	defer func() {
		if r := recover(); r != nil {
			res = &FitResult{Order: order, Series: series, Status: StatusFailed, Reason: fmt.Sprintf("panic: %v", r)}
		}
		res.Duration = time.Since(start)
		f.logger.Debug().Str("order", order.String()).Str("status", string(res.Status)).
			Str("reason", res.Reason).Dur("duration", res.Duration).Msg("fit")
	}()

	if ctx.Err() != nil {
		return skipped(res, ctx.Err())
	}
	if err := order.Validate(); err != nil {
		return failed(res, err.Error())
	}
	if f.estimator == nil {
		return failed(res, "no estimator configured")
	}

	fitCtx := ctx
	if f.timeout > 0 {
		var cancel context.CancelFunc
		fitCtx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	est, err := f.estimator.Estimate(fitCtx, series, order)
	if err != nil {
		switch {
		case ctx.Err() != nil:
			return skipped(res, ctx.Err())
		case errors.Is(err, context.DeadlineExceeded), fitCtx.Err() != nil:
			return failed(res, ReasonTimeout)
		default:
			return failed(res, err.Error())
		}
	}
	if est == nil || est.Model == nil {
		return failed(res, "estimator returned no model")
	}
	if math.IsNaN(est.LogLik) || math.IsInf(est.LogLik, 0) {
		return failed(res, "non-finite log-likelihood")
	}
	resid, err := series.AlignTail(est.Residuals, "residuals")
	if err != nil {
		return failed(res, err.Error())
	}

	ic := stats.CalculateIC(est.LogLik, len(est.Residuals), est.NumParams)
	res.Status = StatusSuccess
	res.LogLik = ic.LogLik
	res.AIC = ic.AIC
	res.AICc = ic.AICc
	res.BIC = ic.BIC
	res.NumParams = est.NumParams
	res.Residuals = resid
	res.Model = est.Model
	return res
}

func failed(res *FitResult, reason string) *FitResult {
	res.Status = StatusFailed
	res.Reason = reason
	return res
}

func skipped(res *FitResult, err error) *FitResult {
	res.Status = StatusSkipped
	res.Reason = err.Error()
	return res
}
