package sarima

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/sartorproj/arimasearch/arima"
	"github.com/sartorproj/arimasearch/stats"
	"github.com/sartorproj/arimasearch/timeseries"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrTooShort is returned when too few observations remain after
// differencing and conditioning on the initial lags.
var ErrTooShort = errors.New("too few observations for order")

// minDOF is the number of observations the fit keeps beyond its parameters.
const minDOF = 2

// coefLimit bounds every ARMA coefficient during optimization.
const coefLimit = 0.99

// Estimator fits SARIMA orders by minimizing the conditional sum of squares
// with momentum gradient descent.
type Estimator struct {
	MaxIter      int
	Tolerance    float64
	LearningRate float64
	Momentum     float64
	Decay        float64
	// Patience is the number of iterations without improvement before
	// optimization stops.
	Patience int
}

// NewEstimator returns an Estimator with default optimizer settings.
func NewEstimator() *Estimator {
	return &Estimator{
		MaxIter:      300,
		Tolerance:    1e-10,
		LearningRate: 0.05,
		Momentum:     0.9,
		Decay:        0.99,
		Patience:     25,
	}
}

var _ arima.Estimator = (*Estimator)(nil)

// Estimate fits order to series. The context is checked between
// optimizer iterations.
func (e *Estimator) Estimate(ctx context.Context, series *timeseries.Series, order arima.Order) (*arima.Estimate, error) {
	if err := series.Validate(); err != nil {
		return nil, err
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}

	levels := differenceLevels(series.Values(), order)
	w := levels[len(levels)-1]
	start := order.MaxLag()
	k := order.NumParams()
	if len(w)-start < k+minDOF {
		return nil, fmt.Errorf("%w %s: %d observations after differencing, %d conditioning lags, %d parameters",
			ErrTooShort, order, len(w), start, k)
	}
	if stat.Variance(w, nil) == 0 {
		return nil, fmt.Errorf("%w: differenced series is constant", stats.ErrDegenerateSeries)
	}

	m := &Model{
		order:     order,
		levels:    levels,
		Intercept: stat.Mean(w, nil),
		AR:        make([]float64, order.P),
		MA:        make([]float64, order.Q),
		SAR:       make([]float64, order.Seasonal.P),
		SMA:       make([]float64, order.Seasonal.Q),
	}
	m.initialize(w)

	if err := e.optimize(ctx, m, w); err != nil {
		return nil, err
	}

	resid := m.residuals(w)
	sse := floats.Dot(resid[start:], resid[start:])
	nEff := len(w) - start
	if sse <= 0 || math.IsNaN(sse) || math.IsInf(sse, 0) {
		return nil, fmt.Errorf("%w: residual sum of squares %g", stats.ErrDegenerateSeries, sse)
	}
	m.Variance = sse / float64(nEff)
	m.resid = resid

	// Concentrated Gaussian log-likelihood.
	logLik := -float64(nEff) / 2 * (math.Log(2*math.Pi*m.Variance) + 1)

	return &arima.Estimate{
		Model:     m,
		LogLik:    logLik,
		NumParams: k,
		Residuals: append([]float64(nil), resid[start:]...),
	}, nil
}

// differenceLevels returns the input followed by each successive
// difference: d first differences, then D seasonal differences.
func differenceLevels(y []float64, order arima.Order) [][]float64 {
	levels := [][]float64{y}
	cur := y
	for i := 0; i < order.D; i++ {
		cur = lagDiff(cur, 1)
		levels = append(levels, cur)
	}
	for i := 0; i < order.Seasonal.D; i++ {
		cur = lagDiff(cur, order.Seasonal.S)
		levels = append(levels, cur)
	}
	return levels
}

func lagDiff(x []float64, lag int) []float64 {
	if len(x) <= lag {
		return nil
	}
	out := make([]float64, len(x)-lag)
	for i := lag; i < len(x); i++ {
		out[i-lag] = x[i] - x[i-lag]
	}
	return out
}

// initialize seeds the AR terms from the Yule-Walker solution and the
// seasonal AR terms from the seasonal autocorrelations.
func (m *Model) initialize(w []float64) {
	o := m.order
	for i := range m.MA {
		m.MA[i] = 0.1
	}
	for i := range m.SMA {
		m.SMA[i] = 0.1
	}

	maxLag := max(o.P, o.Seasonal.P*o.Seasonal.S)
	if maxLag == 0 || maxLag >= len(w) {
		return
	}
	acf, err := stats.ACF(timeseries.New(w), maxLag)
	if err != nil {
		return
	}
	if o.P > 0 {
		_, phi := stats.DurbinLevinson(acf, o.P)
		for i := range phi {
			m.AR[i] = clamp(phi[i])
		}
	}
	for i := range m.SAR {
		m.SAR[i] = clamp(0.5 * acf[(i+1)*o.Seasonal.S])
	}
}

// optimize runs momentum gradient descent on the conditional sum of
// squares. Gradients are scaled by the series variance so the step size
// does not depend on the units of the data.
func (e *Estimator) optimize(ctx context.Context, m *Model, w []float64) error {
	o := m.order
	n := len(w)
	start := o.MaxLag()
	scale := float64(n-start) * stat.Variance(w, nil)

	params := m.params()
	velocity := make([]float64, len(params))
	best := append([]float64(nil), params...)
	bestSSE := math.Inf(1)
	lr := e.LearningRate
	stale := 0

	for iter := 0; iter < e.MaxIter; iter++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		m.setParams(params)
		resid := m.residuals(w)
		sse := floats.Dot(resid[start:], resid[start:])
		if math.IsNaN(sse) || math.IsInf(sse, 0) {
			break
		}

		if sse < bestSSE-e.Tolerance {
			bestSSE = sse
			copy(best, params)
			stale = 0
		} else {
			stale++
			if stale > e.Patience {
				break
			}
		}
		if len(params) == 0 {
			break
		}

		grad := m.gradient(w, resid)
		for i := range params {
			velocity[i] = e.Momentum*velocity[i] + lr*grad[i]/scale
			params[i] = clamp(params[i] - velocity[i])
		}
		lr *= e.Decay
	}

	m.setParams(best)
	return nil
}

// gradient approximates d(SSE)/d(theta) treating lagged residuals as fixed.
func (m *Model) gradient(w, resid []float64) []float64 {
	o := m.order
	s := o.Seasonal.S
	grad := make([]float64, 0, o.NumParams()-1)
	mu := m.Intercept

	acc := func(lag int, x func(t int) float64) float64 {
		g := 0.0
		for t := o.MaxLag(); t < len(w); t++ {
			if t-lag >= 0 {
				g -= 2 * resid[t] * x(t-lag)
			}
		}
		return g
	}
	level := func(t int) float64 { return w[t] - mu }
	shock := func(t int) float64 { return resid[t] }

	for i := 1; i <= o.P; i++ {
		grad = append(grad, acc(i, level))
	}
	for i := 1; i <= o.Seasonal.P; i++ {
		grad = append(grad, acc(i*s, level))
	}
	for i := 1; i <= o.Q; i++ {
		grad = append(grad, acc(i, shock))
	}
	for i := 1; i <= o.Seasonal.Q; i++ {
		grad = append(grad, acc(i*s, shock))
	}
	return grad
}

func clamp(v float64) float64 {
	return math.Max(-coefLimit, math.Min(coefLimit, v))
}
