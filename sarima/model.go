package sarima

import (
	"fmt"
	"math"

	"github.com/sartorproj/arimasearch/arima"
)

// Model is a fitted SARIMA model. The seasonal and non-seasonal ARMA terms
// act additively on the differenced series.
type Model struct {
	AR        []float64 // non-seasonal AR coefficients
	MA        []float64 // non-seasonal MA coefficients
	SAR       []float64 // seasonal AR coefficients
	SMA       []float64 // seasonal MA coefficients
	Intercept float64   // mean of the differenced series
	Variance  float64   // innovation variance

	order arima.Order
	// levels[0] is the input, levels[i] the series after i differences.
	levels [][]float64
	resid  []float64
}

var _ arima.Model = (*Model)(nil)

// Order returns the fitted order.
func (m *Model) Order() arima.Order { return m.order }

// Residuals returns the one-step residuals on the differenced scale,
// zero over the conditioning lags.
func (m *Model) Residuals() []float64 {
	return append([]float64(nil), m.resid...)
}

func (m *Model) params() []float64 {
	out := make([]float64, 0, len(m.AR)+len(m.SAR)+len(m.MA)+len(m.SMA))
	out = append(out, m.AR...)
	out = append(out, m.SAR...)
	out = append(out, m.MA...)
	return append(out, m.SMA...)
}

func (m *Model) setParams(p []float64) {
	n := copy(m.AR, p)
	n += copy(m.SAR, p[n:])
	n += copy(m.MA, p[n:])
	copy(m.SMA, p[n:])
}

// predict returns the one-step prediction of w[t] given w and shocks
// before t.
func (m *Model) predict(w, shocks []float64, t int) float64 {
	s := m.order.Seasonal.S
	mu := m.Intercept
	pred := mu
	for i, c := range m.AR {
		pred += c * (w[t-i-1] - mu)
	}
	for i, c := range m.SAR {
		pred += c * (w[t-(i+1)*s] - mu)
	}
	for i, c := range m.MA {
		pred += c * shocks[t-i-1]
	}
	for i, c := range m.SMA {
		pred += c * shocks[t-(i+1)*s]
	}
	return pred
}

// residuals runs the recursion over w, conditioning on zero shocks before
// the maximum lag.
func (m *Model) residuals(w []float64) []float64 {
	resid := make([]float64, len(w))
	for t := m.order.MaxLag(); t < len(w); t++ {
		resid[t] = w[t] - m.predict(w, resid, t)
	}
	return resid
}

// Forecast returns point forecasts for the next steps observations on the
// original scale and the standard error of each step.
func (m *Model) Forecast(steps int) (mean, stdErr []float64, err error) {
	if steps < 1 {
		return nil, nil, fmt.Errorf("steps must be at least 1, got %d", steps)
	}
	if len(m.levels) == 0 {
		return nil, nil, fmt.Errorf("model is not fitted")
	}

	top := m.levels[len(m.levels)-1]
	n := len(top)
	w := append(append([]float64(nil), top...), make([]float64, steps)...)
	shocks := append(append([]float64(nil), m.resid...), make([]float64, steps)...)
	for t := n; t < n+steps; t++ {
		w[t] = m.predict(w, shocks, t)
	}

	mean = m.integrate(w[n:])
	stdErr = make([]float64, steps)
	acc := 0.0
	for h, psi := range m.psiWeights(steps) {
		acc += psi * psi
		stdErr[h] = math.Sqrt(m.Variance * acc)
	}
	return mean, stdErr, nil
}

// integrate undoes each differencing level in turn, from the most
// differenced series back to the input.
func (m *Model) integrate(fc []float64) []float64 {
	o := m.order
	out := append([]float64(nil), fc...)
	for lvl := len(m.levels) - 1; lvl >= 1; lvl-- {
		lag := 1
		if lvl > o.D {
			lag = o.Seasonal.S
		}
		hist := m.levels[lvl-1]
		next := make([]float64, len(out))
		for h := range out {
			idx := len(hist) + h - lag
			if idx < len(hist) {
				next[h] = out[h] + hist[idx]
			} else {
				next[h] = out[h] + next[idx-len(hist)]
			}
		}
		out = next
	}
	return out
}

// psiWeights returns the first k MA(inf) weights of the full model
// including the differencing operators.
func (m *Model) psiWeights(k int) []float64 {
	o := m.order
	s := o.Seasonal.S

	ar := []float64{1}
	ar = addTerms(ar, m.AR, 1, -1)
	ar = addTerms(ar, m.SAR, s, -1)
	for i := 0; i < o.D; i++ {
		ar = polyMul(ar, []float64{1, -1})
	}
	if o.Seasonal.D > 0 {
		seasonal := make([]float64, s+1)
		seasonal[0], seasonal[s] = 1, -1
		for i := 0; i < o.Seasonal.D; i++ {
			ar = polyMul(ar, seasonal)
		}
	}

	ma := []float64{1}
	ma = addTerms(ma, m.MA, 1, 1)
	ma = addTerms(ma, m.SMA, s, 1)

	psi := make([]float64, k)
	for j := 0; j < k; j++ {
		v := coef(ma, j)
		for i := 1; i <= j; i++ {
			v -= coef(ar, i) * psi[j-i]
		}
		psi[j] = v
	}
	return psi
}

// addTerms adds sign*c[i] to the coefficient of B^((i+1)*stride).
func addTerms(poly, c []float64, stride int, sign float64) []float64 {
	for i, v := range c {
		deg := (i + 1) * stride
		for len(poly) <= deg {
			poly = append(poly, 0)
		}
		poly[deg] += sign * v
	}
	return poly
}

func polyMul(a, b []float64) []float64 {
	out := make([]float64, len(a)+len(b)-1)
	for i, x := range a {
		for j, y := range b {
			out[i+j] += x * y
		}
	}
	return out
}

func coef(poly []float64, i int) float64 {
	if i < len(poly) {
		return poly[i]
	}
	return 0
}
