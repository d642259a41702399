package stats

import (
	"fmt"
	"math"

	"github.com/sartorproj/arimasearch/timeseries"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ACF calculates the sample autocorrelation function for lags 0..maxLag.
func ACF(series *timeseries.Series, maxLag int) ([]float64, error) {
	if series == nil || series.Len() == 0 {
		return nil, fmt.Errorf("%w: empty series", timeseries.ErrInvalidInput)
	}
	if maxLag < 0 {
		return nil, fmt.Errorf("%w: negative lag %d", timeseries.ErrInvalidInput, maxLag)
	}
	if maxLag >= series.Len() {
		return nil, fmt.Errorf("%w: lag %d needs more than %d observations", ErrInsufficientData, maxLag, series.Len())
	}
	acf := autocorrelations(series.Values(), maxLag)
	if acf == nil {
		return nil, fmt.Errorf("%w: zero variance", ErrDegenerateSeries)
	}
	return acf, nil
}

// autocorrelations returns nil for a constant input.
func autocorrelations(values []float64, maxLag int) []float64 {
	n := len(values)
	mean := stat.Mean(values, nil)

	denom := 0.0
	for _, v := range values {
		d := v - mean
		denom += d * d
	}
	if denom == 0 {
		return nil
	}

	acf := make([]float64, maxLag+1)
	for k := 0; k <= maxLag; k++ {
		sum := 0.0
		for i := k; i < n; i++ {
			sum += (values[i] - mean) * (values[i-k] - mean)
		}
		acf[k] = sum / denom
	}
	return acf
}

// PACF calculates the partial autocorrelation function for lags 0..maxLag
// with the Durbin-Levinson recursion. The value at lag 0 is 1.
func PACF(series *timeseries.Series, maxLag int) ([]float64, error) {
	acf, err := ACF(series, maxLag)
	if err != nil {
		return nil, err
	}
	pacf, _ := DurbinLevinson(acf, maxLag)
	return pacf, nil
}

// DurbinLevinson solves the Yule-Walker equations of order p from the
// autocorrelations acf[0..p]. It returns the partial autocorrelations
// (index 0 is 1) and the AR coefficients phi[0..p-1] of the order-p fit.
func DurbinLevinson(acf []float64, p int) (pacf, phi []float64) {
	p = min(p, len(acf)-1)
	if p < 1 {
		return []float64{1}, nil
	}

	pacf = make([]float64, p+1)
	pacf[0] = 1

	prev := make([]float64, p+1)
	curr := make([]float64, p+1)
	v := acf[0]
	for k := 1; k <= p; k++ {
		num := acf[k]
		for j := 1; j < k; j++ {
			num -= prev[j] * acf[k-j]
		}
		if v <= 0 {
			break
		}
		kk := num / v
		curr[k] = kk
		for j := 1; j < k; j++ {
			curr[j] = prev[j] - kk*prev[k-j]
		}
		pacf[k] = kk
		v *= 1 - kk*kk
		copy(prev, curr)
	}

	phi = make([]float64, p)
	copy(phi, prev[1:])
	return pacf, phi
}

// ConfidenceBound returns the two-sided white-noise bound z/sqrt(n) for
// autocorrelations at the given confidence level.
func ConfidenceBound(n int, confidence float64) float64 {
	if n <= 0 {
		return math.NaN()
	}
	z := distuv.UnitNormal.Quantile((1 + confidence) / 2)
	return z / math.Sqrt(float64(n))
}

// SignificantLags returns the lags (excluding 0) whose values exceed bound.
func SignificantLags(values []float64, bound float64) []int {
	var significant []int
	for i := 1; i < len(values); i++ {
		if math.Abs(values[i]) > bound {
			significant = append(significant, i)
		}
	}
	return significant
}
