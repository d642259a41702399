package stats

import (
	"fmt"

	"github.com/sartorproj/arimasearch/timeseries"
	"gonum.org/v1/gonum/stat/distuv"
)

// LjungBoxResult represents the result of a Ljung-Box test.
type LjungBoxResult struct {
	Statistic float64 `json:"statistic" yaml:"statistic"`
	PValue    float64 `json:"p_value" yaml:"p_value"`
	Lags      int     `json:"lags" yaml:"lags"`
	DOF       int     `json:"dof" yaml:"dof"`
}

// LjungBox performs the Ljung-Box test for autocorrelation up to lag h.
// The null hypothesis is no autocorrelation; a small p-value indicates
// residual structure. fitdf is subtracted from the degrees of freedom
// (p + q for ARMA residuals), which are kept at least 1.
func LjungBox(series *timeseries.Series, lags, fitdf int) (*LjungBoxResult, error) {
	if lags < 1 {
		return nil, fmt.Errorf("%w: lag must be positive, got %d", timeseries.ErrInvalidInput, lags)
	}
	acf, err := ACF(series, lags)
	if err != nil {
		return nil, err
	}
	n := series.Len()

	q := 0.0
	for k := 1; k <= lags; k++ {
		q += acf[k] * acf[k] / float64(n-k)
	}
	q *= float64(n) * float64(n+2)

	dof := max(lags-fitdf, 1)
	return &LjungBoxResult{
		Statistic: q,
		PValue:    distuv.ChiSquared{K: float64(dof)}.Survival(q),
		Lags:      lags,
		DOF:       dof,
	}, nil
}
