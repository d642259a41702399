// Package stats provides the statistical tests used to select and check
// ARIMA models.
//
// # Stationarity
//
// A Tester wraps a unit-root or stationarity test and classifies a series at
// a fixed significance threshold:
//
//	tester := stats.NewTester() // ADF, alpha = 0.05
//	res, err := tester.Test(series)
//	if errors.Is(err, stats.ErrInsufficientData) {
//	    // too short to decide
//	}
//	fmt.Printf("ADF: stat=%.4f, p=%.4f, stationary=%v\n",
//	    res.Statistic, res.PValue, res.IsStationary)
//
// Two tests are available:
//   - ADF (H0: unit root). Stationary when p <= threshold. The p-value comes
//     from the MacKinnon (1994) response surface.
//   - KPSS (H0: level stationarity). Stationary when p > threshold. The
//     p-value is interpolated from tabulated critical values and clipped to
//     [0.01, 0.10].
//
// # Differencing
//
// A Selector picks the integration order:
//
//	sel := stats.NewSelector(stats.NewTester(), logger)
//	d, _ := sel.SelectD(series, 2)
//	D, _ := sel.SelectSeasonalD(series, 12, 1)
//
// # Autocorrelation
//
//	acf, err := stats.ACF(residuals, 20)
//	bound := stats.ConfidenceBound(residuals.Len(), 0.95)
//	lags := stats.SignificantLags(acf, bound)
//
//	lb, err := stats.LjungBox(residuals, 10, p+q)
//	if lb.PValue < 0.05 {
//	    // residuals are autocorrelated
//	}
//
// # Information Criteria
//
//	ic := stats.CalculateIC(logLik, nObs, nParams)
//	fmt.Println(ic.AIC, ic.AICc, ic.BIC)
package stats
