// Package arimasearch selects ARIMA and SARIMA models for univariate time
// series.
//
// Given a regularly sampled series it picks the differencing orders with
// unit-root tests, fits every candidate (p, d, q)(P, D, Q)[s] order by
// conditional sum of squares, keeps the candidates whose residuals are
// stationary and returns the one with the lowest information criterion,
// together with a forecast and residual diagnostics.
//
// # Quick Start
//
//	series, err := timeseries.LoadCSV("airline.csv", nil)
//	if err != nil {
//	    return err
//	}
//	cfg := autoarima.DefaultConfig()
//	cfg.Period = 12
//	res, err := autoarima.AutoARIMA(ctx, series, cfg)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Search.BestOrder, res.Forecast.Values())
//
// # Packages
//
//   - timeseries: series type, differencing and CSV input/output
//   - stats: ADF and KPSS tests, ACF/PACF, Ljung-Box, information criteria
//     and differencing order selection
//   - arima: model orders and the fitter that turns estimation failures
//     into recorded results
//   - sarima: the conditional sum of squares estimator and its forecasts
//   - autoarima: grid and stepwise order search and the full pipeline
//   - forecast: forecasts with confidence intervals and accuracy metrics
//   - diagnostics: residual checks of a fitted model
//   - config: YAML and environment configuration
//
// The arimasearch command in cmd/arimasearch wraps the pipeline for CSV
// files.
//
// # References
//
//   - Hyndman, R.J., & Athanasopoulos, G. (2021). Forecasting: Principles and Practice
//   - Box, G. E. P., & Jenkins, G. M. (1976). Time Series Analysis: Forecasting and Control
//   - MacKinnon, J.G. (2010). Critical Values for Cointegration Tests
package arimasearch
