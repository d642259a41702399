/*
Package arima defines model orders and the fault-tolerant fitting step of
the order search.

An Order describes one candidate structure:

	o := arima.Order{P: 1, D: 1, Q: 1}                      // ARIMA(1,1,1)
	s := arima.Order{P: 1, D: 1, Q: 1,
	    Seasonal: arima.SeasonalOrder{P: 1, D: 1, Q: 1, S: 12}} // SARIMA(1,1,1)(1,1,1)[12]

Orders are comparable and can be used as map keys.

A Fitter wraps an Estimator so that a single bad order cannot abort a
search. Errors, panics, non-finite likelihoods and timeouts all come back
as a FitResult with StatusFailed:

	f := arima.NewFitter(sarima.NewEstimator(), arima.WithTimeout(2*time.Second))
	res := f.Fit(ctx, series, o)
	if !res.OK() {
	    fmt.Println(res.Status, res.Reason)
	}
	fmt.Printf("AIC=%.2f BIC=%.2f\n", res.AIC, res.BIC)
*/
package arima
