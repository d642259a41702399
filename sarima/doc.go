/*
Package sarima fits seasonal ARIMA models by conditional sum of squares.

An Estimator implements arima.Estimator. It differences the input d times
at lag 1 and D times at lag s, then fits

	w_t - mu = sum phi_i (w_{t-i} - mu) + sum Phi_j (w_{t-js} - mu)
	         + sum theta_i e_{t-i} + sum Theta_j e_{t-js} + e_t

conditioning on zero shocks over the first max(p, q, P*s, Q*s)
observations. AR terms start from the Yule-Walker solution and all
coefficients are kept inside (-0.99, 0.99).

Usage:

	est, err := sarima.NewEstimator().Estimate(ctx, series, arima.Order{
	    P: 1, D: 1, Q: 1,
	    Seasonal: arima.SeasonalOrder{P: 1, D: 1, Q: 1, S: 12},
	})
	if err != nil {
	    log.Fatal(err)
	}
	mean, stdErr, err := est.Model.Forecast(12)

Forecasts are mapped back to the original scale by undoing each
differencing step exactly. Standard errors come from the psi-weights of
the full model, differencing included, so they never shrink with the
horizon.
*/
package sarima
