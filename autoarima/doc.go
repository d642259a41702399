// Package autoarima searches candidate ARIMA and SARIMA orders and selects
// the model with the lowest information criterion among those whose
// residuals pass a stationarity check.
//
// # Grid search
//
// An Engine fits every order of a Grid, optionally in parallel:
//
//	engine := autoarima.NewEngine(
//	    autoarima.WithCriterion(autoarima.BIC),
//	    autoarima.WithWorkers(4),
//	)
//	res, err := engine.Search(ctx, series, autoarima.Grid{
//	    P: []int{0, 1, 2},
//	    D: []int{1},
//	    Q: []int{0, 1, 2},
//	})
//	if errors.Is(err, autoarima.ErrNoViableModel) {
//	    // res.Trace still lists every candidate and why it was rejected.
//	}
//
// The trace is always in enumeration order (p, d, q, then P, D, Q) and
// equal scores keep the earlier candidate, so results do not depend on the
// worker count.
//
// # Stepwise search
//
// Stepwise starts from a few small orders and moves to the best
// neighbouring order until no neighbour improves on it. It evaluates far
// fewer candidates than a full grid.
//
// # Pipeline
//
// AutoARIMA chains the whole selection: it picks the seasonal and regular
// differencing orders with repeated stationarity tests, runs the search
// described by a Config, forecasts the winner and diagnoses its residuals:
//
//	cfg := autoarima.DefaultConfig()
//	cfg.Period = 12
//	res, err := autoarima.AutoARIMA(ctx, series, cfg)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Search.BestOrder, res.Forecast.Values())
//
// # Metrics
//
// The engine registers Prometheus collectors on the default registry:
// arimasearch_candidates_total, arimasearch_fit_duration_seconds,
// arimasearch_searches_total and arimasearch_search_candidates.
package autoarima
