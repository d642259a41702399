package autoarima

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sartorproj/arimasearch/arima"
	"github.com/sartorproj/arimasearch/sarima"
	"github.com/sartorproj/arimasearch/stats"
	"github.com/sartorproj/arimasearch/timeseries"
	"golang.org/x/sync/errgroup"
)

// ErrNoViableModel is returned when no candidate both fits and leaves
// stationary residuals.
var ErrNoViableModel = errors.New("no viable model")

// Evaluation is one entry of the search trace.
type Evaluation struct {
	Index int              `json:"index" yaml:"index"`
	Order arima.Order      `json:"order" yaml:"order"`
	Fit   *arima.FitResult `json:"fit" yaml:"fit"`
	// Residual is the stationarity test on the residuals of a successful
	// fit. ResidualErr is set instead when the test could not be computed.
	Residual    *stats.Result `json:"residual_test,omitempty" yaml:"residual_test,omitempty"`
	ResidualErr string        `json:"residual_error,omitempty" yaml:"residual_error,omitempty"`
	Viable      bool          `json:"viable" yaml:"viable"`
	Score       float64       `json:"score" yaml:"score"`
}

// SearchResult is the outcome of one search. Best is nil when no candidate
// was viable.
type SearchResult struct {
	RunID     string           `json:"run_id" yaml:"run_id"`
	Criterion Criterion        `json:"criterion" yaml:"criterion"`
	Best      *arima.FitResult `json:"best,omitempty" yaml:"best,omitempty"`
	BestOrder arima.Order      `json:"best_order" yaml:"best_order"`
	Trace     []Evaluation     `json:"trace" yaml:"trace"`
	Duration  time.Duration    `json:"duration" yaml:"duration"`
}

// Viable returns the trace entries that passed both gates.
func (r *SearchResult) Viable() []Evaluation {
	var out []Evaluation
	for _, ev := range r.Trace {
		if ev.Viable {
			out = append(out, ev)
		}
	}
	return out
}

// Engine evaluates candidate orders and selects the best one.
// An Engine is safe for concurrent use.
type Engine struct {
	estimator arima.Estimator
	tester    stats.StationarityTester
	criterion Criterion
	workers   int
	timeout   time.Duration
	logger    zerolog.Logger

	fitter *arima.Fitter
}

// Option configures an Engine.
type Option func(*Engine)

// WithEstimator sets the estimation primitive. Defaults to the CSS
// estimator.
func WithEstimator(est arima.Estimator) Option {
	return func(e *Engine) { e.estimator = est }
}

// WithTester sets the residual stationarity tester.
func WithTester(t stats.StationarityTester) Option {
	return func(e *Engine) { e.tester = t }
}

// WithCriterion sets the ranking criterion.
func WithCriterion(c Criterion) Option {
	return func(e *Engine) { e.criterion = c }
}

// WithWorkers bounds the number of concurrent fits.
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

// WithFitTimeout bounds each fit. Zero disables the limit.
func WithFitTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine returns an Engine with the given options applied over the
// defaults: CSS estimation, ADF residual test, AIC, one worker.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		estimator: sarima.NewEstimator(),
		tester:    stats.NewTester(),
		criterion: AIC,
		workers:   1,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.workers = max(e.workers, 1)
	e.fitter = arima.NewFitter(e.estimator, arima.WithTimeout(e.timeout), arima.WithLogger(e.logger))
	return e
}

// Search evaluates every order of grid against series and returns the
// candidate with the lowest criterion among those whose residuals are
// stationary. Ties keep the earliest candidate. The trace follows
// enumeration order regardless of the worker count.
//
// If ctx is cancelled, unevaluated candidates are recorded as skipped and
// ctx.Err() is returned with the partial result.
func (e *Engine) Search(ctx context.Context, series *timeseries.Series, grid Grid) (*SearchResult, error) {
	if err := series.Validate(); err != nil {
		return nil, err
	}
	if err := grid.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	res := &SearchResult{RunID: uuid.NewString(), Criterion: e.criterion}
	log := e.logger.With().Str("run_id", res.RunID).Str("strategy", strategyGrid).Logger()

	candidates := grid.Candidates()
	log.Info().Int("candidates", len(candidates)).Int("workers", e.workers).Msg("search started")

	res.Trace = e.evaluateAll(ctx, log, series, candidates, 0)
	return e.finish(ctx, log, res, strategyGrid, start)
}

// evaluateAll fits orders with at most e.workers in flight. Result i is
// written to slot i so the output order matches the input.
func (e *Engine) evaluateAll(ctx context.Context, log zerolog.Logger, series *timeseries.Series, orders []arima.Order, offset int) []Evaluation {
	out := make([]Evaluation, len(orders))

	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, order := range orders {
		if err := ctx.Err(); err != nil {
			out[i] = skippedEvaluation(offset+i, order, series, err)
			continue
		}
		g.Go(func() error {
			out[i] = e.evaluate(ctx, log, series, offset+i, order)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// evaluate fits one order and applies the residual stationarity gate.
func (e *Engine) evaluate(ctx context.Context, log zerolog.Logger, series *timeseries.Series, index int, order arima.Order) Evaluation {
	fit := e.fitter.Fit(ctx, series, order)
	ev := Evaluation{Index: index, Order: order, Fit: fit}

	if fit.OK() {
		ev.Score = e.criterion.Score(fit)
		resTest, err := e.tester.Test(fit.Residuals)
		if err != nil {
			ev.ResidualErr = err.Error()
		} else {
			ev.Residual = resTest
			ev.Viable = resTest.IsStationary && !math.IsNaN(ev.Score)
		}
	}

	candidatesTotal.WithLabelValues(string(fit.Status), strconv.FormatBool(ev.Viable)).Inc()
	fitDuration.WithLabelValues(string(fit.Status)).Observe(fit.Duration.Seconds())

	entry := log.Debug().Int("index", index).Str("order", order.String()).Str("status", string(fit.Status))
	if fit.OK() {
		entry = entry.Float64("score", ev.Score).Bool("viable", ev.Viable)
	} else {
		entry = entry.Str("reason", fit.Reason)
	}
	entry.Msg("candidate evaluated")
	return ev
}

func skippedEvaluation(index int, order arima.Order, series *timeseries.Series, err error) Evaluation {
	candidatesTotal.WithLabelValues(string(arima.StatusSkipped), "false").Inc()
	return Evaluation{
		Index: index,
		Order: order,
		Fit:   &arima.FitResult{Order: order, Series: series, Status: arima.StatusSkipped, Reason: err.Error()},
	}
}

// finish selects the winner and records the search outcome.
func (e *Engine) finish(ctx context.Context, log zerolog.Logger, res *SearchResult, strategy string, start time.Time) (*SearchResult, error) {
	res.Duration = time.Since(start)
	searchCandidates.Observe(float64(len(res.Trace)))

	if err := ctx.Err(); err != nil {
		searchesTotal.WithLabelValues(strategy, outcomeCancelled).Inc()
		log.Warn().Err(err).Int("evaluated", len(res.Trace)).Msg("search cancelled")
		return res, err
	}

	best := SelectBest(res.Trace)
	if best < 0 {
		searchesTotal.WithLabelValues(strategy, outcomeNoViable).Inc()
		log.Warn().Int("evaluated", len(res.Trace)).Dur("duration", res.Duration).Msg("no viable model")
		return res, fmt.Errorf("%w: none of %d candidates passed the residual stationarity check", ErrNoViableModel, len(res.Trace))
	}

	res.Best = res.Trace[best].Fit
	res.BestOrder = res.Trace[best].Order
	searchesTotal.WithLabelValues(strategy, outcomeSelected).Inc()
	log.Info().Str("order", res.BestOrder.String()).Float64("score", res.Trace[best].Score).
		Int("evaluated", len(res.Trace)).Int("viable", len(res.Viable())).Dur("duration", res.Duration).
		Msg("search finished")
	return res, nil
}

// SelectBest returns the index of the viable entry with the strictly
// lowest score, preferring the earlier entry on ties, or -1 if none is
// viable.
func SelectBest(trace []Evaluation) int {
	best := -1
	for i, ev := range trace {
		if !ev.Viable {
			continue
		}
		if best < 0 || ev.Score < trace[best].Score {
			best = i
		}
	}
	return best
}

// Score returns the criterion value of a successful fit.
func (c Criterion) Score(fit *arima.FitResult) float64 {
	switch c {
	case BIC:
		return fit.BIC
	case AICc:
		return fit.AICc
	default:
		return fit.AIC
	}
}
