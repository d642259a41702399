package autoarima

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sartorproj/arimasearch/arima"
	"github.com/sartorproj/arimasearch/timeseries"
)

// SeasonalBounds limits the seasonal part of a stepwise search.
type SeasonalBounds struct {
	MaxP   int
	MaxQ   int
	D      int
	Period int
}

// Bounds limits a stepwise search. Differencing orders are fixed.
type Bounds struct {
	MaxP     int
	MaxQ     int
	D        int
	Seasonal *SeasonalBounds
}

// Validate checks the bounds.
func (b Bounds) Validate() error {
	if b.MaxP < 0 || b.MaxQ < 0 || b.D < 0 {
		return fmt.Errorf("%w: negative stepwise bound", ErrInvalidGrid)
	}
	if s := b.Seasonal; s != nil {
		if s.Period < 2 {
			return fmt.Errorf("%w: seasonal period must be at least 2, got %d", ErrInvalidGrid, s.Period)
		}
		if s.MaxP < 0 || s.MaxQ < 0 || s.D < 0 {
			return fmt.Errorf("%w: negative seasonal stepwise bound", ErrInvalidGrid)
		}
	}
	return nil
}

func (b Bounds) contains(o arima.Order) bool {
	if o.P < 0 || o.Q < 0 || o.P > b.MaxP || o.Q > b.MaxQ {
		return false
	}
	if s := b.Seasonal; s != nil {
		return o.Seasonal.P >= 0 && o.Seasonal.Q >= 0 && o.Seasonal.P <= s.MaxP && o.Seasonal.Q <= s.MaxQ
	}
	return true
}

func (b Bounds) order(p, q, sp, sq int) arima.Order {
	o := arima.Order{P: p, D: b.D, Q: q}
	if s := b.Seasonal; s != nil {
		o.Seasonal = arima.SeasonalOrder{P: sp, D: s.D, Q: sq, S: s.Period}
	}
	return o
}

// seeds are the starting (p, q, P, Q) models of the stepwise search.
var seeds = [][4]int{
	{0, 0, 0, 0},
	{1, 0, 1, 0},
	{0, 1, 0, 1},
	{1, 1, 1, 1},
	{2, 2, 1, 1},
}

// Stepwise searches from a small set of seed orders and repeatedly moves
// to the best neighbour (one AR or MA term more or fewer) until the best
// order stops changing. Each order is evaluated at most once and the
// trace is in evaluation order. Selection follows the same rules as
// Search.
func (e *Engine) Stepwise(ctx context.Context, series *timeseries.Series, bounds Bounds) (*SearchResult, error) {
	if err := series.Validate(); err != nil {
		return nil, err
	}
	if err := bounds.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	res := &SearchResult{RunID: uuid.NewString(), Criterion: e.criterion}
	log := e.logger.With().Str("run_id", res.RunID).Str("strategy", strategyStepwise).Logger()

	seen := make(map[arima.Order]bool)
	var batch []arima.Order
	for _, s := range seeds {
		batch = appendUnseen(batch, seen, bounds, bounds.order(s[0], s[1], s[2], s[3]))
	}
	log.Info().Int("seeds", len(batch)).Int("workers", e.workers).Msg("search started")

	center := -1
	for len(batch) > 0 {
		res.Trace = append(res.Trace, e.evaluateAll(ctx, log, series, batch, len(res.Trace))...)
		if ctx.Err() != nil {
			break
		}

		next := stepCenter(res.Trace)
		if next < 0 || next == center {
			break
		}
		center = next

		o := res.Trace[center].Order
		sp, sq := o.Seasonal.P, o.Seasonal.Q
		batch = batch[:0]
		for _, n := range [][4]int{
			{o.P + 1, o.Q, sp, sq},
			{o.P - 1, o.Q, sp, sq},
			{o.P, o.Q + 1, sp, sq},
			{o.P, o.Q - 1, sp, sq},
			{o.P + 1, o.Q + 1, sp, sq},
			{o.P - 1, o.Q - 1, sp, sq},
			{o.P, o.Q, sp + 1, sq},
			{o.P, o.Q, sp - 1, sq},
			{o.P, o.Q, sp, sq + 1},
			{o.P, o.Q, sp, sq - 1},
		} {
			batch = appendUnseen(batch, seen, bounds, bounds.order(n[0], n[1], n[2], n[3]))
		}
		log.Debug().Str("center", o.String()).Int("neighbours", len(batch)).Msg("stepwise move")
	}

	return e.finish(ctx, log, res, strategyStepwise, start)
}

func appendUnseen(batch []arima.Order, seen map[arima.Order]bool, bounds Bounds, o arima.Order) []arima.Order {
	if !bounds.contains(o) || seen[o] {
		return batch
	}
	seen[o] = true
	return append(batch, o)
}

// stepCenter picks the order to explore around: the best viable entry, or
// the best successful fit when nothing is viable yet.
func stepCenter(trace []Evaluation) int {
	if best := SelectBest(trace); best >= 0 {
		return best
	}
	best := -1
	for i, ev := range trace {
		if !ev.Fit.OK() {
			continue
		}
		if best < 0 || ev.Score < trace[best].Score {
			best = i
		}
	}
	return best
}
