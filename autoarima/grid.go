package autoarima

import (
	"errors"
	"fmt"

	"github.com/sartorproj/arimasearch/arima"
)

// ErrInvalidGrid is returned for empty or negative search ranges.
var ErrInvalidGrid = errors.New("invalid search grid")

// SeasonalGrid holds the seasonal ranges of a search. Period is fixed for
// every candidate.
type SeasonalGrid struct {
	P      []int
	D      []int
	Q      []int
	Period int
}

// Grid is the Cartesian product of candidate orders to evaluate.
type Grid struct {
	P        []int
	D        []int
	Q        []int
	Seasonal *SeasonalGrid // nil for non-seasonal searches
}

// Validate checks that every range is non-empty and non-negative.
func (g Grid) Validate() error {
	ranges := []struct {
		name   string
		values []int
	}{{"p", g.P}, {"d", g.D}, {"q", g.Q}}
	if s := g.Seasonal; s != nil {
		if s.Period < 2 {
			return fmt.Errorf("%w: seasonal period must be at least 2, got %d", ErrInvalidGrid, s.Period)
		}
		ranges = append(ranges, []struct {
			name   string
			values []int
		}{{"P", s.P}, {"D", s.D}, {"Q", s.Q}}...)
	}
	for _, r := range ranges {
		if len(r.values) == 0 {
			return fmt.Errorf("%w: %s range is empty", ErrInvalidGrid, r.name)
		}
		for _, v := range r.values {
			if v < 0 {
				return fmt.Errorf("%w: %s range contains %d", ErrInvalidGrid, r.name, v)
			}
		}
	}
	return nil
}

// Candidates enumerates the grid in nested-loop order p, d, q, P, D, Q with
// the innermost loop varying fastest. Repeated values in a range are
// dropped, keeping the first occurrence.
func (g Grid) Candidates() []arima.Order {
	ps, ds, qs := dedupe(g.P), dedupe(g.D), dedupe(g.Q)
	seasonal := []arima.SeasonalOrder{{}}
	if s := g.Seasonal; s != nil {
		seasonal = seasonal[:0]
		for _, sp := range dedupe(s.P) {
			for _, sd := range dedupe(s.D) {
				for _, sq := range dedupe(s.Q) {
					seasonal = append(seasonal, arima.SeasonalOrder{P: sp, D: sd, Q: sq, S: s.Period})
				}
			}
		}
	}

	out := make([]arima.Order, 0, len(ps)*len(ds)*len(qs)*len(seasonal))
	for _, p := range ps {
		for _, d := range ds {
			for _, q := range qs {
				for _, so := range seasonal {
					out = append(out, arima.Order{P: p, D: d, Q: q, Seasonal: so})
				}
			}
		}
	}
	return out
}

func dedupe(values []int) []int {
	seen := make(map[int]bool, len(values))
	out := make([]int, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
