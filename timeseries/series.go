package timeseries

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// ErrInvalidInput is returned for malformed series: unsorted or duplicate
// timestamps, non-finite values, or irregular spacing.
var ErrInvalidInput = errors.New("invalid input series")

// epoch anchors series built from bare values.
var epoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Series is an immutable, regularly sampled univariate time series.
// Operations that transform a series return a new instance.
type Series struct {
	name       string
	timestamps []time.Time
	values     []float64
	freq       Frequency
}

// New creates an hourly series from values.
func New(values []float64) *Series {
	return build(epoch, Hourly, values, "")
}

// NewRegular creates a series starting at start and sampled at freq.
func NewRegular(start time.Time, freq Frequency, values []float64) (*Series, error) {
	if freq.IsZero() {
		return nil, fmt.Errorf("%w: frequency is required", ErrInvalidInput)
	}
	s := build(start, freq, values, "")
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewWithTimestamps creates a series with explicit timestamps. The sampling
// frequency is inferred from the timestamps.
func NewWithTimestamps(timestamps []time.Time, values []float64) (*Series, error) {
	if len(timestamps) != len(values) {
		return nil, fmt.Errorf("%w: timestamps and values must have the same length", ErrInvalidInput)
	}
	freq, err := InferFrequency(timestamps)
	if err != nil {
		return nil, err
	}

	s := &Series{
		timestamps: append([]time.Time(nil), timestamps...),
		values:     append([]float64(nil), values...),
		freq:       freq,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func build(start time.Time, freq Frequency, values []float64, name string) *Series {
	timestamps := make([]time.Time, len(values))
	for i := range timestamps {
		if i == 0 {
			timestamps[i] = start
			continue
		}
		timestamps[i] = freq.Add(timestamps[i-1], 1)
	}
	return &Series{
		name:       name,
		timestamps: timestamps,
		values:     append([]float64(nil), values...),
		freq:       freq,
	}
}

// Validate checks the series invariants.
func (s *Series) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: nil series", ErrInvalidInput)
	}
	if len(s.timestamps) != len(s.values) {
		return fmt.Errorf("%w: %d timestamps for %d values", ErrInvalidInput, len(s.timestamps), len(s.values))
	}
	for i, v := range s.values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite value at index %d", ErrInvalidInput, i)
		}
	}
	for i := 1; i < len(s.timestamps); i++ {
		if !s.timestamps[i].After(s.timestamps[i-1]) {
			return fmt.Errorf("%w: timestamps not strictly increasing at index %d", ErrInvalidInput, i)
		}
		if !s.freq.IsZero() && !s.freq.Add(s.timestamps[i-1], 1).Equal(s.timestamps[i]) {
			return fmt.Errorf("%w: irregular spacing at index %d", ErrInvalidInput, i)
		}
	}
	return nil
}

// Name returns the series name.
func (s *Series) Name() string { return s.name }

// Named returns a copy of the series carrying the given name.
func (s *Series) Named(name string) *Series {
	return &Series{name: name, timestamps: s.timestamps, values: s.values, freq: s.freq}
}

// Len returns the length of the series.
func (s *Series) Len() int {
	return len(s.values)
}

// Frequency returns the sampling frequency.
func (s *Series) Frequency() Frequency { return s.freq }

// Values returns a copy of the observations.
func (s *Series) Values() []float64 {
	return append([]float64(nil), s.values...)
}

// Timestamps returns a copy of the timestamps.
func (s *Series) Timestamps() []time.Time {
	return append([]time.Time(nil), s.timestamps...)
}

// At returns the i-th observation.
func (s *Series) At(i int) (time.Time, float64) {
	return s.timestamps[i], s.values[i]
}

// Last returns the final timestamp of the series.
func (s *Series) Last() time.Time {
	if len(s.timestamps) == 0 {
		return time.Time{}
	}
	return s.timestamps[len(s.timestamps)-1]
}

// Mean calculates the arithmetic mean of the series.
func (s *Series) Mean() float64 {
	if len(s.values) == 0 {
		return 0
	}
	return stat.Mean(s.values, nil)
}

// Variance calculates the sample variance of the series.
func (s *Series) Variance() float64 {
	if len(s.values) < 2 {
		return 0
	}
	return stat.Variance(s.values, nil)
}

// Std calculates the standard deviation of the series.
func (s *Series) Std() float64 {
	return math.Sqrt(s.Variance())
}

// Min returns the minimum value in the series.
func (s *Series) Min() float64 {
	if len(s.values) == 0 {
		return math.NaN()
	}
	lo := s.values[0]
	for _, v := range s.values[1:] {
		lo = math.Min(lo, v)
	}
	return lo
}

// Max returns the maximum value in the series.
func (s *Series) Max() float64 {
	if len(s.values) == 0 {
		return math.NaN()
	}
	hi := s.values[0]
	for _, v := range s.values[1:] {
		hi = math.Max(hi, v)
	}
	return hi
}

// Median returns the median value of the series.
func (s *Series) Median() float64 {
	if len(s.values) == 0 {
		return math.NaN()
	}
	sorted := s.Values()
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// Diff calculates the first difference of the series. The result is one
// point shorter and starts at the second timestamp.
func (s *Series) Diff() *Series {
	return s.lagDiff(1, "_diff")
}

// DiffN applies first differencing k times.
func (s *Series) DiffN(k int) *Series {
	out := s
	for i := 0; i < k; i++ {
		out = out.Diff()
	}
	return out
}

// SeasonalDiff calculates the lag-m difference y[t] - y[t-m].
func (s *Series) SeasonalDiff(m int) *Series {
	return s.lagDiff(m, "_seasonal_diff")
}

func (s *Series) lagDiff(lag int, suffix string) *Series {
	if lag <= 0 || len(s.values) <= lag {
		return &Series{name: s.name + suffix, freq: s.freq}
	}

	values := make([]float64, len(s.values)-lag)
	for i := lag; i < len(s.values); i++ {
		values[i-lag] = s.values[i] - s.values[i-lag]
	}

	return &Series{
		name:       s.name + suffix,
		timestamps: append([]time.Time(nil), s.timestamps[lag:]...),
		values:     values,
		freq:       s.freq,
	}
}

// DiffWithHeads applies first differencing k times and also returns the
// leading value dropped at each level, which Integrate needs to undo it.
func (s *Series) DiffWithHeads(k int) (*Series, []float64) {
	heads := make([]float64, 0, k)
	out := s
	for i := 0; i < k && out.Len() > 0; i++ {
		heads = append(heads, out.values[0])
		out = out.Diff()
	}
	return out, heads
}

// Integrate reverses DiffWithHeads: heads[i] is the first value of the
// series after i differences. The restored leading timestamps are stepped
// back from the differenced series at its frequency.
func Integrate(diffed *Series, heads []float64) (*Series, error) {
	k := len(heads)
	if k == 0 {
		return diffed, nil
	}
	if diffed.freq.IsZero() {
		return nil, fmt.Errorf("%w: frequency is required to integrate", ErrInvalidInput)
	}
	if diffed.Len() == 0 {
		return nil, fmt.Errorf("%w: cannot integrate an empty series", ErrInvalidInput)
	}

	values := diffed.Values()
	for level := k - 1; level >= 0; level-- {
		restored := make([]float64, len(values)+1)
		restored[0] = heads[level]
		for i, v := range values {
			restored[i+1] = restored[i] + v
		}
		values = restored
	}

	start := diffed.timestamps[0]
	for i := 0; i < k; i++ {
		start = diffed.freq.Add(start, -1)
	}
	return build(start, diffed.freq, values, diffed.name), nil
}

// Slice returns the observations from start to end (exclusive).
func (s *Series) Slice(start, end int) *Series {
	start = max(start, 0)
	end = min(end, len(s.values))
	if start >= end {
		return &Series{name: s.name, freq: s.freq}
	}

	return &Series{
		name:       s.name,
		timestamps: append([]time.Time(nil), s.timestamps[start:end]...),
		values:     append([]float64(nil), s.values[start:end]...),
		freq:       s.freq,
	}
}

// AlignTail builds a series from values placed on the last len(values)
// timestamps of s. Used for residuals, which cover a suffix of the input.
func (s *Series) AlignTail(values []float64, name string) (*Series, error) {
	if len(values) > len(s.values) {
		return nil, fmt.Errorf("%w: %d values do not fit in a series of length %d", ErrInvalidInput, len(values), len(s.values))
	}
	offset := len(s.values) - len(values)
	return &Series{
		name:       name,
		timestamps: append([]time.Time(nil), s.timestamps[offset:]...),
		values:     append([]float64(nil), values...),
		freq:       s.freq,
	}, nil
}
