package timeseries

import (
	"fmt"
	"time"
)

// Frequency is the fixed sampling interval of a regular series.
// Calendar frequencies (monthly, quarterly, yearly) use Months;
// everything else uses Step.
type Frequency struct {
	Months int
	Step   time.Duration
}

// Common sampling frequencies.
var (
	Hourly    = Frequency{Step: time.Hour}
	Daily     = Frequency{Step: 24 * time.Hour}
	Weekly    = Frequency{Step: 7 * 24 * time.Hour}
	Monthly   = Frequency{Months: 1}
	Quarterly = Frequency{Months: 3}
	Yearly    = Frequency{Months: 12}
)

// IsZero reports whether no frequency is set.
func (f Frequency) IsZero() bool {
	return f.Months <= 0 && f.Step <= 0
}

// Add steps t forward by n periods (backwards for negative n).
// Month-end timestamps stay anchored to the end of the month.
func (f Frequency) Add(t time.Time, n int) time.Time {
	if f.Months > 0 {
		return addMonths(t, f.Months*n)
	}
	return t.Add(time.Duration(n) * f.Step)
}

func (f Frequency) String() string {
	switch {
	case f.Months == 1:
		return "monthly"
	case f.Months == 3:
		return "quarterly"
	case f.Months == 12:
		return "yearly"
	case f.Months > 0:
		return fmt.Sprintf("%dmonths", f.Months)
	case f.Step > 0:
		return f.Step.String()
	default:
		return "none"
	}
}

// InferFrequency derives the sampling frequency from at least two
// strictly increasing timestamps. Irregular spacing is an error.
func InferFrequency(timestamps []time.Time) (Frequency, error) {
	if len(timestamps) < 2 {
		return Frequency{}, fmt.Errorf("%w: need at least two timestamps to infer frequency", ErrInvalidInput)
	}

	step := timestamps[1].Sub(timestamps[0])
	if step <= 0 {
		return Frequency{}, fmt.Errorf("%w: timestamps must be strictly increasing", ErrInvalidInput)
	}
	if fixed := (Frequency{Step: step}); spacedBy(timestamps, fixed) {
		return fixed, nil
	}

	y0, m0, _ := timestamps[0].Date()
	y1, m1, _ := timestamps[1].Date()
	months := (y1-y0)*12 + int(m1-m0)
	if months > 0 {
		if calendar := (Frequency{Months: months}); spacedBy(timestamps, calendar) {
			return calendar, nil
		}
	}

	return Frequency{}, fmt.Errorf("%w: irregular sampling interval", ErrInvalidInput)
}

func spacedBy(timestamps []time.Time, f Frequency) bool {
	for i := 1; i < len(timestamps); i++ {
		if !f.Add(timestamps[i-1], 1).Equal(timestamps[i]) {
			return false
		}
	}
	return true
}

func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()
	first := time.Date(y, m+time.Month(n), 1, hh, mm, ss, t.Nanosecond(), t.Location())

	last := daysIn(first.Year(), first.Month(), t.Location())
	if d == daysIn(y, m, t.Location()) || d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, hh, mm, ss, t.Nanosecond(), t.Location())
}

func daysIn(y int, m time.Month, loc *time.Location) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, loc).Day()
}
