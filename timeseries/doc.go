// Package timeseries provides time series data structures and utilities.
//
// A Series is immutable and regularly sampled: timestamps are strictly
// increasing and spaced by a fixed Frequency, and every value is finite.
// Transformations return new series.
//
// # Creating a Series
//
// Create a time series from a slice (hourly from a fixed epoch):
//
//	series := timeseries.New([]float64{100, 102, 105, 103, 108, 110})
//
// Or with an explicit calendar:
//
//	start := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
//	series, err := timeseries.NewRegular(start, timeseries.Monthly, values)
//
// NewWithTimestamps infers the frequency and rejects irregular input with
// ErrInvalidInput.
//
// # Loading from CSV
//
//	opts := timeseries.DefaultCSVOptions()
//	opts.DateColumn = "date"
//	opts.ValueColumn = "sales"
//	series, err := timeseries.LoadCSV("sales.csv", opts)
//
// # Differencing
//
//	diff := series.Diff()             // First difference
//	diff2 := series.DiffN(2)          // Second-order difference
//	sdiff := series.SeasonalDiff(12)  // Seasonal difference
//
// DiffWithHeads and Integrate round-trip:
//
//	diffed, heads := series.DiffWithHeads(2)
//	restored, _ := timeseries.Integrate(diffed, heads)
package timeseries
