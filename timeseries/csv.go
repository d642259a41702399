package timeseries

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// CSVOptions holds options for CSV loading.
type CSVOptions struct {
	DateColumn  string // Column name for dates (optional)
	ValueColumn string // Column name for values (default: "y")
	IDColumn    string // Column name for series ID (optional, for filtering)
	IDFilter    string // Value to filter by ID column
	DateFormat  string // Date format (default: "2006-01-02")
	HasHeader   bool   // Whether CSV has header row (default: true)
	Delimiter   rune   // Field delimiter (default: ',')
	SkipRows    int    // Number of rows to skip at start
}

// DefaultCSVOptions returns default options for CSV loading.
func DefaultCSVOptions() *CSVOptions {
	return &CSVOptions{
		ValueColumn: "y",
		DateFormat:  "2006-01-02",
		HasHeader:   true,
		Delimiter:   ',',
	}
}

var dateFormats = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"02-Jan-2006",
	"2006-01",
	"2006",
}

// LoadCSV loads a time series from a CSV file.
func LoadCSV(filename string, opts *CSVOptions) (*Series, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	s, err := LoadCSVFromReader(file, opts)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filename, err)
	}
	return s, nil
}

// LoadCSVFromReader loads a time series from an io.Reader. When a date
// column is present every kept row must carry a parseable date and the
// series must be regularly spaced; files without a date column get an
// hourly index.
func LoadCSVFromReader(r io.Reader, opts *CSVOptions) (*Series, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}

	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.TrimLeadingSpace = true

	for i := 0; i < opts.SkipRows; i++ {
		if _, err := reader.Read(); err != nil {
			return nil, err
		}
	}

	valueIdx, dateIdx, idIdx := 1, 0, -1
	if opts.HasHeader {
		header, err := reader.Read()
		if err != nil {
			return nil, err
		}
		valueIdx, dateIdx, idIdx = resolveColumns(header, opts)
	}

	var (
		values     []float64
		timestamps []time.Time
	)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if opts.IDFilter != "" && idIdx >= 0 && idIdx < len(record) {
			if cell(record, idIdx) != opts.IDFilter {
				continue
			}
		}
		if valueIdx < 0 || valueIdx >= len(record) {
			continue
		}

		raw := cell(record, valueIdx)
		if raw == "" || raw == "NA" || raw == "NaN" || raw == "null" {
			continue
		}
		val, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}

		if dateIdx >= 0 {
			line, _ := reader.FieldPos(valueIdx)
			if dateIdx >= len(record) {
				return nil, fmt.Errorf("%w: line %d has no date column", ErrInvalidInput, line)
			}
			ts, ok := parseDate(cell(record, dateIdx), opts.DateFormat)
			if !ok {
				return nil, fmt.Errorf("%w: line %d: unparseable date %q", ErrInvalidInput, line, cell(record, dateIdx))
			}
			timestamps = append(timestamps, ts)
		}
		values = append(values, val)
	}

	if len(values) == 0 {
		return nil, errors.New("no valid data found in CSV")
	}

	name := opts.ValueColumn
	if dateIdx >= 0 && len(values) > 1 {
		s, err := NewWithTimestamps(timestamps, values)
		if err != nil {
			return nil, err
		}
		return s.Named(name), nil
	}
	return New(values).Named(name), nil
}

func resolveColumns(header []string, opts *CSVOptions) (valueIdx, dateIdx, idIdx int) {
	valueIdx, dateIdx, idIdx = -1, -1, -1
	for i, h := range header {
		h = strings.TrimSpace(strings.Trim(h, "\""))
		switch {
		case h == opts.ValueColumn || (opts.ValueColumn == "" && (h == "y" || h == "value" || h == "Value")):
			valueIdx = i
		case opts.DateColumn != "" && h == opts.DateColumn:
			dateIdx = i
		case h == "ds" || h == "date" || h == "Date" || h == "Month" || h == "Year":
			if dateIdx == -1 {
				dateIdx = i
			}
		case opts.IDColumn != "" && h == opts.IDColumn:
			idIdx = i
		case h == "unique_id" || h == "id" || h == "ID":
			if idIdx == -1 && opts.IDColumn == "" {
				idIdx = i
			}
		}
	}

	// Fall back to the last column for values.
	if valueIdx == -1 {
		valueIdx = len(header) - 1
	}
	return valueIdx, dateIdx, idIdx
}

func cell(record []string, idx int) string {
	return strings.TrimSpace(strings.Trim(record[idx], "\""))
}

func parseDate(raw, preferred string) (time.Time, bool) {
	if preferred != "" {
		if ts, err := time.Parse(preferred, raw); err == nil {
			return ts, true
		}
	}
	for _, layout := range dateFormats {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// SaveCSV saves a time series to a CSV file with ds,y columns.
func SaveCSV(series *Series, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteCSV(file, series)
}

// WriteCSV writes a time series as ds,y rows.
func WriteCSV(w io.Writer, series *Series) error {
	writer := bufio.NewWriter(w)

	if _, err := writer.WriteString("ds,y\n"); err != nil {
		return err
	}
	for i := 0; i < series.Len(); i++ {
		ts, v := series.At(i)
		writer.WriteString(ts.Format(time.RFC3339))
		writer.WriteString(",")
		writer.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
		writer.WriteString("\n")
	}

	return writer.Flush()
}
