package timeseries

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCSVFromReader(t *testing.T) {
	csvData := `ds,y
2020-01-01,100
2020-01-02,101
2020-01-03,102
2020-01-04,103
2020-01-05,104`

	series, err := LoadCSVFromReader(strings.NewReader(csvData), DefaultCSVOptions())
	require.NoError(t, err)

	assert.Equal(t, 5, series.Len())
	assert.Equal(t, []float64{100, 101, 102, 103, 104}, series.Values())
	assert.Equal(t, Daily, series.Frequency())
	assert.Equal(t, time.Date(2020, time.January, 5, 0, 0, 0, 0, time.UTC), series.Last())
}

func TestLoadCSVWithFilter(t *testing.T) {
	csvData := `unique_id,ds,y
A,2020-01-01,100
B,2020-01-01,200
A,2020-02-01,101
B,2020-02-01,201
A,2020-03-01,102`

	opts := DefaultCSVOptions()
	opts.IDColumn = "unique_id"
	opts.IDFilter = "A"

	series, err := LoadCSVFromReader(strings.NewReader(csvData), opts)
	require.NoError(t, err)

	assert.Equal(t, []float64{100, 101, 102}, series.Values())
	assert.Equal(t, Monthly, series.Frequency())
}

func TestLoadCSVMissingValuesBreakRegularity(t *testing.T) {
	csvData := `ds,y
2020-01-01,100
2020-01-02,NA
2020-01-03,102
2020-01-04,103`

	_, err := LoadCSVFromReader(strings.NewReader(csvData), DefaultCSVOptions())
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestLoadCSVRejectsBadDates(t *testing.T) {
	csvData := `date,y
2020-01-01,100
2020-01-02,101
not-a-date,102
2020-01-04,103`

	_, err := LoadCSVFromReader(strings.NewReader(csvData), DefaultCSVOptions())
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "line 4")
	assert.Contains(t, err.Error(), "not-a-date")

	// A lone bad date is not replaced by an hourly index either.
	_, err = LoadCSVFromReader(strings.NewReader("ds,y\n2020-01-01,1\n13/45/2020,2\n"), nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestLoadCSVCustomColumns(t *testing.T) {
	csvData := `Month;Sales
2019-01;10.5
2019-02;11.25
2019-03;9.75`

	opts := DefaultCSVOptions()
	opts.ValueColumn = "Sales"
	opts.DateFormat = "2006-01"
	opts.Delimiter = ';'

	series, err := LoadCSVFromReader(strings.NewReader(csvData), opts)
	require.NoError(t, err)
	assert.Equal(t, []float64{10.5, 11.25, 9.75}, series.Values())
	assert.Equal(t, "Sales", series.Name())
	assert.Equal(t, Monthly, series.Frequency())
}

func TestLoadCSVWithoutDates(t *testing.T) {
	csvData := `value
1
2
3`
	opts := DefaultCSVOptions()
	opts.ValueColumn = "value"

	series, err := LoadCSVFromReader(strings.NewReader(csvData), opts)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, series.Values())
	assert.Equal(t, Hourly, series.Frequency())
}

func TestLoadCSVEmpty(t *testing.T) {
	_, err := LoadCSVFromReader(strings.NewReader("ds,y\n"), nil)
	assert.Error(t, err)
}

func TestSaveAndLoadCSV(t *testing.T) {
	start := time.Date(2022, time.June, 1, 0, 0, 0, 0, time.UTC)
	original, err := NewRegular(start, Daily, []float64{1.5, 2.5, 3.5, 4.5})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "series.csv")
	require.NoError(t, SaveCSV(original, path))

	opts := DefaultCSVOptions()
	opts.DateFormat = time.RFC3339
	loaded, err := LoadCSV(path, opts)
	require.NoError(t, err)

	assert.Equal(t, original.Values(), loaded.Values())
	assert.Equal(t, original.Timestamps(), loaded.Timestamps())
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, New([]float64{7})))
	assert.Equal(t, "ds,y\n2000-01-01T00:00:00Z,7\n", buf.String())
}

func TestLoadCSVMissingFile(t *testing.T) {
	_, err := LoadCSV(filepath.Join(t.TempDir(), "missing.csv"), nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
