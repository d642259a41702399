package diagnostics

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/sartorproj/arimasearch/stats"
	"github.com/sartorproj/arimasearch/timeseries"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noise(n int) *timeseries.Series {
	rng := rand.New(rand.NewPCG(9, 10))
	values := make([]float64, n)
	for i := range values {
		values[i] = rng.NormFloat64()
	}
	return timeseries.New(values)
}

func TestDiagnoseReport(t *testing.T) {
	resid := noise(200)
	report, err := Diagnose(resid, []int{20, 5, 10, 10}, DefaultOptions())
	require.NoError(t, err)

	require.NotNil(t, report.Stationarity)
	assert.Empty(t, report.StationarityErr)
	assert.True(t, report.Stationarity.IsStationary)

	assert.Len(t, report.ACF, 21)
	assert.InDelta(t, 1.0, report.ACF[0], 1e-12)
	assert.InDelta(t, 1.959964/math.Sqrt(200), report.ConfBound, 1e-6)

	require.Len(t, report.LjungBox, 3)
	for i, lag := range []int{5, 10, 20} {
		assert.Equal(t, lag, report.LjungBox[i].Lag)
		assert.Equal(t, lag, report.LjungBox[i].DOF)
		assert.GreaterOrEqual(t, report.LjungBox[i].PValue, 0.0)
		assert.LessOrEqual(t, report.LjungBox[i].PValue, 1.0)
	}
	require.NotNil(t, report.Normality)
}

func TestDiagnoseDetectsAutocorrelation(t *testing.T) {
	values := make([]float64, 120)
	for i := range values {
		values[i] = math.Sin(2 * math.Pi * float64(i) / 12)
	}
	opts := DefaultOptions()
	opts.FitDF = 2

	report, err := Diagnose(timeseries.New(values), []int{10}, opts)
	require.NoError(t, err)
	assert.Less(t, report.LjungBox[0].PValue, 0.01)
	assert.Equal(t, 8, report.LjungBox[0].DOF)
	assert.Contains(t, report.SignificantLags(), 1)
}

func TestDiagnoseRecordsStationarityFailure(t *testing.T) {
	report, err := Diagnose(timeseries.New([]float64{0.5, -0.2, 0.1, 0.4, -0.6, 0.3}), []int{2}, DefaultOptions())
	require.NoError(t, err)
	assert.Nil(t, report.Stationarity)
	assert.Contains(t, report.StationarityErr, stats.ErrInsufficientData.Error())
	assert.Len(t, report.ACF, 3)
}

func TestDiagnoseNormality(t *testing.T) {
	values := make([]float64, 60)
	for i := range values {
		values[i] = math.Pow(float64(i+1), 3)
	}
	report, err := Diagnose(timeseries.New(values), []int{1}, DefaultOptions())
	require.NoError(t, err)
	require.NotNil(t, report.Normality)
	assert.Greater(t, report.Normality.Skewness, 0.0)
}

func TestDiagnoseErrors(t *testing.T) {
	resid := noise(30)

	_, err := Diagnose(resid, nil, DefaultOptions())
	assert.ErrorIs(t, err, timeseries.ErrInvalidInput)

	_, err = Diagnose(resid, []int{0, 3}, DefaultOptions())
	assert.ErrorIs(t, err, timeseries.ErrInvalidInput)

	_, err = Diagnose(nil, []int{3}, DefaultOptions())
	assert.ErrorIs(t, err, timeseries.ErrInvalidInput)

	_, err = Diagnose(resid, []int{30}, DefaultOptions())
	assert.ErrorIs(t, err, stats.ErrInsufficientData)
}
