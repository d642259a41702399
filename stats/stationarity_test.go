package stats

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/sartorproj/arimasearch/timeseries"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomWalk(n int, seed uint64) *timeseries.Series {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	values := make([]float64, n)
	for i := 1; i < n; i++ {
		values[i] = values[i-1] + 0.5 + rng.NormFloat64()
	}
	return timeseries.New(values)
}

func noisySine(n int, seed uint64) *timeseries.Series {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	values := make([]float64, n)
	for i := range values {
		values[i] = math.Sin(2*math.Pi*float64(i)/7) + 0.3*rng.NormFloat64()
	}
	return timeseries.New(values)
}

func TestADFRandomWalk(t *testing.T) {
	walk := randomWalk(200, 7)
	tester := NewTester()

	before, err := tester.Test(walk)
	require.NoError(t, err)
	assert.False(t, before.IsStationary, "p=%f", before.PValue)
	assert.Equal(t, ADFTest, before.Test)

	after, err := tester.Test(walk.Diff())
	require.NoError(t, err)
	assert.True(t, after.IsStationary, "p=%f", after.PValue)
	assert.Less(t, after.Statistic, after.CriticalVals["1%"])
}

func TestADFStationary(t *testing.T) {
	res, err := ADF(noisySine(150, 3), 0)
	require.NoError(t, err)

	assert.True(t, res.IsStationary)
	assert.Equal(t, int(math.Floor(math.Cbrt(149))), res.Lags)
	assert.Equal(t, 150-res.Lags-1, res.NObs)
	assert.Less(t, res.CriticalVals["1%"], res.CriticalVals["5%"])
	assert.Less(t, res.CriticalVals["5%"], res.CriticalVals["10%"])
}

func TestADFShortSeriesReducesLags(t *testing.T) {
	res, err := ADF(timeseries.New([]float64{100, 110, 121, 108, 132, 119, 143, 130, 154, 141}), 0)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.NObs-(2+res.Lags), minResidualDOF)
}

func TestTesterErrors(t *testing.T) {
	tester := NewTester()

	_, err := tester.Test(timeseries.New([]float64{1, 2, 3}))
	assert.ErrorIs(t, err, ErrInsufficientData)

	constant := make([]float64, 30)
	for i := range constant {
		constant[i] = 4.2
	}
	_, err = tester.Test(timeseries.New(constant))
	assert.ErrorIs(t, err, ErrDegenerateSeries)

	_, err = tester.Test(nil)
	assert.ErrorIs(t, err, timeseries.ErrInvalidInput)

	_, err = Tester{Kind: "pp", MinLength: 1}.Test(noisySine(20, 1))
	assert.Error(t, err)
}

func TestKPSS(t *testing.T) {
	tester := NewTester()
	tester.Kind = KPSSTest

	cycle := make([]float64, 120)
	for i := range cycle {
		cycle[i] = math.Sin(2 * math.Pi * float64(i) / 5)
	}
	res, err := tester.Test(timeseries.New(cycle))
	require.NoError(t, err)
	assert.True(t, res.IsStationary, "stat=%f", res.Statistic)
	assert.Equal(t, KPSSTest, res.Test)

	trend := make([]float64, 120)
	for i := range trend {
		trend[i] = float64(i)
	}
	res, err = tester.Test(timeseries.New(trend))
	require.NoError(t, err)
	assert.False(t, res.IsStationary)
	assert.Equal(t, 0.01, res.PValue)
}

func TestKPSSThresholdAtClippedLevel(t *testing.T) {
	series := noisySine(200, 3)
	for _, threshold := range []float64{0.05, 0.10, 0.20} {
		tester := NewTester()
		tester.Kind = KPSSTest
		tester.Threshold = threshold

		res, err := tester.Test(series)
		require.NoError(t, err)
		require.Less(t, res.Statistic, res.CriticalVals["10%"])
		assert.Equal(t, 0.10, res.PValue)
		assert.True(t, res.IsStationary, "threshold=%.2f", threshold)
	}

	// Above the 10% critical value the clipped p-value decides.
	res := &Result{Statistic: 0.405, PValue: 0.075, CriticalVals: map[string]float64{"10%": 0.347}}
	assert.True(t, kpssStationary(res, 0.05))
	assert.False(t, kpssStationary(res, 0.10))
}

func TestADFExactFitIsDegenerate(t *testing.T) {
	// A noiseless AR(1) recursion leaves the regression nothing to estimate.
	values := make([]float64, 40)
	values[0] = 10
	for i := 1; i < len(values); i++ {
		values[i] = 0.5*values[i-1] + 1
	}
	_, err := ADF(timeseries.New(values), 0)
	assert.ErrorIs(t, err, ErrDegenerateSeries)

	cycle := make([]float64, 60)
	for i := range cycle {
		cycle[i] = math.Sin(2 * math.Pi * float64(i) / 12)
	}
	_, err = NewTester().Test(timeseries.New(cycle))
	assert.ErrorIs(t, err, ErrDegenerateSeries)
}

func TestMackinnonPValue(t *testing.T) {
	assert.Equal(t, 1.0, mackinnonPValue(3))
	assert.Equal(t, 0.0, mackinnonPValue(-20))
	assert.InDelta(t, 0.05, mackinnonPValue(-2.86), 0.005)

	prev := 0.0
	for stat := -6.0; stat <= 2.5; stat += 0.25 {
		p := mackinnonPValue(stat)
		assert.GreaterOrEqual(t, p, prev, "stat=%f", stat)
		prev = p
	}
}

func TestKPSSPValue(t *testing.T) {
	crit := kpssCritical["c"]
	tests := []struct {
		stat float64
		want float64
	}{
		{0.1, 0.10},
		{0.347, 0.10},
		{0.405, 0.075},
		{0.463, 0.05},
		{0.739, 0.01},
		{2.0, 0.01},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, kpssPValue(tt.stat, crit), 1e-9, "stat=%f", tt.stat)
	}
}
