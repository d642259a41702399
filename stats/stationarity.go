package stats

import (
	"errors"
	"fmt"
	"math"

	"github.com/sartorproj/arimasearch/timeseries"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

var (
	// ErrInsufficientData is returned when a series is too short for a test.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrDegenerateSeries is returned when a test cannot be computed, e.g.
	// for a constant series or a singular regression.
	ErrDegenerateSeries = errors.New("degenerate series")
)

// DefaultSignificance is the p-value threshold used to call a series stationary.
const DefaultSignificance = 0.05

// DefaultMinLength is the shortest series a Tester accepts.
const DefaultMinLength = 8

// minResidualDOF is the smallest residual degrees of freedom an ADF
// regression may be left with after lag selection.
const minResidualDOF = 3

// perfectFitTol is the relative residual size below which a regression is
// treated as an exact fit.
const perfectFitTol = 1e-10

// TestKind names a stationarity test.
type TestKind string

const (
	// ADFTest is the Augmented Dickey-Fuller unit-root test (H0: unit root).
	ADFTest TestKind = "adf"
	// KPSSTest is the KPSS level-stationarity test (H0: stationary).
	KPSSTest TestKind = "kpss"
)

// Result is the outcome of a stationarity test.
type Result struct {
	Test         TestKind           `json:"test" yaml:"test"`
	Statistic    float64            `json:"statistic" yaml:"statistic"`
	PValue       float64            `json:"p_value" yaml:"p_value"`
	Lags         int                `json:"lags" yaml:"lags"`
	NObs         int                `json:"n_obs" yaml:"n_obs"`
	CriticalVals map[string]float64 `json:"critical_values,omitempty" yaml:"critical_values,omitempty"`
	IsStationary bool               `json:"is_stationary" yaml:"is_stationary"`
}

// StationarityTester classifies a series as stationary or not.
type StationarityTester interface {
	Test(series *timeseries.Series) (*Result, error)
}

// Tester runs a stationarity test at a fixed significance threshold.
// The zero value is not usable; start from NewTester.
type Tester struct {
	Kind      TestKind
	Threshold float64
	MinLength int
	MaxLag    int // 0 selects the lag order automatically
}

// NewTester returns an ADF tester at the default significance.
func NewTester() Tester {
	return Tester{
		Kind:      ADFTest,
		Threshold: DefaultSignificance,
		MinLength: DefaultMinLength,
	}
}

// Test runs the configured test. For ADF the series is stationary when
// p ≤ Threshold; for KPSS, whose null is stationarity, when p > Threshold.
func (t Tester) Test(series *timeseries.Series) (*Result, error) {
	if series == nil {
		return nil, fmt.Errorf("%w: nil series", timeseries.ErrInvalidInput)
	}
	if n := series.Len(); n < t.MinLength {
		return nil, fmt.Errorf("%w: %d observations, need %d", ErrInsufficientData, n, t.MinLength)
	}

	var (
		res *Result
		err error
	)
	switch t.Kind {
	case ADFTest, "":
		res, err = ADF(series, t.MaxLag)
		if err == nil {
			res.IsStationary = res.PValue <= t.Threshold
		}
	case KPSSTest:
		res, err = KPSS(series, "c", t.MaxLag)
		if err == nil {
			res.IsStationary = kpssStationary(res, t.Threshold)
		}
	default:
		return nil, fmt.Errorf("unknown stationarity test %q", t.Kind)
	}
	return res, err
}

// ADF performs the Augmented Dickey-Fuller test with a constant.
// The null hypothesis is that the series has a unit root (is non-stationary).
// IsStationary uses DefaultSignificance.
func ADF(series *timeseries.Series, maxLag int) (*Result, error) {
	y := series.Values()
	n := len(y)
	if n < 2+minResidualDOF+1 {
		return nil, fmt.Errorf("%w: %d observations", ErrInsufficientData, n)
	}
	if series.Variance() == 0 {
		return nil, fmt.Errorf("%w: zero variance", ErrDegenerateSeries)
	}

	// Default lag selection: floor((n-1)^(1/3)), shrunk until the
	// regression keeps enough residual degrees of freedom.
	if maxLag <= 0 {
		maxLag = int(math.Floor(math.Cbrt(float64(n - 1))))
	}
	for maxLag > 0 && (n-maxLag-1)-(2+maxLag) < minResidualDOF {
		maxLag--
	}

	diff := make([]float64, n-1)
	for i := 1; i < n; i++ {
		diff[i-1] = y[i] - y[i-1]
	}

	// delta_y_t = alpha + beta*y_{t-1} + sum(gamma_i * delta_y_{t-i}) + e_t
	nObs := n - maxLag - 1
	k := 2 + maxLag
	x := mat.NewDense(nObs, k, nil)
	dy := mat.NewVecDense(nObs, nil)
	for i := 0; i < nObs; i++ {
		t := i + maxLag
		dy.SetVec(i, diff[t])
		x.Set(i, 0, 1)
		x.Set(i, 1, y[t])
		for j := 1; j <= maxLag; j++ {
			x.Set(i, 1+j, diff[t-j])
		}
	}

	coeffs, se, err := olsRegression(x, dy)
	if err != nil {
		return nil, err
	}

	tStat := coeffs[1] / se[1]

	return &Result{
		Test:         ADFTest,
		Statistic:    tStat,
		PValue:       mackinnonPValue(tStat),
		Lags:         maxLag,
		NObs:         nObs,
		CriticalVals: mackinnonCritical(nObs),
		IsStationary: mackinnonPValue(tStat) <= DefaultSignificance,
	}, nil
}

// olsRegression returns OLS coefficients and their standard errors.
func olsRegression(x *mat.Dense, y *mat.VecDense) (coeffs, stdErrors []float64, err error) {
	n, k := x.Dims()
	if n <= k {
		return nil, nil, fmt.Errorf("%w: %d observations for %d regressors", ErrInsufficientData, n, k)
	}

	var xtx mat.Dense
	xtx.Mul(x.T(), x)

	var inv mat.Dense
	if err := inv.Inverse(&xtx); err != nil {
		return nil, nil, fmt.Errorf("%w: singular design matrix: %v", ErrDegenerateSeries, err)
	}

	var xty, beta mat.VecDense
	xty.MulVec(x.T(), y)
	beta.MulVec(&inv, &xty)

	var fitted, resid mat.VecDense
	fitted.MulVec(x, &beta)
	resid.SubVec(y, &fitted)
	sse := mat.Dot(&resid, &resid)
	if sse <= perfectFitTol*stat.Variance(y.RawVector().Data, nil)*float64(n-1) {
		return nil, nil, fmt.Errorf("%w: regression fits exactly", ErrDegenerateSeries)
	}

	s2 := sse / float64(n-k)
	coeffs = make([]float64, k)
	stdErrors = make([]float64, k)
	for i := 0; i < k; i++ {
		coeffs[i] = beta.AtVec(i)
		stdErrors[i] = math.Sqrt(s2 * inv.At(i, i))
	}

	if se := stdErrors[1]; se == 0 || math.IsNaN(se) || math.IsInf(se, 0) || se < perfectFitTol*math.Abs(coeffs[1]) {
		return nil, nil, fmt.Errorf("%w: vanishing standard error", ErrDegenerateSeries)
	}
	return coeffs, stdErrors, nil
}

// MacKinnon (1994) response surface for the constant-only case.
const (
	tauMax  = 2.74
	tauMin  = -18.83
	tauStar = -1.61
)

var (
	tauSmallP = []float64{2.1659, 1.4412, 3.8269e-2}
	tauLargeP = []float64{1.7339, 9.3202e-1, -1.2745e-1, -1.0368e-2}
)

// mackinnonPValue approximates the ADF p-value for a t-statistic.
func mackinnonPValue(stat float64) float64 {
	switch {
	case stat > tauMax:
		return 1
	case stat < tauMin:
		return 0
	}

	coef := tauLargeP
	if stat <= tauStar {
		coef = tauSmallP
	}
	return distuv.UnitNormal.CDF(polyval(coef, stat))
}

// MacKinnon (2010) finite-sample critical values, constant only.
var tauCritical = map[string][4]float64{
	"1%":  {-3.43035, -6.5393, -16.786, -79.433},
	"5%":  {-2.86154, -2.8903, -4.234, -40.040},
	"10%": {-2.56677, -1.5384, -2.809, 0},
}

func mackinnonCritical(nObs int) map[string]float64 {
	inv := 1 / float64(nObs)
	out := make(map[string]float64, len(tauCritical))
	for level, c := range tauCritical {
		out[level] = c[0] + c[1]*inv + c[2]*inv*inv + c[3]*inv*inv*inv
	}
	return out
}

// polyval evaluates coefficients given in ascending order of power.
func polyval(coef []float64, x float64) float64 {
	v := 0.0
	for i := len(coef) - 1; i >= 0; i-- {
		v = v*x + coef[i]
	}
	return v
}

// KPSS performs the Kwiatkowski-Phillips-Schmidt-Shin test.
// The null hypothesis is that the series is stationary around a level
// (regression "c") or a trend ("ct"). IsStationary uses DefaultSignificance.
func KPSS(series *timeseries.Series, regression string, nlags int) (*Result, error) {
	values := series.Values()
	n := len(values)
	if n < 3 {
		return nil, fmt.Errorf("%w: %d observations", ErrInsufficientData, n)
	}
	if series.Variance() == 0 {
		return nil, fmt.Errorf("%w: zero variance", ErrDegenerateSeries)
	}

	if nlags <= 0 {
		nlags = int(math.Ceil(12 * math.Pow(float64(n)/100, 0.25)))
	}
	nlags = min(nlags, n-1)

	residuals := make([]float64, n)
	if regression == "ct" {
		nf := float64(n)
		var sumT, sumY, sumTY, sumT2 float64
		for i, v := range values {
			t := float64(i)
			sumT += t
			sumY += v
			sumTY += t * v
			sumT2 += t * t
		}
		b := (nf*sumTY - sumT*sumY) / (nf*sumT2 - sumT*sumT)
		a := (sumY - b*sumT) / nf
		for i, v := range values {
			residuals[i] = v - a - b*float64(i)
		}
	} else {
		mean := series.Mean()
		for i, v := range values {
			residuals[i] = v - mean
		}
	}

	// Long-run variance with Bartlett weights (Newey-West).
	s2 := 0.0
	for _, r := range residuals {
		s2 += r * r
	}
	s2 /= float64(n)
	for l := 1; l <= nlags; l++ {
		cov := 0.0
		for i := l; i < n; i++ {
			cov += residuals[i] * residuals[i-l]
		}
		cov /= float64(n)
		s2 += 2 * (1 - float64(l)/float64(nlags+1)) * cov
	}
	if s2 <= 0 {
		return nil, fmt.Errorf("%w: non-positive long-run variance", ErrDegenerateSeries)
	}

	etaSq, cum := 0.0, 0.0
	for _, r := range residuals {
		cum += r
		etaSq += cum * cum
	}
	stat := etaSq / (float64(n) * float64(n) * s2)

	crit := kpssCritical[regression]
	if regression != "ct" {
		crit = kpssCritical["c"]
	}
	p := kpssPValue(stat, crit)

	res := &Result{
		Test:      KPSSTest,
		Statistic: stat,
		PValue:    p,
		Lags:      nlags,
		NObs:      n,
		CriticalVals: map[string]float64{
			"10%":  crit[0],
			"5%":   crit[1],
			"2.5%": crit[2],
			"1%":   crit[3],
		},
	}
	res.IsStationary = kpssStationary(res, DefaultSignificance)
	return res, nil
}

// kpssStationary decides the KPSS outcome at threshold. The p-value is
// clipped at 0.10, so a statistic at or below the 10% critical value
// accepts stationarity at any threshold.
func kpssStationary(res *Result, threshold float64) bool {
	if crit, ok := res.CriticalVals["10%"]; ok && res.Statistic <= crit {
		return true
	}
	return res.PValue > threshold
}

var (
	kpssPLevels  = [4]float64{0.10, 0.05, 0.025, 0.01}
	kpssCritical = map[string][4]float64{
		"c":  {0.347, 0.463, 0.574, 0.739},
		"ct": {0.119, 0.146, 0.176, 0.216},
	}
)

// kpssPValue interpolates the tabulated critical values; results are
// clipped to [0.01, 0.10].
func kpssPValue(stat float64, crit [4]float64) float64 {
	if stat <= crit[0] {
		return kpssPLevels[0]
	}
	if stat >= crit[3] {
		return kpssPLevels[3]
	}
	for i := 1; i < len(crit); i++ {
		if stat <= crit[i] {
			frac := (stat - crit[i-1]) / (crit[i] - crit[i-1])
			return kpssPLevels[i-1] + frac*(kpssPLevels[i]-kpssPLevels[i-1])
		}
	}
	return kpssPLevels[3]
}
