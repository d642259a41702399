package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/sartorproj/arimasearch/autoarima"
	"github.com/sartorproj/arimasearch/diagnostics"
	"github.com/sartorproj/arimasearch/forecast"
	"github.com/sartorproj/arimasearch/stats"
	"github.com/sartorproj/arimasearch/timeseries"
	"gopkg.in/yaml.v3"
)

// Report types mirror the library results with non-finite numbers turned
// into nulls, which JSON cannot encode.

type seriesReport struct {
	Name      string    `json:"name,omitempty" yaml:"name,omitempty"`
	N         int       `json:"n" yaml:"n"`
	Frequency string    `json:"frequency" yaml:"frequency"`
	Start     time.Time `json:"start" yaml:"start"`
	End       time.Time `json:"end" yaml:"end"`
}

type candidateReport struct {
	Order     string   `json:"order" yaml:"order"`
	Status    string   `json:"status" yaml:"status"`
	Reason    string   `json:"reason,omitempty" yaml:"reason,omitempty"`
	Score     *float64 `json:"score,omitempty" yaml:"score,omitempty"`
	ResidualP *float64 `json:"residual_p_value,omitempty" yaml:"residual_p_value,omitempty"`
	Viable    bool     `json:"viable" yaml:"viable"`
}

type modelReport struct {
	Order     string   `json:"order" yaml:"order"`
	LogLik    *float64 `json:"log_lik" yaml:"log_lik"`
	AIC       *float64 `json:"aic" yaml:"aic"`
	AICc      *float64 `json:"aicc" yaml:"aicc"`
	BIC       *float64 `json:"bic" yaml:"bic"`
	NumParams int      `json:"num_params" yaml:"num_params"`
}

type pointReport struct {
	Time  time.Time `json:"time" yaml:"time"`
	Value *float64  `json:"value" yaml:"value"`
	Lower *float64  `json:"lower,omitempty" yaml:"lower,omitempty"`
	Upper *float64  `json:"upper,omitempty" yaml:"upper,omitempty"`
}

type accuracyReport struct {
	MAE  *float64 `json:"mae" yaml:"mae"`
	RMSE *float64 `json:"rmse" yaml:"rmse"`
	MAPE *float64 `json:"mape" yaml:"mape"`
	N    int      `json:"n" yaml:"n"`
}

type lagReport struct {
	Lag       int      `json:"lag" yaml:"lag"`
	Statistic *float64 `json:"statistic" yaml:"statistic"`
	PValue    *float64 `json:"p_value" yaml:"p_value"`
}

type diagnosticsReport struct {
	Stationarity    *testReport `json:"stationarity,omitempty" yaml:"stationarity,omitempty"`
	LjungBox        []lagReport `json:"ljung_box" yaml:"ljung_box"`
	SignificantLags []int       `json:"significant_acf_lags" yaml:"significant_acf_lags"`
	JarqueBeraP     *float64    `json:"jarque_bera_p_value,omitempty" yaml:"jarque_bera_p_value,omitempty"`
}

type testReport struct {
	Test       string   `json:"test" yaml:"test"`
	Statistic  *float64 `json:"statistic" yaml:"statistic"`
	PValue     *float64 `json:"p_value" yaml:"p_value"`
	Lags       int      `json:"lags" yaml:"lags"`
	Stationary bool     `json:"stationary" yaml:"stationary"`
}

type searchReport struct {
	RunID       string             `json:"run_id" yaml:"run_id"`
	Series      seriesReport       `json:"series" yaml:"series"`
	D           int                `json:"d" yaml:"d"`
	SeasonalD   int                `json:"seasonal_d" yaml:"seasonal_d"`
	Criterion   string             `json:"criterion" yaml:"criterion"`
	Duration    string             `json:"duration" yaml:"duration"`
	Best        *modelReport       `json:"best" yaml:"best"`
	Candidates  []candidateReport  `json:"candidates" yaml:"candidates"`
	Forecast    []pointReport      `json:"forecast,omitempty" yaml:"forecast,omitempty"`
	Holdout     *accuracyReport    `json:"holdout,omitempty" yaml:"holdout,omitempty"`
	Diagnostics *diagnosticsReport `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

type checkReport struct {
	Series    seriesReport `json:"series" yaml:"series"`
	Tests     []testReport `json:"tests" yaml:"tests"`
	Errors    []string     `json:"errors,omitempty" yaml:"errors,omitempty"`
	D         int          `json:"d" yaml:"d"`
	SeasonalD int          `json:"seasonal_d" yaml:"seasonal_d"`
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func newSeriesReport(s *timeseries.Series) seriesReport {
	rep := seriesReport{Name: s.Name(), N: s.Len(), Frequency: s.Frequency().String(), End: s.Last()}
	if s.Len() > 0 {
		rep.Start, _ = s.At(0)
	}
	return rep
}

func newTestReport(r *stats.Result) *testReport {
	return &testReport{
		Test:       string(r.Test),
		Statistic:  finite(r.Statistic),
		PValue:     finite(r.PValue),
		Lags:       r.Lags,
		Stationary: r.IsStationary,
	}
}

func newAccuracyReport(a forecast.Accuracy) *accuracyReport {
	return &accuracyReport{MAE: finite(a.MAE), RMSE: finite(a.RMSE), MAPE: finite(a.MAPE), N: a.N}
}

func newDiagnosticsReport(d *diagnostics.Report) *diagnosticsReport {
	rep := &diagnosticsReport{SignificantLags: d.SignificantLags()}
	if d.Stationarity != nil {
		rep.Stationarity = newTestReport(d.Stationarity)
	}
	for _, lb := range d.LjungBox {
		rep.LjungBox = append(rep.LjungBox, lagReport{Lag: lb.Lag, Statistic: finite(lb.Statistic), PValue: finite(lb.PValue)})
	}
	if d.Normality != nil {
		rep.JarqueBeraP = finite(d.Normality.PValue)
	}
	return rep
}

func buildReport(series *timeseries.Series, res *autoarima.Result, criterion autoarima.Criterion) *searchReport {
	rep := &searchReport{
		RunID:     res.Search.RunID,
		Series:    newSeriesReport(series),
		D:         res.D,
		SeasonalD: res.SD,
		Criterion: string(criterion),
		Duration:  res.Search.Duration.String(),
	}

	for _, ev := range res.Search.Trace {
		c := candidateReport{Order: ev.Order.String(), Status: string(ev.Fit.Status), Reason: ev.Fit.Reason, Viable: ev.Viable}
		if ev.Fit.OK() {
			c.Score = finite(ev.Score)
		}
		switch {
		case ev.Residual != nil:
			c.ResidualP = finite(ev.Residual.PValue)
		case ev.ResidualErr != "":
			c.Reason = "residual test: " + ev.ResidualErr
		}
		rep.Candidates = append(rep.Candidates, c)
	}

	if best := res.Search.Best; best != nil {
		rep.Best = &modelReport{
			Order:     best.Order.String(),
			LogLik:    finite(best.LogLik),
			AIC:       finite(best.AIC),
			AICc:      finite(best.AICc),
			BIC:       finite(best.BIC),
			NumParams: best.NumParams,
		}
	}

	if res.Forecast != nil {
		for _, p := range res.Forecast.Points {
			pt := pointReport{Time: p.Time, Value: finite(p.Value)}
			if res.Forecast.HasIntervals {
				pt.Lower, pt.Upper = finite(p.Lower), finite(p.Upper)
			}
			rep.Forecast = append(rep.Forecast, pt)
		}
	}

	if res.Diagnostics != nil {
		rep.Diagnostics = newDiagnosticsReport(res.Diagnostics)
	}
	return rep
}

func encode(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}
