package forecast

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Accuracy summarizes forecast errors against held-out observations.
type Accuracy struct {
	MAE  float64 `json:"mae" yaml:"mae"`
	RMSE float64 `json:"rmse" yaml:"rmse"`
	// MAPE is in percent and skips zero actuals. NaN when every actual is zero.
	MAPE float64 `json:"mape" yaml:"mape"`
	N    int     `json:"n" yaml:"n"`
}

// Evaluate compares predicted with actual.
func Evaluate(actual, predicted []float64) (Accuracy, error) {
	if len(actual) == 0 || len(actual) != len(predicted) {
		return Accuracy{}, fmt.Errorf("need equal non-empty lengths, got %d and %d", len(actual), len(predicted))
	}

	errs := make([]float64, len(actual))
	floats.SubTo(errs, actual, predicted)

	abs := make([]float64, len(errs))
	var pct []float64
	for i, e := range errs {
		abs[i] = math.Abs(e)
		if actual[i] != 0 {
			pct = append(pct, 100*math.Abs(e/actual[i]))
		}
	}

	acc := Accuracy{
		MAE:  stat.Mean(abs, nil),
		RMSE: math.Sqrt(floats.Dot(errs, errs) / float64(len(errs))),
		MAPE: math.NaN(),
		N:    len(errs),
	}
	if len(pct) > 0 {
		acc.MAPE = stat.Mean(pct, nil)
	}
	return acc, nil
}
