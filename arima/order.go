package arima

import (
	"errors"
	"fmt"
)

// ErrInvalidOrder is returned for orders with negative terms or seasonal
// terms without a period.
var ErrInvalidOrder = errors.New("invalid model order")

// SeasonalOrder is the seasonal part (P, D, Q)[S] of a SARIMA order.
// S == 0 means the model is non-seasonal.
type SeasonalOrder struct {
	P int `json:"P" yaml:"P"`
	D int `json:"D" yaml:"D"`
	Q int `json:"Q" yaml:"Q"`
	S int `json:"s" yaml:"s"`
}

// Order is a candidate (p, d, q)(P, D, Q)[s] model structure. It is a
// comparable value and can be used as a map key.
type Order struct {
	P        int           `json:"p" yaml:"p"`
	D        int           `json:"d" yaml:"d"`
	Q        int           `json:"q" yaml:"q"`
	Seasonal SeasonalOrder `json:"seasonal" yaml:"seasonal"`
}

// IsSeasonal reports whether the order carries a seasonal period.
func (o Order) IsSeasonal() bool { return o.Seasonal.S > 0 }

// Validate checks that all terms are non-negative and that seasonal terms
// come with a period.
func (o Order) Validate() error {
	s := o.Seasonal
	terms := []struct {
		name  string
		value int
	}{{"p", o.P}, {"d", o.D}, {"q", o.Q}, {"P", s.P}, {"D", s.D}, {"Q", s.Q}, {"s", s.S}}
	for _, t := range terms {
		if t.value < 0 {
			return fmt.Errorf("%w: %s = %d", ErrInvalidOrder, t.name, t.value)
		}
	}
	if s.S == 0 && (s.P > 0 || s.D > 0 || s.Q > 0) {
		return fmt.Errorf("%w: seasonal terms need a period", ErrInvalidOrder)
	}
	return nil
}

// NumParams counts the estimated coefficients including the intercept.
func (o Order) NumParams() int {
	return o.P + o.Q + o.Seasonal.P + o.Seasonal.Q + 1
}

// Differenced is the number of observations consumed by differencing.
func (o Order) Differenced() int {
	return o.D + o.Seasonal.D*o.Seasonal.S
}

// MaxLag is the longest lag the ARMA recursion reaches back.
func (o Order) MaxLag() int {
	s := o.Seasonal
	return max(o.P, o.Q, s.P*s.S, s.Q*s.S)
}

func (o Order) String() string {
	if !o.IsSeasonal() {
		return fmt.Sprintf("ARIMA(%d,%d,%d)", o.P, o.D, o.Q)
	}
	s := o.Seasonal
	return fmt.Sprintf("SARIMA(%d,%d,%d)(%d,%d,%d)[%d]", o.P, o.D, o.Q, s.P, s.D, s.Q, s.S)
}
