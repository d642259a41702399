package arima

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderString(t *testing.T) {
	assert.Equal(t, "ARIMA(1,1,0)", Order{P: 1, D: 1}.String())
	assert.Equal(t, "SARIMA(1,1,1)(0,1,1)[12]",
		Order{P: 1, D: 1, Q: 1, Seasonal: SeasonalOrder{D: 1, Q: 1, S: 12}}.String())
}

func TestOrderValidate(t *testing.T) {
	valid := []Order{
		{},
		{P: 2, D: 1, Q: 2},
		{P: 1, Seasonal: SeasonalOrder{P: 1, D: 1, Q: 1, S: 4}},
		{Seasonal: SeasonalOrder{S: 12}},
	}
	for _, o := range valid {
		assert.NoError(t, o.Validate(), o.String())
	}

	invalid := []Order{
		{P: -1},
		{D: -1},
		{Q: -2},
		{Seasonal: SeasonalOrder{P: 1}},
		{Seasonal: SeasonalOrder{Q: -1, S: 4}},
		{Seasonal: SeasonalOrder{S: -4}},
	}
	for _, o := range invalid {
		assert.ErrorIs(t, o.Validate(), ErrInvalidOrder, "%+v", o)
	}
}

func TestOrderAsMapKey(t *testing.T) {
	seen := map[Order]int{}
	seen[Order{P: 1, D: 1, Seasonal: SeasonalOrder{Q: 1, S: 12}}]++
	seen[Order{P: 1, D: 1, Seasonal: SeasonalOrder{Q: 1, S: 12}}]++
	seen[Order{P: 1, D: 1}]++

	assert.Len(t, seen, 2)
	assert.Equal(t, 2, seen[Order{P: 1, D: 1, Seasonal: SeasonalOrder{Q: 1, S: 12}}])
}

func TestOrderCounts(t *testing.T) {
	o := Order{P: 2, D: 1, Q: 1, Seasonal: SeasonalOrder{P: 1, D: 1, Q: 1, S: 12}}
	assert.Equal(t, 6, o.NumParams())
	assert.Equal(t, 13, o.Differenced())
	assert.Equal(t, 12, o.MaxLag())
	assert.True(t, o.IsSeasonal())
	assert.False(t, Order{P: 3}.IsSeasonal())
}
