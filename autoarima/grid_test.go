package autoarima

import (
	"testing"

	"github.com/sartorproj/arimasearch/arima"
	"github.com/stretchr/testify/assert"
)

func TestGridCandidatesOrder(t *testing.T) {
	g := Grid{P: []int{0, 1}, D: []int{1}, Q: []int{0, 1}}
	assert.Equal(t, []arima.Order{
		{P: 0, D: 1, Q: 0},
		{P: 0, D: 1, Q: 1},
		{P: 1, D: 1, Q: 0},
		{P: 1, D: 1, Q: 1},
	}, g.Candidates())
}

func TestGridSeasonalCandidates(t *testing.T) {
	g := Grid{
		P: []int{0, 1}, D: []int{0}, Q: []int{0},
		Seasonal: &SeasonalGrid{P: []int{0, 1}, D: []int{1}, Q: []int{0, 1}, Period: 12},
	}
	got := g.Candidates()
	assert.Len(t, got, 2*1*1*2*1*2)

	assert.Equal(t, arima.Order{Seasonal: arima.SeasonalOrder{D: 1, S: 12}}, got[0])
	assert.Equal(t, arima.Order{Seasonal: arima.SeasonalOrder{D: 1, Q: 1, S: 12}}, got[1])
	assert.Equal(t, arima.Order{Seasonal: arima.SeasonalOrder{P: 1, D: 1, S: 12}}, got[2])
	assert.Equal(t, arima.Order{P: 1, Seasonal: arima.SeasonalOrder{D: 1, S: 12}}, got[4])

	seen := map[arima.Order]bool{}
	for _, o := range got {
		assert.False(t, seen[o], "duplicate %s", o)
		seen[o] = true
	}
}

func TestGridDeduplicatesRanges(t *testing.T) {
	g := Grid{P: []int{2, 0, 2, 1, 0}, D: []int{1, 1}, Q: []int{0}}
	got := g.Candidates()
	assert.Equal(t, []arima.Order{{P: 2, D: 1}, {P: 0, D: 1}, {P: 1, D: 1}}, got)
}

func TestGridValidate(t *testing.T) {
	assert.NoError(t, Grid{P: []int{0}, D: []int{0}, Q: []int{0}}.Validate())

	invalid := map[string]Grid{
		"empty p":      {D: []int{0}, Q: []int{0}},
		"negative q":   {P: []int{0}, D: []int{0}, Q: []int{-1}},
		"no period":    {P: []int{0}, D: []int{0}, Q: []int{0}, Seasonal: &SeasonalGrid{P: []int{0}, D: []int{0}, Q: []int{0}}},
		"empty season": {P: []int{0}, D: []int{0}, Q: []int{0}, Seasonal: &SeasonalGrid{P: []int{0}, D: []int{0}, Period: 4}},
	}
	for name, g := range invalid {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, g.Validate(), ErrInvalidGrid)
		})
	}
}

func TestConfigGridAndBounds(t *testing.T) {
	cfg := DefaultConfig()
	g := cfg.Grid(1, 0)
	assert.Nil(t, g.Seasonal)
	assert.Len(t, g.Candidates(), 9)

	cfg.Period = 12
	g = cfg.Grid(1, 1)
	assert.Equal(t, &SeasonalGrid{P: []int{0, 1}, D: []int{1}, Q: []int{0, 1}, Period: 12}, g.Seasonal)
	assert.Len(t, g.Candidates(), 36)

	b := cfg.Bounds(1, 1)
	assert.Equal(t, Bounds{MaxP: 2, MaxQ: 2, D: 1, Seasonal: &SeasonalBounds{MaxP: 1, MaxQ: 1, D: 1, Period: 12}}, b)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	mutations := map[string]func(*Config){
		"empty p range":  func(c *Config) { c.PRange = nil },
		"negative q":     func(c *Config) { c.QRange = []int{-1} },
		"period one":     func(c *Config) { c.Period = 1 },
		"significance":   func(c *Config) { c.Significance = 1.5 },
		"criterion":      func(c *Config) { c.Criterion = "hqic" },
		"test":           func(c *Config) { c.Test = "pp" },
		"workers":        func(c *Config) { c.Workers = 0 },
		"horizon":        func(c *Config) { c.Horizon = 0 },
		"confidence":     func(c *Config) { c.Confidence = 1 },
		"diagnostic lag": func(c *Config) { c.DiagnosticLags = []int{0} },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
