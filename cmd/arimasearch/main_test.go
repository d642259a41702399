package main

import (
	"bytes"
	"encoding/json"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sartorproj/arimasearch/timeseries"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// fixture writes a drifting random walk as CSV together with a quiet config.
func fixture(t *testing.T) (csvPath, configPath string) {
	t.Helper()
	dir := t.TempDir()

	rng := rand.New(rand.NewPCG(3, 4))
	values := make([]float64, 96)
	values[0] = 20
	for i := 1; i < len(values); i++ {
		values[i] = values[i-1] + 0.5 + rng.NormFloat64()
	}
	series, err := timeseries.NewRegular(time.Date(2016, time.January, 1, 0, 0, 0, 0, time.UTC), timeseries.Monthly, values)
	require.NoError(t, err)

	csvPath = filepath.Join(dir, "walk.csv")
	require.NoError(t, timeseries.SaveCSV(series, csvPath))

	configPath = filepath.Join(dir, "arimasearch.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("logging:\n  level: error\n  format: json\n"), 0o644))
	return csvPath, configPath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestSearchCommandJSON(t *testing.T) {
	csvPath, configPath := fixture(t)

	out, err := run(t, "search", csvPath, "--config", configPath, "--format", "json", "--workers", "2")
	require.NoError(t, err)

	var rep searchReport
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, 96, rep.Series.N)
	assert.Equal(t, "monthly", rep.Series.Frequency)
	assert.Equal(t, 1, rep.D)
	assert.Len(t, rep.Candidates, 9)
	require.NotNil(t, rep.Best)
	require.Len(t, rep.Forecast, 12)
	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), rep.Forecast[0].Time)
	assert.NotNil(t, rep.Forecast[0].Lower)
	assert.NotEmpty(t, rep.RunID)
	require.NotNil(t, rep.Diagnostics)
	assert.Len(t, rep.Diagnostics.LjungBox, 1)
}

func TestSearchCommandHoldoutAndResiduals(t *testing.T) {
	csvPath, configPath := fixture(t)
	residPath := filepath.Join(t.TempDir(), "resid.csv")
	reportPath := filepath.Join(t.TempDir(), "report.yaml")

	out, err := run(t, "search", csvPath, "-c", configPath, "--holdout", "6", "--stepwise",
		"--residuals", residPath, "-o", reportPath)
	require.NoError(t, err)
	assert.Empty(t, out)

	raw, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var rep searchReport
	require.NoError(t, yaml.Unmarshal(raw, &rep))
	assert.Equal(t, 90, rep.Series.N)
	require.NotNil(t, rep.Holdout)
	assert.Equal(t, 6, rep.Holdout.N)
	require.NotNil(t, rep.Holdout.MAE)
	assert.Greater(t, *rep.Holdout.MAE, 0.0)

	resid, err := timeseries.LoadCSV(residPath, nil)
	require.NoError(t, err)
	assert.Greater(t, resid.Len(), 80)
}

func TestCheckCommand(t *testing.T) {
	csvPath, configPath := fixture(t)

	out, err := run(t, "check", csvPath, "--config", configPath)
	require.NoError(t, err)

	var rep checkReport
	require.NoError(t, yaml.Unmarshal([]byte(out), &rep))
	require.Len(t, rep.Tests, 2)
	assert.Equal(t, "adf", rep.Tests[0].Test)
	assert.Equal(t, "kpss", rep.Tests[1].Test)
	assert.Equal(t, 1, rep.D)
	assert.Zero(t, rep.SeasonalD)
}

func TestCommandErrors(t *testing.T) {
	csvPath, configPath := fixture(t)

	_, err := run(t, "search")
	assert.Error(t, err)

	_, err = run(t, "search", filepath.Join(t.TempDir(), "missing.csv"), "-c", configPath)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = run(t, "search", csvPath, "-c", configPath, "--criterion", "hqic")
	assert.ErrorContains(t, err, "invalid flags")

	_, err = run(t, "search", csvPath, "-c", configPath, "--holdout", "96", "--horizon", "100")
	assert.ErrorContains(t, err, "holdout")
}
