package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	model "github.com/mattijsgietman/Virus-on-a-network/pkg/datamodel"
	"github.com/mattijsgietman/Virus-on-a-network/pkg/metrics"
	logger "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	var err error
	if log, err = newLogger("WARN", ""); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// a small configuration recording to a fresh sqlite file
func testConfig(t *testing.T) *model.Config {
	t.Helper()
	c := model.MakeDefaultConfig()
	c.TopLevel.DataBase = "sqlite"
	c.TopLevel.DBFile = filepath.Join(t.TempDir(), "virusnet.db")
	c.Simulation.N = 60
	c.Simulation.MaxSteps = 30
	c.Simulation.Record = true
	c.Batch.Iterations = 2
	c.Batch.Workers = 2
	c.Batch.DisplayProgress = false

	require.NoError(t, model.Init(log, c))
	t.Cleanup(func() {
		if sqlDB, err := model.DB.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return c
}

func TestNewLogger(t *testing.T) {
	l, err := newLogger("DEBUG", "")
	require.NoError(t, err)
	assert.Equal(t, logger.DebugLevel, l.GetLevel())
	assert.IsType(t, UTCFormatter{}, l.Formatter)

	_, err = newLogger("LOUD", "")
	assert.Error(t, err)
}

func TestHelpFunc(t *testing.T) {
	var b bytes.Buffer
	HelpFunc(&b)
	out := b.String()

	assert.Contains(t, out, "Fields of SimulationConfig:")
	assert.Contains(t, out, "Params (inline)")
	assert.Contains(t, out, "Infectivity (infectivity) float64")
	assert.Contains(t, out, "Vary (vary) map[string][]float64")
}

func TestSimulateRecords(t *testing.T) {
	c := testConfig(t)
	c.Simulation.ExperimentName = "sim-record"

	o, err := simulate(context.Background(), c, "tester")
	require.NoError(t, err)
	assert.LessOrEqual(t, o.Steps, 30)

	steps, err := model.GetStepRecords("sim-record")
	require.NoError(t, err)
	require.Len(t, steps, o.Steps+1)
	assert.Equal(t, o.Final, steps[len(steps)-1].Snapshot())

	runs, err := model.GetRunResults("sim-record")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, o.Steps, runs[0].Steps)
	assert.Equal(t, "{}", runs[0].Varied)

	exps, err := model.GetExperiments()
	require.NoError(t, err)
	require.Len(t, exps, 1)
	assert.Equal(t, model.KindSim, exps[0].Kind)
	assert.Equal(t, 1, exps[0].Runs)
}

func TestSimulateRejectsBadParams(t *testing.T) {
	c := model.MakeDefaultConfig()
	c.Simulation.NumInfected = c.Simulation.N + 1
	_, err := simulate(context.Background(), c, "tester")
	assert.Error(t, err)
}

func TestRunBatchRecords(t *testing.T) {
	c := testConfig(t)
	c.Simulation.ExperimentName = "batch-record"
	registry := metrics.NewRegistry()

	results, err := runBatch(context.Background(), c, "tester", registry)
	require.NoError(t, err)
	// 2 x 2 grid, 2 iterations
	require.Len(t, results, 8)

	runs, err := model.GetRunResults("batch-record")
	require.NoError(t, err)
	require.Len(t, runs, 8)
	for i, r := range runs {
		assert.Equal(t, i, r.RunId)
		assert.Equal(t, results[i].Steps, r.Steps)
		assert.Equal(t, c.TopLevel.Seed+uint64(i), r.Seed)
	}
	assert.JSONEq(t, `{"K":4,"infectivity":0.01}`, runs[0].Varied)

	steps, err := model.GetStepRecords("batch-record")
	require.NoError(t, err)
	total := 0
	for _, r := range results {
		total += r.Steps + 1
	}
	assert.Len(t, steps, total)

	assert.True(t, strings.HasPrefix(summarize(results), "8 runs:"))
}

func TestRunResultRow(t *testing.T) {
	c := testConfig(t)
	c.Simulation.Record = false
	c.Batch.Vary = map[string][]float64{"K": {4}}
	c.Batch.Iterations = 1

	results, err := runBatch(context.Background(), c, "tester", nil)
	require.NoError(t, err)
	require.Len(t, results, 1)

	row := runResult("x", results[0])
	assert.Equal(t, "x", row.ExperimentName)
	assert.JSONEq(t, `{"K":4}`, row.Varied)
	assert.Equal(t, results[0].Final.TotalInfected, row.TotalInfected)

	// nothing was recorded
	runs, err := model.GetRunResults(c.Simulation.ExperimentName)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestSimulateOnNetworkFile(t *testing.T) {
	c := model.MakeDefaultConfig()
	c.Simulation.N = 20
	c.Simulation.MaxSteps = 10
	c.Simulation.NetworkFile = filepath.Join(t.TempDir(), "empty.csv")
	// no edges, so nobody can catch the virus
	require.NoError(t, os.WriteFile(c.Simulation.NetworkFile, []byte("source,target\n"), 0o644))

	o, err := simulate(context.Background(), c, "tester")
	require.NoError(t, err)
	assert.LessOrEqual(t, o.Final.TotalInfected, c.Simulation.NumInfected)

	require.NoError(t, os.WriteFile(c.Simulation.NetworkFile, []byte("0,20\n"), 0o644))
	_, err = simulate(context.Background(), c, "tester")
	assert.Error(t, err)

	c.Simulation.NetworkFile = filepath.Join(t.TempDir(), "missing.csv")
	_, err = simulate(context.Background(), c, "tester")
	assert.Error(t, err)
}
