package datamodel

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mattijsgietman/Virus-on-a-network/pkg/epidemic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestMakeDefaultConfig(t *testing.T) {
	c := MakeDefaultConfig()

	assert.Equal(t, epidemic.DefaultParams(), c.Simulation.Params)
	assert.Equal(t, 500, c.Simulation.N)
	assert.Equal(t, 1000, c.Simulation.MaxSteps)
	assert.Equal(t, 10, c.Batch.Iterations)
	assert.Equal(t, DefaultVary(), c.Batch.Vary)
	assert.True(t, strings.HasPrefix(c.Simulation.ExperimentName, "TEST-"))
	assert.Len(t, c.Simulation.ExperimentName, len("TEST-")+10)
	assert.NotEqual(t, c.Simulation.ExperimentName, MakeDefaultConfig().Simulation.ExperimentName)
}

func TestLoadConfigJSON(t *testing.T) {
	path := writeFile(t, "run.json", `{
		"top_level": {"seed": 7, "db": "sqlite"},
		"simulation": {"experiment_name": "exp1", "N": 50, "K": 4, "model_type": "SIR", "cutoff": false},
		"batch": {"vary": {"recovery_chance": [0.1, 0.2]}}
	}`)

	c, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, uint64(7), c.TopLevel.Seed)
	assert.Equal(t, "exp1", c.Simulation.ExperimentName)
	assert.Equal(t, 50, c.Simulation.N)
	assert.Equal(t, 4, c.Simulation.K)
	assert.Equal(t, "SIR", c.Simulation.ModelType)
	assert.False(t, c.Simulation.Cutoff)
	// untouched fields keep their defaults
	assert.Equal(t, 0.2, c.Simulation.Infectivity)
	assert.Equal(t, 8080, c.WebServer.Port)
	// the grid is replaced, not merged
	assert.Equal(t, map[string][]float64{"recovery_chance": {0.1, 0.2}}, c.Batch.Vary)
}

func TestLoadConfigYAML(t *testing.T) {
	path := writeFile(t, "run.yaml", `
top_level:
  log: DEBUG
simulation:
  N: 60
  infectivity: 0.5
  max_steps: 20
batch:
  iterations: 3
`)

	c, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "DEBUG", c.TopLevel.Log)
	assert.Equal(t, 60, c.Simulation.N)
	assert.Equal(t, 0.5, c.Simulation.Infectivity)
	assert.Equal(t, 20, c.Simulation.MaxSteps)
	assert.Equal(t, 3, c.Batch.Iterations)
	assert.Equal(t, DefaultVary(), c.Batch.Vary)
	assert.Equal(t, 10, c.Simulation.K)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = LoadConfig(writeFile(t, "bad.json", "{"))
	assert.Error(t, err)
}

func TestCopyConfig(t *testing.T) {
	c := MakeDefaultConfig()
	c.Simulation.ExperimentName = "copy"
	c.Batch.Vary = map[string][]float64{"K": {2}}

	ec := CopyConfig(c)
	assert.Equal(t, "copy", ec.ExperimentName)
	assert.Equal(t, c.Simulation.N, ec.N)
	assert.Equal(t, c.Simulation.ModelType, ec.ModelType)
	assert.Equal(t, c.TopLevel.Seed, ec.Seed)
	assert.JSONEq(t, `{"K":[2]}`, ec.Vary)
}
