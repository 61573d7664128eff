package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	model "github.com/mattijsgietman/Virus-on-a-network/pkg/datamodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToString(t *testing.T) {
	row, err := convertToString(model.StepRecord{
		ExperimentName: "e",
		RunId:          1,
		Step:           2,
		PercInfected:   0.125,
		TotalInfected:  5,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"e", "1", "2", "0.125", "0", "0", "5", "0", "0"}, row)

	assert.Equal(t, []string{"ExperimentName", "RunId", "Step", "PercInfected", "PercSusceptible",
		"PercResistant", "TotalInfected", "TotalSusceptible", "TotalResistant"}, fieldNames(model.StepRecord{}))

	_, err = convertToString(3)
	assert.Error(t, err)
}

func TestWriteTable(t *testing.T) {
	c := testConfig(t)
	c.Simulation.ExperimentName = "csv"
	o, err := simulate(context.Background(), c, "tester")
	require.NoError(t, err)

	var b bytes.Buffer
	require.NoError(t, writeTable(&b, "steps", "csv"))
	records, err := csv.NewReader(&b).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, o.Steps+2)
	assert.Equal(t, "ExperimentName", records[0][0])
	assert.Equal(t, "0", records[1][2])

	b.Reset()
	require.NoError(t, writeTable(&b, "runs", "csv"))
	records, err = csv.NewReader(&b).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 2)

	b.Reset()
	require.NoError(t, writeTable(&b, "experiments", ""))
	records, err = csv.NewReader(&b).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "csv", records[1][0])
	assert.NotEmpty(t, records[1][3], "start date")

	assert.Error(t, writeTable(&b, "encounters", ""))
}

func TestExportToFileAndList(t *testing.T) {
	c := testConfig(t)
	c.Simulation.ExperimentName = "listed"
	_, err := simulate(context.Background(), c, "tester")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "runs.csv")
	require.NoError(t, exportCSV("runs", "listed", path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "ExperimentName,RunId,"))

	var b bytes.Buffer
	require.NoError(t, listExperiments(&b))
	assert.Contains(t, b.String(), "listed")
	assert.Contains(t, b.String(), "tester")
}
