package batch

import (
	"testing"

	"github.com/mattijsgietman/Virus-on-a-network/pkg/epidemic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandCartesianProduct(t *testing.T) {
	points, err := Expand(map[string][]float64{
		"infectivity": {0.01, 0.1},
		"K":           {4, 10},
	})
	require.NoError(t, err)

	// keys sorted: K first, infectivity fastest
	assert.Equal(t, []Point{
		{"K": 4, "infectivity": 0.01},
		{"K": 4, "infectivity": 0.1},
		{"K": 10, "infectivity": 0.01},
		{"K": 10, "infectivity": 0.1},
	}, points)
}

func TestExpandEmpty(t *testing.T) {
	points, err := Expand(nil)
	require.NoError(t, err)
	assert.Equal(t, []Point{{}}, points)

	_, err = Expand(map[string][]float64{"K": {}})
	assert.ErrorIs(t, err, ErrEmptyGrid)
}

func TestApply(t *testing.T) {
	p, err := Apply(epidemic.DefaultParams(), Point{
		"K":                 4,
		"N":                 50,
		"num_infected":      3,
		"recovery_chance":   0.5,
		"vaccine_chance":    0.25,
		"resistance_chance": 0.75,
		"infectivity":       0.1,
		"cutoff":            0,
		"cutoff_threshold":  0.5,
	})
	require.NoError(t, err)

	assert.Equal(t, 4, p.K)
	assert.Equal(t, 50, p.N)
	assert.Equal(t, 3, p.NumInfected)
	assert.Equal(t, 0.5, p.RecoveryChance)
	assert.Equal(t, 0.25, p.VaccineChance)
	assert.Equal(t, 0.75, p.ResistanceChance)
	assert.Equal(t, 0.1, p.Infectivity)
	assert.False(t, p.Cutoff)
	assert.Equal(t, 0.5, p.CutoffThreshold)
	assert.Equal(t, "SIS", p.ModelType)
}

func TestApplyErrors(t *testing.T) {
	base := epidemic.DefaultParams()

	_, err := Apply(base, Point{"beta": 1})
	assert.ErrorIs(t, err, ErrUnknownParam)

	_, err = Apply(base, Point{"K": 2.5})
	assert.ErrorIs(t, err, ErrBadValue)

	_, err = Apply(base, Point{"cutoff": 0.5})
	assert.ErrorIs(t, err, ErrBadValue)
}
