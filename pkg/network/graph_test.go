package network

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOrderAndSymmetry(t *testing.T) {
	g, err := Generate(200, 0.05, rand.NewPCG(1, 2))
	require.NoError(t, err)
	assert.Equal(t, 200, g.Order())

	degreeSum := 0
	for i := 0; i < g.Order(); i++ {
		prev := -1
		for _, j := range g.Neighbors(i) {
			assert.NotEqual(t, i, j, "self loop at %d", i)
			assert.Greater(t, j, prev, "neighbors of %d not strictly ascending", i)
			assert.True(t, g.HasEdge(j, i), "edge %d-%d is not symmetric", i, j)
			prev = j
		}
		degreeSum += g.Degree(i)
	}
	assert.Equal(t, 2*g.EdgeCount(), degreeSum)
}

func TestGenerateDeterministic(t *testing.T) {
	g1, err := Generate(100, 0.1, rand.NewPCG(7, 7))
	require.NoError(t, err)
	g2, err := Generate(100, 0.1, rand.NewPCG(7, 7))
	require.NoError(t, err)
	assert.Equal(t, g1.Edges(), g2.Edges())

	g3, err := Generate(100, 0.1, rand.NewPCG(8, 8))
	require.NoError(t, err)
	assert.NotEqual(t, g1.Edges(), g3.Edges())
}

// the model draws its initial infections from the same source after the graph
func TestGenerateAdvancesSource(t *testing.T) {
	used, again, fresh := rand.NewPCG(5, 5), rand.NewPCG(5, 5), rand.NewPCG(5, 5)
	_, err := Generate(40, 0.2, used)
	require.NoError(t, err)
	_, err = Generate(40, 0.2, again)
	require.NoError(t, err)

	next := used.Uint64()
	assert.Equal(t, next, again.Uint64())
	assert.NotEqual(t, fresh.Uint64(), next)
}

func TestGenerateExtremes(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		g, err := Generate(30, 0, rand.NewPCG(1, 1))
		require.NoError(t, err)
		assert.Equal(t, 30, g.Order())
		assert.Equal(t, 0, g.EdgeCount())
		assert.Equal(t, 30, g.ComponentCount())
		assert.Equal(t, 1, g.LargestComponent())
	})
	t.Run("complete", func(t *testing.T) {
		g, err := Generate(12, 1, rand.NewPCG(1, 1))
		require.NoError(t, err)
		assert.Equal(t, 12*11/2, g.EdgeCount())
		assert.Equal(t, 12, g.LargestComponent())
	})
}

func TestGenerateEdgeDensity(t *testing.T) {
	// expected edges = p * n(n-1)/2 = 0.02 * 499500 = 9990
	g, err := Generate(1000, 0.02, rand.NewPCG(42, 42))
	require.NoError(t, err)
	assert.InDelta(t, 9990, g.EdgeCount(), 500)
}

func TestGenerateInvalid(t *testing.T) {
	_, err := Generate(0, 0.5, nil)
	assert.ErrorIs(t, err, ErrInvalidOrder)

	_, err = Generate(10, 1.5, nil)
	assert.ErrorIs(t, err, ErrInvalidProbability)

	_, err = Generate(10, -0.1, nil)
	assert.ErrorIs(t, err, ErrInvalidProbability)
}

func TestFromEdges(t *testing.T) {
	g, err := FromEdges(4, []Edge{{0, 1}, {2, 1}, {1, 0}})
	require.NoError(t, err)

	assert.Equal(t, 2, g.EdgeCount())
	assert.Equal(t, []int{0, 2}, g.Neighbors(1))
	assert.Equal(t, []Edge{{Source: 0, Target: 1}, {Source: 1, Target: 2}}, g.Edges())
	assert.Equal(t, 0, g.Degree(3))
	assert.Equal(t, 2, g.ComponentCount())
	assert.Equal(t, 3, g.LargestComponent())

	_, err = FromEdges(3, []Edge{{0, 3}})
	assert.ErrorIs(t, err, ErrInvalidEdge)

	_, err = FromEdges(3, []Edge{{1, 1}})
	assert.ErrorIs(t, err, ErrInvalidEdge)
}
