package network

import (
	"bytes"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEdgeListRoundTrip(t *testing.T) {
	g, err := Generate(50, 0.1, rand.NewPCG(3, 3))
	require.NoError(t, err)

	var b bytes.Buffer
	require.NoError(t, WriteEdgeList(&b, g))
	assert.True(t, strings.HasPrefix(b.String(), "source,target\n"))

	back, err := ReadEdgeList(&b, 50)
	require.NoError(t, err)
	assert.Equal(t, g.Edges(), back.Edges())
	for v := 0; v < 50; v++ {
		assert.Equal(t, g.Neighbors(v), back.Neighbors(v))
	}
}

func TestReadEdgeList(t *testing.T) {
	g, err := ReadEdgeList(strings.NewReader("# a path\n2,1\n0,1\n"), 4)
	require.NoError(t, err)
	assert.Equal(t, []Edge{{Source: 0, Target: 1}, {Source: 1, Target: 2}}, g.Edges())
	assert.Equal(t, 4, g.Order())

	_, err = ReadEdgeList(strings.NewReader("0,x\n"), 4)
	assert.ErrorIs(t, err, ErrInvalidEdge)

	_, err = ReadEdgeList(strings.NewReader("0,9\n"), 4)
	assert.ErrorIs(t, err, ErrInvalidEdge)

	_, err = ReadEdgeList(strings.NewReader("0,1,2\n"), 4)
	assert.Error(t, err)
}
