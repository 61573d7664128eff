package datamodel

import (
	"math/rand/v2"
	"testing"

	"github.com/mattijsgietman/Virus-on-a-network/pkg/epidemic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceIsDeterministic(t *testing.T) {
	a, b := NewSource(12345), NewSource(12345)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Uint64(), b.Uint64(), "draw %d", i)
	}
}

func TestSourceDependsOnSeed(t *testing.T) {
	a, b := NewSource(1), NewSource(2)
	same := 0
	for i := 0; i < 20; i++ {
		if a.Uint64() == b.Uint64() {
			same++
		}
	}
	assert.Zero(t, same)
}

func TestSourceCrossesBlockBoundary(t *testing.T) {
	s := NewSource(7)
	seen := make(map[uint64]bool)
	// 64-byte blocks hold 8 draws
	for i := 0; i < 8*5; i++ {
		seen[s.Uint64()] = true
	}
	assert.Len(t, seen, 40)
}

func TestFloat64Range(t *testing.T) {
	r := rand.New(NewSource(12345))
	for i := 0; i < 1000; i++ {
		f := r.Float64()
		if f < 0.0 || f >= 1.0 {
			t.Errorf("Float64() returned invalid value: %f", f)
		}
	}
}

func TestSourceDrivesModel(t *testing.T) {
	p := epidemic.DefaultParams()
	p.N = 80

	run := func() []epidemic.Snapshot {
		m, err := epidemic.New(p, NewSource(99))
		require.NoError(t, err)
		for i := 0; i < 25; i++ {
			m.Step()
		}
		return m.History()
	}
	assert.Equal(t, run(), run())
}
