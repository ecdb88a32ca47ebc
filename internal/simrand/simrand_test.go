package simrand

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRemapsZeroSeed(t *testing.T) {
	r := New(0)
	require.NotZero(t, r.s)
}

func TestDeterministicSequence(t *testing.T) {
	a := New(42)
	b := New(42)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.NextU64(), b.NextU64())
	}
}

func TestIntnBounds(t *testing.T) {
	r := New(7)
	for i := 0; i < 1000; i++ {
		v := r.Intn(10)
		require.GreaterOrEqual(t, v, 0)
		require.Less(t, v, 10)
	}
	require.Equal(t, 0, r.Intn(0))
}

func TestRangeFBounds(t *testing.T) {
	r := New(99)
	for i := 0; i < 1000; i++ {
		v := r.RangeF(-2.0, 3.0)
		require.GreaterOrEqual(t, v, -2.0)
		require.Less(t, v, 3.0)
	}
	require.Equal(t, 5.0, r.RangeF(5.0, 5.0))
}
