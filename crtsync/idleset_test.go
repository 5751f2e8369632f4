package crtsync

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIdleSetSetIdleActive(t *testing.T) {
	s := NewIdleSet(4)
	require.EqualValues(t, 0, s.Approx())

	s.SetIdle(0)
	s.SetIdle(1)
	require.EqualValues(t, 2, s.Approx())

	s.SetActive(0)
	require.EqualValues(t, 1, s.Approx())

	// Setting an already-active slot active again is a no-op.
	s.SetActive(0)
	require.EqualValues(t, 1, s.Approx())
}

func TestIdleSetTryAcquire(t *testing.T) {
	s := NewIdleSet(4)
	s.SetIdle(2)

	require.True(t, s.TryAcquire(2))
	require.False(t, s.TryAcquire(2)) // already active now
	require.EqualValues(t, 0, s.Approx())
}

func TestIdleSetFindIdleSkipsCaller(t *testing.T) {
	s := NewIdleSet(3)
	s.SetIdle(0)
	s.SetIdle(1)
	s.SetIdle(2)

	idx, ok := s.FindIdle(1, NewLCG(7))
	require.True(t, ok)
	require.NotEqual(t, 1, idx)
}

func TestIdleSetFindIdleNoneAvailable(t *testing.T) {
	s := NewIdleSet(3)
	_, ok := s.FindIdle(0, NewLCG(1))
	require.False(t, ok)
}

func TestIdleSetFindMulti(t *testing.T) {
	s := NewIdleSet(5)
	s.SetIdle(1)
	s.SetIdle(2)
	s.SetIdle(3)

	found := s.FindMulti(0, NewLCG(3), 10)
	require.Len(t, found, 3)
	for _, idx := range found {
		require.NotEqual(t, 0, idx)
	}
}

func TestLCGDeterministic(t *testing.T) {
	a := NewLCG(42)
	b := NewLCG(42)
	for i := 0; i < 10; i++ {
		require.Equal(t, a.Next(), b.Next())
	}
}

func TestLCGSpreads(t *testing.T) {
	r := NewLCG(1)
	seen := map[uint32]bool{}
	for i := 0; i < 20; i++ {
		seen[r.Next()] = true
	}
	require.Greater(t, len(seen), 1)
}
