package rng_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/antminer/rng"
)

// TestSource_Deterministic verifies that equal seeds give equal streams and
// that seed 0 selects DefaultSeed.
func TestSource_Deterministic(t *testing.T) {
	a, b := rng.New(42), rng.New(42)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Float64(), b.Float64())
		require.Equal(t, a.Intn(7), b.Intn(7))
		require.Equal(t, a.NormFloat64(), b.NormFloat64())
	}

	z, d := rng.New(0), rng.New(rng.DefaultSeed)
	require.Equal(t, d.Float64(), z.Float64())
}

// TestDeriveSeed_Decorrelates verifies that neighbouring streams differ and
// that derivation is a pure function.
func TestDeriveSeed_Decorrelates(t *testing.T) {
	s0 := rng.DeriveSeed(7, 0)
	s1 := rng.DeriveSeed(7, 1)
	require.NotEqual(t, s0, s1)
	require.Equal(t, s0, rng.DeriveSeed(7, 0))
	require.NotZero(t, s0)
}

// TestRoulette verifies index selection: zero, negative and NaN weights
// never win, and -1 signals no positive weight.
func TestRoulette(t *testing.T) {
	r := rng.New(3)

	require.Equal(t, -1, rng.Roulette(r, nil))
	require.Equal(t, -1, rng.Roulette(r, []float64{0, -1, 0}))

	for i := 0; i < 200; i++ {
		require.Equal(t, 2, rng.Roulette(r, []float64{0, -3, 5, 0}))
	}

	// Frequencies follow the weights.
	var hits [2]int
	for i := 0; i < 10000; i++ {
		hits[rng.Roulette(r, []float64{1, 3})]++
	}
	require.InDelta(t, 0.75, float64(hits[1])/10000, 0.03)
}

// TestSource_Concurrent verifies the mutex guard under the race detector.
func TestSource_Concurrent(t *testing.T) {
	src := rng.New(9)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				v := src.Float64()
				if v < 0 || v >= 1 {
					t.Errorf("out of range: %v", v)
				}
			}
		}()
	}
	wg.Wait()

	d := src.Derive(1)
	require.NotNil(t, d)
}
