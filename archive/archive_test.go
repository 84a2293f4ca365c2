package archive_test

import (
	"cmp"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/antminer/archive"
	"github.com/katalvlaran/antminer/rng"
)

// TestArchive_Capacity verifies that inserting 0..9 into a capacity-5
// archive keeps {5,...,9} with Lowest 5 and Highest 9.
func TestArchive_Capacity(t *testing.T) {
	a, err := archive.New(5, archive.DefaultInfluence, cmp.Compare[int])
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		a.Add(i)
		require.LessOrEqual(t, a.Len(), 5)
	}
	require.Equal(t, []int{5, 6, 7, 8, 9}, a.Members())

	lo, ok := a.Lowest()
	require.True(t, ok)
	require.Equal(t, 5, lo)
	hi, ok := a.Highest()
	require.True(t, ok)
	require.Equal(t, 9, hi)
}

// TestArchive_TieDoesNotReplace verifies the strict boundary rule.
func TestArchive_TieDoesNotReplace(t *testing.T) {
	a, err := archive.New(2, archive.DefaultInfluence, cmp.Compare[int])
	require.NoError(t, err)

	require.True(t, a.Add(3))
	require.True(t, a.Add(4))
	require.True(t, a.Full())
	require.False(t, a.Add(3))
	require.False(t, a.Add(1))
	require.True(t, a.Add(5))
	require.Equal(t, []int{4, 5}, a.Members())
}

// TestArchive_Weights verifies that weights follow rank: the best member
// (last) has the largest weight and weights are recomputed on insert.
func TestArchive_Weights(t *testing.T) {
	a, err := archive.New(4, 0.5, cmp.Compare[int])
	require.NoError(t, err)

	_, ok := a.Lowest()
	require.False(t, ok)
	require.Equal(t, -1, a.Select(rng.New(1)))

	for _, v := range []int{2, 7, 4} {
		a.Add(v)
	}
	w := a.Weights()
	require.Len(t, w, 3)
	require.Greater(t, w[2], w[1])
	require.Greater(t, w[1], w[0])

	// The new best takes rank 1 and the old best drops to rank 2.
	best := w[2]
	a.Add(9)
	w = a.Weights()
	require.InDelta(t, best, w[3], 1e-12)
	require.Less(t, w[2], w[3])
}

// TestArchive_Validation covers the constructor errors.
func TestArchive_Validation(t *testing.T) {
	_, err := archive.New(0, 0.1, cmp.Compare[int])
	require.ErrorIs(t, err, archive.ErrInvalidCapacity)

	_, err = archive.New(3, 0, cmp.Compare[int])
	require.ErrorIs(t, err, archive.ErrInvalidInfluence)

	_, err = archive.NewContinuous(5, 5)
	require.ErrorIs(t, err, archive.ErrInvalidRange)

	_, err = archive.NewCategorical(0)
	require.ErrorIs(t, err, archive.ErrInvalidCardinality)
}

// TestContinuous_SampleInRange verifies that samples stay in [0,10) after
// any sequence of adds, including members at the boundaries.
func TestContinuous_SampleInRange(t *testing.T) {
	c, err := archive.NewContinuous(0, 10, archive.WithCapacity(5))
	require.NoError(t, err)
	r := rng.New(11)

	_, err = c.Sample(r)
	require.ErrorIs(t, err, archive.ErrEmptyArchive)

	c.Initialise(r, 5)
	require.Equal(t, 5, c.Len())

	adds := []float64{0, 9.999, 10 - 1e-12, 0.5, 5, 5, 5}
	for i, v := range adds {
		c.Add(archive.Solution[float64]{Value: v, Quality: float64(i + 1)})
		c.Update()
		for k := 0; k < 200; k++ {
			x, err := c.Sample(r)
			require.NoError(t, err)
			require.GreaterOrEqual(t, x, 0.0)
			require.Less(t, x, 10.0)
		}
	}
}

// TestContinuous_Converges verifies that sampling tightens when every
// member sits on the same value.
func TestContinuous_Converges(t *testing.T) {
	c, err := archive.NewContinuous(0, 100, archive.WithCapacity(3))
	require.NoError(t, err)
	for q := 1; q <= 3; q++ {
		c.Add(archive.Solution[float64]{Value: 42, Quality: float64(q)})
	}

	r := rng.New(5)
	for k := 0; k < 50; k++ {
		x, err := c.Sample(r)
		require.NoError(t, err)
		require.Equal(t, 42.0, x)
	}
	lo, hi := c.Bounds()
	require.Equal(t, 0.0, lo)
	require.Equal(t, 100.0, hi)
}

// TestCategorical_SampleInRange verifies that samples stay in [0,n).
func TestCategorical_SampleInRange(t *testing.T) {
	const n = 4
	c, err := archive.NewCategorical(n, archive.WithCapacity(6))
	require.NoError(t, err)
	require.Equal(t, n, c.Cardinality())
	r := rng.New(2)

	_, err = c.Sample(r)
	require.ErrorIs(t, err, archive.ErrEmptyArchive)

	c.Initialise(r, 6)
	for i := 0; i < 20; i++ {
		c.Add(archive.Solution[int]{Value: i % n, Quality: float64(i + 1)})
		for k := 0; k < 100; k++ {
			v, err := c.Sample(r)
			require.NoError(t, err)
			require.GreaterOrEqual(t, v, 0)
			require.Less(t, v, n)
		}
	}
}

// TestCategorical_Probabilities verifies the ACO_MV weights: they sum to 1,
// unused values keep a share, and the value of the best member dominates.
func TestCategorical_Probabilities(t *testing.T) {
	c, err := archive.NewCategorical(3, archive.WithCapacity(3), archive.WithInfluence(0.1))
	require.NoError(t, err)
	c.Add(archive.Solution[int]{Value: 0, Quality: 1})
	c.Add(archive.Solution[int]{Value: 1, Quality: 2})

	p := c.Probabilities()
	var sum float64
	for _, x := range p {
		sum += x
	}
	require.InDelta(t, 1.0, sum, 1e-12)
	require.Greater(t, p[2], 0.0)
	require.Greater(t, p[1], p[0])
}

// TestSynchronized_Boundary verifies that concurrent adds at the capacity
// boundary never overfill the archive and that exactly the strictly better
// items survive.
func TestSynchronized_Boundary(t *testing.T) {
	c, err := archive.NewContinuous(0, 1, archive.WithCapacity(8))
	require.NoError(t, err)
	s := archive.Synchronize[float64](c)

	var wg sync.WaitGroup
	for w := 0; w < 16; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				s.Add(archive.Solution[float64]{Value: 0.5, Quality: float64(w*50 + i)})
				_, _ = s.Sample(rng.New(int64(w + 1)))
			}
		}(w)
	}
	wg.Wait()

	require.Equal(t, 8, s.Len())
	best := c.Members()
	for i, m := range best {
		// The 8 best qualities out of 0..799.
		require.Equal(t, float64(792+i), m.Quality)
	}
	require.Same(t, c, s.Unwrap())
}
