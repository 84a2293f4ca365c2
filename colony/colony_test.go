package colony_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/antminer/colony"
	"github.com/katalvlaran/antminer/config"
	"github.com/katalvlaran/antminer/dataset"
	"github.com/katalvlaran/antminer/graph"
	"github.com/katalvlaran/antminer/rng"
	"github.com/katalvlaran/antminer/rule"
)

// smallOptions returns a fast, reproducible configuration for the weather
// samples.
func smallOptions() config.Options {
	o := config.DefaultOptions()
	o.ColonySize = 5
	o.MaxIterations = 20
	o.Stagnation = 20
	o.MinCases = 2
	o.Parallel = 1
	o.Seed = 42

	return o
}

func newColony(t *testing.T, ds *dataset.Dataset, o config.Options, opts ...colony.Option) *colony.Colony {
	t.Helper()
	g, err := graph.Build(ds)
	require.NoError(t, err)
	c, err := colony.New(ds, g, o, opts...)
	require.NoError(t, err)

	return c
}

// TestRun_Weather verifies that a run finds a non-empty rule that covers at
// least MinCases active instances.
func TestRun_Weather(t *testing.T) {
	ds := dataset.Weather()
	c := newColony(t, ds, smallOptions())

	res, err := c.Run(context.Background(), dataset.NewCoverage(ds.Size()))
	require.NoError(t, err)
	require.False(t, res.Best.Empty())
	require.True(t, res.Best.Applied())
	require.GreaterOrEqual(t, res.Best.CoveredCount(), 2)
	require.Greater(t, res.Best.Quality, 0.0)
	require.LessOrEqual(t, res.Iterations, 20)
}

// TestRun_Deterministic verifies that a parallel degree of 1 and a fixed
// seed give the same best rule and the same pheromone trail.
func TestRun_Deterministic(t *testing.T) {
	ds := dataset.WeatherNumeric()
	cov := dataset.NewCoverage(ds.Size())

	a := newColony(t, ds, smallOptions())
	b := newColony(t, ds, smallOptions(), colony.WithRand(rng.New(42)))

	ra, err := a.Run(context.Background(), cov)
	require.NoError(t, err)
	rb, err := b.Run(context.Background(), cov)
	require.NoError(t, err)

	require.True(t, ra.Best.Equal(rb.Best), "%s vs %s", ra.Best.String(ds), rb.Best.String(ds))
	require.Equal(t, ra.Best.Quality, rb.Best.Quality)
	require.Equal(t, ra.Iterations, rb.Iterations)
	require.Equal(t, a.Graph().Snapshot(), b.Graph().Snapshot())
}

// TestRun_FixedClass verifies that a fixed assignator makes the best rule
// predict that class, minority included.
func TestRun_FixedClass(t *testing.T) {
	ds := dataset.Weather()
	for label := 0; label < ds.Classes(); label++ {
		c := newColony(t, ds, smallOptions(), colony.WithAssignator(rule.Fixed{Label: label}))
		res, err := c.Run(context.Background(), dataset.NewCoverage(ds.Size()))
		require.NoError(t, err)
		require.False(t, res.Best.Empty())
		require.Equal(t, label, res.Best.Consequent.Label)
		require.Greater(t, res.Best.Covered[label], 0.0)
	}
}

// TestRun_ArchiveSeeding verifies that archive construction stays
// reproducible with archives seeded from a derived stream.
func TestRun_ArchiveSeeding(t *testing.T) {
	ds := dataset.WeatherNumeric()
	cov := dataset.NewCoverage(ds.Size())
	o := smallOptions()
	o.Policy = config.PolicyArchive
	o.Construction = config.ConstructionArchive
	o.ArchiveSize = 5

	a := newColony(t, ds, o)
	b := newColony(t, ds, o)
	ra, err := a.Run(context.Background(), cov)
	require.NoError(t, err)
	rb, err := b.Run(context.Background(), cov)
	require.NoError(t, err)
	require.True(t, ra.Best.Equal(rb.Best))
	require.Equal(t, ra.Best.Quality, rb.Best.Quality)
}

// TestRun_Termination covers the stagnation and the iteration limits.
func TestRun_Termination(t *testing.T) {
	ds := dataset.Weather()
	cov := dataset.NewCoverage(ds.Size())

	o := smallOptions()
	o.MaxIterations = 1000
	o.Stagnation = 3
	res, err := newColony(t, ds, o).Run(context.Background(), cov)
	require.NoError(t, err)
	require.True(t, res.Stagnated)
	require.Less(t, res.Iterations, 1000)
	require.GreaterOrEqual(t, res.Iterations, 3)

	o = smallOptions()
	o.MaxIterations = 4
	o.Stagnation = 100
	res, err = newColony(t, ds, o).Run(context.Background(), cov)
	require.NoError(t, err)
	require.False(t, res.Stagnated)
	require.Equal(t, 4, res.Iterations)
}

// TestRun_Cancelled verifies that a cancelled context stops the run before
// the first iteration.
func TestRun_Cancelled(t *testing.T) {
	ds := dataset.Weather()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newColony(t, ds, smallOptions()).Run(ctx, dataset.NewCoverage(ds.Size()))
	require.ErrorIs(t, err, context.Canceled)
}

// badHeuristic returns a vector of the wrong size so every ant fails.
type badHeuristic struct{}

func (badHeuristic) Compute(*dataset.Dataset, dataset.Coverage, *graph.Graph) []float64 {
	return []float64{1}
}

// TestRun_WorkerFailure verifies that an ant error aborts the run.
func TestRun_WorkerFailure(t *testing.T) {
	ds := dataset.Weather()
	o := smallOptions()
	o.Parallel = 4
	c := newColony(t, ds, o, colony.WithHeuristic(badHeuristic{}))

	_, err := c.Run(context.Background(), dataset.NewCoverage(ds.Size()))
	require.ErrorIs(t, err, colony.ErrWorkerFailure)
}

// TestRun_NoRule verifies that an unreachable MinCases gives an empty best
// rule after stagnation, without error.
func TestRun_NoRule(t *testing.T) {
	ds := dataset.Weather()
	o := smallOptions()
	o.MinCases = ds.Size() + 1
	o.Stagnation = 2

	res, err := newColony(t, ds, o).Run(context.Background(), dataset.NewCoverage(ds.Size()))
	require.NoError(t, err)
	require.True(t, res.Best.Empty())
	require.True(t, res.Stagnated)
	require.Equal(t, 2, res.Iterations)
}

// TestRun_Archive verifies archive construction with the archive policy.
func TestRun_Archive(t *testing.T) {
	ds := dataset.WeatherNumeric()
	o := smallOptions()
	o.Construction = config.ConstructionArchive
	o.Policy = config.PolicyArchive
	o.ArchiveSize = 5
	o.Parallel = 3

	res, err := newColony(t, ds, o).Run(context.Background(), dataset.NewCoverage(ds.Size()))
	require.NoError(t, err)
	require.False(t, res.Best.Empty())
	require.GreaterOrEqual(t, res.Best.CoveredCount(), 2)
}

// TestNew_Errors covers invalid options and a nil dataset.
func TestNew_Errors(t *testing.T) {
	ds := dataset.Weather()
	g, err := graph.Build(ds)
	require.NoError(t, err)

	o := smallOptions()
	o.ColonySize = 0
	_, err = colony.New(ds, g, o)
	require.ErrorIs(t, err, config.ErrInvalidOption)

	_, err = colony.New(nil, g, smallOptions())
	require.ErrorIs(t, err, graph.ErrNilDataset)
}
