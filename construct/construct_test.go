package construct_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/antminer/archive"
	"github.com/katalvlaran/antminer/construct"
	"github.com/katalvlaran/antminer/dataset"
	"github.com/katalvlaran/antminer/graph"
	"github.com/katalvlaran/antminer/heuristic"
	"github.com/katalvlaran/antminer/quality"
	"github.com/katalvlaran/antminer/rng"
	"github.com/katalvlaran/antminer/rule"
)

// newState builds a fresh graph with unit pheromone and the dynamic
// heuristic over cov.
func newState(t *testing.T, ds *dataset.Dataset, cov dataset.Coverage, seed int64) construct.State {
	t.Helper()
	g, err := graph.Build(ds)
	require.NoError(t, err)
	require.NoError(t, g.Reset(1))

	return construct.State{
		Dataset:   ds,
		Coverage:  cov,
		Graph:     g,
		Heuristic: heuristic.Dynamic{MinCases: 2}.Compute(ds, cov, g),
		Rand:      rng.New(seed),
	}
}

func factory(ds *dataset.Dataset, minCases int) construct.Factory {
	fn := quality.SensitivitySpecificity{}
	if !ds.Classification() {
		return construct.NewFactory(ds, quality.RegressionFit{}, minCases)
	}

	return construct.NewFactory(ds, fn, minCases)
}

// requireValid asserts the structural invariants of a constructed rule.
func requireValid(t *testing.T, ds *dataset.Dataset, cov dataset.Coverage, r *rule.Rule, minCases int) {
	t.Helper()
	seen := make(map[int]bool)
	for _, c := range r.Conditions {
		require.False(t, seen[c.Attribute], "attribute %d tested twice in %s", c.Attribute, r.String(ds))
		seen[c.Attribute] = true
		require.NotEqual(t, ds.Target(), c.Attribute)
	}
	require.True(t, r.Applied())
	if r.Empty() {
		return
	}
	require.GreaterOrEqual(t, r.CoveredCount(), minCases)
	for _, i := range r.Instances() {
		require.NotEqual(t, dataset.Removed, cov[i])
		require.True(t, r.Covers(ds, i))
	}
}

// TestCreate_Invariants runs many ants on every sample dataset and checks
// that no rule repeats an attribute and every rule covers MinCases.
func TestCreate_Invariants(t *testing.T) {
	samples := map[string]*dataset.Dataset{
		"nominal":    dataset.Weather(),
		"numeric":    dataset.WeatherNumeric(),
		"regression": dataset.WeatherRegression(),
	}
	for name, ds := range samples {
		t.Run(name, func(t *testing.T) {
			cov := dataset.NewCoverage(ds.Size())
			s := newState(t, ds, cov, 7)
			f := factory(ds, 2)

			for k := 0; k < 200; k++ {
				r, err := f.Create(s)
				require.NoError(t, err)
				requireValid(t, ds, cov, r, 2)
				require.False(t, r.Empty())
				require.Equal(t, f.Quality.Evaluate(ds, cov, r), r.Quality)
			}
		})
	}
}

// TestCreate_RemovedInstances verifies that removed instances are never
// covered and that the active coverage is not modified.
func TestCreate_RemovedInstances(t *testing.T) {
	ds := dataset.Weather()
	cov := dataset.NewCoverage(ds.Size())
	for _, i := range []int{2, 6, 11, 12} {
		cov[i] = dataset.Removed
	}
	before := cov.Clone()
	s := newState(t, ds, cov, 3)
	f := factory(ds, 2)

	for k := 0; k < 100; k++ {
		r, err := f.Create(s)
		require.NoError(t, err)
		requireValid(t, ds, cov, r, 2)
	}
	require.Equal(t, before, cov)
}

// TestCreate_NoViableAttribute verifies that an impossible MinCases gives
// an empty rule with the worst quality and no error.
func TestCreate_NoViableAttribute(t *testing.T) {
	ds := dataset.Weather()
	cov := dataset.NewCoverage(ds.Size())
	s := newState(t, ds, cov, 1)

	r, err := factory(ds, ds.Size()+1).Create(s)
	require.NoError(t, err)
	require.True(t, r.Empty())
	require.True(t, math.IsInf(r.Quality, -1))
}

// TestCreate_Deterministic verifies that equal seeds build equal rules.
func TestCreate_Deterministic(t *testing.T) {
	ds := dataset.WeatherNumeric()
	cov := dataset.NewCoverage(ds.Size())
	f := factory(ds, 2)

	a, b := newState(t, ds, cov, 99), newState(t, ds, cov, 99)
	for k := 0; k < 20; k++ {
		ra, err := f.Create(a)
		require.NoError(t, err)
		rb, err := f.Create(b)
		require.NoError(t, err)
		require.True(t, ra.Equal(rb))
	}
}

// TestCreate_StateErrors covers incomplete inputs.
func TestCreate_StateErrors(t *testing.T) {
	ds := dataset.Weather()
	cov := dataset.NewCoverage(ds.Size())
	f := factory(ds, 2)

	_, err := f.Create(construct.State{})
	require.ErrorIs(t, err, construct.ErrIncompleteState)

	s := newState(t, ds, cov, 1)
	s.Coverage = cov[:3]
	_, err = f.Create(s)
	require.ErrorIs(t, err, construct.ErrIncompleteState)

	s = newState(t, ds, cov, 1)
	s.Heuristic = s.Heuristic[:2]
	_, err = f.Create(s)
	require.ErrorIs(t, err, construct.ErrHeuristicSize)
}

// TestCreate_Archives verifies archive-based construction: continuous
// conditions are thresholds sampled inside the attribute range.
func TestCreate_Archives(t *testing.T) {
	ds := dataset.WeatherNumeric()
	cov := dataset.NewCoverage(ds.Size())
	s := newState(t, ds, cov, 5)

	a, err := construct.NewArchives(ds, s.Rand, archive.WithCapacity(5))
	require.NoError(t, err)
	require.NotNil(t, a.Nominal(0))
	require.Nil(t, a.Nominal(1))
	require.NotNil(t, a.Relation(1))
	require.NotNil(t, a.Threshold(1))
	require.Nil(t, a.Threshold(ds.Target()))
	s.Archives = a

	f := factory(ds, 2)
	var built int
	for k := 0; k < 200; k++ {
		r, err := f.Create(s)
		require.NoError(t, err)
		requireValid(t, ds, cov, r, 2)
		for _, c := range r.Conditions {
			meta := ds.Attribute(c.Attribute)
			if meta.Kind == dataset.Continuous {
				require.Contains(t, []rule.Relation{rule.LessThanOrEqual, rule.GreaterThan}, c.Relation)
				require.GreaterOrEqual(t, c.Value, meta.Lower)
				require.Less(t, c.Value, meta.Upper)
			}
		}
		if !r.Empty() {
			built++
		}
	}
	require.Positive(t, built)
}

// TestArchives_Record verifies that a rule's choices enter the archives.
func TestArchives_Record(t *testing.T) {
	ds := dataset.WeatherNumeric()
	a, err := construct.NewArchives(ds, rng.New(1), archive.WithCapacity(3))
	require.NoError(t, err)

	r := &rule.Rule{Quality: 0.9}
	r.Add(rule.Condition{Attribute: 0, Relation: rule.EqualTo, Value: 1})
	r.Add(rule.Condition{Attribute: 1, Relation: rule.GreaterThan, Value: 70})
	// Seeded members have quality 0, so all three choices are accepted.
	require.Equal(t, 3, a.Record(r))

	// A worse rule does not displace anything once the archive is full of
	// better members.
	for k := 0; k < 3; k++ {
		a.Record(r)
	}
	worse := r.Clone()
	worse.Quality = 0.5
	require.Equal(t, 0, a.Record(worse))

	_, err = construct.NewArchives(nil, rng.New(1))
	require.Error(t, err)
}
