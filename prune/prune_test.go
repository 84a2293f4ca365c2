package prune_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/antminer/dataset"
	"github.com/katalvlaran/antminer/prune"
	"github.com/katalvlaran/antminer/quality"
	"github.com/katalvlaran/antminer/rng"
	"github.com/katalvlaran/antminer/rule"
)

// Weather attribute and value indices.
const (
	outlook  = 0
	humidity = 2
	windy    = 3

	sunny    = 0
	overcast = 1
	high     = 0
	isFalse  = 0

	no  = 0
	yes = 1
)

func eq(attr, v int) rule.Condition {
	return rule.Condition{Attribute: attr, Relation: rule.EqualTo, Value: float64(v)}
}

func newRule(conds ...rule.Condition) *rule.Rule {
	r := &rule.Rule{}
	for _, c := range conds {
		r.Add(c)
	}

	return r
}

func pruners(t *testing.T) map[string]prune.Pruner {
	t.Helper()
	out := make(map[string]prune.Pruner)
	for _, name := range []string{prune.NoneName, prune.SinglePassName, prune.BacktrackName, prune.GreedyName} {
		p, err := prune.ByName(name, quality.SensitivitySpecificity{}, rule.Majority{})
		require.NoError(t, err)
		out[name] = p
	}

	return out
}

// TestByName_Unknown verifies the unknown-name error.
func TestByName_Unknown(t *testing.T) {
	_, err := prune.ByName("bogus", quality.Laplace{}, rule.Majority{})
	require.ErrorIs(t, err, prune.ErrUnknownPruner)
}

// TestPrune_DropsTrailingCondition verifies that "sunny AND high AND
// false" (quality 0.4) loses its last condition to reach "sunny AND high"
// (quality 0.6) while "sunny" alone (7/15) is rejected.
func TestPrune_DropsTrailingCondition(t *testing.T) {
	ds := dataset.Weather()
	cov := dataset.NewCoverage(ds.Size())
	r := newRule(eq(outlook, sunny), eq(humidity, high), eq(windy, isFalse))

	for _, name := range []string{prune.SinglePassName, prune.BacktrackName, prune.GreedyName} {
		t.Run(name, func(t *testing.T) {
			got := pruners(t)[name].Prune(ds, cov, r)
			require.Equal(t, []rule.Condition{eq(outlook, sunny), eq(humidity, high)}, got.Conditions)
			require.InDelta(t, 0.6, got.Quality, 1e-12)
			require.Equal(t, no, got.Consequent.Label)
			require.True(t, got.Applied())
			require.Equal(t, 3, r.Size(), "input must not be modified")
		})
	}
}

// TestGreedy_RemovesAnyPosition verifies that Greedy drops a leading
// condition that SinglePass cannot reach.
func TestGreedy_RemovesAnyPosition(t *testing.T) {
	ds := dataset.Weather()
	cov := dataset.NewCoverage(ds.Size())
	r := newRule(eq(windy, isFalse), eq(outlook, sunny), eq(humidity, high))

	got := prune.Greedy{Quality: quality.SensitivitySpecificity{}, Assignator: rule.Majority{}}.Prune(ds, cov, r)
	require.Equal(t, []rule.Condition{eq(outlook, sunny), eq(humidity, high)}, got.Conditions)
	require.InDelta(t, 0.6, got.Quality, 1e-12)
}

// TestPrune_Invariants builds random rules and checks that no pruner
// lowers quality, grows the rule or empties it.
func TestPrune_Invariants(t *testing.T) {
	ds := dataset.Weather()
	cov := dataset.NewCoverage(ds.Size())
	cov[2], cov[6] = dataset.Removed, dataset.Removed
	fn := quality.SensitivitySpecificity{}
	src := rng.New(11)

	for k := 0; k < 50; k++ {
		r := &rule.Rule{}
		for attr := 0; attr < 4; attr++ {
			if src.Float64() < 0.3 && !r.Empty() {
				continue
			}
			r.Add(eq(attr, src.Intn(ds.Attribute(attr).Len())))
		}
		base := r.Clone()
		base.Apply(ds, cov)
		rule.Majority{}.Assign(ds, base)
		baseQ := fn.Evaluate(ds, cov, base)

		for name, p := range pruners(t) {
			got := p.Prune(ds, cov, r)
			require.LessOrEqual(t, got.Size(), r.Size(), name)
			require.GreaterOrEqual(t, got.Size(), 1, name)
			if name == prune.NoneName {
				require.True(t, got.Equal(r))
				continue
			}
			require.GreaterOrEqual(t, got.Quality, baseQ, name)
		}
	}
}

// TestPrune_Empty verifies that an empty rule is returned as is.
func TestPrune_Empty(t *testing.T) {
	ds := dataset.Weather()
	cov := dataset.NewCoverage(ds.Size())
	for name, p := range pruners(t) {
		require.True(t, p.Prune(ds, cov, &rule.Rule{}).Empty(), name)
	}
}

// TestList_Prune verifies that trailing rules are dropped while accuracy
// does not drop and that the input list is left untouched.
func TestList_Prune(t *testing.T) {
	ds := dataset.Weather()
	l := &rule.List{Ordered: true}
	l.Append(&rule.Rule{Conditions: []rule.Condition{eq(outlook, sunny), eq(humidity, high)}, Consequent: rule.Consequent{Label: no}})
	l.Append(&rule.Rule{Conditions: []rule.Condition{eq(outlook, overcast)}, Consequent: rule.Consequent{Label: yes}})
	// Misclassifies four "yes" instances.
	l.Append(&rule.Rule{Conditions: []rule.Condition{eq(windy, isFalse)}, Consequent: rule.Consequent{Label: no}})
	l.Default = &rule.Rule{Consequent: rule.Consequent{Label: yes}}
	require.InDelta(t, 8.0/14.0, l.Accuracy(ds), 1e-12)

	got := prune.List{Quality: quality.Accuracy{}}.Prune(ds, l)
	// The overcast rule agrees with the default, so it goes as well.
	require.Equal(t, 1, got.Size())
	require.InDelta(t, 12.0/14.0, got.Accuracy(ds), 1e-12)
	require.Equal(t, yes, got.Default.Consequent.Label)
	require.Equal(t, 3, l.Size())

	l.Ordered = false
	require.Equal(t, 3, prune.List{Quality: quality.Accuracy{}}.Prune(ds, l).Size())
}

// TestList_PruneRecomputesDefault verifies that the default rule of a
// shortened list predicts the majority of the instances its rules leave
// uncovered, so dropping a rule is judged against an up-to-date default.
func TestList_PruneRecomputesDefault(t *testing.T) {
	ds := dataset.Weather()
	l := &rule.List{Ordered: true}
	l.Append(&rule.Rule{Conditions: []rule.Condition{eq(outlook, sunny), eq(humidity, high)}, Consequent: rule.Consequent{Label: no}})
	l.Append(&rule.Rule{Conditions: []rule.Condition{eq(outlook, overcast)}, Consequent: rule.Consequent{Label: yes}})
	l.Append(&rule.Rule{Conditions: []rule.Condition{eq(windy, isFalse)}, Consequent: rule.Consequent{Label: no}})
	// Majority of the three instances the rules leave uncovered.
	l.Default = &rule.Rule{Consequent: rule.Consequent{Label: no}}
	require.InDelta(t, 9.0/14.0, l.Accuracy(ds), 1e-12)

	got := prune.List{Quality: quality.Accuracy{}}.Prune(ds, l)
	require.Equal(t, 1, got.Size())
	require.Equal(t, yes, got.Default.Consequent.Label)
	require.Equal(t, 11, got.Default.CoveredCount())
	require.InDelta(t, 12.0/14.0, got.Accuracy(ds), 1e-12)
	require.Equal(t, no, l.Default.Consequent.Label)
}
