// Package construct implements the rule construction ant.
//
// An ant walks the construction graph from Start. At every step it picks
// the next attribute vertex (or End, once the rule has a condition) by
// roulette over pheromone × heuristic, turns the attribute into a concrete
// condition, and narrows its private working coverage to the instances the
// partial rule still matches. The walk is acyclic: a vertex is never
// visited twice, so no rule tests an attribute twice.
//
// Ants only read shared state. The graph and the archives are written by
// the pheromone policy after the iteration barrier.
package construct

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/antminer/dataset"
	"github.com/katalvlaran/antminer/discretize"
	"github.com/katalvlaran/antminer/graph"
	"github.com/katalvlaran/antminer/quality"
	"github.com/katalvlaran/antminer/rng"
	"github.com/katalvlaran/antminer/rule"
)

// samplingTries bounds the archive draws per attribute before the
// attribute is declared not viable.
const samplingTries = 8

// Sentinel errors.
var (
	// ErrIncompleteState is returned when a State misses a required field.
	ErrIncompleteState = errors.New("construct: incomplete state")

	// ErrHeuristicSize is returned when the heuristic does not match the graph.
	ErrHeuristicSize = errors.New("construct: heuristic size does not match graph")
)

// State is the shared, read-only input of one ant.
type State struct {
	Dataset   *dataset.Dataset
	Coverage  dataset.Coverage // active instances; only read
	Graph     *graph.Graph
	Heuristic []float64 // one value per vertex
	Archives  *Archives // nil selects discretization mode
	Rand      rng.Rand
}

func (s State) check() error {
	switch {
	case s.Dataset == nil || s.Graph == nil || s.Rand == nil:
		return ErrIncompleteState
	case len(s.Coverage) != s.Dataset.Size():
		return fmt.Errorf("%w: coverage has %d flags for %d instances",
			ErrIncompleteState, len(s.Coverage), s.Dataset.Size())
	case len(s.Heuristic) != s.Graph.Size():
		return fmt.Errorf("%w: %d values for %d vertices",
			ErrHeuristicSize, len(s.Heuristic), s.Graph.Size())
	}

	return nil
}

// Factory creates rules. It is stateless; one Factory serves every ant of
// a colony concurrently.
type Factory struct {
	MinCases    int
	Quality     quality.Function
	Assignator  rule.Assignator
	Discretizer discretize.Discretizer
}

// NewFactory returns a Factory with the default assignator and discretizer
// of ds.
func NewFactory(ds *dataset.Dataset, fn quality.Function, minCases int) Factory {
	return Factory{
		MinCases:    minCases,
		Quality:     fn,
		Assignator:  rule.AssignatorFor(ds),
		Discretizer: discretize.For(ds, minCases),
	}
}

// Create runs one ant and returns its rule, applied to s.Coverage, with
// consequent and quality set. When no first attribute is viable the rule
// is Empty and its quality is the worst of the quality function; that is
// not an error.
//
// Stage 1: working coverage (every active instance is RuleCovered).
// Stage 2: walk, materializing one condition per chosen attribute.
// Stage 3: apply, assign and evaluate.
//
// Errors: ErrIncompleteState, ErrHeuristicSize, archive sampling errors.
// Complexity: O(V² + V·n log n) per ant.
func (f Factory) Create(s State) (*rule.Rule, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	var (
		ds      = s.Dataset
		g       = s.Graph
		work    = s.Coverage.Clone()
		visited = make([]bool, g.Size())
		weights = make([]float64, g.Size())
		r       = &rule.Rule{}
		cur     = graph.Start
		covered int
	)
	for i := range work {
		if work[i] != dataset.Removed {
			work[i] = dataset.RuleCovered
			covered++
		}
	}

	for covered > 0 {
		ctx := graph.Context(r.Size())
		for v := range weights {
			weights[v] = 0
			if v == graph.Start || visited[v] || (v == g.End() && r.Empty()) {
				continue
			}
			if e := g.Matrix(cur, v); e != nil {
				weights[v] = e.Value(ctx) * s.Heuristic[v]
			}
		}

		next := rng.Roulette(s.Rand, weights)
		if next < 0 || next == g.End() {
			break
		}
		visited[next] = true

		c, ok, err := f.condition(s, work, g.Attribute(next))
		if err != nil {
			return nil, err
		}
		if !ok {
			// Not viable from here; stay on cur and choose again.
			continue
		}
		r.Add(c)
		cur = next
		covered = narrow(ds, work, c)
	}

	r.Apply(ds, s.Coverage)
	if r.Empty() {
		r.Quality = f.Quality.Direction().Worst()
		return r, nil
	}
	f.Assignator.Assign(ds, r)
	r.Quality = f.Quality.Evaluate(ds, s.Coverage, r)

	return r, nil
}

// narrow drops the RuleCovered instances of work that fail c and returns
// how many remain.
func narrow(ds *dataset.Dataset, work dataset.Coverage, c rule.Condition) int {
	var n int
	for i := range work {
		if work[i] != dataset.RuleCovered {
			continue
		}
		if c.Covers(ds, i) {
			n++
		} else {
			work[i] = dataset.NotCovered
		}
	}

	return n
}

// condition materializes a condition on attr that keeps at least MinCases
// instances of work covered. ok is false when attr is not viable.
func (f Factory) condition(s State, work dataset.Coverage, attr int) (rule.Condition, bool, error) {
	nominal := s.Dataset.Attribute(attr).Kind == dataset.Nominal
	if s.Archives != nil {
		switch {
		case nominal && s.Archives.Nominal(attr) != nil:
			return f.sampleNominal(s, work, attr)
		case !nominal && s.Archives.Threshold(attr) != nil:
			return f.sampleThreshold(s, work, attr)
		}
	}

	var candidates []rule.Condition
	if nominal {
		for v := 0; v < s.Dataset.Attribute(attr).Len(); v++ {
			candidates = append(candidates, rule.Condition{Attribute: attr, Relation: rule.EqualTo, Value: float64(v)})
		}
	} else {
		candidates = f.Discretizer.ConditionsFor(s.Dataset, work, attr)
	}

	return f.pick(s, work, candidates)
}

// pick selects one of the viable candidates by roulette. A candidate's
// weight is the size of the majority class among the instances it keeps,
// or of the class fixed by a rule.Fixed assignator (the instance count
// for regression).
func (f Factory) pick(s State, work dataset.Coverage, candidates []rule.Condition) (rule.Condition, bool, error) {
	var (
		viable  = make([]rule.Condition, 0, len(candidates))
		weights = make([]float64, 0, len(candidates))
	)
	for _, c := range candidates {
		n, w := f.score(s.Dataset, work, c)
		if n < f.MinCases || n == 0 {
			continue
		}
		viable = append(viable, c)
		weights = append(weights, w)
	}
	if len(viable) == 0 {
		return rule.Condition{}, false, nil
	}

	i := rng.Roulette(s.Rand, weights)
	if i < 0 {
		i = s.Rand.Intn(len(viable))
	}

	return viable[i], true, nil
}

// score returns the number of working instances c keeps and its weight.
func (f Factory) score(ds *dataset.Dataset, work dataset.Coverage, c rule.Condition) (int, float64) {
	var (
		n    int
		freq = make([]float64, ds.Classes())
	)
	for i := range work {
		if work[i] != dataset.RuleCovered || !c.Covers(ds, i) {
			continue
		}
		n++
		if y := ds.Value(i); len(freq) > 0 && !dataset.IsMissing(y) {
			freq[int(y)]++
		}
	}
	if len(freq) == 0 {
		return n, float64(n)
	}
	if fx, ok := f.Assignator.(rule.Fixed); ok && fx.Label >= 0 && fx.Label < len(freq) {
		return n, freq[fx.Label]
	}
	var best float64
	for _, x := range freq {
		best = max(best, x)
	}

	return n, best
}

func (f Factory) sampleNominal(s State, work dataset.Coverage, attr int) (rule.Condition, bool, error) {
	arch := s.Archives.Nominal(attr)
	for try := 0; try < samplingTries; try++ {
		v, err := arch.Sample(s.Rand)
		if err != nil {
			return rule.Condition{}, false, fmt.Errorf("construct: sample %q: %w", s.Dataset.Attribute(attr).Name, err)
		}
		c := rule.Condition{Attribute: attr, Relation: rule.EqualTo, Value: float64(v)}
		if n, _ := f.score(s.Dataset, work, c); n >= f.MinCases && n > 0 {
			return c, true, nil
		}
	}

	return rule.Condition{}, false, nil
}

func (f Factory) sampleThreshold(s State, work dataset.Coverage, attr int) (rule.Condition, bool, error) {
	var (
		rel  = s.Archives.Relation(attr)
		thr  = s.Archives.Threshold(attr)
		name = s.Dataset.Attribute(attr).Name
	)
	for try := 0; try < samplingTries; try++ {
		idx, err := rel.Sample(s.Rand)
		if err != nil {
			return rule.Condition{}, false, fmt.Errorf("construct: sample %q relation: %w", name, err)
		}
		t, err := thr.Sample(s.Rand)
		if err != nil {
			return rule.Condition{}, false, fmt.Errorf("construct: sample %q threshold: %w", name, err)
		}
		c := rule.Condition{Attribute: attr, Relation: rule.LessThanOrEqual, Value: t}
		if idx == relationGreater {
			c.Relation = rule.GreaterThan
		}
		if n, _ := f.score(s.Dataset, work, c); n >= f.MinCases && n > 0 {
			return c, true, nil
		}
	}

	return rule.Condition{}, false, nil
}
