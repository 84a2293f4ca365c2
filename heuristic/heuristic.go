// Package heuristic computes the per-vertex desirability ants multiply with
// pheromone when choosing the next attribute.
//
// Values are normalized into (0,1]: a floor keeps every attribute
// selectable. The End vertex gets the mean of the attribute values so
// stopping stays competitive with extending the rule.
package heuristic

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/katalvlaran/antminer/dataset"
	"github.com/katalvlaran/antminer/discretize"
	"github.com/katalvlaran/antminer/graph"
)

// Floor is the smallest heuristic value of an attribute vertex.
const Floor = 1e-3

// ErrUnknownHeuristic is returned for an unrecognized heuristic name.
var ErrUnknownHeuristic = errors.New("heuristic: unknown heuristic")

// Names accepted by ByName.
const (
	NoneName    = "none"
	StaticName  = "entropy"
	DynamicName = "dynamic-entropy"
)

// Heuristic returns one value per vertex of g.
type Heuristic interface {
	Compute(ds *dataset.Dataset, cov dataset.Coverage, g *graph.Graph) []float64
}

// ByName returns the heuristic called name.
func ByName(name string, minCases int) (Heuristic, error) {
	switch name {
	case NoneName:
		return None{}, nil
	case StaticName:
		return &Static{MinCases: minCases}, nil
	case DynamicName:
		return Dynamic{MinCases: minCases}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownHeuristic, name)
	}
}

// None disables the heuristic: every vertex gets 1.
type None struct{}

// Compute implements Heuristic.
func (None) Compute(_ *dataset.Dataset, _ dataset.Coverage, g *graph.Graph) []float64 {
	h := make([]float64, g.Size())
	for i := range h {
		h[i] = 1
	}

	return h
}

// Static computes information gain once, on the full dataset, and reuses it
// for every covering iteration.
type Static struct {
	MinCases int

	once   sync.Once
	values []float64
}

// Compute implements Heuristic. cov is ignored.
func (s *Static) Compute(ds *dataset.Dataset, _ dataset.Coverage, g *graph.Graph) []float64 {
	s.once.Do(func() {
		s.values = compute(ds, dataset.NewCoverage(ds.Size()), g, s.MinCases)
	})

	return append([]float64(nil), s.values...)
}

// Dynamic recomputes information gain on the active instances at every call.
type Dynamic struct {
	MinCases int
}

// Compute implements Heuristic.
func (d Dynamic) Compute(ds *dataset.Dataset, cov dataset.Coverage, g *graph.Graph) []float64 {
	return compute(ds, cov, g, d.MinCases)
}

// compute scores every attribute vertex by normalized gain over the
// instances of cov that are not Removed.
//
// Complexity: O(V·n log n).
func compute(ds *dataset.Dataset, cov dataset.Coverage, g *graph.Graph, minCases int) []float64 {
	var (
		work = cov.Clone()
		h    = make([]float64, g.Size())
		sum  float64
		v    int
	)
	for i := range work {
		if work[i] != dataset.Removed {
			work[i] = dataset.RuleCovered
		}
	}
	disc := discretize.For(ds, minCases)

	for v = 1; v < g.End(); v++ {
		h[v] = math.Max(Floor, gain(ds, work, g.Attribute(v), disc))
		sum += h[v]
	}
	if g.Attributes() > 0 {
		h[g.End()] = sum / float64(g.Attributes())
	}

	return h
}

// gain returns the normalized impurity reduction of splitting the
// RuleCovered instances of work on attr, in [0,1].
func gain(ds *dataset.Dataset, work dataset.Coverage, attr int, disc discretize.Discretizer) float64 {
	var groups [][]int
	if ds.Attribute(attr).Kind == dataset.Nominal {
		groups = make([][]int, ds.Attribute(attr).Len())
		for i := 0; i < ds.Size(); i++ {
			x := ds.At(i, attr)
			if work[i] != dataset.RuleCovered || dataset.IsMissing(x) {
				continue
			}
			groups[int(x)] = append(groups[int(x)], i)
		}
	} else {
		conds := disc.ConditionsFor(ds, work, attr)
		if len(conds) == 0 {
			return 0
		}
		groups = make([][]int, len(conds))
		for i := 0; i < ds.Size(); i++ {
			if work[i] != dataset.RuleCovered {
				continue
			}
			for c := range conds {
				if conds[c].Covers(ds, i) {
					groups[c] = append(groups[c], i)
				}
			}
		}
	}

	all := ds.Select(work, dataset.RuleCovered)
	if ds.Classification() {
		return classGain(ds, all, groups)
	}

	return varianceGain(ds, all, groups)
}

func classGain(ds *dataset.Dataset, all []int, groups [][]int) float64 {
	k := ds.Classes()
	if k < 2 || len(all) == 0 {
		return 0
	}
	var (
		base = discretize.Entropy2(frequencies(ds, all, k))
		rest float64
		n    float64
	)
	for _, grp := range groups {
		n += float64(len(grp))
	}
	if n == 0 {
		return 0
	}
	for _, grp := range groups {
		if len(grp) > 0 {
			rest += float64(len(grp)) / n * discretize.Entropy2(frequencies(ds, grp, k))
		}
	}

	return math.Max(0, (base-rest)/math.Log2(float64(k)))
}

func varianceGain(ds *dataset.Dataset, all []int, groups [][]int) float64 {
	total := sse(ds, all)
	if total == 0 {
		return 0
	}
	var rest float64
	for _, grp := range groups {
		rest += sse(ds, grp)
	}

	return math.Max(0, 1-rest/total)
}

func frequencies(ds *dataset.Dataset, idx []int, k int) []float64 {
	f := make([]float64, k)
	for _, i := range idx {
		if v := ds.Value(i); !dataset.IsMissing(v) {
			f[int(v)]++
		}
	}

	return f
}

func sse(ds *dataset.Dataset, idx []int) float64 {
	mean := ds.Mean(idx)
	if math.IsNaN(mean) {
		return 0
	}
	var s float64
	for _, i := range idx {
		if v := ds.Value(i); !dataset.IsMissing(v) {
			s += (v - mean) * (v - mean)
		}
	}

	return s
}
