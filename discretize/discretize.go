// Package discretize turns continuous attributes into candidate conditions.
//
// A Discretizer looks only at the instances flagged RuleCovered, i.e. the
// instances matched by the partial rule an ant is building, and proposes
// threshold conditions each of which covers at least MinCases of them.
package discretize

import (
	"math"
	"sort"

	"github.com/katalvlaran/antminer/dataset"
	"github.com/katalvlaran/antminer/rule"
)

// Discretizer proposes conditions for one continuous attribute.
type Discretizer interface {
	ConditionsFor(ds *dataset.Dataset, cov dataset.Coverage, attr int) []rule.Condition
}

// For returns Entropy for classification datasets and Variance otherwise.
func For(ds *dataset.Dataset, minCases int) Discretizer {
	if ds.Classification() {
		return Entropy{MinCases: minCases}
	}

	return Variance{MinCases: minCases}
}

// point is one (attribute value, target value) pair.
type point struct {
	x, y float64
}

// collect returns the RuleCovered instances with both values present,
// sorted by attribute value.
// Complexity: O(n log n).
func collect(ds *dataset.Dataset, cov dataset.Coverage, attr int) []point {
	pts := make([]point, 0, ds.Size())
	for i := 0; i < ds.Size(); i++ {
		if cov[i] != dataset.RuleCovered {
			continue
		}
		x, y := ds.At(i, attr), ds.Value(i)
		if dataset.IsMissing(x) || dataset.IsMissing(y) {
			continue
		}
		pts = append(pts, point{x: x, y: y})
	}
	sort.Slice(pts, func(a, b int) bool { return pts[a].x < pts[b].x })

	return pts
}

// split turns a cut position into the pair "x <= t" / "x > t".
func split(attr int, pts []point, cut int) []rule.Condition {
	t := (pts[cut-1].x + pts[cut].x) / 2
	return []rule.Condition{
		{Attribute: attr, Relation: rule.LessThanOrEqual, Value: t},
		{Attribute: attr, Relation: rule.GreaterThan, Value: t},
	}
}

// Entropy picks the binary threshold with the highest information gain.
type Entropy struct {
	MinCases int
}

// ConditionsFor implements Discretizer. It returns nil when no threshold
// leaves MinCases instances on both sides.
//
// Complexity: O(n log n + n·k) with k classes.
func (e Entropy) ConditionsFor(ds *dataset.Dataset, cov dataset.Coverage, attr int) []rule.Condition {
	var (
		pts   = collect(ds, cov, attr)
		n     = len(pts)
		k     = ds.Classes()
		left  = make([]float64, k)
		right = make([]float64, k)
		best  = -1
		bestH = math.Inf(1)
		i     int
	)
	if k == 0 || n < 2*max(e.MinCases, 1) {
		return nil
	}
	for _, p := range pts {
		right[int(p.y)]++
	}
	for i = 1; i < n; i++ {
		c := int(pts[i-1].y)
		left[c]++
		right[c]--
		if pts[i-1].x == pts[i].x || i < e.MinCases || n-i < e.MinCases {
			continue
		}
		h := (float64(i)*Entropy2(left) + float64(n-i)*Entropy2(right)) / float64(n)
		if h < bestH {
			best, bestH = i, h
		}
	}
	if best < 0 {
		return nil
	}

	return split(attr, pts, best)
}

// Variance picks the binary threshold with the largest reduction of the
// target's sum of squared errors.
type Variance struct {
	MinCases int
}

// ConditionsFor implements Discretizer.
//
// Complexity: O(n log n).
func (v Variance) ConditionsFor(ds *dataset.Dataset, cov dataset.Coverage, attr int) []rule.Condition {
	var (
		pts          = collect(ds, cov, attr)
		n            = len(pts)
		sumR, sqR    float64
		sumL, sqL    float64
		best         = -1
		bestSSE      = math.Inf(1)
		i            int
		nl, nr, y, s float64
	)
	if n < 2*max(v.MinCases, 1) {
		return nil
	}
	for _, p := range pts {
		sumR += p.y
		sqR += p.y * p.y
	}
	for i = 1; i < n; i++ {
		y = pts[i-1].y
		sumL += y
		sqL += y * y
		sumR -= y
		sqR -= y * y
		if pts[i-1].x == pts[i].x || i < v.MinCases || n-i < v.MinCases {
			continue
		}
		nl, nr = float64(i), float64(n-i)
		s = (sqL - sumL*sumL/nl) + (sqR - sumR*sumR/nr)
		if s < bestSSE {
			best, bestSSE = i, s
		}
	}
	if best < 0 {
		return nil
	}

	return split(attr, pts, best)
}

// Entropy2 returns the base-2 entropy of a frequency vector.
func Entropy2(freq []float64) float64 {
	var total, h float64
	for _, f := range freq {
		total += f
	}
	if total == 0 {
		return 0
	}
	for _, f := range freq {
		if f > 0 {
			p := f / total
			h -= p * math.Log2(p)
		}
	}

	return h
}
