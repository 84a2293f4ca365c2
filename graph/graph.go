// SPDX-License-Identifier: MIT

package graph

import (
	"fmt"
	"strings"

	"github.com/katalvlaran/antminer/dataset"
)

// Graph is the construction graph of one dataset.
//
// Layout: vertex 0 is Start, vertices 1..k map to the k predictor
// attributes, vertex k+1 is End. matrix[i][j] is nil for forbidden edges.
type Graph struct {
	attrs  []int       // vertex-1 → dataset attribute index
	vertex map[int]int // dataset attribute index → vertex
	names  []string    // vertex labels, for String
	matrix [][]*Entry
}

// Build creates the construction graph of ds. The result depends only on
// the attribute order of ds.
//
// Stage 1 (Validate): ds non-nil.
// Stage 2 (Prepare): map predictor attributes to vertices.
// Stage 3 (Execute): allocate one Entry per legal edge.
//
// Complexity: O(V²) with V = predictors+2.
func Build(ds *dataset.Dataset) (*Graph, error) {
	if ds == nil {
		return nil, ErrNilDataset
	}

	var (
		preds = ds.Predictors()
		n     = len(preds) + 2
		g     = &Graph{
			attrs:  preds,
			vertex: make(map[int]int, len(preds)),
			names:  make([]string, n),
			matrix: make([][]*Entry, n),
		}
		i, j int
	)
	g.names[Start] = "START"
	g.names[n-1] = "END"
	for i = range preds {
		g.vertex[preds[i]] = i + 1
		g.names[i+1] = ds.Attribute(preds[i]).Name
	}

	for i = 0; i < n; i++ {
		g.matrix[i] = make([]*Entry, n)
		for j = 0; j < n; j++ {
			if legal(i, j, n) {
				g.matrix[i][j] = &Entry{}
			}
		}
	}

	return g, nil
}

// legal reports whether edge (i,j) exists: no self-loop, nothing leaves
// End, nothing enters Start.
func legal(i, j, n int) bool {
	return i != j && i != n-1 && j != Start
}

// Size returns the number of vertices, sentinels included.
func (g *Graph) Size() int { return len(g.matrix) }

// End returns the index of the End vertex.
func (g *Graph) End() int { return len(g.matrix) - 1 }

// Attributes returns the number of attribute vertices.
func (g *Graph) Attributes() int { return len(g.attrs) }

// Attribute returns the dataset attribute of vertex v, or -1 for sentinels.
func (g *Graph) Attribute(v int) int {
	if v <= Start || v >= g.End() {
		return -1
	}

	return g.attrs[v-1]
}

// Vertex returns the vertex of dataset attribute attr, or -1.
func (g *Graph) Vertex(attr int) int {
	if v, ok := g.vertex[attr]; ok {
		return v
	}

	return -1
}

// Matrix returns the Entry of edge (i,j), or nil when the edge does not
// exist or an index is out of range.
// Complexity: O(1).
func (g *Graph) Matrix(i, j int) *Entry {
	if i < 0 || j < 0 || i >= len(g.matrix) || j >= len(g.matrix) {
		return nil
	}

	return g.matrix[i][j]
}

// Reset broadcasts v as the initial pheromone of every edge.
//
// Errors: ErrInvalidPheromone.
// Complexity: O(V²·EntryWidth).
func (g *Graph) Reset(v float64) error {
	if err := checkValue(v); err != nil {
		return err
	}
	g.Each(func(_, _ int, e *Entry) {
		_ = e.SetInitial(v)
	})

	return nil
}

// Each calls fn for every legal edge in row-major order.
func (g *Graph) Each(fn func(i, j int, e *Entry)) {
	for i := range g.matrix {
		for j, e := range g.matrix[i] {
			if e != nil {
				fn(i, j, e)
			}
		}
	}
}

// Snapshot returns a copy of every edge's pheromone vector in row-major
// edge order. Useful for comparing pheromone state between runs.
func (g *Graph) Snapshot() [][EntryWidth]float64 {
	out := make([][EntryWidth]float64, 0, len(g.matrix)*len(g.matrix))
	g.Each(func(_, _ int, e *Entry) {
		out = append(out, e.Values())
	})

	return out
}

// String renders the vertex labels, e.g. "START → outlook, windy → END".
func (g *Graph) String() string {
	return fmt.Sprintf("%s → %s → %s", g.names[Start], strings.Join(g.names[1:g.End()], ", "), g.names[g.End()])
}
