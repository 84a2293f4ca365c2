package pheromone

import (
	"github.com/katalvlaran/antminer/construct"
	"github.com/katalvlaran/antminer/graph"
	"github.com/katalvlaran/antminer/rule"
)

// Archive inserts the best rule's per-attribute choices into the variable
// archives (quality-ranked replacement) and delegates the trail to Edges.
type Archive struct {
	Edges Policy
}

var _ Policy = (*Archive)(nil)

// Initialise implements Policy. Archives are seeded by their constructor.
func (p *Archive) Initialise(g *graph.Graph, a *construct.Archives) error {
	return p.Edges.Initialise(g, a)
}

// Update implements Policy.
func (p *Archive) Update(g *graph.Graph, a *construct.Archives, best *rule.Rule) error {
	if a != nil && best != nil && !best.Empty() {
		a.Record(best)
	}

	return p.Edges.Update(g, a, best)
}
