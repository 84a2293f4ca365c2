package pheromone

import (
	"math"

	"github.com/katalvlaran/antminer/construct"
	"github.com/katalvlaran/antminer/graph"
	"github.com/katalvlaran/antminer/rule"
)

// MaxMin is the MAX-MIN Ant System update:
//
//	τ ← max(τ·(1-ρ), τmin);  τ ← τ + Q(best) on best's path;  τ ← min(τ, τmax)
//	τmax = Q_gbest / ρ
//	τmin = τmax·(1-p̂) / ((avg-1)·p̂),  p̂ = p_best^(1/n),  avg = n/2
//
// where n is the number of graph vertices, sentinels included, and Q_gbest
// the best quality seen since Initialise.
type MaxMin struct {
	Params

	gbest float64
}

var _ Policy = (*MaxMin)(nil)

// Initialise implements Policy.
func (m *MaxMin) Initialise(g *graph.Graph, _ *construct.Archives) error {
	m.gbest = 0

	return g.Reset(m.Initial)
}

// Update implements Policy.
//
// Complexity: O(V²·EntryWidth).
func (m *MaxMin) Update(g *graph.Graph, _ *construct.Archives, best *rule.Rule) error {
	q := reinforcement(best)
	m.gbest = math.Max(m.gbest, q)

	lo, hi := m.Bounds(g.Size())
	if err := evaporate(g, m.Evaporation); err != nil {
		return err
	}
	if err := clamp(g, lo, math.Inf(1)); err != nil {
		return err
	}
	if err := deposit(g, best, q); err != nil {
		return err
	}

	return clamp(g, lo, hi)
}

// Bounds returns [τmin, τmax] for a graph with n vertices. Before any
// positive quality was seen τmax is the initial pheromone.
func (m *MaxMin) Bounds(n int) (float64, float64) {
	hi := m.gbest / m.Evaporation
	if !(hi > 0) {
		hi = m.Initial
	}
	if n < 1 {
		return 0, hi
	}

	var (
		pHat  = math.Pow(m.PBest, 1/float64(n))
		avg   = float64(n) / 2
		denom = (avg - 1) * pHat
	)
	if avg <= 1 {
		denom = pHat
	}
	lo := hi * (1 - pHat) / denom

	return math.Min(lo, hi), hi
}

// Level evaporates, lifts every value to the floor Initial·p_best and then
// reinforces the best path; there is no upper bound.
type Level struct {
	Params
}

var _ Policy = (*Level)(nil)

// Initialise implements Policy.
func (l *Level) Initialise(g *graph.Graph, _ *construct.Archives) error {
	return g.Reset(l.Initial)
}

// Update implements Policy.
func (l *Level) Update(g *graph.Graph, _ *construct.Archives, best *rule.Rule) error {
	if err := evaporate(g, l.Evaporation); err != nil {
		return err
	}
	if err := clamp(g, l.Floor(), math.Inf(1)); err != nil {
		return err
	}

	return deposit(g, best, reinforcement(best))
}

// Floor returns the lower bound of the trail.
func (l *Level) Floor() float64 { return l.Initial * l.PBest }
