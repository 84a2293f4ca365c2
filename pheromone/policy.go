// Package pheromone implements the update policies run once per colony
// iteration, after the barrier.
//
// A policy owns the bounds of the trail: MaxMin keeps every value in
// [τmin, τmax], Level only enforces a lower floor, and Archive feeds the
// variable archives before delegating the trail to an edge policy.
//
// Policies are stateful across the iterations of one colony run (they
// track the global best quality) and are reset by Initialise. They are not
// safe for concurrent use; the colony calls them from one goroutine.
package pheromone

import (
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/antminer/construct"
	"github.com/katalvlaran/antminer/graph"
	"github.com/katalvlaran/antminer/rule"
)

// Sentinel errors.
var (
	// ErrUnknownPolicy is returned for an unrecognized policy name.
	ErrUnknownPolicy = errors.New("pheromone: unknown policy")

	// ErrInvalidParameter is returned for an out-of-range policy parameter.
	ErrInvalidParameter = errors.New("pheromone: invalid parameter")
)

// Names accepted by New.
const (
	MaxMinName  = "max-min"
	LevelName   = "level"
	ArchiveName = "archive"
)

// Policy initializes and updates the pheromone trail and archives.
type Policy interface {
	// Initialise resets the trail to its initial value at the start of a
	// colony run.
	Initialise(g *graph.Graph, a *construct.Archives) error

	// Update applies the iteration's best (pruned) rule. best may be Empty.
	Update(g *graph.Graph, a *construct.Archives, best *rule.Rule) error
}

// Params are the numeric parameters shared by the policies.
type Params struct {
	Evaporation float64 // ρ in (0,1)
	PBest       float64 // in (0,1)
	Initial     float64 // > 0
}

func (p Params) validate() error {
	switch {
	case !(p.Evaporation > 0 && p.Evaporation < 1):
		return fmt.Errorf("%w: evaporation %v", ErrInvalidParameter, p.Evaporation)
	case !(p.PBest > 0 && p.PBest < 1):
		return fmt.Errorf("%w: p_best %v", ErrInvalidParameter, p.PBest)
	case !(p.Initial > 0) || math.IsInf(p.Initial, 0):
		return fmt.Errorf("%w: initial pheromone %v", ErrInvalidParameter, p.Initial)
	}

	return nil
}

// New returns the policy called name. The archive policy wraps MaxMin.
func New(name string, p Params) (Policy, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	switch name {
	case MaxMinName:
		return &MaxMin{Params: p}, nil
	case LevelName:
		return &Level{Params: p}, nil
	case ArchiveName:
		return &Archive{Edges: &MaxMin{Params: p}}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
	}
}

// step is one edge of a rule's path together with its context.
type step struct {
	from, to, ctx int
}

// trail returns the edges an ant walked to build r: Start to the first
// condition's vertex, between consecutive condition vertices, and from the
// last one to End. The context of an edge is the position of the decision.
func trail(g *graph.Graph, r *rule.Rule) []step {
	var (
		out = make([]step, 0, r.Size()+1)
		cur = graph.Start
	)
	for pos, c := range r.Conditions {
		v := g.Vertex(c.Attribute)
		if v < 0 {
			continue
		}
		out = append(out, step{from: cur, to: v, ctx: graph.Context(pos)})
		cur = v
	}
	if cur != graph.Start {
		out = append(out, step{from: cur, to: g.End(), ctx: graph.Context(r.Size())})
	}

	return out
}

// reinforcement is the deposit of a rule: its quality when positive.
func reinforcement(r *rule.Rule) float64 {
	if r == nil || r.Empty() || math.IsNaN(r.Quality) || math.IsInf(r.Quality, 0) {
		return 0
	}

	return math.Max(0, r.Quality)
}

// evaporate multiplies every context of every edge by (1-ρ).
func evaporate(g *graph.Graph, rho float64) error {
	var err error
	g.Each(func(_, _ int, e *graph.Entry) {
		for ctx := 0; ctx < graph.EntryWidth && err == nil; ctx++ {
			err = e.Set(ctx, e.Value(ctx)*(1-rho))
		}
	})

	return err
}

// deposit adds amount to every edge of r's path.
func deposit(g *graph.Graph, r *rule.Rule, amount float64) error {
	if amount <= 0 {
		return nil
	}
	for _, s := range trail(g, r) {
		e := g.Matrix(s.from, s.to)
		if e == nil {
			continue
		}
		if err := e.Set(s.ctx, e.Value(s.ctx)+amount); err != nil {
			return err
		}
	}

	return nil
}

// clamp bounds every value into [lo, hi].
func clamp(g *graph.Graph, lo, hi float64) error {
	var err error
	g.Each(func(_, _ int, e *graph.Entry) {
		for ctx := 0; ctx < graph.EntryWidth && err == nil; ctx++ {
			v := math.Min(hi, math.Max(lo, e.Value(ctx)))
			if v != e.Value(ctx) {
				err = e.Set(ctx, v)
			}
		}
	})

	return err
}
