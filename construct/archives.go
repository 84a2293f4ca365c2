package construct

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/antminer/archive"
	"github.com/katalvlaran/antminer/dataset"
	"github.com/katalvlaran/antminer/rng"
	"github.com/katalvlaran/antminer/rule"
)

// Relation indices of the two-valued relation archive of a continuous
// attribute.
const (
	relationLessOrEqual = 0
	relationGreater     = 1
)

// Archives holds the variable archives of archive-based construction, one
// model per predictor attribute:
//   - nominal attribute: a Categorical archive over its labels;
//   - continuous attribute: a Categorical(2) archive over the relation
//     (<= or >) and a Continuous archive over the threshold.
//
// Every archive is wrapped with archive.Synchronize, so ants may sample
// concurrently. Record is only called in the single-threaded update phase.
type Archives struct {
	nominal   map[int]*archive.Synchronized[int]
	relation  map[int]*archive.Synchronized[int]
	threshold map[int]*archive.Synchronized[float64]
}

// NewArchives builds and seeds the archives of every predictor of ds with
// capacity uniformly drawn members of quality 0. A continuous attribute
// with a degenerate range gets no archive; the ant then falls back to the
// discretizer for it.
//
// Complexity: O(attributes · capacity).
func NewArchives(ds *dataset.Dataset, r rng.Rand, opts ...archive.Option) (*Archives, error) {
	if ds == nil {
		return nil, errors.New("construct: nil dataset")
	}
	a := &Archives{
		nominal:   make(map[int]*archive.Synchronized[int]),
		relation:  make(map[int]*archive.Synchronized[int]),
		threshold: make(map[int]*archive.Synchronized[float64]),
	}

	for _, attr := range ds.Predictors() {
		meta := ds.Attribute(attr)
		if meta.Kind == dataset.Nominal {
			c, err := archive.NewCategorical(meta.Len(), opts...)
			if err != nil {
				return nil, fmt.Errorf("construct: archive for %q: %w", meta.Name, err)
			}
			c.Initialise(r, c.Capacity())
			a.nominal[attr] = archive.Synchronize[int](c)
			continue
		}

		t, err := archive.NewContinuous(meta.Lower, meta.Upper, opts...)
		if errors.Is(err, archive.ErrInvalidRange) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("construct: archive for %q: %w", meta.Name, err)
		}
		rel, err := archive.NewCategorical(2, opts...)
		if err != nil {
			return nil, fmt.Errorf("construct: archive for %q: %w", meta.Name, err)
		}
		t.Initialise(r, t.Capacity())
		rel.Initialise(r, rel.Capacity())
		a.threshold[attr] = archive.Synchronize[float64](t)
		a.relation[attr] = archive.Synchronize[int](rel)
	}

	return a, nil
}

// Nominal returns the label archive of attr, or nil.
func (a *Archives) Nominal(attr int) archive.Variable[int] {
	if v, ok := a.nominal[attr]; ok {
		return v
	}

	return nil
}

// Relation returns the relation archive of a continuous attr, or nil.
func (a *Archives) Relation(attr int) archive.Variable[int] {
	if v, ok := a.relation[attr]; ok {
		return v
	}

	return nil
}

// Threshold returns the threshold archive of a continuous attr, or nil.
func (a *Archives) Threshold(attr int) archive.Variable[float64] {
	if v, ok := a.threshold[attr]; ok {
		return v
	}

	return nil
}

// Record inserts the choices of r into the archives with r's quality and
// reports how many members were accepted. Conditions on attributes without
// an archive are skipped.
func (a *Archives) Record(r *rule.Rule) int {
	var added int
	for _, c := range r.Conditions {
		switch c.Relation {
		case rule.EqualTo:
			if v, ok := a.nominal[c.Attribute]; ok {
				added += accepted(v.Add(archive.Solution[int]{Value: int(c.Value), Quality: r.Quality}))
			}
		case rule.LessThanOrEqual, rule.GreaterThan:
			rel, ok := a.relation[c.Attribute]
			if !ok {
				continue
			}
			idx := relationLessOrEqual
			if c.Relation == rule.GreaterThan {
				idx = relationGreater
			}
			added += accepted(rel.Add(archive.Solution[int]{Value: idx, Quality: r.Quality}))
			added += accepted(a.threshold[c.Attribute].Add(archive.Solution[float64]{Value: c.Value, Quality: r.Quality}))
		}
	}

	return added
}

func accepted(ok bool) int {
	if ok {
		return 1
	}

	return 0
}
