// SPDX-License-Identifier: MIT

package dataset

import (
	"fmt"
	"math"
)

// Dataset is an immutable instance matrix with attribute metadata and a
// target index. It is safe for concurrent reads.
type Dataset struct {
	attrs  []Attribute
	target int
	n      int       // number of instances
	data   []float64 // n*len(attrs) values, row-major
}

// New builds a Dataset from encoded rows (nominal values as label indices,
// NaN for missing). Continuous bounds are recomputed from the rows.
//
// Stage 1 (Validate): non-empty shape, target in range, row widths.
// Stage 2 (Prepare): copy rows into flat storage, check nominal indices.
// Stage 3 (Finalize): compute continuous bounds.
//
// Complexity: O(n·m).
func New(attrs []Attribute, rows [][]float64, target int) (*Dataset, error) {
	if len(attrs) == 0 || len(rows) == 0 {
		return nil, ErrEmptyDataset
	}
	if target < 0 || target >= len(attrs) {
		return nil, fmt.Errorf("%w: %d", ErrBadTarget, target)
	}

	var (
		m    = len(attrs)
		ds   = &Dataset{attrs: make([]Attribute, m), target: target, n: len(rows)}
		i, j int
		v    float64
	)
	copy(ds.attrs, attrs)
	ds.data = make([]float64, len(rows)*m)

	for i = range rows {
		if len(rows[i]) != m {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrRaggedRow, i, len(rows[i]), m)
		}
		for j = 0; j < m; j++ {
			v = rows[i][j]
			if ds.attrs[j].Kind == Nominal && !IsMissing(v) {
				if v < 0 || int(v) >= len(ds.attrs[j].Values) || v != math.Trunc(v) {
					return nil, fmt.Errorf("%w: row %d attribute %q value %v", ErrUnknownValue, i, ds.attrs[j].Name, v)
				}
			}
			ds.data[i*m+j] = v
		}
	}

	for j = 0; j < m; j++ {
		if ds.attrs[j].Kind == Continuous {
			ds.attrs[j].Lower, ds.attrs[j].Upper = ds.bounds(j)
		}
	}

	return ds, nil
}

// bounds returns the observed [min, max] of a continuous column; 0,0 when
// every value is missing.
func (d *Dataset) bounds(attr int) (float64, float64) {
	var (
		lo    = math.Inf(1)
		hi    = math.Inf(-1)
		i     int
		v     float64
		found bool
	)
	for i = 0; i < d.n; i++ {
		v = d.At(i, attr)
		if IsMissing(v) {
			continue
		}
		found = true
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if !found {
		return 0, 0
	}

	return lo, hi
}

// Size returns the number of instances.
func (d *Dataset) Size() int { return d.n }

// Attributes returns the number of attributes, target included.
func (d *Dataset) Attributes() int { return len(d.attrs) }

// Attribute returns the metadata of attribute i.
func (d *Dataset) Attribute(i int) Attribute { return d.attrs[i] }

// Target returns the index of the target attribute.
func (d *Dataset) Target() int { return d.target }

// Classification reports whether the target is nominal.
func (d *Dataset) Classification() bool { return d.attrs[d.target].Kind == Nominal }

// Classes returns the number of target labels (0 for regression).
func (d *Dataset) Classes() int { return d.attrs[d.target].Len() }

// At returns the value of attribute attr for instance i. Indices are not
// checked; callers iterate within Size() and Attributes().
func (d *Dataset) At(i, attr int) float64 {
	return d.data[i*len(d.attrs)+attr]
}

// Value returns the target value of instance i.
func (d *Dataset) Value(i int) float64 { return d.At(i, d.target) }

// Index returns the position of the attribute called name.
func (d *Dataset) Index(name string) (int, error) {
	for i := range d.attrs {
		if d.attrs[i].Name == name {
			return i, nil
		}
	}

	return -1, fmt.Errorf("%w: %q", ErrUnknownAttribute, name)
}

// Label renders the value v of attribute attr for humans.
func (d *Dataset) Label(attr int, v float64) string {
	if IsMissing(v) {
		return "?"
	}
	a := d.attrs[attr]
	if a.Kind == Nominal {
		return a.Values[int(v)]
	}

	return fmt.Sprintf("%g", v)
}

// Distribution returns the class frequencies of the instances whose flag is
// one of flags. For regression targets it returns nil.
// Complexity: O(n).
func (d *Dataset) Distribution(cov Coverage, flags ...Flag) []float64 {
	if !d.Classification() {
		return nil
	}
	var (
		dist = make([]float64, d.Classes())
		i    int
		v    float64
	)
	for i = 0; i < d.n; i++ {
		if !hasFlag(cov[i], flags) {
			continue
		}
		v = d.Value(i)
		if IsMissing(v) {
			continue
		}
		dist[int(v)]++
	}

	return dist
}

// Mean returns the mean target value over the given instances, ignoring
// missing targets. It returns NaN when no value is available.
func (d *Dataset) Mean(instances []int) float64 {
	var (
		sum float64
		cnt int
		v   float64
	)
	for _, i := range instances {
		v = d.Value(i)
		if IsMissing(v) {
			continue
		}
		sum += v
		cnt++
	}
	if cnt == 0 {
		return math.NaN()
	}

	return sum / float64(cnt)
}

// Select returns the indices of the instances whose flag is one of flags.
func (d *Dataset) Select(cov Coverage, flags ...Flag) []int {
	out := make([]int, 0, d.n)
	for i := 0; i < d.n; i++ {
		if hasFlag(cov[i], flags) {
			out = append(out, i)
		}
	}

	return out
}

// Predictors returns the attribute indices excluding the target, in
// declaration order.
func (d *Dataset) Predictors() []int {
	out := make([]int, 0, len(d.attrs)-1)
	for i := range d.attrs {
		if i != d.target {
			out = append(out, i)
		}
	}

	return out
}
