package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReadCSV parses a comma separated file with a header row. A column whose
// non-missing cells all parse as numbers becomes Continuous, any other
// column becomes Nominal with labels in order of first appearance. Cells
// that are empty or "?" are missing. The target column is forced to Nominal
// when forceNominalTarget is set (numeric class codes).
//
// Complexity: O(n·m).
func ReadCSV(r io.Reader, target string, forceNominalTarget bool) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("dataset: read csv: %w", err)
	}
	if len(records) < 2 {
		return nil, ErrEmptyDataset
	}

	var (
		header = records[0]
		body   = records[1:]
		m      = len(header)
		attrs  = make([]Attribute, m)
		t      = -1
		i, j   int
	)
	for j = 0; j < m; j++ {
		attrs[j].Name = strings.TrimSpace(header[j])
		if attrs[j].Name == target {
			t = j
		}
	}
	if t < 0 {
		return nil, fmt.Errorf("%w: target %q", ErrUnknownAttribute, target)
	}
	for i = range body {
		if len(body[i]) != m {
			return nil, fmt.Errorf("%w: line %d", ErrRaggedRow, i+2)
		}
	}

	// Stage 1: kind inference.
	for j = 0; j < m; j++ {
		attrs[j].Kind = Continuous
		if j == t && forceNominalTarget {
			attrs[j].Kind = Nominal
			continue
		}
		for i = range body {
			cell := strings.TrimSpace(body[i][j])
			if missingCell(cell) {
				continue
			}
			if _, err = strconv.ParseFloat(cell, 64); err != nil {
				attrs[j].Kind = Nominal
				break
			}
		}
	}

	// Stage 2: encode.
	var (
		rows   = make([][]float64, len(body))
		labels = make([]map[string]int, m)
	)
	for j = 0; j < m; j++ {
		labels[j] = make(map[string]int)
	}
	for i = range body {
		rows[i] = make([]float64, m)
		for j = 0; j < m; j++ {
			cell := strings.TrimSpace(body[i][j])
			if missingCell(cell) {
				rows[i][j] = Missing
				continue
			}
			if attrs[j].Kind == Continuous {
				rows[i][j], _ = strconv.ParseFloat(cell, 64)
				continue
			}
			idx, ok := labels[j][cell]
			if !ok {
				idx = len(attrs[j].Values)
				labels[j][cell] = idx
				attrs[j].Values = append(attrs[j].Values, cell)
			}
			rows[i][j] = float64(idx)
		}
	}

	return New(attrs, rows, t)
}

func missingCell(s string) bool {
	return s == "" || s == "?"
}
