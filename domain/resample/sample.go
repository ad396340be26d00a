package resample

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"
	"gonum.org/v1/gonum/stat/sampleuv"

	"goinfer/domain/core"
	"goinfer/domain/table"
)

// Weights declares a selection weight per level of a table's first column.
// Weights need not sum to one; they are normalized by the samplers.
type Weights map[string]float64

// RepSampleN is the sampling primitive behind every generation mode: it
// draws reps independent index vectors of length size over the table's
// rows, with or without replacement, optionally weighted, and returns the
// concatenated row blocks behind a replicate index column.
//
// Weights are declared per level of the table's first column and expanded
// to one weight per row by looking up each row's level. A level occurring
// k times therefore carries total mass k times its weight. Weighted
// sampling demands a single-column table; anything wider is rejected.
// Without replacement, weighted draws remove each selected row and
// renormalize the remainder.
func RepSampleN(tbl *table.Table, size int, replace bool, reps int, weights Weights, rng *rand.Rand) (*Replicates, error) {
	if tbl == nil {
		return nil, core.NewInputError("no table to sample from")
	}
	n := tbl.NRows()
	if n == 0 {
		return nil, core.NewInputError("cannot sample from an empty table")
	}
	if size < 0 {
		return nil, core.NewInputError(fmt.Sprintf("sample size %d is negative", size))
	}
	if reps < 1 {
		return nil, core.NewInputError(fmt.Sprintf("reps must be positive, got %d", reps))
	}
	if !replace && size > n {
		return nil, core.NewInputError(fmt.Sprintf(
			"cannot draw %d rows from %d without replacement", size, n))
	}

	var rowWeights []float64
	if weights != nil {
		var err error
		rowWeights, err = expandWeights(tbl, weights)
		if err != nil {
			return nil, err
		}
	}

	indices := make([]int, 0, reps*size)
	for rep := 0; rep < reps; rep++ {
		drawn, err := drawIndices(n, size, replace, rowWeights, rng)
		if err != nil {
			return nil, err
		}
		indices = append(indices, drawn...)
	}

	long := tbl.Take(indices)
	grouped, err := long.Prepend(replicateColumn(reps, size))
	if err != nil {
		return nil, err
	}

	return &Replicates{Table: grouped, Reps: reps}, nil
}

// expandWeights turns per-level weights into a per-row weight vector.
// The lookup join assumes a single-column table; the restriction is
// explicit rather than producing ambiguous multi-column weights.
func expandWeights(tbl *table.Table, weights Weights) ([]float64, error) {
	if tbl.NCols() != 1 {
		return nil, core.NewInputError(fmt.Sprintf(
			"level weights need a single-column table, got %d columns", tbl.NCols()))
	}
	fc, ok := tbl.ColumnAt(0).(*table.FactorColumn)
	if !ok {
		return nil, core.NewColumnKindError(tbl.ColumnAt(0).Name(), "factor")
	}

	rowWeights := make([]float64, len(fc.Values))
	positive := false
	for i, value := range fc.Values {
		w, declared := weights[value]
		if !declared {
			return nil, core.NewInputError(fmt.Sprintf("no weight declared for level %q", value))
		}
		if w < 0 {
			return nil, core.NewInputError(fmt.Sprintf("weight for level %q is negative", value))
		}
		if w > 0 {
			positive = true
		}
		rowWeights[i] = w
	}
	if !positive {
		return nil, core.NewInputError("all row weights are zero")
	}
	return rowWeights, nil
}

// drawIndices draws one index vector of length size over [0, n)
func drawIndices(n, size int, replace bool, rowWeights []float64, rng *rand.Rand) ([]int, error) {
	indices := make([]int, size)

	switch {
	case rowWeights == nil && replace:
		for i := range indices {
			indices[i] = rng.Intn(n)
		}

	case rowWeights == nil && !replace:
		perm := rng.Perm(n)
		copy(indices, perm[:size])

	case replace:
		dist := distuv.NewCategorical(rowWeights, rng)
		for i := range indices {
			indices[i] = int(dist.Rand())
		}

	default:
		// sequential removal: each draw takes a row out and renormalizes
		weights := make([]float64, len(rowWeights))
		copy(weights, rowWeights)
		sampler := sampleuv.NewWeighted(weights, rng)
		for i := range indices {
			idx, ok := sampler.Take()
			if !ok {
				return nil, core.NewInputError(fmt.Sprintf(
					"weights support only %d draws, need %d", i, size))
			}
			indices[i] = idx
		}
	}

	return indices, nil
}
