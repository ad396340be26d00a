package resample

import (
	"fmt"
	"math/rand"

	"goinfer/domain/core"
	"goinfer/domain/hypothesis"
	"goinfer/domain/table"
)

// Generate produces a replicate-grouped dataset from a design. Bootstrap
// resamples rows with replacement, permute reorders rows under the declared
// null, simulate draws from the point null's level probabilities. Any other
// method passes the input table through untouched with no replicate column,
// a documented edge case rather than an error.
func Generate(design hypothesis.Design, reps int, method Method, rng *rand.Rand) (*Replicates, error) {
	if design.Table == nil {
		return nil, core.NewInputError("no table to generate from")
	}

	switch method {
	case MethodBootstrap:
		return bootstrap(design, reps, rng)
	case MethodPermute:
		return permute(design, reps, rng)
	case MethodSimulate:
		return simulate(design, reps, rng)
	default:
		return &Replicates{Design: design, Table: design.Table, Reps: 0, Method: method}, nil
	}
}

// bootstrap draws reps with-replacement resamples of the full table
func bootstrap(design hypothesis.Design, reps int, rng *rand.Rand) (*Replicates, error) {
	out, err := RepSampleN(design.Table, design.Table.NRows(), true, reps, nil, rng)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	out.Design = design
	out.Method = MethodBootstrap
	return out, nil
}

// permute builds reps full-table permutations under the declared null and
// re-attaches the design metadata unchanged. Only row order changes.
func permute(design hypothesis.Design, reps int, rng *rand.Rand) (*Replicates, error) {
	if !design.HasNull() {
		return nil, fmt.Errorf("permute: %w", core.ErrMissingMetadata)
	}
	if reps < 1 {
		return nil, core.NewInputError(fmt.Sprintf("reps must be positive, got %d", reps))
	}

	n := design.Table.NRows()
	blocks := make([]*table.Table, reps)
	for i := range blocks {
		block, err := permuteOnce(design, rng)
		if err != nil {
			return nil, fmt.Errorf("permute: %w", err)
		}
		blocks[i] = block
	}

	joined, err := table.Concat(blocks...)
	if err != nil {
		return nil, fmt.Errorf("permute: %w", err)
	}
	grouped, err := joined.Prepend(replicateColumn(reps, n))
	if err != nil {
		return nil, fmt.Errorf("permute: %w", err)
	}

	return &Replicates{Design: design, Table: grouped, Reps: reps, Method: MethodPermute}, nil
}

// permuteOnce performs one full-table row permutation keyed by the null:
// equal means shuffles the declared response column against the fixed
// remainder, independence shuffles the first column positionally. The
// dispatch is exhaustive; nulls without a permutation rule fail.
func permuteOnce(design hypothesis.Design, rng *rand.Rand) (*table.Table, error) {
	switch design.Null {
	case hypothesis.NullEqualMeans:
		response, err := design.Table.Numeric(design.Response)
		if err != nil {
			return nil, err
		}
		shuffled := response.Take(rng.Perm(response.Len()))
		return design.Table.Replace(design.Response, shuffled)

	case hypothesis.NullIndependence:
		first := design.Table.ColumnAt(0)
		shuffled := first.Take(rng.Perm(first.Len()))
		return design.Table.Replace(first.Name(), shuffled)

	case hypothesis.NullNone:
		return nil, core.ErrMissingMetadata

	default:
		return nil, core.NewUnsupportedNullError(string(design.Null))
	}
}

// simulate draws reps with-replacement samples of a single categorical
// column, weighted by the point null's per-level probabilities.
func simulate(design hypothesis.Design, reps int, rng *rand.Rand) (*Replicates, error) {
	tbl := design.Table
	if tbl.NCols() != 1 {
		return nil, fmt.Errorf("simulate: %w", core.NewInputError(fmt.Sprintf(
			"needs a single-column table, got %d columns", tbl.NCols())))
	}
	if _, ok := tbl.ColumnAt(0).(*table.FactorColumn); !ok {
		return nil, fmt.Errorf("simulate: %w",
			core.NewColumnKindError(tbl.ColumnAt(0).Name(), "factor"))
	}
	if design.Null != hypothesis.NullPoint || design.Point == nil {
		return nil, fmt.Errorf("simulate: %w: point null required", core.ErrMissingMetadata)
	}

	weights := make(Weights, len(design.Point))
	for _, pair := range design.Point {
		weights[pair.Level] = pair.Prob
	}

	out, err := RepSampleN(tbl, tbl.NRows(), true, reps, weights, rng)
	if err != nil {
		return nil, fmt.Errorf("simulate: %w", err)
	}
	out.Design = design
	out.Method = MethodSimulate
	return out, nil
}
