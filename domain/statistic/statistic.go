// Package statistic reduces a replicate-grouped dataset to one scalar test
// statistic per replicate: mean, first-level proportion, or the signed
// two-group difference of either. The dispatch over statistic kinds is
// exhaustive; recognized-but-unimplemented kinds and unknown names both fail
// with a typed error instead of falling through silently.
package statistic

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"goinfer/domain/core"
	"goinfer/domain/resample"
	"goinfer/domain/table"
)

// Kind names a test statistic
type Kind string

const (
	KindMean        Kind = "mean"
	KindProp        Kind = "prop"
	KindDiffInMeans Kind = "diff in means"
	KindDiffInProps Kind = "diff in props"

	// Recognized but not implemented. Calculate fails with an
	// unsupported-operation error for these.
	KindChisq Kind = "Chisq"
	KindF     Kind = "F"
)

// StatColumn names the numeric column holding the reduced statistic
const StatColumn = "stat"

// ParseKind maps a statistic name onto a Kind. Unknown names fail; Chisq
// and F parse (they are recognized names) but fail later in Calculate.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindMean, KindProp, KindDiffInMeans, KindDiffInProps, KindChisq, KindF:
		return Kind(s), nil
	default:
		return "", core.NewUnsupportedStatisticError(s)
	}
}

func (k Kind) String() string { return string(k) }

// Calculate reduces each replicate block of r to one scalar and returns a
// table with one row per distinct replicate value: a replicate IntColumn
// plus a NumericColumn named stat. Ungrouped input is treated as a single
// replicate with index 1. Shape preconditions are checked before any
// reduction starts.
//
// Difference statistics take their response and group columns from the
// carried design roles, never by re-inspecting column types, and demand
// exactly two group levels. A replicate that drew no rows of a group level
// reduces that level's aggregate to NaN, matching the reference behavior
// for empty groups.
func Calculate(r *resample.Replicates, kind Kind) (*table.Table, error) {
	if r == nil || r.Table == nil {
		return nil, core.NewInputError("no replicates to calculate over")
	}

	switch kind {
	case KindMean:
		col, err := soleValueColumn(r.Table)
		if err != nil {
			return nil, fmt.Errorf("mean: %w", err)
		}
		nc, ok := col.(*table.NumericColumn)
		if !ok {
			return nil, fmt.Errorf("mean: %w", core.NewColumnKindError(col.Name(), "numeric"))
		}
		return reduce(r, func(rows []int) float64 {
			return meanAt(nc.Values, rows)
		})

	case KindProp:
		col, err := soleValueColumn(r.Table)
		if err != nil {
			return nil, fmt.Errorf("prop: %w", err)
		}
		fc, ok := col.(*table.FactorColumn)
		if !ok {
			return nil, fmt.Errorf("prop: %w", core.NewColumnKindError(col.Name(), "factor"))
		}
		first := fc.Levels[0]
		return reduce(r, func(rows []int) float64 {
			return propAt(fc.Values, rows, first)
		})

	case KindDiffInMeans:
		response, group, err := diffColumns(r)
		if err != nil {
			return nil, fmt.Errorf("diff in means: %w", err)
		}
		nc, ok := response.(*table.NumericColumn)
		if !ok {
			return nil, fmt.Errorf("diff in means: %w",
				core.NewColumnKindError(response.Name(), "numeric"))
		}
		return reduce(r, func(rows []int) float64 {
			a := meanAt(nc.Values, rowsOfLevel(group.Values, rows, group.Levels[0]))
			b := meanAt(nc.Values, rowsOfLevel(group.Values, rows, group.Levels[1]))
			return a - b
		})

	case KindDiffInProps:
		response, group, err := diffColumns(r)
		if err != nil {
			return nil, fmt.Errorf("diff in props: %w", err)
		}
		fc, ok := response.(*table.FactorColumn)
		if !ok {
			return nil, fmt.Errorf("diff in props: %w",
				core.NewColumnKindError(response.Name(), "factor"))
		}
		first := fc.Levels[0]
		return reduce(r, func(rows []int) float64 {
			a := propAt(fc.Values, rowsOfLevel(group.Values, rows, group.Levels[0]), first)
			b := propAt(fc.Values, rowsOfLevel(group.Values, rows, group.Levels[1]), first)
			return a - b
		})

	case KindChisq, KindF:
		return nil, fmt.Errorf("calculate: %w: not implemented",
			core.NewUnsupportedStatisticError(string(kind)))

	default:
		return nil, fmt.Errorf("calculate: %w", core.NewUnsupportedStatisticError(string(kind)))
	}
}

// soleValueColumn returns the single non-replicate column, failing when the
// table carries any other count
func soleValueColumn(tbl *table.Table) (table.Column, error) {
	var picked table.Column
	count := 0
	for _, col := range tbl.Columns() {
		if col.Name() == resample.ReplicateColumn {
			continue
		}
		picked = col
		count++
	}
	if count != 1 {
		return nil, fmt.Errorf("%w: need exactly one value column, got %d",
			core.ErrColumnCount, count)
	}
	return picked, nil
}

// diffColumns resolves the response and group columns for a difference
// statistic from the design roles and enforces two group levels
func diffColumns(r *resample.Replicates) (table.Column, *table.FactorColumn, error) {
	if r.Design.Response == "" {
		return nil, nil, core.NewInputError("difference statistics need a declared response column")
	}
	if r.Design.Group == "" {
		return nil, nil, core.NewInputError("difference statistics need a declared group column")
	}
	response, err := r.Table.Column(r.Design.Response)
	if err != nil {
		return nil, nil, err
	}
	group, err := r.Table.Factor(r.Design.Group)
	if err != nil {
		return nil, nil, err
	}
	if len(group.Levels) != 2 {
		return nil, nil, fmt.Errorf("%w: column %q has %d",
			core.ErrGroupCardinality, group.Name(), len(group.Levels))
	}
	return response, group, nil
}

// block is the row set of one replicate
type block struct {
	rep  int
	rows []int
}

// replicateBlocks groups row indices by distinct replicate value, in
// first-seen order. Ungrouped input is one block with index 1.
func replicateBlocks(r *resample.Replicates) ([]block, error) {
	if !r.Grouped() {
		rows := make([]int, r.Table.NRows())
		for i := range rows {
			rows[i] = i
		}
		return []block{{rep: 1, rows: rows}}, nil
	}

	repCol, err := r.Table.Int(resample.ReplicateColumn)
	if err != nil {
		return nil, err
	}
	var blocks []block
	at := make(map[int]int)
	for i, rep := range repCol.Values {
		j, seen := at[rep]
		if !seen {
			j = len(blocks)
			at[rep] = j
			blocks = append(blocks, block{rep: rep})
		}
		blocks[j].rows = append(blocks[j].rows, i)
	}
	return blocks, nil
}

// reduce applies f to every replicate block and assembles the statistic table
func reduce(r *resample.Replicates, f func(rows []int) float64) (*table.Table, error) {
	blocks, err := replicateBlocks(r)
	if err != nil {
		return nil, err
	}

	reps := make([]int, len(blocks))
	values := make([]float64, len(blocks))
	for i, b := range blocks {
		reps[i] = b.rep
		values[i] = f(b.rows)
	}

	return table.New(
		table.NewIntColumn(resample.ReplicateColumn, reps),
		table.NewNumericColumn(StatColumn, values),
	)
}

func meanAt(values []float64, rows []int) float64 {
	picked := make([]float64, len(rows))
	for i, row := range rows {
		picked[i] = values[row]
	}
	m, err := stats.Mean(picked)
	if err != nil {
		return math.NaN()
	}
	return m
}

func propAt(values []string, rows []int, level string) float64 {
	if len(rows) == 0 {
		return math.NaN()
	}
	hits := 0
	for _, row := range rows {
		if values[row] == level {
			hits++
		}
	}
	return float64(hits) / float64(len(rows))
}

func rowsOfLevel(groupValues []string, rows []int, level string) []int {
	var picked []int
	for _, row := range rows {
		if groupValues[row] == level {
			picked = append(picked, row)
		}
	}
	return picked
}
