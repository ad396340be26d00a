// Package resample generates replicate datasets for resampling-based
// inference: bootstrap resamples, null-hypothesis-keyed permutations, and
// point-null simulations. All randomness flows through a caller-supplied
// generator; a fixed seed reproduces every draw.
package resample

import (
	"goinfer/domain/hypothesis"
	"goinfer/domain/table"
)

// ReplicateColumn names the integer index column prepended to generator
// output
const ReplicateColumn = "replicate"

// Method selects how replicates are generated
type Method string

const (
	MethodBootstrap Method = "bootstrap"
	MethodPermute   Method = "permute"
	MethodSimulate  Method = "simulate"
)

// KnownMethod reports whether m names one of the generation modes.
// Generate passes tables through untouched for unknown methods, so parsing
// never fails; callers that want strictness check this.
func KnownMethod(m Method) bool {
	switch m {
	case MethodBootstrap, MethodPermute, MethodSimulate:
		return true
	}
	return false
}

// Replicates is generator output: the long-format table with a leading
// replicate index column, blocked monotonically, plus the design metadata
// carried through unchanged.
type Replicates struct {
	Design hypothesis.Design
	Table  *table.Table
	Reps   int // 0 when the table carries no replicate column (passthrough)
	Method Method
}

// Ungrouped wraps a design's table as a single implicit replicate, for
// reducing a statistic over data that never went through Generate.
func Ungrouped(design hypothesis.Design) *Replicates {
	return &Replicates{Design: design, Table: design.Table, Reps: 0}
}

// Grouped reports whether the table carries a replicate index
func (r *Replicates) Grouped() bool {
	return r.Reps > 0
}

// BlockSize returns the row count of one replicate block
func (r *Replicates) BlockSize() int {
	if r.Reps == 0 {
		return r.Table.NRows()
	}
	return r.Table.NRows() / r.Reps
}

// replicateColumn builds the index column: 1..reps, each repeated size times
func replicateColumn(reps, size int) *table.IntColumn {
	values := make([]int, 0, reps*size)
	for rep := 1; rep <= reps; rep++ {
		for i := 0; i < size; i++ {
			values = append(values, rep)
		}
	}
	return table.NewIntColumn(ReplicateColumn, values)
}
