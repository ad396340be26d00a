package resample

import (
	"context"
	"fmt"
	"math/rand"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"goinfer/domain/core"
	"goinfer/domain/hypothesis"
	"goinfer/domain/table"
)

// StreamFor derives an independently seeded generator for one replicate
// index. Seeding must depend on the index so results stay reproducible
// regardless of goroutine scheduling.
type StreamFor func(rep int) (*rand.Rand, error)

// GenerateParallel is the concurrent counterpart of Generate: replicate
// blocks are produced by worker goroutines, each drawing from its own
// order-indexed generator, then concatenated in replicate order. Output is
// deterministic for a fixed base seed but differs from the sequential
// stream of Generate. Concurrency is bounded by workers.
func GenerateParallel(ctx context.Context, design hypothesis.Design, reps int, method Method, streamFor StreamFor, workers int) (*Replicates, error) {
	if design.Table == nil {
		return nil, core.NewInputError("no table to generate from")
	}
	if !KnownMethod(method) {
		return &Replicates{Design: design, Table: design.Table, Reps: 0, Method: method}, nil
	}
	if reps < 1 {
		return nil, core.NewInputError(fmt.Sprintf("reps must be positive, got %d", reps))
	}
	if streamFor == nil {
		return nil, core.NewInputError("no replicate stream source")
	}
	if workers < 1 {
		workers = 1
	}

	// validate eagerly so nothing launches on a doomed request
	if err := checkOnce(design, method); err != nil {
		return nil, err
	}

	n := design.Table.NRows()
	blocks := make([]*table.Table, reps)
	sem := semaphore.NewWeighted(int64(workers))
	g, ctx := errgroup.WithContext(ctx)

	for i := 0; i < reps; i++ {
		rep := i
		g.Go(func() error {
			if err := sem.Acquire(ctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			rng, err := streamFor(rep)
			if err != nil {
				return fmt.Errorf("replicate %d: %w", rep+1, err)
			}
			block, err := generateOnce(design, method, rng)
			if err != nil {
				return fmt.Errorf("replicate %d: %w", rep+1, err)
			}
			blocks[rep] = block
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	joined, err := table.Concat(blocks...)
	if err != nil {
		return nil, err
	}
	grouped, err := joined.Prepend(replicateColumn(reps, n))
	if err != nil {
		return nil, err
	}

	return &Replicates{Design: design, Table: grouped, Reps: reps, Method: method}, nil
}

// checkOnce runs the per-method shape and metadata validations without
// drawing anything
func checkOnce(design hypothesis.Design, method Method) error {
	tbl := design.Table
	switch method {
	case MethodBootstrap:
		if tbl.NRows() == 0 {
			return core.NewInputError("cannot sample from an empty table")
		}
	case MethodPermute:
		if !design.HasNull() {
			return fmt.Errorf("permute: %w", core.ErrMissingMetadata)
		}
	case MethodSimulate:
		if tbl.NCols() != 1 {
			return fmt.Errorf("simulate: %w", core.NewInputError(fmt.Sprintf(
				"needs a single-column table, got %d columns", tbl.NCols())))
		}
		if _, ok := tbl.ColumnAt(0).(*table.FactorColumn); !ok {
			return fmt.Errorf("simulate: %w",
				core.NewColumnKindError(tbl.ColumnAt(0).Name(), "factor"))
		}
		if design.Null != hypothesis.NullPoint || design.Point == nil {
			return fmt.Errorf("simulate: %w: point null required", core.ErrMissingMetadata)
		}
		if tbl.NRows() == 0 {
			return core.NewInputError("cannot sample from an empty table")
		}
	}
	return nil
}

// generateOnce produces a single replicate block
func generateOnce(design hypothesis.Design, method Method, rng *rand.Rand) (*table.Table, error) {
	tbl := design.Table
	n := tbl.NRows()

	switch method {
	case MethodBootstrap:
		indices, err := drawIndices(n, n, true, nil, rng)
		if err != nil {
			return nil, err
		}
		return tbl.Take(indices), nil

	case MethodPermute:
		return permuteOnce(design, rng)

	case MethodSimulate:
		weights := make(Weights, len(design.Point))
		for _, pair := range design.Point {
			weights[pair.Level] = pair.Prob
		}
		rowWeights, err := expandWeights(tbl, weights)
		if err != nil {
			return nil, err
		}
		indices, err := drawIndices(n, n, true, rowWeights, rng)
		if err != nil {
			return nil, err
		}
		return tbl.Take(indices), nil

	default:
		return nil, core.NewInputError(fmt.Sprintf("no single-replicate rule for method %q", method))
	}
}
