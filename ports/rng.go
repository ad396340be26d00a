package ports

import (
	"context"
	"math/rand"
)

// RNGPort provides seeded random number generation for deterministic operations
type RNGPort interface {
	// SeededStream creates a deterministic random number generator for a named operation
	SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error)

	// ReplicateStream creates a deterministic RNG stream for one replicate of a run.
	// Streams are keyed by run and replicate index, so parallel generation produces
	// identical results for the same run regardless of scheduling.
	ReplicateStream(ctx context.Context, runID string, replicate int, baseSeed int64) (*rand.Rand, error)

	// ValidateSeed ensures the seed produces expected deterministic results
	ValidateSeed(ctx context.Context, name string, seed int64, expected []float64) error
}
