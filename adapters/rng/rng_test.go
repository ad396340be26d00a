package rng

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goinfer/domain/core"
)

func TestSeededStreamDeterministic(t *testing.T) {
	adapter := New()

	a, err := adapter.SeededStream(t.Context(), "generate", 42)
	require.NoError(t, err)
	b, err := adapter.SeededStream(t.Context(), "generate", 42)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Float64(), b.Float64(), "draw %d diverged", i)
	}
}

func TestReplicateStreamKeying(t *testing.T) {
	adapter := New()

	same1, err := adapter.ReplicateStream(t.Context(), "run-a", 3, 42)
	require.NoError(t, err)
	same2, err := adapter.ReplicateStream(t.Context(), "run-a", 3, 42)
	require.NoError(t, err)
	assert.Equal(t, same1.Float64(), same2.Float64(), "same key must reproduce the stream")

	otherRep, err := adapter.ReplicateStream(t.Context(), "run-a", 4, 42)
	require.NoError(t, err)
	otherRun, err := adapter.ReplicateStream(t.Context(), "run-b", 3, 42)
	require.NoError(t, err)
	otherSeed, err := adapter.ReplicateStream(t.Context(), "run-a", 3, 43)
	require.NoError(t, err)

	base, err := adapter.ReplicateStream(t.Context(), "run-a", 3, 42)
	require.NoError(t, err)
	want := base.Float64()
	assert.NotEqual(t, want, otherRep.Float64(), "replicate index must change the stream")
	assert.NotEqual(t, want, otherRun.Float64(), "run ID must change the stream")
	assert.NotEqual(t, want, otherSeed.Float64(), "base seed must change the stream")
}

func TestValidateSeed(t *testing.T) {
	adapter := New()

	reference := rand.New(rand.NewSource(7))
	expected := []float64{reference.Float64(), reference.Float64(), reference.Float64()}

	assert.NoError(t, adapter.ValidateSeed(t.Context(), "check", 7, expected))

	err := adapter.ValidateSeed(t.Context(), "check", 8, expected)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrSeedMismatch)
	assert.True(t, core.IsDeterminismError(err))
}
