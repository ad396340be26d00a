package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goinfer/domain/core"
)

func TestNewValidation(t *testing.T) {
	x := NewNumericColumn("x", []float64{1, 2, 3})
	y := NewNumericColumn("y", []float64{4, 5})

	_, err := New(x, y)
	assert.True(t, core.IsInputError(err), "unequal lengths must be an input error")

	_, err = New(x, NewNumericColumn("x", []float64{1, 2, 3}))
	assert.True(t, core.IsInputError(err), "duplicate names must be an input error")

	_, err = New()
	assert.Error(t, err)

	tbl, err := New(x, NewNumericColumn("y", []float64{4, 5, 6}))
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.NRows())
	assert.Equal(t, 2, tbl.NCols())
	assert.Equal(t, []string{"x", "y"}, tbl.Names())
}

func TestFactorLevelsFirstSeen(t *testing.T) {
	col := NewFactorColumn("group", []string{"treat", "control", "treat", "control"})
	assert.Equal(t, []string{"treat", "control"}, col.Levels)
	assert.Equal(t, 0, col.LevelIndex("treat"))
	assert.Equal(t, 1, col.LevelIndex("control"))
	assert.Equal(t, -1, col.LevelIndex("placebo"))
}

func TestFactorExplicitLevels(t *testing.T) {
	col, err := NewFactorColumnWithLevels("group", []string{"b", "a"}, []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, col.Levels)

	_, err = NewFactorColumnWithLevels("group", []string{"c"}, []string{"a", "b"})
	assert.True(t, core.IsInputError(err))
}

func TestTakeRepeatsAndPreservesLevels(t *testing.T) {
	x := NewNumericColumn("x", []float64{10, 20, 30})
	g := NewFactorColumn("g", []string{"a", "b", "a"})
	tbl, err := New(x, g)
	require.NoError(t, err)

	taken := tbl.Take([]int{2, 2, 0})
	assert.Equal(t, 3, taken.NRows())

	xt, err := taken.Numeric("x")
	require.NoError(t, err)
	assert.Equal(t, []float64{30, 30, 10}, xt.Values)

	gt, err := taken.Factor("g")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "a", "a"}, gt.Values)
	// level "b" no longer occurs but stays in the level set
	assert.Equal(t, []string{"a", "b"}, gt.Levels)
}

func TestColumnKindAccess(t *testing.T) {
	tbl, err := New(
		NewNumericColumn("x", []float64{1}),
		NewFactorColumn("g", []string{"a"}),
	)
	require.NoError(t, err)

	_, err = tbl.Numeric("g")
	assert.True(t, core.IsInputError(err))

	_, err = tbl.Factor("x")
	assert.True(t, core.IsInputError(err))

	_, err = tbl.Column("missing")
	assert.True(t, core.IsInputError(err))
}

func TestPrependAndReplace(t *testing.T) {
	tbl, err := New(NewNumericColumn("x", []float64{1, 2}))
	require.NoError(t, err)

	withRep, err := tbl.Prepend(NewIntColumn("replicate", []int{1, 1}))
	require.NoError(t, err)
	assert.Equal(t, []string{"replicate", "x"}, withRep.Names())

	swapped, err := tbl.Replace("x", NewNumericColumn("x", []float64{2, 1}))
	require.NoError(t, err)
	xc, _ := swapped.Numeric("x")
	assert.Equal(t, []float64{2, 1}, xc.Values)

	_, err = tbl.Replace("x", NewNumericColumn("y", []float64{2, 1}))
	assert.True(t, core.IsInputError(err))

	_, err = tbl.Replace("x", NewNumericColumn("x", []float64{2}))
	assert.True(t, core.IsInputError(err))
}

func TestConcat(t *testing.T) {
	a, err := New(
		NewNumericColumn("x", []float64{1, 2}),
		NewFactorColumn("g", []string{"a", "b"}),
	)
	require.NoError(t, err)
	b, err := New(
		NewNumericColumn("x", []float64{3}),
		NewFactorColumn("g", []string{"a"}),
	)
	require.NoError(t, err)

	// level sets must match; rebuild b's factor with a's level order
	gb, err := NewFactorColumnWithLevels("g", []string{"a"}, []string{"a", "b"})
	require.NoError(t, err)
	b, err = b.Replace("g", gb)
	require.NoError(t, err)

	joined, err := Concat(a, b)
	require.NoError(t, err)
	assert.Equal(t, 3, joined.NRows())

	xc, _ := joined.Numeric("x")
	assert.Equal(t, []float64{1, 2, 3}, xc.Values)

	gc, _ := joined.Factor("g")
	assert.Equal(t, []string{"a", "b", "a"}, gc.Values)
	assert.Equal(t, []string{"a", "b"}, gc.Levels)
}

func TestConcatSchemaMismatch(t *testing.T) {
	a, _ := New(NewNumericColumn("x", []float64{1}))
	b, _ := New(NewNumericColumn("y", []float64{1}))
	_, err := Concat(a, b)
	assert.True(t, core.IsInputError(err))
}

func TestHashDeterministic(t *testing.T) {
	build := func() *Table {
		tbl, _ := New(
			NewNumericColumn("x", []float64{1.5, 2.5}),
			NewFactorColumn("g", []string{"a", "b"}),
		)
		return tbl
	}

	h1 := build().Hash()
	h2 := build().Hash()
	assert.Equal(t, h1, h2)

	other, _ := New(
		NewNumericColumn("x", []float64{1.5, 2.6}),
		NewFactorColumn("g", []string{"a", "b"}),
	)
	assert.NotEqual(t, h1, other.Hash())
}
