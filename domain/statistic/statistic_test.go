package statistic

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goinfer/domain/core"
	"goinfer/domain/hypothesis"
	"goinfer/domain/resample"
	"goinfer/domain/table"
)

func designOf(t *testing.T, tbl *table.Table, response, group string, null hypothesis.Null) hypothesis.Design {
	t.Helper()
	design, err := hypothesis.NewDesign(tbl, response, group, null, nil)
	require.NoError(t, err)
	return design
}

// grouped hand-builds generator-shaped output: a replicate column plus value
// columns, blocked monotonically
func grouped(t *testing.T, design hypothesis.Design, reps []int, cols ...table.Column) *resample.Replicates {
	t.Helper()
	all := append([]table.Column{table.NewIntColumn(resample.ReplicateColumn, reps)}, cols...)
	tbl, err := table.New(all...)
	require.NoError(t, err)
	n := 0
	for _, rep := range reps {
		if rep > n {
			n = rep
		}
	}
	return &resample.Replicates{Design: design, Table: tbl, Reps: n}
}

func statValues(t *testing.T, out *table.Table) []float64 {
	t.Helper()
	col, err := out.Numeric(StatColumn)
	require.NoError(t, err)
	return col.Values
}

func TestParseKind(t *testing.T) {
	for _, name := range []string{"mean", "prop", "diff in means", "diff in props", "Chisq", "F"} {
		kind, err := ParseKind(name)
		require.NoError(t, err, "%q must parse", name)
		assert.Equal(t, name, kind.String())
	}

	_, err := ParseKind("median")
	assert.True(t, core.IsUnsupportedError(err))
	_, err = ParseKind("")
	assert.True(t, core.IsUnsupportedError(err))
}

func TestMeanPerReplicate(t *testing.T) {
	base, err := table.New(table.NewNumericColumn("x", []float64{1, 2, 3, 4, 5, 6}))
	require.NoError(t, err)
	design := designOf(t, base, "x", "", hypothesis.NullNone)

	reps := grouped(t, design, []int{1, 1, 1, 2, 2, 2},
		table.NewNumericColumn("x", []float64{1, 2, 3, 4, 5, 6}))

	out, err := Calculate(reps, KindMean)
	require.NoError(t, err)

	assert.Equal(t, 2, out.NRows())
	assert.Equal(t, []string{resample.ReplicateColumn, StatColumn}, out.Names())

	repCol, err := out.Int(resample.ReplicateColumn)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, repCol.Values)
	assert.Equal(t, []float64{2, 5}, statValues(t, out))
}

func TestMeanOfGeneratedBootstrap(t *testing.T) {
	// every reduced block mean must equal the arithmetic mean of that block
	base, err := table.New(table.NewNumericColumn("x", []float64{2, 4, 6, 8, 10}))
	require.NoError(t, err)
	design := designOf(t, base, "x", "", hypothesis.NullNone)

	reps, err := resample.Generate(design, 20, resample.MethodBootstrap, rand.New(rand.NewSource(42)))
	require.NoError(t, err)

	out, err := Calculate(reps, KindMean)
	require.NoError(t, err)
	require.Equal(t, 20, out.NRows())

	drawn, err := reps.Table.Numeric("x")
	require.NoError(t, err)
	size := reps.BlockSize()
	for block, got := range statValues(t, out) {
		sum := 0.0
		for _, v := range drawn.Values[block*size : (block+1)*size] {
			sum += v
		}
		assert.InDelta(t, sum/float64(size), got, 1e-12, "block %d mean mismatch", block)
	}
}

func TestMeanUngrouped(t *testing.T) {
	base, err := table.New(table.NewNumericColumn("x", []float64{1, 2, 3, 4, 5}))
	require.NoError(t, err)
	design := designOf(t, base, "x", "", hypothesis.NullNone)

	out, err := Calculate(resample.Ungrouped(design), KindMean)
	require.NoError(t, err)

	assert.Equal(t, 1, out.NRows())
	repCol, err := out.Int(resample.ReplicateColumn)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, repCol.Values)
	assert.Equal(t, []float64{3}, statValues(t, out))
}

func TestMeanRejectsWrongShape(t *testing.T) {
	two, err := table.New(
		table.NewNumericColumn("x", []float64{1, 2}),
		table.NewNumericColumn("y", []float64{3, 4}),
	)
	require.NoError(t, err)
	design := designOf(t, two, "x", "", hypothesis.NullNone)

	_, err = Calculate(resample.Ungrouped(design), KindMean)
	assert.True(t, core.IsInputError(err), "two value columns must fail")

	labeled, err := table.New(table.NewFactorColumn("answer", []string{"yes", "no"}))
	require.NoError(t, err)
	design = designOf(t, labeled, "answer", "", hypothesis.NullNone)

	_, err = Calculate(resample.Ungrouped(design), KindMean)
	assert.True(t, core.IsInputError(err), "factor column cannot be averaged")
}

func TestPropFirstLevel(t *testing.T) {
	values := []string{"yes", "no", "yes", "yes", "no", "no", "yes", "no"}
	base, err := table.New(table.NewFactorColumn("answer", values))
	require.NoError(t, err)
	design := designOf(t, base, "answer", "", hypothesis.NullNone)

	reps := grouped(t, design, []int{1, 1, 1, 1, 2, 2, 2, 2},
		table.NewFactorColumn("answer", values))

	out, err := Calculate(reps, KindProp)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.75, 0.25}, statValues(t, out))
}

func TestPropFollowsLevelOrder(t *testing.T) {
	values := []string{"yes", "no", "yes", "yes"}
	flipped, err := table.NewFactorColumnWithLevels("answer", values, []string{"no", "yes"})
	require.NoError(t, err)
	base, err := table.New(flipped)
	require.NoError(t, err)
	design := designOf(t, base, "answer", "", hypothesis.NullNone)

	out, err := Calculate(resample.Ungrouped(design), KindProp)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.25}, statValues(t, out), "first level is now no")
}

func TestDiffInMeans(t *testing.T) {
	scores := []float64{10, 20, 30, 40}
	arms := []string{"treat", "treat", "control", "control"}
	base, err := table.New(
		table.NewNumericColumn("score", scores),
		table.NewFactorColumn("arm", arms),
	)
	require.NoError(t, err)
	design := designOf(t, base, "score", "arm", hypothesis.NullNone)

	reps := grouped(t, design, []int{1, 1, 1, 1, 2, 2, 2, 2},
		table.NewNumericColumn("score", []float64{10, 20, 30, 40, 40, 30, 20, 10}),
		table.NewFactorColumn("arm", append(append([]string{}, arms...), arms...)),
	)

	out, err := Calculate(reps, KindDiffInMeans)
	require.NoError(t, err)
	// block 1: mean(treat)=15, mean(control)=35; block 2 reversed
	assert.Equal(t, []float64{-20, 20}, statValues(t, out))
}

func TestDiffInPropsAntisymmetric(t *testing.T) {
	answers := []string{"yes", "yes", "no", "yes", "no", "no"}
	groups := []string{"x", "x", "x", "y", "y", "y"}

	build := func(levels []string) *resample.Replicates {
		group, err := table.NewFactorColumnWithLevels("group", groups, levels)
		require.NoError(t, err)
		base, err := table.New(table.NewFactorColumn("answer", answers), group)
		require.NoError(t, err)
		design := designOf(t, base, "answer", "group", hypothesis.NullNone)
		return resample.Ungrouped(design)
	}

	ab, err := Calculate(build([]string{"x", "y"}), KindDiffInProps)
	require.NoError(t, err)
	ba, err := Calculate(build([]string{"y", "x"}), KindDiffInProps)
	require.NoError(t, err)

	want := 2.0/3.0 - 1.0/3.0
	assert.InDelta(t, want, statValues(t, ab)[0], 1e-12)
	assert.InDelta(t, -statValues(t, ab)[0], statValues(t, ba)[0], 1e-12,
		"swapping level order must flip the sign")
}

func TestIndependencePermuteDiffInProps(t *testing.T) {
	answers := []string{"yes", "yes", "no", "no", "yes", "no"}
	groups := []string{"x", "x", "x", "y", "y", "y"}
	base, err := table.New(
		table.NewFactorColumn("answer", answers),
		table.NewFactorColumn("group", groups),
	)
	require.NoError(t, err)
	design := designOf(t, base, "answer", "group", hypothesis.NullIndependence)

	reps, err := resample.Generate(design, 2, resample.MethodPermute, rand.New(rand.NewSource(8)))
	require.NoError(t, err)

	out, err := Calculate(reps, KindDiffInProps)
	require.NoError(t, err)
	require.Equal(t, 2, out.NRows())

	// recompute each block's difference straight off the permuted rows
	permuted, err := reps.Table.Factor("answer")
	require.NoError(t, err)
	size := reps.BlockSize()
	for block, got := range statValues(t, out) {
		var yesX, nX, yesY, nY int
		for i := block * size; i < (block+1)*size; i++ {
			if groups[i-block*size] == "x" {
				nX++
				if permuted.Values[i] == "yes" {
					yesX++
				}
			} else {
				nY++
				if permuted.Values[i] == "yes" {
					yesY++
				}
			}
		}
		want := float64(yesX)/float64(nX) - float64(yesY)/float64(nY)
		assert.InDelta(t, want, got, 1e-12, "block %d difference mismatch", block)
	}
}

func TestChisqAndFUnsupported(t *testing.T) {
	base, err := table.New(table.NewNumericColumn("x", []float64{1, 2, 3}))
	require.NoError(t, err)
	design := designOf(t, base, "x", "", hypothesis.NullNone)
	reps := resample.Ungrouped(design)

	for _, kind := range []Kind{KindChisq, KindF, Kind("median")} {
		_, err := Calculate(reps, kind)
		assert.True(t, core.IsUnsupportedError(err), "%q must be refused, not ignored", kind)
		assert.False(t, core.IsInputError(err))
	}
}

func TestDiffRequiresTwoGroupLevels(t *testing.T) {
	base, err := table.New(
		table.NewNumericColumn("score", []float64{1, 2, 3}),
		table.NewFactorColumn("arm", []string{"a", "b", "c"}),
	)
	require.NoError(t, err)
	design := designOf(t, base, "score", "arm", hypothesis.NullNone)

	_, err = Calculate(resample.Ungrouped(design), KindDiffInMeans)
	assert.True(t, core.IsInputError(err))
	assert.ErrorIs(t, err, core.ErrGroupCardinality)
}

func TestDiffRequiresDeclaredGroup(t *testing.T) {
	base, err := table.New(table.NewNumericColumn("score", []float64{1, 2}))
	require.NoError(t, err)
	design := designOf(t, base, "score", "", hypothesis.NullNone)

	_, err = Calculate(resample.Ungrouped(design), KindDiffInMeans)
	assert.True(t, core.IsInputError(err))
}

func TestDiffInMeansEmptyGroupIsNaN(t *testing.T) {
	// bootstrap blocks can miss a group level entirely
	base, err := table.New(
		table.NewNumericColumn("score", []float64{1, 2}),
		table.NewFactorColumn("arm", []string{"t", "c"}),
	)
	require.NoError(t, err)
	design := designOf(t, base, "score", "arm", hypothesis.NullNone)

	reps := grouped(t, design, []int{1, 1, 2, 2},
		table.NewNumericColumn("score", []float64{1, 2, 1, 1}),
		table.NewFactorColumn("arm", []string{"t", "c", "t", "t"}),
	)

	out, err := Calculate(reps, KindDiffInMeans)
	require.NoError(t, err)

	values := statValues(t, out)
	assert.Equal(t, -1.0, values[0])
	assert.True(t, math.IsNaN(values[1]), "a block without control rows has no difference")
}

func TestCalculateNilInput(t *testing.T) {
	_, err := Calculate(nil, KindMean)
	assert.True(t, core.IsInputError(err))
}
