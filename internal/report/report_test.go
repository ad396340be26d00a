package report

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goinfer/domain/core"
	"goinfer/domain/hypothesis"
	"goinfer/domain/resample"
	"goinfer/domain/run"
	"goinfer/domain/statistic"
	"goinfer/domain/table"
)

func statTable(t *testing.T, values []float64) *table.Table {
	t.Helper()
	reps := make([]int, len(values))
	for i := range reps {
		reps[i] = i + 1
	}
	tbl, err := table.New(
		table.NewIntColumn(resample.ReplicateColumn, reps),
		table.NewNumericColumn(statistic.StatColumn, values),
	)
	require.NoError(t, err)
	return tbl
}

func TestSummarize(t *testing.T) {
	summary, err := Summarize(statTable(t, []float64{1, 2, 3, 4, 5}))
	require.NoError(t, err)

	assert.Equal(t, 5, summary.N)
	assert.Equal(t, core.Float(3), summary.Mean)
	assert.Equal(t, core.Float(3), summary.Median)
	assert.InDelta(t, math.Sqrt(2), float64(summary.StdDev), 1e-12)
	assert.Equal(t, core.Float(1), summary.Min)
	assert.Equal(t, core.Float(5), summary.Max)
}

func TestSummarizeRejectsMissingStatColumn(t *testing.T) {
	tbl, err := table.New(table.NewNumericColumn("x", []float64{1}))
	require.NoError(t, err)

	_, err = Summarize(tbl)
	assert.Error(t, err)
}

func TestRenderMarkdownAndHTML(t *testing.T) {
	tbl, err := table.New(
		table.NewNumericColumn("score", []float64{1, 2, 3, 4}),
		table.NewFactorColumn("arm", []string{"t", "t", "c", "c"}),
	)
	require.NoError(t, err)
	design, err := hypothesis.NewDesign(tbl, "score", "arm", hypothesis.NullEqualMeans, nil)
	require.NoError(t, err)

	manifest := run.NewManifest("run-42", design, resample.MethodPermute,
		statistic.KindDiffInMeans, 500, 7, "1.0.0")
	summary, err := Summarize(statTable(t, []float64{-0.5, 0, 0.5}))
	require.NoError(t, err)

	md := RenderMarkdown(manifest, summary)
	assert.True(t, strings.HasPrefix(md, "# Inference run run-42"))
	assert.Contains(t, md, "| method | permute |")
	assert.Contains(t, md, "| statistic | diff in means |")
	assert.Contains(t, md, "| replicates | 500 |")
	assert.Contains(t, md, "| seed | 7 |")
	assert.Contains(t, md, "| null hypothesis | equal means |")
	assert.Contains(t, md, string(manifest.Fingerprint.Fingerprint))

	rendered := string(RenderHTML(md))
	assert.Contains(t, rendered, "<h1")
	assert.Contains(t, rendered, "<table>")
	assert.Contains(t, rendered, "permute")
}
