// Package report renders a completed run as a markdown document and as
// HTML: the manifest parameters plus a distribution summary of the
// replicate statistics.
package report

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/montanaflynn/stats"

	"goinfer/domain/core"
	"goinfer/domain/run"
	"goinfer/domain/statistic"
	"goinfer/domain/table"
)

// Summary holds distribution facts about the replicate statistics. Fields
// are nullable floats so a summary over undefined statistics still stores.
type Summary struct {
	N      int        `json:"n"`
	Mean   core.Float `json:"mean"`
	Median core.Float `json:"median"`
	StdDev core.Float `json:"std_dev"`
	Min    core.Float `json:"min"`
	Max    core.Float `json:"max"`
}

// Summarize reduces a statistic table to its distribution summary
func Summarize(statTable *table.Table) (Summary, error) {
	col, err := statTable.Numeric(statistic.StatColumn)
	if err != nil {
		return Summary{}, err
	}

	data := col.Values
	mean, _ := stats.Mean(data)
	median, _ := stats.Median(data)
	stdDev, _ := stats.StandardDeviation(data)
	min, _ := stats.Min(data)
	max, _ := stats.Max(data)

	return Summary{
		N:      len(data),
		Mean:   core.Float(mean),
		Median: core.Float(median),
		StdDev: core.Float(stdDev),
		Min:    core.Float(min),
		Max:    core.Float(max),
	}, nil
}

// RenderMarkdown produces the run report as markdown
func RenderMarkdown(manifest *run.Manifest, summary Summary) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Inference run %s\n\n", manifest.RunID)
	fmt.Fprintf(&sb, "Generated %s\n\n", manifest.CreatedAt.String())

	sb.WriteString("## Parameters\n\n")
	sb.WriteString("| parameter | value |\n")
	sb.WriteString("|---|---|\n")
	fmt.Fprintf(&sb, "| response | %s |\n", manifest.Response)
	if manifest.Group != "" {
		fmt.Fprintf(&sb, "| group | %s |\n", manifest.Group)
	}
	if manifest.Null != "" {
		fmt.Fprintf(&sb, "| null hypothesis | %s |\n", manifest.Null)
	}
	fmt.Fprintf(&sb, "| method | %s |\n", manifest.Method)
	fmt.Fprintf(&sb, "| statistic | %s |\n", manifest.Stat)
	fmt.Fprintf(&sb, "| replicates | %d |\n", manifest.Reps)
	fmt.Fprintf(&sb, "| seed | %d |\n", manifest.Seed)
	fmt.Fprintf(&sb, "| dataset hash | `%s` |\n", manifest.DatasetHash)
	fmt.Fprintf(&sb, "| fingerprint | `%s` |\n\n", manifest.Fingerprint.Fingerprint)

	sb.WriteString("## Statistic distribution\n\n")
	sb.WriteString("| n | mean | median | std dev | min | max |\n")
	sb.WriteString("|---|---|---|---|---|---|\n")
	fmt.Fprintf(&sb, "| %d | %.6g | %.6g | %.6g | %.6g | %.6g |\n",
		summary.N, summary.Mean, summary.Median, summary.StdDev, summary.Min, summary.Max)

	return sb.String()
}

// RenderHTML converts a markdown report to an HTML document body
func RenderHTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(md))

	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.Render(doc, renderer)
}
