package report

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"clusterperm/domain/cluster"
)

// Markdown renders a run result as a human-readable markdown report:
// run metadata, the null distribution summary, and every cluster with its
// score and p-value, flagging those at or below alpha.
func Markdown(res *cluster.Result, alpha float64) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Permutation cluster test %s\n\n", res.RunID)
	fmt.Fprintf(&b, "- Permutations: %d", res.NumPermutations)
	if res.Exhaustive {
		b.WriteString(" (exhaustive sign enumeration)")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "- Seed: %d\n", res.Seed)
	fmt.Fprintf(&b, "- Locations: %d (shape %v)\n", res.Statistic.Len(), res.Statistic.Shape)
	fmt.Fprintf(&b, "- Alpha: %g\n\n", alpha)

	null := cluster.SummarizeNull(res.H0)
	b.WriteString("## Null distribution\n\n")
	fmt.Fprintf(&b, "| mean | std | min | max | p95 | p99 |\n")
	fmt.Fprintf(&b, "|---|---|---|---|---|---|\n")
	fmt.Fprintf(&b, "| %.4g | %.4g | %.4g | %.4g | %.4g | %.4g |\n\n",
		null.Mean, null.StdDev, null.Min, null.Max, null.Percentile95, null.Percentile99)

	if res.TFCEScores != nil {
		writeTFCESection(&b, res, alpha)
		return b.String()
	}

	b.WriteString("## Clusters\n\n")
	if len(res.Clusters) == 0 {
		b.WriteString("No locations exceeded the cluster-forming threshold.\n")
		return b.String()
	}
	fmt.Fprintf(&b, "| # | size | sign | score | p-value | significant |\n")
	fmt.Fprintf(&b, "|---|---|---|---|---|---|\n")
	for i, c := range res.Clusters {
		mark := ""
		if res.PValues[i] <= alpha {
			mark = "yes"
		}
		fmt.Fprintf(&b, "| %d | %d | %+d | %.4g | %.4g | %s |\n",
			i, c.Size(), c.Sign, c.Score, res.PValues[i], mark)
	}
	return b.String()
}

// writeTFCESection summarizes a threshold-free run: significant location
// count and the strongest locations.
func writeTFCESection(b *strings.Builder, res *cluster.Result, alpha float64) {
	significant := 0
	for _, p := range res.PValues {
		if p <= alpha {
			significant++
		}
	}
	b.WriteString("## TFCE\n\n")
	fmt.Fprintf(b, "%d of %d locations significant at alpha %g.\n",
		significant, len(res.PValues), alpha)
}

// HTML renders the markdown report to HTML for the web surface
func HTML(res *cluster.Result, alpha float64) []byte {
	return toHTML(Markdown(res, alpha))
}

// RecordMarkdown renders a stored run record. Records carry a null summary
// instead of the full H0 array, so the report is built from that.
func RecordMarkdown(rec *cluster.RunRecord, alpha float64) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Permutation cluster test %s\n\n", rec.ID)
	fmt.Fprintf(&b, "- Method: %s (%s)\n", rec.Method, rec.Statistic)
	fmt.Fprintf(&b, "- Tail: %+d, threshold: %g\n", rec.Tail, rec.Threshold)
	fmt.Fprintf(&b, "- Permutations: %d", rec.NumPermutations)
	if rec.Exhaustive {
		b.WriteString(" (exhaustive sign enumeration)")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "- Seed: %d\n", rec.Seed)
	fmt.Fprintf(&b, "- Data fingerprint: %s\n", rec.Fingerprint)
	fmt.Fprintf(&b, "- Alpha: %g\n\n", alpha)

	b.WriteString("## Null distribution\n\n")
	fmt.Fprintf(&b, "| mean | std | min | max | p95 | p99 |\n")
	fmt.Fprintf(&b, "|---|---|---|---|---|---|\n")
	fmt.Fprintf(&b, "| %.4g | %.4g | %.4g | %.4g | %.4g | %.4g |\n\n",
		rec.Null.Mean, rec.Null.StdDev, rec.Null.Min, rec.Null.Max,
		rec.Null.Percentile95, rec.Null.Percentile99)

	b.WriteString("## Clusters\n\n")
	if len(rec.Clusters) == 0 {
		b.WriteString("No locations exceeded the cluster-forming threshold.\n")
		return b.String()
	}
	fmt.Fprintf(&b, "| # | size | sign | score | p-value | significant |\n")
	fmt.Fprintf(&b, "|---|---|---|---|---|---|\n")
	for i, c := range rec.Clusters {
		mark := ""
		if rec.PValues[i] <= alpha {
			mark = "yes"
		}
		fmt.Fprintf(&b, "| %d | %d | %+d | %.4g | %.4g | %s |\n",
			i, c.Size(), c.Sign, c.Score, rec.PValues[i], mark)
	}
	return b.String()
}

// RecordHTML renders a stored run record to HTML
func RecordHTML(rec *cluster.RunRecord, alpha float64) []byte {
	return toHTML(RecordMarkdown(rec, alpha))
}

func toHTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML([]byte(md), p, renderer)
}
