package ui

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	mdparser "github.com/gomarkdown/markdown/parser"

	"github.com/UShah1996/AI-HOPE/domain/result"
)

// RenderMarkdown produces a human-readable summary of an analysis result.
// The front-end renders it directly; no further computation is needed.
func RenderMarkdown(res *result.AnalysisResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s analysis of %s\n\n", res.Mode, res.Dataset)

	switch {
	case res.Survival != nil:
		renderSurvival(&b, res.Survival)
	case res.CaseControl != nil:
		renderCaseControl(&b, res.CaseControl)
	case res.Scan != nil:
		renderScan(&b, res.Scan)
	}

	fmt.Fprintf(&b, "\nVariables tested: %s\n", strings.Join(res.TestedVariables, ", "))
	return b.String()
}

// RenderHTML converts the markdown summary to an HTML fragment
func RenderHTML(res *result.AnalysisResult) string {
	p := mdparser.NewWithExtensions(mdparser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return string(markdown.ToHTML([]byte(RenderMarkdown(res)), p, renderer))
}

func renderSurvival(b *strings.Builder, sr *result.SurvivalResult) {
	fmt.Fprintf(b, "Kaplan-Meier estimate grouped by **%s** (time: %s, event: %s).\n\n", sr.GroupBy, sr.TimeCol, sr.EventCol)
	for _, curve := range sr.Curves {
		median := "not reached"
		if curve.MedianSurvival != nil {
			median = fmt.Sprintf("%.1f", *curve.MedianSurvival)
		}
		fmt.Fprintf(b, "- **%s**: n=%d, events=%d, median survival %s\n", curve.Group, curve.N, curve.Events, median)
	}
	fmt.Fprintf(b, "\nLog-rank test: statistic %.3f (df=%d), p=%.4f\n", sr.LogRank.Statistic, sr.LogRank.DF, sr.LogRank.PValue)
	if sr.HazardRatio != nil {
		hr := sr.HazardRatio
		fmt.Fprintf(b, "\nHazard ratio (%s vs %s): %.2f (%.0f%% CI %.2f-%.2f)\n",
			hr.Numerator, hr.Denominator, hr.Value, hr.Confidence*100, hr.CILower, hr.CIUpper)
	}
}

func renderCaseControl(b *strings.Builder, cc *result.CaseControlResult) {
	fmt.Fprintf(b, "Case cohort: `%s` (n=%d). Control cohort: `%s` (n=%d).\n\n", cc.Case, cc.CaseN, cc.Control, cc.ControlN)
	fmt.Fprintf(b, "| | %s+ | %s- |\n|---|---|---|\n", cc.Target, cc.Target)
	fmt.Fprintf(b, "| case | %.0f | %.0f |\n", cc.Table.CaseExposed, cc.Table.CaseUnexposed)
	fmt.Fprintf(b, "| control | %.0f | %.0f |\n", cc.Table.ControlExposed, cc.Table.ControlUnexposed)
	corrected := ""
	if cc.Table.Corrected {
		corrected = " (continuity corrected)"
	}
	fmt.Fprintf(b, "\nOdds ratio%s: %.3f, %s p=%.4f\n", corrected, cc.OddsRatio, cc.Test, cc.PValue)
}

func renderScan(b *strings.Builder, scan *result.AssociationScanResult) {
	fmt.Fprintf(b, "Associations with **%s**, all tested variables ranked by p-value:\n\n", scan.Target)
	fmt.Fprintf(b, "| variable | test | statistic | p-value | n |\n|---|---|---|---|---|\n")
	for _, entry := range scan.Entries {
		fmt.Fprintf(b, "| %s | %s | %.3f | %.4f | %d |\n", entry.Variable, entry.Test, entry.Statistic, entry.PValue, entry.N)
	}
	if len(scan.Entries) == 0 {
		fmt.Fprintf(b, "\nNo variables could be tested.\n")
	}
	for _, skip := range scan.Skipped {
		fmt.Fprintf(b, "\n*skipped %s: %s*\n", skip.Variable, skip.Reason)
	}
}
