package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"

	"gobest/app"
)

// renderReportMarkdown builds a markdown summary report for an analysis.
func renderReportMarkdown(res *app.Results, credibleMass float64) (string, error) {
	summary, err := res.Summary(credibleMass)
	if err != nil {
		return "", err
	}

	m := res.Model()
	var b strings.Builder

	fmt.Fprintf(&b, "# Bayesian estimation report\n\n")
	fmt.Fprintf(&b, "- Analysis: `%s`\n", res.ID())
	fmt.Fprintf(&b, "- Model: %s (%s)\n", m.Kind(), m.Version())
	if res.DiagnosticsOK() {
		fmt.Fprintf(&b, "- Sampling diagnostics: passed\n")
	} else {
		fmt.Fprintf(&b, "- Sampling diagnostics: **failed**, treat these estimates with suspicion\n")
	}
	fmt.Fprintf(&b, "\n## Model priors\n\n```\n%s```\n", m.String())

	fmt.Fprintf(&b, "\n## Posterior summary (%.0f%% HDI)\n\n", credibleMass*100)
	fmt.Fprintf(&b, "| Variable | Mean | SD | Median | HDI low | HDI high | Mode |\n")
	fmt.Fprintf(&b, "|---|---|---|---|---|---|---|\n")

	names := make([]string, 0, len(summary))
	for name := range summary {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		row := summary[name]
		fmt.Fprintf(&b, "| %s | %.4g | %.4g | %.4g | %.4g | %.4g | %.4g |\n",
			name, row.Mean, row.SD, row.Median, row.HDILow, row.HDIHigh, row.Mode)
	}
	return b.String(), nil
}

// renderReportHTML renders the markdown report to HTML.
func renderReportHTML(res *app.Results, credibleMass float64) ([]byte, error) {
	md, err := renderReportMarkdown(res, credibleMass)
	if err != nil {
		return nil, err
	}
	return markdown.ToHTML([]byte(md), nil, nil), nil
}
