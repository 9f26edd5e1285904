package report

import (
	"fmt"
	"strings"

	"fairdraw/domain/stats"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// maxTableRows caps the frequency table; larger histograms are summarised
const maxTableRows = 200

// Markdown renders the report as a markdown document
func Markdown(r stats.Report) string {
	var b strings.Builder

	b.WriteString("# Distribution report\n\n")
	fmt.Fprintf(&b, "Values in [0, %d), %d intervals of width %d.\n\n", r.Finish, r.IntervalCount, r.IntervalSize)

	b.WriteString("| Metric | Value |\n|---|---|\n")
	for _, line := range metricLines(r) {
		fmt.Fprintf(&b, "| %s | %s |\n", line.label, line.value)
	}

	b.WriteString("\n## Frequencies\n\n")
	b.WriteString("| Interval | From | Count |\n|---|---|---|\n")
	for i, f := range r.Frequencies {
		if i == maxTableRows {
			fmt.Fprintf(&b, "\n%d more intervals not shown.\n", len(r.Frequencies)-maxTableRows)
			break
		}
		fmt.Fprintf(&b, "| %d | %d | %d |\n", i, uint64(i)*r.IntervalSize, f)
	}
	return b.String()
}

// HTML renders the markdown report as a standalone HTML page
func HTML(r stats.Report) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(Markdown(r)))

	renderer := html.NewRenderer(html.RendererOptions{
		Title: "Distribution report",
		Flags: html.CommonFlags | html.CompletePage,
	})
	return markdown.Render(doc, renderer)
}
