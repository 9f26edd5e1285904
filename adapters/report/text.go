// Package report renders validator reports for operators.
package report

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"fairdraw/domain/stats"
)

// Format names an output format
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case "":
		return FormatText, nil
	case FormatText, FormatMarkdown, FormatHTML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown report format %q", s)
	}
}

// Write renders r in format f
func Write(w io.Writer, r stats.Report, f Format) error {
	switch f {
	case FormatText, "":
		return WriteText(w, r)
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(r))
		return err
	case FormatHTML:
		_, err := w.Write(HTML(r))
		return err
	default:
		return fmt.Errorf("unknown report format %q", f)
	}
}

// WriteText writes the plain report: the frequency list followed by one
// "label: value" line per metric.
func WriteText(w io.Writer, r stats.Report) error {
	bw := bufio.NewWriter(w)

	bw.WriteString("Freqs:\n")
	for _, f := range r.Frequencies {
		bw.WriteString(strconv.FormatUint(f, 10))
		bw.WriteByte(' ')
	}
	bw.WriteString("\n\n")

	for _, line := range metricLines(r) {
		fmt.Fprintf(bw, "%s: %s\n", line.label, line.value)
	}
	return bw.Flush()
}

type metricLine struct {
	label string
	value string
}

func metricLines(r stats.Report) []metricLine {
	return []metricLine{
		{"min max freq diff(abs)", strconv.FormatUint(r.SpreadAbs, 10)},
		{"min max freq diff(rel)", formatFloat(r.SpreadRel)},
		{"target freq", formatFloat(r.TargetFreq)},
		{"max deviation from target(abs)", formatFloat(r.MaxDeviationAbs)},
		{"max deviation from target(rel)", formatFloat(r.MaxDeviationRel)},
		{"intervals", fmt.Sprintf("%d x %d", r.IntervalCount, r.IntervalSize)},
		{"draws", strconv.FormatUint(r.Draws, 10)},
		{"skipped tokens", strconv.FormatUint(r.Skipped, 10)},
		{"out of range", strconv.FormatUint(r.OutOfRange, 10)},
		{"freq mean", formatFloat(r.MeanFreq)},
		{"freq stddev", formatFloat(r.StdDevFreq)},
		{"chi-square", fmt.Sprintf("%s (df=%s)", formatFloat(r.ChiSquare), formatFloat(r.DegreesOfFreedom))},
		{"p-value", formatFloat(r.PValue)},
	}
}

// formatFloat prints six significant digits
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', 6, 64)
}
