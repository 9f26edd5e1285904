// Package validator checks offline that a batch of bounded draws is flat.
//
// Values are assumed to come from [0, finish). They are grouped into
// intervals: one per value when finish <= 1000, otherwise finish/10 intervals.
// The interval width is finish/intervals rounded down and the remainder is
// absorbed by the last interval. The validator only reports; it never
// corrects anything and never runs on the path serving a live session.
package validator

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"unicode"

	"fairdraw/domain/core"
	"fairdraw/domain/stats"
	"fairdraw/internal"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// coarseAbove is the finish above which values share intervals
const coarseAbove = 1000

// MaxIntervals bounds the histogram size. Larger finishes need an explicit
// interval count.
const MaxIntervals = 1 << 22

// maxTokenSize is the longest token read in one piece. Longer tokens cannot
// be numbers and are skipped.
const maxTokenSize = 64 * 1024

// IntervalCount returns the default number of intervals for finish.
func IntervalCount(finish uint64) uint64 {
	if finish > coarseAbove {
		return finish / 10
	}
	return finish
}

// Options tune a validator run
type Options struct {
	// Intervals overrides IntervalCount when non-zero. It must not exceed finish.
	Intervals uint64
	Logger    *internal.Logger
}

// Validator accumulates one forward pass over a stream of values. Memory use
// is proportional to the number of intervals, not to the stream length.
type Validator struct {
	hist       *stats.Histogram
	skipped    uint64
	outOfRange uint64
	logger     *internal.Logger
}

// New creates a validator for values in [0, finish). The default interval
// count above MaxIntervals is rejected; pass Options.Intervals instead.
func New(finish uint64, opts Options) (*Validator, error) {
	if finish == 0 {
		return nil, core.NewMalformedInputError("finish", "must be greater than zero")
	}
	intervals := opts.Intervals
	if intervals == 0 {
		intervals = IntervalCount(finish)
	}
	if intervals > finish {
		return nil, core.NewMalformedInputError("intervals", fmt.Sprintf("%d exceeds finish %d", intervals, finish))
	}
	if intervals > MaxIntervals {
		return nil, core.NewMalformedInputError("intervals",
			fmt.Sprintf("%d intervals for finish %d exceed the limit of %d, choose fewer intervals", intervals, finish, MaxIntervals))
	}
	logger := opts.Logger
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Validator{
		hist:   stats.NewHistogram(finish, intervals),
		logger: logger,
	}, nil
}

// Observe records one value. Values outside [0, finish) are counted apart and
// do not enter the histogram.
func (v *Validator) Observe(value uint64) {
	if !v.hist.Add(value) {
		v.outOfRange++
	}
}

// Consume reads whitespace separated unsigned integers until end of input.
// Tokens that are not unsigned decimal integers are skipped and counted;
// reading continues with the next token.
func (v *Validator) Consume(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxTokenSize)
	scanner.Split(scanWordsSkippingLong(maxTokenSize))
	for scanner.Scan() {
		token := scanner.Bytes()
		if len(token) == 0 {
			v.skipped++
			v.logger.Debug("skipping token longer than %d bytes", maxTokenSize)
			continue
		}
		value, err := strconv.ParseUint(string(token), 10, 64)
		if err != nil {
			v.skipped++
			v.logger.Debug("skipping token %q: %v", token, err)
			continue
		}
		v.Observe(value)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read values: %w", err)
	}
	return nil
}

// scanWordsSkippingLong splits like bufio.ScanWords, except that a word
// reaching limit bytes is discarded up to the next space and reported as one
// empty token instead of failing the scan.
func scanWordsSkippingLong(limit int) bufio.SplitFunc {
	discarding := false
	return func(data []byte, atEOF bool) (int, []byte, error) {
		if discarding {
			i := bytes.IndexFunc(data, unicode.IsSpace)
			if i < 0 {
				return len(data), nil, nil
			}
			discarding = false
			if i > 0 {
				return i, nil, nil
			}
		}
		advance, token, err := bufio.ScanWords(data, atEOF)
		if advance == 0 && token == nil && err == nil && len(data) >= limit {
			discarding = true
			return len(data), []byte{}, nil
		}
		return advance, token, err
	}
}

// Report computes the summary of everything observed so far.
func (v *Validator) Report() stats.Report {
	h := v.hist
	report := stats.Report{
		Finish:        h.Finish,
		IntervalCount: h.IntervalCount(),
		IntervalSize:  h.IntervalSize,
		Frequencies:   append([]uint64(nil), h.Counts...),
		Draws:         h.Total(),
		Skipped:       v.skipped,
		OutOfRange:    v.outOfRange,
		MinFreq:       math.MaxUint64,
		PValue:        1,
	}

	freqs := make([]float64, len(h.Counts))
	for i, c := range h.Counts {
		report.MaxFreq = max(report.MaxFreq, c)
		report.MinFreq = min(report.MinFreq, c)
		freqs[i] = float64(c)
	}

	report.SpreadAbs = report.MaxFreq - report.MinFreq
	report.SpreadRel = float64(report.SpreadAbs) / float64(h.Finish)
	report.TargetFreq = float64(report.Draws) / float64(report.IntervalCount)

	for _, f := range freqs {
		report.MaxDeviationAbs = math.Max(report.MaxDeviationAbs, math.Abs(f-report.TargetFreq))
	}
	if report.TargetFreq > 0 {
		report.MaxDeviationRel = report.MaxDeviationAbs / report.TargetFreq
		report.SpreadToTarget = float64(report.SpreadAbs) / report.TargetFreq
	}

	report.MeanFreq, _ = mstats.Mean(freqs)
	report.StdDevFreq, _ = mstats.StandardDeviation(freqs)

	report.ChiSquare, report.DegreesOfFreedom = chiSquare(h, report.Draws)
	if report.DegreesOfFreedom > 0 && report.Draws > 0 {
		report.PValue = distuv.ChiSquared{K: report.DegreesOfFreedom}.Survival(report.ChiSquare)
	}

	return report
}

// chiSquare computes the goodness-of-fit statistic against a uniform
// distribution. Expected counts follow interval widths, so the wider last
// interval is not mistaken for bias.
func chiSquare(h *stats.Histogram, draws uint64) (float64, float64) {
	k := h.IntervalCount()
	if draws == 0 || k < 2 {
		return 0, 0
	}
	chi := 0.0
	for i, c := range h.Counts {
		width := h.IntervalSize
		if uint64(i) == k-1 {
			width = h.Finish - h.IntervalSize*(k-1)
		}
		expected := float64(draws) * float64(width) / float64(h.Finish)
		d := float64(c) - expected
		chi += d * d / expected
	}
	return chi, float64(k - 1)
}

// Run consumes r and returns the report for values in [0, finish).
func Run(finish uint64, r io.Reader, opts Options) (stats.Report, error) {
	v, err := New(finish, opts)
	if err != nil {
		return stats.Report{}, err
	}
	if err := v.Consume(r); err != nil {
		return stats.Report{}, err
	}
	return v.Report(), nil
}
