package excel

import (
	"fmt"

	"fairdraw/domain/stats"

	"github.com/xuri/excelize/v2"
)

const (
	SummarySheet     = "Summary"
	FrequenciesSheet = "Frequencies"
)

// WriteReport saves a validator report as an xlsx workbook with a summary
// sheet and one row per interval.
func WriteReport(path string, r stats.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return err
	}
	if err := writeSummary(f, r); err != nil {
		return fmt.Errorf("write summary sheet: %w", err)
	}

	if _, err := f.NewSheet(FrequenciesSheet); err != nil {
		return err
	}
	if err := writeFrequencies(f, r); err != nil {
		return fmt.Errorf("write frequencies sheet: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func writeSummary(f *excelize.File, r stats.Report) error {
	rows := [][]interface{}{
		{"Metric", "Value"},
		{"finish", r.Finish},
		{"interval_count", r.IntervalCount},
		{"interval_size", r.IntervalSize},
		{"draws", r.Draws},
		{"skipped", r.Skipped},
		{"out_of_range", r.OutOfRange},
		{"max_freq", r.MaxFreq},
		{"min_freq", r.MinFreq},
		{"spread_abs", r.SpreadAbs},
		{"spread_rel", r.SpreadRel},
		{"target_freq", r.TargetFreq},
		{"max_deviation_abs", r.MaxDeviationAbs},
		{"max_deviation_rel", r.MaxDeviationRel},
		{"spread_to_target", r.SpreadToTarget},
		{"mean_freq", r.MeanFreq},
		{"stddev_freq", r.StdDevFreq},
		{"chi_square", r.ChiSquare},
		{"degrees_of_freedom", r.DegreesOfFreedom},
		{"p_value", r.PValue},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func writeFrequencies(f *excelize.File, r stats.Report) error {
	header := []interface{}{"interval", "from", "count"}
	if err := f.SetSheetRow(FrequenciesSheet, "A1", &header); err != nil {
		return err
	}
	for i, count := range r.Frequencies {
		row := []interface{}{i, uint64(i) * r.IntervalSize, count}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(FrequenciesSheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
