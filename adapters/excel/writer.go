// Package excel exports analysis results as xlsx workbooks for
// downstream review outside the chat surface.
package excel

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/UShah1996/AI-HOPE/domain/result"
)

// WriteResult renders an analysis result into a workbook held in memory
func WriteResult(res *result.AnalysisResult) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSummarySheet(f, res); err != nil {
		return nil, err
	}

	var err error
	switch {
	case res.Survival != nil:
		err = writeSurvivalSheets(f, res.Survival)
	case res.CaseControl != nil:
		err = writeCaseControlSheet(f, res.CaseControl)
	case res.Scan != nil:
		err = writeScanSheet(f, res.Scan)
	}
	if err != nil {
		return nil, err
	}

	return f.WriteToBuffer()
}

// SaveResult writes the workbook to disk
func SaveResult(path string, res *result.AnalysisResult) error {
	buf, err := WriteResult(res)
	if err != nil {
		return err
	}
	f, err := excelize.OpenReader(buf)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(path)
}

func writeSummarySheet(f *excelize.File, res *result.AnalysisResult) error {
	const sheet = "Summary"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	rows := [][]interface{}{
		{"analysis_id", res.ID.String()},
		{"dataset", res.Dataset},
		{"mode", res.Mode.String()},
		{"computed_at", res.ComputedAt.Time().Format("2006-01-02 15:04:05")},
	}
	for i, vars := range res.TestedVariables {
		rows = append(rows, []interface{}{fmt.Sprintf("tested_variable_%d", i+1), vars})
	}
	return writeRows(f, sheet, rows)
}

func writeSurvivalSheets(f *excelize.File, sr *result.SurvivalResult) error {
	stats := [][]interface{}{
		{"group_by", sr.GroupBy},
		{"log_rank_statistic", sr.LogRank.Statistic},
		{"log_rank_df", sr.LogRank.DF},
		{"log_rank_p", sr.LogRank.PValue},
	}
	if sr.HazardRatio != nil {
		hr := sr.HazardRatio
		stats = append(stats,
			[]interface{}{"hazard_ratio", hr.Value},
			[]interface{}{"hr_ci_lower", hr.CILower},
			[]interface{}{"hr_ci_upper", hr.CIUpper},
			[]interface{}{"hr_comparison", hr.Numerator + " vs " + hr.Denominator},
		)
	}
	if _, err := f.NewSheet("Statistics"); err != nil {
		return err
	}
	if err := writeRows(f, "Statistics", stats); err != nil {
		return err
	}

	if _, err := f.NewSheet("Curves"); err != nil {
		return err
	}
	rows := [][]interface{}{{"group", "time", "survival", "at_risk", "events"}}
	for _, curve := range sr.Curves {
		for _, pt := range curve.Points {
			rows = append(rows, []interface{}{curve.Group, pt.Time, pt.Survival, pt.AtRisk, pt.Events})
		}
	}
	return writeRows(f, "Curves", rows)
}

func writeCaseControlSheet(f *excelize.File, cc *result.CaseControlResult) error {
	const sheet = "CaseControl"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	rows := [][]interface{}{
		{"", cc.Target + "+", cc.Target + "-"},
		{"case", cc.Table.CaseExposed, cc.Table.CaseUnexposed},
		{"control", cc.Table.ControlExposed, cc.Table.ControlUnexposed},
		{},
		{"odds_ratio", cc.OddsRatio},
		{"test", cc.Test},
		{"statistic", cc.Statistic},
		{"p_value", cc.PValue},
		{"continuity_corrected", cc.Table.Corrected},
	}
	return writeRows(f, sheet, rows)
}

func writeScanSheet(f *excelize.File, scan *result.AssociationScanResult) error {
	const sheet = "Associations"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	rows := [][]interface{}{{"variable", "test", "statistic", "p_value", "n"}}
	for _, entry := range scan.Entries {
		rows = append(rows, []interface{}{entry.Variable, entry.Test, entry.Statistic, entry.PValue, entry.N})
	}
	if len(scan.Skipped) > 0 {
		rows = append(rows, []interface{}{}, []interface{}{"skipped_variable", "reason"})
		for _, skip := range scan.Skipped {
			rows = append(rows, []interface{}{skip.Variable, skip.Reason})
		}
	}
	return writeRows(f, sheet, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
