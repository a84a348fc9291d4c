package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/flood-risk-etl/internal/domain"
)

// Output file names inside the run directory.
const (
	DistrictsFile   = "complete_rainfall_data.json"
	SummaryFile     = "summary_report.json"
	SummaryXLSXFile = "summary_report.xlsx"
)

// WriteJSON writes v to path as indented JSON.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// WriteRun writes the district reports and summary into dir and returns the
// paths written. The XLSX workbook is only produced when withXLSX is set.
func WriteRun(dir string, reports []domain.DistrictReport, summary Summary, withXLSX bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	paths := []string{filepath.Join(dir, DistrictsFile), filepath.Join(dir, SummaryFile)}
	if err := WriteJSON(paths[0], reports); err != nil {
		return nil, err
	}
	if err := WriteJSON(paths[1], summary); err != nil {
		return nil, err
	}
	if withXLSX {
		path := filepath.Join(dir, SummaryXLSXFile)
		if err := WriteXLSX(path, reports, summary); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

var districtColumns = []string{
	"ID", "State", "District", "Annual (mm)", "Monsoon (mm)", "Monsoon %",
	"Peak Month", "Basis", "Soil", "Runoff (mm)", "Depth (m)", "Volume (m3)", "Risk",
}

// WriteXLSX writes a workbook with a Summary sheet and a Districts sheet.
func WriteXLSX(path string, reports []domain.DistrictReport, summary Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), "Summary"); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeSummarySheet(f, summary); err != nil {
		return err
	}
	if err := writeDistrictSheet(f, reports); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save xlsx: %w", err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, s Summary) error {
	rows := [][]any{
		{"Run ID", s.RunID},
		{"Generated At", s.GeneratedAt.Format("2006-01-02T15:04:05Z07:00")},
		{"Total Districts", s.TotalDistricts},
		{"Total States", s.TotalStates},
		{},
		{"Statistic", "Annual (mm)", "Monsoon (mm)"},
		{"Mean", s.RainfallStatistics.Annual.Mean, s.RainfallStatistics.Monsoon.Mean},
		{"Median", s.RainfallStatistics.Annual.Median, s.RainfallStatistics.Monsoon.Median},
		{"Min", s.RainfallStatistics.Annual.Min, s.RainfallStatistics.Monsoon.Min},
		{"Max", s.RainfallStatistics.Annual.Max, s.RainfallStatistics.Monsoon.Max},
		{"Std Dev", s.RainfallStatistics.Annual.Std, s.RainfallStatistics.Monsoon.Std},
		{},
		{"Risk", "Districts"},
	}
	for _, label := range riskOrder() {
		rows = append(rows, []any{label, s.RiskDistribution[label]})
	}
	return writeRows(f, "Summary", rows)
}

func writeDistrictSheet(f *excelize.File, reports []domain.DistrictReport) error {
	const sheet = "Districts"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	rows := make([][]any, 0, len(reports)+1)
	header := make([]any, len(districtColumns))
	for i, c := range districtColumns {
		header[i] = c
	}
	rows = append(rows, header)
	for _, r := range reports {
		rows = append(rows, []any{
			r.ID, r.State, r.District, r.Annual, r.Monsoon, r.Metrics.MonsoonPercentage,
			r.Metrics.PeakMonth, string(r.RainfallBasis), r.Flood.SoilClass.String(),
			r.Flood.RunoffMM, r.Flood.DepthM, r.Flood.VolumeM3, r.Flood.RiskLabel,
		})
	}
	return writeRows(f, sheet, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
