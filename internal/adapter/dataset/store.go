// Package dataset reads the district rainfall normals table from CSV or XLSX
// files and turns its rows into domain records.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/flood-risk-etl/internal/domain"
)

// ErrUnsupportedFormat is returned for files that are neither CSV nor XLSX.
var ErrUnsupportedFormat = errors.New("unsupported dataset format")

// Store loads rainfall rows from a file on disk.
type Store struct {
	path   string
	sheet  string
	logger *slog.Logger
}

// NewStore creates a store for path. XLSX files are read from sheet, or the
// first sheet in the workbook when sheet is empty.
func NewStore(path, sheet string, logger *slog.Logger) *Store {
	return &Store{path: path, sheet: sheet, logger: logger}
}

// Rows reads the raw rows after validating the header.
func (s *Store) Rows() ([]domain.RawRainfallRow, error) {
	switch strings.ToLower(filepath.Ext(s.path)) {
	case ".csv":
		f, err := os.Open(s.path)
		if err != nil {
			return nil, fmt.Errorf("open dataset: %w", err)
		}
		defer f.Close()
		return ReadCSV(f)
	case ".xlsx":
		f, err := os.Open(s.path)
		if err != nil {
			return nil, fmt.Errorf("open dataset: %w", err)
		}
		defer f.Close()
		return ReadXLSX(f, s.sheet)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, s.path)
	}
}

// Records reads and parses every row. Rows that fail to parse are logged and
// skipped; a missing column fails the whole load.
func (s *Store) Records() ([]domain.DistrictRecord, error) {
	rows, err := s.Rows()
	if err != nil {
		return nil, err
	}

	records := make([]domain.DistrictRecord, 0, len(rows))
	for i, row := range rows {
		rec, err := domain.ParseRow(row)
		if err != nil {
			// +2: one for the header, one for 1-based line numbers.
			s.logger.Warn("skipping dataset row", "line", i+2, "error", err)
			continue
		}
		records = append(records, rec)
	}
	s.logger.Info("dataset loaded", "path", s.path, "rows", len(rows), "records", len(records))
	return records, nil
}

// ReadCSV reads a header row followed by data rows.
func ReadCSV(r io.Reader) ([]domain.RawRainfallRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	table, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rowsFromTable(table)
}

// ReadXLSX reads a workbook sheet laid out like the CSV file.
func ReadXLSX(r io.Reader, sheet string) ([]domain.RawRainfallRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	table, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rowsFromTable(table)
}

func rowsFromTable(table [][]string) ([]domain.RawRainfallRow, error) {
	if len(table) == 0 {
		return nil, fmt.Errorf("%w: empty dataset", domain.ErrMissingColumns)
	}

	header := make([]string, len(table[0]))
	for i, h := range table[0] {
		// Exported spreadsheets often carry a UTF-8 BOM on the first cell.
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	if err := domain.ValidateColumns(header); err != nil {
		return nil, err
	}

	rows := make([]domain.RawRainfallRow, 0, len(table)-1)
	for _, cells := range table[1:] {
		if blankRow(cells) {
			continue
		}
		row := make(domain.RawRainfallRow, len(header))
		for i, col := range header {
			if i < len(cells) {
				row[col] = strings.TrimSpace(cells[i])
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// WriteXLSX writes rows to a single-sheet workbook with the given column order.
func WriteXLSX(path string, columns []string, rows []domain.RawRainfallRow) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for r, row := range rows {
		values := make([]any, len(columns))
		for i, c := range columns {
			values[i] = row[c]
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", r+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save xlsx: %w", err)
	}
	return nil
}
