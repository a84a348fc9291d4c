package dataset

import (
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/flood-risk-etl/internal/domain"
)

const sampleCSV = "../../../data/mock/district_rainfall_sample.csv"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStore_CSVSample(t *testing.T) {
	records, err := NewStore(sampleCSV, "", discardLogger()).Records()
	require.NoError(t, err)
	require.Len(t, records, 12)

	idukki := records[0]
	assert.Equal(t, "KERALA", idukki.State)
	assert.Equal(t, "IDUKKI", idukki.District)
	assert.InDelta(t, 3491.2, idukki.Annual, 1e-9)
	assert.InDelta(t, 2461.0, idukki.Monsoon, 1e-9)
	assert.InDelta(t, 880.2, idukki.Monthly["July"], 1e-9)
}

func TestReadCSV_MissingColumns(t *testing.T) {
	in := "STATE_UT_NAME,DISTRICT,JAN\nKERALA,IDUKKI,20\n"

	_, err := ReadCSV(strings.NewReader(in))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMissingColumns))
	assert.Contains(t, err.Error(), "FEB")
	assert.Contains(t, err.Error(), "ANNUAL")
}

func TestReadCSV_BOMAndBlankRows(t *testing.T) {
	header := "\ufeff" + strings.Join(domain.RequiredColumns(), ",")
	in := header + "\nGOA,NORTH GOA,1,0,0,5,60,900,1100,700,300,120,30,5,3221\n,,,\n"

	rows, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "NORTH GOA", rows[0][domain.ColumnDistrict])
	assert.Empty(t, rows[0][domain.ColumnMonsoon])
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, domain.ErrMissingColumns)
}

func TestStore_SkipsUnparseableRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.xlsx")

	cols := domain.RequiredColumns()
	good := domain.RawRainfallRow{domain.ColumnState: "GOA", domain.ColumnDistrict: "SOUTH GOA", domain.ColumnAnnual: "3000"}
	bad := domain.RawRainfallRow{domain.ColumnState: "GOA", domain.ColumnDistrict: "NORTH GOA", "JAN": "n/a"}
	require.NoError(t, WriteXLSX(path, cols, []domain.RawRainfallRow{good, bad}))

	records, err := NewStore(path, "", discardLogger()).Records()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "SOUTH GOA", records[0].District)
}

func TestStore_XLSXRoundTripMatchesCSV(t *testing.T) {
	fromCSV, err := NewStore(sampleCSV, "", discardLogger()).Rows()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "sample.xlsx")
	cols := append(domain.RequiredColumns(), domain.ColumnMonsoon)
	require.NoError(t, WriteXLSX(path, cols, fromCSV))

	fromXLSX, err := NewStore(path, "", discardLogger()).Rows()
	require.NoError(t, err)
	require.Len(t, fromXLSX, len(fromCSV))

	for i := range fromCSV {
		for _, c := range cols {
			assert.Equal(t, fromCSV[i][c], fromXLSX[i][c], "row %d column %s", i, c)
		}
	}
}

func TestStore_UnsupportedFormat(t *testing.T) {
	_, err := NewStore("rainfall.parquet", "", discardLogger()).Rows()
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
