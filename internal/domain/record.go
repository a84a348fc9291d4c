package domain

import (
	"context"
	"time"

	"github.com/couchcryptid/flood-risk-etl/internal/hydrology"
)

// Dataset column names.
const (
	ColumnState    = "STATE_UT_NAME"
	ColumnDistrict = "DISTRICT"
	ColumnAnnual   = "ANNUAL"
	ColumnMonsoon  = "Jun-Sep"
)

// Month pairs a dataset column with the month name used in output.
type Month struct {
	Column string
	Name   string
}

// Months lists the calendar in order.
var Months = []Month{
	{"JAN", "January"},
	{"FEB", "February"},
	{"MAR", "March"},
	{"APR", "April"},
	{"MAY", "May"},
	{"JUN", "June"},
	{"JUL", "July"},
	{"AUG", "August"},
	{"SEP", "September"},
	{"OCT", "October"},
	{"NOV", "November"},
	{"DEC", "December"},
}

// RawRainfallRow is one dataset row keyed by column name. It is also the
// JSON shape published to the source topic.
type RawRainfallRow map[string]string

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// DistrictRecord is a parsed, validated dataset row.
type DistrictRecord struct {
	State    string             `json:"state"`
	District string             `json:"district"`
	Monthly  map[string]float64 `json:"monthly"`
	Annual   float64            `json:"annual"`
	Monsoon  float64            `json:"monsoon"`
}

// DistrictMetrics are descriptive statistics over a district's monthly normals.
type DistrictMetrics struct {
	AvgMonthly        float64 `json:"avg_monthly"`
	MaxMonthly        float64 `json:"max_monthly"`
	MinMonthly        float64 `json:"min_monthly"`
	StdMonthly        float64 `json:"std_monthly"`
	MonsoonPercentage float64 `json:"monsoon_percentage"`
	PeakMonth         string  `json:"peak_month"`
}

// Geo represents a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat,omitempty"`
	Lon float64 `json:"lon,omitempty"`
}

// DistrictReport is the enriched record written to the sink topic and the
// processed-data artifact.
type DistrictReport struct {
	ID string `json:"id"`
	DistrictRecord
	Metrics       DistrictMetrics      `json:"metrics"`
	RainfallBasis RainfallBasis        `json:"rainfall_basis,omitempty"`
	Flood         hydrology.Assessment `json:"flood"`

	// Geocoding enrichment fields.
	Geo              Geo     `json:"geo,omitempty"`
	FormattedAddress string  `json:"formatted_address,omitempty"`
	GeoConfidence    float64 `json:"geo_confidence,omitempty"`
	GeoSource        string  `json:"geo_source,omitempty"` // "forward", "original", "failed"

	ProcessedAt time.Time `json:"processed_at"`
}
