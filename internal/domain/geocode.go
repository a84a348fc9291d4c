package domain

import (
	"context"
	"log/slog"
)

// EnrichWithGeocoding attaches district centroid coordinates. If geocoder is
// nil the report is returned unchanged; lookup failures are logged and
// recorded in GeoSource rather than failing the record.
func EnrichWithGeocoding(ctx context.Context, report DistrictReport, geocoder Geocoder, logger *slog.Logger) DistrictReport {
	if geocoder == nil {
		return report
	}

	result, err := geocoder.ForwardGeocode(ctx, report.District, report.State)
	if err != nil {
		logger.Warn("forward geocoding failed",
			"district_id", report.ID,
			"district", report.District,
			"state", report.State,
			"error", err,
		)
		report.GeoSource = "failed"
		return report
	}
	if result.Lat == 0 && result.Lon == 0 {
		report.GeoSource = "original"
		return report
	}

	report.Geo = Geo{Lat: result.Lat, Lon: result.Lon}
	report.FormattedAddress = result.FormattedAddress
	report.GeoConfidence = result.Confidence
	report.GeoSource = "forward"
	return report
}
