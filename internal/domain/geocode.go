package domain

import (
	"context"
	"log/slog"
)

// Geo sources recorded on a RankedVessel.
const (
	GeoSourceReverse  = "reverse"
	GeoSourceOriginal = "original"
	GeoSourceFailed   = "failed"
)

// EnrichWithGeocoding reverse geocodes each ranked vessel's last position.
// The input slice is not modified. A nil geocoder returns an unchanged copy;
// a failed lookup marks that vessel "failed" and moves on.
func EnrichWithGeocoding(ctx context.Context, vessels []RankedVessel, geocoder Geocoder, logger *slog.Logger) []RankedVessel {
	out := make([]RankedVessel, len(vessels))
	copy(out, vessels)
	if geocoder == nil {
		return out
	}

	for i := range out {
		v := &out[i]
		result, err := geocoder.ReverseGeocode(ctx, v.LastPosition.Lat, v.LastPosition.Lon)
		if err != nil {
			logger.Warn("reverse geocoding failed",
				"mmsi", v.MMSI,
				"lat", v.LastPosition.Lat,
				"lon", v.LastPosition.Lon,
				"error", err,
			)
			v.GeoSource = GeoSourceFailed
			continue
		}
		if result.FormattedAddress == "" {
			v.GeoSource = GeoSourceOriginal
			continue
		}
		v.FormattedAddress = result.FormattedAddress
		v.PlaceName = result.PlaceName
		v.GeoSource = GeoSourceReverse
	}
	return out
}
