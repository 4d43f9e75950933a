package domain

import (
	"io"
	"log/slog"
	"time"
)

func f64(v float64) *float64 { return &v }

func i64(v int64) *int64 { return &v }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// validRaw returns a raw report that passes every filter predicate.
func validRaw(mmsi int64, ts string) RawReport {
	return RawReport{
		MMSI:               i64(mmsi),
		Timestamp:          ts,
		Latitude:           f64(55.5),
		Longitude:          f64(10.2),
		Width:              f64(20),
		Length:             f64(120),
		SOG:                f64(8.5),
		NavigationalStatus: StatusUnderWayUsingEngine,
		MobileType:         MobileTypeClassA,
		ShipType:           ShipTypeCargo,
	}
}

// validRecord is the wire form of validRaw.
func validRecord(mmsi, ts string) AISRecord {
	return AISRecord{
		Timestamp:          ts,
		MobileType:         MobileTypeClassA,
		MMSI:               mmsi,
		Latitude:           "55.5",
		Longitude:          "10.2",
		NavigationalStatus: StatusUnderWayUsingEngine,
		SOG:                "8.5",
		ShipType:           ShipTypeCargo,
		Width:              "20",
		Length:             "120",
	}
}

func mustTime(s string) time.Time {
	t, err := ParseTimestamp(s)
	if err != nil {
		panic(err)
	}
	return t
}

// scored builds a ScoredReport with only the fields the aggregators read.
func scored(mmsi int64, ts string, lat, lon, emissionsNorm float64) ScoredReport {
	return ScoredReport{
		NormalizedReport: NormalizedReport{
			VesselReport: VesselReport{
				MMSI:      mmsi,
				Timestamp: mustTime(ts),
				Latitude:  lat,
				Longitude: lon,
			},
		},
		EmissionsNorm: emissionsNorm,
	}
}
