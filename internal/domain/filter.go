package domain

import "slices"

// MobileTypeClassA is the only transponder class kept. Class A units are
// mandatory on large commercial vessels.
const MobileTypeClassA = "Class A"

// CheckSchema fails with a SchemaError when any required column is absent
// from the source schema. Order of columns is irrelevant.
func CheckSchema(columns []string) error {
	present := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		present[c] = struct{}{}
	}

	var missing []string
	for _, c := range RequiredColumns {
		if _, ok := present[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Missing: missing}
	}
	return nil
}

// Keep reports whether a raw report passes every validation predicate:
// Class A transponder, active navigational status, tracked ship type,
// complete position/dimensions/identity, and at least one motion field.
func Keep(r RawReport) bool {
	if r.MobileType != MobileTypeClassA {
		return false
	}
	if _, ok := ActivityWeights[r.NavigationalStatus]; !ok {
		return false
	}
	if _, ok := ShipTypeWeights[r.ShipType]; !ok {
		return false
	}
	if r.MMSI == nil || r.Latitude == nil || r.Longitude == nil || r.Width == nil || r.Length == nil {
		return false
	}
	return r.ROT != nil || r.SOG != nil || r.COG != nil || r.Heading != nil
}

// Filter drops every report that fails Keep and converts survivors into
// VesselReports. Input order is preserved and the input slice is not modified.
// Timestamps are parsed only for survivors; a malformed one aborts with a
// TimestampError.
func Filter(reports []RawReport) ([]VesselReport, error) {
	out := make([]VesselReport, 0, len(reports))
	for _, r := range reports {
		if !Keep(r) {
			continue
		}
		ts, err := ParseTimestamp(r.Timestamp)
		if err != nil {
			return nil, &TimestampError{MMSI: *r.MMSI, Value: r.Timestamp, Err: err}
		}
		out = append(out, VesselReport{
			MMSI:               *r.MMSI,
			Timestamp:          ts,
			Latitude:           *r.Latitude,
			Longitude:          *r.Longitude,
			Width:              *r.Width,
			Length:             *r.Length,
			SOG:                cloneFloat(r.SOG),
			NavigationalStatus: r.NavigationalStatus,
			ShipType:           r.ShipType,
		})
	}
	return slices.Clip(out), nil
}

// InconsistentVessels returns, in ascending order, the MMSIs whose reports
// disagree on width or length. Dimensions are static per hull, so a mismatch
// points at bad transponder configuration.
func InconsistentVessels(reports []VesselReport) []int64 {
	type dims struct{ width, length float64 }
	seen := make(map[int64]dims)
	bad := make(map[int64]struct{})

	for _, r := range reports {
		d, ok := seen[r.MMSI]
		if !ok {
			seen[r.MMSI] = dims{r.Width, r.Length}
			continue
		}
		if d.width != r.Width || d.length != r.Length {
			bad[r.MMSI] = struct{}{}
		}
	}

	out := make([]int64, 0, len(bad))
	for m := range bad {
		out = append(out, m)
	}
	slices.Sort(out)
	return out
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
