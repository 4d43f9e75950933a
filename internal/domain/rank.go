package domain

import (
	"slices"
	"time"

	"gonum.org/v1/gonum/floats"
)

// Defaults for ranking and output thinning.
const (
	DefaultTopK       = 6
	DefaultThinStride = 5
)

// Severity tiers of a report's normalized emissions, used by renderers to
// pick icon colors.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// RankedVessel is one entry of the top-K ranking.
type RankedVessel struct {
	MMSI                    int64   `json:"mmsi"`
	CumulativeEmissionsNorm float64 `json:"cumulative_emissions_norm"`
	Reports                 int     `json:"reports"`

	// Latest known position and its optional geocoding enrichment.
	LastPosition     Geo       `json:"last_position"`
	LastSeen         time.Time `json:"last_seen"`
	FormattedAddress string    `json:"formatted_address,omitempty"`
	PlaceName        string    `json:"place_name,omitempty"`
	GeoSource        string    `json:"geo_source,omitempty"` // "reverse", "original", "failed"
}

// RankedVesselReport is one time-stamped point of a ranked vessel, ready for
// rendering.
type RankedVesselReport struct {
	MMSI                    int64     `json:"mmsi"`
	Timestamp               time.Time `json:"timestamp"`
	Latitude                float64   `json:"latitude"`
	Longitude               float64   `json:"longitude"`
	EmissionsNorm           float64   `json:"emissions_norm"`
	CumulativeEmissionsNorm float64   `json:"cumulative_emissions_norm"`
	Severity                string    `json:"severity"`
}

// ClassifySeverity maps a normalized emissions value to its tier:
// low up to 0.3, medium up to 0.6, high above.
func ClassifySeverity(emissionsNorm float64) string {
	switch {
	case emissionsNorm <= 0.3:
		return SeverityLow
	case emissionsNorm <= 0.6:
		return SeverityMedium
	default:
		return SeverityHigh
	}
}

// VesselRanking sums EmissionsNorm per MMSI.
func VesselRanking(reports []ScoredReport) map[int64]float64 {
	groups := make(map[int64][]float64)
	for _, r := range reports {
		groups[r.MMSI] = append(groups[r.MMSI], r.EmissionsNorm)
	}
	ranking := make(map[int64]float64, len(groups))
	for mmsi, scores := range groups {
		ranking[mmsi] = floats.Sum(scores)
	}
	return ranking
}

// RankVessels returns the k vessels with the largest cumulative EmissionsNorm,
// highest first. Vessels are considered in ascending MMSI order and the sort is
// stable, so equal scores keep the lower MMSI first. Fewer than k distinct
// vessels yields a shorter result; k <= 0 yields none.
func RankVessels(reports []ScoredReport, k int) []RankedVessel {
	if k <= 0 || len(reports) == 0 {
		return []RankedVessel{}
	}

	ranking := VesselRanking(reports)
	latest := make(map[int64]ScoredReport, len(ranking))
	counts := make(map[int64]int, len(ranking))
	for _, r := range reports {
		counts[r.MMSI]++
		if cur, ok := latest[r.MMSI]; !ok || r.Timestamp.After(cur.Timestamp) {
			latest[r.MMSI] = r
		}
	}

	mmsis := make([]int64, 0, len(ranking))
	for m := range ranking {
		mmsis = append(mmsis, m)
	}
	slices.Sort(mmsis)
	slices.SortStableFunc(mmsis, func(a, b int64) int {
		switch {
		case ranking[a] > ranking[b]:
			return -1
		case ranking[a] < ranking[b]:
			return 1
		default:
			return 0
		}
	})

	if len(mmsis) > k {
		mmsis = mmsis[:k]
	}

	out := make([]RankedVessel, len(mmsis))
	for i, m := range mmsis {
		last := latest[m]
		out[i] = RankedVessel{
			MMSI:                    m,
			CumulativeEmissionsNorm: ranking[m],
			Reports:                 counts[m],
			LastPosition:            Geo{Lat: last.Latitude, Lon: last.Longitude},
			LastSeen:                last.Timestamp,
		}
	}
	return out
}

// JoinRankedReports recovers every report of the ranked vessels: vessels in
// rank order, each vessel's reports in input order.
func JoinRankedReports(ranked []RankedVessel, reports []ScoredReport) []RankedVesselReport {
	byMMSI := make(map[int64][]ScoredReport, len(ranked))
	wanted := make(map[int64]struct{}, len(ranked))
	for _, v := range ranked {
		wanted[v.MMSI] = struct{}{}
	}
	for _, r := range reports {
		if _, ok := wanted[r.MMSI]; ok {
			byMMSI[r.MMSI] = append(byMMSI[r.MMSI], r)
		}
	}

	var out []RankedVesselReport
	for _, v := range ranked {
		for _, r := range byMMSI[v.MMSI] {
			out = append(out, RankedVesselReport{
				MMSI:                    r.MMSI,
				Timestamp:               r.Timestamp,
				Latitude:                r.Latitude,
				Longitude:               r.Longitude,
				EmissionsNorm:           r.EmissionsNorm,
				CumulativeEmissionsNorm: v.CumulativeEmissionsNorm,
				Severity:                ClassifySeverity(r.EmissionsNorm),
			})
		}
	}
	if out == nil {
		return []RankedVesselReport{}
	}
	return out
}

// Thin keeps every stride-th report starting at position 0, bounding output
// volume for renderers. A stride of 1 or less returns a copy of the input.
func Thin(reports []RankedVesselReport, stride int) []RankedVesselReport {
	if stride <= 1 {
		return slices.Clone(reports)
	}
	out := make([]RankedVesselReport, 0, (len(reports)+stride-1)/stride)
	for i := 0; i < len(reports); i += stride {
		out = append(out, reports[i])
	}
	return out
}
