package domain

import (
	"slices"
	"time"
)

// HoursPerDay is the fixed bucket count of HourlyDensity.
const HoursPerDay = 24

// HourlyDensity holds, for hour buckets 1..24, one position per vessel that
// reported in that hour, plus a parallel list of human-readable labels.
// Buckets[i] belongs to hour i+1.
type HourlyDensity struct {
	Buckets [][]Geo `json:"buckets"`
	// Labels has one entry per bucket, or none when no report survived
	// filtering since there is no start time to step from.
	Labels []string `json:"labels"`
}

// HourBucket maps a timestamp to its bucket: calendar hour 0 is bucket 1 and
// hour 23 is bucket 24. There is no bucket 0.
func HourBucket(t time.Time) int {
	return t.Hour() + 1
}

// BinHourly selects, for every (hour bucket, vessel) pair, the report with the
// latest timestamp (the first one in input order on ties) and returns its
// position. Positions within a bucket are ordered by ascending MMSI. The result
// always has 24 buckets; hours without reports are empty, not omitted.
func BinHourly(reports []ScoredReport) HourlyDensity {
	type key struct {
		hour int
		mmsi int64
	}
	latest := make(map[key]int, len(reports))
	for i, r := range reports {
		k := key{HourBucket(r.Timestamp), r.MMSI}
		if j, ok := latest[k]; !ok || r.Timestamp.After(reports[j].Timestamp) {
			latest[k] = i
		}
	}

	perHour := make([][]int64, HoursPerDay+1)
	for k := range latest {
		perHour[k.hour] = append(perHour[k.hour], k.mmsi)
	}

	buckets := make([][]Geo, HoursPerDay)
	for hour := 1; hour <= HoursPerDay; hour++ {
		mmsis := perHour[hour]
		slices.Sort(mmsis)
		points := make([]Geo, 0, len(mmsis))
		for _, m := range mmsis {
			r := reports[latest[key{hour, m}]]
			points = append(points, Geo{Lat: r.Latitude, Lon: r.Longitude})
		}
		buckets[hour-1] = points
	}

	return HourlyDensity{
		Buckets: buckets,
		Labels:  HourLabels(reports),
	}
}

// HourLabels steps hourly from the earliest to the latest report timestamp,
// rounding each step to the nearest minute. The list is extended past the
// latest timestamp, or cut, so that it always has one label per bucket.
// Empty input has no labels.
func HourLabels(reports []ScoredReport) []string {
	if len(reports) == 0 {
		return []string{}
	}

	lo, hi := reports[0].Timestamp, reports[0].Timestamp
	for _, r := range reports[1:] {
		if r.Timestamp.Before(lo) {
			lo = r.Timestamp
		}
		if r.Timestamp.After(hi) {
			hi = r.Timestamp
		}
	}

	labels := make([]string, 0, HoursPerDay)
	for t := lo; !t.After(hi) && len(labels) < HoursPerDay; t = t.Add(time.Hour) {
		labels = append(labels, FormatTimestamp(roundToMinute(t)))
	}
	for t := lo.Add(time.Duration(len(labels)) * time.Hour); len(labels) < HoursPerDay; t = t.Add(time.Hour) {
		labels = append(labels, FormatTimestamp(roundToMinute(t)))
	}
	return labels
}

// roundToMinute rounds to the nearest minute, sending exact half minutes to
// the even minute.
func roundToMinute(t time.Time) time.Time {
	trunc := t.Truncate(time.Minute)
	rem := t.Sub(trunc)
	switch {
	case rem < 30*time.Second:
		return trunc
	case rem > 30*time.Second:
		return trunc.Add(time.Minute)
	case trunc.Minute()%2 == 0:
		return trunc
	default:
		return trunc.Add(time.Minute)
	}
}
