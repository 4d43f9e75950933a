package main

import (
	"math"

	"github.com/couchcryptid/ais-pollution-etl/internal/domain"
)

const tolerance = 1e-9

func validateRanking(r domain.Result, topK int) *phase {
	p := &phase{name: "Ranking order and size"}

	if len(r.RankedVessels) > topK {
		p.errorf("%d ranked vessels, want at most %d", len(r.RankedVessels), topK)
	}
	if len(r.RankedVessels) > r.Stats.Vessels {
		p.errorf("%d ranked vessels but only %d distinct vessels kept", len(r.RankedVessels), r.Stats.Vessels)
	}

	seen := make(map[int64]bool, len(r.RankedVessels))
	for i, v := range r.RankedVessels {
		if seen[v.MMSI] {
			p.errorf("mmsi %d ranked twice", v.MMSI)
		}
		seen[v.MMSI] = true
		if v.CumulativeEmissionsNorm < 0 {
			p.errorf("mmsi %d: negative cumulative score %g", v.MMSI, v.CumulativeEmissionsNorm)
		}
		if i > 0 && v.CumulativeEmissionsNorm > r.RankedVessels[i-1].CumulativeEmissionsNorm+tolerance {
			p.errorf("rank %d (mmsi %d, %g) scores above rank %d (%g)",
				i+1, v.MMSI, v.CumulativeEmissionsNorm, i, r.RankedVessels[i-1].CumulativeEmissionsNorm)
		}
	}
	return p
}

func validateRankedReports(r domain.Result) *phase {
	p := &phase{name: "Ranked reports consistency"}

	rankOf := make(map[int64]int, len(r.RankedVessels))
	for i, v := range r.RankedVessels {
		rankOf[v.MMSI] = i
	}

	lastRank := 0
	for i, rep := range r.RankedVesselReports {
		rank, ok := rankOf[rep.MMSI]
		if !ok {
			p.errorf("report %d: mmsi %d is not ranked", i, rep.MMSI)
			continue
		}
		if rank < lastRank {
			p.errorf("report %d: mmsi %d (rank %d) appears after rank %d", i, rep.MMSI, rank+1, lastRank+1)
		}
		lastRank = rank

		if want := r.RankedVessels[rank].CumulativeEmissionsNorm; math.Abs(rep.CumulativeEmissionsNorm-want) > tolerance {
			p.errorf("report %d: cumulative %g, vessel has %g", i, rep.CumulativeEmissionsNorm, want)
		}
		if rep.EmissionsNorm < -tolerance || rep.EmissionsNorm > 1+tolerance {
			p.errorf("report %d: emissions_norm %g outside [0,1]", i, rep.EmissionsNorm)
		}
		if want := domain.ClassifySeverity(rep.EmissionsNorm); rep.Severity != want {
			p.errorf("report %d: severity %q, want %q", i, rep.Severity, want)
		}
	}
	return p
}

func validateHourlyDensity(r domain.Result) *phase {
	p := &phase{name: "Hourly density shape"}
	d := r.HourlyDensity

	if len(d.Buckets) != domain.HoursPerDay {
		p.errorf("%d buckets, want %d", len(d.Buckets), domain.HoursPerDay)
	}
	switch {
	case r.Stats.Kept == 0 && len(d.Labels) != 0:
		p.errorf("%d labels for an empty result, want 0", len(d.Labels))
	case r.Stats.Kept > 0 && len(d.Labels) != domain.HoursPerDay:
		p.errorf("%d labels, want %d", len(d.Labels), domain.HoursPerDay)
	}
	for i, label := range d.Labels {
		if _, err := domain.ParseTimestamp(label); err != nil {
			p.errorf("label %d %q: %v", i, label, err)
		}
	}
	for i, bucket := range d.Buckets {
		if len(bucket) > r.Stats.Vessels {
			p.errorf("hour %d: %d points but only %d vessels", i+1, len(bucket), r.Stats.Vessels)
		}
		for _, g := range bucket {
			if g.Lat < -90 || g.Lat > 90 || g.Lon < -180 || g.Lon > 180 {
				p.errorf("hour %d: point (%g, %g) out of range", i+1, g.Lat, g.Lon)
			}
		}
	}
	return p
}

func validateStats(r domain.Result) *phase {
	p := &phase{name: "Run statistics"}
	s := r.Stats

	if s.Kept > s.Records {
		p.errorf("kept %d of %d records", s.Kept, s.Records)
	}
	if s.Vessels > s.Kept {
		p.errorf("%d vessels from %d kept records", s.Vessels, s.Kept)
	}
	if s.Kept == 0 && len(r.RankedVessels) > 0 {
		p.errorf("empty result has %d ranked vessels", len(r.RankedVessels))
	}
	if r.GeneratedAt.IsZero() {
		p.errorf("generated_at is missing")
	}
	return p
}

// validateAgainst compares the document with a fresh run over the source.
func validateAgainst(got, want domain.Result) *phase {
	p := &phase{name: "Matches re-scored input"}

	if got.Stats.Records != want.Stats.Records || got.Stats.Kept != want.Stats.Kept || got.Stats.Vessels != want.Stats.Vessels {
		p.errorf("stats %+v, re-scored %+v", got.Stats, want.Stats)
	}
	if len(got.RankedVessels) != len(want.RankedVessels) {
		p.errorf("%d ranked vessels, re-scored %d", len(got.RankedVessels), len(want.RankedVessels))
	} else {
		for i := range want.RankedVessels {
			g, w := got.RankedVessels[i], want.RankedVessels[i]
			if g.MMSI != w.MMSI || math.Abs(g.CumulativeEmissionsNorm-w.CumulativeEmissionsNorm) > tolerance {
				p.errorf("rank %d: mmsi %d (%g), re-scored mmsi %d (%g)",
					i+1, g.MMSI, g.CumulativeEmissionsNorm, w.MMSI, w.CumulativeEmissionsNorm)
			}
		}
	}
	if len(got.RankedVesselReports) != len(want.RankedVesselReports) {
		p.errorf("%d ranked reports, re-scored %d", len(got.RankedVesselReports), len(want.RankedVesselReports))
	}
	for i := range min(len(got.HourlyDensity.Buckets), len(want.HourlyDensity.Buckets)) {
		if len(got.HourlyDensity.Buckets[i]) != len(want.HourlyDensity.Buckets[i]) {
			p.errorf("hour %d: %d points, re-scored %d", i+1, len(got.HourlyDensity.Buckets[i]), len(want.HourlyDensity.Buckets[i]))
		}
	}
	return p
}
