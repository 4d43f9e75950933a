// Package domain scores AIS vessel reports for likely pollution and aggregates
// the scores into a vessel ranking and an hourly density view.
//
// # Data Source
//
// Reports come from the Danish Maritime Authority daily AIS exports
// (aisdk_YYYYMMDD.csv). Ingestion adapters deliver each row keyed by the
// export's column names; see [RequiredColumns].
//
// # AIS Conventions
//
// Timestamp format:
//
//	"DD/MM/YYYY HH:MM:SS" in UTC, e.g. "03/11/2018 00:15:00".
//
// MMSI identifies a vessel, not a report; it repeats for every position fix.
// Width and Length are static hull attributes in meters and repeat across a
// vessel's reports. SOG is knots, ROT degrees/minute, COG and Heading degrees.
// Empty cells are null.
//
// Mobile type "Class A" marks mandatory transponders on large commercial
// vessels; Class B and base stations are dropped.
//
// # Scoring
//
// Surviving reports get min-max normalized width, length and SOG over the whole
// day's filtered set, then
//
//	emissions = (activity + shipType) × (1 + sogNorm) + (75 × widthNorm) × (100 × lengthNorm) × sogNorm
//
// which is itself min-max normalized to emissionsNorm. The weights in
// [ActivityWeights] and [ShipTypeWeights] are fixed heuristic constants.
// A field whose values are all equal normalizes to 0 and is reported in
// [Stats.DegenerateFields].
//
// Severity tiers of emissionsNorm:
//
//	low ≤ 0.3 < medium ≤ 0.6 < high
//
// # Aggregation
//
// [RankVessels] sums emissionsNorm per MMSI and keeps the top K. [BinHourly]
// keeps each vessel's latest fix per hour bucket, where bucket = hour + 1
// (1..24).
package domain
