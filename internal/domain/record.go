package domain

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"
)

// Canonical column names of the Danish Maritime Authority AIS export. Ingestion
// adapters key each row by these names; CheckSchema validates against them.
const (
	ColTimestamp          = "# Timestamp"
	ColMobileType         = "Type of mobile"
	ColMMSI               = "MMSI"
	ColLatitude           = "Latitude"
	ColLongitude          = "Longitude"
	ColNavigationalStatus = "Navigational status"
	ColROT                = "ROT"
	ColSOG                = "SOG"
	ColCOG                = "COG"
	ColHeading            = "Heading"
	ColShipType           = "Ship type"
	ColWidth              = "Width"
	ColLength             = "Length"
)

// RequiredColumns lists every column the scoring pipeline reads.
var RequiredColumns = []string{
	ColTimestamp,
	ColMobileType,
	ColMMSI,
	ColLatitude,
	ColLongitude,
	ColNavigationalStatus,
	ColROT,
	ColSOG,
	ColCOG,
	ColHeading,
	ColShipType,
	ColWidth,
	ColLength,
}

// TimestampLayout is the AIS export timestamp format (DD/MM/YYYY HH:MM:SS).
const TimestampLayout = "02/01/2006 15:04:05"

// AISRecord is one row as delivered by an ingestion adapter. Values are kept
// as strings; empty means null.
type AISRecord struct {
	Timestamp          string `json:"# Timestamp"`
	MobileType         string `json:"Type of mobile"`
	MMSI               string `json:"MMSI"`
	Latitude           string `json:"Latitude"`
	Longitude          string `json:"Longitude"`
	NavigationalStatus string `json:"Navigational status"`
	ROT                string `json:"ROT"`
	SOG                string `json:"SOG"`
	COG                string `json:"COG"`
	Heading            string `json:"Heading"`
	ShipType           string `json:"Ship type"`
	Width              string `json:"Width"`
	Length             string `json:"Length"`
}

// RecordFromFields builds an AISRecord from a column-name keyed row.
// Unknown columns are ignored.
func RecordFromFields(fields map[string]string) AISRecord {
	return AISRecord{
		Timestamp:          fields[ColTimestamp],
		MobileType:         fields[ColMobileType],
		MMSI:               fields[ColMMSI],
		Latitude:           fields[ColLatitude],
		Longitude:          fields[ColLongitude],
		NavigationalStatus: fields[ColNavigationalStatus],
		ROT:                fields[ColROT],
		SOG:                fields[ColSOG],
		COG:                fields[ColCOG],
		Heading:            fields[ColHeading],
		ShipType:           fields[ColShipType],
		Width:              fields[ColWidth],
		Length:             fields[ColLength],
	}
}

// RecordBatch is the complete record stream for one run: the schema the source
// exposed and every row it delivered.
type RecordBatch struct {
	Columns []string
	Records []AISRecord

	// Commit acknowledges the batch at the source once results are loaded.
	// Nil for sources without acknowledgement.
	Commit func(ctx context.Context) error
}

// RawReport is the typed, nullable form of an AISRecord.
type RawReport struct {
	MMSI               *int64
	Timestamp          string
	Latitude           *float64
	Longitude          *float64
	Width              *float64
	Length             *float64
	SOG                *float64
	ROT                *float64
	COG                *float64
	Heading            *float64
	NavigationalStatus string
	MobileType         string
	ShipType           string
}

// VesselReport is a report that survived validation. Position, dimensions and
// identity are always present; SOG may still be absent.
type VesselReport struct {
	MMSI               int64
	Timestamp          time.Time
	Latitude           float64
	Longitude          float64
	Width              float64
	Length             float64
	SOG                *float64
	NavigationalStatus string
	ShipType           string
}

// Geo represents a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ParseAISRecord converts string fields into nullable typed values. Values that
// fail to parse, and non-finite ones such as "NaN" or "Inf", are treated as
// null, matching how the export marks missing data.
func ParseAISRecord(rec AISRecord) RawReport {
	return RawReport{
		MMSI:               parseIntOrNil(rec.MMSI),
		Timestamp:          strings.TrimSpace(rec.Timestamp),
		Latitude:           parseFloatOrNil(rec.Latitude),
		Longitude:          parseFloatOrNil(rec.Longitude),
		Width:              parseFloatOrNil(rec.Width),
		Length:             parseFloatOrNil(rec.Length),
		SOG:                parseFloatOrNil(rec.SOG),
		ROT:                parseFloatOrNil(rec.ROT),
		COG:                parseFloatOrNil(rec.COG),
		Heading:            parseFloatOrNil(rec.Heading),
		NavigationalStatus: strings.TrimSpace(rec.NavigationalStatus),
		MobileType:         strings.TrimSpace(rec.MobileType),
		ShipType:           strings.TrimSpace(rec.ShipType),
	}
}

// ParseAISRecords maps ParseAISRecord over a slice.
func ParseAISRecords(recs []AISRecord) []RawReport {
	out := make([]RawReport, len(recs))
	for i := range recs {
		out[i] = ParseAISRecord(recs[i])
	}
	return out
}

// ParseTimestamp parses an AIS export timestamp as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	return time.ParseInLocation(TimestampLayout, strings.TrimSpace(s), time.UTC)
}

// FormatTimestamp renders t in the AIS export layout.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

func parseFloatOrNil(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func parseIntOrNil(s string) *int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// Some exports write MMSI as a float ("219000123.0").
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != float64(int64(f)) {
			return nil
		}
		v = int64(f)
	}
	return &v
}
