// Command genmock generates a deterministic synthetic AIS day in the Danish
// Maritime Authority CSV layout. It runs the generated records through the
// real domain package and prints the figures test assertions depend on.
//
// Usage:
//
//	go run ./cmd/genmock -out testdata/aisdk_generated.csv -vessels 40 -seed 7
//
// With -brokers set, the records are also produced to the raw AIS topic as
// JSON objects, one message per record, for SOURCE=kafka runs.
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/ais-pollution-etl/internal/domain"
	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
)

// header mirrors the full DMA export; columns past Length are left empty.
var header = []string{
	domain.ColTimestamp, domain.ColMobileType, domain.ColMMSI, domain.ColLatitude, domain.ColLongitude,
	domain.ColNavigationalStatus, domain.ColROT, domain.ColSOG, domain.ColCOG, domain.ColHeading,
	"IMO", "Callsign", "Name", domain.ColShipType, "Cargo type", domain.ColWidth, domain.ColLength,
	"Type of position fixing device", "Draught", "Destination", "ETA", "Data source type",
	"A", "B", "C", "D",
}

type hull struct {
	shipType      string
	width, length float64
}

var hulls = []hull{
	{domain.ShipTypeTanker, 32, 183},
	{domain.ShipTypeCargo, 25, 140},
	{domain.ShipTypeFishing, 8, 24},
	{domain.ShipTypePassenger, 28, 186},
	{domain.ShipTypeTug, 10, 32},
	{domain.ShipTypeMilitary, 14, 90},
	{domain.ShipTypeDredging, 18, 97},
	{domain.ShipTypeAntiPollution, 12, 56},
	{"Pleasure", 4, 12},
	{"Sailing", 5, 14},
}

var statuses = []string{
	domain.StatusUnderWayUsingEngine,
	domain.StatusUnderWayUsingEngine,
	domain.StatusEngagedInFishing,
	domain.StatusRestrictedManeuverability,
	"Moored",
	"At anchor",
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output CSV path")
	vessels := flag.Int("vessels", 20, "number of distinct vessels")
	reportsPerHour := flag.Int("per-hour", 2, "reports per vessel per hour")
	day := flag.String("day", "2018-11-03", "calendar day (YYYY-MM-DD, UTC)")
	seed := flag.Uint64("seed", 20181103, "random seed")
	brokers := flag.String("brokers", "", "optional comma-separated Kafka brokers to produce to")
	topic := flag.String("topic", "raw-ais-reports", "Kafka topic for -brokers")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	start, err := time.Parse(time.DateOnly, *day)
	if err != nil {
		return fmt.Errorf("invalid -day: %w", err)
	}

	records := generate(rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15)), start, *vessels, *reportsPerHour)

	if err := writeCSV(*out, records); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	log.Printf("wrote %d records to %s", len(records), *out)

	if *brokers != "" {
		if err := produce(strings.Split(*brokers, ","), *topic, records); err != nil {
			return fmt.Errorf("producing to kafka: %w", err)
		}
		log.Printf("produced %d records to %s", len(records), *topic)
	}

	return printStats(records)
}

func generate(rng *rand.Rand, day time.Time, vessels, perHour int) []domain.AISRecord {
	type vessel struct {
		mmsi       int64
		hull       hull
		classB     bool
		lat, lon   float64
		status     string
		sogPresent bool
	}
	fleet := make([]vessel, vessels)
	for i := range fleet {
		fleet[i] = vessel{
			mmsi:       219000000 + int64(i+1)*101,
			hull:       hulls[rng.IntN(len(hulls))],
			classB:     rng.IntN(10) == 0,
			lat:        54.5 + rng.Float64()*3,
			lon:        8.0 + rng.Float64()*4.5,
			status:     statuses[rng.IntN(len(statuses))],
			sogPresent: rng.IntN(8) != 0,
		}
	}

	step := time.Hour / time.Duration(max(perHour, 1))
	var records []domain.AISRecord
	for t := day; t.Before(day.Add(24 * time.Hour)); t = t.Add(step) {
		for i := range fleet {
			v := &fleet[i]
			if rng.IntN(4) == 0 {
				continue // silent this interval
			}
			v.lat += (rng.Float64() - 0.5) * 0.05
			v.lon += (rng.Float64() - 0.5) * 0.08

			mobile := domain.MobileTypeClassA
			if v.classB {
				mobile = "Class B"
			}
			sog := ""
			if v.sogPresent {
				sog = strconv.FormatFloat(rng.Float64()*16, 'f', 1, 64)
			}
			ts := t.Add(time.Duration(rng.IntN(int(step / time.Second))) * time.Second)
			records = append(records, domain.AISRecord{
				Timestamp:          domain.FormatTimestamp(ts),
				MobileType:         mobile,
				MMSI:               strconv.FormatInt(v.mmsi, 10),
				Latitude:           strconv.FormatFloat(v.lat, 'f', 6, 64),
				Longitude:          strconv.FormatFloat(v.lon, 'f', 6, 64),
				NavigationalStatus: v.status,
				ROT:                "0.0",
				SOG:                sog,
				COG:                strconv.FormatFloat(rng.Float64()*360, 'f', 1, 64),
				Heading:            strconv.Itoa(rng.IntN(360)),
				ShipType:           v.hull.shipType,
				Width:              strconv.FormatFloat(v.hull.width, 'f', -1, 64),
				Length:             strconv.FormatFloat(v.hull.length, 'f', -1, 64),
			})
		}
	}
	return records
}

func writeCSV(path string, records []domain.AISRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	row := make([]string, len(header))
	for _, r := range records {
		clear(row)
		row[0], row[1], row[2], row[3], row[4] = r.Timestamp, r.MobileType, r.MMSI, r.Latitude, r.Longitude
		row[5], row[6], row[7], row[8], row[9] = r.NavigationalStatus, r.ROT, r.SOG, r.COG, r.Heading
		row[10], row[13], row[15], row[16] = "Unknown", r.ShipType, r.Width, r.Length
		row[17], row[21] = "GPS", "AIS"
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func produce(brokers []string, topic string, records []domain.AISRecord) error {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	defer w.Close()

	msgs := make([]kafkago.Message, len(records))
	for i, r := range records {
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		msgs[i] = kafkago.Message{Key: []byte(r.MMSI), Value: data}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return w.WriteMessages(ctx, msgs...)
}

func printStats(records []domain.AISRecord) error {
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2018, 11, 4, 6, 0, 0, 0, time.UTC)))
	defer domain.SetClock(nil)

	result, err := domain.Process(domain.RecordBatch{Columns: header, Records: records}, domain.DefaultOptions())
	if err != nil {
		return fmt.Errorf("process generated records: %w", err)
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Records: %d, kept: %d, vessels: %d\n", result.Stats.Records, result.Stats.Kept, result.Stats.Vessels)
	if len(result.Stats.DegenerateFields) > 0 {
		fmt.Printf("Degenerate fields: %s\n", strings.Join(result.Stats.DegenerateFields, ", "))
	}
	fmt.Println("Ranking:")
	for i, v := range result.RankedVessels {
		fmt.Printf("  %d. %d  cumulative=%.4f  reports=%d\n", i+1, v.MMSI, v.CumulativeEmissionsNorm, v.Reports)
	}
	fmt.Printf("Ranked reports after thinning: %d\n", len(result.RankedVesselReports))

	occupied := 0
	for _, b := range result.HourlyDensity.Buckets {
		if len(b) > 0 {
			occupied++
		}
	}
	fmt.Printf("Occupied hour buckets: %d/%d\n", occupied, domain.HoursPerDay)
	if n := len(result.HourlyDensity.Labels); n > 0 {
		fmt.Printf("Labels: %s .. %s\n", result.HourlyDensity.Labels[0], result.HourlyDensity.Labels[n-1])
	}
	return nil
}
