// Command validate checks a pipeline result document against the output
// invariants: ranking order and size, ranked report consistency, hourly
// density shape, and run statistics. With -input it also re-scores the source
// CSV and checks the document matches.
//
// Usage:
//
//	go run ./cmd/validate -result out/result.json -input testdata/aisdk_sample.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/couchcryptid/ais-pollution-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/ais-pollution-etl/internal/adapter/jsonfile"
	"github.com/couchcryptid/ais-pollution-etl/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	resultPath := flag.String("result", "", "path to a result JSON document")
	inputPath := flag.String("input", "", "optional source CSV to re-score and compare")
	topK := flag.Int("top-k", domain.DefaultTopK, "ranking size used for the run")
	stride := flag.Int("thin-stride", domain.DefaultThinStride, "thinning stride used for the run")
	flag.Parse()

	if *resultPath == "" {
		flag.Usage()
		os.Exit(1)
	}
	os.Exit(run(*resultPath, *inputPath, domain.Options{TopK: *topK, ThinStride: *stride}))
}

func run(resultPath, inputPath string, opts domain.Options) int {
	fmt.Println("=== AIS Pollution Result Validation ===")
	fmt.Println()

	result, err := jsonfile.ReadResult(resultPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateRanking(result, opts.TopK),
		validateRankedReports(result),
		validateHourlyDensity(result),
		validateStats(result),
	}

	if inputPath != "" {
		batch, err := loadCSV(inputPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load input: %v\n", err)
			return 1
		}
		expected, err := domain.Process(batch, opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: re-score input: %v\n", err)
			return 1
		}
		phases = append(phases, validateAgainst(result, expected))
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Result: %d ranked vessels, %d ranked reports, %d records (%d kept)\n",
		len(result.RankedVessels), len(result.RankedVesselReports), result.Stats.Records, result.Stats.Kept)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i >= 20 {
				fmt.Printf("  ... and %d more\n", len(p.errors)-20)
				break
			}
			fmt.Printf("  %s\n", e)
		}
	}

	if !allPassed {
		return 1
	}
	return 0
}

func loadCSV(path string) (domain.RecordBatch, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.RecordBatch{}, err
	}
	defer f.Close()
	return csvfile.Decode(context.Background(), f)
}
