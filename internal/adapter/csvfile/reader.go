package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/couchcryptid/ais-pollution-etl/internal/domain"
)

// Reader loads a Danish Maritime Authority AIS CSV export.
// It implements pipeline.Extractor.
type Reader struct {
	path   string
	logger *slog.Logger
}

// NewReader creates a Reader for the CSV file at path.
func NewReader(path string, logger *slog.Logger) *Reader {
	return &Reader{path: path, logger: logger}
}

// Extract reads the whole file. The header row becomes the batch schema;
// columns the pipeline does not use are ignored.
func (r *Reader) Extract(ctx context.Context) (domain.RecordBatch, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return domain.RecordBatch{}, fmt.Errorf("open ais csv: %w", err)
	}
	defer f.Close()

	batch, err := Decode(ctx, f)
	if err != nil {
		return domain.RecordBatch{}, fmt.Errorf("%s: %w", r.path, err)
	}
	r.logger.Info("ais csv loaded", "path", r.path, "records", len(batch.Records), "columns", len(batch.Columns))
	return batch, nil
}

// Decode parses CSV content with a header row into a RecordBatch. An input
// with no header at all yields an empty batch.
func Decode(ctx context.Context, src io.Reader) (domain.RecordBatch, error) {
	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return domain.RecordBatch{}, nil
	}
	if err != nil {
		return domain.RecordBatch{}, fmt.Errorf("read header: %w", err)
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	var records []domain.AISRecord
	fields := make(map[string]string, len(columns))
	for line := 2; ; line++ {
		if line%10000 == 0 && ctx.Err() != nil {
			return domain.RecordBatch{}, ctx.Err()
		}
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.RecordBatch{}, fmt.Errorf("read line %d: %w", line, err)
		}
		clear(fields)
		for i, col := range columns {
			if i < len(row) {
				fields[col] = row[i]
			}
		}
		records = append(records, domain.RecordFromFields(fields))
	}

	return domain.RecordBatch{Columns: columns, Records: records}, nil
}
