package redis

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/ais-pollution-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKeySet(t *testing.T) {
	keys := newKeySet("ais")

	assert.Equal(t, "ais:ranking", keys.Ranking)
	assert.Equal(t, "ais:ranked_reports", keys.Reports)
	assert.Equal(t, "ais:hourly_density", keys.Density)
	assert.Equal(t, "ais:stats", keys.Stats)
	assert.Equal(t, "ais:results", keys.Channel)
}

func TestBuildPayloads(t *testing.T) {
	keys := newKeySet("test")
	result := domain.Result{
		RankedVessels:       []domain.RankedVessel{{MMSI: 219000101, CumulativeEmissionsNorm: 2}},
		RankedVesselReports: []domain.RankedVesselReport{},
		HourlyDensity:       domain.HourlyDensity{Buckets: make([][]domain.Geo, domain.HoursPerDay), Labels: []string{}},
		Stats:               domain.Stats{Records: 10, Kept: 4, Vessels: 1},
		GeneratedAt:         time.Date(2018, 11, 4, 6, 0, 0, 0, time.UTC),
	}

	payloads, err := buildPayloads(keys, result)
	require.NoError(t, err)
	require.Len(t, payloads, 4)

	var ranked []domain.RankedVessel
	require.NoError(t, json.Unmarshal(payloads[keys.Ranking], &ranked))
	require.Len(t, ranked, 1)
	assert.Equal(t, int64(219000101), ranked[0].MMSI)

	assert.JSONEq(t, `[]`, string(payloads[keys.Reports]))
	assert.JSONEq(t, `{"records":10,"kept":4,"vessels":1}`, string(payloads[keys.Stats]))
	assert.Contains(t, string(payloads[keys.Density]), `"labels":[]`)
}

func TestNewPublisher_InvalidURL(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := NewPublisher("http://localhost:6379", "ais", logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_URL")

	p, err := NewPublisher("redis://localhost:6379/2", "ais", logger)
	require.NoError(t, err)
	assert.Equal(t, "ais:results", p.keys.Channel)
	require.NoError(t, p.Close())
}
