package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/couchcryptid/ais-pollution-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapMessageToFields(t *testing.T) {
	msg := kafkago.Message{
		Topic:  "raw-ais-reports",
		Offset: 42,
		Value: []byte(`{
			"# Timestamp": "03/11/2018 10:00:00",
			"Type of mobile": "Class A",
			"MMSI": 219000101,
			"Latitude": 55.5,
			"SOG": null,
			"Ship type": "Tanker"
		}`),
	}

	fields, err := mapMessageToFields(msg)
	require.NoError(t, err)

	assert.Equal(t, "03/11/2018 10:00:00", fields[domain.ColTimestamp])
	assert.Equal(t, "Class A", fields[domain.ColMobileType])
	assert.Equal(t, "219000101", fields[domain.ColMMSI])
	assert.Equal(t, "55.5", fields[domain.ColLatitude])
	assert.Empty(t, fields[domain.ColSOG])
	assert.Contains(t, fields, domain.ColSOG)
	assert.Equal(t, "Tanker", fields[domain.ColShipType])
}

func TestMapMessageToFields_ParsesIntoRecord(t *testing.T) {
	msg := kafkago.Message{Value: []byte(`{"MMSI": 219000101, "Width": 32, "Length": 183.0}`)}

	fields, err := mapMessageToFields(msg)
	require.NoError(t, err)

	raw := domain.ParseAISRecord(domain.RecordFromFields(fields))
	require.NotNil(t, raw.MMSI)
	assert.Equal(t, int64(219000101), *raw.MMSI)
	require.NotNil(t, raw.Width)
	assert.InDelta(t, 32.0, *raw.Width, 1e-9)
	require.NotNil(t, raw.Length)
	assert.InDelta(t, 183.0, *raw.Length, 1e-9)
}

func TestMapMessageToFields_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"not json", `MMSI=1`},
		{"array", `[1,2,3]`},
		{"empty", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := mapMessageToFields(kafkago.Message{Value: []byte(tt.value)})
			assert.Error(t, err)
		})
	}
}

func TestColumnSet(t *testing.T) {
	c := newColumnSet()
	c.add(map[string]string{"MMSI": "1", "Latitude": "2"})
	c.add(map[string]string{"MMSI": "3", "SOG": "4", "COG": "5"})
	c.add(map[string]string{"Latitude": "6"})

	assert.Equal(t, []string{"Latitude", "MMSI", "COG", "SOG"}, c.names)
}

func TestSerializeResult(t *testing.T) {
	now := time.Date(2018, 11, 4, 6, 0, 0, 0, time.UTC)
	result := domain.Result{
		RankedVessels: []domain.RankedVessel{
			{MMSI: 219000101, CumulativeEmissionsNorm: 1.5, Reports: 2},
		},
		RankedVesselReports: []domain.RankedVesselReport{
			{MMSI: 219000101, EmissionsNorm: 1, CumulativeEmissionsNorm: 1.5, Severity: domain.SeverityHigh},
		},
		HourlyDensity: domain.HourlyDensity{Buckets: make([][]domain.Geo, domain.HoursPerDay), Labels: []string{}},
		GeneratedAt:   now,
	}

	msgs, err := serializeResult(result)
	require.NoError(t, err)
	require.Len(t, msgs, 3)

	keys := []string{KeyRankedVessels, KeyRankedVesselReports, KeyHourlyDensity}
	for i, key := range keys {
		assert.Equal(t, []byte(key), msgs[i].Key)
		require.Len(t, msgs[i].Headers, 2)
		assert.Equal(t, "output", msgs[i].Headers[0].Key)
		assert.Equal(t, []byte(key), msgs[i].Headers[0].Value)
		assert.Equal(t, "generated_at", msgs[i].Headers[1].Key)
		assert.Equal(t, []byte("2018-11-04T06:00:00Z"), msgs[i].Headers[1].Value)
	}

	var ranked []domain.RankedVessel
	require.NoError(t, json.Unmarshal(msgs[0].Value, &ranked))
	assert.Equal(t, int64(219000101), ranked[0].MMSI)
	assert.Contains(t, string(msgs[1].Value), `"severity":"high"`)
	assert.Contains(t, string(msgs[2].Value), `"buckets":[`)
}
