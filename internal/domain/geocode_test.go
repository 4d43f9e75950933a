package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockGeocoder struct {
	results map[float64]GeocodingResult
	err     error
	calls   int
}

func (m *mockGeocoder) ReverseGeocode(_ context.Context, lat, _ float64) (GeocodingResult, error) {
	m.calls++
	if m.err != nil {
		return GeocodingResult{}, m.err
	}
	return m.results[lat], nil
}

func rankedFixture() []RankedVessel {
	return []RankedVessel{
		{MMSI: 1, LastPosition: Geo{Lat: 55.7, Lon: 12.6}},
		{MMSI: 2, LastPosition: Geo{Lat: 57.1, Lon: 9.9}},
	}
}

func TestEnrichWithGeocoding_NilGeocoder(t *testing.T) {
	in := rankedFixture()
	out := EnrichWithGeocoding(context.Background(), in, nil, discardLogger())

	assert.Equal(t, in, out)
	assert.Empty(t, out[0].GeoSource)
}

func TestEnrichWithGeocoding_Reverse(t *testing.T) {
	geo := &mockGeocoder{results: map[float64]GeocodingResult{
		55.7: {FormattedAddress: "Copenhagen, Denmark", PlaceName: "Copenhagen", Confidence: 0.9},
	}}
	in := rankedFixture()

	out := EnrichWithGeocoding(context.Background(), in, geo, discardLogger())

	require.Len(t, out, 2)
	assert.Equal(t, 2, geo.calls)
	assert.Equal(t, "Copenhagen", out[0].PlaceName)
	assert.Equal(t, "Copenhagen, Denmark", out[0].FormattedAddress)
	assert.Equal(t, GeoSourceReverse, out[0].GeoSource)
	assert.Equal(t, GeoSourceOriginal, out[1].GeoSource, "open sea has no place")
	assert.Empty(t, in[0].GeoSource, "input not modified")
}

func TestEnrichWithGeocoding_Failure(t *testing.T) {
	geo := &mockGeocoder{err: errors.New("timeout")}

	out := EnrichWithGeocoding(context.Background(), rankedFixture(), geo, discardLogger())

	for _, v := range out {
		assert.Equal(t, GeoSourceFailed, v.GeoSource)
		assert.Empty(t, v.PlaceName)
	}
}
