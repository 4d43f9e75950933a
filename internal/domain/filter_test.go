package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTimestamp = "03/11/2018 10:00:00"

func TestCheckSchema(t *testing.T) {
	t.Run("all columns present", func(t *testing.T) {
		cols := append([]string{"IMO", "Callsign"}, RequiredColumns...)
		assert.NoError(t, CheckSchema(cols))
	})

	t.Run("missing columns reported", func(t *testing.T) {
		cols := []string{ColTimestamp, ColMMSI, ColLatitude, ColLongitude}
		err := CheckSchema(cols)
		require.Error(t, err)

		var schemaErr *SchemaError
		require.True(t, errors.As(err, &schemaErr))
		assert.Contains(t, schemaErr.Missing, ColSOG)
		assert.Contains(t, schemaErr.Missing, ColShipType)
		assert.NotContains(t, schemaErr.Missing, ColMMSI)
		assert.Contains(t, err.Error(), "Ship type")
	})

	t.Run("empty schema", func(t *testing.T) {
		var schemaErr *SchemaError
		require.ErrorAs(t, CheckSchema(nil), &schemaErr)
		assert.Len(t, schemaErr.Missing, len(RequiredColumns))
	})
}

func TestKeep(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *RawReport)
		want   bool
	}{
		{"valid", func(*RawReport) {}, true},
		{"class B passenger dropped", func(r *RawReport) { r.MobileType = "Class B"; r.ShipType = ShipTypePassenger }, false},
		{"base station dropped", func(r *RawReport) { r.MobileType = "Base Station" }, false},
		{"moored dropped", func(r *RawReport) { r.NavigationalStatus = "Moored" }, false},
		{"at anchor dropped", func(r *RawReport) { r.NavigationalStatus = "At anchor" }, false},
		{"fishing status kept", func(r *RawReport) { r.NavigationalStatus = StatusEngagedInFishing }, true},
		{"restricted kept", func(r *RawReport) { r.NavigationalStatus = StatusRestrictedManeuverability }, true},
		{"pleasure craft dropped", func(r *RawReport) { r.ShipType = "Pleasure" }, false},
		{"undefined ship type dropped", func(r *RawReport) { r.ShipType = "Undefined" }, false},
		{"anti-pollution kept", func(r *RawReport) { r.ShipType = ShipTypeAntiPollution }, true},
		{"case sensitive ship type", func(r *RawReport) { r.ShipType = "cargo" }, false},
		{"missing mmsi", func(r *RawReport) { r.MMSI = nil }, false},
		{"missing latitude", func(r *RawReport) { r.Latitude = nil }, false},
		{"missing longitude", func(r *RawReport) { r.Longitude = nil }, false},
		{"missing width", func(r *RawReport) { r.Width = nil }, false},
		{"missing length", func(r *RawReport) { r.Length = nil }, false},
		{"no motion fields", func(r *RawReport) { r.SOG = nil }, false},
		{"heading only", func(r *RawReport) { r.SOG = nil; r.Heading = f64(90) }, true},
		{"rot only", func(r *RawReport) { r.SOG = nil; r.ROT = f64(0) }, true},
		{"cog only", func(r *RawReport) { r.SOG = nil; r.COG = f64(12.5) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRaw(219000123, testTimestamp)
			tt.mutate(&r)
			assert.Equal(t, tt.want, Keep(r))
		})
	}
}

func TestFilter(t *testing.T) {
	classB := validRaw(3, testTimestamp)
	classB.MobileType = "Class B"
	noPos := validRaw(4, testTimestamp)
	noPos.Latitude = nil

	in := []RawReport{
		validRaw(1, "03/11/2018 00:15:00"),
		classB,
		noPos,
		validRaw(2, "03/11/2018 23:50:00"),
	}

	out, err := Filter(in)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, int64(1), out[0].MMSI)
	assert.Equal(t, int64(2), out[1].MMSI)
	assert.Equal(t, mustTime("03/11/2018 23:50:00"), out[1].Timestamp)
	assert.Equal(t, 55.5, out[0].Latitude)
	assert.Equal(t, 20.0, out[0].Width)
	require.NotNil(t, out[0].SOG)
	assert.Equal(t, 8.5, *out[0].SOG)

	// input untouched
	assert.Len(t, in, 4)
	assert.Nil(t, in[2].Latitude)
	assert.Equal(t, "Class B", in[1].MobileType)
}

func TestFilter_SurvivorsSatisfyInvariants(t *testing.T) {
	var in []RawReport
	for i := int64(0); i < 40; i++ {
		r := validRaw(i, testTimestamp)
		switch i % 5 {
		case 1:
			r.Width = nil
		case 2:
			r.SOG = nil
		case 3:
			r.SOG, r.COG = nil, f64(10)
		case 4:
			r.ShipType = "Sailing"
		}
		in = append(in, r)
	}

	out, err := Filter(in)
	require.NoError(t, err)
	assert.Len(t, out, 16)
	for _, r := range out {
		assert.NotZero(t, r.Width)
		assert.NotZero(t, r.Length)
		assert.Contains(t, ShipTypeWeights, r.ShipType)
		assert.Contains(t, ActivityWeights, r.NavigationalStatus)
	}
}

func TestFilter_SOGIsCopied(t *testing.T) {
	in := []RawReport{validRaw(1, testTimestamp)}
	out, err := Filter(in)
	require.NoError(t, err)

	*out[0].SOG = 99
	assert.Equal(t, 8.5, *in[0].SOG)
}

func TestFilter_InvalidTimestamp(t *testing.T) {
	t.Run("survivor with bad timestamp aborts", func(t *testing.T) {
		_, err := Filter([]RawReport{validRaw(7, "2018-11-03 10:00")})
		require.Error(t, err)

		var tsErr *TimestampError
		require.ErrorAs(t, err, &tsErr)
		assert.Equal(t, int64(7), tsErr.MMSI)
		assert.Equal(t, "2018-11-03 10:00", tsErr.Value)
	})

	t.Run("dropped row with bad timestamp is ignored", func(t *testing.T) {
		r := validRaw(7, "garbage")
		r.MobileType = "Class B"
		out, err := Filter([]RawReport{r})
		require.NoError(t, err)
		assert.Empty(t, out)
	})
}

func TestInconsistentVessels(t *testing.T) {
	mk := func(mmsi int64, width, length float64) VesselReport {
		return VesselReport{MMSI: mmsi, Width: width, Length: length}
	}
	reports := []VesselReport{
		mk(30, 10, 50),
		mk(10, 20, 100),
		mk(10, 20, 100),
		mk(30, 10, 55),
		mk(20, 5, 30),
		mk(20, 6, 30),
	}

	assert.Equal(t, []int64{20, 30}, InconsistentVessels(reports))
	assert.Empty(t, InconsistentVessels(reports[1:3]))
}
