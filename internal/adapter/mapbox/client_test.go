package mapbox

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/ais-pollution-etl/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "test-token"

func testClient(baseURL string, metrics *observability.Metrics) *Client {
	return &Client{
		token:      testToken,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		metrics:    metrics,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestClient_ReverseGeocode_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// lon,lat order in the path.
		assert.True(t, strings.HasSuffix(r.URL.Path, "/10.580000,57.720000.json"), r.URL.Path)
		assert.Equal(t, testToken, r.URL.Query().Get("access_token"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(featureCollection{
			Features: []feature{{
				Center:    []float64{10.5833, 57.7167},
				PlaceName: "Skagen, North Denmark, Denmark",
				Text:      "Skagen",
				Relevance: 1,
			}},
		}))
	}))
	defer srv.Close()

	m := observability.NewMetricsForTesting()
	result, err := testClient(srv.URL, m).ReverseGeocode(context.Background(), 57.72, 10.58)
	require.NoError(t, err)

	assert.Equal(t, "Skagen, North Denmark, Denmark", result.FormattedAddress)
	assert.Equal(t, "Skagen", result.PlaceName)
	assert.InDelta(t, 57.7167, result.Lat, 1e-9)
	assert.InDelta(t, 10.5833, result.Lon, 1e-9)
	assert.InDelta(t, 1.0, result.Confidence, 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.GeocodeRequests.WithLabelValues("success")), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(m.GeocodeAPIDuration))
}

func TestClient_ReverseGeocode_OpenWater(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"features":[]}`))
	}))
	defer srv.Close()

	m := observability.NewMetricsForTesting()
	result, err := testClient(srv.URL, m).ReverseGeocode(context.Background(), 56.0, 7.0)
	require.NoError(t, err)

	assert.Empty(t, result.FormattedAddress)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.GeocodeRequests.WithLabelValues("empty")), 0)
}

func TestClient_ReverseGeocode_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr string
	}{
		{
			name: "api error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"message":"Not Authorized"}`))
			},
			wantErr: "status 401",
		},
		{
			name: "bad json",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"features":`))
			},
			wantErr: "decode response",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			m := observability.NewMetricsForTesting()
			_, err := testClient(srv.URL, m).ReverseGeocode(context.Background(), 55.0, 11.0)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.InDelta(t, 1.0, testutil.ToFloat64(m.GeocodeRequests.WithLabelValues("error")), 0)
		})
	}
}

func TestClient_ReverseGeocode_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"features":[]}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testClient(srv.URL, nil).ReverseGeocode(ctx, 55.0, 11.0)
	require.ErrorIs(t, err, context.Canceled)
}
