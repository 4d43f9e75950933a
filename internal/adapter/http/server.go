package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/couchcryptid/ais-pollution-etl/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ResultProvider exposes the most recent pipeline result.
type ResultProvider interface {
	sharedobs.ReadinessChecker
	Latest() (domain.Result, bool)
}

// Server exposes health, metrics, and read-only result endpoints.
type Server struct {
	httpServer *http.Server
	results    ResultProvider
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and the
// /v1 result routes.
func NewServer(addr string, results ResultProvider, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		results: results,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(results))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /v1/vessels/top", s.handleTopVessels)
	mux.HandleFunc("GET /v1/vessels/top/reports", s.handleTopReports)
	mux.HandleFunc("GET /v1/density/hourly", s.handleHourlyDensity)
	mux.HandleFunc("GET /v1/stats", s.handleStats)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type topVesselsResponse struct {
	GeneratedAt time.Time             `json:"generated_at"`
	Vessels     []domain.RankedVessel `json:"vessels"`
}

type topReportsResponse struct {
	GeneratedAt time.Time                   `json:"generated_at"`
	Reports     []domain.RankedVesselReport `json:"reports"`
}

type densityResponse struct {
	GeneratedAt time.Time `json:"generated_at"`
	domain.HourlyDensity
}

type bucketResponse struct {
	GeneratedAt time.Time    `json:"generated_at"`
	Hour        int          `json:"hour"`
	Label       string       `json:"label,omitempty"`
	Points      []domain.Geo `json:"points"`
}

func (s *Server) handleTopVessels(w http.ResponseWriter, _ *http.Request) {
	result, ok := s.latest(w)
	if !ok {
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, topVesselsResponse{
		GeneratedAt: result.GeneratedAt,
		Vessels:     result.RankedVessels,
	})
}

// handleTopReports serves the thinned ranked reports, optionally narrowed to
// one vessel with ?mmsi=.
func (s *Server) handleTopReports(w http.ResponseWriter, r *http.Request) {
	result, ok := s.latest(w)
	if !ok {
		return
	}

	reports := result.RankedVesselReports
	if q := r.URL.Query().Get("mmsi"); q != "" {
		mmsi, err := strconv.ParseInt(q, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid mmsi")
			return
		}
		filtered := make([]domain.RankedVesselReport, 0)
		for _, rep := range reports {
			if rep.MMSI == mmsi {
				filtered = append(filtered, rep)
			}
		}
		reports = filtered
	}

	sharedobs.WriteJSON(w, http.StatusOK, topReportsResponse{
		GeneratedAt: result.GeneratedAt,
		Reports:     reports,
	})
}

// handleHourlyDensity serves all 24 buckets, or a single one with ?hour=1..24.
func (s *Server) handleHourlyDensity(w http.ResponseWriter, r *http.Request) {
	result, ok := s.latest(w)
	if !ok {
		return
	}

	q := r.URL.Query().Get("hour")
	if q == "" {
		sharedobs.WriteJSON(w, http.StatusOK, densityResponse{
			GeneratedAt:   result.GeneratedAt,
			HourlyDensity: result.HourlyDensity,
		})
		return
	}

	hour, err := strconv.Atoi(q)
	if err != nil || hour < 1 || hour > domain.HoursPerDay || hour > len(result.HourlyDensity.Buckets) {
		writeError(w, http.StatusBadRequest, "hour must be between 1 and 24")
		return
	}
	resp := bucketResponse{
		GeneratedAt: result.GeneratedAt,
		Hour:        hour,
		Points:      result.HourlyDensity.Buckets[hour-1],
	}
	if hour <= len(result.HourlyDensity.Labels) {
		resp.Label = result.HourlyDensity.Labels[hour-1]
	}
	sharedobs.WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	result, ok := s.latest(w)
	if !ok {
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, result.Stats)
}

func (s *Server) latest(w http.ResponseWriter) (domain.Result, bool) {
	result, ok := s.results.Latest()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no result available yet")
		return domain.Result{}, false
	}
	return result, true
}

func writeError(w http.ResponseWriter, status int, msg string) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": msg})
}
