package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/ais-pollution-etl/internal/adapter/csvfile"
	httpadapter "github.com/couchcryptid/ais-pollution-etl/internal/adapter/http"
	"github.com/couchcryptid/ais-pollution-etl/internal/adapter/jsonfile"
	kafkaadapter "github.com/couchcryptid/ais-pollution-etl/internal/adapter/kafka"
	"github.com/couchcryptid/ais-pollution-etl/internal/adapter/mapbox"
	redisadapter "github.com/couchcryptid/ais-pollution-etl/internal/adapter/redis"
	"github.com/couchcryptid/ais-pollution-etl/internal/config"
	"github.com/couchcryptid/ais-pollution-etl/internal/domain"
	"github.com/couchcryptid/ais-pollution-etl/internal/observability"
	"github.com/couchcryptid/ais-pollution-etl/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, metrics); err != nil {
		logger.Error("run failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) error {
	// Geocoding is feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN.
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	var extractor pipeline.Extractor
	switch cfg.Source {
	case config.SourceKafka:
		extractor = kafkaadapter.NewReader(cfg, logger)
	default:
		extractor = csvfile.NewReader(cfg.InputPath, logger)
	}

	var loaders []pipeline.Loader
	if cfg.OutputPath != "" {
		loaders = append(loaders, jsonfile.NewWriter(cfg.OutputPath, logger))
	}
	if cfg.KafkaSinkEnabled {
		writer := kafkaadapter.NewWriter(cfg, logger)
		defer closeLogged(logger, "kafka writer", writer.Close)
		loaders = append(loaders, writer)
	}
	if cfg.RedisURL != "" {
		publisher, err := redisadapter.NewPublisher(cfg.RedisURL, cfg.RedisKeyPrefix, logger)
		if err != nil {
			return err
		}
		defer closeLogged(logger, "redis client", publisher.Close)
		if err := publisher.Ping(ctx); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		loaders = append(loaders, publisher)
	}
	if len(loaders) == 0 && !cfg.Serve {
		logger.Warn("no sink configured; result is only logged")
	}

	opts := domain.Options{TopK: cfg.TopK, ThinStride: cfg.ThinStride}
	p := pipeline.New(extractor, pipeline.NewTransformer(opts, geocoder, logger), loaders, logger, metrics)

	var srv *httpadapter.Server
	if cfg.Serve {
		srv = httpadapter.NewServer(cfg.HTTPAddr, p, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
	}

	logger.Info("pipeline run starting", "source", cfg.Source, "top_k", opts.TopK, "thin_stride", opts.ThinStride)
	if _, err := p.Run(ctx); err != nil {
		if srv == nil {
			return err
		}
		// Keep serving whatever was scored; readiness reports the gap.
		logger.Error("pipeline run failed", "error", err)
	}

	if srv == nil {
		return nil
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	logger.Info("shutdown complete")
	return nil
}

func closeLogged(logger *slog.Logger, name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logger.Error("close failed", "component", name, "error", err)
	}
}
