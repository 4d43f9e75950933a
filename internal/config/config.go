package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Record sources.
const (
	SourceCSV   = "csv"
	SourceKafka = "kafka"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	Source     string
	InputPath  string
	OutputPath string

	TopK       int
	ThinStride int

	KafkaBrokers         []string
	KafkaSourceTopic     string
	KafkaSourcePartition int
	KafkaSinkTopic       string
	KafkaSinkEnabled     bool

	// KafkaSnapshotIdleTimeout ends a source snapshot when no message arrives
	// for this long before the end offset.
	KafkaSnapshotIdleTimeout time.Duration

	RedisURL       string
	RedisKeyPrefix string

	HTTPAddr        string
	Serve           bool
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// Mapbox geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	mapboxTimeoutStr := sharedcfg.EnvOrDefault("MAPBOX_TIMEOUT", "5s")
	mapboxTimeout, err := time.ParseDuration(mapboxTimeoutStr)
	if err != nil || mapboxTimeout <= 0 {
		return nil, fmt.Errorf("invalid MAPBOX_TIMEOUT %q", mapboxTimeoutStr)
	}

	snapshotIdleStr := sharedcfg.EnvOrDefault("KAFKA_SNAPSHOT_IDLE_TIMEOUT", "5s")
	snapshotIdle, err := time.ParseDuration(snapshotIdleStr)
	if err != nil || snapshotIdle <= 0 {
		return nil, fmt.Errorf("invalid KAFKA_SNAPSHOT_IDLE_TIMEOUT %q", snapshotIdleStr)
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	topK, err := parsePositiveInt("TOP_K", 6)
	if err != nil {
		return nil, err
	}

	thinStride, err := parsePositiveInt("THIN_STRIDE", 5)
	if err != nil {
		return nil, err
	}

	partition, err := parseNonNegativeInt("KAFKA_SOURCE_PARTITION", 0)
	if err != nil {
		return nil, err
	}

	mapboxCacheSize := parseMapboxCacheSize()

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		Source:     sharedcfg.EnvOrDefault("SOURCE", SourceCSV),
		InputPath:  os.Getenv("INPUT_PATH"),
		OutputPath: os.Getenv("OUTPUT_PATH"),
		TopK:       topK,
		ThinStride: thinStride,

		KafkaBrokers:         sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:     sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "raw-ais-reports"),
		KafkaSourcePartition: partition,
		KafkaSinkTopic:       sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "vessel-pollution-results"),
		KafkaSinkEnabled:     os.Getenv("KAFKA_SINK_ENABLED") == "true",

		KafkaSnapshotIdleTimeout: snapshotIdle,

		RedisURL:       os.Getenv("REDIS_URL"),
		RedisKeyPrefix: sharedcfg.EnvOrDefault("REDIS_KEY_PREFIX", "ais"),

		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		Serve:              os.Getenv("SERVE") == "true",
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: mapboxCacheSize,
	}

	switch cfg.Source {
	case SourceCSV:
		if cfg.InputPath == "" {
			return nil, errors.New("INPUT_PATH is required when SOURCE=csv")
		}
	case SourceKafka:
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required")
		}
		if cfg.KafkaSourceTopic == "" {
			return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
		}
	default:
		return nil, fmt.Errorf("invalid SOURCE %q: want csv or kafka", cfg.Source)
	}
	if cfg.KafkaSinkEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_SINK_TOPIC is required")
		}
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}

	return cfg, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", key, s)
	}
	return n, nil
}

func parseNonNegativeInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a non-negative integer", key, s)
	}
	return n, nil
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
