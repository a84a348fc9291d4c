package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"

	"github.com/couchcryptid/flood-risk-etl/internal/domain"
	"github.com/couchcryptid/flood-risk-etl/internal/hydrology"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// Mapbox geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int

	// Flood scenario applied to every district.
	SoilClass        hydrology.SoilClass
	CatchmentAreaKm2 float64
	SimulationHours  int
	SimulationSeed   uint64
	RainfallBasis    domain.RainfallBasis
}

// Load reads configuration from environment variables, applying defaults where unset.
// Variables from an optional .env file in the working directory fill in
// anything the process environment leaves unset.
func Load() (*Config, error) {
	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	mapboxTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("MAPBOX_TIMEOUT", "5s"))
	if err != nil || mapboxTimeout <= 0 {
		return nil, errors.New("invalid MAPBOX_TIMEOUT")
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	flood, err := loadFlood()
	if err != nil {
		return nil, err
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "raw-rainfall-rows"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "district-flood-reports"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "flood-risk-etl"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: parseMapboxCacheSize(),

		SoilClass:        flood.SoilClass,
		CatchmentAreaKm2: flood.CatchmentAreaKm2,
		SimulationHours:  flood.DurationHours,
		SimulationSeed:   flood.seed,
		RainfallBasis:    flood.Basis,
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}

	return cfg, nil
}

// FloodParams returns the per-district scenario settings.
func (c *Config) FloodParams() domain.FloodParams {
	return domain.FloodParams{
		Basis:            c.RainfallBasis,
		SoilClass:        c.SoilClass,
		CatchmentAreaKm2: c.CatchmentAreaKm2,
		DurationHours:    c.SimulationHours,
	}
}

type floodSettings struct {
	domain.FloodParams
	seed uint64
}

func loadFlood() (floodSettings, error) {
	var fs floodSettings

	// SOIL_CLASS is deliberately lenient: unknown classes fall back to medium.
	fs.SoilClass = hydrology.ParseSoilClass(sharedcfg.EnvOrDefault("SOIL_CLASS", "medium"))

	area, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("CATCHMENT_AREA_KM2", "100"), 64)
	if err != nil || !(area > 0) || math.IsInf(area, 0) {
		return fs, errors.New("invalid CATCHMENT_AREA_KM2: must be a positive finite number")
	}
	fs.CatchmentAreaKm2 = area

	hours, err := strconv.Atoi(sharedcfg.EnvOrDefault("SIMULATION_HOURS", strconv.Itoa(hydrology.DefaultDurationHours)))
	if err != nil || hours <= 0 || hours > hydrology.MaxDurationHours {
		return fs, fmt.Errorf("invalid SIMULATION_HOURS: must be an integer in 1..%d", hydrology.MaxDurationHours)
	}
	fs.DurationHours = hours

	seed, err := strconv.ParseUint(strings.TrimSpace(sharedcfg.EnvOrDefault("SIMULATION_SEED", "0")), 10, 64)
	if err != nil {
		return fs, fmt.Errorf("invalid SIMULATION_SEED: %w", err)
	}
	fs.seed = seed

	basis, err := domain.ParseRainfallBasis(sharedcfg.EnvOrDefault("RAINFALL_BASIS", string(domain.BasisMonsoon)))
	if err != nil {
		return fs, fmt.Errorf("invalid RAINFALL_BASIS: %w", err)
	}
	fs.Basis = basis

	return fs, nil
}

// LoadDotEnv reads path into the environment without overriding variables
// that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
