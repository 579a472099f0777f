// Package config loads service settings from the environment (and an
// optional .env file) plus the channel catalog.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	SourceThingSpeak = "thingspeak"
	SourceCSV        = "csv"

	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreFile   = "file"
)

type Config struct {
	HTTPAddr  string
	LogLevel  string
	LogPretty bool

	SourceKind          string
	ThingSpeakURL       string
	ThingSpeakChannelID string
	ThingSpeakAPIKey    string
	SourceResults       int
	MasterCSVPath       string

	ForecastStore string
	RedisAddr     string
	ArtifactDir   string
	GraphDir      string

	Horizon          int
	Step             time.Duration
	ForecastInterval time.Duration
	DisplayInterval  time.Duration
	PadFraction      float64
	DiscreteMargin   float64

	KafkaBrokers []string
	KafkaTopic   string

	CatalogPath string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := &Config{
		HTTPAddr:  getEnv("HTTP_ADDR", ":8080"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: getEnvAsBool("LOG_PRETTY", false),

		SourceKind:          strings.ToLower(getEnv("SOURCE_KIND", SourceThingSpeak)),
		ThingSpeakURL:       getEnv("THINGSPEAK_URL", "https://api.thingspeak.com"),
		ThingSpeakChannelID: getEnv("THINGSPEAK_CHANNEL_ID", ""),
		ThingSpeakAPIKey:    getEnv("THINGSPEAK_API_KEY", ""),
		SourceResults:       getEnvAsInt("SOURCE_RESULTS", 100),
		MasterCSVPath:       getEnv("MASTER_CSV_PATH", "Master_Sensor_Data.csv"),

		ForecastStore: strings.ToLower(getEnv("FORECAST_STORE", StoreMemory)),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		ArtifactDir:   getEnv("ARTIFACT_DIR", "./artifacts"),
		GraphDir:      getEnv("GRAPH_DIR", ""),

		Horizon:          getEnvAsInt("FORECAST_HORIZON", 5),
		Step:             getEnvAsDuration("FORECAST_STEP", time.Minute),
		ForecastInterval: getEnvAsDuration("FORECAST_INTERVAL", 5*time.Minute),
		DisplayInterval:  getEnvAsDuration("DISPLAY_INTERVAL", time.Minute),
		PadFraction:      getEnvAsFloat("PAD_FRACTION", 0.1),
		DiscreteMargin:   getEnvAsFloat("DISCRETE_MARGIN", 1),

		KafkaBrokers: getEnvAsList("KAFKA_BROKERS"),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "greenhouse.forecasts"),

		CatalogPath: getEnv("CATALOG_PATH", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.SourceKind {
	case SourceThingSpeak:
		if c.ThingSpeakChannelID == "" {
			return fmt.Errorf("THINGSPEAK_CHANNEL_ID is required for the thingspeak source")
		}
	case SourceCSV:
		if c.MasterCSVPath == "" {
			return fmt.Errorf("MASTER_CSV_PATH is required for the csv source")
		}
	default:
		return fmt.Errorf("unknown SOURCE_KIND %q", c.SourceKind)
	}

	switch c.ForecastStore {
	case StoreMemory, StoreRedis, StoreFile:
	default:
		return fmt.Errorf("unknown FORECAST_STORE %q", c.ForecastStore)
	}

	if c.Horizon <= 0 {
		return fmt.Errorf("FORECAST_HORIZON must be positive")
	}
	if c.Step <= 0 || c.ForecastInterval <= 0 || c.DisplayInterval <= 0 {
		return fmt.Errorf("FORECAST_STEP, FORECAST_INTERVAL and DISPLAY_INTERVAL must be positive")
	}
	if c.PadFraction < 0 || c.DiscreteMargin < 0 {
		return fmt.Errorf("PAD_FRACTION and DISCRETE_MARGIN must not be negative")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
