// Package config loads application configuration from the environment
// (optionally seeded by a .env file) and detector tuning from an
// optional YAML file.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Stockmasterflex/legend-ai-scanner/vcp"
)

// Config holds application configuration.
type Config struct {
	// HTTP API
	APIPort    int
	AdminToken string

	// Database configuration
	DatabaseHost     string
	DatabasePort     string
	DatabaseName     string
	DatabaseUser     string
	DatabasePassword string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string

	// Market data provider
	MarketDataBaseURL string
	MarketDataAPIKey  string

	// Scan configuration
	UniversePath    string
	ScanAt          string // HH:MM local time for the daily scan
	ScanConcurrency int
	WebhookURLs     []string

	// Detector thresholds
	Detector vcp.DetectorConfig
}

// LoadFromEnv loads configuration from environment variables, reading a
// .env file first when present. Detector thresholds start from the
// library defaults and may be overridden by the YAML file named in
// DETECTOR_CONFIG_PATH.
func LoadFromEnv() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		APIPort:    getEnvIntOrDefault("API_PORT", 8000),
		AdminToken: os.Getenv("ADMIN_TOKEN"),

		DatabaseHost:     getEnvOrDefault("DB_HOST", "localhost"),
		DatabasePort:     getEnvOrDefault("DB_PORT", "5432"),
		DatabaseName:     getEnvOrDefault("DB_NAME", "legend_ai"),
		DatabaseUser:     getEnvOrDefault("DB_USER", "legend"),
		DatabasePassword: getEnvOrDefault("DB_PASSWORD", "legend"),

		RedisHost:     getEnvOrDefault("REDIS_HOST", "localhost"),
		RedisPort:     getEnvOrDefault("REDIS_PORT", "6379"),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),

		MarketDataBaseURL: getEnvOrDefault("MARKET_DATA_URL", "https://api.polygon.io"),
		MarketDataAPIKey:  os.Getenv("MARKET_DATA_API_KEY"),

		UniversePath:    getEnvOrDefault("UNIVERSE_PATH", "data/universe.csv"),
		ScanAt:          getEnvOrDefault("SCAN_AT", "13:30"),
		ScanConcurrency: getEnvIntOrDefault("SCAN_CONCURRENCY", 4),
		WebhookURLs:     splitCSV(os.Getenv("WEBHOOK_URLS")),

		Detector: vcp.DefaultConfig(),
	}

	tuningPath := getEnvOrDefault("DETECTOR_CONFIG_PATH", "config/detector.yaml")
	if detector, err := loadDetectorTuning(tuningPath, cfg.Detector); err != nil {
		log.Printf("⚠️  Ignoring detector tuning file %s: %v", tuningPath, err)
	} else {
		cfg.Detector = detector
	}

	return cfg
}

// loadDetectorTuning overlays thresholds from a YAML file on top of the
// provided defaults. A missing file leaves the defaults untouched.
func loadDetectorTuning(path string, base vcp.DetectorConfig) (vcp.DetectorConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return base, nil
		}
		return base, err
	}
	if err := yaml.Unmarshal(data, &base); err != nil {
		return vcp.DefaultConfig(), fmt.Errorf("parse detector tuning: %w", err)
	}
	if err := validateDetector(base); err != nil {
		return vcp.DefaultConfig(), err
	}
	log.Printf("✅ Loaded detector tuning from %s", path)
	return base, nil
}

func validateDetector(cfg vcp.DetectorConfig) error {
	if cfg.MinContractions < 1 || cfg.MaxContractions < cfg.MinContractions {
		return fmt.Errorf("contraction bounds invalid: min=%d max=%d", cfg.MinContractions, cfg.MaxContractions)
	}
	if cfg.SwingWindow < 1 {
		return fmt.Errorf("swing window must be positive, got %d", cfg.SwingWindow)
	}
	if cfg.DecreasingRatioThreshold < 0 || cfg.DecreasingRatioThreshold > 1 {
		return fmt.Errorf("decreasing ratio must be in [0,1], got %v", cfg.DecreasingRatioThreshold)
	}
	if cfg.MaxBaseDepth <= 0 || cfg.FinalContractionMax <= 0 {
		return fmt.Errorf("depth limits must be positive")
	}
	return nil
}

func splitCSV(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvIntOrDefault returns an integer environment variable or a default
func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
		log.Printf("⚠️  Invalid value for %s: %s (using default %d)", key, value, defaultValue)
	}
	return defaultValue
}
