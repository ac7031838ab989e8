package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server          ServerConfig
	Worker          WorkerConfig
	Sources         SourcesConfig
	DB              DatabaseConfig
	API             APIConfig
	Risk            RiskConfig
	DefaultLocation LocationConfig
	Logging         LoggingConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type WorkerConfig struct {
	Count      int
	BufferSize int
}

type SourcesConfig struct {
	USGSEnabled      bool
	USGSBaseURL      string
	USGSPollInterval time.Duration
	TMDEnabled       bool
	TMDURL           string
	TMDPollInterval  time.Duration
}

type DatabaseConfig struct {
	Path          string
	RetentionDays int
}

type APIConfig struct {
	RateLimitRPS int
}

type RiskConfig struct {
	RadiusKm   float64
	WindowDays int
}

// LocationConfig is the fallback visitor location used when every
// geolocation provider fails. Defaults to Bangkok.
type LocationConfig struct {
	Latitude  float64
	Longitude float64
	City      string
	Region    string
	Country   string
	Timezone  string
}

type LoggingConfig struct {
	Level string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "localhost"),
			Port: getEnvInt("SERVER_PORT", 8080),
		},
		Worker: WorkerConfig{
			Count:      getEnvInt("WORKER_COUNT", 2),
			BufferSize: getEnvInt("WORKER_BUFFER_SIZE", 100),
		},
		Sources: SourcesConfig{
			USGSEnabled:      getEnvBool("USGS_ENABLED", true),
			USGSBaseURL:      getEnv("USGS_BASE_URL", "https://earthquake.usgs.gov/fdsnws/event/1"),
			USGSPollInterval: getEnvDuration("USGS_POLL_INTERVAL", 5*time.Minute),
			TMDEnabled:       getEnvBool("TMD_ENABLED", true),
			TMDURL:           getEnv("TMD_URL", "https://data.tmd.go.th/api/DailySeismicEvent/v1/?uid=api&ukey=api12345"),
			TMDPollInterval:  getEnvDuration("TMD_POLL_INTERVAL", 10*time.Minute),
		},
		DB: DatabaseConfig{
			Path:          getEnv("DB_PATH", "./data/quakewatch.db"),
			RetentionDays: getEnvInt("DB_RETENTION_DAYS", 90),
		},
		API: APIConfig{
			RateLimitRPS: getEnvInt("RATE_LIMIT_RPS", 5),
		},
		Risk: RiskConfig{
			RadiusKm:   getEnvFloat("RISK_RADIUS_KM", 500),
			WindowDays: getEnvInt("RISK_WINDOW_DAYS", 365),
		},
		DefaultLocation: LocationConfig{
			Latitude:  getEnvFloat("DEFAULT_LAT", 13.7563),
			Longitude: getEnvFloat("DEFAULT_LNG", 100.5018),
			City:      getEnv("DEFAULT_CITY", "Bangkok"),
			Region:    getEnv("DEFAULT_REGION", "Bangkok"),
			Country:   getEnv("DEFAULT_COUNTRY", "Thailand"),
			Timezone:  getEnv("DEFAULT_TIMEZONE", "Asia/Bangkok"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Sources.USGSPollInterval < time.Minute {
		return fmt.Errorf("USGS poll interval must be at least 1 minute")
	}
	if c.Sources.TMDPollInterval < time.Minute {
		return fmt.Errorf("TMD poll interval must be at least 1 minute")
	}

	if c.Risk.RadiusKm <= 0 {
		return fmt.Errorf("risk radius must be positive: %g", c.Risk.RadiusKm)
	}
	if c.Risk.WindowDays <= 0 {
		return fmt.Errorf("risk window must be positive: %d", c.Risk.WindowDays)
	}
	if c.DB.RetentionDays < 1 {
		return fmt.Errorf("retention must be at least 1 day: %d", c.DB.RetentionDays)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
