package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	DEM       DEMConfig       `mapstructure:"dem"`
	Session   SessionConfig   `mapstructure:"session"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

// DEMConfig describes the elevation API request and where rasters land.
type DEMConfig struct {
	Endpoint     string  `mapstructure:"endpoint"`
	Dataset      string  `mapstructure:"dataset"`
	OutputFormat string  `mapstructure:"output_format"`
	OutputPath   string  `mapstructure:"output_path"`
	Timeout      int     `mapstructure:"timeout"`
	MaxAreaKm2   float64 `mapstructure:"max_area_km2"`
}

// RequestTimeout returns the upstream request timeout.
func (d DEMConfig) RequestTimeout() time.Duration {
	return time.Duration(d.Timeout) * time.Second
}

// SessionConfig selects where the per-session bounding box lives.
type SessionConfig struct {
	Store string `mapstructure:"store"` // memory | valkey
	TTL   int    `mapstructure:"ttl"`
}

type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Enabled bool   `mapstructure:"enabled"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 150)
	v.SetDefault("dem.endpoint", "https://portal.opentopography.org/API/globaldem")
	v.SetDefault("dem.dataset", "SRTMGL3")
	v.SetDefault("dem.output_format", "GTiff")
	v.SetDefault("dem.output_path", DefaultOutputPath())
	v.SetDefault("dem.timeout", 120)
	v.SetDefault("dem.max_area_km2", 450000)
	v.SetDefault("session.store", "memory")
	v.SetDefault("session.ttl", 86400)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.enabled", false)
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: DEMFETCH_DEM_OUTPUT_PATH → dem.output_path
	v.SetEnvPrefix("DEMFETCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if !strings.HasPrefix(c.DEM.Endpoint, "http://") && !strings.HasPrefix(c.DEM.Endpoint, "https://") {
		errs = append(errs, fmt.Sprintf("dem.endpoint must be an http(s) URL, got %q", c.DEM.Endpoint))
	}
	if c.DEM.Dataset == "" {
		errs = append(errs, "dem.dataset is required")
	}
	if c.DEM.OutputFormat == "" {
		errs = append(errs, "dem.output_format is required")
	}
	if c.DEM.OutputPath == "" {
		errs = append(errs, "dem.output_path is required")
	}
	if c.DEM.Timeout <= 0 {
		errs = append(errs, "dem.timeout must be positive")
	}
	if c.DEM.MaxAreaKm2 < 0 {
		errs = append(errs, "dem.max_area_km2 must not be negative")
	}
	switch c.Session.Store {
	case "memory":
	case "valkey":
		if c.Valkey.Addr == "" {
			errs = append(errs, "valkey.addr is required when session.store is valkey")
		}
	default:
		errs = append(errs, fmt.Sprintf("session.store must be memory or valkey, got %q", c.Session.Store))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, "session.ttl must be positive")
	}
	if c.NATS.Enabled && c.NATS.URL == "" {
		errs = append(errs, "nats.url is required when nats is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// DefaultOutputPath is raster.tif next to the running executable, or in the
// working directory when the executable path cannot be determined.
func DefaultOutputPath() string {
	exe, err := os.Executable()
	if err != nil {
		return "raster.tif"
	}
	return filepath.Join(filepath.Dir(exe), "raster.tif")
}
