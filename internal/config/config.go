package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Detector  DetectorConfig  `mapstructure:"detector"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type ServerConfig struct {
	Port           int     `mapstructure:"port"`
	Host           string  `mapstructure:"host"`
	CacheSize      int     `mapstructure:"cache_size"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

type DatabaseConfig struct {
	Host              string `mapstructure:"host"`
	Port              int    `mapstructure:"port"`
	Name              string `mapstructure:"name"`
	User              string `mapstructure:"user"`
	Password          string `mapstructure:"password"`
	SSLMode           string `mapstructure:"ssl_mode"`
	MaxConnections    int    `mapstructure:"max_connections"`
	ConnectionTimeout int    `mapstructure:"connection_timeout"`
}

type DetectorConfig struct {
	// InferenceURL is the vehicle-detection runtime endpoint.
	InferenceURL string `mapstructure:"inference_url"`
	// LayoutPath points at the bounding-box annotation file.
	LayoutPath string `mapstructure:"layout_path"`
	// FramesDir holds the camera frames, cycled like the source footage loop.
	FramesDir string `mapstructure:"frames_dir"`
	// Interval between scheduled detection cycles, e.g. "5s".
	Interval string `mapstructure:"interval"`
}

type DashboardConfig struct {
	BaseURL         string `mapstructure:"base_url"`
	RefreshInterval string `mapstructure:"refresh_interval"`
	MaxBackoff      string `mapstructure:"max_backoff"`
	RequestTimeout  string `mapstructure:"request_timeout"`
	ViewPath        string `mapstructure:"view_path"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ConnString builds a lib/pq connection string.
func (d DatabaseConfig) ConnString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// Load reads configuration from file and environment variables.
// $VAR references in the file are expanded from the environment before
// parsing, so secrets can stay out of the file itself.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.cache_size", 1000)
	v.SetDefault("server.rate_limit", 5.0)
	v.SetDefault("server.rate_limit_burst", 10)

	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.connection_timeout", 5)

	v.SetDefault("detector.layout_path", "bounding_boxes.json")
	v.SetDefault("detector.interval", "5s")

	v.SetDefault("dashboard.base_url", "http://localhost:8080")
	v.SetDefault("dashboard.refresh_interval", "5s")
	v.SetDefault("dashboard.max_backoff", "40s")
	v.SetDefault("dashboard.request_timeout", "10s")
	v.SetDefault("dashboard.view_path", "/dashboard")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
