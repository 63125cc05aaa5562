package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds API server configuration
type ServerConfig struct {
	NodeID          string        `yaml:"node_id"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	RateLimit       float64       `yaml:"rate_limit"`
	RateBurst       int           `yaml:"rate_burst"`
}

// MatrixConfig holds the engine configuration
type MatrixConfig struct {
	Subject       string `yaml:"subject"`
	PositionSpace int    `yaml:"position_space"`
}

// AnchorConfig declares an anchor registered at boot
type AnchorConfig struct {
	Position          int     `yaml:"position"`
	OrbitalRadius     float64 `yaml:"orbital_radius"`
	JudgmentThreshold float64 `yaml:"judgment_threshold"`
}

// RetentionConfig holds snapshot retention configuration
type RetentionConfig struct {
	Enabled    bool          `yaml:"enabled"`
	KeepLatest int           `yaml:"keep_latest"`
	Interval   time.Duration `yaml:"interval"`
	Workers    int           `yaml:"workers"`
	QueueSize  int           `yaml:"queue_size"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	Path    string `yaml:"path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config represents the complete configuration for the engine
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Matrix    MatrixConfig    `yaml:"matrix"`
	Anchors   []AnchorConfig  `yaml:"anchors"`
	Retention RetentionConfig `yaml:"retention"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoadConfig loads configuration from a file
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults if not specified
	setDefaults(&cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default values for unspecified configuration
func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8090
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 10 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30 * time.Second
	}
	if cfg.Server.RateLimit == 0 {
		cfg.Server.RateLimit = 1000
	}
	if cfg.Server.RateBurst == 0 {
		cfg.Server.RateBurst = 100
	}

	if cfg.Matrix.Subject == "" {
		cfg.Matrix.Subject = "flux"
	}
	if cfg.Matrix.PositionSpace == 0 {
		cfg.Matrix.PositionSpace = 10
	}

	if cfg.Retention.KeepLatest == 0 {
		cfg.Retention.KeepLatest = 5
	}
	if cfg.Retention.Interval == 0 {
		cfg.Retention.Interval = 5 * time.Minute
	}
	if cfg.Retention.Workers == 0 {
		cfg.Retention.Workers = 2
	}
	if cfg.Retention.QueueSize == 0 {
		cfg.Retention.QueueSize = 16
	}

	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9090
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.NodeID == "" {
		return fmt.Errorf("server.node_id is required")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Matrix.PositionSpace < 1 {
		return fmt.Errorf("matrix.position_space must be positive")
	}
	for _, a := range c.Anchors {
		if a.Position < 0 || a.Position >= c.Matrix.PositionSpace {
			return fmt.Errorf("anchor position %d outside key space [0, %d)", a.Position, c.Matrix.PositionSpace)
		}
	}
	if c.Retention.KeepLatest < 0 {
		return fmt.Errorf("retention.keep_latest must be non-negative")
	}
	return nil
}
