package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Hermes   HermesConfig   `yaml:"hermes"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Sessions SessionsConfig `yaml:"sessions"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port               int `yaml:"port"`
	MetricsPort        int `yaml:"metrics_port"`
	RateLimitPerMinute int `yaml:"rate_limit_per_minute"`
}

type HermesConfig struct {
	URL string `yaml:"url"`
}

// CatalogConfig points at an optional catalog document replacing the
// embedded one.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

type SessionsConfig struct {
	TTLMs           int `yaml:"ttl_ms"`
	SweepIntervalMs int `yaml:"sweep_interval_ms"`
	MaxSessions     int `yaml:"max_sessions"`
}

type ScoringConfig struct {
	Weights ScoringWeights `yaml:"weights"`
}

type ScoringWeights struct {
	PhaseOfIntegration              float64 `yaml:"phase_of_integration"`
	EnvironmentalConsideration      float64 `yaml:"environmental_consideration"`
	OrganizationalAttributes        float64 `yaml:"organizational_attributes"`
	ProjectTeamCapacity             float64 `yaml:"project_team_capacity"`
	ProductFeatureAndCircularDesign float64 `yaml:"product_feature_and_circular_design"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Sessions.TTLMs) * time.Millisecond
}

func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Sessions.SweepIntervalMs) * time.Millisecond
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:               8700,
			MetricsPort:        8701,
			RateLimitPerMinute: 120,
		},
		Sessions: SessionsConfig{
			TTLMs:           3600000,
			SweepIntervalMs: 60000,
			MaxSessions:     10000,
		},
		Scoring: ScoringConfig{
			Weights: ScoringWeights{
				PhaseOfIntegration:              0.199,
				EnvironmentalConsideration:      0.199,
				OrganizationalAttributes:        0.199,
				ProjectTeamCapacity:             0.200,
				ProductFeatureAndCircularDesign: 0.204,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("CIRCULARITY_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("CIRCULARITY_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("CIRCULARITY_RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.RateLimitPerMinute = n
		}
	}
	if v := os.Getenv("CIRCULARITY_HERMES_URL"); v != "" {
		cfg.Hermes.URL = v
	}
	if v := os.Getenv("CIRCULARITY_CATALOG_PATH"); v != "" {
		cfg.Catalog.Path = v
	}
	if v := os.Getenv("CIRCULARITY_SESSION_TTL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Sessions.TTLMs = n
		}
	}
	if v := os.Getenv("CIRCULARITY_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("CIRCULARITY_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
