// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/kelseyhightower/envconfig"

	"go.ngs.io/tidegrid/internal/engine"
	"go.ngs.io/tidegrid/internal/inference"
)

// Config is the configuration of the HTTP service.
type Config struct {
	Port               string   `envconfig:"PORT" default:"8080"`
	ModelManifest      string   `envconfig:"MODEL_MANIFEST" default:"./data/model.yaml"`
	DatumOffsetsPath   string   `envconfig:"DATUM_OFFSETS_PATH"`
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS"`
	TimeTolerance      float64  `envconfig:"TIME_TOLERANCE" default:"0"`
	ThreadCount        int      `envconfig:"THREAD_COUNT" default:"0"`
	Inference          string   `envconfig:"INFERENCE" default:"linear"`
	GroupModulations   bool     `envconfig:"GROUP_MODULATIONS" default:"false"`
	LogLevel           string   `envconfig:"LOG_LEVEL" default:"info"`
	TraceExporter      string   `envconfig:"TRACE_EXPORTER" default:"none"`
	ServiceName        string   `envconfig:"SERVICE_NAME" default:"tidegrid"`
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if _, err := cfg.Settings(); err != nil {
		return nil, err
	}
	if _, err := cfg.Level(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Settings converts the evaluation fields to engine settings.
func (c *Config) Settings() (engine.Settings, error) {
	kind, err := inference.ParseInterpolationType(c.Inference)
	if err != nil {
		return engine.Settings{}, fmt.Errorf("INFERENCE: %w", err)
	}
	s := engine.Settings{
		TimeTolerance:    c.TimeTolerance,
		Interpolation:    kind,
		ThreadCount:      c.ThreadCount,
		GroupModulations: c.GroupModulations,
	}
	if err := s.Validate(); err != nil {
		return engine.Settings{}, err
	}
	return s, nil
}

// Level parses LOG_LEVEL.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return level, nil
}
