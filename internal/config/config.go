package config

import (
	"fmt"
	"log/slog"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port           int     `envconfig:"PORT" default:"8080"`
	JWTSecret      string  `envconfig:"JWT_SECRET" default:"dev-secret-change-in-production"`
	AllowedOrigins string  `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
	LogLevel       string  `envconfig:"LOG_LEVEL" default:"info"`
	ViewWidth      float64 `envconfig:"VIEW_WIDTH" default:"1200"`
	ViewHeight     float64 `envconfig:"VIEW_HEIGHT" default:"400"`
	SampleDiagram  bool    `envconfig:"SAMPLE_DIAGRAM" default:"true"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.ViewWidth <= 0 || cfg.ViewHeight <= 0 {
		return nil, fmt.Errorf("view size %vx%v must be positive", cfg.ViewWidth, cfg.ViewHeight)
	}
	return &cfg, nil
}

// Level parses LogLevel, falling back to info.
func (c *Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
