// Shelfline - Retail Catalog Recommendations and Stock Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfline

// Package config loads and validates Shelfline configuration using
// Koanf v2 with layered sources: built-in defaults, an optional YAML
// config file, and SHELFLINE_-prefixed environment variables.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the Shelfline server.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Artifacts ArtifactsConfig `koanf:"artifacts"`
	Training  TrainingConfig  `koanf:"training"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// DatabaseConfig holds DuckDB settings.
//
// Path may be a file path or ":memory:" for an in-memory database.
// SeedDemoData populates an empty database with a deterministic
// synthetic retail dataset on startup.
type DatabaseConfig struct {
	Path         string `koanf:"path"`
	MaxMemory    string `koanf:"max_memory"`
	Threads      int    `koanf:"threads"`
	SeedDemoData bool   `koanf:"seed_demo_data"`
}

// ArtifactsConfig holds the Badger artifact store settings.
type ArtifactsConfig struct {
	Path string `koanf:"path"`

	// KeepGenerations bounds how many historical bundle generations are
	// retained alongside the latest one.
	KeepGenerations int `koanf:"keep_generations"`
}

// TrainingConfig holds offline pipeline settings.
//
// The mining thresholds default to the production values (0.5% support,
// lift above 1, top 15 rules) and exist mainly so tests and small
// deployments can tighten or relax them.
type TrainingConfig struct {
	OnStartup  bool          `koanf:"on_startup"`
	Interval   time.Duration `koanf:"interval"`
	Timeout    time.Duration `koanf:"timeout"`
	MinSupport float64       `koanf:"min_support"`
	MaxRules   int           `koanf:"max_rules"`

	// CriticalWindowDays is the stock runway below which a forecast is
	// flagged CRITICAL.
	CriticalWindowDays int `koanf:"critical_window_days"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for invalid combinations.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive, got %s", c.Server.ShutdownTimeout)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Artifacts.Path == "" {
		return fmt.Errorf("artifacts.path must not be empty")
	}
	if c.Artifacts.KeepGenerations < 1 {
		return fmt.Errorf("artifacts.keep_generations must be at least 1, got %d", c.Artifacts.KeepGenerations)
	}
	if c.Training.Interval <= 0 {
		return fmt.Errorf("training.interval must be positive, got %s", c.Training.Interval)
	}
	if c.Training.MinSupport <= 0 || c.Training.MinSupport >= 1 {
		return fmt.Errorf("training.min_support must be in (0, 1), got %g", c.Training.MinSupport)
	}
	if c.Training.MaxRules < 1 {
		return fmt.Errorf("training.max_rules must be at least 1, got %d", c.Training.MaxRules)
	}
	if c.Training.CriticalWindowDays < 1 {
		return fmt.Errorf("training.critical_window_days must be at least 1, got %d", c.Training.CriticalWindowDays)
	}
	return nil
}

// Addr returns the host:port the HTTP server binds to.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
