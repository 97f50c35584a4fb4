// EcoScore - Product Sustainability Scoring Engine
// Copyright 2026 Verdant Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/verdantlabs/ecoscore

// Package config loads layered configuration for every EcoScore
// binary: built-in defaults, then an optional YAML file, then
// environment variables, with the later layers overriding the
// earlier.
package config

import (
	"fmt"
	"time"

	"github.com/verdantlabs/ecoscore/internal/logging"
	"github.com/verdantlabs/ecoscore/internal/predict"
	"github.com/verdantlabs/ecoscore/internal/training"
)

// Config is the root configuration shared by the server, trainer, and
// validator binaries.
type Config struct {
	Server   ServerConfig    `koanf:"server" json:"server"`
	Logging  logging.Config  `koanf:"logging" json:"logging"`
	Model    ModelConfig     `koanf:"model" json:"model"`
	Training training.Config `koanf:"training" json:"training"`
	Predict  predict.Options `koanf:"predict" json:"predict"`
}

// ServerConfig configures the HTTP serving surface.
type ServerConfig struct {
	Host            string        `koanf:"host" json:"host"`
	Port            int           `koanf:"port" json:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout" json:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" json:"shutdown_timeout"`
}

// ModelConfig locates the trained artifact.
type ModelConfig struct {
	// StoreBackend selects artifact storage: "file" or "badger".
	StoreBackend string `koanf:"store_backend" json:"store_backend"`

	// ArtifactPath is the JSON artifact location for the file backend.
	ArtifactPath string `koanf:"artifact_path" json:"artifact_path"`

	// BadgerDir is the database directory for the badger backend.
	BadgerDir string `koanf:"badger_dir" json:"badger_dir"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by the config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8420,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Logging: logging.Config{
			Level:  "info",
			Format: "json",
		},
		Model: ModelConfig{
			StoreBackend: "file",
			ArtifactPath: "data/model.json",
			BadgerDir:    "data/artifacts",
		},
		Training: training.DefaultConfig(),
		Predict:  predict.DefaultOptions(),
	}
}

// Validate checks the full configuration tree.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535], got %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}
	switch c.Model.StoreBackend {
	case "file":
		if c.Model.ArtifactPath == "" {
			return fmt.Errorf("model.artifact_path is required for the file backend")
		}
	case "badger":
		if c.Model.BadgerDir == "" {
			return fmt.Errorf("model.badger_dir is required for the badger backend")
		}
	default:
		return fmt.Errorf("model.store_backend must be \"file\" or \"badger\", got %q", c.Model.StoreBackend)
	}
	if err := c.Training.Validate(); err != nil {
		return fmt.Errorf("training: %w", err)
	}
	if err := c.Predict.Validate(); err != nil {
		return fmt.Errorf("predict: %w", err)
	}
	return nil
}
