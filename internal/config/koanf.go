// EcoScore - Product Sustainability Scoring Engine
// Copyright 2026 Verdant Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/verdantlabs/ecoscore

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, in order.
// The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/ecoscore/config.yaml",
	"/etc/ecoscore/config.yml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "ECOSCORE_CONFIG"

// Load builds the configuration from three layers with increasing
// precedence: struct defaults, an optional YAML file, environment
// variables.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns the first existing config file path, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envTransformFunc maps environment variable names to koanf paths.
// Unknown variables map to "" and are skipped, so unrelated process
// environment never leaks into config.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		"http_host":        "server.host",
		"http_port":        "server.port",
		"read_timeout":     "server.read_timeout",
		"write_timeout":    "server.write_timeout",
		"shutdown_timeout": "server.shutdown_timeout",

		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",

		"model_store_backend": "model.store_backend",
		"model_artifact_path": "model.artifact_path",
		"model_badger_dir":    "model.badger_dir",

		"training_epochs":              "training.epochs",
		"training_batch_size":          "training.batch_size",
		"training_learning_rate":       "training.learning_rate",
		"training_l2_lambda":           "training.l2_lambda",
		"training_dropout":             "training.dropout",
		"training_patience":            "training.patience",
		"training_min_delta":           "training.min_delta",
		"training_test_fraction":       "training.test_fraction",
		"training_validation_fraction": "training.validation_fraction",
		"training_min_samples":         "training.min_samples",
		"training_seed":                "training.seed",

		"predict_high_decisiveness":      "predict.high_decisiveness",
		"predict_high_richness":          "predict.high_richness",
		"predict_medium_decisiveness":    "predict.medium_decisiveness",
		"predict_medium_richness":        "predict.medium_richness",
		"predict_min_heuristic_features": "predict.min_heuristic_features",
		"predict_default_score":          "predict.default_score",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return ""
}
