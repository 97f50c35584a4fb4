// EcoScore - Product Sustainability Scoring Engine
// Copyright 2026 Verdant Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/verdantlabs/ecoscore

// Command synccheck validates that a trained artifact matches the
// feature encoder compiled into this binary, and optionally that the
// inference package source is free of training constructs. Exits
// non-zero when any check fails, for use as a CI and pre-deploy gate.
package main

import (
	"context"
	"errors"
	"flag"
	"os"

	"github.com/goccy/go-json"

	"github.com/verdantlabs/ecoscore/internal/config"
	"github.com/verdantlabs/ecoscore/internal/logging"
	"github.com/verdantlabs/ecoscore/internal/store"
	"github.com/verdantlabs/ecoscore/internal/synccheck"
)

func main() {
	inferenceDir := flag.String("inference-src", "", "path to the inference package source to scan (skipped when empty)")
	jsonOut := flag.Bool("json", false, "emit the report as JSON on stdout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(cfg.Logging)

	artifacts, err := openArtifactStore(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open artifact store")
	}
	defer artifacts.Close()

	// Load without store-level validation: a shape-broken artifact is
	// exactly what the check battery exists to report, check by check.
	art, err := artifacts.LoadUnchecked(context.Background())
	switch {
	case errors.Is(err, store.ErrArtifactNotFound):
		art = nil
	case err != nil:
		logging.Fatal().Err(err).Msg("failed to read artifact")
	}

	report := synccheck.Validate(art)
	if *inferenceDir != "" {
		if err := synccheck.ScanInferenceSource(report, *inferenceDir); err != nil {
			logging.Fatal().Err(err).Msg("source scan failed")
		}
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			logging.Fatal().Err(err).Msg("failed to encode report")
		}
	} else {
		for _, c := range report.Checks {
			if c.Pass {
				logging.Info().Str("check", c.Name).Str("detail", c.Detail).Msg("pass")
			} else {
				logging.Error().Str("check", c.Name).Str("detail", c.Detail).Msg("FAIL")
			}
		}
	}

	if !report.Passed() {
		os.Exit(1)
	}
}

func openArtifactStore(cfg *config.Config) (store.ArtifactStore, error) {
	switch cfg.Model.StoreBackend {
	case "badger":
		return store.OpenBadgerStore(cfg.Model.BadgerDir, logging.Logger())
	default:
		return store.NewFileStore(cfg.Model.ArtifactPath), nil
	}
}
