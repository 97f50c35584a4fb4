// EcoScore - Product Sustainability Scoring Engine
// Copyright 2026 Verdant Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/verdantlabs/ecoscore

// Command train runs the offline training pipeline: load a labeled
// product corpus, train the scoring network, and export the artifact
// to the configured store.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/verdantlabs/ecoscore/internal/config"
	"github.com/verdantlabs/ecoscore/internal/logging"
	"github.com/verdantlabs/ecoscore/internal/metrics"
	"github.com/verdantlabs/ecoscore/internal/store"
	"github.com/verdantlabs/ecoscore/internal/synccheck"
	"github.com/verdantlabs/ecoscore/internal/training"
)

func main() {
	corpusPath := flag.String("corpus", "data/corpus.json", "path to the labeled product corpus (JSON array)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(cfg.Logging)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	records, err := training.LoadCorpus(*corpusPath)
	if err != nil {
		logging.Fatal().Err(err).Str("corpus", *corpusPath).Msg("failed to load corpus")
	}
	logging.Info().Int("records", len(records)).Str("corpus", *corpusPath).Msg("corpus loaded")

	trainer, err := training.NewTrainer(cfg.Training, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("invalid training configuration")
	}

	art, report, err := trainer.Run(ctx, records)
	if err != nil {
		metrics.TrainingRunsTotal.WithLabelValues("failure").Inc()
		logging.Fatal().Err(err).Msg("training failed")
	}
	metrics.TrainingRunsTotal.WithLabelValues("success").Inc()
	metrics.TrainingEpochs.Set(float64(report.BestEpoch))

	logging.Info().
		Int("train_samples", report.TrainSamples).
		Int("validation_samples", report.ValidationSamples).
		Int("test_samples", report.TestSamples).
		Int("best_epoch", report.BestEpoch).
		Float64("validation_rmse", report.Validation.RMSE).
		Float64("test_rmse", report.Test.RMSE).
		Float64("test_r2", report.Test.R2).
		Dur("duration", report.Duration).
		Msg("training complete")

	// Refuse to ship an artifact that fails the consistency checks.
	syncReport := synccheck.Validate(art)
	if !syncReport.Passed() {
		for _, c := range syncReport.Failures() {
			logging.Error().Str("check", c.Name).Str("detail", c.Detail).Msg("consistency check failed")
		}
		os.Exit(1)
	}

	artifacts, err := openArtifactStore(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open artifact store")
	}
	defer func() {
		if err := artifacts.Close(); err != nil {
			logging.Error().Err(err).Msg("error closing artifact store")
		}
	}()

	if err := artifacts.Save(ctx, art); err != nil {
		logging.Fatal().Err(err).Msg("failed to save artifact")
	}
	logging.Info().Str("version", art.Version).Msg("artifact exported")
}

func openArtifactStore(cfg *config.Config) (store.ArtifactStore, error) {
	switch cfg.Model.StoreBackend {
	case "badger":
		return store.OpenBadgerStore(cfg.Model.BadgerDir, logging.Logger())
	default:
		return store.NewFileStore(cfg.Model.ArtifactPath), nil
	}
}
