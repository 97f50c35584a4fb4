// EcoScore - Product Sustainability Scoring Engine
// Copyright 2026 Verdant Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/verdantlabs/ecoscore

// Command server runs the scoring HTTP service. It loads the model
// artifact lazily on the first scored request; until (or unless) an
// artifact is available, requests are served by the fallback tiers.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/verdantlabs/ecoscore/internal/api"
	"github.com/verdantlabs/ecoscore/internal/config"
	"github.com/verdantlabs/ecoscore/internal/inference"
	"github.com/verdantlabs/ecoscore/internal/logging"
	"github.com/verdantlabs/ecoscore/internal/predict"
	"github.com/verdantlabs/ecoscore/internal/store"
)

const version = "1.2.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(cfg.Logging)
	logging.Info().Str("version", version).Msg("starting ecoscore server")

	artifacts, err := openArtifactStore(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open artifact store")
	}
	defer func() {
		if err := artifacts.Close(); err != nil {
			logging.Error().Err(err).Msg("error closing artifact store")
		}
	}()

	provider := func(ctx context.Context) (predict.Scorer, error) {
		art, err := artifacts.Load(ctx)
		if err != nil {
			return nil, err
		}
		return inference.New(art, logging.Logger())
	}

	orchestrator, err := predict.NewOrchestrator(cfg.Predict, provider, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to build prediction orchestrator")
	}

	handler := api.NewHandler(orchestrator, artifacts, version)
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(handler),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("http server listening")
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("http server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("graceful shutdown failed")
	}
	logging.Info().Msg("server stopped")
}

func openArtifactStore(cfg *config.Config) (store.ArtifactStore, error) {
	switch cfg.Model.StoreBackend {
	case "badger":
		return store.OpenBadgerStore(cfg.Model.BadgerDir, logging.Logger())
	default:
		return store.NewFileStore(cfg.Model.ArtifactPath), nil
	}
}
