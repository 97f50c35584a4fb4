// EcoScore - Product Sustainability Scoring Engine
// Copyright 2026 Verdant Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/verdantlabs/ecoscore

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/verdantlabs/ecoscore/internal/model"
)

// Key layout for BadgerDB storage
const (
	artifactKeyPrefix = "artifact:"
	currentVersionKey = "artifact_current"
)

// BadgerStore keeps versioned artifacts in BadgerDB. Each artifact is
// stored under artifact:<version> with a separate pointer to the
// version currently in service, so a bad deploy can be rolled back by
// repointing without re-training.
type BadgerStore struct {
	db     *badger.DB
	logger zerolog.Logger
}

// OpenBadgerStore opens (or creates) a Badger database at dir.
func OpenBadgerStore(dir string, logger zerolog.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).
		WithLogger(nil).
		WithCompactL0OnClose(true)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open artifact database: %w", err)
	}
	return &BadgerStore{db: db, logger: logger.With().Str("component", "store").Logger()}, nil
}

// NewBadgerStore wraps an already-open database, for tests that share
// an in-memory instance.
func NewBadgerStore(db *badger.DB, logger zerolog.Logger) *BadgerStore {
	return &BadgerStore{db: db, logger: logger.With().Str("component", "store").Logger()}
}

// Save persists an artifact under its version and points the current
// marker at it, in a single transaction.
func (s *BadgerStore) Save(ctx context.Context, art *model.Artifact) error {
	if err := art.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid artifact: %w", err)
	}
	data, err := json.Marshal(art)
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		key := []byte(artifactKeyPrefix + art.Version)
		if err := txn.Set(key, data); err != nil {
			return fmt.Errorf("set artifact: %w", err)
		}
		if err := txn.Set([]byte(currentVersionKey), []byte(art.Version)); err != nil {
			return fmt.Errorf("set current version: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info().Str("version", art.Version).Msg("artifact saved")
	return nil
}

// Load returns the artifact the current-version pointer names.
// Artifacts written by an older encoder revision fail validation here
// rather than serving stale scores.
func (s *BadgerStore) Load(ctx context.Context) (*model.Artifact, error) {
	art, err := s.LoadUnchecked(ctx)
	if err != nil {
		return nil, err
	}
	if err := art.Validate(); err != nil {
		return nil, fmt.Errorf("stored artifact: %w", err)
	}
	return art, nil
}

// LoadUnchecked returns the current artifact without shape validation.
func (s *BadgerStore) LoadUnchecked(ctx context.Context) (*model.Artifact, error) {
	var art model.Artifact
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(currentVersionKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrArtifactNotFound
		}
		if err != nil {
			return fmt.Errorf("get current version: %w", err)
		}
		var version string
		if err := item.Value(func(val []byte) error {
			version = string(val)
			return nil
		}); err != nil {
			return err
		}

		item, err = txn.Get([]byte(artifactKeyPrefix + version))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w (version %s)", ErrArtifactNotFound, version)
		}
		if err != nil {
			return fmt.Errorf("get artifact %s: %w", version, err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &art)
		})
	})
	if err != nil {
		return nil, err
	}
	return &art, nil
}

// Close flushes and closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
