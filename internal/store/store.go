// EcoScore - Product Sustainability Scoring Engine
// Copyright 2026 Verdant Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/verdantlabs/ecoscore

// Package store persists trained model artifacts. A FileStore backs
// the trainer's export path with a plain JSON file; a BadgerStore
// keeps versioned artifacts in an embedded key-value database for the
// serving process.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/verdantlabs/ecoscore/internal/model"
)

// ErrArtifactNotFound indicates no artifact exists at the requested
// location or version.
var ErrArtifactNotFound = errors.New("model artifact not found")

// ArtifactStore reads and writes trained model artifacts.
type ArtifactStore interface {
	// Save persists an artifact. The artifact must pass Validate.
	Save(ctx context.Context, art *model.Artifact) error
	// Load returns the current artifact, or ErrArtifactNotFound.
	Load(ctx context.Context) (*model.Artifact, error)
	// LoadUnchecked returns the current artifact without shape
	// validation. Diagnostic tooling uses it to inspect broken
	// artifacts that Load would refuse.
	LoadUnchecked(ctx context.Context) (*model.Artifact, error)
	// Close releases any underlying resources.
	Close() error
}

// FileStore persists a single artifact as a JSON file. The trainer
// writes through it; the synccheck tool and the server can read the
// same file directly.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by the file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Save writes the artifact atomically: to a temp file in the same
// directory, then renamed over the destination.
func (s *FileStore) Save(ctx context.Context, art *model.Artifact) error {
	if err := art.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid artifact: %w", err)
	}
	data, err := json.MarshalIndent(art, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create artifact directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".artifact-*.json")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace artifact: %w", err)
	}
	return nil
}

// Load reads and validates the artifact file.
func (s *FileStore) Load(ctx context.Context) (*model.Artifact, error) {
	art, err := s.LoadUnchecked(ctx)
	if err != nil {
		return nil, err
	}
	if err := art.Validate(); err != nil {
		return nil, fmt.Errorf("artifact %s: %w", s.path, err)
	}
	return art, nil
}

// LoadUnchecked reads and decodes the artifact file without validating
// its shapes.
func (s *FileStore) LoadUnchecked(ctx context.Context) (*model.Artifact, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w (%s)", ErrArtifactNotFound, s.path)
	}
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}

	var art model.Artifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	return &art, nil
}

// Close is a no-op for file stores.
func (s *FileStore) Close() error { return nil }
