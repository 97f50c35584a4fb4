// EcoScore - Product Sustainability Scoring Engine
// Copyright 2026 Verdant Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/verdantlabs/ecoscore

package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/verdantlabs/ecoscore/internal/encode"
	"github.com/verdantlabs/ecoscore/internal/model"
)

func ones(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = 1
	}
	return v
}

func testArtifact() *model.Artifact {
	sizes := model.LayerSizes()
	art := &model.Artifact{Version: model.CurrentVersion}
	for i := 0; i < len(sizes)-1; i++ {
		in, out := sizes[i], sizes[i+1]
		layer := model.Layer{Weights: make([][]float64, out), Biases: make([]float64, out)}
		for r := range layer.Weights {
			layer.Weights[r] = make([]float64, in)
			layer.Weights[r][0] = 0.5
		}
		art.Layers = append(art.Layers, layer)
	}
	for _, w := range model.HiddenSizes {
		art.BatchNorms = append(art.BatchNorms, model.BatchNorm{
			Scale:    ones(w),
			Shift:    make([]float64, w),
			Mean:     make([]float64, w),
			Variance: ones(w),
		})
	}
	art.FeatureMeans = make([]float64, model.InputSize)
	art.FeatureStds = ones(model.InputSize)
	art.Meta = model.Metadata{
		Architecture:      model.ArchitectureString(),
		CategoryTableSize: encode.CategoryTableSize(),
		FoodGroups:        encode.FoodGroups(),
		TrainedAt:         time.Now().UTC().Truncate(time.Second),
		TrainSamples:      140,
		BestEpoch:         37,
	}
	return art
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "model.json")
	s := NewFileStore(path)

	want := testArtifact()
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Version != want.Version {
		t.Errorf("version mismatch: %q vs %q", got.Version, want.Version)
	}
	if got.Meta.BestEpoch != want.Meta.BestEpoch {
		t.Errorf("best epoch mismatch: %d vs %d", got.Meta.BestEpoch, want.Meta.BestEpoch)
	}
	if got.Layers[0].Weights[0][0] != 0.5 {
		t.Error("weights not preserved through the round trip")
	}
}

func TestFileStoreMissingArtifact(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "absent.json"))
	if _, err := s.Load(context.Background()); !errors.Is(err, ErrArtifactNotFound) {
		t.Fatalf("expected ErrArtifactNotFound, got %v", err)
	}
}

func TestFileStoreRejectsInvalidOnSave(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "model.json"))
	art := testArtifact()
	art.Layers = art.Layers[:1]
	if err := s.Save(context.Background(), art); err == nil {
		t.Fatal("expected save of an invalid artifact to fail")
	}
}

func TestFileStoreRejectsCorruptOnLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileStore(path).Load(context.Background()); err == nil {
		t.Fatal("expected corrupt artifact to fail loading")
	}
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestFileStoreLoadUncheckedReturnsBrokenArtifact(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "model.json")

	broken := testArtifact()
	broken.Layers[1].Weights[3] = broken.Layers[1].Weights[3][:10]
	if err := os.WriteFile(path, mustJSON(t, broken), 0o600); err != nil {
		t.Fatal(err)
	}

	s := NewFileStore(path)
	if _, err := s.Load(ctx); err == nil {
		t.Fatal("Load must reject the shape-broken artifact")
	}
	art, err := s.LoadUnchecked(ctx)
	if err != nil {
		t.Fatalf("LoadUnchecked: %v", err)
	}
	if got := len(art.Layers[1].Weights[3]); got != 10 {
		t.Errorf("broken row length = %d, want the stored 10", got)
	}
}

func newMemoryBadgerStore(t *testing.T) *BadgerStore {
	t.Helper()
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return NewBadgerStore(db, zerolog.Nop())
}

func TestBadgerStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newMemoryBadgerStore(t)

	want := testArtifact()
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Version != want.Version || got.Meta.TrainSamples != want.Meta.TrainSamples {
		t.Error("artifact not preserved through the round trip")
	}
}

func TestBadgerStoreMissingArtifact(t *testing.T) {
	s := newMemoryBadgerStore(t)
	if _, err := s.Load(context.Background()); !errors.Is(err, ErrArtifactNotFound) {
		t.Fatalf("expected ErrArtifactNotFound, got %v", err)
	}
}

func TestBadgerStoreStaleVersionRejected(t *testing.T) {
	ctx := context.Background()
	s := newMemoryBadgerStore(t)

	// Simulate an artifact written by an older build: stored under the
	// old version tag and pointed at by the current marker.
	art := testArtifact()
	art.Version = "2"
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(artifactKeyPrefix+"2"), mustJSON(t, art)); err != nil {
			return err
		}
		return txn.Set([]byte(currentVersionKey), []byte("2"))
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.Load(ctx); err == nil {
		t.Fatal("expected a stale artifact version to be rejected")
	}

	// The unchecked path still surfaces the stored artifact so
	// diagnostic tooling can report what is wrong with it.
	art, err = s.LoadUnchecked(ctx)
	if err != nil {
		t.Fatalf("LoadUnchecked: %v", err)
	}
	if art.Version != "2" {
		t.Errorf("unchecked load returned version %q, want 2", art.Version)
	}
}
