// EcoScore - Product Sustainability Scoring Engine
// Copyright 2026 Verdant Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/verdantlabs/ecoscore

package training

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/rs/zerolog"

	"github.com/verdantlabs/ecoscore/internal/encode"
	"github.com/verdantlabs/ecoscore/internal/model"
)

// syntheticCorpus builds records whose score is an exact linear function
// of the encoded features, so the network has a clean signal to fit.
func syntheticCorpus(n int, seed int64) []Record {
	rng := rand.New(rand.NewSource(seed))
	tags := []string{
		"en:vegetables", "en:fruits", "en:legumes", "en:cereals",
		"en:dairies", "en:cheeses", "en:beef", "en:pork", "en:chicken",
		"en:fishes", "en:sodas", "en:chocolates", "en:ready-meals",
	}
	levels := []string{"low", "moderate", "high"}

	records := make([]Record, n)
	for i := range records {
		p := encode.RawProduct{
			Categories:      []string{tags[rng.Intn(len(tags))]},
			ProcessingLevel: 1 + rng.Intn(4),
			NutrientLevels: map[string]string{
				"sugars": levels[rng.Intn(len(levels))],
				"salt":   levels[rng.Intn(len(levels))],
			},
			IngredientCount: 1 + rng.Intn(30),
		}
		fv := encode.Encode(&p)
		score := 100 * (0.45*fv.Values[encode.FeatCategoryScore] +
			0.25*fv.Values[encode.FeatProcessingScore] +
			0.15*fv.Values[encode.FeatSugarLevel] +
			0.15*fv.Values[encode.FeatIngredientCount])
		records[i] = Record{Product: p, Score: score}
	}
	return records
}

func testTrainConfig() Config {
	cfg := DefaultConfig()
	cfg.Epochs = 400
	cfg.BatchSize = 16
	cfg.LearningRate = 0.005
	cfg.Dropout = 0
	cfg.Patience = 80
	cfg.MinDelta = 1e-7
	cfg.MinSamples = 50
	return cfg
}

func TestTrainerLearnsLinearSignal(t *testing.T) {
	if testing.Short() {
		t.Skip("training run is slow")
	}

	trainer, err := NewTrainer(testTrainConfig(), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	art, report, err := trainer.Run(context.Background(), syntheticCorpus(300, 11))
	if err != nil {
		t.Fatalf("training failed: %v", err)
	}

	if err := art.Validate(); err != nil {
		t.Fatalf("exported artifact invalid: %v", err)
	}
	if report.Test.R2 < 0.8 {
		t.Errorf("expected test R2 above 0.8 on a clean linear signal, got %v (RMSE %v)",
			report.Test.R2, report.Test.RMSE)
	}
	if report.BestEpoch < 1 || report.BestEpoch > report.EpochsRun {
		t.Errorf("best epoch %d outside run range %d", report.BestEpoch, report.EpochsRun)
	}
	if art.Meta.CategoryTableSize != encode.CategoryTableSize() {
		t.Error("artifact must record the encoder's category table size")
	}
	if len(art.Meta.FoodGroups) != len(encode.FoodGroups()) {
		t.Error("artifact must record the encoder's food groups")
	}
}

func TestTrainerSingleFeatureRegression(t *testing.T) {
	if testing.Short() {
		t.Skip("training run is slow")
	}

	// 200 records whose score depends on exactly one feature. Every other
	// field is held constant so the relationship is perfectly learnable.
	rng := rand.New(rand.NewSource(7))
	records := make([]Record, 200)
	for i := range records {
		p := encode.RawProduct{
			Categories:      []string{"en:vegetables"},
			IngredientCount: 1 + rng.Intn(40),
		}
		fv := encode.Encode(&p)
		records[i] = Record{Product: p, Score: 100 * fv.Values[encode.FeatIngredientCount]}
	}

	trainer, err := NewTrainer(testTrainConfig(), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	_, report, err := trainer.Run(context.Background(), records)
	if err != nil {
		t.Fatalf("training failed: %v", err)
	}
	if report.Test.R2 < 0.95 {
		t.Errorf("expected test R2 above 0.95 on a single-feature linear corpus, got %v (RMSE %v)",
			report.Test.R2, report.Test.RMSE)
	}
}

func TestTrainerReproducibleWithSeed(t *testing.T) {
	if testing.Short() {
		t.Skip("training run is slow")
	}

	cfg := testTrainConfig()
	cfg.Epochs = 30
	cfg.Patience = 30
	corpus := syntheticCorpus(120, 3)

	run := func() *model.Artifact {
		trainer, err := NewTrainer(cfg, zerolog.Nop())
		if err != nil {
			t.Fatal(err)
		}
		art, _, err := trainer.Run(context.Background(), corpus)
		if err != nil {
			t.Fatal(err)
		}
		return art
	}

	a, b := run(), run()
	for l := range a.Layers {
		for r := range a.Layers[l].Weights {
			for c := range a.Layers[l].Weights[r] {
				if a.Layers[l].Weights[r][c] != b.Layers[l].Weights[r][c] {
					t.Fatalf("layer %d weight [%d][%d] differs between seeded runs", l, r, c)
				}
			}
		}
	}
}

func TestTrainerInsufficientData(t *testing.T) {
	trainer, err := NewTrainer(testTrainConfig(), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	_, _, err = trainer.Run(context.Background(), syntheticCorpus(10, 1))
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestTrainerCancellation(t *testing.T) {
	trainer, err := NewTrainer(testTrainConfig(), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = trainer.Run(ctx, syntheticCorpus(100, 5))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		wantOK bool
	}{
		{"defaults", func(*Config) {}, true},
		{"zero epochs", func(c *Config) { c.Epochs = 0 }, false},
		{"negative learning rate", func(c *Config) { c.LearningRate = -1 }, false},
		{"dropout of one", func(c *Config) { c.Dropout = 1 }, false},
		{"fractions exceed one", func(c *Config) { c.TestFraction = 0.6; c.ValidationFraction = 0.5 }, false},
		{"tiny min samples", func(c *Config) { c.MinSamples = 5 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantOK && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.wantOK && err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}
