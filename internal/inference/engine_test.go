// EcoScore - Product Sustainability Scoring Engine
// Copyright 2026 Verdant Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/verdantlabs/ecoscore

package inference

import (
	"math"
	"testing"
	"time"

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

// zeroArtifact builds a structurally valid artifact with all weights and
// biases zero, identity batch norms and identity normalization. Its
// forward pass is analytically sigmoid(0) = 0.5 for every input.
func zeroArtifact() *model.Artifact {
	sizes := model.LayerSizes()
	art := &model.Artifact{Version: model.CurrentVersion}
	for i := 0; i < len(sizes)-1; i++ {
		in, out := sizes[i], sizes[i+1]
		layer := model.Layer{Weights: make([][]float64, out), Biases: make([]float64, out)}
		for r := range layer.Weights {
			layer.Weights[r] = make([]float64, in)
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
		TrainedAt:         time.Now(),
	}
	return art
}

func TestNewRejectsInvalidArtifact(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.Artifact)
	}{
		{"wrong version", func(a *model.Artifact) { a.Version = "0" }},
		{"wrong architecture", func(a *model.Artifact) { a.Meta.Architecture = "40-32-1" }},
		{"missing layer", func(a *model.Artifact) { a.Layers = a.Layers[:2] }},
		{"truncated weight row", func(a *model.Artifact) { a.Layers[0].Weights[3] = a.Layers[0].Weights[3][:10] }},
		{"short batch norm", func(a *model.Artifact) { a.BatchNorms[1].Mean = a.BatchNorms[1].Mean[:5] }},
		{"short normalization", func(a *model.Artifact) { a.FeatureStds = a.FeatureStds[:20] }},
		{"non-finite weight", func(a *model.Artifact) { a.Layers[1].Weights[0][0] = math.NaN() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			art := zeroArtifact()
			tt.mutate(art)
			if _, err := New(art, zerolog.Nop()); err == nil {
				t.Error("expected the artifact to be rejected")
			}
		})
	}

	if _, err := New(zeroArtifact(), zerolog.Nop()); err != nil {
		t.Fatalf("valid artifact rejected: %v", err)
	}
}

func TestPredictZeroNetworkIsNeutral(t *testing.T) {
	eng, err := New(zeroArtifact(), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	inputs := [][]float64{
		make([]float64, model.InputSize),
		ones(model.InputSize),
	}
	for _, in := range inputs {
		if got := eng.Predict(in); got != 0.5 {
			t.Errorf("zero network must output 0.5, got %v", got)
		}
	}
}

func TestPredictOutputBiasShiftsScore(t *testing.T) {
	art := zeroArtifact()
	art.Layers[len(art.Layers)-1].Biases[0] = 4.0
	eng, err := New(art, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	got := eng.Predict(make([]float64, model.InputSize))
	want := 1.0 / (1.0 + math.Exp(-4.0))
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("expected sigmoid(4) = %v, got %v", want, got)
	}
}

func TestPredictNonFiniteInputReturnsNeutral(t *testing.T) {
	// Bias the output so a laundered NaN would surface as a confident
	// score instead of coincidentally landing on the neutral value.
	art := zeroArtifact()
	art.Layers[len(art.Layers)-1].Biases[0] = 4.0
	eng, err := New(art, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		value float64
	}{
		{"NaN", math.NaN()},
		{"positive infinity", math.Inf(1)},
		{"negative infinity", math.Inf(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := ones(model.InputSize)
			in[0] = tt.value
			if got := eng.Predict(in); got != 0.5 {
				t.Errorf("expected neutral 0.5 for %s input, got %v", tt.name, got)
			}
		})
	}
}

func TestPredictLengthMismatchReturnsNeutral(t *testing.T) {
	eng, err := New(zeroArtifact(), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	for _, n := range []int{0, 10, model.InputSize - 1, model.InputSize + 1} {
		if got := eng.Predict(make([]float64, n)); got != 0.5 {
			t.Errorf("length %d: expected neutral 0.5, got %v", n, got)
		}
	}
}

func TestPredictDeterministic(t *testing.T) {
	art := zeroArtifact()
	// Give the network some structure so the pass exercises every stage.
	for l := range art.Layers {
		for r := range art.Layers[l].Weights {
			for c := range art.Layers[l].Weights[r] {
				art.Layers[l].Weights[r][c] = 0.01 * float64((r+c)%7-3)
			}
		}
	}
	eng, err := New(art, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	in := make([]float64, model.InputSize)
	for i := range in {
		in[i] = float64(i) / float64(model.InputSize)
	}
	a, b := eng.Predict(in), eng.Predict(in)
	if a != b {
		t.Fatalf("identical inputs produced %v and %v", a, b)
	}
	if a <= 0 || a >= 1 {
		t.Errorf("score %v outside (0, 1)", a)
	}
}
