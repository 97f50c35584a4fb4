// EcoScore - Product Sustainability Scoring Engine
// Copyright 2026 Verdant Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/verdantlabs/ecoscore

// Package model defines the exported model artifact: the only channel of
// communication between the training pipeline and the inference engine.
// The artifact is created once by training, persisted as a structured
// document, and consumed read-only by inference. Shape validation lives
// here so both sides reject incompatible artifacts identically.
package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Compiled-in architecture constants for the fixed 4-layer feed-forward
// network. Artifacts that do not match these exactly are rejected; this is
// what prevents a stale cache from silently corrupting predictions.
const (
	// InputSize is the feature-vector length the network was built for.
	InputSize = 40

	// OutputSize is always 1 (a single sigmoid score).
	OutputSize = 1
)

// HiddenSizes lists the three hidden-layer widths in order.
var HiddenSizes = [3]int{64, 32, 16}

// LayerSizes returns the full layer-size chain including input and output,
// e.g. [40 64 32 16 1].
func LayerSizes() []int {
	return []int{InputSize, HiddenSizes[0], HiddenSizes[1], HiddenSizes[2], OutputSize}
}

// ArchitectureString renders the layer chain as "40-64-32-16-1". The
// string is stored in artifact metadata and cross-checked on load.
func ArchitectureString() string {
	sizes := LayerSizes()
	parts := make([]string, len(sizes))
	for i, s := range sizes {
		parts[i] = strconv.Itoa(s)
	}
	return strings.Join(parts, "-")
}

// Layer holds one dense layer's parameters. Weights is row-major:
// Weights[out][in].
type Layer struct {
	Weights [][]float64 `json:"weights"`
	Biases  []float64   `json:"biases"`
}

// BatchNorm holds one hidden layer's batch-normalization parameters. All
// four vectors are sized to that layer's width. Mean and Variance are the
// running statistics accumulated during training; inference uses them
// verbatim instead of live batch statistics.
type BatchNorm struct {
	Scale    []float64 `json:"scale"`
	Shift    []float64 `json:"shift"`
	Mean     []float64 `json:"mean"`
	Variance []float64 `json:"variance"`
}

// Accuracy is the tolerance-band evaluation report on the 0-100 scale.
type Accuracy struct {
	MSE      float64 `json:"mse"`
	RMSE     float64 `json:"rmse"`
	MAE      float64 `json:"mae"`
	R2       float64 `json:"r2"`
	Within5  float64 `json:"within_5"`
	Within10 float64 `json:"within_10"`
	Within15 float64 `json:"within_15"`
	Within20 float64 `json:"within_20"`
}

// Hyperparameters records the training configuration that produced the
// artifact, for reproducibility.
type Hyperparameters struct {
	Epochs       int     `json:"epochs"`
	BatchSize    int     `json:"batch_size"`
	LearningRate float64 `json:"learning_rate"`
	L2Lambda     float64 `json:"l2_lambda"`
	Dropout      float64 `json:"dropout"`
	Patience     int     `json:"patience"`
	MinDelta     float64 `json:"min_delta"`
	Seed         int64   `json:"seed"`
}

// Metadata describes the artifact's provenance.
type Metadata struct {
	// Architecture is the layer chain string, e.g. "40-64-32-16-1".
	Architecture string `json:"architecture"`

	// Hyperparams is the training configuration used.
	Hyperparams Hyperparameters `json:"hyperparameters"`

	// TrainSamples, ValidationSamples and TestSamples are partition sizes.
	TrainSamples      int `json:"train_samples"`
	ValidationSamples int `json:"validation_samples"`
	TestSamples       int `json:"test_samples"`

	// RejectedSamples counts corpus records dropped during filtering and
	// encoding.
	RejectedSamples int `json:"rejected_samples"`

	// BestEpoch is the epoch that produced the best validation loss; the
	// exported weights are that epoch's snapshot.
	BestEpoch int `json:"best_epoch"`

	// Validation and Test are the evaluation reports per partition.
	Validation Accuracy `json:"validation"`
	Test       Accuracy `json:"test"`

	// CategoryTableSize is the entry count of the encoder's category
	// score table at training time, recorded for sync parity checks.
	CategoryTableSize int `json:"category_table_size"`

	// FoodGroups records the encoder's food-group names at training time,
	// in feature-index order, for sync parity checks.
	FoodGroups []string `json:"food_groups"`

	// TrainedAt is the export timestamp.
	TrainedAt time.Time `json:"trained_at"`
}

// Artifact is the complete exported parameter bundle. Version tags the
// contract; bumping it invalidates stale caches.
type Artifact struct {
	// Version is the artifact format version tag.
	Version string `json:"version"`

	// Layers holds the dense layers in forward order (three hidden plus
	// the output layer).
	Layers []Layer `json:"layers"`

	// BatchNorms holds per-hidden-layer batch-normalization parameters.
	BatchNorms []BatchNorm `json:"batch_norms"`

	// FeatureMeans and FeatureStds are the z-score normalization vectors
	// computed from the training partition only, sized to InputSize.
	FeatureMeans []float64 `json:"feature_means"`
	FeatureStds  []float64 `json:"feature_stds"`

	// Meta describes provenance and evaluation results.
	Meta Metadata `json:"metadata"`
}

// CurrentVersion is the artifact format version produced by this build.
const CurrentVersion = "3"

// Validate cross-checks the artifact's shapes against the compiled-in
// architecture constants. It reports the first mismatch found; the sync
// validator performs the same checks but reports all of them.
func (a *Artifact) Validate() error {
	if a == nil {
		return fmt.Errorf("artifact is nil")
	}
	if a.Version != CurrentVersion {
		return fmt.Errorf("artifact version %q does not match supported version %q", a.Version, CurrentVersion)
	}
	if a.Meta.Architecture != ArchitectureString() {
		return fmt.Errorf("artifact architecture %q does not match compiled architecture %q",
			a.Meta.Architecture, ArchitectureString())
	}

	sizes := LayerSizes()
	if got, want := len(a.Layers), len(sizes)-1; got != want {
		return fmt.Errorf("artifact has %d layers, want %d", got, want)
	}
	for i, layer := range a.Layers {
		in, out := sizes[i], sizes[i+1]
		if len(layer.Weights) != out {
			return fmt.Errorf("layer %d has %d weight rows, want %d", i, len(layer.Weights), out)
		}
		for r, row := range layer.Weights {
			if len(row) != in {
				return fmt.Errorf("layer %d row %d has %d columns, want %d", i, r, len(row), in)
			}
		}
		if len(layer.Biases) != out {
			return fmt.Errorf("layer %d has %d biases, want %d", i, len(layer.Biases), out)
		}
	}

	if got, want := len(a.BatchNorms), len(HiddenSizes); got != want {
		return fmt.Errorf("artifact has %d batch-norm groups, want %d", got, want)
	}
	for i, bn := range a.BatchNorms {
		width := HiddenSizes[i]
		for name, vec := range map[string][]float64{
			"scale": bn.Scale, "shift": bn.Shift, "mean": bn.Mean, "variance": bn.Variance,
		} {
			if len(vec) != width {
				return fmt.Errorf("batch-norm %d %s has length %d, want %d", i, name, len(vec), width)
			}
		}
	}

	if len(a.FeatureMeans) != InputSize {
		return fmt.Errorf("feature means has length %d, want %d", len(a.FeatureMeans), InputSize)
	}
	if len(a.FeatureStds) != InputSize {
		return fmt.Errorf("feature stds has length %d, want %d", len(a.FeatureStds), InputSize)
	}

	if err := a.checkFinite(); err != nil {
		return err
	}
	return nil
}

// checkFinite rejects artifacts carrying non-finite parameters; loading
// one would propagate NaN into every prediction.
func (a *Artifact) checkFinite() error {
	finite := func(vec []float64) bool {
		for _, v := range vec {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
		return true
	}
	for i, layer := range a.Layers {
		for _, row := range layer.Weights {
			if !finite(row) {
				return fmt.Errorf("layer %d contains non-finite weights", i)
			}
		}
		if !finite(layer.Biases) {
			return fmt.Errorf("layer %d contains non-finite biases", i)
		}
	}
	for i, bn := range a.BatchNorms {
		if !finite(bn.Scale) || !finite(bn.Shift) || !finite(bn.Mean) || !finite(bn.Variance) {
			return fmt.Errorf("batch-norm %d contains non-finite parameters", i)
		}
	}
	if !finite(a.FeatureMeans) || !finite(a.FeatureStds) {
		return fmt.Errorf("normalization vectors contain non-finite values")
	}
	return nil
}
