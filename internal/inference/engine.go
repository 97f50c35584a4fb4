// EcoScore - Product Sustainability Scoring Engine
// Copyright 2026 Verdant Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/verdantlabs/ecoscore

// Package inference is the dependency-free forward-pass engine. It
// consumes only the exported model artifact: no tensor library, no access
// to the original corpus, and deliberately no backward-pass or optimizer
// code of any kind. The sync validator rejects builds where such
// constructs appear in this package.
package inference

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/verdantlabs/ecoscore/internal/model"
)

// bnEpsilon matches the stabilizer the exported running variances were
// accumulated with.
const bnEpsilon = 1e-5

// neutralScore is returned whenever the pass cannot produce a trustworthy
// value (dimension mismatch, non-finite intermediate). It maps to 50 on
// the 0-100 scale.
const neutralScore = 0.5

// Engine executes the fixed 40-64-32-16-1 forward pass. It is immutable
// after construction and safe for concurrent use.
type Engine struct {
	art    *model.Artifact
	logger zerolog.Logger
}

// New validates the artifact against the compiled-in architecture and
// returns a ready engine. Artifacts with mismatching shapes, versions or
// non-finite parameters are rejected outright; accepting one would corrupt
// every prediction it serves.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(art *model.Artifact, logger zerolog.Logger) (*Engine, error) {
	if err := art.Validate(); err != nil {
		return nil, fmt.Errorf("artifact rejected: %w", err)
	}
	return &Engine{
		art:    art,
		logger: logger.With().Str("component", "inference").Logger(),
	}, nil
}

// Artifact returns the loaded artifact for metadata reporting. Callers
// must treat it as read-only.
func (e *Engine) Artifact() *model.Artifact {
	return e.art
}

// Predict runs one feature vector through the network and returns a score
// in [0, 1]. The pass is, in order: z-score normalization with the
// artifact's mean/std vectors, three stages of affine -> batch
// normalization with the STORED running statistics -> ReLU, then the final
// affine -> sigmoid. It performs no I/O and never panics: a wrong-length
// input or a non-finite intermediate yields the neutral midpoint with a
// logged diagnostic.
func (e *Engine) Predict(features []float64) float64 {
	if len(features) != model.InputSize {
		e.logger.Warn().
			Int("got", len(features)).
			Int("want", model.InputSize).
			Msg("feature vector length mismatch, returning neutral score")
		return neutralScore
	}
	for i, v := range features {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			e.logger.Warn().
				Int("index", i).
				Msg("non-finite feature value, returning neutral score")
			return neutralScore
		}
	}

	// Normalizing against the training statistics is mandatory: the raw
	// [0,1] encoder outputs are on a different scale than the activations
	// the network was fitted against.
	cur := make([]float64, model.InputSize)
	for i, v := range features {
		cur[i] = (v - e.art.FeatureMeans[i]) / e.art.FeatureStds[i]
	}

	for l := 0; l < len(e.art.Layers)-1; l++ {
		layer := e.art.Layers[l]
		bn := e.art.BatchNorms[l]
		next := make([]float64, len(layer.Weights))
		for j, row := range layer.Weights {
			sum := layer.Biases[j]
			for k, v := range cur {
				sum += row[k] * v
			}
			norm := (sum - bn.Mean[j]) / math.Sqrt(bn.Variance[j]+bnEpsilon)
			y := bn.Scale[j]*norm + bn.Shift[j]
			// A NaN here would pass through ReLU as 0 and surface as a
			// confident, arbitrary score; catch it before it launders.
			if math.IsNaN(y) || math.IsInf(y, 0) {
				e.logger.Warn().
					Int("layer", l).
					Int("unit", j).
					Msg("non-finite value in forward pass, returning neutral score")
				return neutralScore
			}
			if y > 0 {
				next[j] = y
			}
		}
		cur = next
	}

	out := e.art.Layers[len(e.art.Layers)-1]
	sum := out.Biases[0]
	for k, v := range cur {
		sum += out.Weights[0][k] * v
	}
	score := 1.0 / (1.0 + math.Exp(-sum))

	if math.IsNaN(score) || math.IsInf(score, 0) {
		e.logger.Warn().Msg("non-finite value in forward pass, returning neutral score")
		return neutralScore
	}
	return score
}
