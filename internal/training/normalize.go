// EcoScore - Product Sustainability Scoring Engine
// Copyright 2026 Verdant Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/verdantlabs/ecoscore

package training

import "math"

// stdEpsilon is the threshold below which a feature is treated as constant
// across the training partition. Its divisor is fixed to 1.0 to avoid
// division blow-up while leaving the (zero-information) feature centered.
const stdEpsilon = 1e-8

// Stats holds per-feature z-score normalization statistics. They are
// computed from the training partition only and exported in the artifact;
// inference must apply the identical transform.
type Stats struct {
	Means []float64
	Stds  []float64
}

// ComputeStats derives per-feature mean and standard deviation from the
// given (training) examples.
func ComputeStats(examples []Example) Stats {
	if len(examples) == 0 {
		return Stats{}
	}
	dim := len(examples[0].Features)
	means := make([]float64, dim)
	stds := make([]float64, dim)
	n := float64(len(examples))

	for _, ex := range examples {
		for i, v := range ex.Features {
			means[i] += v
		}
	}
	for i := range means {
		means[i] /= n
	}

	for _, ex := range examples {
		for i, v := range ex.Features {
			d := v - means[i]
			stds[i] += d * d
		}
	}
	for i := range stds {
		stds[i] = math.Sqrt(stds[i] / n)
		if stds[i] < stdEpsilon {
			stds[i] = 1.0
		}
	}
	return Stats{Means: means, Stds: stds}
}

// Apply returns the z-score-normalized copy of a feature vector.
func (s Stats) Apply(features []float64) []float64 {
	out := make([]float64, len(features))
	for i, v := range features {
		out[i] = (v - s.Means[i]) / s.Stds[i]
	}
	return out
}

// ApplyAll normalizes every example in place-preserving fashion, returning
// new examples that share targets but carry normalized feature copies.
func (s Stats) ApplyAll(examples []Example) []Example {
	out := make([]Example, len(examples))
	for i, ex := range examples {
		out[i] = Example{Features: s.Apply(ex.Features), Target: ex.Target}
	}
	return out
}
