// EcoScore - Product Sustainability Scoring Engine
// Copyright 2026 Verdant Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/verdantlabs/ecoscore

package predict

import (
	"fmt"
	"math"

	"github.com/verdantlabs/ecoscore/internal/encode"
)

// HeuristicWeights maps feature names to hand-tuned linear weights for the
// rule-based tier. The values are a replaceable, versioned configuration,
// not derived quantities; negative weights penalize attributes such as
// plastic packaging or high sugar/salt/fat flags.
type HeuristicWeights map[string]float64

// DefaultHeuristicWeights returns the shipped weight table.
func DefaultHeuristicWeights() HeuristicWeights {
	return HeuristicWeights{
		"category_score":       2.0,
		"processing_score":     1.2,
		"packaging_recyclable": 0.8,
		"packaging_glass":      0.6,
		"packaging_plastic":    -0.9,
		"packaging_metal":      0.2,
		"packaging_paper":      0.5,
		"packaging_continuity": 0.4,
		"cert_organic":         1.5,
		"cert_fair_trade":      0.9,
		"cert_rainforest":      0.7,
		"cert_marine":          0.6,
		"cert_eco_label":       0.7,
		"cert_count":           0.5,
		"origin_score":         1.3,
		"transport_score":      1.0,
		"manufacturing_local":  0.6,
		"vegan":                0.8,
		"vegetarian":           0.4,
		"palm_oil_free":        0.6,
		"sugar_level":          0.4,
		"fat_level":            0.3,
		"saturated_fat_level":  0.3,
		"salt_level":           0.3,
		"ingredient_count":     0.4,
		"additive_risk":        0.5,
		"group_vegetables":     0.9,
		"group_fruits":         0.8,
		"group_legumes":        0.9,
		"group_nuts_seeds":     0.5,
		"group_cereals":        0.5,
		"group_dairy":          -0.3,
		"group_eggs":           0.0,
		"group_meat":           -1.2,
		"group_poultry":        -0.6,
		"group_fish":           -0.3,
		"group_beverages":      0.0,
		"group_snacks_sweets":  -0.5,
		"group_frozen":         -0.2,
		"group_condiments":     0.0,
	}
}

// Heuristic is the rule-based tier: a weighted linear combination of the
// feature vector, affinely rescaled into [0, 100]. It never reports high
// confidence; that ceiling is reserved for the model tier.
type Heuristic struct {
	weights []float64 // resolved to feature-index order
	minSum  float64   // lowest reachable weighted sum
	maxSum  float64   // highest reachable weighted sum
}

// NewHeuristic resolves a named weight table against the encoder's
// feature-index layout. Unknown names are rejected so a renamed feature
// cannot silently drop its weight.
func NewHeuristic(weights HeuristicWeights) (*Heuristic, error) {
	resolved := make([]float64, encode.VectorSize)
	seen := 0
	for i := 0; i < encode.VectorSize; i++ {
		if w, ok := weights[encode.FeatureName(i)]; ok {
			resolved[i] = w
			seen++
		}
	}
	if seen != len(weights) {
		return nil, fmt.Errorf("heuristic weights reference %d unknown feature names", len(weights)-seen)
	}

	h := &Heuristic{weights: resolved}
	for _, w := range resolved {
		// Features live in [0, 1], so each weight contributes [0, w] or
		// [w, 0] to the reachable sum.
		if w > 0 {
			h.maxSum += w
		} else {
			h.minSum += w
		}
	}
	if h.maxSum == h.minSum {
		return nil, fmt.Errorf("heuristic weights are all zero")
	}
	return h, nil
}

// Score computes the rescaled 0-100 heuristic score for a feature vector.
func (h *Heuristic) Score(features []float64) float64 {
	var sum float64
	for i, w := range h.weights {
		if i < len(features) {
			sum += w * features[i]
		}
	}
	score := (sum - h.minSum) / (h.maxSum - h.minSum) * 100.0
	return math.Min(100, math.Max(0, score))
}
