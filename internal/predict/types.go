// EcoScore - Product Sustainability Scoring Engine
// Copyright 2026 Verdant Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/verdantlabs/ecoscore

package predict

// Confidence grades how much trust a prediction deserves.
type Confidence int

const (
	// ConfidenceLow marks predictions with weak signal (sparse input or
	// the category-average tier).
	ConfidenceLow Confidence = iota
	// ConfidenceMedium marks usable predictions below the high bar.
	ConfidenceMedium
	// ConfidenceHigh requires a decisive model output AND rich input
	// data; only the model tier can reach it.
	ConfidenceHigh
)

// String returns a human-readable confidence name.
func (c Confidence) String() string {
	switch c {
	case ConfidenceHigh:
		return "high"
	case ConfidenceMedium:
		return "medium"
	case ConfidenceLow:
		return "low"
	default:
		return "unknown"
	}
}

// MarshalJSON renders the confidence as its string name.
func (c Confidence) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

// Method identifies which tier of the fallback cascade produced a score.
type Method int

const (
	// MethodModel is the learned-model tier.
	MethodModel Method = iota
	// MethodHeuristic is the rule-based weighted-sum tier.
	MethodHeuristic
	// MethodCategoryAverage is the static per-category lowest tier.
	MethodCategoryAverage
)

// String returns a human-readable method name.
func (m Method) String() string {
	switch m {
	case MethodModel:
		return "model"
	case MethodHeuristic:
		return "heuristic"
	case MethodCategoryAverage:
		return "category-average"
	default:
		return "unknown"
	}
}

// MarshalJSON renders the method as its string name.
func (m Method) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// Result is one prediction. The cascade always produces one; absence of
// data degrades Confidence, it never yields a missing result.
type Result struct {
	// Score is the sustainability score on the 0-100 scale.
	Score int `json:"score"`

	// Confidence grades the prediction.
	Confidence Confidence `json:"confidence"`

	// Method names the tier that fired.
	Method Method `json:"method"`

	// Explanation is a human-readable account of which tier fired and why.
	Explanation string `json:"explanation"`

	// FeatureRichness is the number of non-default features in the input.
	FeatureRichness int `json:"feature_richness"`
}
