// EcoScore - Product Sustainability Scoring Engine
// Copyright 2026 Verdant Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/verdantlabs/ecoscore

package encode

import "math"

// VectorSize is the fixed length of every feature vector. It is a contract
// shared verbatim with the trained model artifact; changing it invalidates
// every deployed model and must be caught by the sync validator.
const VectorSize = 40

// MinValidFeatures is the minimum number of non-default features required
// for a vector to be considered valid input for scoring.
const MinValidFeatures = 2

// Feature vector index layout. Indices are grouped by sub-encoder; the
// order is frozen and must never be reorganized without retraining.
const (
	// FeatCategoryScore is the specificity-weighted average of the
	// category-table scores of all matching category tags.
	FeatCategoryScore = 0

	// FeatProcessingScore is the inverted, normalized 1-4 processing-level
	// ordinal (1 = unprocessed -> 1.0, 4 = ultra-processed -> 0.0).
	FeatProcessingScore = 1

	// Packaging material indicators, detected via keyword sets against
	// free text and tags.
	FeatPackagingRecyclable = 2
	FeatPackagingGlass      = 3
	FeatPackagingPlastic    = 4
	FeatPackagingMetal      = 5
	FeatPackagingPaper      = 6

	// FeatPackagingContinuity penalizes material diversity: a single
	// detected material scores 1.0, each additional material reduces it.
	FeatPackagingContinuity = 7

	// Certification family indicators.
	FeatCertOrganic    = 8
	FeatCertFairTrade  = 9
	FeatCertRainforest = 10
	FeatCertMarine     = 11
	FeatCertEcoLabel   = 12

	// FeatCertCount is a saturating aggregate over all detected
	// certification families.
	FeatCertCount = 13

	// Origin and transport.
	FeatOriginScore        = 14
	FeatTransportScore     = 15
	FeatManufacturingLocal = 16

	// Dietary flags from ingredient-analysis tags.
	FeatVegan       = 17
	FeatVegetarian  = 18
	FeatPalmOilFree = 19

	// Nutrient-level flags: low -> 1.0, moderate -> 0.5, high -> 0.0.
	FeatSugarLevel  = 20
	FeatFatLevel    = 21
	FeatSatFatLevel = 22
	FeatSaltLevel   = 23

	// FeatIngredientCount is the ingredient count normalized with
	// saturation (more ingredients -> lower score).
	FeatIngredientCount = 24

	// FeatAdditiveRisk reflects additive-related ingredient-analysis tags.
	FeatAdditiveRisk = 25

	// Mutually exclusive food-group indicators, computed by exact tag
	// membership (not substring matching). FeatFoodGroupFirst through
	// FeatFoodGroupFirst+len(foodGroupOrder)-1.
	FeatFoodGroupFirst = 26
)

// featureDefaults holds the documented per-index default value used when
// source data is missing and as the NaN-guard target.
var featureDefaults = [VectorSize]float64{
	FeatCategoryScore:       0.5,
	FeatProcessingScore:     0.5,
	FeatPackagingRecyclable: 0.0,
	FeatPackagingGlass:      0.0,
	FeatPackagingPlastic:    0.0,
	FeatPackagingMetal:      0.0,
	FeatPackagingPaper:      0.0,
	FeatPackagingContinuity: 0.5,
	FeatCertOrganic:         0.0,
	FeatCertFairTrade:       0.0,
	FeatCertRainforest:      0.0,
	FeatCertMarine:          0.0,
	FeatCertEcoLabel:        0.0,
	FeatCertCount:           0.0,
	FeatOriginScore:         0.5,
	FeatTransportScore:      0.5,
	FeatManufacturingLocal:  0.0,
	FeatVegan:               0.0,
	FeatVegetarian:          0.0,
	FeatPalmOilFree:         0.5,
	FeatSugarLevel:          0.5,
	FeatFatLevel:            0.5,
	FeatSatFatLevel:         0.5,
	FeatSaltLevel:           0.5,
	FeatIngredientCount:     0.5,
	FeatAdditiveRisk:        0.5,
	// Food-group indicators default to 0 (zero value).
}

// featureNames maps indices to stable identifiers used in explanations,
// heuristic weight tables, and diagnostics.
var featureNames = [VectorSize]string{
	"category_score", "processing_score",
	"packaging_recyclable", "packaging_glass", "packaging_plastic",
	"packaging_metal", "packaging_paper", "packaging_continuity",
	"cert_organic", "cert_fair_trade", "cert_rainforest", "cert_marine",
	"cert_eco_label", "cert_count",
	"origin_score", "transport_score", "manufacturing_local",
	"vegan", "vegetarian", "palm_oil_free",
	"sugar_level", "fat_level", "saturated_fat_level", "salt_level",
	"ingredient_count", "additive_risk",
	"group_vegetables", "group_fruits", "group_legumes", "group_nuts_seeds",
	"group_cereals", "group_dairy", "group_eggs", "group_meat",
	"group_poultry", "group_fish", "group_beverages", "group_snacks_sweets",
	"group_frozen", "group_condiments",
}

// DefaultValue returns the documented default for the given feature index.
// Out-of-range indices return 0.
func DefaultValue(index int) float64 {
	if index < 0 || index >= VectorSize {
		return 0
	}
	return featureDefaults[index]
}

// FeatureName returns the stable identifier for the given feature index.
// Out-of-range indices return an empty string.
func FeatureName(index int) string {
	if index < 0 || index >= VectorSize {
		return ""
	}
	return featureNames[index]
}

// FeatureVector is the ordered, fixed-length encoding of one product record.
// Values are immutable after creation by contract; callers must not modify
// the slice.
type FeatureVector struct {
	// Values holds exactly VectorSize elements, each in [0, 1].
	Values []float64

	// NonDefaultCount is the number of indices whose value differs from
	// the documented default. It serves as a data-richness signal for
	// confidence grading.
	NonDefaultCount int

	// Valid reports whether at least MinValidFeatures indices carry
	// non-default information.
	Valid bool
}

// nonDefaultEpsilon is the tolerance when comparing a value to its default.
const nonDefaultEpsilon = 1e-9

// finalize computes NonDefaultCount and Valid from the raw values.
func (v *FeatureVector) finalize() {
	count := 0
	for i, val := range v.Values {
		if math.Abs(val-featureDefaults[i]) > nonDefaultEpsilon {
			count++
		}
	}
	v.NonDefaultCount = count
	v.Valid = count >= MinValidFeatures
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// guard replaces a non-finite value with the per-index default and clamps
// the result to [0, 1]. Every sub-encoder output passes through it.
func guard(index int, x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return featureDefaults[index]
	}
	return clamp01(x)
}
