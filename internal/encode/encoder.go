// EcoScore - Product Sustainability Scoring Engine
// Copyright 2026 Verdant Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/verdantlabs/ecoscore

package encode

import (
	"math"
	"strings"
)

// RawProduct is the externally supplied product record. It is the same
// field shape regardless of source (barcode lookup or user-entered fields);
// any field may be absent. The encoder treats it as immutable.
type RawProduct struct {
	// Categories holds category tags, e.g. "en:fresh-vegetables".
	Categories []string `json:"categories,omitempty"`

	// ProcessingLevel is the 1-4 processing ordinal (1 = unprocessed,
	// 4 = ultra-processed). Zero means unknown.
	ProcessingLevel int `json:"processing_level,omitempty"`

	// Labels holds certification and quality label tags.
	Labels []string `json:"labels,omitempty"`

	// Packaging is free-text packaging description.
	Packaging string `json:"packaging,omitempty"`

	// PackagingTags holds structured packaging tags.
	PackagingTags []string `json:"packaging_tags,omitempty"`

	// OriginCountry is the declared origin country.
	OriginCountry string `json:"origin_country,omitempty"`

	// Origins is free-text origin description.
	Origins string `json:"origins,omitempty"`

	// ManufacturingPlaces is free-text manufacturing location.
	ManufacturingPlaces string `json:"manufacturing_places,omitempty"`

	// NutrientLevels maps nutrient name to "low", "moderate" or "high".
	NutrientLevels map[string]string `json:"nutrient_levels,omitempty"`

	// IngredientCount is the number of listed ingredients. Zero means
	// unknown.
	IngredientCount int `json:"ingredient_count,omitempty"`

	// IngredientAnalysis holds analysis tags such as "en:vegan" or
	// "en:palm-oil-free".
	IngredientAnalysis []string `json:"ingredient_analysis,omitempty"`
}

// Encode maps a raw product record to its fixed-length feature vector.
// It is deterministic and total: a nil record yields the all-defaults
// vector, and any malformed field resolves to its documented default.
func Encode(p *RawProduct) FeatureVector {
	values := make([]float64, VectorSize)
	copy(values, featureDefaults[:])

	if p != nil {
		encodeCategory(p, values)
		encodeProcessing(p, values)
		encodePackaging(p, values)
		encodeCertifications(p, values)
		encodeOrigin(p, values)
		encodeDietary(p, values)
		encodeNutrients(p, values)
		encodeIngredients(p, values)
		encodeFoodGroup(p, values)
	}

	// Final guard: every index clamped and NaN-mapped to its default.
	for i := range values {
		values[i] = guard(i, values[i])
	}

	fv := FeatureVector{Values: values}
	fv.finalize()
	return fv
}

// encodeCategory fills the specificity-weighted category score.
func encodeCategory(p *RawProduct, values []float64) {
	if s, ok := categoryScoreOf(p.Categories); ok {
		values[FeatCategoryScore] = s
	}
}

// encodeProcessing inverts and normalizes the 1-4 processing ordinal:
// level 1 -> 1.0, level 4 -> 0.0. Out-of-range codes keep the default.
func encodeProcessing(p *RawProduct, values []float64) {
	if p.ProcessingLevel < 1 || p.ProcessingLevel > 4 {
		return
	}
	values[FeatProcessingScore] = float64(4-p.ProcessingLevel) / 3.0
}

// encodePackaging detects material families via keyword sets against the
// free text and tags, and derives the continuity score from material
// diversity (one material 1.0, every additional material costs 0.25).
func encodePackaging(p *RawProduct, values []float64) {
	text := strings.ToLower(p.Packaging)
	for _, tag := range p.PackagingTags {
		text += " " + strings.ToLower(tag)
	}
	if strings.TrimSpace(text) == "" {
		return
	}

	materials := 0
	for family, keywords := range packagingKeywords {
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				values[packagingFeature[family]] = 1.0
				if family != "recyclable" {
					materials++
				}
				break
			}
		}
	}
	if materials > 0 {
		values[FeatPackagingContinuity] = clamp01(1.0 - 0.25*float64(materials-1))
	}
}

// encodeCertifications checks each certification family's keyword set
// against the label tags and fills the saturating count aggregate.
func encodeCertifications(p *RawProduct, values []float64) {
	if len(p.Labels) == 0 {
		return
	}
	text := strings.ToLower(strings.Join(p.Labels, " "))

	detected := 0
	for family, keywords := range certKeywords {
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				values[certFeature[family]] = 1.0
				detected++
				break
			}
		}
	}
	if detected > 0 {
		values[FeatCertCount] = clamp01(float64(detected) / certCountSaturation)
	}
}

// encodeOrigin resolves origin text to a sustainability weight and the
// matching transport distance band, and flags local manufacturing.
func encodeOrigin(p *RawProduct, values []float64) {
	text := strings.ToLower(p.OriginCountry + " " + p.Origins)
	text = strings.ReplaceAll(text, " ", "-")

	best := -1.0
	for kw, w := range originWeights {
		if strings.Contains(text, kw) && w > best {
			best = w
		}
	}
	if best >= 0 {
		values[FeatOriginScore] = best
		values[FeatTransportScore] = transportScoreFor(best)
	}

	places := strings.ToLower(p.ManufacturingPlaces)
	for _, kw := range localManufacturingKeywords {
		if strings.Contains(places, kw) {
			values[FeatManufacturingLocal] = 1.0
			break
		}
	}
}

// encodeDietary fills the vegan/vegetarian/palm-oil flags from the
// ingredient-analysis tags.
func encodeDietary(p *RawProduct, values []float64) {
	for _, raw := range p.IngredientAnalysis {
		switch normalizeTag(raw) {
		case "en:vegan":
			values[FeatVegan] = 1.0
			values[FeatVegetarian] = 1.0
		case "en:vegetarian":
			values[FeatVegetarian] = 1.0
		case "en:palm-oil-free":
			values[FeatPalmOilFree] = 1.0
		case "en:palm-oil":
			values[FeatPalmOilFree] = 0.0
		}
	}
}

// nutrientFeature maps nutrient-level keys to feature indices.
var nutrientFeature = map[string]int{
	"sugars":        FeatSugarLevel,
	"sugar":         FeatSugarLevel,
	"fat":           FeatFatLevel,
	"saturated-fat": FeatSatFatLevel,
	"salt":          FeatSaltLevel,
	"sodium":        FeatSaltLevel,
}

// encodeNutrients maps declared nutrient levels: low is favorable (1.0),
// high unfavorable (0.0). Unknown level strings keep the default.
func encodeNutrients(p *RawProduct, values []float64) {
	for key, level := range p.NutrientLevels {
		idx, ok := nutrientFeature[strings.ToLower(strings.TrimSpace(key))]
		if !ok {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(level)) {
		case "low":
			values[idx] = 1.0
		case "moderate":
			values[idx] = 0.5
		case "high":
			values[idx] = 0.0
		}
	}
}

// ingredientCountScale controls the exponential saturation of the
// ingredient-count feature: few ingredients score high, long lists low.
const ingredientCountScale = 10.0

// encodeIngredients fills the normalized ingredient count and the additive
// risk indicator.
func encodeIngredients(p *RawProduct, values []float64) {
	if p.IngredientCount > 0 {
		values[FeatIngredientCount] = math.Exp(-float64(p.IngredientCount-1) / ingredientCountScale)
	}

	for _, raw := range p.IngredientAnalysis {
		switch normalizeTag(raw) {
		case "en:no-additives", "en:additive-free":
			values[FeatAdditiveRisk] = 1.0
		case "en:additives", "en:contains-additives":
			values[FeatAdditiveRisk] = 0.0
		}
	}
}

// encodeFoodGroup sets exactly one food-group indicator by exact tag
// membership. Exact matching avoids false positives from partial tag name
// overlap; the first group in foodGroupOrder with a member tag wins, which
// keeps the indicators mutually exclusive.
func encodeFoodGroup(p *RawProduct, values []float64) {
	for gi, group := range foodGroupOrder {
		tags := foodGroupTags[group]
		for _, raw := range p.Categories {
			if _, ok := tags[normalizeTag(raw)]; ok {
				values[FeatFoodGroupFirst+gi] = 1.0
				return
			}
		}
	}
}
