// EcoScore - Product Sustainability Scoring Engine
// Copyright 2026 Verdant Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/verdantlabs/ecoscore

package encode

import "strings"

// categoryScores maps a normalized category tag to an empirically derived
// sustainability scalar in [0, 1]. The table is built offline from aggregate
// corpus statistics and embedded read-only here; it is versioned alongside
// the model artifact because changing it without retraining invalidates the
// model's learned associations.
var categoryScores = map[string]float64{
	"en:vegetables":            0.90,
	"en:fresh-vegetables":      0.92,
	"en:fruits":                0.88,
	"en:fresh-fruits":          0.90,
	"en:dried-fruits":          0.80,
	"en:legumes":               0.90,
	"en:lentils":               0.92,
	"en:chickpeas":             0.91,
	"en:beans":                 0.89,
	"en:nuts":                  0.78,
	"en:seeds":                 0.82,
	"en:cereals":               0.80,
	"en:whole-grain-cereals":   0.84,
	"en:breads":                0.74,
	"en:pastas":                0.72,
	"en:rices":                 0.62,
	"en:breakfast-cereals":     0.58,
	"en:plant-based-foods":     0.85,
	"en:plant-based-beverages": 0.78,
	"en:tofu":                  0.86,
	"en:dairies":               0.45,
	"en:milks":                 0.48,
	"en:cheeses":               0.35,
	"en:yogurts":               0.50,
	"en:butters":               0.30,
	"en:eggs":                  0.55,
	"en:meats":                 0.20,
	"en:beef":                  0.10,
	"en:lamb-meat":             0.12,
	"en:pork":                  0.25,
	"en:poultries":             0.35,
	"en:chicken":               0.36,
	"en:processed-meats":       0.15,
	"en:fishes":                0.40,
	"en:farmed-fishes":         0.35,
	"en:wild-caught-fishes":    0.42,
	"en:seafood":               0.38,
	"en:canned-fishes":         0.42,
	"en:beverages":             0.55,
	"en:waters":                0.70,
	"en:sodas":                 0.30,
	"en:fruit-juices":          0.55,
	"en:coffees":               0.35,
	"en:teas":                  0.55,
	"en:wines":                 0.50,
	"en:beers":                 0.52,
	"en:snacks":                0.40,
	"en:sweet-snacks":          0.35,
	"en:salty-snacks":          0.38,
	"en:chocolates":            0.30,
	"en:candies":               0.32,
	"en:biscuits-and-cakes":    0.38,
	"en:frozen-foods":          0.45,
	"en:ready-meals":           0.35,
	"en:sauces":                0.48,
	"en:condiments":            0.55,
	"en:spreads":               0.42,
	"en:oils":                  0.45,
	"en:olive-oils":            0.60,
	"en:palm-oils":             0.10,
	"en:honeys":                0.65,
	"en:sugars":                0.40,
}

// CategoryTableSize returns the number of entries in the category score
// table. The sync validator uses it for count-based parity checks against
// the table size recorded in the artifact.
func CategoryTableSize() int {
	return len(categoryScores)
}

// CategoryAverage returns the table score for the first matching category
// tag, for use as the lowest-tier fallback. The second return reports
// whether any tag matched.
func CategoryAverage(tags []string) (float64, bool) {
	for _, tag := range tags {
		if s, ok := categoryScores[normalizeTag(tag)]; ok {
			return s, true
		}
	}
	return 0, false
}

// tagSpecificity weights a category tag by its hyphen count: more hyphens
// indicate a more specific category (e.g. "en:whole-grain-cereals" beats
// "en:cereals"). Heuristic proxy; see the category table derivation notes.
func tagSpecificity(tag string) float64 {
	return 1.0 + float64(strings.Count(tag, "-"))
}

// normalizeTag lower-cases a tag and ensures the "en:" language prefix so
// both prefixed and bare tag spellings hit the table.
func normalizeTag(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return tag
	}
	if !strings.Contains(tag, ":") {
		tag = "en:" + tag
	}
	return tag
}

// categoryScoreOf computes the specificity-weighted average of the table
// scores of all matching tags. Returns (default, false) when nothing matches.
func categoryScoreOf(tags []string) (float64, bool) {
	var weighted, weight float64
	for _, raw := range tags {
		tag := normalizeTag(raw)
		s, ok := categoryScores[tag]
		if !ok {
			continue
		}
		w := tagSpecificity(tag)
		weighted += w * s
		weight += w
	}
	if weight == 0 {
		return featureDefaults[FeatCategoryScore], false
	}
	return weighted / weight, true
}
