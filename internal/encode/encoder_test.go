// EcoScore - Product Sustainability Scoring Engine
// Copyright 2026 Verdant Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/verdantlabs/ecoscore

package encode

import (
	"math"
	"math/rand"
	"testing"
)

func TestEncodeNilProduct(t *testing.T) {
	fv := Encode(nil)

	if len(fv.Values) != VectorSize {
		t.Fatalf("expected %d values, got %d", VectorSize, len(fv.Values))
	}
	for i, v := range fv.Values {
		if v != DefaultValue(i) {
			t.Errorf("index %d (%s): expected default %v, got %v", i, FeatureName(i), DefaultValue(i), v)
		}
	}
	if fv.NonDefaultCount != 0 {
		t.Errorf("expected zero non-default features, got %d", fv.NonDefaultCount)
	}
	if fv.Valid {
		t.Error("all-default vector must not be valid")
	}
}

func TestEncodeDeterministic(t *testing.T) {
	p := &RawProduct{
		Categories:      []string{"en:fresh-vegetables", "en:vegetables"},
		ProcessingLevel: 1,
		Labels:          []string{"en:organic", "en:fair-trade"},
		Packaging:       "glass jar, recyclable",
		OriginCountry:   "France",
		NutrientLevels:  map[string]string{"sugars": "low", "salt": "moderate"},
		IngredientCount: 3,
	}

	a := Encode(p)
	b := Encode(p)
	for i := range a.Values {
		if a.Values[i] != b.Values[i] {
			t.Fatalf("index %d differs between identical encodings: %v vs %v", i, a.Values[i], b.Values[i])
		}
	}
	if a.NonDefaultCount != b.NonDefaultCount || a.Valid != b.Valid {
		t.Fatal("richness differs between identical encodings")
	}
}

func TestEncodeAllValuesInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	categories := []string{"en:vegetables", "en:beef", "nonsense", "", "en:sodas"}
	levels := []string{"low", "moderate", "high", "bogus"}

	for i := 0; i < 500; i++ {
		p := &RawProduct{
			Categories:          []string{categories[rng.Intn(len(categories))]},
			ProcessingLevel:     rng.Intn(8) - 2,
			Packaging:           []string{"", "plastic film", "glass bottle tin"}[rng.Intn(3)],
			OriginCountry:       []string{"", "France", "China", "atlantis"}[rng.Intn(4)],
			IngredientCount:     rng.Intn(60) - 5,
			NutrientLevels:      map[string]string{"fat": levels[rng.Intn(len(levels))]},
			IngredientAnalysis:  []string{"en:vegan", "en:palm-oil", "junk"}[:rng.Intn(4)],
			ManufacturingPlaces: []string{"", "made in Germany"}[rng.Intn(2)],
		}
		fv := Encode(p)
		for j, v := range fv.Values {
			if math.IsNaN(v) || v < 0 || v > 1 {
				t.Fatalf("iteration %d index %d (%s) out of range: %v", i, j, FeatureName(j), v)
			}
		}
	}
}

func TestEncodeProcessingLevel(t *testing.T) {
	tests := []struct {
		level int
		want  float64
	}{
		{1, 1.0},
		{2, 2.0 / 3.0},
		{3, 1.0 / 3.0},
		{4, 0.0},
		{0, DefaultValue(FeatProcessingScore)},
		{5, DefaultValue(FeatProcessingScore)},
		{-1, DefaultValue(FeatProcessingScore)},
	}
	for _, tt := range tests {
		fv := Encode(&RawProduct{ProcessingLevel: tt.level})
		got := fv.Values[FeatProcessingScore]
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("processing level %d: expected %v, got %v", tt.level, tt.want, got)
		}
	}
}

func TestEncodePackagingContinuity(t *testing.T) {
	tests := []struct {
		name      string
		packaging string
		want      float64
	}{
		{"single material", "glass bottle", 1.0},
		{"two materials", "glass jar with metal lid", 0.75},
		{"three materials", "cardboard box, plastic film, tin", 0.5},
		{"recyclable does not count as material", "recyclable glass", 1.0},
		{"no packaging info", "", DefaultValue(FeatPackagingContinuity)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fv := Encode(&RawProduct{Packaging: tt.packaging})
			got := fv.Values[FeatPackagingContinuity]
			if got != tt.want {
				t.Errorf("expected continuity %v, got %v", tt.want, got)
			}
		})
	}
}

func TestEncodeCertifications(t *testing.T) {
	fv := Encode(&RawProduct{Labels: []string{"en:organic", "en:fairtrade", "en:msc"}})

	if fv.Values[FeatCertOrganic] != 1.0 {
		t.Error("organic certification not detected")
	}
	if fv.Values[FeatCertFairTrade] != 1.0 {
		t.Error("fair trade certification not detected")
	}
	if fv.Values[FeatCertMarine] != 1.0 {
		t.Error("marine certification not detected")
	}
	// Three families saturate the aggregate.
	if fv.Values[FeatCertCount] != 1.0 {
		t.Errorf("expected saturated cert count 1.0, got %v", fv.Values[FeatCertCount])
	}

	one := Encode(&RawProduct{Labels: []string{"en:organic"}})
	if math.Abs(one.Values[FeatCertCount]-1.0/3.0) > 1e-12 {
		t.Errorf("expected cert count 1/3, got %v", one.Values[FeatCertCount])
	}
}

func TestEncodeOriginBands(t *testing.T) {
	tests := []struct {
		origin        string
		wantTransport float64
	}{
		{"France", 1.0},
		{"Italy", 0.75},
		{"Morocco", 0.5},
		{"China", 0.2},
	}
	for _, tt := range tests {
		fv := Encode(&RawProduct{OriginCountry: tt.origin})
		if got := fv.Values[FeatTransportScore]; got != tt.wantTransport {
			t.Errorf("origin %q: expected transport %v, got %v", tt.origin, tt.wantTransport, got)
		}
	}

	unknown := Encode(&RawProduct{OriginCountry: "atlantis"})
	if unknown.Values[FeatOriginScore] != DefaultValue(FeatOriginScore) {
		t.Error("unknown origin must keep the default origin score")
	}
}

func TestEncodeNutrientLevels(t *testing.T) {
	fv := Encode(&RawProduct{NutrientLevels: map[string]string{
		"sugars":        "low",
		"fat":           "moderate",
		"saturated-fat": "high",
		"salt":          "bogus",
		"unknown":       "low",
	}})

	if fv.Values[FeatSugarLevel] != 1.0 {
		t.Errorf("low sugar: expected 1.0, got %v", fv.Values[FeatSugarLevel])
	}
	if fv.Values[FeatFatLevel] != 0.5 {
		t.Errorf("moderate fat: expected 0.5, got %v", fv.Values[FeatFatLevel])
	}
	if fv.Values[FeatSatFatLevel] != 0.0 {
		t.Errorf("high saturated fat: expected 0.0, got %v", fv.Values[FeatSatFatLevel])
	}
	if fv.Values[FeatSaltLevel] != DefaultValue(FeatSaltLevel) {
		t.Errorf("unparseable level must keep the default, got %v", fv.Values[FeatSaltLevel])
	}
}

func TestEncodeFoodGroupExactMatch(t *testing.T) {
	tests := []struct {
		name     string
		tags     []string
		wantName string
	}{
		{"vegetables", []string{"en:fresh-vegetables"}, "group_vegetables"},
		{"meat", []string{"en:beef"}, "group_meat"},
		{"no substring match on partial tag", []string{"en:coconuts"}, ""},
		{"no substring match on meat substitutes", []string{"en:meat-substitutes"}, ""},
		{"first group in order wins", []string{"en:beef", "en:vegetables"}, "group_vegetables"},
		{"bare tag normalized", []string{"vegetables"}, "group_vegetables"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fv := Encode(&RawProduct{Categories: tt.tags})
			set := ""
			count := 0
			for i := FeatFoodGroupFirst; i < VectorSize; i++ {
				if fv.Values[i] == 1.0 {
					set = FeatureName(i)
					count++
				}
			}
			if count > 1 {
				t.Fatalf("food-group indicators must be mutually exclusive, %d set", count)
			}
			if set != tt.wantName {
				t.Errorf("expected group %q, got %q", tt.wantName, set)
			}
		})
	}
}

func TestEncodeIngredientCountSaturation(t *testing.T) {
	one := Encode(&RawProduct{IngredientCount: 1})
	if one.Values[FeatIngredientCount] != 1.0 {
		t.Errorf("single ingredient: expected 1.0, got %v", one.Values[FeatIngredientCount])
	}

	many := Encode(&RawProduct{IngredientCount: 60})
	if many.Values[FeatIngredientCount] >= 0.01 {
		t.Errorf("long ingredient list must approach zero, got %v", many.Values[FeatIngredientCount])
	}

	prev := 1.0
	for n := 2; n <= 30; n += 4 {
		fv := Encode(&RawProduct{IngredientCount: n})
		if fv.Values[FeatIngredientCount] >= prev {
			t.Fatalf("ingredient count feature must decrease monotonically, n=%d", n)
		}
		prev = fv.Values[FeatIngredientCount]
	}
}

func TestEncodeRichnessAndValidity(t *testing.T) {
	sparse := Encode(&RawProduct{ProcessingLevel: 2})
	if sparse.NonDefaultCount != 1 {
		t.Fatalf("expected 1 non-default feature, got %d", sparse.NonDefaultCount)
	}
	if sparse.Valid {
		t.Error("one non-default feature must not be valid")
	}

	enough := Encode(&RawProduct{ProcessingLevel: 2, Categories: []string{"en:vegetables"}})
	if !enough.Valid {
		t.Errorf("expected valid vector with %d non-default features", enough.NonDefaultCount)
	}
}

func TestCategoryAverage(t *testing.T) {
	avg, ok := CategoryAverage([]string{"en:vegetables", "en:beef"})
	if !ok {
		t.Fatal("expected a category average for known tags")
	}
	if avg <= 0 || avg >= 1 {
		t.Errorf("category average out of range: %v", avg)
	}

	if _, ok := CategoryAverage([]string{"en:unknown-thing"}); ok {
		t.Error("unknown tags must not produce an average")
	}
	if _, ok := CategoryAverage(nil); ok {
		t.Error("nil tags must not produce an average")
	}
}

func TestCategorySpecificityWeighting(t *testing.T) {
	// The more specific (hyphenated) tag carries more weight, so the
	// combined score sits closer to the specific tag's score.
	generic := Encode(&RawProduct{Categories: []string{"en:cereals"}}).Values[FeatCategoryScore]
	specific := Encode(&RawProduct{Categories: []string{"en:whole-grain-cereals"}}).Values[FeatCategoryScore]
	combined := Encode(&RawProduct{Categories: []string{"en:cereals", "en:whole-grain-cereals"}}).Values[FeatCategoryScore]

	if generic == specific {
		t.Fatal("table scores do not separate these tags")
	}
	mid := (generic + specific) / 2
	distCombined := math.Abs(combined - specific)
	distMid := math.Abs(mid - specific)
	if distCombined >= distMid {
		t.Errorf("combined score %v should lean toward the specific tag %v (generic %v)", combined, specific, generic)
	}
}
