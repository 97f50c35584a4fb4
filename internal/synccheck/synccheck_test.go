// EcoScore - Product Sustainability Scoring Engine
// Copyright 2026 Verdant Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/verdantlabs/ecoscore

package synccheck

import (
	"testing"
	"time"

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

func consistentArtifact() *model.Artifact {
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

func TestValidateConsistentArtifact(t *testing.T) {
	report := Validate(consistentArtifact())
	if !report.Passed() {
		for _, c := range report.Failures() {
			t.Errorf("unexpected failure %s: %s", c.Name, c.Detail)
		}
	}
	if len(report.Checks) < 8 {
		t.Errorf("expected a full check battery, got %d checks", len(report.Checks))
	}
}

func TestValidateNilArtifact(t *testing.T) {
	report := Validate(nil)
	if report.Passed() {
		t.Fatal("nil artifact must fail")
	}
	if len(report.Failures()) != 1 || report.Failures()[0].Name != "artifact_present" {
		t.Errorf("expected a single artifact_present failure, got %+v", report.Failures())
	}
}

func TestValidateReportsAllDrift(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*model.Artifact)
		failCheck string
	}{
		{
			"stale version",
			func(a *model.Artifact) { a.Version = "1" },
			"artifact_version",
		},
		{
			"wrong vector length",
			func(a *model.Artifact) { a.FeatureMeans = a.FeatureMeans[:30] },
			"feature_vector_length",
		},
		{
			"mutated layer columns",
			func(a *model.Artifact) { a.Layers[1].Weights[4] = a.Layers[1].Weights[4][:15] },
			"layer_1_shape",
		},
		{
			"missing layer",
			func(a *model.Artifact) { a.Layers = a.Layers[:3] },
			"layer_count",
		},
		{
			"short batch norm",
			func(a *model.Artifact) { a.BatchNorms[2].Variance = a.BatchNorms[2].Variance[:4] },
			"batch_norm_2_length",
		},
		{
			"category table drift",
			func(a *model.Artifact) { a.Meta.CategoryTableSize += categoryTableTolerance + 1 },
			"category_table_size",
		},
		{
			"food group drift",
			func(a *model.Artifact) { a.Meta.FoodGroups[0] = "invented_group" },
			"food_groups",
		},
		{
			"missing food group",
			func(a *model.Artifact) { a.Meta.FoodGroups = a.Meta.FoodGroups[:5] },
			"food_groups",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			art := consistentArtifact()
			tt.mutate(art)

			// A broken artifact yields a failing report, never a panic.
			report := Validate(art)
			if report.Passed() {
				t.Fatal("expected the drift to be caught")
			}
			found := false
			for _, c := range report.Failures() {
				if c.Name == tt.failCheck {
					found = true
				}
			}
			if !found {
				t.Errorf("expected check %q to fail, failures: %+v", tt.failCheck, report.Failures())
			}
		})
	}
}

func TestCategoryTableTolerance(t *testing.T) {
	tests := []struct {
		name   string
		delta  int
		wantOK bool
	}{
		{"exact match", 0, true},
		{"one above", 1, true},
		{"at tolerance", categoryTableTolerance, true},
		{"at negative tolerance", -categoryTableTolerance, true},
		{"beyond tolerance", categoryTableTolerance + 1, false},
		{"beyond negative tolerance", -(categoryTableTolerance + 1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			art := consistentArtifact()
			art.Meta.CategoryTableSize += tt.delta
			if got := Validate(art).Passed(); got != tt.wantOK {
				t.Errorf("delta %d: passed = %v, want %v", tt.delta, got, tt.wantOK)
			}
		})
	}
}

func TestValidateReportsMultipleFailuresAtOnce(t *testing.T) {
	art := consistentArtifact()
	art.Meta.CategoryTableSize += 5
	art.Meta.FoodGroups = append(art.Meta.FoodGroups, "extra")
	art.FeatureStds = art.FeatureStds[:10]

	report := Validate(art)
	if len(report.Failures()) < 3 {
		t.Errorf("expected at least 3 failures reported together, got %d", len(report.Failures()))
	}
}
