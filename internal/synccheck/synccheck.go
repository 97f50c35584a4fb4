// EcoScore - Product Sustainability Scoring Engine
// Copyright 2026 Verdant Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/verdantlabs/ecoscore

// Package synccheck verifies that the training pipeline and the
// inference engine have not drifted apart. It cross-checks a trained
// artifact against the feature encoder's compiled-in contract and
// scans the inference package source for training-only constructs.
//
// Drift between the two sides is silent at runtime: the engine would
// happily multiply mismatched matrices or apply a stale category
// table and produce confidently wrong scores. The validator turns
// that silence into a failing check.
package synccheck

import (
	"fmt"
	"sort"

	"github.com/verdantlabs/ecoscore/internal/encode"
	"github.com/verdantlabs/ecoscore/internal/model"
)

// Check is a single named validation with its outcome.
type Check struct {
	Name   string `json:"name"`
	Pass   bool   `json:"pass"`
	Detail string `json:"detail"`
}

// Report aggregates every check from one validator run.
type Report struct {
	Checks []Check `json:"checks"`
}

// Passed reports whether every check in the report succeeded.
func (r *Report) Passed() bool {
	for _, c := range r.Checks {
		if !c.Pass {
			return false
		}
	}
	return true
}

// Failures returns the failing checks, in run order.
func (r *Report) Failures() []Check {
	var out []Check
	for _, c := range r.Checks {
		if !c.Pass {
			out = append(out, c)
		}
	}
	return out
}

func (r *Report) add(name string, pass bool, detail string) {
	r.Checks = append(r.Checks, Check{Name: name, Pass: pass, Detail: detail})
}

// Validate runs every structural check of an artifact against the
// encoder contract. It never returns early: a broken artifact yields
// a report with failing checks, not an error.
func Validate(art *model.Artifact) *Report {
	r := &Report{}
	if art == nil {
		r.add("artifact_present", false, "no artifact to validate")
		return r
	}
	r.add("artifact_present", true, "artifact loaded")

	checkVersion(r, art)
	checkVectorLength(r, art)
	checkLayerShapes(r, art)
	checkBatchNorms(r, art)
	checkCategoryTable(r, art)
	checkFoodGroups(r, art)
	return r
}

func checkVersion(r *Report, art *model.Artifact) {
	ok := art.Version == model.CurrentVersion
	r.add("artifact_version", ok,
		fmt.Sprintf("artifact version %q, engine expects %q", art.Version, model.CurrentVersion))
}

func checkVectorLength(r *Report, art *model.Artifact) {
	ok := len(art.FeatureMeans) == encode.VectorSize && len(art.FeatureStds) == encode.VectorSize
	r.add("feature_vector_length", ok,
		fmt.Sprintf("encoder emits %d features, artifact normalizes %d means / %d stds",
			encode.VectorSize, len(art.FeatureMeans), len(art.FeatureStds)))
}

func checkLayerShapes(r *Report, art *model.Artifact) {
	sizes := model.LayerSizes()
	if len(art.Layers) != len(sizes)-1 {
		r.add("layer_count", false,
			fmt.Sprintf("architecture %s needs %d layers, artifact has %d",
				model.ArchitectureString(), len(sizes)-1, len(art.Layers)))
		return
	}
	r.add("layer_count", true, fmt.Sprintf("%d layers match architecture %s", len(art.Layers), model.ArchitectureString()))

	for i, layer := range art.Layers {
		in, out := sizes[i], sizes[i+1]
		name := fmt.Sprintf("layer_%d_shape", i)
		if len(layer.Weights) != out || len(layer.Biases) != out {
			r.add(name, false, fmt.Sprintf("layer %d wants %d output rows, has %d weight rows and %d biases",
				i, out, len(layer.Weights), len(layer.Biases)))
			continue
		}
		cols := -1
		for _, row := range layer.Weights {
			if cols == -1 {
				cols = len(row)
			}
			if len(row) != in {
				cols = len(row)
				break
			}
		}
		if cols != in {
			r.add(name, false, fmt.Sprintf("layer %d wants %d input columns, found row with %d", i, in, cols))
			continue
		}
		r.add(name, true, fmt.Sprintf("layer %d is %dx%d", i, out, in))
	}
}

func checkBatchNorms(r *Report, art *model.Artifact) {
	hidden := model.HiddenSizes
	if len(art.BatchNorms) != len(hidden) {
		r.add("batch_norm_count", false,
			fmt.Sprintf("%d hidden layers need %d batch norm groups, artifact has %d",
				len(hidden), len(hidden), len(art.BatchNorms)))
		return
	}
	r.add("batch_norm_count", true, fmt.Sprintf("%d batch norm groups", len(art.BatchNorms)))

	for i, bn := range art.BatchNorms {
		name := fmt.Sprintf("batch_norm_%d_length", i)
		want := hidden[i]
		ok := len(bn.Scale) == want && len(bn.Shift) == want &&
			len(bn.Mean) == want && len(bn.Variance) == want
		r.add(name, ok, fmt.Sprintf("hidden layer %d width %d, batch norm vectors %d/%d/%d/%d",
			i, want, len(bn.Scale), len(bn.Shift), len(bn.Mean), len(bn.Variance)))
	}
}

// categoryTableTolerance allows the encoder's category table to gain or
// lose a couple of entries between training and deploy without failing
// the gate; larger drift means the model was trained against a
// materially different table.
const categoryTableTolerance = 2

func checkCategoryTable(r *Report, art *model.Artifact) {
	diff := art.Meta.CategoryTableSize - encode.CategoryTableSize()
	if diff < 0 {
		diff = -diff
	}
	r.add("category_table_size", diff <= categoryTableTolerance,
		fmt.Sprintf("artifact trained against %d categories, encoder ships %d (tolerance %d)",
			art.Meta.CategoryTableSize, encode.CategoryTableSize(), categoryTableTolerance))
}

func checkFoodGroups(r *Report, art *model.Artifact) {
	want := encode.FoodGroups()
	got := append([]string(nil), art.Meta.FoodGroups...)
	if len(got) != len(want) {
		r.add("food_groups", false,
			fmt.Sprintf("artifact lists %d food groups, encoder defines %d", len(got), len(want)))
		return
	}
	sortedWant := append([]string(nil), want...)
	sort.Strings(sortedWant)
	sort.Strings(got)
	for i := range got {
		if got[i] != sortedWant[i] {
			r.add("food_groups", false,
				fmt.Sprintf("food group set differs: artifact has %q, encoder has %q", got[i], sortedWant[i]))
			return
		}
	}
	r.add("food_groups", true, fmt.Sprintf("%d food groups match", len(want)))
}
