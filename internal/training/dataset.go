// EcoScore - Product Sustainability Scoring Engine
// Copyright 2026 Verdant Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/verdantlabs/ecoscore

package training

import (
	"fmt"
	"math"
	"math/rand"
	"os"

	"github.com/goccy/go-json"

	"github.com/verdantlabs/ecoscore/internal/encode"
)

// Record is one labeled corpus entry: a raw product plus its ground-truth
// sustainability score on the 0-100 scale.
type Record struct {
	Product encode.RawProduct `json:"product"`
	Score   float64           `json:"score"`
}

// Example is one training example: an encoded feature vector and a target
// label scaled to [0, 1]. Immutable once constructed.
type Example struct {
	Features []float64
	Target   float64
}

// DropStats counts corpus records rejected during dataset construction.
// Rejections are reported, never silently ignored.
type DropStats struct {
	// MissingLabel counts records without a numeric score in [0, 100].
	MissingLabel int

	// MissingCategory counts records without any category tag.
	MissingCategory int

	// BadVector counts encoded vectors with the wrong length or a
	// non-finite value.
	BadVector int
}

// Total returns the total number of rejected records.
func (d DropStats) Total() int {
	return d.MissingLabel + d.MissingCategory + d.BadVector
}

// LoadCorpus reads a JSON array of labeled records from path.
func LoadCorpus(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse corpus: %w", err)
	}
	return records, nil
}

// BuildDataset filters and encodes raw records into training examples.
// Records are kept only with a numeric ground truth in [0, 100] and at
// least one category tag; encoded vectors must have the contract length
// and contain only finite values.
func BuildDataset(records []Record) ([]Example, DropStats) {
	examples := make([]Example, 0, len(records))
	var drops DropStats

	for i := range records {
		r := &records[i]
		if math.IsNaN(r.Score) || r.Score < 0 || r.Score > 100 {
			drops.MissingLabel++
			continue
		}
		if len(r.Product.Categories) == 0 {
			drops.MissingCategory++
			continue
		}

		fv := encode.Encode(&r.Product)
		if !vectorUsable(fv.Values) {
			drops.BadVector++
			continue
		}

		examples = append(examples, Example{
			Features: fv.Values,
			Target:   r.Score / 100.0,
		})
	}
	return examples, drops
}

// vectorUsable reports whether an encoded vector satisfies the contract:
// exact length and all-finite values.
func vectorUsable(values []float64) bool {
	if len(values) != encode.VectorSize {
		return false
	}
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Split shuffles examples and partitions them into train, validation and
// test sets. The test fraction is carved out first, then the validation
// fraction is taken from the remainder, with both fractions computed
// against the ORIGINAL total so the configured percentages compose as
// documented (15% validation means 15% of all examples, not of the
// post-test remainder).
func Split(examples []Example, testFraction, validationFraction float64, rng *rand.Rand) (train, validation, test []Example) {
	shuffled := make([]Example, len(examples))
	copy(shuffled, examples)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	n := len(shuffled)
	nTest := int(math.Round(float64(n) * testFraction))
	nVal := int(math.Round(float64(n) * validationFraction))
	if nTest+nVal > n {
		nVal = n - nTest
	}

	test = shuffled[:nTest]
	validation = shuffled[nTest : nTest+nVal]
	train = shuffled[nTest+nVal:]
	return train, validation, test
}
