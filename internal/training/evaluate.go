// EcoScore - Product Sustainability Scoring Engine
// Copyright 2026 Verdant Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/verdantlabs/ecoscore

package training

import (
	"math"

	"github.com/verdantlabs/ecoscore/internal/model"
)

// Evaluate computes regression metrics and tolerance-band accuracy for a
// predictor over a (normalized) example set. Errors are measured on the
// 0-100 scale so the tolerance bands read in score points.
func Evaluate(predict func([]float64) float64, examples []Example) model.Accuracy {
	if len(examples) == 0 {
		return model.Accuracy{}
	}

	n := float64(len(examples))
	var sumErr2, sumAbs, sumTarget float64
	var within5, within10, within15, within20 int

	preds := make([]float64, len(examples))
	for i, ex := range examples {
		p := predict(ex.Features) * 100.0
		target := ex.Target * 100.0
		preds[i] = p

		d := p - target
		sumErr2 += d * d
		sumAbs += math.Abs(d)
		sumTarget += target

		abs := math.Abs(d)
		if abs <= 5 {
			within5++
		}
		if abs <= 10 {
			within10++
		}
		if abs <= 15 {
			within15++
		}
		if abs <= 20 {
			within20++
		}
	}

	meanTarget := sumTarget / n
	var ssTot float64
	for _, ex := range examples {
		d := ex.Target*100.0 - meanTarget
		ssTot += d * d
	}

	r2 := 0.0
	if ssTot > 0 {
		r2 = 1.0 - sumErr2/ssTot
	}

	mse := sumErr2 / n
	return model.Accuracy{
		MSE:      mse,
		RMSE:     math.Sqrt(mse),
		MAE:      sumAbs / n,
		R2:       r2,
		Within5:  float64(within5) / n,
		Within10: float64(within10) / n,
		Within15: float64(within15) / n,
		Within20: float64(within20) / n,
	}
}
