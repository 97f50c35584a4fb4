// EcoScore - Product Sustainability Scoring Engine
// Copyright 2026 Verdant Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/verdantlabs/ecoscore

package training

import "math"

// Adam constants (Kingma & Ba defaults).
const (
	adamBeta1   = 0.9
	adamBeta2   = 0.999
	adamEpsilon = 1e-8
)

// adam is the per-parameter adaptive gradient optimizer: first and second
// moment estimates with bias correction. Moment buffers mirror the
// network's parameter shapes.
type adam struct {
	lr   float64
	step int

	mWeights, vWeights [][][]float64
	mBiases, vBiases   [][]float64
	mScale, vScale     [][]float64
	mShift, vShift     [][]float64
}

func newAdam(n *network, lr float64) *adam {
	a := &adam{lr: lr}
	a.mWeights, a.vWeights = mirror3(n.weights), mirror3(n.weights)
	a.mBiases, a.vBiases = mirror2(n.biases), mirror2(n.biases)
	scale := make([][]float64, len(n.bn))
	for l, bn := range n.bn {
		scale[l] = bn.scale
	}
	a.mScale, a.vScale = mirror2(scale), mirror2(scale)
	a.mShift, a.vShift = mirror2(scale), mirror2(scale)
	return a
}

// update applies one Adam step to every trainable parameter.
func (a *adam) update(n *network, g *gradients) {
	a.step++
	c1 := 1.0 - math.Pow(adamBeta1, float64(a.step))
	c2 := 1.0 - math.Pow(adamBeta2, float64(a.step))

	for l := range n.weights {
		for j := range n.weights[l] {
			for k := range n.weights[l][j] {
				n.weights[l][j][k] -= a.delta(&a.mWeights[l][j][k], &a.vWeights[l][j][k], g.weights[l][j][k], c1, c2)
			}
		}
		for j := range n.biases[l] {
			n.biases[l][j] -= a.delta(&a.mBiases[l][j], &a.vBiases[l][j], g.biases[l][j], c1, c2)
		}
	}
	for l, bn := range n.bn {
		for j := range bn.scale {
			bn.scale[j] -= a.delta(&a.mScale[l][j], &a.vScale[l][j], g.scale[l][j], c1, c2)
			bn.shift[j] -= a.delta(&a.mShift[l][j], &a.vShift[l][j], g.shift[l][j], c1, c2)
		}
	}
}

// delta advances one parameter's moment estimates and returns the
// bias-corrected update.
func (a *adam) delta(m, v *float64, grad, c1, c2 float64) float64 {
	*m = adamBeta1**m + (1-adamBeta1)*grad
	*v = adamBeta2**v + (1-adamBeta2)*grad*grad
	mHat := *m / c1
	vHat := *v / c2
	return a.lr * mHat / (math.Sqrt(vHat) + adamEpsilon)
}

func mirror2(shape [][]float64) [][]float64 {
	out := make([][]float64, len(shape))
	for i, row := range shape {
		out[i] = make([]float64, len(row))
	}
	return out
}

func mirror3(shape [][][]float64) [][][]float64 {
	out := make([][][]float64, len(shape))
	for i := range shape {
		out[i] = mirror2(shape[i])
	}
	return out
}
