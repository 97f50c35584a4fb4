// EcoScore - Product Sustainability Scoring Engine
// Copyright 2026 Verdant Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/verdantlabs/ecoscore

package training

import (
	"math"
	"math/rand"

	"github.com/verdantlabs/ecoscore/internal/model"
)

// Batch-normalization constants. Momentum weights the running statistics;
// epsilon stabilizes the variance divisor.
const (
	bnMomentum = 0.9
	bnEpsilon  = 1e-5
)

// batchNormLayer holds one hidden layer's batch-normalization state:
// learned scale/shift plus the running statistics exported for inference.
type batchNormLayer struct {
	scale       []float64
	shift       []float64
	runningMean []float64
	runningVar  []float64
}

func newBatchNormLayer(width int) *batchNormLayer {
	bn := &batchNormLayer{
		scale:       make([]float64, width),
		shift:       make([]float64, width),
		runningMean: make([]float64, width),
		runningVar:  make([]float64, width),
	}
	for i := range bn.scale {
		bn.scale[i] = 1.0
		bn.runningVar[i] = 1.0
	}
	return bn
}

// network is the training-mode 4-layer MLP: three hidden stages of
// affine -> batch norm -> ReLU -> dropout, then affine -> sigmoid. The
// inference engine reimplements the forward pass without any of the
// training machinery in this file; the two meet only through the artifact.
type network struct {
	sizes   []int
	weights [][][]float64 // [layer][out][in]
	biases  [][]float64   // [layer][out]
	bn      []*batchNormLayer
	rng     *rand.Rand
}

func newNetwork(rng *rand.Rand) *network {
	sizes := model.LayerSizes()
	n := &network{
		sizes:   sizes,
		weights: make([][][]float64, len(sizes)-1),
		biases:  make([][]float64, len(sizes)-1),
		bn:      make([]*batchNormLayer, len(sizes)-2),
		rng:     rng,
	}
	for l := 0; l < len(sizes)-1; l++ {
		in, out := sizes[l], sizes[l+1]
		// He initialization for the ReLU stack.
		scale := math.Sqrt(2.0 / float64(in))
		n.weights[l] = make([][]float64, out)
		n.biases[l] = make([]float64, out)
		for j := 0; j < out; j++ {
			row := make([]float64, in)
			for k := range row {
				row[k] = rng.NormFloat64() * scale
			}
			n.weights[l][j] = row
		}
		if l < len(sizes)-2 {
			n.bn[l] = newBatchNormLayer(out)
		}
	}
	return n
}

// layerCache carries the per-layer intermediates needed by the backward
// pass for one mini-batch.
type layerCache struct {
	input     [][]float64 // activations entering the layer
	z         [][]float64 // affine outputs
	xhat      [][]float64 // normalized pre-activations (hidden layers)
	batchVar  []float64
	activated [][]float64 // post-ReLU (hidden layers), pre-dropout
	mask      [][]float64 // inverted-dropout mask, already scaled
}

// gradients mirrors the trainable parameter shapes.
type gradients struct {
	weights [][][]float64
	biases  [][]float64
	scale   [][]float64
	shift   [][]float64
}

func (n *network) zeroGradients() *gradients {
	g := &gradients{
		weights: make([][][]float64, len(n.weights)),
		biases:  make([][]float64, len(n.biases)),
		scale:   make([][]float64, len(n.bn)),
		shift:   make([][]float64, len(n.bn)),
	}
	for l := range n.weights {
		g.weights[l] = make([][]float64, len(n.weights[l]))
		for j := range n.weights[l] {
			g.weights[l][j] = make([]float64, len(n.weights[l][j]))
		}
		g.biases[l] = make([]float64, len(n.biases[l]))
	}
	for l := range n.bn {
		g.scale[l] = make([]float64, len(n.bn[l].scale))
		g.shift[l] = make([]float64, len(n.bn[l].shift))
	}
	return g
}

// affine computes z = input * W^T + b for a batch.
func affine(input [][]float64, w [][]float64, b []float64) [][]float64 {
	out := make([][]float64, len(input))
	for i, row := range input {
		z := make([]float64, len(w))
		for j, wj := range w {
			sum := b[j]
			for k, v := range row {
				sum += wj[k] * v
			}
			z[j] = sum
		}
		out[i] = z
	}
	return out
}

// forwardTrain runs a mini-batch through the network in training mode:
// batch normalization uses live batch statistics (and updates the running
// estimates), dropout masks hidden activations. Returns the sigmoid
// outputs and the caches the backward pass needs.
func (n *network) forwardTrain(batch [][]float64, dropout float64) ([]float64, []layerCache) {
	caches := make([]layerCache, len(n.weights))
	cur := batch
	m := float64(len(batch))

	for l := 0; l < len(n.weights)-1; l++ {
		width := n.sizes[l+1]
		c := layerCache{input: cur}
		c.z = affine(cur, n.weights[l], n.biases[l])

		// Batch statistics (population variance, standard for BN).
		mean := make([]float64, width)
		variance := make([]float64, width)
		for _, row := range c.z {
			for j, v := range row {
				mean[j] += v
			}
		}
		for j := range mean {
			mean[j] /= m
		}
		for _, row := range c.z {
			for j, v := range row {
				d := v - mean[j]
				variance[j] += d * d
			}
		}
		for j := range variance {
			variance[j] /= m
		}

		bn := n.bn[l]
		for j := range mean {
			bn.runningMean[j] = bnMomentum*bn.runningMean[j] + (1-bnMomentum)*mean[j]
			bn.runningVar[j] = bnMomentum*bn.runningVar[j] + (1-bnMomentum)*variance[j]
		}

		c.batchVar = variance
		c.xhat = make([][]float64, len(c.z))
		c.activated = make([][]float64, len(c.z))
		c.mask = make([][]float64, len(c.z))
		next := make([][]float64, len(c.z))

		keep := 1.0 - dropout
		for i, row := range c.z {
			xhat := make([]float64, width)
			act := make([]float64, width)
			mask := make([]float64, width)
			out := make([]float64, width)
			for j, v := range row {
				xh := (v - mean[j]) / math.Sqrt(variance[j]+bnEpsilon)
				xhat[j] = xh
				y := bn.scale[j]*xh + bn.shift[j]
				if y > 0 {
					act[j] = y
				}
				// Inverted dropout: surviving units are rescaled so the
				// expected activation matches inference mode.
				if dropout <= 0 {
					mask[j] = 1.0
				} else if n.rng.Float64() < keep {
					mask[j] = 1.0 / keep
				}
				out[j] = act[j] * mask[j]
			}
			c.xhat[i] = xhat
			c.activated[i] = act
			c.mask[i] = mask
			next[i] = out
		}
		caches[l] = c
		cur = next
	}

	// Output layer: affine -> sigmoid, no normalization or dropout.
	last := len(n.weights) - 1
	caches[last] = layerCache{input: cur}
	zOut := affine(cur, n.weights[last], n.biases[last])
	preds := make([]float64, len(zOut))
	for i, row := range zOut {
		preds[i] = sigmoid(row[0])
	}
	return preds, caches
}

// backward computes parameter gradients for one mini-batch under
// MSE + L2 loss. The L2 term contributes l2Lambda * w to every weight
// gradient (bias and batch-norm parameters are not regularized).
func (n *network) backward(caches []layerCache, preds, targets []float64, l2Lambda float64) *gradients {
	g := n.zeroGradients()
	m := float64(len(preds))
	last := len(n.weights) - 1

	// d(MSE)/d(pred) * d(sigmoid); one output unit.
	dz := make([][]float64, len(preds))
	for i, p := range preds {
		dz[i] = []float64{(2.0 / m) * (p - targets[i]) * p * (1 - p)}
	}

	// Output layer gradients and the signal entering the hidden stack.
	dPrev := n.layerGradients(g, last, caches[last].input, dz, l2Lambda)

	for l := last - 1; l >= 0; l-- {
		c := caches[l]
		bn := n.bn[l]
		width := n.sizes[l+1]

		// Through dropout and ReLU.
		dy := make([][]float64, len(dPrev))
		for i, row := range dPrev {
			d := make([]float64, width)
			for j := range row {
				if c.activated[i][j] > 0 {
					d[j] = row[j] * c.mask[i][j]
				}
			}
			dy[i] = d
		}

		// Batch-norm backward.
		dxhat := make([][]float64, len(dy))
		sumDxhat := make([]float64, width)
		sumDxhatXhat := make([]float64, width)
		for i, row := range dy {
			dx := make([]float64, width)
			for j, v := range row {
				g.scale[l][j] += v * c.xhat[i][j]
				g.shift[l][j] += v
				dx[j] = v * bn.scale[j]
				sumDxhat[j] += dx[j]
				sumDxhatXhat[j] += dx[j] * c.xhat[i][j]
			}
			dxhat[i] = dx
		}
		dzHidden := make([][]float64, len(dxhat))
		for i, row := range dxhat {
			d := make([]float64, width)
			for j, v := range row {
				invStd := 1.0 / math.Sqrt(c.batchVar[j]+bnEpsilon)
				d[j] = (invStd / m) * (m*v - sumDxhat[j] - c.xhat[i][j]*sumDxhatXhat[j])
			}
			dzHidden[i] = d
		}

		dPrev = n.layerGradients(g, l, c.input, dzHidden, l2Lambda)
	}
	return g
}

// layerGradients accumulates weight/bias gradients for layer l from its
// input activations and dz, and returns the gradient w.r.t. the input.
func (n *network) layerGradients(g *gradients, l int, input, dz [][]float64, l2Lambda float64) [][]float64 {
	w := n.weights[l]
	for i, row := range dz {
		in := input[i]
		for j, d := range row {
			g.biases[l][j] += d
			wj := g.weights[l][j]
			for k, v := range in {
				wj[k] += d * v
			}
		}
	}
	if l2Lambda > 0 {
		for j := range w {
			for k := range w[j] {
				g.weights[l][j][k] += l2Lambda * w[j][k]
			}
		}
	}

	dPrev := make([][]float64, len(dz))
	for i, row := range dz {
		d := make([]float64, len(w[0]))
		for j, v := range row {
			for k := range d {
				d[k] += v * w[j][k]
			}
		}
		dPrev[i] = d
	}
	return dPrev
}

// predictEval runs a single normalized vector through the network in
// evaluation mode: batch normalization uses the running statistics and
// dropout is absent entirely. Used for validation loss and final metrics.
func (n *network) predictEval(features []float64) float64 {
	cur := features
	for l := 0; l < len(n.weights)-1; l++ {
		bn := n.bn[l]
		z := make([]float64, n.sizes[l+1])
		for j, wj := range n.weights[l] {
			sum := n.biases[l][j]
			for k, v := range cur {
				sum += wj[k] * v
			}
			xh := (sum - bn.runningMean[j]) / math.Sqrt(bn.runningVar[j]+bnEpsilon)
			y := bn.scale[j]*xh + bn.shift[j]
			if y > 0 {
				z[j] = y
			}
		}
		cur = z
	}
	last := len(n.weights) - 1
	sum := n.biases[last][0]
	for k, v := range cur {
		sum += n.weights[last][0][k] * v
	}
	return sigmoid(sum)
}

// snapshot deep-copies all parameters, including running statistics, so
// the best-validation epoch can be exported after training overshoots it.
func (n *network) snapshot() *network {
	c := &network{sizes: n.sizes, rng: n.rng}
	c.weights = make([][][]float64, len(n.weights))
	c.biases = make([][]float64, len(n.biases))
	c.bn = make([]*batchNormLayer, len(n.bn))
	for l := range n.weights {
		c.weights[l] = make([][]float64, len(n.weights[l]))
		for j := range n.weights[l] {
			c.weights[l][j] = append([]float64(nil), n.weights[l][j]...)
		}
		c.biases[l] = append([]float64(nil), n.biases[l]...)
	}
	for l, bn := range n.bn {
		c.bn[l] = &batchNormLayer{
			scale:       append([]float64(nil), bn.scale...),
			shift:       append([]float64(nil), bn.shift...),
			runningMean: append([]float64(nil), bn.runningMean...),
			runningVar:  append([]float64(nil), bn.runningVar...),
		}
	}
	return c
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
