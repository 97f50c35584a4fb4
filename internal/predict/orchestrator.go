// EcoScore - Product Sustainability Scoring Engine
// Copyright 2026 Verdant Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/verdantlabs/ecoscore

package predict

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/verdantlabs/ecoscore/internal/encode"
	"github.com/verdantlabs/ecoscore/internal/metrics"
)

// Scorer produces a raw sigmoid output in [0, 1] for an encoded
// feature vector. The inference engine satisfies this.
type Scorer interface {
	Predict(features []float64) float64
}

// ModelProvider loads the model tier on first use. It is invoked at
// most once per Orchestrator.
type ModelProvider func(ctx context.Context) (Scorer, error)

// Options control tier selection and confidence grading.
type Options struct {
	// HighDecisiveness and HighRichness must both be met for a model
	// prediction to be graded high confidence.
	HighDecisiveness float64 `koanf:"high_decisiveness" json:"high_decisiveness"`
	HighRichness     int     `koanf:"high_richness" json:"high_richness"`

	// MediumDecisiveness or MediumRichness promotes a model prediction
	// from low to medium. MediumRichness also grades heuristic results.
	MediumDecisiveness float64 `koanf:"medium_decisiveness" json:"medium_decisiveness"`
	MediumRichness     int     `koanf:"medium_richness" json:"medium_richness"`

	// MinHeuristicFeatures is the non-default feature count required
	// before the heuristic tier is used at all.
	MinHeuristicFeatures int `koanf:"min_heuristic_features" json:"min_heuristic_features"`

	// DefaultScore is returned when no category information exists.
	DefaultScore int `koanf:"default_score" json:"default_score"`
}

// DefaultOptions returns the standard tier thresholds.
func DefaultOptions() Options {
	return Options{
		HighDecisiveness:     0.6,
		HighRichness:         8,
		MediumDecisiveness:   0.25,
		MediumRichness:       6,
		MinHeuristicFeatures: 3,
		DefaultScore:         45,
	}
}

// Validate checks option ranges.
func (o Options) Validate() error {
	if o.HighDecisiveness < 0 || o.HighDecisiveness > 1 {
		return fmt.Errorf("high_decisiveness must be in [0, 1], got %g", o.HighDecisiveness)
	}
	if o.MediumDecisiveness < 0 || o.MediumDecisiveness > o.HighDecisiveness {
		return fmt.Errorf("medium_decisiveness must be in [0, %g], got %g", o.HighDecisiveness, o.MediumDecisiveness)
	}
	if o.MinHeuristicFeatures < 1 {
		return fmt.Errorf("min_heuristic_features must be at least 1, got %d", o.MinHeuristicFeatures)
	}
	if o.DefaultScore < 0 || o.DefaultScore > 100 {
		return fmt.Errorf("default_score must be in [0, 100], got %d", o.DefaultScore)
	}
	return nil
}

// Orchestrator routes each product through the highest tier currently
// able to serve it: neural model, weighted heuristic, then category
// average. Every call returns a result.
type Orchestrator struct {
	opts      Options
	heuristic *Heuristic
	provider  ModelProvider
	logger    zerolog.Logger

	// loadMu serializes the one-shot artifact load; mu guards the load
	// state and is never held across the provider call, so concurrent
	// callers read it without waiting on an in-flight load.
	loadMu    sync.Mutex
	mu        sync.RWMutex
	scorer    Scorer
	attempted bool
}

// NewOrchestrator builds an orchestrator with the default heuristic
// weight table. provider may be nil, in which case the model tier is
// permanently unavailable.
func NewOrchestrator(opts Options, provider ModelProvider, logger zerolog.Logger) (*Orchestrator, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("predict options: %w", err)
	}
	h, err := NewHeuristic(DefaultHeuristicWeights())
	if err != nil {
		return nil, fmt.Errorf("heuristic tier: %w", err)
	}
	return &Orchestrator{
		opts:      opts,
		heuristic: h,
		provider:  provider,
		logger:    logger.With().Str("component", "predict").Logger(),
	}, nil
}

// ModelReady reports whether the model tier has been loaded.
func (o *Orchestrator) ModelReady() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.scorer != nil
}

// engine returns the loaded scorer, loading it on first use. Callers
// that arrive while another goroutine holds the load lock are served
// without the model rather than blocking on it.
func (o *Orchestrator) engine(ctx context.Context) Scorer {
	o.mu.RLock()
	s, attempted := o.scorer, o.attempted
	o.mu.RUnlock()
	if s != nil || attempted || o.provider == nil {
		return s
	}

	if !o.loadMu.TryLock() {
		// Load in progress on another goroutine.
		return nil
	}
	defer o.loadMu.Unlock()

	o.mu.RLock()
	s, attempted = o.scorer, o.attempted
	o.mu.RUnlock()
	if s != nil || attempted {
		return s
	}

	loaded, err := o.provider(ctx)

	o.mu.Lock()
	o.attempted = true
	if err == nil {
		o.scorer = loaded
	}
	o.mu.Unlock()

	if err != nil {
		metrics.ArtifactLoadFailures.Inc()
		o.logger.Warn().Err(err).Msg("model artifact unavailable, serving fallback tiers")
		return nil
	}
	metrics.ArtifactLoads.Inc()
	o.logger.Info().Msg("model tier ready")
	return loaded
}

// Predict scores a product. It never fails: when the model tier is
// unavailable or the product is too sparse, it degrades to the
// heuristic and category-average tiers.
func (o *Orchestrator) Predict(ctx context.Context, product *encode.RawProduct) Result {
	start := time.Now()
	fv := encode.Encode(product)
	res := o.predict(ctx, product, fv)
	metrics.ObservePrediction(res.Method.String(), res.Confidence.String(), time.Since(start))
	return res
}

func (o *Orchestrator) predict(ctx context.Context, product *encode.RawProduct, fv encode.FeatureVector) Result {
	richness := fv.NonDefaultCount

	if fv.Valid {
		if s := o.engine(ctx); s != nil {
			raw := s.Predict(fv.Values)
			return Result{
				Score:           clampScore(int(math.Round(raw * 100))),
				Confidence:      o.modelConfidence(raw, richness),
				Method:          MethodModel,
				Explanation:     fmt.Sprintf("neural model prediction from %d populated features", richness),
				FeatureRichness: richness,
			}
		}
	}

	if richness >= o.opts.MinHeuristicFeatures {
		conf := ConfidenceLow
		if richness >= o.opts.MediumRichness {
			conf = ConfidenceMedium
		}
		return Result{
			Score:           clampScore(int(math.Round(o.heuristic.Score(fv.Values)))),
			Confidence:      conf,
			Method:          MethodHeuristic,
			Explanation:     fmt.Sprintf("weighted heuristic over %d populated features", richness),
			FeatureRichness: richness,
		}
	}

	var tags []string
	if product != nil {
		tags = product.Categories
	}
	if avg, ok := encode.CategoryAverage(tags); ok {
		return Result{
			Score:           clampScore(int(math.Round(avg * 100))),
			Confidence:      ConfidenceLow,
			Method:          MethodCategoryAverage,
			Explanation:     "average sustainability of the product's known categories",
			FeatureRichness: richness,
		}
	}
	return Result{
		Score:           o.opts.DefaultScore,
		Confidence:      ConfidenceLow,
		Method:          MethodCategoryAverage,
		Explanation:     "no usable product data, neutral default",
		FeatureRichness: richness,
	}
}

// modelConfidence grades a model prediction from how far the sigmoid
// output sits from 0.5 and how much of the input was populated.
func (o *Orchestrator) modelConfidence(raw float64, richness int) Confidence {
	decisiveness := math.Abs(raw-0.5) * 2
	if decisiveness >= o.opts.HighDecisiveness && richness >= o.opts.HighRichness {
		return ConfidenceHigh
	}
	if decisiveness >= o.opts.MediumDecisiveness || richness >= o.opts.MediumRichness {
		return ConfidenceMedium
	}
	return ConfidenceLow
}

func clampScore(s int) int {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
