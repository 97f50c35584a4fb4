// EcoScore - Product Sustainability Scoring Engine
// Copyright 2026 Verdant Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/verdantlabs/ecoscore

// Package api provides the HTTP serving surface: product scoring,
// model introspection, health, and Prometheus metrics.
//
// All handlers follow a consistent pattern:
//  1. Request decoding and validation
//  2. Prediction or lookup with context
//  3. JSON response envelope with metadata
package api

import "time"

// APIResponse is the envelope every JSON endpoint returns.
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries per-response observability fields.
type Metadata struct {
	Timestamp  time.Time `json:"timestamp"`
	RequestID  string    `json:"request_id,omitempty"`
	DurationMS float64   `json:"duration_ms,omitempty"`
}

// APIError describes a failed request.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ScoreRequest is the product payload for POST /api/v1/score. Every
// field is optional; sparse products degrade to the fallback tiers.
type ScoreRequest struct {
	Categories          []string          `json:"categories" validate:"omitempty,max=64,dive,max=128"`
	ProcessingLevel     int               `json:"processing_level" validate:"gte=0,lte=4"`
	Labels              []string          `json:"labels" validate:"omitempty,max=64,dive,max=128"`
	Packaging           string            `json:"packaging" validate:"omitempty,max=512"`
	PackagingTags       []string          `json:"packaging_tags" validate:"omitempty,max=64,dive,max=128"`
	OriginCountry       string            `json:"origin_country" validate:"omitempty,max=128"`
	Origins             string            `json:"origins" validate:"omitempty,max=256"`
	ManufacturingPlaces string            `json:"manufacturing_places" validate:"omitempty,max=256"`
	NutrientLevels      map[string]string `json:"nutrient_levels" validate:"omitempty,max=16,dive,keys,max=64,endkeys,oneof=low moderate high"`
	IngredientCount     int               `json:"ingredient_count" validate:"gte=0,lte=1000"`
	IngredientAnalysis  []string          `json:"ingredient_analysis" validate:"omitempty,max=32,dive,max=128"`
}

// ScoreResponse is the prediction payload.
type ScoreResponse struct {
	Score           int    `json:"score"`
	Confidence      string `json:"confidence"`
	Method          string `json:"method"`
	Explanation     string `json:"explanation"`
	FeatureRichness int    `json:"feature_richness"`
}

// ModelResponse describes the artifact currently in service.
type ModelResponse struct {
	Ready             bool      `json:"ready"`
	Version           string    `json:"version,omitempty"`
	Architecture      string    `json:"architecture,omitempty"`
	TrainedAt         time.Time `json:"trained_at,omitempty"`
	TrainSamples      int       `json:"train_samples,omitempty"`
	BestEpoch         int       `json:"best_epoch,omitempty"`
	ValidationRMSE    float64   `json:"validation_rmse,omitempty"`
	TestRMSE          float64   `json:"test_rmse,omitempty"`
	TestR2            float64   `json:"test_r2,omitempty"`
	CategoryTableSize int       `json:"category_table_size,omitempty"`
}

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status     string `json:"status"`
	ModelReady bool   `json:"model_ready"`
	Version    string `json:"version"`
}
