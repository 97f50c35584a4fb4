// EcoScore - Product Sustainability Scoring Engine
// Copyright 2026 Verdant Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/verdantlabs/ecoscore

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/verdantlabs/ecoscore/internal/encode"
	"github.com/verdantlabs/ecoscore/internal/model"
	"github.com/verdantlabs/ecoscore/internal/predict"
	"github.com/verdantlabs/ecoscore/internal/store"
)

// maxScoreRequestBytes bounds the request body for POST /score.
const maxScoreRequestBytes = 1 << 20

// Handler serves the scoring API.
type Handler struct {
	orchestrator *predict.Orchestrator
	artifacts    store.ArtifactStore
	version      string
}

// NewHandler builds the API handler. artifacts may be nil when the
// server runs without a trained model.
func NewHandler(orchestrator *predict.Orchestrator, artifacts store.ArtifactStore, version string) *Handler {
	return &Handler{
		orchestrator: orchestrator,
		artifacts:    artifacts,
		version:      version,
	}
}

// Score handles POST /api/v1/score.
func (h *Handler) Score(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	r.Body = http.MaxBytesReader(w, r.Body, maxScoreRequestBytes)
	var req ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_JSON", "request body is not valid JSON", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondJSON(w, r, http.StatusBadRequest, &APIResponse{
			Status:   "error",
			Metadata: Metadata{Timestamp: time.Now()},
			Error:    apiErr,
		})
		return
	}

	result := h.orchestrator.Predict(r.Context(), toRawProduct(&req))

	respondJSON(w, r, http.StatusOK, &APIResponse{
		Status: "ok",
		Data: ScoreResponse{
			Score:           result.Score,
			Confidence:      result.Confidence.String(),
			Method:          result.Method.String(),
			Explanation:     result.Explanation,
			FeatureRichness: result.FeatureRichness,
		},
		Metadata: Metadata{
			Timestamp:  time.Now(),
			DurationMS: float64(time.Since(start).Microseconds()) / 1000.0,
		},
	})
}

// Model handles GET /api/v1/model.
func (h *Handler) Model(w http.ResponseWriter, r *http.Request) {
	resp := ModelResponse{Ready: h.orchestrator.ModelReady()}

	if h.artifacts != nil {
		art, err := h.artifacts.Load(r.Context())
		switch {
		case errors.Is(err, store.ErrArtifactNotFound):
			// No artifact yet; report not ready.
		case err != nil:
			respondError(w, r, http.StatusInternalServerError, "ARTIFACT_ERROR", "failed to load model artifact", err)
			return
		default:
			resp = modelResponseFrom(art, resp.Ready)
		}
	}

	respondJSON(w, r, http.StatusOK, &APIResponse{
		Status:   "ok",
		Data:     resp,
		Metadata: Metadata{Timestamp: time.Now()},
	})
}

// Health handles GET /api/v1/healthz.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, &APIResponse{
		Status: "ok",
		Data: HealthResponse{
			Status:     "healthy",
			ModelReady: h.orchestrator.ModelReady(),
			Version:    h.version,
		},
		Metadata: Metadata{Timestamp: time.Now()},
	})
}

func modelResponseFrom(art *model.Artifact, ready bool) ModelResponse {
	return ModelResponse{
		Ready:             ready,
		Version:           art.Version,
		Architecture:      art.Meta.Architecture,
		TrainedAt:         art.Meta.TrainedAt,
		TrainSamples:      art.Meta.TrainSamples,
		BestEpoch:         art.Meta.BestEpoch,
		ValidationRMSE:    art.Meta.Validation.RMSE,
		TestRMSE:          art.Meta.Test.RMSE,
		TestR2:            art.Meta.Test.R2,
		CategoryTableSize: art.Meta.CategoryTableSize,
	}
}

func toRawProduct(req *ScoreRequest) *encode.RawProduct {
	return &encode.RawProduct{
		Categories:          req.Categories,
		ProcessingLevel:     req.ProcessingLevel,
		Labels:              req.Labels,
		Packaging:           req.Packaging,
		PackagingTags:       req.PackagingTags,
		OriginCountry:       req.OriginCountry,
		Origins:             req.Origins,
		ManufacturingPlaces: req.ManufacturingPlaces,
		NutrientLevels:      req.NutrientLevels,
		IngredientCount:     req.IngredientCount,
		IngredientAnalysis:  req.IngredientAnalysis,
	}
}
