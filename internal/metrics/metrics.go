// EcoScore - Product Sustainability Scoring Engine
// Copyright 2026 Verdant Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/verdantlabs/ecoscore

// Package metrics exposes Prometheus instrumentation for the scoring
// service: prediction throughput per tier, request latency, artifact
// lifecycle, and training runs. Metrics are served at /metrics in
// Prometheus text format.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Prediction Metrics
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecoscore_predictions_total",
			Help: "Total number of predictions served",
		},
		[]string{"method", "confidence"}, // method: model, heuristic, category-average
	)

	PredictionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ecoscore_prediction_duration_seconds",
			Help:    "End-to-end prediction latency including feature encoding",
			Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.05, 0.1},
		},
		[]string{"method"},
	)

	// Artifact Metrics
	ArtifactLoads = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ecoscore_artifact_loads_total",
			Help: "Total number of successful model artifact loads",
		},
	)

	ArtifactLoadFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ecoscore_artifact_load_failures_total",
			Help: "Total number of failed model artifact loads",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecoscore_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ecoscore_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"method", "endpoint"},
	)

	// Training Metrics
	TrainingRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecoscore_training_runs_total",
			Help: "Total number of training runs",
		},
		[]string{"outcome"}, // "success", "failure"
	)

	TrainingEpochs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ecoscore_training_best_epoch",
			Help: "Epoch selected by early stopping in the most recent run",
		},
	)
)

// ObservePrediction records one served prediction.
func ObservePrediction(method, confidence string, d time.Duration) {
	PredictionsTotal.WithLabelValues(method, confidence).Inc()
	PredictionDuration.WithLabelValues(method).Observe(d.Seconds())
}
