// EcoScore - Product Sustainability Scoring Engine
// Copyright 2026 Verdant Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/verdantlabs/ecoscore

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter assembles the HTTP routes and middleware chain.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(AccessLog)
	r.Use(Instrument)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/score", h.Score)
		r.Get("/model", h.Model)
		r.Get("/healthz", h.Health)
	})

	// Prometheus scrape endpoint, outside the versioned API.
	r.Handle("/metrics", promhttp.Handler())

	return r
}
