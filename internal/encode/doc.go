// EcoScore - Product Sustainability Scoring Engine
// Copyright 2026 Verdant Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/verdantlabs/ecoscore

// Package encode implements the feature-encoding contract shared by the
// training pipeline and the inference engine.
//
// A raw product record (sparse, heterogeneous, any field may be absent) is
// mapped to a fixed-length vector of VectorSize real numbers, each clamped
// to [0, 1]. Every index has a stable documented meaning and a documented
// default used when source data is missing. The index order and vector
// length form the single most important invariant in the system: the
// trained model is only valid against vectors produced by this exact
// contract, and the synccheck package gates deployment on it.
//
// Encoding is deterministic and total. Malformed or missing fields resolve
// to their per-index default; Encode never fails and never produces NaN.
package encode
