// EcoScore - Product Sustainability Scoring Engine
// Copyright 2026 Verdant Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/verdantlabs/ecoscore

// Package training implements the offline training pipeline: corpus
// loading and filtering, feature encoding via the shared encode contract,
// deterministic shuffling and 70/15/15 partitioning, z-score statistics
// from the training partition only, regularized MLP training with batch
// normalization, dropout and Adam, early stopping on validation loss, and
// export of the model artifact consumed by the inference engine.
//
// This package is the only place in the repository where backpropagation
// and optimizer code exist. The inference engine must never import it;
// the sync validator enforces that structurally.
package training
