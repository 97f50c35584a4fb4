// EcoScore - Product Sustainability Scoring Engine
// Copyright 2026 Verdant Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/verdantlabs/ecoscore

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/verdantlabs/ecoscore/internal/logging"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// sanitizeLogValue replaces control characters so request-derived
// strings cannot forge log entries.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON sends a JSON response with proper headers.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, response *APIResponse) {
	response.Metadata.RequestID = logging.RequestIDFromContext(r.Context())

	w.Header().Set("Content-Type", "application/json")
	data, err := json.Marshal(response)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("failed to write JSON response")
	}
}

// respondError sends an error envelope.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	if err != nil {
		logging.Ctx(r.Context()).Error().
			Str("code", code).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("api error")
	}
	respondJSON(w, r, status, &APIResponse{
		Status:   "error",
		Metadata: Metadata{Timestamp: time.Now()},
		Error:    &APIError{Code: code, Message: message},
	})
}

// validateRequest validates a decoded request struct. Returns nil on
// success, or an APIError listing the failing fields.
func validateRequest(v interface{}) *APIError {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &APIError{Code: "VALIDATION_ERROR", Message: "invalid request"}
	}

	details := make(map[string]interface{}, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = fmt.Sprintf("failed %q constraint", fe.Tag())
	}
	return &APIError{
		Code:    "VALIDATION_ERROR",
		Message: "request validation failed",
		Details: details,
	}
}
