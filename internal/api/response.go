// Shelfline - Retail Catalog Recommendations and Stock Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfline

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/shelfline/internal/logging"
	"github.com/tomtom215/shelfline/internal/models"
)

// Error codes used across the API surface.
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeDataUnavailable    = "DATA_UNAVAILABLE"
	ErrCodeTrainingInProgress = "TRAINING_IN_PROGRESS"
	ErrCodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// respondJSON writes a standardized API response with appropriate headers.
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondError writes a standardized error response.
func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		logging.Error().Str("code", code).Err(err).Msg("API error")
	}

	respondJSON(w, status, &models.APIResponse{
		Status: "error",
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
		Error: &models.APIError{
			Code:    code,
			Message: message,
		},
	})
}

// respondServiceError maps the service error taxonomy onto HTTP. Read
// endpoints fail closed with 503 before the first artifact publish;
// typed misses become 404; overlapping training runs become 409.
func respondServiceError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, models.ErrDataUnavailable):
		respondError(w, http.StatusServiceUnavailable, ErrCodeDataUnavailable, "Model artifacts not yet available, try again after training completes", nil)
	case errors.Is(err, models.ErrNotFound):
		respondError(w, http.StatusNotFound, ErrCodeNotFound, message, nil)
	case errors.Is(err, models.ErrTrainingInProgress):
		respondError(w, http.StatusConflict, ErrCodeTrainingInProgress, "A training run is already in progress", nil)
	default:
		respondError(w, http.StatusInternalServerError, ErrCodeInternalError, message, err)
	}
}
