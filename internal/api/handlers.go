// Shelfline - Retail Catalog Recommendations and Stock Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfline

// Package api exposes the trained artifacts over HTTP using the Chi
// router. All read endpoints serve from the in-memory bundle cache and
// never touch the database on the request path.
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/shelfline/internal/artifact"
	"github.com/tomtom215/shelfline/internal/models"
	"github.com/tomtom215/shelfline/internal/recommend"
	"github.com/tomtom215/shelfline/internal/train"
	"github.com/tomtom215/shelfline/internal/validation"
)

// Handler bundles the dependencies of all HTTP endpoints.
type Handler struct {
	cache   *artifact.Cache
	engine  *recommend.Engine
	trainer *train.Trainer
	started time.Time
}

// NewHandler creates the API handler set.
func NewHandler(cache *artifact.Cache, engine *recommend.Engine, trainer *train.Trainer) *Handler {
	return &Handler{
		cache:   cache,
		engine:  engine,
		trainer: trainer,
		started: time.Now(),
	}
}

// Products handles GET /api/v1/products.
// Returns the catalog snapshot of the current bundle as {id, name} pairs.
func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	bundle, err := h.cache.Get()
	if err != nil {
		respondServiceError(w, err, "")
		return
	}

	summaries := make([]models.ProductSummary, len(bundle.Products))
	for i, p := range bundle.Products {
		summaries[i] = models.ProductSummary{ID: p.ID, Name: p.Name}
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   summaries,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
			Generation:  bundle.Generation,
		},
	})
}

// Forecast handles GET /api/v1/forecast/{productID}.
// Returns 404 for products absent from the forecast artifact, which
// includes products that never sold.
func (h *Handler) Forecast(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	productID, err := strconv.Atoi(chi.URLParam(r, "productID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "Invalid product ID", err)
		return
	}

	bundle, err := h.cache.Get()
	if err != nil {
		respondServiceError(w, err, "")
		return
	}

	forecast, ok := bundle.ForecastByProduct(productID)
	if !ok {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "No forecast for product "+strconv.Itoa(productID), nil)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   forecast,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
			Generation:  bundle.Generation,
		},
	})
}

// BasketRules handles GET /api/v1/basket-rules.
// An empty rule list is a legitimate outcome, not an error.
func (h *Handler) BasketRules(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	bundle, err := h.cache.Get()
	if err != nil {
		respondServiceError(w, err, "")
		return
	}

	rules := bundle.Rules
	if rules == nil {
		rules = []models.BasketRule{}
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   rules,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
			Generation:  bundle.Generation,
		},
	})
}

// recommendRequest carries the validated recommendation parameters.
type recommendRequest struct {
	UserID           int `validate:"required,min=1"`
	ViewingProductID int `validate:"omitempty,min=1"`
}

// Recommendations handles
// GET /api/v1/recommendations/user/{userID}?viewing_product_id=N.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, err := strconv.Atoi(chi.URLParam(r, "userID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeValidation, "Invalid user ID", err)
		return
	}

	viewingProductID := 0
	if raw := r.URL.Query().Get("viewing_product_id"); raw != "" {
		viewingProductID, err = strconv.Atoi(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, ErrCodeValidation, "Invalid viewing_product_id", err)
			return
		}
	}

	req := recommendRequest{UserID: userID, ViewingProductID: viewingProductID}
	if err := validation.ValidateStruct(&req); err != nil {
		apiErr := validation.ToAPIError(err)
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	bundle, err := h.cache.Get()
	if err != nil {
		respondServiceError(w, err, "")
		return
	}

	resp := h.engine.Recommend(bundle, req.UserID, req.ViewingProductID)

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   resp,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
			Generation:  bundle.Generation,
		},
	})
}

// TrainStart handles POST /api/v1/train.
// Kicks off a background training run; 409 if one is already executing.
func (h *Handler) TrainStart(w http.ResponseWriter, r *http.Request) {
	if err := h.trainer.StartAsync(); err != nil {
		respondServiceError(w, err, "")
		return
	}

	respondJSON(w, http.StatusAccepted, &models.APIResponse{
		Status: "success",
		Data:   map[string]string{"state": "started"},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// TrainStatus handles GET /api/v1/train/status.
func (h *Handler) TrainStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   h.trainer.Status(),
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HealthLive handles GET /api/v1/health/live.
// Process-up check, always succeeds once the router is serving.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"state":          "alive",
			"uptime_seconds": int(time.Since(h.started).Seconds()),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HealthReady handles GET /api/v1/health/ready.
// Ready means a bundle has been published and read endpoints can serve.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	bundle, err := h.cache.Get()
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, ErrCodeDataUnavailable, "No artifact bundle published yet", nil)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"state":      "ready",
			"trained_at": bundle.TrainedAt,
		},
		Metadata: models.Metadata{
			Timestamp:  time.Now(),
			Generation: bundle.Generation,
		},
	})
}
