// Shelfline - Retail Catalog Recommendations and Stock Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfline

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/shelfline/internal/config"
	"github.com/tomtom215/shelfline/internal/middleware"
)

// chiMiddleware adapts http.HandlerFunc middleware to Chi's
// func(http.Handler) http.Handler so it can be used with r.Use().
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// NewRouter builds the HTTP route tree.
func NewRouter(cfg config.ServerConfig, handler *Handler) http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route in order
	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Health endpoints: permissive rate limit so monitors can poll
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(httprate.LimitByIP(1000, time.Minute))
		r.Get("/live", handler.HealthLive)
		r.Get("/ready", handler.HealthReady)
	})

	// Data endpoints
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(rateLimit(cfg), rateWindow(cfg)))
		r.Use(chiMiddleware(middleware.PrometheusMetrics))

		r.Get("/products", handler.Products)
		r.Get("/forecast/{productID}", handler.Forecast)
		r.Get("/basket-rules", handler.BasketRules)
		r.Get("/recommendations/user/{userID}", handler.Recommendations)

		r.Post("/train", handler.TrainStart)
		r.Get("/train/status", handler.TrainStatus)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

func rateLimit(cfg config.ServerConfig) int {
	if cfg.RateLimitReqs > 0 {
		return cfg.RateLimitReqs
	}
	return 300
}

func rateWindow(cfg config.ServerConfig) time.Duration {
	if cfg.RateLimitWindow > 0 {
		return cfg.RateLimitWindow
	}
	return time.Minute
}
