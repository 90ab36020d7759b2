// Shelfline - Retail Catalog Recommendations and Stock Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfline

package artifact

import (
	"sync"
	"time"

	"github.com/tomtom215/shelfline/internal/models"
)

// Bundle is one complete generation of trained artifacts. Everything the
// serving layer needs is embedded, including the catalog snapshot taken
// at training time, so request handling never touches the database.
type Bundle struct {
	Generation string    `json:"generation"`
	TrainedAt  time.Time `json:"trained_at"`

	Products   []models.Product       `json:"products"`
	Ratings    *RatingMatrix          `json:"ratings"`
	UserSim    *SimilarityMatrix      `json:"user_similarity"`
	ContentSim *SimilarityMatrix      `json:"content_similarity"`
	Forecasts  []models.StockForecast `json:"forecasts"`
	Rules      []models.BasketRule    `json:"basket_rules"`

	productByID  map[int]models.Product
	forecastByID map[int]models.StockForecast
}

// RebuildIndexes recomputes all lookup maps. Must be called after
// deserialization; NewBundle-style construction in the trainer calls it
// before publishing.
func (b *Bundle) RebuildIndexes() {
	b.productByID = make(map[int]models.Product, len(b.Products))
	for _, p := range b.Products {
		b.productByID[p.ID] = p
	}
	b.forecastByID = make(map[int]models.StockForecast, len(b.Forecasts))
	for _, f := range b.Forecasts {
		b.forecastByID[f.ProductID] = f
	}
	if b.Ratings != nil {
		b.Ratings.rebuildIndex()
	}
	if b.UserSim != nil {
		b.UserSim.rebuildIndex()
	}
	if b.ContentSim != nil {
		b.ContentSim.rebuildIndex()
	}
}

// ProductByID returns the catalog snapshot entry for a product.
func (b *Bundle) ProductByID(id int) (models.Product, bool) {
	p, ok := b.productByID[id]
	return p, ok
}

// ForecastByProduct returns the stock forecast for a product, if the
// product had any sales in the training window.
func (b *Bundle) ForecastByProduct(id int) (models.StockForecast, bool) {
	f, ok := b.forecastByID[id]
	return f, ok
}

// Cache holds the currently served bundle. Reads vastly outnumber the
// one write per training run, so a RWMutex around an immutable pointer
// is all the coordination serving needs.
type Cache struct {
	mu     sync.RWMutex
	bundle *Bundle
}

// NewCache creates an empty cache. Get returns models.ErrDataUnavailable
// until the first Set.
func NewCache() *Cache {
	return &Cache{}
}

// Get returns the current bundle, or models.ErrDataUnavailable if no
// bundle has been published yet.
func (c *Cache) Get() (*Bundle, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.bundle == nil {
		return nil, models.ErrDataUnavailable
	}
	return c.bundle, nil
}

// Set atomically replaces the served bundle.
func (c *Cache) Set(b *Bundle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bundle = b
}
