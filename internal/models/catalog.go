// Shelfline - Retail Catalog Recommendations and Stock Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfline

// Package models defines the shared data structures for Shelfline:
// catalog entities, training artifacts exposed over the API, and the
// standardized API response envelope.
package models

import "time"

// Product is a catalog entry.
//
// Stock is the current on-hand quantity used by the stock forecaster;
// Category and Name feed the content similarity vectorizer.
type Product struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Stock    int     `json:"stock"`
}

// ProductSummary is the reduced product shape returned by the catalog
// listing endpoint.
type ProductSummary struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Transaction is a single order line: one product within one customer order.
// Orders with several products share an OrderID, which is what the basket
// rule miner groups on.
//
// Rating is the customer's 1-5 star rating for the product on this line.
type Transaction struct {
	OrderID    string    `json:"order_id"`
	CustomerID int       `json:"customer_id"`
	ProductID  int       `json:"product_id"`
	Quantity   int       `json:"quantity"`
	Rating     float64   `json:"rating"`
	Date       time.Time `json:"date"`
}
