// Shelfline - Retail Catalog Recommendations and Stock Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfline

package models

// Stock forecast status values.
const (
	// ForecastStatusCritical marks products projected to stock out
	// within the critical window (14 days).
	ForecastStatusCritical = "CRITICAL"

	// ForecastStatusOK marks products with sufficient runway.
	ForecastStatusOK = "OK"
)

// StockForecast is the projected stock runway for one product.
//
// BurnRate is the estimated units sold per day, derived from the linear
// trend of cumulative sales. DaysLeft is Stock / BurnRate truncated to
// whole days, and StockoutDate is the training timestamp plus DaysLeft.
type StockForecast struct {
	ProductID    int     `json:"product_id"`
	ProductName  string  `json:"product_name"`
	CurrentStock int     `json:"current_stock"`
	BurnRate     float64 `json:"burn_rate_per_day"`
	DaysLeft     int     `json:"days_until_stockout"`
	StockoutDate string  `json:"estimated_stockout_date"`
	Status       string  `json:"status"`
}
