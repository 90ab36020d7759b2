// Shelfline - Retail Catalog Recommendations and Stock Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfline

package train

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/tomtom215/shelfline/internal/logging"
	"github.com/tomtom215/shelfline/internal/models"
)

func saleOn(day int, product, quantity int) models.Transaction {
	return models.Transaction{
		OrderID:    "o",
		CustomerID: 1,
		ProductID:  product,
		Quantity:   quantity,
		Rating:     4,
		Date:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, day),
	}
}

func TestLeastSquaresSlope(t *testing.T) {
	tests := []struct {
		name string
		xs   []float64
		ys   []float64
		want float64
	}{
		{"unit slope", []float64{0, 1, 2, 3}, []float64{1, 2, 3, 4}, 1},
		{"steeper", []float64{0, 1, 2}, []float64{0, 2, 4}, 2},
		{"flat", []float64{0, 1, 2}, []float64{5, 5, 5}, 0},
		{"no x variance", []float64{1, 1, 1}, []float64{1, 2, 3}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := leastSquaresSlope(tt.xs, tt.ys)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("leastSquaresSlope = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildForecastsSteadySeller(t *testing.T) {
	// One unit per day for 10 days: burn rate 1.0. Stock of 10 gives 10
	// days of runway, inside the 14-day critical window.
	products := []models.Product{{ID: 1, Name: "Heavy Duty Entrance Mat", Stock: 10}}
	var txns []models.Transaction
	for day := 0; day < 10; day++ {
		txns = append(txns, saleOn(day, 1, 1))
	}

	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	forecasts, err := BuildForecasts(context.Background(), products, txns, now, 14, logging.Logger())
	if err != nil {
		t.Fatalf("BuildForecasts failed: %v", err)
	}
	if len(forecasts) != 1 {
		t.Fatalf("got %d forecasts, want 1", len(forecasts))
	}

	f := forecasts[0]
	if f.BurnRate != 1.0 {
		t.Errorf("BurnRate = %v, want 1.0", f.BurnRate)
	}
	if f.DaysLeft != 10 {
		t.Errorf("DaysLeft = %d, want 10", f.DaysLeft)
	}
	if f.Status != models.ForecastStatusCritical {
		t.Errorf("Status = %s, want CRITICAL", f.Status)
	}
	if f.StockoutDate != "2026-08-11" {
		t.Errorf("StockoutDate = %s, want 2026-08-11", f.StockoutDate)
	}
}

func TestBuildForecastsHealthyStock(t *testing.T) {
	products := []models.Product{{ID: 2, Name: "Non-Slip Rug Pad", Stock: 120}}
	var txns []models.Transaction
	for day := 0; day < 10; day++ {
		txns = append(txns, saleOn(day, 2, 2))
	}

	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	forecasts, err := BuildForecasts(context.Background(), products, txns, now, 14, logging.Logger())
	if err != nil {
		t.Fatalf("BuildForecasts failed: %v", err)
	}

	f := forecasts[0]
	if f.BurnRate != 2.0 {
		t.Errorf("BurnRate = %v, want 2.0", f.BurnRate)
	}
	if f.DaysLeft != 60 {
		t.Errorf("DaysLeft = %d, want 60", f.DaysLeft)
	}
	if f.Status != models.ForecastStatusOK {
		t.Errorf("Status = %s, want OK", f.Status)
	}
}

func TestBuildForecastsWindowBoundary(t *testing.T) {
	// Exactly 14 days of runway sits on the window edge and is still OK;
	// only strictly fewer days is critical.
	products := []models.Product{{ID: 5, Name: "Woven Jute Area Rug", Stock: 14}}
	var txns []models.Transaction
	for day := 0; day < 10; day++ {
		txns = append(txns, saleOn(day, 5, 1))
	}

	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	forecasts, err := BuildForecasts(context.Background(), products, txns, now, 14, logging.Logger())
	if err != nil {
		t.Fatalf("BuildForecasts failed: %v", err)
	}

	f := forecasts[0]
	if f.DaysLeft != 14 {
		t.Fatalf("DaysLeft = %d, want 14", f.DaysLeft)
	}
	if f.Status != models.ForecastStatusOK {
		t.Errorf("Status = %s, want OK at exactly 14 days", f.Status)
	}
}

func TestBuildForecastsFloorsTinyTrend(t *testing.T) {
	// Three sales spread over three years fit a positive slope of 0.002,
	// which would round to a displayed rate of zero; the minimum floor
	// applies to any trend below it, not just flat or negative ones.
	products := []models.Product{{ID: 6, Name: "Royal Persian Silk Rug", Stock: 1}}
	txns := []models.Transaction{
		saleOn(0, 6, 1),
		saleOn(500, 6, 1),
		saleOn(1000, 6, 1),
	}

	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	forecasts, err := BuildForecasts(context.Background(), products, txns, now, 14, logging.Logger())
	if err != nil {
		t.Fatalf("BuildForecasts failed: %v", err)
	}

	f := forecasts[0]
	if f.BurnRate != 0.01 {
		t.Errorf("BurnRate = %v, want the 0.01 floor", f.BurnRate)
	}
	if f.DaysLeft != 100 {
		t.Errorf("DaysLeft = %d, want 100", f.DaysLeft)
	}
}

func TestBuildForecastsSparseHistory(t *testing.T) {
	// Two distinct sale days is not enough for a trend line; the nominal
	// 0.1/day rate applies.
	products := []models.Product{{ID: 3, Name: "Royal Persian Silk Rug", Stock: 5}}
	txns := []models.Transaction{
		saleOn(0, 3, 1),
		saleOn(40, 3, 1),
	}

	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	forecasts, err := BuildForecasts(context.Background(), products, txns, now, 14, logging.Logger())
	if err != nil {
		t.Fatalf("BuildForecasts failed: %v", err)
	}

	f := forecasts[0]
	if f.BurnRate != 0.1 {
		t.Errorf("BurnRate = %v, want 0.1", f.BurnRate)
	}
	if f.DaysLeft != 50 {
		t.Errorf("DaysLeft = %d, want 50", f.DaysLeft)
	}
	if f.Status != models.ForecastStatusOK {
		t.Errorf("Status = %s, want OK", f.Status)
	}
}

func TestBuildForecastsExcludesUnsoldProducts(t *testing.T) {
	products := []models.Product{
		{ID: 1, Name: "Heavy Duty Entrance Mat", Stock: 10},
		{ID: 9, Name: "Artificial Grass Rug", Stock: 250},
	}
	txns := []models.Transaction{
		saleOn(0, 1, 1), saleOn(1, 1, 1), saleOn(2, 1, 1), saleOn(3, 1, 1),
	}

	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	forecasts, err := BuildForecasts(context.Background(), products, txns, now, 14, logging.Logger())
	if err != nil {
		t.Fatalf("BuildForecasts failed: %v", err)
	}

	if len(forecasts) != 1 {
		t.Fatalf("got %d forecasts, want 1 (unsold product excluded)", len(forecasts))
	}
	if forecasts[0].ProductID != 1 {
		t.Errorf("forecast for product %d, want 1", forecasts[0].ProductID)
	}
}

func TestBuildForecastsMultipleSalesPerDay(t *testing.T) {
	// Same-day sales aggregate before the trend fit: 3 units/day.
	products := []models.Product{{ID: 4, Name: "Kitchen Anti-Fatigue Mat", Stock: 90}}
	var txns []models.Transaction
	for day := 0; day < 6; day++ {
		txns = append(txns, saleOn(day, 4, 1), saleOn(day, 4, 2))
	}

	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	forecasts, err := BuildForecasts(context.Background(), products, txns, now, 14, logging.Logger())
	if err != nil {
		t.Fatalf("BuildForecasts failed: %v", err)
	}

	f := forecasts[0]
	if f.BurnRate != 3.0 {
		t.Errorf("BurnRate = %v, want 3.0", f.BurnRate)
	}
	if f.DaysLeft != 30 {
		t.Errorf("DaysLeft = %d, want 30", f.DaysLeft)
	}
}
