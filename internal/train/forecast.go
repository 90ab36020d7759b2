// Shelfline - Retail Catalog Recommendations and Stock Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfline

package train

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/shelfline/internal/models"
)

// Burn rate fallbacks. A product needs more than two distinct sale days
// before a trend line is meaningful; until then a nominal trickle rate
// is assumed. A flat, negative, or vanishingly small trend is floored
// at a small positive rate so the days-left division stays finite and
// the reported rate never rounds down to zero.
const (
	sparseBurnRate  = 0.1
	minimumBurnRate = 0.01
)

// BuildForecasts estimates the stock runway for every product with sales
// history. The burn rate is the least-squares slope of cumulative units
// sold against day index. Products with no sales are excluded entirely.
//
// now anchors the stockout date so a bundle's forecasts are internally
// consistent and reproducible in tests.
func BuildForecasts(ctx context.Context, products []models.Product, txns []models.Transaction, now time.Time, criticalWindowDays int, logger zerolog.Logger) ([]models.StockForecast, error) {
	// quantity sold per product per day
	daily := make(map[productDay]int)
	days := make(map[int][]string)
	for _, t := range txns {
		day := t.Date.Format("2006-01-02")
		k := productDay{t.ProductID, day}
		if _, seen := daily[k]; !seen {
			days[t.ProductID] = append(days[t.ProductID], day)
		}
		daily[k] += t.Quantity
	}

	var forecasts []models.StockForecast
	for _, p := range products {
		if contextCancelled(ctx) {
			return nil, fmt.Errorf("forecasting cancelled: %w", ctx.Err())
		}

		saleDays := days[p.ID]
		if len(saleDays) == 0 {
			// Never sold: no trend to forecast.
			continue
		}
		sort.Strings(saleDays)

		burnRate := burnRateFor(p.ID, saleDays, daily)
		if burnRate < minimumBurnRate {
			logger.Debug().
				Int("product_id", p.ID).
				Float64("slope", burnRate).
				Msg("Sales trend below minimum, flooring burn rate")
			burnRate = minimumBurnRate
		}

		daysLeft := float64(p.Stock) / burnRate
		status := models.ForecastStatusOK
		if daysLeft < float64(criticalWindowDays) {
			status = models.ForecastStatusCritical
		}

		forecasts = append(forecasts, models.StockForecast{
			ProductID:    p.ID,
			ProductName:  p.Name,
			CurrentStock: p.Stock,
			BurnRate:     math.Round(burnRate*100) / 100,
			DaysLeft:     int(daysLeft),
			StockoutDate: now.AddDate(0, 0, int(daysLeft)).Format("2006-01-02"),
			Status:       status,
		})
	}

	return forecasts, nil
}

// productDay keys the per-product daily sales aggregation.
type productDay struct {
	product int
	day     string
}

// burnRateFor fits the linear trend of cumulative quantity over day
// index. Fewer than three distinct sale days fall back to the sparse
// rate since two points always fit perfectly.
func burnRateFor(productID int, saleDays []string, daily map[productDay]int) float64 {
	if len(saleDays) <= 2 {
		return sparseBurnRate
	}

	firstDay, _ := time.Parse("2006-01-02", saleDays[0])

	xs := make([]float64, len(saleDays))
	ys := make([]float64, len(saleDays))
	cumulative := 0
	for i, day := range saleDays {
		d, _ := time.Parse("2006-01-02", day)
		cumulative += daily[productDay{productID, day}]
		xs[i] = d.Sub(firstDay).Hours() / 24
		ys[i] = float64(cumulative)
	}

	return leastSquaresSlope(xs, ys)
}

// leastSquaresSlope returns the slope of the ordinary least squares fit
// of y over x.
func leastSquaresSlope(xs, ys []float64) float64 {
	n := float64(len(xs))

	var sumX, sumY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX := sumX / n
	meanY := sumY / n

	var num, den float64
	for i := range xs {
		dx := xs[i] - meanX
		num += dx * (ys[i] - meanY)
		den += dx * dx
	}
	if den == 0 {
		return 0
	}
	return num / den
}
