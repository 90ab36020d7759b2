// Shelfline - Retail Catalog Recommendations and Stock Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfline

package database

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"time"

	"github.com/tomtom215/shelfline/internal/logging"
	"github.com/tomtom215/shelfline/internal/models"
)

// Seeding parameters for the synthetic carpet-retail dataset.
const (
	seedRandSource   = 42
	seedNumCustomers = 100
	seedNumDays      = 365
	seedFirstOrderID = 5000
)

// seedProduct pairs a catalog entry with its sales velocity profile.
// The four profiles exercise every forecast outcome: critical products
// sell fast on thin stock, healthy products are balanced, slow luxury
// items rarely sell, and the overstock product sits on a huge pile.
type seedProduct struct {
	product  models.Product
	velocity float64
}

// seedCatalog builds the eight-product demo catalog. Stock levels within
// each profile's range are drawn from rng so the dataset is reproducible.
func seedCatalog(rng *rand.Rand) []seedProduct {
	stockBetween := func(lo, hi int) int { return lo + rng.Intn(hi-lo+1) }

	return []seedProduct{
		// CRITICAL: high demand, low stock
		{models.Product{ID: 101, Name: "Double-Sided Carpet Tape", Category: "Installation", Price: 15, Stock: stockBetween(5, 20)}, 8.0},
		{models.Product{ID: 102, Name: "Heavy Duty Entrance Mat", Category: "Mat", Price: 45, Stock: stockBetween(5, 20)}, 8.0},
		// HEALTHY: balanced
		{models.Product{ID: 103, Name: "Modern Grey Shag Rug", Category: "Rug", Price: 200, Stock: stockBetween(100, 150)}, 2.0},
		{models.Product{ID: 104, Name: "Non-Slip Rug Pad", Category: "Installation", Price: 50, Stock: stockBetween(100, 150)}, 2.0},
		{models.Product{ID: 105, Name: "Kitchen Anti-Fatigue Mat", Category: "Mat", Price: 35, Stock: stockBetween(100, 150)}, 2.0},
		// SLOW/LUXURY: rare sales, low stock is fine
		{models.Product{ID: 106, Name: "Royal Persian Silk Rug", Category: "Luxury", Price: 1500, Stock: stockBetween(3, 8)}, 0.2},
		{models.Product{ID: 107, Name: "Hand-Woven Wool Carpet", Category: "Luxury", Price: 600, Stock: stockBetween(3, 8)}, 0.2},
		// OVERSTOCK: low sales on a huge pile
		{models.Product{ID: 108, Name: "Artificial Grass Rug", Category: "Outdoor", Price: 90, Stock: 250}, 0.5},
	}
}

// generateDemoData produces the synthetic catalog and a year of order
// history ending at now. Two co-purchase patterns are injected so the
// basket miner has something real to find: entrance mats pull carpet
// tape into 80% of their orders, and luxury rugs pull a rug pad into
// 60% of theirs.
func generateDemoData(now time.Time) ([]models.Product, []models.Transaction) {
	rng := rand.New(rand.NewSource(seedRandSource))
	catalog := seedCatalog(rng)
	startDate := now.AddDate(0, 0, -seedNumDays)

	var txns []models.Transaction
	orderID := seedFirstOrderID

	for day := 0; day < seedNumDays; day++ {
		currDate := startDate.AddDate(0, 0, day)

		for _, sp := range catalog {
			numSales := poisson(rng, sp.velocity)

			for i := 0; i < numSales; i++ {
				orderID++
				custID := 1 + rng.Intn(seedNumCustomers)

				txns = append(txns, models.Transaction{
					OrderID:    strconv.Itoa(orderID),
					CustomerID: custID,
					ProductID:  sp.product.ID,
					Quantity:   1,
					Rating:     float64(3 + rng.Intn(3)),
					Date:       currDate,
				})

				// Mat -> tape (80%)
				if sp.product.ID == 102 && rng.Float64() < 0.8 {
					txns = append(txns, models.Transaction{
						OrderID:    strconv.Itoa(orderID),
						CustomerID: custID,
						ProductID:  101,
						Quantity:   1,
						Rating:     4,
						Date:       currDate,
					})
				}

				// Luxury rug -> pad (60%)
				if (sp.product.ID == 106 || sp.product.ID == 107) && rng.Float64() < 0.6 {
					txns = append(txns, models.Transaction{
						OrderID:    strconv.Itoa(orderID),
						CustomerID: custID,
						ProductID:  104,
						Quantity:   1,
						Rating:     5,
						Date:       currDate,
					})
				}
			}
		}
	}

	products := make([]models.Product, 0, len(catalog))
	for _, sp := range catalog {
		products = append(products, sp.product)
	}

	return products, txns
}

// poisson draws from a Poisson distribution with the given mean using
// Knuth's multiplication method. Fine for the small lambdas used here.
func poisson(rng *rand.Rand, lambda float64) int {
	l := math.Exp(-lambda)
	k := 0
	p := 1.0
	for {
		p *= rng.Float64()
		if p <= l {
			return k
		}
		k++
	}
}

// SeedDemoData populates an empty database with the synthetic retail
// dataset. It is a no-op when the catalog already has rows, so restarts
// don't duplicate data.
func (db *DB) SeedDemoData(ctx context.Context) error {
	existing, err := db.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("failed to check existing catalog: %w", err)
	}
	if len(existing) > 0 {
		logging.Info().Int("products", len(existing)).Msg("Catalog already populated, skipping demo seed")
		return nil
	}

	products, txns := generateDemoData(time.Now())

	if err := db.InsertProducts(ctx, products); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}
	if err := db.InsertTransactions(ctx, txns); err != nil {
		return fmt.Errorf("failed to seed transactions: %w", err)
	}

	logging.Info().
		Int("products", len(products)).
		Int("order_lines", len(txns)).
		Msg("Demo data seeded")

	return nil
}
