// Shelfline - Retail Catalog Recommendations and Stock Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfline

package artifact

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/shelfline/internal/models"
)

func testBundle(t *testing.T) *Bundle {
	t.Helper()

	ratings := NewRatingMatrix([]int{1, 2}, []int{101, 102})
	ratings.Set(1, 101, 4)

	b := &Bundle{
		Generation: uuid.New().String(),
		TrainedAt:  time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Products: []models.Product{
			{ID: 101, Name: "Double-Sided Carpet Tape", Category: "Installation", Price: 15, Stock: 10},
			{ID: 102, Name: "Heavy Duty Entrance Mat", Category: "Mat", Price: 45, Stock: 8},
		},
		Ratings:    ratings,
		UserSim:    NewSimilarityMatrix([]int{1, 2}),
		ContentSim: NewSimilarityMatrix([]int{101, 102}),
		Forecasts: []models.StockForecast{
			{ProductID: 101, ProductName: "Double-Sided Carpet Tape", CurrentStock: 10, BurnRate: 1.0, DaysLeft: 10, Status: models.ForecastStatusCritical},
		},
		Rules: []models.BasketRule{
			{AntecedentID: 102, ConsequentID: 101, Probability: 80},
		},
	}
	b.RebuildIndexes()
	return b
}

func newTestStore(t *testing.T, keep int) *Store {
	t.Helper()

	store, err := OpenInMemory(keep)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})
	return store
}

func TestLoadLatestBeforePublish(t *testing.T) {
	store := newTestStore(t, 3)

	_, err := store.LoadLatest()
	if !errors.Is(err, models.ErrDataUnavailable) {
		t.Errorf("LoadLatest on empty store error = %v, want models.ErrDataUnavailable", err)
	}
}

func TestPublishAndLoadLatest(t *testing.T) {
	store := newTestStore(t, 3)
	b := testBundle(t)

	if err := store.Publish(b); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	got, err := store.LoadLatest()
	if err != nil {
		t.Fatalf("LoadLatest failed: %v", err)
	}

	if got.Generation != b.Generation {
		t.Errorf("Generation = %s, want %s", got.Generation, b.Generation)
	}
	if len(got.Products) != 2 {
		t.Errorf("Products = %d entries, want 2", len(got.Products))
	}

	// Indexes must be rebuilt after load
	p, ok := got.ProductByID(102)
	if !ok || p.Name != "Heavy Duty Entrance Mat" {
		t.Errorf("ProductByID(102) = %+v, %v", p, ok)
	}
	f, ok := got.ForecastByProduct(101)
	if !ok || f.Status != models.ForecastStatusCritical {
		t.Errorf("ForecastByProduct(101) = %+v, %v", f, ok)
	}
	if row, ok := got.Ratings.Row(1); !ok || row[0] != 4 {
		t.Errorf("restored rating row = %v, %v", row, ok)
	}
}

func TestPublishReplacesLatest(t *testing.T) {
	store := newTestStore(t, 5)

	first := testBundle(t)
	second := testBundle(t)
	second.Rules = nil

	if err := store.Publish(first); err != nil {
		t.Fatalf("Publish(first) failed: %v", err)
	}
	if err := store.Publish(second); err != nil {
		t.Fatalf("Publish(second) failed: %v", err)
	}

	got, err := store.LoadLatest()
	if err != nil {
		t.Fatalf("LoadLatest failed: %v", err)
	}
	if got.Generation != second.Generation {
		t.Errorf("latest = %s, want %s", got.Generation, second.Generation)
	}
	if len(got.Rules) != 0 {
		t.Errorf("latest bundle has %d rules, want 0", len(got.Rules))
	}
}

func TestPublishWithoutGeneration(t *testing.T) {
	store := newTestStore(t, 3)

	b := testBundle(t)
	b.Generation = ""
	if err := store.Publish(b); err == nil {
		t.Error("Publish with empty generation should fail")
	}
}

func TestPruneKeepsRetentionBound(t *testing.T) {
	store := newTestStore(t, 2)

	var last *Bundle
	for i := 0; i < 5; i++ {
		last = testBundle(t)
		if err := store.Publish(last); err != nil {
			t.Fatalf("Publish %d failed: %v", i, err)
		}
	}

	gens, err := store.Generations()
	if err != nil {
		t.Fatalf("Generations failed: %v", err)
	}
	if len(gens) != 2 {
		t.Errorf("retained %d generations, want 2", len(gens))
	}

	// The latest pointer must still resolve after pruning
	got, err := store.LoadLatest()
	if err != nil {
		t.Fatalf("LoadLatest after prune failed: %v", err)
	}
	if got.Generation != last.Generation {
		t.Errorf("latest = %s, want %s", got.Generation, last.Generation)
	}
}

func TestCache(t *testing.T) {
	cache := NewCache()

	if _, err := cache.Get(); !errors.Is(err, models.ErrDataUnavailable) {
		t.Errorf("empty cache Get error = %v, want models.ErrDataUnavailable", err)
	}

	b := testBundle(t)
	cache.Set(b)

	got, err := cache.Get()
	if err != nil {
		t.Fatalf("Get after Set failed: %v", err)
	}
	if got.Generation != b.Generation {
		t.Errorf("cached generation = %s, want %s", got.Generation, b.Generation)
	}
}
