// Shelfline - Retail Catalog Recommendations and Stock Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfline

package train

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/shelfline/internal/artifact"
	"github.com/tomtom215/shelfline/internal/config"
	"github.com/tomtom215/shelfline/internal/models"
)

type fixtureSource struct {
	products []models.Product
	txns     []models.Transaction

	// loading, when set, is closed-over by ListProducts to signal a run
	// has started, and release blocks it until the test says go.
	loading chan struct{}
	release chan struct{}
}

func (s *fixtureSource) ListProducts(ctx context.Context) ([]models.Product, error) {
	if s.loading != nil {
		close(s.loading)
		<-s.release
	}
	return s.products, nil
}

func (s *fixtureSource) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	return s.txns, nil
}

type memPublisher struct {
	mu     sync.Mutex
	bundle *artifact.Bundle
	err    error
}

func (p *memPublisher) Publish(b *artifact.Bundle) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.bundle = b
	return nil
}

func trainingConfig() config.TrainingConfig {
	return config.TrainingConfig{
		MinSupport:         0.005,
		MaxRules:           15,
		CriticalWindowDays: 14,
	}
}

func pipelineFixture() *fixtureSource {
	products := []models.Product{
		{ID: 101, Name: "Double-Sided Carpet Tape", Category: "Installation", Price: 12.99, Stock: 10},
		{ID: 102, Name: "Rug Gripper Pads", Category: "Installation", Price: 9.99, Stock: 120},
		{ID: 105, Name: "Kitchen Anti-Fatigue Mat", Category: "Mat", Price: 34.99, Stock: 60},
	}

	var txns []models.Transaction
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for day := 0; day < 10; day++ {
		txns = append(txns, models.Transaction{
			OrderID:    "o" + string(rune('a'+day)),
			CustomerID: 1 + day%3,
			ProductID:  101,
			Quantity:   1,
			Rating:     4,
			Date:       base.AddDate(0, 0, day),
		})
		txns = append(txns, models.Transaction{
			OrderID:    "o" + string(rune('a'+day)),
			CustomerID: 1 + day%3,
			ProductID:  102,
			Quantity:   1,
			Rating:     5,
			Date:       base.AddDate(0, 0, day),
		})
	}
	return &fixtureSource{products: products, txns: txns}
}

func TestTrainerRun(t *testing.T) {
	source := pipelineFixture()
	pub := &memPublisher{}
	cache := artifact.NewCache()

	trainer := NewTrainer(source, pub, cache, trainingConfig())

	bundle, err := trainer.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if bundle.Generation == "" {
		t.Error("bundle has no generation ID")
	}
	if len(bundle.Products) != 3 {
		t.Errorf("bundle holds %d products, want 3", len(bundle.Products))
	}
	if len(bundle.Ratings.CustomerIDs) != 3 {
		t.Errorf("rating matrix covers %d customers, want 3", len(bundle.Ratings.CustomerIDs))
	}
	if bundle.UserSim == nil || bundle.ContentSim == nil {
		t.Fatal("similarity matrices missing from bundle")
	}
	if len(bundle.Forecasts) != 2 {
		t.Errorf("got %d forecasts, want 2 (unsold product excluded)", len(bundle.Forecasts))
	}
	if len(bundle.Rules) == 0 {
		t.Error("expected basket rules for perfectly co-occurring products")
	}

	// Published to the store and the cache
	if pub.bundle != bundle {
		t.Error("bundle was not published to the store")
	}
	cached, err := cache.Get()
	if err != nil {
		t.Fatalf("cache.Get failed: %v", err)
	}
	if cached.Generation != bundle.Generation {
		t.Errorf("cached generation %s, want %s", cached.Generation, bundle.Generation)
	}

	status := trainer.Status()
	if status.Running {
		t.Error("status still reports running")
	}
	if status.LastGeneration != bundle.Generation {
		t.Errorf("status generation %s, want %s", status.LastGeneration, bundle.Generation)
	}
	if status.OrderLines != len(source.txns) {
		t.Errorf("status order lines %d, want %d", status.OrderLines, len(source.txns))
	}
	if status.LastError != "" {
		t.Errorf("status error %q, want empty", status.LastError)
	}
}

func TestTrainerRunEmptyDataset(t *testing.T) {
	source := &fixtureSource{products: []models.Product{{ID: 101, Name: "Tape"}}}
	pub := &memPublisher{}
	cache := artifact.NewCache()

	trainer := NewTrainer(source, pub, cache, trainingConfig())

	if _, err := trainer.Run(context.Background()); !errors.Is(err, models.ErrEmptyDataset) {
		t.Fatalf("Run error = %v, want models.ErrEmptyDataset", err)
	}

	status := trainer.Status()
	if status.LastError == "" {
		t.Error("failed run left no error in status")
	}
	if _, err := cache.Get(); !errors.Is(err, models.ErrDataUnavailable) {
		t.Error("cache should stay empty after a failed run")
	}
}

func TestTrainerRunPublishFailure(t *testing.T) {
	source := pipelineFixture()
	pub := &memPublisher{err: errors.New("disk full")}
	cache := artifact.NewCache()

	trainer := NewTrainer(source, pub, cache, trainingConfig())

	if _, err := trainer.Run(context.Background()); err == nil {
		t.Fatal("Run should surface the publish failure")
	}
	if _, err := cache.Get(); !errors.Is(err, models.ErrDataUnavailable) {
		t.Error("cache must not serve a bundle that failed to persist")
	}
}

func TestTrainerRejectsConcurrentRun(t *testing.T) {
	source := pipelineFixture()
	source.loading = make(chan struct{})
	source.release = make(chan struct{})

	trainer := NewTrainer(source, &memPublisher{}, artifact.NewCache(), trainingConfig())

	done := make(chan error, 1)
	go func() {
		_, err := trainer.Run(context.Background())
		done <- err
	}()

	<-source.loading
	if !trainer.Status().Running {
		t.Error("status should report running mid-run")
	}

	if _, err := trainer.Run(context.Background()); !errors.Is(err, models.ErrTrainingInProgress) {
		t.Errorf("overlapping Run error = %v, want models.ErrTrainingInProgress", err)
	}

	close(source.release)
	if err := <-done; err != nil {
		t.Fatalf("first run failed: %v", err)
	}
}

func TestTrainerDeterministicGenerationsDiffer(t *testing.T) {
	source := pipelineFixture()
	pub := &memPublisher{}
	cache := artifact.NewCache()
	trainer := NewTrainer(source, pub, cache, trainingConfig())
	trainer.now = func() time.Time {
		return time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	}

	first, err := trainer.Run(context.Background())
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	second, err := trainer.Run(context.Background())
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if first.Generation == second.Generation {
		t.Error("each run must mint a fresh generation ID")
	}

	// Same inputs and the same anchor time produce identical artifacts
	// apart from the generation ID.
	if len(first.Rules) != len(second.Rules) {
		t.Fatalf("rule counts differ across runs: %d vs %d", len(first.Rules), len(second.Rules))
	}
	for i := range first.Rules {
		if first.Rules[i] != second.Rules[i] {
			t.Errorf("rule %d differs across runs: %+v vs %+v", i, first.Rules[i], second.Rules[i])
		}
	}
	if !reflect.DeepEqual(first.Forecasts, second.Forecasts) {
		t.Errorf("forecasts differ across runs:\n%+v\nvs\n%+v", first.Forecasts, second.Forecasts)
	}
	if !reflect.DeepEqual(first.Ratings, second.Ratings) {
		t.Error("rating matrices differ across runs")
	}
	if !reflect.DeepEqual(first.UserSim, second.UserSim) {
		t.Error("user similarity matrices differ across runs")
	}
	if !reflect.DeepEqual(first.ContentSim, second.ContentSim) {
		t.Error("content similarity matrices differ across runs")
	}
	if !first.TrainedAt.Equal(second.TrainedAt) {
		t.Errorf("TrainedAt differs across runs: %v vs %v", first.TrainedAt, second.TrainedAt)
	}
}
