// Shelfline - Retail Catalog Recommendations and Stock Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfline

package train

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/shelfline/internal/artifact"
	"github.com/tomtom215/shelfline/internal/config"
	"github.com/tomtom215/shelfline/internal/logging"
	"github.com/tomtom215/shelfline/internal/metrics"
	"github.com/tomtom215/shelfline/internal/models"
)

// DataSource supplies the catalog and order history for training.
// Implemented by database.DB; tests supply fixtures.
type DataSource interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	ListTransactions(ctx context.Context) ([]models.Transaction, error)
}

// Publisher persists a finished bundle. Implemented by artifact.Store.
type Publisher interface {
	Publish(*artifact.Bundle) error
}

// Status reports the trainer's current and most recent run.
type Status struct {
	Running        bool          `json:"running"`
	LastGeneration string        `json:"last_generation,omitempty"`
	LastTrainedAt  time.Time     `json:"last_trained_at,omitempty"`
	LastDurationMS int64         `json:"last_duration_ms,omitempty"`
	LastError      string        `json:"last_error,omitempty"`
	Products       int           `json:"products"`
	Customers      int           `json:"customers"`
	OrderLines     int           `json:"order_lines"`
	Forecasts      int           `json:"forecasts"`
	Rules          int           `json:"rules"`
}

// Trainer runs the offline pipeline and publishes the resulting bundle
// to both the persistent store and the in-memory cache.
//
// Only one run may execute at a time; Run returns
// models.ErrTrainingInProgress when called concurrently.
type Trainer struct {
	source DataSource
	store  Publisher
	cache  *artifact.Cache
	cfg    config.TrainingConfig
	logger zerolog.Logger

	// now anchors TrainedAt and the forecast horizon; tests pin it.
	now func() time.Time

	runMu sync.Mutex

	statusMu sync.RWMutex
	status   Status
}

// NewTrainer creates a trainer.
func NewTrainer(source DataSource, store Publisher, cache *artifact.Cache, cfg config.TrainingConfig) *Trainer {
	return &Trainer{
		source: source,
		store:  store,
		cache:  cache,
		cfg:    cfg,
		logger: logging.WithComponent("train"),
		now:    time.Now,
	}
}

// Status returns a snapshot of the trainer state.
func (t *Trainer) Status() Status {
	t.statusMu.RLock()
	defer t.statusMu.RUnlock()
	return t.status
}

// Run executes one full training pass: load data, build all four
// artifact families (the similarity pair, forecasts, and basket rules
// run concurrently since they are independent), assemble the bundle,
// and publish it atomically.
func (t *Trainer) Run(ctx context.Context) (*artifact.Bundle, error) {
	if !t.runMu.TryLock() {
		return nil, models.ErrTrainingInProgress
	}
	defer t.runMu.Unlock()
	return t.runLocked(ctx)
}

// StartAsync launches a training run in the background, bounded by the
// configured training timeout. Returns models.ErrTrainingInProgress
// immediately when a run is already executing; failures of the
// background run itself are logged and surfaced via Status.
func (t *Trainer) StartAsync() error {
	if !t.runMu.TryLock() {
		return models.ErrTrainingInProgress
	}
	go func() {
		defer t.runMu.Unlock()

		ctx := context.Background()
		if t.cfg.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, t.cfg.Timeout)
			defer cancel()
		}

		if _, err := t.runLocked(ctx); err != nil {
			t.logger.Error().Err(err).Msg("Background training run failed")
		}
	}()
	return nil
}

func (t *Trainer) runLocked(ctx context.Context) (*artifact.Bundle, error) {
	t.setRunning(true)
	defer t.setRunning(false)

	start := time.Now()
	bundle, orderLines, err := t.run(ctx, t.now())
	duration := time.Since(start)

	if err != nil {
		t.recordFailure(err, duration)
		metrics.RecordTrainingRun("error", duration)
		return nil, err
	}

	t.recordSuccess(bundle, duration, orderLines)
	metrics.RecordTrainingRun("success", duration)

	t.logger.Info().
		Str("generation", bundle.Generation).
		Dur("duration", duration).
		Int("customers", len(bundle.Ratings.CustomerIDs)).
		Int("products", len(bundle.Products)).
		Int("forecasts", len(bundle.Forecasts)).
		Int("rules", len(bundle.Rules)).
		Msg("Training run complete")

	return bundle, nil
}

func (t *Trainer) run(ctx context.Context, now time.Time) (*artifact.Bundle, int, error) {
	products, err := t.source.ListProducts(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load catalog: %w", err)
	}
	txns, err := t.source.ListTransactions(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load transactions: %w", err)
	}

	ratings, err := BuildRatingMatrix(txns)
	if err != nil {
		return nil, 0, err
	}

	names := make(map[int]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}

	// The four artifact families are independent given the rating matrix.
	var (
		wg         sync.WaitGroup
		userSim    *artifact.SimilarityMatrix
		contentSim *artifact.SimilarityMatrix
		forecasts  []models.StockForecast
		rules      []models.BasketRule

		userErr, contentErr, forecastErr, rulesErr error
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		userSim, userErr = BuildUserSimilarity(ctx, ratings)
	}()
	go func() {
		defer wg.Done()
		contentSim, contentErr = BuildContentSimilarity(ctx, products)
	}()
	go func() {
		defer wg.Done()
		forecasts, forecastErr = BuildForecasts(ctx, products, txns, now, t.cfg.CriticalWindowDays, t.logger)
	}()
	go func() {
		defer wg.Done()
		rules, rulesErr = MineRules(ctx, txns, names, MiningConfig{
			MinSupport: t.cfg.MinSupport,
			MaxRules:   t.cfg.MaxRules,
		})
	}()
	wg.Wait()

	for _, err := range []error{userErr, contentErr, forecastErr, rulesErr} {
		if err != nil {
			return nil, 0, err
		}
	}

	bundle := &artifact.Bundle{
		Generation: uuid.New().String(),
		TrainedAt:  now,
		Products:   products,
		Ratings:    ratings,
		UserSim:    userSim,
		ContentSim: contentSim,
		Forecasts:  forecasts,
		Rules:      rules,
	}
	bundle.RebuildIndexes()

	if err := t.store.Publish(bundle); err != nil {
		return nil, 0, fmt.Errorf("failed to publish bundle: %w", err)
	}
	t.cache.Set(bundle)

	return bundle, len(txns), nil
}

func (t *Trainer) setRunning(running bool) {
	t.statusMu.Lock()
	defer t.statusMu.Unlock()
	t.status.Running = running
}

func (t *Trainer) recordSuccess(b *artifact.Bundle, duration time.Duration, orderLines int) {
	t.statusMu.Lock()
	defer t.statusMu.Unlock()
	t.status.LastGeneration = b.Generation
	t.status.LastTrainedAt = b.TrainedAt
	t.status.LastDurationMS = duration.Milliseconds()
	t.status.LastError = ""
	t.status.Products = len(b.Products)
	t.status.Customers = len(b.Ratings.CustomerIDs)
	t.status.OrderLines = orderLines
	t.status.Forecasts = len(b.Forecasts)
	t.status.Rules = len(b.Rules)
}

func (t *Trainer) recordFailure(err error, duration time.Duration) {
	t.statusMu.Lock()
	defer t.statusMu.Unlock()
	t.status.LastError = err.Error()
	t.status.LastDurationMS = duration.Milliseconds()
}
