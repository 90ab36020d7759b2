// Shelfline - Retail Catalog Recommendations and Stock Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfline

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/shelfline/internal/config"
	"github.com/tomtom215/shelfline/internal/logging"
	"github.com/tomtom215/shelfline/internal/models"
	"github.com/tomtom215/shelfline/internal/train"
)

// TrainingService periodically refreshes the artifact bundle. When
// OnStartup is set it trains immediately on Serve, then re-trains every
// Interval. A run already in progress (e.g. triggered over the API) is
// skipped, not treated as a failure.
type TrainingService struct {
	trainer *train.Trainer
	cfg     config.TrainingConfig
	logger  zerolog.Logger
	name    string
}

// NewTrainingService creates the retraining service.
func NewTrainingService(trainer *train.Trainer, cfg config.TrainingConfig) *TrainingService {
	return &TrainingService{
		trainer: trainer,
		cfg:     cfg,
		logger:  logging.WithComponent("training-service"),
		name:    "training-service",
	}
}

// Serve implements suture.Service.
func (s *TrainingService) Serve(ctx context.Context) error {
	if s.cfg.OnStartup {
		s.runOnce(ctx)
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// runOnce executes one training pass bounded by the configured timeout.
// Failures are logged, not returned: a bad run must not crash the
// service loop and lose the retrain schedule.
func (s *TrainingService) runOnce(ctx context.Context) {
	runCtx := ctx
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	_, err := s.trainer.Run(runCtx)
	switch {
	case err == nil:
	case errors.Is(err, models.ErrTrainingInProgress):
		s.logger.Info().Msg("Scheduled training skipped, a run is already in progress")
	case errors.Is(err, context.Canceled):
	default:
		s.logger.Error().Err(err).Msg("Scheduled training run failed")
	}
}

// String implements fmt.Stringer; suture uses it in event logs.
func (s *TrainingService) String() string {
	return s.name
}
