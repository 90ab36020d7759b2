// Shelfline - Retail Catalog Recommendations and Stock Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfline

package models

import "errors"

// Sentinel errors shared across the offline and serving layers.
// Callers classify failures with errors.Is and map them to API error
// codes at the transport boundary.
var (
	// ErrDataUnavailable indicates no artifact bundle has been published
	// yet, so model-backed reads cannot be served.
	ErrDataUnavailable = errors.New("model artifacts unavailable")

	// ErrNotFound indicates a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrEmptyDataset indicates the transaction log contains no rows,
	// which makes training impossible.
	ErrEmptyDataset = errors.New("empty dataset")

	// ErrTrainingInProgress indicates a training run is already executing.
	ErrTrainingInProgress = errors.New("training already in progress")
)
