// Shelfline - Retail Catalog Recommendations and Stock Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfline

// Package recommend implements the online hybrid scoring stage. It is
// pure in-memory computation over a published artifact bundle: no I/O,
// no locks, safe for concurrent requests against the same bundle.
package recommend

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/tomtom215/shelfline/internal/artifact"
	"github.com/tomtom215/shelfline/internal/logging"
	"github.com/tomtom215/shelfline/internal/metrics"
	"github.com/tomtom215/shelfline/internal/models"
)

// EmptyResultReason is returned when neither branch produces a
// candidate: the customer is unknown (or has no usable history) and no
// viewing context was supplied.
const EmptyResultReason = "new user & no context"

// likedThreshold separates a genuine endorsement from a neutral rating.
// Ratings are 1-5; zero means never purchased, which must not be read
// as a dislike.
const likedThreshold = 3.0

const candidatesPerBranch = 2

// Engine merges collaborative and content-based signals into an
// explained recommendation list. State-free per call; the bundle is
// passed in explicitly so tests can use fixtures and retraining can
// swap generations without touching the engine.
type Engine struct {
	logger zerolog.Logger
}

// NewEngine creates a recommendation engine.
func NewEngine() *Engine {
	return &Engine{logger: logging.WithComponent("recommend")}
}

// Recommend produces up to four recommendations for a customer, two
// from the collaborative branch and two from the content branch, merged
// with set semantics (collaborative candidates win duplicate slots).
//
// viewingProductID of zero means no viewing context. An unknown viewing
// product skips the content branch silently; an unknown customer skips
// the collaborative branch. When both branches come up empty the
// response carries EmptyResultReason instead of recommendations.
func (e *Engine) Recommend(bundle *artifact.Bundle, customerID, viewingProductID int) models.RecommendationResponse {
	var recs []models.Recommendation
	explanations := []string{}
	seen := make(map[int]struct{})

	add := func(productID int, reason string) {
		if _, dup := seen[productID]; dup {
			return
		}
		product, ok := bundle.ProductByID(productID)
		if !ok {
			return
		}
		seen[productID] = struct{}{}
		recs = append(recs, models.Recommendation{
			ProductID:   productID,
			ProductName: product.Name,
			Reason:      reason,
		})
	}

	if neighborID, candidates, ok := e.collaborative(bundle, customerID); ok && len(candidates) > 0 {
		reason := fmt.Sprintf("Because you are similar to customer #%d", neighborID)
		explanations = append(explanations, reason)
		for _, pid := range candidates {
			add(pid, reason)
		}
	}

	if target, candidates, ok := e.content(bundle, customerID, viewingProductID); ok && len(candidates) > 0 {
		product, _ := bundle.ProductByID(target)
		reason := fmt.Sprintf("Because you are interested in '%s'", product.Name)
		explanations = append(explanations, reason)
		for _, pid := range candidates {
			add(pid, reason)
		}
	}

	resp := models.RecommendationResponse{
		CustomerID:       customerID,
		Recommendations:  recs,
		LogicExplanation: explanations,
	}
	if len(recs) == 0 {
		resp.Recommendations = []models.Recommendation{}
		resp.Reason = EmptyResultReason
	}

	metrics.RecordRecommendation(len(recs) == 0)
	e.logger.Debug().
		Int("customer_id", customerID).
		Int("viewing_product_id", viewingProductID).
		Int("results", len(recs)).
		Msg("Recommendation request served")

	return resp
}

// collaborative finds the single most-similar other customer and
// returns products that neighbor liked (> 3) and the requester never
// purchased (rating 0), in matrix column order.
func (e *Engine) collaborative(bundle *artifact.Bundle, customerID int) (neighborID int, candidates []int, ok bool) {
	simRow, found := bundle.UserSim.Row(customerID)
	if !found {
		return 0, nil, false
	}
	selfIdx, _ := bundle.UserSim.Index(customerID)

	// Argmax excluding self; ties resolve to the lowest index so the
	// result is stable across runs.
	bestIdx := -1
	for i, score := range simRow {
		if i == selfIdx {
			continue
		}
		if bestIdx == -1 || score > simRow[bestIdx] {
			bestIdx = i
		}
	}
	if bestIdx == -1 {
		return 0, nil, false
	}
	neighborID = bundle.UserSim.IDs[bestIdx]

	neighborRow, found := bundle.Ratings.Row(neighborID)
	if !found {
		return 0, nil, false
	}
	selfRow, found := bundle.Ratings.Row(customerID)
	if !found {
		return 0, nil, false
	}

	for j, rating := range neighborRow {
		if rating > likedThreshold && selfRow[j] == 0 {
			candidates = append(candidates, bundle.Ratings.ProductIDs[j])
			if len(candidates) == candidatesPerBranch {
				break
			}
		}
	}
	return neighborID, candidates, true
}

// content resolves a target product (explicit viewing context, else the
// requester's first liked purchase in column order) and returns the
// products most similar to it, excluding the target itself.
func (e *Engine) content(bundle *artifact.Bundle, customerID, viewingProductID int) (target int, candidates []int, ok bool) {
	if viewingProductID != 0 {
		// An explicit viewing context that is not in the catalog skips
		// the branch outright rather than falling back to history.
		if _, found := bundle.ContentSim.Index(viewingProductID); !found {
			return 0, nil, false
		}
		target = viewingProductID
	}
	if target == 0 {
		row, found := bundle.Ratings.Row(customerID)
		if !found {
			return 0, nil, false
		}
		for j, rating := range row {
			if rating > likedThreshold {
				target = bundle.Ratings.ProductIDs[j]
				break
			}
		}
	}
	if target == 0 {
		return 0, nil, false
	}

	simRow, found := bundle.ContentSim.Row(target)
	if !found {
		return 0, nil, false
	}
	selfIdx, _ := bundle.ContentSim.Index(target)

	type scored struct {
		idx   int
		score float64
	}
	ranked := make([]scored, 0, len(simRow)-1)
	for i, score := range simRow {
		if i == selfIdx {
			continue
		}
		ranked = append(ranked, scored{idx: i, score: score})
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].score > ranked[b].score
	})

	for i := 0; i < len(ranked) && i < candidatesPerBranch; i++ {
		candidates = append(candidates, bundle.ContentSim.IDs[ranked[i].idx])
	}
	return target, candidates, true
}
