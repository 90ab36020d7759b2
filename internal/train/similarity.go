// Shelfline - Retail Catalog Recommendations and Stock Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfline

// Package train implements the offline model-building pipeline: the
// customer rating matrix, user and content similarity, per-product stock
// forecasts, and market basket rules. The pipeline is deterministic for
// a given dataset and training timestamp.
package train

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync"

	"github.com/tomtom215/shelfline/internal/artifact"
	"github.com/tomtom215/shelfline/internal/models"
)

// BuildRatingMatrix pivots the transaction log into a dense
// customer-by-product matrix of ratings. Repeat purchases of the same
// product are aggregated by arithmetic mean; a zero entry means the
// customer never bought the product.
//
// Rows and columns are ordered by ascending ID. Only products that
// appear in the transaction log become columns.
func BuildRatingMatrix(txns []models.Transaction) (*artifact.RatingMatrix, error) {
	if len(txns) == 0 {
		return nil, fmt.Errorf("cannot build rating matrix: %w", models.ErrEmptyDataset)
	}

	customerSet := make(map[int]struct{})
	productSet := make(map[int]struct{})
	for _, t := range txns {
		customerSet[t.CustomerID] = struct{}{}
		productSet[t.ProductID] = struct{}{}
	}

	customerIDs := sortedKeys(customerSet)
	productIDs := sortedKeys(productSet)

	type cell struct{ customer, product int }
	sums := make(map[cell]float64)
	counts := make(map[cell]int)
	for _, t := range txns {
		c := cell{t.CustomerID, t.ProductID}
		sums[c] += t.Rating
		counts[c]++
	}

	m := artifact.NewRatingMatrix(customerIDs, productIDs)
	for c, sum := range sums {
		m.Set(c.customer, c.product, sum/float64(counts[c]))
	}

	return m, nil
}

// BuildUserSimilarity computes pairwise cosine similarity between every
// customer's rating vector. The result is symmetric; customers with an
// all-zero vector have similarity 0 to everyone, themselves included.
//
// Rows are partitioned across workers since each row's similarities are
// independent.
func BuildUserSimilarity(ctx context.Context, ratings *artifact.RatingMatrix) (*artifact.SimilarityMatrix, error) {
	n := len(ratings.CustomerIDs)
	sim := artifact.NewSimilarityMatrix(ratings.CustomerIDs)

	numWorkers := runtime.NumCPU()
	if numWorkers > n {
		numWorkers = n
	}
	if numWorkers < 1 {
		numWorkers = 1
	}

	chunkSize := (n + numWorkers - 1) / numWorkers
	var wg sync.WaitGroup

	for w := 0; w < numWorkers; w++ {
		startRow := w * chunkSize
		endRow := startRow + chunkSize
		if endRow > n {
			endRow = n
		}
		if startRow >= endRow {
			continue
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				if contextCancelled(ctx) {
					return
				}
				for j := i; j < n; j++ {
					// Set writes both (i,j) and (j,i); restricting j >= i
					// keeps the workers' write ranges disjoint per row pair.
					sim.Set(i, j, cosineSimilarity(ratings.Values[i], ratings.Values[j]))
				}
			}
		}(startRow, endRow)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("user similarity computation cancelled: %w", err)
	}
	return sim, nil
}

// cosineSimilarity computes cosine similarity between two vectors.
// Returns 0 when either vector is all zeros.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func sortedKeys(set map[int]struct{}) []int {
	keys := make([]int, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// contextCancelled checks if the context has been canceled.
func contextCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
