// Shelfline - Retail Catalog Recommendations and Stock Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfline

// Package artifact defines the trained model bundle and its persistent
// store. A bundle is immutable once published: the serving layer holds a
// pointer to the current bundle and swaps it atomically on retrain.
package artifact

// RatingMatrix is a dense customer-by-product matrix of mean ratings.
// A zero entry means the customer never purchased the product.
//
// Row and column order is fixed at build time (ascending IDs) and shared
// with the similarity matrices derived from it, which is what makes
// "first in column order" selection policies well-defined.
type RatingMatrix struct {
	CustomerIDs []int       `json:"customer_ids"`
	ProductIDs  []int       `json:"product_ids"`
	Values      [][]float64 `json:"values"`

	customerIdx map[int]int
	productIdx  map[int]int
}

// NewRatingMatrix creates a zeroed matrix with the given row and column
// identities.
func NewRatingMatrix(customerIDs, productIDs []int) *RatingMatrix {
	values := make([][]float64, len(customerIDs))
	for i := range values {
		values[i] = make([]float64, len(productIDs))
	}

	m := &RatingMatrix{
		CustomerIDs: customerIDs,
		ProductIDs:  productIDs,
		Values:      values,
	}
	m.rebuildIndex()
	return m
}

// rebuildIndex recomputes the ID lookup maps. Must be called after
// deserialization since the maps are not part of the wire format.
func (m *RatingMatrix) rebuildIndex() {
	m.customerIdx = make(map[int]int, len(m.CustomerIDs))
	for i, id := range m.CustomerIDs {
		m.customerIdx[id] = i
	}
	m.productIdx = make(map[int]int, len(m.ProductIDs))
	for j, id := range m.ProductIDs {
		m.productIdx[id] = j
	}
}

// CustomerIndex returns the row index for a customer ID.
func (m *RatingMatrix) CustomerIndex(customerID int) (int, bool) {
	i, ok := m.customerIdx[customerID]
	return i, ok
}

// ProductIndex returns the column index for a product ID.
func (m *RatingMatrix) ProductIndex(productID int) (int, bool) {
	j, ok := m.productIdx[productID]
	return j, ok
}

// Set stores a rating. Unknown IDs are ignored.
func (m *RatingMatrix) Set(customerID, productID int, rating float64) {
	i, ok := m.customerIdx[customerID]
	if !ok {
		return
	}
	j, ok := m.productIdx[productID]
	if !ok {
		return
	}
	m.Values[i][j] = rating
}

// Row returns the rating vector for a customer ID.
func (m *RatingMatrix) Row(customerID int) ([]float64, bool) {
	i, ok := m.customerIdx[customerID]
	if !ok {
		return nil, false
	}
	return m.Values[i], true
}

// SimilarityMatrix is a square symmetric matrix over a fixed set of
// entity IDs (customers for collaborative similarity, products for
// content similarity).
type SimilarityMatrix struct {
	IDs    []int       `json:"ids"`
	Values [][]float64 `json:"values"`

	idx map[int]int
}

// NewSimilarityMatrix creates a zeroed square matrix over the given IDs.
func NewSimilarityMatrix(ids []int) *SimilarityMatrix {
	values := make([][]float64, len(ids))
	for i := range values {
		values[i] = make([]float64, len(ids))
	}

	m := &SimilarityMatrix{
		IDs:    ids,
		Values: values,
	}
	m.rebuildIndex()
	return m
}

func (m *SimilarityMatrix) rebuildIndex() {
	m.idx = make(map[int]int, len(m.IDs))
	for i, id := range m.IDs {
		m.idx[id] = i
	}
}

// Index returns the matrix index for an entity ID.
func (m *SimilarityMatrix) Index(id int) (int, bool) {
	i, ok := m.idx[id]
	return i, ok
}

// Set stores a similarity score symmetrically by matrix index.
func (m *SimilarityMatrix) Set(i, j int, score float64) {
	m.Values[i][j] = score
	m.Values[j][i] = score
}

// Similarity returns the score between two entity IDs.
func (m *SimilarityMatrix) Similarity(a, b int) (float64, bool) {
	i, ok := m.idx[a]
	if !ok {
		return 0, false
	}
	j, ok := m.idx[b]
	if !ok {
		return 0, false
	}
	return m.Values[i][j], true
}

// Row returns the similarity vector for an entity ID.
func (m *SimilarityMatrix) Row(id int) ([]float64, bool) {
	i, ok := m.idx[id]
	if !ok {
		return nil, false
	}
	return m.Values[i], true
}
