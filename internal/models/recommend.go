// Shelfline - Retail Catalog Recommendations and Stock Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfline

package models

// Recommendation is a single recommended product with the explanation
// of which branch produced it.
type Recommendation struct {
	ProductID   int    `json:"product_id"`
	ProductName string `json:"product_name"`
	Reason      string `json:"reason"`
}

// RecommendationResponse is the payload of the recommendation endpoint.
// LogicExplanation carries one entry per branch that contributed
// candidates, so a hybrid result has at most two.
//
// When no recommendation can be made (unknown customer with no viewing
// context), Recommendations is empty and Reason explains why.
type RecommendationResponse struct {
	CustomerID       int              `json:"customer_id"`
	Recommendations  []Recommendation `json:"recommendations"`
	LogicExplanation []string         `json:"logic_explanation"`
	Reason           string           `json:"reason,omitempty"`
}
