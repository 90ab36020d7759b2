// Shelfline - Retail Catalog Recommendations and Stock Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfline

package models

// BasketRule is a mined pairwise association: customers who buy the
// antecedent product also buy the consequent product.
//
// Probability is the rule confidence expressed as an integer percentage
// (0-100). Rules are mined only for pairs whose lift exceeds 1, so every
// published rule represents a positive association.
type BasketRule struct {
	AntecedentID   int    `json:"antecedent_id"`
	AntecedentName string `json:"antecedent_name"`
	ConsequentID   int    `json:"consequent_id"`
	ConsequentName string `json:"consequent_name"`
	Probability    int    `json:"probability_pct"`
}
