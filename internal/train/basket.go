// Shelfline - Retail Catalog Recommendations and Stock Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfline

package train

import (
	"context"
	"fmt"
	"sort"

	"github.com/tomtom215/shelfline/internal/models"
)

// MiningConfig bounds the basket rule search.
type MiningConfig struct {
	// MinSupport is the minimum fraction of orders an item or pair must
	// appear in to be considered frequent.
	MinSupport float64

	// MaxRules caps the published rule list.
	MaxRules int
}

// MineRules finds pairwise purchase associations in the order history.
//
// Orders are reduced to product membership sets (quantities are
// irrelevant). Items and pairs below MinSupport are discarded; for the
// surviving pairs, directed rules are kept only when lift exceeds 1,
// meaning the pair co-occurs more often than independence predicts.
// Rules are sorted by confidence descending (ties broken by ascending
// antecedent, then consequent ID) and capped at MaxRules.
//
// Returns an empty slice, not an error, when no pattern clears the bar.
func MineRules(ctx context.Context, txns []models.Transaction, names map[int]string, cfg MiningConfig) ([]models.BasketRule, error) {
	orders := make(map[string]map[int]struct{})
	for _, t := range txns {
		if orders[t.OrderID] == nil {
			orders[t.OrderID] = make(map[int]struct{})
		}
		orders[t.OrderID][t.ProductID] = struct{}{}
	}

	numOrders := len(orders)
	if numOrders == 0 {
		return []models.BasketRule{}, nil
	}

	// Frequent single items
	itemCounts := make(map[int]int)
	for _, basket := range orders {
		for pid := range basket {
			itemCounts[pid]++
		}
	}

	minCount := cfg.MinSupport * float64(numOrders)
	frequent := make(map[int]struct{})
	for pid, count := range itemCounts {
		if float64(count) >= minCount {
			frequent[pid] = struct{}{}
		}
	}
	if len(frequent) == 0 {
		return []models.BasketRule{}, nil
	}

	// Frequent pairs (apriori: both members must themselves be frequent)
	type pair struct{ a, b int }
	pairCounts := make(map[pair]int)
	for _, basket := range orders {
		if contextCancelled(ctx) {
			return nil, fmt.Errorf("basket mining cancelled: %w", ctx.Err())
		}

		members := make([]int, 0, len(basket))
		for pid := range basket {
			if _, ok := frequent[pid]; ok {
				members = append(members, pid)
			}
		}
		sort.Ints(members)

		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				pairCounts[pair{members[i], members[j]}]++
			}
		}
	}

	var rules []models.BasketRule
	addRule := func(antecedent, consequent, pairCount int) {
		confidence := float64(pairCount) / float64(itemCounts[antecedent])
		consequentSupport := float64(itemCounts[consequent]) / float64(numOrders)
		lift := confidence / consequentSupport
		if lift <= 1 {
			return
		}

		rules = append(rules, models.BasketRule{
			AntecedentID:   antecedent,
			AntecedentName: names[antecedent],
			ConsequentID:   consequent,
			ConsequentName: names[consequent],
			Probability:    int(confidence * 100),
		})
	}

	for p, count := range pairCounts {
		if float64(count) < minCount {
			continue
		}
		addRule(p.a, p.b, count)
		addRule(p.b, p.a, count)
	}

	sort.Slice(rules, func(i, j int) bool {
		if rules[i].Probability != rules[j].Probability {
			return rules[i].Probability > rules[j].Probability
		}
		if rules[i].AntecedentID != rules[j].AntecedentID {
			return rules[i].AntecedentID < rules[j].AntecedentID
		}
		return rules[i].ConsequentID < rules[j].ConsequentID
	})

	if len(rules) > cfg.MaxRules {
		rules = rules[:cfg.MaxRules]
	}
	return rules, nil
}
