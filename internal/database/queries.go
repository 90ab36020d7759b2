// Shelfline - Retail Catalog Recommendations and Stock Forecasting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfline

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/shelfline/internal/logging"
	"github.com/tomtom215/shelfline/internal/metrics"
	"github.com/tomtom215/shelfline/internal/models"
)

// ListProducts returns the full catalog ordered by product ID.
func (db *DB) ListProducts(ctx context.Context) ([]models.Product, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("list_products", time.Since(start)) }()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, category, price, stock FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer closeRows(rows)

	var products []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.Stock); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("product rows iteration failed: %w", err)
	}

	return products, nil
}

// GetProduct returns a single product by ID.
// Returns models.ErrNotFound when the product does not exist.
func (db *DB) GetProduct(ctx context.Context, id int) (*models.Product, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("get_product", time.Since(start)) }()

	var p models.Product
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, category, price, stock FROM products WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.Stock)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query product %d: %w", id, err)
	}

	return &p, nil
}

// ListTransactions returns every order line ordered by date, then order ID.
// The stable ordering keeps training deterministic for a given dataset.
func (db *DB) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("list_transactions", time.Since(start)) }()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT order_id, customer_id, product_id, quantity, rating, date
		 FROM transactions ORDER BY date, order_id, product_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer closeRows(rows)

	var txns []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.OrderID, &t.CustomerID, &t.ProductID, &t.Quantity, &t.Rating, &t.Date); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("transaction rows iteration failed: %w", err)
	}

	return txns, nil
}

// CountTransactions returns the number of order lines.
func (db *DB) CountTransactions(ctx context.Context) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

// CountOrders returns the number of distinct orders.
func (db *DB) CountOrders(ctx context.Context) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(DISTINCT order_id) FROM transactions`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}

// InsertProducts inserts catalog entries in a single transaction.
func (db *DB) InsertProducts(ctx context.Context, products []models.Product) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO products (id, name, category, price, stock) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare product insert: %w", err)
		}
		defer closeStmt(stmt)

		for _, p := range products {
			if _, err := stmt.ExecContext(ctx, p.ID, p.Name, p.Category, p.Price, p.Stock); err != nil {
				return fmt.Errorf("failed to insert product %d: %w", p.ID, err)
			}
		}
		return nil
	})
}

// InsertTransactions inserts order lines in a single transaction.
func (db *DB) InsertTransactions(ctx context.Context, txns []models.Transaction) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO transactions (order_id, customer_id, product_id, quantity, rating, date)
			 VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare transaction insert: %w", err)
		}
		defer closeStmt(stmt)

		for _, t := range txns {
			if _, err := stmt.ExecContext(ctx, t.OrderID, t.CustomerID, t.ProductID, t.Quantity, t.Rating, t.Date); err != nil {
				return fmt.Errorf("failed to insert order line %s/%d: %w", t.OrderID, t.ProductID, err)
			}
		}
		return nil
	})
}

// withTx runs fn inside a transaction, committing on success and rolling
// back on error.
func (db *DB) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		logging.Warn().Err(err).Msg("Failed to close result rows")
	}
}

func closeStmt(stmt *sql.Stmt) {
	_ = stmt.Close()
}
