package main

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// catalogStore holds the demo products in an in-memory SQLite database.
type catalogStore struct {
	sqlDB *sql.DB
}

var seedProducts = []product{
	{Name: "Espresso cup", Price: 1200},
	{Name: "Pour-over kettle", Price: 4500},
	{Name: "Burr grinder", Price: 13900},
}

// openCatalogStore opens the database and seeds it.
func openCatalogStore(ctx context.Context) (*catalogStore, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if _, err := sqlDB.ExecContext(ctx, `CREATE TABLE products (
		position INTEGER PRIMARY KEY,
		name     TEXT NOT NULL,
		price    INTEGER NOT NULL
	)`); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create products: %w", err)
	}
	for i, p := range seedProducts {
		if _, err := sqlDB.ExecContext(ctx,
			`INSERT INTO products (position, name, price) VALUES (?, ?, ?)`, i, p.Name, p.Price); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("seed products: %w", err)
		}
	}
	return &catalogStore{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *catalogStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Products returns every product in catalog order.
func (s *catalogStore) Products(ctx context.Context) ([]product, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT name, price FROM products ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var out []product
	for rows.Next() {
		var p product
		if err := rows.Scan(&p.Name, &p.Price); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
