package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log"

	models "online-store/model"
)

//go:embed migrations/create.sql
var createSchemaSQL string

//go:embed migrations/drop.sql
var dropSchemaSQL string

type MigrateMode string

const (
	MigrateCreate MigrateMode = "create"
	MigrateDrop   MigrateMode = "drop"
	MigrateReset  MigrateMode = "reset"
)

func ParseMigrateMode(s string) (MigrateMode, error) {
	switch m := MigrateMode(s); m {
	case MigrateCreate, MigrateDrop, MigrateReset:
		return m, nil
	}
	return "", fmt.Errorf("unknown migrate mode %q (want create, drop or reset)", s)
}

// Migrate applies the embedded schema. create is idempotent.
func (s *PostgresStore) Migrate(ctx context.Context, mode MigrateMode) error {
	if mode == MigrateDrop || mode == MigrateReset {
		if _, err := s.DB.ExecContext(ctx, dropSchemaSQL); err != nil {
			return fmt.Errorf("drop tables: %w", err)
		}
		log.Println("tables dropped: products, carts, cart_items")
	}
	if mode == MigrateCreate || mode == MigrateReset {
		if _, err := s.DB.ExecContext(ctx, createSchemaSQL); err != nil {
			return fmt.Errorf("create tables: %w", err)
		}
		log.Println("tables created: products, carts, cart_items")
	}
	return nil
}

// SeedProducts inserts products in one transaction when the catalog is
// empty and returns how many were inserted.
func (s *PostgresStore) SeedProducts(ctx context.Context, products []models.Product) (int, error) {
	inserted := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var n int
		if err := tx.QueryRowContext(ctx, countProductsSQL).Scan(&n); err != nil {
			return fmt.Errorf("count products: %w", err)
		}
		if n > 0 {
			return nil
		}
		for _, p := range products {
			_, err := tx.ExecContext(ctx, insertProductSQL,
				p.Name, p.Description, p.Price, p.Stock, p.ImageURL, p.Category)
			if err != nil {
				return fmt.Errorf("insert product %q: %w", p.Name, err)
			}
		}
		inserted = len(products)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}
