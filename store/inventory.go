package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	models "online-store/model"
)

// lookupProduct reads one product. ok is false when the id is absent.
func lookupProduct(ctx context.Context, q querier, id int64) (models.Product, bool, error) {
	var r ProductRow
	err := q.QueryRowContext(ctx, getProductSQL, id).Scan(r.dest()...)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, false, nil
	}
	if err != nil {
		return models.Product{}, false, fmt.Errorf("get product %d: %w", id, err)
	}
	return r.Product(), true, nil
}

// txCatalog serves cart assembly lookups from inside the cart write
// transaction. Rows are read without FOR UPDATE: the stock check is
// advisory and nothing is reserved.
type txCatalog struct {
	q querier
}

func (c txCatalog) Product(ctx context.Context, id int64) (models.Product, bool, error) {
	return lookupProduct(ctx, c.q, id)
}
