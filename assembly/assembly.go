// Package assembly turns a requested list of cart lines into priced cart
// items and a total, validating product existence and stock.
package assembly

import (
	"context"
	"fmt"

	models "online-store/model"
)

// Catalog looks up products. ok is false when the id does not exist.
type Catalog interface {
	Product(ctx context.Context, id int64) (p models.Product, ok bool, err error)
}

// ProductNotFoundError is returned when a requested product id is absent.
type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

// InsufficientStockError is returned when a requested quantity exceeds the
// product's current stock.
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d (%s): requested %d, available %d",
		e.ProductID, e.ProductName, e.Requested, e.Available)
}

// Result is the assembled item set. Items carry no ids yet.
type Result struct {
	Items []models.CartItem
	Total float64
}

// Assemble validates and prices reqs in input order. The first failing
// line aborts the whole assembly. Stock is only checked, never reserved.
func Assemble(ctx context.Context, catalog Catalog, reqs []models.ItemRequest) (Result, error) {
	res := Result{Items: make([]models.CartItem, 0, len(reqs))}
	for _, req := range reqs {
		p, ok, err := catalog.Product(ctx, req.ProductID)
		if err != nil {
			return Result{}, fmt.Errorf("lookup product %d: %w", req.ProductID, err)
		}
		if !ok {
			return Result{}, &ProductNotFoundError{ProductID: req.ProductID}
		}
		if p.Stock < req.Quantity {
			return Result{}, &InsufficientStockError{
				ProductID:   p.ID,
				ProductName: p.Name,
				Requested:   req.Quantity,
				Available:   p.Stock,
			}
		}

		subtotal := p.Price * float64(req.Quantity)
		res.Items = append(res.Items, models.CartItem{
			ProductID: p.ID,
			Quantity:  req.Quantity,
			UnitPrice: p.Price,
			Subtotal:  subtotal,
			Product:   p,
		})
		res.Total += subtotal
	}
	return res, nil
}
