package store

import (
	"context"

	models "online-store/model"
)

// GET    /productos       - list products
// GET    /productos/{id}  - product detail
// POST   /productos       - create product
// PUT    /productos/{id}  - partial product update
// DELETE /productos/{id}  - delete product
// The same five operations exist for /carrito.

type Store interface {
	ListProducts(ctx context.Context, skip, limit int) ([]models.Product, int, error)
	GetProduct(ctx context.Context, id int64) (models.Product, error)
	CreateProduct(ctx context.Context, p models.Product) (models.Product, error)
	UpdateProduct(ctx context.Context, id int64, patch models.ProductPatch) (models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error

	ListCarts(ctx context.Context, skip, limit int) ([]models.Cart, int, error)
	GetCart(ctx context.Context, id int64) (models.Cart, error)
	CreateCart(ctx context.Context, items []models.ItemRequest) (models.Cart, error)
	UpdateCart(ctx context.Context, id int64, items []models.ItemRequest, status *models.CartStatus) (models.Cart, error)
	DeleteCart(ctx context.Context, id int64) error

	Close() error
}
