package service

import (
	"context"

	models "online-store/model"
)

type ServiceInterface interface {
	ListProducts(ctx context.Context, page Page) ([]models.Product, int, error)
	GetProduct(ctx context.Context, id int64) (models.Product, error)
	CreateProduct(ctx context.Context, req CreateProductRequest) (models.Product, error)
	UpdateProduct(ctx context.Context, id int64, patch models.ProductPatch) (models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error

	ListCarts(ctx context.Context, page Page) ([]models.Cart, int, error)
	GetCart(ctx context.Context, id int64) (models.Cart, error)
	CreateCart(ctx context.Context, req CreateCartRequest) (models.Cart, error)
	UpdateCart(ctx context.Context, id int64, req UpdateCartRequest) (models.Cart, error)
	DeleteCart(ctx context.Context, id int64) error
}
