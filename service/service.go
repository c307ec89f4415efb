package service

import (
	"context"

	validatorv10 "github.com/go-playground/validator/v10"

	models "online-store/model"
	"online-store/store"
)

const DefaultLimit = 100

// Page is an offset/limit window over a list.
type Page struct {
	Skip  int `json:"skip" validate:"gte=0"`
	Limit int `json:"limit" validate:"gte=0,lte=1000"`
}

func DefaultPage() Page { return Page{Skip: 0, Limit: DefaultLimit} }

// CreateProductRequest is the body of POST /productos. Price and stock are
// pointers so an omitted field is told apart from zero.
type CreateProductRequest struct {
	Name        string   `json:"nombre" validate:"required,max=255"`
	Description *string  `json:"descripcion"`
	Price       *float64 `json:"precio" validate:"required,gt=0"`
	Stock       *int     `json:"stock" validate:"required,gte=0"`
	ImageURL    *string  `json:"imagen_url" validate:"omitempty,max=500"`
	Category    *string  `json:"categoria" validate:"omitempty,max=100"`
}

type CreateCartRequest struct {
	Items []models.ItemRequest `json:"items" validate:"dive"`
}

// UpdateCartRequest replaces the cart items wholesale. Status is optional.
type UpdateCartRequest struct {
	Items  []models.ItemRequest `json:"items" validate:"dive"`
	Status *models.CartStatus   `json:"estado" validate:"omitempty,oneof=active completed cancelled"`
}

type Service struct {
	store    store.Store
	validate *validatorv10.Validate
}

func NewService(s store.Store) *Service {
	return &Service{store: s, validate: newValidator()}
}

func (s *Service) ListProducts(ctx context.Context, page Page) ([]models.Product, int, error) {
	if err := validateStruct(s.validate, page); err != nil {
		return nil, 0, err
	}
	return s.store.ListProducts(ctx, page.Skip, page.Limit)
}

func (s *Service) GetProduct(ctx context.Context, id int64) (models.Product, error) {
	return s.store.GetProduct(ctx, id)
}

func (s *Service) CreateProduct(ctx context.Context, req CreateProductRequest) (models.Product, error) {
	if err := validateStruct(s.validate, req); err != nil {
		return models.Product{}, err
	}
	return s.store.CreateProduct(ctx, models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		Stock:       *req.Stock,
		ImageURL:    req.ImageURL,
		Category:    req.Category,
	})
}

func (s *Service) UpdateProduct(ctx context.Context, id int64, patch models.ProductPatch) (models.Product, error) {
	if err := validateStruct(s.validate, patch); err != nil {
		return models.Product{}, err
	}
	return s.store.UpdateProduct(ctx, id, patch)
}

func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	return s.store.DeleteProduct(ctx, id)
}

func (s *Service) ListCarts(ctx context.Context, page Page) ([]models.Cart, int, error) {
	if err := validateStruct(s.validate, page); err != nil {
		return nil, 0, err
	}
	return s.store.ListCarts(ctx, page.Skip, page.Limit)
}

func (s *Service) GetCart(ctx context.Context, id int64) (models.Cart, error) {
	return s.store.GetCart(ctx, id)
}

func (s *Service) CreateCart(ctx context.Context, req CreateCartRequest) (models.Cart, error) {
	if err := validateStruct(s.validate, req); err != nil {
		return models.Cart{}, err
	}
	return s.store.CreateCart(ctx, req.Items)
}

func (s *Service) UpdateCart(ctx context.Context, id int64, req UpdateCartRequest) (models.Cart, error) {
	if err := validateStruct(s.validate, req); err != nil {
		return models.Cart{}, err
	}
	return s.store.UpdateCart(ctx, id, req.Items, req.Status)
}

func (s *Service) DeleteCart(ctx context.Context, id int64) error {
	return s.store.DeleteCart(ctx, id)
}
