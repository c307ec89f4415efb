package service

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	models "online-store/model"
)

// ---- fakeStore implementing store.Store for tests ----
type fakeStore struct {
	ListProductsFn  func(skip, limit int) ([]models.Product, int, error)
	GetProductFn    func(id int64) (models.Product, error)
	CreateProductFn func(p models.Product) (models.Product, error)
	UpdateProductFn func(id int64, patch models.ProductPatch) (models.Product, error)
	DeleteProductFn func(id int64) error
	ListCartsFn     func(skip, limit int) ([]models.Cart, int, error)
	GetCartFn       func(id int64) (models.Cart, error)
	CreateCartFn    func(items []models.ItemRequest) (models.Cart, error)
	UpdateCartFn    func(id int64, items []models.ItemRequest, status *models.CartStatus) (models.Cart, error)
	DeleteCartFn    func(id int64) error
}

func (f *fakeStore) ListProducts(ctx context.Context, skip, limit int) ([]models.Product, int, error) {
	return f.ListProductsFn(skip, limit)
}
func (f *fakeStore) GetProduct(ctx context.Context, id int64) (models.Product, error) {
	return f.GetProductFn(id)
}
func (f *fakeStore) CreateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	return f.CreateProductFn(p)
}
func (f *fakeStore) UpdateProduct(ctx context.Context, id int64, patch models.ProductPatch) (models.Product, error) {
	return f.UpdateProductFn(id, patch)
}
func (f *fakeStore) DeleteProduct(ctx context.Context, id int64) error { return f.DeleteProductFn(id) }
func (f *fakeStore) ListCarts(ctx context.Context, skip, limit int) ([]models.Cart, int, error) {
	return f.ListCartsFn(skip, limit)
}
func (f *fakeStore) GetCart(ctx context.Context, id int64) (models.Cart, error) { return f.GetCartFn(id) }
func (f *fakeStore) CreateCart(ctx context.Context, items []models.ItemRequest) (models.Cart, error) {
	return f.CreateCartFn(items)
}
func (f *fakeStore) UpdateCart(ctx context.Context, id int64, items []models.ItemRequest, status *models.CartStatus) (models.Cart, error) {
	return f.UpdateCartFn(id, items, status)
}
func (f *fakeStore) DeleteCart(ctx context.Context, id int64) error { return f.DeleteCartFn(id) }
func (f *fakeStore) Close() error                                   { return nil }

func ptr[T any](v T) *T { return &v }

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	return ve.Fields
}

// ---- Tests ----

func TestCreateProductValidationAndForwarding(t *testing.T) {
	var got models.Product
	svc := NewService(&fakeStore{
		CreateProductFn: func(p models.Product) (models.Product, error) {
			got = p
			p.ID = 123
			return p, nil
		},
	})
	ctx := context.Background()

	cases := []struct {
		name  string
		req   CreateProductRequest
		field string
	}{
		{"empty name", CreateProductRequest{Name: "", Price: ptr(1.0), Stock: ptr(1)}, "nombre"},
		{"long name", CreateProductRequest{Name: strings.Repeat("x", 256), Price: ptr(1.0), Stock: ptr(1)}, "nombre"},
		{"zero price", CreateProductRequest{Name: "n", Price: ptr(0.0), Stock: ptr(1)}, "precio"},
		{"missing price", CreateProductRequest{Name: "n", Stock: ptr(1)}, "precio"},
		{"negative stock", CreateProductRequest{Name: "n", Price: ptr(1.0), Stock: ptr(-1)}, "stock"},
		{"missing stock", CreateProductRequest{Name: "n", Price: ptr(1.0)}, "stock"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateProduct(ctx, tc.req)
			if _, ok := fieldsOf(t, err)[tc.field]; !ok {
				t.Fatalf("expected error on %q, got %v", tc.field, err)
			}
		})
	}

	// zero stock is a valid value, not a missing one
	p, err := svc.CreateProduct(ctx, CreateProductRequest{Name: "Widget", Price: ptr(10.0), Stock: ptr(0), Category: ptr("Tools")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID != 123 {
		t.Fatalf("expected id 123, got %d", p.ID)
	}
	if got.Name != "Widget" || got.Price != 10 || got.Stock != 0 || *got.Category != "Tools" {
		t.Fatalf("store received %+v", got)
	}
}

func TestUpdateProductPatchValidation(t *testing.T) {
	called := false
	svc := NewService(&fakeStore{
		UpdateProductFn: func(id int64, patch models.ProductPatch) (models.Product, error) {
			called = true
			return models.Product{ID: id}, nil
		},
	})
	ctx := context.Background()

	bad := []models.ProductPatch{
		{Name: ptr("")},
		{Price: ptr(0.0)},
		{Price: ptr(-3.0)},
		{Stock: ptr(-1)},
	}
	for _, patch := range bad {
		if _, err := svc.UpdateProduct(ctx, 1, patch); err == nil {
			t.Fatalf("expected validation error for %+v", patch)
		}
	}
	if called {
		t.Fatalf("store must not be called for invalid patches")
	}

	if _, err := svc.UpdateProduct(ctx, 1, models.ProductPatch{Stock: ptr(0)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatalf("expected store.UpdateProduct to be called")
	}
}

func TestListPagination(t *testing.T) {
	var gotSkip, gotLimit int
	svc := NewService(&fakeStore{
		ListProductsFn: func(skip, limit int) ([]models.Product, int, error) {
			gotSkip, gotLimit = skip, limit
			return []models.Product{{ID: 1}}, 1, nil
		},
	})
	ctx := context.Background()

	if _, _, err := svc.ListProducts(ctx, Page{Skip: -1, Limit: 10}); err == nil {
		t.Fatalf("expected error for negative skip")
	}
	if _, _, err := svc.ListProducts(ctx, Page{Skip: 0, Limit: 5000}); err == nil {
		t.Fatalf("expected error for oversized limit")
	}

	out, total, err := svc.ListProducts(ctx, DefaultPage())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotSkip != 0 || gotLimit != DefaultLimit || total != 1 || len(out) != 1 {
		t.Fatalf("unexpected forwarding: skip=%d limit=%d total=%d", gotSkip, gotLimit, total)
	}
}

func TestCreateCartValidationAndForwarding(t *testing.T) {
	var got []models.ItemRequest
	svc := NewService(&fakeStore{
		CreateCartFn: func(items []models.ItemRequest) (models.Cart, error) {
			got = items
			return models.Cart{ID: 1, Status: models.CartActive}, nil
		},
	})
	ctx := context.Background()

	_, err := svc.CreateCart(ctx, CreateCartRequest{Items: []models.ItemRequest{{ProductID: 1, Quantity: 1}, {ProductID: 2, Quantity: 0}}})
	fields := fieldsOf(t, err)
	if _, ok := fields["items[1].cantidad"]; !ok {
		t.Fatalf("expected error on items[1].cantidad, got %v", fields)
	}

	_, err = svc.CreateCart(ctx, CreateCartRequest{Items: []models.ItemRequest{{ProductID: 0, Quantity: 1}}})
	if _, ok := fieldsOf(t, err)["items[0].producto_id"]; !ok {
		t.Fatalf("expected error on items[0].producto_id, got %v", err)
	}

	want := []models.ItemRequest{{ProductID: 1, Quantity: 3}}
	if _, err := svc.CreateCart(ctx, CreateCartRequest{Items: want}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("store received %+v", got)
	}
}

func TestUpdateCartStatusValidation(t *testing.T) {
	var gotStatus *models.CartStatus
	svc := NewService(&fakeStore{
		UpdateCartFn: func(id int64, items []models.ItemRequest, status *models.CartStatus) (models.Cart, error) {
			gotStatus = status
			return models.Cart{ID: id}, nil
		},
	})
	ctx := context.Background()

	bad := models.CartStatus("activo")
	if _, err := svc.UpdateCart(ctx, 1, UpdateCartRequest{Status: &bad}); err == nil {
		t.Fatalf("expected error for unknown status")
	}

	good := models.CartCancelled
	if _, err := svc.UpdateCart(ctx, 1, UpdateCartRequest{Status: &good}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotStatus == nil || *gotStatus != models.CartCancelled {
		t.Fatalf("status not forwarded: %v", gotStatus)
	}

	if _, err := svc.UpdateCart(ctx, 1, UpdateCartRequest{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotStatus != nil {
		t.Fatalf("absent status must be forwarded as nil")
	}
}

func TestStoreErrorsPassThrough(t *testing.T) {
	boom := errors.New("boom")
	svc := NewService(&fakeStore{
		GetCartFn:    func(id int64) (models.Cart, error) { return models.Cart{}, boom },
		DeleteCartFn: func(id int64) error { return boom },
	})
	if _, err := svc.GetCart(context.Background(), 1); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if err := svc.DeleteCart(context.Background(), 1); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"stock": "must be greater than or equal to 0", "nombre": "is required"}}
	want := "validation failed: nombre: is required; stock: must be greater than or equal to 0"
	if err.Error() != want {
		t.Fatalf("got %q", err.Error())
	}
}
