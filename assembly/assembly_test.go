package assembly

import (
	"context"
	"errors"
	"testing"

	models "online-store/model"
)

type mapCatalog struct {
	products map[int64]models.Product
	err      error
	lookups  []int64
}

func (m *mapCatalog) Product(ctx context.Context, id int64) (models.Product, bool, error) {
	m.lookups = append(m.lookups, id)
	if m.err != nil {
		return models.Product{}, false, m.err
	}
	p, ok := m.products[id]
	return p, ok, nil
}

func newCatalog() *mapCatalog {
	return &mapCatalog{products: map[int64]models.Product{
		1: {ID: 1, Name: "Widget", Price: 10.0, Stock: 5},
		2: {ID: 2, Name: "Gizmo", Price: 2.5, Stock: 100},
		3: {ID: 3, Name: "Empty", Price: 7.0, Stock: 0},
	}}
}

func TestAssemble_WidgetExample(t *testing.T) {
	res, err := Assemble(context.Background(), newCatalog(), []models.ItemRequest{{ProductID: 1, Quantity: 3}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 30.0 {
		t.Fatalf("expected total 30, got %v", res.Total)
	}
	if len(res.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(res.Items))
	}
	it := res.Items[0]
	if it.Subtotal != 30.0 || it.UnitPrice != 10.0 || it.Quantity != 3 || it.Product.Name != "Widget" {
		t.Fatalf("unexpected item: %+v", it)
	}
}

func TestAssemble_InsufficientStock(t *testing.T) {
	_, err := Assemble(context.Background(), newCatalog(), []models.ItemRequest{{ProductID: 1, Quantity: 6}})
	var ise *InsufficientStockError
	if !errors.As(err, &ise) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if ise.ProductID != 1 || ise.Available != 5 || ise.Requested != 6 {
		t.Fatalf("unexpected error fields: %+v", ise)
	}
}

func TestAssemble_StockEqualToQuantityIsAccepted(t *testing.T) {
	if _, err := Assemble(context.Background(), newCatalog(), []models.ItemRequest{{ProductID: 1, Quantity: 5}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAssemble_FirstFailureReported(t *testing.T) {
	cat := newCatalog()
	reqs := []models.ItemRequest{
		{ProductID: 2, Quantity: 1},
		{ProductID: 99, Quantity: 1},
		{ProductID: 3, Quantity: 1},
	}
	_, err := Assemble(context.Background(), cat, reqs)
	var nf *ProductNotFoundError
	if !errors.As(err, &nf) || nf.ProductID != 99 {
		t.Fatalf("expected ProductNotFoundError for 99, got %v", err)
	}
	if len(cat.lookups) != 2 {
		t.Fatalf("assembly should stop at the first failure, looked up %v", cat.lookups)
	}
}

func TestAssemble_TotalIsSumOfSubtotals(t *testing.T) {
	reqs := []models.ItemRequest{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 7},
		{ProductID: 1, Quantity: 1},
	}
	res, err := Assemble(context.Background(), newCatalog(), reqs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var sum float64
	for i, it := range res.Items {
		if it.Subtotal != it.UnitPrice*float64(it.Quantity) {
			t.Fatalf("item %d subtotal mismatch: %+v", i, it)
		}
		if it.ProductID != reqs[i].ProductID || it.Quantity != reqs[i].Quantity {
			t.Fatalf("item %d does not follow request order: %+v", i, it)
		}
		sum += it.Subtotal
	}
	if res.Total != sum {
		t.Fatalf("total %v != sum of subtotals %v", res.Total, sum)
	}
}

func TestAssemble_Empty(t *testing.T) {
	res, err := Assemble(context.Background(), newCatalog(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 0 || len(res.Items) != 0 {
		t.Fatalf("expected empty result, got %+v", res)
	}
}

func TestAssemble_LookupError(t *testing.T) {
	boom := errors.New("connection reset")
	cat := &mapCatalog{err: boom}
	_, err := Assemble(context.Background(), cat, []models.ItemRequest{{ProductID: 1, Quantity: 1}})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped lookup error, got %v", err)
	}
}
