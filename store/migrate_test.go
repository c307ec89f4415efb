package store

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	models "online-store/model"
)

func TestParseMigrateMode(t *testing.T) {
	for _, s := range []string{"create", "drop", "reset"} {
		if _, err := ParseMigrateMode(s); err != nil {
			t.Fatalf("%q: unexpected error %v", s, err)
		}
	}
	if _, err := ParseMigrateMode("upgrade"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestMigrate_Reset(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(q(dropSchemaSQL)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(q(createSchemaSQL)).WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.Migrate(context.Background(), MigrateReset); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMigrate_CreateOnly(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(q(createSchemaSQL)).WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.Migrate(context.Background(), MigrateCreate); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSeedProducts(t *testing.T) {
	s, mock := newMockStore(t)
	cat := "Audio"
	products := []models.Product{
		{Name: "Headphones", Price: 399.99, Stock: 40, Category: &cat},
		{Name: "Mouse", Price: 79.99, Stock: 50},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(q(countProductsSQL)).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(q(insertProductSQL)).WithArgs("Headphones", nil, 399.99, 40, nil, "Audio").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(q(insertProductSQL)).WithArgs("Mouse", nil, 79.99, 50, nil, nil).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	n, err := s.SeedProducts(context.Background(), products)
	if err != nil {
		t.Fatalf("SeedProducts failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 inserted, got %d", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSeedProducts_SkipsNonEmptyCatalog(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(q(countProductsSQL)).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(8))
	mock.ExpectCommit()

	n, err := s.SeedProducts(context.Background(), []models.Product{{Name: "x", Price: 1}})
	if err != nil || n != 0 {
		t.Fatalf("expected skip, got n=%d err=%v", n, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
