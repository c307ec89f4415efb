package models

import "time"

type CartStatus string

const (
	CartActive    CartStatus = "active"
	CartCompleted CartStatus = "completed"
	CartCancelled CartStatus = "cancelled"
)

func (s CartStatus) Valid() bool {
	switch s {
	case CartActive, CartCompleted, CartCancelled:
		return true
	}
	return false
}

// Cart is the fully materialized aggregate: the cart row, its items and
// each item's product.
type Cart struct {
	ID        int64      `json:"id"`
	CreatedAt time.Time  `json:"fecha_creacion"`
	UpdatedAt *time.Time `json:"fecha_actualizacion"`
	Total     float64    `json:"total"`
	Status    CartStatus `json:"estado"`
	Items     []CartItem `json:"items"`
}

// CartItem is one cart line. UnitPrice is the product price captured when
// the item was assembled, not a live reference.
type CartItem struct {
	ID        int64   `json:"id"`
	CartID    int64   `json:"-"`
	ProductID int64   `json:"producto_id"`
	Quantity  int     `json:"cantidad"`
	UnitPrice float64 `json:"precio_unitario"`
	Subtotal  float64 `json:"subtotal"`
	Product   Product `json:"producto"`
}

// ItemRequest is a requested cart line.
type ItemRequest struct {
	ProductID int64 `json:"producto_id" validate:"required"`
	Quantity  int   `json:"cantidad" validate:"gt=0"`
}
