package models

import "time"

// Product is a catalog entry. Optional columns are pointers so they
// serialize as null when unset.
type Product struct {
	ID          int64      `json:"id"`
	Name        string     `json:"nombre"`
	Description *string    `json:"descripcion"`
	Price       float64    `json:"precio"`
	Stock       int        `json:"stock"`
	ImageURL    *string    `json:"imagen_url"`
	Category    *string    `json:"categoria"`
	CreatedAt   time.Time  `json:"fecha_creacion"`
	UpdatedAt   *time.Time `json:"fecha_actualizacion"`
}

// ProductPatch holds the fields of a partial product update. A nil field
// leaves the stored value untouched.
type ProductPatch struct {
	Name        *string  `json:"nombre" validate:"omitempty,min=1,max=255"`
	Description *string  `json:"descripcion"`
	Price       *float64 `json:"precio" validate:"omitempty,gt=0"`
	Stock       *int     `json:"stock" validate:"omitempty,gte=0"`
	ImageURL    *string  `json:"imagen_url" validate:"omitempty,max=500"`
	Category    *string  `json:"categoria" validate:"omitempty,max=100"`
}

// Apply merges the set fields of the patch into p.
func (pp ProductPatch) Apply(p *Product) {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Description != nil {
		p.Description = pp.Description
	}
	if pp.Price != nil {
		p.Price = *pp.Price
	}
	if pp.Stock != nil {
		p.Stock = *pp.Stock
	}
	if pp.ImageURL != nil {
		p.ImageURL = pp.ImageURL
	}
	if pp.Category != nil {
		p.Category = pp.Category
	}
}

// Empty reports whether the patch sets no field at all.
func (pp ProductPatch) Empty() bool {
	return pp.Name == nil && pp.Description == nil && pp.Price == nil &&
		pp.Stock == nil && pp.ImageURL == nil && pp.Category == nil
}
