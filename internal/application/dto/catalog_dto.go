package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateMaterialRequest entrada para crear una materia prima. El stock inicia en 0.
type CreateMaterialRequest struct {
	Name      string          `json:"name" validate:"required,min=1,max=200"`
	Unit      string          `json:"unit" validate:"required,max=20"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"nonnegative"`
}

// UpdateMaterialRequest actualización parcial (sin stock).
type UpdateMaterialRequest struct {
	Name      *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Unit      *string          `json:"unit" validate:"omitempty,min=1,max=20"`
	UnitPrice *decimal.Decimal `json:"unit_price" validate:"omitempty,nonnegative"`
}

// MaterialResponse salida de una materia prima.
type MaterialResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Unit      string          `json:"unit"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Stock     decimal.Decimal `json:"stock"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// MaterialListResponse lista paginada de materias primas.
type MaterialListResponse struct {
	Items []MaterialResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// CreateProductRequest entrada para crear un producto terminado.
type CreateProductRequest struct {
	Name  string          `json:"name" validate:"required,min=1,max=200"`
	Unit  string          `json:"unit" validate:"required,max=20"`
	Price decimal.Decimal `json:"price" validate:"nonnegative"`
}

// UpdateProductRequest entrada para actualizar un producto (sin Stock).
type UpdateProductRequest struct {
	Name  *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Unit  *string          `json:"unit" validate:"omitempty,min=1,max=20"`
	Price *decimal.Decimal `json:"price" validate:"omitempty,nonnegative"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Unit      string          `json:"unit"`
	Price     decimal.Decimal `json:"price"`
	Stock     decimal.Decimal `json:"stock"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
