package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecipeLineInput material y cantidad por unidad de producto. Unit vacío = unidad del material.
type RecipeLineInput struct {
	MaterialID string          `json:"material_id" validate:"required,uuid"`
	Quantity   decimal.Decimal `json:"quantity" validate:"positive"`
	Unit       string          `json:"unit" validate:"max=20"`
}

// CreateRecipeRequest body para POST /api/recipes.
type CreateRecipeRequest struct {
	ProductID string            `json:"product_id" validate:"required,uuid"`
	Name      string            `json:"name" validate:"required,min=1,max=200"`
	Lines     []RecipeLineInput `json:"lines" validate:"dive"`
}

// UpdateRecipeRequest body para PUT /api/recipes/:id. Lines presente reemplaza todas las líneas.
type UpdateRecipeRequest struct {
	Name  *string            `json:"name" validate:"omitempty,min=1,max=200"`
	Lines *[]RecipeLineInput `json:"lines" validate:"omitempty,dive"`
}

// RecipeLineResponse línea de receta.
type RecipeLineResponse struct {
	ID         string          `json:"id"`
	MaterialID string          `json:"material_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	Unit       string          `json:"unit"`
}

// RecipeResponse receta con líneas.
type RecipeResponse struct {
	ID        string               `json:"id"`
	ProductID string               `json:"product_id"`
	Name      string               `json:"name"`
	Lines     []RecipeLineResponse `json:"lines"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// RecipeListResponse lista paginada de recetas.
type RecipeListResponse struct {
	Items []RecipeResponse `json:"items"`
	Page  PageResponse     `json:"page"`
}
