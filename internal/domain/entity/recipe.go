package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Recipe (fórmula) de un producto: materiales necesarios por unidad producida.
type Recipe struct {
	ID        string
	ProductID string
	Name      string
	Lines     []RecipeLine // ordenadas por Position
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RecipeLine cantidad de un material requerida por unidad de producto.
type RecipeLine struct {
	ID         string
	RecipeID   string
	MaterialID string
	Quantity   decimal.Decimal
	Unit       string // copia de la unidad del material, solo para mostrar
	Position   int
}

// Usable indica si la receta puede usarse para producir (al menos una línea).
func (r *Recipe) Usable() bool {
	return r != nil && len(r.Lines) > 0
}
