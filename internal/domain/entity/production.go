package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductionEvent historial de una producción aplicada.
type ProductionEvent struct {
	ID            string
	ProductID     string
	RecipeID      string
	Quantity      decimal.Decimal
	MaterialsCost decimal.Decimal // Σ requerido × precio del material al producir
	Note          string
	CreatedBy     string
	CreatedAt     time.Time
	Lines         []*ProductionLine
}

// ProductionLine material consumido por una producción.
type ProductionLine struct {
	ID           string
	ProductionID string
	MaterialID   string
	Quantity     decimal.Decimal
	UnitPrice    decimal.Decimal
}
