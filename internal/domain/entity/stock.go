package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de ítem con stock.
const (
	StockKindMaterial = "material"
	StockKindProduct  = "product"
)

// Stock es la vista de una fila bloqueada (material o producto) durante una operación del libro de stock.
type Stock struct {
	ItemID    string
	Kind      string
	Name      string
	Unit      string
	UnitPrice decimal.Decimal // precio del material o precio de venta del producto
	Quantity  decimal.Decimal
	UpdatedAt time.Time
}
