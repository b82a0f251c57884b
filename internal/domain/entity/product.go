package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto terminado.
// Stock aumenta con la producción y disminuye con las salidas; no se edita por CRUD.
type Product struct {
	ID        string
	Name      string
	Unit      string
	Price     decimal.Decimal // precio de venta; se copia en cada línea de salida
	Stock     decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}
