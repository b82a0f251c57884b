package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Material representa una materia prima. Stock es un total acumulado que solo modifica el libro de stock.
type Material struct {
	ID        string
	Name      string
	Unit      string          // unidad de medida (kg, l, unidad...)
	UnitPrice decimal.Decimal // precio unitario vigente; se copia en cada línea de entrada
	Stock     decimal.Decimal // nunca negativo
	CreatedAt time.Time
	UpdatedAt time.Time // última fecha en que cambió el stock o los datos
}
