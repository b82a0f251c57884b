package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// StockRepository puerto de escritura de stock (materiales o productos).
// Solo se obtiene dentro de una transacción del libro de stock; ningún otro componente lo recibe.
type StockRepository interface {
	// LockForUpdate bloquea la fila (SELECT FOR UPDATE) y devuelve su stock. nil si no existe.
	LockForUpdate(ctx context.Context, itemID string) (*entity.Stock, error)
	// ApplyDelta suma delta al stock solo si el resultado no queda negativo.
	// Devuelve false si la fila no existe o si el stock no alcanza.
	ApplyDelta(ctx context.Context, itemID string, delta decimal.Decimal, at time.Time) (bool, error)
}
