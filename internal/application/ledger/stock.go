package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/inventory"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// lockAll bloquea las filas en el orden recibido (ordenado por ID) y devuelve su stock.
func lockAll(ctx context.Context, repo repository.StockRepository, resource string, ids []string) (map[string]*entity.Stock, error) {
	levels := make(map[string]*entity.Stock, len(ids))
	for _, id := range ids {
		s, err := repo.LockForUpdate(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("lock %s %s: %w", resource, id, err)
		}
		if s == nil {
			return nil, domain.NewNotFoundError(resource, id)
		}
		levels[id] = s
	}
	return levels, nil
}

// prepare bloquea y verifica un cambio de stock sin escribir nada (primera fase).
func prepare(ctx context.Context, repo repository.StockRepository, resource string, change inventory.StockChange) (map[string]*entity.Stock, error) {
	levels, err := lockAll(ctx, repo, resource, change.LockOrder())
	if err != nil {
		return nil, err
	}
	if short := change.Shortages(levels); len(short) > 0 {
		return nil, &domain.InsufficientStockError{Shortages: short}
	}
	return levels, nil
}

// commit aplica la variación neta de un cambio ya preparado (segunda fase).
// La actualización es condicional (stock + delta >= 0): si no afecta filas se reporta como faltante.
func commit(ctx context.Context, repo repository.StockRepository, resource string, change inventory.StockChange, levels map[string]*entity.Stock, at time.Time) error {
	for _, d := range change.Net() {
		ok, err := repo.ApplyDelta(ctx, d.ItemID, d.Amount, at)
		if err != nil {
			return fmt.Errorf("apply %s %s: %w", resource, d.ItemID, err)
		}
		if !ok {
			return rejectedDelta(ctx, repo, resource, d, levels[d.ItemID])
		}
	}
	return nil
}

// rejectedDelta explica una escritura condicional que no afectó filas.
// Se relee la fila para reportar el stock vigente; si aun así parece alcanzar, la escritura
// no pudo reservar nada y el disponible se informa como 0. Faltan siempre > 0.
func rejectedDelta(ctx context.Context, repo repository.StockRepository, resource string, d inventory.Delta, lvl *entity.Stock) error {
	if !d.Amount.IsNegative() {
		// Un incremento solo falla si la fila ya no existe.
		return domain.NewNotFoundError(resource, d.ItemID)
	}
	current, err := repo.LockForUpdate(ctx, d.ItemID)
	if err != nil {
		return fmt.Errorf("reread %s %s: %w", resource, d.ItemID, err)
	}
	if current == nil {
		return domain.NewNotFoundError(resource, d.ItemID)
	}
	s := domain.Shortage{
		ItemID:    d.ItemID,
		ItemName:  current.Name,
		Unit:      current.Unit,
		Required:  d.Amount.Neg(),
		Available: current.Quantity,
	}
	if s.ItemName == "" && lvl != nil {
		s.ItemName, s.Unit = lvl.Name, lvl.Unit
	}
	if !s.Available.LessThan(s.Required) {
		s.Available = decimal.Zero
	}
	return &domain.InsufficientStockError{Shortages: []domain.Shortage{s}}
}

// applyChange prepara y aplica un cambio sobre un solo tipo de ítem.
func applyChange(ctx context.Context, repo repository.StockRepository, resource string, change inventory.StockChange, at time.Time) (map[string]*entity.Stock, error) {
	levels, err := prepare(ctx, repo, resource, change)
	if err != nil {
		return nil, err
	}
	if err := commit(ctx, repo, resource, change, levels, at); err != nil {
		return nil, err
	}
	return levels, nil
}

// nextCode reserva el siguiente código <prefix><AAAAMMDD><NNN> dentro de la transacción.
func (l *StockLedger) nextCode(ctx context.Context, seq repository.SequenceRepository, prefix string, at time.Time) (string, error) {
	day := inventory.BusinessDay(at, l.loc)
	n, err := seq.Next(ctx, prefix, day)
	if err != nil {
		return "", fmt.Errorf("next sequence %s: %w", prefix, err)
	}
	return inventory.DocumentCode(prefix, day, n), nil
}
