package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// stockTable tabla y columna de precio según el tipo de ítem.
type stockTable struct {
	name  string
	price string
}

var stockTables = map[string]stockTable{
	entity.StockKindMaterial: {name: "materials", price: "unit_price"},
	entity.StockKindProduct:  {name: "products", price: "price"},
}

// StockRepo escritura de stock sobre materials o products. Solo lo construye el TxRunner.
type StockRepo struct {
	q     Querier
	kind  string
	table stockTable
}

// NewStockRepository construye el adaptador de stock para kind (material | product) sobre una tx.
func NewStockRepository(q Querier, kind string) *StockRepo {
	t, ok := stockTables[kind]
	if !ok {
		panic(fmt.Sprintf("postgres: tipo de stock desconocido %q", kind))
	}
	return &StockRepo{q: q, kind: kind, table: t}
}

// LockForUpdate obtiene el stock y bloquea la fila (SELECT FOR UPDATE). nil si no existe.
func (r *StockRepo) LockForUpdate(ctx context.Context, itemID string) (*entity.Stock, error) {
	query := fmt.Sprintf(`
		SELECT id, name, unit, %s, stock, updated_at
		FROM %s WHERE id = $1
		FOR UPDATE`, r.table.price, r.table.name)
	s := entity.Stock{Kind: r.kind}
	err := r.q.QueryRow(ctx, query, itemID).Scan(&s.ItemID, &s.Name, &s.Unit, &s.UnitPrice, &s.Quantity, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock %s: %w", r.table.name, err)
	}
	return &s, nil
}

// ApplyDelta suma delta solo si el stock resultante no queda negativo (UPDATE condicional).
func (r *StockRepo) ApplyDelta(ctx context.Context, itemID string, delta decimal.Decimal, at time.Time) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET stock = stock + $2, updated_at = $3
		WHERE id = $1 AND stock + $2 >= 0`, r.table.name)
	tag, err := r.q.Exec(ctx, query, itemID, delta, at)
	if err != nil {
		return false, fmt.Errorf("apply delta %s: %w", r.table.name, err)
	}
	return tag.RowsAffected() == 1, nil
}

// StockReader lectura del stock de materiales y productos para reportes.
type StockReader struct {
	q Querier
}

// NewStockReader construye el lector (pool).
func NewStockReader(q Querier) *StockReader {
	return &StockReader{q: q}
}

// StockLevels materiales y luego productos, cada grupo ordenado por nombre.
func (r *StockReader) StockLevels(ctx context.Context) ([]*entity.Stock, error) {
	query := `
		SELECT id, 'material' AS kind, name, unit, unit_price, stock, updated_at FROM materials
		UNION ALL
		SELECT id, 'product' AS kind, name, unit, price, stock, updated_at FROM products
		ORDER BY kind, name`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("stock levels: %w", err)
	}
	defer rows.Close()
	var list []*entity.Stock
	for rows.Next() {
		var s entity.Stock
		if err := rows.Scan(&s.ItemID, &s.Kind, &s.Name, &s.Unit, &s.UnitPrice, &s.Quantity, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}
