package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
)

var _ repository.ProductionRepository = (*ProductionRepo)(nil)

// ProductionRepo historial de producciones (usable con pool o tx).
type ProductionRepo struct {
	q Querier
}

// NewProductionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductionRepository(q Querier) *ProductionRepo {
	return &ProductionRepo{q: q}
}

// Create persiste el evento y sus líneas de consumo en un batch.
func (r *ProductionRepo) Create(ctx context.Context, ev *entity.ProductionEvent) error {
	b := &pgx.Batch{}
	b.Queue(`
		INSERT INTO production_events (id, product_id, recipe_id, quantity, materials_cost, note, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		ev.ID, ev.ProductID, ev.RecipeID, ev.Quantity, ev.MaterialsCost, ev.Note, ev.CreatedBy, ev.CreatedAt)
	for _, ln := range ev.Lines {
		b.Queue(`
			INSERT INTO production_lines (id, production_id, material_id, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5)`,
			ln.ID, ev.ID, ln.MaterialID, ln.Quantity, ln.UnitPrice)
	}
	return execBatch(ctx, r.q, b, "insert production")
}

// List eventos más recientes primero; productID vacío lista todos.
func (r *ProductionRepo) List(ctx context.Context, productID string, limit, offset int) ([]*entity.ProductionEvent, error) {
	query := `
		SELECT id, product_id, recipe_id, quantity, materials_cost, note, created_by, created_at
		FROM production_events
		WHERE ($1 = '' OR product_id::text = $1)
		ORDER BY created_at DESC, id LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, productID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list productions: %w", err)
	}
	defer rows.Close()
	var list []*entity.ProductionEvent
	byID := map[string]*entity.ProductionEvent{}
	var ids []string
	for rows.Next() {
		var ev entity.ProductionEvent
		if err := rows.Scan(&ev.ID, &ev.ProductID, &ev.RecipeID, &ev.Quantity, &ev.MaterialsCost,
			&ev.Note, &ev.CreatedBy, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan production: %w", err)
		}
		list = append(list, &ev)
		byID[ev.ID] = &ev
		ids = append(ids, ev.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return list, nil
	}

	lineRows, err := r.q.Query(ctx, `
		SELECT id, production_id, material_id, quantity, unit_price
		FROM production_lines WHERE production_id::text = ANY($1)
		ORDER BY production_id, material_id`, ids)
	if err != nil {
		return nil, fmt.Errorf("list production lines: %w", err)
	}
	defer lineRows.Close()
	for lineRows.Next() {
		var ln entity.ProductionLine
		if err := lineRows.Scan(&ln.ID, &ln.ProductionID, &ln.MaterialID, &ln.Quantity, &ln.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan production line: %w", err)
		}
		if ev := byID[ln.ProductionID]; ev != nil {
			ev.Lines = append(ev.Lines, &ln)
		}
	}
	return list, lineRows.Err()
}
