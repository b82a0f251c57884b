package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
)

var (
	_ repository.MaterialRepository = (*MaterialRepo)(nil)
	_ repository.ProductRepository  = (*ProductRepo)(nil)
)

// MaterialRepo implementación de MaterialRepository sobre PostgreSQL. No escribe stock.
type MaterialRepo struct {
	q Querier
}

// NewMaterialRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMaterialRepository(q Querier) *MaterialRepo {
	return &MaterialRepo{q: q}
}

// Create persiste una materia prima.
func (r *MaterialRepo) Create(ctx context.Context, m *entity.Material) error {
	query := `
		INSERT INTO materials (id, name, unit, unit_price, stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, m.ID, m.Name, m.Unit, m.UnitPrice, m.Stock, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return writeError("insert material", err)
	}
	return nil
}

// GetByID obtiene una materia prima por ID. nil si no existe.
func (r *MaterialRepo) GetByID(ctx context.Context, id string) (*entity.Material, error) {
	query := `
		SELECT id, name, unit, unit_price, stock, created_at, updated_at
		FROM materials WHERE id = $1`
	var m entity.Material
	err := r.q.QueryRow(ctx, query, id).Scan(&m.ID, &m.Name, &m.Unit, &m.UnitPrice, &m.Stock, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get material: %w", err)
	}
	return &m, nil
}

// List lista materias primas por nombre.
func (r *MaterialRepo) List(ctx context.Context, limit, offset int) ([]*entity.Material, error) {
	query := `
		SELECT id, name, unit, unit_price, stock, created_at, updated_at
		FROM materials ORDER BY name, id LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	defer rows.Close()
	var list []*entity.Material
	for rows.Next() {
		var m entity.Material
		if err := rows.Scan(&m.ID, &m.Name, &m.Unit, &m.UnitPrice, &m.Stock, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// Update modifica nombre, unidad y precio. La columna stock no se toca.
func (r *MaterialRepo) Update(ctx context.Context, m *entity.Material) error {
	query := `UPDATE materials SET name = $2, unit = $3, unit_price = $4, updated_at = $5 WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, m.ID, m.Name, m.Unit, m.UnitPrice, m.UpdatedAt)
	if err != nil {
		return writeError("update material", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina una materia prima. Las FK RESTRICT convierten una referencia en ErrConflict.
func (r *MaterialRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM materials WHERE id = $1`, id)
	if err != nil {
		return writeError("delete material", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ProductRepo implementación de ProductRepository sobre PostgreSQL. No escribe stock.
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un producto.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (id, name, unit, price, stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, p.ID, p.Name, p.Unit, p.Price, p.Stock, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return writeError("insert product", err)
	}
	return nil
}

// GetByID obtiene un producto por ID. nil si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	query := `
		SELECT id, name, unit, price, stock, created_at, updated_at
		FROM products WHERE id = $1`
	var p entity.Product
	err := r.q.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.Unit, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// List lista productos por nombre.
func (r *ProductRepo) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	query := `
		SELECT id, name, unit, price, stock, created_at, updated_at
		FROM products ORDER BY name, id LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Unit, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// Update modifica nombre, unidad y precio de venta.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	query := `UPDATE products SET name = $2, unit = $3, price = $4, updated_at = $5 WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, p.ID, p.Name, p.Unit, p.Price, p.UpdatedAt)
	if err != nil {
		return writeError("update product", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina un producto por ID.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return writeError("delete product", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
