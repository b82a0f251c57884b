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

var _ repository.RecipeRepository = (*RecipeRepo)(nil)

// RecipeRepo implementación de RecipeRepository (usable con pool o tx).
type RecipeRepo struct {
	q Querier
}

// NewRecipeRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRecipeRepository(q Querier) *RecipeRepo {
	return &RecipeRepo{q: q}
}

// Create persiste cabecera y líneas en una sola transacción (anidada como savepoint si q ya es tx).
func (r *RecipeRepo) Create(ctx context.Context, recipe *entity.Recipe) error {
	return pgx.BeginFunc(ctx, r.q, func(tx pgx.Tx) error {
		query := `
			INSERT INTO recipes (id, product_id, name, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5)`
		if _, err := tx.Exec(ctx, query, recipe.ID, recipe.ProductID, recipe.Name, recipe.CreatedAt, recipe.UpdatedAt); err != nil {
			return writeError("insert recipe", err)
		}
		return insertRecipeLines(ctx, tx, recipe.ID, recipe.Lines)
	})
}

func insertRecipeLines(ctx context.Context, q Querier, recipeID string, lines []entity.RecipeLine) error {
	b := &pgx.Batch{}
	for _, ln := range lines {
		b.Queue(`
			INSERT INTO recipe_lines (id, recipe_id, material_id, quantity, unit, position)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			ln.ID, recipeID, ln.MaterialID, ln.Quantity, ln.Unit, ln.Position)
	}
	return execBatch(ctx, q, b, "insert recipe lines")
}

// recipeByIDQuery bloquea la cabecera en modo compartido. Update modifica la cabecera antes de
// reemplazar las líneas, así que dentro de una tx (Produce) cabecera y líneas salen del mismo commit.
// Fuera de una tx el bloqueo dura solo la sentencia.
const recipeByIDQuery = `
	SELECT id, product_id, name, created_at, updated_at
	FROM recipes WHERE id = $1
	FOR SHARE`

// GetByID devuelve la receta con sus líneas ordenadas. nil si no existe.
func (r *RecipeRepo) GetByID(ctx context.Context, id string) (*entity.Recipe, error) {
	var rc entity.Recipe
	err := r.q.QueryRow(ctx, recipeByIDQuery, id).Scan(&rc.ID, &rc.ProductID, &rc.Name, &rc.CreatedAt, &rc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	lines, err := r.lines(ctx, []string{rc.ID})
	if err != nil {
		return nil, err
	}
	rc.Lines = lines[rc.ID]
	return &rc, nil
}

// List recetas ordenadas por nombre; productID vacío lista todas.
func (r *RecipeRepo) List(ctx context.Context, productID string, limit, offset int) ([]*entity.Recipe, error) {
	query := `
		SELECT id, product_id, name, created_at, updated_at
		FROM recipes
		WHERE ($1 = '' OR product_id::text = $1)
		ORDER BY name, id LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, productID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	defer rows.Close()
	var list []*entity.Recipe
	var ids []string
	for rows.Next() {
		var rc entity.Recipe
		if err := rows.Scan(&rc.ID, &rc.ProductID, &rc.Name, &rc.CreatedAt, &rc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		list = append(list, &rc)
		ids = append(ids, rc.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return list, nil
	}
	lines, err := r.lines(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, rc := range list {
		rc.Lines = lines[rc.ID]
	}
	return list, nil
}

func (r *RecipeRepo) lines(ctx context.Context, recipeIDs []string) (map[string][]entity.RecipeLine, error) {
	query := `
		SELECT id, recipe_id, material_id, quantity, unit, position
		FROM recipe_lines WHERE recipe_id::text = ANY($1)
		ORDER BY recipe_id, position`
	rows, err := r.q.Query(ctx, query, recipeIDs)
	if err != nil {
		return nil, fmt.Errorf("list recipe lines: %w", err)
	}
	defer rows.Close()
	out := make(map[string][]entity.RecipeLine, len(recipeIDs))
	for rows.Next() {
		var ln entity.RecipeLine
		if err := rows.Scan(&ln.ID, &ln.RecipeID, &ln.MaterialID, &ln.Quantity, &ln.Unit, &ln.Position); err != nil {
			return nil, fmt.Errorf("scan recipe line: %w", err)
		}
		out[ln.RecipeID] = append(out[ln.RecipeID], ln)
	}
	return out, rows.Err()
}

// Update reemplaza nombre y, si lines != nil, el conjunto completo de líneas.
func (r *RecipeRepo) Update(ctx context.Context, recipe *entity.Recipe, lines []entity.RecipeLine) error {
	return pgx.BeginFunc(ctx, r.q, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE recipes SET name = $2, updated_at = $3 WHERE id = $1`,
			recipe.ID, recipe.Name, recipe.UpdatedAt)
		if err != nil {
			return writeError("update recipe", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		if lines == nil {
			return nil
		}
		if _, err := tx.Exec(ctx, `DELETE FROM recipe_lines WHERE recipe_id = $1`, recipe.ID); err != nil {
			return fmt.Errorf("delete recipe lines: %w", err)
		}
		return insertRecipeLines(ctx, tx, recipe.ID, lines)
	})
}

// Delete elimina la receta y sus líneas (CASCADE). Si una producción la referencia devuelve ErrConflict.
func (r *RecipeRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM recipes WHERE id = $1`, id)
	if err != nil {
		return writeError("delete recipe", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
