package repository

import (
	"context"

	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

// RecipeRepository define el puerto de persistencia para recetas y sus líneas.
type RecipeRepository interface {
	// Create persiste cabecera y líneas de forma atómica.
	Create(ctx context.Context, recipe *entity.Recipe) error
	// GetByID devuelve la receta con sus líneas ordenadas. nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Recipe, error)
	List(ctx context.Context, productID string, limit, offset int) ([]*entity.Recipe, error)
	// Update reemplaza nombre y, si lines != nil, el conjunto completo de líneas (atómico).
	Update(ctx context.Context, recipe *entity.Recipe, lines []entity.RecipeLine) error
	Delete(ctx context.Context, id string) error
}
