package repository

import (
	"context"

	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

// MaterialRepository define el puerto de persistencia para Material (sin escritura de stock).
type MaterialRepository interface {
	Create(ctx context.Context, material *entity.Material) error
	GetByID(ctx context.Context, id string) (*entity.Material, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Material, error)
	// Update modifica nombre, unidad y precio. El stock no se toca.
	Update(ctx context.Context, material *entity.Material) error
	// Delete devuelve domain.ErrConflict si el material está referenciado.
	Delete(ctx context.Context, id string) error
}
