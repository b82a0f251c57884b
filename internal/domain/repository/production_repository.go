package repository

import (
	"context"

	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

// ProductionRepository historial de producciones.
type ProductionRepository interface {
	Create(ctx context.Context, event *entity.ProductionEvent) error
	List(ctx context.Context, productID string, limit, offset int) ([]*entity.ProductionEvent, error)
}
