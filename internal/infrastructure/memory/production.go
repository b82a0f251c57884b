package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
)

var _ repository.ProductionRepository = (*ProductionRepo)(nil)

// ProductionRepo historial de producción en memoria.
type ProductionRepo struct{ acc access }

func (r *ProductionRepo) Create(ctx context.Context, ev *entity.ProductionEvent) error {
	return r.acc.do(func(d *dataset) error {
		if _, ok := d.products[ev.ProductID]; !ok {
			return domain.ErrConflict
		}
		if _, ok := d.recipes[ev.RecipeID]; !ok {
			return domain.ErrConflict
		}
		d.productions = append(d.productions, copyProduction(ev))
		return nil
	})
}

func (r *ProductionRepo) List(ctx context.Context, productID string, limit, offset int) ([]*entity.ProductionEvent, error) {
	var out []*entity.ProductionEvent
	err := r.acc.do(func(d *dataset) error {
		for _, ev := range d.productions {
			if productID == "" || ev.ProductID == productID {
				out = append(out, copyProduction(ev))
			}
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, limit, offset), err
}
