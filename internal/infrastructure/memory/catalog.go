package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
)

var (
	_ repository.MaterialRepository = (*MaterialRepo)(nil)
	_ repository.ProductRepository  = (*ProductRepo)(nil)
	_ repository.StockRepository    = (*StockRepo)(nil)
)

// MaterialRepo implementación en memoria de MaterialRepository.
type MaterialRepo struct{ acc access }

func (r *MaterialRepo) Create(ctx context.Context, m *entity.Material) error {
	return r.acc.do(func(d *dataset) error {
		if _, ok := d.materials[m.ID]; ok {
			return domain.ErrDuplicate
		}
		c := *m
		d.materials[m.ID] = &c
		return nil
	})
}

func (r *MaterialRepo) GetByID(ctx context.Context, id string) (*entity.Material, error) {
	var out *entity.Material
	err := r.acc.do(func(d *dataset) error {
		if m, ok := d.materials[id]; ok {
			c := *m
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *MaterialRepo) List(ctx context.Context, limit, offset int) ([]*entity.Material, error) {
	var out []*entity.Material
	err := r.acc.do(func(d *dataset) error {
		for _, m := range d.materials {
			c := *m
			out = append(out, &c)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), err
}

func (r *MaterialRepo) Update(ctx context.Context, m *entity.Material) error {
	return r.acc.do(func(d *dataset) error {
		cur, ok := d.materials[m.ID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.Name, cur.Unit, cur.UnitPrice, cur.UpdatedAt = m.Name, m.Unit, m.UnitPrice, m.UpdatedAt
		return nil
	})
}

// Delete falla con ErrConflict si el material está en recetas, entradas o producciones.
func (r *MaterialRepo) Delete(ctx context.Context, id string) error {
	return r.acc.do(func(d *dataset) error {
		if _, ok := d.materials[id]; !ok {
			return domain.ErrNotFound
		}
		if materialReferenced(d, id) {
			return domain.ErrConflict
		}
		delete(d.materials, id)
		return nil
	})
}

func materialReferenced(d *dataset, id string) bool {
	for _, rc := range d.recipes {
		for _, ln := range rc.Lines {
			if ln.MaterialID == id {
				return true
			}
		}
	}
	for _, lines := range d.receiptLines {
		for _, ln := range lines {
			if ln.MaterialID == id {
				return true
			}
		}
	}
	for _, ev := range d.productions {
		for _, ln := range ev.Lines {
			if ln.MaterialID == id {
				return true
			}
		}
	}
	return false
}

// ProductRepo implementación en memoria de ProductRepository.
type ProductRepo struct{ acc access }

func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	return r.acc.do(func(d *dataset) error {
		if _, ok := d.products[p.ID]; ok {
			return domain.ErrDuplicate
		}
		c := *p
		d.products[p.ID] = &c
		return nil
	})
}

func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.acc.do(func(d *dataset) error {
		if p, ok := d.products[id]; ok {
			c := *p
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.acc.do(func(d *dataset) error {
		for _, p := range d.products {
			c := *p
			out = append(out, &c)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), err
}

func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	return r.acc.do(func(d *dataset) error {
		cur, ok := d.products[p.ID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.Name, cur.Unit, cur.Price, cur.UpdatedAt = p.Name, p.Unit, p.Price, p.UpdatedAt
		return nil
	})
}

// Delete falla con ErrConflict si el producto tiene recetas, salidas o producciones.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	return r.acc.do(func(d *dataset) error {
		if _, ok := d.products[id]; !ok {
			return domain.ErrNotFound
		}
		if productReferenced(d, id) {
			return domain.ErrConflict
		}
		delete(d.products, id)
		return nil
	})
}

func productReferenced(d *dataset, id string) bool {
	for _, rc := range d.recipes {
		if rc.ProductID == id {
			return true
		}
	}
	for _, lines := range d.issueLines {
		for _, ln := range lines {
			if ln.ProductID == id {
				return true
			}
		}
	}
	for _, ev := range d.productions {
		if ev.ProductID == id {
			return true
		}
	}
	return false
}

// StockRepo escritura de stock sobre materiales o productos según kind.
type StockRepo struct {
	acc  access
	kind string
}

// LockForUpdate en memoria la transacción completa ya es exclusiva; solo lee.
func (r *StockRepo) LockForUpdate(ctx context.Context, itemID string) (*entity.Stock, error) {
	var out *entity.Stock
	err := r.acc.do(func(d *dataset) error {
		out = r.read(d, itemID)
		return nil
	})
	return out, err
}

func (r *StockRepo) ApplyDelta(ctx context.Context, itemID string, delta decimal.Decimal, at time.Time) (bool, error) {
	var ok bool
	err := r.acc.do(func(d *dataset) error {
		switch r.kind {
		case entity.StockKindMaterial:
			m, found := d.materials[itemID]
			if found && !m.Stock.Add(delta).IsNegative() {
				m.Stock, m.UpdatedAt, ok = m.Stock.Add(delta), at, true
			}
		case entity.StockKindProduct:
			p, found := d.products[itemID]
			if found && !p.Stock.Add(delta).IsNegative() {
				p.Stock, p.UpdatedAt, ok = p.Stock.Add(delta), at, true
			}
		}
		return nil
	})
	return ok, err
}

// All stock de todos los ítems del tipo del repositorio, o de ambos si kind es vacío, ordenados por nombre.
func (r *StockRepo) All(ctx context.Context) ([]*entity.Stock, error) {
	var out []*entity.Stock
	err := r.acc.do(func(d *dataset) error {
		if r.kind == "" || r.kind == entity.StockKindMaterial {
			var part []*entity.Stock
			for id := range d.materials {
				part = append(part, materialStock(d.materials[id]))
			}
			sort.Slice(part, func(i, j int) bool { return part[i].Name < part[j].Name })
			out = append(out, part...)
		}
		if r.kind == "" || r.kind == entity.StockKindProduct {
			var part []*entity.Stock
			for id := range d.products {
				part = append(part, productStock(d.products[id]))
			}
			sort.Slice(part, func(i, j int) bool { return part[i].Name < part[j].Name })
			out = append(out, part...)
		}
		return nil
	})
	return out, err
}

func (r *StockRepo) read(d *dataset, itemID string) *entity.Stock {
	switch r.kind {
	case entity.StockKindMaterial:
		if m, ok := d.materials[itemID]; ok {
			return materialStock(m)
		}
	case entity.StockKindProduct:
		if p, ok := d.products[itemID]; ok {
			return productStock(p)
		}
	}
	return nil
}

func materialStock(m *entity.Material) *entity.Stock {
	return &entity.Stock{
		ItemID: m.ID, Kind: entity.StockKindMaterial, Name: m.Name, Unit: m.Unit,
		UnitPrice: m.UnitPrice, Quantity: m.Stock, UpdatedAt: m.UpdatedAt,
	}
}

func productStock(p *entity.Product) *entity.Stock {
	return &entity.Stock{
		ItemID: p.ID, Kind: entity.StockKindProduct, Name: p.Name, Unit: p.Unit,
		UnitPrice: p.Price, Quantity: p.Stock, UpdatedAt: p.UpdatedAt,
	}
}

// page aplica limit/offset sobre un listado ya ordenado.
func page[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
