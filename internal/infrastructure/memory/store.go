// Package memory implementa los puertos de persistencia en memoria.
// Las transacciones se serializan con un mutex: cada Run trabaja sobre una copia del estado
// y la publica solo si fn termina sin error.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/Produccion-api/internal/application/ledger"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

var _ ledger.TxRunner = (*Store)(nil)

// Store estado completo en memoria.
type Store struct {
	mu   sync.Mutex
	data *dataset
}

// NewStore construye un store vacío.
func NewStore() *Store {
	return &Store{data: newDataset()}
}

type dataset struct {
	materials    map[string]*entity.Material
	products     map[string]*entity.Product
	recipes      map[string]*entity.Recipe
	receipts     map[string]*entity.Receipt
	receiptLines map[string][]*entity.ReceiptLine
	issues       map[string]*entity.Issue
	issueLines   map[string][]*entity.IssueLine
	productions  []*entity.ProductionEvent
	sequences    map[string]int
	users        map[string]*entity.User
}

func newDataset() *dataset {
	return &dataset{
		materials:    make(map[string]*entity.Material),
		products:     make(map[string]*entity.Product),
		recipes:      make(map[string]*entity.Recipe),
		receipts:     make(map[string]*entity.Receipt),
		receiptLines: make(map[string][]*entity.ReceiptLine),
		issues:       make(map[string]*entity.Issue),
		issueLines:   make(map[string][]*entity.IssueLine),
		sequences:    make(map[string]int),
		users:        make(map[string]*entity.User),
	}
}

// clone copia profunda; los valores decimal.Decimal son inmutables y se comparten.
func (d *dataset) clone() *dataset {
	c := newDataset()
	for k, v := range d.materials {
		m := *v
		c.materials[k] = &m
	}
	for k, v := range d.products {
		p := *v
		c.products[k] = &p
	}
	for k, v := range d.recipes {
		c.recipes[k] = copyRecipe(v)
	}
	for k, v := range d.receipts {
		r := *v
		r.Lines = nil
		c.receipts[k] = &r
	}
	for k, lines := range d.receiptLines {
		cp := make([]*entity.ReceiptLine, len(lines))
		for i, ln := range lines {
			l := *ln
			cp[i] = &l
		}
		c.receiptLines[k] = cp
	}
	for k, v := range d.issues {
		is := *v
		is.Lines = nil
		c.issues[k] = &is
	}
	for k, lines := range d.issueLines {
		cp := make([]*entity.IssueLine, len(lines))
		for i, ln := range lines {
			l := *ln
			cp[i] = &l
		}
		c.issueLines[k] = cp
	}
	c.productions = make([]*entity.ProductionEvent, len(d.productions))
	for i, ev := range d.productions {
		c.productions[i] = copyProduction(ev)
	}
	for k, v := range d.sequences {
		c.sequences[k] = v
	}
	for k, v := range d.users {
		u := *v
		c.users[k] = &u
	}
	return c
}

// access abstrae dónde opera un repositorio: dentro de una transacción (copia de trabajo, ya bajo
// el mutex) o directamente sobre el store (toma el mutex por operación).
type access interface {
	do(fn func(d *dataset) error) error
}

type txAccess struct{ d *dataset }

func (a txAccess) do(fn func(d *dataset) error) error { return fn(a.d) }

type storeAccess struct{ s *Store }

func (a storeAccess) do(fn func(d *dataset) error) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	return fn(a.s.data)
}

// Run ejecuta fn con repositorios sobre una copia del estado y la publica si fn no falla.
func (s *Store) Run(ctx context.Context, fn func(repos ledger.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	acc := txAccess{d: work}
	repos := ledger.TxRepos{
		Materials:   &StockRepo{acc: acc, kind: entity.StockKindMaterial},
		Products:    &StockRepo{acc: acc, kind: entity.StockKindProduct},
		Recipes:     &RecipeRepo{acc: acc},
		Receipts:    &ReceiptRepo{acc: acc},
		Issues:      &IssueRepo{acc: acc},
		Productions: &ProductionRepo{acc: acc},
		Sequences:   &SequenceRepo{acc: acc},
	}
	if err := fn(repos); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.data = work
	return nil
}

// Materials repositorio de catálogo fuera de transacción.
func (s *Store) Materials() *MaterialRepo { return &MaterialRepo{acc: storeAccess{s: s}} }

// Products repositorio de catálogo fuera de transacción.
func (s *Store) Products() *ProductRepo { return &ProductRepo{acc: storeAccess{s: s}} }

// Recipes repositorio de recetas fuera de transacción.
func (s *Store) Recipes() *RecipeRepo { return &RecipeRepo{acc: storeAccess{s: s}} }

// Users repositorio de usuarios.
func (s *Store) Users() *UserRepo { return &UserRepo{acc: storeAccess{s: s}} }

// StockLevels lectura directa del stock de todos los ítems (reportes y tests).
func (s *Store) StockLevels(ctx context.Context) ([]*entity.Stock, error) {
	return (&StockRepo{acc: storeAccess{s: s}}).All(ctx)
}

func copyRecipe(r *entity.Recipe) *entity.Recipe {
	c := *r
	c.Lines = append([]entity.RecipeLine(nil), r.Lines...)
	return &c
}

func copyProduction(ev *entity.ProductionEvent) *entity.ProductionEvent {
	c := *ev
	c.Lines = make([]*entity.ProductionLine, len(ev.Lines))
	for i, ln := range ev.Lines {
		l := *ln
		c.Lines[i] = &l
	}
	return &c
}
