package inventory

import (
	"sort"

	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Delta variación de stock de un ítem (positiva entra, negativa sale).
type Delta struct {
	ItemID string
	Amount decimal.Decimal
}

// DeltaSet acumula variaciones por ítem conservando el orden de primera aparición.
type DeltaSet struct {
	order  []string
	amount map[string]decimal.Decimal
}

// NewDeltaSet construye un acumulador vacío.
func NewDeltaSet() *DeltaSet {
	return &DeltaSet{amount: make(map[string]decimal.Decimal)}
}

// Add suma amount al ítem (líneas repetidas del mismo ítem se agregan).
func (s *DeltaSet) Add(itemID string, amount decimal.Decimal) {
	cur, ok := s.amount[itemID]
	if !ok {
		s.order = append(s.order, itemID)
		cur = decimal.Zero
	}
	s.amount[itemID] = cur.Add(amount)
}

// Deltas devuelve las variaciones distintas de cero en orden de aparición.
func (s *DeltaSet) Deltas() []Delta {
	out := make([]Delta, 0, len(s.order))
	for _, id := range s.order {
		if a := s.amount[id]; !a.IsZero() {
			out = append(out, Delta{ItemID: id, Amount: a})
		}
	}
	return out
}

// RecipeRequirements calcula, por material, lo requerido para producir quantity unidades:
// required = línea.Quantity × quantity. Las líneas repetidas del mismo material se suman.
// El resultado es negativo (consumo) para aplicarlo directamente como variación de stock.
func RecipeRequirements(lines []entity.RecipeLine, quantity decimal.Decimal) *DeltaSet {
	set := NewDeltaSet()
	for _, l := range lines {
		set.Add(l.MaterialID, l.Quantity.Mul(quantity).Neg())
	}
	return set
}

// Get devuelve la variación acumulada del ítem (cero si no aparece).
func (s *DeltaSet) Get(itemID string) decimal.Decimal {
	if s == nil {
		return decimal.Zero
	}
	return s.amount[itemID]
}

// IDs devuelve los ítems en orden de primera aparición (incluye netos en cero).
func (s *DeltaSet) IDs() []string {
	if s == nil {
		return nil
	}
	return s.order
}

// StockChange describe el efecto de una operación sobre un tipo de ítem:
// Reverse deshace las líneas anteriores del documento (update/delete) y Apply aplica las nuevas.
type StockChange struct {
	Reverse *DeltaSet
	Apply   *DeltaSet
}

// ids une los ítems de Apply y Reverse sin repetir, Apply primero.
func (c StockChange) ids() []string {
	seen := make(map[string]bool)
	var out []string
	for _, set := range []*DeltaSet{c.Apply, c.Reverse} {
		for _, id := range set.IDs() {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

// LockOrder ítems afectados ordenados por ID (orden de bloqueo de filas).
func (c StockChange) LockOrder() []string {
	ids := c.ids()
	sort.Strings(ids)
	return ids
}

// Net variación neta por ítem (Reverse + Apply), omitiendo los netos en cero.
func (c StockChange) Net() []Delta {
	var out []Delta
	for _, id := range c.ids() {
		if n := c.Reverse.Get(id).Add(c.Apply.Get(id)); !n.IsZero() {
			out = append(out, Delta{ItemID: id, Amount: n})
		}
	}
	return out
}

// Shortages devuelve TODAS las líneas cuyo stock final quedaría negativo (no solo la primera).
// Si el ítem se descuenta en Apply, lo requerido se compara contra el stock ya revertido;
// si el negativo viene de revertir una entrada, se informa el neto contra el stock actual.
func (c StockChange) Shortages(levels map[string]*entity.Stock) []domain.Shortage {
	var out []domain.Shortage
	for _, id := range c.ids() {
		current := decimal.Zero
		s := domain.Shortage{ItemID: id}
		if lvl := levels[id]; lvl != nil {
			current = lvl.Quantity
			s.ItemName = lvl.Name
			s.Unit = lvl.Unit
		}
		rev, app := c.Reverse.Get(id), c.Apply.Get(id)
		if !current.Add(rev).Add(app).IsNegative() {
			continue
		}
		if app.IsNegative() {
			s.Required = app.Neg()
			s.Available = current.Add(rev)
		} else {
			s.Required = rev.Add(app).Neg()
			s.Available = current
		}
		out = append(out, s)
	}
	return out
}

// LineAmount importe de una línea: cantidad × precio unitario.
func LineAmount(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return quantity.Mul(unitPrice)
}

// DocumentTotal suma los importes de las líneas.
func DocumentTotal(amounts []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
