package ledger_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/application/ledger"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/memory"
	"github.com/jhoicas/Produccion-api/pkg/logger"
)

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

const userID = "00000000-0000-0000-0000-0000000000aa"

var fixedNow = time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	store  *memory.Store
	ledger *ledger.StockLedger
	obs    *recordingObserver
}

func newFixture(t *testing.T, opts ...ledger.Option) *fixture {
	t.Helper()
	f := &fixture{store: memory.NewStore(), obs: &recordingObserver{}}
	opts = append([]ledger.Option{ledger.WithClock(func() time.Time { return fixedNow }), ledger.WithObserver(f.obs)}, opts...)
	f.ledger = ledger.NewStockLedger(f.store, logger.Nop(), opts...)
	return f
}

func (f *fixture) material(t *testing.T, name, price, stock string) *entity.Material {
	t.Helper()
	m := &entity.Material{
		ID: uuid.New().String(), Name: name, Unit: "kg",
		UnitPrice: dec(price), Stock: dec(stock), CreatedAt: fixedNow, UpdatedAt: fixedNow,
	}
	require.NoError(t, f.store.Materials().Create(context.Background(), m))
	return m
}

func (f *fixture) product(t *testing.T, name, price, stock string) *entity.Product {
	t.Helper()
	p := &entity.Product{
		ID: uuid.New().String(), Name: name, Unit: "unidad",
		Price: dec(price), Stock: dec(stock), CreatedAt: fixedNow, UpdatedAt: fixedNow,
	}
	require.NoError(t, f.store.Products().Create(context.Background(), p))
	return p
}

func (f *fixture) recipe(t *testing.T, productID string, lines ...entity.RecipeLine) *entity.Recipe {
	t.Helper()
	r := &entity.Recipe{ID: uuid.New().String(), ProductID: productID, Name: "Fórmula", CreatedAt: fixedNow, UpdatedAt: fixedNow}
	for i, ln := range lines {
		ln.ID = uuid.New().String()
		ln.RecipeID = r.ID
		ln.Position = i + 1
		r.Lines = append(r.Lines, ln)
	}
	require.NoError(t, f.store.Recipes().Create(context.Background(), r))
	return r
}

func (f *fixture) materialStock(t *testing.T, id string) decimal.Decimal {
	t.Helper()
	m, err := f.store.Materials().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, m)
	return m.Stock
}

func (f *fixture) productStock(t *testing.T, id string) decimal.Decimal {
	t.Helper()
	p, err := f.store.Products().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Stock
}

func (f *fixture) receiptCount(t *testing.T) int {
	t.Helper()
	list, err := f.ledger.ListReceipts(context.Background(), dto.PageRequest{Limit: 100})
	require.NoError(t, err)
	return len(list.Items)
}

func (f *fixture) issueCount(t *testing.T) int {
	t.Helper()
	list, err := f.ledger.ListIssues(context.Background(), dto.PageRequest{Limit: 100})
	require.NoError(t, err)
	return len(list.Items)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "esperado %s, obtenido %s %v", want, got.String(), msgAndArgs)
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes map[string][]string
}

func (o *recordingObserver) Observe(op, outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.outcomes == nil {
		o.outcomes = make(map[string][]string)
	}
	o.outcomes[op] = append(o.outcomes[op], outcome)
}

// ─────────────────────────────────────────────────────────────────────────────
// Entradas (NK)
// ─────────────────────────────────────────────────────────────────────────────

// Escenario A: M con 100 kg recibe 50 → 150 y el total es 50 × precio.
func TestCreateReceipt_SumaStockYCalculaTotal(t *testing.T) {
	f := newFixture(t)
	m := f.material(t, "Harina", "12.5", "100")

	out, err := f.ledger.CreateReceipt(context.Background(), userID, dto.CreateReceiptRequest{
		Lines: []dto.ReceiptLineInput{{MaterialID: m.ID, Quantity: dec("50")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "NK20260115001", out.Code)

	assertDecimal(t, "150", f.materialStock(t, m.ID))

	detail, err := f.ledger.GetReceiptDetail(context.Background(), out.ID)
	require.NoError(t, err)
	require.Len(t, detail.Lines, 1)
	assertDecimal(t, "625", detail.Total)
	assert.Equal(t, "Harina", detail.Lines[0].MaterialName)
	assertDecimal(t, "12.5", detail.Lines[0].UnitPrice)
	assert.Equal(t, userID, detail.CreatedBy)
}

func TestCreateReceipt_CodigosConsecutivosPorDia(t *testing.T) {
	f := newFixture(t)
	m := f.material(t, "Azúcar", "3", "0")
	req := dto.CreateReceiptRequest{Lines: []dto.ReceiptLineInput{{MaterialID: m.ID, Quantity: dec("1")}}}

	first, err := f.ledger.CreateReceipt(context.Background(), userID, req)
	require.NoError(t, err)
	second, err := f.ledger.CreateReceipt(context.Background(), userID, req)
	require.NoError(t, err)
	assert.Equal(t, "NK20260115001", first.Code)
	assert.Equal(t, "NK20260115002", second.Code)

	// Borrar un documento no libera su código.
	require.NoError(t, f.ledger.DeleteReceipt(context.Background(), second.ID))
	third, err := f.ledger.CreateReceipt(context.Background(), userID, req)
	require.NoError(t, err)
	assert.Equal(t, "NK20260115003", third.Code)
}

func TestCreateReceipt_FechaEnZonaHorariaDelNegocio(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	require.NoError(t, err)
	late := time.Date(2026, 1, 15, 20, 0, 0, 0, time.UTC) // 03:00 del 16 en UTC+7
	f := newFixture(t, ledger.WithLocation(loc), ledger.WithClock(func() time.Time { return late }))
	m := f.material(t, "Sal", "1", "0")

	out, err := f.ledger.CreateReceipt(context.Background(), userID, dto.CreateReceiptRequest{
		Lines: []dto.ReceiptLineInput{{MaterialID: m.ID, Quantity: dec("1")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "NK20260116001", out.Code)
}

func TestCreateReceipt_ValidacionAntesDeTransaccion(t *testing.T) {
	f := newFixture(t)
	m := f.material(t, "Harina", "1", "10")

	cases := map[string]dto.CreateReceiptRequest{
		"sin líneas":          {},
		"cantidad cero":       {Lines: []dto.ReceiptLineInput{{MaterialID: m.ID, Quantity: dec("0")}}},
		"cantidad negativa":   {Lines: []dto.ReceiptLineInput{{MaterialID: m.ID, Quantity: dec("-1")}}},
		"material sin ID":     {Lines: []dto.ReceiptLineInput{{Quantity: dec("1")}}},
		"material no es UUID": {Lines: []dto.ReceiptLineInput{{MaterialID: "abc", Quantity: dec("1")}}},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.ledger.CreateReceipt(context.Background(), userID, req)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
	assertDecimal(t, "10", f.materialStock(t, m.ID))
	assert.Zero(t, f.receiptCount(t))
}

// Atomicidad: una línea inválida (material inexistente) anula toda la entrada.
func TestCreateReceipt_MaterialInexistenteNoEscribeNada(t *testing.T) {
	f := newFixture(t)
	m := f.material(t, "Harina", "1", "10")
	missing := uuid.New().String()

	_, err := f.ledger.CreateReceipt(context.Background(), userID, dto.CreateReceiptRequest{
		Lines: []dto.ReceiptLineInput{
			{MaterialID: m.ID, Quantity: dec("5")},
			{MaterialID: missing, Quantity: dec("1")},
		},
	})
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, entity.StockKindMaterial, nf.Resource)
	assert.Equal(t, missing, nf.ID)

	assertDecimal(t, "10", f.materialStock(t, m.ID))
	assert.Zero(t, f.receiptCount(t))

	// El consecutivo tampoco se consumió.
	out, err := f.ledger.CreateReceipt(context.Background(), userID, dto.CreateReceiptRequest{
		Lines: []dto.ReceiptLineInput{{MaterialID: m.ID, Quantity: dec("1")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "NK20260115001", out.Code)
}

func TestCreateReceipt_LineasRepetidasSeSuman(t *testing.T) {
	f := newFixture(t)
	m := f.material(t, "Harina", "2", "0")

	out, err := f.ledger.CreateReceipt(context.Background(), userID, dto.CreateReceiptRequest{
		Lines: []dto.ReceiptLineInput{
			{MaterialID: m.ID, Quantity: dec("3")},
			{MaterialID: m.ID, Quantity: dec("4")},
		},
	})
	require.NoError(t, err)
	assertDecimal(t, "7", f.materialStock(t, m.ID))

	detail, err := f.ledger.GetReceiptDetail(context.Background(), out.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Lines, 2)
	assertDecimal(t, "14", detail.Total)
}

// Escenario E: [{M,50}] → [{M,20}] baja el stock exactamente 30 y recalcula el total.
func TestUpdateReceipt_ReemplazaLineasConDeltaNeto(t *testing.T) {
	f := newFixture(t)
	m := f.material(t, "Harina", "10", "0")

	created, err := f.ledger.CreateReceipt(context.Background(), userID, dto.CreateReceiptRequest{
		Lines: []dto.ReceiptLineInput{{MaterialID: m.ID, Quantity: dec("50")}},
	})
	require.NoError(t, err)
	assertDecimal(t, "50", f.materialStock(t, m.ID))

	lines := []dto.ReceiptLineInput{{MaterialID: m.ID, Quantity: dec("20")}}
	detail, err := f.ledger.UpdateReceipt(context.Background(), created.ID, dto.UpdateReceiptRequest{Lines: &lines})
	require.NoError(t, err)

	assertDecimal(t, "20", f.materialStock(t, m.ID))
	assertDecimal(t, "200", detail.Total)
	require.Len(t, detail.Lines, 1)
	assertDecimal(t, "20", detail.Lines[0].Quantity)
	assert.Equal(t, created.Code, detail.Code, "el código no cambia al actualizar")
}

func TestUpdateReceipt_SoloNotaNoTocaStock(t *testing.T) {
	f := newFixture(t)
	m := f.material(t, "Harina", "10", "0")
	created, err := f.ledger.CreateReceipt(context.Background(), userID, dto.CreateReceiptRequest{
		Note:  "original",
		Lines: []dto.ReceiptLineInput{{MaterialID: m.ID, Quantity: dec("5")}},
	})
	require.NoError(t, err)

	note := ""
	detail, err := f.ledger.UpdateReceipt(context.Background(), created.ID, dto.UpdateReceiptRequest{Note: &note})
	require.NoError(t, err)

	assert.Equal(t, "", detail.Note, "nota vacía presente se aplica")
	assertDecimal(t, "5", f.materialStock(t, m.ID))
	assertDecimal(t, "50", detail.Total)
	require.Len(t, detail.Lines, 1)
}

func TestUpdateReceipt_SinCambiosOLineasVaciasEsValidacion(t *testing.T) {
	f := newFixture(t)
	m := f.material(t, "Harina", "10", "0")
	created, err := f.ledger.CreateReceipt(context.Background(), userID, dto.CreateReceiptRequest{
		Lines: []dto.ReceiptLineInput{{MaterialID: m.ID, Quantity: dec("5")}},
	})
	require.NoError(t, err)

	_, err = f.ledger.UpdateReceipt(context.Background(), created.ID, dto.UpdateReceiptRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	empty := []dto.ReceiptLineInput{}
	_, err = f.ledger.UpdateReceipt(context.Background(), created.ID, dto.UpdateReceiptRequest{Lines: &empty})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assertDecimal(t, "5", f.materialStock(t, m.ID))
}

func TestUpdateReceipt_NoExiste(t *testing.T) {
	f := newFixture(t)
	note := "x"
	_, err := f.ledger.UpdateReceipt(context.Background(), uuid.New().String(), dto.UpdateReceiptRequest{Note: &note})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteReceipt_RevierteStock(t *testing.T) {
	f := newFixture(t)
	m := f.material(t, "Harina", "10", "5")
	created, err := f.ledger.CreateReceipt(context.Background(), userID, dto.CreateReceiptRequest{
		Lines: []dto.ReceiptLineInput{{MaterialID: m.ID, Quantity: dec("50")}},
	})
	require.NoError(t, err)

	require.NoError(t, f.ledger.DeleteReceipt(context.Background(), created.ID))

	assertDecimal(t, "5", f.materialStock(t, m.ID))
	_, err = f.ledger.GetReceiptDetail(context.Background(), created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, f.ledger.DeleteReceipt(context.Background(), created.ID), domain.ErrNotFound)
}

// Borrar una entrada cuyo material ya se consumió dejaría stock negativo.
func TestDeleteReceipt_MaterialConsumidoFalla(t *testing.T) {
	f := newFixture(t)
	a := f.material(t, "Harina", "10", "0")
	p := f.product(t, "Pan", "5", "0")
	r := f.recipe(t, p.ID, entity.RecipeLine{MaterialID: a.ID, Quantity: dec("1")})

	created, err := f.ledger.CreateReceipt(context.Background(), userID, dto.CreateReceiptRequest{
		Lines: []dto.ReceiptLineInput{{MaterialID: a.ID, Quantity: dec("50")}},
	})
	require.NoError(t, err)
	_, err = f.ledger.Produce(context.Background(), userID, dto.ProduceRequest{ProductID: p.ID, RecipeID: r.ID, Quantity: 40})
	require.NoError(t, err)

	err = f.ledger.DeleteReceipt(context.Background(), created.ID)
	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	require.Len(t, ise.Shortages, 1)
	assertDecimal(t, "40", ise.Shortages[0].Missing())

	assertDecimal(t, "10", f.materialStock(t, a.ID))
	assert.Equal(t, 1, f.receiptCount(t))
}

// Lecturas idempotentes: dos lecturas sin escrituras intermedias devuelven lo mismo.
func TestGetReceiptDetail_Idempotente(t *testing.T) {
	f := newFixture(t)
	m1 := f.material(t, "Harina", "10", "0")
	m2 := f.material(t, "Azúcar", "4", "0")
	created, err := f.ledger.CreateReceipt(context.Background(), userID, dto.CreateReceiptRequest{
		Note: "lote 7",
		Lines: []dto.ReceiptLineInput{
			{MaterialID: m1.ID, Quantity: dec("1.5")},
			{MaterialID: m2.ID, Quantity: dec("3")},
		},
	})
	require.NoError(t, err)

	first, err := f.ledger.GetReceiptDetail(context.Background(), created.ID)
	require.NoError(t, err)
	second, err := f.ledger.GetReceiptDetail(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, m1.ID, first.Lines[0].MaterialID, "las líneas conservan el orden de captura")
}

// ─────────────────────────────────────────────────────────────────────────────
// Salidas (XK)
// ─────────────────────────────────────────────────────────────────────────────

// Escenario B: P con 10 no puede despachar 15; nada cambia.
func TestCreateIssue_StockInsuficienteNoEscribeNada(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Pan", "5", "10")

	_, err := f.ledger.CreateIssue(context.Background(), userID, dto.CreateIssueRequest{
		Lines: []dto.IssueLineInput{{ProductID: p.ID, Quantity: dec("15")}},
	})
	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	require.Len(t, ise.Shortages, 1)
	assert.Equal(t, p.ID, ise.Shortages[0].ItemID)
	assertDecimal(t, "5", ise.Shortages[0].Missing())

	assertDecimal(t, "10", f.productStock(t, p.ID))
	assert.Zero(t, f.issueCount(t))
	assert.Equal(t, []string{ledger.OutcomeInsufficientStock}, f.obs.outcomes[ledger.OpCreateIssue])
}

func TestCreateIssue_ReportaTodosLosFaltantes(t *testing.T) {
	f := newFixture(t)
	p1 := f.product(t, "Pan", "5", "10")
	p2 := f.product(t, "Torta", "20", "1")
	p3 := f.product(t, "Galleta", "1", "100")

	_, err := f.ledger.CreateIssue(context.Background(), userID, dto.CreateIssueRequest{
		Lines: []dto.IssueLineInput{
			{ProductID: p1.ID, Quantity: dec("11")},
			{ProductID: p3.ID, Quantity: dec("1")},
			{ProductID: p2.ID, Quantity: dec("3")},
		},
	})
	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	require.Len(t, ise.Shortages, 2)
	assert.Equal(t, p1.ID, ise.Shortages[0].ItemID)
	assert.Equal(t, p2.ID, ise.Shortages[1].ItemID)
	assert.Contains(t, err.Error(), "Pan")
	assert.Contains(t, err.Error(), "Torta")

	assertDecimal(t, "100", f.productStock(t, p3.ID))
}

func TestCreateIssue_DescuentaConPrecioDeVenta(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Pan", "2.5", "10")

	out, err := f.ledger.CreateIssue(context.Background(), userID, dto.CreateIssueRequest{
		Lines: []dto.IssueLineInput{{ProductID: p.ID, Quantity: dec("10")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "XK20260115001", out.Code)
	assertDecimal(t, "0", f.productStock(t, p.ID))

	detail, err := f.ledger.GetIssueDetail(context.Background(), out.ID)
	require.NoError(t, err)
	assertDecimal(t, "25", detail.Total)
	assert.Equal(t, "Pan", detail.Lines[0].ProductName)
}

func TestUpdateIssue_VerificaContraStockRevertido(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Pan", "1", "15")
	created, err := f.ledger.CreateIssue(context.Background(), userID, dto.CreateIssueRequest{
		Lines: []dto.IssueLineInput{{ProductID: p.ID, Quantity: dec("10")}},
	})
	require.NoError(t, err)
	assertDecimal(t, "5", f.productStock(t, p.ID))

	// 5 disponibles + 10 revertidos = 15: alcanza exactamente.
	ok := []dto.IssueLineInput{{ProductID: p.ID, Quantity: dec("15")}}
	detail, err := f.ledger.UpdateIssue(context.Background(), created.ID, dto.UpdateIssueRequest{Lines: &ok})
	require.NoError(t, err)
	assertDecimal(t, "0", f.productStock(t, p.ID))
	assertDecimal(t, "15", detail.Total)

	tooMuch := []dto.IssueLineInput{{ProductID: p.ID, Quantity: dec("16")}}
	_, err = f.ledger.UpdateIssue(context.Background(), created.ID, dto.UpdateIssueRequest{Lines: &tooMuch})
	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assertDecimal(t, "15", ise.Shortages[0].Available)
	assertDecimal(t, "1", ise.Shortages[0].Missing())

	assertDecimal(t, "0", f.productStock(t, p.ID))
	after, err := f.ledger.GetIssueDetail(context.Background(), created.ID)
	require.NoError(t, err)
	assertDecimal(t, "15", after.Total, "el documento queda como antes del intento fallido")
}

func TestDeleteIssue_DevuelveStock(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Pan", "1", "8")
	created, err := f.ledger.CreateIssue(context.Background(), userID, dto.CreateIssueRequest{
		Lines: []dto.IssueLineInput{{ProductID: p.ID, Quantity: dec("3")}},
	})
	require.NoError(t, err)

	require.NoError(t, f.ledger.DeleteIssue(context.Background(), created.ID))
	assertDecimal(t, "8", f.productStock(t, p.ID))
	assert.Zero(t, f.issueCount(t))
}

func TestCreateIssue_ConcurrenciaNoSobrevende(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Pan", "1", "10")

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ok      int
		refused int
	)
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.ledger.CreateIssue(context.Background(), userID, dto.CreateIssueRequest{
				Lines: []dto.IssueLineInput{{ProductID: p.ID, Quantity: dec("1")}},
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if errors.Is(err, domain.ErrInsufficientStock) {
				refused++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, ok)
	assert.Equal(t, 15, refused)
	assertDecimal(t, "0", f.productStock(t, p.ID))
	assert.Equal(t, 10, f.issueCount(t))
}

// ─────────────────────────────────────────────────────────────────────────────
// Producción
// ─────────────────────────────────────────────────────────────────────────────

// Escenario C: 8 kg de A alcanzan, 4 kg de B no (faltan 1). Nada cambia.
func TestProduce_FaltanteNoModificaNingunMaterial(t *testing.T) {
	f := newFixture(t)
	a := f.material(t, "A", "1", "10")
	b := f.material(t, "B", "1", "3")
	p := f.product(t, "P", "10", "0")
	r := f.recipe(t, p.ID,
		entity.RecipeLine{MaterialID: a.ID, Quantity: dec("2")},
		entity.RecipeLine{MaterialID: b.ID, Quantity: dec("1")},
	)

	_, err := f.ledger.Produce(context.Background(), userID, dto.ProduceRequest{ProductID: p.ID, RecipeID: r.ID, Quantity: 4})

	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	require.Len(t, ise.Shortages, 1)
	assert.Equal(t, b.ID, ise.Shortages[0].ItemID)
	assert.Equal(t, "B", ise.Shortages[0].ItemName)
	assertDecimal(t, "4", ise.Shortages[0].Required)
	assertDecimal(t, "1", ise.Shortages[0].Missing())

	assertDecimal(t, "10", f.materialStock(t, a.ID))
	assertDecimal(t, "3", f.materialStock(t, b.ID))
	assertDecimal(t, "0", f.productStock(t, p.ID))
}

// Escenario D: con B = 5 la producción se aplica.
func TestProduce_ConsumeMaterialesYSumaProducto(t *testing.T) {
	f := newFixture(t)
	a := f.material(t, "A", "1.5", "10")
	b := f.material(t, "B", "2", "5")
	p := f.product(t, "P", "10", "1")
	r := f.recipe(t, p.ID,
		entity.RecipeLine{MaterialID: a.ID, Quantity: dec("2")},
		entity.RecipeLine{MaterialID: b.ID, Quantity: dec("1")},
	)

	out, err := f.ledger.Produce(context.Background(), userID, dto.ProduceRequest{ProductID: p.ID, RecipeID: r.ID, Quantity: 4, Note: "turno mañana"})
	require.NoError(t, err)

	assertDecimal(t, "2", f.materialStock(t, a.ID))
	assertDecimal(t, "1", f.materialStock(t, b.ID))
	assertDecimal(t, "5", f.productStock(t, p.ID))

	assertDecimal(t, "4", out.Quantity)
	assertDecimal(t, "20", out.MaterialsCost, "8 × 1.5 + 4 × 2")
	require.Len(t, out.Consumed, 2)

	history, err := f.ledger.ListProductions(context.Background(), p.ID, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, history.Items, 1)
	assert.Equal(t, out.ID, history.Items[0].ID)
	assert.Equal(t, "turno mañana", history.Items[0].Note)
}

func TestProduce_ReportaTodosLosMaterialesFaltantes(t *testing.T) {
	f := newFixture(t)
	a := f.material(t, "A", "1", "1")
	b := f.material(t, "B", "1", "0")
	p := f.product(t, "P", "10", "0")
	r := f.recipe(t, p.ID,
		entity.RecipeLine{MaterialID: a.ID, Quantity: dec("2")},
		entity.RecipeLine{MaterialID: b.ID, Quantity: dec("1")},
	)

	_, err := f.ledger.Produce(context.Background(), userID, dto.ProduceRequest{ProductID: p.ID, RecipeID: r.ID, Quantity: 1})
	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Len(t, ise.Shortages, 2)
}

func TestProduce_RecetaDeOtroProductoEsNotFound(t *testing.T) {
	f := newFixture(t)
	a := f.material(t, "A", "1", "10")
	p1 := f.product(t, "P1", "1", "0")
	p2 := f.product(t, "P2", "1", "0")
	r := f.recipe(t, p1.ID, entity.RecipeLine{MaterialID: a.ID, Quantity: dec("1")})

	_, err := f.ledger.Produce(context.Background(), userID, dto.ProduceRequest{ProductID: p2.ID, RecipeID: r.ID, Quantity: 1})
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "recipe", nf.Resource)
	assertDecimal(t, "10", f.materialStock(t, a.ID))
}

func TestProduce_RecetaSinLineasEsValidacion(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "P", "1", "0")
	r := f.recipe(t, p.ID)

	_, err := f.ledger.Produce(context.Background(), userID, dto.ProduceRequest{ProductID: p.ID, RecipeID: r.ID, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assertDecimal(t, "0", f.productStock(t, p.ID))
}

func TestProduce_CantidadDebeSerPositiva(t *testing.T) {
	f := newFixture(t)
	_, err := f.ledger.Produce(context.Background(), userID, dto.ProduceRequest{
		ProductID: uuid.New().String(), RecipeID: uuid.New().String(), Quantity: 0,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, []string{ledger.OutcomeValidation}, f.obs.outcomes[ledger.OpProduce])
}

// ─────────────────────────────────────────────────────────────────────────────
// Fallos de almacenamiento
// ─────────────────────────────────────────────────────────────────────────────

var errDiskFull = errors.New("disk full")

// failingLines hace fallar la escritura de líneas después de mover stock y reservar código.
type failingLines struct {
	repository.ReceiptRepository
}

func (failingLines) CreateLines(context.Context, []*entity.ReceiptLine) error { return errDiskFull }

type failingRunner struct{ inner ledger.TxRunner }

func (r failingRunner) Run(ctx context.Context, fn func(ledger.TxRepos) error) error {
	return r.inner.Run(ctx, func(repos ledger.TxRepos) error {
		repos.Receipts = failingLines{repos.Receipts}
		return fn(repos)
	})
}

func TestCreateReceipt_FalloDeAlmacenamientoRevierteTodo(t *testing.T) {
	store := memory.NewStore()
	obs := &recordingObserver{}
	l := ledger.NewStockLedger(failingRunner{inner: store}, logger.Nop(),
		ledger.WithClock(func() time.Time { return fixedNow }), ledger.WithObserver(obs))

	m := &entity.Material{ID: uuid.New().String(), Name: "Harina", Unit: "kg", UnitPrice: dec("1"), Stock: dec("3")}
	require.NoError(t, store.Materials().Create(context.Background(), m))

	_, err := l.CreateReceipt(context.Background(), userID, dto.CreateReceiptRequest{
		Lines: []dto.ReceiptLineInput{{MaterialID: m.ID, Quantity: dec("5")}},
	})
	var se *domain.StorageError
	require.ErrorAs(t, err, &se)
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.ErrorIs(t, err, errDiskFull)
	assert.Equal(t, []string{ledger.OutcomeStorage}, obs.outcomes[ledger.OpCreateReceipt])

	got, err := store.Materials().GetByID(context.Background(), m.ID)
	require.NoError(t, err)
	assertDecimal(t, "3", got.Stock)

	// Con el runner sano el primer código del día sigue libre.
	healthy := ledger.NewStockLedger(store, logger.Nop(), ledger.WithClock(func() time.Time { return fixedNow }))
	out, err := healthy.CreateReceipt(context.Background(), userID, dto.CreateReceiptRequest{
		Lines: []dto.ReceiptLineInput{{MaterialID: m.ID, Quantity: dec("5")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "NK20260115001", out.Code)
}

func TestContextoCanceladoEsStorage(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.ledger.ListReceipts(ctx, dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.ErrorIs(t, err, context.Canceled)
}

// ─────────────────────────────────────────────────────────────────────────────
// Escritura condicional rechazada (otra transacción ganó la carrera)
// ─────────────────────────────────────────────────────────────────────────────

// rejectingStock simula que el UPDATE condicional no afecta filas aunque el bloqueo haya pasado.
type rejectingStock struct {
	repository.StockRepository
}

func (rejectingStock) ApplyDelta(context.Context, string, decimal.Decimal, time.Time) (bool, error) {
	return false, nil
}

type rejectingRunner struct {
	inner     ledger.TxRunner
	materials bool
	products  bool
}

func (r rejectingRunner) Run(ctx context.Context, fn func(ledger.TxRepos) error) error {
	return r.inner.Run(ctx, func(repos ledger.TxRepos) error {
		if r.materials {
			repos.Materials = rejectingStock{repos.Materials}
		}
		if r.products {
			repos.Products = rejectingStock{repos.Products}
		}
		return fn(repos)
	})
}

func TestCreateIssue_EscrituraCondicionalRechazadaEsFaltantePositivo(t *testing.T) {
	f := newFixture(t)
	bread := f.product(t, "Pan", "800", "10")
	l := ledger.NewStockLedger(rejectingRunner{inner: f.store, products: true}, logger.Nop(),
		ledger.WithClock(func() time.Time { return fixedNow }))

	_, err := l.CreateIssue(context.Background(), userID, dto.CreateIssueRequest{
		Lines: []dto.IssueLineInput{{ProductID: bread.ID, Quantity: dec("1")}},
	})
	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	require.Len(t, ise.Shortages, 1)
	s := ise.Shortages[0]
	assert.Equal(t, bread.ID, s.ItemID)
	assert.Equal(t, "Pan", s.ItemName)
	assertDecimal(t, "1", s.Required)
	assert.True(t, s.Missing().IsPositive(), "faltan debe ser > 0, obtenido %s", s.Missing())
	assert.NotContains(t, err.Error(), "faltan -")

	assert.Equal(t, 0, f.issueCount(t))
	assertDecimal(t, "10", f.productStock(t, bread.ID))
}

func TestProduce_EscrituraCondicionalRechazadaNoRegistraProduccion(t *testing.T) {
	f := newFixture(t)
	flour := f.material(t, "Harina", "2", "3")
	bread := f.product(t, "Pan", "5", "0")
	r := f.recipe(t, bread.ID, entity.RecipeLine{MaterialID: flour.ID, Quantity: dec("0.5"), Unit: "kg"})
	l := ledger.NewStockLedger(rejectingRunner{inner: f.store, materials: true}, logger.Nop(),
		ledger.WithClock(func() time.Time { return fixedNow }))

	_, err := l.Produce(context.Background(), userID, dto.ProduceRequest{ProductID: bread.ID, RecipeID: r.ID, Quantity: 2})
	var ise *domain.InsufficientStockError
	require.ErrorAs(t, err, &ise)
	require.Len(t, ise.Shortages, 1)
	assert.True(t, ise.Shortages[0].Missing().IsPositive())

	list, err := f.ledger.ListProductions(context.Background(), bread.ID, dto.PageRequest{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, list.Items)
	assertDecimal(t, "3", f.materialStock(t, flour.ID))
	assertDecimal(t, "0", f.productStock(t, bread.ID))
}

func TestCreateReceipt_IncrementoRechazadoEsNotFound(t *testing.T) {
	f := newFixture(t)
	flour := f.material(t, "Harina", "2", "3")
	l := ledger.NewStockLedger(rejectingRunner{inner: f.store, materials: true}, logger.Nop(),
		ledger.WithClock(func() time.Time { return fixedNow }))

	_, err := l.CreateReceipt(context.Background(), userID, dto.CreateReceiptRequest{
		Lines: []dto.ReceiptLineInput{{MaterialID: flour.ID, Quantity: dec("5")}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 0, f.receiptCount(t))
	assertDecimal(t, "3", f.materialStock(t, flour.ID))
}
