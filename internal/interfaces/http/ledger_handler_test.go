package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Produccion-api/internal/application/auth"
	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/application/ledger"
	"github.com/jhoicas/Produccion-api/internal/application/report"
	"github.com/jhoicas/Produccion-api/internal/application/usecase"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/excel"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/memory"
	"github.com/jhoicas/Produccion-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/Produccion-api/internal/interfaces/http"
	"github.com/jhoicas/Produccion-api/pkg/logger"
)

type apiFixture struct {
	app    *fiber.App
	authUC *auth.AuthUseCase
	admin  string
	staff  string
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	store := memory.NewStore()
	log := logger.Nop()
	l := ledger.NewStockLedger(store, log,
		ledger.WithClock(func() time.Time { return time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC) }))
	authUC := auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer})

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(true, log)})
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:     authUC,
		UserUC:     usecase.NewUserUseCase(store.Users()),
		MaterialUC: usecase.NewMaterialUseCase(store.Materials()),
		ProductUC:  usecase.NewProductUseCase(store.Products()),
		RecipeUC:   usecase.NewRecipeUseCase(store.Recipes(), store.Materials(), store.Products()),
		Ledger:     l,
		ReportUC:   report.NewUseCase(l, store, pdf.NewMarotoVoucherGenerator("Taller"), excel.NewStockReportWriter(), time.UTC),
		JWTSecret:  testJWTSecret,
	})
	return &apiFixture{
		app:    app,
		authUC: authUC,
		admin:  tokenForRole(t, "admin"),
		staff:  tokenForRole(t, "staff"),
	}
}

func (f *apiFixture) call(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func (f *apiFixture) create(t *testing.T, path string, body any) string {
	t.Helper()
	resp, out := f.call(t, http.MethodPost, path, f.admin, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(out))
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(out, &created))
	return created.ID
}

func TestAPI_EntradaYSalidaConFaltantes(t *testing.T) {
	f := newAPI(t)
	flour := f.create(t, "/api/materials", map[string]any{"name": "Harina", "unit": "kg", "unit_price": "2500"})
	bread := f.create(t, "/api/products", map[string]any{"name": "Pan", "unit": "unidad", "price": "800"})

	resp, out := f.call(t, http.MethodPost, "/api/receipts", f.admin, map[string]any{
		"note":  "compra",
		"lines": []map[string]any{{"material_id": flour, "quantity": "10"}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(out))
	var created dto.DocumentCreatedResponse
	require.NoError(t, json.Unmarshal(out, &created))
	assert.Equal(t, "NK20260115001", created.Code)

	resp, out = f.call(t, http.MethodGet, "/api/receipts/"+created.ID, f.staff, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var detail dto.ReceiptDetailResponse
	require.NoError(t, json.Unmarshal(out, &detail))
	assert.Equal(t, "25000", detail.Total.String())
	require.Len(t, detail.Lines, 1)
	assert.Equal(t, "Harina", detail.Lines[0].MaterialName)

	resp, out = f.call(t, http.MethodPost, "/api/issues", f.admin, map[string]any{
		"lines": []map[string]any{{"product_id": bread, "quantity": "3"}},
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode, string(out))
	var short dto.InsufficientStockResponse
	require.NoError(t, json.Unmarshal(out, &short))
	assert.Equal(t, "INSUFFICIENT_STOCK", short.Code)
	require.Len(t, short.Shortages, 1)
	assert.Equal(t, bread, short.Shortages[0].ItemID)
	assert.Equal(t, "3", short.Shortages[0].Missing.String())
}

func TestAPI_ProducirYReporte(t *testing.T) {
	f := newAPI(t)
	flour := f.create(t, "/api/materials", map[string]any{"name": "Harina", "unit": "kg", "unit_price": "2"})
	bread := f.create(t, "/api/products", map[string]any{"name": "Pan", "unit": "unidad", "price": "5"})
	recipe := f.create(t, "/api/recipes", map[string]any{
		"product_id": bread, "name": "Pan básico",
		"lines": []map[string]any{{"material_id": flour, "quantity": "0.5"}},
	})

	resp, out := f.call(t, http.MethodPost, "/api/production", f.admin, map[string]any{
		"product_id": bread, "recipe_id": recipe, "quantity": 4,
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode, string(out))

	f.create(t, "/api/receipts", map[string]any{"lines": []map[string]any{{"material_id": flour, "quantity": "2"}}})

	resp, out = f.call(t, http.MethodPost, "/api/production", f.admin, map[string]any{
		"product_id": bread, "recipe_id": recipe, "quantity": 4,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(out))

	resp, out = f.call(t, http.MethodGet, "/api/products/"+bread, f.staff, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var p dto.ProductResponse
	require.NoError(t, json.Unmarshal(out, &p))
	assert.Equal(t, "4", p.Stock.String())

	resp, _ = f.call(t, http.MethodGet, "/api/reports/stock.xlsx", f.staff, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "stock_20")
}

func TestAPI_ComprobantePDF(t *testing.T) {
	f := newAPI(t)
	flour := f.create(t, "/api/materials", map[string]any{"name": "Harina", "unit": "kg", "unit_price": "2"})
	id := f.create(t, "/api/receipts", map[string]any{"lines": []map[string]any{{"material_id": flour, "quantity": "2"}}})

	resp, out := f.call(t, http.MethodGet, "/api/receipts/"+id+"/pdf", f.staff, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "NK20260115001.pdf")
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestAPI_StaffNoPuedeEscribir(t *testing.T) {
	f := newAPI(t)
	resp, out := f.call(t, http.MethodPost, "/api/receipts", f.staff, map[string]any{"lines": []map[string]any{}})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, string(out), "FORBIDDEN")

	resp, _ = f.call(t, http.MethodGet, "/api/receipts", f.staff, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = f.call(t, http.MethodGet, "/api/receipts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_ErroresDeEntrada(t *testing.T) {
	f := newAPI(t)

	resp, out := f.call(t, http.MethodGet, "/api/receipts/no-es-uuid", f.staff, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(out), "VALIDATION")

	resp, out = f.call(t, http.MethodGet, "/api/issues/8b3c1a52-7a43-4c55-9b4e-2f1d0c9e6a10", f.staff, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(out), "NOT_FOUND")

	resp, out = f.call(t, http.MethodPost, "/api/receipts", f.admin, map[string]any{"lines": []map[string]any{}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(out), "VALIDATION")

	req := httptest.NewRequest(http.MethodPost, "/api/receipts", bytes.NewBufferString("{no json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", f.admin)
	r, err := f.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, r.StatusCode)
}

func TestAPI_LoginYPerfil(t *testing.T) {
	f := newAPI(t)
	created, err := f.authUC.EnsureAdmin(context.Background(), "jefe@taller.co", "clave-segura-1")
	require.NoError(t, err)
	require.True(t, created)

	resp, _ := f.call(t, http.MethodPost, "/api/auth/login", "", map[string]any{"email": "jefe@taller.co", "password": "mala-clave"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, out := f.call(t, http.MethodPost, "/api/auth/login", "", map[string]any{"email": "JEFE@taller.co", "password": "clave-segura-1"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(out))
	var login dto.LoginResponse
	require.NoError(t, json.Unmarshal(out, &login))
	require.NotEmpty(t, login.Token)

	resp, out = f.call(t, http.MethodGet, "/api/auth/me", "Bearer "+login.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me dto.UserResponse
	require.NoError(t, json.Unmarshal(out, &me))
	assert.Equal(t, "jefe@taller.co", me.Email)
	assert.Equal(t, "admin", me.Role)
}

func TestErrorHandler_OcultaDetalleInterno(t *testing.T) {
	for _, hide := range []bool{true, false} {
		app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(hide, logger.Nop())})
		app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("conexión a postgres perdida") })

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil), -1)
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Contains(t, string(body), "INTERNAL")
		assert.Equal(t, !hide, bytes.Contains(body, []byte("postgres")), "hide=%v", hide)
	}
}
