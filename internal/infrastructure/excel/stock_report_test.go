package excel

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

func TestWriteStockReport(t *testing.T) {
	at := time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC)
	levels := []*entity.Stock{
		{ItemID: "m1", Kind: entity.StockKindMaterial, Name: "Harina", Unit: "kg",
			Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(2), UpdatedAt: at},
		{ItemID: "p1", Kind: entity.StockKindProduct, Name: "Pan", Unit: "unidad",
			Quantity: decimal.RequireFromString("2.5"), UnitPrice: decimal.NewFromInt(4), UpdatedAt: at},
	}

	b, err := NewStockReportWriter().WriteStockReport(context.Background(), levels, at)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 6)
	assert.Equal(t, "Tipo", rows[2][0])
	assert.Equal(t, []string{"Material", "m1", "Harina", "kg", "10", "2", "20", "2026-01-15 09:30"}, rows[3])
	assert.Equal(t, "Producto", rows[4][0])
	assert.Equal(t, "10", rows[4][6])

	formula, err := f.GetCellFormula(sheetName, "G6")
	require.NoError(t, err)
	assert.Equal(t, "SUM(G4:G5)", formula)
}

func TestWriteStockReport_Vacio(t *testing.T) {
	b, err := NewStockReportWriter().WriteStockReport(context.Background(), nil, time.Now())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}
