package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Produccion-api/internal/application/report"
)

func TestRenderVoucher(t *testing.T) {
	g := NewMarotoVoucherGenerator("Taller Central")
	v := &report.Voucher{
		Title:     report.VoucherReceipt,
		Code:      "NK20260115001",
		Note:      "Compra semanal",
		CreatedAt: time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC),
		Total:     decimal.NewFromInt(250000),
		Lines: []report.VoucherLine{
			{Position: 1, Name: "Harina", Unit: "kg", Quantity: decimal.NewFromInt(100), UnitPrice: decimal.NewFromInt(2500), Amount: decimal.NewFromInt(250000)},
		},
	}

	b, err := g.RenderVoucher(context.Background(), v, time.UTC)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF")))
}

func TestRenderVoucher_SinLineas(t *testing.T) {
	g := NewMarotoVoucherGenerator("")
	b, err := g.RenderVoucher(context.Background(), &report.Voucher{Title: report.VoucherIssue, Code: "XK20260115001"}, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, b)
}
