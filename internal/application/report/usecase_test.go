package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

type stubDocs struct {
	receipt *dto.ReceiptDetailResponse
	issue   *dto.IssueDetailResponse
}

func (s stubDocs) GetReceiptDetail(_ context.Context, id string) (*dto.ReceiptDetailResponse, error) {
	if s.receipt == nil || s.receipt.ID != id {
		return nil, domain.NewNotFoundError("receipt", id)
	}
	return s.receipt, nil
}

func (s stubDocs) GetIssueDetail(_ context.Context, id string) (*dto.IssueDetailResponse, error) {
	if s.issue == nil || s.issue.ID != id {
		return nil, domain.NewNotFoundError("issue", id)
	}
	return s.issue, nil
}

type stubStock struct {
	levels []*entity.Stock
	err    error
}

func (s stubStock) StockLevels(context.Context) ([]*entity.Stock, error) { return s.levels, s.err }

type capturePDF struct{ got *Voucher }

func (c *capturePDF) RenderVoucher(_ context.Context, v *Voucher, _ *time.Location) ([]byte, error) {
	c.got = v
	return []byte("%PDF"), nil
}

type captureXLSX struct {
	levels []*entity.Stock
	at     time.Time
}

func (c *captureXLSX) WriteStockReport(_ context.Context, levels []*entity.Stock, at time.Time) ([]byte, error) {
	c.levels, c.at = levels, at
	return []byte("PK"), nil
}

func TestReceiptVoucher(t *testing.T) {
	docs := stubDocs{receipt: &dto.ReceiptDetailResponse{
		ID: "r1", Code: "NK20260115001", Total: decimal.NewFromInt(300),
		Lines: []dto.ReceiptLineResponse{
			{MaterialName: "Harina", Unit: "kg", Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(20), Amount: decimal.NewFromInt(200)},
			{MaterialName: "Azúcar", Unit: "kg", Quantity: decimal.NewFromInt(5), UnitPrice: decimal.NewFromInt(20), Amount: decimal.NewFromInt(100)},
		},
	}}
	pdf := &capturePDF{}
	uc := NewUseCase(docs, stubStock{}, pdf, &captureXLSX{}, nil)

	b, name, err := uc.ReceiptVoucher(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(b))
	assert.Equal(t, "NK20260115001.pdf", name)
	require.NotNil(t, pdf.got)
	assert.Equal(t, VoucherReceipt, pdf.got.Title)
	require.Len(t, pdf.got.Lines, 2)
	assert.Equal(t, 2, pdf.got.Lines[1].Position)
	assert.Equal(t, "Azúcar", pdf.got.Lines[1].Name)
}

func TestIssueVoucher_NoExiste(t *testing.T) {
	uc := NewUseCase(stubDocs{}, stubStock{}, &capturePDF{}, &captureXLSX{}, nil)

	_, _, err := uc.IssueVoucher(context.Background(), "x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStockReport_NombreEnHoraLocal(t *testing.T) {
	loc := time.FixedZone("ICT", 7*3600)
	xlsx := &captureXLSX{}
	levels := []*entity.Stock{{ItemID: "m1", Kind: entity.StockKindMaterial, Name: "Harina"}}
	uc := NewUseCase(stubDocs{}, stubStock{levels: levels}, &capturePDF{}, xlsx, loc)
	uc.now = func() time.Time { return time.Date(2026, 1, 15, 20, 0, 0, 0, time.UTC) }

	_, name, err := uc.StockReport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "stock_20260116_030000.xlsx", name)
	assert.Len(t, xlsx.levels, 1)
	assert.Equal(t, loc, xlsx.at.Location())
}

func TestStockReport_ErrorDeLectura(t *testing.T) {
	boom := errors.New("boom")
	uc := NewUseCase(stubDocs{}, stubStock{err: boom}, &capturePDF{}, &captureXLSX{}, nil)

	_, _, err := uc.StockReport(context.Background())
	assert.ErrorIs(t, err, boom)
}
