package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

// Títulos de comprobante.
const (
	VoucherReceipt = "COMPROBANTE DE ENTRADA DE MATERIALES"
	VoucherIssue   = "COMPROBANTE DE SALIDA DE PRODUCTOS"
)

// Voucher datos planos de un comprobante imprimible (entrada o salida).
type Voucher struct {
	Title     string
	Code      string
	Note      string
	CreatedBy string
	CreatedAt time.Time
	Lines     []VoucherLine
	Total     decimal.Decimal
}

// VoucherLine fila del comprobante.
type VoucherLine struct {
	Position  int
	Name      string
	Unit      string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Amount    decimal.Decimal
}

// DocumentSource lectura de documentos (implementado por ledger.StockLedger).
type DocumentSource interface {
	GetReceiptDetail(ctx context.Context, id string) (*dto.ReceiptDetailResponse, error)
	GetIssueDetail(ctx context.Context, id string) (*dto.IssueDetailResponse, error)
}

// StockSource stock actual de materiales y productos.
type StockSource interface {
	StockLevels(ctx context.Context) ([]*entity.Stock, error)
}

// VoucherRenderer genera el PDF de un comprobante.
type VoucherRenderer interface {
	RenderVoucher(ctx context.Context, v *Voucher, loc *time.Location) ([]byte, error)
}

// StockSheetWriter genera el libro Excel del reporte de stock.
type StockSheetWriter interface {
	WriteStockReport(ctx context.Context, levels []*entity.Stock, at time.Time) ([]byte, error)
}
