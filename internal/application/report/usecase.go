package report

import (
	"context"
	"fmt"
	"time"
)

// UseCase comprobantes PDF y reporte de stock en Excel. Solo lectura.
type UseCase struct {
	docs  DocumentSource
	stock StockSource
	pdf   VoucherRenderer
	xlsx  StockSheetWriter
	loc   *time.Location
	now   func() time.Time
}

// NewUseCase construye el caso de uso. loc es la zona horaria en que se imprimen las fechas.
func NewUseCase(docs DocumentSource, stock StockSource, pdf VoucherRenderer, xlsx StockSheetWriter, loc *time.Location) *UseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &UseCase{docs: docs, stock: stock, pdf: pdf, xlsx: xlsx, loc: loc, now: time.Now}
}

// ReceiptVoucher PDF de una entrada. Devuelve los bytes y el nombre de archivo (<código>.pdf).
func (uc *UseCase) ReceiptVoucher(ctx context.Context, id string) ([]byte, string, error) {
	rc, err := uc.docs.GetReceiptDetail(ctx, id)
	if err != nil {
		return nil, "", err
	}
	v := &Voucher{
		Title: VoucherReceipt, Code: rc.Code, Note: rc.Note, CreatedBy: rc.CreatedBy,
		CreatedAt: rc.CreatedAt, Total: rc.Total,
	}
	for i, ln := range rc.Lines {
		v.Lines = append(v.Lines, VoucherLine{
			Position: i + 1, Name: ln.MaterialName, Unit: ln.Unit,
			Quantity: ln.Quantity, UnitPrice: ln.UnitPrice, Amount: ln.Amount,
		})
	}
	return uc.render(ctx, v)
}

// IssueVoucher PDF de una salida.
func (uc *UseCase) IssueVoucher(ctx context.Context, id string) ([]byte, string, error) {
	is, err := uc.docs.GetIssueDetail(ctx, id)
	if err != nil {
		return nil, "", err
	}
	v := &Voucher{
		Title: VoucherIssue, Code: is.Code, Note: is.Note, CreatedBy: is.CreatedBy,
		CreatedAt: is.CreatedAt, Total: is.Total,
	}
	for i, ln := range is.Lines {
		v.Lines = append(v.Lines, VoucherLine{
			Position: i + 1, Name: ln.ProductName, Unit: ln.Unit,
			Quantity: ln.Quantity, UnitPrice: ln.UnitPrice, Amount: ln.Amount,
		})
	}
	return uc.render(ctx, v)
}

func (uc *UseCase) render(ctx context.Context, v *Voucher) ([]byte, string, error) {
	b, err := uc.pdf.RenderVoucher(ctx, v, uc.loc)
	if err != nil {
		return nil, "", fmt.Errorf("report: voucher %s: %w", v.Code, err)
	}
	return b, v.Code + ".pdf", nil
}

// StockReport libro Excel con el stock actual. Nombre: stock_YYYYMMDD_HHMMSS.xlsx (hora local del negocio).
func (uc *UseCase) StockReport(ctx context.Context) ([]byte, string, error) {
	levels, err := uc.stock.StockLevels(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("report: stock levels: %w", err)
	}
	at := uc.now().In(uc.loc)
	b, err := uc.xlsx.WriteStockReport(ctx, levels, at)
	if err != nil {
		return nil, "", fmt.Errorf("report: stock workbook: %w", err)
	}
	return b, fmt.Sprintf("stock_%s.xlsx", at.Format("20060102_150405")), nil
}
