package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/inventory"
)

const resourceReceipt = "receipt"

// CreateReceipt registra una entrada de materiales: suma stock, toma el precio vigente de cada material,
// calcula el total y genera el código NK en la misma transacción.
func (l *StockLedger) CreateReceipt(ctx context.Context, userID string, req dto.CreateReceiptRequest) (out *dto.DocumentCreatedResponse, err error) {
	defer l.track(OpCreateReceipt, time.Now(), &err)
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	var receipt *entity.Receipt
	err = l.run(ctx, OpCreateReceipt, func(r TxRepos) error {
		now := l.timestamp()
		change := inventory.StockChange{Apply: receiptDeltas(req.Lines, decimal.NewFromInt(1))}
		levels, err := applyChange(ctx, r.Materials, entity.StockKindMaterial, change, now)
		if err != nil {
			return err
		}
		code, err := l.nextCode(ctx, r.Sequences, entity.DocumentPrefixReceipt, now)
		if err != nil {
			return err
		}
		receipt = &entity.Receipt{
			ID:        uuid.New().String(),
			Code:      code,
			Note:      req.Note,
			CreatedBy: userID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		receipt.Lines, receipt.Total = buildReceiptLines(receipt.ID, req.Lines, levels)
		if err := r.Receipts.Create(ctx, receipt); err != nil {
			return err
		}
		return r.Receipts.CreateLines(ctx, receipt.Lines)
	})
	if err != nil {
		return nil, err
	}
	l.log.Info().Str("op", OpCreateReceipt).Str("id", receipt.ID).Str("code", receipt.Code).
		Int("lines", len(receipt.Lines)).Str("total", receipt.Total.String()).Msg("entrada registrada")
	return &dto.DocumentCreatedResponse{ID: receipt.ID, Code: receipt.Code}, nil
}

// UpdateReceipt modifica nota y/o líneas. Con líneas: revierte las anteriores, aplica las nuevas
// con el precio vigente y recalcula el total. Sin líneas solo cambia la nota.
func (l *StockLedger) UpdateReceipt(ctx context.Context, id string, req dto.UpdateReceiptRequest) (out *dto.ReceiptDetailResponse, err error) {
	defer l.track(OpUpdateReceipt, time.Now(), &err)
	if err := dto.ValidateID("id", id); err != nil {
		return nil, err
	}
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	if req.Note == nil && req.Lines == nil {
		return nil, domain.NewValidationError("", "no hay cambios: envíe note y/o lines")
	}

	err = l.run(ctx, OpUpdateReceipt, func(r TxRepos) error {
		receipt, err := r.Receipts.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if receipt == nil {
			return domain.NewNotFoundError(resourceReceipt, id)
		}
		now := l.timestamp()
		if req.Note != nil {
			receipt.Note = *req.Note
		}
		if req.Lines != nil {
			old, err := r.Receipts.GetLines(ctx, id)
			if err != nil {
				return err
			}
			change := inventory.StockChange{
				Reverse: receiptLineDeltas(old, decimal.NewFromInt(-1)),
				Apply:   receiptDeltas(*req.Lines, decimal.NewFromInt(1)),
			}
			levels, err := applyChange(ctx, r.Materials, entity.StockKindMaterial, change, now)
			if err != nil {
				return err
			}
			if err := r.Receipts.DeleteLines(ctx, id); err != nil {
				return err
			}
			receipt.Lines, receipt.Total = buildReceiptLines(id, *req.Lines, levels)
			if err := r.Receipts.CreateLines(ctx, receipt.Lines); err != nil {
				return err
			}
		}
		receipt.UpdatedAt = now
		if err := r.Receipts.UpdateHeader(ctx, receipt); err != nil {
			return err
		}
		out, err = loadReceiptDetail(ctx, r, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	l.log.Info().Str("op", OpUpdateReceipt).Str("id", id).Str("code", out.Code).
		Bool("lines_replaced", req.Lines != nil).Msg("entrada actualizada")
	return out, nil
}

// DeleteReceipt revierte el stock de todas las líneas y elimina el documento.
// Falla con InsufficientStockError si el material recibido ya se consumió.
func (l *StockLedger) DeleteReceipt(ctx context.Context, id string) (err error) {
	defer l.track(OpDeleteReceipt, time.Now(), &err)
	if err := dto.ValidateID("id", id); err != nil {
		return err
	}

	var code string
	err = l.run(ctx, OpDeleteReceipt, func(r TxRepos) error {
		receipt, err := r.Receipts.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if receipt == nil {
			return domain.NewNotFoundError(resourceReceipt, id)
		}
		code = receipt.Code
		lines, err := r.Receipts.GetLines(ctx, id)
		if err != nil {
			return err
		}
		change := inventory.StockChange{Reverse: receiptLineDeltas(lines, decimal.NewFromInt(-1))}
		if _, err := applyChange(ctx, r.Materials, entity.StockKindMaterial, change, l.timestamp()); err != nil {
			return err
		}
		if err := r.Receipts.DeleteLines(ctx, id); err != nil {
			return err
		}
		return r.Receipts.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	l.log.Info().Str("op", OpDeleteReceipt).Str("id", id).Str("code", code).Msg("entrada eliminada")
	return nil
}

// GetReceiptDetail cabecera y líneas con nombre y unidad del material.
func (l *StockLedger) GetReceiptDetail(ctx context.Context, id string) (out *dto.ReceiptDetailResponse, err error) {
	defer l.track(OpGetReceipt, time.Now(), &err)
	if err := dto.ValidateID("id", id); err != nil {
		return nil, err
	}
	err = l.run(ctx, OpGetReceipt, func(r TxRepos) error {
		out, err = loadReceiptDetail(ctx, r, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListReceipts listado paginado, más recientes primero.
func (l *StockLedger) ListReceipts(ctx context.Context, page dto.PageRequest) (out *dto.DocumentListResponse, err error) {
	defer l.track(OpListReceipts, time.Now(), &err)
	page.DefaultPage()
	var items []*entity.Receipt
	err = l.run(ctx, OpListReceipts, func(r TxRepos) error {
		items, err = r.Receipts.List(ctx, page.Limit, page.Offset)
		return err
	})
	if err != nil {
		return nil, err
	}
	out = &dto.DocumentListResponse{
		Items: make([]dto.DocumentSummaryResponse, 0, len(items)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, rc := range items {
		out.Items = append(out.Items, dto.DocumentSummaryResponse{
			ID: rc.ID, Code: rc.Code, Note: rc.Note, Total: rc.Total, CreatedBy: rc.CreatedBy, CreatedAt: rc.CreatedAt,
		})
	}
	return out, nil
}

func loadReceiptDetail(ctx context.Context, r TxRepos, id string) (*dto.ReceiptDetailResponse, error) {
	receipt, err := r.Receipts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, domain.NewNotFoundError(resourceReceipt, id)
	}
	lines, err := r.Receipts.GetLines(ctx, id)
	if err != nil {
		return nil, err
	}
	out := &dto.ReceiptDetailResponse{
		ID:        receipt.ID,
		Code:      receipt.Code,
		Note:      receipt.Note,
		Total:     receipt.Total,
		CreatedBy: receipt.CreatedBy,
		CreatedAt: receipt.CreatedAt,
		UpdatedAt: receipt.UpdatedAt,
		Lines:     make([]dto.ReceiptLineResponse, 0, len(lines)),
	}
	for _, ln := range lines {
		out.Lines = append(out.Lines, dto.ReceiptLineResponse{
			ID:           ln.ID,
			MaterialID:   ln.MaterialID,
			MaterialName: ln.MaterialName,
			Unit:         ln.Unit,
			Quantity:     ln.Quantity,
			UnitPrice:    ln.UnitPrice,
			Amount:       ln.Amount,
		})
	}
	return out, nil
}

// receiptDeltas variación por material de las líneas de entrada, multiplicada por sign.
func receiptDeltas(lines []dto.ReceiptLineInput, sign decimal.Decimal) *inventory.DeltaSet {
	set := inventory.NewDeltaSet()
	for _, ln := range lines {
		set.Add(ln.MaterialID, ln.Quantity.Mul(sign))
	}
	return set
}

func receiptLineDeltas(lines []*entity.ReceiptLine, sign decimal.Decimal) *inventory.DeltaSet {
	set := inventory.NewDeltaSet()
	for _, ln := range lines {
		set.Add(ln.MaterialID, ln.Quantity.Mul(sign))
	}
	return set
}

// buildReceiptLines arma las líneas con el precio vigente del material (leído bajo lock) y devuelve el total.
func buildReceiptLines(receiptID string, in []dto.ReceiptLineInput, levels map[string]*entity.Stock) ([]*entity.ReceiptLine, decimal.Decimal) {
	lines := make([]*entity.ReceiptLine, 0, len(in))
	amounts := make([]decimal.Decimal, 0, len(in))
	for i, ln := range in {
		lvl := levels[ln.MaterialID]
		amount := inventory.LineAmount(ln.Quantity, lvl.UnitPrice)
		lines = append(lines, &entity.ReceiptLine{
			ID:           uuid.New().String(),
			ReceiptID:    receiptID,
			MaterialID:   ln.MaterialID,
			MaterialName: lvl.Name,
			Unit:         lvl.Unit,
			Quantity:     ln.Quantity,
			UnitPrice:    lvl.UnitPrice,
			Amount:       amount,
			Position:     i + 1,
		})
		amounts = append(amounts, amount)
	}
	return lines, inventory.DocumentTotal(amounts)
}
