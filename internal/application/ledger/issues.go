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

const resourceIssue = "issue"

// CreateIssue registra una salida de productos. Si algún producto no alcanza se devuelve
// InsufficientStockError con todos los faltantes y no se escribe nada.
func (l *StockLedger) CreateIssue(ctx context.Context, userID string, req dto.CreateIssueRequest) (out *dto.DocumentCreatedResponse, err error) {
	defer l.track(OpCreateIssue, time.Now(), &err)
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	var issue *entity.Issue
	err = l.run(ctx, OpCreateIssue, func(r TxRepos) error {
		now := l.timestamp()
		change := inventory.StockChange{Apply: issueDeltas(req.Lines, decimal.NewFromInt(-1))}
		levels, err := applyChange(ctx, r.Products, entity.StockKindProduct, change, now)
		if err != nil {
			return err
		}
		code, err := l.nextCode(ctx, r.Sequences, entity.DocumentPrefixIssue, now)
		if err != nil {
			return err
		}
		issue = &entity.Issue{
			ID:        uuid.New().String(),
			Code:      code,
			Note:      req.Note,
			CreatedBy: userID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		issue.Lines, issue.Total = buildIssueLines(issue.ID, req.Lines, levels)
		if err := r.Issues.Create(ctx, issue); err != nil {
			return err
		}
		return r.Issues.CreateLines(ctx, issue.Lines)
	})
	if err != nil {
		return nil, err
	}
	l.log.Info().Str("op", OpCreateIssue).Str("id", issue.ID).Str("code", issue.Code).
		Int("lines", len(issue.Lines)).Str("total", issue.Total.String()).Msg("salida registrada")
	return &dto.DocumentCreatedResponse{ID: issue.ID, Code: issue.Code}, nil
}

// UpdateIssue modifica nota y/o líneas. La verificación de stock de las líneas nuevas se hace
// contra el stock ya revertido de las líneas anteriores.
func (l *StockLedger) UpdateIssue(ctx context.Context, id string, req dto.UpdateIssueRequest) (out *dto.IssueDetailResponse, err error) {
	defer l.track(OpUpdateIssue, time.Now(), &err)
	if err := dto.ValidateID("id", id); err != nil {
		return nil, err
	}
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	if req.Note == nil && req.Lines == nil {
		return nil, domain.NewValidationError("", "no hay cambios: envíe note y/o lines")
	}

	err = l.run(ctx, OpUpdateIssue, func(r TxRepos) error {
		issue, err := r.Issues.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if issue == nil {
			return domain.NewNotFoundError(resourceIssue, id)
		}
		now := l.timestamp()
		if req.Note != nil {
			issue.Note = *req.Note
		}
		if req.Lines != nil {
			old, err := r.Issues.GetLines(ctx, id)
			if err != nil {
				return err
			}
			change := inventory.StockChange{
				Reverse: issueLineDeltas(old, decimal.NewFromInt(1)),
				Apply:   issueDeltas(*req.Lines, decimal.NewFromInt(-1)),
			}
			levels, err := applyChange(ctx, r.Products, entity.StockKindProduct, change, now)
			if err != nil {
				return err
			}
			if err := r.Issues.DeleteLines(ctx, id); err != nil {
				return err
			}
			issue.Lines, issue.Total = buildIssueLines(id, *req.Lines, levels)
			if err := r.Issues.CreateLines(ctx, issue.Lines); err != nil {
				return err
			}
		}
		issue.UpdatedAt = now
		if err := r.Issues.UpdateHeader(ctx, issue); err != nil {
			return err
		}
		out, err = loadIssueDetail(ctx, r, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	l.log.Info().Str("op", OpUpdateIssue).Str("id", id).Str("code", out.Code).
		Bool("lines_replaced", req.Lines != nil).Msg("salida actualizada")
	return out, nil
}

// DeleteIssue devuelve al stock los productos de todas las líneas y elimina el documento.
func (l *StockLedger) DeleteIssue(ctx context.Context, id string) (err error) {
	defer l.track(OpDeleteIssue, time.Now(), &err)
	if err := dto.ValidateID("id", id); err != nil {
		return err
	}

	var code string
	err = l.run(ctx, OpDeleteIssue, func(r TxRepos) error {
		issue, err := r.Issues.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if issue == nil {
			return domain.NewNotFoundError(resourceIssue, id)
		}
		code = issue.Code
		lines, err := r.Issues.GetLines(ctx, id)
		if err != nil {
			return err
		}
		change := inventory.StockChange{Reverse: issueLineDeltas(lines, decimal.NewFromInt(1))}
		if _, err := applyChange(ctx, r.Products, entity.StockKindProduct, change, l.timestamp()); err != nil {
			return err
		}
		if err := r.Issues.DeleteLines(ctx, id); err != nil {
			return err
		}
		return r.Issues.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	l.log.Info().Str("op", OpDeleteIssue).Str("id", id).Str("code", code).Msg("salida eliminada")
	return nil
}

// GetIssueDetail cabecera y líneas con nombre y unidad del producto.
func (l *StockLedger) GetIssueDetail(ctx context.Context, id string) (out *dto.IssueDetailResponse, err error) {
	defer l.track(OpGetIssue, time.Now(), &err)
	if err := dto.ValidateID("id", id); err != nil {
		return nil, err
	}
	err = l.run(ctx, OpGetIssue, func(r TxRepos) error {
		out, err = loadIssueDetail(ctx, r, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListIssues listado paginado, más recientes primero.
func (l *StockLedger) ListIssues(ctx context.Context, page dto.PageRequest) (out *dto.DocumentListResponse, err error) {
	defer l.track(OpListIssues, time.Now(), &err)
	page.DefaultPage()
	var items []*entity.Issue
	err = l.run(ctx, OpListIssues, func(r TxRepos) error {
		items, err = r.Issues.List(ctx, page.Limit, page.Offset)
		return err
	})
	if err != nil {
		return nil, err
	}
	out = &dto.DocumentListResponse{
		Items: make([]dto.DocumentSummaryResponse, 0, len(items)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, is := range items {
		out.Items = append(out.Items, dto.DocumentSummaryResponse{
			ID: is.ID, Code: is.Code, Note: is.Note, Total: is.Total, CreatedBy: is.CreatedBy, CreatedAt: is.CreatedAt,
		})
	}
	return out, nil
}

func loadIssueDetail(ctx context.Context, r TxRepos, id string) (*dto.IssueDetailResponse, error) {
	issue, err := r.Issues.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if issue == nil {
		return nil, domain.NewNotFoundError(resourceIssue, id)
	}
	lines, err := r.Issues.GetLines(ctx, id)
	if err != nil {
		return nil, err
	}
	out := &dto.IssueDetailResponse{
		ID:        issue.ID,
		Code:      issue.Code,
		Note:      issue.Note,
		Total:     issue.Total,
		CreatedBy: issue.CreatedBy,
		CreatedAt: issue.CreatedAt,
		UpdatedAt: issue.UpdatedAt,
		Lines:     make([]dto.IssueLineResponse, 0, len(lines)),
	}
	for _, ln := range lines {
		out.Lines = append(out.Lines, dto.IssueLineResponse{
			ID:          ln.ID,
			ProductID:   ln.ProductID,
			ProductName: ln.ProductName,
			Unit:        ln.Unit,
			Quantity:    ln.Quantity,
			UnitPrice:   ln.UnitPrice,
			Amount:      ln.Amount,
		})
	}
	return out, nil
}

func issueDeltas(lines []dto.IssueLineInput, sign decimal.Decimal) *inventory.DeltaSet {
	set := inventory.NewDeltaSet()
	for _, ln := range lines {
		set.Add(ln.ProductID, ln.Quantity.Mul(sign))
	}
	return set
}

func issueLineDeltas(lines []*entity.IssueLine, sign decimal.Decimal) *inventory.DeltaSet {
	set := inventory.NewDeltaSet()
	for _, ln := range lines {
		set.Add(ln.ProductID, ln.Quantity.Mul(sign))
	}
	return set
}

// buildIssueLines arma las líneas con el precio de venta vigente (leído bajo lock) y devuelve el total.
func buildIssueLines(issueID string, in []dto.IssueLineInput, levels map[string]*entity.Stock) ([]*entity.IssueLine, decimal.Decimal) {
	lines := make([]*entity.IssueLine, 0, len(in))
	amounts := make([]decimal.Decimal, 0, len(in))
	for i, ln := range in {
		lvl := levels[ln.ProductID]
		amount := inventory.LineAmount(ln.Quantity, lvl.UnitPrice)
		lines = append(lines, &entity.IssueLine{
			ID:          uuid.New().String(),
			IssueID:     issueID,
			ProductID:   ln.ProductID,
			ProductName: lvl.Name,
			Unit:        lvl.Unit,
			Quantity:    ln.Quantity,
			UnitPrice:   lvl.UnitPrice,
			Amount:      amount,
			Position:    i + 1,
		})
		amounts = append(amounts, amount)
	}
	return lines, inventory.DocumentTotal(amounts)
}
