package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
)

var (
	_ repository.ReceiptRepository  = (*ReceiptRepo)(nil)
	_ repository.IssueRepository    = (*IssueRepo)(nil)
	_ repository.SequenceRepository = (*SequenceRepo)(nil)
)

// ReceiptRepo implementación de ReceiptRepository (usable con pool o tx).
type ReceiptRepo struct {
	q Querier
}

// NewReceiptRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReceiptRepository(q Querier) *ReceiptRepo {
	return &ReceiptRepo{q: q}
}

// Create persiste la cabecera. Un código repetido devuelve ErrDuplicate.
func (r *ReceiptRepo) Create(ctx context.Context, rc *entity.Receipt) error {
	query := `
		INSERT INTO receipts (id, code, note, total, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, rc.ID, rc.Code, rc.Note, rc.Total, rc.CreatedBy, rc.CreatedAt, rc.UpdatedAt)
	if err != nil {
		return writeError("insert receipt", err)
	}
	return nil
}

// CreateLines persiste las líneas en un solo batch.
func (r *ReceiptRepo) CreateLines(ctx context.Context, lines []*entity.ReceiptLine) error {
	b := &pgx.Batch{}
	for _, ln := range lines {
		b.Queue(`
			INSERT INTO receipt_lines (id, receipt_id, material_id, quantity, unit_price, amount, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			ln.ID, ln.ReceiptID, ln.MaterialID, ln.Quantity, ln.UnitPrice, ln.Amount, ln.Position)
	}
	return execBatch(ctx, r.q, b, "insert receipt lines")
}

const receiptColumns = `id, code, note, total, created_by, created_at, updated_at`

func scanReceipt(row pgx.Row) (*entity.Receipt, error) {
	var rc entity.Receipt
	if err := row.Scan(&rc.ID, &rc.Code, &rc.Note, &rc.Total, &rc.CreatedBy, &rc.CreatedAt, &rc.UpdatedAt); err != nil {
		return nil, err
	}
	return &rc, nil
}

// GetByID obtiene la cabecera. nil si no existe.
func (r *ReceiptRepo) GetByID(ctx context.Context, id string) (*entity.Receipt, error) {
	return r.get(ctx, `SELECT `+receiptColumns+` FROM receipts WHERE id = $1`, id)
}

// GetForUpdate obtiene la cabecera bloqueándola (SELECT FOR UPDATE).
func (r *ReceiptRepo) GetForUpdate(ctx context.Context, id string) (*entity.Receipt, error) {
	return r.get(ctx, `SELECT `+receiptColumns+` FROM receipts WHERE id = $1 FOR UPDATE`, id)
}

func (r *ReceiptRepo) get(ctx context.Context, query, id string) (*entity.Receipt, error) {
	rc, err := scanReceipt(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get receipt: %w", err)
	}
	return rc, nil
}

// GetLines líneas del documento con nombre y unidad del material.
func (r *ReceiptRepo) GetLines(ctx context.Context, receiptID string) ([]*entity.ReceiptLine, error) {
	query := `
		SELECT l.id, l.receipt_id, l.material_id, m.name, m.unit, l.quantity, l.unit_price, l.amount, l.position
		FROM receipt_lines l
		JOIN materials m ON m.id = l.material_id
		WHERE l.receipt_id = $1
		ORDER BY l.position`
	rows, err := r.q.Query(ctx, query, receiptID)
	if err != nil {
		return nil, fmt.Errorf("list receipt lines: %w", err)
	}
	defer rows.Close()
	var list []*entity.ReceiptLine
	for rows.Next() {
		var ln entity.ReceiptLine
		if err := rows.Scan(&ln.ID, &ln.ReceiptID, &ln.MaterialID, &ln.MaterialName, &ln.Unit,
			&ln.Quantity, &ln.UnitPrice, &ln.Amount, &ln.Position); err != nil {
			return nil, fmt.Errorf("scan receipt line: %w", err)
		}
		list = append(list, &ln)
	}
	return list, rows.Err()
}

// UpdateHeader actualiza nota, total y updated_at.
func (r *ReceiptRepo) UpdateHeader(ctx context.Context, rc *entity.Receipt) error {
	tag, err := r.q.Exec(ctx, `UPDATE receipts SET note = $2, total = $3, updated_at = $4 WHERE id = $1`,
		rc.ID, rc.Note, rc.Total, rc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update receipt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteLines elimina todas las líneas del documento.
func (r *ReceiptRepo) DeleteLines(ctx context.Context, receiptID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM receipt_lines WHERE receipt_id = $1`, receiptID); err != nil {
		return fmt.Errorf("delete receipt lines: %w", err)
	}
	return nil
}

// Delete elimina la cabecera (las líneas caen por CASCADE).
func (r *ReceiptRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM receipts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete receipt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List cabeceras, la más reciente primero.
func (r *ReceiptRepo) List(ctx context.Context, limit, offset int) ([]*entity.Receipt, error) {
	query := `SELECT ` + receiptColumns + ` FROM receipts ORDER BY created_at DESC, code DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	defer rows.Close()
	var list []*entity.Receipt
	for rows.Next() {
		rc, err := scanReceipt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan receipt: %w", err)
		}
		list = append(list, rc)
	}
	return list, rows.Err()
}

// IssueRepo implementación de IssueRepository (usable con pool o tx).
type IssueRepo struct {
	q Querier
}

// NewIssueRepository construye el adaptador. Pasar pool o tx (Querier).
func NewIssueRepository(q Querier) *IssueRepo {
	return &IssueRepo{q: q}
}

func (r *IssueRepo) Create(ctx context.Context, is *entity.Issue) error {
	query := `
		INSERT INTO issues (id, code, note, total, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, is.ID, is.Code, is.Note, is.Total, is.CreatedBy, is.CreatedAt, is.UpdatedAt)
	if err != nil {
		return writeError("insert issue", err)
	}
	return nil
}

func (r *IssueRepo) CreateLines(ctx context.Context, lines []*entity.IssueLine) error {
	b := &pgx.Batch{}
	for _, ln := range lines {
		b.Queue(`
			INSERT INTO issue_lines (id, issue_id, product_id, quantity, unit_price, amount, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			ln.ID, ln.IssueID, ln.ProductID, ln.Quantity, ln.UnitPrice, ln.Amount, ln.Position)
	}
	return execBatch(ctx, r.q, b, "insert issue lines")
}

const issueColumns = `id, code, note, total, created_by, created_at, updated_at`

func scanIssue(row pgx.Row) (*entity.Issue, error) {
	var is entity.Issue
	if err := row.Scan(&is.ID, &is.Code, &is.Note, &is.Total, &is.CreatedBy, &is.CreatedAt, &is.UpdatedAt); err != nil {
		return nil, err
	}
	return &is, nil
}

func (r *IssueRepo) GetByID(ctx context.Context, id string) (*entity.Issue, error) {
	return r.get(ctx, `SELECT `+issueColumns+` FROM issues WHERE id = $1`, id)
}

func (r *IssueRepo) GetForUpdate(ctx context.Context, id string) (*entity.Issue, error) {
	return r.get(ctx, `SELECT `+issueColumns+` FROM issues WHERE id = $1 FOR UPDATE`, id)
}

func (r *IssueRepo) get(ctx context.Context, query, id string) (*entity.Issue, error) {
	is, err := scanIssue(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get issue: %w", err)
	}
	return is, nil
}

func (r *IssueRepo) GetLines(ctx context.Context, issueID string) ([]*entity.IssueLine, error) {
	query := `
		SELECT l.id, l.issue_id, l.product_id, p.name, p.unit, l.quantity, l.unit_price, l.amount, l.position
		FROM issue_lines l
		JOIN products p ON p.id = l.product_id
		WHERE l.issue_id = $1
		ORDER BY l.position`
	rows, err := r.q.Query(ctx, query, issueID)
	if err != nil {
		return nil, fmt.Errorf("list issue lines: %w", err)
	}
	defer rows.Close()
	var list []*entity.IssueLine
	for rows.Next() {
		var ln entity.IssueLine
		if err := rows.Scan(&ln.ID, &ln.IssueID, &ln.ProductID, &ln.ProductName, &ln.Unit,
			&ln.Quantity, &ln.UnitPrice, &ln.Amount, &ln.Position); err != nil {
			return nil, fmt.Errorf("scan issue line: %w", err)
		}
		list = append(list, &ln)
	}
	return list, rows.Err()
}

func (r *IssueRepo) UpdateHeader(ctx context.Context, is *entity.Issue) error {
	tag, err := r.q.Exec(ctx, `UPDATE issues SET note = $2, total = $3, updated_at = $4 WHERE id = $1`,
		is.ID, is.Note, is.Total, is.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update issue: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *IssueRepo) DeleteLines(ctx context.Context, issueID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM issue_lines WHERE issue_id = $1`, issueID); err != nil {
		return fmt.Errorf("delete issue lines: %w", err)
	}
	return nil
}

func (r *IssueRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM issues WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete issue: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *IssueRepo) List(ctx context.Context, limit, offset int) ([]*entity.Issue, error) {
	query := `SELECT ` + issueColumns + ` FROM issues ORDER BY created_at DESC, code DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	defer rows.Close()
	var list []*entity.Issue
	for rows.Next() {
		is, err := scanIssue(rows)
		if err != nil {
			return nil, fmt.Errorf("scan issue: %w", err)
		}
		list = append(list, is)
	}
	return list, rows.Err()
}

// SequenceRepo consecutivo diario en document_sequences. Participa de la tx del documento:
// si la tx hace rollback el número no se consume.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador sobre una tx.
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// Next incrementa (o crea en 1) el contador de (prefix, day). La fila queda bloqueada hasta el fin de la tx.
func (r *SequenceRepo) Next(ctx context.Context, prefix string, day time.Time) (int, error) {
	query := `
		INSERT INTO document_sequences (prefix, day, last_value)
		VALUES ($1, $2::date, 1)
		ON CONFLICT (prefix, day) DO UPDATE SET last_value = document_sequences.last_value + 1
		RETURNING last_value`
	var n int
	if err := r.q.QueryRow(ctx, query, prefix, day.Format("2006-01-02")).Scan(&n); err != nil {
		return 0, fmt.Errorf("next sequence %s: %w", prefix, err)
	}
	return n, nil
}
