package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

// ReceiptRepository define el puerto de persistencia para entradas de materiales.
type ReceiptRepository interface {
	Create(ctx context.Context, receipt *entity.Receipt) error
	CreateLines(ctx context.Context, lines []*entity.ReceiptLine) error
	GetByID(ctx context.Context, id string) (*entity.Receipt, error)
	// GetForUpdate bloquea la cabecera para serializar modificaciones concurrentes del mismo documento.
	GetForUpdate(ctx context.Context, id string) (*entity.Receipt, error)
	GetLines(ctx context.Context, receiptID string) ([]*entity.ReceiptLine, error)
	// UpdateHeader actualiza nota, total y updated_at.
	UpdateHeader(ctx context.Context, receipt *entity.Receipt) error
	DeleteLines(ctx context.Context, receiptID string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset int) ([]*entity.Receipt, error)
}

// IssueRepository define el puerto de persistencia para salidas de productos.
type IssueRepository interface {
	Create(ctx context.Context, issue *entity.Issue) error
	CreateLines(ctx context.Context, lines []*entity.IssueLine) error
	GetByID(ctx context.Context, id string) (*entity.Issue, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Issue, error)
	GetLines(ctx context.Context, issueID string) ([]*entity.IssueLine, error)
	UpdateHeader(ctx context.Context, issue *entity.Issue) error
	DeleteLines(ctx context.Context, issueID string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset int) ([]*entity.Issue, error)
}

// SequenceRepository consecutivo diario de documentos por prefijo.
type SequenceRepository interface {
	// Next incrementa y devuelve el consecutivo de (prefix, day) dentro de la transacción actual.
	Next(ctx context.Context, prefix string, day time.Time) (int, error)
}
