package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/Produccion-api/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isForeignKeyViolation verifica si un error es una violación de clave foránea (23503).
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503" // foreign_key_violation
	}
	return false
}

// writeError traduce violaciones de constraints a errores de dominio; el resto se envuelve con op.
func writeError(op string, err error) error {
	switch {
	case isUniqueViolation(err):
		return domain.ErrDuplicate
	case isForeignKeyViolation(err):
		return domain.ErrConflict
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// execBatch envía todas las sentencias del batch y devuelve el primer error.
func execBatch(ctx context.Context, q Querier, b *pgx.Batch, op string) error {
	if b.Len() == 0 {
		return nil
	}
	res := q.SendBatch(ctx, b)
	for i := 0; i < b.Len(); i++ {
		if _, err := res.Exec(); err != nil {
			_ = res.Close()
			return writeError(op, err)
		}
	}
	if err := res.Close(); err != nil {
		return writeError(op, err)
	}
	return nil
}
