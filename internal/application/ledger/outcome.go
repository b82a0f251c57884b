package ledger

import (
	"errors"

	"github.com/jhoicas/Produccion-api/internal/domain"
)

// Nombres de operación (etiqueta "op" en métricas y logs).
const (
	OpCreateReceipt   = "create_receipt"
	OpUpdateReceipt   = "update_receipt"
	OpDeleteReceipt   = "delete_receipt"
	OpGetReceipt      = "get_receipt"
	OpListReceipts    = "list_receipts"
	OpCreateIssue     = "create_issue"
	OpUpdateIssue     = "update_issue"
	OpDeleteIssue     = "delete_issue"
	OpGetIssue        = "get_issue"
	OpListIssues      = "list_issues"
	OpProduce         = "produce"
	OpListProductions = "list_productions"
)

// Resultados posibles de una operación.
const (
	OutcomeOK                = "ok"
	OutcomeValidation        = "validation"
	OutcomeNotFound          = "not_found"
	OutcomeInsufficientStock = "insufficient_stock"
	OutcomeConflict          = "conflict"
	OutcomeStorage           = "storage"
)

// Outcome clasifica err en una de las etiquetas Outcome*.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, domain.ErrInvalidInput):
		return OutcomeValidation
	case errors.Is(err, domain.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, domain.ErrInsufficientStock):
		return OutcomeInsufficientStock
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrDuplicate):
		return OutcomeConflict
	default:
		return OutcomeStorage
	}
}
