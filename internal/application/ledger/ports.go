package ledger

import (
	"context"
	"time"

	"github.com/jhoicas/Produccion-api/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción. Es la única vía para obtener un StockRepository.
type TxRepos struct {
	Materials   repository.StockRepository
	Products    repository.StockRepository
	Recipes     repository.RecipeRepository
	Receipts    repository.ReceiptRepository
	Issues      repository.IssueRepository
	Productions repository.ProductionRepository
	Sequences   repository.SequenceRepository
}

// TxRunner ejecuta fn dentro de una transacción: Commit si fn devuelve nil, Rollback en cualquier otro caso.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos TxRepos) error) error
}

// Observer recibe una observación por operación del libro de stock (métricas).
type Observer interface {
	Observe(op, outcome string, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) Observe(string, string, time.Duration) {}
