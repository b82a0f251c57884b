package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/pkg/logger"
)

// StockLedger es el único componente que modifica el stock de materiales y productos.
// Cada operación corre en una sola transacción: líneas, stock, total y código se confirman juntos
// o no se confirma nada.
type StockLedger struct {
	tx  TxRunner
	log *logger.Logger
	obs Observer
	loc *time.Location
	now func() time.Time
}

// Option configura un StockLedger.
type Option func(*StockLedger)

// WithObserver registra un observador de operaciones (métricas).
func WithObserver(o Observer) Option {
	return func(l *StockLedger) {
		if o != nil {
			l.obs = o
		}
	}
}

// WithLocation zona horaria del día hábil usado en los códigos de documento.
func WithLocation(loc *time.Location) Option {
	return func(l *StockLedger) {
		if loc != nil {
			l.loc = loc
		}
	}
}

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(l *StockLedger) {
		if now != nil {
			l.now = now
		}
	}
}

// NewStockLedger construye el libro de stock sobre un TxRunner.
func NewStockLedger(tx TxRunner, log *logger.Logger, opts ...Option) *StockLedger {
	if log == nil {
		log = logger.Nop()
	}
	l := &StockLedger{
		tx:  tx,
		log: log,
		obs: nopObserver{},
		loc: time.UTC,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// run ejecuta fn en una transacción. Los errores que no pertenecen al dominio se envuelven en StorageError.
func (l *StockLedger) run(ctx context.Context, op string, fn func(TxRepos) error) error {
	err := l.tx.Run(ctx, fn)
	if err != nil && !domain.IsKnown(err) {
		return &domain.StorageError{Op: op, Err: err}
	}
	return err
}

// track registra la observación y loguea los fallos de almacenamiento. Se usa con defer.
func (l *StockLedger) track(op string, start time.Time, errp *error) {
	err := *errp
	l.obs.Observe(op, Outcome(err), time.Since(start))
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrStorage):
		l.log.Op(op).Error().Err(err).Msg("ledger: fallo de almacenamiento")
	case errors.Is(err, domain.ErrInsufficientStock):
		l.log.Op(op).Debug().Err(err).Msg("ledger: stock insuficiente")
	}
}

// timestamp hora actual truncada a microsegundos (precisión de TIMESTAMPTZ).
func (l *StockLedger) timestamp() time.Time {
	return l.now().UTC().Truncate(time.Microsecond)
}
