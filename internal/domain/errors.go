package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrStorage            = errors.New("error de almacenamiento")
)

// ValidationError entrada mal formada; se rechaza antes de abrir cualquier transacción.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrInvalidInput, e.Reason)
	}
	return fmt.Sprintf("%s: %s %s", ErrInvalidInput, e.Field, e.Reason)
}

// Unwrap permite errors.Is(err, ErrInvalidInput).
func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NewValidationError atajo para construir un ValidationError.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError el material, producto, receta o documento referenciado no existe.
type NotFoundError struct {
	Resource string // material, product, recipe, receipt, issue
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q no encontrado", e.Resource, e.ID)
}

// Unwrap permite errors.Is(err, ErrNotFound).
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NewNotFoundError atajo para construir un NotFoundError.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// Shortage describe una línea cuyo stock no alcanza.
type Shortage struct {
	ItemID    string
	ItemName  string
	Unit      string
	Required  decimal.Decimal
	Available decimal.Decimal
}

// Missing cantidad faltante (Required - Available).
func (s Shortage) Missing() decimal.Decimal {
	return s.Required.Sub(s.Available)
}

// InsufficientStockError la operación dejaría stock negativo. Enumera todas las líneas deficitarias.
type InsufficientStockError struct {
	Shortages []Shortage
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		name := s.ItemName
		if name == "" {
			name = s.ItemID
		}
		parts = append(parts, fmt.Sprintf("%s: requiere %s %s, disponible %s, faltan %s",
			name, s.Required.String(), s.Unit, s.Available.String(), s.Missing().String()))
	}
	return fmt.Sprintf("%s (%s)", ErrInsufficientStock, strings.Join(parts, "; "))
}

// Unwrap permite errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// StorageError fallo de la transacción o de la conexión subyacente.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStorage, e.Op, e.Err)
}

// Unwrap expone el error original (pgx, red, etc.).
func (e *StorageError) Unwrap() error { return e.Err }

// Is hace que errors.Is(err, ErrStorage) sea verdadero además de la cadena original.
func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// IsKnown indica si err ya pertenece a la taxonomía del dominio (no hay que envolverlo como StorageError).
func IsKnown(err error) bool {
	for _, target := range []error{
		ErrInvalidInput, ErrNotFound, ErrInsufficientStock, ErrStorage,
		ErrConflict, ErrDuplicate, ErrForbidden, ErrUnauthorized,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
