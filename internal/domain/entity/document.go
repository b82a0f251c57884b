package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Prefijos de código de documento.
const (
	DocumentPrefixReceipt = "NK" // phiếu nhập kho: entrada de materiales
	DocumentPrefixIssue   = "XK" // phiếu xuất kho: salida de productos
)

// Receipt documento de entrada de materiales.
type Receipt struct {
	ID        string
	Code      string
	Note      string
	Total     decimal.Decimal // siempre Σ Lines.Amount
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
	Lines     []*ReceiptLine
}

// ReceiptLine línea de entrada: precio capturado al momento de registrar.
type ReceiptLine struct {
	ID           string
	ReceiptID    string
	MaterialID   string
	MaterialName string // solo lectura (join)
	Unit         string // solo lectura (join)
	Quantity     decimal.Decimal
	UnitPrice    decimal.Decimal
	Amount       decimal.Decimal // Quantity × UnitPrice
	Position     int
}

// Issue documento de salida de productos terminados.
type Issue struct {
	ID        string
	Code      string
	Note      string
	Total     decimal.Decimal
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
	Lines     []*IssueLine
}

// IssueLine línea de salida: precio de venta vigente al momento de la salida.
type IssueLine struct {
	ID          string
	IssueID     string
	ProductID   string
	ProductName string
	Unit        string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal
	Position    int
}
