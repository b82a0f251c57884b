// Package format formatea cantidades y montos para documentos impresos (PDF, Excel).
package format

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Tag idioma usado en los documentos: punto de miles, coma decimal.
var Tag = language.Spanish

var printer = message.NewPrinter(Tag)

// Money formatea un monto sin decimales con separador de miles. Ej: 1250000 → "1.250.000".
func Money(d decimal.Decimal) string {
	return printer.Sprint(number.Decimal(d.Round(0).InexactFloat64(), number.MaxFractionDigits(0)))
}

// Quantity formatea una cantidad con hasta 3 decimales. Ej: 12.5 → "12,5".
func Quantity(d decimal.Decimal) string {
	return printer.Sprint(number.Decimal(d.Round(3).InexactFloat64(), number.MaxFractionDigits(3)))
}
