// Package excel exporta el reporte de stock a un libro .xlsx.
package excel

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/Produccion-api/internal/application/report"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

const sheetName = "Stock"

var _ report.StockSheetWriter = (*StockReportWriter)(nil)

// StockReportWriter implementa report.StockSheetWriter con excelize.
type StockReportWriter struct{}

// NewStockReportWriter construye el writer.
func NewStockReportWriter() *StockReportWriter { return &StockReportWriter{} }

var header = []interface{}{"Tipo", "ID", "Nombre", "Unidad", "Stock", "Precio", "Valor", "Actualizado"}

// WriteStockReport una hoja con una fila por ítem y una fila final con el valor total.
func (w *StockReportWriter) WriteStockReport(_ context.Context, levels []*entity.Stock, at time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), sheetName); err != nil {
		return nil, fmt.Errorf("excel: renombrar hoja: %w", err)
	}
	if err := f.SetCellValue(sheetName, "A1", "Reporte de stock "+at.Format("02/01/2006 15:04")); err != nil {
		return nil, fmt.Errorf("excel: título: %w", err)
	}
	if err := f.SetSheetRow(sheetName, "A3", &header); err != nil {
		return nil, fmt.Errorf("excel: encabezado: %w", err)
	}

	rowNum := 4
	for _, s := range levels {
		value := s.Quantity.Mul(s.UnitPrice)
		excelRow := []interface{}{
			kindLabel(s.Kind),
			s.ItemID,
			s.Name,
			s.Unit,
			s.Quantity.InexactFloat64(),
			s.UnitPrice.InexactFloat64(),
			value.InexactFloat64(),
			s.UpdatedAt.In(at.Location()).Format("2006-01-02 15:04"),
		}
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return nil, fmt.Errorf("excel: celda: %w", err)
		}
		if err := f.SetSheetRow(sheetName, cell, &excelRow); err != nil {
			return nil, fmt.Errorf("excel: fila %d: %w", rowNum, err)
		}
		rowNum++
	}

	if len(levels) > 0 {
		totalCell, _ := excelize.CoordinatesToCellName(7, rowNum)
		labelCell, _ := excelize.CoordinatesToCellName(6, rowNum)
		if err := f.SetCellValue(sheetName, labelCell, "Total"); err != nil {
			return nil, fmt.Errorf("excel: total: %w", err)
		}
		if err := f.SetCellFormula(sheetName, totalCell, fmt.Sprintf("SUM(G4:G%d)", rowNum-1)); err != nil {
			return nil, fmt.Errorf("excel: fórmula total: %w", err)
		}
	}

	if err := f.SetColWidth(sheetName, "B", "B", 38); err != nil {
		return nil, fmt.Errorf("excel: ancho columna: %w", err)
	}
	if err := f.SetColWidth(sheetName, "C", "C", 28); err != nil {
		return nil, fmt.Errorf("excel: ancho columna: %w", err)
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("excel: escribir libro: %w", err)
	}
	return buf.Bytes(), nil
}

func kindLabel(kind string) string {
	switch kind {
	case entity.StockKindMaterial:
		return "Material"
	case entity.StockKindProduct:
		return "Producto"
	default:
		return kind
	}
}
