// Package pdf genera los comprobantes imprimibles de entrada (NK) y salida (XK).
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título del comprobante  │  Código + Fecha           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  NOTA / REGISTRADO POR                                       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: # | Descripción | Unidad | Cant | P.Unit | Importe   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAL                                                       │
//	│  FIRMAS: Entrega / Recibe                                    │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/Produccion-api/internal/application/report"
	"github.com/jhoicas/Produccion-api/pkg/format"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ report.VoucherRenderer = (*MarotoVoucherGenerator)(nil)

// MarotoVoucherGenerator implementa report.VoucherRenderer usando Maroto v2.
type MarotoVoucherGenerator struct {
	company string
}

// NewMarotoVoucherGenerator construye el generador. company aparece como autor y en el encabezado.
func NewMarotoVoucherGenerator(company string) *MarotoVoucherGenerator {
	return &MarotoVoucherGenerator{company: company}
}

// RenderVoucher genera el PDF y devuelve sus bytes. Las fechas se imprimen en loc.
func (g *MarotoVoucherGenerator) RenderVoucher(_ context.Context, v *report.Voucher, loc *time.Location) ([]byte, error) {
	if loc == nil {
		loc = time.UTC
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(v.Title+" "+v.Code, true).
		WithAuthor(g.company, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(g.company, v, loc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(infoRow(v))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableDetailRows(v.Lines)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalRow(v))
	m.AddRows(line.NewRow(12))
	m.AddRows(signatureRow())

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar comprobante: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: empresa + título (izq) y código + fecha (der).
func headerRow(company string, v *report.Voucher, loc *time.Location) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(nonEmpty(company, "-"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(v.Title, props.Text{
				Style: fontstyle.Bold, Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(v.Code, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 2,
			}),
			text.New("Fecha: "+v.CreatedAt.In(loc).Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 10, Color: colorGray,
			}),
		),
	)
}

// infoRow: nota y usuario que registró el documento.
func infoRow(v *report.Voucher) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("Nota: "+nonEmpty(v.Note, "-"), props.Text{Size: 8, Top: 1}),
			text.New("Registrado por: "+nonEmpty(v.CreatedBy, "-"), props.Text{
				Size: 8, Top: 7, Color: colorGray,
			}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("#", 1, align.Center),
		h("Descripción", 4, align.Left),
		h("Unidad", 1, align.Center),
		h("Cant.", 2, align.Right),
		h("Precio Unit.", 2, align.Right),
		h("Importe", 2, align.Right),
	)
}

// tableDetailRows: una fila por línea del comprobante.
func tableDetailRows(lines []report.VoucherLine) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, ln := range lines {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(strconv.Itoa(ln.Position), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(4).Add(text.New(ln.Name, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(1).Add(text.New(ln.Unit, props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(format.Quantity(ln.Quantity), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New("$"+format.Money(ln.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New("$"+format.Money(ln.Amount), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

// totalRow: total del documento alineado a la derecha.
func totalRow(v *report.Voucher) core.Row {
	return row.New(10).Add(
		col.New(6),
		col.New(3).Add(text.New("TOTAL:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2, Top: 2,
		})),
		col.New(3).Add(text.New("$"+format.Money(v.Total), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1, Top: 2,
		})),
	)
}

// signatureRow: espacios de firma.
func signatureRow() core.Row {
	sig := func(label string) core.Col {
		return col.New(6).Add(
			text.New("______________________________", props.Text{Size: 8, Align: align.Center, Top: 10}),
			text.New(label, props.Text{Size: 8, Align: align.Center, Top: 15, Color: colorGray}),
		)
	}
	return row.New(22).Add(sig("Entrega"), sig("Recibe"))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
