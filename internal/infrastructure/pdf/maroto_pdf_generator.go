// Package pdf genera el documento imprimible de la remisión de un pedido.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + emisor      │  N° Remisión + Fecha        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  PEDIDO: id + usuario + cantidad de líneas                  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: No | Código | Producto | Categoría | Cantidad       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAL UNIDADES                                             │
//	│  FOOTER: QR de la remisión + firmas                         │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
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

	"github.com/jhoicas/pedidos-api/internal/application/orders"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

var _ orders.DeliveryNotePDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa orders.DeliveryNotePDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	issuer string
	loc    *time.Location
}

// NewMarotoPDFGenerator construye el generador. issuer aparece como emisor en el
// encabezado; las fechas se imprimen en loc (UTC si es nil).
func NewMarotoPDFGenerator(issuer string, loc *time.Location) *MarotoPDFGenerator {
	if loc == nil {
		loc = time.UTC
	}
	return &MarotoPDFGenerator{issuer: issuer, loc: loc}
}

// GenerateDeliveryNotePDF genera el PDF de la remisión y devuelve sus bytes.
// El pedido debe venir con sus líneas y su remisión cargadas.
func (g *MarotoPDFGenerator) GenerateDeliveryNotePDF(ctx context.Context, order *entity.Order) ([]byte, error) {
	if order == nil || order.DeliveryNote == nil {
		return nil, fmt.Errorf("pdf: pedido sin remisión")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	note := order.DeliveryNote
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Remisión "+note.ReferenceNumber, true).
		WithAuthor(nonEmpty(g.issuer, "pedidos-api"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(note))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(g.orderRow(order))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableDetailRows(order.Carts)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalRow(order.Carts))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRows(note)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título y emisor (izq), consecutivo y fecha (der).
func (g *MarotoPDFGenerator) headerRow(note *entity.DeliveryNote) core.Row {
	fecha := note.CreatedAt.In(g.loc).Format("02/01/2006 15:04")

	return row.New(18).Add(
		col.New(7).Add(
			text.New("REMISIÓN / SURAT JALAN", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Emisor: "+nonEmpty(g.issuer, "—"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("N° DE REMISIÓN", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(note.ReferenceNumber, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+fecha, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func (g *MarotoPDFGenerator) orderRow(order *entity.Order) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("DATOS DEL PEDIDO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Pedido: %s   |   Usuario: %s   |   Líneas: %d",
				order.ID,
				nonEmpty(order.UserID, "—"),
				len(order.Carts),
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("No", 1, align.Center),
		h("Código", 2, align.Left),
		h("Producto", 5, align.Left),
		h("Categoría", 2, align.Left),
		h("Cantidad", 2, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

// tableDetailRows: una fila por línea del carrito, en el orden del pedido.
func tableDetailRows(carts []entity.CartLine) []core.Row {
	result := make([]core.Row, 0, len(carts))
	for i, c := range carts {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(
				strconv.Itoa(i+1),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(2).Add(text.New(
				c.ProductCode,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(5).Add(text.New(
				c.ProductName,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				nonEmpty(c.ProductCategory, "—"),
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				formatQuantity(c.ProductQuantity),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

func totalRow(carts []entity.CartLine) core.Row {
	return row.New(10).Add(
		col.New(8),
		col.New(2).Add(text.New("TOTAL UNIDADES:", props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: 2,
			Color: colorPrimary,
		})),
		col.New(2).Add(text.New(formatQuantity(totalUnits(carts)), props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 1, Top: 2,
			Color: colorPrimary,
		})),
	)
}

// footerRows: QR con el consecutivo y espacio para firmas de entrega y recibido.
func footerRows(note *entity.DeliveryNote) []core.Row {
	signature := func(label string) core.Component {
		return text.New("______________________\n"+label, props.Text{
			Size: 8, Align: align.Center, Top: 24, Color: colorGray,
		})
	}
	return []core.Row{
		row.New(45).Add(
			col.New(4).Add(code.NewQr(note.ReferenceNumber, props.Rect{
				Percent: 95,
				Center:  true,
			})),
			col.New(4).Add(signature("Entregado por")),
			col.New(4).Add(signature("Recibido por")),
		),
		row.New(8).Add(col.New(12).Add(
			text.New(
				"Documento de salida de mercancía. El stock fue descontado del lote más antiguo disponible.",
				props.Text{Size: 6.5, Color: colorGray, Top: 2},
			),
		)),
	}
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func totalUnits(carts []entity.CartLine) int64 {
	var n int64
	for _, c := range carts {
		n += c.ProductQuantity
	}
	return n
}

// formatQuantity inserta puntos de miles. Ej: 1000000 → "1.000.000"
func formatQuantity(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := false
	if n < 0 {
		neg = true
		s = s[1:]
	}
	l := len(s)
	if l <= 3 {
		if neg {
			return "-" + s
		}
		return s
	}
	buf := make([]byte, 0, l+l/3+1)
	if neg {
		buf = append(buf, '-')
	}
	for i, c := range []byte(s) {
		if i > 0 && (l-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
