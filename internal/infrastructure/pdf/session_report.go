// Package pdf genera el resumen imprimible de una sesión de caja.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Resumen de caja      │  Sesión + estado + fecha     │
//	│  CAJERO / SUPERVISOR + apertura y cierre                     │
//	│  TABLA: Modo de pago | Transacciones | Importe               │
//	│  TOTALES: fondo / ventas efectivo / cambio / esperado ...    │
//	│  NOTAS de apertura, cierre y validación                      │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"sort"
	"strings"
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
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Caisse-api/internal/application/cashsession"
	"github.com/jhoicas/Caisse-api/internal/domain/entity"
)

var _ cashsession.ReportRenderer = (*SessionReportRenderer)(nil)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 170, Green: 20, Blue: 20}
)

var paymentLabels = map[entity.PaymentKind]string{
	entity.PaymentCash:         "Efectivo",
	entity.PaymentCheque:       "Cheque",
	entity.PaymentCard:         "Tarjeta",
	entity.PaymentChange:       "Cambio entregado",
	entity.PaymentFundReceived: "Fondo recibido",
	entity.PaymentClosing:      "Cierre declarado",
}

// SessionReportRenderer implementa cashsession.ReportRenderer con Maroto v2.
type SessionReportRenderer struct {
	company string
}

// NewSessionReportRenderer construye el generador; company aparece como autor del documento.
func NewSessionReportRenderer(company string) *SessionReportRenderer {
	return &SessionReportRenderer{company: company}
}

// RenderSessionReport genera el PDF y devuelve sus bytes.
func (g *SessionReportRenderer) RenderSessionReport(_ context.Context, r *cashsession.Report) ([]byte, error) {
	if r == nil || r.Session == nil {
		return nil, fmt.Errorf("pdf: reporte vacío")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Resumen de sesión de caja", true).
		WithAuthor(nonEmpty(g.company, "caisse"), true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(headerRow(r))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(peopleRow(r.Session))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(kindRows(r)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRows(r)...)
	if notes := noteRows(r.Session); len(notes) > 0 {
		m.AddRows(line.NewRow(3))
		m.AddRows(notes...)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(r *cashsession.Report) core.Row {
	s := r.Session
	return row.New(18).Add(
		col.New(7).Add(
			text.New("RESUMEN DE CAJA", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Sesión "+s.ID, props.Text{Size: 8, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New(strings.ToUpper(statusLabel(s.Status)), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New("Generado: "+formatTime(&r.GeneratedAt), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

func peopleRow(s *entity.CashSession) core.Row {
	return row.New(14).Add(
		col.New(6).Add(
			text.New("CAJERO", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(s.CashierID, props.Text{Size: 9, Top: 6}),
		),
		col.New(6).Add(
			text.New("SUPERVISOR", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(s.SupervisorID, props.Text{Size: 9, Top: 6}),
			text.New(fmt.Sprintf("Apertura: %s   |   Cierre: %s", formatTime(s.OpenedAt), formatTime(s.ClosedAt)),
				props.Text{Size: 7, Top: 11, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Modo de pago", 6, align.Left),
		h("Transacciones", 3, align.Center),
		h("Importe", 3, align.Right),
	)
}

// kindRows una fila por modo de pago presente, en orden estable.
func kindRows(r *cashsession.Report) []core.Row {
	kinds := make([]string, 0, len(r.CountByKind))
	for k := range r.CountByKind {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)

	rows := make([]core.Row, 0, len(kinds))
	for _, k := range kinds {
		kind := entity.PaymentKind(k)
		rows = append(rows, row.New(6).Add(
			col.New(6).Add(text.New(nonEmpty(paymentLabels[kind], k), props.Text{Size: 8, Left: 1, Top: 1})),
			col.New(3).Add(text.New(fmt.Sprintf("%d", r.CountByKind[kind]), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(3).Add(text.New(formatMoney(r.TotalByKind[kind]), props.Text{Size: 8, Align: align.Right, Right: 1, Top: 1})),
		))
	}
	if len(rows) == 0 {
		rows = append(rows, row.New(6).Add(col.New(12).Add(
			text.New("Sin transacciones en la ventana de la sesión", props.Text{Size: 8, Color: colorGray, Top: 1, Left: 1}),
		)))
	}
	return rows
}

func totalsRows(r *cashsession.Report) []core.Row {
	s := r.Session
	entry := func(label, value string, bold bool, color *props.Color) core.Row {
		style := fontstyle.Normal
		if bold {
			style = fontstyle.Bold
		}
		return row.New(5).Add(
			col.New(6),
			col.New(3).Add(text.New(label, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})),
			col.New(3).Add(text.New(value, props.Text{Style: style, Size: 9, Align: align.Right, Right: 1, Color: color})),
		)
	}
	rows := []core.Row{
		entry("Fondo inicial:", formatMoney(s.InitialFund), false, nil),
		entry("Ventas en efectivo:", formatMoney(r.CashSales), false, nil),
		entry("Cambio entregado:", formatMoney(r.ChangeGiven.Neg()), false, nil),
		entry("Saldo esperado:", formatMoney(r.Expected), true, colorPrimary),
	}
	if s.DeclaredBalance != nil {
		rows = append(rows, entry("Saldo declarado:", formatMoney(*s.DeclaredBalance), false, nil))
	}
	if s.Variance != nil {
		color := colorPrimary
		if !s.Variance.IsZero() {
			color = colorAlert
		}
		rows = append(rows, entry("Diferencia:", formatMoney(*s.Variance), true, color))
	}
	if s.ValidatedBalance != nil {
		rows = append(rows, entry("Saldo validado:", formatMoney(*s.ValidatedBalance), false, nil))
	}
	return rows
}

func noteRows(s *entity.CashSession) []core.Row {
	var rows []core.Row
	for _, n := range []struct{ label, body string }{
		{"Nota de apertura", s.OpeningNote},
		{"Nota de cierre", s.ClosingNote},
		{"Nota de validación", s.ValidationNote},
	} {
		if strings.TrimSpace(n.body) == "" {
			continue
		}
		rows = append(rows, row.New(10).Add(col.New(12).Add(
			text.New(n.label, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(n.body, props.Text{Size: 8, Top: 5, Color: colorGray}),
		)))
	}
	return rows
}

func statusLabel(s entity.SessionStatus) string {
	switch s {
	case entity.SessionPendingCashier:
		return "Pendiente de aceptación"
	case entity.SessionOpen:
		return "Abierta"
	case entity.SessionPendingValidation:
		return "Pendiente de validación"
	case entity.SessionValidated:
		return "Validada"
	case entity.SessionAnomaly:
		return "Anomalía"
	}
	return string(s)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "—"
	}
	return t.UTC().Format("02/01/2006 15:04")
}

// formatMoney dos decimales con puntos de miles y coma decimal. Ej: 1234567.5 → "$1.234.567,50".
func formatMoney(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	fixed := d.StringFixed(2)
	intPart, frac := fixed[:len(fixed)-3], fixed[len(fixed)-2:]

	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return sign + "$" + string(buf) + "," + frac
}
