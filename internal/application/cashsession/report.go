package cashsession

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Caisse-api/internal/domain/entity"
)

// Report resumen de una sesión de caja.
type Report struct {
	Session     *entity.CashSession
	CashSales   decimal.Decimal
	ChangeGiven decimal.Decimal
	Expected    decimal.Decimal // recalculado sobre la ventana de la sesión
	CountByKind map[entity.PaymentKind]int
	TotalByKind map[entity.PaymentKind]decimal.Decimal
	GeneratedAt time.Time
}

// ReportRenderer genera la representación PDF del resumen.
type ReportRenderer interface {
	RenderSessionReport(ctx context.Context, r *Report) ([]byte, error)
}

// ReportUseCase arma el resumen de una sesión y su PDF.
type ReportUseCase struct {
	sessions *SessionUseCase
	renderer ReportRenderer
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(sessions *SessionUseCase, renderer ReportRenderer) *ReportUseCase {
	return &ReportUseCase{sessions: sessions, renderer: renderer}
}

// SessionReport calcula los totales de la ventana de la sesión agrupados por modo de pago.
func (uc *ReportUseCase) SessionReport(ctx context.Context, sessionID string) (*Report, error) {
	s, err := uc.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	totals, err := windowTotals(ctx, uc.sessions.sales, s, now)
	if err != nil {
		return nil, err
	}
	r := &Report{
		Session:     s,
		CashSales:   totals.CashSales,
		ChangeGiven: totals.ChangeGiven,
		Expected:    expected(s, totals),
		CountByKind: totals.CountByKind,
		TotalByKind: totals.TotalByKind,
		GeneratedAt: now,
	}
	if r.CountByKind == nil {
		r.CountByKind = map[entity.PaymentKind]int{}
	}
	if r.TotalByKind == nil {
		r.TotalByKind = map[entity.PaymentKind]decimal.Decimal{}
	}
	return r, nil
}

// SessionReportPDF devuelve el PDF del resumen y un nombre de archivo sugerido.
func (uc *ReportUseCase) SessionReportPDF(ctx context.Context, sessionID string) ([]byte, string, error) {
	r, err := uc.SessionReport(ctx, sessionID)
	if err != nil {
		return nil, "", err
	}
	pdf, err := uc.renderer.RenderSessionReport(ctx, r)
	if err != nil {
		return nil, "", fmt.Errorf("reporte de sesión: %w", err)
	}
	return pdf, fmt.Sprintf("sesion-%s.pdf", s8(sessionID)), nil
}

func s8(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
