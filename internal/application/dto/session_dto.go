package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Caisse-api/internal/domain/entity"
)

// OpenFundRequest body para POST /api/sessions. El supervisor es el actor autenticado.
type OpenFundRequest struct {
	CashierID   string          `json:"cashier_id"`
	InitialFund decimal.Decimal `json:"initial_fund"`
	Note        string          `json:"note,omitempty"`
}

// NoteRequest body con nota opcional (aceptación del fondo).
type NoteRequest struct {
	Note string `json:"note,omitempty"`
}

// DeclareClosingRequest body para POST /api/sessions/:id/close.
type DeclareClosingRequest struct {
	DeclaredBalance decimal.Decimal `json:"declared_balance"`
	Note            string          `json:"note,omitempty"`
}

// ValidateClosingRequest body para POST /api/sessions/:id/validate.
type ValidateClosingRequest struct {
	ValidatedBalance decimal.Decimal `json:"validated_balance"`
	Outcome          string          `json:"outcome"` // validated | anomaly
	Note             string          `json:"note,omitempty"`
}

// ExpectedBalanceResponse saldo esperado en caja.
type ExpectedBalanceResponse struct {
	SessionID string          `json:"session_id"`
	Expected  decimal.Decimal `json:"expected"`
}

// SessionResponse salida de una sesión de caja.
type SessionResponse struct {
	ID               string           `json:"id"`
	SupervisorID     string           `json:"supervisor_id"`
	CashierID        string           `json:"cashier_id"`
	Status           string           `json:"status"`
	InitialFund      decimal.Decimal  `json:"initial_fund"`
	ExpectedBalance  *decimal.Decimal `json:"expected_balance,omitempty"`
	DeclaredBalance  *decimal.Decimal `json:"declared_balance,omitempty"`
	ValidatedBalance *decimal.Decimal `json:"validated_balance,omitempty"`
	Variance         *decimal.Decimal `json:"variance,omitempty"`
	OpeningNote      string           `json:"opening_note,omitempty"`
	ClosingNote      string           `json:"closing_note,omitempty"`
	ValidationNote   string           `json:"validation_note,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	OpenedAt         *time.Time       `json:"opened_at,omitempty"`
	ClosedAt         *time.Time       `json:"closed_at,omitempty"`
	ValidatedAt      *time.Time       `json:"validated_at,omitempty"`
}

// SessionListResponse lista paginada de sesiones.
type SessionListResponse struct {
	Items []SessionResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// FromSession convierte la entidad en respuesta.
func FromSession(s *entity.CashSession) SessionResponse {
	return SessionResponse{
		ID:               s.ID,
		SupervisorID:     s.SupervisorID,
		CashierID:        s.CashierID,
		Status:           string(s.Status),
		InitialFund:      s.InitialFund,
		ExpectedBalance:  s.ExpectedBalance,
		DeclaredBalance:  s.DeclaredBalance,
		ValidatedBalance: s.ValidatedBalance,
		Variance:         s.Variance,
		OpeningNote:      s.OpeningNote,
		ClosingNote:      s.ClosingNote,
		ValidationNote:   s.ValidationNote,
		CreatedAt:        s.CreatedAt,
		OpenedAt:         s.OpenedAt,
		ClosedAt:         s.ClosedAt,
		ValidatedAt:      s.ValidatedAt,
	}
}

// SessionReportResponse resumen de una sesión de caja.
type SessionReportResponse struct {
	Session     SessionResponse            `json:"session"`
	CashSales   decimal.Decimal            `json:"cash_sales"`
	ChangeGiven decimal.Decimal            `json:"change_given"`
	Expected    decimal.Decimal            `json:"expected"`
	CountByKind map[string]int             `json:"count_by_kind"`
	TotalByKind map[string]decimal.Decimal `json:"total_by_kind"`
	GeneratedAt time.Time                  `json:"generated_at"`
}
