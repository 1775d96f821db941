package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SessionStatus estado de una sesión de caja.
type SessionStatus string

// Estados de la máquina de estados de la sesión de caja.
//
//	pending_cashier --AcceptFund--> open --DeclareClosing--> pending_validation --ValidateClosing--> validated | anomaly
const (
	SessionPendingCashier    SessionStatus = "pending_cashier"
	SessionOpen              SessionStatus = "open"
	SessionPendingValidation SessionStatus = "pending_validation"
	SessionValidated         SessionStatus = "validated"
	SessionAnomaly           SessionStatus = "anomaly"
)

var sessionTransitions = map[SessionStatus][]SessionStatus{
	SessionPendingCashier:    {SessionOpen},
	SessionOpen:              {SessionPendingValidation},
	SessionPendingValidation: {SessionValidated, SessionAnomaly},
}

// CanTransition indica si el paso from -> to está permitido.
func (s SessionStatus) CanTransition(to SessionStatus) bool {
	for _, next := range sessionTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// IsActive indica si la sesión ocupa al cajero (pendiente de aceptar o abierta).
func (s SessionStatus) IsActive() bool {
	return s == SessionPendingCashier || s == SessionOpen
}

// IsTerminal indica si la sesión ya fue validada o marcada como anomalía.
func (s SessionStatus) IsTerminal() bool {
	return s == SessionValidated || s == SessionAnomaly
}

// CashSession ciclo de vida de la caja de un cajero.
type CashSession struct {
	ID               string
	SupervisorID     string
	CashierID        string
	InitialFund      decimal.Decimal
	ExpectedBalance  *decimal.Decimal
	DeclaredBalance  *decimal.Decimal
	ValidatedBalance *decimal.Decimal
	Variance         *decimal.Decimal // declarado - esperado
	Status           SessionStatus
	OpeningNote      string
	ClosingNote      string
	ValidationNote   string
	CreatedAt        time.Time
	OpenedAt         *time.Time
	ClosedAt         *time.Time
	ValidatedAt      *time.Time
	UpdatedAt        time.Time
}

// Window devuelve el intervalo de operación de la sesión; sin cierre usa now.
func (s *CashSession) Window(now time.Time) (from, to time.Time, ok bool) {
	if s.OpenedAt == nil {
		return time.Time{}, time.Time{}, false
	}
	to = now
	if s.ClosedAt != nil {
		to = *s.ClosedAt
	}
	return *s.OpenedAt, to, true
}
