package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentKind modo de pago de una transacción de caja.
type PaymentKind string

// Modos de pago. Change, FundReceived y Closing son pseudo-transacciones sin mercancía.
const (
	PaymentCash         PaymentKind = "cash"
	PaymentCheque       PaymentKind = "cheque"
	PaymentCard         PaymentKind = "card"
	PaymentChange       PaymentKind = "change"        // cambio entregado desde la caja
	PaymentFundReceived PaymentKind = "fund_received" // fondo de caja aceptado por el cajero
	PaymentClosing      PaymentKind = "closing"       // cierre declarado de la sesión
)

// Valid indica si el modo de pago es conocido.
func (k PaymentKind) Valid() bool {
	switch k {
	case PaymentCash, PaymentCheque, PaymentCard, PaymentChange, PaymentFundReceived, PaymentClosing:
		return true
	}
	return false
}

// IsPseudo indica si es una pseudo-transacción (sin líneas, total 0).
func (k PaymentKind) IsPseudo() bool {
	return k == PaymentChange || k == PaymentFundReceived || k == PaymentClosing
}

// RequiresReference indica si el pago exige una referencia (número de cheque, autorización de tarjeta).
func (k PaymentKind) RequiresReference() bool {
	return k == PaymentCheque || k == PaymentCard
}

// Estados de una transacción.
const (
	SaleStatusValid     = "valid"
	SaleStatusCancelled = "cancelled"
)

// SaleTransaction cabecera de una venta o pseudo-transacción de caja.
// Total = Σ líneas (0 en pseudo-transacciones); Amount es el efectivo movido por una
// pseudo-transacción (fondo recibido, cambio entregado, saldo declarado).
type SaleTransaction struct {
	ID            string
	BuyerID       string // vacío para no socios o entradas de sistema
	CashierID     string
	PaymentKind   PaymentKind
	PaymentRef    string
	Total         decimal.Decimal
	Amount        decimal.Decimal
	Status        string
	CashSessionID string
	CancelledBy   string
	CancelledAt   *time.Time
	CancelReason  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Lines         []*SaleLine
}

// IsValid indica si la transacción no ha sido anulada.
func (t *SaleTransaction) IsValid() bool {
	return t.Status == SaleStatusValid
}

// SaleLine línea de venta.
type SaleLine struct {
	ID            string
	TransactionID string
	ProductID     string
	Quantity      int
	UnitPrice     decimal.Decimal
	LineTotal     decimal.Decimal // Quantity × UnitPrice
}
