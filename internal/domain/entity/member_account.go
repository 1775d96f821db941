package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MemberAccount saldo corriente de un socio. Puede ser negativo (deuda).
type MemberAccount struct {
	ID        string
	MemberID  string
	Balance   decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AccountEntryKind origen de un asiento de cuenta de socio.
type AccountEntryKind string

// Orígenes de asientos de cuenta.
const (
	AccountEntryAdjustment   AccountEntryKind = "adjustment"
	AccountEntrySale         AccountEntryKind = "sale"
	AccountEntryCancellation AccountEntryKind = "cancellation"
)

// AccountEntry asiento inmutable sobre el saldo de un socio (antes/después).
type AccountEntry struct {
	ID                string
	AccountID         string
	MemberID          string
	Kind              AccountEntryKind
	Amount            decimal.Decimal // con signo
	BalanceBefore     decimal.Decimal
	BalanceAfter      decimal.Decimal
	SaleTransactionID string
	ActorID           string
	Reason            string
	CreatedAt         time.Time
}
