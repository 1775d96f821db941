package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Caisse-api/internal/domain/entity"
)

// AdjustBalanceRequest body para POST /api/accounts/:member/adjust.
type AdjustBalanceRequest struct {
	Amount decimal.Decimal `json:"amount"` // con signo
	Reason string          `json:"reason"`
}

// AccountResponse saldo de un socio.
type AccountResponse struct {
	ID        string          `json:"id"`
	MemberID  string          `json:"member_id"`
	Balance   decimal.Decimal `json:"balance"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// AccountEntryResponse asiento del diario de la cuenta.
type AccountEntryResponse struct {
	ID                string          `json:"id"`
	Kind              string          `json:"kind"`
	Amount            decimal.Decimal `json:"amount"`
	BalanceBefore     decimal.Decimal `json:"balance_before"`
	BalanceAfter      decimal.Decimal `json:"balance_after"`
	SaleTransactionID string          `json:"sale_transaction_id,omitempty"`
	ActorID           string          `json:"actor_id"`
	Reason            string          `json:"reason,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

// AccountEntryListResponse lista paginada de asientos.
type AccountEntryListResponse struct {
	Items []AccountEntryResponse `json:"items"`
	Page  PageResponse           `json:"page"`
}

// FromAccount convierte la entidad en respuesta.
func FromAccount(a *entity.MemberAccount) AccountResponse {
	return AccountResponse{ID: a.ID, MemberID: a.MemberID, Balance: a.Balance, UpdatedAt: a.UpdatedAt}
}

// FromAccountEntry convierte la entidad en respuesta.
func FromAccountEntry(e *entity.AccountEntry) AccountEntryResponse {
	return AccountEntryResponse{
		ID:                e.ID,
		Kind:              string(e.Kind),
		Amount:            e.Amount,
		BalanceBefore:     e.BalanceBefore,
		BalanceAfter:      e.BalanceAfter,
		SaleTransactionID: e.SaleTransactionID,
		ActorID:           e.ActorID,
		Reason:            e.Reason,
		CreatedAt:         e.CreatedAt,
	}
}
