package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Caisse-api/internal/domain/entity"
)

// SaleLineRequest línea de una venta. Sin UnitPrice se usa el precio de venta del producto.
type SaleLineRequest struct {
	ProductID string           `json:"product_id"`
	Quantity  int              `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

// CreateSaleRequest body para POST /api/sales. El cajero es el actor autenticado.
type CreateSaleRequest struct {
	BuyerID     string            `json:"buyer_id,omitempty"`
	PaymentKind string            `json:"payment_kind"`
	PaymentRef  string            `json:"payment_ref,omitempty"`
	Amount      decimal.Decimal   `json:"amount"` // solo pseudo-transacciones (cambio entregado)
	Lines       []SaleLineRequest `json:"lines"`
}

// CancelSaleRequest body para POST /api/sales/:id/cancel.
type CancelSaleRequest struct {
	Reason string `json:"reason"`
}

// SaleLineResponse línea de venta.
type SaleLineResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// SaleResponse transacción con sus líneas.
type SaleResponse struct {
	ID            string             `json:"id"`
	BuyerID       string             `json:"buyer_id,omitempty"`
	CashierID     string             `json:"cashier_id"`
	PaymentKind   string             `json:"payment_kind"`
	PaymentRef    string             `json:"payment_ref,omitempty"`
	Total         decimal.Decimal    `json:"total"`
	Amount        decimal.Decimal    `json:"amount"`
	Status        string             `json:"status"`
	CashSessionID string             `json:"cash_session_id,omitempty"`
	CancelledBy   string             `json:"cancelled_by,omitempty"`
	CancelledAt   *time.Time         `json:"cancelled_at,omitempty"`
	CancelReason  string             `json:"cancel_reason,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	Lines         []SaleLineResponse `json:"lines"`
}

// SaleListResponse lista paginada de transacciones (sin líneas).
type SaleListResponse struct {
	Items []SaleResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// FromSale convierte la entidad en respuesta.
func FromSale(t *entity.SaleTransaction) SaleResponse {
	out := SaleResponse{
		ID:            t.ID,
		BuyerID:       t.BuyerID,
		CashierID:     t.CashierID,
		PaymentKind:   string(t.PaymentKind),
		PaymentRef:    t.PaymentRef,
		Total:         t.Total,
		Amount:        t.Amount,
		Status:        t.Status,
		CashSessionID: t.CashSessionID,
		CancelledBy:   t.CancelledBy,
		CancelledAt:   t.CancelledAt,
		CancelReason:  t.CancelReason,
		CreatedAt:     t.CreatedAt,
		Lines:         make([]SaleLineResponse, 0, len(t.Lines)),
	}
	for _, l := range t.Lines {
		out.Lines = append(out.Lines, SaleLineResponse{
			ID:        l.ID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			LineTotal: l.LineTotal,
		})
	}
	return out
}
