package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Caisse-api/internal/domain/entity"
)

// RegisterMovementRequest body para POST /api/stock/movements.
type RegisterMovementRequest struct {
	ProductID        string           `json:"product_id"`
	Kind             string           `json:"kind"`
	Quantity         int              `json:"quantity"`
	Reason           string           `json:"reason"`
	PurchaseOrderRef string           `json:"purchase_order_ref,omitempty"`
	UnitCost         *decimal.Decimal `json:"unit_cost,omitempty"`
}

// CountRequest body para POST /api/stock/products/:id/count.
type CountRequest struct {
	Counted int    `json:"counted"`
	Reason  string `json:"reason"`
}

// ReceiptRequest body para POST /api/stock/products/:id/receipts.
type ReceiptRequest struct {
	Quantity         int              `json:"quantity"`
	UnitCost         *decimal.Decimal `json:"unit_cost,omitempty"`
	PurchaseOrderRef string           `json:"purchase_order_ref"`
}

// MovementResponse salida de un movimiento de stock.
type MovementResponse struct {
	ID                string    `json:"id"`
	ProductID         string    `json:"product_id"`
	Kind              string    `json:"kind"`
	Quantity          int       `json:"quantity"`
	StockBefore       int       `json:"stock_before"`
	StockAfter        int       `json:"stock_after"`
	SaleTransactionID string    `json:"sale_transaction_id,omitempty"`
	PurchaseOrderRef  string    `json:"purchase_order_ref,omitempty"`
	ActorID           string    `json:"actor_id"`
	Reason            string    `json:"reason,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// MovementTotalResponse agregado por tipo.
type MovementTotalResponse struct {
	Kind     string `json:"kind"`
	Count    int    `json:"count"`
	Quantity int    `json:"quantity"`
}

// ReplenishmentSuggestionDTO sugerencia de reposición para un producto bajo umbral.
type ReplenishmentSuggestionDTO struct {
	ProductID           string          `json:"product_id"`
	ProductName         string          `json:"product_name"`
	Category            string          `json:"category"`
	CurrentStock        int             `json:"current_stock"`
	ReorderThreshold    int             `json:"reorder_threshold"`
	IdealStock          int             `json:"ideal_stock"`         // umbral * 1.5
	SuggestedOrderQty   int             `json:"suggested_order_qty"` // IdealStock - CurrentStock
	UnitCost            decimal.Decimal `json:"unit_cost"`           // costo promedio ponderado
	EstimatedOrderCost  decimal.Decimal `json:"estimated_order_cost"`
	GrossMarginPct      decimal.Decimal `json:"gross_margin_pct"`
	UnitsSoldLast90Days int             `json:"units_sold_last_90d"`
	Priority            int             `json:"priority"` // 1 = más urgente
}

// FromMovement convierte la entidad en respuesta.
func FromMovement(m *entity.StockMovement) MovementResponse {
	return MovementResponse{
		ID:                m.ID,
		ProductID:         m.ProductID,
		Kind:              string(m.Kind),
		Quantity:          m.Quantity,
		StockBefore:       m.StockBefore,
		StockAfter:        m.StockAfter,
		SaleTransactionID: m.SaleTransactionID,
		PurchaseOrderRef:  m.PurchaseOrderRef,
		ActorID:           m.ActorID,
		Reason:            m.Reason,
		CreatedAt:         m.CreatedAt,
	}
}
