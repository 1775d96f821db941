package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Caisse-api/internal/domain/entity"
)

// CreateProductRequest entrada para crear un producto. InitialStock se registra como movimiento de entrada.
type CreateProductRequest struct {
	Name             string          `json:"name" validate:"notblank,max=200"`
	Category         string          `json:"category" validate:"max=100"`
	PurchasePrice    decimal.Decimal `json:"purchase_price" validate:"gte=0"`
	SalePrice        decimal.Decimal `json:"sale_price" validate:"gte=0"`
	ReorderThreshold int             `json:"reorder_threshold" validate:"gte=0,lte=1000000"`
	InitialStock     int             `json:"initial_stock" validate:"gte=0,lte=1000000"`
}

// UpdateProductRequest entrada para actualizar un producto (sin stock: se maneja vía movimientos).
type UpdateProductRequest struct {
	Name             *string          `json:"name" validate:"omitempty,notblank,max=200"`
	Category         *string          `json:"category" validate:"omitempty,max=100"`
	PurchasePrice    *decimal.Decimal `json:"purchase_price" validate:"omitempty,gte=0"`
	SalePrice        *decimal.Decimal `json:"sale_price" validate:"omitempty,gte=0"`
	ReorderThreshold *int             `json:"reorder_threshold" validate:"omitempty,gte=0,lte=1000000"`
	Active           *bool            `json:"active"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Category         string          `json:"category"`
	PurchasePrice    decimal.Decimal `json:"purchase_price"`
	SalePrice        decimal.Decimal `json:"sale_price"`
	StockActual      int             `json:"stock_actual"`
	ReorderThreshold int             `json:"reorder_threshold"`
	BelowThreshold   bool            `json:"below_threshold"`
	Active           bool            `json:"active"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// RemoveProductResponse resultado de Remove: "archived" o "deleted".
type RemoveProductResponse struct {
	ID      string `json:"id"`
	Outcome string `json:"outcome"`
}

// FromProduct convierte la entidad en respuesta.
func FromProduct(p *entity.Product) *ProductResponse {
	if p == nil {
		return nil
	}
	return &ProductResponse{
		ID:               p.ID,
		Name:             p.Name,
		Category:         p.Category,
		PurchasePrice:    p.PurchasePrice,
		SalePrice:        p.SalePrice,
		StockActual:      p.StockActual,
		ReorderThreshold: p.ReorderThreshold,
		BelowThreshold:   p.BelowThreshold(),
		Active:           p.Active,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}
