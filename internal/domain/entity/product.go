package entity

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// MaxStock límite de stock_actual (columna INTEGER).
const MaxStock = math.MaxInt32

// Product representa un artículo vendido en caja.
// StockActual solo lo modifica el libro de stock (inventory.MovementUseCase) vía movimientos.
type Product struct {
	ID               string
	Name             string
	Category         string
	PurchasePrice    decimal.Decimal // costo promedio ponderado de compra
	SalePrice        decimal.Decimal
	StockActual      int // invariante: >= 0 después de cada operación confirmada
	ReorderThreshold int
	Active           bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// BelowThreshold indica si el stock alcanzó el umbral de reposición.
func (p *Product) BelowThreshold() bool {
	return p.StockActual <= p.ReorderThreshold
}
