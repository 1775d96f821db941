package entity

import "time"

// MovementKind tipo de movimiento de stock.
type MovementKind string

// Tipos de movimiento de stock.
const (
	MovementIn             MovementKind = "in"              // entrada (compra, anulación de venta)
	MovementOut            MovementKind = "out"             // salida (venta)
	MovementAdjustment     MovementKind = "adjustment"      // ajuste manual con signo
	MovementInventoryCount MovementKind = "inventory_count" // conteo físico
	MovementLoss           MovementKind = "loss"            // pérdida / merma
	MovementTransfer       MovementKind = "transfer"        // traslado con signo
)

// Valid indica si el tipo pertenece al conjunto conocido.
func (k MovementKind) Valid() bool {
	switch k {
	case MovementIn, MovementOut, MovementAdjustment, MovementInventoryCount, MovementLoss, MovementTransfer:
		return true
	}
	return false
}

// EffectiveDelta aplica la semántica de signo del tipo sobre la cantidad pedida.
// in: +|q|; out/loss: -|q|; adjustment/inventory_count/transfer: q tal cual.
func (k MovementKind) EffectiveDelta(quantity int) int {
	abs := quantity
	if abs < 0 {
		abs = -abs
	}
	switch k {
	case MovementIn:
		return abs
	case MovementOut, MovementLoss:
		return -abs
	default:
		return quantity
	}
}

// RequiresReason indica si el motivo es obligatorio para el tipo.
func (k MovementKind) RequiresReason() bool {
	switch k {
	case MovementAdjustment, MovementInventoryCount, MovementLoss, MovementTransfer:
		return true
	}
	return false
}

// StockMovement registro inmutable de un cambio de stock.
// StockAfter = StockBefore + Quantity y coincide con products.stock_actual al confirmar.
type StockMovement struct {
	ID                string
	ProductID         string
	Kind              MovementKind
	Quantity          int // delta efectivo con signo
	StockBefore       int
	StockAfter        int
	SaleTransactionID string // vacío si no proviene de una venta
	PurchaseOrderRef  string // vacío si no proviene de una compra
	ActorID           string
	Reason            string
	CreatedAt         time.Time
}

// MovementTotal agregado de movimientos de un producto por tipo.
type MovementTotal struct {
	Kind     MovementKind
	Count    int
	Quantity int
}
