package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Caisse-api/internal/domain/entity"
)

// SaleFilter filtros reconocidos para el listado de transacciones.
type SaleFilter struct {
	CashierID   string
	BuyerID     string
	PaymentKind entity.PaymentKind
	Status      string
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}

// SessionTotals sumas de efectivo de un cajero en una ventana, usadas para el saldo esperado.
type SessionTotals struct {
	CashSales   decimal.Decimal
	ChangeGiven decimal.Decimal
	CountByKind map[entity.PaymentKind]int
	TotalByKind map[entity.PaymentKind]decimal.Decimal
}

// SaleRepository define el puerto de persistencia para transacciones de venta y sus líneas.
type SaleRepository interface {
	Create(ctx context.Context, tx *entity.SaleTransaction) error
	CreateLine(ctx context.Context, line *entity.SaleLine) error
	GetByID(ctx context.Context, id string) (*entity.SaleTransaction, error)
	// GetForUpdate obtiene la cabecera bloqueando la fila (SELECT ... FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.SaleTransaction, error)
	GetLines(ctx context.Context, transactionID string) ([]*entity.SaleLine, error)
	MarkCancelled(ctx context.Context, id, actorID, reason string, at time.Time) error
	List(ctx context.Context, filter SaleFilter) ([]*entity.SaleTransaction, error)
	// CashierTotals agrega las transacciones válidas del cajero en [from, to].
	CashierTotals(ctx context.Context, cashierID string, from, to time.Time) (*SessionTotals, error)
}
