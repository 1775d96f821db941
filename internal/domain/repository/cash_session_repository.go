package repository

import (
	"context"

	"github.com/jhoicas/Caisse-api/internal/domain/entity"
)

// SessionFilter filtros reconocidos para el listado de sesiones de caja.
type SessionFilter struct {
	CashierID    string
	SupervisorID string
	Status       entity.SessionStatus
	Limit        int
	Offset       int
}

// CashSessionRepository define el puerto de persistencia para sesiones de caja.
type CashSessionRepository interface {
	Create(ctx context.Context, session *entity.CashSession) error
	GetByID(ctx context.Context, id string) (*entity.CashSession, error)
	// GetForUpdate obtiene la sesión bloqueando la fila (SELECT ... FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.CashSession, error)
	Update(ctx context.Context, session *entity.CashSession) error
	// ActiveForCashier devuelve la sesión pending_cashier u open del cajero (nil si no hay).
	ActiveForCashier(ctx context.Context, cashierID string) (*entity.CashSession, error)
	List(ctx context.Context, filter SessionFilter) ([]*entity.CashSession, error)
}
