package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Caisse-api/internal/domain/entity"
)

// MovementFilter filtros reconocidos para el listado de movimientos de stock.
// Los campos vacíos o nil no filtran.
type MovementFilter struct {
	ProductID string
	Kind      entity.MovementKind
	ActorID   string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// StockMovementRepository define el puerto de persistencia para movimientos de stock (solo inserción).
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	GetByID(ctx context.Context, id string) (*entity.StockMovement, error)
	List(ctx context.Context, filter MovementFilter) ([]*entity.StockMovement, error)
	Count(ctx context.Context, filter MovementFilter) (int, error)
	// LatestForProduct devuelve el movimiento más reciente del producto (nil si no hay).
	LatestForProduct(ctx context.Context, productID string) (*entity.StockMovement, error)
	TotalsByKind(ctx context.Context, productID string, from, to *time.Time) ([]entity.MovementTotal, error)
}
